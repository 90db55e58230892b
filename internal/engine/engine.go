package engine

import (
	"errors"
	"sort"
	"strings"

	"rusk/internal/dates"
	"rusk/internal/db"
	"rusk/internal/domain"
)

var (
	ErrEmptyText          = errors.New("task text cannot be empty")
	ErrCapacityExhausted  = errors.New("maximum number of tasks (255) reached")
	errNoDatabaseAttached = errors.New("engine has no database")
)

// Engine is the in-memory task store. Every mutating operation saves through
// DB at most once, and only when a task actually changed.
type Engine struct {
	DB    *db.DB
	Tasks []domain.Task
}

// New returns an engine with no tasks loaded.
func New(d *db.DB) *Engine {
	return &Engine{DB: d, Tasks: []domain.Task{}}
}

// Open loads the tasks stored in d.
func Open(d *db.DB) (*Engine, error) {
	tasks, err := d.Load()
	if err != nil {
		return nil, err
	}
	return &Engine{DB: d, Tasks: tasks}, nil
}

func (e *Engine) save() error {
	if e.DB == nil {
		return errNoDatabaseAttached
	}
	return e.DB.Save(e.Tasks)
}

func (e *Engine) snapshot() []domain.Task {
	prev := make([]domain.Task, len(e.Tasks))
	copy(prev, e.Tasks)
	return prev
}

// commit saves the store, putting prev back in memory when the save fails.
func (e *Engine) commit(prev []domain.Task) error {
	if err := e.save(); err != nil {
		e.Tasks = prev
		return err
	}
	return nil
}

// Find returns the index of the task with id.
func (e *Engine) Find(id int) (int, bool) {
	for i, t := range e.Tasks {
		if t.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Task returns a copy of the task with id.
func (e *Engine) Task(id int) (domain.Task, bool) {
	idx, ok := e.Find(id)
	if !ok {
		return domain.Task{}, false
	}
	return e.Tasks[idx], true
}

// NextID returns the smallest unused id in 1..255.
func (e *Engine) NextID() (int, error) {
	used := make([]int, 0, len(e.Tasks))
	for _, t := range e.Tasks {
		used = append(used, t.ID)
	}
	sort.Ints(used)
	id := 1
	for _, u := range used {
		if u == id {
			id++
		} else if u > id {
			break
		}
	}
	if id > domain.MaxID {
		return 0, ErrCapacityExhausted
	}
	return id, nil
}

// JoinText joins command-line words with single spaces.
func JoinText(words []string) string {
	return strings.Join(words, " ")
}

// parseDate turns user date input into a date, or nil when it does not parse.
func parseDate(s string) *dates.Date {
	d, err := dates.ParseUser(s)
	if err != nil {
		return nil
	}
	return &d
}

// Add appends a new pending task. An invalid date is dropped.
func (e *Engine) Add(words []string, date *string) (domain.Task, error) {
	text := JoinText(words)
	if strings.TrimSpace(text) == "" {
		return domain.Task{}, ErrEmptyText
	}
	id, err := e.NextID()
	if err != nil {
		return domain.Task{}, err
	}
	t := domain.Task{ID: id, Text: text}
	if date != nil {
		t.Date = parseDate(*date)
	}
	prev := e.snapshot()
	e.Tasks = append(e.Tasks, t)
	if err := e.commit(prev); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// Delete removes the tasks with the given ids and returns the ids that were
// not present. Ids are processed in descending order.
func (e *Engine) Delete(ids []int) ([]int, error) {
	sorted := append([]int(nil), ids...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	prev := e.snapshot()
	var notFound []int
	removed := 0
	for _, id := range sorted {
		idx, ok := e.Find(id)
		if !ok {
			notFound = append(notFound, id)
			continue
		}
		e.Tasks = append(e.Tasks[:idx], e.Tasks[idx+1:]...)
		removed++
	}
	if removed > 0 {
		if err := e.commit(prev); err != nil {
			return notFound, err
		}
	}
	return notFound, nil
}

// DoneCount returns how many tasks are done.
func (e *Engine) DoneCount() int {
	n := 0
	for _, t := range e.Tasks {
		if t.Done {
			n++
		}
	}
	return n
}

// DeleteDone removes every done task and returns how many were removed.
func (e *Engine) DeleteDone() (int, error) {
	n := e.DoneCount()
	if n == 0 {
		return 0, nil
	}
	prev := e.snapshot()
	kept := e.Tasks[:0]
	for _, t := range e.Tasks {
		if !t.Done {
			kept = append(kept, t)
		}
	}
	e.Tasks = kept
	if err := e.commit(prev); err != nil {
		return 0, err
	}
	return n, nil
}

type Marked struct {
	ID   int
	Done bool
}

type MarkResult struct {
	Marked   []Marked
	NotFound []int
}

// Mark toggles done on each task, in caller order.
func (e *Engine) Mark(ids []int) (MarkResult, error) {
	var res MarkResult
	prev := e.snapshot()
	for _, id := range ids {
		idx, ok := e.Find(id)
		if !ok {
			res.NotFound = append(res.NotFound, id)
			continue
		}
		e.Tasks[idx].Done = !e.Tasks[idx].Done
		res.Marked = append(res.Marked, Marked{ID: id, Done: e.Tasks[idx].Done})
	}
	if len(res.Marked) > 0 {
		if err := e.commit(prev); err != nil {
			return res, err
		}
	}
	return res, nil
}

type EditResult struct {
	Edited    []int
	Unchanged []int
	Skipped   []int
	NotFound  []int
}

// EditOptions carries a non-interactive edit. Nil fields are left alone.
type EditOptions struct {
	Text []string
	Date *string
}

// Change is the replacement decided for one task. Nil Text keeps the text;
// SetDate replaces the date with Date, which may be nil.
type Change struct {
	Skip    bool
	Text    *string
	SetDate bool
	Date    *dates.Date
}

// EditFunc decides the change for t. last is true for the final id of the call.
type EditFunc func(t domain.Task, last bool) (Change, error)

// Edit replaces text and/or date of each task with the same values.
func (e *Engine) Edit(ids []int, opts EditOptions) (EditResult, error) {
	var change Change
	if opts.Text != nil {
		text := JoinText(opts.Text)
		if strings.TrimSpace(text) == "" {
			return EditResult{}, ErrEmptyText
		}
		change.Text = &text
	}
	if opts.Date != nil {
		change.SetDate = true
		change.Date = parseDate(*opts.Date)
	}
	return e.EditEach(ids, func(domain.Task, bool) (Change, error) { return change, nil })
}

// EditEach asks fn for a change per found id and applies it. The store is
// saved once at the end if any task changed. An error from fn aborts the
// call without saving and discards the changes made so far.
func (e *Engine) EditEach(ids []int, fn EditFunc) (EditResult, error) {
	var res EditResult
	prev := e.snapshot()
	for i, id := range ids {
		idx, ok := e.Find(id)
		if !ok {
			res.NotFound = append(res.NotFound, id)
			continue
		}
		change, err := fn(e.Tasks[idx], i == len(ids)-1)
		if err != nil {
			e.Tasks = prev
			return res, err
		}
		if change.Skip {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		if apply(&e.Tasks[idx], change) {
			res.Edited = append(res.Edited, id)
		} else {
			res.Unchanged = append(res.Unchanged, id)
		}
	}
	if len(res.Edited) > 0 {
		if err := e.commit(prev); err != nil {
			return res, err
		}
	}
	return res, nil
}

func apply(t *domain.Task, c Change) bool {
	changed := false
	if c.Text != nil && *c.Text != t.Text {
		t.Text = *c.Text
		changed = true
	}
	if c.SetDate && !dates.Equal(t.Date, c.Date) {
		t.Date = nil
		if c.Date != nil {
			d := *c.Date
			t.Date = &d
		}
		changed = true
	}
	return changed
}

// Restore replaces the store with the backup sidecar's tasks.
func (e *Engine) Restore() (db.RestoreResult, error) {
	if e.DB == nil {
		return db.RestoreResult{}, errNoDatabaseAttached
	}
	res, err := e.DB.Restore()
	if err != nil {
		return res, err
	}
	e.Tasks = res.Tasks
	return res, nil
}
