package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"rusk/internal/dates"
	"rusk/internal/domain"
)

const (
	// DefaultName is the database file name used when only a directory is known.
	DefaultName = "tasks.json"

	backupSuffix        = ".backup"
	beforeRestoreSuffix = ".before_restore"
	tmpSuffix           = ".tmp"
)

var ErrNoBackup = errors.New("no backup file found")

// CorruptedError reports a database document that could not be parsed.
type CorruptedError struct {
	Path string
	Err  error
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("failed to parse the database file at '%s'. The file appears to be corrupted.\n"+
		"JSON parsing error: %v\n"+
		"\n"+
		"To fix this issue, you can:\n"+
		"1. Delete the corrupted file: rm '%s'\n"+
		"2. Or restore from backup: rusk restore\n"+
		"3. The application will create a new empty database on next run",
		e.Path, e.Err, e.Path)
}

func (e *CorruptedError) Unwrap() error { return e.Err }

// Config selects the database file and the filesystem it lives on.
type Config struct {
	Path string
	FS   afero.Fs
	Log  *zap.Logger
}

// DB owns the on-disk document and its sidecars. It holds no open handles
// between calls.
type DB struct {
	path string
	fs   afero.Fs
	log  *zap.Logger
}

func Open(cfg Config) *DB {
	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &DB{path: cfg.Path, fs: fs, log: log}
}

// Path returns the main database file path.
func (d *DB) Path() string { return d.path }

func (d *DB) BackupPath() string        { return d.path + backupSuffix }
func (d *DB) BeforeRestorePath() string { return d.path + beforeRestoreSuffix }
func (d *DB) TempPath() string          { return d.path + tmpSuffix }

// Load reads the main file. A missing file is an empty store.
func (d *DB) Load() ([]domain.Task, error) {
	exists, err := afero.Exists(d.fs, d.path)
	if err != nil {
		return nil, fmt.Errorf("check database file: %w", err)
	}
	if !exists {
		d.log.Debug("database file absent, starting empty", zap.String("path", d.path))
		return []domain.Task{}, nil
	}
	return d.readTasks(d.path)
}

func (d *DB) readTasks(path string) ([]domain.Task, error) {
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read the database file: %w", err)
	}
	tasks, err := Decode(data)
	if err != nil {
		return nil, &CorruptedError{Path: path, Err: err}
	}
	d.log.Debug("loaded tasks", zap.String("path", path), zap.Int("count", len(tasks)), zap.Int("bytes", len(data)))
	return tasks, nil
}

// record mirrors domain.Task with pointers so absent fields can be told
// apart from zero values.
type record struct {
	ID   *int        `json:"id"`
	Text *string     `json:"text"`
	Date *dates.Date `json:"date"`
	Done *bool       `json:"done"`
}

// Decode parses a database document. Unknown fields, trailing content,
// missing id, text or done, blank text, duplicate ids and ids outside
// 1..255 are rejected.
func Decode(data []byte) ([]domain.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var records []record
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected content after task list")
	}
	if records == nil {
		return nil, errors.New("expected a list of tasks")
	}
	tasks := make([]domain.Task, 0, len(records))
	seen := make(map[int]bool, len(records))
	for i, r := range records {
		switch {
		case r.ID == nil:
			return nil, fmt.Errorf("task %d: missing field `id`", i)
		case r.Text == nil:
			return nil, fmt.Errorf("task %d: missing field `text`", i)
		case r.Done == nil:
			return nil, fmt.Errorf("task %d: missing field `done`", i)
		}
		id := *r.ID
		if id < 1 || id > domain.MaxID {
			return nil, fmt.Errorf("task %d: id %d out of range 1..%d", i, id, domain.MaxID)
		}
		if seen[id] {
			return nil, fmt.Errorf("task %d: duplicate id %d", i, id)
		}
		seen[id] = true
		if strings.TrimSpace(*r.Text) == "" {
			return nil, fmt.Errorf("task %d: text is empty", i)
		}
		tasks = append(tasks, domain.Task{ID: id, Text: *r.Text, Date: r.Date, Done: *r.Done})
	}
	return tasks, nil
}

// Encode renders tasks as the pretty-printed document.
func Encode(tasks []domain.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return json.MarshalIndent(tasks, "", "  ")
}

// Save replaces the main file with tasks. The previous contents are copied to
// the backup sidecar first; the new contents go through a temp sibling that
// is renamed over the main file, falling back to copy+remove and then to a
// direct write.
func (d *DB) Save(tasks []domain.Task) error {
	if err := d.ensureDir(); err != nil {
		return err
	}
	exists, err := afero.Exists(d.fs, d.path)
	if err != nil {
		return fmt.Errorf("check database file: %w", err)
	}
	backedUp := false
	if exists {
		if err := d.copyFile(d.path, d.BackupPath()); err != nil {
			d.log.Warn("failed to create backup", zap.String("path", d.BackupPath()), zap.Error(err))
		} else {
			backedUp = true
		}
	}

	data, err := Encode(tasks)
	if err != nil {
		return fmt.Errorf("serialize tasks: %w", err)
	}
	tmp := d.TempPath()
	if err := afero.WriteFile(d.fs, tmp, data, 0o644); err != nil {
		_ = d.fs.Remove(tmp)
		return fmt.Errorf("write temporary database file: %w", err)
	}

	renameErr := d.fs.Rename(tmp, d.path)
	if renameErr == nil {
		d.log.Debug("saved tasks", zap.String("path", d.path), zap.Int("count", len(tasks)), zap.Int("bytes", len(data)))
		return nil
	}
	d.log.Warn("atomic rename failed, copying temp file instead", zap.String("path", d.path), zap.Error(renameErr))

	if err := d.ensureDir(); err != nil {
		return err
	}
	copyErr := d.copyFile(tmp, d.path)
	_ = d.fs.Remove(tmp)
	if copyErr == nil {
		return nil
	}
	d.log.Warn("copy of temp file failed, writing database directly", zap.String("path", d.path), zap.Error(copyErr))

	if err := d.ensureDir(); err != nil {
		return err
	}
	if err := afero.WriteFile(d.fs, d.path, data, 0o644); err != nil {
		if backedUp {
			d.putBack()
		}
		return fmt.Errorf("write database file: %w", err)
	}
	return nil
}

// putBack copies the backup sidecar over a main file that a failed fallback
// may have left truncated.
func (d *DB) putBack() {
	if err := d.copyFile(d.BackupPath(), d.path); err != nil {
		d.log.Warn("failed to put previous contents back", zap.String("path", d.path), zap.Error(err))
	}
}

// RestoreResult describes what Restore did besides replacing the main file.
type RestoreResult struct {
	Tasks []domain.Task
	// BeforeRestore is true when the prior main file was copied aside.
	BeforeRestore bool
	// SkippedCorrupt is true when the prior main file existed but did not parse.
	SkippedCorrupt bool
	// BeforeRestoreErr is set when copying the prior main file aside failed.
	BeforeRestoreErr error
}

// Restore copies the backup sidecar over the main file and returns its tasks.
// The main file is left untouched when the backup is absent or corrupted.
func (d *DB) Restore() (RestoreResult, error) {
	var res RestoreResult
	backup := d.BackupPath()
	exists, err := afero.Exists(d.fs, backup)
	if err != nil {
		return res, fmt.Errorf("check backup file: %w", err)
	}
	if !exists {
		return res, fmt.Errorf("%w at '%s'", ErrNoBackup, backup)
	}
	tasks, err := d.readTasks(backup)
	if err != nil {
		return res, err
	}

	mainExists, err := afero.Exists(d.fs, d.path)
	if err != nil {
		return res, fmt.Errorf("check database file: %w", err)
	}
	if mainExists {
		if _, err := d.readTasks(d.path); err != nil {
			var corrupted *CorruptedError
			if !errors.As(err, &corrupted) {
				return res, err
			}
			res.SkippedCorrupt = true
		} else if err := d.copyFile(d.path, d.BeforeRestorePath()); err != nil {
			d.log.Warn("failed to back up current database", zap.String("path", d.BeforeRestorePath()), zap.Error(err))
			res.BeforeRestoreErr = err
		} else {
			res.BeforeRestore = true
		}
	}

	if err := d.ensureDir(); err != nil {
		return res, err
	}
	if err := d.copyFile(backup, d.path); err != nil {
		return res, fmt.Errorf("restore from backup: %w", err)
	}
	d.log.Debug("restored tasks", zap.String("from", backup), zap.Int("count", len(tasks)))
	res.Tasks = tasks
	return res, nil
}

func (d *DB) ensureDir() error {
	dir := filepath.Dir(d.path)
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory for the database file: %w", err)
	}
	return nil
}

func (d *DB) copyFile(src, dst string) error {
	in, err := d.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := d.fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
