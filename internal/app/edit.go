package app

import (
	"fmt"
	"strings"

	"rusk/internal/dates"
	"rusk/internal/domain"
	"rusk/internal/engine"
	"rusk/internal/lineedit"
)

// LineReader is the part of the line editor the edit driver needs.
type LineReader interface {
	ReadLine(opts lineedit.Options) (lineedit.Result, error)
}

// EditInteractive prompts for new text, and a new date when withDate is set,
// for each id. Escape skips a task unless it is the last one.
func EditInteractive(e *engine.Engine, r LineReader, ids []int, withDate bool) (engine.EditResult, error) {
	return e.EditEach(ids, func(t domain.Task, last bool) (engine.Change, error) {
		var c engine.Change
		res, err := r.ReadLine(lineedit.Options{
			Prompt:    fmt.Sprintf("Edit task %d: ", t.ID),
			Prefill:   t.Text,
			Ghost:     true,
			AllowSkip: !last,
		})
		if err != nil {
			return c, err
		}
		if res.Skipped {
			return engine.Change{Skip: true}, nil
		}
		if text := strings.TrimSpace(res.Text); text != "" {
			c.Text = &text
		}
		if !withDate {
			return c, nil
		}

		prefill := ""
		if t.Date != nil {
			prefill = t.Date.String()
		}
		res, err = r.ReadLine(lineedit.Options{
			Prompt:    fmt.Sprintf("Date for task %d (%s): ", t.ID, dates.Display(t.Date)),
			Prefill:   prefill,
			Ghost:     true,
			Validate:  dates.Valid,
			AllowSkip: !last,
		})
		if err != nil {
			return c, err
		}
		if res.Skipped {
			return engine.Change{Skip: true}, nil
		}
		if d, err := dates.ParseUser(res.Text); err == nil {
			c.SetDate = true
			c.Date = &d
		}
		return c, nil
	})
}
