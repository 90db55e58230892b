// Package present renders tasks and command results for the terminal.
package present

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"rusk/internal/dates"
	"rusk/internal/db"
	"rusk/internal/domain"
	"rusk/internal/engine"
)

var (
	labelOK      = text.Colors{text.FgGreen}
	labelWarn    = text.Colors{text.FgYellow}
	labelDelete  = text.Colors{text.FgRed}
	labelSame    = text.Colors{text.FgMagenta}
	labelPrompt  = text.Colors{text.FgHiYellow}
	dateOverdue  = text.Colors{text.FgRed}
	dateUpcoming = text.Colors{text.FgCyan}
	bold         = text.Colors{text.Bold}
)

// SetColor turns styling on or off for the whole process.
func SetColor(enabled bool) {
	if enabled {
		text.EnableColors()
	} else {
		text.DisableColors()
	}
}

type Printer struct {
	Out         io.Writer
	Width       int
	LeftMargin  int
	RightMargin int
	Today       dates.Date
}

func (p *Printer) line(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

func (p *Printer) task(label string, c text.Colors, id int, body string) {
	p.line("%s %d: %s", c.Sprint(label), id, bold.Sprint(body))
}

func (p *Printer) Added(t domain.Task) {
	p.task("Added task:", labelOK, t.ID, t.Text)
}

func (p *Printer) Marked(e *engine.Engine, res engine.MarkResult) {
	for _, m := range res.Marked {
		t, ok := e.Task(m.ID)
		if !ok {
			continue
		}
		status := "undone"
		if m.Done {
			status = "done"
		}
		p.task("Marked task as "+status+":", labelOK, m.ID, t.Text)
	}
	p.NotFound(res.NotFound)
}

func (p *Printer) Edited(e *engine.Engine, res engine.EditResult) {
	for _, id := range res.Edited {
		if t, ok := e.Task(id); ok {
			p.task("Edited task:", labelOK, id, t.Text)
		}
	}
	for _, id := range res.Unchanged {
		if t, ok := e.Task(id); ok {
			p.task("Task already has this content:", labelSame, id, t.Text)
		}
	}
	for _, id := range res.Skipped {
		p.line("%s %d", labelWarn.Sprint("Skipped task:"), id)
	}
	p.NotFound(res.NotFound)
}

// NotFound lists missing ids on one line; nothing is printed for none.
func (p *Printer) NotFound(ids []int) {
	if len(ids) == 0 {
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	p.line("%s %s", labelWarn.Sprint("Tasks not found IDs:"), strings.Join(parts, " "))
}

func (p *Printer) DeletePrompt(t domain.Task) string {
	return labelPrompt.Sprint("Delete '") + t.Text + labelPrompt.Sprint("'? [y/N]: ")
}

func (p *Printer) DeleteDonePrompt(n int) string {
	return labelPrompt.Sprint("Delete all done tasks (") + strconv.Itoa(n) + labelPrompt.Sprint(")? [y/N]: ")
}

func (p *Printer) DeleteCanceled(id int) {
	p.line("Canceled deletion of task %d.", id)
}

func (p *Printer) Canceled() {
	p.line("Canceled.")
}

func (p *Printer) Deleted(n int) {
	p.line("%s%d%s", labelDelete.Sprint("Deleted "), n, labelDelete.Sprint(" task(s)."))
}

func (p *Printer) DeletedDone(n int) {
	p.line("%s%d%s", labelDelete.Sprint("Deleted "), n, labelDelete.Sprint(" done tasks."))
}

func (p *Printer) NoDoneTasks() {
	p.line("%s", labelWarn.Sprint("No done tasks to delete."))
}

func (p *Printer) DeleteUsage() {
	p.line("%s", labelWarn.Sprint("Please specify id(s) or --done."))
}

func (p *Printer) Notice(msg string) {
	p.line("%s", labelWarn.Sprint(msg))
}

func (p *Printer) Paths(d *db.DB) {
	p.line("Database: %s", d.Path())
	p.line("Backup:   %s", d.BackupPath())
}

func (p *Printer) Restored(d *db.DB, res db.RestoreResult) {
	switch {
	case res.BeforeRestore:
		p.line("Current database backed up to: %s", d.BeforeRestorePath())
	case res.SkippedCorrupt:
		p.line("Current database is corrupted, skipping backup")
	case res.BeforeRestoreErr != nil:
		p.line("%s", labelWarn.Sprintf("Warning: Failed to backup current database: %v", res.BeforeRestoreErr))
	}
	p.line("Successfully restored %d tasks from backup", len(res.Tasks))
	p.line("Backup file: %s", d.BackupPath())
}

const (
	statusDone    = "✔"
	statusPending = "•"
	// status, id and date columns plus the gaps between all four columns
	fixedColumns = 1 + 3 + 10 + 3
)

// Tasks renders the task table, or "No tasks" for an empty store.
func (p *Printer) Tasks(tasks []domain.Task) {
	if len(tasks) == 0 {
		p.line("%s", labelWarn.Sprint("No tasks"))
		return
	}
	textWidth := p.Width - fixedColumns
	if textWidth < 10 {
		textWidth = 10
	}

	tw := table.NewWriter()
	style := table.StyleLight
	style.Options = table.OptionsNoBordersAndSeparators
	style.Options.SeparateHeader = true
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = " "
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight, WidthMin: 3},
		{Number: 3, Align: text.AlignCenter, AlignHeader: text.AlignCenter, WidthMin: 10},
		{Number: 4, Align: text.AlignLeft},
	})
	tw.AppendHeader(table.Row{"#", "id", "date", "task"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{
			p.status(t),
			bold.Sprint(strconv.Itoa(t.ID)),
			p.date(t),
			strings.Join(Wrap(t.Text, textWidth), "\n"),
		})
	}

	margin := strings.Repeat(" ", p.LeftMargin)
	fmt.Fprintln(p.Out)
	for _, l := range strings.Split(tw.Render(), "\n") {
		fmt.Fprintln(p.Out, margin+strings.TrimRight(l, " "))
	}
	fmt.Fprintln(p.Out)
}

func (p *Printer) status(t domain.Task) string {
	if t.Done {
		return labelOK.Sprint(statusDone)
	}
	return statusPending
}

func (p *Printer) date(t domain.Task) string {
	if t.Date == nil {
		return ""
	}
	if t.Overdue(p.Today) {
		return dateOverdue.Sprint(t.Date.String())
	}
	return dateUpcoming.Sprint(t.Date.String())
}
