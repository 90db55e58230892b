package domain

import "rusk/internal/dates"

// MaxID is the largest identifier a task can carry.
const MaxID = 255

type Task struct {
	ID   int         `json:"id"`
	Text string      `json:"text"`
	Date *dates.Date `json:"date"`
	Done bool        `json:"done"`
}

// Overdue reports whether a pending task's date lies strictly before today.
func (t Task) Overdue(today dates.Date) bool {
	return !t.Done && t.Date != nil && t.Date.Before(today)
}
