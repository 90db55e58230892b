package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// UserLayout is the canonical form produced by Normalize.
	UserLayout = "2-1-2006"
	// StorageLayout is the form written to the database file.
	StorageLayout = "2006-01-02"
	displayLayout = "02-01-2006"
)

var ErrInvalid = errors.New("invalid date")

// Date is a calendar date without time zone or time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Of truncates t to its calendar date in t's location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the local calendar date.
func Today() Date {
	return Of(time.Now())
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool {
	return d.time().Before(o.time())
}

// String renders the date as DD-MM-YYYY.
func (d Date) String() string {
	return d.time().Format(displayLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.time().Format(StorageLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := time.Parse(StorageLayout, s)
	if err != nil {
		return err
	}
	*d = Of(t)
	return nil
}

// Normalize rewrites user input into the DD-MM-YYYY form: slashes become
// dashes and a one or two digit year is read as 20YY.
func Normalize(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	if n := len(parts[2]); n == 1 || n == 2 {
		if y, err := strconv.Atoi(parts[2]); err == nil && y >= 0 && y <= 99 {
			parts[2] = strconv.Itoa(2000 + y)
		}
	}
	return strings.Join(parts, "-")
}

// Parse reads a DD-MM-YYYY string. Dates that do not exist are rejected.
func Parse(s string) (Date, error) {
	t, err := time.Parse(UserLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return Of(t), nil
}

// ParseUser normalizes and parses user input.
func ParseUser(s string) (Date, error) {
	return Parse(Normalize(s))
}

// Valid reports whether s is an accepted user date.
func Valid(s string) bool {
	_, err := ParseUser(s)
	return err == nil
}

// Display renders an optional date, "empty" when absent.
func Display(d *Date) string {
	if d == nil {
		return "empty"
	}
	return d.String()
}

// Equal compares two optional dates.
func Equal(a, b *Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
