package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a Date
const DateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day component
type Date struct {
	time.Time
}

// NewDate keeps the calendar day of t, stored as UTC midnight
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD"
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "YYYY-MM-DD"
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Task is one extracted action item. It has no identity of its own; its
// position in MeetingRecord.Tasks pairs it with the issue created for it.
type Task struct {
	Title    string  `json:"title"`
	Assignee *string `json:"assignee"`
	DueDate  *Date   `json:"due_date"`
}

// NewTask creates a task, rejecting a blank title
func NewTask(title string, assignee *string, dueDate *Date) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrTaskTitleRequired
	}
	return Task{Title: title, Assignee: assignee, DueDate: dueDate}, nil
}
