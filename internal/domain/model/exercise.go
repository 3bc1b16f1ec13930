package model

import (
	"time"
)

const (
	// DateLayout is the wire format accepted for exercise dates.
	DateLayout = "2006-01-02"
	// DisplayDateLayout matches the human-readable calendar string clients
	// expect in responses, e.g. "Mon Jan 01 2024".
	DisplayDateLayout = "Mon Jan 02 2006"
)

type Exercise struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"` // minutes
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayDate formats the exercise date as the calendar string used in
// API responses.
func (e *Exercise) DisplayDate() string {
	return e.Date.Format(DisplayDateLayout)
}
