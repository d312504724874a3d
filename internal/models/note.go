package models

import "time"

// Note is a free-text annotation attached to a date.
type Note struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
