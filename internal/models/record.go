package models

import (
	"strings"
	"time"
)

// Record types.
const (
	RecordTypeIncome  = "income"
	RecordTypeExpense = "expense"
)

// DefaultCategory is assigned when a record is created without a category.
const DefaultCategory = "others"

// Record represents a single income or expense entry belonging to a user.
type Record struct {
	ID         int64     `json:"id" db:"record_id"`
	Title      string    `json:"title" db:"title" validate:"required,min=1,max=200"`
	RecordType string    `json:"record_type" db:"record_type" validate:"required,oneof=income expense"`
	Amount     float64   `json:"amount" db:"amount" validate:"required,gt=0"`
	Category   string    `json:"category" db:"category"`
	Notes      string    `json:"notes" db:"notes"`
	Date       time.Time `json:"date" db:"date"`
	UserID     int64     `json:"user_id" db:"user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the Record model.
func (r *Record) TableName() string {
	return "records"
}

// Normalize applies the storage conventions: categories are lowercased and
// default to "others", titles and notes are trimmed, and a zero date is
// replaced with the current time.
func (r *Record) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Notes = strings.TrimSpace(r.Notes)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	if r.Category == "" {
		r.Category = DefaultCategory
	}
	if r.Date.IsZero() {
		r.Date = time.Now()
	}
}

// RecordCreate represents the payload for creating a record.
type RecordCreate struct {
	Title      string     `json:"title" validate:"required,min=1,max=200"`
	RecordType string     `json:"record_type" validate:"required,oneof=income expense"`
	Amount     float64    `json:"amount" validate:"required,gt=0"`
	Category   string     `json:"category" validate:"omitempty,max=100"`
	Notes      string     `json:"notes" validate:"omitempty,max=1000"`
	Date       *time.Time `json:"date"`
}

// CategoryTotal is one row of the per-category aggregation.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}
