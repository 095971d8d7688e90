package models

import (
	"time"
)

// BudgetTag is a named spending target within a budget, stored as part of
// the budget's jsonb tags column.
type BudgetTag struct {
	Title  string  `json:"title" validate:"required,min=1,max=100"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// Budget represents a time-boxed spending plan with per-tag targets.
type Budget struct {
	ID        int64       `json:"id" db:"budget_id"`
	Title     string      `json:"title" db:"title" validate:"required,min=1,max=200"`
	StartDate time.Time   `json:"start_date" db:"start_date" validate:"required"`
	EndDate   time.Time   `json:"end_date" db:"end_date" validate:"required,gtfield=StartDate"`
	Tags      []BudgetTag `json:"tags" db:"tags" validate:"dive"`
	UserID    int64       `json:"user_id" db:"user_id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// TableName returns the database table name for the Budget model.
func (b *Budget) TableName() string {
	return "budgets"
}

// BudgetCreate represents the payload for creating a budget.
type BudgetCreate struct {
	Title     string      `json:"title" validate:"required,min=1,max=200"`
	StartDate time.Time   `json:"start_date" validate:"required"`
	EndDate   time.Time   `json:"end_date" validate:"required,gtfield=StartDate"`
	Tags      []BudgetTag `json:"tags" validate:"dive"`
}
