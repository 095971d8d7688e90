package models

// Settings holds a user's preferences: display currency and the category
// lists offered when creating records.
type Settings struct {
	ID                int64    `json:"id" db:"settings_id"`
	Currency          string   `json:"currency" db:"currency"`
	ExpenseCategories []string `json:"expense_categories" db:"expense_categories"`
	IncomeCategories  []string `json:"income_categories" db:"income_categories"`
	UserID            int64    `json:"user_id" db:"user_id"`
}

// TableName returns the database table name for the Settings model.
func (s *Settings) TableName() string {
	return "settings"
}

// DefaultSettings returns the settings assigned to a freshly created user.
func DefaultSettings(userID int64) *Settings {
	return &Settings{
		Currency: "INR",
		ExpenseCategories: []string{
			"food", "entertainment", "housing", "transportation", "healthcare",
			"education", "personal", "insurance", "investments", "utilities",
			"business", "other",
		},
		IncomeCategories: []string{
			"salary", "part time work", "interest", "rental", "business",
			"gift", "other",
		},
		UserID: userID,
	}
}

// SettingsUpdate represents the payload for updating settings.
type SettingsUpdate struct {
	Currency          *string  `json:"currency" validate:"omitempty,len=3"`
	ExpenseCategories []string `json:"expense_categories" validate:"omitempty,dive,min=1"`
	IncomeCategories  []string `json:"income_categories" validate:"omitempty,dive,min=1"`
}
