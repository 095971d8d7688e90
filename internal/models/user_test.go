package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acgeoffrey/budget-tracker-api/internal/models"
)

func TestNewUser_Defaults(t *testing.T) {
	user := models.NewUser("Test User", "test@example.com")

	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Nil(t, user.PasswordChangedAt)
}

func TestUser_Sanitize(t *testing.T) {
	hash := "deadbeef"
	expires := time.Now().Add(10 * time.Minute)
	user := &models.User{
		ID:                     1,
		Email:                  "test@example.com",
		PasswordHash:           "secret-hash",
		Salt:                   "secret-salt",
		PasswordResetTokenHash: &hash,
		PasswordResetExpiresAt: &expires,
	}

	sanitized := user.Sanitize()

	assert.Empty(t, sanitized.PasswordHash)
	assert.Empty(t, sanitized.Salt)
	assert.Nil(t, sanitized.PasswordResetTokenHash)
	assert.Nil(t, sanitized.PasswordResetExpiresAt)

	// Original is untouched.
	assert.Equal(t, "secret-hash", user.PasswordHash)
	assert.NotNil(t, user.PasswordResetTokenHash)
}

func TestUser_PasswordChangedAfter(t *testing.T) {
	now := time.Now()

	user := &models.User{}
	assert.False(t, user.PasswordChangedAfter(now), "never changed")

	changed := now.Add(-time.Hour)
	user.PasswordChangedAt = &changed
	assert.False(t, user.PasswordChangedAfter(now), "changed before token issued")

	changed = now.Add(time.Hour)
	user.PasswordChangedAt = &changed
	assert.True(t, user.PasswordChangedAfter(now), "changed after token issued")
}

func TestUser_HasResetToken(t *testing.T) {
	hash := "deadbeef"
	expires := time.Now().Add(10 * time.Minute)

	user := &models.User{}
	assert.False(t, user.HasResetToken())

	user.PasswordResetTokenHash = &hash
	assert.False(t, user.HasResetToken(), "hash alone is not a pending handshake")

	user.PasswordResetExpiresAt = &expires
	assert.True(t, user.HasResetToken())
}

func TestRecord_Normalize(t *testing.T) {
	record := &models.Record{
		Title:      "  Rent  ",
		RecordType: models.RecordTypeExpense,
		Amount:     1200,
		Category:   "  Housing ",
		Notes:      " monthly ",
	}

	record.Normalize()

	assert.Equal(t, "Rent", record.Title)
	assert.Equal(t, "housing", record.Category)
	assert.Equal(t, "monthly", record.Notes)
	assert.False(t, record.Date.IsZero())
}

func TestRecord_Normalize_DefaultCategory(t *testing.T) {
	record := &models.Record{Title: "Coffee", RecordType: models.RecordTypeExpense, Amount: 4}
	record.Normalize()
	assert.Equal(t, models.DefaultCategory, record.Category)
}

func TestRecord_Normalize_KeepsExplicitDate(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	record := &models.Record{Title: "Coffee", RecordType: models.RecordTypeExpense, Amount: 4, Date: date}
	record.Normalize()
	assert.Equal(t, date, record.Date)
}
