package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"hearth/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", nextID()),
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHousehold creates a household owned by the given user.
func CreateTestHousehold(t *testing.T, db *gorm.DB, userID string) *models.Household {
	t.Helper()

	household := &models.Household{
		Name:            fmt.Sprintf("Test Household %d", nextID()),
		CreatedByUserID: userID,
	}
	if err := db.Create(household).Error; err != nil {
		t.Fatalf("failed to create test household: %v", err)
	}
	return household
}

// CreateTestMember creates an approved member, linked to userID when non-empty.
func CreateTestMember(t *testing.T, db *gorm.DB, householdID, userID, displayName string) *models.Member {
	t.Helper()

	member := &models.Member{
		HouseholdID: householdID,
		DisplayName: displayName,
		Status:      models.MemberStatusApproved,
	}
	if userID != "" {
		member.UserID = &userID
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}

// CreateTestTransaction inserts a transaction and its splits as given, without
// touching persisted balances.
func CreateTestTransaction(t *testing.T, db *gorm.DB, tx *models.Transaction, splits ...models.TransactionSplit) *models.Transaction {
	t.Helper()

	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	if err := db.Omit("Splits").Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	for i := range splits {
		splits[i].TransactionID = tx.ID
		if err := db.Create(&splits[i]).Error; err != nil {
			t.Fatalf("failed to create test split: %v", err)
		}
	}
	tx.Splits = splits
	return tx
}

// CreateTestMemberBalance stores a persisted balance row.
func CreateTestMemberBalance(t *testing.T, db *gorm.DB, householdID, memberID, amount string) *models.MemberBalance {
	t.Helper()

	row := &models.MemberBalance{
		HouseholdID: householdID,
		MemberID:    memberID,
		Balance:     decimal.RequireFromString(amount),
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("failed to create test member balance: %v", err)
	}
	return row
}

// Split builds a split line from decimal strings.
func Split(memberID, paid, owed, pct string) models.TransactionSplit {
	s := models.TransactionSplit{
		MemberID:   memberID,
		PaidAmount: decimal.RequireFromString(paid),
		OwedAmount: decimal.RequireFromString(owed),
	}
	if pct != "" {
		s.OwedPercentage = decimal.NewNullDecimal(decimal.RequireFromString(pct))
	}
	return s
}
