package models

import "github.com/shopspring/decimal"

// MemberBalance is the persisted running balance of one household member.
// Positive means the household owes the member; negative means the member owes.
type MemberBalance struct {
	Base
	HouseholdID string          `gorm:"type:uuid;not null;uniqueIndex:idx_balance_household_member" json:"household_id"`
	MemberID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_balance_household_member" json:"member_id"`
	DisplayName string          `gorm:"-" json:"display_name"`
	Balance     decimal.Decimal `gorm:"type:numeric(14,4);not null;default:0" json:"balance"`
}
