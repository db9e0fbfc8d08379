package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeExpense       TransactionType = "expense"
	TransactionTypeIncome        TransactionType = "income"
	TransactionTypeSettlement    TransactionType = "settlement"
	TransactionTypeReimbursement TransactionType = "reimbursement"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeIncome, TransactionTypeSettlement, TransactionTypeReimbursement:
		return true
	}
	return false
}

// SplitType describes how the owed side of an expense is divided.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypePayerOnly  SplitType = "payerOnly"
	SplitTypeMemberOnly SplitType = "memberOnly"
	SplitTypeCustom     SplitType = "custom"
)

// Valid reports whether s is one of the known split types.
func (s SplitType) Valid() bool {
	switch s {
	case SplitTypeEqual, SplitTypePayerOnly, SplitTypeMemberOnly, SplitTypeCustom:
		return true
	}
	return false
}

// PaidByType describes whether one member or several members paid.
type PaidByType string

const (
	PaidByTypeSingle PaidByType = "single"
	PaidByTypeShared PaidByType = "shared"
)

// Valid reports whether p is one of the known payer types.
func (p PaidByType) Valid() bool {
	switch p {
	case PaidByTypeSingle, PaidByTypeShared:
		return true
	}
	return false
}

// Transaction represents a household financial transaction.
type Transaction struct {
	Base
	HouseholdID string          `gorm:"type:uuid;not null;index" json:"household_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"amount"`
	SplitType   SplitType       `gorm:"not null;default:'equal'" json:"split_type"`
	PaidByType  PaidByType      `gorm:"not null;default:'single'" json:"paid_by_type"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	// Payer for single-payer expenses; sender for settlements; recipient of a reimbursement.
	PaidByMemberID *string `gorm:"type:uuid" json:"paid_by_member_id,omitempty"`
	// Settlements only.
	PaidToMemberID *string `gorm:"type:uuid" json:"paid_to_member_id,omitempty"`
	// memberOnly splits only.
	SplitMemberID *string `gorm:"type:uuid" json:"split_member_id,omitempty"`
	// Reimbursements only; the expense whose obligations are reversed.
	ReimbursesTransactionID *string `gorm:"type:uuid;index" json:"reimburses_transaction_id,omitempty"`

	CreatedByUserID string `gorm:"type:uuid" json:"created_by_user_id,omitempty"`

	Splits []TransactionSplit `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"splits,omitempty"`
}

// IsLinkedReimbursement reports whether t is a reimbursement that references an expense.
func (t *Transaction) IsLinkedReimbursement() bool {
	return t.Type == TransactionTypeReimbursement && t.ReimbursesTransactionID != nil && *t.ReimbursesTransactionID != ""
}

// TransactionSplit records how much one member paid and owed for a transaction.
type TransactionSplit struct {
	Base
	TransactionID  string              `gorm:"type:uuid;not null;uniqueIndex:idx_split_tx_member" json:"transaction_id"`
	MemberID       string              `gorm:"type:uuid;not null;uniqueIndex:idx_split_tx_member" json:"member_id"`
	PaidAmount     decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0" json:"paid_amount"`
	OwedAmount     decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0" json:"owed_amount"`
	OwedPercentage decimal.NullDecimal `gorm:"type:numeric(9,4)" json:"owed_percentage"`
}

// Net returns paid minus owed.
func (s TransactionSplit) Net() decimal.Decimal {
	return s.PaidAmount.Sub(s.OwedAmount)
}
