package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"hearth/internal/balance"
	"hearth/internal/models"
	"hearth/internal/pagination"
	"hearth/internal/splits"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// HouseholdServicer defines the contract for households and their membership.
type HouseholdServicer interface {
	CreateHousehold(userID, name, displayName string) (*models.Household, error)
	GetHousehold(userID, householdID string) (*models.Household, error)
	ListMembers(userID, householdID string) ([]models.Member, error)
	AddMember(userID, householdID, displayName string, memberUserID *string) (*models.Member, error)
	ApproveMember(userID, householdID, memberID string) (*models.Member, error)
	RequireMembership(userID, householdID string) (*models.Member, error)
}

// CreateTransactionInput holds the fields for a new household transaction.
type CreateTransactionInput struct {
	Type                    models.TransactionType
	Amount                  decimal.Decimal
	SplitType               models.SplitType
	PaidByType              models.PaidByType
	PaidByMemberID          *string
	PaidToMemberID          *string
	SplitMemberID           *string
	ReimbursesTransactionID *string
	Description             string
	Date                    time.Time
	Shares                  []splits.Share
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *models.TransactionType
}

// ImpactLine is one member's share of a transaction's balance impact.
type ImpactLine struct {
	MemberID    string          `json:"member_id"`
	DisplayName string          `json:"display_name"`
	Net         decimal.Decimal `json:"net"`
}

// ImpactBreakdown explains how a single transaction moves member balances.
type ImpactBreakdown struct {
	TransactionID  string       `json:"transaction_id"`
	ImpactsBalance bool         `json:"impacts_balance"`
	SplitsLoaded   bool         `json:"splits_loaded"`
	Lines          []ImpactLine `json:"lines"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, householdID string, in CreateTransactionInput) (*models.Transaction, error)
	ListTransactions(userID, householdID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransaction(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetImpactBreakdown(userID, transactionID string) (*ImpactBreakdown, error)
}

// BalanceStore is the read side used to refresh balances. Every method is
// independent and safe to call concurrently.
type BalanceStore interface {
	FetchMemberBalances(ctx context.Context, householdID string) ([]models.MemberBalance, error)
	FetchAllSplitsForHousehold(ctx context.Context, householdID string) ([]models.TransactionSplit, error)
	FetchTransactions(ctx context.Context, householdID string) ([]models.Transaction, error)
	FetchApprovedMembers(ctx context.Context, householdID string) ([]models.Member, error)
}

// BalanceReport is the outcome of one balance refresh.
type BalanceReport struct {
	HouseholdID string                 `json:"household_id"`
	Balances    []models.MemberBalance `json:"balances"`
	Snapshot    []models.MemberBalance `json:"snapshot"`
	Warnings    []balance.Warning      `json:"warnings"`
	ComputedAt  time.Time              `json:"computed_at"`

	// Kept for the impacting-transactions view; not serialized.
	impacting []models.Transaction
}

// ImpactingTransactions is a truncated list of balance-impacting transactions.
type ImpactingTransactions struct {
	Transactions []models.Transaction `json:"transactions"`
	More         int                  `json:"more"`
	Total        int                  `json:"total"`
	Stale        bool                 `json:"stale"`
}

// BalanceServicer defines the contract for computing household balances.
type BalanceServicer interface {
	Refresh(ctx context.Context, householdID string) (*BalanceReport, error)
	Last(householdID string) (*BalanceReport, bool)
	ImpactingTransactions(ctx context.Context, householdID string, limit int) (*ImpactingTransactions, error)
}
