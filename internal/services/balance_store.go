package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "hearth/internal/errors"
	"hearth/internal/models"
)

// gormBalanceStore reads balance inputs from the database.
type gormBalanceStore struct {
	db *gorm.DB
}

// NewBalanceStore creates a BalanceStore backed by GORM.
func NewBalanceStore(db *gorm.DB) BalanceStore {
	return &gormBalanceStore{db: db}
}

// FetchMemberBalances returns the persisted balance rows for a household.
func (s *gormBalanceStore) FetchMemberBalances(ctx context.Context, householdID string) ([]models.MemberBalance, error) {
	var rows []models.MemberBalance
	if err := s.db.WithContext(ctx).Where("household_id = ?", householdID).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// FetchAllSplitsForHousehold returns the splits of every live transaction in a household.
func (s *gormBalanceStore) FetchAllSplitsForHousehold(ctx context.Context, householdID string) ([]models.TransactionSplit, error) {
	var splits []models.TransactionSplit
	if err := s.db.WithContext(ctx).
		Joins("JOIN transactions ON transactions.id = transaction_splits.transaction_id").
		Where("transactions.household_id = ? AND transactions.deleted_at IS NULL", householdID).
		Find(&splits).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return splits, nil
}

// FetchTransactions returns a household's transactions, newest first.
func (s *gormBalanceStore) FetchTransactions(ctx context.Context, householdID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("date DESC").Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txs, nil
}

// FetchApprovedMembers returns the approved members of a household in joining order.
func (s *gormBalanceStore) FetchApprovedMembers(ctx context.Context, householdID string) ([]models.Member, error) {
	var members []models.Member
	if err := s.db.WithContext(ctx).
		Where("household_id = ? AND status = ?", householdID, models.MemberStatusApproved).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}
