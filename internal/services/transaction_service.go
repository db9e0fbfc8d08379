package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hearth/internal/balance"
	apperrors "hearth/internal/errors"
	"hearth/internal/models"
	"hearth/internal/money"
	"hearth/internal/pagination"
	"hearth/internal/splits"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db               *gorm.DB
	householdService HouseholdServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, householdService HouseholdServicer) TransactionServicer {
	return &transactionService{
		db:               db,
		householdService: householdService,
	}
}

// CreateTransaction records a household transaction with its splits and
// applies its balance impact to the persisted member balances.
func (s *transactionService) CreateTransaction(userID, householdID string, in CreateTransactionInput) (*models.Transaction, error) {
	if _, err := s.householdService.RequireMembership(userID, householdID); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if !money.IsPositive(in.Amount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.SplitType == "" {
		in.SplitType = models.SplitTypeEqual
	}
	if in.PaidByType == "" {
		in.PaidByType = models.PaidByTypeSingle
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	members, err := s.approvedMemberIDs(householdID)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		HouseholdID:     householdID,
		Type:            in.Type,
		Amount:          in.Amount,
		SplitType:       in.SplitType,
		PaidByType:      in.PaidByType,
		Description:     strings.TrimSpace(in.Description),
		Date:            in.Date,
		CreatedByUserID: userID,
	}

	index := make(balance.SplitIndex)
	var lines []models.TransactionSplit

	switch in.Type {
	case models.TransactionTypeExpense, models.TransactionTypeIncome:
		lines, err = splits.Build(splits.Request{
			Amount:         in.Amount,
			SplitType:      in.SplitType,
			PaidByType:     in.PaidByType,
			PaidByMemberID: deref(in.PaidByMemberID),
			SplitMemberID:  deref(in.SplitMemberID),
			Members:        members,
			Custom:         in.Shares,
		})
		if err != nil {
			return nil, err
		}
		if in.PaidByType == models.PaidByTypeSingle {
			transaction.PaidByMemberID = in.PaidByMemberID
		}
		if in.SplitType == models.SplitTypeMemberOnly {
			transaction.SplitMemberID = in.SplitMemberID
		}

	case models.TransactionTypeSettlement:
		from, to := deref(in.PaidByMemberID), deref(in.PaidToMemberID)
		if !containsID(members, from) || !containsID(members, to) {
			return nil, apperrors.WithMessage(apperrors.ErrMemberNotApproved, "settlements need an approved payer and payee")
		}
		if from == to {
			return nil, apperrors.ErrSameMemberSettlement
		}
		transaction.PaidByType = models.PaidByTypeSingle
		transaction.PaidByMemberID = in.PaidByMemberID
		transaction.PaidToMemberID = in.PaidToMemberID

	case models.TransactionTypeReimbursement:
		recipient := deref(in.PaidByMemberID)
		if in.ReimbursesTransactionID != nil && *in.ReimbursesTransactionID != "" {
			linked, err := s.loadLinkedExpense(householdID, *in.ReimbursesTransactionID)
			if err != nil {
				return nil, err
			}
			if !containsID(members, recipient) {
				return nil, apperrors.WithMessage(apperrors.ErrMemberNotApproved, "reimbursement recipient must be an approved member")
			}
			if err := checkReimbursementRecipient(linked, recipient); err != nil {
				return nil, err
			}
			index[linked.ID] = linked.Splits
			transaction.ReimbursesTransactionID = in.ReimbursesTransactionID
		}
		if containsID(members, recipient) {
			transaction.PaidByMemberID = in.PaidByMemberID
		}
		transaction.PaidByType = models.PaidByTypeSingle
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Splits").Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i := range lines {
			lines[i].TransactionID = transaction.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			index[transaction.ID] = lines
		}
		return s.applyImpact(tx, transaction, index, len(members), decimal.NewFromInt(1))
	})
	if err != nil {
		return nil, err
	}

	transaction.Splits = lines
	return transaction, nil
}

// loadLinkedExpense returns the expense a reimbursement points at, with splits.
func (s *transactionService) loadLinkedExpense(householdID, expenseID string) (*models.Transaction, error) {
	var linked models.Transaction
	if err := s.db.Preload("Splits").Where("id = ?", expenseID).First(&linked).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidReimbursementLink
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if linked.HouseholdID != householdID || linked.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidReimbursementLink
	}
	return &linked, nil
}

// checkReimbursementRecipient requires the recipient of a linked reimbursement
// to hold a split in the reimbursed expense and, when that expense had a
// single payer, to be that payer. Otherwise the reimbursement's impacts would
// not sum to zero.
func checkReimbursementRecipient(linked *models.Transaction, recipient string) error {
	if linked.PaidByType == models.PaidByTypeSingle && linked.PaidByMemberID != nil && *linked.PaidByMemberID != recipient {
		return apperrors.WithMessage(apperrors.ErrInvalidReimbursementLink, "reimbursement recipient must be the expense's payer")
	}
	for _, sp := range linked.Splits {
		if sp.MemberID == recipient {
			return nil
		}
	}
	return apperrors.WithMessage(apperrors.ErrInvalidReimbursementLink, "reimbursement recipient has no share in the expense")
}

// applyImpact adds sign times the transaction's balance impact to the
// persisted member balances. It does nothing for transactions that do not
// impact balances or whose split data is unavailable.
func (s *transactionService) applyImpact(tx *gorm.DB, transaction *models.Transaction, index balance.SplitIndex, approvedMemberCount int, sign decimal.Decimal) error {
	if !balance.ImpactsBalance(transaction, index, approvedMemberCount) {
		return nil
	}
	impacts, ok := balance.TransactionImpacts(transaction, index)
	if !ok {
		return nil
	}
	for _, imp := range impacts {
		if err := s.updateMemberBalance(tx, transaction.HouseholdID, imp.MemberID, imp.Net.Mul(sign)); err != nil {
			return err
		}
	}
	return nil
}

// updateMemberBalance adds delta to a member's persisted balance, creating the row on first use.
func (s *transactionService) updateMemberBalance(tx *gorm.DB, householdID, memberID string, delta decimal.Decimal) error {
	row := models.MemberBalance{HouseholdID: householdID, MemberID: memberID}
	if err := tx.Where("household_id = ? AND member_id = ?", householdID, memberID).
		Attrs(models.MemberBalance{Balance: decimal.Zero}).
		FirstOrCreate(&row).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	row.Balance = row.Balance.Add(delta)
	if err := tx.Model(&row).Update("balance", row.Balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListTransactions retrieves a paginated, filtered list of a household's transactions.
func (s *transactionService) ListTransactions(userID, householdID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.householdService.RequireMembership(userID, householdID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("household_id = ?", householdID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Splits").
		Order("date DESC").Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	return q
}

// GetTransaction retrieves a transaction with its splits if the user belongs to its household.
func (s *transactionService) GetTransaction(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Splits").Where("id = ?", transactionID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := s.householdService.RequireMembership(userID, transaction.HouseholdID); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// DeleteTransaction deletes a transaction and reverses its effect on member balances.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransaction(userID, transactionID)
	if err != nil {
		return err
	}

	var refs int64
	if err := s.db.Model(&models.Transaction{}).
		Where("reimburses_transaction_id = ?", transaction.ID).
		Count(&refs).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if refs > 0 {
		return apperrors.ErrTransactionReferenced
	}

	index, err := s.indexFor(transaction)
	if err != nil {
		return err
	}
	members, err := s.approvedMemberIDs(transaction.HouseholdID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyImpact(tx, transaction, index, len(members), decimal.NewFromInt(-1)); err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&models.TransactionSplit{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetImpactBreakdown explains how one transaction moves member balances.
func (s *transactionService) GetImpactBreakdown(userID, transactionID string) (*ImpactBreakdown, error) {
	transaction, err := s.GetTransaction(userID, transactionID)
	if err != nil {
		return nil, err
	}

	index, err := s.indexFor(transaction)
	if err != nil {
		return nil, err
	}

	var members []models.Member
	if err := s.db.Where("household_id = ?", transaction.HouseholdID).Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	names := make(map[string]string, len(members))
	approved := 0
	for _, m := range members {
		names[m.ID] = m.DisplayName
		if m.IsApproved() {
			approved++
		}
	}

	breakdown := &ImpactBreakdown{
		TransactionID:  transaction.ID,
		ImpactsBalance: balance.ImpactsBalance(transaction, index, approved),
		Lines:          []ImpactLine{},
	}
	impacts, ok := balance.TransactionImpacts(transaction, index)
	breakdown.SplitsLoaded = ok
	if !breakdown.ImpactsBalance {
		return breakdown, nil
	}
	for _, imp := range impacts {
		breakdown.Lines = append(breakdown.Lines, ImpactLine{
			MemberID:    imp.MemberID,
			DisplayName: names[imp.MemberID],
			Net:         imp.Net,
		})
	}
	return breakdown, nil
}

// indexFor builds the split index needed to evaluate one transaction: its own
// splits plus, for a linked reimbursement, those of the reimbursed expense.
func (s *transactionService) indexFor(transaction *models.Transaction) (balance.SplitIndex, error) {
	index := make(balance.SplitIndex)
	if len(transaction.Splits) > 0 {
		index[transaction.ID] = transaction.Splits
	}
	if transaction.IsLinkedReimbursement() {
		var linked []models.TransactionSplit
		if err := s.db.Where("transaction_id = ?", *transaction.ReimbursesTransactionID).Find(&linked).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(linked) > 0 {
			index[*transaction.ReimbursesTransactionID] = linked
		}
	}
	return index, nil
}

// approvedMemberIDs returns the IDs of a household's approved members in joining order.
func (s *transactionService) approvedMemberIDs(householdID string) ([]string, error) {
	var ids []string
	if err := s.db.Model(&models.Member{}).
		Where("household_id = ? AND status = ?", householdID, models.MemberStatusApproved).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func containsID(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
