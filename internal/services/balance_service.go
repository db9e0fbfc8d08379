package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hearth/internal/balance"
	apperrors "hearth/internal/errors"
	"hearth/internal/logger"
	"hearth/internal/models"
)

// balanceService recomputes household balances from scratch and remembers
// the last successful result for each household.
type balanceService struct {
	store   BalanceStore
	timeout time.Duration

	mu   sync.RWMutex
	last map[string]*BalanceReport
}

// NewBalanceService creates a new BalanceServicer. A positive timeout bounds
// each refresh.
func NewBalanceService(store BalanceStore, timeout time.Duration) BalanceServicer {
	return &balanceService{
		store:   store,
		timeout: timeout,
		last:    make(map[string]*BalanceReport),
	}
}

// Refresh loads everything a household's balances depend on, concurrently,
// and recomputes them. If any load fails nothing is recomputed and the
// previous report, if any, stays available through Last.
func (s *balanceService) Refresh(ctx context.Context, householdID string) (*BalanceReport, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		snapshot     []models.MemberBalance
		splits       []models.TransactionSplit
		transactions []models.Transaction
		members      []models.Member
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = s.store.FetchMemberBalances(gctx, householdID)
		return err
	})
	g.Go(func() error {
		var err error
		splits, err = s.store.FetchAllSplitsForHousehold(gctx, householdID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.store.FetchTransactions(gctx, householdID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.store.FetchApprovedMembers(gctx, householdID)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.ForHousehold(householdID).Warnw("balance refresh failed", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrBalanceRefreshFailed, err)
	}

	index := balance.BuildSplitIndex(splits)
	computed := balance.Aggregate(transactions, index, len(members))

	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.DisplayName
	}
	for i := range snapshot {
		snapshot[i].DisplayName = names[snapshot[i].MemberID]
	}

	report := &BalanceReport{
		HouseholdID: householdID,
		Balances:    balance.ToMemberBalances(householdID, members, computed),
		Snapshot:    snapshot,
		Warnings:    balance.CheckConsistency(computed, snapshot),
		ComputedAt:  time.Now(),
		impacting:   balance.BalanceImpactingTransactions(transactions, index, len(members)),
	}
	log := logger.ForHousehold(householdID)
	for _, w := range report.Warnings {
		log.Warnw("balance inconsistency",
			"kind", w.Kind,
			"member_id", w.MemberID,
			"computed", w.Computed.String(),
			"snapshot", w.Snapshot.String(),
			"difference", w.Difference.String(),
		)
	}

	s.mu.Lock()
	s.last[householdID] = report
	s.mu.Unlock()

	return report, nil
}

// Last returns the most recent successful report for a household.
func (s *balanceService) Last(householdID string) (*BalanceReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.last[householdID]
	return report, ok
}

// ImpactingTransactions refreshes the household and returns its
// balance-impacting transactions, newest first, truncated to limit. When the
// refresh fails the last successful report is used and the result is marked
// stale.
func (s *balanceService) ImpactingTransactions(ctx context.Context, householdID string, limit int) (*ImpactingTransactions, error) {
	stale := false
	report, err := s.Refresh(ctx, householdID)
	if err != nil {
		last, ok := s.Last(householdID)
		if !ok {
			return nil, err
		}
		report, stale = last, true
	}
	head, more := balance.Preview(report.impacting, limit)
	if head == nil {
		head = []models.Transaction{}
	}
	return &ImpactingTransactions{
		Transactions: head,
		More:         more,
		Total:        len(report.impacting),
		Stale:        stale,
	}, nil
}
