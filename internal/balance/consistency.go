package balance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hearth/internal/models"
	"hearth/internal/money"
)

// WarningKind classifies a consistency warning.
type WarningKind string

const (
	// WarningZeroSum means the computed balances do not sum to zero.
	WarningZeroSum WarningKind = "zero_sum"
	// WarningSnapshotMismatch means a computed balance disagrees with the persisted one.
	WarningSnapshotMismatch WarningKind = "snapshot_mismatch"
)

// Warning describes a discrepancy found while reconciling balances. Warnings
// are informational; nothing is corrected automatically.
type Warning struct {
	Kind       WarningKind     `json:"kind"`
	MemberID   string          `json:"member_id,omitempty"`
	Computed   decimal.Decimal `json:"computed"`
	Snapshot   decimal.Decimal `json:"snapshot"`
	Difference decimal.Decimal `json:"difference"`
}

func (w Warning) String() string {
	if w.Kind == WarningZeroSum {
		return fmt.Sprintf("balances sum to %s instead of zero", w.Computed.StringFixed(4))
	}
	return fmt.Sprintf("member %s: computed %s, snapshot %s (diff %s)",
		w.MemberID, w.Computed.StringFixed(2), w.Snapshot.StringFixed(2), w.Difference.StringFixed(2))
}

// CheckConsistency compares computed balances with the persisted snapshot.
// Members missing on either side count as zero there. Differences above
// money.ReconcileTolerance() produce a warning, as does a non-zero total.
// Warnings come out in a deterministic order: zero-sum first, then members
// by ID.
func CheckConsistency(computed Balances, snapshot []models.MemberBalance) []Warning {
	var warnings []Warning

	if total := computed.Total(); !money.ApproxEqual(total, decimal.Zero, money.ReconcileTolerance()) {
		warnings = append(warnings, Warning{
			Kind:       WarningZeroSum,
			Computed:   total,
			Snapshot:   decimal.Zero,
			Difference: total,
		})
	}

	persisted := make(Balances, len(snapshot))
	for _, row := range snapshot {
		persisted[row.MemberID] = persisted.Get(row.MemberID).Add(row.Balance)
	}

	members := make(Balances, len(computed)+len(persisted))
	for id := range computed {
		members[id] = decimal.Zero
	}
	for id := range persisted {
		members[id] = decimal.Zero
	}

	for _, id := range members.MemberIDs() {
		c, p := computed.Get(id), persisted.Get(id)
		if money.ApproxEqual(c, p, money.ReconcileTolerance()) {
			continue
		}
		warnings = append(warnings, Warning{
			Kind:       WarningSnapshotMismatch,
			MemberID:   id,
			Computed:   c,
			Snapshot:   p,
			Difference: c.Sub(p),
		})
	}

	return warnings
}
