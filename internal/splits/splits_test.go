package splits

import (
	"testing"

	"github.com/shopspring/decimal"

	"hearth/internal/balance"
	"hearth/internal/models"
	"hearth/internal/money"
	"hearth/internal/testutil"
)

var members = []string{"m1", "m2", "m3"}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func byMember(lines []models.TransactionSplit) map[string]models.TransactionSplit {
	out := make(map[string]models.TransactionSplit, len(lines))
	for _, l := range lines {
		out[l.MemberID] = l
	}
	return out
}

func TestBuild(t *testing.T) {
	t.Run("equal_single", func(t *testing.T) {
		lines, err := Build(Request{
			Amount: d("100"), SplitType: models.SplitTypeEqual, PaidByType: models.PaidByTypeSingle,
			PaidByMemberID: "m2", Members: members,
		})
		testutil.AssertNoError(t, err)
		got := byMember(lines)
		if !got["m2"].PaidAmount.Equal(d("100")) || !got["m1"].PaidAmount.IsZero() {
			t.Errorf("expected m2 to have paid everything, got %+v", got)
		}
		if !got["m1"].OwedAmount.Equal(d("33.34")) || !got["m3"].OwedAmount.Equal(d("33.33")) {
			t.Errorf("unexpected owed amounts: %+v", got)
		}
		testutil.AssertNoError(t, Validate(models.TransactionTypeExpense, d("100"), lines))
	})

	t.Run("equal_shared_has_no_net_transfer", func(t *testing.T) {
		lines, err := Build(Request{
			Amount: d("50"), SplitType: models.SplitTypeEqual, PaidByType: models.PaidByTypeShared, Members: members,
		})
		testutil.AssertNoError(t, err)
		if impacts := balance.PerMemberImpacts(lines); len(impacts) != 0 {
			t.Errorf("expected no impacts, got %v", impacts)
		}
	})

	t.Run("payer_only", func(t *testing.T) {
		lines, err := Build(Request{
			Amount: d("12.50"), SplitType: models.SplitTypePayerOnly, PaidByType: models.PaidByTypeSingle,
			PaidByMemberID: "m1", Members: members,
		})
		testutil.AssertNoError(t, err)
		got := byMember(lines)
		if !got["m1"].OwedPercentage.Decimal.Equal(money.Hundred()) || !got["m2"].OwedPercentage.Decimal.IsZero() {
			t.Errorf("expected m1 to owe 100%%, got %+v", got)
		}
		if impacts := balance.PerMemberImpacts(lines); len(impacts) != 0 {
			t.Errorf("expected no impacts, got %v", impacts)
		}
	})

	t.Run("payer_only_rejects_shared", func(t *testing.T) {
		_, err := Build(Request{
			Amount: d("10"), SplitType: models.SplitTypePayerOnly, PaidByType: models.PaidByTypeShared, Members: members,
		})
		testutil.AssertAppError(t, err, "INVALID_SPLIT")
	})

	t.Run("member_only_single", func(t *testing.T) {
		lines, err := Build(Request{
			Amount: d("30"), SplitType: models.SplitTypeMemberOnly, PaidByType: models.PaidByTypeSingle,
			PaidByMemberID: "m1", SplitMemberID: "m3", Members: members,
		})
		testutil.AssertNoError(t, err)
		impacts := balance.PerMemberImpacts(lines)
		if len(impacts) != 2 || impacts[0].MemberID != "m1" || !impacts[0].Net.Equal(d("30")) {
			t.Errorf("expected m1 +30 and m3 -30, got %v", impacts)
		}
	})

	t.Run("member_only_shared", func(t *testing.T) {
		lines, err := Build(Request{
			Amount: d("30"), SplitType: models.SplitTypeMemberOnly, PaidByType: models.PaidByTypeShared,
			SplitMemberID: "m3", Members: members,
		})
		testutil.AssertNoError(t, err)
		got := byMember(lines)
		if !got["m3"].Net().Equal(d("-20")) || !got["m1"].Net().Equal(d("10")) {
			t.Errorf("unexpected nets: %+v", got)
		}
	})

	t.Run("member_only_requires_member", func(t *testing.T) {
		_, err := Build(Request{
			Amount: d("30"), SplitType: models.SplitTypeMemberOnly, PaidByType: models.PaidByTypeSingle,
			PaidByMemberID: "m1", SplitMemberID: "stranger", Members: members,
		})
		testutil.AssertAppError(t, err, "INVALID_SPLIT")
	})

	t.Run("custom_computes_percentages", func(t *testing.T) {
		lines, err := Build(Request{
			Amount: d("90"), SplitType: models.SplitTypeCustom, PaidByType: models.PaidByTypeSingle,
			PaidByMemberID: "m1", Members: members,
			Custom: []Share{
				{MemberID: "m1", Paid: d("90"), Owed: d("30")},
				{MemberID: "m2", Paid: d("0"), Owed: d("60")},
			},
		})
		testutil.AssertNoError(t, err)
		got := byMember(lines)
		if !got["m2"].OwedPercentage.Decimal.Equal(d("66.6667")) {
			t.Errorf("expected m2 to owe 66.6667%%, got %s", got["m2"].OwedPercentage.Decimal)
		}
		if !money.Sum(got["m1"].OwedPercentage.Decimal, got["m2"].OwedPercentage.Decimal).Equal(money.Hundred()) {
			t.Error("expected percentages to sum to 100")
		}
	})

	t.Run("custom_explicit_percentages", func(t *testing.T) {
		p60, p40 := d("60"), d("40")
		lines, err := Build(Request{
			Amount: d("100"), SplitType: models.SplitTypeCustom, PaidByType: models.PaidByTypeShared, Members: members,
			Custom: []Share{
				{MemberID: "m1", Paid: d("50"), Owed: d("60"), OwedPercentage: &p60},
				{MemberID: "m2", Paid: d("50"), Owed: d("40"), OwedPercentage: &p40},
			},
		})
		testutil.AssertNoError(t, err)
		if !byMember(lines)["m1"].OwedPercentage.Decimal.Equal(p60) {
			t.Error("expected explicit percentage to be kept")
		}
	})

	t.Run("custom_percentages_must_match_owed", func(t *testing.T) {
		p90, p10 := d("90"), d("10")
		_, err := Build(Request{
			Amount: d("100"), SplitType: models.SplitTypeCustom, PaidByType: models.PaidByTypeShared, Members: members,
			Custom: []Share{
				{MemberID: "m1", Paid: d("50"), Owed: d("50"), OwedPercentage: &p90},
				{MemberID: "m2", Paid: d("50"), Owed: d("50"), OwedPercentage: &p10},
			},
		})
		testutil.AssertAppError(t, err, "INVALID_SPLIT")
	})

	t.Run("custom_partial_percentages_fill_the_rest", func(t *testing.T) {
		third := d("33.3333")
		lines, err := Build(Request{
			Amount: d("90"), SplitType: models.SplitTypeCustom, PaidByType: models.PaidByTypeSingle,
			PaidByMemberID: "m1", Members: members,
			Custom: []Share{
				{MemberID: "m1", Paid: d("90"), Owed: d("30"), OwedPercentage: &third},
				{MemberID: "m2", Paid: d("0"), Owed: d("60")},
			},
		})
		testutil.AssertNoError(t, err)
		if !byMember(lines)["m2"].OwedPercentage.Decimal.Equal(d("66.6667")) {
			t.Errorf("expected m2 to owe 66.6667%%, got %s", byMember(lines)["m2"].OwedPercentage.Decimal)
		}
	})

	t.Run("custom_sums_must_match", func(t *testing.T) {
		_, err := Build(Request{
			Amount: d("100"), SplitType: models.SplitTypeCustom, PaidByType: models.PaidByTypeShared, Members: members,
			Custom: []Share{
				{MemberID: "m1", Paid: d("50"), Owed: d("50")},
				{MemberID: "m2", Paid: d("40"), Owed: d("50")},
			},
		})
		testutil.AssertAppError(t, err, "INVALID_SPLIT")
	})

	t.Run("custom_rejects_duplicates_and_strangers", func(t *testing.T) {
		_, err := Build(Request{
			Amount: d("10"), SplitType: models.SplitTypeCustom, PaidByType: models.PaidByTypeShared, Members: members,
			Custom: []Share{{MemberID: "m1", Paid: d("5"), Owed: d("5")}, {MemberID: "m1", Paid: d("5"), Owed: d("5")}},
		})
		testutil.AssertAppError(t, err, "INVALID_SPLIT")

		_, err = Build(Request{
			Amount: d("10"), SplitType: models.SplitTypeCustom, PaidByType: models.PaidByTypeShared, Members: members,
			Custom: []Share{{MemberID: "x", Paid: d("10"), Owed: d("10")}},
		})
		testutil.AssertAppError(t, err, "INVALID_SPLIT")
	})

	t.Run("rejects_bad_input", func(t *testing.T) {
		tests := []struct {
			name string
			req  Request
		}{
			{"zero_amount", Request{Amount: d("0"), SplitType: models.SplitTypeEqual, PaidByType: models.PaidByTypeShared, Members: members}},
			{"no_members", Request{Amount: d("10"), SplitType: models.SplitTypeEqual, PaidByType: models.PaidByTypeShared}},
			{"unknown_split_type", Request{Amount: d("10"), SplitType: "thirds", PaidByType: models.PaidByTypeShared, Members: members}},
			{"unknown_paid_by", Request{Amount: d("10"), SplitType: models.SplitTypeEqual, PaidByType: "everyone", Members: members}},
			{"payer_not_member", Request{Amount: d("10"), SplitType: models.SplitTypeEqual, PaidByType: models.PaidByTypeSingle, PaidByMemberID: "x", Members: members}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Build(tt.req)
				testutil.AssertAppError(t, err, "INVALID_SPLIT")
			})
		}
	})
}

func TestValidate(t *testing.T) {
	line := func(paid, owed string) models.TransactionSplit {
		return models.TransactionSplit{PaidAmount: d(paid), OwedAmount: d(owed)}
	}

	t.Run("within_tolerance", func(t *testing.T) {
		lines := []models.TransactionSplit{line("50.0005", "50"), line("50", "50.0004")}
		testutil.AssertNoError(t, Validate(models.TransactionTypeExpense, d("100"), lines))
	})

	t.Run("negative_amount", func(t *testing.T) {
		lines := []models.TransactionSplit{line("110", "100"), line("-10", "0")}
		testutil.AssertAppError(t, Validate(models.TransactionTypeExpense, d("100"), lines), "INVALID_SPLIT")
	})

	t.Run("percentages_must_sum_to_hundred", func(t *testing.T) {
		a, b := line("100", "50"), line("0", "50")
		a.OwedPercentage = decimal.NewNullDecimal(d("50"))
		b.OwedPercentage = decimal.NewNullDecimal(d("49"))
		testutil.AssertAppError(t, Validate(models.TransactionTypeExpense, d("100"), []models.TransactionSplit{a, b}), "INVALID_SPLIT")
	})

	t.Run("settlement_skips_checks", func(t *testing.T) {
		testutil.AssertNoError(t, Validate(models.TransactionTypeSettlement, d("100"), nil))
	})
}
