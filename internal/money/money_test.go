package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestIsEffectivelyZero(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"0.001", true},
		{"-0.001", true},
		{"0.0011", false},
		{"-0.0011", false},
		{"50", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsEffectivelyZero(d(tt.in)); got != tt.want {
				t.Errorf("IsEffectivelyZero(%s) = %v, want %v", tt.in, got, tt.want)
			}
			if got := ExceedsEpsilon(d(tt.in)); got == tt.want {
				t.Errorf("ExceedsEpsilon(%s) = %v, want %v", tt.in, got, !tt.want)
			}
		})
	}
}

func TestApproxEqual(t *testing.T) {
	if !ApproxEqual(d("10.00"), d("10.009"), ReconcileTolerance()) {
		t.Error("expected 10.00 and 10.009 to be within reconcile tolerance")
	}
	if ApproxEqual(d("10.00"), d("10.02"), ReconcileTolerance()) {
		t.Error("expected 10.00 and 10.02 to differ beyond reconcile tolerance")
	}
}

func TestSplitEvenly(t *testing.T) {
	t.Run("remainder_goes_to_first_parts", func(t *testing.T) {
		parts := SplitEvenly(d("100"), 3)
		want := []string{"33.34", "33.33", "33.33"}
		for i, w := range want {
			if !parts[i].Equal(d(w)) {
				t.Errorf("part %d = %s, want %s", i, parts[i], w)
			}
		}
	})

	t.Run("sum_is_exact", func(t *testing.T) {
		for _, amount := range []string{"0.01", "1", "99.99", "100.005", "12345.67"} {
			for n := 1; n <= 7; n++ {
				parts := SplitEvenly(d(amount), n)
				if !Sum(parts...).Equal(d(amount)) {
					t.Errorf("SplitEvenly(%s, %d) sums to %s", amount, n, Sum(parts...))
				}
			}
		}
	})

	t.Run("non_positive_count", func(t *testing.T) {
		if parts := SplitEvenly(d("10"), 0); parts != nil {
			t.Errorf("expected nil, got %v", parts)
		}
	})
}

func TestPercentages(t *testing.T) {
	t.Run("sums_to_hundred", func(t *testing.T) {
		parts := SplitEvenly(d("10"), 3)
		pcts := Percentages(parts, d("10"))
		if !Sum(pcts...).Equal(Hundred()) {
			t.Errorf("percentages sum to %s, want 100", Sum(pcts...))
		}
	})

	t.Run("zero_parts_stay_zero", func(t *testing.T) {
		pcts := Percentages([]decimal.Decimal{d("100"), d("0")}, d("100"))
		if !pcts[0].Equal(Hundred()) || !pcts[1].IsZero() {
			t.Errorf("got %v, want [100 0]", pcts)
		}
	})

	t.Run("zero_total", func(t *testing.T) {
		pcts := Percentages([]decimal.Decimal{d("0"), d("0")}, d("0"))
		for i, p := range pcts {
			if !p.IsZero() {
				t.Errorf("pct %d = %s, want 0", i, p)
			}
		}
	})
}

func TestShareOf(t *testing.T) {
	if got := ShareOf(d("40"), d("60")); !got.Equal(d("24")) {
		t.Errorf("ShareOf(40, 60) = %s, want 24", got)
	}
}

func TestTolerances(t *testing.T) {
	if !Epsilon().Equal(d("0.001")) {
		t.Errorf("expected epsilon 0.001, got %s", Epsilon())
	}
	if !ReconcileTolerance().Equal(d("0.01")) {
		t.Errorf("expected reconcile tolerance 0.01, got %s", ReconcileTolerance())
	}
	if !Hundred().Equal(d("100")) {
		t.Errorf("expected 100, got %s", Hundred())
	}
}
