package usecase

import (
	"math"
	"testing"
)

func ptrSeq(values ...float64) []*float64 {
	out := make([]*float64, 0, len(values))
	for i := range values {
		out = append(out, &values[i])
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRateOver_HitRateAndAverage(t *testing.T) {
	values := ptrSeq(3, 1, 4, 1, 5, 9, 2, 6)

	rate := RateOver(values, 2.5, 5)
	if rate == nil {
		t.Fatal("expected a rate, got nil")
	}
	if !almostEqual(rate.Pct, 0.625) {
		t.Fatalf("pct = %v, want 0.625", rate.Pct)
	}
	if !almostEqual(rate.Avg, 3.875) {
		t.Fatalf("avg = %v, want 3.875", rate.Avg)
	}
	if rate.Samples != 8 {
		t.Fatalf("samples = %d, want 8", rate.Samples)
	}
}

func TestRateOver_NilsExcludedFromSamples(t *testing.T) {
	values := []*float64{nil, nil, nil}
	values = append(values, ptrSeq(3, 1, 4, 1, 5, 9, 2, 6)...)

	rate := RateOver(values, 2.5, 8)
	if rate == nil {
		t.Fatal("expected a rate, got nil")
	}
	if rate.Samples != 8 {
		t.Fatalf("samples = %d, want 8", rate.Samples)
	}
	if !almostEqual(rate.Pct, 0.625) {
		t.Fatalf("pct = %v, want 0.625", rate.Pct)
	}
}

func TestRateOver_MinSampleGating(t *testing.T) {
	values := ptrSeq(4, 5, 6)
	if rate := RateOver(values, 2.5, 5); rate != nil {
		t.Fatalf("expected nil for 3 samples with minimum 5, got %+v", rate)
	}
}

func TestSelectBestRate_SmallerWindowWinsTies(t *testing.T) {
	// Both the 5-game and 10-game windows clear the line 60% of the
	// time; the smaller window must win the tie.
	values := ptrSeq(3, 3, 3, 0, 0, 3, 3, 3, 0, 0)

	best := SelectBestRate(values, []int{5, 10}, 1, 5)
	if best == nil {
		t.Fatal("expected a rate, got nil")
	}
	if !almostEqual(best.Pct, 0.6) {
		t.Fatalf("pct = %v, want 0.6", best.Pct)
	}
	if best.SampleSize != 5 {
		t.Fatalf("sample size = %d, want 5", best.SampleSize)
	}
}

func TestSelectBestRate_StrictlyGreaterSwitches(t *testing.T) {
	// Recent games miss the line, older games clear it: the wider
	// window's strictly greater pct wins.
	values := ptrSeq(0, 0, 0, 0, 0, 5, 5, 5, 5, 5)

	best := SelectBestRate(values, []int{5, 10}, 1, 5)
	if best == nil {
		t.Fatal("expected a rate, got nil")
	}
	if best.SampleSize != 10 {
		t.Fatalf("sample size = %d, want 10", best.SampleSize)
	}
	if !almostEqual(best.Pct, 0.5) {
		t.Fatalf("pct = %v, want 0.5", best.Pct)
	}
}

func TestSelectBestRate_NoQualifyingWindow(t *testing.T) {
	values := ptrSeq(3, 1)
	if best := SelectBestRate(values, []int{5, 10}, 1, 8); best != nil {
		t.Fatalf("expected nil, got %+v", best)
	}
}
