package rank

import "testing"

func TestAverageCheck(t *testing.T) {
	if got := AverageCheck(1000, 40); got != 25 {
		t.Fatalf("average check %v", got)
	}
	if got := AverageCheck(100, 3); got != 33.33 {
		t.Fatalf("average check rounding %v", got)
	}
	if got := AverageCheck(1000, 0); got != 0 {
		t.Fatalf("zero covers must yield 0, got %v", got)
	}
	if got := AverageCheck(1000, -5); got != 0 {
		t.Fatalf("negative covers must yield 0, got %v", got)
	}
}

func TestTrendAndVariance(t *testing.T) {
	if got := Trend(110, 100); got != 10 {
		t.Fatalf("trend %v", got)
	}
	if got := Trend(90, 100); got != -10 {
		t.Fatalf("trend %v", got)
	}
	if got := Trend(50, 0); got != 0 {
		t.Fatalf("zero previous must yield 0, got %v", got)
	}

	if got := Variance(11000, 10000); got != 10 {
		t.Fatalf("variance %v want 10", got)
	}
	if got := Variance(9000, 10000); got != -10 {
		t.Fatalf("variance %v want -10", got)
	}
	if got := Variance(5000, 0); got != 0 {
		t.Fatalf("zero budget must yield 0, got %v", got)
	}
}

func TestCostPercentUncapped(t *testing.T) {
	if got := CostPercent(30, 100); got != 30 {
		t.Fatalf("cost percent %v", got)
	}
	if got := CostPercent(150, 100); got != 150 {
		t.Fatalf("cost above revenue must report >100, got %v", got)
	}
	if got := CostPercent(30, 0); got != 0 {
		t.Fatalf("zero revenue must yield 0, got %v", got)
	}
}

func TestGrossMargin(t *testing.T) {
	if got := GrossMargin(100, 30); got != 70 {
		t.Fatalf("margin %v", got)
	}
	if got := GrossMargin(100, 130); got != -30 {
		t.Fatalf("margin may be negative, got %v", got)
	}
	if got := GrossMargin(0, 30); got != 0 {
		t.Fatalf("zero revenue must yield 0, got %v", got)
	}
}

func TestCAGR(t *testing.T) {
	if got := CAGR(100, 121, 2); got != 10 {
		t.Fatalf("cagr %v want 10", got)
	}
	if got := CAGR(0, 121, 2); got != 0 {
		t.Fatalf("zero start must yield 0, got %v", got)
	}
	if got := CAGR(-10, 121, 2); got != 0 {
		t.Fatalf("negative start must yield 0, got %v", got)
	}
	if got := CAGR(100, 121, 0); got != 0 {
		t.Fatalf("zero years must yield 0, got %v", got)
	}
}

func TestSimpleRatios(t *testing.T) {
	if got := RevenuePerEmployee(120000, 12); got != 10000 {
		t.Fatalf("revenue per employee %v", got)
	}
	if got := RevenuePerEmployee(120000, 0); got != 0 {
		t.Fatalf("zero employees must yield 0, got %v", got)
	}
	if got := AverageTransaction(500, 20); got != 25 {
		t.Fatalf("average transaction %v", got)
	}
	if got := AverageTransaction(500, 0); got != 0 {
		t.Fatalf("zero count must yield 0, got %v", got)
	}
}

func TestProgressAndRemaining(t *testing.T) {
	if got := Progress(50, 200); got != 25 {
		t.Fatalf("progress %v", got)
	}
	if got := Progress(250, 200); got != 125 {
		t.Fatalf("progress must be uncapped, got %v", got)
	}
	if got := Progress(50, 0); got != 0 {
		t.Fatalf("zero target must yield 0, got %v", got)
	}

	if got := Remaining(50, 200); got != 150 {
		t.Fatalf("remaining %v", got)
	}
	if got := Remaining(250, 200); got != 0 {
		t.Fatalf("remaining never negative, got %v", got)
	}
}

func TestDailyRunRate(t *testing.T) {
	if got := DailyRunRate(400, 1000, 30); got != 20 {
		t.Fatalf("run rate %v", got)
	}
	if got := DailyRunRate(400, 1000, 0); got != 0 {
		t.Fatalf("no days remaining must yield 0, got %v", got)
	}
	if got := DailyRunRate(1000, 1000, 30); got != 0 {
		t.Fatalf("target reached must yield 0, got %v", got)
	}
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(100, 5, 10)
	if meta.Total != 100 || meta.Page != 5 || meta.Limit != 10 || meta.TotalPages != 10 {
		t.Fatalf("meta %+v", meta)
	}
	if !meta.HasNext || !meta.HasPrev {
		t.Fatalf("page 5 of 10 has both neighbours, got %+v", meta)
	}

	meta = NewPaginationMeta(0, 1, 10)
	if meta.TotalPages != 0 || meta.HasNext || meta.HasPrev {
		t.Fatalf("empty listing meta %+v", meta)
	}

	meta = NewPaginationMeta(95, 10, 10)
	if meta.TotalPages != 10 || meta.HasNext || !meta.HasPrev {
		t.Fatalf("last page meta %+v", meta)
	}
}

func TestGameState(t *testing.T) {
	if got := GameState(600000, 1000000, 182, 365); got != GameWinning {
		t.Fatalf("game state %q want winning", got)
	}
	if got := GameState(400000, 1000000, 182, 365); got != GameLosing {
		t.Fatalf("game state %q want losing", got)
	}
	if got := GameState(1000000, 1000000, 180, 365); got != GameCelebrating {
		t.Fatalf("game state %q want celebrating", got)
	}
	if got := GameState(500000, 1000000, 182, 365); got != GameNeutral {
		t.Fatalf("game state %q want neutral", got)
	}
	if got := GameState(500000, 0, 182, 365); got != GameNeutral {
		t.Fatalf("zero target must be neutral, got %q", got)
	}
}
