package rank

import (
	"reflect"
	"testing"
)

func TestBuildLeaderboardAggregates(t *testing.T) {
	logs := []LogEntry{
		{UserID: "u1", UserName: "Alice", Points: 10},
		{UserID: "u1", UserName: "Alice", Points: 5},
		{UserID: "u2", UserName: "Bob", Points: 12},
	}
	board := BuildLeaderboard(logs, 0)
	want := []Entry{
		{Rank: 1, UserID: "u1", UserName: "Alice", Score: 15},
		{Rank: 2, UserID: "u2", UserName: "Bob", Score: 12},
	}
	if !reflect.DeepEqual(board, want) {
		t.Fatalf("got %+v want %+v", board, want)
	}
}

func TestBuildLeaderboardEmptyAndLimit(t *testing.T) {
	if board := BuildLeaderboard(nil, 0); len(board) != 0 {
		t.Fatalf("empty input must yield empty board, got %+v", board)
	}
	logs := []LogEntry{
		{UserID: "a", UserName: "A", Points: 1},
		{UserID: "b", UserName: "B", Points: 2},
		{UserID: "c", UserName: "C", Points: 3},
	}
	board := BuildLeaderboard(logs, 2)
	if len(board) != 2 || board[0].UserID != "c" || board[1].UserID != "b" {
		t.Fatalf("limit not applied: %+v", board)
	}
}

func TestBuildLeaderboardInvariants(t *testing.T) {
	logs := []LogEntry{
		{UserID: "u1", UserName: "A", Points: 7},
		{UserID: "u2", UserName: "B", Points: 7},
		{UserID: "u3", UserName: "C", Points: 9},
		{UserID: "u1", UserName: "A", Points: 2},
	}
	first := BuildLeaderboard(logs, 0)
	second := BuildLeaderboard(logs, 0)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("BuildLeaderboard must be deterministic")
	}
	for i, e := range first {
		if e.Rank != i+1 {
			t.Fatalf("rank must be sequential, entry %d has rank %d", i, e.Rank)
		}
		if i > 0 && first[i-1].Score < e.Score {
			t.Fatalf("scores must be non-increasing at %d: %+v", i, first)
		}
	}
	// Ties get distinct sequential ranks in encounter order.
	if first[0].UserID != "u1" && first[0].UserID != "u3" {
		t.Fatalf("unexpected top entry %+v", first[0])
	}
	if first[1].UserID == first[2].UserID {
		t.Fatal("tied users must keep distinct ranks")
	}
}

func TestBuildEnhancedLeaderboard(t *testing.T) {
	if board := BuildEnhancedLeaderboard(nil); len(board) != 0 {
		t.Fatalf("empty input must yield empty board, got %+v", board)
	}
	logs := []LogEntry{
		{UserID: "u1", UserName: "A", Points: 40},
		{UserID: "u2", UserName: "B", Points: 30},
		{UserID: "u3", UserName: "C", Points: 20},
		{UserID: "u4", UserName: "D", Points: 10},
	}
	board := BuildEnhancedLeaderboard(logs)
	medals := []string{MedalGold, MedalSilver, MedalBronze, ""}
	percents := []float64{100, 75, 50, 25}
	for i, e := range board {
		if e.Medal != medals[i] {
			t.Fatalf("rank %d medal %q want %q", e.Rank, e.Medal, medals[i])
		}
		if e.PercentOfTop != percents[i] {
			t.Fatalf("rank %d percentOfTop %v want %v", e.Rank, e.PercentOfTop, percents[i])
		}
	}
}

func TestCalculateRank(t *testing.T) {
	counts := []UserCount{
		{UserID: "u1", Count: 5},
		{UserID: "u2", Count: 9},
		{UserID: "u3", Count: 2},
	}
	if got := CalculateRank("u2", counts); got != 1 {
		t.Fatalf("u2 rank %d", got)
	}
	if got := CalculateRank("u3", counts); got != 3 {
		t.Fatalf("u3 rank %d", got)
	}
	if got := CalculateRank("missing-id", counts); got != 0 {
		t.Fatalf("missing user must rank 0, got %d", got)
	}
	if got := CalculateRank("u1", nil); got != 0 {
		t.Fatalf("empty counts must rank 0, got %d", got)
	}
	// Input must not be mutated by the sort.
	if counts[0].UserID != "u1" || counts[1].UserID != "u2" {
		t.Fatalf("input slice mutated: %+v", counts)
	}
}

func TestCalculateRankWithTies(t *testing.T) {
	counts := []UserCount{
		{UserID: "u1", Count: 9},
		{UserID: "u2", Count: 9},
		{UserID: "u3", Count: 4},
		{UserID: "u4", Count: 1},
	}
	if got := CalculateRankWithTies("u1", counts); got != 1 {
		t.Fatalf("u1 rank %d", got)
	}
	if got := CalculateRankWithTies("u2", counts); got != 1 {
		t.Fatalf("tied u2 must share rank 1, got %d", got)
	}
	if got := CalculateRankWithTies("u3", counts); got != 3 {
		t.Fatalf("u3 rank %d want 3", got)
	}
	if got := CalculateRankWithTies("ghost", counts); got != 0 {
		t.Fatalf("missing user must rank 0, got %d", got)
	}
}

func TestMedals(t *testing.T) {
	wantTypes := map[int]string{1: MedalGold, 2: MedalSilver, 3: MedalBronze, 4: "", 0: "", -1: ""}
	for rank, want := range wantTypes {
		if got := MedalType(rank); got != want {
			t.Fatalf("MedalType(%d) = %q want %q", rank, got, want)
		}
	}
	if MedalEmoji(1) == "" || MedalEmoji(2) == "" || MedalEmoji(3) == "" {
		t.Fatal("podium ranks need emoji")
	}
	if MedalEmoji(4) != "" || MedalEmoji(0) != "" {
		t.Fatal("non-podium ranks must map to empty string")
	}
}

func TestScoreGaps(t *testing.T) {
	if gaps := ScoreGaps(nil); len(gaps) != 0 {
		t.Fatalf("empty board gaps %v", gaps)
	}
	if gaps := ScoreGaps([]Entry{{Rank: 1, Score: 10}}); len(gaps) != 0 {
		t.Fatalf("singleton board gaps %v", gaps)
	}
	board := []Entry{
		{Rank: 1, Score: 100},
		{Rank: 2, Score: 80},
		{Rank: 3, Score: 60},
	}
	if gaps := ScoreGaps(board); !reflect.DeepEqual(gaps, []float64{20, 20}) {
		t.Fatalf("gaps %v", gaps)
	}
}

func TestPointsToNextRank(t *testing.T) {
	board := []Entry{
		{Rank: 1, UserID: "u1", Score: 100},
		{Rank: 2, UserID: "u2", Score: 80},
		{Rank: 3, UserID: "u3", Score: 60},
	}
	if got := PointsToNextRank("u2", board); got != 21 {
		t.Fatalf("u2 needs %v points, want 21", got)
	}
	if got := PointsToNextRank("u1", board); got != 0 {
		t.Fatalf("rank 1 needs %v, want 0", got)
	}
	if got := PointsToNextRank("ghost", board); got != 0 {
		t.Fatalf("missing user needs %v, want 0", got)
	}
}

func TestPercentile(t *testing.T) {
	if got := Percentile(10, nil); got != 0 {
		t.Fatalf("empty scores percentile %v", got)
	}
	if got := Percentile(10, []float64{10}); got != 0 {
		t.Fatalf("singleton percentile %v", got)
	}
	scores := []float64{10, 20, 30, 40}
	if got := Percentile(30, scores); got != 50 {
		t.Fatalf("percentile %v want 50", got)
	}
	if got := Percentile(45, scores); got != 100 {
		t.Fatalf("percentile %v want 100", got)
	}
}

func TestRankMovement(t *testing.T) {
	if got := RankMovement(5, 2); got != 3 {
		t.Fatalf("movement %d", got)
	}
	cases := map[int]string{3: MovementUp, -2: MovementDown, 0: MovementSame}
	for movement, want := range cases {
		if got := MovementIndicator(movement); got != want {
			t.Fatalf("MovementIndicator(%d) = %q want %q", movement, got, want)
		}
	}
}
