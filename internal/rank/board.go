// Package rank aggregates behavior log points into ranked standings and
// derives the KPI arithmetic used by the scoreboard. All functions are pure
// and deterministic; "no result" is signalled with zero values, never errors.
package rank

import (
	"math"
	"sort"
)

// LogEntry is one scored behavior occurrence. Avatar is empty when the user
// has not set one.
type LogEntry struct {
	UserID   string  `json:"userId"`
	UserName string  `json:"userName"`
	Avatar   string  `json:"avatar,omitempty"`
	Points   float64 `json:"points"`
}

// Entry is one row of a computed leaderboard. Medal and PercentOfTop are
// only populated by BuildEnhancedLeaderboard.
type Entry struct {
	Rank         int     `json:"rank"`
	UserID       string  `json:"userId"`
	UserName     string  `json:"userName"`
	Avatar       string  `json:"avatar,omitempty"`
	Score        float64 `json:"score"`
	Medal        string  `json:"medal,omitempty"`
	PercentOfTop float64 `json:"percentOfTop,omitempty"`
}

// UserCount pairs a user with an occurrence count for rank lookups.
type UserCount struct {
	UserID string  `json:"userId"`
	Count  float64 `json:"count"`
}

// Medal values.
const (
	MedalGold   = "gold"
	MedalSilver = "silver"
	MedalBronze = "bronze"
)

// Movement indicator values.
const (
	MovementUp   = "up"
	MovementDown = "down"
	MovementSame = "same"
)

// BuildLeaderboard groups logs by user, sums points, and returns entries
// sorted by descending score with 1-based sequential ranks. Ties keep their
// encounter order and receive distinct ranks; see CalculateRankWithTies for
// the competition-ranking variant. A limit <= 0 returns the full board.
func BuildLeaderboard(logs []LogEntry, limit int) []Entry {
	entries := aggregate(logs)
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// BuildEnhancedLeaderboard is BuildLeaderboard plus medal and percent-of-top
// annotations. PercentOfTop is rounded to the nearest integer.
func BuildEnhancedLeaderboard(logs []LogEntry) []Entry {
	entries := BuildLeaderboard(logs, 0)
	if len(entries) == 0 {
		return entries
	}
	top := entries[0].Score
	for i := range entries {
		entries[i].Medal = MedalType(entries[i].Rank)
		if top != 0 {
			entries[i].PercentOfTop = math.Round(100 * entries[i].Score / top)
		}
	}
	return entries
}

func aggregate(logs []LogEntry) []Entry {
	index := make(map[string]int, len(logs))
	entries := make([]Entry, 0, len(logs))
	for _, log := range logs {
		i, ok := index[log.UserID]
		if !ok {
			i = len(entries)
			index[log.UserID] = i
			entries = append(entries, Entry{
				UserID:   log.UserID,
				UserName: log.UserName,
				Avatar:   log.Avatar,
			})
		}
		entries[i].Score += log.Points
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// CalculateRank returns the 1-based position of userID when counts are
// sorted by descending count, or 0 when the user is not present. The input
// slice is not mutated.
func CalculateRank(userID string, counts []UserCount) int {
	sorted := make([]UserCount, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	for i, c := range sorted {
		if c.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// CalculateRankWithTies returns the competition rank of userID: 1 plus the
// number of entries with a strictly greater count, so equal counts share a
// rank. Returns 0 when the user is not present.
func CalculateRankWithTies(userID string, counts []UserCount) int {
	var own float64
	found := false
	for _, c := range counts {
		if c.UserID == userID {
			own = c.Count
			found = true
			break
		}
	}
	if !found {
		return 0
	}
	rank := 1
	for _, c := range counts {
		if c.Count > own {
			rank++
		}
	}
	return rank
}

// MedalType maps ranks 1..3 to medal names and everything else to "".
func MedalType(rank int) string {
	switch rank {
	case 1:
		return MedalGold
	case 2:
		return MedalSilver
	case 3:
		return MedalBronze
	}
	return ""
}

// MedalEmoji maps ranks 1..3 to medal glyphs and everything else to "".
func MedalEmoji(rank int) string {
	switch rank {
	case 1:
		return "\U0001F947"
	case 2:
		return "\U0001F948"
	case 3:
		return "\U0001F949"
	}
	return ""
}

// ScoreGaps returns the score difference between each entry and the
// next-lower rank for a board sorted by ascending rank. Length is n-1;
// empty or singleton boards yield an empty slice. Sort order is the
// caller's contract.
func ScoreGaps(entries []Entry) []float64 {
	if len(entries) < 2 {
		return []float64{}
	}
	gaps := make([]float64, 0, len(entries)-1)
	for i := 0; i < len(entries)-1; i++ {
		gaps = append(gaps, entries[i].Score-entries[i+1].Score)
	}
	return gaps
}

// PointsToNextRank returns the minimum points needed to overtake the
// next-higher rank by exactly one point. Rank-1 users and unknown users
// get 0. The board must be sorted by ascending rank.
func PointsToNextRank(userID string, entries []Entry) float64 {
	for i, e := range entries {
		if e.UserID != userID {
			continue
		}
		if i == 0 {
			return 0
		}
		return entries[i-1].Score - e.Score + 1
	}
	return 0
}

// Percentile returns the percentage of scores strictly below the given
// score, rounded to the nearest integer. Boards with fewer than two scores
// yield 0.
func Percentile(score float64, allScores []float64) float64 {
	if len(allScores) < 2 {
		return 0
	}
	below := 0
	for _, s := range allScores {
		if s < score {
			below++
		}
	}
	return math.Round(100 * float64(below) / float64(len(allScores)))
}

// RankMovement returns previousRank - currentRank; positive means the user
// moved up the board.
func RankMovement(previousRank, currentRank int) int {
	return previousRank - currentRank
}

// MovementIndicator classifies a rank movement by sign.
func MovementIndicator(movement int) string {
	switch {
	case movement > 0:
		return MovementUp
	case movement < 0:
		return MovementDown
	}
	return MovementSame
}
