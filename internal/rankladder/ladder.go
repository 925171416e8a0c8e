// Package rankladder turns the ranks table into the ordered compensation
// ladder and evaluates a profile's progress along it.
package rankladder

import (
	"math"
	"sort"

	"directsales/internal/domain"
)

const (
	// HighestRankLabel is shown when there is no rung above the current rank.
	HighestRankLabel = "Highest Rank"
	// PendingLabel is shown for profiles that have no rank yet.
	PendingLabel = "Loading..."
)

// Ladder is the ordered list of ranks, lowest PV threshold first.
type Ladder struct {
	rungs []domain.Rank
}

// New copies ranks and sorts them by ThresholdPV ascending. Ties keep the
// order they arrived in.
func New(ranks []domain.Rank) Ladder {
	rungs := make([]domain.Rank, len(ranks))
	copy(rungs, ranks)
	sort.SliceStable(rungs, func(i, j int) bool {
		return rungs[i].ThresholdPV < rungs[j].ThresholdPV
	})
	return Ladder{rungs: rungs}
}

// Ranks returns the rungs in ladder order.
func (l Ladder) Ranks() []domain.Rank {
	out := make([]domain.Rank, len(l.rungs))
	copy(out, l.rungs)
	return out
}

func (l Ladder) Len() int { return len(l.rungs) }

// IndexOf returns the position of the rank with id, or -1.
func (l Ladder) IndexOf(id string) int {
	for i, r := range l.rungs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (l Ladder) indexOfName(name string) int {
	for i, r := range l.rungs {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// Progress describes how far a profile is toward the next rung.
type Progress struct {
	Percent       int    `json:"percent"`
	NextRankName  string `json:"nextRankName"`
	NextThreshold int64  `json:"nextThreshold,omitempty"`
}

// Progress locates rank by name and reports personalVolume against the PV
// threshold of the rung above it. It never fails: a missing rank yields 0,
// an unconfigured rank (own threshold 0) yields 0, and a rank at the top or
// outside the ladder yields 100.
func (l Ladder) Progress(rank *domain.Rank, personalVolume int64) Progress {
	if rank == nil {
		return Progress{Percent: 0, NextRankName: PendingLabel}
	}
	idx := l.indexOfName(rank.Name)
	if rank.ThresholdPV == 0 {
		label := HighestRankLabel
		if idx >= 0 && idx < len(l.rungs)-1 {
			label = l.rungs[idx+1].Name
		}
		return Progress{Percent: 0, NextRankName: label}
	}
	if idx < 0 || idx == len(l.rungs)-1 {
		return Progress{Percent: 100, NextRankName: HighestRankLabel}
	}

	next := l.rungs[idx+1]
	if next.ThresholdPV <= 0 {
		return Progress{Percent: 100, NextRankName: next.Name}
	}
	pv := personalVolume
	if pv < 0 {
		pv = 0
	}
	pct := math.Round(100 * float64(pv) / float64(next.ThresholdPV))
	pct = math.Floor(math.Min(100, pct))
	return Progress{
		Percent:       int(pct),
		NextRankName:  next.Name,
		NextThreshold: next.ThresholdPV,
	}
}

// Qualify returns the highest rung whose PV and GV thresholds are both met,
// or nil when none is.
func (l Ladder) Qualify(personalVolume, groupVolume int64) *domain.Rank {
	var best *domain.Rank
	for i := range l.rungs {
		r := l.rungs[i]
		if personalVolume >= r.ThresholdPV && groupVolume >= r.ThresholdGV {
			best = &r
		}
	}
	return best
}

// Neighbor returns the index adjacent to idx in direction, and whether it is
// inside the ladder.
func (l Ladder) Neighbor(idx int, up bool) (int, bool) {
	if idx < 0 || idx >= len(l.rungs) {
		return 0, false
	}
	next := idx + 1
	if up {
		next = idx - 1
	}
	if next < 0 || next >= len(l.rungs) {
		return 0, false
	}
	return next, true
}
