// Package coverage derives species statistics from a trip's hotspot target
// lists: which hotspot is best for each species, how well the saved
// hotspots cover it, and which species are hard to find.
//
// Everything here is computed on read from the current target lists and
// never stored.
package coverage

import (
	"math"
	"sort"

	"github.com/birdplan/backend/internal/domain"
)

// Policy holds the tunable thresholds of the coverage views.
// A species is hard to find when its best frequency is below MinPercent or
// its best estimated observation count is below MinObservations.
type Policy struct {
	TopN            int
	MinPercent      float64
	MinObservations float64
}

// DefaultPolicy returns the thresholds used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{TopN: 5, MinPercent: 15, MinObservations: 10}
}

// occurrence is one species seen at one hotspot.
type occurrence struct {
	hotspotID string
	item      domain.TargetItem
	n         int
	yrN       int
}

// Compute groups every hotspot target list by species and returns the
// coverage of each species keyed by code. Lists without a HotspotID are
// trip-wide and are skipped. topN below 1 falls back to the default.
func Compute(lists []domain.TargetList, topN int) map[string]domain.SpeciesCoverage {
	if topN < 1 {
		topN = DefaultPolicy().TopN
	}

	bySpecies := make(map[string][]occurrence)
	for _, list := range lists {
		if list.HotspotID == "" {
			continue
		}
		n, yrN := nonNegative(list.N), nonNegative(list.YrN)
		for _, item := range list.Items {
			if item.Code == "" {
				continue
			}
			bySpecies[item.Code] = append(bySpecies[item.Code], occurrence{
				hotspotID: list.HotspotID,
				item:      item,
				n:         n,
				yrN:       yrN,
			})
		}
	}

	out := make(map[string]domain.SpeciesCoverage, len(bySpecies))
	for code, occ := range bySpecies {
		out[code] = summarize(code, occ, topN)
	}
	return out
}

// summarize builds the coverage of one species from all its occurrences.
func summarize(code string, occ []occurrence, topN int) domain.SpeciesCoverage {
	sort.SliceStable(occ, func(i, j int) bool {
		return occ[i].item.Percent > occ[j].item.Percent
	})

	cov := domain.SpeciesCoverage{
		Code:          code,
		Name:          occ[0].item.Name,
		BestHotspotID: occ[0].hotspotID,
		MaxPercent:    occ[0].item.Percent,
	}

	for _, o := range occ {
		cov.MaxPercentYr = math.Max(cov.MaxPercentYr, o.item.PercentYr)
		cov.MaxObservations = math.Max(cov.MaxObservations, o.item.Percent*float64(o.n)/100)
		cov.MaxObservationsYr = math.Max(cov.MaxObservationsYr, o.item.PercentYr*float64(o.yrN)/100)
	}

	top := occ
	if len(top) > topN {
		top = top[:topN]
	}
	var weighted float64
	for _, o := range top {
		weighted += o.item.Percent * float64(o.n)
		cov.TotalChecklists += o.n
	}
	if cov.TotalChecklists > 0 {
		cov.WeightedAvgPercent = round1(weighted / float64(cov.TotalChecklists))
	}
	cov.HotspotCount = len(top)

	return cov
}

// IsLowCoverage reports whether a species is hard to find on this trip.
// ok is false when the species has no coverage entry at all, which always
// counts as low coverage.
func (p Policy) IsLowCoverage(cov domain.SpeciesCoverage, ok bool) bool {
	if !ok {
		return true
	}
	return cov.MaxPercent < p.MinPercent || cov.MaxObservations < p.MinObservations
}

// Critical looks up code in coverage and applies IsLowCoverage.
func (p Policy) Critical(coverage map[string]domain.SpeciesCoverage, code string) bool {
	cov, ok := coverage[code]
	return p.IsLowCoverage(cov, ok)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
