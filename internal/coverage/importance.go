package coverage

import (
	"sort"

	"github.com/birdplan/backend/internal/domain"
)

// Importance flags one species at one hotspot.
type Importance struct {
	IsBestAtThisHotspot bool `json:"isBestAtThisHotspot"`
	IsCritical          bool `json:"isCritical"`
}

// HotspotImportance returns, for every species on the hotspot's list,
// whether this hotspot is its best location and whether it is hard to find.
func HotspotImportance(list domain.TargetList, coverage map[string]domain.SpeciesCoverage, policy Policy) map[string]Importance {
	out := make(map[string]Importance, len(list.Items))
	for _, item := range list.Items {
		cov, ok := coverage[item.Code]
		out[item.Code] = Importance{
			IsBestAtThisHotspot: ok && list.HotspotID != "" && cov.BestHotspotID == list.HotspotID,
			IsCritical:          policy.IsLowCoverage(cov, ok),
		}
	}
	return out
}

// BestDayPredicate decides whether a day's best frequency for a species is
// meaningfully better than the best frequency on any other day.
// otherDaysBest is 0 when no other day visits a hotspot with the species.
type BestDayPredicate func(dayBest, otherDaysBest float64) bool

// DefaultBestDayPredicate accepts a day only when it beats every other day.
func DefaultBestDayPredicate(dayBest, otherDaysBest float64) bool {
	return dayBest > otherDaysBest
}

// KeyTarget is a species worth calling out on one day of the itinerary.
type KeyTarget struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	HotspotID  string  `json:"hotspotId"`
	Percent    float64 `json:"percent"`
	IsBestDay  bool    `json:"isBestDay"`
	IsCritical bool    `json:"isCritical"`
}

// dayBest is the best occurrence of one species among one day's hotspots.
type dayBest struct {
	item      domain.TargetItem
	hotspotID string
}

// DayKeyTargets lists the species to highlight for the day with dayID.
//
// Each species is called out at most once across the itinerary: only at the
// visited hotspot with its highest frequency, and only on the first day that
// visits it. Ties go to the earlier day and the earlier stop. On that day the
// species is kept when the day is its best opportunity according to better,
// or when it is hard to find across the whole trip. Species on lifeList are
// skipped. The result is sorted by species name.
func DayKeyTargets(
	trip *domain.Trip,
	lists []domain.TargetList,
	dayID string,
	coverage map[string]domain.SpeciesCoverage,
	policy Policy,
	lifeList []string,
	better BestDayPredicate,
) []KeyTarget {
	if trip == nil {
		return []KeyTarget{}
	}
	if better == nil {
		better = DefaultBestDayPredicate
	}

	byHotspot := make(map[string]domain.TargetList, len(lists))
	for _, l := range lists {
		if l.HotspotID != "" {
			byHotspot[l.HotspotID] = l
		}
	}
	seen := make(map[string]bool, len(lifeList))
	for _, code := range lifeList {
		seen[code] = true
	}

	target := -1
	perDay := make([]map[string]dayBest, len(trip.Itinerary))
	var order []string
	for i, day := range trip.Itinerary {
		if day.ID == dayID {
			target = i
		}
		best, codes := bestPerSpecies(day, byHotspot)
		perDay[i] = best
		if day.ID == dayID {
			order = codes
		}
	}
	if target < 0 {
		return []KeyTarget{}
	}
	owner := owningDays(perDay)

	out := []KeyTarget{}
	for _, code := range order {
		if seen[code] {
			continue
		}
		if owner[code] != target {
			continue
		}
		here := perDay[target][code]

		var others float64
		for i, best := range perDay {
			if i == target {
				continue
			}
			if b, ok := best[code]; ok && b.item.Percent > others {
				others = b.item.Percent
			}
		}

		isBestDay := better(here.item.Percent, others)
		isCritical := policy.Critical(coverage, code)
		if !isBestDay && !isCritical {
			continue
		}
		out = append(out, KeyTarget{
			Code:       code,
			Name:       here.item.Name,
			HotspotID:  here.hotspotID,
			Percent:    here.item.Percent,
			IsBestDay:  isBestDay,
			IsCritical: isCritical,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// owningDays maps each species to the index of the day holding its single
// best visited hotspot. Strictly greater wins, so the first day keeps ties.
func owningDays(perDay []map[string]dayBest) map[string]int {
	owner := make(map[string]int)
	top := make(map[string]float64)
	for i, best := range perDay {
		for code, b := range best {
			if p, ok := top[code]; !ok || b.item.Percent > p {
				top[code] = b.item.Percent
				owner[code] = i
			}
		}
	}
	return owner
}

// bestPerSpecies finds, for one day, the hotspot with the highest frequency
// of each species. codes lists species in first-seen order.
func bestPerSpecies(day domain.Day, byHotspot map[string]domain.TargetList) (map[string]dayBest, []string) {
	best := make(map[string]dayBest)
	var codes []string
	visited := make(map[string]bool)
	for _, s := range day.Locations {
		if s.Type != domain.StopHotspot || visited[s.LocationID] {
			continue
		}
		visited[s.LocationID] = true
		list, ok := byHotspot[s.LocationID]
		if !ok {
			continue
		}
		for _, item := range list.Items {
			cur, ok := best[item.Code]
			if !ok {
				codes = append(codes, item.Code)
			}
			if !ok || item.Percent > cur.item.Percent {
				best[item.Code] = dayBest{item: item, hotspotID: s.LocationID}
			}
		}
	}
	return best, codes
}
