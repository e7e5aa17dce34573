package domain

// TargetList holds species frequencies for one hotspot, or for the whole trip
// region when HotspotID is empty. N and YrN are the checklist counts behind
// Percent and PercentYr respectively.
type TargetList struct {
	HotspotID string       `json:"hotspotId,omitempty"`
	Items     []TargetItem `json:"items"`
	N         int          `json:"N"`
	YrN       int          `json:"yrN"`
}

// TargetItem is one species in a TargetList. Percentages are in [0,100].
type TargetItem struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Percent   float64 `json:"percent"`
	PercentYr float64 `json:"percentYr"`
}

// SpeciesCoverage is derived from all hotspot target lists of a trip.
// It is computed on read and never persisted.
type SpeciesCoverage struct {
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	BestHotspotID      string  `json:"bestHotspotId"`
	MaxPercent         float64 `json:"maxPercent"`
	MaxPercentYr       float64 `json:"maxPercentYr"`
	MaxObservations    float64 `json:"maxObservations"`
	MaxObservationsYr  float64 `json:"maxObservationsYr"`
	WeightedAvgPercent float64 `json:"weightedAvgPercent"`
	TotalChecklists    int     `json:"totalChecklists"`
	HotspotCount       int     `json:"hotspotCount"`
}
