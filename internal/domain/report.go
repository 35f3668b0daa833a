package domain

// StatusCount is one KPI entry: a status, its count, and its share of
// the dimension's non-null denominator.
type StatusCount struct {
	Status Status  `json:"status"`
	Count  int     `json:"count"`
	Rate   float64 `json:"rate"`
}

// KPIReport is the per-dimension aggregate served to the presentation
// layer. Denominator excludes StatusNone records; the sum of Counts
// always equals Denominator.
type KPIReport struct {
	Dimension   DimensionID   `json:"dimension"`
	Counts      []StatusCount `json:"counts"`
	Denominator int           `json:"denominator"`

	// TotalRecords is the size of the filtered slice before null-status
	// exclusion, the "Total Go Lives" card.
	TotalRecords int `json:"totalRecords"`
}

// Count returns the count for a status, 0 when absent.
func (r *KPIReport) Count(s Status) int {
	for _, c := range r.Counts {
		if c.Status == s {
			return c.Count
		}
	}
	return 0
}

// Rate returns the rate for a status, 0 when absent.
func (r *KPIReport) Rate(s Status) float64 {
	for _, c := range r.Counts {
		if c.Status == s {
			return c.Rate
		}
	}
	return 0
}

// RegionCount is one region bucket of a regional breakdown. Regions
// come from the full unfiltered dataset so a region that drops to zero
// under the current filter still renders as a zero-count option.
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// AssigneeStat is one assignee's rollup for a dimension.
type AssigneeStat struct {
	Assignee string  `json:"assignee"`
	Total    int     `json:"total"`
	Passing  int     `json:"passing"`
	PassRate float64 `json:"passRate"`
}

// ModuleBreakdown is the ARC per-module count for one status.
type ModuleBreakdown struct {
	Status  Status         `json:"status"`
	Modules map[string]int `json:"modules"`
	Total   int            `json:"total"`
}

// ScoreDistribution buckets weighted go-live-testing scores by tier.
type ScoreDistribution struct {
	Excellent        int     `json:"excellent"`
	Good             int     `json:"good"`
	NeedsImprovement int     `json:"needsImprovement"`
	Critical         int     `json:"critical"`
	AverageScore     float64 `json:"averageScore"`
}

// DisplayRow is the fixed-column projection served for drill-down
// tables. DaysToGoLive renders as "Rolled Out" for negative values.
// The csv tags drive export through csvutil.
type DisplayRow struct {
	DealershipName     string `json:"dealershipName" csv:"Dealership Name"`
	GoLiveDate         string `json:"goLiveDate" csv:"Go Live Date"`
	DaysToGoLive       string `json:"daysToGoLive" csv:"Days to Go Live"`
	ImplementationType string `json:"implementationType" csv:"Implementation Type"`
	Region             string `json:"region" csv:"Region"`
	Module             string `json:"module,omitempty" csv:"Module,omitempty"`
	Assignee           string `json:"assignee" csv:"Assignee"`
	Status             string `json:"status" csv:"Status"`
}
