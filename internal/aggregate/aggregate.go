// Package aggregate computes the KPI payloads served to the
// presentation layer: per-dimension status counts and rates, regional
// breakdowns, assignee rollups, ARC module breakdowns, and the
// go-live-testing score distribution.
package aggregate

import (
	"sort"

	"github.com/Gautam1401/config-operations-hub/internal/dataset"
	"github.com/Gautam1401/config-operations-hub/internal/domain"
	"github.com/Gautam1401/config-operations-hub/internal/score"
)

// kpiOrder fixes the card order per dimension. Statuses outside the
// list render after it, sorted by name.
var kpiOrder = map[domain.DimensionID][]domain.Status{
	domain.DimCRMConfiguration: {
		domain.StatusStandard, domain.StatusCopy,
		domain.StatusNotConfigured, domain.StatusDataIncorrect,
	},
	domain.DimCRMPreGoLive: {
		domain.StatusGTG, domain.StatusPartial,
		domain.StatusFail, domain.StatusDataIncorrect,
	},
	domain.DimCRMGoLiveTesting: {
		domain.StatusGTG, domain.StatusBlocker, domain.StatusNonBlocker,
		domain.StatusBlockerNonBlocker, domain.StatusDataIncorrect,
	},
	domain.DimARCService: {
		domain.StatusCompleted, domain.StatusWIP,
		domain.StatusNotConfigured, domain.StatusDataIncorrect,
	},
	domain.DimARCParts: {
		domain.StatusCompleted, domain.StatusWIP,
		domain.StatusNotConfigured, domain.StatusDataIncorrect,
	},
	domain.DimARCAccounting: {
		domain.StatusCompleted, domain.StatusWIP,
		domain.StatusNotConfigured, domain.StatusDataIncorrect,
	},
	domain.DimIntegrationSLA: {
		domain.StatusGTG, domain.StatusOnTrack, domain.StatusCritical,
		domain.StatusEscalated, domain.StatusDataIncomplete,
	},
	domain.DimRegressionTesting: {
		domain.StatusCompleted, domain.StatusWIP,
		domain.StatusUnableToComplete, domain.StatusDataIncomplete,
	},
}

// passingStatuses defines what counts as passing in assignee rollups.
var passingStatuses = map[domain.DimensionID]map[domain.Status]bool{
	domain.DimCRMConfiguration:   {domain.StatusStandard: true, domain.StatusCopy: true},
	domain.DimCRMPreGoLive:       {domain.StatusGTG: true},
	domain.DimCRMGoLiveTesting:   {domain.StatusGTG: true},
	domain.DimARCService:         {domain.StatusCompleted: true},
	domain.DimARCParts:           {domain.StatusCompleted: true},
	domain.DimARCAccounting:      {domain.StatusCompleted: true},
	domain.DimIntegrationSLA:     {domain.StatusGTG: true, domain.StatusOnTrack: true},
	domain.DimRegressionTesting:  {domain.StatusCompleted: true},
}

// KPIs counts statuses for one dimension over the dataset's current
// filter. Null-status records stay out of the denominator entirely;
// rates are percentages of the denominator and are 0, never NaN, when
// the denominator is 0.
func KPIs(d *dataset.Dataset, dim domain.DimensionID) *domain.KPIReport {
	counts := make(map[domain.Status]int)
	denominator := 0

	for _, rec := range d.Records() {
		s := rec.Status(dim)
		if s.None() {
			continue
		}
		counts[s]++
		denominator++
	}

	report := &domain.KPIReport{
		Dimension:    dim,
		Denominator:  denominator,
		TotalRecords: d.Len(),
	}

	for _, s := range orderedStatuses(dim, counts) {
		report.Counts = append(report.Counts, domain.StatusCount{
			Status: s,
			Count:  counts[s],
			Rate:   rate(counts[s], denominator),
		})
	}

	return report
}

func rate(count, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(count) / float64(denominator) * 100
}

func orderedStatuses(dim domain.DimensionID, counts map[domain.Status]int) []domain.Status {
	seen := make(map[domain.Status]bool)
	var out []domain.Status

	for _, s := range kpiOrder[dim] {
		if _, ok := counts[s]; ok {
			out = append(out, s)
			seen[s] = true
		}
	}

	var extra []domain.Status
	for s := range counts {
		if !seen[s] {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(out, extra...)
}

// RegionCounts counts the dataset's current records per region, keyed
// by the full dataset's region universe so filtered-out regions still
// appear with a zero count. The "All" sentinel is excluded.
func RegionCounts(d *dataset.Dataset) []domain.RegionCount {
	counts := make(map[string]int)
	for _, rec := range d.Records() {
		counts[rec.Region]++
	}

	var out []domain.RegionCount
	for _, region := range d.Regions() {
		if region == domain.RegionAll {
			continue
		}
		out = append(out, domain.RegionCount{Region: region, Count: counts[region]})
	}
	return out
}

// AssigneeStats rolls up one dimension's records per assignee with
// pass rates. Null-status records are excluded. Sorted by total
// descending, then assignee for stability.
func AssigneeStats(d *dataset.Dataset, dim domain.DimensionID) []domain.AssigneeStat {
	passing := passingStatuses[dim]
	totals := make(map[string]*domain.AssigneeStat)

	for _, rec := range d.Records() {
		s := rec.Status(dim)
		if s.None() {
			continue
		}
		name := dataset.AssigneeFor(&rec, dim)
		stat, ok := totals[name]
		if !ok {
			stat = &domain.AssigneeStat{Assignee: name}
			totals[name] = stat
		}
		stat.Total++
		if passing[s] {
			stat.Passing++
		}
	}

	out := make([]domain.AssigneeStat, 0, len(totals))
	for _, stat := range totals {
		stat.PassRate = rate(stat.Passing, stat.Total)
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Assignee < out[j].Assignee
	})
	return out
}

// arcModules maps display module names to their dimensions.
var arcModules = []struct {
	Name string
	Dim  domain.DimensionID
}{
	{"Service", domain.DimARCService},
	{"Parts", domain.DimARCParts},
	{"Accounting", domain.DimARCAccounting},
}

// ModuleBreakdown counts one status across the three ARC modules.
func ModuleBreakdown(d *dataset.Dataset, status domain.Status) domain.ModuleBreakdown {
	out := domain.ModuleBreakdown{
		Status:  status,
		Modules: make(map[string]int),
	}
	for _, m := range arcModules {
		n := 0
		for _, rec := range d.Records() {
			if rec.Status(m.Dim) == status {
				n++
			}
		}
		out.Modules[m.Name] = n
		out.Total += n
	}
	return out
}

// ScoreDistribution buckets every current record's weighted
// go-live-testing score. Only meaningful for the CRM domain; other
// domains carry no test fields and score zero across the board.
func ScoreDistribution(d *dataset.Dataset) domain.ScoreDistribution {
	var dist domain.ScoreDistribution
	if d.Len() == 0 {
		return dist
	}

	sum := 0.0
	for _, rec := range d.Records() {
		res := score.Compute(&rec)
		sum += res.Score
		switch res.Tier {
		case domain.TierExcellent:
			dist.Excellent++
		case domain.TierGood:
			dist.Good++
		case domain.TierNeedsImprovement:
			dist.NeedsImprovement++
		case domain.TierCritical:
			dist.Critical++
		}
	}
	dist.AverageScore = sum / float64(d.Len())
	return dist
}

// UpcomingWeek returns the records going live within the next seven
// days of the as-of day, today included.
func UpcomingWeek(d *dataset.Dataset) []domain.Record {
	var out []domain.Record
	for _, rec := range d.Records() {
		if rec.DaysToGoLive == nil {
			continue
		}
		if days := *rec.DaysToGoLive; days >= 0 && days <= 7 {
			out = append(out, rec)
		}
	}
	return out
}

// AtRisk returns the upcoming-week records whose dimension status is
// not yet passing. These feed the alert topic.
func AtRisk(d *dataset.Dataset, dim domain.DimensionID) []domain.Record {
	passing := passingStatuses[dim]
	var out []domain.Record
	for _, rec := range UpcomingWeek(d) {
		s := rec.Status(dim)
		if s.None() || passing[s] {
			continue
		}
		out = append(out, rec)
	}
	return out
}
