// Package dataset wraps a classified snapshot in an immutable query
// facade: date-range, region, status, and implementation-type filters
// plus the fixed-column display projection. Filters return new
// datasets; the underlying records are never mutated.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

// displayDateLayout is the go-live date rendering for drill-down rows.
const displayDateLayout = "02-Jan-2006"

// RolledOutLabel replaces negative day counts in display rows.
const RolledOutLabel = "Rolled Out"

// Dataset is an immutable view over a snapshot's records. The zero
// value is an empty dataset.
type Dataset struct {
	domain  domain.BusinessDomain
	asOf    time.Time
	records []domain.Record

	// allRegions is carried from the unfiltered dataset through every
	// filter so region options never collapse under filtering.
	allRegions []string
}

// New builds a dataset over a snapshot's records. The region universe
// is computed here, once, from the full record set.
func New(snap *domain.Snapshot) *Dataset {
	return &Dataset{
		domain:     snap.Domain,
		asOf:       snap.AsOf,
		records:    snap.Records,
		allRegions: regionUniverse(snap.Records),
	}
}

// Domain returns the dataset's business domain.
func (d *Dataset) Domain() domain.BusinessDomain { return d.domain }

// AsOf returns the as-of day the dataset was derived against.
func (d *Dataset) AsOf() time.Time { return d.asOf }

// Records returns the current filtered records. Callers must not
// mutate the slice.
func (d *Dataset) Records() []domain.Record { return d.records }

// Len returns the number of records under the current filters.
func (d *Dataset) Len() int { return len(d.records) }

// Regions returns the region filter options: "All" first, then the
// full dataset's regions sorted, regardless of active filters.
func (d *Dataset) Regions() []string {
	out := make([]string, 0, len(d.allRegions)+1)
	out = append(out, domain.RegionAll)
	out = append(out, d.allRegions...)
	return out
}

func (d *Dataset) derive(records []domain.Record) *Dataset {
	return &Dataset{
		domain:     d.domain,
		asOf:       d.asOf,
		records:    records,
		allRegions: d.allRegions,
	}
}

func (d *Dataset) filter(keep func(*domain.Record) bool) *Dataset {
	out := make([]domain.Record, 0, len(d.records))
	for i := range d.records {
		if keep(&d.records[i]) {
			out = append(out, d.records[i])
		}
	}
	return d.derive(out)
}

// FilterByDateRange keeps records whose go-live date falls in the
// requested window relative to the as-of day. Records without a
// parseable go-live date never match a non-empty range.
func (d *Dataset) FilterByDateRange(r domain.DateRange) *Dataset {
	if r == domain.RangeAll {
		return d
	}
	return d.filter(func(rec *domain.Record) bool {
		if rec.GoLiveDate == nil {
			return false
		}
		return inDateRange(*rec.GoLiveDate, d.asOf, r)
	})
}

// inDateRange implements the calendar-month semantics: current and
// next month match the exact month and year, with December rolling
// into January of the next year. YTD spans Jan 1 of the as-of year
// through the as-of day inclusive.
func inDateRange(goLive, asOf time.Time, r domain.DateRange) bool {
	switch r {
	case domain.RangeCurrentMonth:
		return sameMonth(goLive, asOf)
	case domain.RangeNextMonth:
		return sameMonth(goLive, asOf.AddDate(0, 1, 0))
	case domain.RangeTwoMonths:
		return sameMonth(goLive, asOf.AddDate(0, 2, 0))
	case domain.RangeYTD:
		start := time.Date(asOf.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return !goLive.Before(start) && !goLive.After(asOf)
	default:
		return true
	}
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// FilterByRegion keeps records in the given canonical region. The
// "All" sentinel is a no-op.
func (d *Dataset) FilterByRegion(region string) *Dataset {
	if region == "" || region == domain.RegionAll {
		return d
	}
	return d.filter(func(rec *domain.Record) bool {
		return rec.Region == region
	})
}

// FilterByStatus keeps records whose status for the dimension matches.
// Blocker statuses match by containment so "Go Live Blocker" also
// selects the combined "Go Live Blocker & Non-Blocker" records.
func (d *Dataset) FilterByStatus(dim domain.DimensionID, status domain.Status) *Dataset {
	if status.None() {
		return d
	}
	return d.filter(func(rec *domain.Record) bool {
		return statusMatches(rec.Status(dim), status)
	})
}

func statusMatches(have, want domain.Status) bool {
	if have == want {
		return true
	}
	switch want {
	case domain.StatusBlocker, domain.StatusNonBlocker:
		return strings.Contains(string(have), string(want))
	}
	return false
}

// FilterByImplementationType keeps records of one implementation type,
// matched case-insensitively.
func (d *Dataset) FilterByImplementationType(implType string) *Dataset {
	if implType == "" {
		return d
	}
	return d.filter(func(rec *domain.Record) bool {
		return strings.EqualFold(rec.ImplementationType, implType)
	})
}

// FilterByAssignee keeps records assigned to one person for the given
// dimension's assignee column.
func (d *Dataset) FilterByAssignee(dim domain.DimensionID, assignee string) *Dataset {
	if assignee == "" {
		return d
	}
	return d.filter(func(rec *domain.Record) bool {
		return AssigneeFor(rec, dim) == assignee
	})
}

// AssigneeFor resolves the assignee column for a dimension: the CRM
// dimensions each have their own, everything else uses the shared one.
func AssigneeFor(rec *domain.Record, dim domain.DimensionID) string {
	var v string
	switch dim {
	case domain.DimCRMConfiguration:
		v = rec.Field(domain.FieldConfigurationAssignee)
	case domain.DimCRMPreGoLive:
		v = rec.Field(domain.FieldPreGoLiveAssignee)
	case domain.DimCRMGoLiveTesting:
		v = rec.Field(domain.FieldGoLiveTestingAssignee)
	}
	if v == "" {
		v = rec.Assignee
	}
	if v == "" {
		return domain.Unassigned
	}
	return v
}

// DisplayRows projects the current records into the fixed drill-down
// columns for a dimension.
func (d *Dataset) DisplayRows(dim domain.DimensionID) []domain.DisplayRow {
	rows := make([]domain.DisplayRow, 0, len(d.records))
	for i := range d.records {
		rec := &d.records[i]
		rows = append(rows, domain.DisplayRow{
			DealershipName:     rec.DealershipName,
			GoLiveDate:         formatGoLive(rec.GoLiveDate),
			DaysToGoLive:       formatDays(rec.DaysToGoLive),
			ImplementationType: rec.ImplementationType,
			Region:             rec.Region,
			Module:             rec.Field(domain.FieldModule),
			Assignee:           AssigneeFor(rec, dim),
			Status:             string(rec.Status(dim)),
		})
	}
	return rows
}

func formatGoLive(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(displayDateLayout)
}

func formatDays(days *int) string {
	if days == nil {
		return ""
	}
	if *days < 0 {
		return RolledOutLabel
	}
	return fmt.Sprintf("%d", *days)
}

// Fingerprint hashes raw rows plus the as-of day into the snapshot
// cache key. Row maps are serialized with sorted keys so identical
// content always hashes identically.
func Fingerprint(rows []domain.RawRow, asOf time.Time) string {
	h := sha256.New()
	fmt.Fprintf(h, "as_of:%s\n", asOf.Format("2006-01-02"))
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(h, "%s=%s;", k, row[k])
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func regionUniverse(records []domain.Record) []string {
	seen := make(map[string]bool)
	var regions []string
	for i := range records {
		r := records[i].Region
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}
