package dataset

import (
	"testing"
	"time"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

var asOf = time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

func record(name, region string, goLive time.Time, statuses map[domain.DimensionID]domain.Status) domain.Record {
	days := int(goLive.Sub(asOf) / (24 * time.Hour))
	return domain.Record{
		Domain:         domain.DomainCRM,
		DealershipName: name,
		GoLiveDate:     &goLive,
		DaysToGoLive:   &days,
		Region:         region,
		Assignee:       domain.Unassigned,
		Fields:         map[domain.FieldKey]string{},
		Statuses:       statuses,
	}
}

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Domain: domain.DomainCRM,
		AsOf:   asOf,
		Records: []domain.Record{
			record("A (1)", "NAM", time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
				map[domain.DimensionID]domain.Status{domain.DimCRMConfiguration: domain.StatusStandard}),
			record("B (2)", "EMEA", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
				map[domain.DimensionID]domain.Status{domain.DimCRMConfiguration: domain.StatusCopy}),
			record("C (3)", "Canada", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
				map[domain.DimensionID]domain.Status{domain.DimCRMConfiguration: domain.StatusCopy}),
			record("D (4)", "NAM", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				map[domain.DimensionID]domain.Status{domain.DimCRMConfiguration: domain.StatusDataIncorrect}),
		},
	}
}

func names(d *Dataset) []string {
	var out []string
	for _, r := range d.Records() {
		out = append(out, r.DealershipName)
	}
	return out
}

func TestFilterByDateRangeCurrentMonth(t *testing.T) {
	d := New(testSnapshot()).FilterByDateRange(domain.RangeCurrentMonth)
	if got := names(d); len(got) != 1 || got[0] != "A (1)" {
		t.Errorf("current month = %v, want [A (1)]", got)
	}
}

func TestFilterByDateRangeNextMonthYearRollover(t *testing.T) {
	// As-of December: next month is January of the following year.
	d := New(testSnapshot()).FilterByDateRange(domain.RangeNextMonth)
	if got := names(d); len(got) != 1 || got[0] != "B (2)" {
		t.Errorf("next month = %v, want [B (2)]", got)
	}
}

func TestFilterByDateRangeTwoMonths(t *testing.T) {
	d := New(testSnapshot()).FilterByDateRange(domain.RangeTwoMonths)
	if got := names(d); len(got) != 1 || got[0] != "C (3)" {
		t.Errorf("two months = %v, want [C (3)]", got)
	}
}

func TestFilterByDateRangeYTD(t *testing.T) {
	d := New(testSnapshot()).FilterByDateRange(domain.RangeYTD)
	if got := names(d); len(got) != 1 || got[0] != "D (4)" {
		t.Errorf("ytd = %v, want [D (4)]", got)
	}
}

func TestFilterByDateRangeAll(t *testing.T) {
	d := New(testSnapshot()).FilterByDateRange(domain.RangeAll)
	if d.Len() != 4 {
		t.Errorf("all = %d records, want 4", d.Len())
	}
}

func TestFilterByRegion(t *testing.T) {
	snap := testSnapshot()
	d := New(snap).FilterByRegion("NAM")
	if d.Len() != 2 {
		t.Errorf("NAM = %d records, want 2", d.Len())
	}
	if got := New(snap).FilterByRegion(domain.RegionAll).Len(); got != 4 {
		t.Errorf("All = %d records, want 4", got)
	}
}

func TestRegionsSurviveFiltering(t *testing.T) {
	d := New(testSnapshot()).FilterByRegion("NAM").FilterByDateRange(domain.RangeCurrentMonth)
	want := []string{"All", "Canada", "EMEA", "NAM"}
	got := d.Regions()
	if len(got) != len(want) {
		t.Fatalf("Regions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Regions() = %v, want %v", got, want)
		}
	}
}

func TestFilterByStatus(t *testing.T) {
	d := New(testSnapshot()).FilterByStatus(domain.DimCRMConfiguration, domain.StatusCopy)
	if d.Len() != 2 {
		t.Errorf("Copy = %d records, want 2", d.Len())
	}
}

func TestFilterByStatusBlockerContainment(t *testing.T) {
	snap := &domain.Snapshot{
		Domain: domain.DomainCRM,
		AsOf:   asOf,
		Records: []domain.Record{
			record("X (1)", "NAM", asOf, map[domain.DimensionID]domain.Status{
				domain.DimCRMGoLiveTesting: domain.StatusBlocker}),
			record("Y (2)", "NAM", asOf, map[domain.DimensionID]domain.Status{
				domain.DimCRMGoLiveTesting: domain.StatusBlockerNonBlocker}),
			record("Z (3)", "NAM", asOf, map[domain.DimensionID]domain.Status{
				domain.DimCRMGoLiveTesting: domain.StatusGTG}),
		},
	}

	d := New(snap).FilterByStatus(domain.DimCRMGoLiveTesting, domain.StatusBlocker)
	if d.Len() != 2 {
		t.Errorf("Blocker filter = %d records, want 2 (combined status included)", d.Len())
	}

	d = New(snap).FilterByStatus(domain.DimCRMGoLiveTesting, domain.StatusNonBlocker)
	if d.Len() != 1 {
		t.Errorf("Non-Blocker filter = %d records, want 1", d.Len())
	}
}

func TestDisplayRows(t *testing.T) {
	goLive := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	snap := &domain.Snapshot{
		Domain: domain.DomainCRM,
		AsOf:   asOf,
		Records: []domain.Record{
			record("A (1)", "NAM", goLive, map[domain.DimensionID]domain.Status{
				domain.DimCRMConfiguration: domain.StatusStandard}),
			record("D (4)", "NAM", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				map[domain.DimensionID]domain.Status{domain.DimCRMConfiguration: domain.StatusDataIncorrect}),
		},
	}

	rows := New(snap).DisplayRows(domain.DimCRMConfiguration)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].GoLiveDate != "20-Dec-2025" {
		t.Errorf("GoLiveDate = %q, want 20-Dec-2025", rows[0].GoLiveDate)
	}
	if rows[0].DaysToGoLive != "5" {
		t.Errorf("DaysToGoLive = %q, want 5", rows[0].DaysToGoLive)
	}
	if rows[1].DaysToGoLive != RolledOutLabel {
		t.Errorf("rolled out DaysToGoLive = %q, want %q", rows[1].DaysToGoLive, RolledOutLabel)
	}
	if rows[0].Status != "Standard" {
		t.Errorf("Status = %q, want Standard", rows[0].Status)
	}
}

func TestAssigneeForCRMDimensions(t *testing.T) {
	rec := &domain.Record{
		Assignee: "Shared Owner",
		Fields: map[domain.FieldKey]string{
			domain.FieldConfigurationAssignee: "Config Person",
		},
	}

	if got := AssigneeFor(rec, domain.DimCRMConfiguration); got != "Config Person" {
		t.Errorf("configuration assignee = %q", got)
	}
	if got := AssigneeFor(rec, domain.DimCRMPreGoLive); got != "Shared Owner" {
		t.Errorf("pre-go-live assignee fallback = %q", got)
	}
	if got := AssigneeFor(&domain.Record{}, domain.DimCRMPreGoLive); got != domain.Unassigned {
		t.Errorf("empty assignee = %q, want Unassigned", got)
	}
}

func TestFingerprintStability(t *testing.T) {
	rows := []domain.RawRow{
		{"Dealer Name": "A", "Go Live Date": "2025-12-20"},
		{"Dealer Name": "B", "Go Live Date": "2026-01-05"},
	}

	a := Fingerprint(rows, asOf)
	b := Fingerprint(rows, asOf)
	if a != b {
		t.Error("identical input produced different fingerprints")
	}

	if Fingerprint(rows, asOf.AddDate(0, 0, 1)) == a {
		t.Error("different as-of day must change the fingerprint")
	}

	changed := []domain.RawRow{
		{"Dealer Name": "A", "Go Live Date": "2025-12-21"},
		{"Dealer Name": "B", "Go Live Date": "2026-01-05"},
	}
	if Fingerprint(changed, asOf) == a {
		t.Error("different content must change the fingerprint")
	}
}
