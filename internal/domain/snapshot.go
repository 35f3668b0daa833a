package domain

import "time"

// Snapshot is one full ingested dataset for a business domain:
// normalized, classified records plus the as-of date they were derived
// against. Records are recreated from source data on every ingest; the
// hub keeps no incremental derived state.
type Snapshot struct {
	ID     string         `json:"id"`
	Domain BusinessDomain `json:"domain"`

	// Fingerprint is the sha256 of the raw rows plus the as-of date.
	// Identical fingerprints are guaranteed to classify and aggregate
	// identically, so it doubles as the cache key.
	Fingerprint string `json:"fingerprint"`

	// AsOf is the "today" used for days-to-go-live and all rolled-out
	// derivations in this snapshot.
	AsOf time.Time `json:"asOf"`

	RawRowCount int      `json:"rawRowCount"`
	Records     []Record `json:"records"`

	CreatedAt time.Time `json:"createdAt"`
}

// SnapshotMeta is the listing projection of a snapshot, without the
// record payload.
type SnapshotMeta struct {
	ID          string         `json:"id"`
	Domain      BusinessDomain `json:"domain"`
	Fingerprint string         `json:"fingerprint"`
	AsOf        time.Time      `json:"asOf"`
	RawRowCount int            `json:"rawRowCount"`
	RecordCount int            `json:"recordCount"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// DateRange is the date-range filter token accepted from the
// presentation collaborator.
type DateRange string

const (
	// RangeAll applies no date filtering.
	RangeAll DateRange = ""

	// RangeCurrentMonth matches records whose go-live date falls in
	// the as-of calendar month and year.
	RangeCurrentMonth DateRange = "current_month"

	// RangeNextMonth matches the calendar month after the as-of month,
	// rolling over the year.
	RangeNextMonth DateRange = "next_month"

	// RangeTwoMonths matches the calendar month two months ahead.
	RangeTwoMonths DateRange = "two_months"

	// RangeYTD matches Jan 1 of the as-of year through the as-of date.
	RangeYTD DateRange = "ytd"
)

// RegionAll is the sentinel region filter meaning "no filtering".
const RegionAll = "All"
