package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

// dateLayouts covers the formats the source trackers export. Tried in
// order; first parse wins.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"01-02-2006",
}

// Normalizer turns raw tabular rows into canonical records for one
// business domain. Safe for concurrent use; it carries no per-load
// state.
type Normalizer struct {
	domain domain.BusinessDomain
	table  *AliasTable
	logger *slog.Logger
}

// New creates a normalizer for the given business domain.
func New(d domain.BusinessDomain, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		domain: d,
		table:  TableFor(d),
		logger: logger.With("component", "normalize", "domain", string(d)),
	}
}

// Normalize resolves headers, canonicalizes values, parses dates, and
// computes days-to-go-live against asOf. Rows with unparseable dates
// are kept with a nil date; only an unresolvable required column fails
// the whole load.
func (n *Normalizer) Normalize(rows []domain.RawRow, asOf time.Time) ([]domain.Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	headers := headerUnion(rows)
	resolved, err := n.table.Resolve(headers)
	if err != nil {
		return nil, fmt.Errorf("resolving columns for %s: %w", n.domain, err)
	}

	asOfDay := truncateToDay(asOf)

	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		rec := n.buildRecord(row, resolved, asOfDay, i)
		records = append(records, rec)
	}

	n.logger.Info("normalized snapshot rows",
		"rows", len(rows),
		"records", len(records),
		"as_of", asOfDay.Format("2006-01-02"))

	return records, nil
}

func (n *Normalizer) buildRecord(row domain.RawRow, resolved map[domain.FieldKey]string, asOfDay time.Time, idx int) domain.Record {
	rec := domain.Record{
		Domain: n.domain,
		Fields: make(map[domain.FieldKey]string),
	}

	for field, header := range resolved {
		v := CanonicalValue(field, row[header])
		if v == "" {
			continue
		}
		rec.Fields[field] = v
	}

	rec.DealerName = rec.Fields[domain.FieldDealerName]
	rec.DealerID = rec.Fields[domain.FieldDealerID]
	rec.DealershipName = composeDealershipName(rec.DealerName, rec.DealerID)
	rec.ImplementationType = rec.Fields[domain.FieldImplementationType]
	rec.Region = CanonicalRegion(rec.Fields[domain.FieldRegion])
	if rec.Region != "" {
		rec.Fields[domain.FieldRegion] = rec.Region
	}

	rec.Assignee = rec.Fields[domain.FieldAssignee]
	if rec.Assignee == "" {
		rec.Assignee = domain.Unassigned
	}

	if raw, ok := rec.Fields[domain.FieldGoLiveDate]; ok {
		if t, perr := parseDate(raw); perr == nil {
			rec.GoLiveDate = &t
			days := wholeDaysBetween(asOfDay, t)
			rec.DaysToGoLive = &days
		} else {
			n.logger.Warn("unparseable go-live date, keeping row without date",
				"row", idx, "value", raw)
		}
	}

	if raw, ok := rec.Fields[domain.FieldSIMStartDate]; ok {
		if t, perr := parseDate(raw); perr == nil {
			rec.SIMStartDate = &t
		} else {
			n.logger.Warn("unparseable SIM start date",
				"row", idx, "value", raw)
		}
	}

	return rec
}

// composeDealershipName builds the "Name (ID)" display form, falling
// back to the bare name when the ID is blank.
func composeDealershipName(name, id string) string {
	if id == "" {
		return name
	}
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}

func headerUnion(rows []domain.RawRow) []string {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for h := range row {
			if !seen[h] {
				seen[h] = true
				headers = append(headers, h)
			}
		}
	}
	return headers
}

func parseDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return truncateToDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", raw)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// wholeDaysBetween returns target minus asOf in whole days, both
// already truncated to midnight UTC. Negative means the date passed.
func wholeDaysBetween(asOf, target time.Time) int {
	return int(target.Sub(asOf) / (24 * time.Hour))
}
