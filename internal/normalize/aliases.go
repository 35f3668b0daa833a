// Package normalize turns raw tabular snapshots into canonical records:
// it resolves column aliases, standardizes free-text values, parses
// dates, and computes the days-to-go-live field everything downstream
// keys off.
package normalize

import (
	"fmt"
	"strings"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

// AliasTable describes how one business domain's columns resolve to
// canonical fields. Headers are matched case-insensitively with
// whitespace and punctuation stripped; exact alias matches win, then
// ordered substring matches.
type AliasTable struct {
	// Aliases maps each canonical field to its known header spellings,
	// most specific first.
	Aliases map[domain.FieldKey][]string

	// Substrings is the fuzzy fallback, ordered most specific first.
	Substrings []SubstringAlias

	// Required lists fields whose absence fails the whole load.
	Required []domain.FieldKey
}

// SubstringAlias maps a header substring to a canonical field.
type SubstringAlias struct {
	Substring string
	Field     domain.FieldKey
}

// MissingRequiredColumnError reports a required canonical field that
// could not be resolved from any alias. Fatal for the dataset load.
type MissingRequiredColumnError struct {
	Field   domain.FieldKey
	Tried   []string
	Present []string
}

func (e *MissingRequiredColumnError) Error() string {
	return fmt.Sprintf("could not resolve required column %q: tried %v, columns present %v",
		e.Field, e.Tried, e.Present)
}

var sharedAliases = map[domain.FieldKey][]string{
	domain.FieldDealerName:         {"Dealer Name", "Dealership Name", "Store Name", "Name"},
	domain.FieldDealerID:           {"Dealer ID", "Dealership ID", "Store ID", "ID"},
	domain.FieldGoLiveDate:         {"Go Live Date", "Go-Live Date", "GoLive Date", "Go Live"},
	domain.FieldImplementationType: {"Implementation Type", "Type of Implementation", "Type"},
	domain.FieldRegion:             {"Region", "Area", "Territory"},
	domain.FieldAssignee:           {"Assigned To", "Assignee", "Assigned", "Owner"},
}

func withShared(extra map[domain.FieldKey][]string) map[domain.FieldKey][]string {
	merged := make(map[domain.FieldKey][]string, len(sharedAliases)+len(extra))
	for k, v := range sharedAliases {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

var crmTable = &AliasTable{
	Aliases: withShared(map[domain.FieldKey][]string{
		domain.FieldConfigurationType:     {"Configuration Type", "Configuration Status", "Config Status", "Configuration - Status"},
		domain.FieldConfigurationAssignee: {"Configuration Assigned To", "Configuration Assigned", "Config Assigned", "Configuration Assignee"},
		domain.FieldDomainUpdated:         {"Domain Updated", "Pre Go Live - Domain Updated", "Pre Go Live Domain Updated"},
		domain.FieldSetupCheck:            {"Set Up Check", "Pre Go Live - Set Up Check", "Setup Check"},
		domain.FieldPreGoLiveAssignee:     {"Pre Go Live Assigned To", "Pre Go Live - Assigned To", "Pre Go Live Assignee", "Pre-Go Live Assigned"},
		domain.FieldSampleADF:             {"Sample ADF", "Go Live Testing - Sample ADF", "ADF"},
		domain.FieldInboundEmail:          {"Inbound Email", "Go Live Testing - Inbound Email Test", "Inbound"},
		domain.FieldOutboundEmail:         {"Outbound Email", "Go Live Testing - Outbound Mail Test", "Outbound"},
		domain.FieldDataMigration:         {"Data Migration", "Go Live Testing - Data Migration Test", "Migration"},
		domain.FieldGoLiveTestingAssignee: {"Go Live Testing Assigned To", "Go Live Testing - Assigned To", "Testing Assigned", "Go Live Testing Assignee"},
	}),
	Substrings: []SubstringAlias{
		{"golivedate", domain.FieldGoLiveDate},
		{"configurationassigned", domain.FieldConfigurationAssignee},
		{"configuration", domain.FieldConfigurationType},
		{"domainupdated", domain.FieldDomainUpdated},
		{"setupcheck", domain.FieldSetupCheck},
		{"sampleadf", domain.FieldSampleADF},
		{"inbound", domain.FieldInboundEmail},
		{"outbound", domain.FieldOutboundEmail},
		{"migration", domain.FieldDataMigration},
		{"dealername", domain.FieldDealerName},
		{"dealerid", domain.FieldDealerID},
		{"implementation", domain.FieldImplementationType},
		{"region", domain.FieldRegion},
	},
	Required: []domain.FieldKey{domain.FieldDealerName, domain.FieldGoLiveDate},
}

var arcTable = &AliasTable{
	Aliases: withShared(map[domain.FieldKey][]string{
		domain.FieldModule:           {"Module", "Line of Business", "LOB"},
		domain.FieldServiceStatus:    {"Service Status", "Service - Status", "Service"},
		domain.FieldPartsStatus:      {"Parts Status", "Parts - Status", "Parts"},
		domain.FieldAccountingStatus: {"Accounting Status", "Accounting - Status", "Accounting"},
	}),
	Substrings: []SubstringAlias{
		{"golivedate", domain.FieldGoLiveDate},
		{"servicestatus", domain.FieldServiceStatus},
		{"partsstatus", domain.FieldPartsStatus},
		{"accountingstatus", domain.FieldAccountingStatus},
		{"lineofbusiness", domain.FieldModule},
		{"module", domain.FieldModule},
		{"dealername", domain.FieldDealerName},
		{"dealerid", domain.FieldDealerID},
		{"implementation", domain.FieldImplementationType},
		{"assigned", domain.FieldAssignee},
		{"region", domain.FieldRegion},
	},
	Required: []domain.FieldKey{domain.FieldDealerName, domain.FieldGoLiveDate},
}

var integrationTable = &AliasTable{
	Aliases: withShared(map[domain.FieldKey][]string{
		domain.FieldVendorListUpdated: {"Vendor List Updated", "Vendor Updated", "Vendor List"},
		domain.FieldPEM:               {"PEM", "Project Manager", "PM"},
		domain.FieldDirector:          {"Director", "Dir"},
	}),
	Substrings: []SubstringAlias{
		{"golivedate", domain.FieldGoLiveDate},
		{"vendor", domain.FieldVendorListUpdated},
		{"director", domain.FieldDirector},
		{"pem", domain.FieldPEM},
		{"dealername", domain.FieldDealerName},
		{"dealerid", domain.FieldDealerID},
		{"implementation", domain.FieldImplementationType},
		{"assigned", domain.FieldAssignee},
		{"region", domain.FieldRegion},
	},
	Required: []domain.FieldKey{domain.FieldDealerName, domain.FieldGoLiveDate},
}

var regressionTable = &AliasTable{
	Aliases: withShared(map[domain.FieldKey][]string{
		domain.FieldSIMStartDate:  {"SIM Start Date", "SIM Start", "Start Date"},
		domain.FieldTestingStatus: {"Testing Status", "Status", "Go Live Status"},
	}),
	Substrings: []SubstringAlias{
		{"golivedate", domain.FieldGoLiveDate},
		{"simstart", domain.FieldSIMStartDate},
		{"status", domain.FieldTestingStatus},
		{"dealername", domain.FieldDealerName},
		{"dealerid", domain.FieldDealerID},
		{"implementation", domain.FieldImplementationType},
		{"assigned", domain.FieldAssignee},
		{"region", domain.FieldRegion},
	},
	Required: []domain.FieldKey{domain.FieldDealerName, domain.FieldGoLiveDate},
}

// TableFor returns the alias table for a business domain.
func TableFor(d domain.BusinessDomain) *AliasTable {
	switch d {
	case domain.DomainARC:
		return arcTable
	case domain.DomainCRM:
		return crmTable
	case domain.DomainIntegration:
		return integrationTable
	case domain.DomainRegression:
		return regressionTable
	default:
		return crmTable
	}
}

// normalizeHeader lowercases a header and strips whitespace,
// underscores, hyphens, and other separators so "Go-Live Date",
// "go_live_date", and "Go Live Date" all collide.
func normalizeHeader(header string) string {
	var b strings.Builder
	b.Grow(len(header))
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		switch r {
		case ' ', '\t', '_', '-', '.', ':', '(', ')', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Resolve maps each canonical field to the actual header present in
// the raw data. Optional fields that cannot be resolved are simply
// absent from the result; a missing required field is an error naming
// the aliases tried and the columns actually present.
func (t *AliasTable) Resolve(headers []string) (map[domain.FieldKey]string, error) {
	byNormalized := make(map[string]string, len(headers))
	for _, h := range headers {
		key := normalizeHeader(h)
		if _, ok := byNormalized[key]; !ok {
			byNormalized[key] = h
		}
	}

	resolved := make(map[domain.FieldKey]string)
	claimed := make(map[string]bool)

	// Pass 1: exact alias matches.
	for field, aliases := range t.Aliases {
		for _, alias := range aliases {
			if actual, ok := byNormalized[normalizeHeader(alias)]; ok && !claimed[actual] {
				resolved[field] = actual
				claimed[actual] = true
				break
			}
		}
	}

	// Pass 2: substring fallback for still-unresolved fields, scanning
	// headers in their original order so ties resolve the same way on
	// every load.
	for _, sub := range t.Substrings {
		if _, done := resolved[sub.Field]; done {
			continue
		}
		for _, h := range headers {
			if claimed[h] {
				continue
			}
			if strings.Contains(normalizeHeader(h), sub.Substring) {
				resolved[sub.Field] = h
				claimed[h] = true
				break
			}
		}
	}

	for _, field := range t.Required {
		if _, ok := resolved[field]; !ok {
			return nil, &MissingRequiredColumnError{
				Field:   field,
				Tried:   t.Aliases[field],
				Present: headers,
			}
		}
	}

	return resolved, nil
}
