// Package domain defines the core interfaces and types for the Config
// Operations Hub.
package domain

import (
	"fmt"
	"time"
)

// BusinessDomain identifies one of the tracked configuration boards.
type BusinessDomain string

const (
	DomainARC         BusinessDomain = "arc"
	DomainCRM         BusinessDomain = "crm"
	DomainIntegration BusinessDomain = "integration"
	DomainRegression  BusinessDomain = "regression"
)

// AllDomains returns every known business domain.
func AllDomains() []BusinessDomain {
	return []BusinessDomain{DomainARC, DomainCRM, DomainIntegration, DomainRegression}
}

// ParseBusinessDomain validates a domain path/config value.
func ParseBusinessDomain(s string) (BusinessDomain, error) {
	switch BusinessDomain(s) {
	case DomainARC, DomainCRM, DomainIntegration, DomainRegression:
		return BusinessDomain(s), nil
	}
	return "", fmt.Errorf("unknown business domain: %q", s)
}

// FieldKey is a canonical field name a raw column resolves to.
type FieldKey string

// Canonical fields shared across domains.
const (
	FieldDealerName         FieldKey = "dealer_name"
	FieldDealerID           FieldKey = "dealer_id"
	FieldGoLiveDate         FieldKey = "go_live_date"
	FieldSIMStartDate       FieldKey = "sim_start_date"
	FieldImplementationType FieldKey = "implementation_type"
	FieldRegion             FieldKey = "region"
	FieldModule             FieldKey = "module"
	FieldAssignee           FieldKey = "assignee"
)

// CRM dimension inputs.
const (
	FieldConfigurationType     FieldKey = "configuration_type"
	FieldConfigurationAssignee FieldKey = "configuration_assignee"
	FieldDomainUpdated         FieldKey = "domain_updated"
	FieldSetupCheck            FieldKey = "setup_check"
	FieldPreGoLiveAssignee     FieldKey = "pre_go_live_assignee"
	FieldSampleADF             FieldKey = "sample_adf"
	FieldInboundEmail          FieldKey = "inbound_email"
	FieldOutboundEmail         FieldKey = "outbound_email"
	FieldDataMigration         FieldKey = "data_migration"
	FieldGoLiveTestingAssignee FieldKey = "go_live_testing_assignee"
)

// ARC module status inputs.
const (
	FieldServiceStatus    FieldKey = "service_status"
	FieldPartsStatus      FieldKey = "parts_status"
	FieldAccountingStatus FieldKey = "accounting_status"
)

// Integration and Regression inputs.
const (
	FieldVendorListUpdated FieldKey = "vendor_list_updated"
	FieldPEM               FieldKey = "pem"
	FieldDirector          FieldKey = "director"
	FieldTestingStatus     FieldKey = "testing_status"
)

// Unassigned is the display value for records with no assignee.
const Unassigned = "Unassigned"

// Record is one tracked go-live entity (a dealership/store) after
// normalization. Derived fields are recomputed from the raw inputs and
// the snapshot's as-of date on every load; nothing here is persisted
// incrementally.
type Record struct {
	Domain BusinessDomain `json:"domain"`

	DealerName     string `json:"dealerName"`
	DealerID       string `json:"dealerId"`
	DealershipName string `json:"dealershipName"`

	// GoLiveDate is nil when the source cell was blank or unparseable.
	// Once parsed it is never mutated.
	GoLiveDate   *time.Time `json:"goLiveDate,omitempty"`
	SIMStartDate *time.Time `json:"simStartDate,omitempty"`

	// DaysToGoLive is go-live minus the as-of date in whole days,
	// nil when GoLiveDate is nil.
	DaysToGoLive *int `json:"daysToGoLive,omitempty"`

	ImplementationType string `json:"implementationType"`
	Region             string `json:"region"`
	Assignee           string `json:"assignee"`

	// Fields holds the canonicalized per-dimension inputs, keyed by
	// canonical field name. Blank cells are absent.
	Fields map[FieldKey]string `json:"fields,omitempty"`

	// Statuses holds the derived status per dimension. StatusNone
	// entries are present so denominator exclusion stays explicit.
	Statuses map[DimensionID]Status `json:"statuses,omitempty"`
}

// Field returns the canonicalized input value for a key, "" if blank.
func (r *Record) Field(key FieldKey) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[key]
}

// RolledOut reports whether the go-live date is strictly before the
// as-of date. Day zero (go-live today) is NOT rolled out; several
// classification rules depend on this exact boundary.
func (r *Record) RolledOut() bool {
	return r.DaysToGoLive != nil && *r.DaysToGoLive < 0
}

// Status returns the derived status for a dimension, StatusNone if the
// dimension was not evaluated for this record.
func (r *Record) Status(dim DimensionID) Status {
	if r.Statuses == nil {
		return StatusNone
	}
	return r.Statuses[dim]
}

// RawRow is one row of the inbound tabular snapshot: cell values keyed
// by whatever header the source used. The normalizer resolves headers
// against the domain's alias table; the hub does not care whether the
// row came from a spreadsheet, CSV, or API.
type RawRow map[string]string
