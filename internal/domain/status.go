package domain

// Status is a derived categorical value within a dimension's closed
// enum. StatusNone marks a record that is not yet applicable for the
// dimension (all inputs blank, go-live in the future); such records are
// excluded from denominators, never counted as zero.
type Status string

const (
	StatusNone Status = ""

	// Shared across domains.
	StatusGTG            Status = "GTG"
	StatusDataIncorrect  Status = "Data Incorrect"
	StatusDataIncomplete Status = "Data Incomplete"

	// CRM Pre-Go-Live.
	StatusPartial Status = "Partial"
	StatusFail    Status = "Fail"

	// CRM Configuration.
	StatusStandard      Status = "Standard"
	StatusCopy          Status = "Copy"
	StatusNotConfigured Status = "Not Configured"

	// ARC module rollout and Regression testing.
	StatusCompleted        Status = "Completed"
	StatusWIP              Status = "WIP"
	StatusUnableToComplete Status = "Unable to Complete"

	// Integration SLA tiers.
	StatusOnTrack   Status = "On Track"
	StatusCritical  Status = "Critical"
	StatusEscalated Status = "Escalated"

	// CRM Go-Live-Testing blocker classification.
	StatusBlocker           Status = "Go Live Blocker"
	StatusNonBlocker        Status = "Non-Blocker"
	StatusBlockerNonBlocker Status = "Go Live Blocker & Non-Blocker"
)

// None reports whether the status is the not-yet-applicable marker.
func (s Status) None() bool { return s == StatusNone }

// DimensionID names one status dimension of one business domain.
type DimensionID string

const (
	DimCRMConfiguration DimensionID = "crm.configuration"
	DimCRMPreGoLive     DimensionID = "crm.pre_go_live"
	DimCRMGoLiveTesting DimensionID = "crm.go_live_testing"

	DimARCService    DimensionID = "arc.service"
	DimARCParts      DimensionID = "arc.parts"
	DimARCAccounting DimensionID = "arc.accounting"

	DimIntegrationSLA DimensionID = "integration.sla"

	DimRegressionTesting DimensionID = "regression.testing"
)

// ScoreTier buckets a 0-100 weighted test score.
type ScoreTier string

const (
	TierExcellent        ScoreTier = "Excellent"
	TierGood             ScoreTier = "Good"
	TierNeedsImprovement ScoreTier = "Needs Improvement"
	TierCritical         ScoreTier = "Critical"
)

// DimensionConfig is a user-defined classification dimension evaluated
// as a CEL expression over the normalized record. Built-in dimensions
// are rule tables compiled into the engine; these are the configurable
// extension point, persisted in the repository and hot-reloadable.
type DimensionConfig struct {
	ID          string         `json:"id"`
	Domain      BusinessDomain `json:"domain,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`

	// Expression is a CEL expression returning the status string,
	// "" meaning not applicable.
	Expression string `json:"expression"`

	Enabled bool `json:"enabled"`
}
