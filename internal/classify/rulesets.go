package classify

import (
	"strings"
	"time"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
	"github.com/Gautam1401/config-operations-hub/internal/normalize"
)

// builtinClassifier derives one dimension's status from a normalized
// record against the snapshot's as-of day. StatusNone means the
// dimension is not applicable yet and the record must stay out of that
// dimension's denominator.
type builtinClassifier func(rec *domain.Record, asOf time.Time) domain.Status

// builtinDimensions maps each business domain to its compiled-in
// dimensions, evaluated in order.
var builtinDimensions = map[domain.BusinessDomain][]struct {
	ID       domain.DimensionID
	Classify builtinClassifier
}{
	domain.DomainCRM: {
		{domain.DimCRMConfiguration, classifyCRMConfiguration},
		{domain.DimCRMPreGoLive, classifyCRMPreGoLive},
		{domain.DimCRMGoLiveTesting, classifyCRMGoLiveTesting},
	},
	domain.DomainARC: {
		{domain.DimARCService, moduleClassifier(domain.FieldServiceStatus)},
		{domain.DimARCParts, moduleClassifier(domain.FieldPartsStatus)},
		{domain.DimARCAccounting, moduleClassifier(domain.FieldAccountingStatus)},
	},
	domain.DomainIntegration: {
		{domain.DimIntegrationSLA, classifyIntegrationSLA},
	},
	domain.DomainRegression: {
		{domain.DimRegressionTesting, classifyRegressionTesting},
	},
}

// DimensionsFor returns the built-in dimension IDs for a business
// domain, in evaluation order.
func DimensionsFor(d domain.BusinessDomain) []domain.DimensionID {
	dims := builtinDimensions[d]
	out := make([]domain.DimensionID, len(dims))
	for i, dim := range dims {
		out[i] = dim.ID
	}
	return out
}

// blankStatus resolves an all-blank dimension input: a store already
// rolled out should have had data, so blank is a data quality failure;
// a future store simply has not reached this stage yet.
func blankStatus(rec *domain.Record) domain.Status {
	if rec.RolledOut() {
		return domain.StatusDataIncorrect
	}
	return domain.StatusNone
}

// classifyCRMConfiguration passes the canonicalized configuration type
// through as the status. Unknown non-blank vocabulary is kept verbatim
// so new tracker values surface in aggregates instead of being
// swallowed.
func classifyCRMConfiguration(rec *domain.Record, _ time.Time) domain.Status {
	v := rec.Field(domain.FieldConfigurationType)
	if v == "" {
		return blankStatus(rec)
	}
	return domain.Status(v)
}

// classifyCRMPreGoLive combines the Domain Updated and Set Up Check
// answers. Both yes is GTG, both no is Fail, and any other mix of
// Yes/No/blank is Partial.
func classifyCRMPreGoLive(rec *domain.Record, _ time.Time) domain.Status {
	du := rec.Field(domain.FieldDomainUpdated)
	sc := rec.Field(domain.FieldSetupCheck)

	if du == "" && sc == "" {
		return blankStatus(rec)
	}

	known := func(v string) bool { return v == "" || v == "Yes" || v == "No" }

	switch {
	case du == "Yes" && sc == "Yes":
		return domain.StatusGTG
	case du == "No" && sc == "No":
		return domain.StatusFail
	case known(du) && known(sc):
		return domain.StatusPartial
	default:
		// Unrecognized vocabulary in either cell leaves the record
		// unclassified rather than guessed into Partial.
		return domain.StatusNone
	}
}

// Sample ADF and Data Migration failures block the go-live; email test
// failures do not.
var goLiveTestBlockers = []domain.FieldKey{
	domain.FieldSampleADF,
	domain.FieldDataMigration,
}

var goLiveTestNonBlockers = []domain.FieldKey{
	domain.FieldInboundEmail,
	domain.FieldOutboundEmail,
}

// testPassed reports whether a canonicalized test cell counts as a
// pass. Unable to Test and blank are neutral, not failures.
func testPassed(v string) bool {
	return v == normalize.TestYes || v == normalize.TestNoIssues
}

func testNeutral(v string) bool {
	return v == "" || v == normalize.TestUnableToTest
}

// classifyCRMGoLiveTesting evaluates the four go-live tests. Future
// stores are not applicable yet; failed tests split into blockers and
// non-blockers.
func classifyCRMGoLiveTesting(rec *domain.Record, _ time.Time) domain.Status {
	if rec.DaysToGoLive != nil && *rec.DaysToGoLive > 0 {
		return domain.StatusNone
	}

	allBlank := true
	for _, f := range goLiveTestFields() {
		if rec.Field(f) != "" {
			allBlank = false
			break
		}
	}
	if allBlank {
		return blankStatus(rec)
	}

	blockerFailed := anyTestFailed(rec, goLiveTestBlockers)
	nonBlockerFailed := anyTestFailed(rec, goLiveTestNonBlockers)

	switch {
	case blockerFailed && nonBlockerFailed:
		return domain.StatusBlockerNonBlocker
	case blockerFailed:
		return domain.StatusBlocker
	case nonBlockerFailed:
		return domain.StatusNonBlocker
	}

	// GTG requires every answered test to pass. An Unable to Test cell
	// is not a failure, but it leaves the record unverified, so it
	// stays unclassified.
	for _, f := range goLiveTestFields() {
		if rec.Field(f) == normalize.TestUnableToTest {
			return domain.StatusNone
		}
	}
	return domain.StatusGTG
}

func goLiveTestFields() []domain.FieldKey {
	fields := make([]domain.FieldKey, 0, len(goLiveTestBlockers)+len(goLiveTestNonBlockers))
	fields = append(fields, goLiveTestBlockers...)
	fields = append(fields, goLiveTestNonBlockers...)
	return fields
}

func anyTestFailed(rec *domain.Record, fields []domain.FieldKey) bool {
	for _, f := range fields {
		if v := rec.Field(f); !testPassed(v) && !testNeutral(v) {
			return true
		}
	}
	return false
}

// moduleClassifier builds the per-module rollout classifier used by the
// ARC Service, Parts, and Accounting dimensions.
func moduleClassifier(field domain.FieldKey) builtinClassifier {
	return func(rec *domain.Record, _ time.Time) domain.Status {
		v := rec.Field(field)
		if v == "" {
			return blankStatus(rec)
		}
		return domain.Status(v)
	}
}

// slaThresholds holds one implementation type's escalation boundaries:
// more than OnTrackAbove days out is on track, CriticalFloor through
// OnTrackAbove inclusive is critical, below CriticalFloor is escalated.
type slaThresholds struct {
	OnTrackAbove  int
	CriticalFloor int
}

var (
	conquestThresholds = slaThresholds{OnTrackAbove: 60, CriticalFloor: 30}
	standardThresholds = slaThresholds{OnTrackAbove: 15, CriticalFloor: 3}
)

func thresholdsFor(implType string) slaThresholds {
	if strings.EqualFold(implType, "Conquest") {
		return conquestThresholds
	}
	return standardThresholds
}

// slaComplete reports whether a record carries everything the SLA
// board requires: identity, go-live date, implementation type, and the
// PEM, Director, and Assignee owners.
func slaComplete(rec *domain.Record) bool {
	if rec.DealerName == "" || rec.DealerID == "" || rec.GoLiveDate == nil {
		return false
	}
	if rec.ImplementationType == "" || rec.Assignee == "" || rec.Assignee == domain.Unassigned {
		return false
	}
	return rec.Field(domain.FieldPEM) != "" && rec.Field(domain.FieldDirector) != ""
}

// classifyIntegrationSLA derives the vendor integration SLA tier. Any
// missing required field is a data gap before anything else. After
// that, a confirmed vendor list is GTG outright; an unanswered one is
// a data gap; a "No" escalates on the days remaining, with Conquest
// stores on a longer runway than Buy/Sell and New Point.
func classifyIntegrationSLA(rec *domain.Record, _ time.Time) domain.Status {
	if !slaComplete(rec) {
		return domain.StatusDataIncomplete
	}

	switch rec.Field(domain.FieldVendorListUpdated) {
	case "Yes":
		return domain.StatusGTG
	case "No":
	default:
		return domain.StatusDataIncomplete
	}

	if rec.DaysToGoLive == nil {
		return domain.StatusDataIncomplete
	}
	days := *rec.DaysToGoLive
	if days < 0 {
		return domain.StatusGTG
	}

	t := thresholdsFor(rec.ImplementationType)
	switch {
	case days > t.OnTrackAbove:
		return domain.StatusOnTrack
	case days >= t.CriticalFloor:
		return domain.StatusCritical
	default:
		return domain.StatusEscalated
	}
}

// classifyRegressionTesting passes the testing status through. A blank
// status after the SIM window has opened is a data gap; before it, the
// record is simply not applicable yet.
func classifyRegressionTesting(rec *domain.Record, asOf time.Time) domain.Status {
	if v := rec.Field(domain.FieldTestingStatus); v != "" {
		return domain.Status(v)
	}
	if rec.SIMStartDate != nil && rec.SIMStartDate.Before(asOf) {
		return domain.StatusDataIncomplete
	}
	return domain.StatusNone
}
