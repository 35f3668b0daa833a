package normalize

import (
	"strings"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

// fieldKind drives which synonym table applies to a canonical field.
type fieldKind int

const (
	kindText fieldKind = iota
	kindYesNo
	kindTestResult
	kindConfigType
	kindModuleStatus
	kindImplType
)

var fieldKinds = map[domain.FieldKey]fieldKind{
	domain.FieldDomainUpdated:      kindYesNo,
	domain.FieldSetupCheck:         kindYesNo,
	domain.FieldVendorListUpdated:  kindYesNo,
	domain.FieldSampleADF:          kindTestResult,
	domain.FieldInboundEmail:       kindTestResult,
	domain.FieldOutboundEmail:      kindTestResult,
	domain.FieldDataMigration:      kindTestResult,
	domain.FieldConfigurationType:  kindConfigType,
	domain.FieldServiceStatus:      kindModuleStatus,
	domain.FieldPartsStatus:        kindModuleStatus,
	domain.FieldAccountingStatus:   kindModuleStatus,
	domain.FieldTestingStatus:      kindModuleStatus,
	domain.FieldImplementationType: kindImplType,
}

// CanonicalValue standardizes a raw cell for a canonical field: trims,
// then maps known textual variants (typos included) to their canonical
// enum spelling. Unmatched values pass through trimmed but otherwise
// unchanged, never coerced to a default, so unexpected vocabulary
// remains visible downstream.
func CanonicalValue(field domain.FieldKey, raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}

	switch fieldKinds[field] {
	case kindYesNo:
		return canonicalYesNo(v)
	case kindTestResult:
		return canonicalTestResult(v)
	case kindConfigType:
		return canonicalConfigType(v)
	case kindModuleStatus:
		return canonicalModuleStatus(v)
	case kindImplType:
		return canonicalImplType(v)
	default:
		return v
	}
}

func canonicalYesNo(v string) string {
	switch strings.ToLower(v) {
	case "yes", "y", "true":
		return "Yes"
	case "no", "n", "false":
		return "No"
	}
	return v
}

// TestPass is the canonical passing set for go-live test cells.
const (
	TestYes          = "Yes"
	TestNo           = "No"
	TestNoIssues     = "No Issues"
	TestIssuesFound  = "Issues Found"
	TestUnableToTest = "Unable to Test"
)

func canonicalTestResult(v string) string {
	switch strings.ToLower(v) {
	case "yes", "y":
		return TestYes
	case "no", "n":
		return TestNo
	case "no issues", "no issue":
		return TestNoIssues
	case "issues found", "issue found", "issues":
		return TestIssuesFound
	// "umable" is a recurring tracker typo.
	case "unable to test", "umable to test":
		return TestUnableToTest
	}
	return v
}

func canonicalConfigType(v string) string {
	lower := strings.ToLower(v)
	switch {
	// "stnadard" is a recurring tracker typo.
	case strings.Contains(lower, "standard"), strings.Contains(lower, "stnadard"):
		return string(domain.StatusStandard)
	case strings.Contains(lower, "copy"):
		return string(domain.StatusCopy)
	// "Implementation" configurations are copied from the implementing
	// store's template; treated as Copy (see DESIGN.md).
	case strings.Contains(lower, "implementation"):
		return string(domain.StatusCopy)
	case strings.Contains(lower, "not configured"):
		return string(domain.StatusNotConfigured)
	}
	return v
}

func canonicalModuleStatus(v string) string {
	switch strings.ToLower(v) {
	case "completed", "complete", "done":
		return string(domain.StatusCompleted)
	case "wip", "in progress", "work in progress":
		return string(domain.StatusWIP)
	case "not configured", "not started":
		return string(domain.StatusNotConfigured)
	case "unable to complete", "umable to complete":
		return string(domain.StatusUnableToComplete)
	}
	return v
}

func canonicalImplType(v string) string {
	switch strings.ToLower(v) {
	case "conquest":
		return "Conquest"
	case "buy/sell", "buy-sell", "buy sell", "buysell":
		return "Buy/Sell"
	case "new point", "newpoint", "new-point":
		return "New Point"
	case "enterprise":
		return "Enterprise"
	}
	return v
}
