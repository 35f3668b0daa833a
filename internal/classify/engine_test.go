package classify

import (
	"context"
	"testing"
	"time"

	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

var testAsOf = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func newRecord(d domain.BusinessDomain, days *int, fields map[domain.FieldKey]string) domain.Record {
	rec := domain.Record{
		Domain:       d,
		DealerName:   "Test Store",
		DaysToGoLive: days,
		Fields:       fields,
	}
	if days != nil {
		t := testAsOf.AddDate(0, 0, *days)
		rec.GoLiveDate = &t
	}
	if fields == nil {
		rec.Fields = map[domain.FieldKey]string{}
	}
	return rec
}

func intPtr(n int) *int { return &n }

func classifyOne(t *testing.T, rec domain.Record) domain.Record {
	t.Helper()
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	records := []domain.Record{rec}
	if err := engine.Classify(context.Background(), records, testAsOf); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	return records[0]
}

func TestCRMConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		days   *int
		config string
		want   domain.Status
	}{
		{"standard", intPtr(10), "Standard", domain.StatusStandard},
		{"copy", intPtr(10), "Copy", domain.StatusCopy},
		{"not configured", intPtr(10), "Not Configured", domain.StatusNotConfigured},
		{"unknown passes through", intPtr(10), "Custom Build", domain.Status("Custom Build")},
		{"blank rolled out", intPtr(-1), "", domain.StatusDataIncorrect},
		{"blank future", intPtr(10), "", domain.StatusNone},
		{"blank go-live today not rolled out", intPtr(0), "", domain.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[domain.FieldKey]string{}
			if tt.config != "" {
				fields[domain.FieldConfigurationType] = tt.config
			}
			rec := classifyOne(t, newRecord(domain.DomainCRM, tt.days, fields))
			if got := rec.Status(domain.DimCRMConfiguration); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCRMPreGoLive(t *testing.T) {
	tests := []struct {
		name   string
		days   *int
		du, sc string
		want   domain.Status
	}{
		{"both yes", intPtr(10), "Yes", "Yes", domain.StatusGTG},
		{"both no", intPtr(10), "No", "No", domain.StatusFail},
		{"mixed", intPtr(10), "Yes", "No", domain.StatusPartial},
		{"only domain answered", intPtr(10), "Yes", "", domain.StatusPartial},
		{"only setup answered", intPtr(10), "", "No", domain.StatusPartial},
		{"blank rolled out", intPtr(-5), "", "", domain.StatusDataIncorrect},
		{"blank future", intPtr(5), "", "", domain.StatusNone},
		{"unknown vocabulary excluded", intPtr(10), "Maybe", "Yes", domain.StatusNone},
		{"unknown with blank excluded", intPtr(10), "", "Pending", domain.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[domain.FieldKey]string{}
			if tt.du != "" {
				fields[domain.FieldDomainUpdated] = tt.du
			}
			if tt.sc != "" {
				fields[domain.FieldSetupCheck] = tt.sc
			}
			rec := classifyOne(t, newRecord(domain.DomainCRM, tt.days, fields))
			if got := rec.Status(domain.DimCRMPreGoLive); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCRMGoLiveTesting(t *testing.T) {
	tests := []struct {
		name                          string
		days                          *int
		adf, inbound, outbound, migra string
		want                          domain.Status
	}{
		{"future not applicable", intPtr(3), "No", "No", "No", "No", domain.StatusNone},
		{"all pass", intPtr(0), "Yes", "No Issues", "Yes", "No Issues", domain.StatusGTG},
		{"blank cells still GTG", intPtr(0), "Yes", "", "", "No Issues", domain.StatusGTG},
		{"unable to test blocks GTG", intPtr(0), "Yes", "Unable to Test", "", "Yes", domain.StatusNone},
		{"unable to test is not a failure", intPtr(0), "Unable to Test", "No", "Yes", "Yes", domain.StatusNonBlocker},
		{"blocker only", intPtr(0), "No", "Yes", "Yes", "Yes", domain.StatusBlocker},
		{"migration blocker", intPtr(-2), "Yes", "Yes", "Yes", "Issues Found", domain.StatusBlocker},
		{"non-blocker only", intPtr(0), "Yes", "No", "Yes", "Yes", domain.StatusNonBlocker},
		{"both", intPtr(0), "No", "No", "Yes", "Yes", domain.StatusBlockerNonBlocker},
		{"all blank rolled out", intPtr(-1), "", "", "", "", domain.StatusDataIncorrect},
		{"all blank go-live today", intPtr(0), "", "", "", "", domain.StatusNone},
		{"all blank no date", nil, "", "", "", "", domain.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[domain.FieldKey]string{}
			set := func(k domain.FieldKey, v string) {
				if v != "" {
					fields[k] = v
				}
			}
			set(domain.FieldSampleADF, tt.adf)
			set(domain.FieldInboundEmail, tt.inbound)
			set(domain.FieldOutboundEmail, tt.outbound)
			set(domain.FieldDataMigration, tt.migra)

			rec := classifyOne(t, newRecord(domain.DomainCRM, tt.days, fields))
			if got := rec.Status(domain.DimCRMGoLiveTesting); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestARCModules(t *testing.T) {
	rec := classifyOne(t, newRecord(domain.DomainARC, intPtr(-3), map[domain.FieldKey]string{
		domain.FieldServiceStatus: "Completed",
		domain.FieldPartsStatus:   "WIP",
	}))

	if got := rec.Status(domain.DimARCService); got != domain.StatusCompleted {
		t.Errorf("service = %q, want Completed", got)
	}
	if got := rec.Status(domain.DimARCParts); got != domain.StatusWIP {
		t.Errorf("parts = %q, want WIP", got)
	}
	// Accounting blank on a rolled-out store.
	if got := rec.Status(domain.DimARCAccounting); got != domain.StatusDataIncorrect {
		t.Errorf("accounting = %q, want Data Incorrect", got)
	}
}

func TestIntegrationSLA(t *testing.T) {
	tests := []struct {
		name     string
		days     *int
		vendor   string
		implType string
		want     domain.Status
	}{
		{"vendor yes", intPtr(100), "Yes", "Conquest", domain.StatusGTG},
		{"vendor blank", intPtr(100), "", "Conquest", domain.StatusDataIncomplete},
		{"vendor other", intPtr(100), "Pending", "Conquest", domain.StatusDataIncomplete},
		{"no days", nil, "No", "Conquest", domain.StatusDataIncomplete},
		{"rolled out", intPtr(-1), "No", "Conquest", domain.StatusGTG},
		{"conquest on track", intPtr(61), "No", "Conquest", domain.StatusOnTrack},
		{"conquest critical upper boundary", intPtr(60), "No", "Conquest", domain.StatusCritical},
		{"conquest critical lower boundary", intPtr(30), "No", "Conquest", domain.StatusCritical},
		{"conquest escalated", intPtr(29), "No", "Conquest", domain.StatusEscalated},
		{"buy sell on track", intPtr(16), "No", "Buy/Sell", domain.StatusOnTrack},
		{"buy sell critical", intPtr(15), "No", "Buy/Sell", domain.StatusCritical},
		{"new point critical floor", intPtr(3), "No", "New Point", domain.StatusCritical},
		{"new point escalated", intPtr(2), "No", "New Point", domain.StatusEscalated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[domain.FieldKey]string{
				domain.FieldPEM:      "Casey",
				domain.FieldDirector: "Morgan",
			}
			if tt.vendor != "" {
				fields[domain.FieldVendorListUpdated] = tt.vendor
			}
			rec := newRecord(domain.DomainIntegration, tt.days, fields)
			rec.DealerID = "I-1"
			rec.Assignee = "Jordan"
			rec.ImplementationType = tt.implType

			classified := classifyOne(t, rec)
			if got := classified.Status(domain.DimIntegrationSLA); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIntegrationSLARequiredFields(t *testing.T) {
	complete := func() domain.Record {
		fields := map[domain.FieldKey]string{
			domain.FieldVendorListUpdated: "No",
			domain.FieldPEM:               "Casey",
			domain.FieldDirector:          "Morgan",
		}
		rec := newRecord(domain.DomainIntegration, intPtr(10), fields)
		rec.DealerID = "I-9"
		rec.Assignee = "Jordan"
		rec.ImplementationType = "Buy/Sell"
		return rec
	}

	// Sanity: the untouched fixture buckets on thresholds.
	classified := classifyOne(t, complete())
	if got := classified.Status(domain.DimIntegrationSLA); got != domain.StatusCritical {
		t.Fatalf("complete record = %q, want Critical", got)
	}

	tests := []struct {
		name   string
		mutate func(*domain.Record)
	}{
		{"missing dealer name", func(r *domain.Record) { r.DealerName = "" }},
		{"missing dealer id", func(r *domain.Record) { r.DealerID = "" }},
		{"missing implementation type", func(r *domain.Record) { r.ImplementationType = "" }},
		{"unassigned", func(r *domain.Record) { r.Assignee = domain.Unassigned }},
		{"missing pem", func(r *domain.Record) { delete(r.Fields, domain.FieldPEM) }},
		{"missing director", func(r *domain.Record) { delete(r.Fields, domain.FieldDirector) }},
		{"vendor yes does not bypass the gate", func(r *domain.Record) {
			r.Fields[domain.FieldVendorListUpdated] = "Yes"
			delete(r.Fields, domain.FieldDirector)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := complete()
			tt.mutate(&rec)
			classified := classifyOne(t, rec)
			if got := classified.Status(domain.DimIntegrationSLA); got != domain.StatusDataIncomplete {
				t.Errorf("status = %q, want %q", got, domain.StatusDataIncomplete)
			}
		})
	}
}

func TestRegressionTesting(t *testing.T) {
	simPast := testAsOf.AddDate(0, 0, -3)
	simFuture := testAsOf.AddDate(0, 0, 4)

	tests := []struct {
		name   string
		status string
		sim    *time.Time
		want   domain.Status
	}{
		{"completed", "Completed", &simPast, domain.StatusCompleted},
		{"wip", "WIP", &simPast, domain.StatusWIP},
		{"unable", "Unable to Complete", &simPast, domain.StatusUnableToComplete},
		{"blank sim past", "", &simPast, domain.StatusDataIncomplete},
		{"blank sim future", "", &simFuture, domain.StatusNone},
		{"blank no sim date", "", nil, domain.StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[domain.FieldKey]string{}
			if tt.status != "" {
				fields[domain.FieldTestingStatus] = tt.status
			}
			rec := newRecord(domain.DomainRegression, intPtr(10), fields)
			rec.SIMStartDate = tt.sim

			classified := classifyOne(t, rec)
			if got := classified.Status(domain.DimRegressionTesting); got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCustomDimension(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	cfg := &domain.DimensionConfig{
		ID:         "crm.at_risk",
		Domain:     domain.DomainCRM,
		Name:       "At Risk",
		Expression: `!rolled_out && days_to_go_live <= 7 && !("configuration_type" in fields) ? "At Risk" : ""`,
		Enabled:    true,
	}
	if err := engine.LoadDimension(cfg); err != nil {
		t.Fatalf("LoadDimension failed: %v", err)
	}

	records := []domain.Record{
		newRecord(domain.DomainCRM, intPtr(5), nil),
		newRecord(domain.DomainCRM, intPtr(30), nil),
		newRecord(domain.DomainRegression, intPtr(5), nil),
	}
	if err := engine.Classify(context.Background(), records, testAsOf); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if got := records[0].Status("crm.at_risk"); got != domain.Status("At Risk") {
		t.Errorf("near-term record = %q, want At Risk", got)
	}
	if got := records[1].Status("crm.at_risk"); !got.None() {
		t.Errorf("far-out record = %q, want none", got)
	}
	if _, ok := records[2].Statuses["crm.at_risk"]; ok {
		t.Error("CRM-scoped dimension leaked into a regression record")
	}
}

func TestValidateDimension(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	bad := &domain.DimensionConfig{ID: "bad", Expression: `days_to_go_live + 1`}
	if err := engine.ValidateDimension(bad); err == nil {
		t.Error("expected error for non-string expression")
	}

	broken := &domain.DimensionConfig{ID: "broken", Expression: `fields[`}
	if err := engine.ValidateDimension(broken); err == nil {
		t.Error("expected error for unparseable expression")
	}

	good := &domain.DimensionConfig{ID: "good", Expression: `rolled_out ? "Done" : ""`}
	if err := engine.ValidateDimension(good); err != nil {
		t.Errorf("ValidateDimension failed for valid config: %v", err)
	}
	if engine.DimensionsCount() != 0 {
		t.Error("ValidateDimension must not load the dimension")
	}
}

func TestReloadDimensions(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	first := &domain.DimensionConfig{ID: "a", Expression: `"X"`, Enabled: true}
	if err := engine.LoadDimension(first); err != nil {
		t.Fatalf("LoadDimension failed: %v", err)
	}

	next := []*domain.DimensionConfig{
		{ID: "b", Expression: `"Y"`, Enabled: true},
		{ID: "c", Expression: `"Z"`, Enabled: false},
	}
	if err := engine.ReloadDimensions(next); err != nil {
		t.Fatalf("ReloadDimensions failed: %v", err)
	}

	if engine.DimensionsCount() != 1 {
		t.Errorf("expected 1 loaded dimension, got %d", engine.DimensionsCount())
	}
	loaded := engine.LoadedDimensions()
	if len(loaded) != 1 || loaded[0].ID != "b" {
		t.Errorf("unexpected loaded set: %+v", loaded)
	}
}
