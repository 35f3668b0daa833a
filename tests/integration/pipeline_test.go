//go:build integration
// +build integration

// Package integration provides end-to-end tests for the Config
// Operations Hub.
//
// These tests verify the COMPLETE snapshot pipeline:
//
//	Raw rows → Normalize → Classify → Aggregate → KPI response
//
// Run with: go test -tags=integration -v ./tests/integration/...
//
// UNDERSTANDING THE DOMAIN:
//
//  1. SNAPSHOT: One full tracker export for a business domain (arc, crm,
//     integration, regression), evaluated against an as-of date.
//
//  2. DIMENSION: One derived status column, e.g. crm.configuration or
//     integration.sla. Built-in dimensions are compiled in; custom ones
//     are CEL expressions configured via POST /dimensions.
//
//  3. STATUS: The derived categorical value. An empty status means "not
//     applicable yet" and keeps the record out of the KPI denominator.
//
//  4. KPI REPORT: Per-status counts and rates over the filtered
//     snapshot. Rates are percentages of the non-null denominator.
//
// The hub must be running before these tests: go run cmd/confighub/main.go
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// TestConfig holds test environment configuration
type TestConfig struct {
	BaseURL string
}

func getTestConfig() TestConfig {
	baseURL := os.Getenv("CONFIGHUB_TEST_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return TestConfig{BaseURL: baseURL}
}

// IngestRequest is the row set sent to POST /snapshots
type IngestRequest struct {
	AsOf string              `json:"asOf"`
	Rows []map[string]string `json:"rows"`
}

// IngestResponse is what POST /snapshots returns
type IngestResponse struct {
	SnapshotID  string `json:"snapshotId"`
	Fingerprint string `json:"fingerprint"`
	RawRowCount int    `json:"rawRowCount"`
	RecordCount int    `json:"recordCount"`
	Metadata    struct {
		TraceID string `json:"traceId"`
		TotalMs int64  `json:"totalMs"`
		Version string `json:"version"`
	} `json:"metadata"`
}

// StatusCount is one entry of a KPI report
type StatusCount struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Rate   float64 `json:"rate"`
}

// KPIResponse is what GET /kpis returns
type KPIResponse struct {
	SnapshotID string `json:"snapshotId"`
	Report     struct {
		Dimension    string        `json:"dimension"`
		Counts       []StatusCount `json:"counts"`
		Denominator  int           `json:"denominator"`
		TotalRecords int           `json:"totalRecords"`
	} `json:"report"`
}

func (r *KPIResponse) count(status string) int {
	for _, c := range r.Report.Counts {
		if c.Status == status {
			return c.Count
		}
	}
	return 0
}

func ingest(t *testing.T, config TestConfig, bizDomain string, req IngestRequest) IngestResponse {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}

	url := fmt.Sprintf("%s/api/v1/domains/%s/snapshots", config.BaseURL, bizDomain)
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, string(respBody))
	}

	var result IngestResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body: %s)", err, string(respBody))
	}

	return result
}

func getKPIs(t *testing.T, config TestConfig, bizDomain, query string) KPIResponse {
	t.Helper()

	url := fmt.Sprintf("%s/api/v1/domains/%s/kpis?%s", config.BaseURL, bizDomain, query)
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, string(respBody))
	}

	var result KPIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body: %s)", err, string(respBody))
	}
	return result
}

// asOf is the fixed "today" for every snapshot in this suite.
const asOf = "2025-06-15"

// ============================================================================
// SCENARIO 1: CRM configuration mix
// ============================================================================

func TestCRMConfigurationPipeline(t *testing.T) {
	/*
	   SCENARIO: Three CRM stores - one Standard, one Copy, one already
	   rolled out with a blank configuration cell.

	   EXPECTED BEHAVIOR:
	   - Standard and Copy pass through as statuses
	   - The rolled-out store's blank cell derives "Data Incorrect":
	     a live store must have had a configuration
	   - Denominator is 3, rates are thirds
	*/
	config := getTestConfig()

	req := IngestRequest{
		AsOf: asOf,
		Rows: []map[string]string{
			{
				"Dealer Name":        "Sunrise Motors",
				"Dealer ID":          "D-1",
				"Go Live Date":       "2025-06-20",
				"Region":             "NAM",
				"Configuration Type": "Standard",
			},
			{
				"Dealer Name":        "Lakeside Auto",
				"Dealer ID":          "D-2",
				"Go Live Date":       "2025-07-10",
				"Region":             "EMEA",
				"Configuration Type": "Copy",
			},
			{
				"Dealer Name":  "Hilltop Cars",
				"Dealer ID":    "D-3",
				"Go Live Date": "2025-06-01", // already live, blank config
				"Region":       "NAM",
			},
		},
	}

	ingested := ingest(t, config, "crm", req)
	if ingested.RecordCount != 3 {
		t.Fatalf("Expected 3 records, got %d", ingested.RecordCount)
	}

	result := getKPIs(t, config, "crm", "dimension=crm.configuration&snapshot="+ingested.SnapshotID)

	if result.Report.Denominator != 3 {
		t.Errorf("Expected denominator 3, got %d", result.Report.Denominator)
	}
	if got := result.count("Standard"); got != 1 {
		t.Errorf("Expected 1 Standard, got %d", got)
	}
	if got := result.count("Copy"); got != 1 {
		t.Errorf("Expected 1 Copy, got %d", got)
	}
	if got := result.count("Data Incorrect"); got != 1 {
		t.Errorf("Expected 1 Data Incorrect, got %d", got)
	}

	t.Logf("CRM configuration mix: %+v", result.Report.Counts)
}

// ============================================================================
// SCENARIO 2: Rolled-out boundary (go-live day itself is NOT rolled out)
// ============================================================================

func TestRolledOutBoundary(t *testing.T) {
	/*
	   SCENARIO: A store going live exactly on the as-of date, with a
	   blank configuration cell.

	   EXPECTED BEHAVIOR:
	   - Day 0 is not rolled out: rolled-out means strictly negative
	     days to go live
	   - A future (or day-0) store with a blank cell is simply "not
	     applicable yet" and stays out of the denominator
	*/
	config := getTestConfig()

	req := IngestRequest{
		AsOf: asOf,
		Rows: []map[string]string{
			{
				"Dealer Name":  "GoLive Today",
				"Dealer ID":    "D-10",
				"Go Live Date": asOf, // exactly today
				"Region":       "NAM",
			},
		},
	}

	ingested := ingest(t, config, "crm", req)
	result := getKPIs(t, config, "crm", "dimension=crm.configuration&snapshot="+ingested.SnapshotID)

	if result.Report.Denominator != 0 {
		t.Errorf("Expected denominator 0 for day-0 blank store, got %d", result.Report.Denominator)
	}
	if result.Report.TotalRecords != 1 {
		t.Errorf("Expected 1 total record, got %d", result.Report.TotalRecords)
	}

	t.Logf("Day-0 store stayed out of the denominator")
}

// ============================================================================
// SCENARIO 3: Integration SLA thresholds
// ============================================================================

func TestIntegrationSLAPipeline(t *testing.T) {
	/*
	   SCENARIO: Three fully-staffed integration stores with unanswered
	   vendor lists: a Conquest store 45 days out, a Buy/Sell store 10
	   days out, and a Buy/Sell store 2 days out. A fourth store is
	   missing its PEM.

	   EXPECTED BEHAVIOR:
	   - Conquest runs on a 60/30 runway: 45 days → Critical
	   - Standard types run on 15/3: 10 days → Critical, 2 days → Escalated
	   - The store with a missing required field derives Data Incomplete
	     before any threshold bucketing
	*/
	config := getTestConfig()

	req := IngestRequest{
		AsOf: asOf,
		Rows: []map[string]string{
			{
				"Dealer Name":         "Conquest Store",
				"Dealer ID":           "I-1",
				"Go Live Date":        "2025-07-30", // 45 days out
				"Implementation Type": "Conquest",
				"Vendor List Updated": "No",
				"PEM":                 "Casey",
				"Director":            "Morgan",
				"Assigned To":         "Jordan",
				"Region":              "NAM",
			},
			{
				"Dealer Name":         "BuySell Mid",
				"Dealer ID":           "I-2",
				"Go Live Date":        "2025-06-25", // 10 days out
				"Implementation Type": "Buy/Sell",
				"Vendor List Updated": "No",
				"PEM":                 "Casey",
				"Director":            "Morgan",
				"Assigned To":         "Jordan",
				"Region":              "NAM",
			},
			{
				"Dealer Name":         "BuySell Close",
				"Dealer ID":           "I-3",
				"Go Live Date":        "2025-06-17", // 2 days out
				"Implementation Type": "Buy/Sell",
				"Vendor List Updated": "No",
				"PEM":                 "Casey",
				"Director":            "Morgan",
				"Assigned To":         "Jordan",
				"Region":              "EMEA",
			},
			{
				"Dealer Name":         "Missing PEM",
				"Dealer ID":           "I-4",
				"Go Live Date":        "2025-06-25",
				"Implementation Type": "Buy/Sell",
				"Vendor List Updated": "No",
				"Director":            "Morgan",
				"Assigned To":         "Jordan",
				"Region":              "NAM",
			},
		},
	}

	ingested := ingest(t, config, "integration", req)
	result := getKPIs(t, config, "integration", "dimension=integration.sla&snapshot="+ingested.SnapshotID)

	if got := result.count("Critical"); got != 2 {
		t.Errorf("Expected 2 Critical, got %d", got)
	}
	if got := result.count("Escalated"); got != 1 {
		t.Errorf("Expected 1 Escalated, got %d", got)
	}
	if got := result.count("Data Incomplete"); got != 1 {
		t.Errorf("Expected 1 Data Incomplete, got %d", got)
	}

	t.Logf("Integration SLA mix: %+v", result.Report.Counts)
}

// ============================================================================
// SCENARIO 4: Region filtering keeps the full universe
// ============================================================================

func TestRegionFilterPreservesUniverse(t *testing.T) {
	config := getTestConfig()

	req := IngestRequest{
		AsOf: asOf,
		Rows: []map[string]string{
			{"Dealer Name": "A", "Dealer ID": "R-1", "Go Live Date": "2025-06-20", "Region": "NAM", "Configuration Type": "Standard"},
			{"Dealer Name": "B", "Dealer ID": "R-2", "Go Live Date": "2025-06-21", "Region": "EMEA", "Configuration Type": "Copy"},
		},
	}

	ingested := ingest(t, config, "crm", req)

	url := fmt.Sprintf("%s/api/v1/domains/crm/regions?region=NAM&snapshot=%s", config.BaseURL, ingested.SnapshotID)
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var regions struct {
		Regions []string `json:"regions"`
		Counts  []struct {
			Region string `json:"region"`
			Count  int    `json:"count"`
		} `json:"counts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&regions); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	// The filtered-out region must survive as a zero-count option
	found := false
	for _, c := range regions.Counts {
		if c.Region == "EMEA" {
			found = true
			if c.Count != 0 {
				t.Errorf("Expected EMEA count 0 under NAM filter, got %d", c.Count)
			}
		}
	}
	if !found {
		t.Error("Expected EMEA to remain in the region universe")
	}
}

// ============================================================================
// SCENARIO 5: Input validation
// ============================================================================

func TestValidationErrors(t *testing.T) {
	config := getTestConfig()
	client := &http.Client{Timeout: 10 * time.Second}

	post := func(path, contentType, body string) int {
		t.Helper()
		resp, err := client.Post(config.BaseURL+path, contentType, bytes.NewReader([]byte(body)))
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode
	}

	t.Run("UnknownDomain", func(t *testing.T) {
		if code := post("/api/v1/domains/payroll/snapshots", "application/json", `{"rows":[{"a":"b"}]}`); code != http.StatusNotFound {
			t.Errorf("Expected 404 for unknown domain, got %d", code)
		}
	})

	t.Run("EmptyRows", func(t *testing.T) {
		if code := post("/api/v1/domains/crm/snapshots", "application/json", `{"rows":[]}`); code != http.StatusBadRequest {
			t.Errorf("Expected 400 for empty rows, got %d", code)
		}
	})

	t.Run("MissingRequiredColumn", func(t *testing.T) {
		body := `{"asOf":"2025-06-15","rows":[{"Flavor":"vanilla"}]}`
		if code := post("/api/v1/domains/crm/snapshots", "application/json", body); code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422 for unresolvable columns, got %d", code)
		}
	})
}

// ============================================================================
// SCENARIO 6: Response metadata verification
// ============================================================================

func TestResponseMetadata(t *testing.T) {
	config := getTestConfig()

	req := IngestRequest{
		AsOf: asOf,
		Rows: []map[string]string{
			{"Dealer Name": "Meta Motors", "Dealer ID": "M-1", "Go Live Date": "2025-06-20", "Region": "NAM"},
		},
	}

	result := ingest(t, config, "crm", req)

	if result.SnapshotID == "" {
		t.Error("Missing snapshotId")
	}
	if result.Fingerprint == "" {
		t.Error("Missing fingerprint")
	}
	if result.Metadata.TraceID == "" {
		t.Error("Missing metadata.traceId")
	}
	if result.Metadata.TotalMs < 0 {
		t.Error("Invalid metadata.totalMs (negative)")
	}

	t.Logf("Metadata complete: snapshot=%s, traceId=%s, totalMs=%d",
		result.SnapshotID[:8], result.Metadata.TraceID[:8], result.Metadata.TotalMs)
}
