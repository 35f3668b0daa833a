// Benchmark tool for load-testing a running Config Operations Hub.
//
// Usage:
//   go run cmd/benchmark/main.go -csv /path/to/tracker-export.csv -domain crm -url http://localhost:8080
//
// This tool:
//  1. Reads a tracker CSV export and ingests it as a snapshot
//  2. Hammers the read endpoints (kpis, records, regions) concurrently
//  3. Reports throughput, error rate, and latency percentiles
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// IngestResponse mirrors the hub's snapshot ingest response.
type IngestResponse struct {
	SnapshotID  string `json:"snapshotId"`
	Fingerprint string `json:"fingerprint"`
	RecordCount int    `json:"recordCount"`
}

// Metrics tracks benchmark results.
type Metrics struct {
	TotalRequests int64
	TotalErrors   int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (m *Metrics) record(d time.Duration) {
	m.mu.Lock()
	m.latencies = append(m.latencies, d)
	m.mu.Unlock()
}

func main() {
	csvPath := flag.String("csv", "", "Path to a tracker CSV export")
	baseURL := flag.String("url", "http://localhost:8080", "Hub base URL")
	bizDomain := flag.String("domain", "crm", "Business domain (arc|crm|integration|regression)")
	asOf := flag.String("as-of", time.Now().UTC().Format("2006-01-02"), "As-of date for the ingest")
	requests := flag.Int("requests", 10000, "Total read requests to send")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	verbose := flag.Bool("verbose", false, "Print each request result")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Usage: benchmark -csv /path/to/tracker-export.csv [-domain crm] [-url http://localhost:8080]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("===============================================================")
	fmt.Println("        CONFIG OPERATIONS HUB BENCHMARK - Read Path")
	fmt.Println("===============================================================")
	fmt.Printf("\nCSV File:  %s\n", *csvPath)
	fmt.Printf("Hub URL:   %s\n", *baseURL)
	fmt.Printf("Domain:    %s\n", *bizDomain)
	fmt.Printf("As Of:     %s\n", *asOf)
	fmt.Printf("Workers:   %d\n", *workers)
	fmt.Printf("Requests:  %d\n", *requests)
	fmt.Println()

	// Check the hub is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: hub not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure the hub is running:")
		fmt.Println("  go run cmd/confighub/main.go")
		os.Exit(1)
	}
	fmt.Println("hub is healthy")

	// Ingest the snapshot
	fmt.Printf("\nIngesting %s as a %s snapshot...\n", *csvPath, *bizDomain)
	snap, err := ingestCSV(*baseURL, *bizDomain, *asOf, *csvPath)
	if err != nil {
		fmt.Printf("ERROR: ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot %s ingested (%d records)\n", snap.SnapshotID, snap.RecordCount)

	// Run benchmark
	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(*baseURL, *bizDomain, *requests, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func ingestCSV(baseURL, bizDomain, asOf, path string) (*IngestResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/domains/%s/snapshots?as_of=%s", baseURL, bizDomain, asOf)
	resp, err := http.Post(url, "text/csv", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out IngestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// readPaths are the endpoints each worker cycles through.
var readPaths = []string{
	"/kpis",
	"/records",
	"/regions",
	"/assignees",
	"/upcoming-week",
}

func runBenchmark(baseURL, bizDomain string, requests, numWorkers int, verbose bool) *Metrics {
	metrics := &Metrics{}

	work := make(chan string, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for url := range work {
				start := time.Now()
				err := get(client, url)
				elapsed := time.Since(start)

				atomic.AddInt64(&metrics.TotalRequests, 1)
				metrics.record(elapsed)

				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", url, err)
					}
				} else if verbose {
					fmt.Printf("%s -> %v\n", url, elapsed)
				}
			}
		}()
	}

	for i := 0; i < requests; i++ {
		path := readPaths[i%len(readPaths)]
		work <- fmt.Sprintf("%s/api/v1/domains/%s%s", baseURL, bizDomain, path)
	}
	close(work)

	wg.Wait()
	return metrics
}

func get(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func printResults(m *Metrics, duration time.Duration) {
	sort.Slice(m.latencies, func(i, j int) bool { return m.latencies[i] < m.latencies[j] })

	percentile := func(p float64) time.Duration {
		if len(m.latencies) == 0 {
			return 0
		}
		idx := int(p * float64(len(m.latencies)-1))
		return m.latencies[idx]
	}

	var total time.Duration
	for _, l := range m.latencies {
		total += l
	}
	var avg time.Duration
	if len(m.latencies) > 0 {
		avg = total / time.Duration(len(m.latencies))
	}

	fmt.Println("\n===============================================================")
	fmt.Println("                          RESULTS")
	fmt.Println("===============================================================")
	fmt.Printf("\nDuration:     %v\n", duration.Round(time.Millisecond))
	fmt.Printf("Requests:     %d\n", m.TotalRequests)
	fmt.Printf("Errors:       %d\n", m.TotalErrors)
	if duration > 0 {
		fmt.Printf("Throughput:   %.1f req/s\n", float64(m.TotalRequests)/duration.Seconds())
	}
	fmt.Printf("\nLatency:\n")
	fmt.Printf("  avg:  %v\n", avg.Round(time.Microsecond))
	fmt.Printf("  p50:  %v\n", percentile(0.50).Round(time.Microsecond))
	fmt.Printf("  p95:  %v\n", percentile(0.95).Round(time.Microsecond))
	fmt.Printf("  p99:  %v\n", percentile(0.99).Round(time.Microsecond))
	fmt.Printf("  max:  %v\n", percentile(1.0).Round(time.Microsecond))
	fmt.Println()
}
