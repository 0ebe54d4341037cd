// Package main provides a performance benchmarking tool for the rbicalc CLI.
// It generates synthetic batch files of increasing size, evaluates each one
// several times per worker count and ledger backend, treats the first
// successful run as cold and averages the rest as warm, and writes a CSV
// summary for performance analysis and documentation.
//
// Prerequisites:
// - rbicalc binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where batch files and the SQLite ledger are created
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BenchmarkResult holds the result of a benchmark suite for one batch size and worker count.
type BenchmarkResult struct {
	Requests   int
	Workers    int
	NoLedger   string
	ColdLedger string
	WarmLedger string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir      string
	Timeout      time.Duration
	Runs         int
	BatchSizes   []int
	WorkerCounts []int
}

// batchRequest mirrors one entry of the batch file layout.
type batchRequest struct {
	ID      string         `yaml:"id"`
	Family  string         `yaml:"family"`
	Variant string         `yaml:"variant,omitempty"`
	Inputs  map[string]any `yaml:"inputs"`
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:      os.Args[1],
		Timeout:      2 * time.Minute,
		Runs:         4,
		BatchSizes:   []int{100, 1_000, 10_000},
		WorkerCounts: []int{1, 4, 14},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the rbicalc binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("rbicalc"); err != nil {
		return fmt.Errorf("rbicalc binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// syntheticRequest cycles through the formula families so every calculator is exercised.
func syntheticRequest(i int) batchRequest {
	id := "req-" + strconv.Itoa(i)
	f := float64(i%97) / 97
	switch i % 5 {
	case 0:
		return batchRequest{ID: id, Family: "DTHIN", Variant: "DTHIN_" + strconv.Itoa(1+i%16), Inputs: map[string]any{
			"nominalThickness": 10.0, "currentThickness": 10.0 - 4*f, "corrosionRate": 0.1, "age": 5 + i%20,
		}}
	case 1:
		return batchRequest{ID: id, Family: "DFEXT", Inputs: map[string]any{
			"corrosionRate": f, "coatingCondition": []string{"Excellent", "Good", "Fair", "Poor", "Very Poor"}[i%5],
		}}
	case 2:
		return batchRequest{ID: id, Family: "DFCUI", Variant: "DFCUI_ADVANCED", Inputs: map[string]any{
			"operatingTemperature": 60 + i%100, "insulationType": "Mineral Wool", "insulationCondition": "Fair", "weatherExposure": "Marine",
		}}
	case 3:
		return batchRequest{ID: id, Family: "COF", Inputs: map[string]any{"impact": f, "fluidInventory": 1 + i%50}}
	default:
		return batchRequest{ID: id, Family: "RISK_MATRIX", Inputs: map[string]any{"pof": f, "cof": 1 + f}}
	}
}

// writeBatchFile generates a batch file with n requests and returns its path
func writeBatchFile(dir string, n int) (string, error) {
	requests := make([]batchRequest, n)
	for i := range n {
		requests[i] = syntheticRequest(i)
	}
	content, err := yaml.Marshal(map[string]any{"requests": requests})
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("batch_%d.yaml", n))
	return path, os.WriteFile(path, content, 0o600)
}

// runBenchmarks executes all benchmark suites across batch sizes and worker counts
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d batch sizes, %d worker counts, %v timeout, %d runs\n",
		len(config.BatchSizes), len(config.WorkerCounts), config.Timeout, config.Runs)

	for _, size := range config.BatchSizes {
		path, err := writeBatchFile(config.WorkDir, size)
		if err != nil {
			return nil, fmt.Errorf("cannot write batch of %d: %w", size, err)
		}
		for _, workers := range config.WorkerCounts {
			results = append(results, runBenchmarkSuite(config, path, size, workers))
		}
	}
	return results, nil
}

// runBenchmarkSuite runs the batch without a ledger and with a SQLite ledger
func runBenchmarkSuite(config BenchmarkConfig, path string, size, workers int) BenchmarkResult {
	fmt.Printf("Running batch of %d with %d workers\n", size, workers)

	runPhase := func(ledgerArgs []string, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, config.Runs)
		cold, times := runBenchmark(config, path, workers, ledgerArgs)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noLedgerAvg := runPhase([]string{"--ledger-backend", "none"}, "No-ledger")

	ledgerFile := filepath.Join(config.WorkDir, "ledger.db")
	coldTime, warmAvg := runPhase([]string{"--ledger-backend", "sqlite", "--ledger-db-connect", ledgerFile}, "Ledger")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-ledger average: %s, Ledger cold: %s, Ledger warm average: %s\n", noLedgerAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Requests:   size,
		Workers:    workers,
		NoLedger:   noLedgerAvg,
		ColdLedger: coldTimeStr,
		WarmLedger: warmAvg,
	}
}

// runBenchmark executes rbicalc batch several times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path string, workers int, ledgerArgs []string) (coldTime float64, warmTimes []float64) {
	args := append([]string{"batch", path, "--workers", strconv.Itoa(workers), "--color", "no"}, ledgerArgs...)

	var times []float64
	for range config.Runs {
		start := time.Now()
		cmd := exec.Command("rbicalc", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Batch completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/rbicalc_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"requests", "workers", "no_ledger_avg", "ledger_cold", "ledger_warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		record := []string{strconv.Itoa(result.Requests), strconv.Itoa(result.Workers), result.NoLedger, result.ColdLedger, result.WarmLedger}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %6d requests, %2d workers: No-ledger: %s, Cold: %s, Warm: %s\n",
			result.Requests, result.Workers, result.NoLedger, result.ColdLedger, result.WarmLedger)
	}
}
