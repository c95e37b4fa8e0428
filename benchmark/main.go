// Package main measures signalboard CLI execution times across dataset sizes
// and commands. Each command runs once without a snapshot store and several
// times against a SQLite store seeded by a batch run, so stored authority is
// read back instead of recomputed. The first stored run counts as cold and
// the rest are averaged as warm. Results are written as CSV.
//
// Prerequisites:
// - signalboard binary installed and available in PATH
// - Dataset files small.yaml, medium.yaml and large.yaml in the dataset directory
//
// Usage: go run benchmark/main.go [dataset-dir]
//
//	dataset-dir: Directory containing the dataset files
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult is one CSV row.
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DatasetBase string
	Date        string
	Timeout     time.Duration
	Workers     int
	NoStoreRuns int
	StoreRuns   int
	Datasets    []string
	Commands    map[string][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [dataset-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DatasetBase: os.Args[1],
		Date:        time.Now().UTC().Format("2006-01-02"),
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoStoreRuns: 3,
		StoreRuns:   4,
		Datasets:    []string{"small", "medium", "large"},
		Commands: map[string][]string{
			"signal":      {"--window", "7d"},
			"authority":   nil,
			"mindshare":   nil,
			"leaderboard": nil,
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binary and dataset files exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("signalboard"); err != nil {
		return fmt.Errorf("signalboard binary not found in PATH")
	}

	for _, name := range config.Datasets {
		path := datasetPath(config, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("dataset %s not found at %s", name, path)
		}
	}

	return nil
}

func datasetPath(config BenchmarkConfig, name string) string {
	return filepath.Join(config.DatasetBase, name+".yaml")
}

// runBenchmarks executes every command against every dataset
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, no-store: %d runs, store: %d runs\n",
		len(config.Datasets), config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, name := range config.Datasets {
		fmt.Printf("Benchmarking %s\n", name)

		dbDir, err := os.MkdirTemp("", "signalboard-bench-*")
		if err != nil {
			fmt.Printf("Warning: cannot create temp dir for %s: %v\n", name, err)
			continue
		}
		dbPath := filepath.Join(dbDir, "snapshots.db")

		// Seed the store so stored runs read authority back
		if output, err := runCommand(context.Background(), config, name, "batch", "sqlite", dbPath); err != nil {
			fmt.Printf("Warning: seeding batch failed for %s: %v\nOutput: %s\n", name, err, string(output))
		}

		for _, command := range []string{"signal", "authority", "mindshare", "leaderboard"} {
			results = append(results, runBenchmarkSuite(config, name, command, dbPath))
		}
		_ = os.RemoveAll(dbDir)
	}

	return results
}

// phaseStats summarizes one phase: the first successful run and the mean of the rest.
type phaseStats struct {
	first float64
	mean  float64
	ok    int
}

func summarize(times []float64) phaseStats {
	stats := phaseStats{ok: len(times)}
	if len(times) == 0 {
		return stats
	}
	stats.first = times[0]
	stats.mean = times[0]
	if rest := times[1:]; len(rest) > 0 {
		var sum float64
		for _, t := range rest {
			sum += t
		}
		stats.mean = sum / float64(len(rest))
	}
	return stats
}

func seconds(v float64, ok bool) string {
	if !ok {
		return "TIMEOUT"
	}
	return fmt.Sprintf("%.3fs", v)
}

// runBenchmarkSuite runs both no-store and store benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, command, dbPath string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, dataset)

	fmt.Printf("  No-store phase (%d runs)\n", config.NoStoreRuns)
	noStore := summarize(runBenchmark(config, dataset, command, "none", dbPath, config.NoStoreRuns))
	fmt.Printf("  Store phase (%d runs)\n", config.StoreRuns)
	store := summarize(runBenchmark(config, dataset, command, "sqlite", dbPath, config.StoreRuns))

	result := BenchmarkResult{
		Dataset:     dataset,
		Command:     command,
		NoStoreTime: seconds(noStore.mean, noStore.ok > 0),
		ColdTime:    seconds(store.first, store.ok > 0),
		WarmTime:    seconds(store.mean, store.ok > 1),
	}
	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", result.NoStoreTime, result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark returns the wall time of every run that finished in time and
// printed a completion line.
func runBenchmark(config BenchmarkConfig, dataset, command, backend, dbPath string, numRuns int) []float64 {
	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := runCommand(ctx, config, dataset, command, backend, dbPath)
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil && isSuccess(output) {
			times = append(times, elapsed)
		}
	}
	return times
}

// runCommand invokes the binary on one dataset with the given snapshot backend.
func runCommand(ctx context.Context, config BenchmarkConfig, dataset, command, backend, dbPath string) ([]byte, error) {
	args := []string{
		command,
		"--data", datasetPath(config, dataset),
		"--date", config.Date,
		"--workers", strconv.Itoa(config.Workers),
		"--snapshot-backend", backend,
		"--color", "no",
	}
	if backend == "sqlite" {
		args = append(args, "--snapshot-db-connect", dbPath)
	}
	args = append(args, config.Commands[command]...)

	return exec.CommandContext(ctx, "signalboard", args...).CombinedOutput()
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Computed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("signalboard_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"dataset", "cmd", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoStoreTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	for _, command := range []string{"signal", "authority", "mindshare", "leaderboard"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-store: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoStoreTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
