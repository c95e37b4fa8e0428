package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/huangsam/signalboard/internal/contract"
)

// profiler owns the CPU profile file for one process run.
type profiler struct {
	prefix string
	cpu    *os.File
}

// activeProfiler is nil unless --profile was given.
var activeProfiler *profiler

// startProfiling begins CPU sampling under the configured prefix. It is a
// no-op when profiling is off or already running.
func startProfiling(profile *contract.ProfileConfig) error {
	if !profile.Enabled || activeProfiler != nil {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		_ = cpuFile.Close()
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	activeProfiler = &profiler{prefix: profile.Prefix, cpu: cpuFile}

	// stdout stays clean for json, csv and MCP
	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stop ends CPU sampling and writes a heap profile next to it.
func (p *profiler) stop() error {
	pprof.StopCPUProfile()
	cpuErr := p.cpu.Close()

	memFile, err := os.Create(p.prefix + ".mem.prof")
	if err != nil {
		return errors.Join(cpuErr, fmt.Errorf("could not create memory profile: %w", err))
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return errors.Join(cpuErr, fmt.Errorf("could not write memory profile: %w", err))
	}
	if cpuErr != nil {
		return fmt.Errorf("could not close CPU profile: %w", cpuErr)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", p.prefix)
	return err
}

// StopProfiling flushes profiles if profiling was started.
func StopProfiling() error {
	if activeProfiler == nil {
		return nil
	}
	p := activeProfiler
	activeProfiler = nil
	return p.stop()
}
