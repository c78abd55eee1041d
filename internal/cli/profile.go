package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// profiler writes the CPU, heap and execution-trace profiles requested on
// the command line.
type profiler struct {
	cpu   *os.File
	trace *os.File
	mem   string
}

func startProfiling(cpuPath, memPath, tracePath string) (*profiler, error) {
	p := &profiler{mem: memPath}

	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
		p.cpu = f
	}

	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			_ = p.stop()
			return nil, fmt.Errorf("create trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			_ = p.stop()
			return nil, fmt.Errorf("start trace: %w", err)
		}
		p.trace = f
	}

	return p, nil
}

// stop flushes every profile that was started.
func (p *profiler) stop() error {
	var errs []error

	if p.cpu != nil {
		pprof.StopCPUProfile()
		errs = append(errs, p.cpu.Close())
	}
	if p.trace != nil {
		trace.Stop()
		errs = append(errs, p.trace.Close())
	}
	if p.mem != "" {
		errs = append(errs, writeHeapProfile(p.mem))
	}

	return errors.Join(errs...)
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create memory profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write memory profile: %w", err)
	}
	return f.Close()
}
