package orchestration

import (
	"context"
	"fmt"
	"unsafe"
)

// DAGResult is the outcome of one DAG execution (spec §4.8: required vs.
// optional engine failures, SKIP_OPTIONAL fallback, failed_engine_id).
type DAGResult struct {
	// PartialResult is set when one or more optional engines were
	// skipped under a SKIP_OPTIONAL fallback.
	PartialResult bool
	// FailedEngineID is the id of the required engine whose failure
	// aborted the run, or "" if the run completed (possibly partial).
	FailedEngineID string
	// Skipped lists the ids of optional engines skipped via fallback.
	Skipped []string
}

// ExecuteOptions bundles the shared collaborators one DAG run needs.
type ExecuteOptions struct {
	Registry    *Registry
	Buffers     *Manager
	Lifecycle   LifecycleOptions
	Credentials map[string]string
}

// Execute walks cfg in topological order, building one Engine per node
// from opts.Registry, running it through a LifecycleManager, and wiring
// its declared input/output buffers through opts.Buffers.
//
// A required engine's failure (to build, initialize, or run) aborts the
// walk and reports FailedEngineID. An optional engine (EngineConfig
// Optional=true) whose Fallback is FallbackSkipOptional instead marks
// the result PartialResult=true and continues to the next engine; an
// optional engine with no recognized fallback fails like a required one
// (spec §4.8 only defines a fallback for SKIP_OPTIONAL).
func Execute(ctx context.Context, cfg DAGConfig, opts ExecuteOptions) (DAGResult, error) {
	order, err := cfg.TopologicalOrder()
	if err != nil {
		return DAGResult{}, err
	}

	byID := make(map[string]EngineConfig, len(cfg.Engines))
	for _, e := range cfg.Engines {
		byID[e.ID] = e
	}

	var result DAGResult

	for _, id := range order {
		ec := byID[id]

		if err := runOne(ctx, ec, opts); err != nil {
			if ec.Optional && ec.Fallback == FallbackSkipOptional {
				result.PartialResult = true
				result.Skipped = append(result.Skipped, ec.ID)
				continue
			}
			result.FailedEngineID = ec.ID
			return result, fmt.Errorf("orchestration: engine %q: %w", ec.ID, err)
		}
	}

	return result, nil
}

// runOne builds, initializes, and runs a single engine node, wiring its
// first declared input buffer (if any) to its first declared output
// buffer (if any). An engine with no declared output runs as a sink.
func runOne(ctx context.Context, ec EngineConfig, opts ExecuteOptions) error {
	eng, err := opts.Registry.New(ec.Type)
	if err != nil {
		return err
	}

	lm := NewLifecycleManager(eng, opts.Lifecycle)
	defer lm.Dispose()

	if err := lm.Initialize(ec.Config, opts.Credentials); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	var input, output *Buffer
	if len(ec.Inputs) > 0 {
		input, err = opts.Buffers.Get(ec.Inputs[0])
		if err != nil {
			return fmt.Errorf("input buffer: %w", err)
		}
	}
	if len(ec.Outputs) > 0 {
		outName := ec.ID + "." + ec.Outputs[0]
		output, err = opts.Buffers.Get(outName)
		if err != nil {
			kind, n := KindResult, int64(0)
			if input != nil {
				kind, n = input.Kind, input.N
			}
			output, err = opts.Buffers.Allocate(kind, outName, n)
			if err != nil {
				return fmt.Errorf("output buffer: %w", err)
			}
		}
	}

	info := eng.Info()
	if err := checkChunkBounds(info, input, output); err != nil {
		return err
	}

	var inBytes, outBytes []byte
	if input != nil {
		inBytes = input.Data
	}
	if output != nil {
		outBytes = output.Data
	}

	res, err := lm.RunChunk(ctx, inBytes, outBytes)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if output != nil && res.BytesWritten > len(output.Data) {
		return fmt.Errorf("run: engine wrote %d bytes into a %d-byte output buffer", res.BytesWritten, len(output.Data))
	}
	return nil
}

// checkChunkBounds enforces the spec §4.8 pre-RunChunk contract: the
// input must not exceed the engine's advertised max buffer size, and
// both buffers must be 16-byte aligned.
func checkChunkBounds(info EngineInfo, input, output *Buffer) error {
	if input != nil {
		if info.MaxBufferSize > 0 && int64(len(input.Data)) > info.MaxBufferSize {
			return fmt.Errorf("input size %d exceeds engine %q max buffer size %d", len(input.Data), info.Name, info.MaxBufferSize)
		}
		if !isAligned(input.Data) {
			return fmt.Errorf("input buffer for engine %q is not 16-byte aligned", info.Name)
		}
	}
	if output != nil && !isAligned(output.Data) {
		return fmt.Errorf("output buffer for engine %q is not 16-byte aligned", info.Name)
	}
	return nil
}

func isAligned(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&data[0]))%alignment == 0
}
