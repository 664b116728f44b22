// Package aggregator builds the read-only context snapshot workers consume,
// either from the record store or from a JSON file.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"aegis/internal/logging"
	"aegis/internal/store"
	"aegis/internal/workers"
)

// Aggregator assembles evaluation contexts from stored records.
type Aggregator struct {
	store *store.Store
}

// New creates an aggregator over the given store.
func New(st *store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Build assembles the context snapshot for one use case: its assessment, the
// known rule inventory, and prior evaluation history. The returned context
// is treated as immutable for the duration of one orchestration run.
func (a *Aggregator) Build(ctx context.Context, useCaseID string, mode workers.GenerationMode) (*workers.Context, error) {
	uc, assessment, err := a.store.GetUseCase(ctx, useCaseID)
	if err != nil {
		return nil, fmt.Errorf("aggregating context: %w", err)
	}

	rules, err := a.store.RulesFor(ctx, useCaseID)
	if err != nil {
		return nil, fmt.Errorf("aggregating context: %w", err)
	}

	evals, err := a.store.EvaluationsFor(ctx, useCaseID)
	if err != nil {
		return nil, fmt.Errorf("aggregating context: %w", err)
	}

	logging.Context("built context for %s: %d rule(s), %d prior evaluation(s)", useCaseID, len(rules), len(evals))
	return &workers.Context{
		UseCase:             uc,
		Assessment:          assessment,
		Rules:               rules,
		PreviousEvaluations: evals,
		Mode:                mode,
	}, nil
}

// FromFile loads a context snapshot from a JSON file, for running the
// pipeline without a populated store.
func FromFile(path string, mode workers.GenerationMode) (*workers.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var ec workers.Context
	if err := json.Unmarshal(data, &ec); err != nil {
		return nil, fmt.Errorf("parsing context file %s: %w", path, err)
	}
	ec.Mode = mode
	return &ec, nil
}
