package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"aegis/internal/logging"
	"aegis/internal/workers"
)

// SelectActiveWorkers evaluates each candidate's activation rule against the
// context and returns the active set in priority order. It is a pure
// function: identical context always yields the identical set.
func SelectActiveWorkers(candidates []workers.Specialist, ec *workers.Context) []workers.Specialist {
	var active []workers.Specialist
	for _, w := range candidates {
		if w.ShouldActivate(ec) {
			active = append(active, w)
		}
	}
	return active
}

// GatherProposals invokes every active worker concurrently and waits for all
// of them to settle. A single worker's failure or panic is absorbed and
// logged; it contributes nothing to the result. Partial success is the
// normal path.
func GatherProposals(ctx context.Context, active []workers.Specialist, ec *workers.Context) []*workers.Proposal {
	results := make([]*workers.Proposal, len(active))

	var g errgroup.Group
	for i, w := range active {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					logging.OrchestratorWarn("worker %s panicked, dropping its contribution: %v", w.ID(), r)
				}
			}()
			proposal, err := w.GenerateProposals(ctx, ec)
			if err != nil {
				logging.OrchestratorWarn("worker %s failed, dropping its contribution: %v", w.ID(), err)
				return nil
			}
			results[i] = proposal
			return nil
		})
	}
	// Worker errors are absorbed above; Wait only joins.
	_ = g.Wait()

	proposals := make([]*workers.Proposal, 0, len(results))
	for _, p := range results {
		if p != nil {
			proposals = append(proposals, p)
		}
	}
	logging.Orchestrator("gathered %d proposal(s) from %d active worker(s)", len(proposals), len(active))
	return proposals
}

// workerIDs renders the active set for logs and metadata.
func workerIDs(active []workers.Specialist) string {
	ids := ""
	for i, w := range active {
		if i > 0 {
			ids += ", "
		}
		ids += w.ID()
	}
	if ids == "" {
		return "(none)"
	}
	return fmt.Sprintf("[%s]", ids)
}
