package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"aegis/internal/workers"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUseCaseRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	uc := workers.UseCase{
		ID: "uc-1", Name: "Support Assistant", Description: "chat support",
		Industry: "Retail", Audience: "General Public", Criticality: "Mission Critical",
	}
	a := workers.Assessment{
		RequestsPerDay: 5000,
		Frameworks:     []string{"GDPR"},
		DataTypes:      []string{"PII"},
		HumanOversight: true,
	}
	require.NoError(t, s.SaveUseCase(ctx, uc, a))

	gotUC, gotA, err := s.GetUseCase(ctx, "uc-1")
	require.NoError(t, err)
	require.Equal(t, uc, gotUC)
	require.Equal(t, a, gotA)

	// Upsert replaces.
	uc.Audience = "Internal"
	require.NoError(t, s.SaveUseCase(ctx, uc, a))
	gotUC, _, err = s.GetUseCase(ctx, "uc-1")
	require.NoError(t, err)
	require.Equal(t, "Internal", gotUC.Audience)
}

func TestGetUseCaseNotFound(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.GetUseCase(context.Background(), "absent")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestRulesForUseCase(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUseCase(ctx, workers.UseCase{ID: "uc-1", Name: "x"}, workers.Assessment{}))
	require.NoError(t, s.SaveRule(ctx, "uc-1", workers.Rule{ID: "rule-1", Category: "agent_behavior", Severity: "high", Description: "stay in scope"}))
	require.NoError(t, s.SaveRule(ctx, "uc-1", workers.Rule{ID: "rule-2", Category: "cost_control", Severity: "medium", Description: "cap tokens"}))

	rules, err := s.RulesFor(ctx, "uc-1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	require.Equal(t, "rule-1", rules[0].ID)

	none, err := s.RulesFor(ctx, "uc-other")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestEvaluationsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUseCase(ctx, workers.UseCase{ID: "uc-1", Name: "x"}, workers.Assessment{}))

	older := workers.EvaluationRecord{ID: "ev-1", CompletedAt: time.Now().Add(-time.Hour), Score: 0.6}
	newer := workers.EvaluationRecord{ID: "ev-2", CompletedAt: time.Now(), Score: 0.8}
	require.NoError(t, s.RecordEvaluation(ctx, "uc-1", older))
	require.NoError(t, s.RecordEvaluation(ctx, "uc-1", newer))

	evals, err := s.EvaluationsFor(ctx, "uc-1")
	require.NoError(t, err)
	require.Len(t, evals, 2)
	require.Equal(t, "ev-2", evals[0].ID)
	require.Equal(t, 0.8, evals[0].Score)
}
