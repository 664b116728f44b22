package aggregator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"aegis/internal/store"
	"aegis/internal/workers"
)

func TestBuildFromStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "agg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	uc := workers.UseCase{ID: "uc-1", Name: "Support Assistant", Audience: "General Public"}
	assessment := workers.Assessment{RequestsPerDay: 5000, Frameworks: []string{"GDPR"}}
	require.NoError(t, st.SaveUseCase(ctx, uc, assessment))
	require.NoError(t, st.SaveRule(ctx, "uc-1", workers.Rule{ID: "rule-1", Category: "agent_behavior"}))
	require.NoError(t, st.RecordEvaluation(ctx, "uc-1", workers.EvaluationRecord{ID: "ev-1", CompletedAt: time.Now(), Score: 0.75}))

	ec, err := New(st).Build(ctx, "uc-1", workers.ModeScenarios)
	require.NoError(t, err)
	require.Equal(t, uc, ec.UseCase)
	require.Equal(t, assessment, ec.Assessment)
	require.Len(t, ec.Rules, 1)
	require.Len(t, ec.PreviousEvaluations, 1)
	require.Equal(t, workers.ModeScenarios, ec.Mode)
}

func TestBuildUnknownUseCase(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "agg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = New(st).Build(context.Background(), "absent", workers.ModeScenarios)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.json")
	content := `{
		"useCase": {"id": "uc-file", "name": "File Case", "audience": "Internal"},
		"assessment": {"requestsPerDay": 100},
		"rules": [{"id": "rule-1", "category": "cost_control"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ec, err := FromFile(path, workers.ModeGuardrails)
	require.NoError(t, err)
	require.Equal(t, "uc-file", ec.UseCase.ID)
	require.Len(t, ec.Rules, 1)
	require.Equal(t, workers.ModeGuardrails, ec.Mode)

	_, err = FromFile(filepath.Join(t.TempDir(), "absent.json"), workers.ModeScenarios)
	require.Error(t, err)
}
