package recorder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/model"
)

func TestSQLiteRecorder_RunsAndSnapshots(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "pulse.db"), nil)
	require.NoError(t, err)
	defer r.Close()

	start := time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)
	require.NoError(t, r.RecordRun(&RunRecord{
		RunID: "run-1", SessionKey: "261016-2in",
		StartedAt: start, FinishedAt: start.Add(3 * time.Second),
		Attempted: 3, Succeeded: 2, Failed: []string{"BAD"},
	}))
	require.NoError(t, r.RecordRun(&RunRecord{
		RunID: "run-2", SessionKey: "261016-3post",
		StartedAt: start.Add(time.Hour), FinishedAt: start.Add(time.Hour),
		Attempted: 2, Succeeded: 2, TestMode: true,
	}))

	runs, err := r.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.True(t, runs[0].TestMode)
	assert.Nil(t, runs[0].Failed)
	assert.Equal(t, []string{"BAD"}, runs[1].Failed)
	assert.Equal(t, start.Unix(), runs[1].StartedAt.Unix())

	snap := &model.TickerSnapshot{
		Symbol: "ACME", Prediction: 5.06, Recommendation: model.RecHold,
		CompanyInfo: &model.CompanyInfo{CurrentPrice: 100, DayChangePct: 2},
	}
	require.NoError(t, r.RecordSnapshot("run-1", "261016-2in", snap))
	snap.AnalystRecommendations = &model.AnalystRecommendations{ConsensusScore: 8.75, Total: 4}
	require.NoError(t, r.RecordSnapshot("run-2", "261016-3post", snap))

	n, err := r.SnapshotCount("ACME")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLiteRecorder_DuplicateRunID(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "pulse.db"), nil)
	require.NoError(t, err)
	defer r.Close()

	run := &RunRecord{RunID: "same", SessionKey: "261016-1pre"}
	require.NoError(t, r.RecordRun(run))
	assert.Error(t, r.RecordRun(run))
}

func TestOpen_FallsBackToNoop(t *testing.T) {
	assert.IsType(t, &NoopRecorder{}, Open("", nil))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	rec := Open(filepath.Join(blocker, "pulse.db"), nil)
	defer rec.Close()
	assert.IsType(t, &NoopRecorder{}, rec)

	runs, err := rec.RecentRuns(5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "pulse.db")
	rec := Open(path, nil)
	defer rec.Close()
	require.IsType(t, &SQLiteRecorder{}, rec)

	require.NoError(t, rec.RecordRun(&RunRecord{RunID: "run-1", SessionKey: "261016-1pre", StartedAt: time.Now()}))
	runs, err := rec.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
