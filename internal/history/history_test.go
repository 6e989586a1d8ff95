package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldmorph/internal/morph"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)
	store.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	sess := morph.NewSession(morph.WithSeed(11))
	params := morph.PresetStable.Params()
	require.NoError(t, sess.Initialize(32, 32, params))

	id, err := store.StartRun(ctx, RunInfo{Preset: "Stable", Width: 32, Height: 32, Seed: 11, Params: params})
	require.NoError(t, err)

	var want []morph.Statistics
	for i := 0; i < 3; i++ {
		for j := 0; j < 5; j++ {
			require.NoError(t, sess.Tick(0.016))
		}
		stats, err := sess.Statistics()
		require.NoError(t, err)
		require.NoError(t, store.Record(ctx, id, sess.Status(), stats))
		want = append(want, stats)
	}

	samples, err := store.Samples(ctx, id)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	for i, sm := range samples {
		assert.Equal(t, uint64(5*(i+1)), sm.Cycle)
		assert.Equal(t, want[i].AlphaCrystals, sm.Stats.AlphaCrystals)
		assert.Equal(t, want[i].BetaCrystals, sm.Stats.BetaCrystals)
		assert.Equal(t, want[i].HumanSettlements, sm.Stats.HumanSettlements)
		assert.InDelta(t, want[i].AverageMantleEnergy, sm.Stats.AverageMantleEnergy, 1e-9)
	}

	run, err := store.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Stable", run.Preset)
	assert.Equal(t, int64(11), run.Seed)
	assert.Equal(t, 3, run.Samples)
	assert.Equal(t, params, run.Params)
	assert.True(t, run.StartedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}

func TestRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)

	first, err := store.StartRun(ctx, RunInfo{Preset: "Default", Width: 8, Height: 8, Params: morph.DefaultParams()})
	require.NoError(t, err)
	second, err := store.StartRun(ctx, RunInfo{Preset: "HighEnergy", Width: 16, Height: 8, Params: morph.PresetHighEnergy.Params()})
	require.NoError(t, err)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
	assert.Equal(t, 0, runs[0].Samples)
}

func TestRecordReplacesSameCycle(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)
	id, err := store.StartRun(ctx, RunInfo{Preset: "Default", Width: 4, Height: 4, Params: morph.DefaultParams()})
	require.NoError(t, err)

	st := morph.Status{Initialized: true, Width: 4, Height: 4, CycleCount: 7}
	require.NoError(t, store.Record(ctx, id, st, morph.Statistics{AlphaCrystals: 1}))
	require.NoError(t, store.Record(ctx, id, st, morph.Statistics{AlphaCrystals: 4}))

	samples, err := store.Samples(ctx, id)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 4, samples[0].Stats.AlphaCrystals)
}

func TestUnknownRun(t *testing.T) {
	store := openTemp(t)
	_, err := store.Run(context.Background(), 404)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.StartRun(ctx, RunInfo{Preset: "Default", Width: 2, Height: 2, Params: morph.DefaultParams()})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
