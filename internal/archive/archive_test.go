package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handlens/handlens/analyzer"
	"github.com/handlens/handlens/ev"
	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/poker"
)

func testStore(t *testing.T) (*Store, *quartz.Mock) {
	t.Helper()
	mock := quartz.NewMock(t)
	store, err := Open(filepath.Join(t.TempDir(), "archive.db"), mock)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mock
}

func sampleHand(t *testing.T, id string) history.Hand {
	t.Helper()
	hole, err := poker.ParseHand("QdQc")
	require.NoError(t, err)
	h := history.Hand{
		ID:         id,
		BigBlind:   1,
		ButtonSeat: 1,
		HeroID:     "hero",
		Players: []history.Player{
			{ID: "hero", Seat: 0, StackBB: 100},
			{ID: "villain", Seat: 1, StackBB: 100},
		},
		Actions: []history.Action{
			{PlayerID: "villain", Street: history.Preflop, Kind: history.Post, AmountBB: 0.5},
			{PlayerID: "hero", Street: history.Preflop, Kind: history.Post, AmountBB: 1},
			{PlayerID: "villain", Street: history.Preflop, Kind: history.Raise, AmountBB: 3},
			{PlayerID: "hero", Street: history.Preflop, Kind: history.Raise, AmountBB: 9},
		},
		Shown: map[string]poker.Hand{"hero": hole},
	}
	h.EnsureActionIDs()
	require.NoError(t, h.Validate())
	return h
}

func TestPutGetHandRoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	h := sampleHand(t, "rt-1")
	require.NoError(t, store.PutHand(ctx, h))

	got, err := store.GetHand(ctx, "rt-1")
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = store.GetHand(ctx, "nope")
	require.ErrorIs(t, err, ErrHandNotFound)
}

func TestPutHandUpsert(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	h := sampleHand(t, "up-1")
	require.NoError(t, store.PutHand(ctx, h))

	h.HeroID = "villain"
	require.NoError(t, store.PutHand(ctx, h))

	infos, err := store.ListHands(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "villain", infos[0].HeroID)

	got, err := store.GetHand(ctx, "up-1")
	require.NoError(t, err)
	assert.Equal(t, "villain", got.HeroID)
}

func TestListHands(t *testing.T) {
	store, mock := testStore(t)
	ctx := context.Background()

	first := sampleHand(t, "list-1")
	require.NoError(t, store.PutHand(ctx, first))
	mock.Advance(time.Minute).MustWait(ctx)
	require.NoError(t, store.PutHand(ctx, sampleHand(t, "list-2")))

	infos, err := store.ListHands(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "list-1", infos[0].ID)
	assert.Equal(t, "list-2", infos[1].ID)
	assert.Equal(t, 2, infos[0].Players)
	assert.Equal(t, len(first.Actions), infos[0].Actions)
	assert.Equal(t, 1.0, infos[0].BigBlind)
	assert.True(t, infos[0].ImportedAt.Before(infos[1].ImportedAt))
}

func TestRuns(t *testing.T) {
	store, mock := testStore(t)
	ctx := context.Background()

	_, err := store.LatestRun(ctx)
	require.ErrorIs(t, err, ErrNoRuns)

	cfg1 := analyzer.DefaultConfig()
	run1, err := store.BeginRun(ctx, cfg1)
	require.NoError(t, err)
	require.NotEmpty(t, run1)

	mock.Advance(time.Minute).MustWait(ctx)
	cfg2 := analyzer.DefaultConfig()
	cfg2.Tau = 0.1
	want := mock.Now().UTC()
	run2, err := store.BeginRun(ctx, cfg2)
	require.NoError(t, err)
	require.NotEqual(t, run1, run2)

	info, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run2, info.ID)
	assert.InDelta(t, 0.1, info.Config.Tau, 1e-9)
	assert.WithinDuration(t, want, info.StartedAt, time.Second)
}

func TestAnalysesRoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	h := sampleHand(t, "ana-1")
	require.NoError(t, store.PutHand(ctx, h))

	ha, err := analyzer.Analyze(h, "", analyzer.DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, ha.Actions)

	run, err := store.BeginRun(ctx, analyzer.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, store.PutAnalyses(ctx, run, ha))

	got, err := store.AnalysesForHand(ctx, "ana-1")
	require.NoError(t, err)
	require.Len(t, got, len(ha.Actions))
	assert.Equal(t, run, got[0].RunID)
	assert.Equal(t, "ana-1", got[0].HandID)
	assert.Equal(t, ha.Actions[0], got[0].Record, "stored record must survive the round trip")

	// rewriting the same run must not duplicate rows
	require.NoError(t, store.PutAnalyses(ctx, run, ha))
	got, err = store.AnalysesForHand(ctx, "ana-1")
	require.NoError(t, err)
	assert.Len(t, got, len(ha.Actions))
}

func TestAnalysesPickLatestRun(t *testing.T) {
	store, mock := testStore(t)
	ctx := context.Background()

	h := sampleHand(t, "latest-1")
	require.NoError(t, store.PutHand(ctx, h))
	ha, err := analyzer.Analyze(h, "", analyzer.DefaultConfig())
	require.NoError(t, err)

	run1, err := store.BeginRun(ctx, analyzer.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, store.PutAnalyses(ctx, run1, ha))

	mock.Advance(time.Minute).MustWait(ctx)
	run2, err := store.BeginRun(ctx, analyzer.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, store.PutAnalyses(ctx, run2, ha))

	got, err := store.AnalysesForHand(ctx, "latest-1")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, sa := range got {
		assert.Equal(t, run2, sa.RunID)
	}

	old, err := store.AnalysesForRun(ctx, run1)
	require.NoError(t, err)
	require.Len(t, old, len(ha.Actions))
	assert.Equal(t, run1, old[0].RunID)
}

func TestAggregates(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	h := sampleHand(t, "agg-1")
	require.NoError(t, store.PutHand(ctx, h))
	run, err := store.BeginRun(ctx, analyzer.DefaultConfig())
	require.NoError(t, err)

	rec := func(id string, st history.Street, v ev.Verdict, delta, totalEV float64) analyzer.ActionAnalysis {
		return analyzer.ActionAnalysis{
			ActionID: id, Street: st, HeroAction: "bet 2.0",
			Delta: delta, TotalEV: totalEV, Verdict: v,
		}
	}
	ha := analyzer.HandAnalysis{
		HandID: "agg-1",
		HeroID: "hero",
		Actions: []analyzer.ActionAnalysis{
			rec("a001", history.Flop, ev.VerdictPositive, 0, 2),
			rec("a002", history.Flop, ev.VerdictPositive, 0, 4),
			rec("a003", history.River, ev.VerdictNegative, 0.5, 1),
		},
	}
	require.NoError(t, store.PutAnalyses(ctx, run, ha))

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Hands: 1, Runs: 1, Analyses: 3}, totals)

	counts, err := store.VerdictCounts(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"positive": 2, "negative": 1}, counts)

	all, err := store.VerdictCounts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, counts, all)

	aggs, err := store.AggregateByStreet(ctx, run)
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	assert.Equal(t, history.Flop, aggs[0].Street)
	assert.Equal(t, 2, aggs[0].Actions)
	assert.InDelta(t, 0.0, aggs[0].MeanDelta, 1e-9)
	assert.InDelta(t, 3.0, aggs[0].MeanTotalEV, 1e-9)
	assert.Equal(t, history.River, aggs[1].Street)
	assert.InDelta(t, 0.5, aggs[1].MeanDelta, 1e-9)
}

func TestOpenCreatesSchemaOnce(t *testing.T) {
	mock := quartz.NewMock(t)
	path := filepath.Join(t.TempDir(), "re.db")

	store, err := Open(path, mock)
	require.NoError(t, err)
	require.NoError(t, store.PutHand(context.Background(), sampleHand(t, "re-1")))
	require.NoError(t, store.Close())

	// reopening migrates idempotently and keeps the data
	store, err = Open(path, mock)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.GetHand(context.Background(), "re-1")
	require.NoError(t, err)
	assert.Equal(t, "re-1", got.ID)
}
