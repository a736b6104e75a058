package call

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statesOf(items []TimelineItem) []PhaseState {
	out := make([]PhaseState, len(items))
	for i, it := range items {
		out[i] = it.State
	}
	return out
}

func TestBuildTimeline_StatesAndTimestamps(t *testing.T) {
	opens := now.Add(-72 * time.Hour)
	closes := now.Add(-24 * time.Hour)
	published := now.Add(-70 * time.Hour)
	records := []TransitionRecord{
		{FromStatus: "", ToStatus: StatusDraft, At: now.Add(-100 * time.Hour), Seq: 1},
		{FromStatus: StatusDraft, ToStatus: StatusPublished, At: published, Seq: 2},
	}

	items := BuildTimeline(DefaultPhases, StatusClosed, records, &opens, &closes)
	require.Len(t, items, len(DefaultPhases))

	assert.Equal(t, []PhaseState{
		PhaseCompleted, PhaseCompleted, PhaseCurrent,
		PhaseFuture, PhaseFuture, PhaseFuture, PhaseFuture, PhaseFuture,
	}, statesOf(items))

	require.NotNil(t, items[1].At)
	assert.True(t, items[1].At.Equal(published))
	assert.False(t, items[1].Inferred)

	// closed was never recorded, so it falls back to closes_at
	require.NotNil(t, items[2].At)
	assert.True(t, items[2].At.Equal(closes))
	assert.True(t, items[2].Inferred)

	assert.Nil(t, items[3].At)
}

func TestBuildTimeline_UsesLatestMatchingEntry(t *testing.T) {
	t1 := now.Add(-2 * time.Hour)
	t2 := now.Add(-time.Hour)
	records := []TransitionRecord{
		{ToStatus: StatusPublished, At: t2, Seq: 3},
		{ToStatus: StatusPublished, At: t1, Seq: 2},
		{ToStatus: StatusPublished, At: t2, Seq: 9},
	}
	items := BuildTimeline(DefaultPhases, StatusPublished, records, nil, nil)
	require.NotNil(t, items[1].At)
	assert.True(t, items[1].At.Equal(t2))
}

func TestBuildTimeline_IsDeterministic(t *testing.T) {
	records := []TransitionRecord{
		{ToStatus: StatusDraft, At: now.Add(-3 * time.Hour), Seq: 1},
		{FromStatus: StatusDraft, ToStatus: StatusPublished, At: now.Add(-2 * time.Hour), Seq: 2},
		{FromStatus: StatusPublished, ToStatus: StatusClosed, At: now.Add(-time.Hour), Seq: 3},
	}
	reversed := []TransitionRecord{records[2], records[1], records[0]}

	a := BuildTimeline(DefaultPhases, StatusClosed, records, nil, nil)
	b := BuildTimeline(DefaultPhases, StatusClosed, reversed, nil, nil)
	assert.Equal(t, a, b)
}

func TestBuildTimeline_CancelledCall(t *testing.T) {
	cancelledAt := now.Add(-time.Hour)
	records := []TransitionRecord{
		{ToStatus: StatusDraft, At: now.Add(-3 * time.Hour), Seq: 1},
		{FromStatus: StatusDraft, ToStatus: StatusPublished, At: now.Add(-2 * time.Hour), Seq: 2},
		{FromStatus: StatusPublished, ToStatus: StatusCancelled, At: cancelledAt, Seq: 3},
	}

	items := BuildTimeline(DefaultPhases, StatusCancelled, records, nil, nil)
	require.Len(t, items, len(DefaultPhases)+1)

	assert.Equal(t, PhaseCompleted, items[0].State)
	assert.Equal(t, PhaseCompleted, items[1].State)
	assert.Equal(t, PhaseFuture, items[2].State)

	last := items[len(items)-1]
	assert.Equal(t, StatusCancelled, last.Status)
	assert.Equal(t, PhaseCurrent, last.State)
	require.NotNil(t, last.At)
	assert.True(t, last.At.Equal(cancelledAt))
}

func TestBuildTimeline_DoesNotMutateInput(t *testing.T) {
	records := []TransitionRecord{
		{ToStatus: StatusPublished, At: now, Seq: 2},
		{ToStatus: StatusDraft, At: now.Add(-time.Hour), Seq: 1},
	}
	snapshot := append([]TransitionRecord(nil), records...)
	_ = BuildTimeline(DefaultPhases, StatusPublished, records, nil, nil)
	assert.Equal(t, snapshot, records)
}
