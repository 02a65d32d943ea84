package offline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func samplePlants() []CachedPlant {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return []CachedPlant{
		{ID: 1, GardenID: 1, Name: "Monstera", ImageURL: "https://img.example/monstera.jpg",
			HealthStatus: "healthy", EffectiveWateringInterval: 7,
			LastWateredAt: base, NextWateringAt: base.Add(7 * 24 * time.Hour)},
		{ID: 2, GardenID: 1, Name: "Basil", Nickname: "kitchen basil",
			HealthStatus: "needs_attention", EffectiveWateringInterval: 2,
			LastWateredAt: base, NextWateringAt: base.Add(2 * 24 * time.Hour)},
	}
}

func TestSavePlantsReplacesSnapshot(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SavePlants(ctx, samplePlants(), now))
	got, err := s.Plants(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by next due date, so the 2-day basil comes first.
	require.Equal(t, int64(2), got[0].ID)
	require.Equal(t, "kitchen basil", got[0].Nickname)
	require.Equal(t, 7, got[1].EffectiveWateringInterval)

	// A second save with a different list fully replaces the first; the
	// stale plant 2 must not survive.
	later := now.Add(time.Hour)
	require.NoError(t, s.SavePlants(ctx, samplePlants()[:1], later))
	got, err = s.Plants(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID)

	v, ok, err := s.Meta(ctx, MetaLastSync)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, later.Format(time.RFC3339Nano), v)
}

func TestSavePlantsIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SavePlants(ctx, samplePlants(), now))
	require.NoError(t, s.SavePlants(ctx, samplePlants(), now))
	got, err := s.Plants(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestPlantRoundTripsTimesInUTC(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	loc, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)
	p := CachedPlant{
		ID: 5, GardenID: 2, Name: "Rose", HealthStatus: "healthy",
		EffectiveWateringInterval: 3,
		LastWateredAt:             time.Date(2026, 4, 1, 18, 30, 0, 0, loc),
		NextWateringAt:            time.Date(2026, 4, 4, 18, 30, 0, 0, loc),
	}
	require.NoError(t, s.UpdatePlant(ctx, p))
	got, err := s.Plant(ctx, 5)
	require.NoError(t, err)
	require.True(t, got.LastWateredAt.Equal(p.LastWateredAt))
	require.True(t, got.NextWateringAt.Equal(p.NextWateringAt))
}

func TestPlantNotCached(t *testing.T) {
	s := testStore(t)
	_, err := s.Plant(context.Background(), 404)
	require.ErrorIs(t, err, ErrPlantNotCached)
}

func TestPendingActionsPreserveCreationOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	a1 := NewAction(ActionWater, 1, nil, base)
	a2 := NewAction(ActionReminder, 2, &ReminderData{ReminderType: "watering", IntervalDays: 4}, base.Add(time.Second))
	a3 := NewAction(ActionWater, 1, nil, base.Add(2*time.Second))
	for _, a := range []PendingAction{a1, a2, a3} {
		require.NoError(t, s.AddPendingAction(ctx, a))
	}

	got, err := s.PendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{a1.ID, a2.ID, a3.ID}, []string{got[0].ID, got[1].ID, got[2].ID})
	require.Equal(t, ActionReminder, got[1].Type)
	require.NotNil(t, got[1].Data)
	require.Equal(t, 4, got[1].Data.IntervalDays)
	require.Nil(t, got[0].Data)

	require.NoError(t, s.RemovePendingAction(ctx, a2.ID))
	got, err = s.PendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, a1.ID, got[0].ID)
	require.Equal(t, a3.ID, got[1].ID)
}

func TestCompactDropsActionsSupersededByDelete(t *testing.T) {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	w1 := NewAction(ActionWater, 1, nil, base)
	r1 := NewAction(ActionReminder, 1, &ReminderData{ReminderType: "watering", IntervalDays: 5}, base.Add(time.Second))
	w2 := NewAction(ActionWater, 2, nil, base.Add(2*time.Second))
	d1 := NewAction(ActionDelete, 1, nil, base.Add(3*time.Second))

	kept := Compact([]PendingAction{w1, r1, w2, d1})
	require.Len(t, kept, 2)
	require.Equal(t, w2.ID, kept[0].ID)
	require.Equal(t, d1.ID, kept[1].ID)
}

func TestCompactWithoutDeleteIsNoop(t *testing.T) {
	base := time.Now().UTC()
	w1 := NewAction(ActionWater, 1, nil, base)
	w2 := NewAction(ActionWater, 2, nil, base.Add(time.Second))
	kept := Compact([]PendingAction{w1, w2})
	require.Len(t, kept, 2)
}

func TestSyncMetaRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, ok, err := s.Meta(ctx, MetaDeviceID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SetMeta(ctx, MetaDeviceID, "device-abc"))
	require.NoError(t, s.SetMeta(ctx, MetaDeviceID, "device-def"))
	v, ok, err := s.Meta(ctx, MetaDeviceID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "device-def", v)
}
