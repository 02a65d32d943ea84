package syncer

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/api"
	"github.com/saeedpanahi1994/goldan-plant-care/internal/offline"
)

// fakeAPI records every call and lets tests inject per-call errors.
type fakeAPI struct {
	plants  []api.Plant
	calls   []string
	failOn  map[string]error
	listErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failOn: map[string]error{}}
}

func (f *fakeAPI) record(call string) error {
	f.calls = append(f.calls, call)
	if err, ok := f.failOn[call]; ok {
		delete(f.failOn, call)
		return err
	}
	return nil
}

func (f *fakeAPI) ListPlants(ctx context.Context) ([]api.Plant, error) {
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.plants, nil
}

func (f *fakeAPI) ConfirmWatering(ctx context.Context, plantID uint64) error {
	return f.record(fmt.Sprintf("water:%d", plantID))
}

func (f *fakeAPI) SetReminder(ctx context.Context, plantID uint64, reminderType string, intervalDays int, fertilizerType string) error {
	return f.record(fmt.Sprintf("reminder:%d:%s:%d", plantID, reminderType, intervalDays))
}

func (f *fakeAPI) DeletePlant(ctx context.Context, plantID uint64) error {
	return f.record(fmt.Sprintf("delete:%d", plantID))
}

func serverPlant(id uint64, next time.Time) api.Plant {
	return api.Plant{
		ID: id, GardenID: 1, Name: fmt.Sprintf("plant-%d", id),
		HealthStatus:              "healthy",
		EffectiveWateringInterval: 7,
		LastWateredAt:             next.Add(-7 * 24 * time.Hour),
		NextWateringAt:            next,
	}
}

func testSyncer(t *testing.T) (*Syncer, *offline.Store, *fakeAPI) {
	t.Helper()
	store, err := offline.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	f := newFakeAPI()
	s := New(store, f)
	s.Now = func() time.Time { return time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC) }
	return s, store, f
}

func TestOnlineWaterCallsServerAndRefreshes(t *testing.T) {
	s, store, f := testSyncer(t)
	ctx := context.Background()
	f.plants = []api.Plant{serverPlant(1, s.Now().Add(7*24*time.Hour))}

	require.NoError(t, s.SetOnline(ctx, true))
	queued, err := s.Water(ctx, 1)
	require.NoError(t, err)
	require.False(t, queued)
	require.Contains(t, f.calls, "water:1")

	plants, err := store.Plants(ctx)
	require.NoError(t, err)
	require.Len(t, plants, 1)
	pending, err := store.PendingActions(ctx)
	require.NoError(t, err)
	require.Empty(t, pending, "online success must not enqueue")
}

func TestOnlineFailureSurfacesAndIsNotQueued(t *testing.T) {
	s, store, f := testSyncer(t)
	ctx := context.Background()
	require.NoError(t, s.SetOnline(ctx, true))
	f.failOn["water:1"] = &api.Error{StatusCode: http.StatusInternalServerError, Message: "boom"}

	_, err := s.Water(ctx, 1)
	require.Error(t, err)
	pending, perr := store.PendingActions(ctx)
	require.NoError(t, perr)
	require.Empty(t, pending)
}

func TestOfflineWaterQueuesAndUpdatesLocally(t *testing.T) {
	s, store, f := testSyncer(t)
	ctx := context.Background()
	now := s.Now()
	require.NoError(t, store.SavePlants(ctx, []offline.CachedPlant{{
		ID: 1, GardenID: 1, Name: "Monstera", HealthStatus: "healthy",
		EffectiveWateringInterval: 7,
		LastWateredAt:             now.Add(-9 * 24 * time.Hour),
		NextWateringAt:            now.Add(-2 * 24 * time.Hour),
	}}, now))

	queued, err := s.Water(ctx, 1)
	require.NoError(t, err)
	require.True(t, queued)
	require.Empty(t, f.calls, "offline actions must not touch the network")

	p, err := store.Plant(ctx, 1)
	require.NoError(t, err)
	require.True(t, p.LastWateredAt.Equal(now))
	require.True(t, p.NextWateringAt.Equal(now.Add(7*24*time.Hour)),
		"optimistic due date advances a full interval from now")

	pending, err := store.PendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, offline.ActionWater, pending[0].Type)
}

func TestDrainReplaysInOrderAndKeepsTransientFailures(t *testing.T) {
	s, store, f := testSyncer(t)
	ctx := context.Background()
	base := s.Now()
	a1 := offline.NewAction(offline.ActionWater, 1, nil, base)
	a2 := offline.NewAction(offline.ActionWater, 2, nil, base.Add(time.Second))
	a3 := offline.NewAction(offline.ActionReminder, 3,
		&offline.ReminderData{ReminderType: "watering", IntervalDays: 4}, base.Add(2*time.Second))
	for _, a := range []offline.PendingAction{a1, a2, a3} {
		require.NoError(t, store.AddPendingAction(ctx, a))
	}
	// The middle action fails transiently; its neighbors must still run.
	f.failOn["water:2"] = &api.Error{StatusCode: http.StatusInternalServerError, Message: "db down"}

	require.NoError(t, s.SetOnline(ctx, true))

	require.Equal(t, []string{"water:1", "water:2", "reminder:3:watering:4", "list"}, f.calls)
	pending, err := store.PendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1, "only the failed action stays queued")
	require.Equal(t, a2.ID, pending[0].ID)

	// Next reconnect retries the survivor and succeeds.
	f.calls = nil
	require.NoError(t, s.SetOnline(ctx, false))
	require.NoError(t, s.SetOnline(ctx, true))
	require.Equal(t, []string{"water:2", "list"}, f.calls)
	pending, err = store.PendingActions(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestDrainDropsValidationFailures(t *testing.T) {
	s, store, f := testSyncer(t)
	ctx := context.Background()
	a := offline.NewAction(offline.ActionWater, 9, nil, s.Now())
	require.NoError(t, store.AddPendingAction(ctx, a))
	f.failOn["water:9"] = &api.Error{StatusCode: http.StatusNotFound, Message: "plant not found"}

	require.NoError(t, s.SetOnline(ctx, true))
	pending, err := store.PendingActions(ctx)
	require.NoError(t, err)
	require.Empty(t, pending, "a not-found replay can never succeed and is dropped")
}

func TestDrainCompactsBeforeReplay(t *testing.T) {
	s, store, f := testSyncer(t)
	ctx := context.Background()
	base := s.Now()
	w := offline.NewAction(offline.ActionWater, 1, nil, base)
	r := offline.NewAction(offline.ActionReminder, 1,
		&offline.ReminderData{ReminderType: "watering", IntervalDays: 5}, base.Add(time.Second))
	d := offline.NewAction(offline.ActionDelete, 1, nil, base.Add(2*time.Second))
	for _, a := range []offline.PendingAction{w, r, d} {
		require.NoError(t, store.AddPendingAction(ctx, a))
	}

	require.NoError(t, s.SetOnline(ctx, true))
	// Only the delete hits the server; the superseded water and reminder
	// were compacted away.
	require.Equal(t, []string{"delete:1", "list"}, f.calls)
	pending, err := store.PendingActions(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestReconnectMakesServerSnapshotAuthoritative(t *testing.T) {
	s, store, f := testSyncer(t)
	ctx := context.Background()
	now := s.Now()

	// Offline optimistic state predicts next watering in 7 days.
	require.NoError(t, store.SavePlants(ctx, []offline.CachedPlant{{
		ID: 1, GardenID: 1, Name: "Monstera", HealthStatus: "healthy",
		EffectiveWateringInterval: 7,
		LastWateredAt:             now.Add(-8 * 24 * time.Hour),
		NextWateringAt:            now.Add(-24 * time.Hour),
	}}, now))
	queued, err := s.Water(ctx, 1)
	require.NoError(t, err)
	require.True(t, queued)

	// The server's view after replay differs from the prediction (say the
	// confirmation landed a few minutes later server-side).
	serverNext := now.Add(7*24*time.Hour + 5*time.Minute)
	f.plants = []api.Plant{serverPlant(1, serverNext)}

	require.NoError(t, s.SetOnline(ctx, true))
	require.Equal(t, []string{"water:1", "list"}, f.calls)

	p, err := store.Plant(ctx, 1)
	require.NoError(t, err)
	require.True(t, p.NextWateringAt.Equal(serverNext),
		"the refetched snapshot overwrites the optimistic prediction")
}

func TestSetRemindersRejectsNonPositiveInterval(t *testing.T) {
	s, _, _ := testSyncer(t)
	_, err := s.SetReminder(context.Background(), 1, "watering", 0, "")
	require.Error(t, err)
}

func TestOfflineReminderRestartsLocalCountdown(t *testing.T) {
	s, store, _ := testSyncer(t)
	ctx := context.Background()
	now := s.Now()
	require.NoError(t, store.SavePlants(ctx, []offline.CachedPlant{{
		ID: 1, GardenID: 1, Name: "Fern", HealthStatus: "healthy",
		EffectiveWateringInterval: 7,
		LastWateredAt:             now.Add(-3 * 24 * time.Hour),
		NextWateringAt:            now.Add(4 * 24 * time.Hour),
	}}, now))

	queued, err := s.SetReminder(ctx, 1, "watering", 2, "")
	require.NoError(t, err)
	require.True(t, queued)

	p, err := store.Plant(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, p.EffectiveWateringInterval)
	require.True(t, p.NextWateringAt.Equal(now.Add(2*24*time.Hour)),
		"new countdown starts from now, not from the last watering")
}

func TestOfflineDeleteRemovesLocallyAndQueues(t *testing.T) {
	s, store, _ := testSyncer(t)
	ctx := context.Background()
	now := s.Now()
	require.NoError(t, store.SavePlants(ctx, []offline.CachedPlant{{
		ID: 1, GardenID: 1, Name: "Cactus", HealthStatus: "healthy",
		EffectiveWateringInterval: 14,
		LastWateredAt:             now, NextWateringAt: now.Add(14 * 24 * time.Hour),
	}}, now))

	queued, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	require.True(t, queued)

	_, err = store.Plant(ctx, 1)
	require.ErrorIs(t, err, offline.ErrPlantNotCached)
	pending, err := store.PendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, offline.ActionDelete, pending[0].Type)
}
