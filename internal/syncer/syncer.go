// Package syncer ties the offline cache and the API client together: it
// routes user care actions straight to the server when online (failures
// surface to the caller and are never queued), queues them locally when
// offline, and drains the queue in order when connectivity returns.
package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/saeedpanahi1994/goldan-plant-care/internal/api"
	"github.com/saeedpanahi1994/goldan-plant-care/internal/offline"
	"github.com/saeedpanahi1994/goldan-plant-care/internal/reminder"
)

// PlantAPI is the slice of the API client the syncer needs. Tests provide
// a fake; production wires *api.Client.
type PlantAPI interface {
	ListPlants(ctx context.Context) ([]api.Plant, error)
	ConfirmWatering(ctx context.Context, plantID uint64) error
	SetReminder(ctx context.Context, plantID uint64, reminderType string, intervalDays int, fertilizerType string) error
	DeletePlant(ctx context.Context, plantID uint64) error
}

// Syncer owns the online/offline decision for every mutation. It is safe
// for concurrent use; Drain holds a mutex so two reconnect events cannot
// replay the queue twice.
type Syncer struct {
	store  *offline.Store
	api    PlantAPI
	online bool

	mu sync.Mutex

	// Now is swappable in tests.
	Now func() time.Time
}

// New builds a Syncer that starts offline until SetOnline is called.
func New(store *offline.Store, client PlantAPI) *Syncer {
	if store == nil || client == nil {
		panic("syncer: nil store or client")
	}
	return &Syncer{store: store, api: client, Now: time.Now}
}

// Online reports the current connectivity state.
func (s *Syncer) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline records the connectivity state. A transition from offline to
// online drains the pending queue before anything else runs.
func (s *Syncer) SetOnline(ctx context.Context, online bool) error {
	s.mu.Lock()
	wasOnline := s.online
	s.online = online
	s.mu.Unlock()
	if online && !wasOnline {
		return s.Drain(ctx)
	}
	return nil
}

// Water confirms a watering. Online it hits the server and refreshes the
// snapshot; offline it advances the local due date optimistically and
// queues the confirmation. The bool reports whether the action was queued.
func (s *Syncer) Water(ctx context.Context, plantID int64) (bool, error) {
	if s.Online() {
		if err := s.api.ConfirmWatering(ctx, uint64(plantID)); err != nil {
			return false, err
		}
		return false, s.Refresh(ctx)
	}
	now := s.Now()
	p, err := s.store.Plant(ctx, plantID)
	if err != nil {
		return false, err
	}
	p.LastWateredAt, p.NextWateringAt = reminder.Confirm(now, p.EffectiveWateringInterval)
	if err := s.store.UpdatePlant(ctx, *p); err != nil {
		return false, err
	}
	a := offline.NewAction(offline.ActionWater, plantID, nil, now)
	if err := s.store.AddPendingAction(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// SetReminder stores a new care interval. Offline the local countdown
// restarts from now with the new interval, matching what the server will
// do when the action replays.
func (s *Syncer) SetReminder(ctx context.Context, plantID int64, reminderType string, intervalDays int, fertilizerType string) (bool, error) {
	if intervalDays <= 0 {
		return false, fmt.Errorf("interval_days must be positive")
	}
	if s.Online() {
		if err := s.api.SetReminder(ctx, uint64(plantID), reminderType, intervalDays, fertilizerType); err != nil {
			return false, err
		}
		return false, s.Refresh(ctx)
	}
	now := s.Now()
	if reminderType == "watering" {
		p, err := s.store.Plant(ctx, plantID)
		if err != nil {
			return false, err
		}
		p.EffectiveWateringInterval = intervalDays
		p.NextWateringAt = reminder.ApplyReminder(now, intervalDays)
		if err := s.store.UpdatePlant(ctx, *p); err != nil {
			return false, err
		}
	}
	a := offline.NewAction(offline.ActionReminder, plantID, &offline.ReminderData{
		ReminderType:   reminderType,
		IntervalDays:   intervalDays,
		FertilizerType: fertilizerType,
	}, now)
	if err := s.store.AddPendingAction(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a plant. Offline it disappears from the local snapshot
// immediately and a delete action is queued.
func (s *Syncer) Delete(ctx context.Context, plantID int64) (bool, error) {
	if s.Online() {
		if err := s.api.DeletePlant(ctx, uint64(plantID)); err != nil {
			return false, err
		}
		return false, s.Refresh(ctx)
	}
	now := s.Now()
	if err := s.store.DeletePlant(ctx, plantID); err != nil {
		return false, err
	}
	a := offline.NewAction(offline.ActionDelete, plantID, nil, now)
	if err := s.store.AddPendingAction(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// Drain replays the pending queue in creation order. Each action is
// removed only after its API call succeeds; validation failures are
// removed too, since retrying the identical payload can never succeed,
// while transient failures keep the action queued for the next drain. A
// final Refresh makes the server's view authoritative regardless of what
// the optimistic local updates predicted.
func (s *Syncer) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	actions, err := s.store.PendingActions(ctx)
	if err != nil {
		return fmt.Errorf("load pending actions: %w", err)
	}
	compacted := offline.Compact(actions)
	if len(compacted) < len(actions) {
		kept := map[string]bool{}
		for _, a := range compacted {
			kept[a.ID] = true
		}
		for _, a := range actions {
			if !kept[a.ID] {
				if err := s.store.RemovePendingAction(ctx, a.ID); err != nil {
					return fmt.Errorf("compact action %s: %w", a.ID, err)
				}
			}
		}
	}

	for _, a := range compacted {
		err := s.replay(ctx, a)
		switch {
		case err == nil:
		case api.IsValidation(err):
			log.Printf("syncer: dropping action %s: %v", a.ID, err)
		default:
			log.Printf("syncer: action %s failed, keeping queued: %v", a.ID, err)
			continue
		}
		if err := s.store.RemovePendingAction(ctx, a.ID); err != nil {
			return fmt.Errorf("remove action %s: %w", a.ID, err)
		}
	}

	return s.refreshLocked(ctx)
}

func (s *Syncer) replay(ctx context.Context, a offline.PendingAction) error {
	switch a.Type {
	case offline.ActionWater:
		return s.api.ConfirmWatering(ctx, uint64(a.PlantID))
	case offline.ActionReminder:
		if a.Data == nil {
			return &api.Error{StatusCode: 400, Message: "reminder action without data"}
		}
		return s.api.SetReminder(ctx, uint64(a.PlantID), a.Data.ReminderType, a.Data.IntervalDays, a.Data.FertilizerType)
	case offline.ActionDelete:
		return s.api.DeletePlant(ctx, uint64(a.PlantID))
	default:
		return &api.Error{StatusCode: 400, Message: fmt.Sprintf("unknown action type %q", a.Type)}
	}
}

// Refresh fetches the authoritative plant list, replaces the local
// snapshot and caches any new images. Image failures are non-fatal.
func (s *Syncer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Syncer) refreshLocked(ctx context.Context) error {
	plants, err := s.api.ListPlants(ctx)
	if err != nil {
		return fmt.Errorf("fetch plants: %w", err)
	}
	now := s.Now()
	cached := make([]offline.CachedPlant, 0, len(plants))
	urls := make([]string, 0, len(plants))
	for _, p := range plants {
		nickname := ""
		if p.Nickname != nil {
			nickname = *p.Nickname
		}
		cached = append(cached, offline.CachedPlant{
			ID:                        int64(p.ID),
			GardenID:                  int64(p.GardenID),
			Name:                      p.Name,
			Nickname:                  nickname,
			ImageURL:                  p.ImageURL,
			HealthStatus:              p.HealthStatus,
			EffectiveWateringInterval: p.EffectiveWateringInterval,
			LastWateredAt:             p.LastWateredAt,
			NextWateringAt:            p.NextWateringAt,
		})
		urls = append(urls, p.ImageURL)
	}
	if err := s.store.SavePlants(ctx, cached, now); err != nil {
		return fmt.Errorf("save plants: %w", err)
	}
	s.store.CacheAllImages(ctx, urls, now)
	return nil
}
