package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/coverage-mapper/model"
)

var (
	ErrRoomExists          = errors.New("room already exists")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomBadInput        = errors.New("invalid room")
	ErrTransmitterExists   = errors.New("transmitter already exists")
	ErrTransmitterBadInput = errors.New("invalid transmitter")
)

// PlanStore owns the floor-plan geometry and transmitter list for one
// analysis session. It is concurrency-safe via an internal RWMutex as long
// as all access goes through these methods. Wall segments are derived
// lazily and rebuilt whenever geometry changes; every mutation bumps the
// generation counter so downstream caches can invalidate atomically.
//
// Callers supply rooms and transmitters once per session; the store copies
// nothing back into caller-owned geometry.
type PlanStore struct {
	mu sync.RWMutex

	cfg model.Config

	rooms        map[string]model.Room
	roomOrder    []string
	transmitters []model.Transmitter

	walls      []WallSegment
	wallsValid bool

	generation uint64
}

// NewPlanStore creates an empty store using cfg for wall derivation.
func NewPlanStore(cfg model.Config) *PlanStore {
	return &PlanStore{
		cfg:   cfg,
		rooms: make(map[string]model.Room),
	}
}

// SetConfig replaces the configuration snapshot. Any change invalidates
// derived walls and all downstream caches.
func (ps *PlanStore) SetConfig(cfg model.Config) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if cfg.Key() == ps.cfg.Key() {
		return
	}
	ps.cfg = cfg
	ps.invalidateLocked()
}

// Config returns the current configuration snapshot.
func (ps *PlanStore) Config() model.Config {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.cfg
}

// AddRoom registers a room. Rooms with fewer than three outline vertices
// are accepted but contribute no walls and contain no points.
func (ps *PlanStore) AddRoom(room model.Room) error {
	if room.ID == "" {
		return fmt.Errorf("%w: empty ID", ErrRoomBadInput)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.rooms[room.ID]; exists {
		return fmt.Errorf("%w: %q", ErrRoomExists, room.ID)
	}
	ps.rooms[room.ID] = room
	ps.roomOrder = append(ps.roomOrder, room.ID)
	ps.invalidateLocked()
	return nil
}

// UpdateRoom replaces an existing room's geometry.
func (ps *PlanStore) UpdateRoom(room model.Room) error {
	if room.ID == "" {
		return fmt.Errorf("%w: empty ID", ErrRoomBadInput)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.rooms[room.ID]; !exists {
		return fmt.Errorf("%w: %q", ErrRoomNotFound, room.ID)
	}
	ps.rooms[room.ID] = room
	ps.invalidateLocked()
	return nil
}

// Rooms returns the rooms in insertion order.
func (ps *PlanStore) Rooms() []model.Room {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.roomsLocked()
}

func (ps *PlanStore) roomsLocked() []model.Room {
	out := make([]model.Room, 0, len(ps.roomOrder))
	for _, id := range ps.roomOrder {
		out = append(out, ps.rooms[id])
	}
	return out
}

// AddTransmitter appends an access point to the plan.
func (ps *PlanStore) AddTransmitter(tx model.Transmitter) error {
	if !tx.Position.Finite() {
		return fmt.Errorf("%w: non-finite position", ErrTransmitterBadInput)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	for _, existing := range ps.transmitters {
		if tx.Name != "" && existing.Name == tx.Name {
			return fmt.Errorf("%w: %q", ErrTransmitterExists, tx.Name)
		}
	}
	ps.transmitters = append(ps.transmitters, tx)
	ps.generation++
	return nil
}

// SetTransmitters replaces the whole transmitter list.
func (ps *PlanStore) SetTransmitters(txs []model.Transmitter) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.transmitters = append([]model.Transmitter(nil), txs...)
	ps.generation++
}

// Transmitters returns a copy of the transmitter list.
func (ps *PlanStore) Transmitters() []model.Transmitter {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return append([]model.Transmitter(nil), ps.transmitters...)
}

// Generation returns the current plan revision. It increases on every
// geometry, transmitter, or configuration change.
func (ps *PlanStore) Generation() uint64 {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.generation
}

// Snapshot derives walls if needed and returns an immutable Scene for the
// engines. The returned slices are copies; mutating the store afterwards
// never affects a snapshot already handed out.
func (ps *PlanStore) Snapshot() *Scene {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.wallsValid {
		ps.walls = WallsForRooms(ps.roomsLocked(), ps.cfg)
		ps.wallsValid = true
	}

	return &Scene{
		Rooms:        ps.roomsLocked(),
		Transmitters: append([]model.Transmitter(nil), ps.transmitters...),
		Walls:        append([]WallSegment(nil), ps.walls...),
		Generation:   ps.generation,
	}
}

// invalidateLocked drops derived walls and bumps the generation. Must be
// called with the write lock held.
func (ps *PlanStore) invalidateLocked() {
	ps.wallsValid = false
	ps.generation++
}
