package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkaelin/limmat-events/internal/event"
)

// Result reports what an upsert did.
type Result string

const (
	ResultCreated Result = "created"
	ResultUpdated Result = "updated"
)

const snapshotFile = "events.json"

// snapshot is the on-disk shape of the store.
type snapshot struct {
	UpdatedAt string                      `json:"updated_at"`
	Events    map[string]*event.Canonical `json:"events"`
}

// Store holds canonical events keyed by identity hash and persists
// them as one JSON snapshot.
type Store struct {
	dataDir string
	events  map[string]*event.Canonical
}

// Open loads the store from dataDir, creating the directory when
// needed. A missing snapshot file yields an empty store.
func Open(dataDir string) (*Store, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{
		dataDir: dataDir,
		events:  make(map[string]*event.Canonical),
	}

	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Events != nil {
		s.events = snap.Events
	}
	return s, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dataDir, snapshotFile)
}

// Upsert inserts or refreshes an event by its identity hash. New
// events get an ID and creation timestamp; known events keep those and
// the source that first reported them, and have their mutable fields
// replaced.
func (s *Store) Upsert(ev *event.Canonical) Result {
	now := time.Now().UTC()
	if existing, ok := s.events[ev.Hash]; ok {
		ev.ID = existing.ID
		ev.Source = existing.Source
		ev.CreatedAt = existing.CreatedAt
		ev.UpdatedAt = now
		s.events[ev.Hash] = ev
		return ResultUpdated
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	ev.CreatedAt = now
	ev.UpdatedAt = now
	s.events[ev.Hash] = ev
	return ResultCreated
}

// Get returns the event with the given identity hash.
func (s *Store) Get(hash string) (*event.Canonical, bool) {
	ev, ok := s.events[hash]
	return ev, ok
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	return len(s.events)
}

// List returns all events ordered by start time, then title for equal
// starts.
func (s *Store) List() []*event.Canonical {
	events := make([]*event.Canonical, 0, len(s.events))
	for _, ev := range s.events {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].Title < events[j].Title
	})
	return events
}

// Save writes the snapshot to disk.
func (s *Store) Save() error {
	snap := snapshot{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Events:    s.events,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
