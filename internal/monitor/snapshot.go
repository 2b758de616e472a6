package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a dated, persisted copy of a PositionStatus, unique per
// (trade, date). Rows accumulate one per trade per calendar day and are
// never mutated after creation.
type Snapshot struct {
	ID        uuid.UUID      `json:"id"`
	TradeID   uuid.UUID      `json:"trade_id"`
	Date      time.Time      `json:"date"`
	Status    PositionStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// SnapshotStore keeps daily snapshots in memory. Durable persistence is the
// host application's repository layer; this store backs the engine and the
// simulator.
type SnapshotStore struct {
	mu     sync.Mutex
	bySlot map[snapshotKey]*Snapshot
}

type snapshotKey struct {
	tradeID uuid.UUID
	date    string
}

// NewSnapshotStore creates an empty snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{bySlot: make(map[snapshotKey]*Snapshot)}
}

// Create records one snapshot for (trade, date). Idempotent: a second call
// on the same day is a no-op that returns created=0 and the existing row.
func (s *SnapshotStore) Create(tradeID uuid.UUID, status PositionStatus, date time.Time) (created int, snap Snapshot) {
	key := snapshotKey{tradeID: tradeID, date: dateOnly(date).Format("2006-01-02")}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.bySlot[key]; ok {
		return 0, *existing
	}

	row := &Snapshot{
		ID:        uuid.New(),
		TradeID:   tradeID,
		Date:      dateOnly(date),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	s.bySlot[key] = row
	return 1, *row
}

// ForTrade returns all snapshots for a trade, oldest first.
func (s *SnapshotStore) ForTrade(tradeID uuid.UUID) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Snapshot
	for key, snap := range s.bySlot {
		if key.tradeID == tradeID {
			out = append(out, *snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Count returns the number of stored snapshots.
func (s *SnapshotStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySlot)
}
