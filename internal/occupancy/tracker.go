package occupancy

import (
	"sync"
	"sync/atomic"
)

const shardCount = 64

// Tracker owns the presence set: which user ids are currently inside.
// Membership is sharded by user id so scans for different users never
// contend, while two scans of the same badge serialize on one mutex.
// The count is carried separately as an atomic so readers never take a lock.
type Tracker struct {
	shards [shardCount]trackerShard
	count  atomic.Int64
}

type trackerShard struct {
	mu      sync.Mutex
	present map[int]struct{}
}

func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.shards {
		t.shards[i].present = make(map[int]struct{})
	}
	return t
}

func (t *Tracker) shard(userID int) *trackerShard {
	if userID < 0 {
		userID = -userID
	}
	return &t.shards[userID%shardCount]
}

// Toggle locks the user's shard, calls fn with the user's current presence,
// and flips membership if fn succeeds. fn persists the matching GymEntry
// mutation; a persistence error leaves the presence set untouched.
func (t *Tracker) Toggle(userID int, fn func(present bool) error) (entered bool, err error) {
	s := t.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	_, present := s.present[userID]
	if err := fn(present); err != nil {
		return false, err
	}

	if present {
		delete(s.present, userID)
		t.count.Add(-1)
		return false, nil
	}

	s.present[userID] = struct{}{}
	t.count.Add(1)
	return true, nil
}

// Restore seeds presence from persisted open entries. Called once at
// startup, before any scans are accepted.
func (t *Tracker) Restore(userIDs []int) {
	for _, id := range userIDs {
		s := t.shard(id)
		s.mu.Lock()
		if _, ok := s.present[id]; !ok {
			s.present[id] = struct{}{}
			t.count.Add(1)
		}
		s.mu.Unlock()
	}
}

// Count returns a consistent snapshot of how many people are inside.
// It never blocks on in-flight toggles.
func (t *Tracker) Count() int {
	return int(t.count.Load())
}

// Present reports whether the user is currently inside.
func (t *Tracker) Present(userID int) bool {
	s := t.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.present[userID]
	return ok
}
