package store

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"replikv/internal/domain"
)

// Store holds the versioned key/value map for one node. The map is striped
// internally, so concurrent applies to different keys never contend; applies
// to the same key go through an atomic per-key read-modify-write, which keeps
// the monotonic-version rule race-free without a global lock.
//
// The version counter is allocated by the leader only. Followers track it as
// a high-water mark of versions seen on the replication channel.
type Store struct {
	entries *xsync.MapOf[string, domain.Entry]
	version atomic.Uint64
}

func NewStore() *Store {
	return &Store{
		entries: xsync.NewMapOf[string, domain.Entry](),
	}
}

// ApplyLocalWrite allocates the next global version and upserts the entry.
// Leader only. Concurrent writes to the same key may race between version
// allocation and map update; the per-key compute keeps the higher version.
func (s *Store) ApplyLocalWrite(key, value string) uint64 {
	version := s.version.Add(1)
	s.entries.Compute(key, func(old domain.Entry, loaded bool) (domain.Entry, bool) {
		if loaded && old.Version > version {
			return old, false
		}
		return domain.Entry{Value: value, Version: version}, false
	})
	return version
}

// ApplyLocalDelete removes the entry under a freshly allocated version.
// Leader only. An absent key allocates nothing and reports existed=false.
func (s *Store) ApplyLocalDelete(key string) (uint64, bool) {
	if _, ok := s.entries.Load(key); !ok {
		return 0, false
	}
	version := s.version.Add(1)
	s.entries.Compute(key, func(old domain.Entry, loaded bool) (domain.Entry, bool) {
		if loaded && old.Version > version {
			return old, false
		}
		return domain.Entry{}, true
	})
	return version, true
}

// ApplyRemote applies one replication message. Follower only.
//
// The message wins iff the key is absent or its version is >= the stored one.
// Equal versions re-apply so that redelivered messages stay idempotent; the
// leader never reuses a version, so an equal-version apply writes the same
// value again. The return value reports whether the state advanced, i.e. the
// message was neither stale nor a redelivery of the current entry.
func (s *Store) ApplyRemote(key, value string, version uint64, del bool) bool {
	s.observeVersion(version)

	applied := false
	s.entries.Compute(key, func(old domain.Entry, loaded bool) (domain.Entry, bool) {
		if loaded && version < old.Version {
			return old, false
		}
		if del {
			applied = loaded
			return domain.Entry{}, true
		}
		applied = !loaded || version > old.Version
		return domain.Entry{Value: value, Version: version}, false
	})
	return applied
}

// Get returns a snapshot of the entry for key.
func (s *Store) Get(key string) (domain.Entry, bool) {
	return s.entries.Load(key)
}

// Len returns the number of live keys.
func (s *Store) Len() int {
	return s.entries.Size()
}

// CurrentVersion returns the highest version this node has allocated (leader)
// or observed (follower).
func (s *Store) CurrentVersion() uint64 {
	return s.version.Load()
}

// observeVersion raises the high-water mark to v if it is ahead.
func (s *Store) observeVersion(v uint64) {
	for {
		cur := s.version.Load()
		if v <= cur || s.version.CompareAndSwap(cur, v) {
			return
		}
	}
}
