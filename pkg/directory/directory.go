// Package directory implements the peer directory (C8): a username-keyed
// record store with TTL-based expiry, and a Kademlia-style routing table
// for locating the nodes responsible for a given key.
//
// Grounded on original_source/p2p-network/src/lib.rs's DHTNode/PeerInfo
// (Publish/Lookup/CleanupExpired/Stats map directly onto that file's
// publish/lookup/cleanup_expired/stats) and on the teacher's
// pkg/tunnel/pool.go background-goroutine pattern (context.CancelFunc +
// sync.WaitGroup) for the periodic reaper that original_source leaves as a
// manually-invoked cleanup_expired with no scheduler of its own.
//
// spec.md models the directory's API as "asynchronous, cooperative
// scheduling with suspension only at lock boundaries" — Rust's async/await
// over a RwLock. Go has no equivalent suspension point; the idiomatic
// rendering here keeps every method context.Context-aware, checking
// ctx.Err() before taking the lock, which is the closest Go analog of
// "cancellation-safe at lock boundaries".
package directory

import (
	"context"
	"sync"
	"time"

	"github.com/chakchat/cascadecrypt/internal/constants"
	cerrors "github.com/chakchat/cascadecrypt/internal/errors"
	"github.com/chakchat/cascadecrypt/pkg/identity"
)

// Observer receives directory lifecycle events. metrics.DirectoryObserver
// satisfies this interface; a nil Observer on a Store disables observability
// entirely rather than requiring a no-op implementation.
type Observer interface {
	OnPublish(ctx context.Context, username string) (context.Context, func(error))
	OnLookup(ctx context.Context, username string) (context.Context, func(found bool))
	OnExpired(username string)
}

// PeerRecord is the published, signed binding between a username and its
// public key material and network endpoints.
type PeerRecord struct {
	Username   string
	PublicKey  []byte // caller-defined encoding (e.g. X25519||ML-KEM-1024 public keys)
	SignKey    []byte // publisher's Ed25519 identity public key, verifies Signature
	Endpoints  []string
	Signature  []byte
	Timestamp  int64 // unix seconds, set by Publish
	TTLSeconds uint32
}

// IsExpired reports whether now is past Timestamp+TTLSeconds.
func (r *PeerRecord) IsExpired(now time.Time) bool {
	age := now.Unix() - r.Timestamp
	return age > int64(r.TTLSeconds)
}

// signedPayload returns the canonical bytes a publisher signs and a
// verifier checks Signature against: username, endpoints, published
// timestamp, and TTL, per SPEC_FULL.md §4.8's canonical serialization.
func (r *PeerRecord) signedPayload() []byte {
	buf := make([]byte, 0, len(r.Username)+32)
	buf = append(buf, r.Username...)
	for _, ep := range r.Endpoints {
		buf = append(buf, ep...)
	}
	var tsBuf [8]byte
	putUint64(tsBuf[:], uint64(r.Timestamp))
	buf = append(buf, tsBuf[:]...)
	var ttlBuf [4]byte
	putUint32(ttlBuf[:], r.TTLSeconds)
	buf = append(buf, ttlBuf[:]...)
	return buf
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

func putUint32(b []byte, v uint32) {
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (24 - 8*i))
	}
}

// VerifyRecord checks a PeerRecord's Ed25519 signature against its own
// embedded SignKey. Publish does not call this automatically — callers
// that accept records from untrusted sources should call it explicitly
// before Publish, per spec.md §4.8.1 and §9.
func VerifyRecord(r *PeerRecord) error {
	if len(r.SignKey) == 0 || len(r.Signature) == 0 {
		return cerrors.ErrInvalidRecord
	}
	return identity.Verify(r.SignKey, r.signedPayload(), r.Signature)
}

// Stats summarizes the current record population (original_source's
// DHTStats).
type Stats struct {
	TotalPeers   int
	ActivePeers  int
	ExpiredPeers int
}

// Store is a concurrency-safe, TTL-expiring map of username to PeerRecord.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*PeerRecord
	closed  bool

	now func() time.Time // overridable for tests

	reaperCancel context.CancelFunc
	reaperWg     sync.WaitGroup

	observer Observer
}

// NewStore constructs an empty directory Store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*PeerRecord),
		now:     time.Now,
	}
}

// SetObserver attaches an Observer for Publish/Lookup/expiry events. Passing
// nil disables observability.
func (s *Store) SetObserver(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = observer
}

// Publish inserts or replaces the record for rec.Username, stamping
// Timestamp with the current time and defaulting TTLSeconds if unset.
// Publish does not verify rec.Signature; call VerifyRecord first if the
// record came from an untrusted source.
func (s *Store) Publish(ctx context.Context, rec PeerRecord) (err error) {
	if s.observer != nil {
		var end func(error)
		ctx, end = s.observer.OnPublish(ctx, rec.Username)
		defer func() { end(err) }()
	}

	if err = ctx.Err(); err != nil {
		return err
	}
	if rec.Username == "" || len(rec.PublicKey) == 0 {
		return cerrors.ErrInvalidRecord
	}
	if rec.TTLSeconds == 0 {
		rec.TTLSeconds = constants.DefaultRecordTTLSeconds
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return cerrors.ErrDirectoryClosed
	}

	rec.Timestamp = s.now().Unix()
	s.entries[rec.Username] = &rec
	return nil
}

// Lookup returns the live record for username and true, or (nil, false) if
// no record exists or one exists but its TTL elapsed — an expired record
// found under the read lock is evicted by re-acquiring the lock and
// rechecking before delete, the lock-upgrade-then-recheck pattern spec.md
// §4.8.1 mandates so a concurrent Publish racing the eviction is never lost.
func (s *Store) Lookup(ctx context.Context, username string) (rec *PeerRecord, found bool) {
	if s.observer != nil {
		var end func(bool)
		ctx, end = s.observer.OnLookup(ctx, username)
		defer func() { end(found) }()
	}

	if ctx.Err() != nil {
		return nil, false
	}

	s.mu.RLock()
	entry, ok := s.entries[username]
	expired := ok && entry.IsExpired(s.now())
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !expired {
		copied := *entry
		return &copied, true
	}

	s.mu.Lock()
	entry, ok = s.entries[username]
	if ok && entry.IsExpired(s.now()) {
		delete(s.entries, username)
		s.mu.Unlock()
		if s.observer != nil {
			s.observer.OnExpired(username)
		}
		return nil, false
	}
	s.mu.Unlock()
	return nil, false
}

// CleanupExpired removes every record whose TTL has elapsed.
func (s *Store) CleanupExpired(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	now := s.now()
	s.mu.Lock()
	var expiredUsernames []string
	for username, rec := range s.entries {
		if rec.IsExpired(now) {
			expiredUsernames = append(expiredUsernames, username)
			delete(s.entries, username)
		}
	}
	s.mu.Unlock()

	if s.observer != nil {
		for _, username := range expiredUsernames {
			s.observer.OnExpired(username)
		}
	}
}

// Stats reports counts of total, active, and expired records.
func (s *Store) Stats(ctx context.Context) Stats {
	if ctx.Err() != nil {
		return Stats{}
	}
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalPeers: len(s.entries)}
	for _, rec := range s.entries {
		if rec.IsExpired(now) {
			stats.ExpiredPeers++
		} else {
			stats.ActivePeers++
		}
	}
	return stats
}

// StartReaper launches a background goroutine that calls CleanupExpired
// every interval until ctx is cancelled or Close is called. Only one reaper may run at a time per Store.
func (s *Store) StartReaper(ctx context.Context, interval time.Duration) {
	reaperCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.reaperCancel = cancel
	s.mu.Unlock()

	s.reaperWg.Add(1)
	go func() {
		defer s.reaperWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-reaperCtx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(reaperCtx)
			}
		}
	}()
}

// Close stops the reaper (if running) and marks the Store closed; further
// Publish calls return ErrDirectoryClosed. Lookup remains usable so callers
// can drain existing records.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.reaperCancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.reaperWg.Wait()
}
