package memory

import (
	"sync"
	"time"

	"github.com/oktayozdemir/blog-chatbot/internal/core/domain"
	"github.com/oktayozdemir/blog-chatbot/internal/core/ports"
)

const (
	defaultMaxSessions = 1000
	defaultTTL         = 2 * time.Hour
)

type session struct {
	turns    []domain.Turn
	lastSeen time.Time
}

// Store is a bounded in-process session memory. Each session keeps at most
// domain.MaxSessionTurns turns; idle sessions are dropped after a TTL, and
// when the session cap is hit the stalest session is evicted.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

var _ ports.SessionMemory = (*Store)(nil)

type Options struct {
	MaxSessions int
	TTL         time.Duration
}

func New(options Options) *Store {
	maxSessions := options.MaxSessions
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	ttl := options.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		sessions:    make(map[string]*session),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *Store) History(sessionID string) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if s.now().Sub(entry.lastSeen) > s.ttl {
		delete(s.sessions, sessionID)
		return nil
	}

	out := make([]domain.Turn, len(entry.turns))
	copy(out, entry.turns)
	return out
}

func (s *Store) Append(sessionID string, turns ...domain.Turn) {
	if len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	entry, ok := s.sessions[sessionID]
	if !ok {
		if len(s.sessions) >= s.maxSessions {
			s.evictStalestLocked()
		}
		entry = &session{}
		s.sessions[sessionID] = entry
	}

	entry.turns = append(entry.turns, turns...)
	if len(entry.turns) > domain.MaxSessionTurns {
		entry.turns = entry.turns[len(entry.turns)-domain.MaxSessionTurns:]
	}
	entry.lastSeen = now
}

// Len reports the live session count, for /stats.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) sweepLocked(now time.Time) {
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *Store) evictStalestLocked() {
	var stalestID string
	var stalest time.Time
	first := true
	for id, entry := range s.sessions {
		if first || entry.lastSeen.Before(stalest) {
			stalestID = id
			stalest = entry.lastSeen
			first = false
		}
	}
	if stalestID != "" {
		delete(s.sessions, stalestID)
	}
}
