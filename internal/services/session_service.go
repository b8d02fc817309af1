package services

import (
	"log"
	"sync"
	"time"

	"github.com/ArtfulOneXD/MetaTest/internal/models"
)

// Finalizer is invoked exactly once per session with a snapshot of its turn
// log once the inactivity window elapses. It runs outside the store lock.
// Whatever it does (or fails to do), the session is closed afterwards.
type Finalizer func(userID string, turns []models.ConversationTurn)

// SessionService owns the per-user conversation sessions: the turn logs,
// the inactivity timers, and the finalize-once guarantee. All session
// mutations happen under one mutex, so state checks and transitions are a
// single step.
type SessionService struct {
	mu           sync.Mutex
	sessions     map[string]*sessionEntry
	window       time.Duration
	maxLiveTurns int
	finalizer    Finalizer
}

// sessionEntry pairs a session with its pending timer. timerSeq grows on
// every (re)schedule; a fired timer carrying an older seq is stale and must
// not finalize.
type sessionEntry struct {
	session  *models.Session
	timer    *time.Timer
	timerSeq uint64
}

func NewSessionService(window time.Duration, maxLiveTurns int, finalizer Finalizer) *SessionService {
	return &SessionService{
		sessions:     make(map[string]*sessionEntry),
		window:       window,
		maxLiveTurns: maxLiveTurns,
		finalizer:    finalizer,
	}
}

// RecordTurn appends an inbound user turn, bumps the activity timestamp and
// reschedules the finalize deadline to window-from-now. A session that is
// finalizing or gone gets a brand-new one: a late message never mutates a
// snapshot already taken for extraction.
func (s *SessionService) RecordTurn(userID, content string) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[userID]
	if !exists || entry.session.State != models.StateActive {
		entry = &sessionEntry{
			session: &models.Session{
				UserID:    userID,
				Turns:     []models.ConversationTurn{},
				State:     models.StateActive,
				CreatedAt: now,
			},
		}
		s.sessions[userID] = entry
		log.Printf("New session started for %s", userID)
	}

	entry.session.Turns = append(entry.session.Turns, models.ConversationTurn{
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: now,
	})
	entry.session.LastActivity = now

	s.rescheduleLocked(userID, entry)
}

// rescheduleLocked cancels the pending deadline and arms a new one. Caller
// holds the lock. The fired callback re-checks entry identity and seq, so a
// timer that loses the race to Stop is a no-op.
func (s *SessionService) rescheduleLocked(userID string, entry *sessionEntry) {
	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.timerSeq++
	seq := entry.timerSeq
	entry.timer = time.AfterFunc(s.window, func() {
		s.tryFinalize(userID, entry, seq, time.Time{})
	})
}

// AppendAssistant appends an assistant turn to the live log. It does not
// touch the timer: only inbound user activity extends the window. Turns for
// sessions that are not active are dropped.
func (s *SessionService) AppendAssistant(userID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[userID]
	if !exists || entry.session.State != models.StateActive {
		log.Printf("Dropping assistant turn for %s: no active session", userID)
		return
	}

	entry.session.Turns = append(entry.session.Turns, models.ConversationTurn{
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// Snapshot returns a copy of the live turn log, or nil when the user has no
// active session.
func (s *SessionService) Snapshot(userID string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[userID]
	if !exists || entry.session.State != models.StateActive {
		return nil
	}
	turns := make([]models.ConversationTurn, len(entry.session.Turns))
	copy(turns, entry.session.Turns)
	return turns
}

// Overflow returns a copy of the turns beyond the live-turn cap (the oldest
// ones), or nil when the log fits. The caller summarizes them and calls
// Compact.
func (s *SessionService) Overflow(userID string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[userID]
	if !exists || entry.session.State != models.StateActive {
		return nil
	}
	excess := len(entry.session.Turns) - s.maxLiveTurns
	if excess <= 0 {
		return nil
	}
	old := make([]models.ConversationTurn, excess)
	copy(old, entry.session.Turns[:excess])
	return old
}

// Compact replaces everything beyond the newest maxLiveTurns turns with a
// single synthetic system turn carrying the summary. The summary turn is
// part of the log from then on, including for the final extraction.
func (s *SessionService) Compact(userID, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[userID]
	if !exists || entry.session.State != models.StateActive {
		return
	}
	if len(entry.session.Turns) <= s.maxLiveTurns {
		return
	}

	kept := entry.session.Turns[len(entry.session.Turns)-s.maxLiveTurns:]
	compacted := make([]models.ConversationTurn, 0, s.maxLiveTurns+1)
	compacted = append(compacted, models.ConversationTurn{
		Role:      models.RoleSystem,
		Content:   summary,
		Timestamp: time.Now(),
	})
	compacted = append(compacted, kept...)
	entry.session.Turns = compacted

	log.Printf("Compacted session %s to %d turns", userID, len(compacted))
}

// tryFinalize is the single path from active to closed, shared by the timer
// callback and the sweep. The entry must still be the mapped one and still
// active. The timer path (seq != 0) additionally requires seq to be the
// latest schedule; the sweep path (seq 0) instead repeats the inactivity
// check against sweepAt, since a turn may have landed after the candidate
// was collected. Two racing fires cannot both pass: the first one flips the
// state under the lock.
func (s *SessionService) tryFinalize(userID string, entry *sessionEntry, seq uint64, sweepAt time.Time) bool {
	s.mu.Lock()
	if s.sessions[userID] != entry ||
		entry.session.State != models.StateActive ||
		(seq != 0 && entry.timerSeq != seq) ||
		(seq == 0 && sweepAt.Sub(entry.session.LastActivity) < s.window) {
		s.mu.Unlock()
		return false
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	entry.session.State = models.StateFinalizing
	snapshot := make([]models.ConversationTurn, len(entry.session.Turns))
	copy(snapshot, entry.session.Turns)
	s.mu.Unlock()

	log.Printf("Inactivity detected for %s, finalizing session (%d turns)", userID, len(snapshot))

	if s.finalizer != nil {
		s.finalizer(userID, snapshot)
	}

	// Close no matter what the finalizer did. A dropped lead is accepted;
	// a resurrected session is not.
	s.mu.Lock()
	entry.session.State = models.StateClosed
	if s.sessions[userID] == entry {
		delete(s.sessions, userID)
	}
	s.mu.Unlock()

	log.Printf("Session closed for %s", userID)
	return true
}

// SweepInactive finalizes every active session whose last activity is at
// least one window old, and returns how many it finalized. This is the
// poll-style path for deployments where per-session timers cannot be relied
// on; it shares tryFinalize with the timer path, so running both never
// double-finalizes.
func (s *SessionService) SweepInactive(now time.Time) int {
	type candidate struct {
		userID string
		entry  *sessionEntry
	}

	s.mu.Lock()
	var stale []candidate
	for userID, entry := range s.sessions {
		if entry.session.State != models.StateActive {
			continue
		}
		if now.Sub(entry.session.LastActivity) >= s.window {
			stale = append(stale, candidate{userID, entry})
		}
	}
	s.mu.Unlock()

	finalized := 0
	for _, c := range stale {
		if s.tryFinalize(c.userID, c.entry, 0, now) {
			finalized++
		}
	}
	return finalized
}

// ActiveSessions reports how many sessions are currently live.
func (s *SessionService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Stop cancels every pending timer. Used on shutdown; sessions are not
// finalized, process memory is the only store anyway.
func (s *SessionService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.sessions {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
}
