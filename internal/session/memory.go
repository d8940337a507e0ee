package session

import (
	"context"
	"sync"
	"time"

	"github.com/skufinder/skufinder/internal/model"
)

// janitorInterval is how often expired sessions are swept.
const janitorInterval = 5 * time.Minute

// MemoryStore keeps sessions in process memory. Sessions do not survive
// a restart, which matches the single-node variant.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	windows  map[string]*window
	done     chan struct{}
	closeOne sync.Once
}

type window struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore creates a memory store and starts its expiry sweeper.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]*model.Session),
		windows:  make(map[string]*window),
		done:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Create persists a session.
func (s *MemoryStore) Create(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *sess
	s.sessions[sess.Token] = &stored
	return nil
}

// Get retrieves a live session by token.
func (s *MemoryStore) Get(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	stored, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if stored.Expired(time.Now().UTC()) {
		// Lazy expiry; the janitor handles the rest.
		_ = s.Delete(ctx, token)
		return nil, ErrNotFound
	}
	sess := *stored
	return &sess, nil
}

// Delete destroys a session.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// IncrWindow implements Counter with an in-process fixed window.
func (s *MemoryStore) IncrWindow(ctx context.Context, key string, windowSize time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(windowSize)}
		s.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close stops the expiry sweeper.
func (s *MemoryStore) Close() error {
	s.closeOne.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now().UTC()
			s.mu.Lock()
			for token, sess := range s.sessions {
				if sess.Expired(now) {
					delete(s.sessions, token)
				}
			}
			for key, w := range s.windows {
				if now.After(w.resetAt) {
					delete(s.windows, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
