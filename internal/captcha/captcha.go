// Package captcha issues small arithmetic challenges used to keep bots away
// from public forms.
package captcha

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a challenge stays answerable.
const DefaultTTL = 5 * time.Minute

// Challenge is what a client is shown.
type Challenge struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	ExpiresAt time.Time `json:"expires_at"`
}

type pending struct {
	answer    int
	expiresAt time.Time
}

// Store issues challenges and checks answers. Each challenge can be verified
// once; a wrong answer consumes it too. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	pending map[string]pending
	ttl     time.Duration
	rng     *rand.Rand
	now     func() time.Time
}

// NewStore creates a Store whose challenges expire after ttl.
func NewStore(ttl time.Duration) *Store {
	return NewStoreWithRand(ttl, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewStoreWithRand creates a Store drawing operands from rng.
func NewStoreWithRand(ttl time.Duration, rng *rand.Rand) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		pending: make(map[string]pending),
		ttl:     ttl,
		rng:     rng,
		now:     time.Now,
	}
}

// New issues a fresh challenge of the form "a op b" with operands from 1 to
// 10. Subtraction never goes negative.
func (s *Store) New() Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()

	a := s.rng.IntN(10) + 1
	b := s.rng.IntN(10) + 1
	var question string
	var answer int
	switch s.rng.IntN(3) {
	case 0:
		question, answer = fmt.Sprintf("%d + %d", a, b), a+b
	case 1:
		if a < b {
			a, b = b, a
		}
		question, answer = fmt.Sprintf("%d - %d", a, b), a-b
	default:
		question, answer = fmt.Sprintf("%d × %d", a, b), a*b
	}

	ch := Challenge{
		ID:        uuid.NewString(),
		Question:  "What is " + question + "?",
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.pending[ch.ID] = pending{answer: answer, expiresAt: ch.ExpiresAt}
	return ch
}

// Verify checks answer against challenge id and consumes the challenge.
// Unknown, expired and malformed answers all return false.
func (s *Store) Verify(id, answer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)

	if s.now().After(p.expiresAt) {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return false
	}
	return n == p.answer
}

// Len returns the number of outstanding challenges.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// evictExpired drops stale challenges; callers hold mu.
func (s *Store) evictExpired() {
	now := s.now()
	for id, p := range s.pending {
		if now.After(p.expiresAt) {
			delete(s.pending, id)
		}
	}
}
