package captcha

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solve works out the answer from the question text.
func solve(t *testing.T, question string) int {
	t.Helper()
	q := strings.TrimSuffix(strings.TrimPrefix(question, "What is "), "?")
	parts := strings.Fields(q)
	require.Len(t, parts, 3, "unexpected question %q", question)

	a, err := strconv.Atoi(parts[0])
	require.NoError(t, err)
	b, err := strconv.Atoi(parts[2])
	require.NoError(t, err)

	switch parts[1] {
	case "+":
		return a + b
	case "-":
		return a - b
	case "×":
		return a * b
	}
	t.Fatalf("unknown operator in %q", question)
	return 0
}

func newTestStore() *Store {
	return NewStoreWithRand(time.Minute, rand.New(rand.NewPCG(1, 2)))
}

func TestStore_CorrectAnswer(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 50; i++ {
		ch := s.New()
		answer := solve(t, ch.Question)
		assert.GreaterOrEqual(t, answer, 0)
		assert.True(t, s.Verify(ch.ID, " "+strconv.Itoa(answer)+" "))
	}
	assert.Equal(t, 0, s.Len())
}

func TestStore_WrongAnswerConsumesChallenge(t *testing.T) {
	s := newTestStore()
	ch := s.New()
	answer := solve(t, ch.Question)

	assert.False(t, s.Verify(ch.ID, strconv.Itoa(answer+1)))
	assert.False(t, s.Verify(ch.ID, strconv.Itoa(answer)), "challenge must be single use")
}

func TestStore_RejectsUnknownAndMalformed(t *testing.T) {
	s := newTestStore()
	assert.False(t, s.Verify("does-not-exist", "4"))

	ch := s.New()
	assert.False(t, s.Verify(ch.ID, "four"))
}

func TestStore_Expiry(t *testing.T) {
	s := newTestStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ch := s.New()
	assert.Equal(t, now.Add(time.Minute), ch.ExpiresAt)

	now = now.Add(2 * time.Minute)
	assert.False(t, s.Verify(ch.ID, strconv.Itoa(solve(t, ch.Question))))

	// Stale challenges are dropped the next time one is issued.
	stale := s.New()
	now = now.Add(2 * time.Minute)
	_ = s.New()
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Verify(stale.ID, strconv.Itoa(solve(t, stale.Question))))
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore(0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ch := s.New()
				s.Verify(ch.ID, "0")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
}
