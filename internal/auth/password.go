package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost is used when the configured cost is outside bcrypt's range.
const DefaultBcryptCost = 10

// PasswordHasher hashes and verifies passwords with bcrypt. bcrypt is CPU
// bound, so at most `workers` hash operations run at once; callers beyond that
// wait for a slot or for their context to end.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted
}

// NewPasswordHasher creates a hasher with the given bcrypt cost and number of
// concurrent worker slots.
func NewPasswordHasher(cost, workers int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	if workers < 1 {
		workers = 1
	}
	return &PasswordHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(workers)),
	}
}

// Hash returns a salted bcrypt digest of plaintext. The salt is random per
// call and embedded in the digest.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hash slot: %w", err)
	}
	defer h.slots.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest or a
// cancelled context yields false.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
