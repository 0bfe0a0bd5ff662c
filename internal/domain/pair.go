package domain

import "fmt"

// UserPair is an unordered pair of users normalised so that A < B. Build it
// with NewUserPair; the zero value is not a valid pair.
type UserPair struct {
	A int64
	B int64
}

// NewUserPair canonicalises (x, y) into min/max order. It fails when both ids
// are equal since a user cannot be paired with themselves.
func NewUserPair(x, y int64) (UserPair, error) {
	if x == y {
		return UserPair{}, fmt.Errorf("pair requires two distinct users, got %d twice", x)
	}
	if x > y {
		x, y = y, x
	}
	return UserPair{A: x, B: y}, nil
}

// String renders the pair as "a:b".
func (p UserPair) String() string { return fmt.Sprintf("%d:%d", p.A, p.B) }

// LockKey folds the pair into a single 64-bit key for advisory locking.
// Collisions only cause unrelated pairs to serialise, never incorrectness.
func (p UserPair) LockKey() int64 {
	return p.A<<32 ^ p.B
}
