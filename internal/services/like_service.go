// Package services – LikeService
//
// This file implements the like ledger. Recording a like, checking for the
// reciprocal like and creating the match all happen in one transaction, so
// two users liking each other at the same moment always end up with exactly
// one match and both callers learn about it.
//
// Service-level errors (ErrSelfLike, ErrUserNotFound, ErrDuplicateLike) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// LikeResult is the outcome of a like. Match is set only when IsMatch is true.
type LikeResult struct {
	IsMatch bool          `json:"is_match"`
	Match   *domain.Match `json:"match,omitempty"`
}

// LikeService implements the like use-cases.
type LikeService struct {
	DB       *gorm.DB
	Profiles ProfileStore
}

// NewLikeService constructs a LikeService with a DB-backed profile store.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{DB: db, Profiles: DBProfileStore{DB: db}}
}

// Like records that from likes to and reports whether this produced (or
// revealed) a mutual match.
//
// Semantics and validation:
//   - from == to yields ErrSelfLike.
//   - to must exist; otherwise ErrUserNotFound.
//   - A second like for the same (from, to) yields ErrDuplicateLike.
//
// Concurrency & atomicity:
//   - Insert, reciprocity check and match creation share one transaction.
//     On PostgreSQL an advisory lock on the pair serialises the two likers;
//     SQLite serialises writers at the database level.
func (s *LikeService) Like(ctx context.Context, from, to int64) (*LikeResult, error) {
	tr := otel.Tracer("services/LikeService")
	ctx, span := tr.Start(ctx, "Like",
		trace.WithAttributes(
			attribute.Int64("user.id", from),
			attribute.Int64("target.id", to),
		),
	)
	defer span.End()

	pair, err := domain.NewUserPair(from, to)
	if err != nil {
		return nil, ErrSelfLike
	}

	ok, err := s.profiles().UserExists(ctx, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	res := &LikeResult{}
	created := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.LockPair(ctx, tx, pair); err != nil {
			return err
		}
		if _, err := repo.CreateLike(ctx, tx, from, to); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicateLike
			}
			return err
		}

		mutual, err := repo.HasLike(ctx, tx, to, from)
		if err != nil || !mutual {
			return err
		}

		m, c, err := getOrCreateMatch(ctx, tx, pair)
		if err != nil {
			return err
		}
		res.IsMatch, res.Match, created = true, m, c
		return nil
	})
	if err != nil {
		return nil, err
	}

	likesRecorded.Inc()
	if created {
		matchesCreated.Inc()
		logFor(ctx).Info().Int64("match_id", res.Match.ID).Str("pair", pair.String()).Msg("match created")
	}
	span.SetAttributes(attribute.Bool("like.is_match", res.IsMatch))
	return res, nil
}

// ListLiked returns the ids of users that userID has liked, in like order.
func (s *LikeService) ListLiked(ctx context.Context, userID int64) ([]int64, error) {
	tr := otel.Tracer("services/LikeService")
	ctx, span := tr.Start(ctx, "ListLiked",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	return repo.ListLikedUserIDs(ctx, s.DB, userID)
}

func (s *LikeService) profiles() ProfileStore {
	if s.Profiles == nil {
		return DBProfileStore{DB: s.DB}
	}
	return s.Profiles
}
