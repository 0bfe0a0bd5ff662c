// Package services – MatchService
//
// This file implements the match registry. A match is created exactly once
// per unordered pair of users, no matter how many callers race to create it:
// the unique index on the canonical pair decides, and the loser of a race
// re-reads and returns the winner's row.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include match and user identifiers.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/domain"
	"github.com/tbourn/go-match-backend/internal/repo"
)

// lookupMatch is the pair lookup used before inserting. Tests swap it to
// simulate losing the insert race.
var lookupMatch = repo.FindMatchByPair

// PublicProfile is the part of a user profile shown to a match partner.
type PublicProfile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Age       *int   `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// MatchSummary is one row of a user's match list.
type MatchSummary struct {
	MatchID     int64         `json:"match_id"`
	MatchedAt   time.Time     `json:"matched_at"`
	Phase       domain.Phase  `json:"phase"`
	ScheduledAt *time.Time    `json:"date_scheduled_at,omitempty"`
	Profile     PublicProfile `json:"profile"`
}

// MatchService owns match creation and read access to matches.
type MatchService struct {
	DB       *gorm.DB
	Profiles ProfileStore

	// NameLocale drives title-casing of display names in summaries.
	NameLocale language.Tag
}

// NewMatchService constructs a MatchService with a DB-backed profile store.
func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{
		DB:         db,
		Profiles:   DBProfileStore{DB: db},
		NameLocale: language.Und,
	}
}

// GetOrCreate returns the match for users a and b, creating it with both
// submission flags false and no schedule when it does not exist yet.
// The boolean result reports whether this call created the row.
func (s *MatchService) GetOrCreate(ctx context.Context, a, b int64) (*domain.Match, bool, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "GetOrCreate",
		trace.WithAttributes(
			attribute.Int64("user.a", a),
			attribute.Int64("user.b", b),
		),
	)
	defer span.End()

	pair, err := domain.NewUserPair(a, b)
	if err != nil {
		return nil, false, ErrSelfLike
	}
	m, created, err := getOrCreateMatch(ctx, s.DB, pair)
	if err != nil {
		return nil, false, err
	}
	if created {
		matchesCreated.Inc()
		logFor(ctx).Info().Int64("match_id", m.ID).Str("pair", pair.String()).Msg("match created")
	}
	return m, created, nil
}

// getOrCreateMatch runs the lookup-then-insert on db, which may be a
// transaction. The insert is wrapped in a nested transaction so that a unique
// violation only rolls back to the savepoint and the re-read still works on
// PostgreSQL.
func getOrCreateMatch(ctx context.Context, db *gorm.DB, pair domain.UserPair) (*domain.Match, bool, error) {
	m, err := lookupMatch(ctx, db, pair)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}

	var created *domain.Match
	err = db.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		var cerr error
		created, cerr = repo.CreateMatch(ctx, sp, pair)
		return cerr
	})
	switch {
	case err == nil:
		return created, true, nil
	case repo.IsDuplicate(err):
		// Lost the race: the winner's row is committed.
		m, err = repo.FindMatchByPair(ctx, db, pair)
		if err != nil {
			return nil, false, err
		}
		return m, false, nil
	default:
		return nil, false, err
	}
}

// Get returns the match with both participants' slots. Only participants may
// read it.
func (s *MatchService) Get(ctx context.Context, matchID, requester int64) (*domain.Match, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(
			attribute.Int64("match.id", matchID),
			attribute.Int64("user.id", requester),
		),
	)
	defer span.End()

	m, err := repo.GetMatchWithSlots(ctx, s.DB, matchID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if !m.IsParticipant(requester) {
		return nil, ErrNotParticipant
	}
	return m, nil
}

// ListForUser returns the user's matches, newest first, each with the other
// participant's public profile.
func (s *MatchService) ListForUser(ctx context.Context, userID int64) ([]MatchSummary, error) {
	tr := otel.Tracer("services/MatchService")
	ctx, span := tr.Start(ctx, "ListForUser",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	matches, err := repo.ListMatchesForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]MatchSummary, 0, len(matches))
	if len(matches) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(matches))
	for i := range matches {
		ids = append(ids, matches[i].OtherUser(userID))
	}
	profiles, err := s.profiles().Profiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("matches.count", len(matches)))

	// Casers are stateful; one per call.
	caser := cases.Title(s.NameLocale)
	for i := range matches {
		m := &matches[i]
		other := m.OtherUser(userID)
		p := PublicProfile{ID: other}
		if u, ok := profiles[other]; ok {
			p.Name = displayName(caser, u.Name)
			p.AvatarURL = u.AvatarURL
			p.Age = u.Age
			p.Gender = u.Gender
			p.Bio = u.Bio
		}
		out = append(out, MatchSummary{
			MatchID:     m.ID,
			MatchedAt:   m.CreatedAt,
			Phase:       m.Phase(),
			ScheduledAt: m.DateScheduledAt,
			Profile:     p,
		})
	}
	return out, nil
}

// Stats returns the count of the user's matches and the latest update time
// across those matches and the counterpart profiles, used for conditional GETs.
func (s *MatchService) Stats(ctx context.Context, userID int64) (int64, *time.Time, error) {
	return repo.MatchesStats(ctx, s.DB, userID)
}

func (s *MatchService) profiles() ProfileStore {
	if s.Profiles == nil {
		return DBProfileStore{DB: s.DB}
	}
	return s.Profiles
}

// displayName collapses inner whitespace and title-cases the result.
func displayName(c cases.Caser, name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return c.String(name)
}
