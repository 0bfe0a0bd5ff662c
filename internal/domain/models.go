// Package domain defines the persistence models for users, likes, matches and
// availability slots. These types are mapped with GORM and form the core data
// layer of the matching service.
package domain

import (
	"time"
)

// LikeStatus enumerates the states of a directed like edge. Only LIKED is
// produced today; the type leaves room for "passed"/"blocked" variants.
type LikeStatus string

const (
	LikeStatusLiked LikeStatus = "LIKED"
)

// MatchStatus enumerates the lifecycle states of a Match.
type MatchStatus string

const (
	MatchStatusMatched MatchStatus = "MATCHED"
)

// Phase is the derived reconciliation sub-state of a Match.
type Phase string

const (
	PhaseAwaitingBoth Phase = "awaiting_both"
	PhaseAwaitingOne  Phase = "awaiting_one"
	PhaseScheduled    Phase = "scheduled"
)

// User is the public part of a profile owned by the profile collaborator.
// The matching engine only reads it (existence checks and match listings).
//
// Fields:
//   - ID: numeric primary key handed out by the identity provider.
//   - Email: unique login address; never exposed in match listings.
//   - Name / Age / Gender / Bio / AvatarURL: public profile attributes.
type User struct {
	ID        int64     `json:"id"                   gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"-"                    gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	Name      string    `json:"name"                 gorm:"type:varchar(255);not null;default:''"`
	Age       *int      `json:"age,omitempty"`
	Gender    string    `json:"gender,omitempty"     gorm:"type:varchar(16)"`
	Bio       string    `json:"bio,omitempty"        gorm:"type:text"`
	AvatarURL string    `json:"avatar_url,omitempty" gorm:"type:varchar(1024)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Like is a directed expression of interest from one user to another.
// At most one like exists per ordered pair (unique index); rows are never
// mutated or deleted.
type Like struct {
	ID         int64      `json:"id"           gorm:"primaryKey;autoIncrement"`
	FromUserID int64      `json:"from_user_id" gorm:"not null;uniqueIndex:ux_likes_from_to,priority:1"`
	ToUserID   int64      `json:"to_user_id"   gorm:"not null;uniqueIndex:ux_likes_from_to,priority:2;index:idx_likes_to"`
	Status     LikeStatus `json:"status"       gorm:"type:varchar(16);not null;default:'LIKED'"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName returns the database table name for Like.
func (Like) TableName() string { return "likes" }

// Match is the mutual-like pairing of two users, stored in canonical order
// (UserAID < UserBID). The unique index on the pair is the only guard against
// duplicate matches when reciprocal likes race.
//
// Fields:
//   - UserAAvailabilitySubmitted / UserBAvailabilitySubmitted: per-side flags,
//     flipped by submissions and cleared together on a failed reconciliation.
//   - DateScheduledAt: the agreed meeting instant; non-nil only after a
//     successful reconciliation.
//   - Slots: availability of both participants, loaded on demand.
type Match struct {
	ID                         int64       `json:"id"                            gorm:"primaryKey;autoIncrement"`
	UserAID                    int64       `json:"user_a_id"                     gorm:"not null;uniqueIndex:ux_matches_pair,priority:1;check:chk_matches_order,user_a_id < user_b_id"`
	UserBID                    int64       `json:"user_b_id"                     gorm:"not null;uniqueIndex:ux_matches_pair,priority:2;index:idx_matches_user_b"`
	Status                     MatchStatus `json:"status"                        gorm:"type:varchar(16);not null;default:'MATCHED'"`
	UserAAvailabilitySubmitted bool        `json:"user_a_availability_submitted" gorm:"not null;default:false"`
	UserBAvailabilitySubmitted bool        `json:"user_b_availability_submitted" gorm:"not null;default:false"`
	DateScheduledAt            *time.Time  `json:"date_scheduled_at"`
	CreatedAt                  time.Time   `json:"created_at"                    gorm:"index:idx_matches_created"`
	UpdatedAt                  time.Time   `json:"updated_at"`

	Slots []AvailabilitySlot `json:"slots,omitempty" gorm:"foreignKey:MatchID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Match.
func (Match) TableName() string { return "matches" }

// Pair returns the canonical participant pair of the match.
func (m *Match) Pair() UserPair { return UserPair{A: m.UserAID, B: m.UserBID} }

// IsParticipant reports whether userID is one of the two matched users.
func (m *Match) IsParticipant(userID int64) bool {
	return userID == m.UserAID || userID == m.UserBID
}

// BothSubmitted reports whether both participants have submitted availability.
func (m *Match) BothSubmitted() bool {
	return m.UserAAvailabilitySubmitted && m.UserBAvailabilitySubmitted
}

// OtherUser returns the id of the participant that is not userID.
func (m *Match) OtherUser(userID int64) int64 {
	if userID == m.UserAID {
		return m.UserBID
	}
	return m.UserAID
}

// Phase derives the reconciliation sub-state from the stored flags.
func (m *Match) Phase() Phase {
	switch {
	case m.DateScheduledAt != nil:
		return PhaseScheduled
	case m.UserAAvailabilitySubmitted || m.UserBAvailabilitySubmitted:
		return PhaseAwaitingOne
	default:
		return PhaseAwaitingBoth
	}
}

// AvailabilitySlot is one window proposed by one participant of a match.
// Date identifies the calendar day (stored at UTC midnight); StartTime and
// EndTime are absolute instants with StartTime < EndTime.
type AvailabilitySlot struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	MatchID   int64     `json:"match_id"   gorm:"not null;index:idx_slots_match_user,priority:1"`
	UserID    int64     `json:"user_id"    gorm:"not null;index:idx_slots_match_user,priority:2"`
	Date      time.Time `json:"date"       gorm:"not null"`
	StartTime time.Time `json:"start_time" gorm:"not null;check:chk_slots_window,start_time < end_time"`
	EndTime   time.Time `json:"end_time"   gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for AvailabilitySlot.
func (AvailabilitySlot) TableName() string { return "availability_slots" }

// Window returns the slot's proposed interval.
func (s AvailabilitySlot) Window() Window {
	return Window{Date: s.Date, Start: s.StartTime, End: s.EndTime}
}
