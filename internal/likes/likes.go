// Package likes toggles user likes on posts, comments, reviews and games
// while keeping each target's like_count equal to its number of like rows.
//
// Every kind runs through the same transaction: lock the target row, verify
// the acting user, flip the (user, target) join row and move the counter by
// one. A failure at any step rolls back both the row and the counter.
package likes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamestore/backend/internal/logging"
	"gamestore/backend/internal/metrics"
	"gamestore/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Kind names a likeable target type.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
	KindReview  Kind = "review"
	KindGame    Kind = "game"
)

// Anonymous is the user id the auth layer reports for requests without a session.
const Anonymous uint = 0

// Kinds lists every likeable kind in reconciliation order.
func Kinds() []Kind {
	return []Kind{KindPost, KindComment, KindReview, KindGame}
}

// descriptor parameterizes the toggle for one kind.
type descriptor struct {
	resource  string // name used in error messages
	table     string
	joinTable string
	column    string // join table column referencing the target
	target    func() interface{}
	join      func(userID, targetID uint, at time.Time) interface{}
}

var descriptors = map[Kind]descriptor{
	KindPost: {
		resource: "Post", table: "posts", joinTable: "post_likes", column: "post_id",
		target: func() interface{} { return &models.Post{} },
		join: func(userID, targetID uint, at time.Time) interface{} {
			return &models.PostLike{UserID: userID, PostID: targetID, CreatedAt: at}
		},
	},
	KindComment: {
		resource: "Comment", table: "comments", joinTable: "comment_likes", column: "comment_id",
		target: func() interface{} { return &models.Comment{} },
		join: func(userID, targetID uint, at time.Time) interface{} {
			return &models.CommentLike{UserID: userID, CommentID: targetID, CreatedAt: at}
		},
	},
	KindReview: {
		resource: "Review", table: "reviews", joinTable: "review_likes", column: "review_id",
		target: func() interface{} { return &models.Review{} },
		join: func(userID, targetID uint, at time.Time) interface{} {
			return &models.ReviewLike{UserID: userID, ReviewID: targetID, CreatedAt: at}
		},
	},
	KindGame: {
		resource: "Game", table: "games", joinTable: "game_likes", column: "game_id",
		target: func() interface{} { return &models.Game{} },
		join: func(userID, targetID uint, at time.Time) interface{} {
			return &models.GameLike{UserID: userID, GameID: targetID, CreatedAt: at}
		},
	},
}

// ParseKind maps a route segment ("posts", "game", ...) to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "post", "posts":
		return KindPost, true
	case "comment", "comments":
		return KindComment, true
	case "review", "reviews":
		return KindReview, true
	case "game", "games":
		return KindGame, true
	}
	return "", false
}

// Result is the state after a toggle.
type Result struct {
	Liked     bool
	LikeCount int64
}

// Listener is notified after a toggle commits.
type Listener func(kind Kind, targetID uint, result Result)

// Service runs toggles and reconciliation against the relational store.
type Service struct {
	db        *gorm.DB
	now       func() time.Time
	listeners []Listener
}

// NewService creates a Service backed by db.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// OnToggle registers a listener called after every committed toggle.
// Listeners must be registered before the service handles requests.
func (s *Service) OnToggle(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Toggle flips userID's like on the target and returns the new state.
//
// Preconditions are checked in order: a positive target id, an existing
// target, an authenticated caller, an existing user row. The join row and the
// counter change in one transaction with the target row locked, so concurrent
// toggles on the same target serialize and a retried request simply toggles
// again against committed state.
func (s *Service) Toggle(ctx context.Context, kind Kind, targetID int64, userID uint) (Result, error) {
	result, err := s.toggle(ctx, kind, targetID, userID)

	outcome := "unliked"
	switch {
	case err != nil:
		outcome = models.ErrorCode(err)
	case result.Liked:
		outcome = "liked"
	}
	metrics.LikeToggles.WithLabelValues(string(kind), outcome).Inc()

	if err != nil {
		return Result{}, err
	}
	for _, l := range s.listeners {
		l(kind, uint(targetID), result)
	}
	return result, nil
}

func (s *Service) toggle(ctx context.Context, kind Kind, targetID int64, userID uint) (Result, error) {
	d, ok := descriptors[kind]
	if !ok {
		return Result{}, models.NewInvalidArgumentError(fmt.Sprintf("unknown like target %q", kind))
	}
	if targetID <= 0 {
		return Result{}, models.NewInvalidArgumentError(fmt.Sprintf("invalid %s id", kind))
	}
	id := uint(targetID)

	var result Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current struct{ LikeCount int64 }
		err := tx.Model(d.target()).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("like_count").
			Where("id = ?", id).
			Take(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(d.resource, id)
		}
		if err != nil {
			return fmt.Errorf("lock %s %d: %w", kind, id, err)
		}

		if userID == Anonymous {
			return models.NewUnauthenticatedError("You must be logged in to like")
		}

		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return fmt.Errorf("check user %d: %w", userID, err)
		}
		if users == 0 {
			return models.NewNotFoundError("User", userID)
		}

		var existing int64
		err = tx.Model(d.join(0, 0, time.Time{})).
			Where("user_id = ? AND "+d.column+" = ?", userID, id).
			Count(&existing).Error
		if err != nil {
			return fmt.Errorf("check like: %w", err)
		}

		delta := 1
		if existing > 0 {
			delta = -1
			err = tx.Where("user_id = ? AND "+d.column+" = ?", userID, id).
				Delete(d.join(0, 0, time.Time{})).Error
		} else {
			err = tx.Create(d.join(userID, id, s.now())).Error
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Like changed concurrently, retry", err)
		}
		if err != nil {
			return fmt.Errorf("write like row: %w", err)
		}

		err = tx.Model(d.target()).
			Where("id = ?", id).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
		if err != nil {
			return fmt.Errorf("update like counter: %w", err)
		}

		if err := tx.Model(d.target()).Select("like_count").Where("id = ?", id).Take(&current).Error; err != nil {
			return fmt.Errorf("read like counter: %w", err)
		}

		result = Result{Liked: delta > 0, LikeCount: current.LikeCount}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logging.Ctx(ctx).Debug().
		Str("kind", string(kind)).
		Uint("target_id", id).
		Uint("user_id", userID).
		Bool("liked", result.Liked).
		Int64("like_count", result.LikeCount).
		Msg("like toggled")
	return result, nil
}

// IsLiked reports whether userID currently likes the target.
func (s *Service) IsLiked(ctx context.Context, kind Kind, targetID, userID uint) (bool, error) {
	liked, err := s.LikedIDs(ctx, kind, userID, []uint{targetID})
	if err != nil {
		return false, err
	}
	return liked[targetID], nil
}

// LikedIDs returns which of targetIDs userID likes.
func (s *Service) LikedIDs(ctx context.Context, kind Kind, userID uint, targetIDs []uint) (map[uint]bool, error) {
	d, ok := descriptors[kind]
	if !ok {
		return nil, models.NewInvalidArgumentError(fmt.Sprintf("unknown like target %q", kind))
	}
	liked := make(map[uint]bool, len(targetIDs))
	if userID == Anonymous || len(targetIDs) == 0 {
		return liked, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).
		Model(d.join(0, 0, time.Time{})).
		Where("user_id = ? AND "+d.column+" IN ?", userID, targetIDs).
		Pluck(d.column, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load liked %s ids: %w", kind, err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
