package recommend

import (
	"context"
	"fmt"

	"gamestore/backend/internal/models"

	"gorm.io/gorm"
)

// Service loads scoring inputs from the store and runs the engine.
type Service struct {
	db     *gorm.DB
	engine *Engine
}

// NewService creates a Service. A nil engine scores with the default signals.
func NewService(db *gorm.DB, engine *Engine) *Service {
	if engine == nil {
		engine = NewEngine(Signals{})
	}
	return &Service{db: db, engine: engine}
}

// LoadProfile reads the user's wishlist and favorite tags. The anonymous
// user (id 0) gets an empty profile.
func (s *Service) LoadProfile(ctx context.Context, userID uint) (*Profile, error) {
	if userID == 0 {
		return NewProfile(0, nil, nil), nil
	}
	db := s.db.WithContext(ctx)

	var wishlist []uint
	if err := db.Model(&models.WishlistEntry{}).
		Where("user_id = ?", userID).
		Order("game_id").
		Pluck("game_id", &wishlist).Error; err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}

	var favorites []string
	if err := db.Model(&models.Tag{}).
		Joins("JOIN favorite_tags ft ON ft.tag_id = tags.id").
		Where("ft.user_id = ?", userID).
		Order("tags.name").
		Pluck("tags.name", &favorites).Error; err != nil {
		return nil, fmt.Errorf("load favorite tags: %w", err)
	}

	return NewProfile(userID, wishlist, favorites), nil
}

// LoadCandidates reads every listed game with its tags, ordered by id so
// equal scores rank by ascending id.
func (s *Service) LoadCandidates(ctx context.Context) ([]Candidate, error) {
	var games []models.Game
	if err := s.db.WithContext(ctx).Preload("Tags").Order("id").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("load candidate games: %w", err)
	}

	candidates := make([]Candidate, len(games))
	for i, g := range games {
		candidates[i] = Candidate{
			ID:                 g.ID,
			Title:              g.Title,
			PriceCents:         g.PriceCents,
			DiscountPriceCents: g.DiscountPriceCents,
			Tags:               g.TagNames(),
		}
	}
	return candidates, nil
}

// Top returns the user's best-scoring games.
func (s *Service) Top(ctx context.Context, userID uint, limit int) ([]Scored, error) {
	profile, candidates, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.Rank(profile, candidates, limit), nil
}

// Categories returns the user's bucketed recommendations.
func (s *Service) Categories(ctx context.Context, userID uint, limit int) ([]Bucket, error) {
	profile, candidates, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.engine.Categories(profile, candidates, limit), nil
}

func (s *Service) load(ctx context.Context, userID uint) (*Profile, []Candidate, error) {
	profile, err := s.LoadProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	candidates, err := s.LoadCandidates(ctx)
	if err != nil {
		return nil, nil, err
	}
	return profile, candidates, nil
}
