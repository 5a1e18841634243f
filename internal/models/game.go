package models

import "gorm.io/gorm"

// Game represents a game listed in the store.
type Game struct {
	gorm.Model
	DeveloperID        uint   `gorm:"not null;index"`
	Title              string `gorm:"size:255;not null"`
	Description        string
	PriceCents         int64  `gorm:"not null;default:0"`
	DiscountPriceCents *int64 // nil when the game is not on sale
	LikeCount          int64  `gorm:"not null;default:0"`
	Tags               []*Tag `gorm:"many2many:game_tags;"`

	Developer User `gorm:"foreignKey:DeveloperID"`
}

// IsFree reports whether the game costs nothing.
func (g Game) IsFree() bool {
	return g.PriceCents <= 0
}

// IsDiscounted reports whether a discount price below the list price is set.
func (g Game) IsDiscounted() bool {
	return g.PriceCents > 0 && g.DiscountPriceCents != nil && *g.DiscountPriceCents < g.PriceCents
}

// EffectivePriceCents is the price a buyer pays right now.
func (g Game) EffectivePriceCents() int64 {
	if g.IsDiscounted() {
		return *g.DiscountPriceCents
	}
	if g.PriceCents < 0 {
		return 0
	}
	return g.PriceCents
}

// TagNames returns the names of the preloaded tags.
func (g Game) TagNames() []string {
	names := make([]string, 0, len(g.Tags))
	for _, tag := range g.Tags {
		if tag != nil {
			names = append(names, tag.Name)
		}
	}
	return names
}
