package models

import "time"

// WishlistEntry marks a game a user wants to buy later.
// The composite primary key allows at most one entry per (user, game).
type WishlistEntry struct {
	UserID    uint `gorm:"primaryKey"`
	GameID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
}

// FavoriteTag records a user's interest in a tag. Membership is binary.
type FavoriteTag struct {
	UserID    uint `gorm:"primaryKey"`
	TagID     uint `gorm:"primaryKey;index"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Tag  Tag  `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE;"`
}
