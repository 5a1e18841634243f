package models

import "time"

// CartItem is a game waiting in a user's cart.
type CartItem struct {
	UserID    uint `gorm:"primaryKey"`
	GameID    uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE;"`
}

// Purchase records ownership of a game. A user owns a game at most once.
type Purchase struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           uint   `gorm:"not null;uniqueIndex:idx_purchase_user_game"`
	GameID           uint   `gorm:"not null;uniqueIndex:idx_purchase_user_game;index"`
	PaidCents        int64  `gorm:"not null"`
	PaymentReference string `gorm:"size:64;not null;index"`
	CreatedAt        time.Time

	Game Game `gorm:"foreignKey:GameID"`
}
