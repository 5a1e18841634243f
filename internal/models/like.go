package models

import "time"

// Like join rows. Each has a composite primary key so a user holds at most
// one like per target, and rows are hard deleted on unlike.

// PostLike is a user's like on a post.
type PostLike struct {
	UserID    uint `gorm:"primaryKey"`
	PostID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

// CommentLike is a user's like on a comment.
type CommentLike struct {
	UserID    uint `gorm:"primaryKey"`
	CommentID uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

// ReviewLike is a user's like on a review.
type ReviewLike struct {
	UserID    uint `gorm:"primaryKey"`
	ReviewID  uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

// GameLike is a user's like on a game.
type GameLike struct {
	UserID    uint `gorm:"primaryKey"`
	GameID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}
