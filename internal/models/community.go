package models

import "gorm.io/gorm"

// Post is a community discussion thread.
type Post struct {
	gorm.Model
	AuthorID  uint   `gorm:"not null;index"`
	Title     string `gorm:"size:300;not null"`
	Body      string `gorm:"type:text;not null"`
	LikeCount int64  `gorm:"not null;default:0"`

	Author User `gorm:"foreignKey:AuthorID"`
}

// Comment is a reply to a post.
type Comment struct {
	gorm.Model
	PostID    uint   `gorm:"not null;index"`
	AuthorID  uint   `gorm:"not null;index"`
	Body      string `gorm:"type:text;not null"`
	LikeCount int64  `gorm:"not null;default:0"`

	Author User `gorm:"foreignKey:AuthorID"`
}

// Review is a buyer's rating of a game. A user reviews a game at most once.
type Review struct {
	gorm.Model
	GameID    uint   `gorm:"not null;uniqueIndex:idx_review_game_author"`
	AuthorID  uint   `gorm:"not null;uniqueIndex:idx_review_game_author"`
	Rating    int    `gorm:"not null"`
	Body      string `gorm:"type:text"`
	LikeCount int64  `gorm:"not null;default:0"`

	Author User `gorm:"foreignKey:AuthorID"`
}
