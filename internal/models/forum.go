package models

import "time"

// Section is a top-level category grouping topics.
type Section struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Title  string  `gorm:"size:200;not null;uniqueIndex" json:"title"`
	Themes []Theme `gorm:"foreignKey:SectionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"themes,omitempty"`
}

// Theme is a discussion topic inside a section.
type Theme struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Title     string       `gorm:"size:200;not null" json:"title"`
	CreatedAt time.Time    `gorm:"not null;index" json:"created_at"`
	UserID    uint         `gorm:"not null;index" json:"user_id"`
	User      *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	SectionID uint         `gorm:"not null;index" json:"section_id"`
	Comments  []Comment    `gorm:"foreignKey:ThemeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"comments,omitempty"`
}

// Comment is a post inside a topic. New comments wait for admission.
type Comment struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Text       string       `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time    `gorm:"not null;index" json:"created_at"`
	UserID     uint         `gorm:"not null;index" json:"user_id"`
	User       *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user,omitempty"`
	ThemeID    uint         `gorm:"not null;index" json:"theme_id"`
	IsAdmitted bool         `gorm:"not null;default:false;index" json:"is_admitted"`
	Likes      []Like       `gorm:"foreignKey:CommentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"likes,omitempty"`
}

// Like is a signed vote on a comment. The sign carries up/down semantics.
// One voter may hold several likes on the same comment.
type Like struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	CommentID uint         `gorm:"not null;index" json:"comment_id"`
	UserID    uint         `gorm:"not null;index" json:"user_id"`
	User      *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Vote      int          `gorm:"not null" json:"vote"`
}
