package models

import "time"

// Display placeholders used by projections.
const (
	// DeletedUserName replaces the author name of anonymized profiles.
	DeletedUserName = "deleted user"
	// HiddenByUserPlaceholder replaces contact details the owner chose to hide.
	HiddenByUserPlaceholder = "hidden by user"
	// NotProvidedPlaceholder replaces shown contact details that are empty.
	NotProvidedPlaceholder = "not provided"
)

// DisplayName returns name or the deleted-user placeholder when name is absent.
func DisplayName(name *string) string {
	if name == nil || *name == "" {
		return DeletedUserName
	}
	return *name
}

// ShortTopicInfo is a topic row in a user's topic list.
type ShortTopicInfo struct {
	TopicID   uint      `json:"topic_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// TopicSummary is a topic row with author and comment counts.
type TopicSummary struct {
	AuthorID             uint      `json:"author_id"`
	AuthorName           string    `json:"author_name"`
	TopicID              uint      `json:"topic_id"`
	Title                string    `json:"title"`
	CreatedAt            time.Time `json:"created_at"`
	AdmittedCommentCount int64     `json:"admitted_comment_count"`
	PendingCommentCount  int64     `json:"pending_comment_count"`
}

// SectionSummary is a section row with topic and comment counts.
type SectionSummary struct {
	SectionID            uint   `json:"section_id"`
	Title                string `json:"title"`
	TopicCount           int64  `json:"topic_count"`
	AdmittedCommentCount int64  `json:"admitted_comment_count"`
	PendingCommentCount  int64  `json:"pending_comment_count"`
}

// CommentView is a comment as rendered inside a topic.
type CommentView struct {
	ID         uint      `json:"id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"author_name"`
	AuthorID   uint      `json:"author_id"`
	VoteTotal  int64     `json:"vote_total"`
	HasAvatar  bool      `json:"has_avatar"`
	IsAdmitted bool      `json:"is_admitted"`
}

// PendingCommentView is a comment in the moderation queue.
type PendingCommentView struct {
	CommentID  uint      `json:"comment_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	TopicID    uint      `json:"topic_id"`
	TopicTitle string    `json:"topic_title"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
}

// PrivacySettings are a user's contact visibility flags plus the stored mobile.
type PrivacySettings struct {
	ShowEmail  bool   `json:"show_email"`
	ShowMobile bool   `json:"show_mobile"`
	Mobile     string `json:"mobile"`
}

// PrivacySettingsInput is the write form of PrivacySettings. Both flags are required.
type PrivacySettingsInput struct {
	ShowEmail  *bool  `json:"show_email" validate:"required"`
	ShowMobile *bool  `json:"show_mobile" validate:"required"`
	Mobile     string `json:"mobile" validate:"max=32"`
}

// ProfileSummary is the public projection of a profile.
type ProfileSummary struct {
	UserID       uint      `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Rating       int64     `json:"rating"`
	MaskedEmail  string    `json:"email"`
	MaskedMobile string    `json:"mobile"`
	HasAvatar    bool      `json:"has_avatar"`
	RegisteredAt time.Time `json:"registered_at"`
}

// DeleteReport describes what a delete operation removed. Found is false
// when the target did not exist and nothing was done.
type DeleteReport struct {
	Found    bool  `json:"found"`
	Sections int64 `json:"sections"`
	Topics   int64 `json:"topics"`
	Comments int64 `json:"comments"`
	Likes    int64 `json:"likes"`
}
