package service

import (
	"context"

	"forumcore/internal/models"
	"forumcore/internal/observability"
	"forumcore/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type ContentService struct {
	sectionRepo repository.SectionRepository
	topicRepo   repository.TopicRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
}

type CreateSectionInput struct {
	Title string `json:"title" validate:"required,max=200"`
}

type CreateTopicInput struct {
	SectionID uint   `json:"section_id" validate:"required"`
	UserID    uint   `json:"user_id" validate:"required"`
	Title     string `json:"title" validate:"required,max=200"`
}

type CreateCommentInput struct {
	TopicID uint   `json:"topic_id" validate:"required"`
	UserID  uint   `json:"user_id" validate:"required"`
	Text    string `json:"text" validate:"required,max=10000"`
}

type CastVoteInput struct {
	CommentID uint `json:"comment_id" validate:"required"`
	UserID    uint `json:"user_id" validate:"required"`
	Vote      int  `json:"vote" validate:"ne=0,min=-10,max=10"`
}

func NewContentService(
	sectionRepo repository.SectionRepository,
	topicRepo repository.TopicRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
) *ContentService {
	return &ContentService{
		sectionRepo: sectionRepo,
		topicRepo:   topicRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
	}
}

// AddSection fails with ConstraintViolation when the title is taken.
func (s *ContentService) AddSection(ctx context.Context, in CreateSectionInput) (section *models.Section, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContentService", "AddSection")
	defer func() { span.End(err) }()

	if err := validateInput(in); err != nil {
		return nil, err
	}

	section = &models.Section{Title: in.Title}
	if err := s.sectionRepo.Create(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *ContentService) AddTopic(ctx context.Context, in CreateTopicInput) (topic *models.Theme, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContentService", "AddTopic", attribute.Int64("section.id", int64(in.SectionID)))
	defer func() { span.End(err) }()

	if err := validateInput(in); err != nil {
		return nil, err
	}

	topic = &models.Theme{
		Title:     in.Title,
		SectionID: in.SectionID,
		UserID:    in.UserID,
	}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// AddComment stores a new comment awaiting admission.
func (s *ContentService) AddComment(ctx context.Context, in CreateCommentInput) (comment *models.Comment, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContentService", "AddComment", attribute.Int64("topic.id", int64(in.TopicID)))
	defer func() { span.End(err) }()

	if err := validateInput(in); err != nil {
		return nil, err
	}

	comment = &models.Comment{
		Text:    in.Text,
		ThemeID: in.TopicID,
		UserID:  in.UserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CastVote records a signed vote. A voter may vote on the same comment repeatedly.
func (s *ContentService) CastVote(ctx context.Context, in CastVoteInput) (like *models.Like, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ContentService", "CastVote", attribute.Int64("comment.id", int64(in.CommentID)))
	defer func() { span.End(err) }()

	if err := validateInput(in); err != nil {
		return nil, err
	}

	like = &models.Like{
		CommentID: in.CommentID,
		UserID:    in.UserID,
		Vote:      in.Vote,
	}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}
