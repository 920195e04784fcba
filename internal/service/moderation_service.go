package service

import (
	"context"

	"forumcore/internal/models"
	"forumcore/internal/observability"
	"forumcore/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ModerationService decides which comments a viewer sees and admits pending ones.
type ModerationService struct {
	commentRepo repository.CommentRepository
}

func NewModerationService(commentRepo repository.CommentRepository) *ModerationService {
	return &ModerationService{commentRepo: commentRepo}
}

// ListComments returns the topic's comments oldest first. Viewers with full
// access see everything, anonymous viewers see admitted comments only, and an
// identified viewer also sees their own pending comments.
func (s *ModerationService) ListComments(
	ctx context.Context,
	topicID uint,
	viewerHasFullAccess bool,
	viewerID *uint,
) (out []models.CommentView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ModerationService", "ListComments",
		attribute.Int64("topic.id", int64(topicID)),
		attribute.Bool("viewer.full_access", viewerHasFullAccess),
	)
	defer func() { span.End(err) }()

	return s.commentRepo.ListByTopic(ctx, topicID, repository.CommentVisibility{
		All:     viewerHasFullAccess,
		OwnerID: viewerID,
	})
}

// Admit approves a pending comment. A second admission fails with
// AlreadyAdmitted and an unknown id with NotFound.
func (s *ModerationService) Admit(ctx context.Context, commentID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ModerationService", "Admit", attribute.Int64("comment.id", int64(commentID)))
	defer func() { span.End(err) }()

	err = s.commentRepo.Admit(ctx, commentID)
	observability.Admissions.WithLabelValues(admissionOutcome(err)).Inc()
	return err
}

func (s *ModerationService) ListPending(ctx context.Context) (out []models.PendingCommentView, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ModerationService", "ListPending")
	defer func() { span.End(err) }()

	return s.commentRepo.ListPending(ctx)
}

func admissionOutcome(err error) string {
	switch {
	case err == nil:
		return "admitted"
	case models.IsAlreadyAdmitted(err):
		return "already_admitted"
	case models.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
