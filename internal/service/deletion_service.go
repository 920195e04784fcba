package service

import (
	"context"

	"forumcore/internal/models"
	"forumcore/internal/observability"
	"forumcore/internal/repository"
	"forumcore/internal/roles"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// DeletionService removes content and erases users.
//
// Deleting an entity that does not exist succeeds with Found=false in the
// report. A store rejection rolls the whole call back and surfaces as a
// ConstraintViolation or TransientStoreFailure error.
type DeletionService struct {
	deletionRepo repository.DeletionRepository
	profileRepo  repository.ProfileRepository
	roleStore    roles.Store
}

func NewDeletionService(
	deletionRepo repository.DeletionRepository,
	profileRepo repository.ProfileRepository,
	roleStore roles.Store,
) *DeletionService {
	return &DeletionService{
		deletionRepo: deletionRepo,
		profileRepo:  profileRepo,
		roleStore:    roleStore,
	}
}

func (s *DeletionService) DeleteTopic(ctx context.Context, topicID uint) (report *models.DeleteReport, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "DeletionService", "DeleteTopic", attribute.Int64("topic.id", int64(topicID)))
	defer func() { span.End(err) }()

	report, err = s.deletionRepo.DeleteTopic(ctx, topicID)
	recordCascade(report)
	return report, err
}

func (s *DeletionService) DeleteComment(ctx context.Context, commentID uint) (report *models.DeleteReport, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "DeletionService", "DeleteComment", attribute.Int64("comment.id", int64(commentID)))
	defer func() { span.End(err) }()

	report, err = s.deletionRepo.DeleteComment(ctx, commentID)
	recordCascade(report)
	return report, err
}

func (s *DeletionService) DeleteSection(ctx context.Context, sectionID uint) (report *models.DeleteReport, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "DeletionService", "DeleteSection", attribute.Int64("section.id", int64(sectionID)))
	defer func() { span.End(err) }()

	report, err = s.deletionRepo.DeleteSection(ctx, sectionID)
	recordCascade(report)
	return report, err
}

// AnonymizeUser irreversibly erases the user's personal data. Role
// memberships are dropped first, in the transaction that clears the
// profile when the role store can join it. Topics, comments and votes stay
// and are shown under the deleted-user name afterwards.
func (s *DeletionService) AnonymizeUser(ctx context.Context, userID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "DeletionService", "AnonymizeUser", attribute.Int64("user.id", int64(userID)))
	defer func() { span.End(err) }()

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	var dropRoles func(tx *gorm.DB) error
	if !profile.IsAnonymized() {
		name := *profile.UserName
		dropRoles = func(tx *gorm.DB) error {
			return removeAllRoles(ctx, s.rolesIn(tx), name)
		}
	}

	if err := s.profileRepo.Anonymize(ctx, userID, dropRoles); err != nil {
		return err
	}
	observability.Anonymizations.Inc()
	return nil
}

func (s *DeletionService) rolesIn(tx *gorm.DB) roles.Store {
	if b, ok := s.roleStore.(roles.TxBinder); ok && tx != nil {
		return b.WithTx(tx)
	}
	return s.roleStore
}

func removeAllRoles(ctx context.Context, store roles.Store, userName string) error {
	memberships, err := store.RolesOf(ctx, userName)
	if err != nil || len(memberships) == 0 {
		return err
	}
	return store.RemoveFromRoles(ctx, userName, memberships)
}

func recordCascade(report *models.DeleteReport) {
	if report == nil || !report.Found {
		return
	}
	counts := map[string]int64{
		"section": report.Sections,
		"topic":   report.Topics,
		"comment": report.Comments,
		"like":    report.Likes,
	}
	for entity, n := range counts {
		if n > 0 {
			observability.CascadeDeletedRows.WithLabelValues(entity).Add(float64(n))
		}
	}
}
