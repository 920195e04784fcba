package service

import (
	"context"
	"testing"

	"forumcore/internal/models"
	"forumcore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// topicRepoStub is a stub for repository.TopicRepository.
type topicRepoStub struct {
	createFn        func(context.Context, *models.Theme) error
	listByUserFn    func(context.Context, uint) ([]models.ShortTopicInfo, error)
	listRecentFn    func(context.Context, int) ([]models.TopicSummary, error)
	listBySectionFn func(context.Context, uint) ([]models.TopicSummary, error)
}

func (s *topicRepoStub) Create(ctx context.Context, topic *models.Theme) error {
	return s.createFn(ctx, topic)
}
func (s *topicRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.ShortTopicInfo, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *topicRepoStub) ListRecent(ctx context.Context, limit int) ([]models.TopicSummary, error) {
	return s.listRecentFn(ctx, limit)
}
func (s *topicRepoStub) ListBySection(ctx context.Context, sectionID uint) ([]models.TopicSummary, error) {
	return s.listBySectionFn(ctx, sectionID)
}

func noopTopicRepo() *topicRepoStub {
	return &topicRepoStub{
		createFn:        func(_ context.Context, _ *models.Theme) error { return nil },
		listByUserFn:    func(_ context.Context, _ uint) ([]models.ShortTopicInfo, error) { return nil, nil },
		listRecentFn:    func(_ context.Context, _ int) ([]models.TopicSummary, error) { return nil, nil },
		listBySectionFn: func(_ context.Context, _ uint) ([]models.TopicSummary, error) { return nil, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	listByTopicFn func(context.Context, uint, repository.CommentVisibility) ([]models.CommentView, error)
	listPendingFn func(context.Context) ([]models.PendingCommentView, error)
	admitFn       func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListByTopic(ctx context.Context, topicID uint, v repository.CommentVisibility) ([]models.CommentView, error) {
	return s.listByTopicFn(ctx, topicID, v)
}
func (s *commentRepoStub) ListPending(ctx context.Context) ([]models.PendingCommentView, error) {
	return s.listPendingFn(ctx)
}
func (s *commentRepoStub) Admit(ctx context.Context, id uint) error {
	return s.admitFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		listByTopicFn: func(_ context.Context, _ uint, _ repository.CommentVisibility) ([]models.CommentView, error) {
			return nil, nil
		},
		listPendingFn: func(_ context.Context) ([]models.PendingCommentView, error) { return nil, nil },
		admitFn:       func(_ context.Context, _ uint) error { return nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	createFn         func(context.Context, *models.UserProfile) error
	getByIDFn        func(context.Context, uint) (*models.UserProfile, error)
	savePrivacyFn    func(context.Context, uint, models.PrivacySettings) error
	ensurePropertyFn func(context.Context, uint) (bool, error)
	anonymizeFn      func(context.Context, uint, func(*gorm.DB) error) error
}

func (s *profileRepoStub) Create(ctx context.Context, p *models.UserProfile) error {
	return s.createFn(ctx, p)
}
func (s *profileRepoStub) GetByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	return s.getByIDFn(ctx, id)
}
func (s *profileRepoStub) SavePrivacy(ctx context.Context, userID uint, settings models.PrivacySettings) error {
	return s.savePrivacyFn(ctx, userID, settings)
}
func (s *profileRepoStub) EnsureProperty(ctx context.Context, userID uint) (bool, error) {
	return s.ensurePropertyFn(ctx, userID)
}
func (s *profileRepoStub) Anonymize(ctx context.Context, userID uint, beforeClear func(*gorm.DB) error) error {
	return s.anonymizeFn(ctx, userID, beforeClear)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		createFn: func(_ context.Context, _ *models.UserProfile) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.UserProfile, error) {
			return &models.UserProfile{ID: id}, nil
		},
		savePrivacyFn:    func(_ context.Context, _ uint, _ models.PrivacySettings) error { return nil },
		ensurePropertyFn: func(_ context.Context, _ uint) (bool, error) { return false, nil },
		anonymizeFn: func(_ context.Context, _ uint, beforeClear func(*gorm.DB) error) error {
			if beforeClear != nil {
				return beforeClear(nil)
			}
			return nil
		},
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	createFn   func(context.Context, *models.Like) error
	ratingOfFn func(context.Context, uint) (int64, error)
}

func (s *likeRepoStub) Create(ctx context.Context, like *models.Like) error {
	return s.createFn(ctx, like)
}
func (s *likeRepoStub) RatingOf(ctx context.Context, userID uint) (int64, error) {
	return s.ratingOfFn(ctx, userID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		createFn:   func(_ context.Context, _ *models.Like) error { return nil },
		ratingOfFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// roleStoreStub records calls made to roles.Store.
type roleStoreStub struct {
	rolesOfFn func(context.Context, string) ([]string, error)
	removeFn  func(context.Context, string, []string) error
}

func (s *roleStoreStub) RolesOf(ctx context.Context, userName string) ([]string, error) {
	return s.rolesOfFn(ctx, userName)
}
func (s *roleStoreStub) RemoveFromRoles(ctx context.Context, userName string, roles []string) error {
	return s.removeFn(ctx, userName, roles)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsValidation(err), "expected validation error, got %v", err)
}
