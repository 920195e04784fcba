package service

import (
	"context"

	"forumcore/internal/models"
	"forumcore/internal/observability"
	"forumcore/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PrivacyService projects profiles through their owners' privacy flags.
type PrivacyService struct {
	profileRepo repository.ProfileRepository
	likeRepo    repository.LikeRepository
}

func NewPrivacyService(profileRepo repository.ProfileRepository, likeRepo repository.LikeRepository) *PrivacyService {
	return &PrivacyService{profileRepo: profileRepo, likeRepo: likeRepo}
}

// GetPrivacySettings reports both flags as false when no privacy row exists.
func (s *PrivacyService) GetPrivacySettings(ctx context.Context, userID uint) (out *models.PrivacySettings, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PrivacyService", "GetPrivacySettings", attribute.Int64("user.id", int64(userID)))
	defer func() { span.End(err) }()

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings := &models.PrivacySettings{Mobile: valueOf(profile.Mobile)}
	if profile.Property != nil {
		settings.ShowEmail = profile.Property.ShowEmail
		settings.ShowMobile = profile.Property.ShowMobile
	}
	return settings, nil
}

func (s *PrivacyService) SetPrivacySettings(ctx context.Context, userID uint, in models.PrivacySettingsInput) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PrivacyService", "SetPrivacySettings", attribute.Int64("user.id", int64(userID)))
	defer func() { span.End(err) }()

	if err := validateInput(in); err != nil {
		return err
	}

	return s.profileRepo.SavePrivacy(ctx, userID, models.PrivacySettings{
		ShowEmail:  *in.ShowEmail,
		ShowMobile: *in.ShowMobile,
		Mobile:     in.Mobile,
	})
}

// EnsureDefaultPrivacy creates a hidden-by-default privacy row. It returns
// false when one already existed or the profile does not exist.
func (s *PrivacyService) EnsureDefaultPrivacy(ctx context.Context, userID uint) (created bool, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PrivacyService", "EnsureDefaultPrivacy", attribute.Int64("user.id", int64(userID)))
	defer func() { span.End(err) }()

	return s.profileRepo.EnsureProperty(ctx, userID)
}

// GetProfileSummary recomputes the rating on every call.
func (s *PrivacyService) GetProfileSummary(ctx context.Context, userID uint) (out *models.ProfileSummary, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PrivacyService", "GetProfileSummary", attribute.Int64("user.id", int64(userID)))
	defer func() { span.End(err) }()

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rating, err := s.likeRepo.RatingOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	var showEmail, showMobile bool
	if profile.Property != nil {
		showEmail = profile.Property.ShowEmail
		showMobile = profile.Property.ShowMobile
	}

	return &models.ProfileSummary{
		UserID:       profile.ID,
		DisplayName:  models.DisplayName(profile.UserName),
		Rating:       rating,
		MaskedEmail:  mask(showEmail, valueOf(profile.Email)),
		MaskedMobile: mask(showMobile, valueOf(profile.Mobile)),
		HasAvatar:    profile.HasAvatar(),
		RegisteredAt: profile.RegistrationDate,
	}, nil
}

// GetOwnProfile is the owner's view of their profile. Opening it creates the
// default privacy row on first visit.
func (s *PrivacyService) GetOwnProfile(ctx context.Context, userID uint) (*models.ProfileSummary, error) {
	if _, err := s.EnsureDefaultPrivacy(ctx, userID); err != nil {
		return nil, err
	}
	return s.GetProfileSummary(ctx, userID)
}

func mask(show bool, value string) string {
	switch {
	case !show:
		return models.HiddenByUserPlaceholder
	case value == "":
		return models.NotProvidedPlaceholder
	default:
		return value
	}
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
