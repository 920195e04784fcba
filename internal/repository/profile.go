package repository

import (
	"context"
	"errors"

	"forumcore/internal/models"
	"forumcore/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines interface for user profile and privacy operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.UserProfile) error
	GetByID(ctx context.Context, id uint) (*models.UserProfile, error)
	SavePrivacy(ctx context.Context, userID uint, settings models.PrivacySettings) error
	EnsureProperty(ctx context.Context, userID uint) (bool, error)
	Anonymize(ctx context.Context, userID uint, beforeClear func(tx *gorm.DB) error) error
}

type profileRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, log: observability.NewRepoLogger("user_profiles")}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return classifyError(err)
	}
	r.log.LogMutation(ctx, "create", "id", profile.ID)
	return nil
}

// GetByID loads the profile with its privacy row. Property is nil when no row exists.
func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Preload("Property").First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, classifyError(err)
	}
	return &profile, nil
}

// SavePrivacy upserts the privacy row and writes mobile onto the profile.
func (r *profileRepository) SavePrivacy(ctx context.Context, userID uint, settings models.PrivacySettings) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mobile *string
		if settings.Mobile != "" {
			mobile = &settings.Mobile
		}
		res := tx.Model(&models.UserProfile{}).Where("id = ?", userID).Update("mobile", mobile)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", userID)
		}

		property := models.UserProperty{
			UserID:     userID,
			ShowEmail:  settings.ShowEmail,
			ShowMobile: settings.ShowMobile,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"show_email", "show_mobile"}),
		}).Create(&property).Error
	})
	if err != nil {
		if !models.IsNotFound(err) {
			r.log.LogError(ctx, err, "save_privacy")
		}
		return classifyError(err)
	}
	r.log.LogMutation(ctx, "save_privacy", "user_id", userID)
	return nil
}

// EnsureProperty creates a hidden-by-default privacy row when none exists.
// It reports false when the row already existed or the profile is missing.
func (r *profileRepository) EnsureProperty(ctx context.Context, userID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.UserProfile{}, userID)
		if err != nil || !ok {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.UserProperty{UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "ensure_property")
		return false, classifyError(err)
	}
	if created {
		r.log.LogMutation(ctx, "ensure_property", "user_id", userID)
	}
	return created, nil
}

// Anonymize erases the profile's personal fields. Authored content keeps its
// user_id. beforeClear, when set, runs first in the same transaction; an
// error from it leaves the profile untouched.
func (r *profileRepository) Anonymize(ctx context.Context, userID uint, beforeClear func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if beforeClear != nil {
			if err := beforeClear(tx); err != nil {
				return err
			}
		}
		res := tx.Model(&models.UserProfile{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"user_name":       nil,
			"email":           nil,
			"mobile":          nil,
			"image_data":      nil,
			"image_mime_type": nil,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", userID)
		}
		return nil
	})
	if err != nil {
		if !models.IsNotFound(err) {
			r.log.LogError(ctx, err, "anonymize")
		}
		return classifyError(err)
	}
	r.log.LogMutation(ctx, "anonymize", "user_id", userID)
	return nil
}
