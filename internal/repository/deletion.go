package repository

import (
	"context"

	"forumcore/internal/models"
	"forumcore/internal/observability"

	"gorm.io/gorm"
)

// DeletionRepository removes content bottom-up: likes, then comments, then
// topics, then sections. Each call is one transaction. The schema declares
// RESTRICT foreign keys, so nothing here relies on the store cascading.
type DeletionRepository interface {
	DeleteTopic(ctx context.Context, id uint) (*models.DeleteReport, error)
	DeleteComment(ctx context.Context, id uint) (*models.DeleteReport, error)
	DeleteSection(ctx context.Context, id uint) (*models.DeleteReport, error)
}

type deletionRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewDeletionRepository creates a new DeletionRepository
func NewDeletionRepository(db *gorm.DB) DeletionRepository {
	return &deletionRepository{db: db, log: observability.NewRepoLogger("cascade")}
}

func (r *deletionRepository) DeleteComment(ctx context.Context, id uint) (*models.DeleteReport, error) {
	return r.run(ctx, "delete_comment", id, &models.Comment{}, func(tx *gorm.DB, report *models.DeleteReport) error {
		if err := deleteCount(tx.Where("comment_id = ?", id), &models.Like{}, &report.Likes); err != nil {
			return err
		}
		return deleteCount(tx.Where("id = ?", id), &models.Comment{}, &report.Comments)
	})
}

func (r *deletionRepository) DeleteTopic(ctx context.Context, id uint) (*models.DeleteReport, error) {
	return r.run(ctx, "delete_topic", id, &models.Theme{}, func(tx *gorm.DB, report *models.DeleteReport) error {
		topicIDs := tx.Model(&models.Theme{}).Select("id").Where("id = ?", id)
		return deleteTopics(tx, topicIDs, report)
	})
}

func (r *deletionRepository) DeleteSection(ctx context.Context, id uint) (*models.DeleteReport, error) {
	return r.run(ctx, "delete_section", id, &models.Section{}, func(tx *gorm.DB, report *models.DeleteReport) error {
		topicIDs := tx.Model(&models.Theme{}).Select("id").Where("section_id = ?", id)
		if err := deleteTopics(tx, topicIDs, report); err != nil {
			return err
		}
		return deleteCount(tx.Where("id = ?", id), &models.Section{}, &report.Sections)
	})
}

// run opens the transaction, skips absent roots and logs the outcome.
func (r *deletionRepository) run(
	ctx context.Context,
	operation string,
	id uint,
	root interface{},
	fanOut func(tx *gorm.DB, report *models.DeleteReport) error,
) (*models.DeleteReport, error) {
	report := &models.DeleteReport{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, root, id)
		if err != nil || !found {
			return err
		}
		report.Found = true
		return fanOut(tx, report)
	})
	if err != nil {
		r.log.LogError(ctx, err, operation)
		return nil, classifyError(err)
	}
	if report.Found {
		r.log.LogMutation(ctx, operation,
			"id", id,
			"sections", report.Sections,
			"topics", report.Topics,
			"comments", report.Comments,
			"likes", report.Likes,
		)
	}
	return report, nil
}

// deleteTopics removes every topic selected by topicIDs with its comments and likes.
func deleteTopics(tx *gorm.DB, topicIDs *gorm.DB, report *models.DeleteReport) error {
	commentIDs := tx.Model(&models.Comment{}).Select("id").Where("theme_id IN (?)", topicIDs)
	if err := deleteCount(tx.Where("comment_id IN (?)", commentIDs), &models.Like{}, &report.Likes); err != nil {
		return err
	}
	if err := deleteCount(tx.Where("theme_id IN (?)", topicIDs), &models.Comment{}, &report.Comments); err != nil {
		return err
	}
	return deleteCount(tx.Where("id IN (?)", topicIDs), &models.Theme{}, &report.Topics)
}

func deleteCount(scope *gorm.DB, model interface{}, counter *int64) error {
	res := scope.Delete(model)
	if res.Error != nil {
		return res.Error
	}
	*counter += res.RowsAffected
	return nil
}
