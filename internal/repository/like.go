package repository

import (
	"context"

	"forumcore/internal/models"
	"forumcore/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines interface for vote operations
type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) error
	RatingOf(ctx context.Context, userID uint) (int64, error)
}

type likeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, log: observability.NewRepoLogger("likes")}
}

// Create inserts like after checking its comment in the same transaction.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Comment{}, like.CommentID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("Comment", like.CommentID)
		}
		return tx.Create(like).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return classifyError(err)
	}
	r.log.LogMutation(ctx, "create", "id", like.ID, "comment_id", like.CommentID, "vote", like.Vote)
	return nil
}

// RatingOf sums every vote cast on comments authored by userID.
func (r *likeRepository) RatingOf(ctx context.Context, userID uint) (int64, error) {
	var rating int64
	err := readDB(r.db).WithContext(ctx).
		Table("likes AS l").
		Select("COALESCE(SUM(l.vote), 0)").
		Joins("JOIN comments c ON c.id = l.comment_id").
		Where("c.user_id = ?", userID).
		Scan(&rating).Error
	if err != nil {
		return 0, classifyError(err)
	}
	return rating, nil
}
