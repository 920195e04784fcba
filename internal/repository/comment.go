package repository

import (
	"context"
	"errors"
	"time"

	"forumcore/internal/models"
	"forumcore/internal/observability"

	"gorm.io/gorm"
)

// CommentVisibility selects which comments of a topic a listing returns.
type CommentVisibility struct {
	// All returns every comment regardless of admission.
	All bool
	// OwnerID additionally includes pending comments authored by this user.
	OwnerID *uint
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByTopic(ctx context.Context, topicID uint, visibility CommentVisibility) ([]models.CommentView, error)
	ListPending(ctx context.Context) ([]models.PendingCommentView, error)
	Admit(ctx context.Context, id uint) error
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

// Create inserts comment after checking its topic in the same transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Theme{}, comment.ThemeID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("Topic", comment.ThemeID)
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return classifyError(err)
	}
	r.log.LogMutation(ctx, "create", "id", comment.ID, "theme_id", comment.ThemeID)
	return nil
}

type commentViewRow struct {
	ID         uint
	Text       string
	CreatedAt  time.Time
	AuthorID   uint
	AuthorName *string
	VoteTotal  int64
	HasAvatar  bool
	IsAdmitted bool
}

// ListByTopic returns the topic's comments oldest first with their vote totals.
func (r *commentRepository) ListByTopic(
	ctx context.Context,
	topicID uint,
	visibility CommentVisibility,
) ([]models.CommentView, error) {
	query := readDB(r.db).WithContext(ctx).
		Table("comments AS c").
		Select(`c.id AS id, c.text AS text, c.created_at AS created_at,
			c.user_id AS author_id, u.user_name AS author_name,
			COALESCE(SUM(l.vote), 0) AS vote_total,
			u.image_data IS NOT NULL AS has_avatar,
			c.is_admitted AS is_admitted`).
		Joins("LEFT JOIN user_profiles u ON u.id = c.user_id").
		Joins("LEFT JOIN likes l ON l.comment_id = c.id").
		Where("c.theme_id = ?", topicID)

	switch {
	case visibility.All:
	case visibility.OwnerID != nil:
		query = query.Where("(c.is_admitted = ? OR c.user_id = ?)", true, *visibility.OwnerID)
	default:
		query = query.Where("c.is_admitted = ?", true)
	}

	var rows []commentViewRow
	err := query.
		Group("c.id, u.id").
		Order("c.created_at ASC, c.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, classifyError(err)
	}

	out := make([]models.CommentView, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CommentView{
			ID:         row.ID,
			Text:       row.Text,
			CreatedAt:  row.CreatedAt,
			AuthorName: models.DisplayName(row.AuthorName),
			AuthorID:   row.AuthorID,
			VoteTotal:  row.VoteTotal,
			HasAvatar:  row.HasAvatar,
			IsAdmitted: row.IsAdmitted,
		})
	}
	return out, nil
}

type pendingRow struct {
	CommentID  uint
	Text       string
	CreatedAt  time.Time
	TopicID    uint
	TopicTitle string
	AuthorID   uint
	AuthorName *string
}

// ListPending returns the moderation queue, newest first.
func (r *commentRepository) ListPending(ctx context.Context) ([]models.PendingCommentView, error) {
	var rows []pendingRow
	err := readDB(r.db).WithContext(ctx).
		Table("comments AS c").
		Select(`c.id AS comment_id, c.text AS text, c.created_at AS created_at,
			t.id AS topic_id, t.title AS topic_title,
			c.user_id AS author_id, u.user_name AS author_name`).
		Joins("JOIN themes t ON t.id = c.theme_id").
		Joins("LEFT JOIN user_profiles u ON u.id = c.user_id").
		Where("c.is_admitted = ?", false).
		Order("c.created_at DESC, c.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, classifyError(err)
	}

	out := make([]models.PendingCommentView, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.PendingCommentView{
			CommentID:  row.CommentID,
			Text:       row.Text,
			CreatedAt:  row.CreatedAt,
			TopicID:    row.TopicID,
			TopicTitle: row.TopicTitle,
			AuthorID:   row.AuthorID,
			AuthorName: models.DisplayName(row.AuthorName),
		})
	}
	return out, nil
}

// Admit flips is_admitted once. Of several concurrent callers exactly one
// sees the conditional update hit a row; the rest observe AlreadyAdmitted.
func (r *commentRepository) Admit(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Comment{}).
			Where("id = ? AND is_admitted = ?", id, false).
			Update("is_admitted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		var current models.Comment
		if err := tx.Select("id", "is_admitted").First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", id)
			}
			return err
		}
		return models.NewAlreadyAdmittedError(id)
	})
	if err != nil {
		if !models.IsAlreadyAdmitted(err) && !models.IsNotFound(err) {
			r.log.LogError(ctx, err, "admit")
		}
		return classifyError(err)
	}
	r.log.LogMutation(ctx, "admit", "id", id)
	return nil
}
