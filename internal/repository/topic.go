package repository

import (
	"context"
	"time"

	"forumcore/internal/models"
	"forumcore/internal/observability"

	"gorm.io/gorm"
)

// TopicRepository defines interface for topic operations
type TopicRepository interface {
	Create(ctx context.Context, topic *models.Theme) error
	ListByUser(ctx context.Context, userID uint) ([]models.ShortTopicInfo, error)
	ListRecent(ctx context.Context, limit int) ([]models.TopicSummary, error)
	ListBySection(ctx context.Context, sectionID uint) ([]models.TopicSummary, error)
}

type topicRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewTopicRepository creates a new TopicRepository
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db, log: observability.NewRepoLogger("themes")}
}

// Create inserts topic after checking its section in the same transaction.
func (r *topicRepository) Create(ctx context.Context, topic *models.Theme) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Section{}, topic.SectionID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewNotFoundError("Section", topic.SectionID)
		}
		return tx.Create(topic).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return classifyError(err)
	}
	r.log.LogMutation(ctx, "create", "id", topic.ID, "section_id", topic.SectionID)
	return nil
}

func (r *topicRepository) ListByUser(ctx context.Context, userID uint) ([]models.ShortTopicInfo, error) {
	var rows []models.ShortTopicInfo
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Theme{}).
		Select("id AS topic_id, title, created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, classifyError(err)
	}
	if rows == nil {
		rows = []models.ShortTopicInfo{}
	}
	return rows, nil
}

func (r *topicRepository) ListRecent(ctx context.Context, limit int) ([]models.TopicSummary, error) {
	return r.listSummaries(r.summaryQuery(ctx).Limit(limit))
}

func (r *topicRepository) ListBySection(ctx context.Context, sectionID uint) ([]models.TopicSummary, error) {
	return r.listSummaries(r.summaryQuery(ctx).Where("t.section_id = ?", sectionID))
}

type topicSummaryRow struct {
	TopicID              uint
	Title                string
	CreatedAt            time.Time
	AuthorID             uint
	AuthorName           *string
	AdmittedCommentCount int64
	PendingCommentCount  int64
}

func (r *topicRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return readDB(r.db).WithContext(ctx).
		Table("themes AS t").
		Select(`t.id AS topic_id, t.title AS title, t.created_at AS created_at,
			t.user_id AS author_id, u.user_name AS author_name,
			` + admittedCount + ` AS admitted_comment_count,
			` + pendingCount + ` AS pending_comment_count`).
		Joins("LEFT JOIN user_profiles u ON u.id = t.user_id").
		Joins("LEFT JOIN comments c ON c.theme_id = t.id").
		Group("t.id, u.id").
		Order("t.created_at DESC, t.id DESC")
}

func (r *topicRepository) listSummaries(query *gorm.DB) ([]models.TopicSummary, error) {
	var rows []topicSummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, classifyError(err)
	}

	out := make([]models.TopicSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.TopicSummary{
			AuthorID:             row.AuthorID,
			AuthorName:           models.DisplayName(row.AuthorName),
			TopicID:              row.TopicID,
			Title:                row.Title,
			CreatedAt:            row.CreatedAt,
			AdmittedCommentCount: row.AdmittedCommentCount,
			PendingCommentCount:  row.PendingCommentCount,
		})
	}
	return out, nil
}
