package repository

import (
	"context"

	"forumcore/internal/models"
	"forumcore/internal/observability"

	"gorm.io/gorm"
)

// SectionRepository defines interface for section operations
type SectionRepository interface {
	Create(ctx context.Context, section *models.Section) error
	ListSummaries(ctx context.Context) ([]models.SectionSummary, error)
}

type sectionRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewSectionRepository creates a new SectionRepository
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db, log: observability.NewRepoLogger("sections")}
}

func (r *sectionRepository) Create(ctx context.Context, section *models.Section) error {
	if err := r.db.WithContext(ctx).Create(section).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return classifyError(err)
	}
	r.log.LogMutation(ctx, "create", "id", section.ID)
	return nil
}

// ListSummaries returns every section, including empty ones, ordered by title.
func (r *sectionRepository) ListSummaries(ctx context.Context) ([]models.SectionSummary, error) {
	var rows []models.SectionSummary
	err := readDB(r.db).WithContext(ctx).
		Table("sections AS s").
		Select(`s.id AS section_id, s.title AS title,
			COUNT(DISTINCT t.id) AS topic_count,
			` + admittedCount + ` AS admitted_comment_count,
			` + pendingCount + ` AS pending_comment_count`).
		Joins("LEFT JOIN themes t ON t.section_id = s.id").
		Joins("LEFT JOIN comments c ON c.theme_id = t.id").
		Group("s.id").
		Order("s.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, classifyError(err)
	}
	if rows == nil {
		rows = []models.SectionSummary{}
	}
	return rows, nil
}

// Rows produced only by a LEFT JOIN carry NULL ids and are ignored by COUNT(DISTINCT).
const (
	admittedCount = "COUNT(DISTINCT CASE WHEN c.is_admitted THEN c.id END)"
	pendingCount  = "COUNT(DISTINCT CASE WHEN NOT c.is_admitted THEN c.id END)"
)

func exists(db *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, classifyError(err)
	}
	return count > 0, nil
}
