package service

import (
	"context"

	"forumcore/internal/models"
	"forumcore/internal/observability"
	"forumcore/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const defaultRecentTopicsLimit = 10

// AggregationService builds the counted topic and section listings.
// Viewer ids are accepted for symmetry with comment listings and do not
// change any count.
type AggregationService struct {
	topicRepo    repository.TopicRepository
	sectionRepo  repository.SectionRepository
	defaultLimit int
}

func NewAggregationService(
	topicRepo repository.TopicRepository,
	sectionRepo repository.SectionRepository,
	defaultLimit int,
) *AggregationService {
	if defaultLimit <= 0 {
		defaultLimit = defaultRecentTopicsLimit
	}
	return &AggregationService{
		topicRepo:    topicRepo,
		sectionRepo:  sectionRepo,
		defaultLimit: defaultLimit,
	}
}

func (s *AggregationService) ListTopicsOfUser(ctx context.Context, userID uint) (out []models.ShortTopicInfo, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AggregationService", "ListTopicsOfUser", attribute.Int64("user.id", int64(userID)))
	defer func() { span.End(err) }()

	return s.topicRepo.ListByUser(ctx, userID)
}

// ListRecentTopics returns at most limit topics, newest first. A non-positive
// limit uses the configured default; any positive limit is honored as given.
func (s *AggregationService) ListRecentTopics(ctx context.Context, limit int, viewerID *uint) (out []models.TopicSummary, err error) {
	limit = s.effectiveLimit(limit)
	ctx, span := observability.StartServiceSpan(ctx, "AggregationService", "ListRecentTopics", attribute.Int("limit", limit))
	defer func() { span.End(err) }()

	return s.topicRepo.ListRecent(ctx, limit)
}

func (s *AggregationService) ListSections(ctx context.Context, viewerID *uint) (out []models.SectionSummary, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AggregationService", "ListSections")
	defer func() { span.End(err) }()

	return s.sectionRepo.ListSummaries(ctx)
}

// ListTopicsOfSection yields an empty list for an unknown section.
func (s *AggregationService) ListTopicsOfSection(ctx context.Context, sectionID uint, viewerID *uint) (out []models.TopicSummary, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "AggregationService", "ListTopicsOfSection", attribute.Int64("section.id", int64(sectionID)))
	defer func() { span.End(err) }()

	return s.topicRepo.ListBySection(ctx, sectionID)
}

func (s *AggregationService) effectiveLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return limit
}
