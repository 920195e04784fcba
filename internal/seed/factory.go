// Package seed fills a forum database with demo data, either generated at
// random or loaded from a YAML fixture. Everything is written through the
// services, so validation and existence checks apply to seeded content too.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"forumcore/internal/models"
	"forumcore/internal/observability"
	"forumcore/internal/repository"
	"forumcore/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Options sizes a generated forum.
type Options struct {
	Users            int
	Sections         int
	TopicsPerSection int
	CommentsPerTopic int
	MaxVotesPerItem  int
	// AdmitRatio is the share of generated comments that get admitted.
	AdmitRatio float64
	// Seed makes generation reproducible. Zero picks a fixed default.
	Seed int64
}

// DefaultOptions returns a small forum suitable for local development.
func DefaultOptions() Options {
	return Options{
		Users:            10,
		Sections:         4,
		TopicsPerSection: 5,
		CommentsPerTopic: 6,
		MaxVotesPerItem:  4,
		AdmitRatio:       0.7,
		Seed:             42,
	}
}

var registrationEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Sections int
	Topics   int
	Comments int
	Admitted int
	Votes    int
}

// Factory builds domain entities and persists them through the services.
type Factory struct {
	content    *service.ContentService
	moderation *service.ModerationService
	profiles   repository.ProfileRepository
	faker      *gofakeit.Faker
	rng        *rand.Rand
}

// NewFactory creates a Factory whose output is fully determined by seed.
func NewFactory(
	content *service.ContentService,
	moderation *service.ModerationService,
	profiles repository.ProfileRepository,
	seed int64,
) *Factory {
	if seed == 0 {
		seed = 42
	}
	return &Factory{
		content:    content,
		moderation: moderation,
		profiles:   profiles,
		faker:      gofakeit.New(seed),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// CreateUser persists a profile with a fake name, email and phone number.
// The index keeps user names unique within one run.
func (f *Factory) CreateUser(ctx context.Context, index int) (*models.UserProfile, error) {
	name := fmt.Sprintf("%s%d", f.faker.Username(), index)
	email := f.faker.Email()
	mobile := f.faker.Phone()
	profile := &models.UserProfile{
		UserName:         &name,
		Email:            &email,
		Mobile:           &mobile,
		RegistrationDate: f.faker.DateRange(registrationEpoch, registrationEpoch.AddDate(2, 0, 0)).UTC(),
	}
	if err := f.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Generate creates a random forum sized by opts.
func (f *Factory) Generate(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users <= 0 {
		return nil, models.NewValidationError("at least one user is required")
	}

	summary := &Summary{}
	users := make([]*models.UserProfile, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser(ctx, i)
		if err != nil {
			return summary, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, u)
		summary.Users++
	}

	for s := 0; s < opts.Sections; s++ {
		section, err := f.content.AddSection(ctx, service.CreateSectionInput{
			Title: fmt.Sprintf("%s %d", f.faker.BuzzWord(), s+1),
		})
		if err != nil {
			return summary, fmt.Errorf("create section %d: %w", s, err)
		}
		summary.Sections++

		for t := 0; t < opts.TopicsPerSection; t++ {
			if err := f.generateTopic(ctx, section.ID, users, opts, summary); err != nil {
				return summary, err
			}
		}
	}

	observability.Logger.InfoContext(ctx, "Seeded forum",
		slog.Int("users", summary.Users),
		slog.Int("sections", summary.Sections),
		slog.Int("topics", summary.Topics),
		slog.Int("comments", summary.Comments),
		slog.Int("votes", summary.Votes),
	)
	return summary, nil
}

func (f *Factory) generateTopic(
	ctx context.Context,
	sectionID uint,
	users []*models.UserProfile,
	opts Options,
	summary *Summary,
) error {
	topic, err := f.content.AddTopic(ctx, service.CreateTopicInput{
		SectionID: sectionID,
		UserID:    f.pick(users).ID,
		Title:     f.faker.Sentence(5),
	})
	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	summary.Topics++

	for c := 0; c < opts.CommentsPerTopic; c++ {
		comment, err := f.content.AddComment(ctx, service.CreateCommentInput{
			TopicID: topic.ID,
			UserID:  f.pick(users).ID,
			Text:    f.faker.Paragraph(1, 3, 12, " "),
		})
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		summary.Comments++

		if f.rng.Float64() < opts.AdmitRatio {
			if err := f.moderation.Admit(ctx, comment.ID); err != nil {
				return fmt.Errorf("admit comment %d: %w", comment.ID, err)
			}
			summary.Admitted++
		}

		votes := 0
		if opts.MaxVotesPerItem > 0 {
			votes = f.rng.Intn(opts.MaxVotesPerItem + 1)
		}
		for v := 0; v < votes; v++ {
			value := f.rng.Intn(3) + 1
			if f.faker.Bool() {
				value = -value
			}
			if _, err := f.content.CastVote(ctx, service.CastVoteInput{
				CommentID: comment.ID,
				UserID:    f.pick(users).ID,
				Vote:      value,
			}); err != nil {
				return fmt.Errorf("vote on comment %d: %w", comment.ID, err)
			}
			summary.Votes++
		}
	}
	return nil
}

func (f *Factory) pick(users []*models.UserProfile) *models.UserProfile {
	return users[f.rng.Intn(len(users))]
}
