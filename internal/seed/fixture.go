package seed

import (
	"context"
	"fmt"
	"errors"
	"io"
	"os"
	"time"

	"forumcore/internal/models"
	"forumcore/internal/repository"
	"forumcore/internal/service"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written forum tree.
//
//	users:
//	  - name: alice
//	    email: alice@example.com
//	    roles: [moderator]
//	sections:
//	  - title: General
//	    topics:
//	      - title: Welcome
//	        author: alice
//	        comments:
//	          - author: alice
//	            text: Hello
//	            admitted: true
//	            votes:
//	              - voter: alice
//	                vote: 1
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Sections []FixtureSection `yaml:"sections"`
}

type FixtureUser struct {
	Name   string   `yaml:"name"`
	Email  string   `yaml:"email"`
	Mobile string   `yaml:"mobile"`
	Roles  []string `yaml:"roles"`
}

type FixtureSection struct {
	Title  string         `yaml:"title"`
	Topics []FixtureTopic `yaml:"topics"`
}

type FixtureTopic struct {
	Title    string           `yaml:"title"`
	Author   string           `yaml:"author"`
	Comments []FixtureComment `yaml:"comments"`
}

type FixtureComment struct {
	Author   string        `yaml:"author"`
	Text     string        `yaml:"text"`
	Admitted bool          `yaml:"admitted"`
	Votes    []FixtureVote `yaml:"votes"`
}

type FixtureVote struct {
	Voter string `yaml:"voter"`
	Vote  int    `yaml:"vote"`
}

// RoleGranter assigns roles to fixture users.
type RoleGranter interface {
	AddToRoles(ctx context.Context, userName string, roles []string) error
}

// Loader writes fixtures through the services.
type Loader struct {
	content    *service.ContentService
	moderation *service.ModerationService
	profiles   repository.ProfileRepository
	roles      RoleGranter
	clock      func() time.Time
}

func NewLoader(
	content *service.ContentService,
	moderation *service.ModerationService,
	profiles repository.ProfileRepository,
	roles RoleGranter,
) *Loader {
	return &Loader{
		content:    content,
		moderation: moderation,
		profiles:   profiles,
		roles:      roles,
		clock:      time.Now,
	}
}

// ParseFixture decodes a fixture, rejecting unknown keys.
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, models.NewValidationError(fmt.Sprintf("invalid fixture: %v", err))
	}
	return &fx, nil
}

// LoadFile parses and loads the fixture stored at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	fx, err := ParseFixture(f)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, fx)
}

// Load inserts fx. Users are created first; every author and voter must be
// one of them.
func (l *Loader) Load(ctx context.Context, fx *Fixture) (*Summary, error) {
	summary := &Summary{}
	ids := make(map[string]uint, len(fx.Users))

	for _, u := range fx.Users {
		if u.Name == "" {
			return summary, models.NewValidationError("fixture user without a name")
		}
		profile := &models.UserProfile{
			UserName:         &u.Name,
			Email:            optional(u.Email),
			Mobile:           optional(u.Mobile),
			RegistrationDate: l.clock().UTC(),
		}
		if err := l.profiles.Create(ctx, profile); err != nil {
			return summary, fmt.Errorf("create user %q: %w", u.Name, err)
		}
		ids[u.Name] = profile.ID
		summary.Users++

		if len(u.Roles) > 0 && l.roles != nil {
			if err := l.roles.AddToRoles(ctx, u.Name, u.Roles); err != nil {
				return summary, err
			}
		}
	}

	lookup := func(name string) (uint, error) {
		id, ok := ids[name]
		if !ok {
			return 0, models.NewValidationError(fmt.Sprintf("fixture references unknown user %q", name))
		}
		return id, nil
	}

	for _, fs := range fx.Sections {
		section, err := l.content.AddSection(ctx, service.CreateSectionInput{Title: fs.Title})
		if err != nil {
			return summary, fmt.Errorf("section %q: %w", fs.Title, err)
		}
		summary.Sections++

		for _, ft := range fs.Topics {
			authorID, err := lookup(ft.Author)
			if err != nil {
				return summary, err
			}
			topic, err := l.content.AddTopic(ctx, service.CreateTopicInput{
				SectionID: section.ID,
				UserID:    authorID,
				Title:     ft.Title,
			})
			if err != nil {
				return summary, fmt.Errorf("topic %q: %w", ft.Title, err)
			}
			summary.Topics++

			for _, fc := range ft.Comments {
				if err := l.loadComment(ctx, topic.ID, fc, lookup, summary); err != nil {
					return summary, err
				}
			}
		}
	}
	return summary, nil
}

func (l *Loader) loadComment(
	ctx context.Context,
	topicID uint,
	fc FixtureComment,
	lookup func(string) (uint, error),
	summary *Summary,
) error {
	authorID, err := lookup(fc.Author)
	if err != nil {
		return err
	}
	comment, err := l.content.AddComment(ctx, service.CreateCommentInput{
		TopicID: topicID,
		UserID:  authorID,
		Text:    fc.Text,
	})
	if err != nil {
		return fmt.Errorf("comment by %q: %w", fc.Author, err)
	}
	summary.Comments++

	if fc.Admitted {
		if err := l.moderation.Admit(ctx, comment.ID); err != nil {
			return err
		}
		summary.Admitted++
	}

	for _, fv := range fc.Votes {
		voterID, err := lookup(fv.Voter)
		if err != nil {
			return err
		}
		if _, err := l.content.CastVote(ctx, service.CastVoteInput{
			CommentID: comment.ID,
			UserID:    voterID,
			Vote:      fv.Vote,
		}); err != nil {
			return fmt.Errorf("vote by %q: %w", fv.Voter, err)
		}
		summary.Votes++
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
