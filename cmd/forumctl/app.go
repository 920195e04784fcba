package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"forumcore/internal/config"
	"forumcore/internal/database"
	"forumcore/internal/models"
	"forumcore/internal/repository"
	"forumcore/internal/roles"
	"forumcore/internal/seed"
	"forumcore/internal/service"

	"gorm.io/gorm"
)

var errUsage = errors.New("invalid arguments")

type app struct {
	db          *gorm.DB
	cfg         *config.Config
	out         io.Writer
	profiles    repository.ProfileRepository
	roles       *roles.GormStore
	aggregation *service.AggregationService
	moderation  *service.ModerationService
	privacy     *service.PrivacyService
	deletion    *service.DeletionService
	content     *service.ContentService
}

func newApp(db *gorm.DB, cfg *config.Config, out io.Writer) *app {
	sections := repository.NewSectionRepository(db)
	topics := repository.NewTopicRepository(db)
	comments := repository.NewCommentRepository(db)
	likes := repository.NewLikeRepository(db)
	profiles := repository.NewProfileRepository(db)
	roleStore := roles.NewGormStore(db)

	return &app{
		db:          db,
		cfg:         cfg,
		out:         out,
		profiles:    profiles,
		roles:       roleStore,
		aggregation: service.NewAggregationService(topics, sections, cfg.RecentTopicsLimit),
		moderation:  service.NewModerationService(comments),
		privacy:     service.NewPrivacyService(profiles, likes),
		deletion:    service.NewDeletionService(repository.NewDeletionRepository(db), profiles, roleStore),
		content:     service.NewContentService(sections, topics, comments, likes),
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := args[0], args[1:]

	switch command {
	case "migrate":
		return a.migrate(ctx, rest)
	case "seed":
		return a.seed(ctx, rest)
	case "load":
		if len(rest) != 1 {
			return errUsage
		}
		summary, err := seed.NewLoader(a.content, a.moderation, a.profiles, a.roles).LoadFile(ctx, rest[0])
		if err != nil {
			return err
		}
		a.printSummary(summary)
		return nil
	case "sections":
		return a.sections(ctx)
	case "recent":
		limit := 0
		if len(rest) > 0 {
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("limit: %w", errUsage)
			}
			limit = n
		}
		topics, err := a.aggregation.ListRecentTopics(ctx, limit, nil)
		if err != nil {
			return err
		}
		a.printTopics(topics)
		return nil
	case "topics":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		topics, err := a.aggregation.ListTopicsOfSection(ctx, id, nil)
		if err != nil {
			return err
		}
		a.printTopics(topics)
		return nil
	case "user-topics":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		return a.userTopics(ctx, id)
	case "comments":
		return a.comments(ctx, rest)
	case "pending":
		return a.pending(ctx)
	case "admit":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		if err := a.moderation.Admit(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Comment %d admitted\n", id)
		return nil
	case "profile":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		own := false
		if len(rest) > 1 {
			if rest[1] != "own" {
				return fmt.Errorf("profile view %q: %w", rest[1], errUsage)
			}
			own = true
		}
		return a.profile(ctx, id, own)
	case "privacy":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		settings, err := a.privacy.GetPrivacySettings(ctx, id)
		if err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintf(w, "show_email\t%t\n", settings.ShowEmail)
		fmt.Fprintf(w, "show_mobile\t%t\n", settings.ShowMobile)
		fmt.Fprintf(w, "mobile\t%s\n", settings.Mobile)
		return w.Flush()
	case "delete-topic":
		return a.delete(ctx, rest, a.deletion.DeleteTopic)
	case "delete-comment":
		return a.delete(ctx, rest, a.deletion.DeleteComment)
	case "delete-section":
		return a.delete(ctx, rest, a.deletion.DeleteSection)
	case "anonymize":
		id, err := idArg(rest)
		if err != nil {
			return err
		}
		if err := a.deletion.AnonymizeUser(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "User %d anonymized\n", id)
		return nil
	default:
		return fmt.Errorf("unknown command %q: %w", command, errUsage)
	}
}

func (a *app) migrate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if err := database.ApplySchema(ctx, a.db, a.cfg); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Schema is up to date")
		return nil
	}
	if args[0] != "down" || len(args) != 2 {
		return errUsage
	}
	version, err := strconv.Atoi(args[1])
	if err != nil || version <= 0 {
		return fmt.Errorf("version %q: %w", args[1], errUsage)
	}
	migrations, err := database.GetMigrations()
	if err != nil {
		return err
	}
	if err := database.RollbackMigration(ctx, a.db, migrations, version); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Migration %06d rolled back\n", version)
	return nil
}

func idArg(args []string) (uint, error) {
	if len(args) < 1 {
		return 0, errUsage
	}
	return parseID(args[0])
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("id %q: %w", s, errUsage)
	}
	return uint(n), nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *app) seed(ctx context.Context, args []string) error {
	opts := seed.DefaultOptions()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("users: %w", errUsage)
		}
		opts.Users = n
	}
	summary, err := seed.NewFactory(a.content, a.moderation, a.profiles, opts.Seed).Generate(ctx, opts)
	if err != nil {
		return err
	}
	a.printSummary(summary)
	return nil
}

func (a *app) printSummary(s *seed.Summary) {
	fmt.Fprintf(a.out, "Created %d users, %d sections, %d topics, %d comments (%d admitted), %d votes\n",
		s.Users, s.Sections, s.Topics, s.Comments, s.Admitted, s.Votes)
}

func (a *app) sections(ctx context.Context) error {
	sections, err := a.aggregation.ListSections(ctx, nil)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tTITLE\tTOPICS\tADMITTED\tPENDING")
	for _, s := range sections {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n", s.SectionID, s.Title, s.TopicCount, s.AdmittedCommentCount, s.PendingCommentCount)
	}
	return w.Flush()
}

func (a *app) printTopics(topics []models.TopicSummary) {
	w := a.table()
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCREATED\tADMITTED\tPENDING")
	for _, t := range topics {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\n",
			t.TopicID, t.Title, t.AuthorName, t.CreatedAt.Format(time.RFC3339), t.AdmittedCommentCount, t.PendingCommentCount)
	}
	_ = w.Flush()
}

func (a *app) userTopics(ctx context.Context, userID uint) error {
	topics, err := a.aggregation.ListTopicsOfUser(ctx, userID)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tTITLE\tCREATED")
	for _, t := range topics {
		fmt.Fprintf(w, "%d\t%s\t%s\n", t.TopicID, t.Title, t.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

// comments lists as an anonymous viewer by default, as a given user, or with
// full access when the second argument is "all".
func (a *app) comments(ctx context.Context, args []string) error {
	topicID, err := idArg(args)
	if err != nil {
		return err
	}

	fullAccess := false
	var viewerID *uint
	if len(args) > 1 {
		if args[1] == "all" {
			fullAccess = true
		} else {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			viewerID = &id
		}
	}

	comments, err := a.moderation.ListComments(ctx, topicID, fullAccess, viewerID)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tAUTHOR\tVOTES\tADMITTED\tTEXT")
	for _, c := range comments {
		fmt.Fprintf(w, "%d\t%s\t%d\t%t\t%s\n", c.ID, c.AuthorName, c.VoteTotal, c.IsAdmitted, truncate(c.Text, 60))
	}
	return w.Flush()
}

func (a *app) pending(ctx context.Context) error {
	pending, err := a.moderation.ListPending(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tTOPIC\tAUTHOR\tCREATED\tTEXT")
	for _, p := range pending {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.CommentID, p.TopicTitle, p.AuthorName, p.CreatedAt.Format(time.RFC3339), truncate(p.Text, 60))
	}
	return w.Flush()
}

// profile prints the public summary. The owner's view also creates the
// hidden-by-default privacy row on first visit.
func (a *app) profile(ctx context.Context, userID uint, own bool) error {
	get := a.privacy.GetProfileSummary
	if own {
		get = a.privacy.GetOwnProfile
	}
	p, err := get(ctx, userID)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintf(w, "id\t%d\n", p.UserID)
	fmt.Fprintf(w, "name\t%s\n", p.DisplayName)
	fmt.Fprintf(w, "rating\t%d\n", p.Rating)
	fmt.Fprintf(w, "email\t%s\n", p.MaskedEmail)
	fmt.Fprintf(w, "mobile\t%s\n", p.MaskedMobile)
	fmt.Fprintf(w, "avatar\t%t\n", p.HasAvatar)
	fmt.Fprintf(w, "registered\t%s\n", p.RegisteredAt.Format(time.RFC3339))
	return w.Flush()
}

func (a *app) delete(
	ctx context.Context,
	args []string,
	fn func(context.Context, uint) (*models.DeleteReport, error),
) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	report, err := fn(ctx, id)
	if err != nil {
		return err
	}
	if !report.Found {
		fmt.Fprintf(a.out, "Nothing to delete for ID %d\n", id)
		return nil
	}
	fmt.Fprintf(a.out, "Deleted %d sections, %d topics, %d comments, %d likes\n",
		report.Sections, report.Topics, report.Comments, report.Likes)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
