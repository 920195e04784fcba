package repository

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"forumcore/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Admit_ConditionalUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		mockBehavior func()
		check        func(error) bool
	}{
		{
			name: "pending comment is admitted",
			mockBehavior: func() {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "is_admitted"=$1 WHERE id = $2 AND is_admitted = $3`)).
					WithArgs(true, 5, false).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			check: func(err error) bool { return err == nil },
		},
		{
			name: "already admitted",
			mockBehavior: func() {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "is_admitted"=$1`)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","is_admitted" FROM "comments"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "is_admitted"}).AddRow(5, true))
				mock.ExpectRollback()
			},
			check: models.IsAlreadyAdmitted,
		},
		{
			name: "missing comment",
			mockBehavior: func() {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "is_admitted"=$1`)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id","is_admitted" FROM "comments"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "is_admitted"}))
				mock.ExpectRollback()
			},
			check: models.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			err := repo.Admit(ctx, 5)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentRepository_ListByTopic_Visibility(t *testing.T) {
	db := setupSQLiteDB(t)
	f := fixture{t, db}
	ctx := context.Background()
	repo := NewCommentRepository(db)

	alice := f.user("alice")
	bob := f.user("bob")
	ghost := f.user("")
	s := f.section("General")
	topic := f.topic(s.ID, alice.ID, "Welcome", 0)
	admitted := f.comment(topic.ID, bob.ID, true, 1)
	alicePending := f.comment(topic.ID, alice.ID, false, 2)
	bobPending := f.comment(topic.ID, bob.ID, false, 3)
	ghostAdmitted := f.comment(topic.ID, ghost.ID, true, 4)
	f.like(admitted.ID, alice.ID, 3)
	f.like(admitted.ID, alice.ID, -5)

	ids := func(views []models.CommentView) []uint {
		out := make([]uint, 0, len(views))
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}

	all, err := repo.ListByTopic(ctx, topic.ID, CommentVisibility{All: true})
	require.NoError(t, err)
	assert.Equal(t, []uint{admitted.ID, alicePending.ID, bobPending.ID, ghostAdmitted.ID}, ids(all))
	assert.Equal(t, int64(-2), all[0].VoteTotal)
	assert.Equal(t, int64(0), all[1].VoteTotal)
	assert.Equal(t, models.DeletedUserName, all[3].AuthorName)
	assert.False(t, all[1].IsAdmitted)

	anonymous, err := repo.ListByTopic(ctx, topic.ID, CommentVisibility{})
	require.NoError(t, err)
	assert.Equal(t, []uint{admitted.ID, ghostAdmitted.ID}, ids(anonymous))

	own, err := repo.ListByTopic(ctx, topic.ID, CommentVisibility{OwnerID: &alice.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{admitted.ID, alicePending.ID, ghostAdmitted.ID}, ids(own))
}

func TestCommentRepository_HasAvatar(t *testing.T) {
	db := setupSQLiteDB(t)
	f := fixture{t, db}
	ctx := context.Background()

	alice := f.user("alice")
	require.NoError(t, db.Model(alice).Update("image_data", []byte{0x89, 0x50}).Error)
	s := f.section("General")
	topic := f.topic(s.ID, alice.ID, "Welcome", 0)
	f.comment(topic.ID, alice.ID, true, 1)

	views, err := NewCommentRepository(db).ListByTopic(ctx, topic.ID, CommentVisibility{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].HasAvatar)
	assert.Equal(t, "alice", views[0].AuthorName)
}

func TestCommentRepository_ListPending(t *testing.T) {
	db := setupSQLiteDB(t)
	f := fixture{t, db}
	ctx := context.Background()
	repo := NewCommentRepository(db)

	alice := f.user("alice")
	s := f.section("General")
	topic := f.topic(s.ID, alice.ID, "Welcome", 0)
	older := f.comment(topic.ID, alice.ID, false, 1)
	f.comment(topic.ID, alice.ID, true, 2)
	newer := f.comment(topic.ID, alice.ID, false, 3)

	pending, err := repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, newer.ID, pending[0].CommentID)
	assert.Equal(t, older.ID, pending[1].CommentID)
	assert.Equal(t, "Welcome", pending[0].TopicTitle)
	assert.Equal(t, topic.ID, pending[0].TopicID)
	assert.Equal(t, "alice", pending[0].AuthorName)
}

func TestCommentRepository_ConcurrentAdmitSucceedsOnce(t *testing.T) {
	db := setupSQLiteDB(t)
	f := fixture{t, db}
	ctx := context.Background()
	repo := NewCommentRepository(db)

	alice := f.user("alice")
	s := f.section("General")
	topic := f.topic(s.ID, alice.ID, "Welcome", 0)
	c := f.comment(topic.ID, alice.ID, false, 1)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Admit(ctx, c.ID)
		}(i)
	}
	wg.Wait()

	successes, already := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case models.IsAlreadyAdmitted(err):
			already++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, already)
}

func TestCommentRepository_CreateChecksTopic(t *testing.T) {
	db := setupSQLiteDB(t)
	f := fixture{t, db}
	ctx := context.Background()
	repo := NewCommentRepository(db)
	alice := f.user("alice")

	err := repo.Create(ctx, &models.Comment{Text: "hi", ThemeID: 77, UserID: alice.ID})
	assert.True(t, models.IsNotFound(err))

	s := f.section("General")
	topic := f.topic(s.ID, alice.ID, "Welcome", 0)
	c := &models.Comment{Text: "hi", ThemeID: topic.ID, UserID: alice.ID}
	require.NoError(t, repo.Create(ctx, c))

	var stored models.Comment
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.False(t, stored.IsAdmitted)
}
