package service

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sigmadevelopers/portfolio/internal/models"
	"github.com/sigmadevelopers/portfolio/internal/repository"
)

func newCommentService(t *testing.T) (*CommentService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := NewCommentService(
		repository.NewCommentRepository(mock),
		repository.NewBlogRepository(mock),
		zerolog.Nop(),
	)
	return svc, mock
}

func commentRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "blog_id", "author_name", "author_email", "body",
		"user_id", "parent_comment_id", "likes", "created_at",
	})
}

func blogRow(id string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "title", "slug", "content", "category_id", "image_url",
		"share_count", "view_count", "created_at", "updated_at",
	}).AddRow(id, "A Post", "a-post", "body", nil, nil, int64(0), int64(0), now, now)
}

func ptr(s string) *string { return &s }

func TestListThread_AssemblesTwoLevels(t *testing.T) {
	svc, mock := newCommentService(t)
	now := time.Now()

	// repository order: newest first
	mock.ExpectQuery(`SELECT .* FROM comments\s+WHERE blog_id = \$1`).
		WithArgs("b1").
		WillReturnRows(commentRows().
			AddRow("r2", "b1", "Eve", "e@x.com", "newer reply", nil, ptr("c1"), []string{}, now).
			AddRow("c2", "b1", "Dan", "d@x.com", "second post", nil, nil, []string{}, now.Add(-time.Minute)).
			AddRow("r1", "b1", "Eve", "e@x.com", "older reply", ptr("u2"), ptr("c1"), []string{"u1"}, now.Add(-2*time.Minute)).
			AddRow("c1", "b1", "Bob", "b@x.com", "first post", ptr("u1"), nil, []string{}, now.Add(-3*time.Minute)))

	threads, err := svc.ListThread(context.Background(), "b1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, threads, 2)
	require.Equal(t, "c2", threads[0].Comment.ID)
	require.Equal(t, "c1", threads[1].Comment.ID)
	require.Empty(t, threads[0].Replies)
	// replies flipped to oldest first
	require.Len(t, threads[1].Replies, 2)
	require.Equal(t, "r1", threads[1].Replies[0].ID)
	require.Equal(t, "r2", threads[1].Replies[1].ID)
}

func TestListThread_SkipsOrphanedReplies(t *testing.T) {
	svc, mock := newCommentService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM comments\s+WHERE blog_id = \$1`).
		WithArgs("b1").
		WillReturnRows(commentRows().
			AddRow("r9", "b1", "Eve", "e@x.com", "orphan", nil, ptr("gone"), []string{}, now).
			AddRow("c1", "b1", "Bob", "b@x.com", "post", nil, nil, []string{}, now.Add(-time.Minute)))

	threads, err := svc.ListThread(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Empty(t, threads[0].Replies)
}

func TestAdd_TopLevel(t *testing.T) {
	svc, mock := newCommentService(t)

	mock.ExpectQuery(`SELECT .* FROM blogs WHERE id = \$1`).
		WithArgs("b1").
		WillReturnRows(blogRow("b1"))
	mock.ExpectExec(`INSERT INTO comments`).
		WithArgs(pgxmock.AnyArg(), "b1", "Bob", "b@x.com", "hello", (*string)(nil), (*string)(nil), []string{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	comment, err := svc.Add(context.Background(), AddCommentInput{
		BlogID:      "b1",
		AuthorName:  "  Bob  ",
		AuthorEmail: "b@x.com",
		Body:        " hello ",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.NotEmpty(t, comment.ID)
	require.Equal(t, "hello", comment.Body)
	require.Nil(t, comment.ParentCommentID)
	require.Empty(t, comment.Likes)
}

func TestAdd_RejectsBlankFieldsWithoutTouchingDB(t *testing.T) {
	svc, mock := newCommentService(t)

	_, err := svc.Add(context.Background(), AddCommentInput{
		BlogID:      "b1",
		AuthorName:  "Bob",
		AuthorEmail: "b@x.com",
		Body:        "   ",
	})
	require.ErrorIs(t, err, ErrInvalidComment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_UnknownBlog(t *testing.T) {
	svc, mock := newCommentService(t)

	mock.ExpectQuery(`SELECT .* FROM blogs WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "slug", "content", "category_id", "image_url",
			"share_count", "view_count", "created_at", "updated_at",
		}))

	_, err := svc.Add(context.Background(), AddCommentInput{
		BlogID:      "nope",
		AuthorName:  "Bob",
		AuthorEmail: "b@x.com",
		Body:        "hello",
	})
	require.ErrorIs(t, err, repository.ErrBlogNotFound)
}

func TestAdd_ReplyToReply(t *testing.T) {
	svc, mock := newCommentService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM blogs WHERE id = \$1`).
		WithArgs("b1").
		WillReturnRows(blogRow("b1"))
	mock.ExpectQuery(`SELECT .* FROM comments WHERE id = \$1`).
		WithArgs("r1").
		WillReturnRows(commentRows().
			AddRow("r1", "b1", "Eve", "e@x.com", "a reply", nil, ptr("c1"), []string{}, now))

	_, err := svc.Add(context.Background(), AddCommentInput{
		BlogID:          "b1",
		AuthorName:      "Bob",
		AuthorEmail:     "b@x.com",
		Body:            "too deep",
		ParentCommentID: ptr("r1"),
	})
	require.ErrorIs(t, err, ErrReplyTooDeep)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_ParentFromAnotherBlog(t *testing.T) {
	svc, mock := newCommentService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM blogs WHERE id = \$1`).
		WithArgs("b1").
		WillReturnRows(blogRow("b1"))
	mock.ExpectQuery(`SELECT .* FROM comments WHERE id = \$1`).
		WithArgs("c9").
		WillReturnRows(commentRows().
			AddRow("c9", "other", "Eve", "e@x.com", "elsewhere", nil, nil, []string{}, now))

	_, err := svc.Add(context.Background(), AddCommentInput{
		BlogID:          "b1",
		AuthorName:      "Bob",
		AuthorEmail:     "b@x.com",
		Body:            "hi",
		ParentCommentID: ptr("c9"),
	})
	require.ErrorIs(t, err, ErrBlogMismatch)
}

func TestToggleLike_AddsThenRemoves(t *testing.T) {
	svc, mock := newCommentService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM comments WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(commentRows().
			AddRow("c1", "b1", "Bob", "b@x.com", "post", nil, nil, []string{"u1"}, now))
	mock.ExpectExec(`UPDATE comments SET likes = \$2 WHERE id = \$1`).
		WithArgs("c1", []string{"u1", "u9"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	likes, err := svc.ToggleLike(context.Background(), "c1", "u9")
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u9"}, likes)

	mock.ExpectQuery(`SELECT .* FROM comments WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(commentRows().
			AddRow("c1", "b1", "Bob", "b@x.com", "post", nil, nil, []string{"u1", "u9"}, now))
	mock.ExpectExec(`UPDATE comments SET likes = \$2 WHERE id = \$1`).
		WithArgs("c1", []string{"u1"}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	likes, err = svc.ToggleLike(context.Background(), "c1", "u9")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, likes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_AuthorCascades(t *testing.T) {
	svc, mock := newCommentService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM comments WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(commentRows().
			AddRow("c1", "b1", "Bob", "b@x.com", "post", ptr("u1"), nil, []string{}, now))
	mock.ExpectExec(`DELETE FROM comments WHERE id = \$1 OR parent_comment_id = \$1`).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	err := svc.Delete(context.Background(), "c1", models.User{ID: "u1", Role: models.UserRoleMember})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_StrangerForbidden(t *testing.T) {
	svc, mock := newCommentService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM comments WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(commentRows().
			AddRow("c1", "b1", "Bob", "b@x.com", "post", ptr("u1"), nil, []string{}, now))

	err := svc.Delete(context.Background(), "c1", models.User{ID: "u9", Role: models.UserRoleMember})
	require.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_AnonymousCommentOnlyAdmin(t *testing.T) {
	svc, mock := newCommentService(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM comments WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(commentRows().
			AddRow("c1", "b1", "Anon", "a@x.com", "post", nil, nil, []string{}, now))
	mock.ExpectExec(`DELETE FROM comments WHERE id = \$1 OR parent_comment_id = \$1`).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.Delete(context.Background(), "c1", models.User{ID: "a1", Role: models.UserRoleAdmin})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
