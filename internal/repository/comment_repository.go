package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sigmadevelopers/portfolio/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepository struct {
	db DB
}

func NewCommentRepository(db DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, blog_id, author_name, author_email, body, user_id, parent_comment_id, likes, created_at`

func (r *CommentRepository) Create(ctx context.Context, comment models.Comment) error {
	const query = `
		INSERT INTO comments (
			id, blog_id, author_name, author_email, body, user_id, parent_comment_id, likes, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NOW()
		)
	`

	likes := comment.Likes
	if likes == nil {
		likes = []string{}
	}

	_, err := r.db.Exec(ctx, query,
		comment.ID,
		comment.BlogID,
		comment.AuthorName,
		comment.AuthorEmail,
		comment.Body,
		comment.UserID,
		comment.ParentCommentID,
		likes,
	)
	return err
}

func scanComment(row pgx.Row) (models.Comment, error) {
	var comment models.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.BlogID,
		&comment.AuthorName,
		&comment.AuthorEmail,
		&comment.Body,
		&comment.UserID,
		&comment.ParentCommentID,
		&comment.Likes,
		&comment.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrCommentNotFound
		}
		return models.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (models.Comment, error) {
	const query = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	return scanComment(r.db.QueryRow(ctx, query, id))
}

// ListByBlog returns every comment of a blog, top-level and replies alike,
// newest first. Tree assembly happens in the service.
func (r *CommentRepository) ListByBlog(ctx context.Context, blogID string) ([]models.Comment, error) {
	const query = `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE blog_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) UpdateLikes(ctx context.Context, id string, likes []string) error {
	const query = `UPDATE comments SET likes = $2 WHERE id = $1`
	if likes == nil {
		likes = []string{}
	}
	cmd, err := r.db.Exec(ctx, query, id, likes)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// Delete removes a comment together with any replies hanging off it.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM comments WHERE id = $1 OR parent_comment_id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}
