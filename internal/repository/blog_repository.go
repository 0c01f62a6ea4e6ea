package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sigmadevelopers/portfolio/internal/models"
)

var ErrBlogNotFound = errors.New("blog not found")

type BlogRepository struct {
	db DB
}

func NewBlogRepository(db DB) *BlogRepository {
	return &BlogRepository{db: db}
}

const blogColumns = `id, title, slug, content, category_id, image_url, share_count, view_count, created_at, updated_at`

func (r *BlogRepository) Create(ctx context.Context, blog models.Blog) error {
	const query = `
		INSERT INTO blogs (
			id, title, slug, content, category_id, image_url, share_count, view_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, 0, 0, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		blog.ID,
		blog.Title,
		blog.Slug,
		blog.Content,
		blog.CategoryID,
		blog.ImageURL,
	)
	return err
}

func scanBlog(row pgx.Row) (models.Blog, error) {
	var blog models.Blog
	if err := row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Slug,
		&blog.Content,
		&blog.CategoryID,
		&blog.ImageURL,
		&blog.ShareCount,
		&blog.ViewCount,
		&blog.CreatedAt,
		&blog.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Blog{}, ErrBlogNotFound
		}
		return models.Blog{}, err
	}
	return blog, nil
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (models.Blog, error) {
	const query = `SELECT ` + blogColumns + ` FROM blogs WHERE id = $1`
	return scanBlog(r.db.QueryRow(ctx, query, id))
}

func (r *BlogRepository) List(ctx context.Context, limit, offset int) ([]models.Blog, error) {
	const query = `
		SELECT ` + blogColumns + `
		FROM blogs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []models.Blog
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}
	return blogs, rows.Err()
}

func (r *BlogRepository) Update(ctx context.Context, blog models.Blog) error {
	const query = `
		UPDATE blogs
		SET title = $2, slug = $3, content = $4, category_id = $5,
		    image_url = COALESCE($6, image_url), updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query,
		blog.ID,
		blog.Title,
		blog.Slug,
		blog.Content,
		blog.CategoryID,
		blog.ImageURL,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBlogNotFound
	}
	return nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM blogs WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBlogNotFound
	}
	return nil
}

// AddShareCount folds a counter delta accumulated in redis back into the row.
func (r *BlogRepository) AddShareCount(ctx context.Context, id string, delta int64) error {
	const query = `UPDATE blogs SET share_count = share_count + $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, delta)
	return err
}

func (r *BlogRepository) AddViewCount(ctx context.Context, id string, delta int64) error {
	const query = `UPDATE blogs SET view_count = view_count + $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, delta)
	return err
}
