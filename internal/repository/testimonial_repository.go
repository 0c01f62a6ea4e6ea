package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sigmadevelopers/portfolio/internal/models"
)

var ErrTestimonialNotFound = errors.New("testimonial not found")

type TestimonialRepository struct {
	db DB
}

func NewTestimonialRepository(db DB) *TestimonialRepository {
	return &TestimonialRepository{db: db}
}

const testimonialColumns = `id, user_id, author_name, description, approved, created_at, updated_at`

func (r *TestimonialRepository) Create(ctx context.Context, testimonial models.Testimonial) error {
	const query = `
		INSERT INTO testimonials (
			id, user_id, author_name, description, approved, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW(), NOW()
		)
	`
	_, err := r.db.Exec(ctx, query,
		testimonial.ID,
		testimonial.UserID,
		testimonial.AuthorName,
		testimonial.Description,
		testimonial.Approved,
	)
	return err
}

func scanTestimonial(row pgx.Row) (models.Testimonial, error) {
	var testimonial models.Testimonial
	if err := row.Scan(
		&testimonial.ID,
		&testimonial.UserID,
		&testimonial.AuthorName,
		&testimonial.Description,
		&testimonial.Approved,
		&testimonial.CreatedAt,
		&testimonial.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Testimonial{}, ErrTestimonialNotFound
		}
		return models.Testimonial{}, err
	}
	return testimonial, nil
}

func (r *TestimonialRepository) GetByID(ctx context.Context, id string) (models.Testimonial, error) {
	const query = `SELECT ` + testimonialColumns + ` FROM testimonials WHERE id = $1`
	return scanTestimonial(r.db.QueryRow(ctx, query, id))
}

// List returns testimonials, optionally restricted to approved ones for the
// public site.
func (r *TestimonialRepository) List(ctx context.Context, approvedOnly bool) ([]models.Testimonial, error) {
	query := `SELECT ` + testimonialColumns + ` FROM testimonials ORDER BY created_at DESC`
	if approvedOnly {
		query = `SELECT ` + testimonialColumns + ` FROM testimonials WHERE approved ORDER BY created_at DESC`
	}
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var testimonials []models.Testimonial
	for rows.Next() {
		testimonial, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		testimonials = append(testimonials, testimonial)
	}
	return testimonials, rows.Err()
}

// UpdateDescription rewrites the text and sends the entry back through
// review.
func (r *TestimonialRepository) UpdateDescription(ctx context.Context, id string, description string) error {
	const query = `UPDATE testimonials SET description = $2, approved = FALSE, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, description)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}

func (r *TestimonialRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	const query = `UPDATE testimonials SET approved = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, approved)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}

func (r *TestimonialRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM testimonials WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}

func (r *TestimonialRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM testimonials WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}
