package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sigmadevelopers/portfolio/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, description, link, image_url, tech, created_at, updated_at`

func (r *ProjectRepository) Create(ctx context.Context, project models.Project) error {
	const query = `
		INSERT INTO projects (
			id, title, description, link, image_url, tech, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`

	tech := project.Tech
	if tech == nil {
		tech = []string{}
	}

	_, err := r.db.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Link,
		project.ImageURL,
		tech,
	)
	return err
}

func scanProject(row pgx.Row) (models.Project, error) {
	var project models.Project
	if err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Link,
		&project.ImageURL,
		&project.Tech,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Project{}, ErrProjectNotFound
		}
		return models.Project{}, err
	}
	return project, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (models.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.db.QueryRow(ctx, query, id))
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	const query = `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, project models.Project) error {
	const query = `
		UPDATE projects
		SET title = $2, description = $3, link = $4,
		    image_url = COALESCE($5, image_url), tech = $6, updated_at = NOW()
		WHERE id = $1
	`
	tech := project.Tech
	if tech == nil {
		tech = []string{}
	}
	cmd, err := r.db.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Link,
		project.ImageURL,
		tech,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM projects WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}
