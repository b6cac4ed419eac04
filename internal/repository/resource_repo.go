package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyplanner-backend/internal/models"
)

type ResourceRepo struct {
	pool *pgxpool.Pool
}

func NewResourceRepo(pool *pgxpool.Pool) *ResourceRepo {
	return &ResourceRepo{pool: pool}
}

// List returns all resources ordered by title, each annotated with the
// number of sessions linking to it.
func (r *ResourceRepo) List(ctx context.Context) ([]models.Resource, error) {
	query := `
		SELECT r.id, r.title, r.type, r.url, r.total_units, r.completed_units, r.created_at,
			COUNT(s.id) AS session_count
		FROM resources r
		LEFT JOIN study_sessions s ON s.resource_id = r.id
		GROUP BY r.id
		ORDER BY r.title ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(
			&res.ID, &res.Title, &res.Type, &res.URL, &res.TotalUnits,
			&res.CompletedUnits, &res.CreatedAt, &res.SessionCount,
		); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *ResourceRepo) Create(ctx context.Context, res *models.Resource) error {
	res.ID = uuid.New()

	query := `INSERT INTO resources (id, title, type, url, total_units, completed_units)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		res.ID, res.Title, res.Type, res.URL, res.TotalUnits, res.CompletedUnits,
	).Scan(&res.CreatedAt)
}

// UpdateProgress overwrites completed_units. The value is not clamped
// against total_units.
func (r *ResourceRepo) UpdateProgress(ctx context.Context, id uuid.UUID, completedUnits int) (*models.Resource, error) {
	res := &models.Resource{}
	query := `
		UPDATE resources SET completed_units = $2
		WHERE id = $1
		RETURNING id, title, type, url, total_units, completed_units, created_at
	`

	err := r.pool.QueryRow(ctx, query, id, completedUnits).Scan(
		&res.ID, &res.Title, &res.Type, &res.URL, &res.TotalUnits,
		&res.CompletedUnits, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes a resource. Sessions referencing it have resource_id
// nullified by the schema's ON DELETE SET NULL.
func (r *ResourceRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM resources WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
