package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyplanner-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

const sessionWithResourceColumns = `
	s.id, s.title, s.start_time, s.end_time, s.is_completed, s.reminder_sent,
	s.resource_id, s.created_at,
	r.id, r.title, r.type, r.url, r.total_units, r.completed_units, r.created_at
`

func scanSessionWithResource(row pgx.Row) (*models.StudySession, error) {
	s := &models.StudySession{}
	var (
		resID             *uuid.UUID
		resTitle, resType *string
		resURL            *string
		resTotalUnits     *int
		resCompletedUnits *int
		resCreatedAt      *time.Time
	)

	err := row.Scan(
		&s.ID, &s.Title, &s.StartTime, &s.EndTime, &s.IsCompleted, &s.ReminderSent,
		&s.ResourceID, &s.CreatedAt,
		&resID, &resTitle, &resType, &resURL, &resTotalUnits, &resCompletedUnits, &resCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resID != nil {
		s.Resource = &models.Resource{
			ID:             *resID,
			Title:          *resTitle,
			Type:           *resType,
			URL:            resURL,
			TotalUnits:     resTotalUnits,
			CompletedUnits: *resCompletedUnits,
			CreatedAt:      *resCreatedAt,
		}
	}
	return s, nil
}

// List returns all sessions ordered by start time, each with its linked
// resource inlined when present.
func (r *SessionRepo) List(ctx context.Context) ([]models.StudySession, error) {
	query := `
		SELECT ` + sessionWithResourceColumns + `
		FROM study_sessions s
		LEFT JOIN resources r ON r.id = s.resource_id
		ORDER BY s.start_time ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.StudySession{}
	for rows.Next() {
		s, err := scanSessionWithResource(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	query := `
		SELECT ` + sessionWithResourceColumns + `
		FROM study_sessions s
		LEFT JOIN resources r ON r.id = s.resource_id
		WHERE s.id = $1
	`
	return scanSessionWithResource(r.pool.QueryRow(ctx, query, id))
}

func (r *SessionRepo) Create(ctx context.Context, s *models.StudySession) error {
	s.ID = uuid.New()

	query := `INSERT INTO study_sessions (id, title, start_time, end_time, resource_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.Title, s.StartTime, s.EndTime, s.ResourceID,
	).Scan(&s.CreatedAt)
}

// SessionUpdate carries a partial update; nil fields are left unchanged.
// ResourceSet distinguishes "clear the resource link" (true with nil
// ResourceID) from "leave it alone" (false).
type SessionUpdate struct {
	Title       *string
	StartTime   *time.Time
	EndTime     *time.Time
	IsCompleted *bool
	ResourceSet bool
	ResourceID  *uuid.UUID
}

func (r *SessionRepo) Update(ctx context.Context, id uuid.UUID, u SessionUpdate) (bool, error) {
	query := `
		UPDATE study_sessions SET
			title = COALESCE($2, title),
			start_time = COALESCE($3, start_time),
			end_time = COALESCE($4, end_time),
			is_completed = COALESCE($5, is_completed),
			resource_id = CASE WHEN $6 THEN $7 ELSE resource_id END
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id,
		u.Title, u.StartTime, u.EndTime, u.IsCompleted, u.ResourceSet, u.ResourceID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepo) SetCompleted(ctx context.Context, id uuid.UUID, isCompleted bool) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE study_sessions SET is_completed = $2 WHERE id = $1", id, isCompleted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM study_sessions WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DueForReminder returns sessions starting within [now, horizon] that
// are neither completed nor already reminded. Must stay in sync with
// schedule.DueForReminder.
func (r *SessionRepo) DueForReminder(ctx context.Context, now, horizon time.Time) ([]models.StudySession, error) {
	query := `
		SELECT ` + sessionWithResourceColumns + `
		FROM study_sessions s
		LEFT JOIN resources r ON r.id = s.resource_id
		WHERE s.start_time >= $1
		  AND s.start_time <= $2
		  AND s.reminder_sent = FALSE
		  AND s.is_completed = FALSE
		ORDER BY s.start_time ASC
	`

	rows, err := r.pool.Query(ctx, query, now, horizon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.StudySession{}
	for rows.Next() {
		s, err := scanSessionWithResource(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// MarkReminderSent performs the monotonic false-to-true reminder
// transition. Returns true only for the call that actually flipped the
// flag, so concurrent sweeps cannot double-report a send.
func (r *SessionRepo) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE study_sessions SET reminder_sent = TRUE WHERE id = $1 AND reminder_sent = FALSE", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
