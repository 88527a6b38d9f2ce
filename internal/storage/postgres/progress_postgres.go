package postgres

import (
	"context"
	"errors"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgressPostgres struct {
	db *pgxpool.Pool
}

func NewProgressPostgres(db *pgxpool.Pool) *ProgressPostgres {
	return &ProgressPostgres{db: db}
}

// Progress returns the stored progress, or a zero value when the learner has
// never opened the presentation.
func (r *ProgressPostgres) Progress(ctx context.Context, userID, presentationID uuid.UUID) (models.PresentationProgress, error) {
	query := `
	SELECT current_slide, slides_viewed, resources_completed, completed, time_spent_seconds
	  FROM presentation_progress
	 WHERE user_id = $1 AND presentation_id = $2
	`
	p := models.PresentationProgress{UserID: userID, PresentationID: presentationID}
	var viewed []int32
	err := r.db.QueryRow(ctx, query, userID, presentationID).Scan(
		&p.CurrentSlide, &viewed, &p.ResourcesCompleted, &p.Completed, &p.TimeSpentSeconds,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, nil
		}
		return models.PresentationProgress{}, err
	}
	for _, s := range viewed {
		p.SlidesViewed = append(p.SlidesViewed, int(s))
	}
	return p, nil
}

// UpdateProgress merges a partial update: set columns are unioned, time is
// added and scalars are only written when present.
func (r *ProgressPostgres) UpdateProgress(ctx context.Context, userID, presentationID uuid.UUID, u models.ProgressUpdate) error {
	viewed := make([]int32, 0, len(u.SlidesViewed))
	for _, s := range u.SlidesViewed {
		viewed = append(viewed, int32(s))
	}
	resources := u.ResourcesCompleted
	if resources == nil {
		resources = []string{}
	}

	query := `
	INSERT INTO presentation_progress (
		user_id, presentation_id, current_slide, slides_viewed,
		resources_completed, completed, time_spent_seconds, updated_at
	) VALUES (
		$1, $2, COALESCE($3::int, 1),
		ARRAY(SELECT DISTINCT s FROM unnest($4::int[]) AS s ORDER BY s),
		ARRAY(SELECT DISTINCT r FROM unnest($5::text[]) AS r ORDER BY r),
		COALESCE($6::boolean, false), $7, now()
	)
	ON CONFLICT (user_id, presentation_id) DO UPDATE SET
		current_slide = COALESCE($3::int, presentation_progress.current_slide),
		slides_viewed = ARRAY(
			SELECT DISTINCT s FROM unnest(presentation_progress.slides_viewed || $4::int[]) AS s ORDER BY s
		),
		resources_completed = ARRAY(
			SELECT DISTINCT r FROM unnest(presentation_progress.resources_completed || $5::text[]) AS r ORDER BY r
		),
		completed = COALESCE($6::boolean, presentation_progress.completed),
		time_spent_seconds = presentation_progress.time_spent_seconds + $7,
		updated_at = now()
	`
	_, err := r.db.Exec(ctx, query,
		userID, presentationID, u.CurrentSlide, viewed,
		resources, u.Completed, u.TimeSpent,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == codeForeignKeyViolation {
			return app_errors.ErrPresentationNotFound
		}
		return err
	}
	return nil
}
