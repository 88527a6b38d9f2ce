package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PresentationPostgres struct {
	db *pgxpool.Pool
}

func NewPresentationPostgres(db *pgxpool.Pool) *PresentationPostgres {
	return &PresentationPostgres{db: db}
}

func (r *PresentationPostgres) CreatePresentation(ctx context.Context, p *models.Presentation) error {
	slides, err := json.Marshal(p.Slides)
	if err != nil {
		return fmt.Errorf("marshal slides: %w", err)
	}
	resources, err := json.Marshal(nonNilResources(p.Resources))
	if err != nil {
		return fmt.Errorf("marshal resources: %w", err)
	}
	breaks, err := json.Marshal(nonNilBreaks(p.LessonBreaks))
	if err != nil {
		return fmt.Errorf("marshal lesson breaks: %w", err)
	}

	query := `
	INSERT INTO presentations (
		id, author_id, file_name, total_slides, uploaded_at,
		slides, resources, lesson_breaks
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		p.ID, p.AuthorID, p.FileName, p.TotalSlides, p.UploadedAt,
		slides, resources, breaks,
	)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == codeUniqueViolation {
			return fmt.Errorf("presentation %s already exists: %w", p.ID, err)
		}
		return err
	}
	return nil
}

func (r *PresentationPostgres) PresentationByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error) {
	query := `
	SELECT id, author_id, file_name, total_slides, uploaded_at,
	       slides, resources, lesson_breaks
	  FROM presentations
	 WHERE id = $1
	`
	var (
		p                         models.Presentation
		slides, resources, breaks []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.AuthorID, &p.FileName, &p.TotalSlides, &p.UploadedAt,
		&slides, &resources, &breaks,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrPresentationNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(slides, &p.Slides); err != nil {
		return nil, fmt.Errorf("decode slides of %s: %w", id, err)
	}
	if err := json.Unmarshal(resources, &p.Resources); err != nil {
		return nil, fmt.Errorf("decode resources of %s: %w", id, err)
	}
	if err := json.Unmarshal(breaks, &p.LessonBreaks); err != nil {
		return nil, fmt.Errorf("decode lesson breaks of %s: %w", id, err)
	}
	return &p, nil
}

func (r *PresentationPostgres) PresentationsByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.PresentationPreview, error) {
	query := `
	SELECT id, file_name, total_slides, uploaded_at
	  FROM presentations
	 WHERE author_id = $1
	 ORDER BY uploaded_at DESC
	`
	rows, err := r.db.Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var previews []models.PresentationPreview
	for rows.Next() {
		var p models.PresentationPreview
		if err := rows.Scan(&p.ID, &p.FileName, &p.TotalSlides, &p.UploadedAt); err != nil {
			return nil, err
		}
		previews = append(previews, p)
	}
	return previews, rows.Err()
}

func (r *PresentationPostgres) UpdateResources(ctx context.Context, id uuid.UUID, resources []models.SlideResource) error {
	data, err := json.Marshal(nonNilResources(resources))
	if err != nil {
		return fmt.Errorf("marshal resources: %w", err)
	}
	return r.updateColumn(ctx, "resources", id, data)
}

func (r *PresentationPostgres) UpdateLessonBreaks(ctx context.Context, id uuid.UUID, breaks []models.LessonBreak) error {
	data, err := json.Marshal(nonNilBreaks(breaks))
	if err != nil {
		return fmt.Errorf("marshal lesson breaks: %w", err)
	}
	return r.updateColumn(ctx, "lesson_breaks", id, data)
}

// updateColumn is only called with the fixed column names above.
func (r *PresentationPostgres) updateColumn(ctx context.Context, column string, id uuid.UUID, data []byte) error {
	query := fmt.Sprintf(`UPDATE presentations SET %s = $1, updated_at = $2 WHERE id = $3`, column)
	tag, err := r.db.Exec(ctx, query, data, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return app_errors.ErrPresentationNotFound
	}
	return nil
}

func nonNilResources(r []models.SlideResource) []models.SlideResource {
	if r == nil {
		return []models.SlideResource{}
	}
	return r
}

func nonNilBreaks(b []models.LessonBreak) []models.LessonBreak {
	if b == nil {
		return []models.LessonBreak{}
	}
	return b
}
