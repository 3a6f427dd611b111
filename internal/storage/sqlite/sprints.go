package sqlite

import (
	"context"
	"fmt"
	"time"

	"scrum/internal/models"
)

const sprintColumns = `id, name, description, end_date`

func scanSprint(row scanner) (models.Sprint, error) {
	var sp models.Sprint
	err := row.Scan(&sp.ID, &sp.Name, &sp.Description, &sp.End)
	return sp, err
}

// ListSprints returns sprints ordered by end date.
func (s *Store) ListSprints(ctx context.Context) ([]models.Sprint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sprintColumns+` FROM sprints ORDER BY end_date ASC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sprints: %w", err)
	}
	defer rows.Close()

	sprints := []models.Sprint{}
	for rows.Next() {
		sp, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sprint: %w", err)
		}
		sprints = append(sprints, sp)
	}
	return sprints, rows.Err()
}

// CreateSprint persists a new sprint.
func (s *Store) CreateSprint(ctx context.Context, sp models.Sprint) (models.Sprint, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO sprints(name, description, end_date) VALUES(?, ?, ?)`,
		sp.Name, sp.Description, sp.End.Format(models.DateLayout))
	if err != nil {
		return models.Sprint{}, fmt.Errorf("insert sprint: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Sprint{}, fmt.Errorf("sprint id: %w", err)
	}
	return s.GetSprint(ctx, id)
}

// GetSprint fetches a single sprint by id.
func (s *Store) GetSprint(ctx context.Context, id int64) (models.Sprint, error) {
	sp, err := scanSprint(s.db.QueryRowContext(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = ?`, id))
	if isNoRows(err) {
		return models.Sprint{}, notFound("sprint")
	}
	if err != nil {
		return models.Sprint{}, fmt.Errorf("get sprint: %w", err)
	}
	return sp, nil
}

// SprintExists reports whether a sprint with id is stored.
func (s *Store) SprintExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sprints WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check sprint: %w", err)
	}
	return n > 0, nil
}

// SprintEndTaken reports whether another sprint already ends on end.
func (s *Store) SprintEndTaken(ctx context.Context, end time.Time, excludeID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM sprints WHERE end_date = ? AND id <> ?`,
		end.Format(models.DateLayout), excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check sprint end: %w", err)
	}
	return n > 0, nil
}

// UpdateSprint overwrites the stored sprint with sp.
func (s *Store) UpdateSprint(ctx context.Context, sp models.Sprint) (models.Sprint, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE sprints SET name = ?, description = ?, end_date = ? WHERE id = ?`,
		sp.Name, sp.Description, sp.End.Format(models.DateLayout), sp.ID)
	if err != nil {
		return models.Sprint{}, fmt.Errorf("update sprint: %w", err)
	}
	if err := checkAffected(res, "sprint"); err != nil {
		return models.Sprint{}, err
	}
	return s.GetSprint(ctx, sp.ID)
}

// DeleteSprint removes a sprint; its tasks move back to the backlog.
func (s *Store) DeleteSprint(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sprints WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sprint: %w", err)
	}
	return checkAffected(res, "sprint")
}
