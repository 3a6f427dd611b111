package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/volatiletech/null/v8"

	"scrum/internal/models"
)

const taskSelect = `SELECT t.id, t.name, t.description, t.sprint_id, t.status, t.sort_order,
        t.started, t.due, t.completed,
        u.id, u.username, u.email, u.first_name, u.last_name, u.is_active
    FROM tasks t LEFT JOIN users u ON u.id = t.assigned_id`

func scanTask(row scanner) (models.Task, error) {
	var (
		t        models.Task
		userID   sql.NullInt64
		username sql.NullString
		email    sql.NullString
		first    sql.NullString
		last     sql.NullString
		active   sql.NullBool
	)
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.SprintID, &t.Status, &t.Order,
		&t.Started, &t.Due, &t.Completed,
		&userID, &username, &email, &first, &last, &active)
	if err != nil {
		return models.Task{}, err
	}
	if userID.Valid {
		t.Assigned = &models.User{
			ID:        userID.Int64,
			Username:  username.String,
			Email:     email.String,
			FirstName: first.String,
			LastName:  last.String,
			IsActive:  active.Bool,
		}
	}
	return t, nil
}

func dateArg(t null.Time) any {
	if !t.Valid {
		return nil
	}
	return t.Time.Format(models.DateLayout)
}

func assignedArg(u *models.User) any {
	if u == nil {
		return nil
	}
	return u.ID
}

// TaskFilter narrows ListTasks.
type TaskFilter struct {
	SprintID null.Int64
}

// ListTasks returns tasks in board order, optionally restricted to a sprint.
func (s *Store) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := taskSelect
	var args []any
	if filter.SprintID.Valid {
		query += ` WHERE t.sprint_id = ?`
		args = append(args, filter.SprintID.Int64)
	}
	query += ` ORDER BY t.sort_order, t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a new task.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if !t.Status.Valid() {
		t.Status = models.StatusNotStarted
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(name, description, sprint_id, status, sort_order, assigned_id, started, due, completed)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Description, t.SprintID, int(t.Status), t.Order, assignedArg(t.Assigned),
		dateArg(t.Started), dateArg(t.Due), dateArg(t.Completed))
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

// GetTask retrieves a task by id together with its assigned user.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = ?`, id))
	if isNoRows(err) {
		return models.Task{}, notFound("task")
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask overwrites the stored task with t. The assignment is left
// untouched; use AssignTask to change it.
func (s *Store) UpdateTask(ctx context.Context, t models.Task) (models.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET name = ?, description = ?, sprint_id = ?, status = ?, sort_order = ?,
        started = ?, due = ?, completed = ? WHERE id = ?`,
		t.Name, t.Description, t.SprintID, int(t.Status), t.Order,
		dateArg(t.Started), dateArg(t.Due), dateArg(t.Completed), t.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	if err := checkAffected(res, "task"); err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, t.ID)
}

// AssignTask sets or clears the user a task is assigned to.
func (s *Store) AssignTask(ctx context.Context, taskID int64, userID null.Int64) (models.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET assigned_id = ? WHERE id = ?`, userID, taskID)
	if err != nil {
		return models.Task{}, fmt.Errorf("assign task: %w", err)
	}
	if err := checkAffected(res, "task"); err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, taskID)
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return checkAffected(res, "task")
}
