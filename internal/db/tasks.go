package db

import (
	"github.com/ixann-ui/ukk-todolist/internal/models"
)

const taskColumns = `id, user_id, lists_id, title, description, due_date, created_at`

// CreateTask creates a new task. listID may be nil for an unfiled task.
func (db *DB) CreateTask(userID int64, listID *int64, title, description string) (*models.TaskRecord, error) {
	result, err := db.Exec(`
		INSERT INTO tasks (user_id, lists_id, title, description) VALUES (?, ?, ?, ?)
	`, userID, listID, title, description)
	if err != nil {
		return nil, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetTask(id)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(id int64) (*models.TaskRecord, error) {
	t := &models.TaskRecord{}
	err := db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.UserID, &t.ListID, &t.Title, &t.Description, &t.DueDate, &t.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// ListTasksByUser returns all tasks of a user, newest first
func (db *DB) ListTasksByUser(userID int64) ([]models.TaskRecord, error) {
	return db.queryTasks(`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY id DESC`, userID)
}

// ListTasksByList returns a user's tasks in one list, newest first
func (db *DB) ListTasksByList(userID, listID int64) ([]models.TaskRecord, error) {
	return db.queryTasks(`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND lists_id = ? ORDER BY id DESC`, userID, listID)
}

func (db *DB) queryTasks(query string, args ...any) ([]models.TaskRecord, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.TaskRecord{}
	for rows.Next() {
		var t models.TaskRecord
		if err := rows.Scan(&t.ID, &t.UserID, &t.ListID, &t.Title, &t.Description, &t.DueDate, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask updates the non-nil fields of a task
func (db *DB) UpdateTask(id int64, title *string, listID *int64, description *string) error {
	result, err := db.Exec(`
		UPDATE tasks
		SET title = COALESCE(?, title),
		    lists_id = COALESCE(?, lists_id),
		    description = COALESCE(?, description)
		WHERE id = ?
	`, title, listID, description, id)
	if err != nil {
		return mapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask deletes a task
func (db *DB) DeleteTask(id int64) error {
	_, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}
