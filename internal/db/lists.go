package db

import (
	"github.com/ixann-ui/ukk-todolist/internal/models"
)

// CreateList creates a new list
func (db *DB) CreateList(userID int64, name string) (*models.ListRecord, error) {
	result, err := db.Exec(`
		INSERT INTO lists (user_id, name) VALUES (?, ?)
	`, userID, name)
	if err != nil {
		return nil, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetList(id)
}

// GetList retrieves a list by ID
func (db *DB) GetList(id int64) (*models.ListRecord, error) {
	l := &models.ListRecord{}
	err := db.QueryRow(`
		SELECT id, user_id, name, created_at FROM lists WHERE id = ?
	`, id).Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

// ListLists returns every list, newest first
func (db *DB) ListLists() ([]models.ListRecord, error) {
	return db.queryLists(`
		SELECT id, user_id, name, created_at FROM lists ORDER BY id DESC
	`)
}

// ListListsByUser returns the lists of one user in creation order
func (db *DB) ListListsByUser(userID int64) ([]models.ListRecord, error) {
	return db.queryLists(`
		SELECT id, user_id, name, created_at FROM lists WHERE user_id = ? ORDER BY id
	`, userID)
}

func (db *DB) queryLists(query string, args ...any) ([]models.ListRecord, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []models.ListRecord{}
	for rows.Next() {
		var l models.ListRecord
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// DeleteList deletes a list; its tasks become unfiled
func (db *DB) DeleteList(id int64) error {
	_, err := db.Exec("DELETE FROM lists WHERE id = ?", id)
	return err
}
