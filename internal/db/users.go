package db

import (
	"strings"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

// CreateUser creates a new user with an already hashed password
func (db *DB) CreateUser(name, email, passwordHash string) (*models.Account, error) {
	result, err := db.Exec(`
		INSERT INTO users (name, email, password) VALUES (?, ?, ?)
	`, name, strings.ToLower(email), passwordHash)
	if err != nil {
		return nil, mapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUser(id)
}

// GetUser retrieves a user by ID
func (db *DB) GetUser(id int64) (*models.Account, error) {
	u := &models.Account{}
	err := db.QueryRow(`
		SELECT id, name, email, password, created_at FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (db *DB) GetUserByEmail(email string) (*models.Account, error) {
	u := &models.Account{}
	err := db.QueryRow(`
		SELECT id, name, email, password, created_at FROM users WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}
