// Package localstore persists the client's tasks, lists and session in a
// small keyed sqlite database, namespaced per signed-in user.
package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ixann-ui/ukk-todolist/internal/models"
)

const (
	tasksKey    = "todos_v1"
	listsKey    = "lists_v1"
	selectedKey = "selected_list_v1"
	userKey     = "user"

	fileName = "todo.db"
)

// Namespace is the set of keys holding one user's state
type Namespace struct {
	Tasks    string
	Lists    string
	Selected string
}

// Anonymous is the namespace used when nobody is signed in
var Anonymous = NamespaceFor("")

// NamespaceFor returns the keys for userID. An empty id yields the
// anonymous namespace.
func NamespaceFor(userID string) Namespace {
	if userID == "" {
		return Namespace{Tasks: tasksKey, Lists: listsKey, Selected: selectedKey}
	}
	suffix := "_user_" + userID
	return Namespace{
		Tasks:    tasksKey + suffix,
		Lists:    listsKey + suffix,
		Selected: selectedKey + suffix,
	}
}

func (ns Namespace) keys() []string {
	return []string{ns.Tasks, ns.Lists, ns.Selected}
}

// State is everything persisted for one namespace
type State struct {
	Tasks          []models.Task
	Lists          []models.List
	SelectedListID string

	// Corrupt lists the keys whose stored value could not be decoded and
	// were treated as empty.
	Corrupt []string
}

// Store wraps the database connection
type Store struct {
	db  *sql.DB
	log *log.Logger
}

// Open opens (creating if needed) the store at path and applies pending
// migrations.
func Open(path string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	return &Store{db: db, log: logger}, nil
}

// PathIn returns the store file location inside dataDir
func PathIn(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves a raw value by key. ok is false when the key is absent.
func (s *Store) Get(key string) (value string, ok bool, err error) {
	err = s.db.QueryRow("SELECT value FROM entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores a raw value
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// Delete removes keys; missing keys are ignored
func (s *Store) Delete(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.Exec("DELETE FROM entries WHERE key = ?", k); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load reads the state stored under ns. It never fails: unreadable or
// undecodable values are logged and treated as empty.
func (s *Store) Load(ns Namespace) State {
	var st State

	if raw, ok := s.read(ns.Tasks); ok {
		if err := decode(raw, &st.Tasks); err != nil {
			s.log.Warn("discarding corrupt tasks", "key", ns.Tasks, "err", err)
			st.Tasks = nil
			st.Corrupt = append(st.Corrupt, ns.Tasks)
		}
	}

	if raw, ok := s.read(ns.Lists); ok {
		if err := decode(raw, &st.Lists); err != nil {
			s.log.Warn("discarding corrupt lists", "key", ns.Lists, "err", err)
			st.Lists = nil
			st.Corrupt = append(st.Corrupt, ns.Lists)
		}
	}

	if raw, ok := s.read(ns.Selected); ok {
		st.SelectedListID = raw
	}

	for i := range st.Tasks {
		if st.Tasks[i].When == "" {
			st.Tasks[i].When = models.WhenToday
		}
	}

	return st
}

// Save writes tasks, lists and selection under ns in one transaction
func (s *Store) Save(ns Namespace, st State) error {
	tasks := st.Tasks
	if tasks == nil {
		tasks = []models.Task{}
	}
	lists := make([]models.List, 0, len(st.Lists))
	for _, l := range st.Lists {
		if l.ID == models.AllListID {
			continue
		}
		lists = append(lists, l)
	}

	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	listsJSON, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("encoding lists: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := tx.Exec(upsert, ns.Tasks, string(tasksJSON)); err != nil {
		return err
	}
	if _, err := tx.Exec(upsert, ns.Lists, string(listsJSON)); err != nil {
		return err
	}
	if st.SelectedListID == "" {
		if _, err := tx.Exec("DELETE FROM entries WHERE key = ?", ns.Selected); err != nil {
			return err
		}
	} else if _, err := tx.Exec(upsert, ns.Selected, st.SelectedListID); err != nil {
		return err
	}

	return tx.Commit()
}

// Purge removes every key of ns
func (s *Store) Purge(ns Namespace) error {
	return s.Delete(ns.keys()...)
}

// SessionUser returns the persisted signed-in user, if any
func (s *Store) SessionUser() (*models.User, bool) {
	raw, ok := s.read(userKey)
	if !ok {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		s.log.Warn("discarding corrupt session user", "err", err)
		return nil, false
	}
	return &u, true
}

// SetSessionUser persists u as the signed-in user
func (s *Store) SetSessionUser(u models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.Set(userKey, string(b))
}

// ClearSessionUser forgets the signed-in user
func (s *Store) ClearSessionUser() error {
	return s.Delete(userKey)
}

func (s *Store) read(key string) (string, bool) {
	raw, ok, err := s.Get(key)
	if err != nil {
		s.log.Warn("reading local state", "key", key, "err", err)
		return "", false
	}
	return raw, ok
}

func decode[T any](raw string, dst *[]T) error {
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return err
	}
	*dst = out
	return nil
}
