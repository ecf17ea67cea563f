package localstore

import (
	"database/sql"
	"fmt"
)

// migrations are applied in order; index+1 is the schema version.
// Never edit a released entry, append a new one instead.
var migrations = []string{
	// 1: keyed entries
	`CREATE TABLE IF NOT EXISTS entries (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	// 2: drop the pseudo-list if an older build ever persisted it
	`UPDATE entries
		SET value = (
			SELECT COALESCE(json_group_array(
				CASE WHEN l.type IN ('object', 'array') THEN json(l.value) ELSE l.value END
			), '[]')
			FROM json_each(entries.value) AS l
			WHERE (CASE WHEN l.type = 'object' THEN json_extract(l.value, '$.id') END) IS NOT 'all'
		)
		WHERE key LIKE 'lists_v1%' AND json_valid(value) AND json_type(value) = 'array'`,
}

// SchemaVersion is the version a fully migrated store reports
var SchemaVersion = len(migrations)

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return err
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for i := current; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// Version returns the schema version recorded in the store
func (s *Store) Version() (int, error) {
	return currentVersion(s.db)
}
