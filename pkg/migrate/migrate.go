// Package migrate brings a SQLite schema up to date from numbered SQL files,
// usually embedded in the binary. Files are named NNN_description.sql and are
// applied once each, in version order, inside a transaction. Schemas only
// move forward.
package migrate

import (
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var fileName = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// Migration is one schema step
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies the migrations found in one directory of fsys and records
// applied versions in its own table.
type Migrator struct {
	db     *sql.DB
	fsys   fs.FS
	dir    string
	table  string
	logger *zap.SugaredLogger
}

// New returns a Migrator. A nil logger discards progress messages.
func New(db *sql.DB, fsys fs.FS, dir, table string, logger *zap.SugaredLogger) *Migrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if dir == "" {
		dir = "."
	}
	if table == "" {
		table = "schema_migrations"
	}
	return &Migrator{db: db, fsys: fsys, dir: dir, table: table, logger: logger}
}

// Migrations lists the migration files sorted by version. Files that do not
// follow the naming scheme are ignored.
func (m *Migrator) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations from %s: %w", m.dir, err)
	}

	seen := make(map[int]string)
	var out []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := fileName.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		version, err := strconv.Atoi(match[1])
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: invalid version %q", e.Name(), match[1])
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", prev, e.Name(), version)
		}
		seen[version] = e.Name()

		body, err := fs.ReadFile(m.fsys, path.Join(m.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", e.Name(), err)
		}
		out = append(out, Migration{
			Version: version,
			Name:    strings.ReplaceAll(match[2], "_", " "),
			SQL:     string(body),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Version returns the highest applied version, 0 for a fresh database
func (m *Migrator) Version() (int, error) {
	if err := m.ensureTable(); err != nil {
		return 0, err
	}
	var v int
	err := m.db.QueryRow(fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s`, m.table)).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// Up applies every migration newer than the current version and returns how
// many ran.
func (m *Migrator) Up() (int, error) {
	current, err := m.Version()
	if err != nil {
		return 0, err
	}
	migrations, err := m.Migrations()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}
		if err := m.apply(mig); err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		applied++
		m.logger.Infow("applied migration", "table", m.table, "version", mig.Version, "name", mig.Name)
	}
	return applied, nil
}

func (m *Migrator) ensureTable() error {
	_, err := m.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`, m.table))
	if err != nil {
		return fmt.Errorf("creating %s: %w", m.table, err)
	}
	return nil
}

func (m *Migrator) apply(mig Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(mig.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s (version) VALUES (?)`, m.table), mig.Version); err != nil {
		return err
	}
	return tx.Commit()
}
