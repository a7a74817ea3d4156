// Package sqlite persists classified links across snapshot-pair runs. The
// catalog is the resolver's input: identity chains are built from the full
// cross-pair link graph, not from any single run's CSV output.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/openhgis/arealink/internal/adapters/driven/catalog/sqlite/migrations"
	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
)

// Store is a SQLite-backed link catalog.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.LinkCatalog = (*Store)(nil)

// NewStore opens (or creates) the catalog database at path, creating
// parent directories as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	// WAL mode: pair runs write concurrently under the pipeline's
	// errgroup.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// ReplacePair deletes and re-inserts all rows for one snapshot-pair in a
// single transaction, so a re-run leaves the catalog set-identical.
func (s *Store) ReplacePair(ctx context.Context, runID string, result domain.PairResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM links WHERE year_from = ? AND year_to = ?",
		result.YearFrom, result.YearTo)
	if err != nil {
		return fmt.Errorf("clearing pair %d -> %d: %w", result.YearFrom, result.YearTo, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO links (
			run_id, year_from, year_to, from_id, to_id, from_name, to_name,
			relationship, tier, intersection, union_area, iou,
			from_fraction, to_fraction, name_similarity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, links := range [][]domain.RelationshipLink{result.Confident, result.Ambiguous} {
		for _, l := range links {
			_, err := stmt.ExecContext(ctx,
				runID, l.YearFrom, l.YearTo, l.FromID, l.ToID, l.FromName, l.ToName,
				string(l.Type), string(l.Tier),
				l.Metrics.IntersectionArea, l.Metrics.UnionArea, l.Metrics.IoU,
				l.Metrics.FromFraction, l.Metrics.ToFraction, l.NameSimilarity)
			if err != nil {
				return fmt.Errorf("inserting link %s -> %s: %w", l.FromID, l.ToID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing pair %d -> %d: %w", result.YearFrom, result.YearTo, err)
	}
	return nil
}

// IdentityLinks returns every SAME_AS link with IoU >= minIoU, ordered by
// (year_from, from_id, to_id) for deterministic chain construction.
func (s *Store) IdentityLinks(ctx context.Context, minIoU float64) ([]domain.RelationshipLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year_from, year_to, from_id, to_id, from_name, to_name,
		       relationship, tier, intersection, union_area, iou,
		       from_fraction, to_fraction, name_similarity
		FROM links
		WHERE relationship = ? AND iou >= ?
		ORDER BY year_from, from_id, to_id
	`, string(domain.RelationSameAs), minIoU)
	if err != nil {
		return nil, fmt.Errorf("querying identity links: %w", err)
	}
	defer rows.Close()

	var links []domain.RelationshipLink
	for rows.Next() {
		var l domain.RelationshipLink
		var rel, tier string
		err := rows.Scan(
			&l.YearFrom, &l.YearTo, &l.FromID, &l.ToID, &l.FromName, &l.ToName,
			&rel, &tier,
			&l.Metrics.IntersectionArea, &l.Metrics.UnionArea, &l.Metrics.IoU,
			&l.Metrics.FromFraction, &l.Metrics.ToFraction, &l.NameSimilarity)
		if err != nil {
			return nil, fmt.Errorf("scanning identity link: %w", err)
		}
		l.Type = domain.RelationType(rel)
		l.Tier = domain.Tier(tier)
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating identity links: %w", err)
	}
	return links, nil
}
