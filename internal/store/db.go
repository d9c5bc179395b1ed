package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, which tests use to inject a mock.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

type Council struct {
	ID              int        `json:"id"`
	Slug            string     `json:"slug"`
	Name            string     `json:"name"`
	WasteURL        string     `json:"waste_url"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at,omitempty"`
}

type Collection struct {
	BinType        string    `json:"type"`
	CollectionDate time.Time `json:"collection_date"`
	ExtractedAt    time.Time `json:"extracted_at"`
}

func (s *Store) UpsertCouncil(ctx context.Context, slug, name, wasteURL string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
INSERT INTO councils (slug, name, waste_url)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    waste_url = EXCLUDED.waste_url
RETURNING id
`, slug, name, wasteURL).Scan(&id)
	return id, err
}

func (s *Store) GetCouncil(ctx context.Context, slug string) (Council, error) {
	var (
		c             Council
		lastRefreshed sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, slug, name, waste_url, last_refreshed_at
FROM councils
WHERE slug = $1
`, slug).Scan(&c.ID, &c.Slug, &c.Name, &c.WasteURL, &lastRefreshed)
	if errors.Is(err, sql.ErrNoRows) {
		return Council{}, ErrNotFound
	}
	if err != nil {
		return Council{}, err
	}
	if lastRefreshed.Valid {
		t := lastRefreshed.Time
		c.LastRefreshedAt = &t
	}
	return c, nil
}

func (s *Store) ListCouncils(ctx context.Context) ([]Council, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, slug, name, waste_url, last_refreshed_at
FROM councils
ORDER BY slug
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var councils []Council
	for rows.Next() {
		var (
			c             Council
			lastRefreshed sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.WasteURL, &lastRefreshed); err != nil {
			return nil, err
		}
		if lastRefreshed.Valid {
			t := lastRefreshed.Time
			c.LastRefreshedAt = &t
		}
		councils = append(councils, c)
	}
	return councils, rows.Err()
}

// ReplaceCollections swaps a council's stored schedule for a fresh one in a
// single transaction. Position preserves the extractor's ordering for
// same-day collections. Never called with an empty set; a failed refresh
// leaves the previous schedule in place.
func (s *Store) ReplaceCollections(ctx context.Context, councilID int, collections []Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE council_id = $1`, councilID); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}

	for i, col := range collections {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO collections (council_id, bin_type, collection_date, position)
VALUES ($1, $2, $3, $4)
`, councilID, col.BinType, col.CollectionDate, i); err != nil {
			return fmt.Errorf("failed to insert collection: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE councils SET last_refreshed_at = NOW() WHERE id = $1
`, councilID); err != nil {
		return fmt.Errorf("failed to mark refresh: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetCollections(ctx context.Context, slug string) ([]Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.bin_type, c.collection_date, c.extracted_at
FROM collections c
JOIN councils co ON co.id = c.council_id
WHERE co.slug = $1
ORDER BY c.collection_date ASC, c.position ASC
`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []Collection
	for rows.Next() {
		var col Collection
		if err := rows.Scan(&col.BinType, &col.CollectionDate, &col.ExtractedAt); err != nil {
			return nil, err
		}
		collections = append(collections, col)
	}
	return collections, rows.Err()
}
