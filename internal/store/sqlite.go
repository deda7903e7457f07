package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hayasui/kotae/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS fragments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_file TEXT NOT NULL,
		page INTEGER NOT NULL,
		sequence_index INTEGER NOT NULL UNIQUE,
		text TEXT NOT NULL,
		vector BLOB,
		dimension INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_fragments_source_file ON fragments(source_file);
	`
	_, err := db.Exec(schema)
	return err
}

// Load returns all fragments ordered by sequence index.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.Fragment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, source_file, page, sequence_index, vector
		 FROM fragments ORDER BY sequence_index`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fragments []models.Fragment
	for rows.Next() {
		var f models.Fragment
		var blob []byte
		if err := rows.Scan(&f.Text, &f.SourceFile, &f.Page, &f.SequenceIndex, &blob); err != nil {
			return nil, err
		}
		f.Vector = decodeVector(blob)
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}

// Save appends fragments in a transaction, rebasing their sequence indexes
// to follow the highest stored one. Rebasing keeps indexes unique even after
// deletions leave gaps in the stored ordering.
func (s *SQLiteStore) Save(ctx context.Context, fragments []models.Fragment) error {
	if len(fragments) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var max sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(sequence_index) FROM fragments`).Scan(&max); err != nil {
		return err
	}
	next := 0
	if max.Valid {
		next = int(max.Int64) + 1
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fragments (text, source_file, page, sequence_index, vector, dimension)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range fragments {
		fragments[i].SequenceIndex = next + i
		f := &fragments[i]
		if _, err := stmt.ExecContext(ctx,
			f.Text, f.SourceFile, f.Page, f.SequenceIndex, encodeVector(f.Vector), len(f.Vector),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteSource removes every fragment of a source file.
func (s *SQLiteStore) DeleteSource(ctx context.Context, sourceFile string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM fragments WHERE source_file = ?`, sourceFile)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Sources lists the distinct source files in the corpus.
func (s *SQLiteStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source_file FROM fragments ORDER BY source_file`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var src string
		if err := rows.Scan(&src); err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// Stats counts stored fragments and distinct sources.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT source_file) FROM fragments`,
	).Scan(&st.Fragments, &st.Sources)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeVector packs a vector as little-endian float32 bytes. A nil vector
// stores as NULL.
func encodeVector(v []float32) []byte {
	if v == nil {
		return nil
	}
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

// decodeVector unpacks little-endian float32 bytes; empty or malformed
// blobs decode to nil.
func decodeVector(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
