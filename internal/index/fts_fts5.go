//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS exercises_fts USING fts5(
			exercise_id UNINDEXED,
			doc_id UNINDEXED,
			title,
			body,
			keywords,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, exerciseID, docID, title, body string, keywords []string) error {
	_, _ = tx.Exec(`DELETE FROM exercises_fts WHERE exercise_id = ?`, exerciseID)
	_, err := tx.Exec(`INSERT INTO exercises_fts (exercise_id, doc_id, title, body, keywords) VALUES (?, ?, ?, ?, ?)`,
		exerciseID, docID, title, body, strings.Join(keywords, " "))
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDeleteDoc(tx *sql.Tx, docID string) {
	_, _ = tx.Exec(`DELETE FROM exercises_fts WHERE doc_id = ?`, docID)
}

// Search performs an FTS5 full-text search and returns matching exercises
// with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.doc_id,
		       e.doc_title,
		       f.exercise_id,
		       f.title,
		       snippet(exercises_fts, 3, '<b>', '</b>', '...', 64)
		FROM exercises_fts f
		JOIN exercises e ON e.exercise_id = f.exercise_id
		WHERE exercises_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DocumentID, &r.DocumentTitle, &r.ExerciseID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
