package index

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/villemin/feuille/internal/models"
)

// SearchResult is one search hit: an exercise and the document it lives in.
type SearchResult struct {
	DocumentID    string `json:"documentId"`
	DocumentTitle string `json:"documentTitle"`
	ExerciseID    string `json:"exerciseId"`
	Title         string `json:"title"`
	Snippet       string `json:"snippet"`
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// stripMarkup reduces exercise HTML to plain text for indexing. LaTeX
// stays in; searching for "\frac" is legitimate.
func stripMarkup(content string) string {
	return strings.Join(strings.Fields(tagRe.ReplaceAllString(content, " ")), " ")
}

// UpsertDocument replaces every indexed exercise of the document with its
// current exercise list inside one transaction.
func (db *DB) UpsertDocument(doc models.Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM exercises WHERE doc_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("index: clear document: %w", err)
	}
	ftsDeleteDoc(tx, doc.ID)

	now := time.Now()
	for _, ex := range doc.Exercises {
		kwJSON, _ := json.Marshal(ex.Keywords)
		body := stripMarkup(ex.Content)
		_, err = tx.Exec(`
			INSERT INTO exercises (exercise_id, doc_id, doc_title, title, keywords, difficulty, body, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, ex.ID, doc.ID, doc.Title, ex.Title, string(kwJSON), ex.Difficulty, body, now)
		if err != nil {
			return fmt.Errorf("index: insert exercise: %w", err)
		}
		if err := ftsUpsert(tx, ex.ID, doc.ID, ex.Title, body, ex.Keywords); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteDocument removes every indexed exercise of the document.
func (db *DB) DeleteDocument(docID string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeleteDoc(tx, docID)
	if _, err := tx.Exec(`DELETE FROM exercises WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}

	return tx.Commit()
}

// AllDocumentIDs returns every document id present in the index.
func (db *DB) AllDocumentIDs() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT doc_id FROM exercises`)
	if err != nil {
		return nil, fmt.Errorf("index: all doc ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}
