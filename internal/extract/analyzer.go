// Package extract turns images of math exercises into structured exercise
// drafts using the Gemini API, and runs extraction batches through a
// sequential job queue.
package extract

import (
	"context"

	"github.com/villemin/feuille/internal/models"
)

// AnalysisOptions tune the extraction behavior per batch.
type AnalysisOptions struct {
	BoldKeywords bool `json:"boldKeywords"`
	ReviseText   bool `json:"reviseText"`
	SuggestHints bool `json:"suggestHints"`
}

// Draft is the structured result of analyzing one image. Content is HTML
// with LaTeX math, ready to become an exercise.
type Draft struct {
	Title      string   `json:"title"`
	Difficulty int      `json:"difficulty"`
	Keywords   []string `json:"keywords"`
	Content    string   `json:"content"`
}

// NewExerciseInput converts the draft into store input. The model is asked
// for a difficulty between 1 and 5 but its output is not trusted, so the
// value is clamped into the valid range.
func (d Draft) NewExerciseInput() models.NewExerciseInput {
	difficulty := d.Difficulty
	if difficulty < 0 {
		difficulty = 0
	}
	if difficulty > 5 {
		difficulty = 5
	}
	return models.NewExerciseInput{
		Title:      d.Title,
		Difficulty: difficulty,
		Content:    d.Content,
		Keywords:   d.Keywords,
	}
}

// Analyzer is the remote image-analysis collaborator. Implementations must
// treat each call as one opaque attempt: no internal retries.
type Analyzer interface {
	// AnalyzeImage extracts one exercise from the image bytes.
	AnalyzeImage(ctx context.Context, image []byte, mimeType string, opts AnalysisOptions) (Draft, error)
	// VerifyKey reports whether the credential is accepted by the remote
	// service. The answer is authoritative until the credential changes.
	VerifyKey(ctx context.Context, apiKey string) bool
}
