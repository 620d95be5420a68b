// Package models defines the domain types for Feuille.
package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Exercise is a single math problem inside a document. Content is
// author-originated HTML with LaTeX math and is rendered unescaped.
type Exercise struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Difficulty int      `json:"difficulty"`
	Content    string   `json:"content"`
	Keywords   []string `json:"keywords,omitempty"`
}

// Document is a titled, ordered collection of exercises plus class metadata.
// Exercise order is the display and export order.
type Document struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Date         string     `json:"date"` // ISO calendar date (YYYY-MM-DD)
	SchoolYear   string     `json:"schoolYear"`
	ClassName    string     `json:"className"`
	Exercises    []Exercise `json:"exercises"`
	LastModified string     `json:"lastModified"` // RFC 3339 UTC timestamp
}

// Clone returns a deep copy of the document. Exercise keyword slices are
// copied so mutating the clone never touches the original.
func (d Document) Clone() Document {
	out := d
	out.Exercises = make([]Exercise, len(d.Exercises))
	for i, ex := range d.Exercises {
		out.Exercises[i] = ex.Clone()
	}
	return out
}

// FindExercise returns the index of the exercise with the given id, or -1.
func (d Document) FindExercise(exerciseID string) int {
	for i, ex := range d.Exercises {
		if ex.ID == exerciseID {
			return i
		}
	}
	return -1
}

// Clone returns a copy of the exercise with its own keywords slice.
func (e Exercise) Clone() Exercise {
	out := e
	if e.Keywords != nil {
		out.Keywords = append([]string(nil), e.Keywords...)
	}
	return out
}

// NewDocumentInput carries the caller-supplied fields for document creation.
// Everything else (id, date, exercises, lastModified) is generated by the store.
type NewDocumentInput struct {
	Title      string `json:"title"`
	ClassName  string `json:"className"`
	SchoolYear string `json:"schoolYear"`
}

// Validate checks the creation input.
func (in NewDocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 300)),
	)
}

// NewExerciseInput carries the caller-supplied fields for a new exercise.
type NewExerciseInput struct {
	Title      string   `json:"title"`
	Difficulty int      `json:"difficulty"`
	Content    string   `json:"content"`
	Keywords   []string `json:"keywords,omitempty"`
}

// Validate checks the exercise input. Difficulty runs 0 (unset) to 5.
func (in NewExerciseInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Difficulty, validation.Min(0), validation.Max(5)),
	)
}

// DocumentPatch enumerates the updatable document fields. A nil pointer
// leaves the field untouched. Exercises are never patched through here;
// they have their own operations.
type DocumentPatch struct {
	Title      *string `json:"title,omitempty"`
	Date       *string `json:"date,omitempty"`
	SchoolYear *string `json:"schoolYear,omitempty"`
	ClassName  *string `json:"className,omitempty"`
}

// Apply merges the patch into doc.
func (p DocumentPatch) Apply(doc *Document) {
	if p.Title != nil {
		doc.Title = *p.Title
	}
	if p.Date != nil {
		doc.Date = *p.Date
	}
	if p.SchoolYear != nil {
		doc.SchoolYear = *p.SchoolYear
	}
	if p.ClassName != nil {
		doc.ClassName = *p.ClassName
	}
}

// ExercisePatch enumerates the updatable exercise fields.
type ExercisePatch struct {
	Title      *string   `json:"title,omitempty"`
	Difficulty *int      `json:"difficulty,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Keywords   *[]string `json:"keywords,omitempty"`
}

// Apply merges the patch into ex.
func (p ExercisePatch) Apply(ex *Exercise) {
	if p.Title != nil {
		ex.Title = *p.Title
	}
	if p.Difficulty != nil {
		ex.Difficulty = *p.Difficulty
	}
	if p.Content != nil {
		ex.Content = *p.Content
	}
	if p.Keywords != nil {
		ex.Keywords = append([]string(nil), (*p.Keywords)...)
	}
}
