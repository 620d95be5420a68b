package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/villemin/feuille/internal/apperr"
)

const geminiModel = "gemini-2.5-flash"

var exerciseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {
			Type:        genai.TypeString,
			Description: "A pedagogical title that summarizes the exercise's core concept. It must be concise (under 6 words) and give a clear idea of the exercise's topic.",
		},
		"difficulty": {
			Type:        genai.TypeInteger,
			Description: "An estimated difficulty from 1 (very easy) to 5 (very hard).",
		},
		"keywords": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of 3-5 relevant mathematical keywords.",
		},
		"content": {
			Type:        genai.TypeString,
			Description: "The full content of the exercise, formatted in clean, semantic HTML with LaTeX for math. Use \\( ... \\) for inline math and \\[ ... \\] for display math. Structure content using paragraphs <p>, and lists like <ol> and <ul> for questions and sub-questions. Do not nest block elements inside <p> tags.",
		},
	},
	Required: []string{"title", "difficulty", "keywords", "content"},
}

// Gemini implements Analyzer against the Gemini API. The credential is
// resolved per call so that settings changes apply without a restart.
type Gemini struct {
	keyFn func() string
}

// NewGemini creates an analyzer that resolves its credential through keyFn.
func NewGemini(keyFn func() string) *Gemini {
	return &Gemini{keyFn: keyFn}
}

func (g *Gemini) client(ctx context.Context) (*genai.Client, error) {
	key := g.keyFn()
	if key == "" {
		return nil, fmt.Errorf("extract: %w", apperr.ErrKeyMissing)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, fmt.Errorf("extract: create client: %w", err)
	}
	return client, nil
}

// systemInstruction assembles the extraction prompt for the given options.
func systemInstruction(opts AnalysisOptions) string {
	parts := []string{
		"You are an expert in mathematics education. Your task is to analyze the content of a math exercise image and extract it into a structured JSON format, strictly adhering to the provided schema.",
		"The 'content' field must contain ONLY the body of the exercise. Omit any headers like 'Exercise 1', 'Problem A', etc., as the application will handle numbering automatically.",
		"Pay special attention to the 'title'. It MUST be a short, pedagogical summary of the exercise's main objective (e.g., 'Solving Quadratic Equations', 'Vector Dot Product'). The title MUST be under 6 words and accurately reflect the exercise content.",
		"IMPORTANT: Detect the language of the text in the image. Your entire response (title, keywords, content) MUST be in that same language. DO NOT TRANSLATE.",
		"The 'content' field must be valid, semantic HTML. Use <p> for paragraphs, and nested <ol> or <ul> for lists. All math must be LaTeX, using \\( ... \\) for inline and \\[ ... \\] for display math. Strictly conform to the schema.",
		"To improve readability, for any inline math `\\(...\\)` that contains complex structures like fractions (`\\frac`), summations (`\\sum`), or integrals (`\\int`), you MUST add `\\displaystyle` at the beginning of the formula's content. Apply this only to complex formulas, not to simple variables or expressions.",
	}

	if opts.ReviseText {
		parts = append(parts, "Analyze the text for spelling and grammar errors. In the 'content' field, provide a corrected version of the text. The corrections should be subtle and preserve the original meaning.")
	} else {
		parts = append(parts, "Your transcription must be exact. DO NOT correct or alter the original text, spelling, or grammar. Preserve the original phrasing and vocabulary.")
	}
	if opts.BoldKeywords {
		parts = append(parts, "In the HTML 'content' field, bold the keywords you've identified (from the 'keywords' array) by wrapping them in `<strong>` tags.")
	}
	if opts.SuggestHints {
		parts = append(parts, "For each question or sub-question in the exercise that requires a solution, add a brief, helpful hint in parentheses at the end of the question's text. The hint should guide the student without giving away the answer. Do not add hints to simple instructions or statements.")
	}

	return strings.Join(parts, " ")
}

// AnalyzeImage sends the image to Gemini and decodes the structured result.
// The call is a single attempt; retrying is the caller's decision.
func (g *Gemini) AnalyzeImage(ctx context.Context, image []byte, mimeType string, opts AnalysisOptions) (Draft, error) {
	client, err := g.client(ctx)
	if err != nil {
		return Draft{}, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText("Extract the exercise from this image, conforming to the JSON schema."),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, geminiModel, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction(opts), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    exerciseSchema,
	})
	if err != nil {
		return Draft{}, fmt.Errorf("extract: gemini call: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal([]byte(resp.Text()), &draft); err != nil {
		return Draft{}, fmt.Errorf("extract: decode response: %w", err)
	}
	if draft.Title == "" || draft.Content == "" {
		return Draft{}, fmt.Errorf("extract: incomplete response from api")
	}
	draft.Content = CleanContent(draft.Content)
	return draft, nil
}

// VerifyKey makes a minimal generation call to test the credential.
func (g *Gemini) VerifyKey(ctx context.Context, apiKey string) bool {
	if apiKey == "" {
		return false
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return false
	}
	resp, err := client.Models.GenerateContent(ctx, geminiModel,
		[]*genai.Content{genai.NewContentFromText("ping", genai.RoleUser)},
		&genai.GenerateContentConfig{
			MaxOutputTokens: 1,
			ThinkingConfig:  &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(0))},
		})
	if err != nil {
		return false
	}
	return resp.Text() != ""
}
