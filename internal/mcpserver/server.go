// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Feuille tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/villemin/feuille/internal/docstore"
	"github.com/villemin/feuille/internal/index"
	"github.com/villemin/feuille/internal/models"
)

// Server wraps the MCP server with Feuille tools.
type Server struct {
	mcp      *server.MCPServer
	store    *docstore.Store
	searcher index.ExerciseSearcher
}

// New creates a new MCP server with all Feuille tools registered.
func New(store *docstore.Store, searcher index.ExerciseSearcher) *Server {
	s := &Server{store: store, searcher: searcher}

	s.mcp = server.NewMCPServer(
		"Feuille",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all exercise documents with their id, title, date and exercise count."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a full document including every exercise."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id (e.g. doc_1712345678901_a1b2c3d)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("search_exercises",
		mcp.WithDescription("Full-text search through exercise titles, keywords and content across all documents."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchExercises)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new empty exercise document."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Document title")),
		mcp.WithString("schoolYear", mcp.Description("Optional school year, e.g. 2025-2026")),
		mcp.WithString("className", mcp.Description("Optional class name, e.g. Seconde B")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("add_exercise",
		mcp.WithDescription("Add an exercise to an existing document. "+
			"Content MUST follow the canonical exercise format (HTML fragment with "+
			"MathJax LaTeX delimiters). Read the contract first via the "+
			"get_exercise_contract tool or the feuille://exercise-format resource."),
		mcp.WithString("documentId", mcp.Required(), mcp.Description("Target document id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exercise title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("HTML content following the Feuille exercise format contract")),
		mcp.WithNumber("difficulty", mcp.Description("Difficulty from 1 to 5 (default 1)")),
		mcp.WithString("keywords", mcp.Description("Comma-separated keywords, e.g. algebra,fractions")),
	), s.addExercise)

	s.mcp.AddTool(mcp.NewTool("get_exercise_contract",
		mcp.WithDescription("Returns the canonical Feuille exercise format contract. "+
			"Call this before adding exercises to ensure correct structure."),
	), s.getExerciseContract)

	// Resource: exercise format contract.
	s.mcp.AddResource(
		mcp.NewResource("feuille://exercise-format", "Exercise Format Contract",
			mcp.WithResourceDescription("Canonical exercise content format that all exercises must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readExerciseFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type row struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Date      string `json:"date"`
		Exercises int    `json:"exercises"`
	}
	docs := s.store.Documents()
	rows := make([]row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, row{ID: d.ID, Title: d.Title, Date: d.Date, Exercises: len(d.Exercises)})
	}
	out, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, ok := s.store.GetDocument(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.searcher.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := models.NewDocumentInput{Title: title}
	if v, err := req.RequireString("schoolYear"); err == nil {
		in.SchoolYear = v
	}
	if v, err := req.RequireString("className"); err == nil {
		in.ClassName = v
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc := s.store.AddDocument(in)
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", doc.ID)), nil
}

func (s *Server) addExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, err := req.RequireString("documentId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := models.NewExerciseInput{Title: title, Content: content, Difficulty: 1}
	if v, err := req.RequireFloat("difficulty"); err == nil {
		in.Difficulty = int(v)
	}
	if v, err := req.RequireString("keywords"); err == nil && v != "" {
		for _, kw := range strings.Split(v, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				in.Keywords = append(in.Keywords, kw)
			}
		}
	}
	if err := in.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ex, ok := s.store.AddExercise(docID, in)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("document not found: %s", docID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s", ex.ID)), nil
}

func (s *Server) getExerciseContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ExerciseFormatContract), nil
}

func (s *Server) readExerciseFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "feuille://exercise-format",
			MIMEType: "text/markdown",
			Text:     ExerciseFormatContract,
		},
	}, nil
}
