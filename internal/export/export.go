// Package export turns a document into a standalone, printable HTML page.
// Generation is pure: identical inputs produce identical output, and the
// date shown is the document's stored date, never the current time.
package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/villemin/feuille/internal/apperr"
	"github.com/villemin/feuille/internal/i18n"
	"github.com/villemin/feuille/internal/models"
)

// Generate builds the complete export page: head with embedded styles and
// the MathJax bootstrap, a title block, then one block per exercise in list
// order. Exercise content is author-originated rich markup and is embedded
// unescaped; every other field is escaped.
func Generate(doc models.Document, settings models.Settings, opts models.ExportOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", fmt.Errorf("export: invalid options (%v): %w", err, apperr.ErrInvalid)
	}

	lang := i18n.Normalize(settings.Language)
	formattedDate := i18n.FormatDate(doc.Date, lang)
	teacherLine := settings.TeacherName
	if teacherLine == "" {
		teacherLine = doc.ClassName
	}
	darkClass := ""
	if settings.Theme == models.ThemeDark {
		darkClass = ` class="dark"`
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=%q%s>\n<head>\n", lang, darkClass)
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(doc.Title))
	b.WriteString(styles(opts))
	b.WriteString(mathjaxScript)
	b.WriteString("</head>\n<body oncontextmenu=\"return false;\">\n")
	b.WriteString("<div class=\"page\">\n")

	b.WriteString("<header>\n")
	fmt.Fprintf(&b, "<h1 class=\"doc-title\">%s</h1>\n", html.EscapeString(doc.Title))
	b.WriteString("<div class=\"doc-meta\">\n")
	fmt.Fprintf(&b, "<span>%s</span>\n", html.EscapeString(teacherLine))
	fmt.Fprintf(&b, "<span>%s</span>\n", html.EscapeString(doc.SchoolYear))
	fmt.Fprintf(&b, "<span>%s</span>\n", html.EscapeString(formattedDate))
	b.WriteString("</div>\n</header>\n")

	b.WriteString("<main class=\"content\">\n")
	for i, ex := range doc.Exercises {
		writeExercise(&b, ex, i, lang, opts)
	}
	b.WriteString("</main>\n</div>\n</body>\n</html>\n")

	return b.String(), nil
}

// GeneratePrintable wraps the export page with the auto-print trigger: the
// page waits for MathJax, invokes the platform print dialog exactly once
// (with a bounded fallback when typesetting never signals), and closes
// itself after printing.
func GeneratePrintable(doc models.Document, settings models.Settings, opts models.ExportOptions) (string, error) {
	page, err := Generate(doc, settings, opts)
	if err != nil {
		return "", err
	}
	page = strings.Replace(page,
		"<body oncontextmenu=\"return false;\">",
		"<body class=\"print-mode\" oncontextmenu=\"return false;\">", 1)
	page = strings.Replace(page, "</body>", autoprintScript+"</body>", 1)
	return page, nil
}

// writeExercise renders one exercise block. The label is always derived from
// the 1-based position in the list, never from stored metadata.
func writeExercise(b *strings.Builder, ex models.Exercise, index int, lang string, opts models.ExportOptions) {
	label := i18n.T(lang, "export.exerciseLabel", index+1)

	b.WriteString("<div class=\"exercise\">\n")
	b.WriteString("<div class=\"exercise-header\">\n")
	b.WriteString("<div class=\"exercise-title-block\">\n")
	fmt.Fprintf(b, "<h3 class=\"exercise-main-title\">%s</h3>\n", html.EscapeString(label))
	if opts.ShowTitles && ex.Title != "" {
		fmt.Fprintf(b, "<p class=\"exercise-subtitle\">%s</p>\n", html.EscapeString(ex.Title))
	}
	b.WriteString("</div>\n")
	if opts.ShowDifficulty {
		fmt.Fprintf(b, "<div class=\"star-rating\">%s</div>\n", stars(ex.Difficulty))
	}
	b.WriteString("</div>\n")

	if opts.ShowKeywords && len(ex.Keywords) > 0 {
		b.WriteString("<div class=\"keywords\">\n")
		for _, kw := range ex.Keywords {
			fmt.Fprintf(b, "<span class=\"keyword-tag\">%s</span>\n", html.EscapeString(kw))
		}
		b.WriteString("</div>\n")
	}

	// Content is trusted rich markup; it goes through untouched so MathJax
	// can pick up the LaTeX delimiters.
	b.WriteString("<div class=\"exercise-content tex2jax_process\">\n")
	b.WriteString(ex.Content)
	b.WriteString("\n</div>\n</div>\n")
}

// stars renders the fixed five-unit difficulty scale. Difficulty above 5
// still fills only five units.
func stars(difficulty int) string {
	var b strings.Builder
	for i := 0; i < 5; i++ {
		if i < difficulty {
			b.WriteString(`<span class="star">★</span>`)
		} else {
			b.WriteString(`<span class="star">☆</span>`)
		}
	}
	return b.String()
}
