package export

import (
	"fmt"
	"strings"

	"github.com/villemin/feuille/internal/models"
)

// styles builds the embedded stylesheet for the chosen options: base page
// layout, column/font settings, print rules, then the theme overrides.
func styles(opts models.ExportOptions) string {
	var theme string
	switch opts.Theme {
	case models.ExportThemeInkSaver:
		theme = inkSaverCSS(opts.Columns > 1)
	case models.ExportThemeHighContrast:
		theme = highContrastCSS(opts.Columns > 1)
	}

	columnRule := ""
	if opts.Columns > 1 {
		columnRule = "column-rule: 1px dotted #cbd5e1;"
	}

	return fmt.Sprintf(`<style>
@import url('https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&family=Manrope:wght@600;700;800&display=swap');

body {
  margin: 0;
  -webkit-print-color-adjust: exact;
  print-color-adjust: exact;
}

@media screen {
  body { padding: 2rem; background-color: #e2e8f0; }
  .dark body { background-color: #0f172a; }
}

.page {
  font-family: 'Inter', sans-serif;
  line-height: 1.5;
  font-size: %dpt;
  color: #1f2937;
  -webkit-font-smoothing: antialiased;
  text-rendering: optimizeLegibility;
  background: white;
  width: 21cm;
  min-height: 29.7cm;
  padding: 1.5cm;
  margin: 0 auto;
  box-shadow: 0 4px 12px rgba(0,0,0,0.1);
}

header { text-align: center; margin-bottom: 2.5rem; }
.doc-title { font-family: 'Manrope', sans-serif; font-size: 2.0em; font-weight: 800; margin: 0; color: #111827; }
.doc-meta { display: flex; justify-content: space-between; width: 100%%; max-width: 400px; margin: 0.5rem auto 0; font-size: 0.9em; color: #4b5563; }

.content {
  column-count: %d;
  column-gap: 1.5cm;
  %s
}

.exercise { margin-bottom: 1.2rem; padding-top: 1.2rem; }
.exercise:first-child { padding-top: 0; }
.exercise:not(:first-child) { padding-top: 2rem; margin-top: 2rem; position: relative; }
.exercise:not(:first-child)::before {
  content: '∗ ∗ ∗';
  position: absolute;
  top: 0.5rem;
  left: 50%%;
  transform: translateX(-50%%);
  color: #94a3b8;
  font-size: 1.2em;
  letter-spacing: 0.5em;
}

.exercise-header { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 0.6rem; }
.exercise-title-block { display: flex; align-items: baseline; gap: 0.75rem; flex-wrap: wrap; line-height: 1.3; }
.exercise-main-title { font-family: 'Manrope', sans-serif; font-size: 1.15em; font-weight: 700; color: #111827; margin: 0; }
.exercise-subtitle { font-family: 'Inter', sans-serif; font-size: 1em; margin: 0; font-weight: 600; font-style: italic; color: #4b5563; }

.star-rating { font-size: 1em; letter-spacing: 2px; white-space: nowrap; }
.star-rating span { display: inline-block; color: #f59e0b; }

.keywords { margin-top: 0.25rem; margin-bottom: 0.75rem; display: flex; flex-wrap: wrap; gap: 0.5rem; }
.keyword-tag { font-size: 0.75em; background-color: #f3f4f6; color: #4b5563; padding: 0.15rem 0.5rem; border-radius: 4px; }

.exercise-content p, .exercise-content ul { margin-top: 0.4rem; margin-bottom: 0.4rem; }
.exercise-content ul { list-style-position: outside; padding-left: 1.5em; }

.exercise-content ol { list-style-type: none; counter-reset: item; padding-left: 0; margin-top: 0.4rem; margin-bottom: 0.4rem; }
.exercise-content ol > li { display: block; position: relative; padding-left: 2.2em; margin-bottom: 0.5em; font-size: 0.95em; }
.exercise-content ol > li > p:first-child { display: inline; }
.exercise-content ol > li::before {
  content: counter(item) ".";
  counter-increment: item;
  position: absolute;
  left: 0;
  top: 0;
  width: 1.7em;
  text-align: right;
  font-weight: 600;
  color: #1f2937;
}
.exercise-content ol ol { counter-reset: subitem; margin-top: 0.5em; padding-left: 0; }
.exercise-content ol ol > li::before { content: counter(subitem, lower-alpha) ")"; counter-increment: subitem; font-weight: normal; color: #4b5563; }
.exercise-content ol ol ol { counter-reset: subsubitem; padding-left: 0; }
.exercise-content ol ol ol > li::before { content: counter(subsubitem, lower-roman) "."; counter-increment: subsubitem; }

@media print {
  body { padding: 0; background-color: #ffffff !important; font-weight: normal !important; }
  .page {
    margin: 0;
    box-shadow: none;
    border: none;
    width: auto;
    min-height: auto;
    padding: 1.5cm;
    background: #ffffff !important;
    color: #000000 !important;
  }
}
%s
</style>
`, opts.FontSize, opts.Columns, columnRule, theme)
}

// inkSaverCSS strips backgrounds and softens colors so low-ink printing
// stays legible.
func inkSaverCSS(twoColumns bool) string {
	rule := ""
	if twoColumns {
		rule = ".content { column-rule-color: #e5e7eb; }"
	}
	return strings.TrimSpace(`
.page { color: #404040; }
.doc-title { color: #000000; }
.doc-meta { color: #6b7280; }
.exercise-main-title { color: #111827; }
.exercise-subtitle { color: #404040; }
.star-rating span { color: #a1a1aa; }
.keyword-tag { background-color: transparent; color: #525252; border: 1px solid #d4d4d8; }
.exercise-content ol > li::before { color: #404040; }
.exercise-content ol ol > li::before, .exercise-content ol ol ol > li::before { color: #525252; }
.exercise:not(:first-child)::before { color: #d1d5db; }
`) + "\n" + rule
}

// highContrastCSS renders pure black on white with bold weights, relying on
// no color at all.
func highContrastCSS(twoColumns bool) string {
	rule := ""
	if twoColumns {
		rule = ".content { column-rule: 1px solid #000000; }"
	}
	return strings.TrimSpace(`
.page { color: #000000; font-weight: 600; }
.doc-title { color: #000000; }
.doc-meta { color: #000000; }
.exercise-main-title, .exercise-subtitle { color: #000000; }
.star-rating span { color: #000000; }
.keyword-tag { background-color: transparent; color: #000000; border: 1px solid #000000; font-weight: 600; }
.exercise-content ol li::before { color: #000000; font-weight: 600; }
.exercise:not(:first-child)::before { color: #000000; font-weight: 600; }
`) + "\n" + rule
}
