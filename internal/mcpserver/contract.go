package mcpserver

// ExerciseFormatContract describes the canonical exercise content format
// that LLM consumers should follow when adding exercises to a document.
const ExerciseFormatContract = `# Feuille Exercise Format Contract

Every exercise added to a Feuille document MUST follow this structure.

## Fields

- **title** (required) – short human-readable name, e.g. "Solving quadratic equations".
- **difficulty** – integer from 1 (easiest) to 5 (hardest). Defaults to 1.
- **keywords** – list of lowercase topic tags, e.g. ["algebra", "fractions"].
- **content** (required) – the exercise statement as an HTML fragment.

## Content rules

1. **HTML fragment only.** No ` + "`" + `<html>` + "`" + `, ` + "`" + `<head>` + "`" + ` or ` + "`" + `<body>` + "`" + ` wrappers.
   Use ` + "`" + `<p>` + "`" + `, ` + "`" + `<ol>` + "`" + `/` + "`" + `<li>` + "`" + `, ` + "`" + `<strong>` + "`" + ` and ` + "`" + `<em>` + "`" + ` for structure.
2. **Math is LaTeX, MathJax-delimited.** Inline math uses ` + "`" + `\(...\)` + "`" + `,
   display math uses ` + "`" + `\[...\]` + "`" + `. Never use ` + "`" + `$` + "`" + ` or ` + "`" + `$$` + "`" + ` delimiters.
3. **Number sets** use the predefined macros ` + "`" + `\R` + "`" + `, ` + "`" + `\N` + "`" + `, ` + "`" + `\Z` + "`" + `, ` + "`" + `\Q` + "`" + `, ` + "`" + `\C` + "`" + `.
4. **Sub-questions** go in an ordered list: ` + "`" + `<ol><li>...</li></ol>` + "`" + `. Nested
   lists render as a), b), c) and then i., ii., iii.
5. **No Markdown.** Markdown syntax inside content is rendered literally.
6. **No scripts or styles.** ` + "`" + `<script>` + "`" + ` and ` + "`" + `<style>` + "`" + ` tags are forbidden.

## Example

` + "```" + `html
<p>Let \(f(x) = 2x^2 - 3x + 1\) be defined on \R.</p>
<ol>
  <li>Compute \(f(0)\) and \(f(2)\).</li>
  <li>Solve the equation \[f(x) = 0\] in \R.</li>
</ol>
` + "```" + `
`
