package extract

import (
	"strings"
	"testing"
)

func TestSystemInstructionToggles(t *testing.T) {
	base := systemInstruction(AnalysisOptions{})
	if !strings.Contains(base, "DO NOT correct or alter") {
		t.Error("exact transcription must be the default")
	}
	if strings.Contains(base, "<strong>") {
		t.Error("keyword bolding must be off by default")
	}

	revised := systemInstruction(AnalysisOptions{ReviseText: true})
	if !strings.Contains(revised, "corrected version") {
		t.Error("revise option missing from prompt")
	}
	if strings.Contains(revised, "DO NOT correct or alter") {
		t.Error("revise and exact transcription are mutually exclusive")
	}

	bold := systemInstruction(AnalysisOptions{BoldKeywords: true})
	if !strings.Contains(bold, "<strong>") {
		t.Error("bold option missing from prompt")
	}

	hints := systemInstruction(AnalysisOptions{SuggestHints: true})
	if !strings.Contains(hints, "hint") {
		t.Error("hints option missing from prompt")
	}
}

func TestSystemInstructionAlwaysConstrainsOutput(t *testing.T) {
	for _, opts := range []AnalysisOptions{{}, {BoldKeywords: true, ReviseText: true, SuggestHints: true}} {
		s := systemInstruction(opts)
		if !strings.Contains(s, "same language") {
			t.Error("language preservation rule missing")
		}
		if !strings.Contains(s, `\( ... \)`) {
			t.Error("LaTeX delimiter rule missing")
		}
	}
}
