package pipeline

import (
	"regexp"
	"strings"
)

// Assembler formats passages, web results and history into a bounded prompt
// payload. Pure and deterministic.

// passageSeparator keeps chunk boundaries unambiguous to the generation model.
const passageSeparator = "\n\n---\n\n"

// historyWindow bounds the number of most-recent turns rendered into prompts.
const historyWindow = 6

// Merged-word repair for concatenation artifacts from upstream text
// extraction: "wordWord", "SYSTEMSIf" and "end.Start" all get a space.
var (
	lowerUpperBoundary  = regexp.MustCompile(`([a-z])([A-Z])`)
	upperTitleBoundary  = regexp.MustCompile(`([A-Z])([A-Z][a-z])`)
	periodUpperBoundary = regexp.MustCompile(`(\.)([A-Z])`)
	multiSpace          = regexp.MustCompile(`[ \t]+`)
)

// terminalPunctuation are the accepted chunk-ending runes.
const terminalPunctuation = ".!?。"

// FormatPassages renders passages into a single context string. Each passage
// is cleaned, guaranteed to end in terminal punctuation, and separated from
// its neighbors by a visible separator so chunks never merge.
func FormatPassages(passages []Passage) string {
	if len(passages) == 0 {
		return ""
	}

	cleaned := make([]string, 0, len(passages))
	for _, p := range passages {
		text := CleanPassageText(p.Text)
		if text == "" {
			continue
		}
		cleaned = append(cleaned, text)
	}
	return strings.Join(cleaned, passageSeparator)
}

// CleanPassageText strips whitespace, repairs merged-word artifacts and
// ensures the chunk ends in terminal punctuation.
func CleanPassageText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = lowerUpperBoundary.ReplaceAllString(text, "$1 $2")
	text = upperTitleBoundary.ReplaceAllString(text, "$1 $2")
	text = periodUpperBoundary.ReplaceAllString(text, "$1 $2")
	text = strings.TrimSpace(multiSpace.ReplaceAllString(text, " "))

	runes := []rune(text)
	last := runes[len(runes)-1]
	if !strings.ContainsRune(terminalPunctuation, last) {
		text += "."
	}
	return text
}

// FormatHistory renders the most recent turns as "User: …"/"Assistant: …"
// lines, oldest first.
func FormatHistory(history []Turn) string {
	if len(history) == 0 {
		return ""
	}

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	lines := make([]string, 0, len(recent))
	for _, turn := range recent {
		role := "Assistant"
		if turn.Role == RoleUser {
			role = "User"
		}
		lines = append(lines, role+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}
