package pipeline

import (
	"regexp"
	"strings"
)

// Contextualizer rewrites ambiguous follow-up queries using conversation
// history. It is a pure function over in-memory strings and never fails.
type Contextualizer struct {
	institution string
	vocabulary  []string
}

// DefaultTopicVocabulary is the fixed domain keyword list scanned in history
// text, in scan order. Matches are collected in this order, so the last match
// acts as the most recently raised topic.
var DefaultTopicVocabulary = []string{
	"university", "admission", "admissions",
	"course", "courses", "program", "programs", "degree", "degrees",
	"fee", "fees", "tuition", "payment", "scholarship", "scholarships",
	"exam", "exams", "examination", "timetable", "schedule", "semester",
	"student", "students", "faculty", "department", "school", "institute",
	"campus", "library", "hostel", "accommodation", "graduation", "alumni",
}

// Anaphora and short-query detection. Whole-word, case-insensitive.
var ambiguousRef = regexp.MustCompile(`(?i)\b(it|its|they|them|their|this|that|these|those|he|she|him|her|here|there|the)\b`)

var (
	historyQuery     = regexp.MustCompile(`(?i)\bhistory\b`)
	feesQuery        = regexp.MustCompile(`(?i)\bfee[s]?\b|\bcost\b|\bprice\b|\bpayment\b`)
	admissionQuery   = regexp.MustCompile(`(?i)\brequirement[s]?\b|\badmission[s]?\b|\bapply\b|\bapplication\b`)
	institutionWords = regexp.MustCompile(`(?i)\buniversity\b`)
)

// NewContextualizer builds a contextualizer for the given institution name.
// The institution's own tokens are prepended to the topic vocabulary so that
// mentions of the institution itself count as a topic.
func NewContextualizer(institution string) *Contextualizer {
	vocab := make([]string, 0, len(DefaultTopicVocabulary)+2)
	lower := strings.ToLower(strings.TrimSpace(institution))
	if lower != "" {
		if short := strings.Fields(lower); len(short) > 1 {
			vocab = append(vocab, short[0])
		}
		vocab = append(vocab, lower)
	}
	vocab = append(vocab, DefaultTopicVocabulary...)
	return &Contextualizer{institution: institution, vocabulary: vocab}
}

// Contextualize resolves ambiguous references in a follow-up query against the
// conversation history. Returns the query unchanged when no rewrite applies.
func (c *Contextualizer) Contextualize(query string, history []Turn) string {
	if len(history) == 0 {
		return query
	}

	hasAmbiguousRef := ambiguousRef.MatchString(query)
	isShort := len(strings.Fields(query)) <= 3
	if !hasAmbiguousRef && !isShort {
		return query
	}

	var parts []string
	for _, turn := range history {
		if strings.TrimSpace(turn.Content) != "" {
			parts = append(parts, turn.Content)
		}
	}
	historyText := strings.ToLower(strings.Join(parts, " "))

	topics := c.extractTopics(historyText)
	if len(topics) == 0 {
		return query
	}

	institutionMentioned := strings.Contains(historyText, strings.ToLower(c.institution)) ||
		institutionWords.MatchString(historyText)

	switch {
	case historyQuery.MatchString(query) && institutionMentioned:
		return c.institution + " history"
	case feesQuery.MatchString(query) &&
		(strings.Contains(historyText, "course") || strings.Contains(historyText, "program")):
		return c.institution + " course fees"
	case admissionQuery.MatchString(query):
		return c.institution + " admission requirements"
	case isShort:
		// Prepend the most recently matched topic to anchor the follow-up.
		return topics[len(topics)-1] + " " + query
	}

	return query
}

// extractTopics scans history text for topic vocabulary terms, preserving
// vocabulary order. This is co-occurrence extraction, not frequency ranking.
func (c *Contextualizer) extractTopics(historyText string) []string {
	var found []string
	for _, keyword := range c.vocabulary {
		if strings.Contains(historyText, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}
