package pipeline

import (
	"regexp"
	"strings"
)

// QueryKind classifies the shape of a query so the retriever and relevance
// gate can pick an expansion strategy without scattering regex checks.
type QueryKind int

const (
	// KindGeneric is any query that matches no special pattern.
	KindGeneric QueryKind = iota
	// KindNameSearch is a query containing a title-cased multi-word run that
	// looks like a person lookup (e.g. "John Mwangi", "Who is John Mwangi?").
	KindNameSearch
	// KindCourseSearch is a query about a course, unit, class or system.
	KindCourseSearch
)

func (k QueryKind) String() string {
	switch k {
	case KindNameSearch:
		return "name_search"
	case KindCourseSearch:
		return "course_search"
	default:
		return "generic"
	}
}

var courseKeywords = []string{"system", "course", "unit", "class", "timetable", "lecture"}

// namePattern matches a run of two or more consecutive title-cased words.
var namePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)+\b`)

// Classify tags a query as a name search, a course/unit search, or generic.
// Course vocabulary wins over the name pattern: "Expert Systems" is a course
// search even though it is title-cased.
func Classify(query string) QueryKind {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return KindGeneric
	}
	lower := strings.ToLower(trimmed)

	if containsAny(lower, courseKeywords) {
		return KindCourseSearch
	}
	if namePattern.MatchString(trimmed) {
		return KindNameSearch
	}
	if isAllUpper(trimmed) {
		return KindCourseSearch
	}
	return KindGeneric
}

// ExtractName returns the first title-cased multi-word run in the query, or
// "" when none exists. Used by the retriever to build contact variations.
func ExtractName(query string) string {
	return namePattern.FindString(query)
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
