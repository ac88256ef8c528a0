// Package keywords turns player actions and memory text into comparable
// tokens for recall and trigger matching.
package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// #region stopwords

// stopwords drops function words and table talk that carry no story content.
var stopwords = toSet(
	// articles, pronouns, auxiliaries
	"the", "an", "is", "are", "was", "were", "am", "be", "been", "being",
	"do", "does", "did", "have", "has", "had", "will", "would", "could",
	"should", "may", "might", "can", "shall", "not", "no", "it", "its",
	"this", "that", "these", "those", "what", "which", "who", "whom",
	"how", "when", "where", "why", "you", "me", "my", "your", "we", "our",
	"they", "their", "he", "she", "her", "his", "him", "us", "them",
	// connectives and prepositions
	"and", "or", "but", "if", "then", "than", "so", "as", "at", "by",
	"for", "from", "in", "into", "onto", "of", "on", "to", "with", "about",
	"up", "out", "over", "there", "here", "some", "any", "all", "just",
	"also", "very", "really",
	// table talk around an action
	"try", "tries", "tried", "trying", "want", "wants", "going", "gonna",
	"let", "lets", "maybe", "ok", "okay", "again", "still",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// #endregion stopwords

// #region tokenize

// Tokenize splits text into unique lowercase stemmed tokens, dropping
// stopwords and single characters.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 || stopwords[w] {
			continue
		}
		w = Stem(w)
		if seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

// Stem strips common English plural and verb endings so "smugglers",
// "raiding" and "raided" match "smuggler" and "raid". Short words are
// returned unchanged.
func Stem(w string) string {
	n := utf8.RuneCountInString(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case n > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case n > 4 && strings.HasSuffix(w, "ed") && !strings.HasSuffix(w, "eed"):
		return w[:len(w)-2]
	case n > 3 && hasAnySuffix(w, "sses", "xes", "ches", "shes"):
		return w[:len(w)-2]
	case n > 3 && strings.HasSuffix(w, "s") && !hasAnySuffix(w, "ss", "us", "is"):
		return w[:len(w)-1]
	}
	return w
}

func hasAnySuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

// #endregion tokenize

// #region overlap

// Shared returns the count of tokens present in both slices.
func Shared(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	count := 0
	for _, t := range b {
		if set[t] {
			count++
		}
	}
	return count
}

// #endregion overlap
