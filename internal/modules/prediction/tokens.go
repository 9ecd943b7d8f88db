package prediction

import (
	"strings"
	"unicode"
)

// Tokenizer normalizes meal text into comparable token sets.
type Tokenizer struct {
	minLen    int
	stopwords map[string]struct{}
}

func NewTokenizer(c Constants) Tokenizer {
	stop := make(map[string]struct{}, len(c.Similar.Stopwords))
	for _, w := range c.Similar.Stopwords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return Tokenizer{minLen: c.Similar.MinTokenLen, stopwords: stop}
}

// Tokens lowercases, splits on anything that is not a letter or digit, drops short tokens and
// stopwords, and dedupes while keeping first-seen order.
func (t Tokenizer) Tokens(texts ...string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, text := range texts {
		fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, f := range fields {
			if len([]rune(f)) < t.minLen {
				continue
			}
			if _, stop := t.stopwords[f]; stop {
				continue
			}
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// DraftTokens tokenizes the meal name plus every item name.
func (t Tokenizer) DraftTokens(d MealDraft) []string {
	texts := make([]string, 0, len(d.Items)+1)
	texts = append(texts, d.Name)
	for _, it := range d.Items {
		texts = append(texts, it.DisplayName)
	}
	return t.Tokens(texts...)
}

// Jaccard is |a∩b| / |a∪b| over the distinct elements of a and b. Two empty sets are
// identical and score 1.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, x := range a {
		setA[x] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, x := range b {
		setB[x] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	inter := 0
	for x := range setA {
		if _, ok := setB[x]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}
