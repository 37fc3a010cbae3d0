// Package label names clusters from the words of their titles and abstracts.
package label

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

// DefaultWords is the number of keywords joined into a cluster name.
const DefaultWords = 2

// Labeler produces a human readable name for a cluster from its documents.
type Labeler interface {
	Label(clusterID int, texts []string) string
}

// Keyword is a scored word of a cluster.
type Keyword struct {
	Word  string  `json:"word" yaml:"word"`
	Count int     `json:"count" yaml:"count"`
	Score float64 `json:"score" yaml:"score"`
}

// Tokenize lower-cases text, splits it into runs of letters, digits and
// underscores, and drops stop words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}

// WordBank counts every token across the texts.
func WordBank(texts []string) map[string]int {
	bank := make(map[string]int)
	for _, t := range texts {
		for _, w := range Tokenize(t) {
			bank[w]++
		}
	}
	return bank
}

// TFIDF scores cluster words against the word bank of the whole corpus:
// (count / cluster words) * ln(documents / (bank count + 1)).
type TFIDF struct {
	bank  map[string]int
	docs  int
	Words int
}

// NewTFIDF builds the background word bank from every document of the corpus.
func NewTFIDF(corpusTexts []string, words int) *TFIDF {
	if words <= 0 {
		words = DefaultWords
	}
	return &TFIDF{bank: WordBank(corpusTexts), docs: len(corpusTexts), Words: words}
}

// Keywords returns every word of the texts, best first. Equal scores are
// ordered alphabetically.
func (l *TFIDF) Keywords(texts []string) []Keyword {
	counts := WordBank(texts)
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil
	}

	keywords := make([]Keyword, 0, len(counts))
	for w, c := range counts {
		tf := float64(c) / float64(total)
		idf := math.Log(float64(l.docs) / float64(l.bank[w]+1))
		keywords = append(keywords, Keyword{Word: w, Count: c, Score: tf * idf})
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return keywords[i].Word < keywords[j].Word
	})
	return keywords
}

// Label joins the top keywords, or falls back to "cluster <id>".
func (l *TFIDF) Label(clusterID int, texts []string) string {
	keywords := l.Keywords(texts)
	if len(keywords) == 0 {
		return Fallback(clusterID)
	}
	n := min(l.Words, len(keywords))
	words := make([]string, n)
	for i := range words {
		words[i] = keywords[i].Word
	}
	return strings.Join(words, " ")
}

// Fallback is the name of a cluster without usable words.
func Fallback(clusterID int) string {
	return fmt.Sprintf("cluster %d", clusterID)
}
