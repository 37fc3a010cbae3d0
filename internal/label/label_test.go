package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("The Coupling of citation_networks, in 2019!")
	assert.Equal(t, []string{"coupling", "citation_networks", "2019"}, got)
	assert.Empty(t, Tokenize("the and of"))
}

func TestWordBank(t *testing.T) {
	bank := WordBank([]string{"graph graph theory", "Graph clustering"})
	assert.Equal(t, map[string]int{"graph": 3, "theory": 1, "clustering": 1}, bank)
}

func TestTFIDF_RareWordsWin(t *testing.T) {
	corpus := []string{
		"network analysis of citations",
		"network analysis of topics",
		"network coupling strength",
		"bibliometric coupling strength",
		"deep learning survey",
		"survey of learning",
	}
	l := NewTFIDF(corpus, 2)
	kws := l.Keywords([]string{corpus[2], corpus[3]})
	require.NotEmpty(t, kws)

	// "coupling" and "strength" occur twice in the cluster and twice in the bank
	assert.Equal(t, "coupling", kws[0].Word)
	assert.Equal(t, "strength", kws[1].Word)
	assert.Equal(t, "coupling strength", l.Label(4, []string{corpus[2], corpus[3]}))
}

func TestTFIDF_TieBreakIsAlphabetical(t *testing.T) {
	l := NewTFIDF([]string{"zeta alpha", "mu"}, 2)
	// zeta and alpha have equal counts in both bank and cluster
	assert.Equal(t, "alpha zeta", l.Label(1, []string{"zeta alpha"}))
}

func TestTFIDF_Fallback(t *testing.T) {
	l := NewTFIDF([]string{"anything"}, 2)
	assert.Equal(t, "cluster 3", l.Label(3, []string{"the of and", ""}))
}

func TestTFIDF_SingleWord(t *testing.T) {
	l := NewTFIDF([]string{"graphs", "other text"}, 2)
	assert.Equal(t, "graphs", l.Label(1, []string{"graphs"}))
}
