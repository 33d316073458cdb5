package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func finals(texts ...string) []Result {
	out := make([]Result, len(texts))
	for i, s := range texts {
		out[i] = Result{Text: s, Final: true}
	}
	return out
}

// Engines deliver the cumulative list; feed growing prefixes of it.
func feed(a *Accumulator, results []Result) {
	for i := 1; i <= len(results); i++ {
		a.Process(results[:i])
	}
}

func TestAccumulatorPrefixExtension(t *testing.T) {
	var a Accumulator
	feed(&a, finals("go", "go to", "go to the gym"))

	assert.Equal(t, []string{"go to the gym"}, a.Phrases())
	assert.Equal(t, "go to the gym", a.Flush())
}

func TestAccumulatorDistinctPhrases(t *testing.T) {
	var a Accumulator
	feed(&a, finals("buy milk", "call mom"))

	assert.Equal(t, "buy milk call mom", a.Flush())
}

func TestAccumulatorDuplicateFinals(t *testing.T) {
	var a Accumulator
	feed(&a, finals("buy milk", "buy milk", " buy milk "))

	assert.Equal(t, []string{"buy milk"}, a.Phrases())
}

func TestAccumulatorDropsCoveredShorterPhrase(t *testing.T) {
	var a Accumulator
	feed(&a, finals("go to the gym", "the gym"))

	assert.Equal(t, []string{"go to the gym"}, a.Phrases())
}

func TestAccumulatorDuplicateDoesNotReplaceOtherEntry(t *testing.T) {
	var a Accumulator
	feed(&a, finals("milk", "buy milk", "buy milk"))

	assert.Equal(t, []string{"buy milk"}, a.Phrases())

	feed(&a, finals("milk", "buy milk", "buy milk", "eggs", "eggs"))
	assert.Equal(t, []string{"buy milk", "eggs"}, a.Phrases())
}

func TestAccumulatorIgnoresEmptyAndInterim(t *testing.T) {
	var a Accumulator
	results := []Result{
		{Text: "   ", Final: true},
		{Text: "buy", Final: false},
	}

	preview := a.Process(results)

	assert.Equal(t, "buy", preview)
	assert.Empty(t, a.Phrases())
}

func TestAccumulatorSkipsProcessedIndexes(t *testing.T) {
	var a Accumulator
	a.Process([]Result{{Text: "first", Final: true}})
	a.Process([]Result{{Text: "changed", Final: true}, {Text: "second", Final: true}})

	assert.Equal(t, []string{"first", "second"}, a.Phrases())
}

func TestAccumulatorFlushResets(t *testing.T) {
	var a Accumulator
	a.Process(finals("hello"))
	assert.Equal(t, "hello", a.Flush())

	assert.Equal(t, "", a.Flush())
	a.Process(finals("again"))
	assert.Equal(t, "again", a.Flush(), "index must reset with the session")
}
