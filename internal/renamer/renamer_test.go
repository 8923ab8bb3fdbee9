package renamer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementSequence(t *testing.T) {
	counter := ""
	var sequence []string
	for i := 0; i < 56; i++ {
		counter = increment(counter)
		sequence = append(sequence, counter)
	}

	// a..z, A..Z, then the counter grows
	assert.Equal(t, "a", sequence[0])
	assert.Equal(t, "z", sequence[25])
	assert.Equal(t, "A", sequence[26])
	assert.Equal(t, "Z", sequence[51])
	assert.Equal(t, "aa", sequence[52])
	assert.Equal(t, "ab", sequence[53])
	assert.Equal(t, "ac", sequence[54])
	assert.Equal(t, "ad", sequence[55])
}

func TestIncrementCarry(t *testing.T) {
	// The last column cycles a..z, A..Z, 0..9, then carries left
	assert.Equal(t, "aA", increment("az"))
	assert.Equal(t, "a0", increment("aZ"))
	assert.Equal(t, "a1", increment("a0"))
	assert.Equal(t, "ba", increment("a9"))
	assert.Equal(t, "ca", increment("b9"))
	assert.Equal(t, "za", increment("y9"))
	assert.Equal(t, "Aa", increment("z9"))
}

// The reserved words are spelled out here on purpose: asserting against the
// allocator's own skip-set would pass even if an entry went missing from it.
var reservedShortIDs = []string{
	"in", "to", "of", "or", "and", "not", "from",
	"em", "ex", "ch", "pt", "pc", "cm", "mm", "px",
	"vh", "vw", "rem", "deg", "rad", "s", "ms", "q",
}

func TestNoLeadingDigitsAndNoKeywords(t *testing.T) {
	reserved := make(map[string]bool)
	for _, word := range reservedShortIDs {
		reserved[word] = true
	}

	table := Table{}
	seen := make(map[string]bool)
	for i := 0; i < 2000; i++ {
		id := table.nextShortID()
		require.NotEmpty(t, id)
		assert.False(t, id[0] >= '0' && id[0] <= '9', "id %q starts with a digit", id)
		assert.False(t, reserved[id], "id %q is a CSS keyword or unit", id)
		assert.False(t, seen[id], "id %q allocated twice", id)
		seen[id] = true
	}
}

func TestInternSharesCells(t *testing.T) {
	table := Table{}
	first := table.Intern("foo", false)
	second := table.Intern("foo", true)

	assert.Same(t, first, second)
	assert.Equal(t, uint32(2), second.Count)
	assert.True(t, second.Defined)
	assert.Equal(t, 1, table.Len())
}

func TestGenerateNamesWritesThroughCells(t *testing.T) {
	table := Table{}
	entry := table.Intern("original-name", true)
	cell := entry.Cell

	renamed := table.GenerateNames()
	require.Len(t, renamed, 1)
	assert.Equal(t, "original-name", renamed[0].Original)
	assert.Equal(t, "a", renamed[0].Short)
	assert.Equal(t, "a", *cell)
}

func TestGenerateNamesInsertionOrder(t *testing.T) {
	// At 52 entries or fewer, allocation follows insertion order
	table := Table{}
	for i := 0; i < 3; i++ {
		table.Intern(fmt.Sprintf("name%d", i), true)
	}
	renamed := table.GenerateNames()
	assert.Equal(t, "a", renamed[0].Short)
	assert.Equal(t, "b", renamed[1].Short)
	assert.Equal(t, "c", renamed[2].Short)
}

func TestGenerateNamesWeightSorted(t *testing.T) {
	// Beyond 52 entries the heaviest name (length x usage count) gets the
	// shortest id
	table := Table{}
	for i := 0; i < 60; i++ {
		table.Intern(fmt.Sprintf("name-%02d", i), true)
	}
	heavy := table.Intern("very-long-and-frequently-used-name", true)
	for i := 0; i < 100; i++ {
		table.Intern("very-long-and-frequently-used-name", false)
	}

	table.GenerateNames()
	assert.Equal(t, "a", *heavy.Cell)
}
