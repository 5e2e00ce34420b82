package rules

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hari-N-2005/FileOps/internal/config"
	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

func ready(base, ext string) pipeline.ReadyFile {
	return pipeline.ReadyFile{Path: "/watch/" + base, Base: base, Ext: ext}
}

func mustSet(t *testing.T, cfgRules []config.Rule) *Set {
	t.Helper()
	set, err := NewSet(cfgRules)
	require.NoError(t, err)
	return set
}

func TestFirstMatchWins(t *testing.T) {
	set := mustSet(t, []config.Rule{
		{Name: "first", Extensions: []string{".pdf"}, Destination: "/docs/a", Enabled: true},
		{Name: "second", Extensions: []string{".pdf"}, Destination: "/docs/b", Enabled: true},
	})
	e := NewEngine(set)

	dest, rule, ok := e.Evaluate(ready("report.pdf", ".pdf"))
	require.True(t, ok)
	assert.Equal(t, "first", rule)
	assert.Equal(t, "/docs/a", dest)
}

func TestDisabledRuleSkipped(t *testing.T) {
	set := mustSet(t, []config.Rule{
		{Name: "off", Extensions: []string{".pdf"}, Destination: "/docs/a", Enabled: false},
		{Name: "on", Extensions: []string{".pdf"}, Destination: "/docs/b", Enabled: true},
	})
	e := NewEngine(set)

	dest, rule, ok := e.Evaluate(ready("report.pdf", ".pdf"))
	require.True(t, ok)
	assert.Equal(t, "on", rule)
	assert.Equal(t, "/docs/b", dest)
}

func TestExtensionMatchingIsCaseInsensitive(t *testing.T) {
	set := mustSet(t, []config.Rule{
		{Name: "docs", Extensions: []string{".PDF"}, Destination: "/docs", Enabled: true},
	})
	e := NewEngine(set)

	_, _, ok := e.Evaluate(ready("REPORT.Pdf", ".Pdf"))
	assert.True(t, ok)
}

func TestExtensionNormalization(t *testing.T) {
	// extensions may be configured without the leading dot
	set := mustSet(t, []config.Rule{
		{Name: "docs", Extensions: []string{"pdf"}, Destination: "/docs", Enabled: true},
	})
	e := NewEngine(set)

	_, _, ok := e.Evaluate(ready("report.pdf", ".pdf"))
	assert.True(t, ok)
}

func TestNamePatternMatching(t *testing.T) {
	set := mustSet(t, []config.Rule{
		{Name: "invoices", NamePatterns: []string{"invoice*"}, Destination: "/invoices", Enabled: true},
	})
	e := NewEngine(set)

	_, _, ok := e.Evaluate(ready("Invoice-2024.xlsx", ".xlsx"))
	assert.True(t, ok, "patterns match case-insensitively on the base name")

	_, _, ok = e.Evaluate(ready("report.xlsx", ".xlsx"))
	assert.False(t, ok)
}

func TestNoMatch(t *testing.T) {
	set := mustSet(t, []config.Rule{
		{Name: "docs", Extensions: []string{".pdf"}, Destination: "/docs", Enabled: true},
	})
	e := NewEngine(set)

	_, _, ok := e.Evaluate(ready("movie.mkv", ".mkv"))
	assert.False(t, ok)
}

func TestInvalidPatternRejected(t *testing.T) {
	_, err := NewSet([]config.Rule{
		{Name: "bad", NamePatterns: []string{"[unclosed"}, Destination: "/x", Enabled: true},
	})
	assert.Error(t, err)
}

// TestSwapAtomicity hammers Evaluate while the set is swapped between
// two complete snapshots. Every evaluation must land on one of the two
// valid destinations, never a mixed intermediate state.
func TestSwapAtomicity(t *testing.T) {
	setA := mustSet(t, []config.Rule{
		{Name: "a", Extensions: []string{".pdf"}, Destination: "/a", Enabled: true},
	})
	setB := mustSet(t, []config.Rule{
		{Name: "b1", Extensions: []string{".pdf"}, Destination: "/b", Enabled: true},
		{Name: "b2", Extensions: []string{".txt"}, Destination: "/b", Enabled: true},
		{Name: "b3", Extensions: []string{".png"}, Destination: "/b", Enabled: true},
	})

	e := NewEngine(setA)
	file := ready("report.pdf", ".pdf")

	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			if i%2 == 0 {
				e.Swap(setB)
			} else {
				e.Swap(setA)
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		dest, _, ok := e.Evaluate(file)
		require.True(t, ok)
		require.Contains(t, []string{"/a", "/b"}, dest)
	}

	close(done)
	wg.Wait()
}

func TestSetCounts(t *testing.T) {
	set := mustSet(t, []config.Rule{
		{Name: "a", Extensions: []string{".pdf"}, Destination: "/a", Enabled: true},
		{Name: "b", Extensions: []string{".txt"}, Destination: "/b", Enabled: false},
	})
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 1, set.EnabledCount())
}
