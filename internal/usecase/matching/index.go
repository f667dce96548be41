package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/advancehq/affinity/internal/domain/tag"
)

// categoryWeight discounts matches against the category field relative
// to the tag name.
const categoryWeight = 0.3

// Candidate is a fuzzy index hit. Distance is in [0,1], 0 = exact.
type Candidate struct {
	Tag      tag.Tag
	Distance float64
}

type indexEntry struct {
	tag      tag.Tag
	name     string // folded tag name
	sorted   string // folded name with tokens sorted
	category string // folded category
}

// Index is a similarity index over one catalog snapshot. It is built
// once per snapshot and never mutated afterwards, so concurrent
// queries need no locking. Rebuilding on catalog refresh produces a
// new Index instance.
type Index struct {
	snap       *Snapshot
	generosity float64
	entries    []indexEntry
}

// NewIndex builds a fuzzy index over the snapshot. generosity is the
// maximum distance Search will surface; it is deliberately looser than
// the aggregator's acceptance threshold so normalization variants get
// a chance to surface true matches at varying literalness.
func NewIndex(snap *Snapshot, generosity float64) (*Index, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is required")
	}
	if generosity <= 0 || generosity > 1 {
		return nil, fmt.Errorf("generosity must be in (0,1], got %v", generosity)
	}

	entries := make([]indexEntry, 0, snap.Len())
	for _, t := range snap.Tags() {
		folded := fold(t.Name())
		entries = append(entries, indexEntry{
			tag:      t,
			name:     folded,
			sorted:   sortTokens(folded),
			category: fold(string(t.Category())),
		})
	}

	return &Index{snap: snap, generosity: generosity, entries: entries}, nil
}

// Search returns candidates within the index generosity, best first.
// Ties keep catalog order, so results are deterministic.
func (ix *Index) Search(query string) []Candidate {
	return ix.search(query, "", ix.generosity)
}

// SearchCategory restricts the search to one category with an explicit
// generosity, used by scoped manual lookup.
func (ix *Index) SearchCategory(query string, c tag.Category, generosity float64) []Candidate {
	return ix.search(query, c, generosity)
}

// Top returns the n closest tags regardless of distance, for
// autocomplete-style lookup with no minimum-score filtering.
func (ix *Index) Top(query string, n int) []tag.Tag {
	if n <= 0 {
		return nil
	}
	cands := ix.search(query, "", 1)
	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]tag.Tag, len(cands))
	for i, c := range cands {
		out[i] = c.Tag
	}
	return out
}

func (ix *Index) search(query string, c tag.Category, maxDist float64) []Candidate {
	q := fold(query)
	if q == "" {
		return nil
	}
	qSorted := sortTokens(q)

	var cands []Candidate
	for _, e := range ix.entries {
		if c != "" && e.tag.Category() != c {
			continue
		}
		d := e.distance(q, qSorted)
		if d <= maxDist {
			cands = append(cands, Candidate{Tag: e.tag, Distance: d})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Distance < cands[j].Distance
	})
	return cands
}

// distance computes 1 - similarity against the entry. The name is the
// primary key; the category contributes at a lower weight. Zero-length
// names never match.
func (e indexEntry) distance(q, qSorted string) float64 {
	if e.name == "" {
		return 1
	}
	sim := similarity(q, e.name)
	if s := similarity(qSorted, e.sorted); s > sim {
		sim = s
	}
	if e.category != "" {
		if s := categoryWeight * similarity(q, e.category); s > sim {
			sim = s
		}
	}
	return 1 - sim
}

// similarity blends Jaro-Winkler (misspellings, shared prefixes) with
// Sørensen-Dice bigrams (word-order variation, partial overlap) and
// keeps the stronger signal.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	sim := float64(edlib.JaroWinklerSimilarity(a, b))
	if d := float64(edlib.SorensenDiceCoefficient(a, b, 2)); d > sim {
		sim = d
	}
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim
}

// fold lowercases, drops apostrophes, and maps the remaining
// punctuation to single spaces ("Men's Hockey" -> "mens hockey").
func fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			// join possessives
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r > 127 && !isSeparator(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

func isSeparator(r rune) bool {
	switch r {
	case '—', '–', '·', '…':
		return true
	}
	return false
}

// sortTokens orders the words of a folded string, giving a
// word-order-insensitive form for comparison.
func sortTokens(folded string) string {
	toks := strings.Fields(folded)
	if len(toks) < 2 {
		return folded
	}
	sort.Strings(toks)
	return strings.Join(toks, " ")
}
