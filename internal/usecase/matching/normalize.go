package matching

import (
	"regexp"
	"strings"
)

// boilerplatePrefixes are lead-ins the extraction step tends to keep
// ("Support for the Arts") that the catalog vocabulary never uses.
var boilerplatePrefixes = []string{
	"friends of",
	"support for",
	"supporting",
	"funding for",
	"donations to",
	"donation to",
	"gifts to",
	"gift to",
}

// genericSuffixes are trailing nouns that add no matching signal.
var genericSuffixes = []string{
	"program",
	"initiative",
	"fund",
	"foundation",
	"department",
	"college",
	"school",
}

// synonymSiblings maps a trigger substring to catalog-style sibling
// names. The catalog often splits an interest by gender or qualifier
// ("Men's Hockey") where the extracted phrase does not. Ordered so
// variant output stays deterministic.
var synonymSiblings = []struct {
	trigger  string
	siblings []string
}{
	{"ice hockey", []string{"Men's Hockey", "Women's Hockey", "Hockey"}},
	{"basketball", []string{"Men's Basketball", "Women's Basketball"}},
	{"soccer", []string{"Men's Soccer", "Women's Soccer"}},
}

// trailingAt matches institutional affiliation fragments like "at Lakeview".
var trailingAt = regexp.MustCompile(`(?i)\s+at\s+\S+$`)

var spaceRun = regexp.MustCompile(`\s{2,}`)

// Normalizer expands an interest phrase into search variants to improve
// match recall. It is pure and deterministic.
type Normalizer struct {
	institution  string
	abbreviation string
}

// NewNormalizer creates a Normalizer. institution and abbreviation are
// the school's own name and short form; both may be empty.
func NewNormalizer(institution, abbreviation string) *Normalizer {
	return &Normalizer{institution: institution, abbreviation: abbreviation}
}

// Normalize returns the phrase followed by progressively cleaned
// variants. The first element is always the unmodified phrase, so
// every input yields at least one searchable variant. Rules chain:
// each rule works on the previous rule's output and contributes at
// most one extra variant; synonym siblings are appended standalone.
func (n *Normalizer) Normalize(phrase string) []string {
	variants := []string{phrase}
	cur := phrase

	if v := stripBoilerplatePrefix(cur); v != "" && v != cur {
		variants = append(variants, v)
		cur = v
	}
	if v := stripGenericSuffix(cur); v != "" && v != cur {
		variants = append(variants, v)
		cur = v
	}
	if v := n.stripInstitution(cur); v != "" && v != cur {
		variants = append(variants, v)
	}

	lower := strings.ToLower(phrase)
	for _, group := range synonymSiblings {
		if strings.Contains(lower, group.trigger) {
			variants = append(variants, group.siblings...)
		}
	}

	return dedupeVariants(variants)
}

// stripBoilerplatePrefix removes a phrase-initial boilerplate lead-in
// and any article it introduced ("Funding for the Arts" -> "Arts").
func stripBoilerplatePrefix(s string) string {
	lower := strings.ToLower(s)
	for _, p := range boilerplatePrefixes {
		if !strings.HasPrefix(lower, p+" ") {
			continue
		}
		rest := strings.TrimSpace(s[len(p):])
		if low := strings.ToLower(rest); strings.HasPrefix(low, "the ") {
			rest = strings.TrimSpace(rest[len("the "):])
		}
		return rest
	}
	return s
}

// stripGenericSuffix removes trailing generic nouns, repeatedly, so
// "Scholarship Fund Program" reduces to "Scholarship" in one variant.
func stripGenericSuffix(s string) string {
	cur := s
	for {
		lower := strings.ToLower(cur)
		stripped := false
		for _, suf := range genericSuffixes {
			if lower == suf {
				// Nothing would remain; keep the noun.
				return cur
			}
			if strings.HasSuffix(lower, " "+suf) {
				cur = strings.TrimSpace(cur[:len(cur)-len(suf)])
				stripped = true
				break
			}
		}
		if !stripped {
			return cur
		}
	}
}

// stripInstitution removes trailing "at <word>" fragments and literal
// occurrences of the institution's name or abbreviation.
func (n *Normalizer) stripInstitution(s string) string {
	out := trailingAt.ReplaceAllString(s, "")
	out = removeFold(out, n.institution)
	out = removeFold(out, n.abbreviation)
	out = spaceRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// removeFold deletes every case-insensitive occurrence of sub from s.
func removeFold(s, sub string) string {
	if sub == "" {
		return s
	}
	lowerSub := strings.ToLower(sub)
	for {
		idx := strings.Index(strings.ToLower(s), lowerSub)
		if idx < 0 {
			return s
		}
		s = s[:idx] + s[idx+len(sub):]
	}
}

// dedupeVariants drops empty strings and duplicates, preserving order.
// The original phrase is at index 0 and is never dropped.
func dedupeVariants(variants []string) []string {
	out := variants[:0:0]
	seen := make(map[string]struct{}, len(variants))
	for i, v := range variants {
		if i > 0 && strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
