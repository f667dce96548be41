package matching

import (
	"strings"
	"unicode"
)

// minScanTokenLen drops short stopword-like tokens from the scan.
const minScanTokenLen = 3

// ScanTranscript returns the names of catalog tags literally present in
// the raw transcript. A tag counts as present when every token of its
// name has at least one transcript token related by bidirectional
// containment, which tolerates pluralization and stemming variance
// ("games" covers "game"). Recovered names are fed back into the
// aggregator as transcript-derived interest phrases, catching tags the
// upstream extraction step summarized away.
func ScanTranscript(rawText string, snap *Snapshot) []string {
	words := scanTokens(rawText)
	if len(words) == 0 {
		return nil
	}

	var names []string
	for _, t := range snap.Tags() {
		tagToks := scanTokens(t.Name())
		if len(tagToks) == 0 {
			continue
		}
		if allTokensPresent(tagToks, words) {
			names = append(names, t.Name())
		}
	}
	return names
}

func allTokensPresent(tagToks, words []string) bool {
	for _, tt := range tagToks {
		found := false
		for _, w := range words {
			if strings.Contains(w, tt) || strings.Contains(tt, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// scanTokens lowercases and splits on non-word runes, discarding
// tokens shorter than minScanTokenLen.
func scanTokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= minScanTokenLen {
			out = append(out, f)
		}
	}
	return out
}
