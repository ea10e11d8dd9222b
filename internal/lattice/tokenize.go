// Vidrank - Video Search and Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidrank

package lattice

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits text into case-folded whitespace-separated words.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	// cases.Caser keeps state, so one per call.
	folded := cases.Fold().String(norm.NFKC.String(text))
	return strings.Fields(folded)
}

// foldToken normalizes a single query token. Anything that is not exactly
// one word after folding yields "".
func foldToken(token string) string {
	words := Tokenize(token)
	if len(words) != 1 {
		return ""
	}
	return words[0]
}

func countWord(words []string, token string) int {
	n := 0
	for _, w := range words {
		if w == token {
			n++
		}
	}
	return n
}
