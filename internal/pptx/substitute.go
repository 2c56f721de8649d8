// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pptx

import (
	"sort"
	"strings"
)

const (
	tokenOpen  = "{{"
	tokenClose = "}}"
)

// SubstituteRuns replaces {{token}} occurrences across a paragraph's run
// texts. PowerPoint splits visually contiguous text into runs at arbitrary
// formatting boundaries, so a token may span several runs. Each replacement
// value is written into the run where its token opened; the token's bytes in
// later runs are cleared. Text outside tokens stays in its original run, so
// formatting boundaries survive.
//
// lookup returns the replacement for a token name and whether it is known.
// Unknown tokens are left verbatim. Matching is a single literal pass:
// replacement values are never rescanned.
func SubstituteRuns(runs []string, lookup func(token string) (string, bool)) ([]string, bool) {
	full := strings.Join(runs, "")
	if !strings.Contains(full, tokenOpen) {
		out := make([]string, len(runs))
		copy(out, runs)
		return out, false
	}

	// starts[i] is the offset of run i in the joined string.
	starts := make([]int, len(runs))
	off := 0
	for i, r := range runs {
		starts[i] = off
		off += len(r)
	}
	runAt := func(pos int) int {
		// Last run starting at or before pos; empty runs never own bytes.
		i := sort.Search(len(starts), func(i int) bool { return starts[i] > pos }) - 1
		for i < len(runs)-1 && starts[i+1] <= pos {
			i++
		}
		return i
	}

	out := make([]strings.Builder, len(runs))
	// appendSpan distributes full[a:b] back onto the runs that own it.
	appendSpan := func(a, b int) {
		for a < b {
			i := runAt(a)
			end := len(full)
			if i < len(runs)-1 {
				end = starts[i+1]
			}
			if end > b {
				end = b
			}
			out[i].WriteString(full[a:end])
			a = end
		}
	}

	changed := false
	pos := 0
	for {
		open := strings.Index(full[pos:], tokenOpen)
		if open < 0 {
			break
		}
		open += pos
		term := strings.Index(full[open+len(tokenOpen):], tokenClose)
		if term < 0 {
			break
		}
		term += open + len(tokenOpen)

		value, known := lookup(full[open+len(tokenOpen) : term])
		if !known {
			// Leave the braces in place and keep scanning past them, so a
			// later "{{" still opens a token.
			appendSpan(pos, open+len(tokenOpen))
			pos = open + len(tokenOpen)
			continue
		}

		appendSpan(pos, open)
		out[runAt(open)].WriteString(value)
		pos = term + len(tokenClose)
		changed = true
	}
	appendSpan(pos, len(full))

	result := make([]string, len(runs))
	for i := range out {
		result[i] = out[i].String()
	}
	return result, changed
}
