// Package suggest provides "did you mean" matching for mistyped flags and
// config keys using Levenshtein distance.
package suggest

import (
	"sort"
	"strings"
)

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Closest returns up to three candidates near unknown, best first.
// Leading dashes are ignored on both sides.
func Closest(unknown string, candidates []string) []string {
	unknown = strings.ToLower(strings.TrimLeft(unknown, "-"))

	type scored struct {
		value string
		dist  int
	}
	var found []scored
	maxDist := max(2, len(unknown)/2)
	for _, c := range candidates {
		d := levenshtein(unknown, strings.ToLower(strings.TrimLeft(c, "-")))
		if d <= maxDist {
			found = append(found, scored{c, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].dist < found[j].dist })

	var out []string
	for i := 0; i < len(found) && i < 3; i++ {
		out = append(out, found[i].value)
	}
	return out
}

// flagHints maps flags people commonly try to what sip actually takes
var flagHints = map[string]string{
	"day":    "--date, -d",
	"on":     "--date, -d",
	"when":   "--date, -d",
	"amount": "pass it as an argument: sip add 500ml",
	"ml":     "pass it as an argument: sip add 500ml",
	"force":  "--yes, -y (sip clear)",
	"y":      "--yes (sip clear)",
	"week":   "--offset, -o (sip history)",
	"weeks":  "--offset, -o (sip history)",
	"md":     "--markdown (sip history)",
	"quiet":  "use: sip config set notify.quiet true",
}

// FlagHint returns a hint for a commonly misused flag, or ""
func FlagHint(flag string) string {
	flag = strings.ToLower(strings.TrimLeft(flag, "-"))
	return flagHints[flag]
}
