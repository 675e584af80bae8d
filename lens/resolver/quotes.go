package resolver

import "strings"

// quotePairs maps opening quote runes to the closing runes they accept.
// Straight quotes close with themselves, curly quotes with their pair.
var quotePairs = map[rune][]rune{
	'"':  {'"'},
	'\'': {'\''},
	'“':  {'”'},
	'‘':  {'’'},
}

// FirstQuotedRun returns the first quoted substring of text, without the
// quotes, and whether one was found. Empty or whitespace-only quoted runs
// are skipped.
func FirstQuotedRun(text string) (string, bool) {
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		closers, ok := quotePairs[runes[i]]
		if !ok {
			i++
			continue
		}
		end := -1
		for j := i + 1; j < len(runes) && end < 0; j++ {
			for _, c := range closers {
				if runes[j] == c {
					end = j
					break
				}
			}
		}
		if end < 0 {
			// Unterminated quote: treat the opener as plain text.
			i++
			continue
		}
		inner := strings.TrimSpace(string(runes[i+1 : end]))
		if inner != "" {
			return inner, true
		}
		i = end + 1
	}
	return "", false
}
