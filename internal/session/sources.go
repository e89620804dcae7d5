package session

import (
	"regexp"
	"strings"
)

// urlPattern matches explicit web references embedded in a query. Bare domains
// without a scheme or www prefix are deliberately not matched; treating every
// dotted token as a source mangles ordinary questions.
var urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// ExtractSourceRefs pulls source references out of an inbound query and
// returns them together with the remaining cleaned question. Trailing
// punctuation stuck to a reference is stripped.
func ExtractSourceRefs(text string) ([]string, string) {
	refs := urlPattern.FindAllString(text, -1)
	for i, ref := range refs {
		refs[i] = strings.TrimRight(ref, ".,;:!?)")
	}

	cleaned := urlPattern.ReplaceAllString(text, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return refs, cleaned
}
