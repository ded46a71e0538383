package layout

import (
	"golang.org/x/text/unicode/bidi"
)

// DetectRTL reports whether the first strong directional character of text is right-to-left.
// Text without strong characters (digits, punctuation) is treated as left-to-right.
func DetectRTL(text string) bool {
	for _, r := range text {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.R, bidi.AL:
			return true
		case bidi.L:
			return false
		}
	}
	return false
}
