package phonetic

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"github.com/sonafind/sonafind/core"
)

// Encode derives the sound-alike code for a piece of text.
//
// Text is split on non-letter boundaries, so digits and punctuation never
// reach the encoder. Each token is double-metaphone encoded into a primary
// code and, where the spelling admits more than one plausible pronunciation,
// an alternate code. Encoding is deterministic and total: any input,
// including the empty string, yields a (possibly empty) code.
func Encode(text string) core.PhoneticCode {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return core.PhoneticCode{}
	}

	code := core.PhoneticCode{
		Primary:   make([]string, 0, len(tokens)),
		Alternate: make([]string, 0, len(tokens)),
	}
	for _, token := range tokens {
		primary, alternate := matchr.DoubleMetaphone(token)
		primary = strings.ToUpper(primary)
		alternate = strings.ToUpper(alternate)
		if primary == "" {
			continue
		}
		if alternate == primary {
			alternate = ""
		}
		code.Primary = append(code.Primary, primary)
		code.Alternate = append(code.Alternate, alternate)
	}
	return code
}

// Similarity scores how alike two codes sound, in [0, 1].
//
// A token matches the other code when its primary or alternate equals the
// primary or alternate of any token there. The score is the fraction of
// matching tokens across both codes, so it is symmetric, reaches 1 exactly
// when every token on both sides finds a match, and is 0 when no token pair
// matches or either code is empty.
func Similarity(a, b core.PhoneticCode) float64 {
	return score(a, b, 0)
}

// SimilarityTolerant behaves like Similarity but additionally grants half
// credit to token pairs whose codes are within maxEdits edit operations of
// each other. This absorbs near-miss encodings of heavily misspelled brand
// names. With maxEdits <= 0 it is identical to Similarity.
func SimilarityTolerant(a, b core.PhoneticCode, maxEdits int) float64 {
	if maxEdits < 0 {
		maxEdits = 0
	}
	return score(a, b, maxEdits)
}

func score(a, b core.PhoneticCode, maxEdits int) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return 0
	}

	var total float64
	total += matchedTokens(a, b, maxEdits)
	total += matchedTokens(b, a, maxEdits)
	return total / float64(a.Tokens()+b.Tokens())
}

// matchedTokens sums per-token credit for tokens of a against the whole of b:
// 1 for an exact code match, 0.5 for a within-tolerance match.
func matchedTokens(a, b core.PhoneticCode, maxEdits int) float64 {
	var sum float64
	for i := range a.Primary {
		best := 0.0
		for _, ac := range tokenCodes(a, i) {
			for j := range b.Primary {
				for _, bc := range tokenCodes(b, j) {
					if ac == bc {
						best = 1
					} else if maxEdits > 0 && best < 0.5 && matchr.Levenshtein(ac, bc) <= maxEdits {
						best = 0.5
					}
				}
				if best == 1 {
					break
				}
			}
			if best == 1 {
				break
			}
		}
		sum += best
	}
	return sum
}

func tokenCodes(c core.PhoneticCode, i int) []string {
	if i < len(c.Alternate) && c.Alternate[i] != "" {
		return []string{c.Primary[i], c.Alternate[i]}
	}
	return []string{c.Primary[i]}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
