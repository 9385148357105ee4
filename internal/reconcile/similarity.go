package reconcile

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^a-z0-9]+`)

	accentFolder = strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
		"é", "e", "ê", "e", "è", "e",
		"í", "i", "î", "i",
		"ó", "o", "ô", "o", "õ", "o", "ö", "o",
		"ú", "u", "ü", "u",
		"ç", "c", "º", "o", "ª", "a",
	)
)

// NormalizeName lower-cases s, folds Portuguese accents and collapses every
// run of non-alphanumerics into a single space.
func NormalizeName(s string) string {
	s = accentFolder.Replace(strings.ToLower(s))
	s = reNonWord.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits a normalized name into words of at least two runes.
func Tokenize(s string) []string {
	parts := strings.Fields(NormalizeName(s))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if len([]rune(p)) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

// DiceCoefficient is the Sorensen-Dice similarity of the character bigrams of a and b.
func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}

// TokenJaccard is |A∩B| / |A∪B| over the word sets of a and b.
func TokenJaccard(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	union := len(set)
	inter := 0
	seen := map[string]bool{}
	for _, t := range tb {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// Similarity scores two product names in [0, 1], taking the higher of the
// bigram and word-set measures so reordered words still score well.
func Similarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	dice := DiceCoefficient(na, nb)
	if j := TokenJaccard(na, nb); j > dice {
		return j
	}
	return dice
}
