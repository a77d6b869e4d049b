// Package storeid validates and generates store identities. A store id names
// both the remote subtree (<id>/fishes) and the local order key.
package storeid

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// ErrInvalid reports a store id that cannot be used as a remote path segment.
var ErrInvalid = errors.New("invalid store id")

const illegal = ".#$[]/"

// Validate returns the trimmed id or an error wrapping ErrInvalid.
func Validate(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalid)
	}
	for _, r := range trimmed {
		if strings.ContainsRune(illegal, r) || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalid, trimmed, r)
		}
	}
	return trimmed, nil
}

var adjectives = []string{
	"adorable", "beautiful", "clean", "drab", "elegant", "fancy", "glamorous",
	"handsome", "long", "magnificent", "old-fashioned", "plain", "quaint",
	"sparkling", "ugliest", "unsightly", "angry", "bewildered", "clumsy",
	"defeated", "embarrassed", "fierce", "grumpy", "helpless", "itchy",
	"jealous", "lazy", "mysterious", "nervous", "obnoxious", "panicky",
	"repulsive", "scary", "thoughtless", "uptight", "worried",
}

var nouns = []string{
	"women", "men", "children", "teeth", "feet", "people", "leaves", "mice",
	"geese", "halves", "knives", "wives", "lives", "elves", "loaves",
	"potatoes", "tomatoes", "cacti", "foci", "fungi", "nuclei", "syllabuses",
	"analyses", "diagnoses", "oases", "theses", "crises", "phenomena",
	"criteria", "data",
}

// Generate returns an adjective-adjective-noun name such as
// "grumpy-sparkling-geese". rng may be nil.
func Generate(rng *rand.Rand) string {
	pick := func(words []string) string {
		if rng == nil {
			return words[rand.Intn(len(words))]
		}
		return words[rng.Intn(len(words))]
	}
	return pick(adjectives) + "-" + pick(adjectives) + "-" + pick(nouns)
}
