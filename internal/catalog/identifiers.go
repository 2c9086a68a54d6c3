package catalog

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	identifierSeparatorConstant        = "-"
	itemIdentifierTemplateConstant     = "item_%d_%s"
	itemIdentifierSuffixLengthConstant = 9
	itemIdentifierAlphabetConstant     = "abcdefghijklmnopqrstuvwxyz0123456789"
	emptyIdentifierMessageConstant     = "display name does not contain any latin letters or digits"
	identifierFieldNameConstant        = "name"
)

var (
	disallowedIdentifierCharacters = regexp.MustCompile(`[^a-zA-Z0-9\s\p{Z}\-_]`)
	identifierSeparatorRuns        = regexp.MustCompile(`[\s\p{Z}_]+`)
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// NameToID derives the stable tab slug from a display name.
func NameToID(displayName string) string {
	identifier := disallowedIdentifierCharacters.ReplaceAllString(displayName, "")
	identifier = identifierSeparatorRuns.ReplaceAllString(identifier, identifierSeparatorConstant)
	return strings.Trim(strings.ToLower(identifier), identifierSeparatorConstant)
}

// DeriveID returns NameToID(displayName) or a FormatError when nothing usable remains.
func DeriveID(displayName string) (string, error) {
	identifier := NameToID(displayName)
	if len(identifier) == 0 {
		return "", FormatError{Field: identifierFieldNameConstant, Message: emptyIdentifierMessageConstant}
	}
	return identifier, nil
}

// CanonicalName upper-cases a display name the way every catalog write stores it.
func CanonicalName(displayName string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(displayName))
}

// ItemIdentifierGenerator produces block identifiers of the form item_<millis>_<suffix>.
type ItemIdentifierGenerator struct {
	clock  Clock
	random *rand.Rand
}

// NewItemIdentifierGenerator constructs a generator. A nil clock uses SystemClock and
// a nil random source uses a randomly seeded PCG source.
func NewItemIdentifierGenerator(clock Clock, random *rand.Rand) *ItemIdentifierGenerator {
	if clock == nil {
		clock = SystemClock{}
	}
	if random == nil {
		random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ItemIdentifierGenerator{clock: clock, random: random}
}

// Next returns a fresh block identifier.
func (generator *ItemIdentifierGenerator) Next() string {
	suffix := make([]byte, itemIdentifierSuffixLengthConstant)
	for index := range suffix {
		suffix[index] = itemIdentifierAlphabetConstant[generator.random.IntN(len(itemIdentifierAlphabetConstant))]
	}
	return fmt.Sprintf(itemIdentifierTemplateConstant, generator.clock.Now().UnixMilli(), string(suffix))
}
