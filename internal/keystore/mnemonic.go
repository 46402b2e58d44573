package keystore

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

//nolint:gochecknoglobals // compiled once
var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

//nolint:gochecknoglobals // built once from the immutable word list
var wordSet = sync.OnceValue(func() map[string]struct{} {
	words := bip39.GetWordList()
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
})

// MaxTypoDistance is the largest edit distance offered as a suggestion.
const MaxTypoDistance = 2

// NormalizeMnemonic lowercases input and strips list numbering, bullets
// and commas that appear when a phrase is pasted from notes.
func NormalizeMnemonic(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// LooksLikeMnemonic reports whether input is a word phrase rather than an
// encoded private key.
func LooksLikeMnemonic(input string) bool {
	return len(strings.Fields(NormalizeMnemonic(input))) >= 12
}

// ValidateMnemonic checks word count, word list membership and checksum.
// Misspelled words are reported with suggestions.
func ValidateMnemonic(mnemonic string) error {
	normalized := NormalizeMnemonic(mnemonic)
	switch len(strings.Fields(normalized)) {
	case 12, 15, 18, 21, 24:
	default:
		return janitorerr.Wrap(janitorerr.ErrInvalidMnemonic, "expected 12 to 24 words")
	}
	if typos := DetectTypos(normalized); len(typos) > 0 {
		return janitorerr.WithSuggestion(janitorerr.ErrInvalidMnemonic, FormatTypos(typos))
	}
	if !bip39.IsMnemonicValid(normalized) {
		return janitorerr.Wrap(janitorerr.ErrInvalidMnemonic, "checksum mismatch")
	}
	return nil
}

// MnemonicToSeed validates mnemonic and returns its 64-byte BIP39 seed.
// The caller should Zero the seed after use.
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	seed, err := bip39.NewSeedWithErrorChecking(NormalizeMnemonic(mnemonic), passphrase)
	if err != nil {
		return nil, janitorerr.Wrap(janitorerr.ErrInvalidMnemonic, "%v", err)
	}
	return seed, nil
}

// TypoInfo describes one word that is not in the BIP39 list.
type TypoInfo struct {
	Index      int    // 0-based position in the phrase
	Word       string // word as entered
	Suggestion string // closest list word, empty if none is close
}

// SuggestWord returns the closest BIP39 word within MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)
	best, bestDist := "", math.MaxInt
	for _, word := range bip39.GetWordList() {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < bestDist {
			best, bestDist = word, dist
		}
	}
	if bestDist <= MaxTypoDistance {
		return best
	}
	return ""
}

// DetectTypos lists the words of mnemonic that are not in the word list.
func DetectTypos(mnemonic string) []TypoInfo {
	words := wordSet()
	var typos []TypoInfo
	for i, word := range strings.Fields(NormalizeMnemonic(mnemonic)) {
		if _, ok := words[word]; ok {
			continue
		}
		typos = append(typos, TypoInfo{Index: i, Word: word, Suggestion: SuggestWord(word)})
	}
	return typos
}

// FormatTypos renders typos one per line.
func FormatTypos(typos []TypoInfo) string {
	lines := make([]string, 0, len(typos))
	for _, t := range typos {
		line := "word " + strconv.Itoa(t.Index+1) + ": '" + t.Word + "'"
		if t.Suggestion != "" {
			line += " - did you mean '" + t.Suggestion + "'?"
		} else {
			line += " is not a BIP39 word"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
