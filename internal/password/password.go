// Package password generates random passwords and estimates the strength of
// user-chosen ones.
package password

import (
	"crypto/rand"
	_ "embed"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode"
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.?/"
	ambiguous   = "Il1O0o"
)

// Length limits for generated passwords.
const (
	MinLength = 4
	MaxLength = 128
)

// Options selects the length and character classes of a generated password.
type Options struct {
	Length           int  `json:"length"`
	Lower            bool `json:"lower"`
	Upper            bool `json:"upper"`
	Digits           bool `json:"digits"`
	Symbols          bool `json:"symbols"`
	ExcludeAmbiguous bool `json:"exclude_ambiguous"`
}

// DefaultOptions returns a 16 character password using every class.
func DefaultOptions() Options {
	return Options{Length: 16, Lower: true, Upper: true, Digits: true, Symbols: true}
}

// Generator produces passwords from a source of random bytes.
type Generator struct {
	random io.Reader
}

// NewGenerator creates a Generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{random: rand.Reader}
}

// NewGeneratorWithSource creates a Generator reading randomness from r.
func NewGeneratorWithSource(r io.Reader) *Generator {
	return &Generator{random: r}
}

// Generate returns a password of the requested length containing at least
// one character from every selected class.
func Generate(opts Options) (string, error) {
	return NewGenerator().Generate(opts)
}

// Generate returns a password of the requested length containing at least
// one character from every selected class.
func (g *Generator) Generate(opts Options) (string, error) {
	if opts.Length < MinLength || opts.Length > MaxLength {
		return "", fmt.Errorf("length must be between %d and %d, got %d", MinLength, MaxLength, opts.Length)
	}

	classes := opts.classes()
	if len(classes) == 0 {
		return "", fmt.Errorf("at least one character class must be selected")
	}

	out := make([]byte, 0, opts.Length)
	for _, class := range classes {
		c, err := g.pick(class)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	all := strings.Join(classes, "")
	for len(out) < opts.Length {
		c, err := g.pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	if err := g.shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func (o Options) classes() []string {
	var classes []string
	for _, c := range []struct {
		on    bool
		chars string
	}{
		{o.Lower, lowerChars},
		{o.Upper, upperChars},
		{o.Digits, digitChars},
		{o.Symbols, symbolChars},
	} {
		if !c.on {
			continue
		}
		chars := c.chars
		if o.ExcludeAmbiguous {
			chars = strings.Map(func(r rune) rune {
				if strings.ContainsRune(ambiguous, r) {
					return -1
				}
				return r
			}, chars)
		}
		classes = append(classes, chars)
	}
	return classes
}

func (g *Generator) intn(n int) (int, error) {
	v, err := rand.Int(g.random, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read random data: %w", err)
	}
	return int(v.Int64()), nil
}

func (g *Generator) pick(chars string) (byte, error) {
	i, err := g.intn(len(chars))
	if err != nil {
		return 0, err
	}
	return chars[i], nil
}

func (g *Generator) shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := g.intn(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

//go:embed common.txt
var commonList string

var common = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonList, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			set[line] = struct{}{}
		}
	}
	return set
}()

// IsCommon reports whether pw (case-insensitively) appears in the list of
// frequently used passwords.
func IsCommon(pw string) bool {
	_, ok := common[strings.ToLower(pw)]
	return ok
}

// Strength is the result of checking a password.
type Strength struct {
	Score       int      `json:"score"` // 0 (very weak) to 4 (very strong)
	Label       string   `json:"label"`
	Common      bool     `json:"common"`
	Suggestions []string `json:"suggestions,omitempty"`
}

var labels = [...]string{"very weak", "weak", "fair", "strong", "very strong"}

// Check scores pw by length and character variety. Common passwords and
// single repeated characters always score 0.
func Check(pw string) Strength {
	if pw == "" {
		return Strength{Label: labels[0], Suggestions: []string{"Enter a password"}}
	}
	if IsCommon(pw) {
		return Strength{
			Label:       labels[0],
			Common:      true,
			Suggestions: []string{"This is one of the most common passwords; choose something unique"},
		}
	}

	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	classes := 0
	for _, on := range []bool{lower, upper, digit, symbol} {
		if on {
			classes++
		}
	}

	length := len([]rune(pw))
	score := 0
	for _, threshold := range []int{8, 12, 16} {
		if length >= threshold {
			score++
		}
	}
	if classes >= 3 {
		score++
	}
	if classes == 4 {
		score++
	}
	if classes == 1 {
		score = min(score, 2)
	}
	if strings.Count(pw, string([]rune(pw)[0])) == length {
		score = 0
	}
	score = min(score, 4)

	var suggestions []string
	if length < 12 {
		suggestions = append(suggestions, "Use at least 12 characters")
	}
	if !upper || !lower {
		suggestions = append(suggestions, "Mix upper and lower case letters")
	}
	if !digit {
		suggestions = append(suggestions, "Add a number")
	}
	if !symbol {
		suggestions = append(suggestions, "Add a symbol")
	}

	return Strength{Score: score, Label: labels[score], Suggestions: suggestions}
}
