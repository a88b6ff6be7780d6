package identification

import (
	"regexp"
	"strings"

	"povcat/internal/textutil"
)

const (
	minTokenLength = 3
	maxTokenLength = 16
)

var (
	noiseWordPattern = regexp.MustCompile(`(?i)\b(?:pov|demo|highlights|vs)\b`)
	noisePunctuation = strings.NewReplacer("/", " ", `\`, " ", "|", " ")
	tokenPattern     = regexp.MustCompile(`[A-Za-z0-9_-]+`)
)

// Tokens is the result of tokenizing one title.
type Tokens struct {
	// Candidates are nickname-shaped tokens in order of first occurrence.
	Candidates []string
	// Map is the detected map name, or "" when the title names none.
	Map string
}

// Tokenize extracts candidates and the map from title. Candidates are maximal
// runs of letters, digits, underscores, and hyphens left after noise removal,
// with leading and trailing hyphens trimmed, kept when 3 to 16 characters
// long, and de-duplicated ignoring case.
func Tokenize(title string) Tokens {
	cleaned := noisePunctuation.Replace(title)
	cleaned = noiseWordPattern.ReplaceAllString(cleaned, " ")

	var (
		candidates []string
		seen       = map[string]struct{}{}
	)
	for _, raw := range tokenPattern.FindAllString(cleaned, -1) {
		token := strings.Trim(raw, "-")
		if len(token) < minTokenLength || len(token) > maxTokenLength {
			continue
		}
		key := textutil.Fold(token)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, token)
	}

	return Tokens{Candidates: candidates, Map: DetectMap(title)}
}
