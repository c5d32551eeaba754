// Package extract derives structured signals from free-text athlete notes
// using fixed heuristics. Extraction is deterministic, does no I/O, and
// never fails: text that carries no cue simply yields absent fields.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kerfich/athlete-context-mcp/internal/models"
)

// Numeric cue patterns, ordered: an explicit "label: number" form wins over
// a bare "number/10" form. Matching runs on the lower-cased text.
var (
	rpePatterns = []*regexp.Regexp{
		regexp.MustCompile(`rpe\s*[:=]?\s*(\d{1,2})`),
		regexp.MustCompile(`(\d)\s*/\s*10\b`),
		regexp.MustCompile(`ressenti\s*(\d)/10`),
	}
	stressPatterns = []*regexp.Regexp{
		regexp.MustCompile(`stress\s*[:=]?\s*(\d{1,2})`),
		regexp.MustCompile(`stress\s*(\d)/10`),
	}
	sleepPatterns = []*regexp.Regexp{
		regexp.MustCompile(`sommeil\s*[:=]?\s*(\d{1,2})`),
		regexp.MustCompile(`sleep\s*[:=]?\s*(\d{1,2})`),
	}
)

// Social context keyword groups, ordered: the first group with a hit wins.
var socialCues = []struct {
	context string
	cues    []string
}{
	{models.SocialSolo, []string{"seul", "solo", "seule"}},
	{models.SocialCouple, []string{"couple", "partenaire"}},
	{models.SocialFriends, []string{"amis", "ami", "copain", "copine"}},
	{models.SocialClub, []string{"club", "groupe"}},
}

// Body areas scanned for pain language. Output order follows this list,
// not text order.
var painAreas = []string{
	"mollet", "genou", "tibia", "tendon", "fesse", "dos", "cheville", "épaule",
}

// painClauses matches each area keyword and captures the rest of its clause
// (up to a newline or punctuation) on the original-case text.
var painClauses = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(painAreas))
	for i, area := range painAreas {
		res[i] = regexp.MustCompile(`(?i)` + area + `([^\n.,;]*)`)
	}
	return res
}()

// painIntensityCue matches an explicit intensity immediately after the area:
// either "<digit>/10" or ": <digit>".
var painIntensityCue = regexp.MustCompile(`(\d)\s*/\s*10|[:= ](\d)\b`)

// FromText extracts all signals from raw note text. SocialContext is always
// populated (unknown when no cue is found); the other fields stay absent
// without a match. Numeric cues outside [0,10] are clamped, not rejected.
func FromText(raw string) models.Extracted {
	text := strings.ToLower(raw)

	out := models.Extracted{
		RPE:           findNumber(rpePatterns, text),
		Stress:        findNumber(stressPatterns, text),
		SleepQuality:  findNumber(sleepPatterns, text),
		SocialContext: socialContext(text),
		RawText:       raw,
	}

	for i, clause := range painClauses {
		m := clause.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		intensity := 0
		if c := painIntensityCue.FindStringSubmatch(m[1]); c != nil {
			digit := c[1]
			if digit == "" {
				digit = c[2]
			}
			n, err := strconv.Atoi(digit)
			if err == nil {
				intensity = clamp(n)
			}
		}
		out.Pain = append(out.Pain, models.PainEntry{
			Area:      painAreas[i],
			Intensity: intensity,
		})
	}

	return out
}

// findNumber returns the first occurrence of the first pattern that matches,
// clamped to [0,10], or nil when no pattern matches.
func findNumber(patterns []*regexp.Regexp, text string) *int {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		v := clamp(n)
		return &v
	}
	return nil
}

func socialContext(text string) string {
	for _, group := range socialCues {
		for _, cue := range group.cues {
			if strings.Contains(text, cue) {
				return group.context
			}
		}
	}
	return models.SocialUnknown
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}
