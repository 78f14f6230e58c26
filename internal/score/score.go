// Package score turns a posting plus a user profile into a relevance score in
// [0, 10] with a per-term breakdown. Scoring is a pure function: identical
// inputs always produce the identical score, with no clock reads, randomness
// or external calls.
package score

import (
	"math"
	"regexp"
	"strings"
	"time"

	"jobpilot-engine/internal/domain"
)

// Weights is the scoring rubric: term caps plus the keyword lists they apply
// to. Each term is independently capped.
type Weights struct {
	KeywordsHigh   []string
	KeywordsMedium []string
	Exclude        []string

	KeywordCap         float64
	SkillCap           float64
	ContractMatch      float64
	ExperienceMatch    float64
	LocationPreferred  float64
	LocationAcceptable float64
	RecencyBonus       float64
	FreshnessDays      int
	RecencyDecay       bool // graded decay instead of the binary window
	ExclusionEach      float64
	ExclusionCap       float64
}

// DefaultWeights returns the standard rubric.
func DefaultWeights() Weights {
	return Weights{
		KeywordCap:         4.0,
		SkillCap:           3.0,
		ContractMatch:      1.0,
		ExperienceMatch:    1.0,
		LocationPreferred:  0.5,
		LocationAcceptable: 0.3,
		RecencyBonus:       0.5,
		FreshnessDays:      7,
		ExclusionEach:      2.0,
		ExclusionCap:       5.0,
	}
}

// Breakdown records how each term contributed. Serialized to JSON only at
// the storage boundary.
type Breakdown struct {
	Keywords         float64  `json:"keywords"`
	Skills           float64  `json:"skills"`
	Contract         float64  `json:"contract"`
	Experience       float64  `json:"experience"`
	Location         float64  `json:"location"`
	Recency          float64  `json:"recency"`
	ExclusionPenalty float64  `json:"exclusion_penalty"`
	KeywordMatches   []string `json:"keyword_matches,omitempty"`
	SkillMatches     []string `json:"skill_matches,omitempty"`
	ExclusionMatches []string `json:"exclusion_matches,omitempty"`
	Total            float64  `json:"total"`
}

// Score computes the relevance of a posting for a profile. now anchors the
// recency term and must be supplied by the caller so the function stays pure.
func Score(p domain.Posting, profile domain.Profile, w Weights, now time.Time) (float64, Breakdown) {
	text := strings.ToLower(p.SearchText())
	var b Breakdown

	b.Keywords, b.KeywordMatches = keywordScore(text, w)
	b.Skills, b.SkillMatches = skillScore(text, profile.Skills, w.SkillCap)
	b.Contract = contractScore(p, profile, w.ContractMatch)
	b.Experience = experienceScore(text, profile, w.ExperienceMatch)
	b.Location = locationScore(p.Location, profile.Locations, w)
	b.Recency = recencyScore(p.PostedAt, now, w)
	b.ExclusionPenalty, b.ExclusionMatches = exclusionPenalty(text, w)

	total := b.Keywords + b.Skills + b.Contract + b.Experience + b.Location + b.Recency - b.ExclusionPenalty
	total = math.Max(0, math.Min(10, total))
	b.Total = round2(total)
	return b.Total, b
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }

// keywordScore is the matched fraction of the configured search keywords,
// scaled to the cap. High-priority keywords weigh double.
func keywordScore(text string, w Weights) (float64, []string) {
	var matched []string
	var hitWeight, totalWeight float64

	for _, k := range w.KeywordsHigh {
		totalWeight += 2
		if strings.Contains(text, strings.ToLower(k)) {
			hitWeight += 2
			matched = append(matched, k)
		}
	}
	for _, k := range w.KeywordsMedium {
		totalWeight++
		if strings.Contains(text, strings.ToLower(k)) {
			hitWeight++
			matched = append(matched, k)
		}
	}
	if totalWeight == 0 {
		return 0, nil
	}
	return round2(math.Min(w.KeywordCap, w.KeywordCap*hitWeight/totalWeight)), matched
}

// skillScore is the matched fraction of the user's skills, scaled to the cap.
// Skills match on word boundaries so "go" does not hit "google".
func skillScore(text string, skills []string, limit float64) (float64, []string) {
	if len(skills) == 0 {
		return 0, nil
	}
	var matched []string
	for _, skill := range skills {
		pat := `(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(skill)) + `\b`
		if ok, _ := regexp.MatchString(pat, text); ok {
			matched = append(matched, skill)
		}
	}
	return round2(math.Min(limit, limit*float64(len(matched))/float64(len(skills)))), matched
}

func contractScore(p domain.Posting, profile domain.Profile, weight float64) float64 {
	if len(profile.ContractTypes) == 0 {
		return 0
	}
	ct := strings.ToLower(p.ContractType)
	haystack := strings.ToLower(p.Title + " " + p.Description)
	for _, accepted := range profile.ContractTypes {
		a := strings.ToLower(strings.TrimSpace(accepted))
		if a == "" {
			continue
		}
		if ct != "" && strings.Contains(ct, a) {
			return weight
		}
		if ct == "" && strings.Contains(haystack, a) {
			return weight
		}
	}
	return 0
}

var seniorIndicators = []string{
	"senior", "staff", "principal", "lead", "expert", "confirmé",
	"5+ years", "5 ans", "7+ years", "8 ans", "10+ years", "10 ans",
}

// experienceScore is flat: the weight when the level is compatible with the
// profile, zero when a senior indicator appears and the profile does not
// accept senior roles.
func experienceScore(text string, profile domain.Profile, weight float64) float64 {
	if profile.SeniorOK {
		return weight
	}
	for _, ind := range seniorIndicators {
		if strings.Contains(text, ind) {
			return 0
		}
	}
	return weight
}

func locationScore(location string, locs domain.Locations, w Weights) float64 {
	loc := strings.ToLower(location)
	for _, p := range locs.Preferred {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" && strings.Contains(loc, p) {
			return w.LocationPreferred
		}
	}
	if locs.RemoteOK {
		for _, word := range []string{"remote", "télétravail", "hybrid", "hybride"} {
			if strings.Contains(loc, word) {
				return w.LocationPreferred
			}
		}
	}
	for _, a := range locs.Acceptable {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" && strings.Contains(loc, a) {
			return w.LocationAcceptable
		}
	}
	return 0
}

// recencyScore is binary within the freshness window by default; the decay
// mode grades older postings down instead of zeroing them.
func recencyScore(postedAt *time.Time, now time.Time, w Weights) float64 {
	if postedAt == nil {
		if w.RecencyDecay {
			return w.RecencyBonus / 2
		}
		return 0
	}
	days := int(now.Sub(*postedAt).Hours() / 24)

	if !w.RecencyDecay {
		if days <= w.FreshnessDays {
			return w.RecencyBonus
		}
		return 0
	}

	switch {
	case days <= 1:
		return w.RecencyBonus
	case days <= 3:
		return round2(w.RecencyBonus * 0.8)
	case days <= 7:
		return round2(w.RecencyBonus * 0.6)
	case days <= 14:
		return round2(w.RecencyBonus * 0.4)
	default:
		return round2(w.RecencyBonus * 0.2)
	}
}

func exclusionPenalty(text string, w Weights) (float64, []string) {
	var matched []string
	penalty := 0.0
	for _, k := range w.Exclude {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(text, k) {
			matched = append(matched, k)
			penalty += w.ExclusionEach
		}
	}
	return math.Min(w.ExclusionCap, penalty), matched
}
