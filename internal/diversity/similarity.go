package diversity

import (
	"math"

	"darkstar-quiz-service/internal/domain"
	"github.com/pmezard/go-difflib/difflib"
)

// Detector decides whether two questions cover the same ground.
type Detector struct {
	// TextThreshold is the fuzzy ratio (0-100) above which texts are duplicates.
	TextThreshold int
	// OverlapThreshold is the keyword Jaccard index above which questions are duplicates.
	OverlapThreshold float64
	// KeywordCount is the number of keywords compared per question.
	KeywordCount int
}

// DefaultDetector returns the standard thresholds.
func DefaultDetector() Detector {
	return Detector{
		TextThreshold:    85,
		OverlapThreshold: 0.4,
		KeywordCount:     DefaultKeywordCount,
	}
}

// AreSimilar reports whether q1 and q2 are duplicates. Any of three signals
// is enough: equal topic tags, a fuzzy text ratio above TextThreshold, or a
// keyword overlap above OverlapThreshold.
func (d Detector) AreSimilar(q1, q2 domain.Question, topic1, topic2 string) bool {
	return d.similar(
		features{question: q1, topic: topic1, keywords: ExtractKeywords(q1.Text, d.KeywordCount)},
		features{question: q2, topic: topic2, keywords: ExtractKeywords(q2.Text, d.KeywordCount)},
	)
}

type features struct {
	question domain.Question
	topic    string
	keywords []string
}

func (d Detector) similar(a, b features) bool {
	if a.topic == b.topic {
		return true
	}
	if TextRatio(a.question.Text, b.question.Text) > d.TextThreshold {
		return true
	}
	return KeywordOverlap(a.keywords, b.keywords) > d.OverlapThreshold
}

// TextRatio is the character-level similarity of the lowercased texts on a
// 0-100 scale, computed as round(100 * 2M / T) over the matching blocks.
// An empty text never matches anything.
func TextRatio(a, b string) int {
	sa, sb := splitChars(lower(a)), splitChars(lower(b))
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	ratio := difflib.NewMatcher(sa, sb).Ratio()
	return int(math.Round(ratio * 100))
}

// KeywordOverlap is |k1 ∩ k2| / |k1 ∪ k2|. It is zero when either set is empty.
func KeywordOverlap(k1, k2 []string) float64 {
	if len(k1) == 0 || len(k2) == 0 {
		return 0
	}
	set := make(map[string]bool, len(k1))
	for _, k := range k1 {
		set[k] = true
	}
	union := len(set)
	inter := 0
	seen := make(map[string]bool, len(k2))
	for _, k := range k2 {
		if seen[k] {
			continue
		}
		seen[k] = true
		if set[k] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
