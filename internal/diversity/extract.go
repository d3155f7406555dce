// Package diversity decides whether generated questions cover distinct topics.
package diversity

import (
	"regexp"
	"sort"
	"strings"

	"darkstar-quiz-service/internal/domain"
)

// UnknownTopic is the tag for text with no content words.
const UnknownTopic = "unknown"

// DefaultKeywordCount is the size of the keyword set used for overlap checks.
const DefaultKeywordCount = 5

var wordPattern = regexp.MustCompile(`[a-z]+`)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after again against all also am an and any are as at
		be because been before being below between both but by can could
		did do does doing done down during each either else ever every few
		for from further had has have having he her here hers herself him
		himself his how however into is it its itself just least less like
		made make many may me might more most much must my myself near need
		neither never no nor not now of off often on once one only or other
		ought our ours ourselves out over own per rather same shall she
		should since so some such than that the their theirs them
		themselves then there these they this those though through thus to
		too under until up upon us used using very was we were what when
		whenever where whereas whether which while who whom whose why will
		with within without would yet you your yours yourself yourselves
		following correct true false best describes according question
		called name named
	`) {
		stopwords[w] = struct{}{}
	}
}

// contentWords lowercases text, splits it on alphabetic runs and drops
// stopwords and words of three letters or fewer.
func contentWords(text string) []string {
	var words []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// ExtractKeywords returns up to topN of the most frequent content words in
// text. Ties keep first-occurrence order.
func ExtractKeywords(text string, topN int) []string {
	words := contentWords(text)
	if len(words) == 0 || topN <= 0 {
		return nil
	}

	counts := make(map[string]int, len(words))
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	return order
}

// ExtractTopic returns the question's normalized topic tag. A tag supplied by
// the source wins; otherwise the two most frequent content words are joined
// with a hyphen.
func ExtractTopic(q domain.Question) string {
	if tag := NormalizeTopic(q.Topic); tag != "" {
		return tag
	}
	words := ExtractKeywords(q.Text, 2)
	switch len(words) {
	case 0:
		return UnknownTopic
	case 1:
		return words[0]
	default:
		return words[0] + "-" + words[1]
	}
}

// NormalizeTopic lowercases a tag and joins its words with hyphens.
func NormalizeTopic(tag string) string {
	fields := strings.FieldsFunc(strings.ToLower(tag), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})
	return strings.Join(fields, "-")
}
