package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write multiple-choice quiz questions grounded only in the reference documentation you were given. You reply with JSON and nothing else.`

const itemFormat = `Return ONLY a valid JSON array with this exact structure:
[
  {
    "q": "Question text here?",
    "options": ["Option A text", "Option B text", "Option C text", "Option D text"],
    "answer": "A",
    "explain": "Brief explanation with page reference (p.XX)",
    "topic": "short-hyphenated-topic",
    "page": 12
  }
]

IMPORTANT: Return ONLY the JSON array, no other text.`

func buildInitialPrompt(topicHint string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple-choice questions based ONLY on the attached documentation.\n\n", count)
	b.WriteString(requirements)
	if topicHint != "" {
		fmt.Fprintf(&b, "\nTopic focus: %s\n\n", topicHint)
	} else {
		b.WriteString("\nCover various topics from the document.\n\n")
	}
	b.WriteString(itemFormat)
	return b.String()
}

func buildRegenerationPrompt(topicHint string, count int, usedTopics []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d NEW multiple-choice questions based ONLY on the attached documentation.\n\n", count)
	b.WriteString(requirements)
	if topicHint != "" {
		fmt.Fprintf(&b, "\nTopic focus: %s\n", topicHint)
	}
	if len(usedTopics) > 0 {
		b.WriteString("\nThese topics are already covered. Do NOT ask about them again and do not reuse their keywords:\n")
		for _, t := range usedTopics {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}
	b.WriteString("\n")
	b.WriteString(itemFormat)
	return b.String()
}

const requirements = `Requirements:
- Each question must have exactly 4 options
- Include the correct answer (A, B, C, or D)
- Provide a brief explanation with page number citation
- Give each question a short hyphenated topic tag and the page it comes from
- Every question must cover a DIFFERENT topic; do not repeat the same keywords or concepts across questions
`
