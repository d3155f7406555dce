package diversity

import (
	"testing"

	"darkstar-quiz-service/internal/domain"
)

func q(text string) domain.Question { return domain.Question{Text: text} }

func TestAreSimilar(t *testing.T) {
	d := DefaultDetector()
	tests := []struct {
		name           string
		q1, q2         domain.Question
		topic1, topic2 string
		want           bool
	}{
		{
			name:   "identical topics",
			q1:     q("What is the fuel capacity?"),
			q2:     q("How much fuel can the aircraft hold?"),
			topic1: "fuel-capacity", topic2: "fuel-capacity",
			want: true,
		},
		{
			name:   "near identical text",
			q1:     q("What is the maximum speed for PUSHING the throttle?"),
			q2:     q("What is the maximum speed when PUSHING the throttle?"),
			topic1: "speed-throttle", topic2: "throttle-speed",
			want: true,
		},
		{
			name:   "keyword overlap",
			q1:     q("During FUMBLE recovery, what is the procedure for PUSHING forward?"),
			q2:     q("Steps for PUSHING during FUMBLE recovery emergencies?"),
			topic1: "fumble-procedure", topic2: "emergency-steps",
			want: true,
		},
		{
			name:   "different questions",
			q1:     q("What is the fuel capacity of the aircraft?"),
			q2:     q("What is the maximum altitude for combat operations?"),
			topic1: "fuel-capacity", topic2: "altitude-limits",
			want: false,
		},
		{
			name:   "empty texts rely on topics only",
			q1:     q(""),
			q2:     q(""),
			topic1: "a", topic2: "b",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.AreSimilar(tt.q1, tt.q2, tt.topic1, tt.topic2); got != tt.want {
				t.Fatalf("AreSimilar = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAreSimilarReflexive(t *testing.T) {
	d := DefaultDetector()
	for _, text := range []string{"", "What is the landing procedure?", "Why?"} {
		question := q(text)
		topic := ExtractTopic(question)
		if !d.AreSimilar(question, question, topic, topic) {
			t.Fatalf("expected %q to be similar to itself", text)
		}
	}
}

func TestTextRatio(t *testing.T) {
	if got := TextRatio("Same words", "same WORDS"); got != 100 {
		t.Fatalf("expected case-insensitive 100, got %d", got)
	}
	if got := TextRatio("", "anything"); got != 0 {
		t.Fatalf("expected 0 for empty text, got %d", got)
	}
	if got := TextRatio("abcd", "wxyz"); got != 0 {
		t.Fatalf("expected 0 for disjoint text, got %d", got)
	}
}

func TestKeywordOverlap(t *testing.T) {
	if got := KeywordOverlap(nil, nil); got != 0 {
		t.Fatalf("expected 0 for empty sets, got %v", got)
	}
	if got := KeywordOverlap([]string{"a"}, nil); got != 0 {
		t.Fatalf("expected 0 when one set is empty, got %v", got)
	}
	got := KeywordOverlap([]string{"fuel", "tank", "capacity"}, []string{"fuel", "tank", "pressure"})
	if got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}
