package diversity

import (
	"reflect"
	"testing"

	"darkstar-quiz-service/internal/domain"
)

func mcq(text, topic string) domain.Question {
	return domain.Question{
		Text:        text,
		Options:     []string{"A", "B", "C", "D"},
		Answer:      "A",
		Explanation: "Test",
		Topic:       topic,
	}
}

func TestDeduplicateByTopicOnly(t *testing.T) {
	unique, topics := Deduplicate([]domain.Question{
		{Topic: "fuel-capacity"},
		{Topic: "fuel-capacity"},
		{Topic: "altitude-limits"},
	})
	if len(unique) != 2 {
		t.Fatalf("expected 2 unique questions, got %d", len(unique))
	}
	if !reflect.DeepEqual(topics, []string{"fuel-capacity", "altitude-limits"}) {
		t.Fatalf("unexpected topics %v", topics)
	}
}

func TestDeduplicateRemovesNearDuplicates(t *testing.T) {
	input := []domain.Question{
		mcq("What is the procedure for PUSHING the throttle during takeoff?", "throttle-pushing"),
		mcq("How do you perform PUSHING on the throttle correctly?", "throttle-pushing"),
		mcq("What is FUMBLE recovery procedure during emergency?", "fumble-recovery"),
		mcq("Steps for emergency FUMBLE situation handling?", "fumble-recovery"),
		mcq("What is the fuel capacity of the main tank?", "fuel-capacity"),
		mcq("What is the maximum altitude for combat operations?", "altitude-limits"),
	}
	unique, topics := Deduplicate(input)
	want := []string{"throttle-pushing", "fumble-recovery", "fuel-capacity", "altitude-limits"}
	if !reflect.DeepEqual(topics, want) {
		t.Fatalf("topics = %v, want %v", topics, want)
	}
	if unique[0].Text != input[0].Text || unique[1].Text != input[2].Text {
		t.Fatalf("expected first occurrence to win, got %q / %q", unique[0].Text, unique[1].Text)
	}
}

func TestDeduplicatePreservesUnique(t *testing.T) {
	input := []domain.Question{
		mcq("What is the fuel capacity?", "fuel-capacity"),
		mcq("What is the maximum altitude?", "altitude-limits"),
		mcq("What is the engine startup sequence?", "engine-startup"),
	}
	unique, topics := Deduplicate(input)
	if len(unique) != 3 || len(topics) != 3 {
		t.Fatalf("expected all questions kept, got %d", len(unique))
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	input := []domain.Question{
		mcq("What is the procedure for PUSHING the throttle during takeoff?", ""),
		mcq("What is the procedure for PUSHING the throttle during landing?", ""),
		mcq("What is the fuel capacity of the main tank?", ""),
		mcq("What is the fuel capacity of the main tank?", "tank"),
		mcq("Which radio channel is used for tower contact?", ""),
	}
	once, topicsOnce := Deduplicate(input)
	twice, topicsTwice := Deduplicate(once)
	if !reflect.DeepEqual(once, twice) || !reflect.DeepEqual(topicsOnce, topicsTwice) {
		t.Fatalf("deduplicate is not idempotent: %v vs %v", topicsOnce, topicsTwice)
	}
}

func TestSetAddChecksWholeAccumulatedSet(t *testing.T) {
	set := NewSet(DefaultDetector())
	if !set.Add(mcq("What is the fuel capacity?", "fuel-capacity")) {
		t.Fatalf("expected first question accepted")
	}
	if !set.Add(mcq("What is the maximum altitude?", "altitude-limits")) {
		t.Fatalf("expected distinct question accepted")
	}
	if set.Add(mcq("How much fuel fits in the tank?", "fuel-capacity")) {
		t.Fatalf("expected duplicate of an earlier question rejected")
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 accepted, got %d", set.Len())
	}
}
