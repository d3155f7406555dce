package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"darkstar-quiz-service/internal/config"
	"darkstar-quiz-service/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestGenerateCommandPrintsDistinctQuiz(t *testing.T) {
	t.Setenv("QUIZ_LLM_PROVIDER", "")
	path := writeConfig(t, "llm:\n  provider: mock\nlog:\n  level: warn\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"generate", "--config", path, "--count", "4", "--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("generate: %v", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(out.Bytes(), &questions); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if len(q.Options) != 4 || !domain.ValidLetter(q.Answer) {
			t.Fatalf("malformed question: %+v", q)
		}
	}
}

func TestGenerateCommandText(t *testing.T) {
	t.Setenv("QUIZ_LLM_PROVIDER", "")
	path := writeConfig(t, "llm:\n  provider: mock\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"generate", "--config", path, "--count", "2", "--no-shuffle"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("generate: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Generated 2/2 questions in 1 request(s)") || !strings.Contains(text, "Question 2/2") {
		t.Fatalf("unexpected output:\n%s", text)
	}
	if !strings.Contains(text, "Answer: B  Topic: fuel-capacity") {
		t.Fatalf("expected unshuffled answer and topic:\n%s", text)
	}
}

func TestGenerateCommandRejectsCount(t *testing.T) {
	t.Setenv("QUIZ_LLM_PROVIDER", "")
	path := writeConfig(t, "llm:\n  provider: mock\n")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"generate", "--config", path, "--count", "11"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected count error")
	}
}

func TestLLMConfigMapping(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIAPIKey = "sk-test"
	cfg.LLM.Model = "gpt-4o"
	cfg.LLM.Timeout = "10s"
	cfg.LLM.MaxAttempts = 5

	got := llmConfig(cfg)
	if got.Provider != "openai" || got.OpenAI.APIKey != "sk-test" || got.Assistant.APIKey != "sk-test" {
		t.Fatalf("credentials not mapped: %+v", got)
	}
	if got.OpenAI.Model != "gpt-4o" || got.Timeout != 10*time.Second || got.Retry.MaxAttempts != 5 {
		t.Fatalf("settings not mapped: %+v", got)
	}
	if got.Assistant.PollInterval != 700*time.Millisecond {
		t.Fatalf("expected default poll interval, got %v", got.Assistant.PollInterval)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestGeneratorConfigMapping(t *testing.T) {
	q := config.Default().Quiz
	q.RegenerationRounds = 1
	q.TextThreshold = 90
	got := generatorConfig(q)
	if got.MaxRegenerationRounds != 1 || got.Detector.TextThreshold != 90 || got.Detector.OverlapThreshold != 0.4 {
		t.Fatalf("unexpected generator config: %+v", got)
	}
}
