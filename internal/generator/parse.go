package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"darkstar-quiz-service/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_-]*")
	closingFence = regexp.MustCompile("```$")
)

// itemSchema is the minimum shape of one question in a reply.
var itemSchema = map[string]any{
	"type":     "object",
	"required": []any{"q", "options", "answer", "explain"},
	"properties": map[string]any{
		"q": map[string]any{"type": "string"},
		"options": map[string]any{
			"type":     "array",
			"minItems": domain.OptionCount,
			"maxItems": domain.OptionCount,
			"items":    map[string]any{"type": "string"},
		},
		"answer":  map[string]any{"type": "string", "pattern": `^\s*[A-Da-d]\s*$`},
		"explain": map[string]any{"type": "string"},
		"topic":   map[string]any{"type": "string"},
	},
}

func compileItemSchema() (*jsonschema.Schema, error) {
	// Round-trip so the compiler sees plain JSON values.
	raw, err := json.Marshal(itemSchema)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://quiz-item.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("schema://quiz-item.json")
}

// stripFences removes a surrounding ``` or ```json block marker.
func stripFences(reply string) string {
	s := strings.TrimSpace(reply)
	s = openingFence.ReplaceAllString(s, "")
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

type rawItem struct {
	Q       string          `json:"q"`
	Options []string        `json:"options"`
	Answer  string          `json:"answer"`
	Explain string          `json:"explain"`
	Topic   string          `json:"topic"`
	Page    json.RawMessage `json:"page"`
}

// parseReply decodes a reply into questions. Items that fail validation are
// dropped; only a reply that is not a JSON array is an error.
func parseReply(schema *jsonschema.Schema, reply string) ([]domain.Question, int, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(stripFences(reply)), &items); err != nil {
		return nil, 0, fmt.Errorf("parse reply: %w", err)
	}

	questions := make([]domain.Question, 0, len(items))
	for _, item := range items {
		var doc any
		if err := json.Unmarshal(item, &doc); err != nil {
			continue
		}
		if err := schema.Validate(doc); err != nil {
			continue
		}
		var raw rawItem
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		questions = append(questions, domain.Question{
			Text:        raw.Q,
			Options:     raw.Options,
			Answer:      domain.NormalizeLetter(raw.Answer),
			Explanation: raw.Explain,
			Topic:       raw.Topic,
			Page:        pageRef(raw.Page),
		})
	}
	return questions, len(items) - len(questions), nil
}

// pageRef accepts a page given as a number or a string.
func pageRef(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
