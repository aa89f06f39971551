package oracle

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/example/questline/internal/ports/secondary"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\n?(.*?)\n?```")

type stepPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	XPReward    *int   `json:"xp_reward"`
	CoinReward  *int   `json:"coin_reward"`
}

// extractJSON finds the JSON document inside model output that may be
// wrapped in markdown fences or surrounded by prose.
func extractJSON(input string) string {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "```") {
		if match := fencePattern.FindStringSubmatch(input); len(match) > 1 {
			input = strings.TrimSpace(match[1])
		}
	}
	if strings.HasPrefix(input, "[") || strings.HasPrefix(input, "{") {
		return input
	}
	start := strings.Index(input, "[")
	end := strings.LastIndex(input, "]")
	if start != -1 && end > start {
		return input[start : end+1]
	}
	return input
}

// DecodeSteps parses model output into step drafts. It accepts a bare array
// or an object carrying the array under "steps".
func DecodeSteps(text string) ([]secondary.StepDraft, error) {
	doc := extractJSON(text)
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("model output is not valid JSON")
	}

	parsed := gjson.Parse(doc)
	if parsed.IsObject() {
		parsed = parsed.Get("steps")
	}
	if !parsed.IsArray() {
		return nil, fmt.Errorf("model output has no step array")
	}

	var payload []stepPayload
	if err := json.Unmarshal([]byte(parsed.Raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}

	drafts := make([]secondary.StepDraft, len(payload))
	for i, p := range payload {
		drafts[i] = secondary.StepDraft{
			Title:       p.Title,
			Description: p.Description,
			Order:       p.Order,
			XPReward:    p.XPReward,
			CoinReward:  p.CoinReward,
		}
	}
	return drafts, nil
}
