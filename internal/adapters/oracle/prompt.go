package oracle

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/example/questline/internal/core/roadmap"
	"github.com/example/questline/internal/ports/secondary"
)

//go:embed prompts/*.tmpl
var promptTemplates embed.FS

var roadmapPrompt = template.Must(template.ParseFS(promptTemplates, "prompts/roadmap.tmpl"))

type promptData struct {
	Level         int
	XP            int
	CurrentStreak int
	Language      string
	Domain        string
	DomainLabel   string
	StepCount     int
}

// RenderPrompt builds the roadmap request sent to the language model.
func RenderPrompt(profile secondary.ProfileSnapshot, domain string, stepCount int) (string, error) {
	if stepCount <= 0 {
		stepCount = roadmap.DefaultStepCount
	}
	language := profile.Language
	if language == "" {
		language = "en"
	}

	data := promptData{
		Level:         profile.Level,
		XP:            profile.XP,
		CurrentStreak: profile.CurrentStreak,
		Language:      language,
		Domain:        domain,
		DomainLabel:   roadmap.Domain(domain).Label(),
		StepCount:     stepCount,
	}

	var buf bytes.Buffer
	if err := roadmapPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}
