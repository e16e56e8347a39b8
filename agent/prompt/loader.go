package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/advisor.txt
	advisorRaw string

	//go:embed template/voice.txt
	voiceRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Advisor string
	Voice   string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Advisor: strings.TrimSpace(advisorRaw),
		Voice:   strings.TrimSpace(voiceRaw),
	}
}
