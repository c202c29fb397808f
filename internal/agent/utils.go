package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"codeberg.org/notecanvas/server/internal/state"
)

// parseJSON decodes model output into v. Markdown fences are stripped and
// malformed JSON is repaired before giving up.
func parseJSON(text string, v any) error {
	raw := strings.TrimSpace(extractFromFence(text))
	if raw == "" {
		return ErrMalformedOutput
	}

	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	fixed, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return fmt.Errorf("%w: %w", ErrMalformedOutput, repairErr)
	}

	if err := json.Unmarshal([]byte(fixed), v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	return nil
}

// returns the body of the first fenced block, or text when there is none
func extractFromFence(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return text
	}

	// skip the language identifier on the opening fence line
	afterStart := start + 3
	newline := strings.Index(text[afterStart:], "\n")
	if newline == -1 {
		return text
	}

	bodyStart := afterStart + newline + 1

	end := strings.Index(text[bodyStart:], "```")
	if end == -1 {
		return text[bodyStart:]
	}

	return text[bodyStart : bodyStart+end]
}

// fills the content of every empty-content material keyed by url
func withContent(s state.AgentState, url, content string) state.AgentState {
	materials := make([]state.ReferenceMaterial, len(s.ReferenceMaterials))
	copy(materials, s.ReferenceMaterials)

	for i := range materials {
		if materials[i].URL == url && materials[i].Content == "" {
			materials[i].Content = content
		}
	}

	return s.WithReferenceMaterials(materials)
}

// applies the non-null fields of a draft to s
func applyDraft(s state.AgentState, d noteDraft) state.AgentState {
	next := s

	if d.ProductInfo != nil {
		next = next.WithProductInfo(*d.ProductInfo)
	}

	if d.Note != nil {
		next = next.WithNote(*d.Note)
	}

	if d.Tags != nil {
		tags := make([]state.Tag, 0, len(d.Tags))
		for _, t := range d.Tags {
			if t.Name = strings.TrimPrefix(strings.TrimSpace(t.Name), "#"); t.Name == "" {
				continue
			}

			if !t.HeatLevel.Valid() {
				t.HeatLevel = state.HeatMedium
			}

			tags = append(tags, t)
		}

		next = next.WithTags(tags)
	}

	if d.BloggerPersona != nil {
		next = next.WithBloggerPersona(*d.BloggerPersona)
	}

	return next
}

func materialLabel(m state.ReferenceMaterial) string {
	if m.Title != "" {
		return m.Title
	}

	return m.URL
}

func knownIntent(i Intent) bool {
	switch i {
	case IntentConversation, IntentNoteCreation, IntentDeleteMaterials:
		return true
	}

	return false
}
