package services

import (
	"strings"

	"github.com/gsinghjay/gpt-character-gen/models"
)

// VariationParams carries the optional attributes for a variation portrait.
// At least one field must be set when a variation is requested; the struct
// makes that invariant checkable instead of an open-ended parameter bag.
type VariationParams struct {
	Pose       string
	Expression string
	Setting    string
}

// Empty reports whether no attribute was supplied.
func (p VariationParams) Empty() bool {
	return p.Pose == "" && p.Expression == "" && p.Setting == ""
}

const (
	promptPreamble = "I NEED to test how the tool works with extremely simple prompts. DO NOT add any detail, just use it AS-IS: Character ID '"
	promptTrailer  = ". IMPORTANT: This MUST be exactly the same character as previous images with the same Character ID. " +
		"Maintain perfect consistency in the character's core features including face, body type, hair style, clothing style, " +
		"and all distinctive characteristics. Use identical art style to previous generations."
)

// BuildPrompt produces the generation prompt for a character, optionally
// extended with variation attributes. The description is embedded verbatim
// and attribute clauses always appear in pose, expression, setting order, so
// identical inputs yield byte-identical prompts.
func BuildPrompt(c *models.Character, params *VariationParams) string {
	shortID := c.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString(shortID)
	b.WriteString("' - Create a portrait of this specific character: ")
	b.WriteString(c.Description)

	if params != nil {
		if params.Pose != "" {
			b.WriteString(". Pose: ")
			b.WriteString(params.Pose)
		}
		if params.Expression != "" {
			b.WriteString(". Expression: ")
			b.WriteString(params.Expression)
		}
		if params.Setting != "" {
			b.WriteString(". Setting: ")
			b.WriteString(params.Setting)
		}
	}

	b.WriteString(promptTrailer)
	return b.String()
}
