package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/hayasui/kotae/internal/models"
)

// extractPlain returns the content as a single page 1, validating it is
// valid UTF-8. Invalid sequences are replaced with the replacement character.
func extractPlain(content []byte, source string) ([]models.PageText, error) {
	text := string(content)
	if !utf8.Valid(content) {
		text = strings.ToValidUTF8(text, "�")
	}
	return []models.PageText{{
		Text:       text,
		SourceFile: source,
		Page:       1,
	}}, nil
}
