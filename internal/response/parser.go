// Package response decodes raw model output into pipeline results.
//
// Decoding is lenient by contract: the model's output format is not guaranteed,
// so missing or mistyped fields fall back to placeholders instead of failing.
package response

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/spherical/legal-simplifier/internal/domain"
)

// Placeholders shown in place of a result that could not be produced.
const (
	SimplifyFailedText    = "Failed to simplify text."
	SimplifyNoContentText = "Failed to simplify text. No content returned."
	SimplifyErrorText     = "Error simplifying document."
	NoAnswerText          = "Could not generate an answer."
	AnswerErrorText       = "Error generating answer."
)

// ParseSimplification decodes the simplify task output. The returned result is always
// usable; a non-nil error is a ParseError reporting that the output was not a JSON object.
func ParseSimplification(raw string) (domain.SimplificationResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return FailedSimplification(SimplifyErrorText), domain.ParseError("model response is not a JSON object", err)
	}
	if fields == nil {
		// literal null
		return FailedSimplification(SimplifyErrorText), domain.ParseError("model response is not a JSON object", nil)
	}

	return domain.SimplificationResult{
		SimplifiedText: decodeSimplifiedText(fields["simplifiedText"]),
		Highlights:     decodeHighlights(fields["highlights"]),
	}, nil
}

// ParseAnswer returns the answer text as produced by the model.
func ParseAnswer(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return NoAnswerText
	}
	return raw
}

// FailedSimplification returns a result carrying only the given placeholder.
func FailedSimplification(placeholder string) domain.SimplificationResult {
	return domain.SimplificationResult{
		SimplifiedText: placeholder,
		Highlights:     []string{},
	}
}

func decodeSimplifiedText(raw json.RawMessage) string {
	var text string
	if len(raw) == 0 || json.Unmarshal(raw, &text) != nil || text == "" {
		return SimplifyFailedText
	}
	return text
}

// decodeHighlights keeps elements in model order. Non-string elements are passed
// through as their compact JSON text.
func decodeHighlights(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if isJSONString(item) && json.Unmarshal(item, &s) == nil {
			out = append(out, s)
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, item); err != nil {
			out = append(out, string(item))
			continue
		}
		out = append(out, compact.String())
	}
	return out
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}
