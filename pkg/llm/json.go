package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
)

// InvalidJSONMessage is returned when model output cannot be decoded.
const InvalidJSONMessage = "AI failed to generate valid JSON. Try again clearly."

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripJSONFence removes a surrounding markdown code fence from model output.
func StripJSONFence(raw string) string {
	out := strings.TrimSpace(raw)
	out = leadingFence.ReplaceAllString(out, "")
	out = trailingFence.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// DecodeJSON strips fences and decodes the payload into dst.
func DecodeJSON(raw string, dst any) error {
	cleaned := StripJSONFence(raw)
	if cleaned == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidOutput, InvalidJSONMessage)
	}
	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInvalidOutput, err, InvalidJSONMessage)
	}
	return nil
}
