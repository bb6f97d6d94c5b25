package docgen

import (
	"encoding/json"
	"fmt"
)

// Strings longer than this are replaced before logging.
const maxInlineString = 200

var largePayloadKeys = func() map[string]struct{} {
	m := make(map[string]struct{}, len(artifactKeys))
	for _, k := range artifactKeys {
		m[k] = struct{}{}
	}
	return m
}()

// RedactLargeFields walks a decoded JSON value and replaces any string longer
// than maxInlineString, or any string under a known large-payload field name,
// with a placeholder noting its original length. It is applied to values
// bound for logs only, never to data returned to callers.
func RedactLargeFields(v any) any {
	switch t := v.(type) {
	case string:
		if len(t) > maxInlineString {
			return fmt.Sprintf("[string length: %d]", len(t))
		}
		return t
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = RedactLargeFields(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			s, isString := val.(string)
			_, isLargeKey := largePayloadKeys[k]
			if isString && (len(s) > maxInlineString || isLargeKey) {
				label := "string"
				if isLargeKey {
					label = "base64"
				}
				out[k] = fmt.Sprintf("[%s length: %d]", label, len(s))
				continue
			}
			out[k] = RedactLargeFields(val)
		}
		return out
	default:
		return v
	}
}

// redactRaw decodes a raw JSON body and redacts it for logging. Bodies that
// are not valid JSON come back truncated instead.
func redactRaw(raw []byte) any {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return TruncateBody(string(raw))
	}
	return RedactLargeFields(decoded)
}
