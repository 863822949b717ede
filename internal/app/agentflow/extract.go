package agentflow

import (
	"encoding/json"
	"strings"
)

// A parseStrategy is one total attempt at recovering a JSON object from
// completion text. Strategies never fail loudly; they report ok=false and
// the next one runs.
type parseStrategy func(string) (map[string]any, bool)

var parseStrategies = []parseStrategy{
	parseWhole,
	parseFenced,
	parseBraceSpan,
}

// ExtractJSON recovers a JSON object from completion text that may be pure
// JSON, JSON inside a fenced code block, or JSON buried in prose. ok=false
// means every strategy struck out and the caller must use its fallback.
func ExtractJSON(content string) (map[string]any, bool) {
	for _, try := range parseStrategies {
		if obj, ok := try(content); ok {
			return obj, true
		}
	}
	return nil, false
}

func parseWhole(content string) (map[string]any, bool) {
	return tryUnmarshal(content)
}

func parseFenced(content string) (map[string]any, bool) {
	start := strings.Index(content, "```json")
	offset := len("```json")
	if start < 0 {
		start = strings.Index(content, "```")
		offset = len("```")
	}
	if start < 0 {
		return nil, false
	}

	rest := content[start+offset:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return nil, false
	}

	return tryUnmarshal(strings.TrimSpace(rest[:end]))
}

func parseBraceSpan(content string) (map[string]any, bool) {
	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first < 0 || last <= first {
		return nil, false
	}
	return tryUnmarshal(content[first : last+1])
}

func tryUnmarshal(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

const (
	responseOpenTag  = "<response>"
	responseCloseTag = "</response>"
)

// SplitReply separates a writer completion into the visible message and an
// optional purchase offer. Any JSON object whose "type" field equals
// "purchase_request" counts, wherever the key sits among the object's keys.
// A matched but unparseable object stays in the message text and warned is
// set. Response-delimiter tags never reach the caller.
func SplitReply(content string) (message string, offer map[string]any, warned bool) {
	message = content

	if marker := strings.Index(content, `"purchase_request"`); marker >= 0 {
		if start := strings.LastIndex(content[:marker], "{"); start >= 0 {
			span, ok := matchBraces(content, start)
			if ok {
				if obj, err := unmarshalOffer(content[start:span]); err == nil {
					if t, _ := obj["type"].(string); t == "purchase_request" {
						offer = obj
						message = strings.TrimSpace(content[:start] + content[span:])
					}
				} else {
					warned = true
				}
			} else {
				warned = true
			}
		}
	}

	if openTag := strings.Index(message, responseOpenTag); openTag >= 0 {
		if closeTag := strings.Index(message, responseCloseTag); closeTag > openTag {
			message = strings.TrimSpace(message[openTag+len(responseOpenTag) : closeTag])
		}
	}

	return message, offer, warned
}

func unmarshalOffer(span string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// matchBraces scans from the opening brace at start and returns the index
// just past its matching close, tracking string literals and escapes.
func matchBraces(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}

	return 0, false
}
