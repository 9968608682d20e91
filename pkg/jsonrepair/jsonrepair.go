// Package jsonrepair recovers structured data from free-text LLM output.
//
// Model responses routinely wrap JSON in markdown fences, prepend commentary,
// leave trailing commas, or emit Python-style literals. Extract never returns
// an error: when nothing parseable survives, the raw text is wrapped under
// DefaultKey so downstream stages always receive a map.
package jsonrepair

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DefaultKey wraps unparseable raw text in the fallback object.
const DefaultKey = "raw_response"

var fenceMarkers = []string{"```json", "```JSON", "```javascript", "```"}

// Extract returns the best-effort parsed object from raw model text.
func Extract(raw string) map[string]any {
	text := strings.TrimSpace(raw)
	if text == "" {
		return map[string]any{DefaultKey: ""}
	}

	candidate := stripFences(text)
	candidate = balancedSpan(candidate)
	if candidate == "" {
		return map[string]any{DefaultKey: raw}
	}

	cleaned := stripComments(candidate)
	cleaned = stripTrailingCommas(cleaned)

	if obj, ok := strictParse(cleaned); ok {
		return obj
	}
	if obj, ok := permissiveParse(cleaned); ok {
		return obj
	}
	return map[string]any{DefaultKey: raw}
}

// ExtractList behaves like Extract but unwraps a top-level JSON array.
// A non-array result yields nil.
func ExtractList(raw string) []any {
	obj := Extract(raw)
	if items, ok := obj["items"].([]any); ok {
		return items
	}
	return nil
}

// stripFences removes leading/trailing markdown fence markers.
func stripFences(text string) string {
	for _, marker := range fenceMarkers {
		text = strings.ReplaceAll(text, marker, "\n")
	}
	return strings.TrimSpace(text)
}

// balancedSpan locates the outermost balanced {..} or [..] span whose opening
// token occurs first in the text. Braces inside string literals are skipped.
func balancedSpan(text string) string {
	objStart := strings.IndexByte(text, '{')
	arrStart := strings.IndexByte(text, '[')

	start := objStart
	open, close := byte('{'), byte('}')
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start = arrStart
		open, close = '[', ']'
	}
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	// Unterminated: return from the opening token onward and let the parsers
	// reject it.
	return text[start:]
}

var (
	lineCommentRe   = regexp.MustCompile(`(?m)^\s*//.*$`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

func stripComments(text string) string {
	text = blockCommentRe.ReplaceAllString(text, "")
	return lineCommentRe.ReplaceAllString(text, "")
}

func stripTrailingCommas(text string) string {
	return trailingCommaRe.ReplaceAllString(text, "$1")
}

func strictParse(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj, true
	}
	var arr []any
	if err := json.Unmarshal([]byte(text), &arr); err == nil {
		return map[string]any{"items": arr}, true
	}
	return nil, false
}

var (
	pyTrueRe      = regexp.MustCompile(`\bTrue\b`)
	pyFalseRe     = regexp.MustCompile(`\bFalse\b`)
	pyNoneRe      = regexp.MustCompile(`\bNone\b`)
	unquotedKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
)

// permissiveParse retries after normalizing common literal deviations:
// Python booleans/None, single-quoted strings, and unquoted object keys.
func permissiveParse(text string) (map[string]any, bool) {
	repaired := pyTrueRe.ReplaceAllString(text, "true")
	repaired = pyFalseRe.ReplaceAllString(repaired, "false")
	repaired = pyNoneRe.ReplaceAllString(repaired, "null")
	repaired = normalizeQuotes(repaired, text)
	repaired = unquotedKeyRe.ReplaceAllString(repaired, `$1"$2"$3`)
	return strictParse(repaired)
}

// normalizeQuotes converts single-quoted strings to double-quoted ones when
// the original text contains no double quotes at all (avoids corrupting
// apostrophes inside already-valid JSON strings). The decision reads the
// original text: later repairs insert double quotes of their own, which must
// not suppress the conversion.
func normalizeQuotes(text, original string) string {
	if strings.Contains(original, `"`) {
		return text
	}
	return strings.ReplaceAll(text, "'", `"`)
}
