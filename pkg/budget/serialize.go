package budget

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// cycleSentinel replaces a value already present on the serialization path.
const cycleSentinel = `"[circular]"`

// Serialize renders a payload as compact JSON with deterministic key order.
// Repeated map/slice identities on the current path are replaced with a
// sentinel instead of recursing forever, so a malformed payload can never
// hang the budgeter.
func Serialize(payload map[string]any) string {
	var sb strings.Builder
	writeValue(&sb, payload, map[uintptr]bool{})
	return sb.String()
}

// Size returns the serialized character length of the payload.
func Size(payload map[string]any) int {
	return len(Serialize(payload))
}

func writeValue(sb *strings.Builder, v any, onPath map[uintptr]bool) {
	switch val := v.(type) {
	case map[string]any:
		ptr := reflect.ValueOf(val).Pointer()
		if onPath[ptr] {
			sb.WriteString(cycleSentinel)
			return
		}
		onPath[ptr] = true
		writeMap(sb, val, onPath)
		delete(onPath, ptr)
	case []any:
		ptr := reflect.ValueOf(val).Pointer()
		if ptr != 0 && onPath[ptr] {
			sb.WriteString(cycleSentinel)
			return
		}
		if ptr != 0 {
			onPath[ptr] = true
		}
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeValue(sb, item, onPath)
		}
		sb.WriteByte(']')
		if ptr != 0 {
			delete(onPath, ptr)
		}
	case nil:
		sb.WriteString("null")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			fmt.Fprintf(sb, "%q", fmt.Sprint(val))
			return
		}
		sb.Write(b)
	}
}

func writeMap(sb *strings.Builder, m map[string]any, onPath map[uintptr]bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		b, _ := json.Marshal(k)
		sb.Write(b)
		sb.WriteByte(':')
		writeValue(sb, m[k], onPath)
	}
	sb.WriteByte('}')
}
