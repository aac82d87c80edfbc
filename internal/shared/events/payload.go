package events

// Payload field accessors. Envelope payloads cross the wire as JSON objects,
// so numbers may arrive as float64; these helpers normalize the common
// shapes agents read.

func PayloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func PayloadInt64(payload map[string]any, key string) int64 {
	switch v := payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// PayloadObjects returns a list-of-objects field. Decoded JSON yields
// []any; envelopes still in process may carry []map[string]any.
func PayloadObjects(payload map[string]any, key string) []map[string]any {
	switch v := payload[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
		return out
	default:
		return nil
	}
}

func PayloadFloat(payload map[string]any, key string) float64 {
	switch v := payload[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}
