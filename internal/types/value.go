package types

// CloneValue deep-copies the JSON-shaped parts of v ([]any and map[string]any).
// Other values are returned as-is; scalars are immutable and foreign types are
// treated as opaque.
func CloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}
