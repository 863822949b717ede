package agentflow

// Readers over the loosely-typed objects the extractor produces. Absent or
// mistyped fields fall back to the given default; numeric clamping happens
// at the call site so each stage keeps its own bounds.

func stringField(m map[string]any, key, def string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func intField(m map[string]any, key string, def int) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

func floatField(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

// stringListField tolerates a bare string by wrapping it in a single-element
// list; the model occasionally flattens list fields.
func stringListField(m map[string]any, key string, def []string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}

	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if list == "" {
			return def
		}
		return []string{list}
	}
	return def
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampFloat(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
