package vectorstore

import (
	"fmt"
	"sort"
	"strings"
)

// buildFilterExpr creates a Milvus boolean expression from a filter map.
// Every entry becomes an equality condition and the conditions are joined
// with "and". Keys are emitted in sorted order so the expression is stable.
// Only string, integer and boolean values are supported.
func buildFilterExpr(filter map[string]interface{}) (string, error) {
	if len(filter) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	for _, key := range keys {
		switch v := filter[key].(type) {
		case string:
			conditions = append(conditions, fmt.Sprintf(`%s == "%s"`, key, escapeString(v)))
		case int:
			conditions = append(conditions, fmt.Sprintf("%s == %d", key, v))
		case int64:
			conditions = append(conditions, fmt.Sprintf("%s == %d", key, v))
		case uint:
			conditions = append(conditions, fmt.Sprintf("%s == %d", key, v))
		case bool:
			conditions = append(conditions, fmt.Sprintf("%s == %t", key, v))
		default:
			return "", fmt.Errorf("unsupported filter value type %T for field %q", v, key)
		}
	}
	return strings.Join(conditions, " and "), nil
}

// escapeString quotes backslashes and double quotes so arbitrary values
// cannot break out of the expression literal.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
