package payload

import "sort"

// SortedKeys returns the keys of p in lexical order.
func SortedKeys(p map[string]any) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
