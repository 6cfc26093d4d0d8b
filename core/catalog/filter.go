package catalog

import "strings"

// Filter returns the products matching category and search, in their
// original order. An empty or AllCategories category matches every
// product; a blank search matches every title. Titles are matched
// case-insensitively on the trimmed search text. The input is never
// modified and the result never aliases it.
func Filter(all []Product, category string, search string) []Product {
	byCategory := category != "" && category != AllCategories

	query := strings.ToLower(strings.TrimSpace(search))

	res := make([]Product, 0, len(all))
	for _, p := range all {
		if byCategory && p.Category != category {
			continue
		}

		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}

		res = append(res, p)
	}

	return res
}
