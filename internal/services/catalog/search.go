package catalog

import (
	"strings"

	"github.com/developia-II/marketplace-catalog/internal/models"
)

// FilterProducts keeps the products whose name, description or company
// contains query, ignoring case. Order is preserved; there is no ranking.
func FilterProducts(products []models.Product, query string) []models.Product {
	q := strings.ToLower(query)
	matched := []models.Product{}
	for _, p := range products {
		if MatchesQuery(p, q) {
			matched = append(matched, p)
		}
	}
	return matched
}

// MatchesQuery expects lowerQuery to be lower-cased already. Empty fields
// never match.
func MatchesQuery(p models.Product, lowerQuery string) bool {
	return containsLower(p.Name, lowerQuery) ||
		containsLower(p.Description, lowerQuery) ||
		containsLower(p.Company, lowerQuery)
}

func containsLower(field, lowerQuery string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), lowerQuery)
}
