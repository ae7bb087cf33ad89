package service

import (
	"strings"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

// DefaultStore selects products that carry no store tag.
const DefaultStore = "default"

type ProductFilter struct {
	Store    string
	Category string
	Query    string
}

func (f ProductFilter) empty() bool {
	return f.Store == "" && (f.Category == "" || strings.EqualFold(f.Category, "all")) && f.Query == ""
}

// Apply returns the products matching every non-empty criterion. Matching is
// case-insensitive; a Category of "all" matches everything.
func (f ProductFilter) Apply(products []domain.Record) []domain.Record {
	if f.empty() {
		return products
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Record, 0, len(products))
	for _, p := range products {
		if !f.matchStore(p) || !f.matchCategory(p) {
			continue
		}
		if query != "" && !matchQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (f ProductFilter) matchStore(p domain.Record) bool {
	if f.Store == "" {
		return true
	}
	store := p.Text("store")
	if strings.EqualFold(f.Store, DefaultStore) {
		return store == ""
	}
	return strings.EqualFold(store, f.Store)
}

func (f ProductFilter) matchCategory(p domain.Record) bool {
	if f.Category == "" || strings.EqualFold(f.Category, "all") {
		return true
	}
	return strings.EqualFold(p.Text("category"), f.Category)
}

func matchQuery(p domain.Record, query string) bool {
	for _, field := range []string{"name", "description", "category"} {
		if strings.Contains(strings.ToLower(p.Text(field)), query) {
			return true
		}
	}
	return false
}
