package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/jewelry-store/internal/core/domain"
)

func names(records []domain.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Text("name"))
	}
	return out
}

func TestProductFilter_Apply(t *testing.T) {
	catalog := []domain.Record{
		{"id": "1", "name": "Gold Necklace", "category": "necklaces", "description": "22k chain"},
		{"id": "2", "name": "Diamond Ring", "category": "rings", "store": "Mumbai"},
		{"id": "3", "name": "Pearl Earrings", "category": "earrings", "description": "freshwater pearl", "store": "mumbai"},
		{"id": "4", "name": "Silver Ring", "category": "Rings", "store": "Delhi"},
	}

	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{"no filter", ProductFilter{}, []string{"Gold Necklace", "Diamond Ring", "Pearl Earrings", "Silver Ring"}},
		{"category all", ProductFilter{Category: "ALL"}, []string{"Gold Necklace", "Diamond Ring", "Pearl Earrings", "Silver Ring"}},
		{"category case-insensitive", ProductFilter{Category: "rings"}, []string{"Diamond Ring", "Silver Ring"}},
		{"store", ProductFilter{Store: "MUMBAI"}, []string{"Diamond Ring", "Pearl Earrings"}},
		{"default store", ProductFilter{Store: DefaultStore}, []string{"Gold Necklace"}},
		{"query on name", ProductFilter{Query: "ring"}, []string{"Diamond Ring", "Pearl Earrings", "Silver Ring"}},
		{"query on description", ProductFilter{Query: "Freshwater"}, []string{"Pearl Earrings"}},
		{"combined", ProductFilter{Store: "delhi", Category: "rings", Query: "silver"}, []string{"Silver Ring"}},
		{"no match", ProductFilter{Query: "platinum"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(tt.filter.Apply(catalog)))
		})
	}
}

func TestStorefront_HealthAndStats(t *testing.T) {
	store := newMockStore()
	sf := NewStorefront(store, nil, nil, nil)
	ctx := context.Background()

	products, ok := sf.Service(domain.KindProducts)
	require.True(t, ok)
	contacts, ok := sf.Service(domain.KindContacts)
	require.True(t, ok)

	_, err := products.Create(ctx, domain.Record{"name": "Ring"})
	require.NoError(t, err)
	_, err = contacts.Create(ctx, domain.Record{"name": "A"})
	require.NoError(t, err)
	_, err = contacts.Create(ctx, domain.Record{"name": "B"})
	require.NoError(t, err)

	assert.Equal(t, Stats{Products: 1, Orders: 0, Contacts: 2}, sf.Stats(ctx))
	assert.Equal(t, Health{Status: "ok", Database: DatabaseLive, Backend: "mock"}, sf.Health())

	store.live = false
	assert.Equal(t, DatabaseFallback, sf.Health().Database)

	_, ok = sf.Service(domain.Kind("users"))
	assert.False(t, ok)
}

func TestStorefront_StatsDegradeToSampleCatalog(t *testing.T) {
	sf := NewStorefront(&brokenStore{}, nil, nil, nil)
	assert.Equal(t, Stats{Products: 3}, sf.Stats(context.Background()))
}
