package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/jewelry-store/internal/core/domain"
	"github.com/rl1809/jewelry-store/internal/port"
)

const (
	DatabaseLive     = "live"
	DatabaseFallback = "fallback"
)

type Storefront struct {
	store    port.EntityStore
	services map[domain.Kind]*EntityService
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
}

type Stats struct {
	Products int `json:"products"`
	Orders   int `json:"orders"`
	Contacts int `json:"contacts"`
}

// NewStorefront builds one EntityService per kind over a shared store and id
// generator.
func NewStorefront(store port.EntityStore, events port.EventPublisher, observer port.ReadObserver, logger *zap.Logger) *Storefront {
	ids := domain.NewIDGenerator(nil)
	services := make(map[domain.Kind]*EntityService, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		services[kind] = NewEntityService(kind, store, events, observer, ids, logger)
	}
	return &Storefront{store: store, services: services}
}

func (s *Storefront) Service(kind domain.Kind) (*EntityService, bool) {
	svc, ok := s.services[kind]
	return svc, ok
}

func (s *Storefront) Health() Health {
	database := DatabaseFallback
	if s.store.Live() {
		database = DatabaseLive
	}
	return Health{Status: "ok", Database: database, Backend: s.store.Backend()}
}

// Stats counts each kind concurrently. Counts degrade the same way List does.
func (s *Storefront) Stats(ctx context.Context) Stats {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats.Products = len(s.services[domain.KindProducts].List(gctx))
		return nil
	})
	g.Go(func() error {
		stats.Orders = len(s.services[domain.KindOrders].List(gctx))
		return nil
	})
	g.Go(func() error {
		stats.Contacts = len(s.services[domain.KindContacts].List(gctx))
		return nil
	})

	_ = g.Wait()
	return stats
}
