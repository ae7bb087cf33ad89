package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/rl1809/jewelry-store/internal/adapter/storage"
	"github.com/rl1809/jewelry-store/internal/config"
	"github.com/rl1809/jewelry-store/internal/core/domain"
	"github.com/rl1809/jewelry-store/internal/core/service"
)

const totalRequests = 50

// Places concurrent orders through the storefront against whichever store the
// environment selects. Without MONGO_URI or MYSQL_DSN it runs on a throwaway
// JSON file store.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoURI == "" && cfg.MySQLDSN == "" {
		dir, err := os.MkdirTemp("", "jewelry-stress-*")
		if err != nil {
			log.Fatalf("failed to create data dir: %v", err)
		}
		defer os.RemoveAll(dir)
		cfg.DataDir = dir
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	store := storage.Open(connectCtx, storage.Options{
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		MySQLDSN:      cfg.MySQLDSN,
		DataDir:       cfg.DataDir,
	}, zap.NewNop())
	cancel()
	defer store.Close(ctx)

	storefront := service.NewStorefront(store, nil, nil, nil)
	orders, _ := storefront.Service(domain.KindOrders)
	before := len(orders.List(ctx))

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	var mu sync.Mutex
	ids := make(map[string]bool, totalRequests)

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			order, err := orders.Create(ctx, domain.Record{
				"customerName":  gofakeit.Name(),
				"customerEmail": gofakeit.Email(),
				"items":         []any{map[string]any{"productId": "1", "quantity": gofakeit.Number(1, 3)}},
				"total":         gofakeit.Price(1000, 100000),
			})
			if err != nil {
				failCount.Add(1)
				return
			}
			successCount.Add(1)

			mu.Lock()
			ids[order.ID()] = true
			mu.Unlock()
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	fail := failCount.Load()
	stored := len(orders.List(ctx)) - before

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Backend:          %s\n", store.Backend())
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Stored Orders:    %d\n", stored)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == totalRequests && stored == totalRequests {
		fmt.Printf("PASS: All %d orders stored\n", totalRequests)
	} else {
		fmt.Printf("FAIL: Expected %d stored orders, got %d (%d failed)\n", totalRequests, stored, fail)
	}

	if len(ids) == int(success) {
		fmt.Println("PASS: Order ids are unique")
	} else {
		fmt.Printf("FAIL: Expected %d unique ids, got %d\n", success, len(ids))
	}
}
