package handler

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/rl1809/jewelry-store/internal/core/service"
)

// StorefrontService is the name health checks use for the storefront as a
// whole. The empty name reports overall server health.
const StorefrontService = "jewelry.Storefront"

type GRPCHandler struct {
	health     *health.Server
	storefront *service.Storefront
	logger     *zap.Logger
}

func NewGRPCHandler(storefront *service.Storefront, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &GRPCHandler{
		health:     health.NewServer(),
		storefront: storefront,
		logger:     logger,
	}
	h.Refresh()
	return h
}

// Refresh publishes the current serving status. Fallback mode still serves;
// it is only noted in the log.
func (h *GRPCHandler) Refresh() {
	status := h.storefront.Health()
	if status.Database == service.DatabaseFallback {
		h.logger.Warn("serving from fallback store", zap.String("backend", status.Backend))
	}
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(StorefrontService, healthpb.HealthCheckResponse_SERVING)
}

func (h *GRPCHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

// Shutdown flips every service to NOT_SERVING so clients drain before the
// server stops.
func (h *GRPCHandler) Shutdown() {
	h.health.Shutdown()
}
