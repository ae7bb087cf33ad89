package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/jewelry-store/internal/core/domain"
	"github.com/rl1809/jewelry-store/internal/core/service"
	"github.com/rl1809/jewelry-store/internal/metrics"
)

type HTTPHandler struct {
	storefront *service.Storefront
	logger     *zap.Logger
}

type MessageResponse struct {
	Message string `json:"message"`
}

func NewHTTPHandler(storefront *service.Storefront, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{storefront: storefront, logger: logger}
}

// NewRouter wires the storefront routes. Unknown paths answer 404 and known
// paths with an unsupported method answer 405.
func NewRouter(h *HTTPHandler, m *metrics.Metrics, logger *zap.Logger, corsOrigin string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.Use(Metrics(m))
	router.Use(CORS(corsOrigin))

	api := router.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/stats", h.Stats)

		api.GET("/products", h.ListProducts)
		api.POST("/products", h.create(domain.KindProducts))
		api.GET("/products/:id", h.get(domain.KindProducts))
		api.PUT("/products/:id", h.update(domain.KindProducts))
		api.DELETE("/products/:id", h.remove(domain.KindProducts))

		api.GET("/orders", h.list(domain.KindOrders))
		api.POST("/orders", h.create(domain.KindOrders))
		api.GET("/orders/:id", h.get(domain.KindOrders))
		api.PUT("/orders/:id", h.update(domain.KindOrders))

		api.GET("/contacts", h.list(domain.KindContacts))
		api.POST("/contacts", h.create(domain.KindContacts))
		api.GET("/contacts/:id", h.get(domain.KindContacts))
		api.DELETE("/contacts/:id", h.remove(domain.KindContacts))
	}

	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, MessageResponse{Message: "Method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, MessageResponse{Message: "Not found"})
	})

	return router
}

func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.storefront.Health())
}

func (h *HTTPHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.storefront.Stats(c.Request.Context()))
}

// ListProducts serves the catalog, narrowed by the optional store, category
// and q query parameters.
func (h *HTTPHandler) ListProducts(c *gin.Context) {
	svc := h.service(domain.KindProducts)
	filter := service.ProductFilter{
		Store:    c.Query("store"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	c.JSON(http.StatusOK, filter.Apply(svc.List(c.Request.Context())))
}

func (h *HTTPHandler) list(kind domain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.service(kind).List(c.Request.Context()))
	}
}

func (h *HTTPHandler) get(kind domain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := h.service(kind).Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, MessageResponse{Message: kind.Singular() + " not found"})
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func (h *HTTPHandler) create(kind domain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, ok := h.bind(c)
		if !ok {
			return
		}

		record, err := h.service(kind).Create(c.Request.Context(), payload)
		if err != nil {
			h.writeError(c, kind, "creating", err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

func (h *HTTPHandler) update(kind domain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		patch, ok := h.bind(c)
		if !ok {
			return
		}

		record, err := h.service(kind).Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			h.writeError(c, kind, "updating", err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func (h *HTTPHandler) remove(kind domain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.service(kind).Delete(c.Request.Context(), c.Param("id")); err != nil {
			h.writeError(c, kind, "deleting", err)
			return
		}
		c.JSON(http.StatusOK, MessageResponse{Message: kind.Singular() + " deleted"})
	}
}

// bind decodes a JSON object body. Anything else is answered with 400.
func (h *HTTPHandler) bind(c *gin.Context) (domain.Record, bool) {
	var payload domain.Record
	if err := c.ShouldBindJSON(&payload); err != nil || payload == nil {
		if err != nil {
			h.logger.Debug("invalid request body", zap.Error(err))
		}
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
		return nil, false
	}
	return payload, true
}

func (h *HTTPHandler) writeError(c *gin.Context, kind domain.Kind, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, MessageResponse{Message: kind.Singular() + " not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, MessageResponse{Message: kind.Singular() + " already exists"})
	case errors.Is(err, domain.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, MessageResponse{Message: "Invalid request body"})
	case errors.Is(err, domain.ErrUnsupported):
		c.JSON(http.StatusMethodNotAllowed, MessageResponse{Message: "Method not allowed"})
	default:
		h.logger.Error("store write failed",
			zap.String("kind", string(kind)),
			zap.String("op", op),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: "Error " + op + " " + singularLower(kind)})
	}
}

func (h *HTTPHandler) service(kind domain.Kind) *service.EntityService {
	svc, _ := h.storefront.Service(kind)
	return svc
}

func singularLower(kind domain.Kind) string {
	return strings.ToLower(kind.Singular())
}
