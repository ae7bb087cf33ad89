package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rl1809/jewelry-store/internal/adapter/handler"
	"github.com/rl1809/jewelry-store/internal/adapter/storage"
	"github.com/rl1809/jewelry-store/internal/core/domain"
	"github.com/rl1809/jewelry-store/internal/core/service"
	"github.com/rl1809/jewelry-store/internal/metrics"
)

var _ = Describe("HTTPHandler", func() {
	var (
		dataDir string
		store   *storage.FileAdapter
		m       *metrics.Metrics
		router  *gin.Engine
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	message := func(rec *httptest.ResponseRecorder) string {
		var body map[string]any
		decode(rec, &body)
		return body["message"].(string)
	}

	BeforeEach(func() {
		dataDir = GinkgoT().TempDir()
		store = storage.NewFileAdapter(dataDir)
		m = metrics.New()
		sf := service.NewStorefront(store, nil, m, nil)
		router = handler.NewRouter(handler.NewHTTPHandler(sf, nil), m, nil, "*")
	})

	Describe("orders", func() {
		It("creates, updates and reads back an order", func() {
			rec := do(http.MethodPost, "/api/orders", `{"customerName":"A","items":[{"productId":"1","quantity":2}],"total":100000}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created domain.Record
			decode(rec, &created)
			Expect(created).To(HaveKeyWithValue("status", "pending"))
			Expect(created).To(HaveKey("createdAt"))
			id := created.ID()
			Expect(id).NotTo(BeEmpty())

			rec = do(http.MethodPut, "/api/orders/"+id, `{"status":"shipped"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = do(http.MethodGet, "/api/orders/"+id, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var got domain.Record
			decode(rec, &got)
			Expect(got).To(HaveKeyWithValue("status", "shipped"))
			Expect(got).To(HaveKeyWithValue("customerName", "A"))
			Expect(got).To(HaveKeyWithValue("total", float64(100000)))
			Expect(got).To(HaveKey("updatedAt"))
			Expect(got["createdAt"]).To(Equal(created["createdAt"]))
		})

		It("keeps a caller-supplied status", func() {
			rec := do(http.MethodPost, "/api/orders", `{"status":"confirmed"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created domain.Record
			decode(rec, &created)
			Expect(created).To(HaveKeyWithValue("status", "confirmed"))
		})

		It("rejects deleting an order", func() {
			rec := do(http.MethodDelete, "/api/orders/1", "")
			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(message(rec)).To(Equal("Method not allowed"))
		})

		It("returns 404 when updating a missing order", func() {
			rec := do(http.MethodPut, "/api/orders/missing", `{"status":"shipped"}`)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(message(rec)).To(Equal("Order not found"))
		})
	})

	Describe("products", func() {
		It("rejects a second product with the same id", func() {
			Expect(do(http.MethodPost, "/api/products", `{"id":"ext-1","name":"Ring"}`).Code).To(Equal(http.StatusCreated))

			rec := do(http.MethodPost, "/api/products", `{"id":"ext-1","name":"Necklace"}`)
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(message(rec)).To(Equal("Product already exists"))

			var got domain.Record
			decode(do(http.MethodGet, "/api/products/ext-1", ""), &got)
			Expect(got).To(HaveKeyWithValue("name", "Ring"))

			var products []domain.Record
			decode(do(http.MethodGet, "/api/products", ""), &products)
			Expect(products).To(HaveLen(1))
		})

		It("rejects an id longer than 64 characters", func() {
			rec := do(http.MethodPost, "/api/products", `{"id":"`+strings.Repeat("x", 65)+`"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects updates with dotted or operator field names", func() {
			rec := do(http.MethodPost, "/api/products", `{"name":"Ring"}`)
			var created domain.Record
			decode(rec, &created)

			rec = do(http.MethodPut, "/api/products/"+created.ID(), `{"details.stone":"ruby"}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(message(rec)).To(Equal("Invalid request body"))

			rec = do(http.MethodPut, "/api/products/"+created.ID(), `{"$set":{"name":"x"}}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown id", func() {
			rec := do(http.MethodGet, "/api/products/nonexistent", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(message(rec)).To(Equal("Product not found"))
		})

		It("finds a product whose id was sent as a number", func() {
			Expect(do(http.MethodPost, "/api/products", `{"id":7,"name":"Bangle"}`).Code).To(Equal(http.StatusCreated))

			rec := do(http.MethodGet, "/api/products/7", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var got domain.Record
			decode(rec, &got)
			Expect(got).To(HaveKeyWithValue("name", "Bangle"))
		})

		It("deletes a product", func() {
			rec := do(http.MethodPost, "/api/products", `{"name":"Bangle"}`)
			var created domain.Record
			decode(rec, &created)

			rec = do(http.MethodDelete, "/api/products/"+created.ID(), "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(message(rec)).To(Equal("Product deleted"))

			Expect(do(http.MethodGet, "/api/products/"+created.ID(), "").Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodDelete, "/api/products/"+created.ID(), "").Code).To(Equal(http.StatusNotFound))
		})

		It("filters the catalog", func() {
			for _, body := range []string{
				`{"name":"Gold Necklace","category":"necklaces"}`,
				`{"name":"Diamond Ring","category":"rings","store":"mumbai"}`,
				`{"name":"Silver Ring","category":"rings"}`,
			} {
				Expect(do(http.MethodPost, "/api/products", body).Code).To(Equal(http.StatusCreated))
			}

			var products []domain.Record
			decode(do(http.MethodGet, "/api/products?category=Rings", ""), &products)
			Expect(products).To(HaveLen(2))

			decode(do(http.MethodGet, "/api/products?category=rings&store=default", ""), &products)
			Expect(products).To(HaveLen(1))
			Expect(products[0]).To(HaveKeyWithValue("name", "Silver Ring"))

			decode(do(http.MethodGet, "/api/products?q=necklace", ""), &products)
			Expect(products).To(HaveLen(1))
		})

		It("serves the sample catalog when the products file is corrupt", func() {
			Expect(os.WriteFile(filepath.Join(dataDir, "products.json"), []byte("{not json"), 0o644)).To(Succeed())

			rec := do(http.MethodGet, "/api/products", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var products []domain.Record
			decode(rec, &products)
			Expect(products).To(HaveLen(3))
			Expect(products[0]).To(HaveKeyWithValue("name", "Gold Necklace"))

			rec = do(http.MethodGet, "/api/products/2", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("fails a write to a corrupt products file with 500", func() {
			Expect(os.WriteFile(filepath.Join(dataDir, "products.json"), []byte("{not json"), 0o644)).To(Succeed())

			rec := do(http.MethodPost, "/api/products", `{"name":"Bangle"}`)
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(message(rec)).To(Equal("Error creating product"))
		})
	})

	Describe("contacts", func() {
		It("lists an empty collection as an empty array", func() {
			rec := do(http.MethodGet, "/api/contacts", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(rec.Body.String())).To(Equal("[]"))
		})

		It("creates and deletes a contact", func() {
			rec := do(http.MethodPost, "/api/contacts", `{"name":"Asha","email":"asha@example.com","message":"Hi"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			var created domain.Record
			decode(rec, &created)

			rec = do(http.MethodDelete, "/api/contacts/"+created.ID(), "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(message(rec)).To(Equal("Contact deleted"))
		})

		It("rejects updating a contact", func() {
			rec := do(http.MethodPut, "/api/contacts/1", `{"name":"B"}`)
			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Describe("request validation", func() {
		DescribeTable("rejects bodies that are not JSON objects",
			func(body string) {
				rec := do(http.MethodPost, "/api/contacts", body)
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(message(rec)).To(Equal("Invalid request body"))
			},
			Entry("array", `[1,2]`),
			Entry("malformed", `{"name":`),
			Entry("null", `null`),
			Entry("string", `"hello"`),
		)
	})

	Describe("routing", func() {
		It("answers unknown paths with 404", func() {
			rec := do(http.MethodGet, "/api/unknown", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(message(rec)).To(Equal("Not found"))
		})

		It("answers unsupported methods on known paths with 405", func() {
			rec := do(http.MethodPatch, "/api/products", "")
			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(message(rec)).To(Equal("Method not allowed"))
		})

		It("answers preflight requests", func() {
			rec := do(http.MethodOptions, "/api/products", "")
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})

		It("tags responses with a request id", func() {
			rec := do(http.MethodGet, "/api/health", "")
			Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})
	})

	Describe("health and stats", func() {
		It("reports fallback mode for the file store", func() {
			rec := do(http.MethodGet, "/api/health", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var health service.Health
			decode(rec, &health)
			Expect(health).To(Equal(service.Health{Status: "ok", Database: "fallback", Backend: "file"}))
		})

		It("counts records per kind", func() {
			do(http.MethodPost, "/api/products", `{"name":"Ring"}`)
			do(http.MethodPost, "/api/orders", `{"customerName":"A"}`)
			do(http.MethodPost, "/api/orders", `{"customerName":"B"}`)

			var stats service.Stats
			decode(do(http.MethodGet, "/api/stats", ""), &stats)
			Expect(stats).To(Equal(service.Stats{Products: 1, Orders: 2, Contacts: 0}))
		})

		It("exposes request metrics", func() {
			do(http.MethodGet, "/api/products", "")

			rec := do(http.MethodGet, "/metrics", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`jewelry_store_http_requests_total{method="GET",route="/api/products",status="200"} 1`))
		})
	})
})
