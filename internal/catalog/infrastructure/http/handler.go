package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/warehousehq/warehouse-backend/internal/catalog/application"
	"github.com/warehousehq/warehouse-backend/internal/catalog/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("catalog-http"),
	}
}

// ProductRoutes are mounted at /products.
func (h *Handler) ProductRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.createProduct)
	r.Get("/", h.listProducts)
	r.Get("/{id}", h.getProduct)
	r.Put("/{id}", h.updateProduct)
	r.Delete("/{id}", h.archiveProduct)
	return r
}

// CategoryRoutes are mounted at /categories.
func (h *Handler) CategoryRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.createCategory)
	r.Get("/", h.listCategories)
	r.Delete("/{id}", h.deleteCategory)
	return r
}

type productReq struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	CategoryName string          `json:"category_name"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	p, err := h.service.CreateProduct(ctx, application.CreateProductInput{
		Name:         req.Name,
		SKU:          req.SKU,
		Unit:         req.Unit,
		Price:        req.Price,
		Description:  req.Description,
		CategoryName: req.CategoryName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.ListProducts(ctx, domain.ProductFilter{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProduct")
	defer span.End()

	p, err := h.service.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type productUpdateReq struct {
	Name         *string          `json:"name"`
	SKU          *string          `json:"sku"`
	Unit         *string          `json:"unit"`
	Price        *decimal.Decimal `json:"price"`
	Description  *string          `json:"description"`
	CategoryName *string          `json:"category_name"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	var req productUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateProduct(ctx, chi.URLParam(r, "id"), domain.ProductUpdate{
		Name:         req.Name,
		SKU:          req.SKU,
		Unit:         req.Unit,
		Price:        req.Price,
		Description:  req.Description,
		CategoryName: req.CategoryName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) archiveProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ArchiveProduct")
	defer span.End()

	if err := h.service.ArchiveProduct(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCategory")
	defer span.End()

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	c, err := h.service.CreateCategory(ctx, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListCategories")
	defer span.End()

	categories, err := h.service.ListCategories(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteCategory")
	defer span.End()

	if err := h.service.DeleteCategory(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), apperror.HTTPStatus(err))
}
