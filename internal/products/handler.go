package products

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopcore/eshop/internal/domain"
	"github.com/shopcore/eshop/internal/httpx"
)

type Handler struct {
	repo    *Repository
	respond *httpx.Responder
	logger  *slog.Logger
}

func NewHandler(repo *Repository, respond *httpx.Responder, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, respond: respond, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var categoryIDs []string
	if raw := r.URL.Query().Get("categories"); raw != "" {
		categoryIDs = strings.Split(raw, ",")
	}

	products, err := h.repo.List(r.Context(), categoryIDs)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, product)
}

type productRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Brand        string `json:"brand"`
	Price        int64  `json:"price"`
	CategoryID   string `json:"category_id"`
	CountInStock int    `json:"count_in_stock"`
	IsFeatured   bool   `json:"is_featured"`
}

func (req *productRequest) validate() error {
	if req.Name == "" {
		return &domain.ValidationError{Msg: "product name is required"}
	}
	if req.Price < 0 {
		return &domain.ValidationError{Msg: "price must not be negative"}
	}
	if req.CategoryID == "" {
		return &domain.ValidationError{Msg: "category reference is required"}
	}
	return nil
}

func (req *productRequest) toDomain() *domain.Product {
	return &domain.Product{
		Name:         req.Name,
		Description:  req.Description,
		Image:        req.Image,
		Brand:        req.Brand,
		Price:        req.Price,
		CategoryID:   req.CategoryID,
		CountInStock: req.CountInStock,
		IsFeatured:   req.IsFeatured,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		h.respond.Error(w, err)
		return
	}

	product := req.toDomain()
	if err := h.repo.Create(r.Context(), product); err != nil {
		h.logger.Error("failed to create product", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID)
	h.respond.Data(w, http.StatusCreated, product)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		h.respond.Error(w, err)
		return
	}

	product := req.toDomain()
	product.ID = r.PathValue("id")
	if err := h.repo.Update(r.Context(), product); err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Message(w, http.StatusOK, "Product deleted")
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count products", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, map[string]int64{"product_count": count})
}

func (h *Handler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.PathValue("count"))
	if err != nil || limit < 0 {
		h.respond.Fail(w, http.StatusBadRequest, "count must be a non-negative integer")
		return
	}

	products, err := h.repo.Featured(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list featured products", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, products)
}
