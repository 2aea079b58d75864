package categories

import (
	"encoding/json"
	"log/slog"
	"net/http"

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
	categories, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, categories)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	category, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, category)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		h.respond.Fail(w, http.StatusBadRequest, "category name is required")
		return
	}

	category := &domain.Category{Name: req.Name, Icon: req.Icon, Color: req.Color}
	if err := h.repo.Create(r.Context(), category); err != nil {
		h.logger.Error("failed to create category", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.logger.Info("category created", "category_id", category.ID)
	h.respond.Data(w, http.StatusCreated, category)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := &domain.Category{ID: r.PathValue("id"), Name: req.Name, Icon: req.Icon, Color: req.Color}
	if err := h.repo.Update(r.Context(), category); err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, category)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Message(w, http.StatusOK, "Category deleted")
}
