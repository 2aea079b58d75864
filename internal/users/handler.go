package users

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	"github.com/shopcore/eshop/internal/auth"
	"github.com/shopcore/eshop/internal/domain"
	"github.com/shopcore/eshop/internal/httpx"
)

type Handler struct {
	repo    *Repository
	issuer  *auth.TokenIssuer
	respond *httpx.Responder
	logger  *slog.Logger
}

func NewHandler(repo *Repository, issuer *auth.TokenIssuer, respond *httpx.Responder, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, issuer: issuer, respond: respond, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, users)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, user)
}

type userRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"is_admin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

func (req *userRequest) toDomain() *domain.User {
	return &domain.User{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		IsAdmin:   req.IsAdmin,
		Street:    req.Street,
		Apartment: req.Apartment,
		Zip:       req.Zip,
		City:      req.City,
		Country:   req.Country,
	}
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "Valid email required")
		return
	}
	if req.Password == "" {
		h.respond.Fail(w, http.StatusBadRequest, "Password required")
		return
	}

	if _, err := h.repo.GetByEmail(r.Context(), req.Email); err == nil {
		h.respond.Fail(w, http.StatusBadRequest, "Email already in use")
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		h.logger.Error("failed to check email", "error", err)
		h.respond.Error(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	user := req.toDomain()
	user.PasswordHash = string(hash)
	if err := h.repo.Create(r.Context(), user); err != nil {
		h.logger.Error("failed to create user", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	h.respond.Data(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.respond.Fail(w, http.StatusNotFound, "Invalid credentials")
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		h.respond.Error(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.respond.Fail(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.issuer.Issue(user.ID, user.IsAdmin)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "user_id", user.ID)
		h.respond.Error(w, err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	h.respond.Data(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		h.respond.Fail(w, http.StatusBadRequest, "Valid email required")
		return
	}

	existing, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, err)
		return
	}

	user := req.toDomain()
	user.ID = existing.ID
	user.PasswordHash = existing.PasswordHash
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.respond.Error(w, err)
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.repo.Update(r.Context(), user); err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, user)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respond.Error(w, err)
		return
	}

	h.respond.Message(w, http.StatusOK, "User deleted")
}

func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count users", "error", err)
		h.respond.Error(w, err)
		return
	}

	h.respond.Data(w, http.StatusOK, map[string]int64{"user_count": count})
}
