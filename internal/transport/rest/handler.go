// Package rest provides the HTTP handlers of the inventory console: thin
// plumbing between the browser and the per-session view controller.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ankit-modi39/fi-inventory-management/internal/gateway"
	"github.com/ankit-modi39/fi-inventory-management/internal/inventory"
	"github.com/ankit-modi39/fi-inventory-management/internal/session"
	"github.com/ankit-modi39/fi-inventory-management/internal/view"
	"github.com/ankit-modi39/fi-inventory-management/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	sessions   *session.Manager
	validate   *validator.Validate
	cookieName string
	logger     *slog.Logger
}

// NewHandler creates the console API handler.
func NewHandler(sessions *session.Manager, cookieName string, logger *slog.Logger) *Handler {
	return &Handler{
		sessions:   sessions,
		validate:   validator.New(),
		cookieName: cookieName,
		logger:     logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the console API routes.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.RegisterUser)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Post("/auth/logout", h.Logout)

			r.Route("/view", func(r chi.Router) {
				r.Get("/dashboard", h.Dashboard)

				r.Route("/products", func(r chi.Router) {
					r.Get("/", h.ProductsView)
					r.Post("/", h.CreateProduct)
					r.Post("/refresh", h.Refresh)
					r.Post("/next", h.NextPage)
					r.Post("/previous", h.PreviousPage)

					r.Route("/{id}", func(r chi.Router) {
						r.Delete("/", h.DeleteProduct)
						r.Post("/edit", h.StartEdit)
						r.Put("/edit", h.UpdateEdit)
						r.Delete("/edit", h.CancelEdit)
						r.Post("/edit/commit", h.CommitEdit)
					})
				})
			})
		})
	})

	r.Get("/livez", h.Live)
	r.Get("/readyz", h.Ready)
}

// RequireSession resolves the session cookie and stashes the session id in the
// request context. Unknown or expired sessions get 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.cookieName)
		if err != nil {
			web.RespondError(w, h.logger, http.StatusUnauthorized, "Not logged in")
			return
		}
		if _, err := h.sessions.Get(cookie.Value); err != nil {
			web.RespondError(w, h.logger, http.StatusUnauthorized, "Session expired, please log in again")
			return
		}
		ctx := web.WithSessionID(r.Context(), cookie.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type credentialsDto struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

type editTextDto struct {
	Text string `json:"text"`
}

type pageView struct {
	Products    []inventory.Product `json:"products"`
	Page        int                 `json:"page"`
	Size        int                 `json:"size"`
	HasPrevious bool                `json:"has_previous"`
	MayHaveNext bool                `json:"may_have_next"`
	Stats       inventory.Stats     `json:"stats"`
	Edit        *editView           `json:"edit,omitempty"`
}

type editView struct {
	ProductID string `json:"product_id"`
	Pending   string `json:"pending"`
}

// RegisterUser forwards a registration request to the inventory service.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	dto, ok := h.decodeCredentials(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.sessions.Register(r.Context(), dto.Username, dto.Password); err != nil {
		mLogger.WarnContext(r.Context(), "Registration failed", "username", dto.Username, "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login opens a console session and sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	dto, ok := h.decodeCredentials(w, r, mLogger)
	if !ok {
		return
	}
	s, err := h.sessions.Login(r.Context(), dto.Username, dto.Password)
	if err != nil {
		mLogger.WarnContext(r.Context(), "Login failed", "username", dto.Username, "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{
		"username":   s.Username,
		"expires_at": s.ExpiresAt,
	})
}

// Logout drops the session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if id, ok := web.GetSessionID(r.Context()); ok {
		h.sessions.Logout(id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{"message": "Logged out"})
}

// ProductsView renders the current page snapshot, loading page 1 on the first
// access of a session.
func (h *Handler) ProductsView(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	if !ctrl.Loaded() {
		if err := ctrl.LoadPage(r.Context()); err != nil {
			mLogger.ErrorContext(r.Context(), "Initial page load failed", "error", err)
			h.respondOpError(w, mLogger, err)
			return
		}
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// Refresh re-fetches the current page. On failure the prior snapshot stays.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	if err := ctrl.LoadPage(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Page refresh failed", "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// NextPage advances the cursor and re-fetches.
func (h *Handler) NextPage(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	page, err := ctrl.AdvancePage(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Failed to load next page", "page", page, "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// PreviousPage retreats the cursor and re-fetches.
func (h *Handler) PreviousPage(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	page, err := ctrl.RetreatPage(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Failed to load previous page", "page", page, "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// CreateProduct validates the submitted product and forwards it to the
// inventory service.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	var dto inventory.ProductCreate
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.validateStruct(w, r, mLogger, dto) {
		return
	}
	if !dto.Price.IsPositive() {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Price must be greater than zero")
		return
	}
	created, err := ctrl.CreateProduct(r.Context(), dto)
	if err != nil {
		mLogger.WarnContext(r.Context(), "Product creation failed", "sku", dto.SKU, "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created", "id", created.ID, "sku", created.SKU)
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]string{
		"product_id": created.ID,
		"message":    "Product created successfully",
	})
}

// DeleteProduct removes a product. The confirm=true query parameter is the
// explicit confirmation gate; without it nothing is sent to the service.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := ctrl.DeleteProduct(r.Context(), id.String(), confirmed); err != nil {
		mLogger.WarnContext(r.Context(), "Product deletion failed", "id", id, "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted", "id", id)
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// StartEdit opens an inline quantity edit for a row on the current page.
func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := ctrl.StartEdit(id.String()); err != nil {
		h.respondOpError(w, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// UpdateEdit replaces the pending text of the active edit.
func (h *Handler) UpdateEdit(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto editTextDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := ctrl.UpdateEditText(id.String(), dto.Text); err != nil {
		h.respondOpError(w, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// CancelEdit discards the active edit.
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	ctrl.CancelEdit()
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// CommitEdit commits the pending quantity. The edit session closes whatever
// the outcome; on failure the row shows the last confirmed value again.
func (h *Handler) CommitEdit(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	if err := ctrl.CommitEdit(r.Context()); err != nil {
		mLogger.WarnContext(r.Context(), "Commit of quantity edit failed", "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, h.buildPageView(ctrl))
}

// Dashboard renders the aggregate overview.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	ctrl, ok := h.controller(w, r, mLogger)
	if !ok {
		return
	}
	overview, err := ctrl.Overview(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Dashboard fetch failed", "error", err)
		h.respondOpError(w, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, overview)
}

// Live reports process liveness.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports readiness to serve console traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// controller resolves the view controller of the calling session.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*view.Controller, bool) {
	id, ok := web.GetSessionID(r.Context())
	if !ok {
		web.RespondError(w, logger, http.StatusUnauthorized, "Not logged in")
		return nil, false
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		web.RespondError(w, logger, http.StatusUnauthorized, "Session expired, please log in again")
		return nil, false
	}
	return s.Controller, true
}

func (h *Handler) buildPageView(ctrl *view.Controller) pageView {
	snap := ctrl.Snapshot()
	pv := pageView{
		Products:    snap.Products,
		Page:        snap.Page,
		Size:        snap.Size,
		HasPrevious: snap.Page > 1,
		MayHaveNext: len(snap.Products) == snap.Size,
		Stats:       ctrl.Stats(),
	}
	if id, pending, active := ctrl.EditState(); active {
		pv.Edit = &editView{ProductID: id, Pending: pending}
	}
	return pv
}

func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (credentialsDto, bool) {
	var dto credentialsDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return dto, false
	}
	if !h.validateStruct(w, r, logger, dto) {
		return dto, false
	}
	return dto, true
}

// validateStruct runs struct-tag validation and reports field errors.
func (h *Handler) validateStruct(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dto any) bool {
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		logger.ErrorContext(r.Context(), "Validation failed", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}

// respondOpError maps controller and gateway errors onto console responses.
// Gateway detail messages are surfaced to the user verbatim.
func (h *Handler) respondOpError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, view.ErrInvalidQuantity), errors.Is(err, view.ErrNotConfirmed):
		web.RespondError(w, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, view.ErrRowNotVisible):
		web.RespondError(w, logger, http.StatusNotFound, err.Error())
	case errors.Is(err, view.ErrNoActiveEdit):
		web.RespondError(w, logger, http.StatusConflict, err.Error())
	default:
		var statusErr *gateway.StatusError
		if errors.As(err, &statusErr) {
			status := http.StatusBadGateway
			if statusErr.Status >= 400 && statusErr.Status < 500 {
				status = statusErr.Status
			}
			web.RespondError(w, logger, status, statusErr.Detail)
			return
		}
		web.RespondError(w, logger, http.StatusBadGateway, "The inventory service is unavailable")
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	if reqID, found := web.GetRequestID(r.Context()); found {
		return h.logger.With("request_id", reqID)
	}
	return h.logger
}
