// Package handlers exposes the link service over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Totarae/linkgate/internal/auth"
	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/redirect"
	"github.com/Totarae/linkgate/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	dateLayout  = "2006-01-02"
	maxBodySize = 1 << 16
)

type Handler struct {
	Service *service.LinkService
	BaseURL string
	Logger  *zap.Logger
}

func NewHandler(svc *service.LinkService, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Service: svc,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Logger:  logger,
	}
}

// LinkResponse is the JSON form of a link. The credential is never exposed.
type LinkResponse struct {
	*model.Link
	ShortURL  string `json:"short_url"`
	Protected bool   `json:"protected"`
}

func (h *Handler) linkResponse(l *model.Link) LinkResponse {
	return LinkResponse{Link: l, ShortURL: h.BaseURL + "/l/" + l.ShortCode, Protected: l.Protected()}
}

type editRequest struct {
	DestinationURL string `json:"destination_url"`
}

type errorResponse struct {
	Error         string `json:"error"`
	CustomMessage string `json:"custom_message,omitempty"`
}

// CreateLink handles POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerFrom(r.Context())

	var req model.CreateLinkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.writeError(w, &model.ValidationError{Field: "body", Reason: "is not valid JSON"})
		return
	}
	req.OwnerID = ownerID

	link, err := h.Service.CreateLink(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.linkResponse(link))
}

// ListLinks handles GET /api/links?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerFrom(r.Context())

	from, err := parseDate(r.URL.Query().Get("from"), "from")
	if err != nil {
		h.writeError(w, err)
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"), "to")
	if err != nil {
		h.writeError(w, err)
		return
	}

	links, err := h.Service.ListLinks(r.Context(), ownerID, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]LinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, h.linkResponse(l))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// GetLink handles GET /api/links/{id}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.linkResponse(link))
}

// EditLink handles PATCH /api/links/{id}.
func (h *Handler) EditLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}
	var req editRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.writeError(w, &model.ValidationError{Field: "body", Reason: "is not valid JSON"})
		return
	}
	if err := h.Service.EditLink(r.Context(), link.ID, req.DestinationURL); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Deactivate handles POST /api/links/{id}/deactivate.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// Activate handles POST /api/links/{id}/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}
	if err := h.Service.SetActive(r.Context(), link.ID, active); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteLink handles DELETE /api/links/{id}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteLink(r.Context(), link.ID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClicksOverTime handles GET /api/links/{id}/clicks?days=N&dense=true.
func (h *Handler) ClicksOverTime(w http.ResponseWriter, r *http.Request) {
	link, ok := h.ownedLink(w, r)
	if !ok {
		return
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 366 {
			h.writeError(w, &model.ValidationError{Field: "days", Reason: "must be between 1 and 366"})
			return
		}
		days = n
	}
	dense, _ := strconv.ParseBool(r.URL.Query().Get("dense"))

	var (
		series []model.DailyClicks
		err    error
	)
	if dense {
		series, err = h.Service.DenseClicksOverTime(r.Context(), link.ID, days)
	} else {
		series, err = h.Service.ClicksOverTime(r.Context(), link.ID, days)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	if series == nil {
		series = []model.DailyClicks{}
	}
	h.writeJSON(w, http.StatusOK, series)
}

// UserSummary handles GET /api/stats.
func (h *Handler) UserSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := auth.OwnerFrom(r.Context())
	summary, err := h.Service.UserSummary(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// Redirect handles GET and POST /l/{code}. A POST may carry the password
// as a form field or a JSON body {"password": "..."}.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.Error(w, "Bad Request: Missing code in URL", http.StatusBadRequest)
		return
	}

	req := redirect.Request{
		ShortCode: code,
		Client:    clientIP(r),
		Meta:      model.ClickMeta{UserAgent: r.UserAgent(), Referrer: r.Referer()},
	}
	if r.Method == http.MethodPost {
		pw, err := readPassword(w, r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if pw != "" {
			req.Password = &pw
		}
	}

	out, err := h.Service.Resolve(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// GET отвечает 307; после POST с паролем 303, чтобы браузер перешёл
	// по адресу через GET и не переслал тело с паролем
	status := http.StatusTemporaryRedirect
	if r.Method == http.MethodPost {
		status = http.StatusSeeOther
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, out.DestinationURL, status)
}

// Ping handles GET /ping.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Ping(r.Context()); err != nil {
		h.Logger.Error("Ping failed", zap.Error(err))
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ownedLink(w http.ResponseWriter, r *http.Request) (*model.Link, bool) {
	ownerID, _ := auth.OwnerFrom(r.Context())
	link, err := h.Service.GetOwnedLink(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return link, true
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrCollision):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInactiveLink):
		return http.StatusGone
	case errors.Is(err, model.ErrPasswordRequired):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrPasswordRejected):
		return http.StatusForbidden
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrExhaustedRetries),
		errors.Is(err, model.ErrDegradedData),
		errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := errorResponse{Error: err.Error()}

	var required *model.PasswordRequiredError
	if errors.As(err, &required) {
		resp.CustomMessage = required.CustomMessage
	}
	if status >= http.StatusInternalServerError {
		// Детали ошибок хранилища наружу не отдаём
		h.Logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
		resp.Error = http.StatusText(status)
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func readPassword(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", &model.ValidationError{Field: "body", Reason: "is not valid JSON"}
		}
		return body.Password, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", &model.ValidationError{Field: "body", Reason: "is not a valid form"}
	}
	return r.PostForm.Get("password"), nil
}

func parseDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}
	return t, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
