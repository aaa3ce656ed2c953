/**
 * @description
 * This file contains the HTTP handlers for the engagement-service's API
 * endpoints. Handlers parse incoming requests, call the appropriate
 * application service, and translate service errors into the HTTP taxonomy:
 * validation failures are 422, unknown references 404, illegal state
 * transitions 400, and anything unexpected a logged generic 500.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: Service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/app"
	"github.com/nutrivibes/engagement-service/internal/domain"
	"github.com/nutrivibes/engagement-service/internal/store"
)

// Handler holds the application services the endpoints dispatch to.
type Handler struct {
	roster    *app.Roster
	ledger    *app.Ledger
	dashboard *app.Dashboard
	logger    *slog.Logger
}

// NewHandler creates a new Handler with the given services.
func NewHandler(roster *app.Roster, ledger *app.Ledger, dashboard *app.Dashboard, logger *slog.Logger) *Handler {
	return &Handler{roster: roster, ledger: ledger, dashboard: dashboard, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) writeError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

// handleServiceError maps application errors onto HTTP statuses. Unexpected
// failures are logged with detail and surfaced as a generic internal error;
// they are never silently swallowed.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var validation *app.ValidationError
	switch {
	case errors.As(err, &validation):
		h.writeError(w, http.StatusUnprocessableEntity, validation.Error())
	case errors.Is(err, store.ErrClientNotFound), errors.Is(err, store.ErrSubscriptionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrInvalidStateTransition):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseDay(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func urlUUID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	return id, err == nil
}

// handleCreateClient onboards a new client for the authenticated dietician.
func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	dieticianID, ok := DieticianFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		FullName         string  `json:"full_name"`
		Phone            string  `json:"phone"`
		Status           string  `json:"status"`
		ProgramStartDate *string `json:"program_start_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := app.CreateClientParams{
		DieticianID: dieticianID,
		FullName:    req.FullName,
		Phone:       req.Phone,
		Status:      domain.ClientStatus(req.Status),
	}
	if req.ProgramStartDate != nil {
		start, err := parseDay(*req.ProgramStartDate)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid program_start_date")
			return
		}
		params.ProgramStartDate = &start
	}

	client, err := h.roster.CreateClient(r.Context(), params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, client)
}

// handleUpdateClient applies roster changes; a program start date change
// regenerates the client's pending follow-ups.
func (h *Handler) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := urlUUID(r, "clientID")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var req struct {
		FullName         *string `json:"full_name"`
		Phone            *string `json:"phone"`
		Status           *string `json:"status"`
		ProgramStartDate *string `json:"program_start_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := app.UpdateClientParams{
		FullName: req.FullName,
		Phone:    req.Phone,
	}
	if req.Status != nil {
		status := domain.ClientStatus(*req.Status)
		params.Status = &status
	}
	if req.ProgramStartDate != nil {
		start, err := parseDay(*req.ProgramStartDate)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid program_start_date")
			return
		}
		params.ProgramStartDate = &start
	}

	client, err := h.roster.UpdateClient(r.Context(), clientID, params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, client)
}

// handleDeleteClient soft-deletes by default; ?hard=true cascades over every
// dependent record.
func (h *Handler) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := urlUUID(r, "clientID")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	hard := r.URL.Query().Get("hard") == "true"
	if err := h.roster.DeleteClient(r.Context(), clientID, hard); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAssignPlan creates a new subscription for a client, expiring any
// previously active one.
func (h *Handler) handleAssignPlan(w http.ResponseWriter, r *http.Request) {
	clientID, ok := urlUUID(r, "clientID")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var req struct {
		PlanName       string `json:"plan_name"`
		Price          int64  `json:"price"`
		DurationMonths int    `json:"duration_months"`
		StartDate      string `json:"start_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := app.AssignPlanParams{
		ClientID:       clientID,
		PlanName:       req.PlanName,
		TotalAmount:    req.Price,
		DurationMonths: req.DurationMonths,
	}
	if req.StartDate != "" {
		start, err := parseDay(req.StartDate)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid start_date")
			return
		}
		params.StartDate = start
	}

	sub, err := h.ledger.AssignPlan(r.Context(), params)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sub)
}

// handleRecordPayment appends a payment to a subscription.
func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := urlUUID(r, "subscriptionID")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	var req struct {
		Amount int64  `json:"amount"`
		Method string `json:"method"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.ledger.RecordPayment(r.Context(), subscriptionID, req.Amount, req.Method, req.Note)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// handlePauseState pauses or resumes a subscription. Illegal transitions
// return 400.
func (h *Handler) handlePauseState(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := urlUUID(r, "subscriptionID")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	var req struct {
		Action string  `json:"action"`
		Reason *string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		sub *domain.Subscription
		err error
	)
	switch req.Action {
	case "PAUSE":
		sub, err = h.ledger.Pause(r.Context(), subscriptionID, req.Reason)
	case "RESUME":
		sub, err = h.ledger.Resume(r.Context(), subscriptionID)
	default:
		h.writeError(w, http.StatusBadRequest, "action must be PAUSE or RESUME")
		return
	}
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// handleGetSubscription returns the client's most recent subscription, or a
// JSON null when the client has never had one.
func (h *Handler) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	clientID, ok := urlUUID(r, "clientID")
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	sub, err := h.ledger.LatestSubscription(r.Context(), clientID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// handleDashboard returns the authenticated dietician's daily picture.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dieticianID, ok := DieticianFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.dashboard.Stats(r.Context(), dieticianID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
