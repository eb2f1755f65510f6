package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// API is the application surface served over HTTP. Every lifecycle change
// goes through it so the server never touches storage directly.
type API interface {
	Slate() *types.DailySlate
	AnalyzeSlate(ctx context.Context, maxGames int, dryRun bool) (*types.DailySlate, []*types.BetRecord, error)
	ListBets(ctx context.Context, state types.BetState) ([]*types.BetRecord, error)
	GetBet(ctx context.Context, ref string) (*types.BetRecord, error)
	Approve(ctx context.Context, ref string) (*types.BetRecord, error)
	Reject(ctx context.Context, ref string) (*types.BetRecord, error)
	Settle(ctx context.Context, ref string, outcome types.Outcome, realizedUnits float64) (*types.BetRecord, error)
	Bankroll() types.BankrollState
}

// Handler serves the /api routes.
type Handler struct {
	api    API
	logger *zap.Logger
}

// NewHandler creates a handler over api.
func NewHandler(api API, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, logger: logger}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AnalyzeResponse is returned by POST /api/slate/analyze.
type AnalyzeResponse struct {
	Slate   *types.DailySlate  `json:"slate"`
	Created []*types.BetRecord `json:"created"`
	DryRun  bool               `json:"dry_run"`
}

// SettleRequest is the body of POST /api/bets/{id}/settle.
type SettleRequest struct {
	Outcome       string   `json:"outcome"`
	RealizedUnits *float64 `json:"realized_units"`
}

// GetSlate handles GET /api/slate and returns the most recent run.
func (h *Handler) GetSlate(w http.ResponseWriter, r *http.Request) {
	slate := h.api.Slate()
	if slate == nil {
		h.writeError(w, r, types.ErrNotFound)
		return
	}
	h.writeJSON(w, r, http.StatusOK, slate)
}

// AnalyzeSlate handles POST /api/slate/analyze?max_games=N&dry_run=true.
func (h *Handler) AnalyzeSlate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxGames := 0
	if v := q.Get("max_games"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, r, badRequest("max_games must be a non-negative integer"))
			return
		}
		maxGames = n
	}

	dryRun := false
	if v := q.Get("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, r, badRequest("dry_run must be a boolean"))
			return
		}
		dryRun = b
	}

	slate, created, err := h.api.AnalyzeSlate(r.Context(), maxGames, dryRun)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if created == nil {
		created = []*types.BetRecord{}
	}
	h.writeJSON(w, r, http.StatusOK, AnalyzeResponse{Slate: slate, Created: created, DryRun: dryRun})
}

// ListBets handles GET /api/bets?state=pending.
func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	bets, err := h.api.ListBets(r.Context(), types.BetState(r.URL.Query().Get("state")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if bets == nil {
		bets = []*types.BetRecord{}
	}
	h.writeJSON(w, r, http.StatusOK, bets)
}

// GetBet handles GET /api/bets/{id}. The id may be any unique prefix.
func (h *Handler) GetBet(w http.ResponseWriter, r *http.Request) {
	bet, err := h.api.GetBet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, bet)
}

// ApproveBet handles POST /api/bets/{id}/approve.
func (h *Handler) ApproveBet(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "approve", h.api.Approve)
}

// RejectBet handles POST /api/bets/{id}/reject.
func (h *Handler) RejectBet(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "reject", h.api.Reject)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op string,
	fn func(context.Context, string) (*types.BetRecord, error)) {
	id := chi.URLParam(r, "id")
	bet, err := fn(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("api-bet-command",
		zap.String("op", op),
		zap.String("bet-id", bet.ID),
		zap.String("state", string(bet.State)))
	h.writeJSON(w, r, http.StatusOK, bet)
}

// SettleBet handles POST /api/bets/{id}/settle.
func (h *Handler) SettleBet(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.writeError(w, r, badRequest("invalid JSON body"))
		return
	}
	if req.RealizedUnits == nil {
		h.writeError(w, r, badRequest("realized_units is required"))
		return
	}

	outcome, err := types.ParseOutcome(req.Outcome)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	bet, err := h.api.Settle(r.Context(), chi.URLParam(r, "id"), outcome, *req.RealizedUnits)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("api-bet-command",
		zap.String("op", "settle"),
		zap.String("bet-id", bet.ID),
		zap.String("state", string(bet.State)))
	h.writeJSON(w, r, http.StatusOK, bet)
}

// GetBankroll handles GET /api/bankroll.
func (h *Handler) GetBankroll(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.api.Bankroll())
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	APIRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(status)).Inc()

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("api-request-failed",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	} else {
		h.logger.Debug("api-request-rejected",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	h.writeJSON(w, r, status, ErrorResponse{Error: err.Error(), Code: code})
}

// StatusFor maps an error to an HTTP status and a stable error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, types.ErrAmbiguousIdentifier):
		return http.StatusConflict, "ambiguous_identifier"
	case errors.Is(err, types.ErrAlreadySettled):
		return http.StatusConflict, "already_settled"
	case errors.Is(err, types.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, types.ErrExternalCallFailed):
		return http.StatusBadGateway, "external_call_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusInternalServerError, "internal"
}

type requestError string

func (e requestError) Error() string { return string(e) }

func (e requestError) Unwrap() error { return types.ErrInvalidInput }

func badRequest(msg string) error {
	return requestError(msg)
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return r.URL.Path
}
