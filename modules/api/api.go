package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	a "agora-node/modules/aggregate"
	"agora-node/modules/conviction"
	"agora-node/modules/db/agora/activity"
	"agora-node/modules/db/agora/proposals"
	"agora-node/modules/metrics"

	"github.com/chebyrash/promise"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// Api is the thin JSON surface the surrounding marketplace calls into. The
// voting engine itself is invoked in-process through the controller; nothing
// here owns domain state.
type Api struct {
	controller *conviction.Controller
	proposals  proposals.Proposals
	activity   activity.Activity
	metrics    *metrics.Metrics
	addr       string

	server *http.Server
}

var _ a.Plugin = &Api{}

func New(
	engine *conviction.Engine,
	proposalsDb proposals.Proposals,
	activityDb activity.Activity,
	m *metrics.Metrics,
	addr string,
) *Api {
	return &Api{
		controller: engine.Controller(),
		proposals:  proposalsDb,
		activity:   activityDb,
		metrics:    m,
		addr:       addr,
	}
}

func (api *Api) Init() error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/votes", api.handleCast)
	mux.HandleFunc("POST /api/v1/votes/withdraw", api.handleWithdraw)
	mux.HandleFunc("GET /api/v1/proposals", api.handleListProposals)
	mux.HandleFunc("GET /api/v1/activity", api.handleActivity)
	mux.Handle("GET /metrics", api.metrics.Handler())

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: cors.Default().Handler(mux),
	}
	return nil
}

// Handler exposes the routed handler, available after Init. Tests mount it
// on httptest servers instead of binding the real port.
func (api *Api) Handler() http.Handler {
	return api.server.Handler
}

// Start serves until Stop shuts the listener down. The promise stays pending
// while the server runs, which is what keeps the node's aggregate alive.
func (api *Api) Start() *promise.Promise[any] {
	return promise.New(func(resolve func(any), reject func(error)) {
		err := api.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			reject(err)
			return
		}
		resolve(nil)
	})
}

func (api *Api) Stop() error {
	if api.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return api.server.Shutdown(ctx)
}

type voteRequest struct {
	MemberId   string `json:"member_id" validate:"required"`
	ProposalId string `json:"proposal_id" validate:"required"`
}

func (api *Api) handleCast(w http.ResponseWriter, r *http.Request) {
	var body voteRequest
	if !decodeBody(w, r, &body) {
		return
	}

	voteId, err := api.controller.Cast(r.Context(), body.MemberId, body.ProposalId)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"vote_id": voteId})
}

func (api *Api) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var body voteRequest
	if !decodeBody(w, r, &body) {
		return
	}

	if err := api.controller.Withdraw(r.Context(), body.MemberId, body.ProposalId); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

func (api *Api) handleListProposals(w http.ResponseWriter, r *http.Request) {
	status := proposals.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = proposals.StatusVoting
	}

	result, err := api.proposals.ListByStatus(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list proposals")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *Api) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	events, err := api.activity.Latest(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read activity feed")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func decodeBody(w http.ResponseWriter, r *http.Request, body any) bool {
	if err := json.NewDecoder(r.Body).Decode(body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	if err := requestValidator.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conviction.ErrMemberNotFound),
		errors.Is(err, conviction.ErrProposalNotFound),
		errors.Is(err, conviction.ErrNoActiveVote):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, conviction.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, conviction.ErrProposalNotVoting):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("vote request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, map[string]string{"error": msg})
}
