package apiserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/thrasher-corp/strategyfit/backtester/strategies"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/common"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/portfolio/live"
	"github.com/thrasher-corp/strategyfit/prices"
	"github.com/thrasher-corp/strategyfit/registry"
)

// RESTfulJSONResponse outputs a JSON response of the response interface
func RESTfulJSONResponse(w http.ResponseWriter, status int, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(response)
}

// RESTfulError replies with err and a status matching its cause
func RESTfulError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Errorf(log.RESTSys, "RESTful %s %s: %v", r.Method, r.URL.Path, err)
	}
	if writeErr := RESTfulJSONResponse(w, status, ErrorResponse{Error: err.Error()}); writeErr != nil {
		log.Errorf(log.RESTSys, "RESTful %s: server failed to send JSON response. Error %s", r.Method, writeErr)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, registry.ErrSelectorNotFound),
		errors.Is(err, base.ErrStrategyNotValidated):
		return http.StatusNotFound
	case errors.Is(err, live.ErrAlreadyHeld),
		errors.Is(err, live.ErrNotHeld),
		errors.Is(err, live.ErrPortfolioFull):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, common.ErrEmptySymbol),
		errors.Is(err, base.ErrUnknownStrategyKind),
		errors.Is(err, base.ErrUnknownAction),
		errors.Is(err, prices.ErrNoBars),
		errors.Is(err, prices.ErrInvalidPrice),
		errors.Is(err, prices.ErrInvalidQuote):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(w http.ResponseWriter, r *http.Request, response interface{}) {
	if err := RESTfulJSONResponse(w, http.StatusOK, response); err != nil {
		log.Errorf(log.RESTSys, "RESTful %s: server failed to send JSON response. Error %s", r.Method, err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func getIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "strategyfit RESTful interface")
}

// RESTGetSelectors replies with every stored selector
func (s *Server) RESTGetSelectors(w http.ResponseWriter, r *http.Request) {
	selectors, err := s.store.List(r.Context())
	if err != nil {
		RESTfulError(w, r, err)
		return
	}
	respond(w, r, selectors)
}

// RESTGetSelector replies with the selector of a single symbol
func (s *Server) RESTGetSelector(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sel, err := s.store.Load(r.Context(), vars["symbol"])
	if err != nil {
		RESTfulError(w, r, err)
		return
	}
	respond(w, r, sel)
}

// RESTSearch runs a search call, or the optimise loop, over the posted series
func (s *Server) RESTSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decode(w, r, &req); err != nil {
		RESTfulError(w, r, err)
		return
	}
	series, err := prices.NewSeries(req.Series.Symbol, req.Series.Bars)
	if err != nil {
		RESTfulError(w, r, err)
		return
	}
	resp := SearchResponse{Symbol: series.Symbol}
	if req.Optimise {
		resp.Calls, resp.Converged, err = s.engine.Optimise(r.Context(), series)
		if err != nil {
			RESTfulError(w, r, err)
			return
		}
	} else {
		outcome, searchErr := s.engine.SearchOutcome(r.Context(), series)
		if searchErr != nil {
			RESTfulError(w, r, searchErr)
			return
		}
		resp.Calls = 1
		resp.Converged = outcome.Converged
		resp.Kind = outcome.Kind
		resp.Params = outcome.Params
		resp.Balance = outcome.Balance
	}
	sel, err := s.store.Load(r.Context(), series.Symbol)
	if err != nil {
		RESTfulError(w, r, err)
		return
	}
	resp.Optimal = sel.Optimal
	respond(w, r, resp)
}

// RESTSignal replies with a live signal for the posted series
func (s *Server) RESTSignal(w http.ResponseWriter, r *http.Request) {
	var req SignalRequest
	if err := decode(w, r, &req); err != nil {
		RESTfulError(w, r, err)
		return
	}
	series, err := prices.NewSeries(req.Series.Symbol, req.Series.Bars)
	if err != nil {
		RESTfulError(w, r, err)
		return
	}
	if req.Quote != 0 {
		series, err = series.WithQuote(req.Quote)
		if err != nil {
			RESTfulError(w, r, err)
			return
		}
	}
	resp := SignalResponse{Symbol: series.Symbol}
	var action base.Action
	if req.Kind == "" {
		resp.Kind, action, err = s.engine.Signal(r.Context(), series)
	} else {
		resp.Kind, err = strategies.ParseKind(req.Kind)
		if err == nil {
			action, err = s.engine.SignalFor(r.Context(), series, resp.Kind)
		}
	}
	if err != nil {
		RESTfulError(w, r, err)
		return
	}
	resp.Action = action.String()
	respond(w, r, resp)
}

// RESTGetPositions replies with every open live position
func (s *Server) RESTGetPositions(w http.ResponseWriter, r *http.Request) {
	respond(w, r, s.positions.List())
}

// RESTRecordPosition applies an executed action to the live positions and
// replies with the open positions
func (s *Server) RESTRecordPosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := decode(w, r, &req); err != nil {
		RESTfulError(w, r, err)
		return
	}
	kind, err := strategies.ParseKind(req.Kind)
	if err != nil {
		RESTfulError(w, r, err)
		return
	}
	action, err := base.ParseAction(req.Action)
	if err != nil {
		RESTfulError(w, r, err)
		return
	}
	if err = s.positions.Record(req.Symbol, kind, action); err != nil {
		RESTfulError(w, r, err)
		return
	}
	respond(w, r, s.positions.List())
}
