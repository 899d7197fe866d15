package apiserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/thrasher-corp/strategyfit/backtester/strategies/base"
	"github.com/thrasher-corp/strategyfit/optimiser"
	"github.com/thrasher-corp/strategyfit/portfolio/live"
	"github.com/thrasher-corp/strategyfit/prices"
	"github.com/thrasher-corp/strategyfit/registry"
)

// DefaultListenAddress is the REST listen address used when none is
// configured
const DefaultListenAddress = "localhost:9050"

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
	maxRequestBytes   = 1 << 20
)

var (
	errNilEngine    = errors.New("nil search engine")
	errNilStore     = errors.New("nil registry store")
	errNilPositions = errors.New("nil position store")
	errBadRequest   = errors.New("bad request")
)

// Route is a sub type that holds the request routes
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// Server answers registry, search, signal and position requests over HTTP
type Server struct {
	engine    *optimiser.Engine
	store     registry.Store
	positions *live.Store
	router    *mux.Router
}

// SearchRequest asks for one search call, or a full optimise loop, over a
// posted series
type SearchRequest struct {
	Series   prices.Series `json:"series"`
	Optimise bool          `json:"optimise"`
}

// SearchResponse reports the result of a search request
type SearchResponse struct {
	Symbol    string    `json:"symbol"`
	Calls     int       `json:"calls"`
	Converged bool      `json:"converged"`
	Kind      base.Kind `json:"kind,omitempty"`
	Params    []float64 `json:"params,omitempty"`
	Balance   float64   `json:"balance,omitempty"`
	Optimal   base.Kind `json:"optimal"`
}

// SignalRequest asks for a live signal. Kind is optional and defaults to the
// symbol's optimal kind. A positive Quote replaces the newest close.
type SignalRequest struct {
	Series prices.Series `json:"series"`
	Kind   string        `json:"kind"`
	Quote  float64       `json:"quote"`
}

// SignalResponse holds a live signal
type SignalResponse struct {
	Symbol string    `json:"symbol"`
	Kind   base.Kind `json:"kind"`
	Action string    `json:"action"`
}

// PositionRequest records an executed action against the live positions
type PositionRequest struct {
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
	Action string `json:"action"`
}

// ErrorResponse is returned with every non 2xx status
type ErrorResponse struct {
	Error string `json:"error"`
}
