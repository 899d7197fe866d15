package apiserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/thrasher-corp/strategyfit/log"
	"github.com/thrasher-corp/strategyfit/optimiser"
	"github.com/thrasher-corp/strategyfit/portfolio/live"
	"github.com/thrasher-corp/strategyfit/registry"
)

// New returns a server answering requests with the supplied engine and
// stores
func New(engine *optimiser.Engine, store registry.Store, positions *live.Store) (*Server, error) {
	if engine == nil {
		return nil, errNilEngine
	}
	if store == nil {
		return nil, errNilStore
	}
	if positions == nil {
		return nil, errNilPositions
	}
	s := &Server{
		engine:    engine,
		store:     store,
		positions: positions,
	}
	s.router = s.newRouter()
	return s, nil
}

// Handler returns the server's router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultListenAddress
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errC := make(chan error, 1)
	go func() {
		errC <- srv.ListenAndServe()
	}()
	log.Infof(log.RESTSys, "REST server support enabled. Listen URL: http://%s", addr)
	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Infoln(log.RESTSys, "REST server shutdown")
	return nil
}

// RESTLogger logs the requests internally
func RESTLogger(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		inner.ServeHTTP(w, r)
		log.Debugf(log.RESTSys,
			"%s\t%s\t%s\t%s",
			r.Method,
			r.RequestURI,
			name,
			time.Since(start),
		)
	})
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	routes := []Route{
		{"Index", http.MethodGet, "/", getIndex},
		{"AllSelectors", http.MethodGet, "/selectors", s.RESTGetSelectors},
		{"IndividualSelector", http.MethodGet, "/selectors/{symbol}", s.RESTGetSelector},
		{"Search", http.MethodPost, "/search", s.RESTSearch},
		{"Signal", http.MethodPost, "/signal", s.RESTSignal},
		{"AllPositions", http.MethodGet, "/positions", s.RESTGetPositions},
		{"RecordPosition", http.MethodPost, "/positions", s.RESTRecordPosition},
	}
	for _, route := range routes {
		var handler http.Handler
		handler = route.HandlerFunc
		handler = RESTLogger(handler, route.Name)

		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(handler)
	}
	return router
}
