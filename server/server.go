package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	. "gridmdp/grid_world"
	"gridmdp/matrix"
	"gridmdp/server/fastview"
	"gridmdp/server/root_view"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves a single page showing the grid's values and policy, updated live over
// a websocket, plus a json status endpoint. The page's updates come from a single
// channel, so only one websocket client receives them at a time.
type Server struct {
	addr     string
	rootView *root_view.RootView
	status   *Status
	router   *mux.Router
	log      logrus.FieldLogger
}

// NewServer builds the views from the initial snapshot and the chan of subsequent ones.
func NewServer(
	ctx context.Context,
	addr string,
	initial *matrix.Matrix[Field],
	snapshots <-chan *matrix.Matrix[Field],
	status *Status,
	log logrus.FieldLogger,
) (*Server, error) {
	rootView, err := root_view.NewRootView(ctx, initial, snapshots)
	if err != nil {
		return nil, fmt.Errorf("root view: %w", err)
	}

	server := &Server{
		addr:     addr,
		rootView: rootView,
		status:   status,
		router:   mux.NewRouter(),
		log:      log.WithField("component", "server"),
	}
	server.setupRoutes()
	return server, nil
}

func (server *Server) setupRoutes() {
	server.router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	server.router.HandleFunc("/ws", server.serveWebsocket)
	server.router.HandleFunc("/api/status", server.serveStatus).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler
func (server *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	server.router.ServeHTTP(w, r)
}

// Serve listens until the context is done, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) (err error) {
	httpServer := &http.Server{
		Addr:    server.addr,
		Handler: server,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			server.log.WithError(shutdownErr).Warn("shutdown")
		}
	}()

	server.log.WithField("addr", server.addr).Info("serving")
	if err = httpServer.ListenAndServe(); errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if err != nil {
		err = fmt.Errorf("serve: %w", err)
	}
	return
}

// serveWebsocket publishes view updates to the client until it disconnects.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(server.rootView.Updates(), w, r)
	if err != nil {
		server.log.WithError(err).Warn("websocket")
		return
	}

	server.log.WithField("remote", r.RemoteAddr).Debug("client connected")
	if err = cli.Sync(); err != nil {
		server.log.WithError(err).WithField("remote", r.RemoteAddr).Warn("client sync")
		return
	}
	server.log.WithField("remote", r.RemoteAddr).Debug("client disconnected")
}

func (server *Server) serveStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(server.status.Report()); err != nil {
		server.log.WithError(err).Warn("status")
	}
}

// Serve the index.html main page.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, server.rootView, server.rootView.Latest()); err != nil {
		server.log.WithError(err).Error("render index")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}
