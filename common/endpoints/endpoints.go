// Package endpoints provides the admin HTTP server: health, stats, and any
// application handlers mounted onto it.
package endpoints

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/common/stats"
)

func NewTwitterServer(addr string, stat stats.StatsReceiver) *TwitterServer {
	return &TwitterServer{
		Addr:  addr,
		Stats: stat,
		mux:   http.NewServeMux(),
	}
}

type TwitterServer struct {
	Addr  string
	Stats stats.StatsReceiver
	mux   *http.ServeMux
}

// Handle mounts an application handler. Must be called before Serve.
func (s *TwitterServer) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

func (s *TwitterServer) Serve() error {
	s.mux.HandleFunc("/health", healthHandler)
	s.mux.HandleFunc("/admin/metrics.json", s.statsHandler)
	log.Info("Serving http & stats on ", s.Addr)
	return http.ListenAndServe(s.Addr, s.mux)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "ok")
}

func (s *TwitterServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	pretty := r.URL.Query().Get("pretty") == "true"
	str := s.Stats.Render(pretty)
	if _, err := io.Copy(w, bytes.NewBuffer(str)); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
}
