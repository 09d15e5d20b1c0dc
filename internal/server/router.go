package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// API эндпоинты
	mux.HandleFunc("/solve", s.Solve)
	mux.HandleFunc("/stream", s.Stream)
	mux.HandleFunc("/result", s.Result)
	mux.HandleFunc("/export", s.ExportCSV)
	mux.HandleFunc("/plot", s.Plot)

	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))

	return mux
}
