package http

import (
	"net/http"

	"github.com/bnema/showsaver/internal/adapter/http/middleware"
	"github.com/bnema/showsaver/internal/service"
	"github.com/bnema/showsaver/static"
)

type Server struct {
	mux        *http.ServeMux
	handlers   *Handlers
	sseHandler *SSEHandler
}

func NewServer(queue QueueService, browse BrowseService, eventBus *service.EventBus) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		handlers:   NewHandlers(queue, browse),
		sseHandler: NewSSEHandler(eventBus, queue),
	}

	s.registerRoutes()
	s.registerStatic()

	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /submit", s.handlers.Submit())
	s.mux.HandleFunc("GET /status/{id}", s.handlers.Status())
	s.mux.HandleFunc("GET /queue", s.handlers.Queue())
	s.mux.HandleFunc("GET /browse/new-releases", s.handlers.NewReleases())
	s.mux.HandleFunc("GET /events/{id}", s.sseHandler.Events())
}

func (s *Server) registerStatic() {
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page, err := static.FS.ReadFile("index.html")
		if err != nil {
			http.Error(w, "UI not available", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(page)
	})
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.SecurityHeaders(s.mux).ServeHTTP(w, r)
}
