package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	config "github.com/Theagentvikram/MeetNote/config/meetnote"
	"github.com/Theagentvikram/MeetNote/pkg/json"
	"github.com/Theagentvikram/MeetNote/services/meetnote/consts"
	"github.com/Theagentvikram/MeetNote/services/meetnote/usecase"
)

type Server struct {
	cfg     *config.Config
	usecase usecase.Usecase
	log     *slog.Logger
}

func New(cfg *config.Config, usc usecase.Usecase, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		usecase: usc,
		log:     log,
	}
}

func (s *Server) Router() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/", s.RootHandler)
	router.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Get("/health", s.HealthHandler)

		apiRouter.Route("/auth", func(authRouter chi.Router) {
			authRouter.Post("/register", s.RegisterHandler)
			authRouter.Post("/login", s.LoginHandler)
			authRouter.Group(func(protected chi.Router) {
				protected.Use(s.RequireAuth)
				protected.Get("/me", s.MeHandler)
				protected.Delete("/me", s.DeleteAccountHandler)
			})
		})

		apiRouter.Route("/meetings", func(meetingRouter chi.Router) {
			meetingRouter.Use(s.RequireAuth)
			meetingRouter.Post("/", s.CreateMeetingHandler)
			meetingRouter.Get("/", s.ListMeetingsHandler)
			meetingRouter.Route("/{meeting_id}", func(r chi.Router) {
				r.Get("/", s.GetMeetingHandler)
				r.Delete("/", s.DeleteMeetingHandler)
				r.Post("/upload-audio", s.UploadAudioHandler)
				r.Post("/stop", s.StopMeetingHandler)
				r.Post("/highlights", s.CreateHighlightHandler)
				r.Get("/highlights", s.ListHighlightsHandler)
			})
		})
	})

	return router
}

func (s *Server) RootHandler(w http.ResponseWriter, r *http.Request) {
	json.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "MeetNote API",
		"version": consts.Version,
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	json.WriteJSON(w, http.StatusOK, s.usecase.Health(r.Context()))
}
