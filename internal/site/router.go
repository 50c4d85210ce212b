package site

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/masiqhakaze/website/internal/auth"
	"github.com/masiqhakaze/website/internal/middleware"
)

// Routes bundles what the router needs.
type Routes struct {
	Pages       *Handler
	Auth        *auth.Handler
	Sessions    *auth.Sessions
	Static      http.Handler
	CorsOrigins []string
	Log         *zap.Logger
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestLogger(&chimw.DefaultLogFormatter{
		Logger:  zap.NewStdLog(rt.Log),
		NoColor: true,
	}))
	r.Use(chimw.Recoverer)
	// No configured origins means same-origin only. Credentials are never
	// shared with a wildcard origin.
	if len(rt.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: !slices.Contains(rt.CorsOrigins, "*"),
			MaxAge:           300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if rt.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static", rt.Static))
	}

	// Public pages
	r.Get("/", rt.Pages.Index)
	r.Get("/articles", rt.Pages.Articles)
	r.Get("/article/{title}", rt.Pages.Article)
	r.Get("/about", rt.Pages.About)
	r.Get("/login", rt.Pages.Login)

	// Auth
	r.Post("/password_authentication", rt.Auth.Login)
	r.Post("/update_password", rt.Auth.UpdatePassword)
	r.Post("/logout", rt.Auth.Logout)

	// Admin (session required)
	r.With(middleware.RequireSession(rt.Sessions, "/login")).Get("/admin", rt.Pages.Admin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(rt.Sessions, ""))
		r.Post("/admin/add_post", rt.Pages.AddPost)
		r.Post("/delete/article/{title}", rt.Pages.DeletePost)
	})

	return r
}
