package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/example/shortly/internal/auth"
	"github.com/example/shortly/internal/models"
	"github.com/example/shortly/internal/service"
)

type LinkService interface {
	Shorten(ctx context.Context, params service.ShortenParams) (*models.ShortLink, error)
	Resolve(ctx context.Context, shortCode, suppliedPassword string) (*models.ShortLink, error)
	Get(ctx context.Context, callerID int64, shortCode string) (*models.ShortLink, error)
	List(ctx context.Context, ownerID int64, limit, offset int) ([]models.ShortLink, int64, error)
	Modify(ctx context.Context, callerID int64, shortCode string, changes service.LinkChanges) (*models.ShortLink, error)
	Deactivate(ctx context.Context, callerID int64, shortCode string) error
}

type ClickRecorder interface {
	RecordDetached(link *models.ShortLink, visit models.Visit)
}

type AnalyticsService interface {
	SummarizeLink(ctx context.Context, callerID int64, shortCode string, tf models.Timeframe) (*models.AggregateReport, error)
	SummarizeOwner(ctx context.Context, ownerID int64, tf models.Timeframe) (*models.OwnerStats, error)
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, email, password *string) (*models.User, error)
}

// Services bundles the collaborators the router dispatches to.
type Services struct {
	Links     LinkService
	Clicks    ClickRecorder
	Analytics AnalyticsService
	Auth      AuthService
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

func NewRouter(logger *httplog.Logger, tokens *auth.TokenManager, svcs Services, baseURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	validate := getValidate()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/ping", handlePing)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(svcs.Auth, validate))
			r.Post("/login", handleLogin(svcs.Auth, validate))
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(requireAuth(tokens))

			r.Get("/", handleGetProfile(svcs.Auth))
			r.Put("/", handleUpdateProfile(svcs.Auth, validate))
			r.Get("/stats", handleOwnerStats(svcs.Analytics))
		})

		r.Route("/links", func(r chi.Router) {
			r.With(optionalAuth(tokens)).Post("/", handleCreateLink(svcs.Links, validate, baseURL))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth(tokens))

				r.Get("/", handleListLinks(svcs.Links, baseURL))

				r.Route("/{shortCode}", func(r chi.Router) {
					r.Get("/", handleGetLink(svcs.Links, baseURL))
					r.Patch("/", handleModifyLink(svcs.Links, validate, baseURL))
					r.Delete("/", handleDeactivateLink(svcs.Links))
					r.Get("/stats", handleLinkStats(svcs.Analytics))
				})
			})
		})
	})

	r.Get("/{shortCode}", handleRedirect(svcs.Links, svcs.Clicks))

	return r
}
