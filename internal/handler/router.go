package handler

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"github.com/HankLeo/21-points/internal/config"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/messaging"
	"github.com/HankLeo/21-points/internal/middleware"
	"github.com/HankLeo/21-points/internal/repository"
)

type Deps struct {
	Config *config.Config
	Repos  *repository.Repositories
	Mailer Mailer
	Broker messaging.Broker
	Hub    *messaging.Hub
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	repos := d.Repos

	accountHandler := NewAccountHandler(cfg.JWTSecret, cfg.TokenTTL, repos.Users, repos.ResetTokens, d.Mailer, cfg.AppName)
	userHandler := NewUserHandler(repos.Users)
	messagingHandler := NewMessagingHandler(d.Broker, d.Hub, cfg.MessageTopic, cfg.AllowedOrigins)

	loginRL := middleware.NewRateLimiter(5, 15*time.Minute)
	resetRL := middleware.NewRateLimiter(3, 60*time.Minute)
	resetFinishRL := middleware.NewRateLimiter(5, 15*time.Minute)

	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBytes(1 << 20))

	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.APIKeyMiddleware(cfg.APIKey))

	api.Handle("/register", http.HandlerFunc(accountHandler.Register)).Methods(http.MethodPost)
	api.Handle("/authenticate", loginRL.Middleware(http.HandlerFunc(accountHandler.Authenticate))).Methods(http.MethodPost)
	api.Handle("/account/reset-password/init", resetRL.Middleware(http.HandlerFunc(accountHandler.RequestPasswordReset))).Methods(http.MethodPost)
	api.Handle("/account/reset-password/finish", resetFinishRL.Middleware(http.HandlerFunc(accountHandler.FinishPasswordReset))).Methods(http.MethodPost)
	api.HandleFunc("/users", userHandler.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/users/_search/{query}", userHandler.Search).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	protected.HandleFunc("/account", accountHandler.Account).Methods(http.MethodGet)
	protected.HandleFunc("/twenty-one-points-kafka/publish", messagingHandler.Publish).Methods(http.MethodPost)
	protected.HandleFunc("/twenty-one-points-kafka/register", messagingHandler.Register).Methods(http.MethodGet)
	protected.HandleFunc("/twenty-one-points-kafka/unregister", messagingHandler.Unregister).Methods(http.MethodGet)

	NewEntityHandler[domain.Points](domain.PointsDescriptor, repos.Points, repos.Users, cfg.AppName).Routes(protected)
	NewEntityHandler[domain.Weight](domain.WeightDescriptor, repos.Weights, repos.Users, cfg.AppName).Routes(protected)
	NewEntityHandler[domain.BloodPressure](domain.BloodPressureDescriptor, repos.BloodPressures, repos.Users, cfg.AppName).Routes(protected)
	NewEntityHandler[domain.Preferences](domain.PreferencesDescriptor, repos.Preferences, repos.Users, cfg.AppName).Routes(protected)

	return middleware.CORS(cfg.AllowedOrigins, alerts{app: cfg.AppName}.exposed())(r)
}
