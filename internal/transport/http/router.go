package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/web3ix-api/internal/application/notification"
	"github.com/web3ix-api/internal/application/post"
	"github.com/web3ix-api/internal/application/provision"
	"github.com/web3ix-api/internal/application/verification"
	"github.com/web3ix-api/internal/application/wallet"
	"github.com/web3ix-api/internal/config"
	"github.com/web3ix-api/internal/domain"
	"github.com/web3ix-api/internal/metrics"
	"github.com/web3ix-api/internal/transport/http/handler"
	appmiddleware "github.com/web3ix-api/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	CodeRepo         CodeRepository
	PostRepo         PostRepository
	IdentityProvider domain.IdentityProvider
	Mailer           Mailer
	Metrics          *metrics.Provisioning
	Gatherer         prometheus.Gatherer // nil disables /metrics
	Logger           *zap.Logger
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Applied to the public POST endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	provisioner := provision.New(provision.Deps{
		IdentityProvider: deps.IdentityProvider,
		Logger:           log,
		Metrics:          deps.Metrics,
	})
	codeGen := verification.NewCodeGenerator(cfg.CodeTTL)
	verificationSvc := verification.NewService(verification.ServiceDeps{
		CodeRepo:    deps.CodeRepo,
		Generator:   codeGen,
		Notifier:    notification.NewService(deps.Mailer, cfg.MailSubject, codeGen.TTL()),
		Provisioner: provisioner,
		Logger:      log,
		Metrics:     deps.Metrics,
	})
	walletSvc := wallet.NewService(wallet.ServiceDeps{
		Provisioner: provisioner,
		Logger:      log,
		Metrics:     deps.Metrics,
	})
	postSvc := post.NewService(deps.PostRepo)

	healthH := handler.NewHealthHandler()
	signupH := handler.NewSignupHandler(verificationSvc, log)
	walletH := handler.NewWalletHandler(walletSvc, log)
	postH := handler.NewPostHandler(postSvc, log)

	r.Get("/health", healthH.Health)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/signup", signupH.Signup)
		r.With(sensitiveRL.Limit).Post("/verify-code", signupH.VerifyCode)
		r.With(sensitiveRL.Limit).Post("/phantom-signup", walletH.Signup)
		r.Get("/posts", postH.List)
		r.Get("/videos", postH.Videos)
	})

	return r
}
