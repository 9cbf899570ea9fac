package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/internal/healthmate/store"
	"github.com/healthmate/server/pkg/httpx"
	"github.com/healthmate/server/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/healthmate/server/api/healthmate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       httpx.TokenValidator
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	gatherer     prometheus.Gatherer

	store            store.Store
	AccountService   *service.AccountService
	DiagnosisService *service.DiagnosisService
}

// NewRouter wires the global middleware: request logging outermost, then
// metrics, so metrics see the matched route pattern. A nil metrics skips
// instrumentation and a nil gatherer leaves /metrics unregistered.
func NewRouter(
	tokens httpx.TokenValidator,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	metrics *httpx.HTTPMetrics,
	gatherer prometheus.Gatherer,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		gatherer:     gatherer,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.Middleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerDiagnosis()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			HealthMate API
//	@version		0.1.0
//	@description	Account registration with emailed OTP verification, password login with JWT bearer tokens,
//	@description	and a per-account symptom diagnosis history.
//
//	@contact.name				HealthMate Team
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AccountService: r.AccountService}

	// POST /auth/register - moderate rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /auth/verify-otp - strict rate limit by IP + email (prevent OTP guessing)
	r.Mux.Handle("POST /auth/verify-otp",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /auth/login - strict rate limit by IP + email (credential stuffing)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{AccountService: r.AccountService}

	securedMe := httpx.Chain(http.HandlerFunc(h.HandleMe),
		httpx.AuthnMiddleware(r.tokens),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.tokens),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /auth/me", securedMe)
	r.Mux.Handle("DELETE /auth", securedDelete)
}

func (r *Router) registerDiagnosis() {
	h := &DiagnosisHandler{DiagnosisService: r.DiagnosisService}

	// POST /diagnosis - moderate rate limit by subject (each call hits the inference service)
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.tokens),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	securedHistory := httpx.Chain(http.HandlerFunc(h.HandleHistory),
		httpx.AuthnMiddleware(r.tokens),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.tokens),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.tokens),
		httpx.RateLimitBySubject(httpx.ModerateLimit),
	)

	r.Mux.Handle("POST /diagnosis", securedCreate)
	r.Mux.Handle("GET /diagnosis/history", securedHistory)
	r.Mux.Handle("GET /diagnosis/{reportId}", securedGet)
	r.Mux.Handle("DELETE /diagnosis/{reportId}", securedDelete)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}

// identityFromContext builds the caller identity from the verified token
// claims placed on the request by AuthnMiddleware.
func identityFromContext(r *http.Request) (service.Identity, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok || claims.Subject == "" {
		return service.Identity{}, false
	}
	return service.Identity{Email: claims.Subject, AccountID: claims.AccountID}, true
}
