// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"crypto/sha256"
	"net/http"
	"sync"

	authgooglefeature "github.com/dalemusser/takeandeat/internal/app/features/authgoogle"
	contactfeature "github.com/dalemusser/takeandeat/internal/app/features/contact"
	errorsfeature "github.com/dalemusser/takeandeat/internal/app/features/errors"
	givefoodfeature "github.com/dalemusser/takeandeat/internal/app/features/givefood"
	healthfeature "github.com/dalemusser/takeandeat/internal/app/features/health"
	homefeature "github.com/dalemusser/takeandeat/internal/app/features/home"
	locationsfeature "github.com/dalemusser/takeandeat/internal/app/features/locations"
	loginfeature "github.com/dalemusser/takeandeat/internal/app/features/login"
	logoutfeature "github.com/dalemusser/takeandeat/internal/app/features/logout"
	newsletterfeature "github.com/dalemusser/takeandeat/internal/app/features/newsletter"
	pagesfeature "github.com/dalemusser/takeandeat/internal/app/features/pages"
	phoneauthfeature "github.com/dalemusser/takeandeat/internal/app/features/phoneauth"
	registerfeature "github.com/dalemusser/takeandeat/internal/app/features/register"
	takefoodfeature "github.com/dalemusser/takeandeat/internal/app/features/takefood"
	"github.com/dalemusser/takeandeat/internal/app/store/audit"
	"github.com/dalemusser/takeandeat/internal/app/store/contactmessages"
	listingstore "github.com/dalemusser/takeandeat/internal/app/store/listings"
	metricsstore "github.com/dalemusser/takeandeat/internal/app/store/metrics"
	"github.com/dalemusser/takeandeat/internal/app/store/oauthstate"
	"github.com/dalemusser/takeandeat/internal/app/store/subscribers"
	userstore "github.com/dalemusser/takeandeat/internal/app/store/users"
	"github.com/dalemusser/takeandeat/internal/app/store/verifications"
	"github.com/dalemusser/takeandeat/internal/app/system/auditlog"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/app/system/mailer"
	"github.com/dalemusser/takeandeat/internal/app/system/metrics"
	"github.com/dalemusser/takeandeat/internal/app/system/ratelimit"
	"github.com/dalemusser/takeandeat/internal/app/system/resettoken"
	"github.com/dalemusser/takeandeat/internal/app/system/sms"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/verifymail"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// stoppers holds the rate limiters' cleanup loops so Shutdown can end them.
var (
	stoppersMu sync.Mutex
	stoppers   []func()
)

func trackStop(fn func()) {
	stoppersMu.Lock()
	defer stoppersMu.Unlock()
	stoppers = append(stoppers, fn)
}

func stopLimiters() {
	stoppersMu.Lock()
	defer stoppersMu.Unlock()
	for _, fn := range stoppers {
		fn()
	}
	stoppers = nil
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It builds the shared services (sessions, CSRF,
// mail, SMS, metrics, rate limits), the stores over the one database, and
// mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser reads the profile on every request, so verification
	// and deletion take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	// Stores
	db := deps.MongoDatabase
	listings := listingstore.New(db)
	profiles := userstore.New(db)
	codes := verifications.New(db, verifications.Config{
		EmailExpiry: appCfg.EmailVerifyExpiry,
		SMSExpiry:   appCfg.PhoneCodeExpiry,
	})
	states := oauthstate.New(db)
	messages := contactmessages.New(db)
	subs := subscribers.New(db)

	// Outbound delivery
	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
	verifySender := verifymail.New(codes, mail, appCfg.BaseURL, logger)
	textSender := sms.NewLogSender(logger)
	resets := resettoken.New(appCfg.SessionKey, appCfg.ResetTokenExpiry)
	auditLog := auditlog.New(audit.New(db), logger, appCfg.AuditLogAuth)

	// Metrics. A nil Recorder makes every handler record nothing.
	var rec metrics.Recorder
	var collector *metrics.Collector
	var registry *prometheus.Registry
	if appCfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = metrics.NewCollector(registry)
		rec = collector
		counts := func(ctx context.Context) map[string]int64 {
			return metricsstore.FetchCounts(ctx, db).Map()
		}
		if err := metrics.RegisterStoreGauges(registry, counts, timeouts.Short()); err != nil {
			logger.Error("store gauges registration failed", zap.Error(err))
			return nil, err
		}
	}

	// Rate limits. Each concern gets its own budget so a burst of contact
	// messages does not lock a client out of registering.
	formLimit := func(name string) func(http.Handler) http.Handler {
		l := ratelimit.New(appCfg.FormRateLimit, appCfg.FormRateWindow)
		trackStop(l.Stop)
		return l.Middleware(name, logger)
	}
	loginLimiter := ratelimit.NewLoginLimiter()
	trackStop(loginLimiter.Stop)
	phoneLimiter := ratelimit.NewLoginLimiter()
	trackStop(phoneLimiter.Stop)

	r := chi.NewRouter()

	// Set before mounting so sub-routers inherit it.
	r.NotFound(errorsHandler.NotFound)

	if appCfg.TrustProxyHeaders {
		// Rewrites RemoteAddr, which rate limits and audit events key on.
		r.Use(middleware.RealIP)
	}
	if collector != nil {
		r.Use(collector.Middleware)
	}
	if !secure {
		// Local development runs over plain HTTP.
		r.Use(plaintextHTTP)
	}
	r.Use(csrf.Protect(csrfKey(appCfg),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("takeandeat-csrf"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(errorsHandler.CSRFFailure)),
	))

	// Global auth middleware: resolves the session state for every request.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if registry != nil {
		r.Handle("/metrics", metrics.Handler(registry))
	}

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	pagesHandler := pagesfeature.NewHandler(logger)
	r.Mount("/faq", pagesHandler.FAQRouter())
	r.Mount("/food-safety", pagesHandler.FoodSafetyRouter())
	r.Mount("/community-guidelines", pagesHandler.GuidelinesRouter())
	r.Mount("/local-food-banks", pagesHandler.FoodBanksRouter())
	r.Mount("/restaurants", pagesHandler.RestaurantsRouter())
	r.Mount("/community-centers", pagesHandler.CommunityCentersRouter())
	r.Mount("/resource", pagesHandler.ResourceRouter())

	locationsHandler := locationsfeature.NewHandler(logger)
	r.Mount("/locations", locationsfeature.Routes(locationsHandler))

	contactHandler := contactfeature.NewHandler(messages, errLog, logger)
	r.Mount("/contact-support", contactfeature.Routes(contactHandler, formLimit("contact")))

	newsletterHandler := newsletterfeature.NewHandler(subs, errLog, logger)
	r.Mount("/newsletter", newsletterfeature.Routes(newsletterHandler, formLimit("newsletter")))

	// Authentication
	googleHandler := authgooglefeature.NewHandler(profiles, states, sessionMgr, rec,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	googleHandler.Audit = auditLog
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	registerHandler := registerfeature.NewHandler(profiles, codes, verifySender, errLog, logger)
	registerHandler.Audit = auditLog
	r.Mount("/register", registerfeature.Routes(registerHandler, formLimit("register")))

	loginHandler := loginfeature.NewHandler(profiles, sessionMgr, verifySender, mail, resets,
		loginLimiter, errLog, rec, appCfg.BaseURL, googleHandler.IsConfigured(), logger)
	loginHandler.Audit = auditLog
	r.Mount("/login", loginfeature.Routes(loginHandler, formLimit("login-mail")))

	phoneHandler := phoneauthfeature.NewHandler(profiles, codes, textSender, sessionMgr,
		phoneLimiter, errLog, rec, logger)
	phoneHandler.Audit = auditLog
	r.Mount("/phone-auth", phoneauthfeature.Routes(phoneHandler, formLimit("phone-code")))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	logoutHandler.Audit = auditLog
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Listings (signed in and verified)
	giveHandler := givefoodfeature.NewHandler(listings, errLog, rec, logger)
	r.Mount("/give-food", givefoodfeature.Routes(giveHandler, sessionMgr))

	takeHandler := takefoodfeature.NewHandler(listings, errLog, rec, logger)
	r.Mount("/take-food", takefoodfeature.Routes(takeHandler, sessionMgr))

	return r, nil
}

// csrfKey returns the configured 32-byte key, or one derived from the
// session key.
func csrfKey(appCfg AppConfig) []byte {
	if appCfg.CSRFKey != "" {
		return []byte(appCfg.CSRFKey)
	}
	sum := sha256.Sum256([]byte("csrf:" + appCfg.SessionKey))
	return sum[:]
}

// plaintextHTTP tells the CSRF middleware the request arrived over HTTP so
// its origin check compares against http:// URLs.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
