// Package httpapi wires the HTTP transport (Gin) to the generation services,
// middleware and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, compression, metrics,
// idempotency, rate limiting, CORS and security headers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-code-generator/docs"
	"github.com/tbourn/go-code-generator/internal/config"
	"github.com/tbourn/go-code-generator/internal/domain"
	"github.com/tbourn/go-code-generator/internal/http/handlers"
	"github.com/tbourn/go-code-generator/internal/http/middleware"
	"github.com/tbourn/go-code-generator/internal/repo"
	"github.com/tbourn/go-code-generator/internal/services"
)

// requestRepoShim adapts the repository free functions to the
// services.RequestRepo interface expected by RequestService.
type requestRepoShim struct{}

func (requestRepoShim) GetRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.GenerationRequest, error) {
	return repo.GetRequest(ctx, db, id)
}

func (requestRepoShim) CountRequests(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountRequests(ctx, db)
}

func (requestRepoShim) ListRequestsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.GenerationRequest, error) {
	return repo.ListRequestsPage(ctx, db, offset, limit)
}

func (requestRepoShim) CountCodes(ctx context.Context, db *gorm.DB, requestID uint64) (int64, error) {
	return repo.CountCodes(ctx, db, requestID)
}

func (requestRepoShim) ListCodesPage(ctx context.Context, db *gorm.DB, requestID uint64, offset, limit int) ([]domain.GeneratedCode, error) {
	return repo.ListCodesPage(ctx, db, requestID, offset, limit)
}

func (requestRepoShim) RequestsStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	return repo.RequestsStats(ctx, db)
}

// idempotencyShim backs handlers.IdempotencyStore and the middleware lookup
// with the idempotency table.
type idempotencyShim struct {
	db  *gorm.DB
	ttl time.Duration
}

func (s idempotencyShim) Lookup(ctx context.Context, clientID, key string, now time.Time) (uint64, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, clientID, key, now)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return rec.RequestID, true, nil
}

func (s idempotencyShim) Remember(ctx context.Context, clientID, key string, requestID uint64) error {
	_, err := repo.CreateIdempotency(ctx, s.db, clientID, key, requestID, s.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

func (s idempotencyShim) exists(ctx context.Context, clientID, key string, now time.Time) (bool, error) {
	_, found, err := s.Lookup(ctx, clientID, key, now)
	return found, err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter and gzip
//  6. Metrics (+ /metrics, not rate limited)
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per client, bypass on replay)
//  9. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gen handlers.Generator, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Access logs
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) No endpoint takes a body; 64 KiB is generous. List pages compress well.
	r.Use(limitBody(64 << 10))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	idem := idempotencyShim{db: db, ttl: cfg.IdempotencyTTL}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.exists))

	// 8) Token-bucket rate limiter per client
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClient())
	r.Use(rl.Handler())

	// 9) CORS posture
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/readiness
	r.GET("/health", health(db))

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	reqSvc := services.NewRequestService(db, requestRepoShim{})
	h := handlers.New(gen, reqSvc, idem, handlers.Options{
		MaxCodesPerRequest: cfg.Generation.MaxCodesPerRequest,
		RequestTimeout:     cfg.Generation.RequestTimeout,
	})

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/codes/generate", h.GenerateCodes)
		api.GET("/codes/generate", h.GenerateCodes)

		api.GET("/generation-requests", h.ListRequests)
		api.GET("/generation-requests/:id", h.GetRequest)
		api.GET("/generation-requests/:id/codes", h.ListCodes)

		// Legacy paths kept for existing clients.
		api.GET("/generateCodes", h.GenerateCodes)
		api.GET("/generationRequests", h.ListAllRequests)
	}
}

// corsMiddleware allows all origins when none are configured; otherwise it
// echoes allowlisted origins and delegates preflight handling to gin-contrib/cors.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization",
		middleware.HeaderClientID, middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "ETag", middleware.HeaderIdempotencyReplayed}
	methods := []string{"GET", "POST", "OPTIONS"}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins: true,
				AllowMethods:    methods,
				AllowHeaders:    allowHeaders,
				ExposeHeaders:   exposeHeaders,
				MaxAge:          12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  methods,
			AllowHeaders:  allowHeaders,
			ExposeHeaders: exposeHeaders,
			MaxAge:        12 * time.Hour,
		}),
	}
}

// health reports ok when the database answers a ping within two seconds.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}

// limitBody caps the request body size using http.MaxBytesReader.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
