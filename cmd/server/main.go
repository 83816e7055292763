package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codegauge/codegauge/internal/cache"
	"github.com/codegauge/codegauge/internal/config"
	"github.com/codegauge/codegauge/internal/ensemble"
	"github.com/codegauge/codegauge/internal/errors"
	"github.com/codegauge/codegauge/internal/integrator"
	"github.com/codegauge/codegauge/internal/monitoring"
	"github.com/codegauge/codegauge/internal/providers"
	"github.com/codegauge/codegauge/internal/quality"
	"github.com/codegauge/codegauge/internal/ratelimit"
	signaladapter "github.com/codegauge/codegauge/internal/signal"
	"github.com/codegauge/codegauge/internal/types"
)

const (
	embeddingDim     = 256
	qualityModelSeed = 1
	maxBatchSize     = 100
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	configPath := getEnvOrDefault("CONFIG_PATH", "")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	port := getEnvOrDefault("PORT", "8080")

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	engine, err := newAnalysisEngine(cfg)
	if err != nil {
		slog.Error("Failed to initialize analysis engine", "error", err)
		os.Exit(1)
	}
	engine.WithCache(cache.NewStore(15 * time.Minute)).WithMetrics(appMetrics)

	redisClient, err := ratelimit.NewRedisClient(redisAddr, redisPassword, 0)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}
	defer redisClient.Close()

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), appMetrics)

	r := newRouter(engine, limiter, appMetrics, appLogger)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// newAnalysisEngine wires the reference providers, the reference embedding
// baseline, and the detector ensemble into an integrator. Any external
// analyzer satisfying the contracts in internal/providers can replace the
// reference implementations.
func newAnalysisEngine(cfg config.Config) (*integrator.Integrator, error) {
	embedder, err := providers.NewHashingEmbedder(embeddingDim)
	if err != nil {
		return nil, err
	}

	qualityModel, err := providers.NewLinearQualityModel(embeddingDim, qualityModelSeed)
	if err != nil {
		return nil, err
	}

	// The reference set and model parameters are read-only after this point;
	// nothing may mutate shared model state during scoring.
	reference, err := ensemble.BuildReference(embedder.Embed, ensemble.DefaultCorpus())
	if err != nil {
		return nil, err
	}

	ens, err := ensemble.New(cfg.Ensemble,
		ensemble.NewCentroidDistanceDetector(reference),
		ensemble.NewReconstructionErrorDetector(reference),
		ensemble.NewKNNDistanceDetector(reference, 3),
	)
	if err != nil {
		return nil, err
	}

	return integrator.New(cfg, signaladapter.DefaultAdapter(), integrator.Deps{
		Structure: providers.NewHeuristicStructureProvider(),
		Security:  providers.NewRegexSecurityScanner(),
		Embedder:  embedder,
		Quality:   quality.NewAdapter(qualityModel),
		Ensemble:  ens,
	})
}

func newRouter(engine *integrator.Integrator, limiter *ratelimit.RateLimiter, appMetrics *monitoring.Metrics, appLogger *monitoring.Logger) *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(requestID())
	r.Use(requestMetrics(appMetrics, appLogger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())
	r.Use(limiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.POST("/analyze", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()

		var req types.AnalyzeRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		if strings.TrimSpace(req.Code) == "" {
			appErr := errors.NewValidationError("code cannot be empty")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		start := time.Now()
		assessment := engine.ComprehensiveAnalysis(ctx, req.Code)

		appLogger.AnalysisLogger(assessment.UnitID, assessment.OverallScore,
			assessment.Confidence, len(assessment.DegradedSignals), time.Since(start), false)

		c.JSON(http.StatusOK, assessment)
	})

	r.POST("/analyze/batch", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
		defer cancel()

		var req types.BatchAnalyzeRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid request body")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		if len(req.Codes) == 0 {
			appErr := errors.NewValidationError("codes cannot be empty")
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		if len(req.Codes) > maxBatchSize {
			appErr := errors.NewValidationError("batch too large", maxBatchSize)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		start := time.Now()
		assessments := engine.ComprehensiveAnalysisMany(ctx, req.Codes)
		appLogger.BatchLogger(len(assessments), time.Since(start))

		c.JSON(http.StatusOK, gin.H{"assessments": assessments})
	})

	return r
}

// requestID tags every request so log lines can be correlated
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestMetrics records counters and response times for every request
func requestMetrics(m *monitoring.Metrics, l *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.IncrementRequest()

		c.Next()

		duration := time.Since(start)
		m.RecordResponseTime(duration)
		if c.Writer.Status() >= 500 {
			m.IncrementError()
		}

		l.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(),
			c.Writer.Status(), duration)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
