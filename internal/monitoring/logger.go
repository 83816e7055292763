package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured JSON logging with analysis-specific helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates the application logger
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// AnalysisLogger logs one completed analysis
func (l *Logger) AnalysisLogger(unitID string, overallScore *float64, confidence float64, degradedCount int, duration time.Duration, cacheHit bool) {
	attrs := []any{
		"unit_id", unitID,
		"confidence", confidence,
		"degraded_signals", degradedCount,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	}
	if overallScore != nil {
		attrs = append(attrs, "overall_score", *overallScore)
	} else {
		attrs = append(attrs, "insufficient_signal", true)
	}

	l.Info("Analysis Completed", attrs...)
}

// BatchLogger logs one completed batch analysis
func (l *Logger) BatchLogger(size int, duration time.Duration) {
	l.Info("Batch Analysis Completed",
		"units", size,
		"duration_ms", duration.Milliseconds(),
	)
}
