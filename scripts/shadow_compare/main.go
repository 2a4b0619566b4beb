// Command shadow_compare replays collaborator API calls against this service and the legacy
// backend and reports where their answers diverge.
package main

import (
	_ "embed"
	"flag"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

//go:embed targets.json
var defaultTargets []byte

func main() {
	goBase := flag.String("go-base", "http://localhost:8080", "Go API base URL")
	legacyBase := flag.String("legacy-base", "http://localhost:5000", "Legacy API base URL")
	targetsPath := flag.String("targets", "", "JSON targets file, defaults to the built-in list")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	raw := defaultTargets
	if *targetsPath != "" {
		data, err := os.ReadFile(*targetsPath)
		if err != nil {
			logger.Fatal("read targets", zap.Error(err))
		}
		raw = data
	}
	targets, err := parseTargets(raw)
	if err != nil {
		logger.Fatal("load targets", zap.Error(err))
	}

	p := replayer{client: &http.Client{Timeout: *timeout}, goBase: *goBase, legacyBase: *legacyBase}
	var breaking, optional int
	for _, t := range targets {
		out := p.compare(t)
		fields := []zap.Field{
			zap.String("method", t.Method),
			zap.String("path", t.Path),
			zap.Int("go_status", out.GoStatus),
			zap.Int("legacy_status", out.LegacyStatus),
			zap.Bool("body_match", out.BodyMatch),
			zap.Duration("go_latency", out.GoLatency),
			zap.Duration("legacy_latency", out.LegacyLatency),
		}
		switch {
		case !out.diverged():
			logger.Info("match", fields...)
		case t.Critical:
			breaking++
			logger.Error("breaking divergence", append(fields, zap.Error(out.Err))...)
		default:
			optional++
			logger.Warn("optional divergence", append(fields, zap.Error(out.Err))...)
		}
	}

	logger.Info("shadow compare finished", zap.Int("breaking", breaking), zap.Int("optional", optional))
	if breaking > 0 {
		os.Exit(1)
	}
}
