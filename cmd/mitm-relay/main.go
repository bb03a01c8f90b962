package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/user/mitm-relay-go/internal/api"
	"github.com/user/mitm-relay-go/internal/capture"
	"github.com/user/mitm-relay-go/internal/config"
	"github.com/user/mitm-relay-go/internal/forward"
	"github.com/user/mitm-relay-go/internal/version"
	"github.com/user/mitm-relay-go/internal/ws"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Println(version.Info())
			os.Exit(0)
		case "--init":
			if err := runInit(); err != nil {
				log.Fatalf("init: %v", err)
			}
			os.Exit(0)
		case "--help", "-h":
			printUsage()
			os.Exit(0)
		}
	}
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func printUsage() {
	fmt.Printf("MITM Relay - %s\n\n", version.Short())
	fmt.Println("Usage: mitm-relay [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --init         Generate relay.yaml.example configuration template")
	fmt.Println("  --version, -v  Show version information")
	fmt.Println("  --help, -h     Show this help message")
	fmt.Println()
	fmt.Println("Without options, starts the relay server.")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  Use environment variables or relay.yaml (see relay.yaml.example)")
	fmt.Println("  Set ADMIN_USERNAME and ADMIN_PASSWORD to unlock the debug views")
	fmt.Println("  Point clients at the relay, then set the target at /___configure")
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger.
	logDir := getLogDir()
	logger, err := newLogger(cfg.Server.LogLevel, logDir, cfg.LogRotation)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting mitm-relay",
		zap.String("version", version.Short()),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Int("capture_capacity", cfg.Capture.Capacity),
	)

	if !cfg.Admin.Configured() {
		logger.Warn("admin credentials not set; debug views will refuse to serve " +
			"(set ADMIN_USERNAME and ADMIN_PASSWORD)")
	}

	// Core state: the bounded capture history and the forwarder. The target
	// starts unset and is configured at runtime via /___configure.
	store := capture.NewStore(cfg.Capture.Capacity)
	forwarder := forward.New(cfg.Forward.Timeout(), logger)

	// Live capture feed for websocket clients.
	hub := ws.NewHub(logger)
	go hub.Run()

	// Create HTTP server.
	server := api.NewServer(api.ServerDeps{
		Store:     store,
		Forwarder: forwarder,
		Hub:       hub,
		Admin:     cfg.Admin,
		RateLimit: cfg.RateLimit,
		MaxBody:   cfg.Server.MaxBodyBytes,
		Logger:    logger,
	})

	// Start server in goroutine.
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Forward.Timeout() + 30*time.Second, // relayed responses wait on the downstream
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", addr))

	// Wait for shutdown signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(level string, logDir string, rotation config.LogRotationConfig) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug", "DEBUG":
		zapLevel = zap.DebugLevel
	case "warn", "WARN":
		zapLevel = zap.WarnLevel
	case "error", "ERROR":
		zapLevel = zap.ErrorLevel
	default:
		zapLevel = zap.InfoLevel
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", logDir, err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "mitm-relay.log"),
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}

	// File core: JSON encoder for structured log parsing
	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.TimeKey = "ts"
	fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileEncoderCfg),
		zapcore.AddSync(lj),
		zapLevel,
	)

	// Console core: human-readable output to stdout/stderr
	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderCfg)

	// stdout for DEBUG/INFO, stderr for WARN/ERROR+
	stdoutCore := zapcore.NewCore(
		consoleEncoder,
		zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapLevel && l < zapcore.WarnLevel
		}),
	)
	stderrCore := zapcore.NewCore(
		consoleEncoder,
		zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapLevel && l >= zapcore.WarnLevel
		}),
	)

	core := zapcore.NewTee(fileCore, stdoutCore, stderrCore)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	), nil
}

func getLogDir() string {
	if dir := os.Getenv("RELAY_LOGS_DIR"); dir != "" {
		return dir
	}
	return "logs"
}
