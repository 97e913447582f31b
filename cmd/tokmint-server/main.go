package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/infra/buildinfo"
	"github.com/yndnr/tokmint-go/internal/infra/confloader"
	"github.com/yndnr/tokmint-go/internal/infra/keyring"
	"github.com/yndnr/tokmint-go/internal/infra/shutdown"
	"github.com/yndnr/tokmint-go/internal/infra/tlsroots"
	"github.com/yndnr/tokmint-go/internal/server/config"
	"github.com/yndnr/tokmint-go/internal/server/httpserver"
	"github.com/yndnr/tokmint-go/internal/server/localserver"
	"github.com/yndnr/tokmint-go/internal/server/redisserver"
	"github.com/yndnr/tokmint-go/internal/storage/revocation"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/internal/telemetry/metric"
	"github.com/yndnr/tokmint-go/pkg/crypto/aesprf"
	"github.com/yndnr/tokmint-go/pkg/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("tokmint-server " + buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Logger())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting tokmint-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout)

	iss, key, err := initIssuer(cfg, log)
	if err != nil {
		return fmt.Errorf("init issuer: %w", err)
	}
	shutdownHandler.OnClose("keyring", key.Close)

	ctx := context.Background()
	store, err := revocation.Open(ctx, cfg.Revocation, log)
	if err != nil {
		return fmt.Errorf("init revocation store: %w", err)
	}
	shutdownHandler.OnClose("revocation", store.Close)

	var reg *metric.Registry
	if cfg.Telemetry.Metrics.Enabled {
		reg = metric.NewRegistry()
		reg.MustRegister(metric.NewCollector(cfg.Revocation.Backend, store.Len))
	}

	tokens := service.NewTokenService(iss, store, &service.TokenServiceConfig{
		RevocationTTL: cfg.Revocation.TTL,
		Metrics:       reg,
		Logger:        log,
	})
	log.Info("token service initialized",
		"engine", tokens.Engine(),
		"key_source", key.Source(),
		"key_locked", key.Locked(),
		"revocation", cfg.Revocation.Backend)

	var limiter *httpserver.RateLimiter
	if cfg.Security.RateLimit.Enabled {
		limiter = httpserver.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst)
	}

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Tokens = tokens
	routerCfg.Metrics = reg
	routerCfg.MetricsPath = cfg.Telemetry.Metrics.Path
	routerCfg.RateLimiter = limiter
	routerCfg.Logger = log
	routerCfg.MaxBodyBytes = cfg.Server.HTTP.MaxBodyBytes

	srvCfg := httpserver.Config{
		Address:      cfg.Server.HTTP.Address,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
		RateLimiter:  limiter,
		PruneEvery:   time.Minute,
	}
	if cfg.Server.HTTP.TLSEnabled() {
		tlsCfg, stop, err := initTLS(cfg, log)
		if err != nil {
			return fmt.Errorf("init tls: %w", err)
		}
		shutdownHandler.OnClose("tls watcher", func() error { stop(); return nil })
		srvCfg.TLS = tlsCfg
	}

	srv := httpserver.New(srvCfg, httpserver.NewRouter(routerCfg), log)
	shutdownHandler.OnShutdown("http server", srv.Shutdown)

	if cfg.Server.Local.Enabled {
		// Socket peers have no IP to bucket by, so no rate limit here.
		localRouter := *routerCfg
		localRouter.RateLimiter = nil
		local := localserver.New(cfg.Server.Local.SocketPath, httpserver.NewRouter(&localRouter), log)
		shutdownHandler.OnShutdown("local socket", local.Shutdown)
		go func() {
			if err := local.ListenAndServe(); err != nil {
				log.Error("local socket error", "error", err)
				shutdownHandler.Trigger()
			}
		}()
	}

	if respCfg := cfg.Server.RESP; respCfg.Enabled {
		rcfg := redisserver.Config{
			Address:           respCfg.Address,
			Password:          respCfg.Password,
			ReadTimeout:       respCfg.ReadTimeout,
			WriteTimeout:      cfg.Server.HTTP.WriteTimeout,
			IdleTimeout:       respCfg.IdleTimeout,
			CommandsPerSecond: respCfg.CommandsPerSecond,
		}
		if respCfg.TLS {
			rcfg.TLS = srvCfg.TLS
		}
		resp := redisserver.New(rcfg, tokens, log)
		shutdownHandler.OnShutdown("resp server", resp.Shutdown)
		go func() {
			if err := resp.ListenAndServe(); err != nil {
				log.Error("RESP server error", "error", err)
				shutdownHandler.Trigger()
			}
		}()
	}

	if *configFile != "" {
		stop, err := watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnClose("config watcher", stop)
		}
	}

	go func() {
		log.Info("HTTP server listening",
			"addr", srvCfg.Address,
			"tls", srvCfg.TLS != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, the optional file and the environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.LoadDefaults(cfg); err != nil {
		return nil, err
	}
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initIssuer(cfg *config.ServerConfig, log logger.Logger) (*token.Issuer, *keyring.Key, error) {
	key, err := keyring.Load(cfg.Token.Keyring(), log)
	if err != nil {
		return nil, nil, err
	}
	raw, err := key.Bytes()
	if err != nil {
		key.Close()
		return nil, nil, err
	}

	var opts []token.Option
	engine, forced, err := aesprf.ParseType(cfg.Token.Engine)
	if err != nil {
		key.Close()
		return nil, nil, err
	}
	if forced {
		opts = append(opts, token.WithEngine(engine))
	}

	iss, err := token.New(raw, opts...)
	if err != nil {
		key.Close()
		return nil, nil, err
	}
	return iss, key, nil
}

// initTLS loads the certificate pair with hot reload and, when a client
// CA file is configured, requires client certificates.
func initTLS(cfg *config.ServerConfig, log logger.Logger) (*tls.Config, func(), error) {
	w, err := tlsroots.NewWatcher(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
		tlsroots.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}

	var clientCAs *tlsroots.Pool
	if path := cfg.Security.TLS.ClientCAFile; path != "" {
		clientCAs = tlsroots.NewEmptyPool()
		if err := clientCAs.AddCertFile(path); err != nil {
			w.Stop()
			return nil, nil, err
		}
	}

	w.StartAsync()
	return tlsroots.ServerConfig(w, clientCAs), w.Stop, nil
}

// watchLogLevel re-reads the config file on change and applies its log
// level. Other settings need a restart.
func watchLogLevel(path string, log logger.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level updated", "level", cfg.Log.Level)
	})
	w.StartAsync()
	return w.Stop, nil
}
