// keygate es el servicio de ciclo de vida de credenciales: authorization
// codes y tokens opacos sobre Postgres, tokens firmados con sesiones y
// blacklist de revocación sobre Redis.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/keygate/internal/cache"
	"github.com/dropDatabas3/keygate/internal/config"
	"github.com/dropDatabas3/keygate/internal/domain/repository"
	httpx "github.com/dropDatabas3/keygate/internal/http"
	authctrl "github.com/dropDatabas3/keygate/internal/http/controllers/auth"
	oauthctrl "github.com/dropDatabas3/keygate/internal/http/controllers/oauth"
	"github.com/dropDatabas3/keygate/internal/http/helpers"
	"github.com/dropDatabas3/keygate/internal/http/router"
	oauthsvc "github.com/dropDatabas3/keygate/internal/http/services/oauth"
	jwtx "github.com/dropDatabas3/keygate/internal/jwt"
	"github.com/dropDatabas3/keygate/internal/observability/logger"
	"github.com/dropDatabas3/keygate/internal/store/memory"
	"github.com/dropDatabas3/keygate/internal/store/pg"
)

func main() {
	var (
		configPath = flag.String("config", "", "ruta al archivo YAML de configuración")
		envFile    = flag.String("env-file", ".env", "archivo .env a cargar (opcional)")
	)
	flag.Parse()

	// .env es opcional: ignorar si no existe.
	if *envFile != "" {
		_ = godotenv.Load(*envFile)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := httpx.RegisterMetrics(); err != nil {
		log.Fatal("metrics registration failed", logger.Err(err))
	}

	// Persistent store
	var store repository.Store
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := pg.New(ctx, cfg.Storage.DSN)
		if err != nil {
			log.Fatal("postgres connection failed", logger.Err(err))
		}
		store = pgStore
	case "memory", "":
		log.Warn("using in-memory store; data does not survive restarts")
		store = memory.New()
	default:
		log.Fatal("unknown storage driver", logger.String("driver", cfg.Storage.Driver))
	}
	defer store.Close()

	// Session / revocation store
	sessions, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Driver,
		Host:     cfg.Cache.Host,
		Port:     cfg.Cache.Port,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		Prefix:   cfg.Cache.Prefix,
	})
	if err != nil {
		log.Fatal("cache connection failed", logger.Err(err))
	}
	defer func() { _ = sessions.Close() }()

	// JWT lifecycle
	jwtService := jwtx.NewService(jwtx.Deps{
		Codec:      jwtx.NewCodec(cfg.JWT.Secret),
		Cache:      sessions,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})

	// OAuth services + controllers
	oauthServices := oauthsvc.NewServices(oauthsvc.Deps{
		Store:          store,
		CodeTTL:        cfg.OAuth.CodeTTL,
		AccessTokenTTL: cfg.OAuth.AccessTokenTTL,
	})

	mux := router.New(router.Deps{
		OAuth:      oauthctrl.NewControllers(oauthServices),
		Auth:       authctrl.NewControllers(jwtService),
		JWTService: jwtService,
		Health:     healthHandler(store, sessions),
	})

	apiServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("api server listening", logger.String("addr", cfg.Server.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.Server.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", httpx.MetricsHandler())
		metricsServer = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: metricsMux}

		g.Go(func() error {
			log.Info("metrics server listening", logger.String("addr", cfg.Server.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		log.Info("shutting down")
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", logger.Err(err))
		os.Exit(1)
	}
	log.Info("bye")
}

// healthHandler verifica el store persistente y el almacén de sesiones.
func healthHandler(store repository.Store, sessions cache.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "store": "ok", "cache": "ok"}
		code := http.StatusOK

		if err := store.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["store"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := sessions.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["cache"] = err.Error()
			code = http.StatusServiceUnavailable
		}

		helpers.WriteJSON(w, code, status)
	}
}
