package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"airsense_console/internal/gateway"
	"airsense_console/internal/handlers"
	"airsense_console/internal/logger"
	"airsense_console/internal/repository"
	"airsense_console/internal/repository/db"
	"airsense_console/internal/server"
	"airsense_console/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(viper.GetString("log.level"))

	cfg := service.Config{
		SigningKey:  viper.GetString("auth.signing_key"),
		SessionTTL:  viper.GetDuration("auth.session_ttl"),
		DataWindow:  viper.GetDuration("view.data_window"),
		WindowHosts: viper.GetStringSlice("window.allowed_hosts"),
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid config", "err", err, "hint", "set AIRSENSE_AUTH_SIGNING_KEY")
	}

	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, err := openSessionStore(ctx, log)
	if err != nil {
		log.Fatalw("failed to open session store", "err", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := gateway.NewClient(gateway.Options{
		BaseURL: viper.GetString("api.base_url"),
		Timeout: viper.GetDuration("api.timeout"),
		Metrics: gateway.NewMetrics(reg),
	})

	repos := repository.NewRepository(sqlDB, sessions)
	services := service.NewService(repos, service.NewGatewayConnector(client), cfg, log)
	apiHandler := handlers.NewHandler(services, log, reg)

	go services.Janitor.Run(ctx, viper.GetDuration("session.purge_interval"))

	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), server.WithCORS(apiHandler.InitRoutes(), allowedOrigins()), log)

	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.SetDefault("port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("api.base_url", "http://localhost:3000")
	viper.SetDefault("api.timeout", 0) // no timeout
	viper.SetDefault("session.driver", "sqlite")
	viper.SetDefault("session.purge_interval", service.DefaultPurgeInterval)
	viper.SetDefault("db.path", "airsense.db")
	viper.SetDefault("auth.session_ttl", repository.DefaultSessionTTL)
	viper.SetDefault("view.data_window", service.DefaultDataWindow)

	viper.SetEnvPrefix("AIRSENSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return db.InitDB(dbPath)
}

// openSessionStore returns the Redis store when configured. Nil selects the
// SQLite store.
func openSessionStore(ctx context.Context, log *logger.Logger) (repository.SessionStore, error) {
	switch driver := viper.GetString("session.driver"); driver {
	case "", "sqlite":
		return nil, nil
	case "redis":
		addr := viper.GetString("redis.addr")
		rdb, err := repository.ConnectRedis(ctx, addr, viper.GetString("redis.password"), viper.GetInt("redis.db"))
		if err != nil {
			return nil, err
		}
		log.Infow("sessions in redis", "addr", addr)
		return repository.NewSessionRedis(rdb), nil
	default:
		return nil, errors.New("unknown session.driver " + driver)
	}
}

func allowedOrigins() []string {
	var out []string
	for _, o := range viper.GetStringSlice("cors.allowed_origins") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler http.Handler, log *logger.Logger) {
	go func() {
		log.Infow("listening", "port", port)
		if err := srv.Run(port, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines and live views
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
