// README: Entry point; loads config, wires services, starts HTTP server and the dispatch broadcaster.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/config"
	"github.com/SabaShahdin/ms/internal/dispatch"
	"github.com/SabaShahdin/ms/internal/events"
	httptransport "github.com/SabaShahdin/ms/internal/http"
	"github.com/SabaShahdin/ms/internal/infra"
	"github.com/SabaShahdin/ms/internal/maps"
	"github.com/SabaShahdin/ms/internal/modules/ride"
	"github.com/SabaShahdin/ms/internal/modules/route"
	"github.com/SabaShahdin/ms/internal/modules/support"
	"github.com/SabaShahdin/ms/internal/modules/vehicle"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("db init failed", "err", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	var geocoder maps.Geocoder
	if cfg.Maps.APIKey != "" {
		gc, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Error("maps client init failed", "err", err)
			os.Exit(1)
		}
		geocoder = gc
	}

	var sink events.Sink
	if cfg.AMQP.URL != "" {
		pub, err := events.NewPublisher(cfg.AMQP.URL, log)
		if err != nil {
			log.Error("amqp init failed", "err", err)
			os.Exit(1)
		}
		defer pub.Close()
		sink = pub
	}

	geoIndex := vehicle.NewGeoIndex(redisClient)
	vehicleSvc := vehicle.NewService(vehicle.NewPGStore(dbPool), geoIndex, geocoder, log)
	rideSvc := ride.NewService(ride.NewPGStore(dbPool), sink, log)
	routeSvc := route.NewService(route.NewPGStore(dbPool), log)

	supportStore := support.NewPGStore(dbPool)
	authSvc := support.NewAuthService(supportStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	statsSvc := support.NewStatsService(supportStore, log)
	payments := support.NewPaymentClient(cfg.Payment.ProviderURL)
	contactSvc := support.NewContactService(supportStore, log)

	hub := dispatch.NewHub(log)
	broadcaster := dispatch.NewBroadcaster(hub, func(ctx context.Context) (any, error) {
		return vehicleSvc.Snapshot(ctx)
	}, cfg.Dispatch.SnapshotInterval, log)
	go broadcaster.Run(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Vehicles:    vehicleSvc,
		Rides:       rideSvc,
		Routes:      routeSvc,
		Auth:        authSvc,
		Stats:       statsSvc,
		Payments:    payments,
		Contacts:    contactSvc,
		Hub:         hub,
		Broadcaster: broadcaster,
		Log:         log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	log.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
