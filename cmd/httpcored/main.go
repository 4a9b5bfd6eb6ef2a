// Command httpcored is a minimal httpcore server binary: it wires the
// config, logging, metrics, route, decorator, and server packages
// together into a running process. It registers a small illustrative
// set of routes and decorators; real deployments are expected to
// build their own VirtualHost the same way.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/coreway/httpcore/aggregate"
	"github.com/coreway/httpcore/config"
	"github.com/coreway/httpcore/decorator"
	"github.com/coreway/httpcore/decorator/accesslog"
	"github.com/coreway/httpcore/decorator/auth"
	"github.com/coreway/httpcore/decorator/cors"
	"github.com/coreway/httpcore/logging"
	"github.com/coreway/httpcore/metrics"
	"github.com/coreway/httpcore/parambind"
	"github.com/coreway/httpcore/route"
	"github.com/coreway/httpcore/server"
)

func main() {
	cfg := config.New()
	if err := cfg.Parse(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	level, _ := log.ParseLevel(cfg.ApplicationLogLevel)
	logging.Init(logging.Options{ApplicationLogLevel: level})
	logger := logging.WithComponent("main")

	reg := metrics.New()

	routes, decorators, err := buildRoutes(cfg)
	if err != nil {
		logger.Fatalf("building routes: %v", err)
	}

	fallback := server.ServiceConfig{
		Name: "not-found",
		Handler: func(*server.RequestContext) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusNotFound}, nil
		},
	}

	vh, errs := server.NewVirtualHost(routes, decorators, fallback, int64(cfg.RouteCacheSize), reg)
	for _, e := range errs {
		logger.Warnf("route registration: %v", e)
	}

	pool := server.NewBlockingPool(cfg.BlockingPoolSize, cfg.BlockingPoolQueue, cfg.ShutdownTimeout)

	dispatcher := &server.Dispatcher{
		Host:       vh,
		Aggregator: aggregate.New(cfg.MaxAggregatedBody),
		Binder:     parambind.New(),
		Pool:       pool,
		Metrics:    reg,
	}

	srv, err := server.New(cfg, dispatcher, reg, pool)
	if err != nil {
		logger.Fatalf("building server: %v", err)
	}

	if cfg.EnablePrometheusMetrics {
		go serveMetrics(cfg.MetricsListener, srv.MetricsHandler(), logger)
	}

	go func() {
		logger.Infof("listening on %s", cfg.Address)
		if err := srv.ListenAndServe(); err != nil {
			logger.Fatalf("serve: %v", err)
		}
	}()

	waitForShutdown(srv, cfg.ShutdownTimeout, logger)
}

// buildRoutes registers the illustrative "items" resource: a public
// listing, an authenticated create endpoint, and a CORS decorator
// applied to the whole subtree. Real deployments replace this with
// their own route table.
func buildRoutes(cfg *config.Config) ([]server.RouteDef, []server.DecoratorDef, error) {
	listPattern, err := route.NewExact("/items")
	if err != nil {
		return nil, nil, err
	}
	itemPattern, err := route.NewParameterized("/items/{id}")
	if err != nil {
		return nil, nil, err
	}
	subtreePattern, err := route.NewPrefix("/items")
	if err != nil {
		return nil, nil, err
	}

	routes := []server.RouteDef{
		{
			ID:      "list-items",
			Pattern: listPattern,
			Opts:    []route.Option{route.WithMethods(http.MethodGet)},
			Service: server.ServiceConfig{Name: "list-items", Handler: listItems},
		},
		{
			ID:      "create-item",
			Pattern: listPattern,
			Opts:    []route.Option{route.WithMethods(http.MethodPost), route.WithConsumes("application/x-www-form-urlencoded")},
			Service: server.ServiceConfig{
				Name:                "create-item",
				Handler:             createItem,
				AggregationStrategy: aggregate.OnlyForFormData,
				Params:              []parambind.Spec{{Name: "name", Kind: parambind.KindString, Required: true}},
			},
		},
		{
			ID:      "get-item",
			Pattern: itemPattern,
			Opts:    []route.Option{route.WithMethods(http.MethodGet)},
			Service: server.ServiceConfig{
				Name:    "get-item",
				Handler: getItem,
				Params:  []parambind.Spec{{Name: "id", Kind: parambind.KindInt, Required: true}},
			},
		},
	}

	corsDecorator, err := cors.NewSpec().CreateDecorator(nil)
	if err != nil {
		return nil, nil, err
	}
	authDecorator, err := auth.NewSpec().CreateDecorator([]interface{}{"dev-token"})
	if err != nil {
		return nil, nil, err
	}

	var accessLogDecorator decorator.Decorator
	if !cfg.AccessLogDisabled {
		accessLogDecorator, err = accesslog.NewSpec(logging.WithComponent("access-log")).CreateDecorator(nil)
		if err != nil {
			return nil, nil, err
		}
	}

	rootPattern, err := route.NewPrefix("/")
	if err != nil {
		return nil, nil, err
	}

	decorators := []server.DecoratorDef{
		{ID: "cors-items", Pattern: subtreePattern, Decorator: corsDecorator},
		{ID: "auth-create-item", Pattern: listPattern, Opts: []route.Option{route.WithMethods(http.MethodPost)}, Decorator: authDecorator},
	}
	if accessLogDecorator != nil {
		decorators = append(decorators, server.DecoratorDef{ID: "access-log-all", Pattern: rootPattern, Decorator: accessLogDecorator})
	}

	return routes, decorators, nil
}

func listItems(*server.RequestContext) (*http.Response, error) {
	return &http.Response{StatusCode: http.StatusOK}, nil
}

func createItem(ctx *server.RequestContext) (*http.Response, error) {
	_ = ctx.Param("name")
	return &http.Response{StatusCode: http.StatusCreated}, nil
}

func getItem(ctx *server.RequestContext) (*http.Response, error) {
	_ = ctx.Param("id")
	return &http.Response{StatusCode: http.StatusOK}, nil
}

func serveMetrics(addr string, handler http.Handler, logger *log.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	logger.Infof("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Errorf("metrics listener: %v", err)
	}
}

func waitForShutdown(srv *server.Server, timeout time.Duration, logger *log.Entry) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
