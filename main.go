// Blog
// ====
// A REST API for a blogging platform: users, profiles, articles with a
// draft/publish workflow, comments, favorites and tags.
//
// Print the route docs with: `go run . -routes`
//
// Boot the server:
// ----------------
// $ APP_AUTH_SECRET=change-me-please-0123 go run main.go
//
// Client requests:
// ----------------
// $ curl http://localhost:3333/ping
// pong
//
// $ curl -X POST -d '{"user":{"username":"jake","email":"jake@jake.jake","password":"jakejake"}}' http://localhost:3333/api/users
// {"user":{"id":1,"email":"jake@jake.jake","token":"eyJ...","username":"jake","bio":null,"image":null}}
//
// $ curl -H 'Authorization: Token eyJ...' -X POST -d '{"article":{"title":"Hi","description":"d","body":"b","status":"PUBLISHED"}}' http://localhost:3333/api/articles
// {"article":{"slug":"hi","title":"Hi",...}}
//
// $ curl -H 'Accept-Language: vi' http://localhost:3333/api/articles/nope
// {"statusCode":404,...,"message":"Không tìm thấy bài viết \"nope\""}
//
// $ curl http://localhost:3334/metrics
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

	"github.com/go-chi/docgen"
	"go.opentelemetry.io/otel/metric/global"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/blog/internal/article"
	"github.com/SergeyParamoshkin/blog/internal/auth"
	"github.com/SergeyParamoshkin/blog/internal/comment"
	"github.com/SergeyParamoshkin/blog/internal/config"
	"github.com/SergeyParamoshkin/blog/internal/database"
	"github.com/SergeyParamoshkin/blog/internal/events"
	"github.com/SergeyParamoshkin/blog/internal/i18n"
	"github.com/SergeyParamoshkin/blog/internal/logger"
	"github.com/SergeyParamoshkin/blog/internal/metrics"
	"github.com/SergeyParamoshkin/blog/internal/ranking"
	"github.com/SergeyParamoshkin/blog/internal/router"
	"github.com/SergeyParamoshkin/blog/internal/user"
)

const ServiceName = "blog"

func main() {
	routes := flag.Bool("routes", false, "Generate router documentation")
	flag.Parse()

	// Passing -routes to the program will generate docs for the
	// router definition. No configuration or database is needed.
	if *routes {
		r := router.New(router.Deps{
			Logger: zap.NewNop().Sugar(),
			Bundle: i18n.Default(),
		})
		// nolint
		fmt.Println(docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
			ProjectPath: "github.com/SergeyParamoshkin/blog",
			Intro:       "Blog API generated docs.",
		}))

		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zl, err := logger.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer zl.Sync() // nolint
	sugar := zl.Sugar().With("service", ServiceName)
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter, err := metrics.NewExporter()
	if err != nil {
		return fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())
	m := metrics.New(global.Meter(ServiceName))

	db, err := database.Open(ctx, cfg.Database(), sugar)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, sugar); err != nil {
		return err
	}

	var ranker ranking.Ranker = ranking.Nop{}
	if cfg.Redis.Addr != "" {
		client, err := ranking.Dial(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()

		ranker = ranking.NewRedis(client, ranking.DefaultKey)
		sugar.Infow("popularity ranking enabled", "addr", cfg.Redis.Addr)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		pub, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		publisher = pub
		sugar.Infow("event publishing enabled", "exchange", cfg.AMQP.Exchange)
	}
	publisher = events.NewCounting(publisher, m)
	defer publisher.Close()

	tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	users := user.NewStore(db)

	r := router.New(router.Deps{
		Logger:   sugar,
		Bundle:   i18n.Default(),
		Metrics:  m,
		Tokens:   tokens,
		Users:    user.NewAPI(user.NewService(users, tokens)),
		Articles: article.NewAPI(article.NewService(article.NewStore(db), users, ranker, publisher)),
		Comments: comment.NewAPI(comment.NewService(comment.NewStore(db), users)),
	})

	servers := []*http.Server{
		{
			Addr:         cfg.HTTP.Addr,
			Handler:      r,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
		{
			Addr:         cfg.HTTP.DiagAddr,
			Handler:      router.NewDiag(exporter, db),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			sugar.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		sugar.Infow("shutting down")
	case err = <-errc:
		sugar.Errorw(err.Error())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			sugar.Errorw("shutdown", "addr", srv.Addr, "error", serr)
		}
	}

	return err
}
