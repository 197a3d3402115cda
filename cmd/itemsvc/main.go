// Package main boots the item catalog and publish HTTP service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"golang.org/x/sync/errgroup"

	"github.com/cloudcatalog/itemsvc/internal/config"
	"github.com/cloudcatalog/itemsvc/internal/dedup"
	"github.com/cloudcatalog/itemsvc/internal/docstore"
	httpapi "github.com/cloudcatalog/itemsvc/internal/http"
	"github.com/cloudcatalog/itemsvc/internal/items"
	"github.com/cloudcatalog/itemsvc/internal/obs"
	"github.com/cloudcatalog/itemsvc/internal/publish"
	"github.com/cloudcatalog/itemsvc/internal/pubsub"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Infow("service_starting")

	dedupStore, err := newDedupStore(cfg)
	if err != nil {
		obs.Logger.Errorw("dedup_store_init_error", "backend", cfg.DedupBackend, "error", err)
		os.Exit(1)
	}
	publisher := newPublisher(cfg)

	store := docstore.NewMemory(docstore.WithMaxAttempts(cfg.TxnMaxAttempts))
	itemsSvc := items.NewService(store, items.WithListLimits(cfg.ListLimitDefault, cfg.ListLimitMax))
	publishSvc := publish.NewService(dedupStore, publisher, cfg.PublishTopic, cfg.PublishTimeout)

	app := httpapi.NewApp(cfg, itemsSvc, publishSvc, dedupStore)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obs.Logger.Infow("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		obs.Logger.Infow("shutdown_begin")
		ctxSrv, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctxSrv)
	})

	if err := g.Wait(); err != nil {
		obs.Logger.Errorw("http_server_error", "error", err)
	}

	if cerr := dedupStore.Close(); cerr != nil {
		obs.Logger.Errorw("shutdown_close_error", "error", cerr)
	}
	obs.Logger.Infow("service_stopped")
	_ = obs.Logger.Sync()
}

func newDedupStore(cfg config.Config) (dedup.Store, error) {
	if cfg.DedupBackend == "bolt" {
		return dedup.OpenBolt(cfg.DedupPath)
	}
	return dedup.NewMemory(), nil
}

func newPublisher(cfg config.Config) pubsub.Publisher {
	if cfg.PublisherBackend == "sns" {
		sess := session.Must(session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)}))
		return pubsub.NewSNS(sns.New(sess), cfg.SNSAccountID)
	}
	return pubsub.NewMemory()
}
