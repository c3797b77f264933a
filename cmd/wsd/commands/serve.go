package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/authtoken"
	"github.com/wsobjects/wsd/pkg/blob"
	"github.com/wsobjects/wsd/pkg/config"
	"github.com/wsobjects/wsd/pkg/httpapi"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/metadata/memory"
	"github.com/wsobjects/wsd/pkg/metadata/mongostore"
	"github.com/wsobjects/wsd/pkg/metrics"
	"github.com/wsobjects/wsd/pkg/payload/fs"
	"github.com/wsobjects/wsd/pkg/reconciler"
	"github.com/wsobjects/wsd/pkg/rpc"
	"github.com/wsobjects/wsd/pkg/service"
)

var useMemoryStore bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wsd server in the foreground",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&useMemoryStore, "memory-store", false, "Use an in-memory metadata store instead of MongoDB (development only)")
}

func runServe(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.Info("wsd starting", "config", path, "version", Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store metadata.Store
	if useMemoryStore {
		store = memory.New()
		logger.Warn("using in-memory metadata store; data will not survive a restart")
	} else {
		mongoCfg := mongostore.Config{Host: cfg.Mongo.Host, Database: cfg.Mongo.Database, ClientThreads: cfg.Mongo.ClientThreads}
		mstore, err := mongostore.Connect(ctx, mongoCfg)
		if err != nil {
			return fmt.Errorf("connect metadata store: %w", err)
		}
		defer mstore.Close(context.Background())
		store = mstore
	}

	bodies, err := fs.New(fs.Config{BasePath: cfg.DBPath})
	if err != nil {
		return fmt.Errorf("init body store: %w", err)
	}

	blobStore := blob.NewClient(cfg.ShockServer, http.DefaultClient, "")

	serialLane := lane.New("serialization", 1, 256)
	generalLane := lane.New("general", cfg.DBLaneWorkers, 256)
	serialLane.Start()
	generalLane.Start()
	defer serialLane.Stop()
	defer generalLane.Stop()

	rec := reconciler.New(store, blobStore, serialLane)
	rec.Start(ctx)
	defer rec.Stop()

	svcCfg := service.Config{
		AdminUsers:       cfg.AdminList,
		DownloadLifetime: cfg.DownloadLifetime,
		DownloadURLBase:  cfg.DownloadURLBase,
		ShockServerURL:   cfg.ShockServer,
	}
	svc := service.New(store, blobStore, bodies, rec, serialLane, generalLane, svcCfg)

	whitelist, err := service.LoadTypeWhitelist(cfg.TypesFile)
	if err != nil {
		return fmt.Errorf("load type whitelist: %w", err)
	}

	verifier := authtoken.NewVerifier(http.DefaultClient, time.Hour)
	dispatcher := rpc.New(svc, verifier, whitelist, svcCfg)

	mtr := metrics.New(prometheus.DefaultRegisterer)
	reportLaneDepths(ctx, mtr, serialLane, generalLane)

	router := httpapi.NewRouter(dispatcher, store, bodies, blobStore, mtr, httpapi.Config{
		APIRoot:     cfg.APIRoot,
		MetricsPath: cfg.Metrics.Path,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", logger.Err(err))
		return err
	}
	logger.Info("wsd stopped gracefully")
	return nil
}

// reportLaneDepths periodically publishes each lane's queue depth so it
// shows up in /metrics without the lanes needing to know about metrics.
func reportLaneDepths(ctx context.Context, mtr *metrics.Metrics, lanes ...*lane.Lane) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, l := range lanes {
					mtr.SetLaneQueueDepth(l.Name(), l.QueueDepth())
				}
			}
		}
	}()
}
