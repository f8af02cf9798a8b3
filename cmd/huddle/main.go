package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amoylab/huddle/internal/bus"
	"github.com/amoylab/huddle/internal/chat"
	"github.com/amoylab/huddle/internal/common/cnst"
	"github.com/amoylab/huddle/internal/common/config"
	"github.com/amoylab/huddle/internal/dispatcher"
	"github.com/amoylab/huddle/internal/presence"
	"github.com/amoylab/huddle/internal/server"
	"github.com/amoylab/huddle/internal/transport/ws"
	"github.com/amoylab/huddle/pkg/helper"
	"github.com/amoylab/huddle/pkg/logger"
	"github.com/amoylab/huddle/pkg/metrics"
	"github.com/amoylab/huddle/pkg/trace"
	"github.com/amoylab/huddle/pkg/utils"
	"github.com/amoylab/huddle/pkg/version"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

var (
	configPath string
	pidFile    string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of huddle",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", cnst.CommandName, version.String())
		},
	}
	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Test the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := checkConfig(configPath)
			if err != nil {
				return fmt.Errorf("configuration file %s is invalid: %w", path, err)
			}
			fmt.Printf("configuration file %s is valid\n", path)
			return nil
		},
	}
	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop a running huddle server",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolvePIDPath()
			if err := utils.SendSignalToPIDFile(path, unix.SIGTERM); err != nil {
				return err
			}
			fmt.Printf("sent SIGTERM to the process in %s\n", path)
			return nil
		},
	}
	rootCmd = &cobra.Command{
		Use:   cnst.CommandName,
		Short: "Real-time presence and chat broadcast server",
		Long:  `huddle accepts websocket clients, lets them claim a unique name and broadcasts their messages to everyone online`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", cnst.HuddleYaml, "path to configuration file, like /etc/huddle/huddle.yaml")
	rootCmd.PersistentFlags().StringVar(&pidFile, "pid", "", "path to PID file")
	rootCmd.AddCommand(versionCmd, testCmd, stopCmd)
}

// checkConfig loads the configuration and compiles the announcement templates
func checkConfig(path string) (string, error) {
	cfg, resolved, err := config.LoadConfig(path)
	if err != nil {
		return resolved, err
	}
	if _, err := chat.NewAnnouncer(cfg.Chat.SystemName, cfg.Chat.Announcements); err != nil {
		return resolved, err
	}
	return resolved, nil
}

// resolvePIDPath prefers --pid, then the configured path, then the default
func resolvePIDPath() string {
	if pidFile != "" {
		return helper.GetPIDPath(pidFile)
	}
	if cfg, _, err := config.LoadConfig(configPath); err == nil {
		return helper.GetPIDPath(cfg.PID)
	}
	return helper.GetPIDPath("")
}

func run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()
	lg.Info("Starting huddle",
		zap.String("version", version.String()),
		zap.String("config", cfgPath))

	if cfg.Tracing.Enabled {
		shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
		if err != nil {
			lg.Fatal("failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			if err := shutdownTracing(sctx); err != nil {
				lg.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	pidPath := cfg.PID
	if pidFile != "" {
		pidPath = pidFile
	}
	pid := utils.NewPIDManager(helper.GetPIDPath(pidPath))
	if err := pid.WritePID(); err != nil {
		lg.Fatal("failed to write PID file", zap.String("path", pid.GetPIDFile()), zap.Error(err))
	}
	defer func() {
		if err := pid.RemovePID(); err != nil {
			lg.Warn("failed to remove PID file", zap.Error(err))
		}
	}()

	announcer, err := chat.NewAnnouncer(cfg.Chat.SystemName, cfg.Chat.Announcements)
	if err != nil {
		lg.Fatal("invalid announcement templates", zap.Error(err))
	}

	registry, err := presence.NewRegistry(ctx, lg, cfg.Chat.SystemName, &cfg.Registry)
	if err != nil {
		lg.Fatal("failed to initialize presence registry", zap.Error(err))
	}
	defer registry.Close()

	broadcastBus, err := bus.NewBus(ctx, lg, &cfg.Bus)
	if err != nil {
		lg.Fatal("failed to initialize broadcast bus", zap.Error(err))
	}
	defer broadcastBus.Close()

	m := metrics.New(cfg.Metrics)

	// the hub outlives the dispatcher so departures from shutdown still fan out
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	hub := ws.NewHub(lg, cfg.Transport, broadcastBus)
	if err := hub.Start(hubCtx); err != nil {
		lg.Fatal("failed to start websocket hub", zap.Error(err))
	}

	d := dispatcher.New(lg, dispatcher.Options{
		Registry:    registry,
		Validator:   chat.NewValidator(cfg.Chat.MaxMessageLength),
		Announcer:   announcer,
		Scheduler:   chat.SystemScheduler(),
		IdleTimeout: cfg.Chat.IdleTimeout,
		Transport:   hub,
		Metrics:     m,
	})
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = d.Run(ctx)
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(lg, cfg, hub, d, m)
	if err := srv.Start(); err != nil {
		lg.Fatal("failed to start server", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-quit
	lg.Info("received signal, shutting down", zap.String("signal", sig.String()))

	cancel()
	<-loopDone

	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	if err := srv.Shutdown(sctx); err != nil {
		lg.Error("failed to shutdown server", zap.Error(err))
	}
	hubCancel()
	hub.Wait()
	lg.Info("huddle stopped")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
