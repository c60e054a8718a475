package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"

	"golang.org/x/sync/errgroup"
	klog "k8s.io/klog/v2"

	"github.com/SAP/stewardci-provenance/pkg/cfg"
	"github.com/SAP/stewardci-provenance/pkg/featureflag"
	"github.com/SAP/stewardci-provenance/pkg/ingestctl"
	"github.com/SAP/stewardci-provenance/pkg/maintenancemode"
	"github.com/SAP/stewardci-provenance/pkg/metrics"
	"github.com/SAP/stewardci-provenance/pkg/server"
	"github.com/SAP/stewardci-provenance/pkg/signals"
)

var (
	configFile  string
	listen      string
	metricsPort uint
	threadiness int

	heartbeatLogging  bool
	heartbeatLogLevel int
)

func init() {
	klog.InitFlags(nil)

	flag.StringVar(
		&configFile,
		"config",
		"",
		"The path to a YAML configuration file."+
			" If not specified or empty, defaults and environment variables are used.",
	)
	flag.StringVar(
		&listen,
		"listen",
		"",
		"The listen address of the API server. Overrides the configuration.",
	)
	flag.UintVar(
		&metricsPort,
		"metrics-port",
		0,
		"The TCP port of the metrics HTTP server. Overrides the configuration.",
	)
	flag.IntVar(
		&threadiness,
		"threadiness",
		0,
		"The maximum number of fingerprint reports ingested in parallel. Overrides the configuration.",
	)
	flag.BoolVar(
		&heartbeatLogging,
		"heartbeat-logging",
		true,
		"Whether ingest controller heartbeats should be logged.",
	)
	flag.IntVar(
		&heartbeatLogLevel,
		"heartbeat-log-level",
		3,
		"The log level to be used for ingest controller heartbeats.",
	)

	flag.Parse()
}

func main() {
	defer klog.Flush()

	logger := klog.Background()
	featureflag.Log(logger)

	config, err := loadConfig()
	if err != nil {
		klog.ErrorS(err, "Failed to load configuration")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}

	klog.V(3).InfoS("Create Signal Handlers")
	ctx := klog.NewContext(context.Background(), logger)
	ctx = signals.SetupShutdownContext(ctx)
	signals.SetupThreadDumpSignalHandler()

	if err := run(ctx, config); err != nil {
		klog.ErrorS(err, "Server terminated")
		klog.FlushAndExit(klog.ExitFlushTimeout, 1)
	}
	klog.V(2).InfoS("Server stopped")
}

func run(ctx context.Context, config *cfg.Config) error {
	klog.V(2).InfoS("Open registry", "driver", config.Registry.Driver, "path", config.Registry.Path)
	store, err := config.Registry.OpenStore(ctx)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	klog.V(2).Infof("Provide metrics on http://0.0.0.0:%d/metrics", config.Metrics.Port)
	metrics.StartServer(ctx, config.Metrics.Port)

	klog.V(3).InfoS("Create Controller")
	controllerOpts := ingestctl.ControllerOpts{
		MaxRetries:        config.Ingest.MaxRetries,
		HeartbeatInterval: config.Ingest.HeartbeatInterval,
	}
	if controllerOpts.MaxRetries == 0 {
		// zero means default for the controller
		controllerOpts.MaxRetries = -1
	}
	if heartbeatLogging {
		tmp := klog.Level(heartbeatLogLevel)
		controllerOpts.HeartbeatLogLevel = &tmp
	}
	if config.Ingest.MaintenanceModeFile != "" {
		controllerOpts.MaintenanceMode = maintenancemode.File(config.Ingest.MaintenanceModeFile)
	}
	controller := ingestctl.NewController(store, store, controllerOpts)

	apiServer := server.New(config.Server.Listen, store, store, controller)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		klog.V(2).InfoS("Run controller", "threadiness", config.Ingest.Threadiness)
		return controller.Run(config.Ingest.Threadiness, ctx.Done())
	})
	group.Go(func() error {
		return apiServer.Start(ctx)
	})
	return group.Wait()
}

func loadConfig() (*cfg.Config, error) {
	config, err := cfg.Load(configFile)
	if err != nil {
		return nil, err
	}
	if listen != "" {
		config.Server.Listen = listen
	}
	if metricsPort > math.MaxUint16 {
		return nil, fmt.Errorf("invalid metrics port %d", metricsPort)
	}
	if metricsPort != 0 {
		config.Metrics.Port = uint16(metricsPort)
	}
	if threadiness != 0 {
		config.Ingest.Threadiness = threadiness
	}
	return config, config.Validate()
}
