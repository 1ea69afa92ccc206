package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/controller"
	"github.com/itohio/goscale/pkg/metrics"
	"github.com/itohio/goscale/pkg/sample"
	"github.com/itohio/goscale/pkg/scale"
	"github.com/itohio/goscale/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use mocked scale instead of serial port")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of samples to average (0 = disabled, overrides config)")
		capacityFlag       = flag.Int("capacity", 0, "Regression window size (overrides config)")
		targetFlag         = flag.Float64("target", -1, "Target weight in grams (overrides config)")
		metricsFlag        = flag.String("metrics", "", "Metrics listen address (overrides config)")
		logLevelFlag       = flag.String("log-level", "", "Log level (overrides config)")
		tareFlag           = flag.Bool("tare", false, "Tare the scale after connecting")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *averageSamplesFlag >= 0 {
		cfg.Measurement.AverageSamples = *averageSamplesFlag
	}
	if *capacityFlag != 0 {
		cfg.Predictor.Capacity = *capacityFlag
	}
	if *targetFlag >= 0 {
		cfg.Predictor.TargetWeight = *targetFlag
	}
	if *metricsFlag != "" {
		cfg.Metrics.Listen = *metricsFlag
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	ctrl, err := controller.New(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	status.NewReporter(log).Attach(ctrl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Listen != "" {
		srv, err := startMetrics(cfg.Metrics.Listen, ctrl, log)
		if err != nil {
			log.Fatalf("Failed to start metrics: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	var device scale.Device
	if *mockFlag {
		device = scale.NewMock(&cfg.Mock)
		log.Info("Using mocked scale")
	} else {
		device = scale.New(cfg.Serial.Port, cfg.Serial.BaudRate, scale.DefaultBufferSize, log)
	}

	if err := device.Connect(); err != nil {
		log.Fatalf("Failed to connect to scale: %v", err)
	}
	log.WithFields(logrus.Fields{
		"port":     cfg.Serial.Port,
		"mock":     *mockFlag,
		"capacity": cfg.Predictor.Capacity,
		"target":   cfg.Predictor.TargetWeight,
	}).Info("Connected")

	if *tareFlag {
		if err := device.Tare(); err != nil {
			log.WithError(err).Warn("Tare failed")
		}
	}

	chain := startChain(cfg, device, ctrl, log)

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case <-chain.loopDone:
		log.Warn("Scale stream ended")
	}

	closeChain(chain)
	log.Info("Disconnected")
}

// processingChain tracks the components of the processing chain for graceful shutdown.
type processingChain struct {
	device   scale.Device
	loopDone chan struct{} // Closed when the control loop goroutine exits
}

// startChain wires device -> converter -> optional averaging -> controller.
func startChain(cfg *config.Config, device scale.Device, ctrl *controller.Controller, log logrus.FieldLogger) *processingChain {
	stream := sample.NewConverter(&cfg.Scale, 500, log)(device.Readings())
	if cfg.Measurement.AverageSamples > 0 {
		stream = sample.NewAveragingConverterForSamples(cfg.Measurement.AverageSamples, 500)(stream)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		ctrl.ProcessSamples(stream)
	}()

	return &processingChain{
		device:   device,
		loopDone: loopDone,
	}
}

// closeChain closes the device and waits for the control loop to drain.
func closeChain(chain *processingChain) {
	if chain == nil {
		return
	}
	if chain.device != nil {
		chain.device.Close()
	}
	<-chain.loopDone
}

// startMetrics serves Prometheus metrics for ctrl on addr.
func startMetrics(addr string, ctrl *controller.Controller, log logrus.FieldLogger) (*http.Server, error) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, err
	}
	rec.Attach(ctrl)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics server failed")
		}
	}()
	log.WithField("addr", addr).Info("Serving metrics")

	return srv, nil
}
