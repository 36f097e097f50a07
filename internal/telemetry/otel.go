// Package telemetry bootstraps the OpenTelemetry pipeline and the process
// logger.
package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/encoding/gzip"
)

const (
	DefaultServiceName     = "redditbot"
	DefaultEndpoint        = "otlp.uptrace.dev"
	DefaultMetricsEndpoint = "otlp.uptrace.dev:4317"

	dsnHeader = "uptrace-dsn"
)

type Options struct {
	ServiceName string
	Version     string
	// DSN enables OTLP export of traces, metrics and logs. Empty disables it.
	DSN             string
	Endpoint        string
	MetricsEndpoint string
	// StdoutLogs exports log records to LogWriter when no DSN is set.
	StdoutLogs bool
	LogWriter  io.Writer
}

// Provider owns the installed pipelines.
type Provider struct {
	shutdownFuncs  []func(context.Context) error
	loggerProvider *log.LoggerProvider
	serviceName    string
}

// Setup bootstraps the OpenTelemetry pipeline. Without a DSN only the
// propagator is installed and every other signal stays a no-op.
// Call Shutdown on the result to flush exporters.
func Setup(ctx context.Context, opts Options) (p *Provider, err error) {
	opts = withDefaults(opts)
	p = &Provider{serviceName: opts.ServiceName}

	// handleErr calls shutdown for cleanup and makes sure that all errors are returned.
	handleErr := func(inErr error) {
		err = errors.Join(inErr, p.Shutdown(ctx))
		p = nil
	}

	otel.SetTextMapPropagator(newPropagator())

	if opts.DSN == "" && !opts.StdoutLogs {
		return p, nil
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", opts.ServiceName),
			attribute.String("service.version", opts.Version),
		))
	if err != nil {
		handleErr(err)
		return
	}

	if opts.DSN == "" {
		var stdoutProvider *log.LoggerProvider
		stdoutProvider, err = newStdoutLoggerProvider(opts.LogWriter, res)
		if err != nil {
			handleErr(err)
			return
		}
		p.install(stdoutProvider)
		return p, nil
	}

	tracerProvider, err := newTraceProvider(ctx, opts, res)
	if err != nil {
		handleErr(err)
		return
	}
	p.shutdownFuncs = append(p.shutdownFuncs, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err := newMeterProvider(ctx, opts, res)
	if err != nil {
		handleErr(err)
		return
	}
	p.shutdownFuncs = append(p.shutdownFuncs, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	loggerProvider, err := newLoggerProvider(ctx, opts, res)
	if err != nil {
		handleErr(err)
		return
	}
	p.install(loggerProvider)

	return p, nil
}

// Enabled reports whether log records are exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.loggerProvider != nil
}

// Shutdown calls every registered cleanup once and joins their errors.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var err error
	for _, fn := range p.shutdownFuncs {
		err = errors.Join(err, fn(ctx))
	}
	p.shutdownFuncs = nil
	return err
}

func (p *Provider) install(loggerProvider *log.LoggerProvider) {
	p.shutdownFuncs = append(p.shutdownFuncs, loggerProvider.Shutdown)
	p.loggerProvider = loggerProvider
	global.SetLoggerProvider(loggerProvider)
}

// DSNFromEnv returns the Uptrace DSN, if any.
func DSNFromEnv() string {
	return strings.TrimSpace(os.Getenv("UPTRACE_DSN"))
}

func withDefaults(opts Options) Options {
	if strings.TrimSpace(opts.ServiceName) == "" {
		opts.ServiceName = DefaultServiceName
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.MetricsEndpoint == "" {
		opts.MetricsEndpoint = DefaultMetricsEndpoint
	}
	if opts.LogWriter == nil {
		opts.LogWriter = os.Stdout
	}
	opts.DSN = strings.TrimSpace(opts.DSN)
	return opts
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTraceProvider(ctx context.Context, opts Options, res *resource.Resource) (*trace.TracerProvider, error) {
	traceExporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithHeaders(map[string]string{
			dsnHeader: opts.DSN,
		}),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	)
	if err != nil {
		return nil, err
	}

	bsp := trace.NewBatchSpanProcessor(traceExporter,
		trace.WithMaxQueueSize(10_000),
		trace.WithMaxExportBatchSize(10_000),
		trace.WithBatchTimeout(time.Second))

	return trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithIDGenerator(xray.NewIDGenerator()),
		trace.WithSpanProcessor(bsp),
	), nil
}

func preferDeltaTemporality(kind metric.InstrumentKind) metricdata.Temporality {
	switch kind {
	case metric.InstrumentKindCounter,
		metric.InstrumentKindObservableCounter,
		metric.InstrumentKindHistogram:
		return metricdata.DeltaTemporality
	default:
		return metricdata.CumulativeTemporality
	}
}

func newMeterProvider(ctx context.Context, opts Options, res *resource.Resource) (*metric.MeterProvider, error) {
	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(opts.MetricsEndpoint),
		otlpmetricgrpc.WithHeaders(map[string]string{
			dsnHeader: opts.DSN,
		}),
		otlpmetricgrpc.WithCompressor(gzip.Name),
		otlpmetricgrpc.WithTemporalitySelector(preferDeltaTemporality),
	)
	if err != nil {
		return nil, err
	}

	reader := metric.NewPeriodicReader(
		metricExporter,
		metric.WithInterval(15*time.Second),
	)

	return metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(reader),
	), nil
}

func newLoggerProvider(ctx context.Context, opts Options, res *resource.Resource) (*log.LoggerProvider, error) {
	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpoint(opts.Endpoint),
		otlploghttp.WithHeaders(map[string]string{
			dsnHeader: opts.DSN,
		}),
		otlploghttp.WithCompression(otlploghttp.GzipCompression),
	)
	if err != nil {
		return nil, err
	}

	return log.NewLoggerProvider(
		log.WithResource(res),
		log.WithProcessor(log.NewBatchProcessor(logExporter)),
	), nil
}

func newStdoutLoggerProvider(w io.Writer, res *resource.Resource) (*log.LoggerProvider, error) {
	logExporter, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return nil, err
	}

	return log.NewLoggerProvider(
		log.WithResource(res),
		log.WithProcessor(log.NewSimpleProcessor(logExporter)),
	), nil
}
