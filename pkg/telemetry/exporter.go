// ABOUTME: OpenTelemetry exporter factory for metric readers and trace exporters (stdout, OTLP over gRPC, Prometheus)
// ABOUTME: Handles configuration and creation of the supported telemetry export destinations

package telemetry

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
)

// createMetricReaders creates metric readers based on configuration.
// otlp is trace-only in this setup; stdout is used when nothing else reads metrics.
func createMetricReaders(cfg Config, out io.Writer, registry *prometheus.Registry) ([]metric.Reader, error) {
	var readers []metric.Reader

	if cfg.HasExporter("prometheus") {
		reader, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus metric exporter: %w", err)
		}
		readers = append(readers, reader)
	}

	if cfg.HasExporter("stdout") || len(readers) == 0 {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
		readers = append(readers, metric.NewPeriodicReader(exporter,
			metric.WithInterval(cfg.BatchTimeout),
			metric.WithTimeout(cfg.ExportTimeout),
		))
	}

	return readers, nil
}

// createTraceExporters creates trace exporters based on configuration.
// Without any exporters configured, spans go to stdout.
func createTraceExporters(ctx context.Context, cfg Config, out io.Writer) ([]trace.SpanExporter, error) {
	var exporters []trace.SpanExporter

	for _, exporterName := range cfg.Exporters {
		switch exporterName {
		case "otlp":
			exporter, err := createOTLPTraceExporter(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
			}
			exporters = append(exporters, exporter)

		case "stdout":
			exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
			if err != nil {
				return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
			}
			exporters = append(exporters, exporter)
		}
	}

	if len(cfg.Exporters) == 0 {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("failed to create default stdout trace exporter: %w", err)
		}
		exporters = append(exporters, exporter)
	}

	return exporters, nil
}

// createOTLPTraceExporter creates an OTLP trace exporter speaking gRPC.
func createOTLPTraceExporter(ctx context.Context, cfg Config) (trace.SpanExporter, error) {
	return otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(cfg.ExportTimeout),
		otlptracegrpc.WithDialOption(grpc.WithUserAgent(cfg.ServiceName+"/"+cfg.ServiceVersion)),
	)
}
