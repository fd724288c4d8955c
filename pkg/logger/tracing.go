/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.31.0"
	otelTrace "go.opentelemetry.io/otel/trace"
)

// ServiceVersion is reported as service.version on every span.
var ServiceVersion = "dev"

// TracingConfig configures InitializeTracing.
type TracingConfig struct {
	// ServiceName falls back to OTel.ServiceName, then "bindings".
	ServiceName string
	Logger      Logger
	OTel        *OTelConfig
}

func (c *TracingConfig) serviceName() string {
	switch {
	case c.ServiceName != "":
		return c.ServiceName
	case c.OTel != nil && c.OTel.ServiceName != "":
		return c.OTel.ServiceName
	default:
		return "bindings"
	}
}

func (c *TracingConfig) exporting() bool {
	return c.OTel != nil && c.OTel.Enabled && c.OTel.Endpoint != ""
}

// InitializeTracing installs the global tracer provider and the W3C
// propagators. Spans are exported over OTLP/gRPC only when the OTel config is
// enabled with an endpoint. The caller must Shutdown the returned provider.
func InitializeTracing(ctx context.Context, config TracingConfig) (*trace.TracerProvider, error) {
	name := config.serviceName()

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(name),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenTelemetry resource: %w", err)
	}

	opts := []trace.TracerProviderOption{trace.WithResource(res)}

	if config.exporting() {
		exporter, err := otlptracegrpc.New(ctx, exporterOptions(config.OTel)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		opts = append(opts, trace.WithBatcher(exporter))
	}

	tp := trace.NewTracerProvider(opts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if config.Logger != nil {
		config.Logger.Debug().
			Str("service", name).
			Bool("exporter", config.exporting()).
			Msg("Initialized OpenTelemetry tracing")
	}

	return tp, nil
}

// GetTracer returns a tracer from the global provider.
func GetTracer(name string) otelTrace.Tracer {
	return otel.Tracer(name)
}

func exporterOptions(config *OTelConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(config.Endpoint)}

	if config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(config.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(config.Headers))
	}

	return opts
}
