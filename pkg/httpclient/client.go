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

// Package httpclient builds the HTTP clients the REST bindings talk through.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.31.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/bindings/pkg/metrics"
)

// DefaultTimeout bounds every request unless Options.Timeout says otherwise.
const DefaultTimeout = 5 * time.Second

// Options configures New.
type Options struct {
	// Name labels spans and metrics, e.g. "proxmox".
	Name      string
	Timeout   time.Duration
	Tracer    trace.Tracer
	Metrics   *metrics.Collector
	Transport http.RoundTripper
}

// New returns a client whose transport traces and counts every request.
func New(opts Options) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/carverauto/bindings/pkg/httpclient")
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &instrumentedTransport{
			name:    opts.Name,
			base:    base,
			tracer:  opts.Tracer,
			metrics: opts.Metrics,
		},
	}
}

type instrumentedTransport struct {
	name    string
	base    http.RoundTripper
	tracer  trace.Tracer
	metrics *metrics.Collector
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := t.tracer.Start(req.Context(), t.name+" "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(req.Method),
			semconv.URLFull(redactedURL(req)),
		),
	)
	defer span.End()

	req = req.Clone(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.metrics.ObserveHTTP(t.name, req.Method, 0, time.Since(start))

		return nil, err
	}

	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}

	t.metrics.ObserveHTTP(t.name, req.Method, resp.StatusCode, time.Since(start))

	return resp, nil
}

// redactedURL drops the query string and credentials so tokens never end up
// in span attributes.
func redactedURL(req *http.Request) string {
	u := *req.URL
	u.User = nil
	u.RawQuery = ""

	return u.String()
}
