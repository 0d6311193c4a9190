/*
Copyright 2020 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package tracing wires OpenTelemetry spans for scenarios and UI actions
package tracing

import (
	"context"
	"io"
	"os"

	"github.com/gravitational/uitest/lib/defaults"

	"github.com/gravitational/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gravitational/uitest"

// Span attribute keys
var (
	AttrScenario = attribute.Key("uitest.scenario")
	AttrSession  = attribute.Key("uitest.session")
	AttrLocator  = attribute.Key("uitest.locator")
	AttrTarget   = attribute.Key("uitest.target")
)

// Provider owns the tracer provider and the file spans are written to
type Provider struct {
	provider *sdktrace.TracerProvider
	out      io.Closer
}

// NewFileProvider installs a global tracer provider exporting spans
// as JSON lines to path
func NewFileProvider(path string) (*Provider, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, defaults.SharedReadWriteMask)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	p, err := newProvider(f)
	if err != nil {
		f.Close()
		return nil, trace.Wrap(err)
	}
	p.out = f
	return p, nil
}

// NewProvider installs a global tracer provider exporting spans to w
func NewProvider(w io.Writer) (*Provider, error) {
	return newProvider(w)
}

func newProvider(w io.Writer) (*Provider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, trace.Wrap(err, "failed to create trace exporter")
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "uitest"))),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	return &Provider{provider: provider}, nil
}

// Shutdown flushes pending spans and closes the output
func (p *Provider) Shutdown(ctx context.Context) error {
	err := p.provider.Shutdown(ctx)
	if p.out != nil {
		if cerr := p.out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return trace.Wrap(err)
}

// Tracer returns the harness tracer
func Tracer() oteltrace.Tracer {
	return otel.Tracer(tracerName)
}

// Start starts a span with the given name
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return Tracer().Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it
func End(span oteltrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, trace.UserMessage(err))
	}
	span.End()
}
