package telemetry

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/userint/pkg/userint"
)

const (
	tracerName = "github.com/odvcencio/userint/pkg/userint"
)

// TracerProvider holds the OpenTelemetry tracer provider
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// NewTracerProvider creates a tracer provider that exports spans as JSON to w.
func NewTracerProvider(serviceName, version string, w io.Writer) (*TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(provider)

	return &TracerProvider{
		provider: provider,
	}, nil
}

// Shutdown flushes pending spans and shuts down the tracer provider
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.provider.Shutdown(ctx)
}

// Tracer returns a tracer from the provider.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.provider.Tracer(tracerName)
}

// Tracer returns the global tracer for the interaction core.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Span attribute keys
var (
	AttrTickKind    = attribute.Key("userint.tick.kind")
	AttrTickPressed = attribute.Key("userint.tick.pressed")
	AttrTickVisited = attribute.Key("userint.tick.visited")
	AttrTickAborted = attribute.Key("userint.tick.aborted")
	AttrSignal      = attribute.Key("userint.signal")
	AttrChoice      = attribute.Key("userint.choice")
	AttrWidget      = attribute.Key("userint.widget")
	AttrWidgetKind  = attribute.Key("userint.widget.kind")
)

// Namer names widgets for span attributes.
type Namer func(w *userint.Widget) string

// TagNamer names a widget by its tag.
func TagNamer(w *userint.Widget) string {
	tag, _ := w.Tag()
	return tag
}

// SpanObserver emits one span per tick, carrying the tick's widget events as span events. Spans
// are recorded after the fact because the protocol does not thread a context through its
// callbacks.
type SpanObserver struct {
	tracer trace.Tracer
	name   Namer

	mu     sync.Mutex
	ctx    context.Context
	events []pendingEvent
}

type pendingEvent struct {
	at    time.Time
	name  string
	attrs []attribute.KeyValue
}

var _ userint.Observer = (*SpanObserver)(nil)

// NewSpanObserver creates an observer that records spans with tracer under ctx. A nil name uses
// TagNamer.
func NewSpanObserver(ctx context.Context, tracer trace.Tracer, name Namer) *SpanObserver {
	if name == nil {
		name = TagNamer
	}
	return &SpanObserver{tracer: tracer, name: name, ctx: ctx}
}

// SetContext changes the parent context for subsequent spans.
func (o *SpanObserver) SetContext(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ctx = ctx
}

// ObserveEvent buffers a widget event for the current tick's span.
func (o *SpanObserver) ObserveEvent(w *userint.Widget, ev userint.Event) {
	e := pendingEvent{
		at:   time.Now(),
		name: ev.String(),
		attrs: []attribute.KeyValue{
			AttrWidget.String(o.name(w)),
			AttrWidgetKind.String(w.Kind().String()),
		},
	}
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
}

// ObserveTick records the tick as a span covering its elapsed time.
func (o *SpanObserver) ObserveTick(t userint.Tick) {
	o.mu.Lock()
	events := o.events
	o.events = nil
	ctx := o.ctx
	o.mu.Unlock()

	end := time.Now()
	start := end.Add(-t.Elapsed)

	attrs := []attribute.KeyValue{
		AttrTickKind.String(t.Kind.String()),
		AttrTickVisited.Int(t.Visited),
	}
	if t.Kind == userint.TickPropagate {
		attrs = append(attrs, AttrTickPressed.Bool(t.Pressed), AttrTickAborted.Bool(t.Aborted))
		if t.Signal != nil {
			attrs = append(attrs, AttrSignal.String(o.name(t.Signal)))
		}
	}
	if t.Choice != nil {
		attrs = append(attrs, AttrChoice.String(o.name(t.Choice)))
	}

	_, span := o.tracer.Start(ctx, "userint."+t.Kind.String(),
		trace.WithTimestamp(start),
		trace.WithAttributes(attrs...),
	)
	for _, e := range events {
		span.AddEvent(e.name, trace.WithTimestamp(e.at), trace.WithAttributes(e.attrs...))
	}
	span.End(trace.WithTimestamp(end))
}
