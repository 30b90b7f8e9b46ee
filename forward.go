package dumper

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Envelope is one forwarded dump with its metadata.
type Envelope struct {
	ID      string         `json:"id" yaml:"id" msgpack:"id" bson:"id" xml:"id,attr"`
	Time    time.Time      `json:"time" yaml:"time" msgpack:"time" bson:"time" xml:"time,attr"`
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty" msgpack:"context,omitempty" bson:"context,omitempty" xml:"-"`
	Data    *Data          `json:"data" yaml:"data" msgpack:"data" bson:"data" xml:"data"`
}

// Connection delivers encoded envelopes to a dump server.
type Connection interface {
	// Write delivers one payload.
	Write(ctx context.Context, payload []byte, contentType string) error

	// Target names the destination for errors and events.
	Target() string

	// Close releases the connection.
	Close() error
}

// Forwarder ships Data trees to a Connection, falling back to local rendering
// when the destination cannot be reached.
type Forwarder struct {
	conn      Connection
	codec     Codec
	encryptor Encryptor
	providers []ContextProvider
	fallback  Renderer
	out       io.Writer
}

// NewForwarder creates a forwarder encoding envelopes with codec.
func NewForwarder(conn Connection, codec Codec) *Forwarder {
	return &Forwarder{conn: conn, codec: codec}
}

// WithEncryptor seals every payload with enc.
func (f *Forwarder) WithEncryptor(enc Encryptor) *Forwarder {
	f.encryptor = enc
	return f
}

// WithContextProvider adds providers whose metadata is merged into each envelope.
// Later providers override earlier ones.
func (f *Forwarder) WithContextProvider(providers ...ContextProvider) *Forwarder {
	f.providers = append(f.providers, providers...)
	return f
}

// WithFallback renders dumps to w when forwarding fails.
func (f *Forwarder) WithFallback(r Renderer, w io.Writer) *Forwarder {
	f.fallback = r
	f.out = w
	return f
}

// Forward encodes d into an envelope and writes it to the connection.
//
// When the write fails and a fallback renderer is set, d is rendered locally
// and Forward returns the rendering error, nil on success. Without a fallback
// the write error is returned.
func (f *Forwarder) Forward(ctx context.Context, d *Data) error {
	start := time.Now()
	env := &Envelope{
		ID:      uuid.NewString(),
		Time:    start.UTC().Truncate(time.Millisecond),
		Context: f.context(),
		Data:    d,
	}

	payload, err := f.encode(env)
	if err != nil {
		emitForwardComplete(ctx, f.codec.ContentType(), f.conn.Target(), 0, time.Since(start), 0, err)
		return err
	}

	err = f.conn.Write(ctx, payload, f.codec.ContentType())
	if err == nil {
		emitForwardComplete(ctx, f.codec.ContentType(), f.conn.Target(), len(payload), time.Since(start), 0, nil)
		return nil
	}

	if f.fallback == nil {
		emitForwardComplete(ctx, f.codec.ContentType(), f.conn.Target(), len(payload), time.Since(start), 0, err)
		return err
	}
	emitForwardComplete(ctx, f.codec.ContentType(), f.conn.Target(), len(payload), time.Since(start), 1, err)
	return f.fallback.Render(f.out, d)
}

// Close closes the underlying connection.
func (f *Forwarder) Close() error {
	return f.conn.Close()
}

func (f *Forwarder) encode(env *Envelope) ([]byte, error) {
	payload, err := f.codec.Marshal(env)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	if f.encryptor == nil {
		return payload, nil
	}
	sealed, err := f.encryptor.Encrypt(payload)
	if err != nil {
		return nil, fmt.Errorf("seal envelope: %w", err)
	}
	return sealed, nil
}

func (f *Forwarder) context() map[string]any {
	if len(f.providers) == 0 {
		return nil
	}
	out := make(map[string]any)
	for _, p := range f.providers {
		maps.Copy(out, p.Context())
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SourceContext reports the first caller outside this package: file, line and
// function name.
type SourceContext struct{}

// Context implements ContextProvider.
func (SourceContext) Context() map[string]any {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, selfPkgPath+".") {
			return map[string]any{
				"file":     frame.File,
				"line":     frame.Line,
				"function": frame.Function,
			}
		}
		if !more {
			return nil
		}
	}
}

// ProcessContext reports the host name, process id and Go version.
type ProcessContext struct{}

// Context implements ContextProvider.
func (ProcessContext) Context() map[string]any {
	out := map[string]any{
		"pid":        os.Getpid(),
		"go_version": runtime.Version(),
	}
	if host, err := os.Hostname(); err == nil {
		out["host"] = host
	}
	return out
}
