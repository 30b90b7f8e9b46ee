// Package testing provides fixtures for testing code built on dumper.
package testing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/zoobzio/dumper"
)

// TestKey returns a valid 32-byte AES key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an AES encryptor configured for testing.
func TestEncryptor(tb testing.TB) dumper.Encryptor {
	tb.Helper()
	enc, err := dumper.AES(TestKey(tb))
	if err != nil {
		tb.Fatalf("AES() error: %v", err)
	}
	return enc
}

// Account is a struct exercising every dump tag.
type Account struct {
	ID       string
	Email    string `dump.mask:"email"`
	Password string `dump.redact:"***"`
	Token    string `dump.hash:"sha256"`
	Cache    []byte `dump:"-"`
	note     string
}

// NewAccount returns a populated Account.
func NewAccount() *Account {
	return &Account{
		ID:       "42",
		Email:    "alice@example.com",
		Password: "hunter2",
		Token:    "tok_live_123",
		Cache:    []byte("cached"),
		note:     "vip",
	}
}

// Link is a singly linked node used to build cycles.
type Link struct {
	Name string
	Next *Link
}

// Cycle returns a -> b -> a.
func Cycle() *Link {
	a := &Link{Name: "a"}
	b := &Link{Name: "b", Next: a}
	a.Next = b
	return a
}

// Exploding panics from DebugInfo.
type Exploding struct {
	Name string
}

// DebugInfo implements dumper.DebugInfoer by panicking.
func (Exploding) DebugInfo() map[string]any {
	panic("debug info exploded")
}

// Recorder records caster invocations.
type Recorder struct {
	calls atomic.Int64
}

// Caster returns a caster that stores label under key "k" and counts calls.
func (p *Recorder) Caster(label string) dumper.Caster {
	return func(_ any, rep *dumper.Representation, _ *dumper.Stub, _ bool, _ dumper.Filter) (*dumper.Representation, error) {
		p.calls.Add(1)
		return rep.Set("k", label), nil
	}
}

// Calls returns the number of caster invocations so far.
func (p *Recorder) Calls() int64 {
	return p.calls.Load()
}

// ErrFailingCaster is returned by FailingCaster.
var ErrFailingCaster = errors.New("failing caster")

// FailingCaster always returns ErrFailingCaster.
func FailingCaster(_ any, _ *dumper.Representation, _ *dumper.Stub, _ bool, _ dumper.Filter) (*dumper.Representation, error) {
	return nil, ErrFailingCaster
}

// PanickingCaster always panics.
func PanickingCaster(_ any, _ *dumper.Representation, _ *dumper.Stub, _ bool, _ dumper.Filter) (*dumper.Representation, error) {
	panic("caster exploded")
}

// MemoryConnection records payloads instead of sending them.
type MemoryConnection struct {
	mu       sync.Mutex
	payloads [][]byte
	types    []string
	closed   bool
}

// Write records payload.
func (c *MemoryConnection) Write(_ context.Context, payload []byte, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, append([]byte(nil), payload...))
	c.types = append(c.types, contentType)
	return nil
}

// Target returns "memory".
func (c *MemoryConnection) Target() string { return "memory" }

// Close marks the connection closed.
func (c *MemoryConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Payloads returns copies of the recorded payloads.
func (c *MemoryConnection) Payloads() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.payloads))
	copy(out, c.payloads)
	return out
}

// ContentTypes returns the content types passed with each payload.
func (c *MemoryConnection) ContentTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.types...)
}

// Closed reports whether Close was called.
func (c *MemoryConnection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Collector gathers envelopes delivered to its Handle method.
type Collector struct {
	ch chan *dumper.Envelope
}

// NewCollector returns a collector buffering up to size envelopes.
func NewCollector(size int) *Collector {
	return &Collector{ch: make(chan *dumper.Envelope, size)}
}

// Handle implements dumper.EnvelopeHandler.
func (c *Collector) Handle(_ context.Context, env *dumper.Envelope) error {
	c.ch <- env
	return nil
}

// Envelopes returns the delivery channel.
func (c *Collector) Envelopes() <-chan *dumper.Envelope {
	return c.ch
}
