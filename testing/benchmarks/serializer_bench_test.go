package benchmarks

import (
	"context"
	"io"
	"testing"

	"github.com/zoobzio/dumper"
	"github.com/zoobzio/dumper/json"
	"github.com/zoobzio/dumper/msgpack"
	dumpertest "github.com/zoobzio/dumper/testing"
)

type order struct {
	ID    int
	Lines []line
	Meta  map[string]string
}

type line struct {
	SKU   string
	Qty   int
	Price float64
}

func sampleOrder() *order {
	o := &order{ID: 7, Meta: map[string]string{"channel": "web", "region": "eu"}}
	for i := 0; i < 50; i++ {
		o.Lines = append(o.Lines, line{SKU: "sku", Qty: i, Price: float64(i) * 1.5})
	}
	return o
}

func BenchmarkCloneVar_Struct(b *testing.B) {
	cloner := dumper.NewCloner(nil).SetSuspendGC(false)
	v := sampleOrder()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cloner.CloneVar(context.Background(), v, 0)
	}
}

func BenchmarkCloneVar_SuspendGC(b *testing.B) {
	cloner := dumper.NewCloner(nil)
	v := sampleOrder()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cloner.CloneVar(context.Background(), v, 0)
	}
}

func BenchmarkCloneVar_Tagged(b *testing.B) {
	cloner := dumper.NewCloner(nil).SetSuspendGC(false)
	v := dumpertest.NewAccount()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cloner.CloneVar(context.Background(), v, 0)
	}
}

func BenchmarkCloneVar_Cycle(b *testing.B) {
	cloner := dumper.NewCloner(nil).SetSuspendGC(false)
	v := dumpertest.Cycle()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cloner.CloneVar(context.Background(), v, 0)
	}
}

func BenchmarkTextRenderer(b *testing.B) {
	data := dumper.NewCloner(nil).SetSuspendGC(false).CloneVar(context.Background(), sampleOrder(), 0)
	r := dumper.TextRenderer{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Render(io.Discard, data)
	}
}

func BenchmarkForward_JSON(b *testing.B) {
	benchmarkForward(b, json.New(), nil)
}

func BenchmarkForward_MessagePack(b *testing.B) {
	benchmarkForward(b, msgpack.New(), nil)
}

func BenchmarkForward_JSONSealed(b *testing.B) {
	benchmarkForward(b, json.New(), dumpertest.TestEncryptor(b))
}

func benchmarkForward(b *testing.B, codec dumper.Codec, enc dumper.Encryptor) {
	data := dumper.NewCloner(nil).SetSuspendGC(false).CloneVar(context.Background(), sampleOrder(), 0)
	fwd := dumper.NewForwarder(&discardConnection{}, codec)
	if enc != nil {
		fwd.WithEncryptor(enc)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = fwd.Forward(context.Background(), data)
	}
}

type discardConnection struct{}

func (discardConnection) Write(context.Context, []byte, string) error { return nil }
func (discardConnection) Target() string                              { return "discard" }
func (discardConnection) Close() error                                { return nil }
