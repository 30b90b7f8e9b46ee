package dumper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

var sharedCloner = sync.OnceValue(func() *Cloner {
	return NewCloner(nil)
})

// DumpError carries dumped variables out of Dd as a panic value.
type DumpError struct {
	Vars    []any
	message string
}

// NewDumpError captures vars. The message is the JSON form of their clones.
func NewDumpError(vars ...any) *DumpError {
	cloner := sharedCloner()
	trees := make([]*Data, len(vars))
	for i, v := range vars {
		trees[i] = cloner.CloneVar(context.Background(), v, 0)
	}
	msg, err := json.Marshal(trees)
	if err != nil {
		msg = []byte(err.Error())
	}
	return &DumpError{Vars: vars, message: string(msg)}
}

func (e *DumpError) Error() string {
	return e.message
}

// Render returns the HTML dump of each variable, three levels deep with
// strings cut at 160 runes.
func (e *DumpError) Render() string {
	cloner := sharedCloner()
	r := HTMLRenderer{MaxDepth: 3, MaxString: 160}

	var b strings.Builder
	for _, v := range e.Vars {
		_ = r.Render(&b, cloner.CloneVar(context.Background(), v, 0))
	}
	return b.String()
}

// Dump text-renders each variable to w.
func Dump(w io.Writer, vars ...any) error {
	cloner := sharedCloner()
	for _, v := range vars {
		if err := (TextRenderer{}).Render(w, cloner.CloneVar(context.Background(), v, 0)); err != nil {
			return err
		}
	}
	return nil
}

// Dd dumps vars to stderr and panics with a *DumpError holding them.
func Dd(vars ...any) {
	_ = Dump(os.Stderr, vars...)
	panic(NewDumpError(vars...))
}

// Recover turns a *DumpError panic raised by next into an HTML page with
// status 500. Other panics propagate.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			var de *DumpError
			err, ok := rec.(error)
			if !ok || !errors.As(err, &de) {
				panic(rec)
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, de.Render())
		}()
		next.ServeHTTP(w, r)
	})
}
