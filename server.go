package dumper

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// maxLineSize bounds one encoded envelope read by the server.
const maxLineSize = 64 << 20

// EnvelopeHandler receives decoded envelopes.
type EnvelopeHandler func(ctx context.Context, env *Envelope) error

// Server accepts forwarded dumps over TCP and decodes them into envelopes.
// Payloads that fail to decode are reported through SignalServerReceived and
// skipped.
type Server struct {
	codec     Codec
	encryptor Encryptor
	handler   EnvelopeHandler
	maxLine   int

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a server decoding with codec and passing envelopes to handler.
// Envelopes are handled one at a time.
func NewServer(codec Codec, handler EnvelopeHandler) *Server {
	return &Server{
		codec:   codec,
		handler: serialize(handler),
		maxLine: maxLineSize,
		conns:   make(map[net.Conn]struct{}),
	}
}

// WithEncryptor opens sealed payloads with enc.
func (s *Server) WithEncryptor(enc Encryptor) *Server {
	s.encryptor = enc
	return s
}

// Listen binds addr. Use Addr to learn the port when addr ends in ":0".
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return newConnectionError(addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is done or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return newConnectionError(ln.Addr().String(), err)
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			_ = s.handle(ctx, conn)
		}()
	}
}

// Close stops the listener and open connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
	return err
}

// handle reads envelopes from conn until it closes. A read failure, such as
// a line longer than the limit, is reported and ends the connection.
func (s *Server) handle(ctx context.Context, conn net.Conn) error {
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(64*1024, s.maxLine)), s.maxLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		payload := make([]byte, base64.StdEncoding.DecodedLen(len(line)))
		n, err := base64.StdEncoding.Decode(payload, line)
		if err != nil {
			emitServerReceived(ctx, s.codec.ContentType(), len(line), newCodecError(ErrUnmarshal, err))
			continue
		}
		_ = s.Receive(ctx, payload[:n])
	}

	if err := scanner.Err(); err != nil {
		cerr := newCodecError(ErrUnmarshal, err)
		emitServerReceived(ctx, s.codec.ContentType(), 0, cerr)
		return cerr
	}
	return nil
}

// Receive decodes one payload and hands it to the handler.
func (s *Server) Receive(ctx context.Context, payload []byte) error {
	env, err := s.Decode(payload)
	emitServerReceived(ctx, s.codec.ContentType(), len(payload), err)
	if err != nil {
		return err
	}
	return s.handler(ctx, env)
}

// Decode opens and unmarshals one payload.
func (s *Server) Decode(payload []byte) (*Envelope, error) {
	if s.encryptor != nil {
		opened, err := s.encryptor.Decrypt(payload)
		if err != nil {
			return nil, fmt.Errorf("open envelope: %w", err)
		}
		payload = opened
	}

	var env Envelope
	if err := s.codec.Unmarshal(payload, &env); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return &env, nil
}

func serialize(handler EnvelopeHandler) EnvelopeHandler {
	var mu sync.Mutex
	return func(ctx context.Context, env *Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		return handler(ctx, env)
	}
}

// RenderHandler prints each envelope's header and its dump to w.
func RenderHandler(r Renderer, w io.Writer) EnvelopeHandler {
	return func(_ context.Context, env *Envelope) error {
		header := env.Time.Local().Format(time.RFC3339)
		if file, ok := env.Context["file"].(string); ok {
			header += " " + file
			if line := lineNumber(env.Context["line"]); line > 0 {
				header += fmt.Sprintf(":%d", line)
			}
		}
		if _, err := fmt.Fprintf(w, "── %s [%s]\n", header, env.ID); err != nil {
			return err
		}
		return r.Render(w, env.Data)
	}
}

// lineNumber reads a line number decoded by any codec.
func lineNumber(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
