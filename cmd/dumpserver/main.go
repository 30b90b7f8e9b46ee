// Command dumpserver receives forwarded dumps and prints them.
//
// Dumps arrive over TCP (DUMPER_SERVER_ADDR) or, when DUMPER_REDIS_ADDR is
// set, from a Redis stream (DUMPER_REDIS_STREAM). Settings come from the
// DUMPER_* environment; flags override the most common ones.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/zoobzio/dumper"
	"github.com/zoobzio/dumper/bson"
	"github.com/zoobzio/dumper/json"
	"github.com/zoobzio/dumper/msgpack"
	"github.com/zoobzio/dumper/xml"
	"github.com/zoobzio/dumper/yaml"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Error("dumpserver stopped", "error", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, logger *slog.Logger) error {
	cfg, err := dumper.ConfigFromEnv()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("dumpserver", flag.ContinueOnError)
	fs.StringVar(&cfg.ServerAddr, "addr", cfg.ServerAddr, "TCP address to listen on")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "envelope codec: json, yaml, msgpack, bson or xml")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "read from a Redis stream at this address instead of TCP")
	asHTML := fs.Bool("html", false, "print HTML instead of text")
	maxDepth := fs.Int("depth", 0, "collapse containers deeper than this, 0 for no limit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	codec, err := codecFor(cfg.Format)
	if err != nil {
		return err
	}
	enc, err := cfg.Encryptor()
	if err != nil {
		return err
	}

	var renderer dumper.Renderer = dumper.TextRenderer{MaxDepth: *maxDepth}
	if *asHTML {
		renderer = dumper.HTMLRenderer{MaxDepth: *maxDepth}
	}

	server := dumper.NewServer(codec, dumper.RenderHandler(renderer, out))
	if enc != nil {
		server.WithEncryptor(enc)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RedisAddr != "" {
		return readStream(ctx, cfg, server, codec, logger)
	}

	if err := server.Listen(cfg.ServerAddr); err != nil {
		return err
	}
	logger.Info("listening for dumps", "addr", server.Addr().String(), "format", cfg.Format, "sealed", enc != nil)
	return server.Serve(ctx)
}

func readStream(ctx context.Context, cfg dumper.Config, server *dumper.Server, codec dumper.Codec, logger *slog.Logger) error {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: cfg.DialTimeout,
	})
	conn := dumper.NewRedisConnection(client, cfg.RedisStream, 0)
	defer conn.Close()

	logger.Info("reading dumps", "redis", cfg.RedisAddr, "stream", cfg.RedisStream, "format", cfg.Format)
	err := conn.Subscribe(ctx, "$", func(ctx context.Context, payload []byte, contentType string) error {
		if contentType != "" && contentType != codec.ContentType() {
			logger.Warn("skipping dump", "content_type", contentType, "want", codec.ContentType())
			return nil
		}
		if err := server.Receive(ctx, payload); err != nil {
			logger.Warn("bad dump", "error", err)
		}
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func codecFor(format string) (dumper.Codec, error) {
	switch format {
	case "json":
		return json.New(), nil
	case "yaml":
		return yaml.New(), nil
	case "msgpack":
		return msgpack.New(), nil
	case "bson":
		return bson.New(), nil
	case "xml":
		return xml.New(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
