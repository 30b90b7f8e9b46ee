package dumper

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config carries the settings shared by cloners, forwarders and the dump server.
// Every field can be set from the environment.
type Config struct {
	// MaxItems bounds items cloned past MinDepth. ENV: DUMPER_MAX_ITEMS
	MaxItems int `env:"DUMPER_MAX_ITEMS,default=2500"`
	// MaxString bounds runes kept per string, -1 for no limit. ENV: DUMPER_MAX_STRING
	MaxString int `env:"DUMPER_MAX_STRING,default=-1"`
	// MinDepth is cloned in full. ENV: DUMPER_MIN_DEPTH
	MinDepth int `env:"DUMPER_MIN_DEPTH,default=1"`
	// SuspendGC pauses the collector during clones. ENV: DUMPER_SUSPEND_GC
	SuspendGC bool `env:"DUMPER_SUSPEND_GC,default=true"`

	// ServerAddr is where the dump server listens and forwarders dial. ENV: DUMPER_SERVER_ADDR
	ServerAddr string `env:"DUMPER_SERVER_ADDR,default=127.0.0.1:9912"`
	// DialTimeout bounds connection attempts. ENV: DUMPER_DIAL_TIMEOUT
	DialTimeout time.Duration `env:"DUMPER_DIAL_TIMEOUT,default=1s"`
	// RedisAddr switches forwarding to a Redis stream when set. ENV: DUMPER_REDIS_ADDR
	RedisAddr string `env:"DUMPER_REDIS_ADDR"`
	// RedisStream names the stream dumps are appended to. ENV: DUMPER_REDIS_STREAM
	RedisStream string `env:"DUMPER_REDIS_STREAM,default=dumper:dumps"`
	// Format selects the envelope codec: json, yaml, msgpack, bson or xml. ENV: DUMPER_FORMAT
	Format string `env:"DUMPER_FORMAT,default=json"`

	// Key is a hex AES key sealing payloads. ENV: DUMPER_KEY
	Key string `env:"DUMPER_KEY"`
	// Passphrase derives an XChaCha20 key when Key is empty. ENV: DUMPER_PASSPHRASE
	Passphrase string `env:"DUMPER_PASSPHRASE"`
	// Salt for passphrase derivation. ENV: DUMPER_SALT
	Salt string `env:"DUMPER_SALT,default=dumper-forwarding"`
}

// DefaultConfig returns the settings used when the environment is silent.
func DefaultConfig() Config {
	return Config{
		MaxItems:    DefaultMaxItems,
		MaxString:   DefaultMaxString,
		MinDepth:    DefaultMinDepth,
		SuspendGC:   true,
		ServerAddr:  "127.0.0.1:9912",
		DialTimeout: time.Second,
		RedisStream: "dumper:dumps",
		Format:      "json",
		Salt:        "dumper-forwarding",
	}
}

// ConfigFromEnv decodes DUMPER_* variables over the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the limits and the format name.
func (c Config) Validate() error {
	if c.MinDepth < 0 {
		return fmt.Errorf("DUMPER_MIN_DEPTH must not be negative, got %d", c.MinDepth)
	}
	if c.MaxString < -1 {
		return fmt.Errorf("DUMPER_MAX_STRING must be -1 or more, got %d", c.MaxString)
	}
	switch c.Format {
	case "json", "yaml", "msgpack", "bson", "xml":
	default:
		return fmt.Errorf("DUMPER_FORMAT %q is not a known codec", c.Format)
	}
	return nil
}

// Apply copies the clone limits onto cloner.
func (c Config) Apply(cloner *Cloner) *Cloner {
	return cloner.
		SetMaxItems(c.MaxItems).
		SetMaxString(c.MaxString).
		SetMinDepth(c.MinDepth).
		SetSuspendGC(c.SuspendGC)
}

// Encryptor builds the payload sealer, nil when neither Key nor Passphrase is set.
func (c Config) Encryptor() (Encryptor, error) {
	switch {
	case c.Key != "":
		key, err := hex.DecodeString(c.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: DUMPER_KEY is not hex: %w", ErrInvalidKey, err)
		}
		return AES(key)
	case c.Passphrase != "":
		key, err := DeriveKey(c.Passphrase, c.Salt)
		if err != nil {
			return nil, err
		}
		return ChaCha20(key)
	default:
		return nil, nil
	}
}
