package dumper

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptors_RoundTrip(t *testing.T) {
	key := []byte("32-byte-key-for-aes-256-encrypt!")

	aes, err := AES(key)
	if err != nil {
		t.Fatalf("AES() error: %v", err)
	}
	chacha, err := ChaCha20(key)
	if err != nil {
		t.Fatalf("ChaCha20() error: %v", err)
	}

	tests := []struct {
		name string
		enc  Encryptor
	}{
		{"aes-gcm", aes},
		{"xchacha20", chacha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext := []byte(`{"root":{"kind":"string","value":"hello"}}`)
			sealed, err := tt.enc.Encrypt(plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			if bytes.Contains(sealed, plaintext) {
				t.Error("ciphertext should not contain plaintext")
			}

			opened, err := tt.enc.Decrypt(sealed)
			if err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if !bytes.Equal(opened, plaintext) {
				t.Errorf("round-trip failed: got %q, want %q", opened, plaintext)
			}
		})
	}
}

func TestEncryptors_InvalidKey(t *testing.T) {
	if _, err := AES([]byte("short")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("AES() error = %v, want ErrInvalidKey", err)
	}
	if _, err := ChaCha20(make([]byte, 16)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("ChaCha20() error = %v, want ErrInvalidKey", err)
	}
}

func TestAES_DifferentNonce(t *testing.T) {
	enc, _ := AES([]byte("32-byte-key-for-aes-256-encrypt!"))

	c1, _ := enc.Encrypt([]byte("hello"))
	c2, _ := enc.Encrypt([]byte("hello"))
	if bytes.Equal(c1, c2) {
		t.Error("same plaintext should produce different ciphertext")
	}
}

func TestAES_Tampered(t *testing.T) {
	enc, _ := AES([]byte("0123456789abcdef"))

	sealed, _ := enc.Encrypt([]byte("payload"))
	sealed[len(sealed)-1] ^= 0xff

	if _, err := enc.Decrypt(sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt() error = %v, want ErrDecryptionFailed", err)
	}
	if _, err := enc.Decrypt([]byte("tiny")); !errors.Is(err, ErrCiphertextShort) {
		t.Errorf("Decrypt() error = %v, want ErrCiphertextShort", err)
	}
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey("correct horse", "dumper-salt")
	if err != nil {
		t.Fatalf("DeriveKey() error: %v", err)
	}
	if len(k1) != 32 {
		t.Fatalf("key length = %d, want 32", len(k1))
	}

	k2, _ := DeriveKey("correct horse", "dumper-salt")
	if !bytes.Equal(k1, k2) {
		t.Error("same passphrase and salt should derive the same key")
	}

	k3, _ := DeriveKey("battery staple", "dumper-salt")
	if bytes.Equal(k1, k3) {
		t.Error("different passphrases should derive different keys")
	}

	if _, err := DeriveKey("", "dumper-salt"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("empty passphrase error = %v, want ErrInvalidKey", err)
	}
	if _, err := DeriveKey("pass", "short"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("short salt error = %v, want ErrInvalidKey", err)
	}
}
