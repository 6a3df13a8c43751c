package config_test

import (
	"testing"

	"github.com/saulo-duarte/quizclient/internal/config"
)

const testKey = "01234567890123456789012345678901"

func TestNewCipher(t *testing.T) {
	t.Run("ShortKey", func(t *testing.T) {
		if _, err := config.NewCipher([]byte("chave_curta")); err == nil {
			t.Error("NewCipher should reject a short key")
		}
	})

	t.Run("ValidKey", func(t *testing.T) {
		if _, err := config.NewCipher([]byte(testKey)); err != nil {
			t.Fatalf("NewCipher failed: %v", err)
		}
	})
}

func TestEncryptDecrypt(t *testing.T) {
	c, err := config.NewCipher([]byte(testKey))
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}

	t.Run("SimpleText", func(t *testing.T) {
		plaintext := "refresh-token-value"

		ciphertext, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}

		decrypted, err := c.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if decrypted != plaintext {
			t.Errorf("decrypted %q, want %q", decrypted, plaintext)
		}

		ciphertext2, _ := c.Encrypt(plaintext)
		if ciphertext == ciphertext2 {
			t.Error("two encryptions of the same text should differ (random nonce)")
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		ciphertext, err := c.Encrypt("")
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		decrypted, err := c.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if decrypted != "" {
			t.Errorf("decrypted empty text is %q", decrypted)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		if _, err := c.Decrypt("AAAA"); err == nil {
			t.Error("Decrypt should fail on truncated input")
		}
	})

	t.Run("WrongKey", func(t *testing.T) {
		ciphertext, _ := c.Encrypt("segredo")
		other, _ := config.NewCipher([]byte("abcdefghijabcdefghijabcdefghij12"))
		if _, err := other.Decrypt(ciphertext); err == nil {
			t.Error("Decrypt with another key should fail")
		}
	})
}
