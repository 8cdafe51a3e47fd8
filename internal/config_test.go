package internal

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if got := cfg.Cache.TTL; got != 14*24*time.Hour {
		t.Errorf("cache ttl = %v, want 14 days", got)
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Port: 8008}
	if got := cfg.Address(); got != ":8008" {
		t.Errorf("address = %q, want :8008", got)
	}
}

func TestHTTPConfig_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
}

func TestKhanConfig_RequiresBaseURL(t *testing.T) {
	cfg := KhanConfig{Timeout: time.Minute}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty base url should fail validation")
	}
}

func TestKhanConfig_RejectsTinyTimeout(t *testing.T) {
	cfg := KhanConfig{BaseURL: "http://www.khanacademy.org", Timeout: time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Fatal("sub-second timeout should fail validation")
	}
}

func TestFullConfig_SectionValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Data.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch data section error")
	}
}
