package session

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestCookieCodec_RoundTrip(t *testing.T) {
	codec, err := NewCookieCodec("secret", time.Hour, false)
	if err != nil {
		t.Fatalf("failed to build codec: %v", err)
	}

	value, err := codec.Encode("session-1")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	sid, err := codec.Decode(value)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if sid != "session-1" {
		t.Fatalf("expected session-1, got %q", sid)
	}
}

func TestCookieCodec_RejectsForeignSecret(t *testing.T) {
	a, _ := NewCookieCodec("secret-a", time.Hour, false)
	b, _ := NewCookieCodec("secret-b", time.Hour, false)

	value, _ := a.Encode("session-1")
	if _, err := b.Decode(value); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("expected ErrInvalidCookie, got %v", err)
	}
}

func TestCookieCodec_RejectsExpired(t *testing.T) {
	codec, _ := NewCookieCodec("secret", time.Minute, false)
	issued := time.Now().Add(-time.Hour)
	codec.now = func() time.Time { return issued }

	value, _ := codec.Encode("session-1")

	codec.now = time.Now
	if _, err := codec.Decode(value); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("expected expired cookie to be rejected, got %v", err)
	}
}

func TestCookieCodec_RejectsGarbage(t *testing.T) {
	codec, _ := NewCookieCodec("secret", time.Hour, false)

	for _, v := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Decode(v); err == nil {
			t.Errorf("expected error for %q", v)
		}
	}
}

func TestCookieCodec_CookieAttributes(t *testing.T) {
	codec, _ := NewCookieCodec("secret", 2*time.Hour, true)

	c, err := codec.Cookie("session-1")
	if err != nil {
		t.Fatalf("cookie failed: %v", err)
	}
	if c.Name != CookieName || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes: %+v", c)
	}
	if c.MaxAge != 7200 {
		t.Fatalf("expected MaxAge 7200, got %d", c.MaxAge)
	}
}

func TestNewCookieCodec_EmptySecret(t *testing.T) {
	if _, err := NewCookieCodec("", time.Hour, false); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
