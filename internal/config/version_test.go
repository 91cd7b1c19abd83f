package config

import "testing"

func TestGetVersion(t *testing.T) {
	if v := GetVersion(); v != "dev" {
		t.Errorf("expected default version dev, got %s", v)
	}
}

func TestGetFullVersion(t *testing.T) {
	expected := "dev (build: unknown, commit: unknown)"
	if fv := GetFullVersion(); fv != expected {
		t.Errorf("expected full version %q, got %q", expected, fv)
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); ua != "tradedesk/dev" {
		t.Errorf("expected tradedesk/dev, got %s", ua)
	}
}
