package internal

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.App.Mode != ModeStdio {
		t.Errorf("default mode = %q, want stdio", cfg.App.Mode)
	}
}

func TestValidate_RejectsUnknownMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.Mode = "grpc"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestValidate_HTTPPortCheckedOnlyInHTTPMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 0

	cfg.App.Mode = ModeStdio
	if err := cfg.Validate(); err != nil {
		t.Errorf("stdio mode should not require a port: %v", err)
	}

	cfg.App.Mode = ModeHTTP
	if err := cfg.Validate(); err == nil {
		t.Error("http mode requires a valid port")
	}
}

func TestValidate_RequiresDataDir(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Data.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty data dir")
	}
}

func TestValidate_TokenAuthRequiresToken(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = AuthModeToken
	if err := cfg.Validate(); err == nil {
		t.Error("token mode without token should fail")
	}

	cfg.Auth.Token = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("token mode with token should pass: %v", err)
	}
	if !cfg.Auth.AuthEnabled() {
		t.Error("AuthEnabled() should be true in token mode")
	}
}

func TestValidate_NormalizesEmptyModes(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.Mode = ""
	cfg.Auth.Mode = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.App.Mode != ModeStdio {
		t.Errorf("mode = %q, want normalized to stdio", cfg.App.Mode)
	}
	if cfg.Auth.Mode != AuthModeDisabled {
		t.Errorf("auth mode = %q, want normalized to disabled", cfg.Auth.Mode)
	}
}
