package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8000")
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.JWTIssuer != "orgs-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "orgs-auth")
	}
	if cfg.JWTAudience != "orgs-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "orgs-api")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.PolicyEngine != PolicyEngineNative {
		t.Errorf("PolicyEngine = %q, want native", cfg.PolicyEngine)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("log = %q/%q, want info/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ServiceName != "orgs-api" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.OTLPEndpoint != "" || cfg.OTLPInsecure {
		t.Errorf("OTLP should be off by default: %q %v", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	}
	if cfg.AuthConfigured() {
		t.Error("AuthConfigured should be false without keys")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9000")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("POLICY_ENGINE", "OPA")
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	os.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	os.Setenv("JWT_PRIVATE_KEY", "priv")
	os.Setenv("JWT_PUBLIC_KEY", "pub")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q", cfg.JWTIssuer)
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if cfg.PolicyEngine != PolicyEngineOPA {
		t.Errorf("PolicyEngine = %q, want opa", cfg.PolicyEngine)
	}
	if cfg.OTLPEndpoint != "localhost:4317" || !cfg.OTLPInsecure {
		t.Errorf("OTLP = %q %v", cfg.OTLPEndpoint, cfg.OTLPInsecure)
	}
	if !cfg.AuthConfigured() {
		t.Error("AuthConfigured should be true with both keys")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bcrypt too low", "BCRYPT_COST", "3"},
		{"bcrypt too high", "BCRYPT_COST", "32"},
		{"unknown policy engine", "POLICY_ENGINE", "casbin"},
		{"unknown log format", "LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tt.key, tt.value)
			defer os.Clearenv()
			if _, err := Load(); err == nil {
				t.Errorf("Load with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestTTLs(t *testing.T) {
	c := &Config{JWTAccessTTL: "5m", JWTRefreshTTL: "24h"}
	if c.AccessTTL() != 5*time.Minute || c.RefreshTTL() != 24*time.Hour {
		t.Errorf("TTLs = %v / %v", c.AccessTTL(), c.RefreshTTL())
	}
	c = &Config{JWTAccessTTL: "soon", JWTRefreshTTL: "-1h"}
	if c.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL fallback = %v", c.AccessTTL())
	}
	if c.RefreshTTL() != 168*time.Hour {
		t.Errorf("RefreshTTL fallback = %v", c.RefreshTTL())
	}
}
