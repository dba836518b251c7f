package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.NATSSubject != "applications.received" {
		t.Fatalf("NATSSubject = %q", cfg.NATSSubject)
	}
	if cfg.OllamaGenModel != "phi3" {
		t.Fatalf("OllamaGenModel = %q", cfg.OllamaGenModel)
	}
	if cfg.ModelManifestPath != "./models/eligibility.yaml" {
		t.Fatalf("ModelManifestPath = %q", cfg.ModelManifestPath)
	}
	if cfg.APIRateLimitRPS != 20 || cfg.APIRateLimitBurst != 40 || cfg.APIMaxConcurrent != 64 {
		t.Fatalf("traffic limits = %v / %v / %v", cfg.APIRateLimitRPS, cfg.APIRateLimitBurst, cfg.APIMaxConcurrent)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("OLLAMA_GEN_MODEL", "llama3")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_MAX_CONCURRENT", "8")

	cfg := Load()

	if cfg.APIPort != "9999" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.OllamaGenModel != "llama3" {
		t.Fatalf("OllamaGenModel = %q", cfg.OllamaGenModel)
	}
	if cfg.APIRateLimitRPS != 2.5 || cfg.APIMaxConcurrent != 8 {
		t.Fatalf("limits = %v / %v", cfg.APIRateLimitRPS, cfg.APIMaxConcurrent)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_BURST", "not-a-number")

	if cfg := Load(); cfg.APIRateLimitBurst != 40 {
		t.Fatalf("APIRateLimitBurst = %d, want fallback 40", cfg.APIRateLimitBurst)
	}
}
