package otel_test

import (
	"context"
	"testing"

	adapter "github.com/neomorfeo/keyledger/internal/adapter/otel"
)

func TestSetup_NoneExporter(t *testing.T) {
	providers, err := adapter.Setup(context.Background(), adapter.NewConfig("0.0.1", "test", adapter.ExporterNone))
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := providers.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestSetup_StdoutExporter(t *testing.T) {
	providers, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName:    "test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		Exporter:       adapter.ExporterStdout,
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	if err := providers.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestSetup_InvalidExporter(t *testing.T) {
	_, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName:    "test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		Exporter:       "invalid",
	})
	if err == nil {
		t.Fatal("expected error for invalid exporter")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := adapter.NewConfig("1.2.3", "", "")

	if cfg.ServiceName != "keyledger" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "keyledger")
	}
	if cfg.ServiceVersion != "1.2.3" {
		t.Errorf("ServiceVersion = %q, want %q", cfg.ServiceVersion, "1.2.3")
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if cfg.Exporter != adapter.ExporterNone {
		t.Errorf("Exporter = %q, want %q", cfg.Exporter, adapter.ExporterNone)
	}
	if !cfg.Insecure {
		t.Error("Insecure should be true outside production")
	}
}

func TestNewConfig_Production(t *testing.T) {
	cfg := adapter.NewConfig("1.0.0", "production", adapter.ExporterOTLP)

	if cfg.Exporter != adapter.ExporterOTLP {
		t.Errorf("Exporter = %q, want %q", cfg.Exporter, adapter.ExporterOTLP)
	}
	if cfg.Insecure {
		t.Error("Insecure should be false in production")
	}
}
