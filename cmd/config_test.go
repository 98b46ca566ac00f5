package cmd

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	config, err := LoadConfig(filepath.Join(dir, "main.lune"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.ASTOut != "a.txt" || config.IROut != "a.ll" {
		t.Errorf("defaults = (%q, %q), want (a.txt, a.ll)", config.ASTOut, config.IROut)
	}
	if config.logLevel() != LogLevelVerbose {
		t.Errorf("default log level should be verbose")
	}
}

func TestLoadConfigManifest(t *testing.T) {
	dir := t.TempDir()

	manifest := []byte("name = \"demo\"\nir-out = \"demo.ll\"\nloglevel = \"silent\"\n")
	if err := ioutil.WriteFile(filepath.Join(dir, configFileName), manifest, 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(filepath.Join(dir, "main.lune"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Name != "demo" || config.IROut != "demo.ll" || config.ASTOut != "a.txt" {
		t.Errorf("manifest values not applied: %+v", config)
	}
	if config.logLevel() != LogLevelSilent {
		t.Errorf("log level = %d, want silent", config.logLevel())
	}
}

func TestLoadConfigMalformedManifest(t *testing.T) {
	dir := t.TempDir()

	if err := ioutil.WriteFile(filepath.Join(dir, configFileName), []byte("name = ["), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(filepath.Join(dir, "main.lune")); err == nil {
		t.Error("malformed manifest should be an error")
	}
}
