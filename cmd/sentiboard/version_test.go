package main

import (
	"bytes"
	"runtime/debug"
	"testing"
)

// TestResolveVersion_PreferLdflags verifies that ldflags version takes precedence
func TestResolveVersion_PreferLdflags(t *testing.T) {
	result := resolveVersion("v1.2.3", &debug.BuildInfo{
		Main: debug.Module{Version: "v0.0.0"},
	})

	if result != "v1.2.3" {
		t.Errorf("should prefer ldflags version, got: %s", result)
	}
}

// TestResolveVersion_FallbackToBuildInfo verifies that build info is used when ldflags is "dev".
// This happens with: go install github.com/gauthierbraillon/sentiboard/cmd/sentiboard@v1.2.3
func TestResolveVersion_FallbackToBuildInfo(t *testing.T) {
	result := resolveVersion("dev", &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
	})

	if result != "v1.2.3" {
		t.Errorf("should use build info version when ldflags is 'dev', got: %s", result)
	}
}

// TestResolveVersion_IgnoreDevel verifies that "(devel)" is treated as "dev"
func TestResolveVersion_IgnoreDevel(t *testing.T) {
	result := resolveVersion("dev", &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
	})

	if result != "dev" {
		t.Errorf("should return 'dev' when build info is '(devel)', got: %s", result)
	}
}

// TestResolveVersion_NilBuildInfo handles nil build info gracefully
func TestResolveVersion_NilBuildInfo(t *testing.T) {
	if result := resolveVersion("dev", nil); result != "dev" {
		t.Errorf("should return 'dev' when build info is nil, got: %s", result)
	}
}

// TestRootCommand_UsesLdflagsVersion verifies the root command reports the
// version injected at link time, in the sentiboard version template.
func TestRootCommand_UsesLdflagsVersion(t *testing.T) {
	saved := version
	version = "v9.9.9"
	t.Cleanup(func() { version = saved })

	cmd := newRootCmd()
	if cmd.Version != "v9.9.9" {
		t.Fatalf("root command should carry the ldflags version, got: %s", cmd.Version)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("--version should succeed: %v", err)
	}
	if out.String() != "sentiboard version v9.9.9\n" {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

// TestRootCommand_DevVersionResolvesFromBuildInfo verifies a dev build reports
// whatever the running binary's build info resolves to.
func TestRootCommand_DevVersionResolvesFromBuildInfo(t *testing.T) {
	saved := version
	version = "dev"
	t.Cleanup(func() { version = saved })

	bi, _ := debug.ReadBuildInfo()
	if got, want := newRootCmd().Version, resolveVersion("dev", bi); got != want {
		t.Errorf("root command version = %q, want %q", got, want)
	}
}
