package version

import (
	"testing"
)

func TestInfo(t *testing.T) {
	tests := []struct {
		name     string
		info     BuildInfo
		expected string
	}{
		{"development", BuildInfo{Version: "dev", BuildTime: "unknown", GitCommit: "unknown"}, "dev (development build)"},
		{"bad time", BuildInfo{Version: "v1.2.0", BuildTime: "yesterday", GitCommit: "unknown"}, "v1.2.0 (built yesterday)"},
		{"release", BuildInfo{Version: "v1.2.0", BuildTime: "2026-03-01T10:00:00Z", GitCommit: "unknown"}, "v1.2.0 (built 2026-03-01 10:00:00 UTC)"},
		{"with commit", BuildInfo{Version: "v1.2.0", BuildTime: "2026-03-01T10:00:00Z", GitCommit: "0123456789abcdef"}, "v1.2.0 (built 2026-03-01 10:00:00 UTC) commit 0123456"},
	}

	for _, tt := range tests {
		result := info(tt.info)
		if result != tt.expected {
			t.Errorf("%s: info() = %q; want %q", tt.name, result, tt.expected)
		}
	}
}

func TestGetBuildInfo(t *testing.T) {
	b := GetBuildInfo()
	if b.Version != Version {
		t.Errorf("Version = %q; want %q", b.Version, Version)
	}
	if b.GoVersion == "" || b.Platform == "" {
		t.Errorf("runtime details missing: %+v", b)
	}
}
