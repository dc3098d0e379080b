package lightnet

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	if !strings.Contains(v, Version) || !strings.Contains(v, GoVersion) {
		t.Errorf("unexpected version string: %s", v)
	}
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	for _, key := range []string{"version", "commit", "build_date", "go_version"} {
		if info[key] == "" {
			t.Errorf("expected %q to be populated", key)
		}
	}
}
