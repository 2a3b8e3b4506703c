package version

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.GoVersion == "" || info.Platform == "" {
		t.Errorf("incomplete version info: %+v", info)
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("platform = %q, want os/arch", info.Platform)
	}
}

func TestString(t *testing.T) {
	s := Info{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-02"}.String()
	want := "1.2.3 (abc1234) built 2026-01-02"
	if s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}
