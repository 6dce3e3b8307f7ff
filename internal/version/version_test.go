package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = old })

	s := String()
	if !strings.HasPrefix(s, "1.2.3 (commit ") {
		t.Errorf("unexpected prefix: %q", s)
	}
	if !strings.Contains(s, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("missing platform: %q", s)
	}
	if UserAgent() != "solrmap/1.2.3" {
		t.Errorf("unexpected user agent %q", UserAgent())
	}
}
