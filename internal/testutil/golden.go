package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// Golden compares got with testdata/<name>.golden. With GOLDEN_UPDATE set
// the file is rewritten instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if os.Getenv("GOLDEN_UPDATE") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("update %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v\nGot:\n%s", path, err, got)
	}

	if line, w, g, ok := firstDiff(want, got); !ok {
		t.Errorf("%s: line %d differs\nwant: %q\ngot:  %q\n\nfull output:\n%s", path, line, w, g, got)
	}
}

// firstDiff returns the first line (1-based) where want and got disagree.
// Missing lines compare as empty.
func firstDiff(want, got []byte) (line int, w, g []byte, same bool) {
	if bytes.Equal(want, got) {
		return 0, nil, nil, true
	}
	wl := bytes.Split(want, []byte("\n"))
	gl := bytes.Split(got, []byte("\n"))
	n := max(len(wl), len(gl))
	for i := 0; i < n; i++ {
		var a, b []byte
		if i < len(wl) {
			a = wl[i]
		}
		if i < len(gl) {
			b = gl[i]
		}
		if !bytes.Equal(a, b) || (i >= len(wl)) != (i >= len(gl)) {
			return i + 1, a, b, false
		}
	}
	return n, nil, nil, false
}
