package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeYTDLP writes an executable shell script that mimics yt-dlp: it prints a
// title on stdout and writes size bytes to the -o path, or fails with stderr.
func fakeYTDLP(t *testing.T, title string, size int, failWith string) string {
	t.Helper()
	var script string
	if failWith != "" {
		script = "#!/bin/sh\necho \"" + failWith + "\" >&2\nexit 1\n"
	} else {
		script = `#!/bin/sh
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
printf '` + title + `\n'
head -c ` + itoa(size) + ` /dev/zero > "$out"
`
	}
	path := filepath.Join(t.TempDir(), "yt-dlp-fake")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

func TestFetch(t *testing.T) {
	dir := t.TempDir()
	d := &YTDLP{TempDir: dir, Binary: fakeYTDLP(t, "A Short Clip", 2048, "")}

	asset, err := d.Fetch(context.Background(), "https://vm.tiktok.com/abc/")
	if err != nil {
		t.Fatal(err)
	}
	if asset.Title != "A Short Clip" {
		t.Errorf("Title = %q", asset.Title)
	}
	if asset.Size != 2048 {
		t.Errorf("Size = %d, want 2048", asset.Size)
	}
	if !strings.HasPrefix(filepath.Base(asset.Path), "reelpost_") || filepath.Ext(asset.Path) != ".mp4" {
		t.Errorf("unexpected asset path %q", asset.Path)
	}
	if st, err := os.Stat(asset.Path); err != nil || st.Size() != 2048 {
		t.Errorf("asset file missing or wrong size: %v", err)
	}
}

func TestFetchUniquePathsPerCall(t *testing.T) {
	dir := t.TempDir()
	d := &YTDLP{TempDir: dir, Binary: fakeYTDLP(t, "t", 16, "")}
	a1, err := d.Fetch(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := d.Fetch(context.Background(), "u2")
	if err != nil {
		t.Fatal(err)
	}
	if a1.Path == a2.Path {
		t.Errorf("two fetches shared a path: %q", a1.Path)
	}
}

func TestFetchFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	d := &YTDLP{TempDir: dir, Binary: fakeYTDLP(t, "", 0, "ERROR: Video unavailable")}

	_, err := d.Fetch(context.Background(), "https://vm.tiktok.com/gone/")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Video unavailable") {
		t.Errorf("error lost tool stderr: %v", err)
	}
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir not empty after failed fetch: %v", entries)
	}
}

func TestBuildArgs(t *testing.T) {
	args := buildArgs("/tmp/out.mp4", "https://youtu.be/x")
	joined := strings.Join(args, " ")
	for _, want := range []string{"--no-playlist", "--no-simulate", "-o /tmp/out.mp4", "-f " + mediumQuality} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}
	if args[len(args)-1] != "https://youtu.be/x" {
		t.Errorf("url must be the final arg, got %q", args[len(args)-1])
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorClass
	}{
		{"ERROR: This video is private", ClassContent},
		{"ERROR: Video unavailable. The uploader has not made this video available", ClassContent},
		{"HTTP Error 404: Not Found", ClassContent},
		{"ERROR: Sign in to confirm you're not a bot", ClassContent},
		{"ERROR: Unsupported URL: https://example.com", ClassContent},
		{"unable to extract video data", ClassContent},
		{"HTTP Error 429: Too Many Requests", ClassTransient},
		{"HTTP Error 503: Service Unavailable", ClassTransient},
		{"read tcp: connection reset by peer", ClassTransient},
		{"dial tcp: i/o timeout", ClassTransient},
		{"something entirely novel", ClassUnknown},
	}
	for _, tc := range cases {
		if got := Classify(errors.New(tc.msg)); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
	if got := Classify(nil); got != ClassUnknown {
		t.Errorf("Classify(nil) = %v", got)
	}
}

func TestLastLine(t *testing.T) {
	if got := lastLine("a\nb\nc\n"); got != "c" {
		t.Errorf("lastLine = %q, want c", got)
	}
	if got := lastLine("single"); got != "single" {
		t.Errorf("lastLine = %q, want single", got)
	}
}
