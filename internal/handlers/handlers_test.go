package handlers_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/VikingOwl91/mcp-simple-demo/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Constant(t *testing.T) {
	first := handlers.HealthCheck()
	assert.Equal(t, "healthy", first.Status)
	assert.Equal(t, handlers.ServerName, first.Server)
	assert.Equal(t, "1.0", first.Version)
	assert.Equal(t, "running", first.Uptime)

	for range 10 {
		assert.Equal(t, first, handlers.HealthCheck())
	}
}

func TestGetWeather_EchoesLocation(t *testing.T) {
	for _, loc := range []string{"Paris", "", "Zürich", "東京", "  spaced  "} {
		r := handlers.GetWeather(loc)
		assert.Equal(t, loc, r.Location)
		assert.Equal(t, 72, r.Temperature)
		assert.Equal(t, "Sunny", r.Conditions)
		assert.Equal(t, 45, r.Humidity)
	}
}

func TestServerConfig_Fixed(t *testing.T) {
	cfg := handlers.ServerConfig()
	assert.Equal(t, handlers.ConfigRecord{
		Server:  handlers.ServerName,
		Version: "1.0",
		Mode:    "development",
	}, cfg)
	assert.Equal(t, cfg, handlers.ServerConfig())
}

func TestReadReadme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(path, []byte("# demo\n"), 0644))

	assert.Equal(t, "# demo\n", handlers.ReadReadme(path))
	assert.Equal(t, handlers.ReadmeNotFound, handlers.ReadReadme(filepath.Join(dir, "missing.md")))
}

func TestReadFile_NotFound(t *testing.T) {
	assert.Equal(t, "Error: File not found.", handlers.ReadFile("/tmp/does-not-exist-xyz"))
	assert.Equal(t, "Error: File not found.", handlers.ReadFile(filepath.Join(t.TempDir(), "nope.txt")))
}

func TestReadFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"empty.txt":   "",
		"plain.txt":   "hello world",
		"unicode.txt": "héllo 世界\nsecond line\r\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		assert.Equal(t, content, handlers.ReadFile(path), name)
	}
}

func TestReadFile_Directory(t *testing.T) {
	got := handlers.ReadFile(t.TempDir())
	assert.True(t, strings.HasPrefix(got, "Error reading file: "), got)
}

func TestReadFile_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "binary.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0xc3}, 0644))

	got := handlers.ReadFile(path)
	assert.True(t, strings.HasPrefix(got, "Error reading file: "), got)
	assert.Contains(t, got, "invalid UTF-8")
}

func TestReadFile_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	path := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(path, []byte("secret"), 0000))

	got := handlers.ReadFile(path)
	assert.True(t, strings.HasPrefix(got, "Error reading file: "), got)
}

func TestCodeReview_InterpolatesTwice(t *testing.T) {
	for _, lang := range []string{"Python", "Go", "C++", "Objective-C"} {
		got := handlers.CodeReview(lang)
		assert.Equal(t, 2, strings.Count(got, lang), lang)

		template := strings.ReplaceAll(got, lang, "{language}")
		assert.Equal(t, handlers.CodeReview("{language}"), template)
	}
}

func TestCodeReview_Text(t *testing.T) {
	want := "You are a meticulous Go code reviewer.\n" +
		"Focus on performance, security, and testing standards.\n\n" +
		"Please review the following Go code and suggest improvements:"
	assert.Equal(t, want, handlers.CodeReview("Go"))
}
