package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qrpdf "github.com/porticus-lab/go-qr-pdf"
)

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateWritesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	out, err := run(t, "generate", "-s", "120", "-o", dir, "--verify", "HELLO")
	require.NoError(t, err)

	path := filepath.Join(dir, "QR_Code_HELLO.pdf")
	assert.Equal(t, path, strings.TrimSpace(out))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text, err := qrpdf.DecodePDF(data)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", text)

	rep, err := qrpdf.Inspect(data)
	require.NoError(t, err)
	require.Len(t, rep.Pages, 1)
	require.Len(t, rep.Pages[0].Images, 1)
	assert.InDelta(t, 120, rep.Pages[0].Images[0].Width, 0.01)
}

func TestGenerateUsesConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "qrpdf.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("size: 90\nencoder: skip2\npage:\n  size: letter\n"), 0o600))

	_, err := run(t, "generate", "-c", cfgPath, "-o", dir, "--landscape", "config")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "QR_Code_config.pdf"))
	require.NoError(t, err)
	rep, err := qrpdf.Inspect(data)
	require.NoError(t, err)
	page := rep.Pages[0]
	// Letter landscape: 11 x 8.5 in.
	assert.InDelta(t, 792, page.Width, 0.5)
	assert.InDelta(t, 612, page.Height, 0.5)
	assert.InDelta(t, 90, page.Images[0].Width, 0.01)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{"zero size", []string{"generate", "-s", "0", "-o", dir, "x"}},
		{"unknown encoder", []string{"generate", "--encoder", "nope", "-o", dir, "x"}},
		{"missing content", []string{"generate", "-o", dir}},
		{"missing dir", []string{"generate", "-o", filepath.Join(dir, "absent"), "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInspectAndDecode(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	_, err := run(t, "generate", "-o", dir, "inspect me")
	require.NoError(t, err)
	path := filepath.Join(dir, "QR_Code_inspect me.pdf")

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Pages:   1")
	assert.Contains(t, out, "200.00 x 200.00 pt")

	out, err = run(t, "inspect", "--json", path)
	require.NoError(t, err)
	var rep qrpdf.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Pages, 1)
	assert.Equal(t, "DeviceGray", rep.Pages[0].Images[0].ColorSpace)

	_, err = run(t, "inspect", "-p", "2", path)
	assert.ErrorContains(t, err, "out of bounds")

	out, err = run(t, "decode", path)
	require.NoError(t, err)
	assert.Equal(t, "inspect me\n", out)
}

func TestDecodePNG(t *testing.T) {
	t.Chdir(t.TempDir())
	m, err := qrpdf.ZXingEncoder{}.Encode("from png", qrpdf.ECLevelL, 1)
	require.NoError(t, err)
	png, err := qrpdf.EncodePNG(qrpdf.Rasterize(m, 250))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "code.png")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	out, err := run(t, "decode", path)
	require.NoError(t, err)
	assert.Equal(t, "from png\n", out)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "qrpdf "))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "debug", "json")
	require.NoError(t, err)
	log.Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	log, err = newLogger(&buf, "warn", "text")
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
	_, err = newLogger(&buf, "loud", "json")
	assert.Error(t, err)
}

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		expr    string
		total   int
		want    []int
		wantErr bool
	}{
		{"", 3, []int{0, 1, 2}, false},
		{"2", 3, []int{1}, false},
		{"1-3", 5, []int{0, 1, 2}, false},
		{"1-3,5", 5, []int{0, 1, 2, 4}, false},
		{"2,2,1-2", 3, []int{1, 0}, false},
		{"0", 3, nil, true},
		{"4", 3, nil, true},
		{"3-1", 3, nil, true},
		{"a", 3, nil, true},
		{"1-b", 3, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parsePageRange(tt.expr, tt.total)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
