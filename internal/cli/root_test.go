package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grez-lucas/form-autofill/internal/autofill/browser"
	"github.com/grez-lucas/form-autofill/internal/autofill/config"
	"github.com/grez-lucas/form-autofill/internal/autofill/htmldoc"
	"github.com/grez-lucas/form-autofill/internal/autofill/testutil"
)

// execute runs the command line with args and an isolated environment.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	for _, k := range []string{
		config.EnvUsername, config.EnvEmail, config.EnvDomain, config.EnvPassword,
		config.EnvStepDelay, config.EnvSeed, config.EnvHumanize, config.EnvUsernameFields,
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	missing := filepath.Join(t.TempDir(), "missing.env")
	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"--env-file", missing}, args...))

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func loadValue(t *testing.T, doc *htmldoc.Document, selector string) string {
	t.Helper()
	c, ok := doc.Control(selector)
	require.True(t, ok, "control %s", selector)
	v, err := c.Value(context.Background())
	require.NoError(t, err)
	return v
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "autofill")
	assert.Contains(t, out, "page")
	assert.Contains(t, out, "html")
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { version = "dev" })

	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	_, _, err := execute(t, "invalid-command")
	assert.Error(t, err)
}

func TestHTMLCommand_WritesFilledPage(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "signup.filled.html")

	out, _, err := execute(t, "html", testutil.FixturePath("signup"),
		"-o", dst, "--seed", "3", "--username", "test7", "--domain", "www.example.org",
		"--username-field", "signup_username")
	require.NoError(t, err)
	assert.Contains(t, out, "filled")

	doc, err := htmldoc.Load(dst)
	require.NoError(t, err)

	assert.Equal(t, "test7", loadValue(t, doc, "#signup_username"))
	assert.Equal(t, "test7@example.org", loadValue(t, doc, "#signup_email"))
	assert.Equal(t, "111111", loadValue(t, doc, "#signup_password"))
	assert.Equal(t, "111111", loadValue(t, doc, "#signup_password_confirm"))
	assert.Len(t, loadValue(t, doc, "#field_1"), 5)
	assert.Len(t, loadValue(t, doc, "#field_2"), 15)

	tos, ok := doc.Control("#signup_tos")
	require.True(t, ok)
	checked, err := tos.Checked(context.Background())
	require.NoError(t, err)
	assert.True(t, checked)
}

func TestHTMLCommand_StdoutCarriesPage(t *testing.T) {
	out, errOut, err := execute(t, "html", testutil.FixturePath("minimal"), "--password", "hunter2")
	require.NoError(t, err)

	assert.Contains(t, out, "<form")
	assert.NotContains(t, out, "✓ filled")
	assert.Contains(t, errOut, "✓ filled")
}

func TestHTMLCommand_JSONReport(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.html")

	out, _, err := execute(t, "html", testutil.FixturePath("signup"), "-o", dst, "--json", "--seed", "11")
	require.NoError(t, err)

	var view reportView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 15, view.Collected)
	assert.NotZero(t, view.Filled)
	require.NotEmpty(t, view.Steps)
	assert.Equal(t, "signup_username", view.Steps[0].Control.Name)
}

func TestHTMLCommand_NumberedTestUser(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.html")

	_, _, err := execute(t, "html", testutil.FixturePath("signup"), "-o", dst, "--test-user", "3",
		"--username-field", "signup_username")
	require.NoError(t, err)

	doc, err := htmldoc.Load(dst)
	require.NoError(t, err)
	assert.Equal(t, "test3", loadValue(t, doc, "#signup_username"))
	assert.Equal(t, "test3@example.org", loadValue(t, doc, "#signup_email"))
}

func TestHTMLCommand_UsernameFieldIsTextByDefault(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.html")

	_, _, err := execute(t, "html", testutil.FixturePath("signup"), "-o", dst, "--username", "kuhnschmitt42")
	require.NoError(t, err)

	doc, err := htmldoc.Load(dst)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9A-Za-z]{5}$`, loadValue(t, doc, "#signup_username"))
	assert.Equal(t, "kuhnschmitt42@example.org", loadValue(t, doc, "#signup_email"))
}

func TestHTMLCommand_MissingFile(t *testing.T) {
	_, _, err := execute(t, "html", filepath.Join(t.TempDir(), "nope.html"))
	assert.Error(t, err)
}

func TestPageCommand_InvalidURL(t *testing.T) {
	_, _, err := execute(t, "page", "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid url")
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"page", "html", "capture", "frames"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestCaptureCommand_InvalidURL(t *testing.T) {
	_, _, err := execute(t, "capture", "/relative/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid url")
}

func TestWriteFrames(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	writeFrames(cmd, []browser.FrameInfo{
		{Path: "main", Visible: true, Controls: 1},
		{Path: "main > iframe#checkout", Selector: "iframe#checkout", Depth: 1, Visible: true, Controls: 4, Src: "/pay"},
		{Path: "main > iframe#blocked", Selector: "iframe#blocked", Depth: 1, Err: errors.New("cross origin")},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "main  controls=1", lines[0])
	assert.Contains(t, lines[1], "  iframe#checkout  visible=true  controls=4  src=/pay")
	assert.Contains(t, lines[2], "cross origin")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
