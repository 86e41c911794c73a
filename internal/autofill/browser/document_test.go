package browser

import (
	"context"
	"os"
	"regexp"
	"strconv"
	"testing"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
	"github.com/grez-lucas/form-autofill/internal/autofill/testutil"
)

// skipUnlessBrowser skips tests that need a local Chromium.
func skipUnlessBrowser(t *testing.T) {
	t.Helper()
	if os.Getenv("AUTOFILL_TEST_MODE") != "browser" {
		t.Skip("Skipping: requires AUTOFILL_TEST_MODE=browser")
	}
}

// setupPage creates a Rod browser and page for testing. Requests to the
// fixture host are answered from testdata. Everything is closed via t.Cleanup.
func setupPage(t *testing.T, server *testutil.FixtureServer) *rod.Page {
	t.Helper()
	skipUnlessBrowser(t)

	browser := rod.New().MustConnect()
	t.Cleanup(func() { browser.MustClose() })

	router := browser.HijackRequests()
	router.MustAdd(testutil.FixtureHost+"/*", server.Middleware())
	go router.Run()
	t.Cleanup(func() { _ = router.Stop() })

	page := browser.MustPage()
	t.Cleanup(func() { page.MustClose() })

	return page
}

func evalString(t *testing.T, page *rod.Page, js string) string {
	t.Helper()
	return page.MustEval(js).Str()
}

func runFiller(t *testing.T, doc filler.Document, opts ...filler.Option) *filler.Report {
	t.Helper()
	f := filler.New(filler.Identity{Username: "test7", Email: "test7@example.org"}, append([]filler.Option{filler.WithDelay(0)}, opts...)...)
	report, err := f.Run(context.Background(), doc)
	require.NoError(t, err)
	return report
}

func TestDocument_FillSignup(t *testing.T) {
	server := testutil.NewFixtureServer(testutil.WithFixture("signup"))
	page := setupPage(t, server)
	page.MustNavigate(server.URL("/signup")).MustWaitLoad()

	report := runFiller(t, NewDocument(page), filler.WithUsernameFields("signup_username"))
	assert.Equal(t, 15, report.Collected)

	assert.Equal(t, "test7@example.org", evalString(t, page, `() => document.querySelector('[name=signup_email]').value`))
	assert.Equal(t, "test7", evalString(t, page, `() => document.querySelector('[name=signup_username]').value`))
	assert.Equal(t, filler.DefaultPassword, evalString(t, page, `() => document.querySelector('[name=signup_password]').value`))
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Za-z]{5}$`), evalString(t, page, `() => document.querySelector('[name=field_1]').value`))
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-Za-z]{15}$`), evalString(t, page, `() => document.querySelector('[name=field_2]').value`))
	assert.True(t, page.MustEval(`() => document.querySelector('[name=signup_tos]').checked`).Bool())
	assert.Equal(t, 1, page.MustEval(`() => document.querySelectorAll('[name=field_3]:checked').length`).Int())
	assert.Contains(t, []string{"de", "en"}, evalString(t, page, `() => document.querySelector('[name=field_5]').value`))

	age, err := strconv.Atoi(evalString(t, page, `() => document.querySelector('[name=field_4]').value`))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, age, 18)
	assert.LessOrEqual(t, age, 99)
}

func TestDocument_ClickListenersFire(t *testing.T) {
	server := testutil.NewFixtureServer(testutil.WithPage("/listeners", `<!DOCTYPE html>
		<html><body>
			<input type="checkbox" name="tos" required>
			<input type="radio" name="plan" value="a"><input type="radio" name="plan" value="b">
			<script>
				window.clicks = [];
				window.changes = [];
				document.querySelectorAll('input').forEach((el) => {
					el.addEventListener('click', () => window.clicks.push(el.name));
					el.addEventListener('change', () => window.changes.push(el.name));
				});
			</script>
		</body></html>`))
	page := setupPage(t, server)
	page.MustNavigate(server.URL("/listeners")).MustWaitLoad()

	runFiller(t, NewDocument(page))

	assert.Equal(t, "tos,plan", evalString(t, page, `() => window.clicks.join(',')`))
	// a user click changes the control, then the filler notifies once more
	assert.Contains(t, evalString(t, page, `() => window.changes.join(',')`), "tos,tos")
}

func TestDocument_PostalCodes(t *testing.T) {
	server := testutil.NewFixtureServer(testutil.WithFixture("address"))
	page := setupPage(t, server)
	page.MustNavigate(server.URL("/address")).MustWaitLoad()

	runFiller(t, NewDocument(page))

	assert.Regexp(t, regexp.MustCompile(`^[0-9]{5}$`), evalString(t, page, `() => document.querySelector('[name=input_zip_de]').value`))
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{4}$`), evalString(t, page, `() => document.querySelector('[name=input_zip_at]').value`))
	assert.Empty(t, evalString(t, page, `() => document.querySelector('[name=input_zip_fr]').value`))
}

func TestDocument_TypingFast(t *testing.T) {
	server := testutil.NewFixtureServer(testutil.WithPage("/typing", `<!DOCTYPE html>
		<html><body>
			<input type="text" name="nick">
			<script>
				window.keys = 0;
				document.querySelector('input').addEventListener('keydown', () => window.keys++);
			</script>
		</body></html>`))
	page := setupPage(t, server)
	page.MustNavigate(server.URL("/typing")).MustWaitLoad()

	runFiller(t, NewDocument(page, WithTyping(TypingFast)))

	assert.Len(t, evalString(t, page, `() => document.querySelector('[name=nick]').value`), filler.TextLength)
	assert.Equal(t, filler.TextLength, page.MustEval(`() => window.keys`).Int())
}

func TestResolveFrame(t *testing.T) {
	server := testutil.NewFixtureServer(
		testutil.WithPage("/outer", `<!DOCTYPE html><html><body><iframe id="form-frame" src="/inner"></iframe></body></html>`),
		testutil.WithPage("/inner", `<!DOCTYPE html><html><body><input type="text" name="inside"></body></html>`),
	)
	page := setupPage(t, server)
	page.MustNavigate(server.URL("/outer")).MustWaitLoad()
	require.NoError(t, WaitForFrames(page))

	for _, target := range []string{FrameDeepest, "#form-frame"} {
		frame, err := ResolveFrame(page, target)
		require.NoError(t, err)

		controls, err := NewDocument(frame).Controls(context.Background())
		require.NoError(t, err)
		assert.Len(t, controls, 1, "target %q", target)
	}

	top, err := ResolveFrame(page, FrameTop)
	require.NoError(t, err)
	controls, err := NewDocument(top).Controls(context.Background())
	require.NoError(t, err)
	assert.Empty(t, controls)
}
