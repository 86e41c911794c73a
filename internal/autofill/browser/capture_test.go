package browser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grez-lucas/form-autofill/internal/autofill/htmldoc"
	"github.com/grez-lucas/form-autofill/internal/autofill/testutil"
)

func framedServer() *testutil.FixtureServer {
	return testutil.NewFixtureServer(
		testutil.WithPage("/outer", `<!DOCTYPE html><html><body>
			<input type="text" name="top">
			<iframe id="form-frame" src="/inner"></iframe>
			<iframe name="ads" src="/empty" style="display:none"></iframe>
		</body></html>`),
		testutil.WithPage("/inner", `<!DOCTYPE html><html><body>
			<input type="text" name="inside">
			<select name="size"><option>S</option><option>M</option></select>
		</body></html>`),
		testutil.WithPage("/empty", `<!DOCTYPE html><html><body></body></html>`),
	)
}

func TestCapture_InlinesIframes(t *testing.T) {
	server := framedServer()
	page := setupPage(t, server)
	page.MustNavigate(server.URL("/outer")).MustWaitLoad()
	require.NoError(t, WaitForFrames(page))

	html, inlined, err := Capture(page)
	require.NoError(t, err)
	assert.Equal(t, 2, inlined)
	assert.NotContains(t, html, "<iframe")
	assert.Contains(t, html, `data-captured-iframe="true"`)

	// The capture is a single document the offline backend can fill.
	doc, err := htmldoc.Parse(strings.NewReader(html))
	require.NoError(t, err)
	controls, err := doc.Controls(context.Background())
	require.NoError(t, err)
	assert.Len(t, controls, 3)
}

func TestCapture_NoIframes(t *testing.T) {
	server := testutil.NewFixtureServer(testutil.WithFixture("minimal"))
	page := setupPage(t, server)
	page.MustNavigate(server.URL("/minimal")).MustWaitLoad()

	html, inlined, err := Capture(page)
	require.NoError(t, err)
	assert.Zero(t, inlined)
	assert.Contains(t, html, `name="nickname"`)
}

func TestFrameTree(t *testing.T) {
	server := framedServer()
	page := setupPage(t, server)
	page.MustNavigate(server.URL("/outer")).MustWaitLoad()
	require.NoError(t, WaitForFrames(page))

	frames, err := FrameTree(page)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	assert.Equal(t, "main", frames[0].Path)
	assert.Equal(t, 1, frames[0].Controls)

	assert.Equal(t, "iframe#form-frame", frames[1].Selector)
	assert.Equal(t, "main > iframe#form-frame", frames[1].Path)
	assert.Equal(t, 1, frames[1].Depth)
	assert.True(t, frames[1].Visible)
	assert.Equal(t, 2, frames[1].Controls)

	assert.Equal(t, `iframe[name="ads"]`, frames[2].Selector)
	assert.False(t, frames[2].Visible)
	assert.Zero(t, frames[2].Controls)

	// The listed selector is accepted by ResolveFrame.
	frame, err := ResolveFrame(page, frames[1].Selector)
	require.NoError(t, err)
	controls, err := NewDocument(frame).Controls(context.Background())
	require.NoError(t, err)
	assert.Len(t, controls, 2)
}
