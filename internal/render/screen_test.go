package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head><title>  Sample   page </title><style>.x { content: "bulbasaur"; }</style></head>
<body>
  <main>
    <h1>  bulbasaur
    </h1>
    <p>Seed <em>Pokémon</em></p>
    <ul><li>grass</li><li>poison</li><li>grass</li></ul>
    <script>var name = "ivysaur";</script>
  </main>
</body>
</html>`

func parseSample(t *testing.T) *Screen {
	t.Helper()
	screen, err := Parse(strings.NewReader(sampleHTML))
	require.NoError(t, err)
	return screen
}

func TestScreen_TextAndTitle(t *testing.T) {
	screen := parseSample(t)

	assert.Equal(t, "Sample page", screen.Title())
	assert.Equal(t, "bulbasaur Seed Pokémon grass poison grass", screen.Text())
	assert.Equal(t, http.StatusOK, screen.StatusCode())
}

func TestScreen_QueryByText(t *testing.T) {
	screen := parseSample(t)

	sel := screen.QueryByText("bulbasaur")
	require.NotNil(t, sel)
	assert.Equal(t, "h1", sel.Nodes[0].Data)

	// Text split across inline children still matches the parent
	sel = screen.QueryByText("Seed Pokémon")
	require.NotNil(t, sel)
	assert.Equal(t, "p", sel.Nodes[0].Data)

	assert.Nil(t, screen.QueryByText("bulba"), "partial text must not match")
	assert.Nil(t, screen.QueryByText("ivysaur"), "script content is not visible")
	assert.Nil(t, screen.QueryByText("Sample page"), "head content is not visible")
}

func TestScreen_InlineElementsJoinText(t *testing.T) {
	screen, err := Parse(strings.NewReader(`<html><body>
<p id="split">bulba<span>saur</span></p>
<p id="greeting">Hello <b>world</b>!</p>
<ul><li>grass</li><li>poison</li></ul>
<div>line<br>break</div>
</body></html>`))
	require.NoError(t, err)

	sel, err := screen.GetByText("bulbasaur")
	require.NoError(t, err)
	assert.Equal(t, "split", sel.AttrOr("id", ""))

	sel, err = screen.GetByText("Hello world!")
	require.NoError(t, err)
	assert.Equal(t, "greeting", sel.AttrOr("id", ""))

	assert.Nil(t, screen.QueryByText("bulba saur"))
	assert.Nil(t, screen.QueryByText("grasspoison"), "block siblings stay separate")
	assert.NotNil(t, screen.QueryByText("line break"))
	assert.Equal(t, "bulbasaur Hello world! grass poison line break", screen.Text())
}

func TestScreen_GetByText(t *testing.T) {
	screen := parseSample(t)

	sel, err := screen.GetByText("poison")
	require.NoError(t, err)
	assert.Equal(t, "poison", sel.Text())

	_, err = screen.GetByText("grass")
	assert.ErrorIs(t, err, ErrMultipleMatches)

	_, err = screen.GetByText("charmander")
	assert.ErrorIs(t, err, ErrTextNotFound)

	assert.Equal(t, 2, screen.QueryAllByText("grass").Length())
}

func TestScreen_FindByTextStatic(t *testing.T) {
	screen := parseSample(t)

	sel, err := screen.FindByText(context.Background(), "bulbasaur")
	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", strings.TrimSpace(sel.Text()))

	start := time.Now()
	_, err = screen.FindByText(context.Background(), "charmander")
	assert.ErrorIs(t, err, ErrTextNotFound)
	assert.Less(t, time.Since(start), DefaultFindTimeout, "static screens do not wait")
}

func TestFetchScreen_WaitsForText(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if hits.Add(1) < 3 {
			w.Write([]byte(`<html><body><main><p>Loading</p></main></body></html>`))
			return
		}
		w.Write([]byte(`<html><body><main><h1>bulbasaur</h1></main></body></html>`))
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	screen, err := FetchScreen(ctx, ts.Client(), ts.URL)
	require.NoError(t, err)
	screen.SetInterval(10 * time.Millisecond)

	assert.Nil(t, screen.QueryByText("bulbasaur"))

	sel, err := screen.FindByText(ctx, "bulbasaur")
	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", sel.Text())
	assert.GreaterOrEqual(t, hits.Load(), int32(3))
}

func TestFetchScreen_FindByTextTimesOut(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Loading</p></body></html>`))
	}))
	defer ts.Close()

	screen, err := FetchScreen(context.Background(), ts.Client(), ts.URL)
	require.NoError(t, err)
	screen.SetInterval(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = screen.FindByText(ctx, "bulbasaur")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTextNotFound)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchScreen_KeepsStatusCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`<html><body><h1>Pokémon not found</h1></body></html>`))
	}))
	defer ts.Close()

	screen, err := FetchScreen(context.Background(), ts.Client(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, screen.StatusCode())
	assert.NotNil(t, screen.QueryByText("Pokémon not found"))
}

func TestFetchScreen_ConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := FetchScreen(context.Background(), nil, url)
	assert.Error(t, err)
}

func TestMarkdown(t *testing.T) {
	screen := parseSample(t)

	out, err := Markdown(screen, "")
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^# +bulbasaur`, out)
	assert.Contains(t, out, "Pokémon")
	assert.Regexp(t, `(?m)^- +poison`, out)
	assert.NotContains(t, out, "ivysaur")

	// The screen's own document is left untouched
	assert.Equal(t, 1, screen.Document().Find("script").Length())
}
