package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	// DefaultFindTimeout bounds FindByText when the context has no deadline.
	DefaultFindTimeout = time.Second

	// DefaultFindInterval is how often FindByText re-reads its source.
	DefaultFindInterval = 50 * time.Millisecond
)

var (
	// ErrTextNotFound is returned when no element has the requested text.
	ErrTextNotFound = errors.New("text not found")

	// ErrMultipleMatches is returned when a single match was required.
	ErrMultipleMatches = errors.New("multiple elements match text")
)

// Source produces a fresh document for a Screen to query
type Source func(ctx context.Context) (*goquery.Document, int, error)

// Screen is a queryable rendered page. A screen with a Source can be
// re-read, which FindByText uses to wait for content to settle.
type Screen struct {
	mu         sync.RWMutex
	doc        *goquery.Document
	statusCode int
	source     Source
	interval   time.Duration
}

// Parse reads an HTML document into a static Screen
func Parse(r io.Reader) (*Screen, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Screen{doc: doc, statusCode: http.StatusOK, interval: DefaultFindInterval}, nil
}

// NewScreen reads the source once and keeps it for later refreshes
func NewScreen(ctx context.Context, source Source) (*Screen, error) {
	doc, status, err := source(ctx)
	if err != nil {
		return nil, err
	}
	return &Screen{doc: doc, statusCode: status, source: source, interval: DefaultFindInterval}, nil
}

// FetchScreen loads a page over HTTP. Non-2xx responses still produce a
// screen; check StatusCode.
func FetchScreen(ctx context.Context, client *http.Client, url string) (*Screen, error) {
	if client == nil {
		client = http.DefaultClient
	}

	return NewScreen(ctx, func(ctx context.Context) (*goquery.Document, int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "text/html")

		resp, err := client.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("failed to parse %s: %w", url, err)
		}
		return doc, resp.StatusCode, nil
	})
}

// SetInterval changes how often FindByText re-reads the source
func (s *Screen) SetInterval(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if interval > 0 {
		s.interval = interval
	}
}

// Document returns the current document
func (s *Screen) Document() *goquery.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// StatusCode returns the HTTP status of the last read (200 for rendered views)
func (s *Screen) StatusCode() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusCode
}

// HTML returns the serialized document
func (s *Screen) HTML() (string, error) {
	return goquery.OuterHtml(s.Document().Selection)
}

// Title returns the document title
func (s *Screen) Title() string {
	return normalizeSpace(s.Document().Find("title").First().Text())
}

// Text returns the visible body text with whitespace collapsed
func (s *Screen) Text() string {
	body := s.Document().Find("body")
	var buf bytes.Buffer
	for _, n := range body.Nodes {
		visibleText(&buf, n)
	}
	return normalizeSpace(buf.String())
}

// QueryAllByText returns every innermost element whose visible text equals
// text after whitespace normalization. The result may be empty.
func (s *Screen) QueryAllByText(text string) *goquery.Selection {
	return matchText(s.Document(), normalizeSpace(text))
}

// QueryByText returns the single matching element or nil when there is none
func (s *Screen) QueryByText(text string) *goquery.Selection {
	matches := s.QueryAllByText(text)
	if matches.Length() == 0 {
		return nil
	}
	return matches.First()
}

// GetByText requires exactly one matching element
func (s *Screen) GetByText(text string) (*goquery.Selection, error) {
	matches := s.QueryAllByText(text)
	switch matches.Length() {
	case 0:
		return nil, fmt.Errorf("%w: %q", ErrTextNotFound, text)
	case 1:
		return matches, nil
	default:
		return nil, fmt.Errorf("%w: %q (%d elements)", ErrMultipleMatches, text, matches.Length())
	}
}

// FindByText waits for exactly one element with the text. Screens without a
// source are already settled, so a miss returns immediately. Screens with a
// source are re-read every interval until a match, an error, or ctx is done.
func (s *Screen) FindByText(ctx context.Context, text string) (*goquery.Selection, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFindTimeout)
		defer cancel()
	}

	s.mu.RLock()
	source, interval := s.source, s.interval
	s.mu.RUnlock()

	for {
		sel, err := s.GetByText(text)
		if err == nil || !errors.Is(err, ErrTextNotFound) || source == nil {
			return sel, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %q: %w", ErrTextNotFound, text, ctx.Err())
		case <-time.After(interval):
		}

		doc, status, err := source(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrTextNotFound, text, ctx.Err())
			}
			return nil, err
		}

		s.mu.Lock()
		s.doc = doc
		s.statusCode = status
		s.mu.Unlock()
	}
}

func matchText(doc *goquery.Document, target string) *goquery.Selection {
	matches := func(_ int, sel *goquery.Selection) bool {
		if ignoredElement(sel.Nodes[0]) {
			return false
		}
		var buf bytes.Buffer
		visibleText(&buf, sel.Nodes[0])
		return normalizeSpace(buf.String()) == target
	}

	// Keep only the innermost matches so <main><h1>x</h1></main> yields the h1
	return doc.Find("body, body *").FilterFunction(matches).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return sel.Find("*").FilterFunction(matches).Length() == 0
	})
}

func ignoredElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "script", "style", "noscript", "template", "head":
		return true
	}
	return false
}

// visibleText writes the text of n, skipping non-rendered elements
func visibleText(buf *bytes.Buffer, n *html.Node) {
	if ignoredElement(n) {
		return
	}
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
		return
	}
	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		buf.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(buf, c)
	}
	if block {
		buf.WriteByte(' ')
	}
}

// blockElements break text flow; inline elements join their neighbours
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "caption": true, "dd": true, "details": true, "dialog": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true, "pre": true,
	"section": true, "summary": true, "table": true, "tbody": true, "td": true,
	"tfoot": true, "th": true, "thead": true, "tr": true, "ul": true,
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
