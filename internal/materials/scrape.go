package materials

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/spigell/job-digest/internal/serrors"
	"github.com/spigell/job-digest/internal/sources"
	"github.com/spigell/job-digest/internal/utils"
)

// MaxDescriptionRunes caps the captured job description.
const MaxDescriptionRunes = 6000

const browserUserAgent = "Mozilla/5.0"

// descriptionSelectors are tried in order; the first match wins.
var descriptionSelectors = []string{
	"#content",
	".content",
	"div#job",
	"div.job__description",
	"div.job-posting",
	"div#job_description",
}

// Scraper downloads job pages and extracts the readable description.
type Scraper struct {
	logger     *zap.Logger
	limiter    *sources.HostLimiter
	HTTPClient *http.Client
	UserAgent  string
}

func NewScraper(logger *zap.Logger, opts sources.Options) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *sources.HostLimiter
	if opts.RequestsPerSecond > 0 {
		limiter = sources.NewHostLimiter(opts.RequestsPerSecond, 1)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = browserUserAgent
	}

	return &Scraper{
		logger:     logger,
		limiter:    limiter,
		HTTPClient: &http.Client{Timeout: opts.Timeout},
		UserAgent:  ua,
	}
}

// Description fetches url and returns its description text. Any failure is
// an ErrTransport; callers continue without a description.
func (s *Scraper) Description(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", nil
	}

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, url); err != nil {
			return "", serrors.Wrap(serrors.ErrTransport, err, "waiting for rate limiter")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrTransport, err, "building request for %s", url)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrTransport, err, "fetching %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", serrors.With(serrors.ErrTransport, "fetching %s: bad status: %s", url, resp.Status)
	}

	text, err := ExtractDescription(resp.Body)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrTransport, err, "parsing %s", url)
	}

	s.logger.Debug("job description captured",
		zap.String("url", url),
		zap.Int("length", len([]rune(text))),
	)

	return text, nil
}

// ExtractDescription reads an HTML page and returns the text of the first
// known description container, or of the whole body when none matches.
func ExtractDescription(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	node := doc.Find("body")
	for _, selector := range descriptionSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			node = sel
			break
		}
	}

	fragment, err := goquery.OuterHtml(node)
	if err != nil {
		return "", fmt.Errorf("rendering description: %w", err)
	}

	return utils.TruncateRunes(sources.HTMLToText(fragment), MaxDescriptionRunes), nil
}
