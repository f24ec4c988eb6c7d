package github

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	acceptType      = "application/vnd.github+json"
	contentEncoding = "gzip"
)

// APIError is returned for a non-2xx response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bad status: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("bad status: %s", e.Status)
}

func (c *Client) getJSON(url string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	return c.do(req, target)
}

func (c *Client) sendJSON(method, url string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(c.ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	return c.do(req, target)
}

// getPages follows the page parameter until a page comes back shorter than
// perPage. onPage decodes one page and returns the number of items in it.
func (c *Client) getPages(endpoint string, q url.Values, onPage func(data []byte) (int, error)) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("per_page", strconv.Itoa(perPage))

	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))

		req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req = c.setHeaders(req)
		req.URL.RawQuery = q.Encode()

		var raw json.RawMessage
		if err := c.do(req, &raw); err != nil {
			return err
		}

		n, err := onPage(raw)
		if err != nil {
			return err
		}

		if n < perPage {
			return nil
		}

		c.logger.Debug("additional request needed", zap.Int("next_page", page+1))
	}
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
		var body struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if target == nil || len(data) == 0 {
		return nil
	}

	return json.Unmarshal(data, target)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", acceptType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	return req
}
