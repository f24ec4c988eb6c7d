// Package github is a minimal GitHub REST client covering the issue
// operations used by the digest: create, read, comment and label.
package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL     = "https://api.github.com"
	userAgent  = "spigell/job-digest"
	apiVersion = "2022-11-28"
	// Max value for per_page on list endpoints.
	perPage = 100
)

type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	owner      string
	repo       string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// New returns a client for repo given as "owner/name".
func New(ctx context.Context, logger *zap.Logger, token, repo string) (*Client, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repository must look like owner/name, got %q", repo)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		ctx:    ctx,
		token:  token,
		owner:  owner,
		repo:   name,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}, nil
}

// Repo returns "owner/name".
func (c *Client) Repo() string {
	return c.owner + "/" + c.repo
}

func (c *Client) repoURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", strings.TrimRight(c.APIURL, "/"), c.owner, c.repo, path)
}
