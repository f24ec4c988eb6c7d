package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Label struct {
	Name string `json:"name"`
}

type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	HTMLURL   string    `json:"html_url"`
	Labels    []Label   `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueRequest is the payload for creating an issue.
type IssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// HasLabel reports whether the issue carries name, compared case-insensitively.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}

// CreateIssue makes a single POST; it never retries.
func (c *Client) CreateIssue(req IssueRequest) (*Issue, error) {
	var issue Issue
	if err := c.sendJSON(http.MethodPost, c.repoURL("/issues"), req, &issue); err != nil {
		return nil, fmt.Errorf("create issue in %s: %w", c.Repo(), err)
	}
	return &issue, nil
}

func (c *Client) GetIssue(number int) (*Issue, error) {
	var issue Issue
	if err := c.getJSON(c.repoURL(fmt.Sprintf("/issues/%d", number)), nil, &issue); err != nil {
		return nil, fmt.Errorf("get issue #%d: %w", number, err)
	}
	return &issue, nil
}

// ListComments returns every comment of an issue, following pagination.
func (c *Client) ListComments(number int) ([]Comment, error) {
	var comments []Comment
	err := c.getPages(c.repoURL(fmt.Sprintf("/issues/%d/comments", number)), nil, func(data []byte) (int, error) {
		var page []Comment
		if err := json.Unmarshal(data, &page); err != nil {
			return 0, err
		}
		comments = append(comments, page...)
		return len(page), nil
	})
	if err != nil {
		return nil, fmt.Errorf("list comments of issue #%d: %w", number, err)
	}
	return comments, nil
}

func (c *Client) CreateComment(number int, body string) (*Comment, error) {
	var comment Comment
	payload := map[string]string{"body": body}
	if err := c.sendJSON(http.MethodPost, c.repoURL(fmt.Sprintf("/issues/%d/comments", number)), payload, &comment); err != nil {
		return nil, fmt.Errorf("comment on issue #%d: %w", number, err)
	}
	return &comment, nil
}

func (c *Client) AddLabels(number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	payload := map[string][]string{"labels": labels}
	if err := c.sendJSON(http.MethodPost, c.repoURL(fmt.Sprintf("/issues/%d/labels", number)), payload, nil); err != nil {
		return fmt.Errorf("label issue #%d: %w", number, err)
	}
	return nil
}
