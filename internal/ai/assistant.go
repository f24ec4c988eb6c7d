package ai

import (
	"context"
)

// Hints are keyword signals derived from a job description.
type Hints struct {
	RoleFamily string   `json:"role_family"`
	Focus      []string `json:"focus,omitempty"`
	Tools      []string `json:"tools,omitempty"`
	Signals    []string `json:"signals,omitempty"`
}

type Applicant struct {
	Name     string `json:"name"`
	Headline string `json:"headline,omitempty"`
}

// Request carries one approved posting to a materials writer.
type Request struct {
	Applicant   Applicant
	Title       string
	Company     string
	Location    string
	URL         string
	Description string
	Hints       Hints
}

// Draft is the generated application material for one posting.
type Draft struct {
	Bullets     []string
	CoverLetter string
	// Provider names the writer that produced the draft, e.g. "template".
	Provider string
	Raw      string
}

type Writer interface {
	Write(ctx context.Context, req *Request) (*Draft, error)
}
