package models

import (
	"net/url"
	"strings"

	"github.com/expert-marketplace/backend/internal/apperr"
)

// EvidenceAttachment is an uploaded file reference returned by the storage
// collaborator.
type EvidenceAttachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Evidence is the normalized proof-of-work payload attached to a work unit.
type Evidence struct {
	Attachments []EvidenceAttachment `json:"attachments,omitempty"`
	Links       []string             `json:"links,omitempty"`
}

// ValidateLinks checks every link is a well-formed http(s) URL with a
// resolvable-looking host. Failures identify the offending index.
func (e Evidence) ValidateLinks() error {
	for i, link := range e.Links {
		u, err := url.Parse(link)
		if err != nil {
			return apperr.BadRequest(apperr.CodeInvalidEvidenceLink, "evidence link %d is not a valid URL", i)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return apperr.BadRequest(apperr.CodeInvalidEvidenceLink, "evidence link %d must use http or https", i)
		}
		host := u.Hostname()
		if host == "" || (!strings.Contains(host, ".") && host != "localhost") {
			return apperr.BadRequest(apperr.CodeInvalidEvidenceLink, "evidence link %d has an unresolvable host", i)
		}
	}
	return nil
}
