package social

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Handles maps lowercased company names to their X (Twitter) profile handles.
// The mapping is static, read-only, and loaded once at startup.
type Handles struct {
	byCompany map[string]string
}

// NewHandles builds a mapping directly from `company: handle` pairs,
// normalizing keys and handles the same way LoadHandles does.
func NewHandles(pairs map[string]string) *Handles {
	byCompany := make(map[string]string, len(pairs))
	for company, handle := range pairs {
		company = strings.ToLower(strings.TrimSpace(company))
		handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
		if company == "" || handle == "" {
			continue
		}
		byCompany[company] = handle
	}
	return &Handles{byCompany: byCompany}
}

// LoadHandles reads a YAML file of `company: handle` pairs. A missing file is
// not an error: the companies listing simply has no links to offer.
func LoadHandles(path string) (*Handles, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Handles{byCompany: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read handles file: %w", err)
	}

	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse handles file: %w", err)
	}
	return NewHandles(raw), nil
}

// Lookup returns the handle for a company name, case- and space-insensitive.
func (h *Handles) Lookup(company string) (string, bool) {
	handle, ok := h.byCompany[strings.ToLower(strings.TrimSpace(company))]
	return handle, ok
}

// ProfileLink is one company with its resolved X profile URL.
type ProfileLink struct {
	Company string
	Handle  string
	URL     string
}

// Links resolves profile links for the given companies. Companies without a
// mapping are omitted; companies sharing one handle are listed once.
func (h *Handles) Links(companies []string) []ProfileLink {
	seenHandles := make(map[string]bool)
	var links []ProfileLink
	for _, company := range companies {
		handle, ok := h.Lookup(company)
		if !ok || seenHandles[handle] {
			continue
		}
		seenHandles[handle] = true
		links = append(links, ProfileLink{
			Company: company,
			Handle:  handle,
			URL:     "https://x.com/" + handle,
		})
	}
	return links
}
