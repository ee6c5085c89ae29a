// Package model provides the data structures describing task payloads and
// where to fetch them from.
package model

import (
	"github.com/hashicorp/go-version"

	"github.com/glorpus-work/taskfetch/pkg/digest"
	"github.com/glorpus-work/taskfetch/pkg/errors"
)

// SourceURI identifies a payload relative to a source endpoint. Path is the
// request path, Params the optional query parameters. The same SourceURI is
// appended to every candidate source in turn.
type SourceURI struct {
	Path   string            `json:"path" yaml:"path"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// FileSpec describes one payload file: its name, the SHA-256 its content must
// match, and the request URI used to fetch it. Immutable once constructed.
type FileSpec struct {
	Filename string    `json:"filename" yaml:"filename"`
	Sha256   string    `json:"sha256" yaml:"sha256"`
	URI      SourceURI `json:"uri" yaml:"uri"`
}

// Validate checks that the spec carries a filename and a well-formed digest.
func (f *FileSpec) Validate() error {
	if f.Filename == "" {
		return errors.Wrap(errors.ErrManifestInvalid, "filename cannot be empty")
	}
	if !digest.IsValid(f.Sha256) {
		return errors.Wrapf(errors.ErrInvalidChecksum,
			"sha256 for %s must be 64 lowercase hex characters", f.Filename)
	}
	return nil
}

// Manifest groups the files making up one task payload. RequiresAgent is an
// optional version constraint the running agent must satisfy before fetching.
type Manifest struct {
	Name          string     `json:"name" yaml:"name"`
	Version       string     `json:"version,omitempty" yaml:"version,omitempty"`
	RequiresAgent string     `json:"requires_agent,omitempty" yaml:"requires_agent,omitempty"`
	Files         []FileSpec `json:"files" yaml:"files"`
}

// Validate checks the manifest and every file spec in it.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errors.Wrap(errors.ErrManifestInvalid, "manifest name cannot be empty")
	}
	if len(m.Files) == 0 {
		return errors.Wrapf(errors.ErrManifestInvalid, "manifest %s lists no files", m.Name)
	}
	if m.RequiresAgent != "" {
		if _, err := version.NewConstraint(m.RequiresAgent); err != nil {
			return errors.Wrapf(errors.ErrManifestInvalid,
				"manifest %s has an unparsable requires_agent constraint %q", m.Name, m.RequiresAgent)
		}
	}
	for i := range m.Files {
		if err := m.Files[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CheckAgentVersion reports whether agentVersion satisfies the manifest's
// RequiresAgent constraint. An empty constraint always passes.
func (m *Manifest) CheckAgentVersion(agentVersion string) error {
	if m.RequiresAgent == "" {
		return nil
	}
	constraint, err := version.NewConstraint(m.RequiresAgent)
	if err != nil {
		return errors.Wrapf(errors.ErrManifestInvalid,
			"unparsable requires_agent constraint %q", m.RequiresAgent)
	}
	v, err := version.NewVersion(agentVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrAgentVersionUnmet, "unparsable agent version %q", agentVersion)
	}
	if !constraint.Check(v) {
		return errors.Wrapf(errors.ErrAgentVersionUnmet,
			"agent %s does not satisfy %q required by manifest %s", agentVersion, m.RequiresAgent, m.Name)
	}
	return nil
}
