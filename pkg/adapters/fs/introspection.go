package fs

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path      string `json:"path"`
	SystemDir string `json:"system_dir"`
	IndexSize int    `json:"index_size"`
	Gitless   bool   `json:"gitless"`
	Remote    string `json:"remote"`
	Branch    string `json:"branch"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	return RepositoryState{
		Path:      r.Path,
		SystemDir: r.config.SystemDir,
		IndexSize: r.cache.Len(),
		Gitless:   r.config.Gitless,
		Remote:    r.config.Remote,
		Branch:    r.config.Branch,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs-repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
