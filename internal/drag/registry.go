// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package drag

import (
	"sync"

	"go.uber.org/zap"

	"github.com/relabs-tech/orientation_widget/internal/dom"
	"github.com/relabs-tech/orientation_widget/internal/logging"
)

// Registry tracks the document and root node that the active drag watches
// for the pointer leaving. Handles sharing a registry serialize their
// sessions through it; a drag started on a second document while another
// is active is reported but not refused.
type Registry struct {
	mu       sync.Mutex
	document *dom.Document
	root     dom.Node
	logger   *zap.Logger
}

// DefaultRegistry is used by handles installed without a registry.
var DefaultRegistry = NewRegistry(nil)

// NewRegistry returns an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{logger: logging.OrNop(logger)}
}

// Active returns the tracked document and root, both nil when idle.
func (r *Registry) Active() (*dom.Document, dom.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.document, r.root
}

// acquire records the session's document and root. The first-seen
// document wins when sessions overlap.
func (r *Registry) acquire(doc *dom.Document, root dom.Node, logger *zap.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.document != nil {
		if r.document != doc {
			logging.OrNop(logger).Warn("dragging on multiple documents")
			r.logger.Debug("registry keeps first document for mouse-out tracking")
		}
		return
	}
	r.document = doc
	r.root = root
}

func (r *Registry) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.document = nil
	r.root = nil
}
