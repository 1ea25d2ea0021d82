//go:build !ebiten

package ui

import "mfm/internal/engine"

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{}

// NewOverlay constructs a stub overlay.
func NewOverlay(int, bool, bool) *Overlay { return &Overlay{} }

// Update is a no-op in headless builds.
func (o *Overlay) Update() {}

// ShowActive is always false in headless builds.
func (o *Overlay) ShowActive() bool { return false }

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any, *engine.Snapshot) {}
