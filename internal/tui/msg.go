package tui

import "github.com/runoshun/confcache/internal/usecase"

// Msg is the interface for all browser messages.
// All message types implement this sealed interface.
//
//sumtype:decl
type Msg interface {
	sealed()
}

// MsgEntryLoaded is sent when the entry has been rehydrated (or rejected).
//
//nolint:govet // Logical field order preferred
type MsgEntryLoaded struct {
	Output *usecase.LoadEntryOutput
	Err    error
}

func (MsgEntryLoaded) sealed() {}
