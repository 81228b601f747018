package drivecli

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Session bundles the handles one command invocation works with.
// It is built once at startup and passed to every operation; nothing here is global.
type Session struct {
	// Provider is the authenticated remote storage API.
	Provider Provider
	// Local is the local filesystem transfers read from and write to.
	Local billy.Filesystem
	// RootID identifies the remote folder that "/" refers to.
	RootID string
}

// NewSession creates a Session over provider rooted at the user's root folder,
// with the local side backed by the operating system filesystem.
func NewSession(provider Provider) *Session {
	return &Session{
		Provider: provider,
		Local:    osfs.New("/"),
		RootID:   RootID,
	}
}

func (s *Session) rootID() string {
	if s.RootID == "" {
		return RootID
	}
	return s.RootID
}
