package drivecli

import (
	"strings"
	"time"
)

const (
	MimeTypeFolder          = "application/vnd.google-apps.folder"
	mimeTypePrefixGoogleApp = "application/vnd.google-apps."
)

// RootID is the identifier the provider accepts as an alias of the user's root folder.
const RootID = "root"

// RemoteObject is a read-through view of one object in the remote namespace.
type RemoteObject struct {
	ID       string
	Name     string
	IsDir    bool
	ParentID string
	MimeType string
	Size     int64
	ModTime  time.Time
}

// IsAppFile reports whether the object is a provider-native document (Docs, Sheets, ...)
// that has no binary content of its own.
func (o RemoteObject) IsAppFile() bool {
	return !o.IsDir && strings.HasPrefix(o.MimeType, mimeTypePrefixGoogleApp)
}

func rootObject(rootID string) RemoteObject {
	return RemoteObject{ID: rootID, IsDir: true, MimeType: MimeTypeFolder}
}
