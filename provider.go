package drivecli

import (
	"context"
)

// Provider is the remote storage API the client drives.
// Every method may fail with an error wrapping ErrProviderError.
type Provider interface {
	// FindChildren returns the non-trashed children of parentID whose name equals name.
	FindChildren(ctx context.Context, parentID, name string) ([]RemoteObject, error)
	// ListChildren returns all non-trashed children of parentID.
	ListChildren(ctx context.Context, parentID string) ([]RemoteObject, error)
	// CreateFolder creates a folder named name in parentID.
	CreateFolder(ctx context.Context, parentID, name string) (RemoteObject, error)
	// UploadBytes creates a file named name in parentID with the given content.
	UploadBytes(ctx context.Context, parentID, name string, data []byte) (RemoteObject, error)
	// DownloadBytes returns the content of the file id.
	DownloadBytes(ctx context.Context, id string) ([]byte, error)
	// Delete removes id and its descendants, moving them to the trash if trash is true.
	// It fails with ErrNotFound if id does not exist.
	Delete(ctx context.Context, id string, trash bool) error
}
