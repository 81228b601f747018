// Package driveclimust wraps the drivecli package with panic-based error handling.
//
// It provides the same operations as drivecli.Client, but instead of returning
// errors, all exported methods panic on failure. It suits scripts and tests where
// any failure should stop the program.
package driveclimust

import (
	"context"

	"github.com/Jumpaku/go-drivecli"
)

// Client provides list, upload, download and remove against a drivecli.Session.
//
// All methods of Client panic on error instead of returning an error value.
type Client struct {
	client *drivecli.Client
}

// New creates a new Client over session.
func New(session *drivecli.Session, opts ...drivecli.ClientOption) *Client {
	return &Client{client: drivecli.New(session, opts...)}
}

// Resolve returns the object at path.
//
// It panics if the path is invalid, does not exist (the underlying error would be
// ErrNotFound) or matches several objects under strict resolution.
func (c *Client) Resolve(ctx context.Context, path drivecli.Path) (object drivecli.RemoteObject) {
	return must1(c.client.Resolver().Resolve(ctx, path))
}

// MkdirAll creates all directories along path if they do not already exist.
// Returns the last directory of the path.
//
// It panics if creating any directory fails.
func (c *Client) MkdirAll(ctx context.Context, path drivecli.Path) (dir drivecli.RemoteObject) {
	return must1(c.client.Resolver().MkdirAll(ctx, path))
}

// List returns the children of the directory at path, or the object itself if path is a file.
//
// It panics if resolving or listing fails.
func (c *Client) List(ctx context.Context, path drivecli.Path) (objects []drivecli.RemoteObject) {
	return must1(c.client.List(ctx, path))
}

// Upload copies the local file or directory tree at localPath to remote.
//
// It panics if planning fails or any item fails to transfer.
func (c *Client) Upload(ctx context.Context, localPath string, remote drivecli.Path) (report drivecli.Report) {
	return must1(c.client.Upload(ctx, localPath, remote))
}

// Download copies the remote file or directory tree at remote to localPath.
//
// It panics if planning fails or any item fails to transfer, including for
// provider-native documents that cannot be exported (ErrNotReadable).
func (c *Client) Download(ctx context.Context, remote drivecli.Path, localPath string) (report drivecli.Report) {
	return must1(c.client.Download(ctx, remote, localPath))
}

// Remove deletes the object at path, moving it to the trash when trash is true.
//
// It panics if removal fails.
func (c *Client) Remove(ctx context.Context, path drivecli.Path, trash bool) {
	_ = must1(c.client.Remove(ctx, path, trash))
}
