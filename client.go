package drivecli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Client exposes list, upload, download and remove against the remote namespace of a Session.
type Client struct {
	session  *Session
	resolver *Resolver
	workers  int
	observe  Observer
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	strict  bool
	workers int
	observe Observer
}

// WithStrictPaths makes every path lookup fail with ErrAmbiguousPath on duplicate names.
func WithStrictPaths(strict bool) ClientOption {
	return func(c *clientConfig) {
		c.strict = strict
	}
}

// WithWorkers sets how many transfers run at once. 1 (the default) transfers sequentially.
func WithWorkers(workers int) ClientOption {
	return func(c *clientConfig) {
		c.workers = workers
	}
}

// WithObserver registers a callback invoked once per directory created and file transferred.
func WithObserver(observe Observer) ClientOption {
	return func(c *clientConfig) {
		c.observe = observe
	}
}

// New creates a new Client over session.
func New(session *Session, opts ...ClientOption) *Client {
	cfg := clientConfig{workers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		session:  session,
		resolver: NewResolver(session.Provider, WithRootID(session.rootID()), WithStrict(cfg.strict)),
		workers:  cfg.workers,
		observe:  cfg.observe,
	}
}

// Resolver returns the resolver the client looks paths up with.
func (c *Client) Resolver() *Resolver {
	return c.resolver
}

// List returns the children of the directory at path, or the object itself if path is a file.
func (c *Client) List(ctx context.Context, path Path) (objects []RemoteObject, err error) {
	obj, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	if !obj.IsDir {
		return []RemoteObject{obj}, nil
	}
	objects, err = c.session.Provider.ListChildren(ctx, obj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory contents: %w", err)
	}
	return objects, nil
}

// Upload copies the local file or directory tree at localPath to remote.
func (c *Client) Upload(ctx context.Context, localPath string, remote Path) (Report, error) {
	localPath, err := c.absLocal(localPath)
	if err != nil {
		return Report{}, err
	}
	plan, err := c.walker().PlanUpload(ctx, localPath, remote)
	if err != nil {
		return Report{}, err
	}
	return c.executor().Run(ctx, plan)
}

// Download copies the remote file or directory tree at remote to localPath.
// A localPath of "." or "./" means a new entry named after remote in the working directory.
func (c *Client) Download(ctx context.Context, remote Path, localPath string) (Report, error) {
	if localPath == "." || localPath == "./" {
		name := remote.Base()
		if name == "" {
			return Report{}, fmt.Errorf("a destination name is required to download the root directory: %w", ErrInvalidPath)
		}
		localPath = name
	}
	localPath, err := c.absLocal(localPath)
	if err != nil {
		return Report{}, err
	}
	plan, err := c.walker().PlanDownload(ctx, remote, localPath)
	if err != nil {
		return Report{}, err
	}
	return c.executor().Run(ctx, plan)
}

// Remove deletes the object at path together with its descendants.
// With trash the objects are moved to the trash instead of being deleted permanently.
func (c *Client) Remove(ctx context.Context, path Path, trash bool) (RemoteObject, error) {
	parts, err := path.Segments()
	if err != nil {
		return RemoteObject{}, fmt.Errorf("path validation failed: %w", err)
	}
	if len(parts) == 0 {
		return RemoteObject{}, fmt.Errorf("cannot remove the root directory: %w", ErrInvalidPath)
	}
	obj, err := c.resolver.Resolve(ctx, path)
	if err != nil {
		return RemoteObject{}, err
	}
	if err := c.session.Provider.Delete(ctx, obj.ID, trash); err != nil {
		return RemoteObject{}, fmt.Errorf("failed to remove '%s': %w", path, err)
	}
	return obj, nil
}

func (c *Client) walker() *Walker {
	return NewWalker(c.resolver, c.session.Provider, c.session.Local, c.observe)
}

func (c *Client) executor() *Executor {
	return NewExecutor(c.session.Provider, c.session.Local, c.workers, c.observe)
}

func (c *Client) absLocal(localPath string) (string, error) {
	if filepath.IsAbs(localPath) {
		return filepath.Clean(localPath), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", newIOError("failed to get working directory", err)
	}
	return filepath.Join(wd, localPath), nil
}
