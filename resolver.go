package drivecli

import (
	"context"
	"errors"
	"fmt"
)

// Resolver translates remote paths into remote objects by walking the namespace
// one segment at a time from the root.
type Resolver struct {
	provider Provider
	rootID   string
	strict   bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithStrict makes resolution fail with ErrAmbiguousPath when a segment matches more than one object.
// Without it the first match wins.
func WithStrict(strict bool) ResolverOption {
	return func(r *Resolver) {
		r.strict = strict
	}
}

// WithRootID sets the folder that "/" refers to.
func WithRootID(rootID string) ResolverOption {
	return func(r *Resolver) {
		if rootID != "" {
			r.rootID = rootID
		}
	}
}

// NewResolver creates a Resolver over provider.
func NewResolver(provider Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{provider: provider, rootID: RootID}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the object at path. Each segment costs one provider lookup.
// Segments other than the last must resolve to directories.
func (r *Resolver) Resolve(ctx context.Context, path Path) (RemoteObject, error) {
	parts, err := path.Segments()
	if err != nil {
		return RemoteObject{}, fmt.Errorf("path validation failed: %w", err)
	}
	current := rootObject(r.rootID)
	for i, name := range parts {
		last := i == len(parts)-1
		next, err := r.lookup(ctx, current.ID, name, !last)
		if err != nil {
			return RemoteObject{}, fmt.Errorf("failed to resolve '%s': %w", path, err)
		}
		current = next
	}
	return current, nil
}

// Exists reports whether path resolves to an object.
func (r *Resolver) Exists(ctx context.Context, path Path) (bool, error) {
	_, err := r.Resolve(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MkdirAll creates all directories along path if they do not already exist
// and returns the last one. Files never satisfy a segment, so a folder is created
// next to a file of the same name.
func (r *Resolver) MkdirAll(ctx context.Context, path Path) (RemoteObject, error) {
	return r.mkdirAll(ctx, path, nil)
}

// mkdirAll is MkdirAll calling created for every folder it had to create, parent first.
func (r *Resolver) mkdirAll(ctx context.Context, path Path, created func(Path, RemoteObject)) (RemoteObject, error) {
	parts, err := path.Segments()
	if err != nil {
		return RemoteObject{}, fmt.Errorf("path validation failed: %w", err)
	}
	current, currentPath := rootObject(r.rootID), RootPath
	for _, name := range parts {
		currentPath = currentPath.Join(name)
		next, err := r.lookup(ctx, current.ID, name, true)
		switch {
		case err == nil:
			current = next
		case errors.Is(err, ErrNotFound):
			folder, err := r.provider.CreateFolder(ctx, current.ID, name)
			if err != nil {
				return RemoteObject{}, fmt.Errorf("failed to create directory '%s' in '%s': %w", name, current.ID, err)
			}
			current = folder
			if created != nil {
				created(currentPath, folder)
			}
		default:
			return RemoteObject{}, err
		}
	}
	return current, nil
}

func (r *Resolver) lookup(ctx context.Context, parentID, name string, dirOnly bool) (RemoteObject, error) {
	found, err := r.provider.FindChildren(ctx, parentID, name)
	if err != nil {
		return RemoteObject{}, fmt.Errorf("failed to find '%s' in '%s': %w", name, parentID, err)
	}
	candidates := found[:0:0]
	for _, o := range found {
		if dirOnly && !o.IsDir {
			continue
		}
		candidates = append(candidates, o)
	}
	if len(candidates) == 0 {
		return RemoteObject{}, fmt.Errorf("'%s' not found in '%s': %w", name, parentID, ErrNotFound)
	}
	if r.strict && len(candidates) > 1 {
		return RemoteObject{}, fmt.Errorf("%d objects named '%s' in '%s': %w", len(candidates), name, parentID, ErrAmbiguousPath)
	}
	return candidates[0], nil
}
