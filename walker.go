package drivecli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// Direction tells which way a TransferItem moves data.
type Direction int

const (
	DirectionUpload Direction = iota
	DirectionDownload
)

func (d Direction) String() string {
	switch d {
	case DirectionUpload:
		return "upload"
	case DirectionDownload:
		return "download"
	default:
		return "unknown"
	}
}

// TransferItem maps one source location to one destination location.
// Directory items are only reported to observers; plans carry file items.
type TransferItem struct {
	Source      string
	Destination string
	IsDir       bool
	Direction   Direction

	// ParentID and Name locate the remote file an upload creates.
	ParentID string
	Name     string
	// ObjectID is the remote file a download reads.
	ObjectID string
}

// Plan is the flat result of walking a transfer tree.
type Plan struct {
	Items []TransferItem
	// Dirs counts the directories created while walking, including the transfer root
	// and any missing remote ancestors of the destination.
	Dirs int
	// Skipped lists sources that could not be mapped to the destination.
	Skipped []string
}

// Observer is notified once per object processed. err is nil for directories and
// successful transfers.
type Observer func(item TransferItem, err error)

// Walker recursively enumerates a local or remote tree and produces the transfer plan.
// Destination directories are created while walking, parent before children.
type Walker struct {
	resolver *Resolver
	provider Provider
	local    billy.Filesystem
	observe  Observer
}

// NewWalker creates a Walker. observe may be nil.
func NewWalker(resolver *Resolver, provider Provider, local billy.Filesystem, observe Observer) *Walker {
	if observe == nil {
		observe = func(TransferItem, error) {}
	}
	return &Walker{resolver: resolver, provider: provider, local: local, observe: observe}
}

// PlanUpload walks localPath and mirrors its directories under remote.
// remote must not exist yet; its missing ancestors are created.
func (w *Walker) PlanUpload(ctx context.Context, localPath string, remote Path) (plan Plan, err error) {
	remote, err = remote.Clean()
	if err != nil {
		return Plan{}, fmt.Errorf("path validation failed: %w", err)
	}
	if remote == RootPath {
		return Plan{}, fmt.Errorf("cannot upload onto the root directory: %w", ErrInvalidPath)
	}
	info, err := w.local.Stat(localPath)
	if err != nil {
		return Plan{}, newIOError(fmt.Sprintf("failed to stat '%s'", localPath), err)
	}
	exists, err := w.resolver.Exists(ctx, remote)
	if err != nil {
		return Plan{}, err
	}
	if exists {
		return Plan{}, fmt.Errorf("'%s' already exists in drive: %w", remote, ErrAlreadyExists)
	}

	created := func(path Path, dir RemoteObject) {
		plan.Dirs++
		item := TransferItem{Destination: string(path), IsDir: true, Direction: DirectionUpload, ObjectID: dir.ID}
		if path == remote {
			item.Source = localPath
		}
		w.observe(item, nil)
	}
	switch {
	case info.Mode().IsRegular():
		parent, err := w.resolver.mkdirAll(ctx, remote.Dir(), created)
		if err != nil {
			return Plan{}, err
		}
		plan.Items = append(plan.Items, uploadItem(localPath, remote, parent.ID))
	case info.IsDir():
		dir, err := w.resolver.mkdirAll(ctx, remote, created)
		if err != nil {
			return Plan{}, err
		}
		if err := w.uploadDir(ctx, localPath, remote, dir.ID, []os.FileInfo{info}, &plan); err != nil {
			return Plan{}, err
		}
	default:
		return Plan{}, newIOError(fmt.Sprintf("'%s' is neither a file nor a directory", localPath), nil)
	}
	return plan, nil
}

// uploadDir walks localDir. ancestors holds the directories on the current walk, localDir last;
// a symlink back to one of them is skipped.
func (w *Walker) uploadDir(ctx context.Context, localDir string, remoteDir Path, remoteDirID string, ancestors []os.FileInfo, plan *Plan) error {
	entries, err := w.local.ReadDir(localDir)
	if err != nil {
		return newIOError(fmt.Sprintf("failed to read directory '%s'", localDir), err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entry.Name()
		childLocal := w.local.Join(localDir, name)
		childRemote := remoteDir.Join(name)

		info := entry
		if info.Mode()&os.ModeSymlink != 0 {
			if info, err = w.local.Stat(childLocal); err != nil {
				return newIOError(fmt.Sprintf("failed to stat '%s'", childLocal), err)
			}
			if info.IsDir() && isAncestor(info, ancestors) {
				plan.Skipped = append(plan.Skipped, childLocal)
				continue
			}
		}

		switch {
		case info.IsDir():
			dir, err := w.provider.CreateFolder(ctx, remoteDirID, name)
			if err != nil {
				return fmt.Errorf("failed to create directory '%s': %w", childRemote, err)
			}
			plan.Dirs++
			w.observe(TransferItem{Source: childLocal, Destination: string(childRemote), IsDir: true, Direction: DirectionUpload, ObjectID: dir.ID}, nil)
			if err := w.uploadDir(ctx, childLocal, childRemote, dir.ID, append(ancestors, info), plan); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			plan.Items = append(plan.Items, uploadItem(childLocal, childRemote, remoteDirID))
		default:
			plan.Skipped = append(plan.Skipped, childLocal)
		}
	}
	return nil
}

func isAncestor(dir os.FileInfo, ancestors []os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(dir, a) {
			return true
		}
	}
	return false
}

func uploadItem(localPath string, remote Path, parentID string) TransferItem {
	return TransferItem{
		Source:      localPath,
		Destination: string(remote),
		Direction:   DirectionUpload,
		ParentID:    parentID,
		Name:        remote.Base(),
	}
}

// PlanDownload walks remote and mirrors its directories under localPath.
// localPath must not exist yet.
func (w *Walker) PlanDownload(ctx context.Context, remote Path, localPath string) (plan Plan, err error) {
	remote, err = remote.Clean()
	if err != nil {
		return Plan{}, fmt.Errorf("path validation failed: %w", err)
	}
	if _, err := w.local.Stat(localPath); err == nil {
		return Plan{}, fmt.Errorf("'%s' already exists: %w", localPath, ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return Plan{}, newIOError(fmt.Sprintf("failed to stat '%s'", localPath), err)
	}
	obj, err := w.resolver.Resolve(ctx, remote)
	if err != nil {
		return Plan{}, err
	}

	if !obj.IsDir {
		plan.Items = append(plan.Items, downloadItem(remote, localPath, obj.ID))
		return plan, nil
	}
	if err := w.local.MkdirAll(localPath, 0o755); err != nil {
		return Plan{}, newIOError(fmt.Sprintf("failed to create directory '%s'", localPath), err)
	}
	plan.Dirs++
	w.observe(TransferItem{Source: string(remote), Destination: localPath, IsDir: true, Direction: DirectionDownload, ObjectID: obj.ID}, nil)
	if err := w.downloadDir(ctx, remote, obj.ID, localPath, &plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func (w *Walker) downloadDir(ctx context.Context, remoteDir Path, remoteDirID string, localDir string, plan *Plan) error {
	children, err := w.provider.ListChildren(ctx, remoteDirID)
	if err != nil {
		return fmt.Errorf("failed to list '%s': %w", remoteDir, err)
	}
	used := map[string]bool{}
	for _, child := range children {
		if !isPortableName(child.Name) {
			continue
		}
		if used[child.Name] {
			return fmt.Errorf("more than one object named '%s' in '%s': %w", child.Name, remoteDir, ErrAlreadyExists)
		}
		used[child.Name] = true
	}
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return err
		}
		childRemote := remoteDir.Join(child.Name)
		if !isPortableName(child.Name) {
			plan.Skipped = append(plan.Skipped, string(childRemote))
			continue
		}
		childLocal := w.local.Join(localDir, child.Name)

		if !child.IsDir {
			plan.Items = append(plan.Items, downloadItem(childRemote, childLocal, child.ID))
			continue
		}
		if err := w.local.MkdirAll(childLocal, 0o755); err != nil {
			return newIOError(fmt.Sprintf("failed to create directory '%s'", childLocal), err)
		}
		plan.Dirs++
		w.observe(TransferItem{Source: string(childRemote), Destination: childLocal, IsDir: true, Direction: DirectionDownload, ObjectID: child.ID}, nil)
		if err := w.downloadDir(ctx, childRemote, child.ID, childLocal, plan); err != nil {
			return err
		}
	}
	return nil
}

func downloadItem(remote Path, localPath string, id string) TransferItem {
	return TransferItem{
		Source:      string(remote),
		Destination: localPath,
		Direction:   DirectionDownload,
		Name:        remote.Base(),
		ObjectID:    id,
	}
}

// isPortableName rejects remote names that cannot be a single local path component.
func isPortableName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
