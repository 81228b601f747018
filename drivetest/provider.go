// Package drivetest provides an in-memory drivecli.Provider for tests.
package drivetest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Jumpaku/go-drivecli"
	derrors "github.com/Jumpaku/go-drivecli/errors"
)

// Operation names counted by Provider.Calls.
const (
	OpFindChildren  = "FindChildren"
	OpListChildren  = "ListChildren"
	OpCreateFolder  = "CreateFolder"
	OpUploadBytes   = "UploadBytes"
	OpDownloadBytes = "DownloadBytes"
	OpDelete        = "Delete"
)

type node struct {
	object   drivecli.RemoteObject
	data     []byte
	children []string
	trashed  bool
}

// Provider is an in-memory remote namespace. It is safe for concurrent use.
type Provider struct {
	mu     sync.Mutex
	nodes  map[string]*node
	nextID int
	calls  map[string]int

	// Fail, if set, is consulted before every operation with the operation name and
	// the name or ID it targets. A non-nil result is returned as a provider error.
	Fail func(op, target string) error
}

var _ drivecli.Provider = (*Provider)(nil)

// New creates an empty namespace containing only the root folder.
func New() *Provider {
	return &Provider{
		nodes: map[string]*node{
			drivecli.RootID: {object: drivecli.RemoteObject{ID: drivecli.RootID, IsDir: true, MimeType: drivecli.MimeTypeFolder}},
		},
		calls: map[string]int{},
	}
}

// Calls returns how many times op has been invoked.
func (p *Provider) Calls(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// ResetCalls zeroes all call counters.
func (p *Provider) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = map[string]int{}
}

// AddFolder creates a folder without counting a call and returns its ID.
func (p *Provider) AddFolder(parentID, name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.add(parentID, name, drivecli.MimeTypeFolder, nil).ID
}

// AddFile creates a file without counting a call and returns its ID.
func (p *Provider) AddFile(parentID, name string, data []byte) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.add(parentID, name, "application/octet-stream", data).ID
}

// AddAppFile creates a provider-native document that has no downloadable content.
func (p *Provider) AddAppFile(parentID, name, mimeType string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.add(parentID, name, mimeType, nil).ID
}

// Lookup resolves a slash separated path from the root without counting calls.
// The first visible match wins at every level.
func (p *Provider) Lookup(path string) (drivecli.RemoteObject, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	current := p.nodes[drivecli.RootID]
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		var next *node
		for _, id := range current.children {
			if c := p.nodes[id]; !c.trashed && c.object.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return drivecli.RemoteObject{}, false
		}
		current = next
	}
	return current.object, true
}

// Content returns the data of the file id.
func (p *Provider) Content(id string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[id]
	if !ok || n.object.IsDir {
		return nil, false
	}
	return append([]byte(nil), n.data...), true
}

// Trashed reports whether id exists and has been moved to the trash.
func (p *Provider) Trashed(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[id]
	return ok && n.trashed
}

func (p *Provider) FindChildren(ctx context.Context, parentID, name string) ([]drivecli.RemoteObject, error) {
	if err := p.enter(ctx, OpFindChildren, name); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var found []drivecli.RemoteObject
	for _, o := range p.visibleChildren(parentID) {
		if o.Name == name {
			found = append(found, o)
		}
	}
	return found, nil
}

func (p *Provider) ListChildren(ctx context.Context, parentID string) ([]drivecli.RemoteObject, error) {
	if err := p.enter(ctx, OpListChildren, parentID); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visibleChildren(parentID), nil
}

func (p *Provider) CreateFolder(ctx context.Context, parentID, name string) (drivecli.RemoteObject, error) {
	if err := p.enter(ctx, OpCreateFolder, name); err != nil {
		return drivecli.RemoteObject{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkParent(parentID); err != nil {
		return drivecli.RemoteObject{}, err
	}
	return p.add(parentID, name, drivecli.MimeTypeFolder, nil), nil
}

func (p *Provider) UploadBytes(ctx context.Context, parentID, name string, data []byte) (drivecli.RemoteObject, error) {
	if err := p.enter(ctx, OpUploadBytes, name); err != nil {
		return drivecli.RemoteObject{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkParent(parentID); err != nil {
		return drivecli.RemoteObject{}, err
	}
	return p.add(parentID, name, "application/octet-stream", append([]byte(nil), data...)), nil
}

func (p *Provider) DownloadBytes(ctx context.Context, id string) ([]byte, error) {
	if err := p.enter(ctx, OpDownloadBytes, id); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[id]
	if !ok || n.trashed {
		return nil, fmt.Errorf("file '%s' not found: %w", id, derrors.ErrNotFound)
	}
	if n.object.IsDir || n.object.IsAppFile() {
		return nil, fmt.Errorf("cannot download '%s': %w", n.object.Name, derrors.ErrNotReadable)
	}
	return append([]byte(nil), n.data...), nil
}

func (p *Provider) Delete(ctx context.Context, id string, trash bool) error {
	if err := p.enter(ctx, OpDelete, id); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[id]
	if !ok || n.trashed || id == drivecli.RootID {
		return fmt.Errorf("file '%s' not found: %w", id, derrors.ErrNotFound)
	}
	if trash {
		n.trashed = true
		return nil
	}
	p.purge(id)
	if parent, ok := p.nodes[n.object.ParentID]; ok {
		for i, c := range parent.children {
			if c == id {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (p *Provider) enter(ctx context.Context, op, target string) error {
	p.mu.Lock()
	p.calls[op]++
	fail := p.Fail
	p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if fail != nil {
		if err := fail(op, target); err != nil {
			return derrors.NewProviderError(fmt.Sprintf("%s failed", op), err)
		}
	}
	return nil
}

func (p *Provider) visibleChildren(parentID string) []drivecli.RemoteObject {
	parent, ok := p.nodes[parentID]
	if !ok || parent.trashed {
		return nil
	}
	var children []drivecli.RemoteObject
	for _, id := range parent.children {
		if c := p.nodes[id]; !c.trashed {
			children = append(children, c.object)
		}
	}
	return children
}

func (p *Provider) checkParent(parentID string) error {
	parent, ok := p.nodes[parentID]
	if !ok || parent.trashed || !parent.object.IsDir {
		return derrors.NewProviderError("invalid parent", fmt.Errorf("folder '%s': %w", parentID, derrors.ErrNotFound))
	}
	return nil
}

func (p *Provider) add(parentID, name, mimeType string, data []byte) drivecli.RemoteObject {
	p.nextID++
	obj := drivecli.RemoteObject{
		ID:       fmt.Sprintf("id-%d", p.nextID),
		Name:     name,
		IsDir:    mimeType == drivecli.MimeTypeFolder,
		ParentID: parentID,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}
	p.nodes[obj.ID] = &node{object: obj, data: data}
	if parent, ok := p.nodes[parentID]; ok {
		parent.children = append(parent.children, obj.ID)
	}
	return obj
}

func (p *Provider) purge(id string) {
	n, ok := p.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.children {
		p.purge(c)
	}
	delete(p.nodes, id)
}
