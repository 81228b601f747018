// Package gdrive implements drivecli.Provider on top of the Google Drive v3 API.
package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Jumpaku/go-drivecli"
	derrors "github.com/Jumpaku/go-drivecli/errors"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

const (
	mimeTypeGoogleDocument     = "application/vnd.google-apps.document"
	mimeTypeGoogleSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	mimeTypeGooglePresentation = "application/vnd.google-apps.presentation"
	mimeTypeGoogleDrawing      = "application/vnd.google-apps.drawing"
)

// exportMimeTypes maps provider-native documents to the format they are downloaded as.
var exportMimeTypes = map[string]string{
	mimeTypeGoogleDocument:     "text/plain",
	mimeTypeGoogleSpreadsheet:  "text/csv",
	mimeTypeGooglePresentation: "application/pdf",
	mimeTypeGoogleDrawing:      "image/png",
}

const (
	driveFileFields  = "parents,id,name,mimeType,size,modifiedTime"
	driveFilesFields = "nextPageToken,files(parents,id,name,mimeType,size,modifiedTime)"
)

// Provider accesses the files of an authenticated drive.Service.
type Provider struct {
	service *drive.Service
}

var _ drivecli.Provider = (*Provider)(nil)

// New creates a new Provider with the given drive.Service.
func New(service *drive.Service) *Provider {
	return &Provider{service: service}
}

// FindChildren lists the non-trashed files named name in parentID.
func (p *Provider) FindChildren(ctx context.Context, parentID, name string) ([]drivecli.RemoteObject, error) {
	q := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escapeQuery(name), escapeQuery(parentID))
	files, err := queryFiles(ctx, p.service, q)
	if err != nil {
		return nil, fmt.Errorf("failed to find '%s': %w", name, err)
	}
	return newRemoteObjects(files, parentID), nil
}

// ListChildren lists the non-trashed files in parentID.
func (p *Provider) ListChildren(ctx context.Context, parentID string) ([]drivecli.RemoteObject, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(parentID))
	files, err := queryFiles(ctx, p.service, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory contents: %w", err)
	}
	return newRemoteObjects(files, parentID), nil
}

// CreateFolder creates a directory with the given name in parentID.
func (p *Provider) CreateFolder(ctx context.Context, parentID, name string) (drivecli.RemoteObject, error) {
	f, err := p.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: drivecli.MimeTypeFolder,
		Parents:  []string{parentID},
	}).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(driveFileFields).
		Do()
	if err != nil {
		return drivecli.RemoteObject{}, newDriveError("failed to create directory", err)
	}
	return newRemoteObject(f, parentID), nil
}

// UploadBytes creates a file with the given name and content in parentID.
func (p *Provider) UploadBytes(ctx context.Context, parentID, name string, data []byte) (drivecli.RemoteObject, error) {
	f, err := p.service.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{parentID},
	}).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(driveFileFields).
		Media(bytes.NewReader(data)).
		Do()
	if err != nil {
		return drivecli.RemoteObject{}, newDriveError("failed to upload file", err)
	}
	return newRemoteObject(f, parentID), nil
}

// DownloadBytes reads the content of the file id. Google Docs, Sheets, Slides and Drawings
// are exported; other Google-apps files fail with ErrNotReadable.
func (p *Provider) DownloadBytes(ctx context.Context, id string) (data []byte, err error) {
	file, err := p.service.Files.Get(id).
		Context(ctx).
		SupportsAllDrives(true).
		Fields(driveFileFields).
		Do()
	if err != nil {
		return nil, newDriveError("failed to get file", err)
	}
	if file.MimeType == drivecli.MimeTypeFolder {
		return nil, fmt.Errorf("'%s' is a directory: %w", file.Name, derrors.ErrNotReadable)
	}

	var resp *http.Response
	if exportMime, ok := exportMimeTypes[file.MimeType]; ok {
		resp, err = p.service.Files.Export(id, exportMime).Context(ctx).Download()
	} else if strings.HasPrefix(file.MimeType, "application/vnd.google-apps.") {
		return nil, fmt.Errorf("cannot download google-apps file of type %s: %w", file.MimeType, derrors.ErrNotReadable)
	} else {
		resp, err = p.service.Files.Get(id).Context(ctx).SupportsAllDrives(true).Download()
	}
	if err != nil {
		return nil, newDriveError("failed to download file", err)
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			closeErr = derrors.NewIOError("failed to close file body", closeErr)
		}
		err = errors.Join(err, closeErr)
	}()

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, derrors.NewProviderError("failed to read file body", err)
	}
	return data, nil
}

// Delete moves the file or directory id to the trash or deletes it permanently.
func (p *Provider) Delete(ctx context.Context, id string, trash bool) error {
	if trash {
		_, err := p.service.Files.Update(id, &drive.File{Trashed: true}).
			Context(ctx).
			SupportsAllDrives(true).
			Do()
		if err != nil {
			return newDriveError("failed to move file to trash", err)
		}
		return nil
	}
	err := p.service.Files.Delete(id).
		Context(ctx).
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return newDriveError("failed to delete file", err)
	}
	return nil
}

func queryFiles(ctx context.Context, s *drive.Service, query string) (results []*drive.File, err error) {
	err = s.Files.List().
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Q(query).
		Fields(driveFilesFields).
		Pages(ctx, func(list *drive.FileList) error {
			results = append(results, list.Files...)
			return nil
		})
	if err != nil {
		return nil, newDriveError("failed to query files", err)
	}
	return results, nil
}

// newDriveError wraps a Drive API failure; a 404 response additionally matches ErrNotFound.
func newDriveError(msg string, cause error) error {
	var gErr *googleapi.Error
	if errors.As(cause, &gErr) && gErr.Code == http.StatusNotFound {
		return derrors.NewProviderError(msg, errors.Join(derrors.ErrNotFound, cause))
	}
	return derrors.NewProviderError(msg, cause)
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return s
}

func newRemoteObjects(files []*drive.File, parentID string) []drivecli.RemoteObject {
	objects := make([]drivecli.RemoteObject, 0, len(files))
	for _, f := range files {
		objects = append(objects, newRemoteObject(f, parentID))
	}
	return objects
}

func newRemoteObject(f *drive.File, parentID string) drivecli.RemoteObject {
	modTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	if len(f.Parents) > 0 {
		parentID = f.Parents[0]
	}
	return drivecli.RemoteObject{
		ID:       f.Id,
		Name:     f.Name,
		IsDir:    f.MimeType == drivecli.MimeTypeFolder,
		ParentID: parentID,
		MimeType: f.MimeType,
		Size:     f.Size,
		ModTime:  modTime,
	}
}
