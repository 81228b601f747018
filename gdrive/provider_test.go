package gdrive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jumpaku/go-drivecli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// newTestProvider starts a fake Drive endpoint served by handler.
func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	service, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return New(service)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestEscapeQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"with'quote", "with\\'quote"},
		{"with\\backslash", "with\\\\backslash"},
		{"mixed'and\\special", "mixed\\'and\\\\special"},
	}

	for _, tt := range tests {
		result := escapeQuery(tt.input)
		if result != tt.expected {
			t.Errorf("escapeQuery(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestNewRemoteObject(t *testing.T) {
	obj := newRemoteObject(&drive.File{
		Id:           "abc",
		Name:         "family",
		MimeType:     drivecli.MimeTypeFolder,
		Parents:      []string{"p1"},
		ModifiedTime: "2024-01-15T10:30:00Z",
	}, "fallback")

	assert.Equal(t, "abc", obj.ID)
	assert.Equal(t, "family", obj.Name)
	assert.True(t, obj.IsDir)
	assert.Equal(t, "p1", obj.ParentID)
	assert.Equal(t, 2024, obj.ModTime.Year())

	obj = newRemoteObject(&drive.File{Id: "f", Name: "x.jpg", MimeType: "image/jpeg", Size: 12}, "fallback")
	assert.False(t, obj.IsDir)
	assert.Equal(t, "fallback", obj.ParentID)
	assert.Equal(t, int64(12), obj.Size)
}

func TestProvider_FindChildren(t *testing.T) {
	var gotQuery string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		writeJSON(t, w, http.StatusOK, map[string]any{
			"files": []map[string]any{
				{"id": "d1", "name": "it's", "mimeType": drivecli.MimeTypeFolder, "parents": []string{"root"}},
			},
		})
	})

	objects, err := p.FindChildren(context.Background(), "root", "it's")
	require.NoError(t, err)
	assert.Equal(t, `name = 'it\'s' and 'root' in parents and trashed = false`, gotQuery)
	require.Len(t, objects, 1)
	assert.Equal(t, "d1", objects[0].ID)
	assert.True(t, objects[0].IsDir)
}

func TestProvider_ListChildren_Pages(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pageToken") {
		case "":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"nextPageToken": "next",
				"files":         []map[string]any{{"id": "a", "name": "a.txt", "mimeType": "text/plain"}},
			})
		case "next":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"files": []map[string]any{{"id": "b", "name": "b", "mimeType": drivecli.MimeTypeFolder}},
			})
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
	})

	objects, err := p.ListChildren(context.Background(), "parent")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "a.txt", objects[0].Name)
	assert.Equal(t, "parent", objects[0].ParentID)
	assert.True(t, objects[1].IsDir)
}

func TestProvider_CreateFolder(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body drive.File
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "images", body.Name)
		assert.Equal(t, drivecli.MimeTypeFolder, body.MimeType)
		assert.Equal(t, []string{"root"}, body.Parents)
		writeJSON(t, w, http.StatusOK, map[string]any{"id": "new", "name": body.Name, "mimeType": body.MimeType, "parents": body.Parents})
	})

	obj, err := p.CreateFolder(context.Background(), "root", "images")
	require.NoError(t, err)
	assert.Equal(t, "new", obj.ID)
	assert.True(t, obj.IsDir)
}

func TestProvider_Delete_NotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeJSON(t, w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"code": 404, "message": "File not found: gone."},
		})
	})

	err := p.Delete(context.Background(), "gone", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, drivecli.ErrProviderError))
	assert.True(t, errors.Is(err, drivecli.ErrNotFound))
}

func TestProvider_Delete_Trash(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/files/f1", r.URL.Path)
		var body drive.File
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Trashed)
		writeJSON(t, w, http.StatusOK, map[string]any{"id": "f1", "trashed": true})
	})

	require.NoError(t, p.Delete(context.Background(), "f1", true))
}

func TestProvider_Delete_ServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusForbidden, map[string]any{
			"error": map[string]any{"code": 403, "message": "insufficient permissions"},
		})
	})

	err := p.Delete(context.Background(), "f1", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, drivecli.ErrProviderError))
	assert.False(t, errors.Is(err, drivecli.ErrNotFound))
}

func TestProvider_DownloadBytes(t *testing.T) {
	files := map[string]string{
		"bin": "image/jpeg",
		"doc": "application/vnd.google-apps.document",
		"frm": "application/vnd.google-apps.form",
		"dir": drivecli.MimeTypeFolder,
	}
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/files/doc/export":
			assert.Equal(t, "text/plain", r.URL.Query().Get("mimeType"))
			_, _ = w.Write([]byte("exported text"))
		case r.URL.Query().Get("alt") == "media":
			assert.Equal(t, "/files/bin", r.URL.Path)
			_, _ = w.Write([]byte("binary content"))
		default:
			id := r.URL.Path[len("/files/"):]
			writeJSON(t, w, http.StatusOK, map[string]any{"id": id, "name": id, "mimeType": files[id]})
		}
	})

	data, err := p.DownloadBytes(context.Background(), "bin")
	require.NoError(t, err)
	assert.Equal(t, "binary content", string(data))

	data, err = p.DownloadBytes(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "exported text", string(data))

	_, err = p.DownloadBytes(context.Background(), "frm")
	assert.ErrorIs(t, err, drivecli.ErrNotReadable)

	_, err = p.DownloadBytes(context.Background(), "dir")
	assert.ErrorIs(t, err, drivecli.ErrNotReadable)
}
