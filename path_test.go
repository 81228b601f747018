package drivecli_test

import (
	"testing"

	"github.com/Jumpaku/go-drivecli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_Segments(t *testing.T) {
	cases := []struct {
		path    drivecli.Path
		want    []string
		wantErr bool
	}{
		{path: "/", want: nil},
		{path: "/images", want: []string{"images"}},
		{path: "/images/family/", want: []string{"images", "family"}},
		{path: "images//family", want: []string{"images", "family"}},
		{path: "", wantErr: true},
		{path: "/images/../etc", wantErr: true},
		{path: "/./images", wantErr: true},
	}
	for _, c := range cases {
		t.Run(string(c.path), func(t *testing.T) {
			got, err := c.path.Segments()
			if c.wantErr {
				require.ErrorIs(t, err, drivecli.ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestPath_JoinBaseDir(t *testing.T) {
	assert.Equal(t, drivecli.Path("/a/b"), drivecli.Path("/a").Join("b"))
	assert.Equal(t, drivecli.Path("/b"), drivecli.RootPath.Join("b"))

	assert.Equal(t, "x.jpg", drivecli.Path("/docs/x.jpg").Base())
	assert.Equal(t, "docs", drivecli.Path("/docs/").Base())
	assert.Equal(t, "", drivecli.RootPath.Base())

	assert.Equal(t, drivecli.Path("/docs"), drivecli.Path("/docs/x.jpg").Dir())
	assert.Equal(t, drivecli.RootPath, drivecli.Path("/docs").Dir())
	assert.Equal(t, drivecli.RootPath, drivecli.Path("docs").Dir())
}

func TestPath_Clean(t *testing.T) {
	got, err := drivecli.Path("images//family/").Clean()
	require.NoError(t, err)
	assert.Equal(t, drivecli.Path("/images/family"), got)

	got, err = drivecli.Path("///").Clean()
	require.NoError(t, err)
	assert.Equal(t, drivecli.RootPath, got)

	_, err = drivecli.Path("/a/..").Clean()
	assert.ErrorIs(t, err, drivecli.ErrInvalidPath)
}

func TestIsPortableName(t *testing.T) {
	assert.True(t, drivecli.IsPortableName("photo.jpg"))
	assert.False(t, drivecli.IsPortableName(""))
	assert.False(t, drivecli.IsPortableName(".."))
	assert.False(t, drivecli.IsPortableName("a/b"))
	assert.False(t, drivecli.IsPortableName(`a\b`))
}
