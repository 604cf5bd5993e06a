package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, []byte(`{"a":1}`)))
	require.NoError(t, s.Save(ctx, []byte(`{"a":2}`)))

	data, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))
	require.NoError(t, s.Close())
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	roundTrip(t, s)

	// a second store on the same path sees the saved snapshot
	again, err := NewFileStore(path)
	require.NoError(t, err)
	data, err := again.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))
}

func TestMemStore_RoundTrip(t *testing.T) {
	s := NewMemStore("x")
	assert.Equal(t, "mem://x", s.URI())
	roundTrip(t, s)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemStore("")
	require.ErrorIs(t, s.Save(ctx, []byte("x")), context.Canceled)
	_, err := s.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGitStore_CommitsEverySave(t *testing.T) {
	s, err := NewMemoryGitStore("doc.json", GitConfig{AuthorName: "tester", AuthorEmail: "t@example.com"})
	require.NoError(t, err)

	revs, err := s.Revisions(0)
	require.NoError(t, err)
	assert.Empty(t, revs)

	roundTrip(t, s)

	// identical bytes: no new commit
	require.NoError(t, s.Save(context.Background(), []byte(`{"a":2}`)))

	revs, err = s.Revisions(0)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Contains(t, revs[0].Message, "doc.json")

	revs, err = s.Revisions(1)
	require.NoError(t, err)
	assert.Len(t, revs, 1)
}

func TestGitStore_OnDiskReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewGitStore(dir, "doc.json", GitConfig{})
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), []byte("v1")))

	again, err := NewGitStore(dir, "doc.json", GitConfig{})
	require.NoError(t, err)
	data, err := again.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	revs, err := again.Revisions(0)
	require.NoError(t, err)
	assert.Len(t, revs, 1)
}

func TestGitStore_IgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewGitStore(dir, "doc.json", GitConfig{})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, []byte(`{"a":1}`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644))

	require.NoError(t, s.Save(ctx, []byte(`{"a":1}`)))
	require.NoError(t, s.Save(ctx, []byte(`{"a":1}`)))

	revs, err := s.Revisions(0)
	require.NoError(t, err)
	assert.Len(t, revs, 1)

	require.NoError(t, s.Save(ctx, []byte(`{"a":2}`)))
	revs, err = s.Revisions(0)
	require.NoError(t, err)
	assert.Len(t, revs, 2)
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := NewS3StoreWithClient(fake, "bucket", "dir/doc.json")
	assert.Equal(t, "s3://bucket/dir/doc.json", s.URI())
	roundTrip(t, s)
	assert.Contains(t, fake.objects, "bucket/dir/doc.json")
}

func TestParseS3URI(t *testing.T) {
	b, k, err := parseS3URI("s3://bucket/a/b.json")
	require.NoError(t, err)
	assert.Equal(t, "bucket", b)
	assert.Equal(t, "a/b.json", k)

	for _, bad := range []string{"s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := parseS3URI(bad)
		require.Error(t, err, bad)
	}
}

func TestHTTPStore_ReadOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doc.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"a":1}`))
	}))
	defer srv.Close()

	s, err := Open(context.Background(), srv.URL+"/doc.json", Options{HTTPClient: srv.Client()})
	require.NoError(t, err)
	data, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
	require.ErrorIs(t, s.Save(context.Background(), data), ErrReadOnly)
	assert.True(t, IsReadOnly(s))
	assert.False(t, IsReadOnly(NewMemStore("x")))

	missing := NewHTTPStore(srv.URL+"/nope", srv.Client())
	_, err = missing.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_Schemes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, "mem://doc", Options{})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, filepath.Join(dir, "plain.json"), Options{})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, "file://"+filepath.Join(dir, "f.json"), Options{})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, "git://"+filepath.Join(dir, "repo", "doc.json"), Options{})
	require.NoError(t, err)
	assert.IsType(t, &GitStore{}, s)

	_, err = Open(ctx, "ftp://host/doc", Options{})
	require.Error(t, err)

	assert.Equal(t, schemeS3, detectScheme("S3://b/k"))
	assert.Equal(t, schemeLocal, detectScheme("./data/doc.json"))
}
