// Package storage persists encoded document snapshots. A Store only moves bytes;
// encoding the document is the job of a Codec.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned by Load when nothing has been saved yet.
	ErrNotFound = errors.New("storage: snapshot not found")
	// ErrReadOnly is returned by Save on stores that cannot be written.
	ErrReadOnly = errors.New("storage: store is read-only")
)

// Store holds exactly one snapshot.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
	// URI is the location the store was opened from.
	URI() string
}

// IsReadOnly reports whether s refuses every Save. Stores opt in by
// implementing ReadOnly() bool.
func IsReadOnly(s Store) bool {
	ro, ok := s.(interface{ ReadOnly() bool })
	return ok && ro.ReadOnly()
}

type S3Config struct {
	Region    string
	Endpoint  string // optional S3-compatible endpoint, enables path-style addressing
	AccessKey string
	SecretKey string
}

type GitConfig struct {
	AuthorName  string
	AuthorEmail string
}

type Options struct {
	S3         S3Config
	Git        GitConfig
	HTTPClient *http.Client
}

type scheme string

const (
	schemeFile  scheme = "file"
	schemeMem   scheme = "mem"
	schemeGit   scheme = "git"
	schemeS3    scheme = "s3"
	schemeHTTP  scheme = "http"
	schemeHTTPS scheme = "https"
	schemeLocal scheme = "local" // no scheme, plain path
)

func detectScheme(uri string) scheme {
	lower := strings.ToLower(uri)
	switch {
	case strings.HasPrefix(lower, "file://"):
		return schemeFile
	case strings.HasPrefix(lower, "mem://"):
		return schemeMem
	case strings.HasPrefix(lower, "git://"):
		return schemeGit
	case strings.HasPrefix(lower, "s3://"):
		return schemeS3
	case strings.HasPrefix(lower, "https://"):
		return schemeHTTPS
	case strings.HasPrefix(lower, "http://"):
		return schemeHTTP
	case strings.Contains(lower, "://"):
		return scheme(lower[:strings.Index(lower, "://")])
	default:
		return schemeLocal
	}
}

func trimScheme(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[i+3:]
	}
	return uri
}

// Open picks a store from the URI scheme:
//
//	file://<path> or <path>   local file
//	mem://<name>              in-memory file, lost on exit
//	git://<dir>/<file>        file inside a git repository, one commit per save
//	s3://<bucket>/<key>       S3 object
//	http(s)://...             read-only download
func Open(ctx context.Context, uri string, opts Options) (Store, error) {
	switch s := detectScheme(uri); s {
	case schemeLocal, schemeFile:
		return NewFileStore(trimScheme(uri))
	case schemeMem:
		return NewMemStore(trimScheme(uri)), nil
	case schemeGit:
		path := trimScheme(uri)
		return NewGitStore(filepath.Dir(path), filepath.Base(path), opts.Git)
	case schemeS3:
		return NewS3Store(ctx, uri, opts.S3)
	case schemeHTTP, schemeHTTPS:
		return NewHTTPStore(uri, opts.HTTPClient), nil
	default:
		return nil, fmt.Errorf("storage: unsupported URI scheme %q in %q", s, uri)
	}
}
