package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPStore downloads a published snapshot. It cannot save.
type HTTPStore struct {
	client *http.Client
	url    string
}

func NewHTTPStore(url string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &HTTPStore{client: client, url: url}
}

func (s *HTTPStore) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: GET %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("storage: GET %s returned status %d", s.url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", s.url, err)
	}
	return data, nil
}

func (s *HTTPStore) Save(context.Context, []byte) error { return ErrReadOnly }

func (s *HTTPStore) ReadOnly() bool { return true }

func (s *HTTPStore) Close() error { return nil }

func (s *HTTPStore) URI() string { return s.url }
