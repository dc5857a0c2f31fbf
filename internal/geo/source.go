package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/view"
	"github.com/paulmach/orb/geojson"
)

var ErrSourceNotFound = errors.New("geographic source not found")

// Source fetches the raw boundary payload for a view.
type Source interface {
	Fetch(ctx context.Context, mode view.Mode) ([]byte, error)
}

// FileSource reads boundary files under Root.
type FileSource struct {
	Root  string
	State string
}

func (s FileSource) Fetch(ctx context.Context, mode view.Mode) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := filepath.Join(s.Root, filepath.FromSlash(mode.SourcePath(s.State)))
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, mode.SourcePath(s.State))
	}
	return data, err
}

// HTTPSource fetches boundary files from a static file host.
type HTTPSource struct {
	BaseURL string
	State   string
	Client  *http.Client
}

func NewHTTPSource(baseURL, state string) *HTTPSource {
	return &HTTPSource{
		BaseURL: baseURL,
		State:   state,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, mode view.Mode) ([]byte, error) {
	u, err := url.JoinPath(s.BaseURL, mode.SourcePath(s.State))
	if err != nil {
		return nil, fmt.Errorf("build source url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, u)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Load fetches and decodes the boundary collection for a map view.
func Load(ctx context.Context, src Source, mode view.Mode) (*geojson.FeatureCollection, error) {
	data, err := src.Fetch(ctx, mode)
	if err != nil {
		return nil, err
	}
	fc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mode.Key(), err)
	}
	return fc, nil
}
