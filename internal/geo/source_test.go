package geo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/EmpoweredVote/LSG-Trends/internal/geo"
	"github.com/EmpoweredVote/LSG-Trends/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "topojson", "Kerala", "district_maps")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Kollam_grama.json"), []byte(quantizedTopology), 0o644))

	src := geo.FileSource{Root: root, State: "Kerala"}
	fc, err := geo.Load(context.Background(), src, view.DistrictView{District: "Kollam", Tab: view.TabGrama})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 4)

	_, err = geo.Load(context.Background(), src, view.StateView{Tab: view.TabBlock})
	assert.True(t, errors.Is(err, geo.ErrSourceNotFound))
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/topojson/Kerala/districts.json":
			w.Write([]byte(quantizedTopology))
		case "/data/topojson/Kerala/block-panchayats.json":
			w.Write([]byte(`{"type":"Topology","objects":{}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := geo.NewHTTPSource(srv.URL+"/data", "Kerala")

	fc, err := geo.Load(context.Background(), src, view.StateView{Tab: view.TabDistrict})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 4)

	_, err = geo.Load(context.Background(), src, view.StateView{Tab: view.TabBlock})
	assert.True(t, errors.Is(err, geo.ErrNoTopologyObjects))

	_, err = geo.Load(context.Background(), src, view.StateView{Tab: view.TabGrama})
	assert.True(t, errors.Is(err, geo.ErrSourceNotFound))
}
