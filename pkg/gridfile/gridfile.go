package gridfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/fibgrid/pkg"
	"go.uber.org/zap"
)

// Metadata holds the per-point land information stored alongside the
// coordinates, as parallel arrays in grid point order.
type Metadata struct {
	LandFracFW []float64
	LandFracHW []float64
	LandMaskHW []int8
	LandMaskFW []int8
	LandFlag   []int8
}

// LandIndices returns the array positions whose land flag is set.
func (m Metadata) LandIndices() []int {
	idx := make([]int, 0, len(m.LandFlag))
	for i, flag := range m.LandFlag {
		if flag != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// GridData is the parsed content of one grid file.
type GridData struct {
	Lon  []float64
	Lat  []float64
	Cell []int32
	GPI  []int32
	Meta Metadata
}

func (d *GridData) Len() int {
	return len(d.Lon)
}

// Source reads pre-computed Fibonacci grid files, downloading them
// into the cache directory on first use.
type Source struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func NewSource(cfg Config, log *zap.Logger) *Source {
	return &Source{
		cfg:    cfg,
		client: http.DefaultClient,
		log:    log,
	}
}

// Read returns the grid data for a lattice size. The artifact is taken
// from the cache, or fetched once from the remote store on a miss (an
// expected first-use event, logged as a warning). With SORT_LATBAND
// the stored latband permutation is applied to coordinates, cell, gpi
// and every metadata field identically.
func (s *Source) Read(n int, geodatum pkg.Geodatum, sortOrder pkg.SortOrder) (*GridData, error) {
	if !geodatum.Valid() {
		return nil, fmt.Errorf("%w: %d", pkg.ErrInvalidGeodatum, geodatum)
	}
	if !sortOrder.Valid() {
		return nil, fmt.Errorf("%w: %d", pkg.ErrInvalidSortOrder, sortOrder)
	}

	name := FileName(n, geodatum)
	path := filepath.Join(s.cfg.CacheDir, name)

	_, err := os.Stat(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		url := s.cfg.DataURL + "/" + name
		s.log.Warn("downloading fibonacci grid file",
			zap.String("file", name),
			zap.String("url", url))

		if err := s.download(url, path); err != nil {
			return nil, err
		}
	default:
		// an unreadable cache is neither a miss nor a broken artifact
		return nil, fmt.Errorf("checking grid file cache %s: %w", path, err)
	}

	return readGridFile(path, sortOrder)
}

// download fetches one artifact in a single attempt. The body lands in
// a temp file that is renamed into place, so a concurrent reader never
// sees a half-written grid file.
func (s *Source) download(url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", pkg.ErrArtifactFetch, err)
	}

	resp, err := s.client.Get(url)
	if err != nil {
		return fmt.Errorf("%w: %v", pkg.ErrArtifactFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", pkg.ErrArtifactFetch, url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", pkg.ErrArtifactFetch, err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", pkg.ErrArtifactFetch, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", pkg.ErrArtifactFetch, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", pkg.ErrArtifactFetch, err)
	}
	return nil
}
