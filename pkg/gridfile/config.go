package gridfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/fibgrid/pkg"
	"github.com/spf13/viper"
)

// Config carries the cache location and the artifact base URL. Both
// are explicit constructor inputs so tests can point a Source at a
// throwaway directory and a fake server.
type Config struct {
	// CacheDir is the version-namespaced directory holding downloaded
	// grid files.
	CacheDir string
	// DataURL is the base URL grid file names are appended to.
	DataURL string
}

// DefaultConfig resolves the user cache directory and the release URL
// of the pre-computed grid files. FIBGRID_CACHE_DIR and
// FIBGRID_DATA_URL override the defaults.
func DefaultConfig() Config {
	viper.SetDefault("FIBGRID_CACHE_DIR", defaultCacheDir())
	viper.SetDefault("FIBGRID_DATA_URL", pkg.DEFAULT_DATA_URL)
	viper.AutomaticEnv()

	return Config{
		CacheDir: viper.GetString("FIBGRID_CACHE_DIR"),
		DataURL:  viper.GetString("FIBGRID_DATA_URL"),
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "fibgrid", pkg.GRID_FILE_VERSION)
}

// FileName returns the canonical artifact name for a lattice size and
// geodatum, e.g. fibgrid_wgs84_n6600000.nc.
func FileName(n int, geodatum pkg.Geodatum) string {
	return fmt.Sprintf("fibgrid_%s_n%d.nc", geodatum, n)
}
