package pkg

// Canonical lattice sizes for the pre-computed grid files, keyed by
// sampling resolution in km.
const (
	N_6_25KM = 6600000
	N_12_5KM = 1650000
	N_25KM   = 430000
)

const (
	GRID_FILE_VERSION = "v0.0.8"
	DEFAULT_DATA_URL  = "https://github.com/TUW-GEO/fibgrid/releases/download/" + GRID_FILE_VERSION
)

// enum of geodatum
type Geodatum uint8

const (
	SPHERE Geodatum = iota
	WGS84
)

func (g Geodatum) String() string {
	switch g {
	case SPHERE:
		return "sphere"
	case WGS84:
		return "wgs84"
	default:
		return "unknown"
	}
}

func (g Geodatum) Valid() bool {
	return g == SPHERE || g == WGS84
}

// enum of grid point sort order
type SortOrder uint8

const (
	SORT_NONE SortOrder = iota
	SORT_LATBAND
)

func (s SortOrder) String() string {
	switch s {
	case SORT_NONE:
		return "none"
	case SORT_LATBAND:
		return "latband"
	default:
		return "unknown"
	}
}

func (s SortOrder) Valid() bool {
	return s == SORT_NONE || s == SORT_LATBAND
}
