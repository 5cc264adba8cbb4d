package pkg

import "errors"

var (
	ErrInvalidPointCount     = errors.New("number of grid points must be positive")
	ErrUnsupportedResolution = errors.New("resolution unknown")
	ErrInvalidGeodatum       = errors.New("geodatum unknown")
	ErrInvalidSortOrder      = errors.New("grid point sort order unknown")
	ErrArtifactFetch         = errors.New("grid file download failed")
	ErrArtifactParse         = errors.New("grid file malformed")
	ErrReprojection          = errors.New("coordinate reprojection failed")
)
