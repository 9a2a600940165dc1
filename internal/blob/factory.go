package blob

import (
	"context"
	"fmt"
)

// Config selects and parameterises an archive backend.
type Config struct {
	Driver Driver
	// FSRoot is the directory used by the fs driver (default ./emails).
	FSRoot string
	S3     S3Config
}

// Open returns the Store named by cfg.Driver; an empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
