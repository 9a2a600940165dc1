package blob

import (
	"context"

	infraS3 "chocan/internal/infra/blob/s3"
)

// S3Config configures the S3 backend.
type S3Config = infraS3.Config

// NewS3 returns an S3-backed Store.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	st, err := infraS3.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// NewMockS3ForTests returns an S3 Store over an in-process fake bucket.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests() }
