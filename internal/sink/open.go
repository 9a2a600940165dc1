package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chocan/internal/blob"
)

// Drivers accepted by Open.
const (
	DriverFS     = "fs"
	DriverS3     = "s3"
	DriverMemory = "memory"
	DriverKafka  = "kafka"
	DriverSQS    = "sqs"
)

// Config names one or more drivers and their settings.
type Config struct {
	Drivers      []string
	FSRoot       string
	S3           blob.S3Config
	KafkaBrokers []string
	KafkaTopic   string
	SQS          SQSConfig
}

// Open builds the configured sink. Several drivers yield a Multi; none
// defaults to fs.
func Open(ctx context.Context, cfg Config) (Sink, error) {
	drivers := cfg.Drivers
	if len(drivers) == 0 {
		drivers = []string{DriverFS}
	}
	var sinks Multi
	for _, d := range drivers {
		s, err := openOne(ctx, strings.ToLower(strings.TrimSpace(d)), cfg)
		if err != nil {
			return nil, errors.Join(err, sinks.Close())
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sinks, nil
}

func openOne(ctx context.Context, driver string, cfg Config) (Sink, error) {
	switch driver {
	case DriverFS, DriverS3, DriverMemory:
		store, err := blob.Open(ctx, blob.Config{Driver: blob.Driver(driver), FSRoot: cfg.FSRoot, S3: cfg.S3})
		if err != nil {
			return nil, fmt.Errorf("open %s sink: %w", driver, err)
		}
		return NewBlobSink(store), nil
	case DriverKafka:
		s, err := NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQS:
		s, err := NewSQSSink(ctx, cfg.SQS)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sink driver %q", driver)
	}
}
