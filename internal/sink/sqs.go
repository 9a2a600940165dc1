package sink

import (
	"context"
	"errors"
	"fmt"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"chocan/internal/report"
)

// SQSAPI is the subset of *sqs.Client the sink uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSConfig locates the queue.
type SQSConfig struct {
	QueueURL string
	Region   string
	Endpoint string // optional, e.g. LocalStack
}

// SQSSink sends each report as a JSON envelope with the category as a
// message attribute.
type SQSSink struct {
	client   SQSAPI
	queueURL string
}

// NewSQSSink builds a client from the default AWS config chain.
func NewSQSSink(ctx context.Context, cfg SQSConfig) (*SQSSink, error) {
	if cfg.QueueURL == "" {
		return nil, errors.New("sqs sink needs a queue url")
	}
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &SQSSink{client: client, queueURL: cfg.QueueURL}, nil
}

// NewSQSSinkWithClient wraps an existing client.
func NewSQSSinkWithClient(client SQSAPI, queueURL string) *SQSSink {
	return &SQSSink{client: client, queueURL: queueURL}
}

func (s *SQSSink) Deliver(ctx context.Context, r report.Report) error {
	env := NewEnvelope(r)
	b, err := env.encode()
	if err != nil {
		return err
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(b)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"category":    {DataType: aws.String("String"), StringValue: aws.String(string(r.Category))},
			"document-id": {DataType: aws.String("String"), StringValue: aws.String(env.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("send %s report to sqs: %w", r.Category, err)
	}
	return nil
}

func (s *SQSSink) Close() error { return nil }
