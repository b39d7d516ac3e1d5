package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/labnet/testorders/config"
	"github.com/labnet/testorders/results"
)

type SinkParams struct {
	fx.In

	Config    *config.Config
	Logger    *zap.SugaredLogger
	Lifecycle fx.Lifecycle
}

func NewSink(p SinkParams) (Sink, error) {
	cfg := p.Config.Reporting
	switch cfg.Sink {
	case "", SinkLog:
		return NewLogSink(p.Logger), nil
	case SinkKafka:
		sink, err := NewKafkaSink(cfg)
		if err != nil {
			return nil, err
		}
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return sink.Close()
			},
		})
		return sink, nil
	case SinkSQS:
		client, err := NewSQSClient(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return NewSQSSink(client, cfg.SQSQueueName), nil
	default:
		return nil, fmt.Errorf("%w: unknown sink %q", ErrInvalidSinkConfig, cfg.Sink)
	}
}

func encode(result results.Result) ([]byte, error) {
	result.Patient = nil
	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("unable to encode result: %w", err)
	}
	return body, nil
}

// LogSink writes results to the service log. Used when no external pipeline is configured.
type LogSink struct {
	logger *zap.SugaredLogger
}

func NewLogSink(logger *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Name() string {
	return SinkLog
}

func (l *LogSink) Send(_ context.Context, result results.Result) error {
	body, err := encode(result)
	if err != nil {
		return err
	}
	l.logger.Infow("reporting result", "resultId", result.Id, "orderId", result.OrderId.Hex(), "result", string(body))
	return nil
}

type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(cfg config.ReportingConfig) (*KafkaSink, error) {
	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopic == "" {
		return nil, fmt.Errorf("%w: kafka brokers and topic are required", ErrInvalidSinkConfig)
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.Hash{},
	})
	return &KafkaSink{writer: writer}, nil
}

func (k *KafkaSink) Name() string {
	return SinkKafka
}

// Send keys messages by order so every record of an order lands on the same partition.
func (k *KafkaSink) Send(ctx context.Context, result results.Result) error {
	body, err := encode(result)
	if err != nil {
		return err
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.OrderId.Hex()),
		Value: body,
	})
	if err != nil {
		return fmt.Errorf("unable to write result to kafka: %w", err)
	}
	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

// SQSClient is the subset of the sqs client used by SQSSink.
type SQSClient interface {
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

func NewSQSClient(ctx context.Context, cfg config.ReportingConfig) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SQSRegion))
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config: %w", err)
	}

	options := sqs.Options{
		Region:      awsCfg.Region,
		Credentials: awsCfg.Credentials,
		HTTPClient:  awsCfg.HTTPClient,
	}
	if cfg.SQSEndpoint != "" {
		options.BaseEndpoint = aws.String(cfg.SQSEndpoint)
	}
	return sqs.New(options), nil
}

type SQSSink struct {
	client    SQSClient
	queueName string

	mu       sync.Mutex
	queueUrl *string
}

func NewSQSSink(client SQSClient, queueName string) *SQSSink {
	return &SQSSink{
		client:    client,
		queueName: queueName,
	}
}

func (s *SQSSink) Name() string {
	return SinkSQS
}

func (s *SQSSink) Send(ctx context.Context, result results.Result) error {
	body, err := encode(result)
	if err != nil {
		return err
	}

	queueUrl, err := s.resolveQueueUrl(ctx)
	if err != nil {
		return err
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    queueUrl,
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("unable to send result to sqs: %w", err)
	}
	return nil
}

// resolveQueueUrl looks up the queue once and caches it for subsequent sends.
func (s *SQSSink) resolveQueueUrl(ctx context.Context) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queueUrl != nil {
		return s.queueUrl, nil
	}

	out, err := s.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(s.queueName),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get sqs queue url: %w", err)
	}
	s.queueUrl = out.QueueUrl
	return s.queueUrl, nil
}
