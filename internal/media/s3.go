package media

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// putObjectAPI is the part of the S3 client the store uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures an S3Store.
type S3Config struct {
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

// S3Store uploads images to an S3 bucket.
type S3Store struct {
	client putObjectAPI
	cfg    S3Config
	logger zerolog.Logger
}

// NewS3Store creates a store using the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Store, error) {
	logger = logger.With().Str("component", "s3-media-store").Logger()

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Msg("S3 media store initialised")

	return newS3Store(s3.NewFromConfig(awsCfg), cfg, logger), nil
}

func newS3Store(client putObjectAPI, cfg S3Config, logger zerolog.Logger) *S3Store {
	return &S3Store{client: client, cfg: cfg, logger: logger}
}

// Put uploads the image under prefix + a new key.
func (s *S3Store) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	img, err := ReadImage(contentType, body)
	if err != nil {
		return "", err
	}
	key := s.cfg.Prefix + img.Key

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          img.Reader(),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.cfg.Bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.cfg.Bucket, key, err)
	}

	s.logger.Info().
		Str("name", name).
		Str("key", key).
		Int("bytes", len(img.Data)).
		Msg("image uploaded to S3")
	return s.objectURL(key), nil
}

func (s *S3Store) objectURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
