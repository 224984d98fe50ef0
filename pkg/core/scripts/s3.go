package scripts

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source читает скрипты из бакета S3. Скрипты раскладываются как
// объекты <prefix>/<имя>.sql.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Option настраивает создание источника
type S3Option func(*s3Config)

type s3Config struct {
	region    string
	accessKey string
	secretKey string
	endpoint  string
}

// WithRegion задает регион AWS
func WithRegion(region string) S3Option {
	return func(c *s3Config) { c.region = region }
}

// WithStaticCredentials задает явные ключи доступа вместо цепочки
// провайдеров по умолчанию
func WithStaticCredentials(accessKey, secretKey string) S3Option {
	return func(c *s3Config) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}

// WithEndpoint задает нестандартный endpoint (minio и совместимые)
func WithEndpoint(endpoint string) S3Option {
	return func(c *s3Config) { c.endpoint = endpoint }
}

// NewS3Source создает источник скриптов поверх бакета S3
func NewS3Source(ctx context.Context, bucket, prefix string, opts ...S3Option) (*S3Source, error) {
	var sc s3Config
	for _, opt := range opts {
		opt(&sc)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if sc.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(sc.region))
	}
	if sc.accessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sc.accessKey, sc.secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if sc.endpoint != "" {
			o.BaseEndpoint = aws.String(sc.endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{client: client, bucket: bucket, prefix: prefix}, nil
}

var _ Source = (*S3Source)(nil)

// Read скачивает объект скрипта из бакета
func (s *S3Source) Read(ctx context.Context, name string) (string, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}

	buf := manager.NewWriteAtBuffer(nil)
	downloader := manager.NewDownloader(s.client)
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return "", fmt.Errorf("failed to download script s3://%s/%s: %w", s.bucket, key, err)
	}
	return string(buf.Bytes()), nil
}
