package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store implements Store against an S3-compatible backend (AWS S3 or
// MinIO). Single bucket; keys map to object keys directly.
type S3Store struct {
	client *s3.Client
	bucket string
}

// S3Config holds explicit construction parameters, mostly for tests.
// Production deployments configure through environment variables.
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional, enables a custom endpoint such as MinIO
	PathStyle bool
}

// Environment variables:
//
//	WARDCORE_BLOB_DRIVER=s3
//	WARDCORE_BLOB_S3_BUCKET=<bucket> (required)
//	WARDCORE_BLOB_S3_REGION=<region> (default us-east-1)
//	WARDCORE_BLOB_S3_ENDPOINT=<url> (optional, for MinIO)
//	WARDCORE_BLOB_S3_PATH_STYLE=true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// NewS3 creates an S3 blob store from S3Config.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// OpenS3FromEnv constructs an S3 store from process environment.
func OpenS3FromEnv(ctx context.Context) (*S3Store, error) {
	bucket := os.Getenv("WARDCORE_BLOB_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("WARDCORE_BLOB_S3_BUCKET required for s3 driver")
	}
	cfg := S3Config{
		Bucket:    bucket,
		Region:    os.Getenv("WARDCORE_BLOB_S3_REGION"),
		Endpoint:  os.Getenv("WARDCORE_BLOB_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("WARDCORE_BLOB_S3_PATH_STYLE"), "true"),
	}
	return NewS3(ctx, cfg)
}

func (s *S3Store) Driver() Driver { return DriverS3 }

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	// Create-only semantics are emulated with a Head probe.
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err == nil {
		return Info{}, fmt.Errorf("blob %s already exists", key)
	}
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: r}
	if opts.ContentType != "" {
		input.ContentType = &opts.ContentType
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Info{}, err
	}
	return s.Head(ctx, key)
}

func (s *S3Store) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return Info{}, nil, err
	}
	info := headInfo(key, out.ContentLength, out.ContentType, out.ETag, out.Metadata, out.LastModified)
	return info, out.Body, nil
}

func (s *S3Store) Head(ctx context.Context, key string) (Info, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return Info{}, err
	}
	return headInfo(key, out.ContentLength, out.ContentType, out.ETag, out.Metadata, out.LastModified), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) (bool, error) {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]Info, error) {
	var infos []Info
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{Bucket: &s.bucket, Prefix: &prefix, ContinuationToken: token})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			var size int64
			if obj.Size != nil {
				size = *obj.Size
			}
			infos = append(infos, Info{Key: aws.ToString(obj.Key), Size: size, LastModified: aws.ToTime(obj.LastModified)})
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func headInfo(key string, size *int64, contentType, etag *string, md map[string]string, lastModified *time.Time) Info {
	info := Info{Key: key, Metadata: md, LastModified: time.Now().UTC()}
	if size != nil {
		info.Size = *size
	}
	if contentType != nil {
		info.ContentType = *contentType
	}
	if etag != nil {
		info.ETag = strings.Trim(*etag, "\"")
	}
	if lastModified != nil {
		info.LastModified = *lastModified
	}
	return info
}
