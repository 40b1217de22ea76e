// internal/s3client/s3client.go

package s3client

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3ClientInterface defines methods for S3 interactions
type S3ClientInterface interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
	ListObjectsV2WithContext(ctx aws.Context, input *s3.ListObjectsV2Input, opts ...request.Option) (*s3.ListObjectsV2Output, error)
}

// S3Client is an implementation of S3ClientInterface for AWS S3
type S3Client struct {
	s3Svc *s3.S3
}

// NewS3Client initializes a new S3 client. An empty endpoint selects the
// default AWS endpoint for region.
func NewS3Client(endpoint, region string) (*S3Client, error) {
	cfg := &aws.Config{}
	if region != "" {
		cfg.Region = aws.String(region)
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return &S3Client{
		s3Svc: s3.New(sess),
	}, nil
}

// PutObjectWithContext uploads an object to the specified S3 bucket
func (c *S3Client) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	return c.s3Svc.PutObjectWithContext(ctx, input, opts...)
}

// ListObjectsV2WithContext lists objects in the specified S3 bucket
func (c *S3Client) ListObjectsV2WithContext(ctx aws.Context, input *s3.ListObjectsV2Input, opts ...request.Option) (*s3.ListObjectsV2Output, error) {
	return c.s3Svc.ListObjectsV2WithContext(ctx, input, opts...)
}
