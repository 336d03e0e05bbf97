package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rohits-web03/stashbox/internal/config"
	"go.uber.org/zap"
)

// R2BlobStore keeps blobs in a Cloudflare R2 (or any S3-compatible) bucket.
type R2BlobStore struct {
	client *s3.Client
	bucket string
	log    *zap.Logger
}

// NewR2BlobStore builds an S3 client using static credentials and the
// account endpoint, or cfg.Endpoint when set.
func NewR2BlobStore(cfg config.R2Config, log *zap.Logger) *R2BlobStore {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	}

	awsCfg := aws.Config{
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region:      cfg.Region,
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		// R2 rejects the SDK's default request checksums on some operations.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	log.Info("Successfully initialized R2 client", zap.String("endpoint", endpoint), zap.String("bucket", cfg.BucketName))
	return &R2BlobStore{client: client, bucket: cfg.BucketName, log: log}
}

// Stage spools r to a local temp file so the upload is seekable and
// signed with a known length, then writes it under the staging prefix.
func (s *R2BlobStore) Stage(ctx context.Context, r io.Reader) (StagedBlob, error) {
	tmp, err := os.CreateTemp("", "stash-upload-*.part")
	if err != nil {
		return StagedBlob{}, fmt.Errorf("create spool file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		return StagedBlob{}, fmt.Errorf("spool upload: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return StagedBlob{}, fmt.Errorf("rewind spool file: %w", err)
	}

	key := stagingPrefix + "/" + uuid.NewString()
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   tmp,
	}); err != nil {
		return StagedBlob{}, fmt.Errorf("put staging object: %w", err)
	}

	// Size comes from the stored object.
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		_ = s.Delete(context.WithoutCancel(ctx), key)
		return StagedBlob{}, fmt.Errorf("head staging object: %w", err)
	}

	return StagedBlob{Key: key, Size: aws.ToInt64(head.ContentLength)}, nil
}

// Promote copies the staged object to finalKey and removes the staged
// copy. S3 has no rename; if the staged copy cannot be removed the final
// copy is dropped again so the content never ends up under both keys.
func (s *R2BlobStore) Promote(ctx context.Context, staged StagedBlob, finalKey string) error {
	if isStagingKey(finalKey) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, finalKey)
	}

	exists, err := s.VerifyObjectExists(ctx, finalKey)
	if err != nil {
		return fmt.Errorf("check %s: %w", finalKey, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrBlobExists, finalKey)
	}

	if _, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(finalKey),
		CopySource: aws.String(s.bucket + "/" + staged.Key),
	}); err != nil {
		return fmt.Errorf("copy to %s: %w", finalKey, err)
	}

	if err := s.Delete(ctx, staged.Key); err != nil {
		if rbErr := s.Delete(context.WithoutCancel(ctx), finalKey); rbErr != nil {
			s.log.Error("staged and final object both present",
				zap.String("staged", staged.Key), zap.String("final", finalKey), zap.Error(rbErr))
		}
		return fmt.Errorf("remove staged object: %w", err)
	}
	return nil
}

func (s *R2BlobStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *R2BlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return out.Body, nil
}

// PresignGet creates a presigned URL for downloading a blob.
func (s *R2BlobStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigner := s3.NewPresignClient(s.client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// VerifyObjectExists checks if a given object key exists in the bucket.
// Returns true if the object exists, false if not, and an error if something went wrong.
func (s *R2BlobStore) VerifyObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
