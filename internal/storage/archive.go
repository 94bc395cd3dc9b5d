package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"smartrfq/desk/internal/config"
)

const presignExpiry = 15 * time.Minute

// ArchivedFile is an attachment stored in the archive bucket.
type ArchivedFile struct {
	Key          string    `json:"key"`
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url"`
}

// IAttachmentArchive stores copies of sent email attachments.
type IAttachmentArchive interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	List(ctx context.Context, prefix string) ([]ArchivedFile, error)
}

// s3API is the subset of the S3 client the archive uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// s3Archive implements IAttachmentArchive.
type s3Archive struct {
	bucket  string
	client  s3API
	presign *s3.PresignClient
}

// NewS3Client builds an S3 client from the static credentials in cfg.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(ctx,
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// NewS3Archive creates an archive writing to bucket through client.
func NewS3Archive(client *s3.Client, bucket string) IAttachmentArchive {
	return &s3Archive{bucket: bucket, client: client, presign: s3.NewPresignClient(client)}
}

func (a *s3Archive) Put(ctx context.Context, key, contentType string, data []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	log.Printf("Archived attachment: %s (%d bytes)", key, len(data))
	return nil
}

// List returns the archived files under prefix with short-lived download URLs.
func (a *s3Archive) List(ctx context.Context, prefix string) ([]ArchivedFile, error) {
	out, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	files := make([]ArchivedFile, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(a.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(presignExpiry))
		if err != nil {
			return nil, fmt.Errorf("failed to presign %s: %w", key, err)
		}
		f := ArchivedFile{Key: key, Filename: FilenameFromKey(key), Size: aws.ToInt64(obj.Size), URL: req.URL}
		if obj.LastModified != nil {
			f.LastModified = *obj.LastModified
		}
		files = append(files, f)
	}
	return files, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ArchivePrefix is the key prefix of the attachments of one sent email.
func ArchivePrefix(orgID, projectID, emailID string) string {
	if orgID == "" {
		orgID = "default"
	}
	return fmt.Sprintf("archive/%s/%s/%s/", orgID, projectID, emailID)
}

// ArchiveKey builds the object key of the index-th attachment of an email.
// Keys are stable so a retried upload overwrites instead of duplicating.
func ArchiveKey(orgID, projectID, emailID string, index int, filename string) string {
	name := strings.Trim(unsafeKeyChars.ReplaceAllString(path.Base(filename), "_"), "_")
	if name == "" {
		name = "attachment"
	}
	return fmt.Sprintf("%s%03d_%s", ArchivePrefix(orgID, projectID, emailID), index, name)
}

// FilenameFromKey recovers the stored filename from an archive key.
func FilenameFromKey(key string) string {
	base := path.Base(key)
	if len(base) > 4 && base[3] == '_' && strings.Trim(base[:3], "0123456789") == "" {
		return base[4:]
	}
	return base
}
