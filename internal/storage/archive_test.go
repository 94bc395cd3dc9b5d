package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  []string
	objects []types.Object
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []types.Object
	for _, o := range f.objects {
		if strings.HasPrefix(aws.ToString(o.Key), aws.ToString(params.Prefix)) {
			out = append(out, o)
		}
	}
	return &s3.ListObjectsV2Output{Contents: out}, nil
}

func newTestArchive(fake *fakeS3) *s3Archive {
	signer := s3.New(s3.Options{
		Region:      "eu-west-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	return &s3Archive{bucket: "rfq-archive", client: fake, presign: s3.NewPresignClient(signer)}
}

func TestArchiveKey(t *testing.T) {
	key := ArchiveKey("org_1", "p1", "e1", 2, "../../Drawing Rev A.pdf")
	assert.Equal(t, "archive/org_1/p1/e1/002_Drawing_Rev_A.pdf", key)
	assert.Equal(t, "Drawing_Rev_A.pdf", FilenameFromKey(key))
	assert.Equal(t, "plain.pdf", FilenameFromKey("archive/o/p/e/plain.pdf"))

	assert.Equal(t, "archive/default/p1/e1/", ArchivePrefix("", "p1", "e1"))
	assert.Equal(t, "archive/o/p/e/000_attachment", ArchiveKey("o", "p", "e", 0, "***"))
}

func TestS3Archive_Put(t *testing.T) {
	fake := &fakeS3{}
	a := newTestArchive(fake)

	require.NoError(t, a.Put(context.Background(), "archive/o/p/e/x_a.pdf", "", []byte("%PDF")))
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "rfq-archive", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, "application/octet-stream", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, "%PDF", fake.bodies[0])

	fake.err = errors.New("access denied")
	assert.Error(t, a.Put(context.Background(), "k", "text/plain", nil))
}

func TestS3Archive_ListPresigns(t *testing.T) {
	modified := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	fake := &fakeS3{objects: []types.Object{
		{Key: aws.String("archive/o/p/e1/001_quote.xlsx"), Size: aws.Int64(2048), LastModified: &modified},
		{Key: aws.String("archive/o/p/e2/other.pdf"), Size: aws.Int64(1)},
	}}
	a := newTestArchive(fake)

	files, err := a.List(context.Background(), ArchivePrefix("o", "p", "e1"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "quote.xlsx", files[0].Filename)
	assert.Equal(t, int64(2048), files[0].Size)
	assert.Equal(t, modified, files[0].LastModified)
	assert.Contains(t, files[0].URL, "rfq-archive")
	assert.Contains(t, files[0].URL, "X-Amz-Signature=")
}
