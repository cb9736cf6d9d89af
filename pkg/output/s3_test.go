package output

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/df07/go-phong-raytracer/pkg/config"
)

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, input)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	client := &fakeS3{}
	uploader := NewS3UploaderWithClient(client, "renders", "https://cdn.example.com/", nil)

	data := []byte("image bytes")
	if err := uploader.Upload(context.Background(), "default/render.png", data, "image/png"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if aws.StringValue(input.Bucket) != "renders" || aws.StringValue(input.Key) != "default/render.png" {
		t.Errorf("Unexpected destination %s/%s", aws.StringValue(input.Bucket), aws.StringValue(input.Key))
	}
	if aws.Int64Value(input.ContentLength) != int64(len(data)) {
		t.Errorf("Expected content length %d, got %d", len(data), aws.Int64Value(input.ContentLength))
	}
	if aws.StringValue(input.ContentType) != "image/png" {
		t.Errorf("Expected image/png, got %s", aws.StringValue(input.ContentType))
	}
	if string(client.bodies[0]) != "image bytes" {
		t.Errorf("Expected uploaded body to match, got %q", client.bodies[0])
	}

	if got := uploader.URL("default/render.png"); got != "https://cdn.example.com/default/render.png" {
		t.Errorf("Expected CDN URL, got %s", got)
	}
}

func TestS3Uploader_UploadError(t *testing.T) {
	failure := errors.New("access denied")
	uploader := NewS3UploaderWithClient(&fakeS3{err: failure}, "renders", "", nil)

	err := uploader.Upload(context.Background(), "x.png", []byte{1}, "image/png")
	if !errors.Is(err, failure) {
		t.Errorf("Expected wrapped upload error, got %v", err)
	}
	if got := uploader.URL("x.png"); got != "s3://renders/x.png" {
		t.Errorf("Expected s3 URI, got %s", got)
	}
}

func TestNewS3Uploader(t *testing.T) {
	if _, err := NewS3Uploader(config.S3Config{}, nil); err == nil {
		t.Error("Expected an error without a bucket")
	}

	uploader, err := NewS3Uploader(config.S3Config{
		AccessKey: "key",
		SecretKey: "secret",
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		Bucket:    "renders",
	}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if uploader.bucket != "renders" {
		t.Errorf("Expected bucket renders, got %s", uploader.bucket)
	}
}
