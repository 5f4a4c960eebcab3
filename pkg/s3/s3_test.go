package s3

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, cfg *aws.Config) *Client {
	t.Helper()
	sess, err := session.NewSession(cfg)
	require.NoError(t, err)
	return &Client{s3Client: s3.New(sess), bucket: "blog-images"}
}

func TestObjectURL_AWS(t *testing.T) {
	client := newTestClient(t, &aws.Config{Region: aws.String("eu-central-1")})

	url := client.ObjectURL("blogs_data/abc.png")

	assert.Equal(t, "https://blog-images.s3.eu-central-1.amazonaws.com/blogs_data/abc.png", url)
}

func TestObjectURL_MinIO(t *testing.T) {
	client := newTestClient(t, &aws.Config{
		Region:           aws.String("us-east-1"),
		Endpoint:         aws.String("http://localhost:9000"),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(true),
	})

	url := client.ObjectURL("blogs_data/abc.png")

	assert.Equal(t, "http://localhost:9000/blog-images/blogs_data/abc.png", url)
}

func TestObjectURL_MinIOWithSSL(t *testing.T) {
	client := newTestClient(t, &aws.Config{
		Region:   aws.String("us-east-1"),
		Endpoint: aws.String("https://storage.example.com"),
	})

	url := client.ObjectURL("blogs_data/abc.png")

	assert.Equal(t, "https://storage.example.com/blog-images/blogs_data/abc.png", url)
}
