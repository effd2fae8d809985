package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
)

func TestApplyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "owner/image.png", want: "owner/image.png"},
		{name: "simple prefix", prefix: "images", key: "owner/image.png", want: "images/owner/image.png"},
		{name: "prefix trailing slash", prefix: "images/", key: "owner/image.png", want: "images/owner/image.png"},
		{name: "prefix and key slashes", prefix: "/images/", key: "/owner/image.png", want: "images/owner/image.png"},
		{name: "empty key", prefix: "images", key: "", want: "images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyPrefix(tt.prefix, tt.key))
		})
	}
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Options{Region: "ap-southeast-3"})
	assert.Error(t, err)
}

func TestApplyEncryption(t *testing.T) {
	in := &s3.PutObjectInput{}
	(&Store{}).applyEncryption(in)
	assert.Equal(t, s3types.ServerSideEncryptionAes256, in.ServerSideEncryption)

	in = &s3.PutObjectInput{}
	(&Store{kmsKeyID: "kms-1"}).applyEncryption(in)
	assert.Equal(t, s3types.ServerSideEncryptionAwsKms, in.ServerSideEncryption)
	assert.Equal(t, "kms-1", *in.SSEKMSKeyId)
}

func TestCountingReader(t *testing.T) {
	c := &countingReader{r: strings.NewReader("hello")}
	buf := make([]byte, 2)
	for {
		if _, err := c.Read(buf); err != nil {
			break
		}
	}
	assert.Equal(t, int64(5), c.n)
}
