package s3infra

import (
	"testing"

	"github.com/go-care-nosql/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectContentType("me.JPG"))
	assert.Equal(t, "image/jpeg", DetectContentType("me.jpeg"))
	assert.Equal(t, "image/png", DetectContentType("a/b/me.png"))
	assert.Equal(t, "image/webp", DetectContentType("me.webp"))
	assert.Equal(t, "application/octet-stream", DetectContentType("me"))
}

func TestObjectBaseURL(t *testing.T) {
	assert.Equal(t, "https://photos.s3.eu-west-1.amazonaws.com",
		ObjectBaseURL(&config.Config{S3BucketName: "photos", AWSRegion: "eu-west-1"}))
	assert.Equal(t, "http://localhost:4566/photos",
		ObjectBaseURL(&config.Config{S3BucketName: "photos", AWSEndpointURL: "http://localhost:4566/"}))
}
