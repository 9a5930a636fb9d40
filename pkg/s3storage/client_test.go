package s3storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-patterns/pkg/config"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(config.S3Config{Endpoint: "localhost:9000"})
	assert.ErrorContains(t, err, "s3.bucket")
}

func TestNew(t *testing.T) {
	c, err := New(config.S3Config{Endpoint: "localhost:9000", Bucket: "cameras"})
	require.NoError(t, err)
	assert.Equal(t, "cameras", c.Bucket())
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, "", NormalizePrefix(""))
	assert.Equal(t, "lane1/", NormalizePrefix("lane1"))
	assert.Equal(t, "lane1/", NormalizePrefix("lane1/"))
}

func TestStoredObjectFilename(t *testing.T) {
	assert.Equal(t, "vehicle_001_front.jpg", StoredObject{Key: "lane1/2024/vehicle_001_front.jpg"}.Filename())
	assert.Equal(t, "top.jpg", StoredObject{Key: "top.jpg"}.Filename())
}
