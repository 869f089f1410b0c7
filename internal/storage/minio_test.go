package storage_test

import (
	"testing"

	"github.com/frasal/image_describer/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestMetadataKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "20250101_120000_abc.jpg.metadata.json", storage.MetadataKey("20250101_120000_abc.jpg"))
}

func TestIsMetadataKey(t *testing.T) {
	t.Parallel()

	assert.True(t, storage.IsMetadataKey("img.jpg.metadata.json"))
	assert.False(t, storage.IsMetadataKey("img.jpg"))
	assert.False(t, storage.IsMetadataKey("metadata.json.jpg"))
}
