package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/frasal/image_describer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_JSONShape(t *testing.T) {
	t.Parallel()

	metadata := domain.Metadata{
		Timestamp:   "2025-06-01T12:00:00Z",
		Description: "a cat on a sofa",
		Approved:    true,
		Note:        "",
	}

	data, err := json.Marshal(metadata)
	require.NoError(t, err)

	// the key set and value types are a fixed convention: approved must
	// stay a boolean, note is present even when empty
	assert.JSONEq(t, `{
		"timestamp": "2025-06-01T12:00:00Z",
		"description": "a cat on a sofa",
		"approved": true,
		"note": ""
	}`, string(data))
}

func TestMetadata_RoundTrip(t *testing.T) {
	t.Parallel()

	original := domain.Metadata{
		Timestamp:   "2025-06-01T12:00:00Z",
		Description: "two dogs",
		Approved:    false,
		Note:        "second dog is a wolf",
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded domain.Metadata
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original, decoded)
}
