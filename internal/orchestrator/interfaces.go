package orchestrator

import (
	"context"

	"github.com/frasal/image_describer/internal/domain"
)

type Tracker interface {
	Create() string
	Update(id string, upd domain.RequestUpdate) error
	Get(id string) (domain.Request, error)
	CleanTempFile(id string) error
}

type ImageUploader interface {
	PutImage(ctx context.Context, localPath, name string) (string, error)
}

type MetadataSaver interface {
	PutMetadata(ctx context.Context, key string, metadata domain.Metadata) error
}

type Describer interface {
	Describe(ctx context.Context, imagePath string) (string, error)
}
