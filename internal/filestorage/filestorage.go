package filestorage

import (
	"context"
	"fmt"

	"github.com/exo/showcase/internal/asset"
	"github.com/exo/showcase/internal/config"
)

// Open builds the primary store selected by cfg. Defaults always come from
// the embedded resources so every backend can serve them.
func Open(ctx context.Context, cfg config.Config) (primary, defaults asset.Store, err error) {
	defaults = Embedded()

	switch cfg.Assets.Store {
	case config.STORE_EMBED:
		primary = defaults
	case config.STORE_DIR:
		primary = NewDirStore(cfg.Assets.Dir)
	case config.STORE_MINIO:
		primary, err = NewMinIOStorage(
			cfg.MinIO.Endpoint,
			cfg.MinIO.AccessKey,
			cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket,
			cfg.MinIO.UseSSL,
		)
	case config.STORE_S3:
		primary, err = NewS3Storage(ctx, cfg.S3.Bucket)
	default:
		err = fmt.Errorf("unknown asset store %q", cfg.Assets.Store)
	}
	if err != nil {
		return nil, nil, err
	}
	return primary, defaults, nil
}
