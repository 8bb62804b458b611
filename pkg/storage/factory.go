package storage

import (
	"fmt"

	config "armada/configs"
	"armada/pkg/sysinfo"
)

// NewOutputStoreFromConfig builds the output store named by OUTPUT_BACKEND.
func NewOutputStoreFromConfig(cfg *config.Config) (OutputStore, error) {
	switch cfg.OutputBackend {
	case "s3":
		return NewS3OutputStore(S3OutputStoreConfig{
			Bucket: cfg.OutputS3Bucket,
			Prefix: "output/runs/",
			Region: cfg.OutputS3Region,
		})
	case "local":
		return NewLocalOutputStore(cfg.OutputLocalDir, sysinfo.CurrentUmask())
	default:
		return nil, fmt.Errorf("unknown output backend %q", cfg.OutputBackend)
	}
}
