package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq"

	appconfig "github.com/wolfman30/foundry-guide/internal/config"
	"github.com/wolfman30/foundry-guide/internal/content"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// ContentSourcePostgres selects the faq_entries table as the content source.
const ContentSourcePostgres = "postgres"

// BuildContentSource picks the FAQ source named by CONTENT_SOURCE: an
// s3://bucket/key object, the postgres table, or a local json/csv file.
// The returned closer releases whatever the source holds open.
func BuildContentSource(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (content.Source, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}
	location := strings.TrimSpace(cfg.ContentSource)

	switch {
	case strings.HasPrefix(location, "s3://"):
		bucket, key, ok := content.ParseS3URI(location)
		if !ok {
			return nil, nil, fmt.Errorf("bootstrap: invalid content source %q", location)
		}
		if loadAWS == nil {
			return nil, nil, fmt.Errorf("bootstrap: aws config loader required for %s", location)
		}
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
		logger.Info("content source: s3", "bucket", bucket, "key", key)
		return content.NewS3Source(client, bucket, key), noop, nil

	case strings.EqualFold(location, ContentSourcePostgres):
		databaseURL := strings.TrimSpace(cfg.ContentDatabaseURL)
		if databaseURL == "" {
			databaseURL = strings.TrimSpace(cfg.DatabaseURL)
		}
		if databaseURL == "" {
			return nil, nil, fmt.Errorf("bootstrap: CONTENT_DATABASE_URL is required for the postgres content source")
		}
		db, err := sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: open content database: %w", err)
		}
		logger.Info("content source: postgres")
		return content.NewSQLSource(db, ""), func() { _ = db.Close() }, nil

	case location == "":
		return nil, nil, fmt.Errorf("bootstrap: CONTENT_SOURCE is empty")

	default:
		logger.Info("content source: file", "path", location)
		return content.NewFileSource(location), noop, nil
	}
}
