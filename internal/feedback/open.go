package feedback

import (
	"fmt"

	"github.com/oncology-cds-engine/internal/domain"
)

// Open creates the store selected by the feedback configuration.
func Open(cfg domain.FeedbackConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("feedback.path is required for the sqlite driver")
		}
		return NewSQLiteStore(cfg.Path)
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("feedback.url is required for the postgres driver")
		}
		return NewPostgresStoreFromURL(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported feedback driver %q", cfg.Driver)
	}
}
