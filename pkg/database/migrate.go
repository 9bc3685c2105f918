package database

import (
	"fmt"

	"pazuzu-registry/internal/model"

	"gorm.io/gorm"
)

// Migrate creates or updates the catalog schema. The join tables are
// registered first so gorm uses their explicit definitions, foreign keys
// included, instead of generating its own.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("enable pgcrypto: %w", err)
	}

	if err := db.SetupJoinTable(&model.Feature{}, "Dependencies", &model.FeatureDependency{}); err != nil {
		return fmt.Errorf("setup feature_dependencies: %w", err)
	}
	if err := db.SetupJoinTable(&model.Feature{}, "Tags", &model.FeatureTag{}); err != nil {
		return fmt.Errorf("setup feature_tags: %w", err)
	}

	models := []interface{}{
		&model.Tag{},
		&model.Feature{},
		&model.FeatureDependency{},
		&model.FeatureTag{},
		&model.CatalogRevision{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// A feature may not depend on itself; longer cycles are checked in the service.
	if err := db.Exec(`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_feature_dependencies_no_self') THEN
			ALTER TABLE feature_dependencies ADD CONSTRAINT chk_feature_dependencies_no_self CHECK (feature_id <> dependency_id);
		END IF;
	END $$;`).Error; err != nil {
		return fmt.Errorf("add self dependency check: %w", err)
	}

	return nil
}
