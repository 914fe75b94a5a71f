package db

import (
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errDBUnavailable = errors.New("database unavailable")

// Open connects to postgres and migrates the schema. TranslateError is on so
// unique-constraint violations surface as gorm.ErrDuplicatedKey, which the
// generation repository maps onto the domain conflict error.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := gormDB.AutoMigrate(
		&RuleModel{},
		&RuleRequirementModel{},
		&RequirementModel{},
		&AuditModel{},
		&GenerationModel{},
		&RuleMatchModel{},
		&RequiredClaimModel{},
		&ClaimSourceModel{},
	); err != nil {
		return nil, err
	}
	return gormDB, nil
}
