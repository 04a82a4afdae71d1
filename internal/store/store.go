package store

import (
	"context"
	stderrors "errors"

	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultListLimit = 50

// RunStore archives backtest runs in a SQL database.
type RunStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewRunStore wraps an open gorm connection. Call Migrate before first use.
func NewRunStore(db *gorm.DB, log *logger.Logger) *RunStore {
	return &RunStore{db: db, log: log}
}

// OpenPostgres connects to Postgres and migrates the archive tables.
func OpenPostgres(config DatabaseConfig, log *logger.Logger) (*RunStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreUnavailable, err, "failed to connect to %s:%d/%s", config.Host, config.Port, config.DBName)
	}

	store := NewRunStore(db, log)
	if err := store.Migrate(); err != nil {
		return nil, err
	}

	log.Info("Run archive connected",
		zap.String("host", config.Host),
		zap.String("database", config.DBName),
	)

	return store, nil
}

func (s *RunStore) Migrate() error {
	if err := s.db.AutoMigrate(&RunRecord{}, &TradeRow{}); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, "failed to migrate run archive", err)
	}

	return nil
}

// SaveRun stores the run summary and its trades in one transaction. Saving
// a run ID twice replaces the earlier trades.
func (s *RunStore) SaveRun(ctx context.Context, result types.BacktestResult, resultPath string) error {
	if result.Report.ID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "run has no ID")
	}

	record := NewRunRecord(result, resultPath)
	trades := record.Trades
	record.Trades = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", record.ID).Delete(&TradeRow{}).Error; err != nil {
			return err
		}

		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		if len(trades) == 0 {
			return nil
		}

		return tx.CreateInBatches(trades, 500).Error
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to archive run %s", record.ID)
	}

	s.log.Debug("Run archived",
		zap.String("run_id", record.ID),
		zap.String("strategy", record.Strategy),
		zap.Int("trades", len(trades)),
	)

	return nil
}

// GetRun loads one run with its trades in time order.
func (s *RunStore) GetRun(ctx context.Context, id string) (RunRecord, error) {
	var record RunRecord

	err := s.db.WithContext(ctx).
		Preload("Trades", func(db *gorm.DB) *gorm.DB {
			return db.Order("time ASC, id ASC")
		}).
		First(&record, "id = ?", id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return RunRecord{}, errors.Newf(errors.ErrCodeNoDataFound, "run %s not found", id)
	}

	if err != nil {
		return RunRecord{}, errors.Wrapf(errors.ErrCodeStoreReadFailed, err, "failed to load run %s", id)
	}

	return record, nil
}

// ListRuns returns the newest runs first, optionally for one strategy.
func (s *RunStore) ListRuns(ctx context.Context, strategy string, limit int) ([]RunRecord, error) {
	var records []RunRecord

	if err := s.listQuery(s.db.WithContext(ctx), strategy, limit).Find(&records).Error; err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreReadFailed, "failed to list runs", err)
	}

	return records, nil
}

func (s *RunStore) listQuery(db *gorm.DB, strategy string, limit int) *gorm.DB {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := db.Model(&RunRecord{}).Order("run_at DESC").Limit(limit)
	if strategy != "" {
		query = query.Where("strategy = ?", strategy)
	}

	return query
}

func (s *RunStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
