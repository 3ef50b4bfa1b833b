package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
)

// ErrUnavailable marks failures where the database could not be reached or
// timed out, as opposed to a rejected write.
var ErrUnavailable = errors.New("store unavailable")

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenPostgres connects to dsn and applies the pool limits.
func OpenPostgres(dsn string, pool PoolConfig) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, classify(err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return conn, nil
}

// Migrate runs GORM auto-migrations for the game tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	return conn.AutoMigrate(&GameRecord{}, &TransactionRecord{})
}

// Gorm stores the game snapshot as jsonb and mirrors each ledger entry into
// the transactions table.
type Gorm struct {
	db *gorm.DB
}

var (
	_ Store          = (*Gorm)(nil)
	_ TransactionLog = (*Gorm)(nil)
)

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) SaveGame(ctx context.Context, version int, s engine.State) error {
	rec, err := toGameRecord(version, s)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", s.Game.ID, err)
	}
	rec.UpdatedAt = time.Now().UTC()

	txRows := make([]TransactionRecord, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		txRows = append(txRows, toTransactionRecord(tx))
	}

	write := func() error {
		return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "version", "jury_id", "deposit_amount", "snapshot", "updated_at"}),
			}).Create(&rec).Error
			if err != nil {
				return err
			}
			if len(txRows) == 0 {
				return nil
			}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(txRows, 100).Error
		})
	}

	err = write()
	if err != nil && pgconn.SafeToRetry(err) {
		err = write()
	}
	if err != nil {
		return fmt.Errorf("save game %s: %w", s.Game.ID, classify(err))
	}
	return nil
}

func (g *Gorm) LoadGame(ctx context.Context, id string) (Record, error) {
	var rec GameRecord
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load game %s: %w", id, classify(err))
	}
	out, err := fromGameRecord(rec)
	if err != nil {
		return Record{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	return out, nil
}

func (g *Gorm) ListGames(ctx context.Context) ([]string, error) {
	var ids []string
	if err := g.db.WithContext(ctx).Model(&GameRecord{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list games: %w", classify(err))
	}
	return ids, nil
}

// Transactions reads the mirrored ledger rows for gameID in sequence order.
func (g *Gorm) Transactions(ctx context.Context, gameID string) ([]engine.Transaction, error) {
	var rows []TransactionRecord
	err := g.db.WithContext(ctx).Where("game_id = ?", gameID).Order("seq").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions %s: %w", gameID, classify(err))
	}
	out := make([]engine.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromTransactionRecord(r))
	}
	return out, nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var connErr *pgconn.ConnectError
	if pgconn.Timeout(err) || errors.As(err, &connErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
