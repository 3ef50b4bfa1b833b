package store

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
)

type GameRecord struct {
	ID            string         `gorm:"primaryKey;size:64"`
	Status        string         `gorm:"size:16;not null;index"`
	Version       int            `gorm:"not null"`
	CreatedBy     string         `gorm:"size:128;not null"`
	JuryID        string         `gorm:"size:128"`
	DepositAmount int64          `gorm:"not null"`
	Snapshot      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"not null"`
	UpdatedAt     time.Time      `gorm:"not null"`
}

func (GameRecord) TableName() string { return "games" }

// TransactionRecord mirrors the ledger row by row; rows are only ever inserted.
type TransactionRecord struct {
	ID            string    `gorm:"primaryKey;size:64"`
	GameID        string    `gorm:"size:64;not null;uniqueIndex:idx_transactions_game_seq"`
	Seq           int       `gorm:"not null;uniqueIndex:idx_transactions_game_seq"`
	PlayerID      string    `gorm:"size:128;index"`
	Type          string    `gorm:"size:32;not null"`
	Amount        int64     `gorm:"not null"`
	BalanceBefore int64     `gorm:"not null"`
	BalanceAfter  int64     `gorm:"not null"`
	DepositBefore int64     `gorm:"not null"`
	DepositAfter  int64     `gorm:"not null"`
	QuestionID    string    `gorm:"size:64"`
	AnswerID      string    `gorm:"size:64"`
	Description   string    `gorm:"size:280;not null"`
	Timestamp     time.Time `gorm:"not null"`
}

func (TransactionRecord) TableName() string { return "transactions" }

func toGameRecord(version int, s engine.State) (GameRecord, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return GameRecord{}, err
	}
	return GameRecord{
		ID:            s.Game.ID,
		Status:        string(s.Game.Status),
		Version:       version,
		CreatedBy:     s.Game.CreatedBy,
		JuryID:        s.Game.JuryID,
		DepositAmount: s.Game.DepositAmount,
		Snapshot:      datatypes.JSON(raw),
		CreatedAt:     s.Game.CreatedAt,
	}, nil
}

func fromGameRecord(rec GameRecord) (Record, error) {
	var s engine.State
	if err := json.Unmarshal(rec.Snapshot, &s); err != nil {
		return Record{}, err
	}
	return Record{Version: rec.Version, State: s}, nil
}

func toTransactionRecord(tx engine.Transaction) TransactionRecord {
	return TransactionRecord{
		ID:            tx.ID,
		GameID:        tx.GameID,
		Seq:           tx.Seq,
		PlayerID:      tx.PlayerID,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		BalanceBefore: tx.BalanceBefore,
		BalanceAfter:  tx.BalanceAfter,
		DepositBefore: tx.DepositBefore,
		DepositAfter:  tx.DepositAfter,
		QuestionID:    tx.QuestionID,
		AnswerID:      tx.AnswerID,
		Description:   tx.Description,
		Timestamp:     tx.Timestamp,
	}
}

func fromTransactionRecord(rec TransactionRecord) engine.Transaction {
	return engine.Transaction{
		ID:            rec.ID,
		GameID:        rec.GameID,
		Seq:           rec.Seq,
		PlayerID:      rec.PlayerID,
		Type:          engine.TransactionType(rec.Type),
		Amount:        rec.Amount,
		BalanceBefore: rec.BalanceBefore,
		BalanceAfter:  rec.BalanceAfter,
		DepositBefore: rec.DepositBefore,
		DepositAfter:  rec.DepositAfter,
		QuestionID:    rec.QuestionID,
		AnswerID:      rec.AnswerID,
		Description:   rec.Description,
		Timestamp:     rec.Timestamp,
	}
}
