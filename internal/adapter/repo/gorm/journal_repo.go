package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flashmirror/internal/adapter/repo/gorm/model"
	"flashmirror/internal/app/ports"
	"flashmirror/internal/domain/snapshot"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JournalRepo struct {
	db       *gorm.DB
	tx       ports.TxManager
	sessions GameSessionRepo
}

func NewJournalRepo(db *gorm.DB) JournalRepo {
	return JournalRepo{db: db, tx: NewTxManager(db), sessions: NewGameSessionRepo(db)}
}

func (r JournalRepo) Append(ctx context.Context, entry ports.JournalEntry) error {
	b, err := json.Marshal(entry.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	row := model.SnapshotJournal{
		SessionID: entry.SessionID,
		IntentID:  entry.IntentID,
		Intent:    entry.Intent,
		Step:      int32(entry.Step),
		Snapshot:  string(b),
		AppliedAt: entry.AppliedAt,
	}
	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.sessions.EnsureActive(ctx, entry.SessionID, entry.AppliedAt); err != nil {
			return fmt.Errorf("session %s: %w", entry.SessionID, err)
		}
		return getDBFromCtx(ctx, r.db).Create(&row).Error
	})
}

func (r JournalRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]ports.JournalEntry, error) {
	rows := []model.SnapshotJournal{}
	query := getDBFromCtx(ctx, r.db).
		Where(&model.SnapshotJournal{SessionID: sessionID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "id"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]ports.JournalEntry, 0, len(rows))
	for _, row := range rows {
		var s snapshot.Snapshot
		if err := json.Unmarshal([]byte(row.Snapshot), &s); err != nil {
			return nil, fmt.Errorf("decode journal entry %d: %w", row.ID, err)
		}
		out = append(out, ports.JournalEntry{
			SessionID: row.SessionID,
			IntentID:  row.IntentID,
			Intent:    row.Intent,
			Step:      int(row.Step),
			Snapshot:  s,
			AppliedAt: row.AppliedAt,
		})
	}
	return out, nil
}

func (r JournalRepo) CloseSession(ctx context.Context, sessionID string, closedAt time.Time) error {
	return r.sessions.Close(ctx, sessionID, closedAt)
}
