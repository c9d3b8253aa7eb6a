package gormrepo

import (
	"context"
	"errors"
	"time"

	"flashmirror/internal/adapter/repo/gorm/model"
	"flashmirror/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	sessionActive = "active"
	sessionClosed = "closed"
)

var ErrSessionClosed = errors.New("game session is closed")

type GameSessionRepo struct {
	db *gorm.DB
}

func NewGameSessionRepo(db *gorm.DB) GameSessionRepo {
	return GameSessionRepo{db: db}
}

// EnsureActive creates the session row on first use and fails if the
// session was already closed.
func (r GameSessionRepo) EnsureActive(ctx context.Context, sessionID string, startedAt time.Time) error {
	db := getDBFromCtx(ctx, r.db)
	m := model.GameSession{SessionID: sessionID, Status: sessionActive, StartedAt: startedAt}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
		return err
	}
	var row model.GameSession
	if err := db.Where(&model.GameSession{SessionID: sessionID}).Take(&row).Error; err != nil {
		return err
	}
	if row.Status == sessionClosed {
		return ErrSessionClosed
	}
	return nil
}

func (r GameSessionRepo) Close(ctx context.Context, sessionID string, closedAt time.Time) error {
	res := getDBFromCtx(ctx, r.db).
		Model(&model.GameSession{}).
		Where(&model.GameSession{SessionID: sessionID}).
		Updates(map[string]any{"status": sessionClosed, "closed_at": closedAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}
