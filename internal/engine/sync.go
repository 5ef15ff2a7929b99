package engine

import (
	"context"

	"go.uber.org/zap"

	"execedge/internal/storage"
)

// SyncCatalog upserts the catalog's habits into the store so completions can
// reference them. Habits that exist only in the store are left alone.
func (s *Service) SyncCatalog(ctx context.Context) (int, error) {
	err := s.repo.InTx(ctx, func(tx storage.Repository) error {
		for _, h := range s.catalog.Habits {
			if err := tx.UpsertHabit(ctx, h.Definition()); err != nil {
				return storeErr("upsert habit", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, storeErr("sync catalog", err)
	}
	s.log.Debug("catalog synced", zap.Int("habits", len(s.catalog.Habits)))
	return len(s.catalog.Habits), nil
}
