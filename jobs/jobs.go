package jobs

import (
	"context"
	"fmt"
	"time"

	"PrescriptionPad/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

/*
* Schedule the prescription backup with a standard five field cron spec
* e.g. "5 0 * * *" runs every day at 00:05 AM
* The caller stops the returned scheduler on shutdown
 */
func StartBackupScheduler(schedule string, manager *services.Manager, dir string, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		logger.Info("Running prescription backup", zap.String("dir", dir))
		RunBackup(context.Background(), manager, dir, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}

func RunBackup(ctx context.Context, manager *services.Manager, dir string, logger *zap.Logger) (string, error) {
	path, err := services.WriteBackup(ctx, manager, dir, time.Now())
	if err != nil {
		logger.Error("Error from WriteBackup", zap.Error(err))
		return "", err
	}
	logger.Info("Prescription backup written", zap.String("path", path))
	return path, nil
}
