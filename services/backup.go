package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const BACKUP_FILE_LAYOUT = "20060102-150405"

/*
* Write every stored prescription as indented JSON into dir
* The file name carries the backup time so runs never overwrite each other
 */
func WriteBackup(ctx context.Context, m *Manager, dir string, at time.Time) (string, error) {
	records, err := m.Backup(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("prescriptions-%s.json", at.Format(BACKUP_FILE_LAYOUT)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}
