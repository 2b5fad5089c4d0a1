package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/piwi3910/wifiplan/internal/model"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the portable form of the application settings.
type BackupData struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Config    model.AppConfig `json:"config"`
}

// ExportBackup writes config to exportPath wrapped in a versioned envelope.
func ExportBackup(exportPath string, config model.AppConfig) error {
	backup := BackupData{
		Version:   BackupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal backup data")
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create export directory %s", dir)
	}
	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write backup file %s", exportPath)
	}
	return nil
}

// ImportBackup reads a backup file. Settings missing from it keep their
// defaults and the result is validated.
func ImportBackup(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, errors.Wrapf(err, "failed to read backup file %s", importPath)
	}
	backup := BackupData{Config: model.DefaultAppConfig()}
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, errors.Wrapf(err, "failed to parse backup file %s", importPath)
	}
	if backup.Version == "" {
		return BackupData{}, errors.Errorf("invalid backup file %s: missing version field", importPath)
	}
	if err := Validate(backup.Config); err != nil {
		return BackupData{}, errors.Wrapf(err, "invalid backup file %s", importPath)
	}
	return backup, nil
}
