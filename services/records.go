package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"PrescriptionPad/models"
	"PrescriptionPad/storage"

	"go.uber.org/zap"
)

// RecordStore persists the whole prescription list, newest first, as one
// JSON blob under STORAGE_KEY.
type RecordStore struct {
	kv     storage.KeyValue
	key    string
	logger *zap.Logger
}

func NewRecordStore(kv storage.KeyValue, logger *zap.Logger) *RecordStore {
	return &RecordStore{kv: kv, key: STORAGE_KEY, logger: logger}
}

/*
* Read the blob and decode it
* A missing, undecodable or malformed blob is an empty list, never an error
* Only a failing backend is reported to the caller
 */
func (s *RecordStore) Load(ctx context.Context) ([]models.Prescription, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.Prescription{}, nil
	}
	if err != nil {
		s.logger.Error("Error from kv.Get", zap.String("key", s.key), zap.Error(err))
		return nil, fmt.Errorf("load prescriptions: %w", err)
	}
	var list []models.Prescription
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("Stored prescriptions are corrupt, treating as empty", zap.Error(err))
		return []models.Prescription{}, nil
	}
	if list == nil {
		list = []models.Prescription{}
	}
	for i, p := range list {
		if msg := wellFormed(p); msg != "" {
			s.logger.Warn("Stored prescriptions are malformed, treating as empty", zap.Int("index", i), zap.String("reason", msg))
			return []models.Prescription{}, nil
		}
	}
	return list, nil
}

func wellFormed(p models.Prescription) string {
	if p.ID == 0 {
		return "missing id"
	}
	return Validate(normalize(p))
}

// Clear removes the blob, the next Load sees an empty list.
func (s *RecordStore) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("Error from kv.Remove", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("clear prescriptions: %w", err)
	}
	return nil
}

func (s *RecordStore) SaveAll(ctx context.Context, list []models.Prescription) error {
	if list == nil {
		list = []models.Prescription{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode prescriptions: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(raw)); err != nil {
		s.logger.Error("Error from kv.Set", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("save prescriptions: %w", err)
	}
	return nil
}
