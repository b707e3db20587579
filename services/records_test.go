package services

import (
	"context"
	"errors"
	"testing"

	"PrescriptionPad/models"
	"PrescriptionPad/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingKV struct {
	storage.KeyValue
	err error
}

func (f failingKV) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingKV) Set(context.Context, string, string) error   { return f.err }
func (f failingKV) Remove(context.Context, string) error         { return f.err }

func TestRecordStoreMissingBlobIsEmpty(t *testing.T) {
	store := NewRecordStore(storage.NewMemory(), zap.NewNop())
	list, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestRecordStoreCorruptBlobIsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":1}`, `"text"`, "null", `[{"id":"abc"}]`,
		`[null]`, `[{}]`, `[{"doctor":"x"}]`,
		`[{"id":1,"doctor":"Dr. A","patient":"Bob","meds":[{"name":" "}]}]`,
		`[{"id":2,"doctor":"Dr. A","patient":"Bob","meds":[{"name":"X"}]},{"doctor":"Dr. A","patient":"Ann","meds":[{"name":"X"}]}]`,
	} {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(context.Background(), STORAGE_KEY, raw))
		store := NewRecordStore(kv, zap.NewNop())

		list, err := store.Load(context.Background())
		require.NoError(t, err, raw)
		assert.Empty(t, list, raw)
	}
}

func TestRecordStoreRoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	store := NewRecordStore(kv, zap.NewNop())
	list := []models.Prescription{
		{ID: 2, Date: "d2", Doctor: "Dr. B", Patient: "Ann", Meds: []models.MedicationEntry{{Name: "X"}}},
		{ID: 1, Date: "d1", Doctor: "Dr. A", Patient: "Bob", Notes: "n", Meds: []models.MedicationEntry{{Name: "Aspirin", Dose: "100mg", Freq: "daily"}}},
	}
	require.NoError(t, store.SaveAll(context.Background(), list))

	raw, err := kv.Get(context.Background(), STORAGE_KEY)
	require.NoError(t, err)
	assert.Contains(t, raw, `"meds":[{"name":"Aspirin","dose":"100mg","freq":"daily"}]`)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, list, got)

	require.NoError(t, store.SaveAll(context.Background(), nil))
	raw, err = kv.Get(context.Background(), STORAGE_KEY)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestRecordStoreClear(t *testing.T) {
	kv := storage.NewMemory()
	store := NewRecordStore(kv, zap.NewNop())
	require.NoError(t, store.SaveAll(context.Background(), []models.Prescription{
		{ID: 1, Doctor: "Dr. A", Patient: "Bob", Meds: []models.MedicationEntry{{Name: "X"}}},
	}))

	require.NoError(t, store.Clear(context.Background()))
	_, err := kv.Get(context.Background(), STORAGE_KEY)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	list, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, store.Clear(context.Background()), "clearing twice is fine")
}

func TestRecordStoreBackendFailure(t *testing.T) {
	boom := errors.New("connection refused")
	store := NewRecordStore(failingKV{err: boom}, zap.NewNop())

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.SaveAll(context.Background(), nil), boom)
	assert.ErrorIs(t, store.Clear(context.Background()), boom)
}
