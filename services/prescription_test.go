package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"PrescriptionPad/models"
	"PrescriptionPad/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRenderer struct {
	err   error
	texts []string
}

func (r *stubRenderer) Render(text string) (VisualCode, error) {
	r.texts = append(r.texts, text)
	if r.err != nil {
		return VisualCode{}, r.err
	}
	return VisualCode{Text: text, PNG: []byte("png:" + text)}, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T) (*Manager, *RecordStore, *clock, *stubRenderer) {
	t.Helper()
	clk := &clock{t: time.Date(2026, 10, 19, 15, 4, 5, 0, time.Local)}
	store := NewRecordStore(storage.NewMemory(), zap.NewNop())
	renderer := &stubRenderer{}
	return NewManager(store, renderer, zap.NewNop(), WithClock(clk.now)), store, clk, renderer
}

func fillForm(m *Manager, doctor, patient, notes string, meds ...models.MedicationEntry) {
	m.SyncForm(Form{Doctor: doctor, Patient: patient, Notes: notes, Meds: meds})
}

func aspirin() models.MedicationEntry {
	return models.MedicationEntry{Name: "Aspirin", Dose: "100mg", Freq: "daily"}
}

func TestSaveExample(t *testing.T) {
	m, store, clk, renderer := newTestManager(t)
	ctx := context.Background()
	fillForm(m, "Dr. A", "Bob", "", aspirin())

	saved, err := m.Save(ctx)
	require.NoError(t, err)

	assert.Equal(t, clk.t.UnixMilli(), saved.ID)
	assert.Equal(t, "10/19/2026, 3:04:05 PM", saved.Date)
	assert.Len(t, saved.Meds, 1)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, saved, stored[0])

	view := m.View(ctx, "")
	assert.Equal(t, models.Message{Text: PRESCRIPTION_SAVED}, view.Message)
	require.NotNil(t, view.Code)
	assert.Equal(t, CodeText(saved), view.Code.Text)
	assert.Equal(t, []string{CodeText(saved)}, renderer.texts)

	found, err := m.List(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []models.Prescription{saved}, found)

	none, err := m.List(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, NO_PRESCRIPTIONS, m.View(ctx, "zzz").Empty)
}

func TestSaveValidationLeavesStoreUntouched(t *testing.T) {
	m, store, _, renderer := newTestManager(t)
	ctx := context.Background()
	fillForm(m, "Dr. A", "Bob", "", aspirin())
	_, err := m.Save(ctx)
	require.NoError(t, err)

	fillForm(m, "Dr. A", "   ", "", aspirin())
	_, err = m.Save(ctx)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Patient name required", validationErr.Message)
	assert.Equal(t, models.Message{Text: PATIENT_NAME_REQUIRED, Error: true}, m.View(ctx, "").Message)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Len(t, renderer.texts, 1)
}

func TestSaveRejectsRowsWithoutNames(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	fillForm(m, "Dr. A", "Bob", "", models.MedicationEntry{Dose: "5mg"})
	_, err := m.Save(context.Background())
	assert.EqualError(t, err, MEDICINE_REQUIRED)
}

func TestSavesAreNewestFirst(t *testing.T) {
	m, store, clk, _ := newTestManager(t)
	ctx := context.Background()

	patients := []string{"Ann", "Bob", "Cid", "Dee"}
	for i, patient := range patients {
		fillForm(m, "Dr. A", patient, "", aspirin())
		_, err := m.Save(ctx)
		require.NoError(t, err)
		// two saves land in the same millisecond
		if i != 1 {
			clk.advance(time.Second)
		}
	}

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, []string{"Dee", "Cid", "Bob", "Ann"}, patientsOf(stored))
	for i := 1; i < len(stored); i++ {
		assert.Greater(t, stored[i-1].ID, stored[i].ID)
	}
}

func TestCreateNormalizesAndStamps(t *testing.T) {
	m, _, clk, _ := newTestManager(t)
	saved, err := m.Create(context.Background(), models.Prescription{
		ID:      42,
		Date:    "yesterday",
		Doctor:  " Dr. A ",
		Patient: "Bob",
		Meds:    []models.MedicationEntry{aspirin(), {Name: " "}},
	})
	require.NoError(t, err)
	assert.Equal(t, clk.t.UnixMilli(), saved.ID)
	assert.NotEqual(t, "yesterday", saved.Date)
	assert.Equal(t, "Dr. A", saved.Doctor)
	assert.Equal(t, []models.MedicationEntry{aspirin()}, saved.Meds)

	view := m.View(context.Background(), "")
	assert.Equal(t, models.Message{}, view.Message, "creating outside the page leaves its message line alone")
	assert.Nil(t, view.Code)
	assert.Len(t, view.Records, 1)

	_, err = m.Create(context.Background(), models.Prescription{Doctor: "Dr. A"})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, PATIENT_NAME_REQUIRED, validationErr.Message)
	assert.Equal(t, models.Message{}, m.View(context.Background(), "").Message)
}

func TestLoadRoundTrip(t *testing.T) {
	m, store, clk, renderer := newTestManager(t)
	ctx := context.Background()
	meds := []models.MedicationEntry{aspirin(), {Name: "Ibuprofen", Dose: "200mg", Freq: "twice daily"}}
	fillForm(m, "Dr. A", "Bob", "after food", meds...)
	saved, err := m.Save(ctx)
	require.NoError(t, err)

	require.True(t, m.ClearForm(Confirmed(true)))
	assert.Nil(t, m.View(ctx, "").Code)

	loaded, err := m.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	form := m.Form()
	assert.Equal(t, "Dr. A", form.Doctor)
	assert.Equal(t, "Bob", form.Patient)
	assert.Equal(t, "after food", form.Notes)
	assert.Equal(t, meds, form.Meds)
	assert.Equal(t, CodeText(saved), renderer.texts[len(renderer.texts)-1])

	// saving a loaded record creates a new one
	clk.advance(time.Minute)
	again, err := m.Save(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, saved.ID, again.ID)
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, saved, stored[1])
}

func TestLoadUnknownID(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	_, err := m.Load(context.Background(), 7)
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)
	assert.True(t, m.View(context.Background(), "").Message.Error)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	m, store, clk, _ := newTestManager(t)
	ctx := context.Background()
	var ids []int64
	for _, patient := range []string{"Ann", "Bob", "Cid"} {
		fillForm(m, "Dr. A", patient, "", aspirin())
		p, err := m.Save(ctx)
		require.NoError(t, err)
		ids = append(ids, p.ID)
		clk.advance(time.Second)
	}

	require.NoError(t, m.Delete(ctx, ids[1]))

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cid", "Ann"}, patientsOf(stored))
	view := m.View(ctx, "")
	assert.Equal(t, models.Message{Text: PRESCRIPTION_DELETED}, view.Message)
	assert.Nil(t, view.Code)

	err = m.Delete(ctx, ids[1])
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)
	stored, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestListFilter(t *testing.T) {
	m, _, clk, _ := newTestManager(t)
	ctx := context.Background()
	for _, pair := range [][2]string{{"Dr. House", "Ann"}, {"Dr. Who", "Bob"}, {"Dr. Strange", "Bobby"}} {
		fillForm(m, pair[0], pair[1], "", aspirin())
		_, err := m.Save(ctx)
		require.NoError(t, err)
		clk.advance(time.Second)
	}

	got, err := m.List(ctx, "BOB")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bobby", "Bob"}, patientsOf(got))

	got, err = m.List(ctx, "house")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann"}, patientsOf(got))

	// the haystack is patient followed by doctor
	got, err = m.List(ctx, "anndr")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann"}, patientsOf(got))

	got, err = m.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// whitespace is part of the needle
	got, err = m.List(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = m.List(ctx, "r. w")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, patientsOf(got))

	view := m.View(ctx, "nobody")
	assert.Empty(t, view.Records)
	assert.Equal(t, NO_PRESCRIPTIONS, view.Empty)
}

func TestClearAll(t *testing.T) {
	m, store, _, _ := newTestManager(t)
	ctx := context.Background()
	fillForm(m, "Dr. A", "Bob", "", aspirin())
	_, err := m.Save(ctx)
	require.NoError(t, err)

	var asked string
	cleared, err := m.ClearAll(ctx, func(prompt string) bool {
		asked = prompt
		return false
	})
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Equal(t, CONFIRM_CLEAR_ALL, asked)
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.NotNil(t, m.View(ctx, "").Code)

	cleared, err = m.ClearAll(ctx, Confirmed(true))
	require.NoError(t, err)
	assert.True(t, cleared)
	stored, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
	_, err = store.kv.Get(ctx, STORAGE_KEY)
	assert.ErrorIs(t, err, storage.ErrNotFound, "clearing removes the key")
	view := m.View(ctx, "")
	assert.Nil(t, view.Code)
	assert.Equal(t, NO_PRESCRIPTIONS, view.Empty)
	assert.Equal(t, "Bob", view.Form.Patient, "clearing the list keeps the form")
}

func TestClearForm(t *testing.T) {
	m, store, _, _ := newTestManager(t)
	ctx := context.Background()
	fillForm(m, "Dr. A", "Bob", "n", aspirin())
	_, err := m.Save(ctx)
	require.NoError(t, err)

	assert.False(t, m.ClearForm(Confirmed(false)))
	assert.Equal(t, "Dr. A", m.Form().Doctor)

	assert.True(t, m.ClearForm(Confirmed(true)))
	assert.Equal(t, Form{}, m.Form())
	assert.Nil(t, m.View(ctx, "").Code)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestMedRows(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	assert.Len(t, m.Form().Meds, 1)
	m.AddMedRow()
	m.AddMedRow(aspirin())
	assert.Len(t, m.Form().Meds, 3)
	assert.True(t, m.RemoveMedRow(1))
	assert.Equal(t, []models.MedicationEntry{{}, aspirin()}, m.Form().Meds)
}

func TestPrint(t *testing.T) {
	m, store, _, renderer := newTestManager(t)
	ctx := context.Background()

	fillForm(m, "Dr. A", "", "", aspirin())
	_, err := m.Print()
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	view := m.View(ctx, "")
	assert.Equal(t, models.Message{Text: FILL_FORM_BEFORE_PRINT, Error: true}, view.Message)
	assert.False(t, view.PrintReady)
	assert.Empty(t, renderer.texts)
	_, ok := m.TakePrint()
	assert.False(t, ok, "an invalid form queues nothing")

	fillForm(m, " Dr. A", "Bob", "rest", aspirin(), models.MedicationEntry{})
	doc, err := m.Print()
	require.NoError(t, err)
	assert.Equal(t, "Dr. A", doc.Prescription.Doctor)
	assert.Len(t, doc.Prescription.Meds, 1)
	require.NotNil(t, doc.Code)
	assert.Equal(t, CodeText(doc.Prescription), doc.Code.Text)
	assert.Equal(t, 600, doc.Width)
	assert.Equal(t, 800, doc.Height)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "printing does not save")

	view = m.View(ctx, "")
	assert.True(t, view.PrintReady)
	assert.Equal(t, 600, view.PrintWidth)
	assert.False(t, m.View(ctx, "").PrintReady, "the print window is announced once")

	queued, ok := m.TakePrint()
	require.True(t, ok)
	assert.Equal(t, doc, queued)
	_, ok = m.TakePrint()
	assert.False(t, ok)
}

func TestRenderFailureDoesNotFailSave(t *testing.T) {
	m, store, _, renderer := newTestManager(t)
	renderer.err = errors.New("data too long")
	ctx := context.Background()
	fillForm(m, "Dr. A", "Bob", "", aspirin())

	_, err := m.Save(ctx)
	require.NoError(t, err)
	assert.Nil(t, m.View(ctx, "").Code)
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	doc, err := m.Print()
	require.NoError(t, err)
	assert.Nil(t, doc.Code)
}

func TestStorageFailureSurfacesAsMessage(t *testing.T) {
	boom := errors.New("connection refused")
	store := NewRecordStore(failingKV{err: boom}, zap.NewNop())
	m := NewManager(store, &stubRenderer{}, zap.NewNop())
	ctx := context.Background()
	fillForm(m, "Dr. A", "Bob", "", aspirin())

	_, err := m.Save(ctx)
	assert.ErrorIs(t, err, boom)
	view := m.View(ctx, "")
	assert.Equal(t, models.Message{Text: UNABLE_TO_SAVE_PRESCRIPTION, Error: true}, view.Message)
	assert.True(t, view.LoadFail)
	assert.Equal(t, UNABLE_TO_LOAD_PRESCRIPTIONS, view.Empty)
}

func TestCodeAndPrintStored(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	ctx := context.Background()
	fillForm(m, "Dr. A", "Bob", "", aspirin())
	saved, err := m.Save(ctx)
	require.NoError(t, err)

	code, err := m.Code(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, CodeText(saved), code.Text)

	doc, err := m.PrintStored(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, doc.Prescription)

	_, err = m.Code(ctx, 1)
	assert.ErrorIs(t, err, ErrPrescriptionNotFound)
}

func patientsOf(list []models.Prescription) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Patient)
	}
	return out
}
