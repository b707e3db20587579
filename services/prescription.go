package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"PrescriptionPad/models"

	"go.uber.org/zap"
)

var ErrPrescriptionNotFound = errors.New("prescription not found")

// DATE_LAYOUT renders creation times the way a browser's toLocaleString does.
const DATE_LAYOUT = "1/2/2006, 3:04:05 PM"

// Confirmer asks the user to confirm a destructive action.
type Confirmer func(prompt string) bool

func Confirmed(ok bool) Confirmer {
	return func(string) bool { return ok }
}

type ManagerOption func(*Manager)

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// Manager owns the persisted prescriptions, the editable form and what the
// page currently shows in its code container and message line.
type Manager struct {
	mu       sync.Mutex
	store    *RecordStore
	renderer CodeRenderer
	logger   *zap.Logger
	now      func() time.Time

	form    Form
	code    *VisualCode
	message models.Message

	// printed is the document waiting for the print window, announced once
	printed  *PrintDocument
	announce bool
}

func NewManager(store *RecordStore, renderer CodeRenderer, logger *zap.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
		form:     NewForm(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// View is everything the main page renders.
type View struct {
	Form     Form
	Search   string
	Records  []models.Prescription
	Code     *VisualCode
	Message  models.Message
	Empty    string
	Prompts  map[string]string
	LoadFail bool

	// PrintReady asks the page to open the print window
	PrintReady  bool
	PrintWidth  int
	PrintHeight int
}

func (m *Manager) View(ctx context.Context, filter string) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	view := View{
		Form:    m.form.clone(),
		Search:  filter,
		Code:    m.code,
		Message: m.message,
		Prompts: map[string]string{
			"clearAll":  CONFIRM_CLEAR_ALL,
			"clearForm": CONFIRM_CLEAR_FORM,
		},
		PrintReady:  m.announce && m.printed != nil,
		PrintWidth:  PRINT_WINDOW_WIDTH,
		PrintHeight: PRINT_WINDOW_HEIGHT,
	}
	m.announce = false
	records, err := m.list(ctx, filter)
	if err != nil {
		view.LoadFail = true
		view.Empty = UNABLE_TO_LOAD_PRESCRIPTIONS
		return view
	}
	view.Records = records
	if len(records) == 0 {
		view.Empty = NO_PRESCRIPTIONS
	}
	return view
}

func (m *Manager) Form() Form {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form.clone()
}

// SyncForm replaces the form with what the user currently has on screen.
func (m *Manager) SyncForm(f Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = f.clone()
}

func (m *Manager) AddMedRow(initial ...models.MedicationEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form.AddMedRow(initial...)
}

func (m *Manager) RemoveMedRow(index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form.RemoveMedRow(index)
}

/*
* Read the form and validate it, abort with the validation message
* Stamp id and date, prepend and persist the whole list
* Show the success message and export the visual code
 */
func (m *Manager) Save(ctx context.Context) (models.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.create(ctx, m.form.Read())
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			m.showMsg(validationErr.Message, true)
		} else {
			m.showMsg(UNABLE_TO_SAVE_PRESCRIPTION, true)
		}
		return models.Prescription{}, err
	}
	m.showMsg(PRESCRIPTION_SAVED, false)
	m.export(p)
	return p, nil
}

// Create saves a prescription that did not come from the form. The page's
// message line and code container are left alone.
func (m *Manager) Create(ctx context.Context, candidate models.Prescription) (models.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(ctx, normalize(candidate))
}

func (m *Manager) create(ctx context.Context, p models.Prescription) (models.Prescription, error) {
	if msg := Validate(p); msg != "" {
		return models.Prescription{}, &ValidationError{Message: msg}
	}
	all, err := m.store.Load(ctx)
	if err != nil {
		return models.Prescription{}, err
	}

	now := m.now()
	p.ID = now.UnixMilli()
	// ids double as the newest-first ordering key, so they must keep decreasing
	if len(all) > 0 && p.ID <= all[0].ID {
		p.ID = all[0].ID + 1
	}
	p.Date = now.Format(DATE_LAYOUT)

	all = append([]models.Prescription{p}, all...)
	if err := m.store.SaveAll(ctx, all); err != nil {
		return models.Prescription{}, err
	}
	m.logger.Info("Prescription saved", zap.Int64("id", p.ID), zap.Int("meds", len(p.Meds)))
	return p, nil
}

// List returns the stored prescriptions whose patient+doctor contains filter.
func (m *Manager) List(ctx context.Context, filter string) ([]models.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(ctx, filter)
}

func (m *Manager) list(ctx context.Context, filter string) ([]models.Prescription, error) {
	all, err := m.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	matched := []models.Prescription{}
	for _, p := range all {
		if p.Matches(filter) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (m *Manager) Get(ctx context.Context, id int64) (models.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(ctx, id)
}

func (m *Manager) get(ctx context.Context, id int64) (models.Prescription, error) {
	all, err := m.store.Load(ctx)
	if err != nil {
		return models.Prescription{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Prescription{}, fmt.Errorf("%w: %d", ErrPrescriptionNotFound, id)
}

/*
* Copy the stored prescription into the form and regenerate its code
* The stored record is untouched, the next save creates a new one
 */
func (m *Manager) Load(ctx context.Context, id int64) (models.Prescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(ctx, id)
	if err != nil {
		m.logger.Warn("Error from get", zap.Int64("id", id), zap.Error(err))
		m.showMsg(ErrPrescriptionNotFound.Error(), true)
		return models.Prescription{}, err
	}
	m.form.Populate(p)
	m.export(p)
	return p, nil
}

func (m *Manager) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	all, err := m.store.Load(ctx)
	if err != nil {
		m.showMsg(UNABLE_TO_LOAD_PRESCRIPTIONS, true)
		return err
	}
	kept := make([]models.Prescription, 0, len(all))
	for _, p := range all {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(all) {
		m.showMsg(ErrPrescriptionNotFound.Error(), true)
		return fmt.Errorf("%w: %d", ErrPrescriptionNotFound, id)
	}
	if err := m.store.SaveAll(ctx, kept); err != nil {
		m.showMsg(UNABLE_TO_SAVE_PRESCRIPTION, true)
		return err
	}
	m.logger.Info("Prescription deleted", zap.Int64("id", id))
	m.showMsg(PRESCRIPTION_DELETED, false)
	m.code = nil
	return nil
}

// ClearAll erases every stored prescription once confirm agrees.
func (m *Manager) ClearAll(ctx context.Context, confirm Confirmer) (bool, error) {
	if !confirm(CONFIRM_CLEAR_ALL) {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(ctx); err != nil {
		m.showMsg(UNABLE_TO_SAVE_PRESCRIPTION, true)
		return false, err
	}
	m.logger.Info("All prescriptions deleted")
	m.showMsg(PRESCRIPTIONS_CLEARED, false)
	m.code = nil
	return true, nil
}

// ClearForm empties the form once confirm agrees. Stored data is untouched.
func (m *Manager) ClearForm(confirm Confirmer) bool {
	if !confirm(CONFIRM_CLEAR_FORM) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form.Reset()
	m.code = nil
	m.showMsg(FORM_CLEARED, false)
	return true
}

/*
* Validate the current form with the save rule, no prior save needed
* An invalid form only shows the message, nothing is queued for printing
* Render the code before handing back the document so it is ready when printed
 */
func (m *Manager) Print() (PrintDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.form.Read()
	if Validate(p) != "" {
		m.printed = nil
		m.showMsg(FILL_FORM_BEFORE_PRINT, true)
		return PrintDocument{}, &ValidationError{Message: FILL_FORM_BEFORE_PRINT}
	}
	doc := NewPrintDocument(p, nil)
	code, err := m.renderer.Render(CodeText(p))
	if err != nil {
		m.logger.Warn("Error from renderer.Render, printing without code", zap.Error(err))
	} else {
		doc.Code = &code
	}
	m.printed = &doc
	m.announce = true
	return doc, nil
}

// TakePrint hands out the document queued by Print, at most once.
func (m *Manager) TakePrint() (PrintDocument, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.printed == nil {
		return PrintDocument{}, false
	}
	doc := *m.printed
	m.printed = nil
	m.announce = false
	return doc, true
}

// PrintStored builds the print document for an already saved prescription.
func (m *Manager) PrintStored(ctx context.Context, id int64) (PrintDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(ctx, id)
	if err != nil {
		return PrintDocument{}, err
	}
	code, err := m.renderer.Render(CodeText(p))
	if err != nil {
		return NewPrintDocument(p, nil), nil
	}
	return NewPrintDocument(p, &code), nil
}

// Code renders the visual code of a stored prescription without touching the page.
func (m *Manager) Code(ctx context.Context, id int64) (VisualCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.get(ctx, id)
	if err != nil {
		return VisualCode{}, err
	}
	return m.renderer.Render(CodeText(p))
}

// Backup returns every stored prescription, newest first.
func (m *Manager) Backup(ctx context.Context) ([]models.Prescription, error) {
	return m.List(ctx, "")
}

// export replaces the displayed code with the one for p.
func (m *Manager) export(p models.Prescription) {
	code, err := m.renderer.Render(CodeText(p))
	if err != nil {
		m.logger.Warn("Error from renderer.Render", zap.Int64("id", p.ID), zap.Error(err))
		m.code = nil
		return
	}
	m.code = &code
}

func (m *Manager) showMsg(text string, isError bool) {
	m.message = models.Message{Text: text, Error: isError}
}
