package view

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"feetracker-go/client"
	"feetracker-go/models"
)

// fakeAPI serves canned data and records every call by name
type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	records  []models.Record
	students []models.UniqueStudent
	receipts map[string]*models.Profile
	profiles map[string]*models.Profile
	bulk     [][]models.Record
	added    []models.RecordRequest
	searches []client.SearchParams

	// search overrides the default filter when set
	search func(ctx context.Context, p client.SearchParams) (models.RecordsResponse, error)
	// fail makes the named call return an APIError
	fail map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		receipts: map[string]*models.Profile{},
		profiles: map[string]*models.Profile{},
		fail:     map[string]string{},
	}
}

func (f *fakeAPI) called(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if msg, ok := f.fail[name]; ok {
		return &client.APIError{Status: 400, Message: msg}
	}
	return nil
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) Students(ctx context.Context) ([]models.Record, error) {
	if err := f.called("Students"); err != nil {
		return nil, err
	}
	return f.records, nil
}

func (f *fakeAPI) Summary(ctx context.Context) (models.Summary, error) {
	if err := f.called("Summary"); err != nil {
		return models.Summary{}, err
	}
	return models.Summary{Total: len(f.records)}, nil
}

func (f *fakeAPI) Search(ctx context.Context, p client.SearchParams) (models.RecordsResponse, error) {
	if err := f.called("Search"); err != nil {
		return models.RecordsResponse{}, err
	}
	f.mu.Lock()
	f.searches = append(f.searches, p)
	search := f.search
	f.mu.Unlock()
	if search != nil {
		return search(ctx, p)
	}
	var out []models.Record
	for _, r := range f.records {
		if strings.Contains(strings.ToLower(r.StudentName), strings.ToLower(p.Query)) {
			out = append(out, r)
		}
	}
	return models.RecordsResponse{Result: models.Result{Success: true}, Data: out, Total: len(out)}, nil
}

func (f *fakeAPI) StudentByReceipt(ctx context.Context, receipt string) (*models.Profile, error) {
	if err := f.called("StudentByReceipt"); err != nil {
		return nil, err
	}
	if p, ok := f.receipts[strings.ToUpper(receipt)]; ok {
		return p, nil
	}
	return nil, &client.APIError{Status: 404, Message: "Receipt number not found"}
}

func (f *fakeAPI) StudentProfile(ctx context.Context, key string) (*models.Profile, error) {
	if err := f.called("StudentProfile"); err != nil {
		return nil, err
	}
	if p, ok := f.profiles[key]; ok {
		return p, nil
	}
	return nil, &client.APIError{Status: 404, Message: "Student not found"}
}

func (f *fakeAPI) UniqueStudents(ctx context.Context) ([]models.UniqueStudent, error) {
	if err := f.called("UniqueStudents"); err != nil {
		return nil, err
	}
	return f.students, nil
}

func (f *fakeAPI) Add(ctx context.Context, req models.RecordRequest) (models.Result, error) {
	if err := f.called("Add"); err != nil {
		return models.Result{}, err
	}
	f.mu.Lock()
	f.added = append(f.added, req)
	f.mu.Unlock()
	return models.Result{Success: true}, nil
}

func (f *fakeAPI) Update(ctx context.Context, req models.RecordRequest) (models.Result, error) {
	return models.Result{Success: true}, f.called("Update")
}

func (f *fakeAPI) Delete(ctx context.Context, req models.RecordRequest) (models.Result, error) {
	return models.Result{Success: true}, f.called("Delete")
}

func (f *fakeAPI) BulkAdd(ctx context.Context, records []models.Record) (models.BulkAddResponse, error) {
	if err := f.called("BulkAdd"); err != nil {
		return models.BulkAddResponse{}, err
	}
	f.mu.Lock()
	f.bulk = append(f.bulk, records)
	f.mu.Unlock()
	return models.BulkAddResponse{Result: models.Result{Success: true}, Added: len(records)}, nil
}

func (f *fakeAPI) UpdateStudentProfile(ctx context.Context, req models.ProfileUpdateRequest) (models.MutationResponse, error) {
	if err := f.called("UpdateStudentProfile"); err != nil {
		return models.MutationResponse{}, err
	}
	return models.MutationResponse{Result: models.Result{Success: true}, Updated: 2}, nil
}

func (f *fakeAPI) QuickMarkPaid(ctx context.Context, req models.MarkPaidRequest) (models.MutationResponse, error) {
	if err := f.called("QuickMarkPaid"); err != nil {
		return models.MutationResponse{}, err
	}
	return models.MutationResponse{Result: models.Result{Success: true}, ReceiptNumber: "RCP-0326-001"}, nil
}

func (f *fakeAPI) Upload(ctx context.Context, filename string, r io.Reader) (models.MutationResponse, error) {
	if err := f.called("Upload"); err != nil {
		return models.MutationResponse{}, err
	}
	return models.MutationResponse{Result: models.Result{Success: true, Message: "File uploaded successfully! 3 records found."}, Total: 3}, nil
}

func (f *fakeAPI) Download(ctx context.Context, filter string) ([]byte, string, error) {
	if err := f.called("Download"); err != nil {
		return nil, "", err
	}
	return []byte("xlsx"), "student_fees_" + filter + ".xlsx", nil
}

// recorder keeps the latest value passed to each Renderer method
type recorder struct {
	mu           sync.Mutex
	table        []models.Record
	count        int
	profile      *models.Profile
	modals       map[ModalID]bool
	tags         map[SetID][]MonthTag
	chips        []Chip
	suggestions  []Suggestion
	suggestTotal int
	preview      int
	notices      []Notice
}

func newRecorder() *recorder {
	return &recorder{modals: map[ModalID]bool{}, tags: map[SetID][]MonthTag{}}
}

func (r *recorder) Table(records []models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = records
}

func (r *recorder) RecordCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count = n
}

func (r *recorder) Summary(s models.Summary) {}

func (r *recorder) MonthTags(set SetID, tags []MonthTag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[set] = tags
}

func (r *recorder) StudentChips(chips []Chip) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chips = chips
}

func (r *recorder) Suggestions(items []Suggestion, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestions = items
	r.suggestTotal = total
}

func (r *recorder) Profile(p *models.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = p
}

func (r *recorder) Modal(id ModalID, open bool, subject models.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals[id] = open
}

func (r *recorder) PastePreview(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preview = count
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) tableNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.table {
		out = append(out, rec.StudentName)
	}
	return out
}

func newTestController(t *testing.T, api *fakeAPI, opts Options) (*Controller, *recorder) {
	t.Helper()
	zap.ReplaceGlobals(zap.NewNop())
	rec := newRecorder()
	c := NewController(api, rec, opts)
	t.Cleanup(c.Close)
	return c, rec
}
