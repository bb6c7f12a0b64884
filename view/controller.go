// Package view renders the fee tracker page and drives it from user actions.
package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"feetracker-go/client"
	"feetracker-go/models"
)

// maxSuggestions caps the student picker list
const maxSuggestions = 15

// API is the fee backend the controller drives
type API interface {
	Students(ctx context.Context) ([]models.Record, error)
	Summary(ctx context.Context) (models.Summary, error)
	Search(ctx context.Context, p client.SearchParams) (models.RecordsResponse, error)
	StudentByReceipt(ctx context.Context, receipt string) (*models.Profile, error)
	StudentProfile(ctx context.Context, key string) (*models.Profile, error)
	UniqueStudents(ctx context.Context) ([]models.UniqueStudent, error)
	Add(ctx context.Context, req models.RecordRequest) (models.Result, error)
	Update(ctx context.Context, req models.RecordRequest) (models.Result, error)
	Delete(ctx context.Context, req models.RecordRequest) (models.Result, error)
	BulkAdd(ctx context.Context, records []models.Record) (models.BulkAddResponse, error)
	UpdateStudentProfile(ctx context.Context, req models.ProfileUpdateRequest) (models.MutationResponse, error)
	QuickMarkPaid(ctx context.Context, req models.MarkPaidRequest) (models.MutationResponse, error)
	Upload(ctx context.Context, filename string, r io.Reader) (models.MutationResponse, error)
	Download(ctx context.Context, filter string) ([]byte, string, error)
}

// Options tune the controller's timing
type Options struct {
	SearchDelay  time.Duration // quiet period before an auto search runs
	SuggestDelay time.Duration // quiet period before the student picker refilters
	Timeout      time.Duration // bound on calls made from debounced runs
}

func (o Options) withDefaults() Options {
	if o.SearchDelay <= 0 {
		o.SearchDelay = 300 * time.Millisecond
	}
	if o.SuggestDelay <= 0 {
		o.SuggestDelay = 150 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	return o
}

var modalOrder = []ModalID{
	ModalAdd, ModalEdit, ModalAddMonth, ModalBulkAdd, ModalUpload, ModalProfile, ModalEditInfo,
}

// Controller owns the page state: cached records, selections, open modals
// and the profile on display. Network calls are made without holding mu.
type Controller struct {
	api      API
	render   Renderer
	log      *zap.SugaredLogger
	validate *validator.Validate
	timeout  time.Duration

	search  *Debouncer
	suggest *Debouncer

	mu           sync.Mutex
	records      []models.Record // full collection from the last load
	visible      []models.Record // rows currently in the table
	summary      models.Summary
	students     []models.UniqueStudent
	profile      *models.Profile
	sets         map[SetID]Selection
	open         map[ModalID]bool
	subjects     map[ModalID]models.Record
	suggestQuery string
	tableGen     uint64
	notice       Notice
}

// NewController renders the initial empty widgets; call Refresh to load data.
func NewController(api API, render Renderer, opts Options) *Controller {
	opts = opts.withDefaults()
	c := &Controller{
		api:      api,
		render:   render,
		log:      zap.S().Named("view"),
		validate: newValidator(),
		timeout:  opts.Timeout,
		search:   NewDebouncer(opts.SearchDelay),
		suggest:  NewDebouncer(opts.SuggestDelay),
		sets: map[SetID]Selection{
			SetBulkMonths: {},
			SetAddMonths:  {},
			SetStudents:   {},
		},
		open:     make(map[ModalID]bool),
		subjects: make(map[ModalID]models.Record),
	}

	c.mu.Lock()
	for _, id := range modalOrder {
		render.Modal(id, false, models.Record{})
	}
	c.renderMonthSet(SetBulkMonths)
	c.renderMonthSet(SetAddMonths)
	c.renderStudents()
	render.RecordCount(0)
	render.PastePreview(0)
	c.mu.Unlock()
	return c
}

// Close cancels pending debounced runs
func (c *Controller) Close() {
	c.search.Stop()
	c.suggest.Stop()
}

// --- State accessors ---

// Records returns the rows currently shown in the table
func (c *Controller) Records() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Record(nil), c.visible...)
}

// Summary returns the last loaded summary
func (c *Controller) Summary() models.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// Profile returns the profile on display, nil when none is open
func (c *Controller) Profile() *models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// Selected returns the members of a selection set
func (c *Controller) Selected(set SetID) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sel, ok := c.sets[set]; ok {
		return sel.Values()
	}
	return nil
}

// IsOpen reports whether a modal is showing
func (c *Controller) IsOpen(id ModalID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[id]
}

// LastNotice returns the most recent notification
func (c *Controller) LastNotice() Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

func (c *Controller) notify(message, kind string) {
	c.mu.Lock()
	c.notice = Notice{Message: message, Kind: kind}
	c.mu.Unlock()
	c.render.Notify(Notice{Message: message, Kind: kind})
}

// --- Loading ---

// Refresh loads the record list and the summary
func (c *Controller) Refresh(ctx context.Context) {
	_ = c.LoadRecords(ctx)
	_ = c.LoadSummary(ctx)
}

func (c *Controller) nextTableGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableGen++
	return c.tableGen
}

// LoadRecords fetches every record and shows them in the table
func (c *Controller) LoadRecords(ctx context.Context) error {
	gen := c.nextTableGen()
	records, err := c.api.Students(ctx)
	if err != nil {
		c.log.Errorw("Failed to load records", "error", err)
		c.notify("Failed to load student data", NoticeError)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	if gen != c.tableGen {
		return nil
	}
	c.showRows(records)
	return nil
}

// showRows replaces the table contents. Caller holds mu.
func (c *Controller) showRows(rows []models.Record) {
	c.visible = rows
	c.render.Table(rows)
	c.render.RecordCount(len(rows))
}

// LoadSummary fetches the counters and the month filter options
func (c *Controller) LoadSummary(ctx context.Context) error {
	summary, err := c.api.Summary(ctx)
	if err != nil {
		c.log.Errorw("Failed to load summary", "error", err)
		c.notify("Failed to load summary", NoticeError)
		return err
	}
	c.mu.Lock()
	c.summary = summary
	c.render.Summary(summary)
	c.mu.Unlock()
	return nil
}

// LoadStudents fetches the distinct students for the picker
func (c *Controller) LoadStudents(ctx context.Context) error {
	students, err := c.api.UniqueStudents(ctx)
	if err != nil {
		c.log.Errorw("Failed to load students", "error", err)
		c.notify("Failed to load students", NoticeError)
		return err
	}
	c.mu.Lock()
	c.students = students
	c.renderStudents()
	c.mu.Unlock()
	return nil
}

// --- Search ---

// Search filters the table. A receipt-like query is first looked up as a
// receipt and opens the owner's profile on a hit; any miss falls through to
// the ordinary search. Responses of searches superseded by a later search
// or load are dropped.
func (c *Controller) Search(ctx context.Context, query, month, status string) error {
	query = strings.TrimSpace(query)
	if query == "" && month == "" && status == "" {
		return c.LoadRecords(ctx)
	}

	gen := c.nextTableGen()
	if query != "" && IsReceiptLike(query) {
		profile, err := c.api.StudentByReceipt(ctx, query)
		if err == nil {
			c.mu.Lock()
			defer c.mu.Unlock()
			if gen == c.tableGen {
				c.showProfile(profile)
			}
			return nil
		}
		c.log.Debugw("Receipt lookup missed, searching instead", "query", query, "error", err)
	}

	resp, err := c.api.Search(ctx, client.SearchParams{Query: query, Month: month, Status: status})
	if err != nil {
		c.log.Errorw("Search failed", "query", query, "error", err)
		c.mu.Lock()
		stale := gen != c.tableGen
		c.mu.Unlock()
		if !stale {
			c.notify("Search failed", NoticeError)
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.tableGen {
		c.log.Debugw("Dropping stale search response", "query", query)
		return nil
	}
	c.showRows(resp.Data)
	return nil
}

// AutoSearch runs Search once input has been quiet for the search delay.
// The returned channel closes when the run covering this call is done.
func (c *Controller) AutoSearch(query, month, status string) <-chan struct{} {
	return c.search.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		_ = c.Search(ctx, query, month, status)
	})
}

// SearchByReceipt opens the profile of the student holding receipt
func (c *Controller) SearchByReceipt(ctx context.Context, receipt string) error {
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		return c.reject(&ValidationError{Message: "Please enter a receipt number"})
	}
	profile, err := c.api.StudentByReceipt(ctx, receipt)
	if err != nil {
		return c.fail(err, "Receipt number not found")
	}
	c.mu.Lock()
	c.showProfile(profile)
	c.mu.Unlock()
	return nil
}

// ClearFilters drops any pending search and reloads the full list
func (c *Controller) ClearFilters(ctx context.Context) error {
	c.search.Stop()
	return c.LoadRecords(ctx)
}

// --- Profile ---

// OpenProfile fetches and shows the profile of the student with key
func (c *Controller) OpenProfile(ctx context.Context, key string) error {
	profile, err := c.api.StudentProfile(ctx, key)
	if err != nil {
		return c.fail(err, "Failed to load student profile")
	}
	c.mu.Lock()
	c.showProfile(profile)
	c.mu.Unlock()
	return nil
}

// showProfile displays p with its records newest month first. Caller holds mu.
func (c *Controller) showProfile(p *models.Profile) {
	shown := *p
	shown.Records = append([]models.Record(nil), p.Records...)
	models.SortNewestFirst(shown.Records)
	c.profile = &shown

	var subject models.Record
	if len(shown.Records) > 0 {
		subject = shown.Records[0]
	}
	c.open[ModalProfile] = true
	c.subjects[ModalProfile] = subject
	c.render.Modal(ModalProfile, true, subject)
	c.render.Profile(&shown)
}

// refreshProfile reloads the open profile after a mutation
func (c *Controller) refreshProfile(ctx context.Context, key string) {
	profile, err := c.api.StudentProfile(ctx, key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warnw("Profile refresh failed", "key", key, "error", err)
		c.profile = nil
		c.open[ModalProfile] = false
		c.render.Modal(ModalProfile, false, models.Record{})
		return
	}
	if c.open[ModalProfile] {
		c.showProfile(profile)
	}
}

// --- Selections ---

// ToggleSelection flips value in set and reports whether it is now selected.
// Month sets only accept the selectable month labels.
func (c *Controller) ToggleSelection(set SetID, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel, ok := c.sets[set]
	if !ok {
		return false, fmt.Errorf("unknown selection set %q", set)
	}
	if set.IsMonthSet() && !models.IsMonthOption(value) {
		return false, fmt.Errorf("%q is not a selectable month", value)
	}
	if value == "" {
		return false, errors.New("empty selection value")
	}
	on := sel.Toggle(value)
	c.renderSet(set)
	return on, nil
}

// SelectAllStudents selects every student known to the picker
func (c *Controller) SelectAllStudents() {
	c.mu.Lock()
	for _, s := range c.students {
		c.sets[SetStudents].Add(s.Key())
	}
	n := len(c.sets[SetStudents])
	c.renderStudents()
	c.mu.Unlock()
	c.notify(fmt.Sprintf("Selected all %d students", n), NoticeInfo)
}

// ClearSelectedStudents empties the student selection
func (c *Controller) ClearSelectedStudents() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[SetStudents].Clear()
	c.renderStudents()
}

// RemoveStudent deselects one student
func (c *Controller) RemoveStudent(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[SetStudents].Remove(key)
	c.renderStudents()
}

// Suggestions refilters the student picker by name or father name
func (c *Controller) Suggestions(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suggestQuery = strings.ToLower(strings.TrimSpace(query))
	c.renderSuggestions()
}

// AutoSuggest runs Suggestions once typing has paused
func (c *Controller) AutoSuggest(query string) <-chan struct{} {
	return c.suggest.Trigger(func() { c.Suggestions(query) })
}

// PastePreview counts the students parsed from pasted text
func (c *Controller) PastePreview(data string) int {
	n := len(ParsePastedData(data))
	c.render.PastePreview(n)
	return n
}

// selectedMonths returns a month set ordered oldest first. Caller holds mu.
func (c *Controller) selectedMonths(set SetID) []string {
	months := c.sets[set].Values()
	models.SortMonthsNewestFirst(months)
	for i, j := 0, len(months)-1; i < j; i, j = i+1, j-1 {
		months[i], months[j] = months[j], months[i]
	}
	return months
}

func (c *Controller) renderSet(set SetID) {
	if set.IsMonthSet() {
		c.renderMonthSet(set)
		return
	}
	c.renderStudents()
}

func (c *Controller) renderMonthSet(set SetID) {
	sel := c.sets[set]
	options := models.MonthOptions()
	tags := make([]MonthTag, 0, len(options))
	for _, m := range options {
		tags = append(tags, MonthTag{Set: set, Label: m, Selected: sel.Has(m)})
	}
	c.render.MonthTags(set, tags)
}

func (c *Controller) renderStudents() {
	keys := c.sets[SetStudents].Values()
	chips := make([]Chip, 0, len(keys))
	for _, k := range keys {
		name, father := models.SplitStudentKey(k)
		chips = append(chips, Chip{Key: k, Name: name, Father: father})
	}
	c.render.StudentChips(chips)
	c.renderSuggestions()
}

func (c *Controller) renderSuggestions() {
	var matched []models.UniqueStudent
	for _, s := range c.students {
		if c.suggestQuery == "" ||
			strings.Contains(strings.ToLower(s.Name), c.suggestQuery) ||
			strings.Contains(strings.ToLower(s.Father), c.suggestQuery) {
			matched = append(matched, s)
		}
	}
	total := len(matched)
	if len(matched) > maxSuggestions {
		matched = matched[:maxSuggestions]
	}
	items := make([]Suggestion, 0, len(matched))
	for _, s := range matched {
		items = append(items, Suggestion{Student: s, Selected: c.sets[SetStudents].Has(s.Key())})
	}
	c.render.Suggestions(items, total)
}

// studentInfo finds the picker entry for key, falling back to the key itself
func (c *Controller) studentInfo(key string) models.UniqueStudent {
	for _, s := range c.students {
		if s.Key() == key {
			return s
		}
	}
	name, father := models.SplitStudentKey(key)
	return models.UniqueStudent{Name: name, Father: father}
}

// --- Modals ---

// OpenModal shows a modal, running its reset hooks first. subject is the
// record the modal acts on, zero for modals that need none.
func (c *Controller) OpenModal(ctx context.Context, id ModalID, subject models.Record) error {
	hooks, err := lookupModal(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if hooks.reset != nil {
		hooks.reset(c)
	}
	c.open[id] = true
	c.subjects[id] = subject
	c.render.Modal(id, true, subject)
	c.mu.Unlock()

	if hooks.load != nil {
		hooks.load(ctx, c)
	}
	return nil
}

// CloseModal hides a modal and drops the state it owned
func (c *Controller) CloseModal(id ModalID) error {
	hooks, err := lookupModal(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked(id, hooks)
	return nil
}

// CloseAllModals hides every open modal along with the state it owned
func (c *Controller) CloseAllModals() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range modalOrder {
		if c.open[id] {
			c.closeLocked(id, modals[id])
		}
	}
}

func (c *Controller) closeLocked(id ModalID, hooks modalHooks) {
	if hooks.teardown != nil {
		hooks.teardown(c)
	}
	c.open[id] = false
	delete(c.subjects, id)
	c.render.Modal(id, false, models.Record{})
}

// --- Outcomes ---

func (c *Controller) reject(err error) error {
	c.notify(err.Error(), NoticeError)
	return err
}

// fail reports a failed remote call, preferring the server's own message
func (c *Controller) fail(err error, fallback string) error {
	var apiErr *client.APIError
	msg := fallback
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
		c.log.Infow("Request rejected", "status", apiErr.Status, "message", apiErr.Message)
	} else {
		c.log.Errorw(fallback, "error", err)
	}
	c.notify(msg, NoticeError)
	return err
}

// succeed closes modal, reports message and reloads everything shown
func (c *Controller) succeed(ctx context.Context, modal ModalID, message string) {
	c.mu.Lock()
	if modal != "" {
		if hooks, err := lookupModal(modal); err == nil {
			c.closeLocked(modal, hooks)
		}
	}
	var profileKey string
	if c.profile != nil && c.open[ModalProfile] {
		profileKey = models.StudentKey(c.profile.Student.Name, c.profile.Student.FatherName)
	}
	c.mu.Unlock()

	c.notify(message, NoticeSuccess)
	c.Refresh(ctx)
	if profileKey != "" {
		c.refreshProfile(ctx, profileKey)
	}
}
