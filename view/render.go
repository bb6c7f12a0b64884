package view

import (
	"bytes"
	"html/template"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"feetracker-go/models"
)

// Notice is a transient message shown to the user
type Notice struct {
	Message string
	Kind    string // "success", "error" or "info"
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// MonthTag is one toggleable month in a tag widget
type MonthTag struct {
	Set      SetID
	Label    string
	Selected bool
}

// Chip is a selected student in the bulk-add modal
type Chip struct {
	Key    string
	Name   string
	Father string
}

// Suggestion is one autocomplete entry of the student picker
type Suggestion struct {
	Student  models.UniqueStudent
	Selected bool
}

// Renderer receives every visible state change of the controller
type Renderer interface {
	Table(records []models.Record)
	RecordCount(n int)
	Summary(s models.Summary)
	MonthTags(set SetID, tags []MonthTag)
	StudentChips(chips []Chip)
	Suggestions(items []Suggestion, total int)
	Profile(p *models.Profile)
	Modal(id ModalID, open bool, subject models.Record)
	PastePreview(count int)
	Notify(n Notice)
}

// Region ids of the page, in page order
var pageRegions = []string{
	"toast", "summary", "monthFilter", "recordCount", "records",
	string(ModalAdd), string(ModalEdit), string(ModalAddMonth), string(ModalBulkAdd),
	string(ModalUpload), string(ModalProfile), string(ModalEditInfo),
	string(SetBulkMonths), string(SetAddMonths), string(SetStudents),
	"studentSuggestions", "profile", "pastePreview",
}

// HTMLRenderer keeps the latest HTML of every page region. Regions changed
// since the last Flush are sent back as out-of-band swaps.
type HTMLRenderer struct {
	tmpl *template.Template

	mu      sync.Mutex
	regions map[string]template.HTML
	dirty   []string
}

// NewHTMLRenderer parses the page templates into a fresh renderer
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := parsePageTemplates()
	if err != nil {
		return nil, err
	}
	return newHTMLRenderer(tmpl), nil
}

// newHTMLRenderer draws with already parsed templates, which are safe to
// share between renderers.
func newHTMLRenderer(tmpl *template.Template) *HTMLRenderer {
	return &HTMLRenderer{
		tmpl:    tmpl,
		regions: make(map[string]template.HTML),
	}
}

func parsePageTemplates() (*template.Template, error) {
	return template.New("feetracker").Funcs(template.FuncMap{
		"initials": initials,
		"paid":     models.IsPaidStatus,
		"key":      models.StudentKey,
		"path":     url.PathEscape,
	}).Parse(pageTemplates)
}

func initials(name string) string {
	var b strings.Builder
	for _, f := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(f[:1]))
		if b.Len() == 2 {
			break
		}
	}
	return b.String()
}

func (r *HTMLRenderer) set(region, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		zap.S().Errorw("Template render failed", "template", name, "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.regions[region] = template.HTML(buf.String())
	for _, d := range r.dirty {
		if d == region {
			return
		}
	}
	r.dirty = append(r.dirty, region)
}

// Region returns the current HTML of a region
func (r *HTMLRenderer) Region(id string) template.HTML {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regions[id]
}

// Flush writes the regions changed since the previous flush
func (r *HTMLRenderer) Flush(w io.Writer) error {
	r.mu.Lock()
	dirty := r.dirty
	r.dirty = nil
	// modals first so the regions nested inside them land in fresh markup
	sort.SliceStable(dirty, func(i, j int) bool {
		return regionRank(dirty[i]) < regionRank(dirty[j])
	})
	out := make([]regionView, 0, len(dirty))
	for _, id := range dirty {
		out = append(out, regionView{ID: id, HTML: r.regions[id]})
	}
	r.mu.Unlock()
	return r.tmpl.ExecuteTemplate(w, "swaps", out)
}

func regionRank(id string) int {
	for i, r := range pageRegions {
		if r == id {
			return i
		}
	}
	return len(pageRegions)
}

type regionView struct {
	ID   string
	HTML template.HTML
}

// Page writes the whole document with every region's current HTML
func (r *HTMLRenderer) Page(w io.Writer) error {
	r.mu.Lock()
	regions := make(map[string]template.HTML, len(r.regions))
	for k, v := range r.regions {
		regions[k] = v
	}
	r.dirty = nil
	r.mu.Unlock()

	return r.tmpl.ExecuteTemplate(w, "page", map[string]interface{}{
		"Regions": regions,
		"Months":  models.MonthOptions(),
	})
}

// The Renderer methods below replace one region each; Flush sends them.

func (r *HTMLRenderer) Table(records []models.Record) { r.set("records", "records", records) }

func (r *HTMLRenderer) RecordCount(n int) { r.set("recordCount", "recordCount", n) }

func (r *HTMLRenderer) Summary(s models.Summary) {
	r.set("summary", "summary", s)
	r.set("monthFilter", "monthFilter", s.Months)
}

func (r *HTMLRenderer) MonthTags(set SetID, tags []MonthTag) {
	r.set(string(set), "monthTags", tags)
}

func (r *HTMLRenderer) StudentChips(chips []Chip) {
	r.set(string(SetStudents), "studentChips", chips)
}

func (r *HTMLRenderer) Suggestions(items []Suggestion, total int) {
	r.set("studentSuggestions", "suggestions", map[string]interface{}{
		"Items": items,
		"More":  total - len(items),
	})
}

func (r *HTMLRenderer) Profile(p *models.Profile) { r.set("profile", "profile", p) }

func (r *HTMLRenderer) Modal(id ModalID, open bool, subject models.Record) {
	r.set(string(id), "modal-"+string(id), map[string]interface{}{
		"ID":      id,
		"Open":    open,
		"Subject": subject,
		"Months":  models.MonthOptions(),
	})
}

func (r *HTMLRenderer) PastePreview(count int) { r.set("pastePreview", "pastePreview", count) }

func (r *HTMLRenderer) Notify(n Notice) { r.set("toast", "toast", n) }
