package view

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"feetracker-go/models"
)

// SessionCookie carries the id of the browser's Session
const SessionCookie = "feetracker_session"

const sessionKey = "view.session"

// UIHandler serves the page and the fragment endpoints its widgets call.
// Every browser drives its own Controller, found through its session cookie.
type UIHandler struct {
	Sessions *Sessions
}

// NewUIHandler creates a UIHandler over sessions
func NewUIHandler(sessions *Sessions) *UIHandler {
	return &UIHandler{Sessions: sessions}
}

// Register mounts the page at / and its fragments under /ui
func (h *UIHandler) Register(router gin.IRouter) {
	router.GET("/", h.withSession, h.Page)

	ui := router.Group("/ui", h.withSession)
	ui.GET("/noop", func(c *gin.Context) { c.Status(http.StatusOK) })
	ui.GET("/table", h.Table)
	ui.POST("/search", h.AutoSearch)
	ui.POST("/search/now", h.SearchNow)
	ui.POST("/clear-filters", h.ClearFilters)
	ui.GET("/receipt/:receipt", h.Receipt)
	ui.GET("/profile/*key", h.Profile)

	ui.POST("/toggle/:set", h.Toggle)
	ui.GET("/suggestions", h.Suggestions)
	ui.POST("/students/select-all", h.SelectAll)
	ui.POST("/students/clear", h.ClearStudents)
	ui.POST("/students/remove", h.RemoveStudent)
	ui.POST("/paste-preview", h.PastePreview)

	ui.POST("/modal/:id/open", h.OpenModal)
	ui.POST("/modal/:id/close", h.CloseModal)
	ui.POST("/submit/:kind", h.Submit)
	ui.POST("/mark-paid", h.MarkPaid)

	ui.POST("/upload", h.Upload)
	ui.GET("/download", h.Download)
}

// withSession attaches the caller's Session, issuing a cookie for new ones
func (h *UIHandler) withSession(c *gin.Context) {
	id, _ := c.Cookie(SessionCookie)
	sess := h.Sessions.Get(id)
	if sess.ID != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sess.ID, 0, "/", "", false, true)
	}
	c.Set(sessionKey, sess)
	c.Next()
}

// session returns the Session withSession attached to c
func session(c *gin.Context) *Session {
	return c.MustGet(sessionKey).(*Session)
}

// flush answers with the regions the action changed
func (h *UIHandler) flush(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := session(c).Renderer.Flush(c.Writer); err != nil {
		zap.S().Errorw("Failed to write fragments", "path", c.FullPath(), "error", err)
	}
}

// wait blocks until a debounced run finishes or the request goes away
func wait(c *gin.Context, done <-chan struct{}) {
	select {
	case <-done:
	case <-c.Request.Context().Done():
	}
}

// Page handles GET /. A full load starts with every modal closed.
func (h *UIHandler) Page(c *gin.Context) {
	sess := session(c)
	sess.Controller.CloseAllModals()
	sess.Controller.Refresh(c.Request.Context())
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := sess.Renderer.Page(c.Writer); err != nil {
		zap.S().Errorw("Failed to render page", "error", err)
	}
}

// Table handles GET /ui/table
func (h *UIHandler) Table(c *gin.Context) {
	_ = session(c).Controller.LoadRecords(c.Request.Context())
	h.flush(c)
}

// AutoSearch handles POST /ui/search, fired on every keystroke
func (h *UIHandler) AutoSearch(c *gin.Context) {
	wait(c, session(c).Controller.AutoSearch(c.PostForm("query"), c.PostForm("month"), c.PostForm("status")))
	h.flush(c)
}

// SearchNow handles POST /ui/search/now
func (h *UIHandler) SearchNow(c *gin.Context) {
	_ = session(c).Controller.Search(c.Request.Context(), c.PostForm("query"), c.PostForm("month"), c.PostForm("status"))
	h.flush(c)
}

// ClearFilters handles POST /ui/clear-filters
func (h *UIHandler) ClearFilters(c *gin.Context) {
	_ = session(c).Controller.ClearFilters(c.Request.Context())
	h.flush(c)
}

// Receipt handles GET /ui/receipt/:receipt
func (h *UIHandler) Receipt(c *gin.Context) {
	_ = session(c).Controller.SearchByReceipt(c.Request.Context(), c.Param("receipt"))
	h.flush(c)
}

// Profile handles GET /ui/profile/*key
func (h *UIHandler) Profile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	_ = session(c).Controller.OpenProfile(c.Request.Context(), key)
	h.flush(c)
}

// Toggle handles POST /ui/toggle/:set
func (h *UIHandler) Toggle(c *gin.Context) {
	if _, err := session(c).Controller.ToggleSelection(SetID(c.Param("set")), c.PostForm("value")); err != nil {
		zap.S().Warnw("Toggle rejected", "set", c.Param("set"), "error", err)
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	h.flush(c)
}

// Suggestions handles GET /ui/suggestions?q=
func (h *UIHandler) Suggestions(c *gin.Context) {
	wait(c, session(c).Controller.AutoSuggest(c.Query("q")))
	h.flush(c)
}

// SelectAll handles POST /ui/students/select-all
func (h *UIHandler) SelectAll(c *gin.Context) {
	session(c).Controller.SelectAllStudents()
	h.flush(c)
}

// ClearStudents handles POST /ui/students/clear
func (h *UIHandler) ClearStudents(c *gin.Context) {
	session(c).Controller.ClearSelectedStudents()
	h.flush(c)
}

// RemoveStudent handles POST /ui/students/remove
func (h *UIHandler) RemoveStudent(c *gin.Context) {
	session(c).Controller.RemoveStudent(c.PostForm("key"))
	h.flush(c)
}

// PastePreview handles POST /ui/paste-preview
func (h *UIHandler) PastePreview(c *gin.Context) {
	session(c).Controller.PastePreview(c.PostForm("paste_data"))
	h.flush(c)
}

// OpenModal handles POST /ui/modal/:id/open. Row buttons post the record
// the modal acts on.
func (h *UIHandler) OpenModal(c *gin.Context) {
	var f Form
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	f = f.trimmed()
	subject := models.Record{
		StudentID:     f.StudentID,
		StudentName:   f.StudentName,
		FatherName:    f.FatherName,
		MobileNumber:  f.MobileNumber,
		Month:         f.Month,
		FeeStatus:     f.FeeStatus,
		ReceiptNumber: f.ReceiptNumber,
	}
	if err := session(c).Controller.OpenModal(c.Request.Context(), ModalID(c.Param("id")), subject); err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	h.flush(c)
}

// CloseModal handles POST /ui/modal/:id/close
func (h *UIHandler) CloseModal(c *gin.Context) {
	if err := session(c).Controller.CloseModal(ModalID(c.Param("id"))); err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	h.flush(c)
}

// Submit handles POST /ui/submit/:kind. Rejections are reported through
// the toast region, so the response is always the changed fragments.
func (h *UIHandler) Submit(c *gin.Context) {
	var f Form
	if err := c.ShouldBind(&f); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	_ = session(c).Controller.SubmitRecord(c.Request.Context(), FormKind(c.Param("kind")), f)
	h.flush(c)
}

// MarkPaid handles POST /ui/mark-paid
func (h *UIHandler) MarkPaid(c *gin.Context) {
	_ = session(c).Controller.MarkPaid(c.Request.Context(), c.PostForm("student_name"), c.PostForm("father_name"), c.PostForm("month"))
	h.flush(c)
}

// Upload handles POST /ui/upload
func (h *UIHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		_ = session(c).Controller.Upload(c.Request.Context(), "", nil)
		h.flush(c)
		return
	}
	defer file.Close()
	_ = session(c).Controller.Upload(c.Request.Context(), header.Filename, file)
	h.flush(c)
}

// Download handles GET /ui/download?filter=
func (h *UIHandler) Download(c *gin.Context) {
	data, filename, err := session(c).Controller.Download(c.Request.Context(), c.DefaultQuery("filter", "all"))
	if err != nil {
		c.String(http.StatusNotFound, session(c).Controller.LastNotice().Message)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
