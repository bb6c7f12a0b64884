package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"feetracker-go/db"
	"feetracker-go/models"
	"feetracker-go/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler holds the dependencies for API handlers, like the Redis service
type APIHandler struct {
	RedisService *db.RedisService
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(service *db.RedisService) *APIHandler {
	return &APIHandler{
		RedisService: service,
	}
}

// Register mounts every fee API route on group
func (h *APIHandler) Register(api *gin.RouterGroup) {
	api.GET("/students", h.GetStudents)
	api.GET("/search", h.SearchStudents)
	api.GET("/summary", h.GetSummary)
	api.GET("/unique-students", h.GetUniqueStudents)
	api.GET("/defaulters", h.GetDefaulters)
	api.GET("/student/:receipt", h.GetStudentByReceipt)
	api.GET("/student-profile/*key", h.GetStudentProfile)

	api.POST("/add", h.AddRecord)
	api.POST("/update", h.UpdateRecord)
	api.POST("/delete", h.DeleteRecord)
	api.POST("/bulk-add", h.BulkAdd)
	api.POST("/update-student-profile", h.UpdateStudentProfile)
	api.POST("/quick-mark-paid", h.QuickMarkPaid)

	api.POST("/upload", h.Upload)
	api.GET("/download", h.Download)

	api.GET("/ping", PingHandler)
}

// paginate slices records when the request carries a page parameter
func paginate(c *gin.Context, records []models.Record) models.RecordsResponse {
	resp := models.RecordsResponse{
		Result: models.Result{Success: true},
		Data:   records,
		Total:  len(records),
	}
	if c.Query("page") == "" {
		return resp
	}

	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if err != nil || perPage < 1 {
		perPage = 50
	}

	start := (page - 1) * perPage
	if start > len(records) {
		start = len(records)
	}
	end := start + perPage
	if end > len(records) {
		end = len(records)
	}

	resp.Data = records[start:end]
	resp.Page = page
	resp.PerPage = perPage
	resp.TotalPages = (len(records) + perPage - 1) / perPage
	resp.HasNext = page < resp.TotalPages
	resp.HasPrev = page > 1
	return resp
}

// --- Read Handlers ---

// GetStudents handles GET /api/students
func (h *APIHandler) GetStudents(c *gin.Context) {
	records, err := h.RedisService.AllRecords(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to retrieve records", err)
		return
	}
	c.JSON(http.StatusOK, paginate(c, records))
}

// SearchStudents handles GET /api/search
func (h *APIHandler) SearchStudents(c *gin.Context) {
	records, err := h.RedisService.AllRecords(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to search records", err)
		return
	}
	filter := db.SearchFilter{
		Query:   c.Query("query"),
		Month:   c.Query("month"),
		Status:  c.Query("status"),
		Receipt: c.Query("receipt"),
	}
	c.JSON(http.StatusOK, paginate(c, db.FilterRecords(records, filter)))
}

// GetSummary handles GET /api/summary
func (h *APIHandler) GetSummary(c *gin.Context) {
	records, err := h.RedisService.AllRecords(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to compute summary", err)
		return
	}
	c.JSON(http.StatusOK, models.SummaryResponse{
		Result:  models.Result{Success: true},
		Summary: db.Summarize(records),
	})
}

// GetUniqueStudents handles GET /api/unique-students
func (h *APIHandler) GetUniqueStudents(c *gin.Context) {
	records, err := h.RedisService.AllRecords(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list students", err)
		return
	}
	c.JSON(http.StatusOK, models.UniqueStudentsResponse{
		Result:   models.Result{Success: true},
		Students: db.UniqueStudents(records),
	})
}

// GetDefaulters handles GET /api/defaulters?min_months=N
func (h *APIHandler) GetDefaulters(c *gin.Context) {
	minMonths, err := strconv.Atoi(c.DefaultQuery("min_months", "1"))
	if err != nil || minMonths < 1 {
		minMonths = 1
	}
	records, err := h.RedisService.AllRecords(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list defaulters", err)
		return
	}
	list := db.Defaulters(records, minMonths)
	c.JSON(http.StatusOK, models.DefaultersResponse{
		Result:     models.Result{Success: true},
		Defaulters: list,
		Total:      len(list),
		MinMonths:  minMonths,
	})
}

// GetStudentByReceipt handles GET /api/student/:receipt
func (h *APIHandler) GetStudentByReceipt(c *gin.Context) {
	receipt := strings.TrimSpace(c.Param("receipt"))
	records, err := h.RedisService.AllRecords(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to look up receipt", err)
		return
	}
	profile := db.ProfileByReceipt(records, receipt)
	if profile == nil {
		utils.JSONError(c, http.StatusNotFound, "Receipt number not found", nil)
		return
	}
	c.JSON(http.StatusOK, models.ProfileResponse{Result: models.Result{Success: true}, Profile: *profile})
}

// GetStudentProfile handles GET /api/student-profile/*key
func (h *APIHandler) GetStudentProfile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	records, err := h.RedisService.AllRecords(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load student profile", err)
		return
	}
	profile := db.ProfileByKey(records, key)
	if profile == nil {
		utils.JSONError(c, http.StatusNotFound, "Student not found", nil)
		return
	}
	c.JSON(http.StatusOK, models.ProfileResponse{Result: models.Result{Success: true}, Profile: *profile})
}

// --- Mutation Handlers ---

// storeErrorStatus maps store errors to a status code and user message
func storeErrorStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "Record not found"
	case errors.Is(err, db.ErrDuplicateEntry):
		return http.StatusBadRequest, "Record already exists for this student and month"
	case errors.Is(err, db.ErrDuplicateReceipt):
		return http.StatusBadRequest, "This receipt number already exists"
	case errors.Is(err, db.ErrMissingFields):
		return http.StatusBadRequest, "Missing required fields"
	}
	return http.StatusInternalServerError, fallback
}

// AddRecord handles POST /api/add
func (h *APIHandler) AddRecord(c *gin.Context) {
	var req models.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "No data provided", err)
		return
	}
	required := []struct{ field, value string }{
		{"student_name", req.StudentName},
		{"father_name", req.FatherName},
		{"month", req.Month},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			utils.JSONError(c, http.StatusBadRequest, "Missing required field: "+r.field, nil)
			return
		}
	}

	status := req.FeeStatus
	if status == "" {
		status = models.StatusNotPaid
	}
	err := h.RedisService.AddRecord(c.Request.Context(), models.Record{
		StudentID:     req.StudentID,
		StudentName:   req.StudentName,
		FatherName:    req.FatherName,
		MobileNumber:  req.MobileNumber,
		Month:         req.Month,
		FeeStatus:     status,
		ReceiptNumber: req.ReceiptNumber,
	})
	if err != nil {
		code, msg := storeErrorStatus(err, "Failed to save record")
		utils.JSONError(c, code, msg, err)
		return
	}
	c.JSON(http.StatusOK, models.Result{Success: true, Message: "Record added successfully!"})
}

// UpdateRecord handles POST /api/update
func (h *APIHandler) UpdateRecord(c *gin.Context) {
	var req models.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "No data provided", err)
		return
	}
	if req.StudentName == "" || req.Month == "" || req.FeeStatus == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	err := h.RedisService.UpdateRecord(c.Request.Context(),
		req.StudentName, req.FatherName, req.Month, req.FeeStatus, req.ReceiptNumber)
	if err != nil {
		code, msg := storeErrorStatus(err, "Failed to update record")
		if errors.Is(err, db.ErrDuplicateReceipt) {
			msg = "This receipt number already exists for another record"
		}
		utils.JSONError(c, code, msg, err)
		return
	}
	c.JSON(http.StatusOK, models.Result{Success: true, Message: "Record updated successfully!"})
}

// DeleteRecord handles POST /api/delete
func (h *APIHandler) DeleteRecord(c *gin.Context) {
	var req models.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "No data provided", err)
		return
	}
	if req.StudentName == "" || req.Month == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	err := h.RedisService.DeleteRecord(c.Request.Context(), req.StudentName, req.FatherName, req.Month)
	if err != nil {
		code, msg := storeErrorStatus(err, "Failed to delete record")
		utils.JSONError(c, code, msg, err)
		return
	}
	c.JSON(http.StatusOK, models.Result{Success: true, Message: "Record deleted successfully!"})
}

// maxBulkErrors caps the row errors echoed back by bulk-add
const maxBulkErrors = 10

// BulkAdd handles POST /api/bulk-add
func (h *APIHandler) BulkAdd(c *gin.Context) {
	var req models.BulkAddRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Records == nil {
		utils.JSONError(c, http.StatusBadRequest, "No records provided", err)
		return
	}
	if len(req.Records) == 0 {
		utils.JSONError(c, http.StatusBadRequest, "Empty records list", nil)
		return
	}

	res, err := h.RedisService.BulkAdd(c.Request.Context(), req.Records)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save records", err)
		return
	}

	errs := res.Errors
	if len(errs) > maxBulkErrors {
		errs = errs[:maxBulkErrors]
	}
	if res.Added == 0 {
		c.JSON(http.StatusBadRequest, models.BulkAddResponse{
			Result:  models.Result{Success: false, Error: "No records added. " + strconv.Itoa(res.Skipped) + " records skipped."},
			Skipped: res.Skipped,
			Errors:  errs,
		})
		return
	}

	msg := "Added " + strconv.Itoa(res.Added) + " records successfully!"
	if res.Skipped > 0 {
		msg += " (" + strconv.Itoa(res.Skipped) + " skipped due to duplicates)"
	}
	c.JSON(http.StatusOK, models.BulkAddResponse{
		Result:  models.Result{Success: true, Message: msg},
		Added:   res.Added,
		Skipped: res.Skipped,
		Errors:  errs,
	})
}

// UpdateStudentProfile handles POST /api/update-student-profile
func (h *APIHandler) UpdateStudentProfile(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "No data provided", err)
		return
	}
	if strings.TrimSpace(req.StudentName) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Student name is required", nil)
		return
	}

	n, err := h.RedisService.UpdateStudentProfile(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "No records found for this student", err)
			return
		}
		code, msg := storeErrorStatus(err, "Failed to save changes")
		utils.JSONError(c, code, msg, err)
		return
	}
	c.JSON(http.StatusOK, models.MutationResponse{
		Result:  models.Result{Success: true, Message: "Updated " + strconv.Itoa(n) + " records"},
		Updated: n,
	})
}

// QuickMarkPaid handles POST /api/quick-mark-paid
func (h *APIHandler) QuickMarkPaid(c *gin.Context) {
	var req models.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "No data provided", err)
		return
	}
	if req.StudentName == "" || req.Month == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing required fields", nil)
		return
	}

	receipt, err := h.RedisService.MarkPaid(c.Request.Context(), req.StudentName, req.FatherName, req.Month, now())
	if err != nil {
		code, msg := storeErrorStatus(err, "Failed to save changes")
		utils.JSONError(c, code, msg, err)
		return
	}
	c.JSON(http.StatusOK, models.MutationResponse{
		Result:        models.Result{Success: true, Message: "Marked as paid!"},
		ReceiptNumber: receipt,
	})
}

// --- Ping Handler ---
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
