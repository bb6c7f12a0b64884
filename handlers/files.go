package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"feetracker-go/db"
	"feetracker-go/models"
	"feetracker-go/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// now is swapped in tests
var now = time.Now

// Upload handles POST /api/upload. The spreadsheet replaces all records.
func (h *APIHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "No file provided", err)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		utils.JSONError(c, http.StatusBadRequest, "No file selected", nil)
		return
	}
	if !db.AllowedUpload(header.Filename) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid file type. Please upload an Excel file (.xlsx or .xls)", nil)
		return
	}

	zap.S().Infof("Received file upload: %s", header.Filename)

	count, err := h.RedisService.ImportRecordsFromExcel(c.Request.Context(), file)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process Excel file: "+err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, models.MutationResponse{
		Result: models.Result{
			Success: true,
			Message: fmt.Sprintf("File uploaded successfully! %d records found.", count),
		},
		Total: count,
	})
}

// ExportFilename names a download for filter on day t
func ExportFilename(filter string, t time.Time) string {
	suffix := ""
	switch strings.ToLower(filter) {
	case "paid":
		suffix = "_paid"
	case "unpaid":
		suffix = "_unpaid"
	}
	return "student_fees" + suffix + "_" + t.Format("20060102") + ".xlsx"
}

// Download handles GET /api/download?filter=all|paid|unpaid
func (h *APIHandler) Download(c *gin.Context) {
	filter := strings.ToLower(c.DefaultQuery("filter", "all"))

	buf, err := h.RedisService.ExportRecordsToExcel(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, db.ErrNoData) {
			label := "data"
			if filter == "paid" || filter == "unpaid" {
				label = filter + " records"
			}
			utils.JSONError(c, http.StatusNotFound, "No "+label+" to download", nil)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "Failed to create export file", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ExportFilename(filter, now())))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
