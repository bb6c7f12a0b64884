package view

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"feetracker-go/models"
)

// FormKind names the submit action of a modal form
type FormKind string

const (
	FormAdd          FormKind = "add"
	FormUpdate       FormKind = "update"
	FormDelete       FormKind = "delete"
	FormAddMonths    FormKind = "add-months"
	FormBulkExisting FormKind = "bulk-existing"
	FormBulkNew      FormKind = "bulk-new"
	FormProfile      FormKind = "profile-edit"
)

// Form carries the fields of every modal form; each kind reads its own subset.
type Form struct {
	StudentID      string `form:"student_id"`
	StudentName    string `form:"student_name"`
	FatherName     string `form:"father_name"`
	MobileNumber   string `form:"mobile_number"`
	Month          string `form:"month"`
	FeeStatus      string `form:"fee_status"`
	ReceiptNumber  string `form:"receipt_number"`
	OriginalName   string `form:"original_name"`
	OriginalFather string `form:"original_father"`
	PasteData      string `form:"paste_data"`
}

func (f Form) trimmed() Form {
	f.StudentID = strings.TrimSpace(f.StudentID)
	f.StudentName = strings.TrimSpace(f.StudentName)
	f.FatherName = strings.TrimSpace(f.FatherName)
	f.MobileNumber = strings.TrimSpace(f.MobileNumber)
	f.Month = strings.TrimSpace(f.Month)
	f.FeeStatus = strings.TrimSpace(f.FeeStatus)
	f.ReceiptNumber = strings.TrimSpace(f.ReceiptNumber)
	f.OriginalName = strings.TrimSpace(f.OriginalName)
	f.OriginalFather = strings.TrimSpace(f.OriginalFather)
	return f
}

// ValidationError is a form rejected before any request was sent
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a local form rejection
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

type addInput struct {
	StudentName string `validate:"required"`
	FatherName  string `validate:"required"`
	Month       string `validate:"required,feemonth"`
	FeeStatus   string `validate:"omitempty,feestatus"`
}

type updateInput struct {
	StudentName string `validate:"required"`
	Month       string `validate:"required"`
	FeeStatus   string `validate:"required,feestatus"`
}

type deleteInput struct {
	StudentName string `validate:"required"`
	Month       string `validate:"required"`
}

type addMonthsInput struct {
	StudentName string   `validate:"required"`
	Months      []string `validate:"min=1,dive,feemonth"`
}

type bulkExistingInput struct {
	Months   []string `validate:"min=1,dive,feemonth"`
	Students []string `validate:"min=1"`
}

type bulkNewInput struct {
	PasteData string          `validate:"required"`
	Month     string          `validate:"required,feemonth"`
	Rows      []PastedStudent `validate:"min=1"`
}

type profileInput struct {
	OriginalName string `validate:"required"`
	StudentName  string `validate:"required"`
}

// fieldMessages maps a failing field and tag to the text shown to the user
var fieldMessages = map[string]string{
	"StudentName":  "Student name is required",
	"FatherName":   "Father name is required",
	"Month":        "Please select a month",
	"Month.month":  "Only months of 2026 can be selected",
	"FeeStatus":    "Please select a fee status",
	"Months":       "Please select at least one month",
	"Months.month": "Only months of 2026 can be selected",
	"Students":     "Please select at least one student",
	"PasteData":    "Please paste student data",
	"Rows":         "No valid student data found. Make sure each line has Name and Father Name.",
	"OriginalName": "Student to edit is unknown",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("feemonth", func(fl validator.FieldLevel) bool {
		return models.IsMonthOption(fl.Field().String())
	})
	_ = v.RegisterValidation("feestatus", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == models.StatusPaid || s == models.StatusNotPaid
	})
	return v
}

// check validates input and turns the first failure into a ValidationError
func check(v *validator.Validate, input interface{}) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := errs[0]
	field := fe.StructField()
	if strings.HasPrefix(field, "Months[") {
		field = "Months"
	}
	if fe.Tag() == "feemonth" {
		if msg, ok := fieldMessages[field+".month"]; ok {
			return &ValidationError{Message: msg}
		}
	}
	if msg, ok := fieldMessages[field]; ok {
		return &ValidationError{Message: msg}
	}
	return &ValidationError{Message: fe.Error()}
}
