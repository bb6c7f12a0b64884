package models

// Request and response bodies of the fee API.

// RecordRequest is the body of /api/add, /api/update and /api/delete
type RecordRequest struct {
	StudentID     string `json:"student_id,omitempty"`
	StudentName   string `json:"student_name"`
	FatherName    string `json:"father_name"`
	MobileNumber  string `json:"mobile_number,omitempty"`
	Month         string `json:"month"`
	FeeStatus     string `json:"fee_status,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
}

// BulkAddRequest is the body of /api/bulk-add
type BulkAddRequest struct {
	Records []Record `json:"records"`
}

// ProfileUpdateRequest is the body of /api/update-student-profile
type ProfileUpdateRequest struct {
	OriginalName   string `json:"original_name"`
	OriginalFather string `json:"original_father"`
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name"`
	FatherName     string `json:"father_name"`
	MobileNumber   string `json:"mobile_number"`
}

// MarkPaidRequest is the body of /api/quick-mark-paid
type MarkPaidRequest struct {
	StudentName string `json:"student_name"`
	FatherName  string `json:"father_name"`
	Month       string `json:"month"`
}

// Result is the envelope shared by every JSON response
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// RecordsResponse answers /api/students and /api/search
type RecordsResponse struct {
	Result
	Data       []Record `json:"data"`
	Total      int      `json:"total"`
	Page       int      `json:"page,omitempty"`
	PerPage    int      `json:"per_page,omitempty"`
	TotalPages int      `json:"total_pages,omitempty"`
	HasNext    bool     `json:"has_next,omitempty"`
	HasPrev    bool     `json:"has_prev,omitempty"`
}

// SummaryResponse answers /api/summary
type SummaryResponse struct {
	Result
	Summary Summary `json:"summary"`
}

// ProfileResponse answers /api/student/:receipt and /api/student-profile/*key
type ProfileResponse struct {
	Result
	Profile
}

// UniqueStudentsResponse answers /api/unique-students
type UniqueStudentsResponse struct {
	Result
	Students []UniqueStudent `json:"students"`
}

// DefaultersResponse answers /api/defaulters
type DefaultersResponse struct {
	Result
	Defaulters []Defaulter `json:"defaulters"`
	Total      int         `json:"total"`
	MinMonths  int         `json:"min_months"`
}

// BulkAddResponse answers /api/bulk-add
type BulkAddResponse struct {
	Result
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// MutationResponse answers the remaining mutations
type MutationResponse struct {
	Result
	Updated       int    `json:"updated,omitempty"`
	Total         int    `json:"total,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
}
