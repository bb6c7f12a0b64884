// Package client talks to the fee API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"feetracker-go/models"
)

// APIError is a request the API answered with success=false
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fee api: request rejected (status %d)", e.Status)
	}
	return "fee api: " + e.Message
}

// Client calls the fee API rooted at BaseURL
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a Client with the given request timeout
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("fee api %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fee api %s %s: reading body: %w", req.Method, req.URL.Path, err)
	}

	var result models.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("fee api %s %s: decoding response (status %d): %w", req.Method, req.URL.Path, resp.StatusCode, err)
	}
	if !result.Success {
		return &APIError{Status: resp.StatusCode, Message: result.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("fee api %s %s: decoding response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// --- Reads ---

// Students fetches the full record collection
func (c *Client) Students(ctx context.Context) ([]models.Record, error) {
	var resp models.RecordsResponse
	if err := c.get(ctx, "/api/students", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Summary fetches counts and the distinct months
func (c *Client) Summary(ctx context.Context) (models.Summary, error) {
	var resp models.SummaryResponse
	if err := c.get(ctx, "/api/summary", nil, &resp); err != nil {
		return models.Summary{}, err
	}
	return resp.Summary, nil
}

// SearchParams are the filters of /api/search; empty ones are omitted
type SearchParams struct {
	Query  string
	Month  string
	Status string
}

// Search fetches the records matching p
func (c *Client) Search(ctx context.Context, p SearchParams) (models.RecordsResponse, error) {
	q := url.Values{}
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	if p.Month != "" {
		q.Set("month", p.Month)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	var resp models.RecordsResponse
	err := c.get(ctx, "/api/search", q, &resp)
	return resp, err
}

// StudentByReceipt fetches the profile of the student holding receipt
func (c *Client) StudentByReceipt(ctx context.Context, receipt string) (*models.Profile, error) {
	var resp models.ProfileResponse
	if err := c.get(ctx, "/api/student/"+url.PathEscape(receipt), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

// StudentProfile fetches a profile by student key
func (c *Client) StudentProfile(ctx context.Context, key string) (*models.Profile, error) {
	var resp models.ProfileResponse
	if err := c.get(ctx, "/api/student-profile/"+url.PathEscape(key), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

// UniqueStudents fetches the distinct students for autocomplete
func (c *Client) UniqueStudents(ctx context.Context) ([]models.UniqueStudent, error) {
	var resp models.UniqueStudentsResponse
	if err := c.get(ctx, "/api/unique-students", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Students, nil
}

// Defaulters fetches students with at least minMonths unpaid months
func (c *Client) Defaulters(ctx context.Context, minMonths int) ([]models.Defaulter, error) {
	q := url.Values{"min_months": {fmt.Sprint(minMonths)}}
	var resp models.DefaultersResponse
	if err := c.get(ctx, "/api/defaulters", q, &resp); err != nil {
		return nil, err
	}
	return resp.Defaulters, nil
}

// --- Mutations ---

// Add creates one record
func (c *Client) Add(ctx context.Context, req models.RecordRequest) (models.Result, error) {
	var resp models.Result
	err := c.post(ctx, "/api/add", req, &resp)
	return resp, err
}

// Update changes the fee status of one record
func (c *Client) Update(ctx context.Context, req models.RecordRequest) (models.Result, error) {
	var resp models.Result
	err := c.post(ctx, "/api/update", req, &resp)
	return resp, err
}

// Delete removes one record
func (c *Client) Delete(ctx context.Context, req models.RecordRequest) (models.Result, error) {
	var resp models.Result
	err := c.post(ctx, "/api/delete", req, &resp)
	return resp, err
}

// BulkAdd creates many records at once
func (c *Client) BulkAdd(ctx context.Context, records []models.Record) (models.BulkAddResponse, error) {
	var resp models.BulkAddResponse
	err := c.post(ctx, "/api/bulk-add", models.BulkAddRequest{Records: records}, &resp)
	return resp, err
}

// UpdateStudentProfile rewrites a student's identity on all their records
func (c *Client) UpdateStudentProfile(ctx context.Context, req models.ProfileUpdateRequest) (models.MutationResponse, error) {
	var resp models.MutationResponse
	err := c.post(ctx, "/api/update-student-profile", req, &resp)
	return resp, err
}

// QuickMarkPaid marks a month paid under an auto-generated receipt
func (c *Client) QuickMarkPaid(ctx context.Context, req models.MarkPaidRequest) (models.MutationResponse, error) {
	var resp models.MutationResponse
	err := c.post(ctx, "/api/quick-mark-paid", req, &resp)
	return resp, err
}

// --- Files ---

// Upload sends a spreadsheet that replaces all records
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (models.MutationResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return models.MutationResponse{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return models.MutationResponse{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.MutationResponse{}, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/upload", &buf)
	if err != nil {
		return models.MutationResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp models.MutationResponse
	err = c.do(req, &resp)
	return resp, err
}

// Download fetches the spreadsheet export for filter and the filename the
// server suggests for it.
func (c *Client) Download(ctx context.Context, filter string) ([]byte, string, error) {
	q := url.Values{"filter": {filter}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/download?"+q.Encode(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fee api GET /api/download: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("fee api GET /api/download: reading body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var result models.Result
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, "", fmt.Errorf("fee api GET /api/download: status %d", resp.StatusCode)
		}
		return nil, "", &APIError{Status: resp.StatusCode, Message: result.Error}
	}

	filename := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return body, filename, nil
}
