package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"feetracker-go/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	recordsKey       = "fees:records"  // List: record IDs in insertion order
	recordInfoPrefix = "fees:record:"  // Hash prefix: fees:record:{id} -> record fields
	entriesKey       = "fees:entries"  // Hash: name|father|month -> record ID
	receiptsKey      = "fees:receipts" // Hash: lower(receipt) -> record ID
)

// RedisService stores fee records in Redis
type RedisService struct {
	Client *redis.Client

	// Serializes check-then-write sequences of mutations
	mu sync.Mutex
}

// NewRedisService creates a new RedisService instance
func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{Client: client}
}

func getRecordInfoKey(id string) string {
	return recordInfoPrefix + id
}

// entryField identifies a record by student and month, month case-insensitive
func entryField(name, father, month string) string {
	return name + "\x1f" + father + "\x1f" + strings.ToLower(strings.TrimSpace(month))
}

func receiptField(receipt string) string {
	return strings.ToLower(strings.TrimSpace(receipt))
}

func recordFields(r models.Record) map[string]interface{} {
	return map[string]interface{}{
		"id":           r.ID,
		"student_id":   r.StudentID,
		"student_name": r.StudentName,
		"father_name":  r.FatherName,
		"mobile":       r.MobileNumber,
		"month":        r.Month,
		"status":       r.FeeStatus,
		"receipt":      r.ReceiptNumber,
	}
}

func recordFromHash(data map[string]string) models.Record {
	return models.Record{
		ID:            data["id"],
		StudentID:     data["student_id"],
		StudentName:   data["student_name"],
		FatherName:    data["father_name"],
		MobileNumber:  data["mobile"],
		Month:         data["month"],
		FeeStatus:     data["status"],
		ReceiptNumber: data["receipt"],
	}
}

// queueInsert adds the commands storing a new record to pipe
func queueInsert(ctx context.Context, pipe redis.Pipeliner, r models.Record) {
	pipe.HSet(ctx, getRecordInfoKey(r.ID), recordFields(r))
	pipe.RPush(ctx, recordsKey, r.ID)
	pipe.HSet(ctx, entriesKey, entryField(r.StudentName, r.FatherName, r.Month), r.ID)
	if r.ReceiptNumber != "" {
		pipe.HSet(ctx, receiptsKey, receiptField(r.ReceiptNumber), r.ID)
	}
}

// --- Reads ---

// Count returns the number of stored records
func (s *RedisService) Count(ctx context.Context) (int64, error) {
	n, err := s.Client.LLen(ctx, recordsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// GetRecordByID retrieves a record by its store ID
func (s *RedisService) GetRecordByID(ctx context.Context, id string) (*models.Record, error) {
	data, err := s.Client.HGetAll(ctx, getRecordInfoKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record %s from Redis: %w", id, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	r := recordFromHash(data)
	return &r, nil
}

// AllRecords retrieves every record in insertion order
func (s *RedisService) AllRecords(ctx context.Context) ([]models.Record, error) {
	ids, err := s.Client.LRange(ctx, recordsKey, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Record{}, nil
		}
		return nil, fmt.Errorf("failed to get record IDs from Redis: %w", err)
	}

	pipe := s.Client.Pipeline()
	cmds := make([]*redis.StringStringMapCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, getRecordInfoKey(id))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to load records from Redis: %w", err)
		}
	}

	records := make([]models.Record, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			zap.S().Warnf("Skipping dangling record id %s: %v", ids[i], err)
			continue
		}
		records = append(records, recordFromHash(data))
	}
	return records, nil
}

// findEntry returns the record stored for a student and month, or nil
func (s *RedisService) findEntry(ctx context.Context, name, father, month string) (*models.Record, error) {
	id, err := s.Client.HGet(ctx, entriesKey, entryField(name, father, month)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up record: %w", err)
	}
	return s.GetRecordByID(ctx, id)
}

// receiptOwner returns the ID of the record holding receipt, or ""
func (s *RedisService) receiptOwner(ctx context.Context, receipt string) (string, error) {
	id, err := s.Client.HGet(ctx, receiptsKey, receiptField(receipt)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to look up receipt: %w", err)
	}
	return id, nil
}

// --- Mutations ---

// AddRecord stores a new record, rejecting duplicate entries and receipts
func (s *RedisService) AddRecord(ctx context.Context, r models.Record) error {
	if r.StudentName == "" || r.Month == "" {
		return ErrMissingFields
	}
	if r.FeeStatus == "" {
		r.FeeStatus = models.StatusNotPaid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findEntry(ctx, r.StudentName, r.FatherName, r.Month)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateEntry
	}
	if r.ReceiptNumber != "" {
		owner, err := s.receiptOwner(ctx, r.ReceiptNumber)
		if err != nil {
			return err
		}
		if owner != "" {
			return ErrDuplicateReceipt
		}
	}

	r.ID = uuid.NewString()
	pipe := s.Client.TxPipeline()
	queueInsert(ctx, pipe, r)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add record to Redis: %w", err)
	}
	zap.S().Infof("Added record: %s (%s) for %s", r.StudentName, r.FatherName, r.Month)
	return nil
}

// UpdateRecord changes the fee status of a student's month. The receipt is
// kept only when the new status is paid.
func (s *RedisService) UpdateRecord(ctx context.Context, name, father, month, status, receipt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findEntry(ctx, name, father, month)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	paid := models.IsPaidStatus(status)
	if !paid {
		receipt = ""
	}
	if receipt != "" {
		owner, err := s.receiptOwner(ctx, receipt)
		if err != nil {
			return err
		}
		if owner != "" && owner != existing.ID {
			return ErrDuplicateReceipt
		}
	}

	pipe := s.Client.TxPipeline()
	if existing.ReceiptNumber != "" {
		pipe.HDel(ctx, receiptsKey, receiptField(existing.ReceiptNumber))
	}
	pipe.HSet(ctx, getRecordInfoKey(existing.ID), "status", status, "receipt", receipt)
	if receipt != "" {
		pipe.HSet(ctx, receiptsKey, receiptField(receipt), existing.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update record %s: %w", existing.ID, err)
	}
	return nil
}

// DeleteRecord removes a student's month
func (s *RedisService) DeleteRecord(ctx context.Context, name, father, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findEntry(ctx, name, father, month)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	pipe := s.Client.TxPipeline()
	pipe.LRem(ctx, recordsKey, 1, existing.ID)
	pipe.Del(ctx, getRecordInfoKey(existing.ID))
	pipe.HDel(ctx, entriesKey, entryField(existing.StudentName, existing.FatherName, existing.Month))
	if existing.ReceiptNumber != "" {
		pipe.HDel(ctx, receiptsKey, receiptField(existing.ReceiptNumber))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", existing.ID, err)
	}
	zap.S().Infof("Deleted record: %s (%s) for %s", name, father, month)
	return nil
}

// BulkResult reports the outcome of BulkAdd
type BulkResult struct {
	Added   int
	Skipped int
	Errors  []string
}

// BulkAdd validates each row, skips duplicates of stored or earlier rows and
// inserts the rest in one transaction.
func (s *RedisService) BulkAdd(ctx context.Context, rows []models.Record) (BulkResult, error) {
	var res BulkResult

	s.mu.Lock()
	defer s.mu.Unlock()

	seenEntries := make(map[string]bool)
	seenReceipts := make(map[string]bool)
	toAdd := make([]models.Record, 0, len(rows))

	for i, row := range rows {
		r := models.Record{
			StudentID:     strings.TrimSpace(row.StudentID),
			StudentName:   strings.TrimSpace(row.StudentName),
			FatherName:    strings.TrimSpace(row.FatherName),
			MobileNumber:  strings.TrimSpace(row.MobileNumber),
			Month:         strings.TrimSpace(row.Month),
			FeeStatus:     strings.TrimSpace(row.FeeStatus),
			ReceiptNumber: strings.TrimSpace(row.ReceiptNumber),
		}
		if r.FeeStatus == "" {
			r.FeeStatus = models.StatusNotPaid
		}

		if r.StudentName == "" || r.Month == "" {
			res.skip(fmt.Sprintf("Row %d: Missing required fields", i+1))
			continue
		}

		entry := entryField(r.StudentName, r.FatherName, r.Month)
		if !seenEntries[entry] {
			existing, err := s.findEntry(ctx, r.StudentName, r.FatherName, r.Month)
			if err != nil {
				return res, err
			}
			seenEntries[entry] = existing != nil
		}
		if seenEntries[entry] {
			res.skip(fmt.Sprintf("Row %d: %s already has record for %s", i+1, r.StudentName, r.Month))
			continue
		}

		if r.ReceiptNumber != "" {
			rf := receiptField(r.ReceiptNumber)
			if !seenReceipts[rf] {
				owner, err := s.receiptOwner(ctx, r.ReceiptNumber)
				if err != nil {
					return res, err
				}
				seenReceipts[rf] = owner != ""
			}
			if seenReceipts[rf] {
				res.skip(fmt.Sprintf("Row %d: Receipt %s already exists", i+1, r.ReceiptNumber))
				continue
			}
			seenReceipts[rf] = true
		}

		r.ID = uuid.NewString()
		seenEntries[entry] = true
		toAdd = append(toAdd, r)
		res.Added++
	}

	if len(toAdd) == 0 {
		return res, nil
	}

	pipe := s.Client.TxPipeline()
	for _, r := range toAdd {
		queueInsert(ctx, pipe, r)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return BulkResult{}, fmt.Errorf("failed to save %d records: %w", len(toAdd), err)
	}
	zap.S().Infof("Bulk added %d records (%d skipped)", res.Added, res.Skipped)
	return res, nil
}

func (r *BulkResult) skip(msg string) {
	r.Skipped++
	r.Errors = append(r.Errors, msg)
}

// ReplaceAll drops every stored record and stores records in their place.
// Repeated student-month rows keep the first occurrence.
func (s *RedisService) ReplaceAll(ctx context.Context, records []models.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.Client.LRange(ctx, recordsKey, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to list records: %w", err)
	}

	pipe := s.Client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, getRecordInfoKey(id))
	}
	pipe.Del(ctx, recordsKey, entriesKey, receiptsKey)

	seen := make(map[string]bool, len(records))
	stored := 0
	for _, r := range records {
		entry := entryField(r.StudentName, r.FatherName, r.Month)
		if seen[entry] {
			zap.S().Infof("Skipping repeated row for %s (%s) %s", r.StudentName, r.FatherName, r.Month)
			continue
		}
		seen[entry] = true
		r.ID = uuid.NewString()
		queueInsert(ctx, pipe, r)
		stored++
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to replace records: %w", err)
	}
	zap.S().Infof("Replaced store contents with %d records", stored)
	return stored, nil
}

// UpdateStudentProfile rewrites the identity fields on all records of a
// student and returns how many records changed.
func (s *RedisService) UpdateStudentProfile(ctx context.Context, req models.ProfileUpdateRequest) (int, error) {
	if strings.TrimSpace(req.StudentName) == "" {
		return 0, ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.AllRecords(ctx)
	if err != nil {
		return 0, err
	}

	origName := strings.TrimSpace(req.OriginalName)
	origFather := strings.TrimSpace(req.OriginalFather)
	newName := strings.TrimSpace(req.StudentName)
	newFather := strings.TrimSpace(req.FatherName)

	var targets []models.Record
	renamed := make(map[string]bool)
	for _, r := range records {
		if r.StudentName == origName && r.FatherName == origFather {
			targets = append(targets, r)
			renamed[r.ID] = true
		}
	}
	if len(targets) == 0 {
		return 0, ErrNotFound
	}

	// the new identity must not already own any of the renamed months
	for _, r := range targets {
		existing, err := s.findEntry(ctx, newName, newFather, r.Month)
		if err != nil {
			return 0, err
		}
		if existing != nil && !renamed[existing.ID] {
			return 0, ErrDuplicateEntry
		}
	}

	pipe := s.Client.TxPipeline()
	updated := 0
	for _, r := range targets {
		pipe.HDel(ctx, entriesKey, entryField(r.StudentName, r.FatherName, r.Month))
		r.StudentID = strings.TrimSpace(req.StudentID)
		r.StudentName = newName
		r.FatherName = newFather
		r.MobileNumber = strings.TrimSpace(req.MobileNumber)
		pipe.HSet(ctx, getRecordInfoKey(r.ID), recordFields(r))
		pipe.HSet(ctx, entriesKey, entryField(r.StudentName, r.FatherName, r.Month), r.ID)
		updated++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to update student profile: %w", err)
	}
	return updated, nil
}

// MarkPaid marks a student's month paid under the next free receipt number
// of the form RCP-MMYY-NNN for the month of now.
func (s *RedisService) MarkPaid(ctx context.Context, name, father, month string, now time.Time) (string, error) {
	if name == "" || month == "" {
		return "", ErrMissingFields
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findEntry(ctx, name, father, month)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", ErrNotFound
	}

	receipts, err := s.Client.HKeys(ctx, receiptsKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to list receipts: %w", err)
	}
	receipt := NextReceiptNumber(receipts, now)

	pipe := s.Client.TxPipeline()
	if existing.ReceiptNumber != "" {
		pipe.HDel(ctx, receiptsKey, receiptField(existing.ReceiptNumber))
	}
	pipe.HSet(ctx, getRecordInfoKey(existing.ID), "status", models.StatusPaid, "receipt", receipt)
	pipe.HSet(ctx, receiptsKey, receiptField(receipt), existing.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to mark record %s paid: %w", existing.ID, err)
	}
	return receipt, nil
}

// NextReceiptNumber returns the receipt following the highest existing one
// with the RCP-MMYY- prefix of now. Matching is case-insensitive.
func NextReceiptNumber(existing []string, now time.Time) string {
	prefix := "RCP-" + now.Format("0106") + "-"
	lower := strings.ToLower(prefix)
	max := 0
	for _, r := range existing {
		rest, ok := strings.CutPrefix(strings.ToLower(r), lower)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(rest); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}

// --- Utility ---

// InitializeRedisClient creates and tests a Redis client connection
func InitializeRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}

	zap.S().Infof("Successfully connected to Redis DB %d", db)
	return rdb, nil
}
