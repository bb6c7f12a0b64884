package db

import (
	"context"

	"feetracker-go/models"

	"go.uber.org/zap"
)

type sampleStudent struct {
	id, name, father, mobile string
	paid                     [2]string // receipts for January and February; "" means unpaid
}

var sampleStudents = []sampleStudent{
	{"VK001", "Aarav Patel", "Rajesh Patel", "9810000001", [2]string{"RCP-001-JAN26", "RCP-001-FEB26"}},
	{"VK002", "Priya Sharma", "Suresh Sharma", "9810000002", [2]string{"", "RCP-002-FEB26"}},
	{"VK003", "Rohan Gupta", "Anil Gupta", "9810000003", [2]string{"RCP-003-JAN26", "RCP-003-FEB26"}},
	{"VK004", "Sneha Verma", "Prakash Verma", "9810000004", [2]string{"", ""}},
	{"VK005", "Amit Singh", "Vikram Singh", "9810000005", [2]string{"RCP-005-JAN26", "RCP-005-FEB26"}},
	{"VK006", "Kavya Mishra", "Deepak Mishra", "9810000006", [2]string{"RCP-006-JAN26", "RCP-006-FEB26"}},
	{"VK007", "Arjun Kumar", "Ramesh Kumar", "9810000007", [2]string{"", "RCP-007-FEB26"}},
	{"VK008", "Ananya Joshi", "Sanjay Joshi", "9810000008", [2]string{"RCP-008-JAN26", "RCP-008-FEB26"}},
	{"VK009", "Rahul Sharma", "Mohan Sharma", "9810000009", [2]string{"RCP-009-JAN26", ""}},
	{"VK010", "Meera Agarwal", "Vinod Agarwal", "9810000010", [2]string{"", "RCP-010-FEB26"}},
}

// SampleRecords returns the records seeded into an empty store
func SampleRecords() []models.Record {
	months := [2]string{"January 2026", "February 2026"}
	var out []models.Record
	for _, st := range sampleStudents {
		for i, month := range months {
			r := models.Record{
				StudentID:    st.id,
				StudentName:  st.name,
				FatherName:   st.father,
				MobileNumber: st.mobile,
				Month:        month,
				FeeStatus:    models.StatusNotPaid,
			}
			if st.paid[i] != "" {
				r.FeeStatus = models.StatusPaid
				r.ReceiptNumber = st.paid[i]
			}
			out = append(out, r)
		}
	}
	return out
}

// SeedIfEmpty stores the sample records when the store holds none
func (s *RedisService) SeedIfEmpty(ctx context.Context) error {
	count, err := s.Count(ctx)
	if err != nil {
		zap.S().Warnf("Unable to check for existing records: %v. Skipping seed.", err)
		return err
	}
	if count > 0 {
		zap.S().Infof("Found %d existing records. Skipping seed.", count)
		return nil
	}

	zap.S().Info("No fee records found. Adding sample data...")
	res, err := s.BulkAdd(ctx, SampleRecords())
	if err != nil {
		return err
	}
	zap.S().Infof("Sample data added: %d records", res.Added)
	return nil
}
