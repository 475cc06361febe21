// internal/domain/quality/service.go
package quality

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles quality test business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new quality service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// RecordTestRequest represents a request to record a lab measurement
type RecordTestRequest struct {
	Source   string          `json:"source" binding:"required"`
	TestType string          `json:"test_type" binding:"required"`
	Value    decimal.Decimal `json:"value" binding:"required"`
	Result   TestResult      `json:"result" binding:"required"`
	TestedAt *time.Time      `json:"tested_at"`
	Remarks  string          `json:"remarks"`
}

// UpdateTestRequest allows correcting a recorded measurement
type UpdateTestRequest struct {
	Value   *decimal.Decimal `json:"value"`
	Result  *TestResult      `json:"result"`
	Remarks *string          `json:"remarks"`
}

// ListTestsRequest carries optional list filters
type ListTestsRequest struct {
	Source string      `form:"source"`
	Result *TestResult `form:"result"`
}

// RecordTest stores a new measurement under a generated sample code
func (s *Service) RecordTest(req *RecordTestRequest, testedBy string) (*QualityTest, error) {
	if strings.TrimSpace(req.Source) == "" {
		return nil, apperr.Validation("test source is required")
	}
	if strings.TrimSpace(req.TestType) == "" {
		return nil, apperr.Validation("test type is required")
	}
	if !req.Result.IsValid() {
		return nil, apperr.Validation("result must be pass or fail")
	}

	testedAt := time.Now().UTC()
	if req.TestedAt != nil {
		testedAt = req.TestedAt.UTC()
	}

	test := &QualityTest{
		SampleCode: generateSampleCode(testedAt),
		Source:     strings.TrimSpace(req.Source),
		TestType:   strings.ToLower(strings.TrimSpace(req.TestType)),
		Value:      req.Value,
		Result:     req.Result,
		TestedBy:   testedBy,
		TestedAt:   testedAt,
		Remarks:    req.Remarks,
	}
	if err := s.db.Create(test).Error; err != nil {
		return nil, apperr.Storage("failed to record quality test", err)
	}
	return test, nil
}

// UpdateTest corrects the value, result or remarks of a recorded test
func (s *Service) UpdateTest(testID uint, req *UpdateTestRequest) (*QualityTest, error) {
	test, err := s.GetTest(testID)
	if err != nil {
		return nil, err
	}

	if req.Value != nil {
		test.Value = *req.Value
	}
	if req.Result != nil {
		if !req.Result.IsValid() {
			return nil, apperr.Validation("result must be pass or fail")
		}
		test.Result = *req.Result
	}
	if req.Remarks != nil {
		test.Remarks = *req.Remarks
	}

	if err := s.db.Save(test).Error; err != nil {
		return nil, apperr.Storage("failed to update quality test", err)
	}
	return test, nil
}

// GetTest retrieves a test by ID
func (s *Service) GetTest(testID uint) (*QualityTest, error) {
	var test QualityTest
	err := s.db.First(&test, testID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("quality test %d not found", testID)
	}
	if err != nil {
		return nil, apperr.Storage("failed to load quality test", err)
	}
	return &test, nil
}

// ListTests retrieves tests, newest first, optionally filtered by source
// and result.
func (s *Service) ListTests(req *ListTestsRequest) ([]QualityTest, error) {
	query := s.db.Order("tested_at DESC, created_at DESC")
	if req != nil {
		if req.Source != "" {
			query = query.Where("source = ?", req.Source)
		}
		if req.Result != nil {
			query = query.Where("result = ?", *req.Result)
		}
	}

	var tests []QualityTest
	if err := query.Find(&tests).Error; err != nil {
		return nil, apperr.Storage("failed to list quality tests", err)
	}
	return tests, nil
}

// DeleteTest removes a mistaken record
func (s *Service) DeleteTest(testID uint) error {
	result := s.db.Delete(&QualityTest{}, testID)
	if result.Error != nil {
		return apperr.Storage("failed to delete quality test", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("quality test %d not found", testID)
	}
	return nil
}

func generateSampleCode(date time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:6])
	return fmt.Sprintf("QT-%s-%s", date.Format("20060102"), suffix)
}
