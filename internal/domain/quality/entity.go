// internal/domain/quality/entity.go
package quality

import (
	"time"

	"github.com/shopspring/decimal"
)

// TestResult is the lab's pass/fail verdict
type TestResult string

const (
	TestResultPass TestResult = "pass"
	TestResultFail TestResult = "fail"
)

// Known test types. The column is free text so new assays do not need a
// schema change; these are the ones the lab runs routinely.
const (
	TestTypePH         = "ph"
	TestTypeTDS        = "tds"
	TestTypeMicrobial  = "microbial"
	TestTypeFatContent = "fat_content"
)

// QualityTest is one lab measurement against a source, which is either a
// tank SKU or a production batch number.
type QualityTest struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	SampleCode string          `json:"sample_code" gorm:"uniqueIndex;not null;size:50"`
	Source     string          `json:"source" gorm:"not null;size:100;index"`
	TestType   string          `json:"test_type" gorm:"not null;size:50"`
	Value      decimal.Decimal `json:"value" gorm:"type:decimal(20,4);not null"`
	Result     TestResult      `json:"result" gorm:"not null;size:10;index"`
	TestedBy   string          `json:"tested_by" gorm:"not null;size:255"`
	TestedAt   time.Time       `json:"tested_at" gorm:"not null"`
	Remarks    string          `json:"remarks" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName returns the table name for QualityTest
func (QualityTest) TableName() string {
	return "quality_tests"
}

// IsValid checks whether the result is a known verdict
func (r TestResult) IsValid() bool {
	return r == TestResultPass || r == TestResultFail
}
