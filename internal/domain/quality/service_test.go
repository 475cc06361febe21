// internal/domain/quality/service_test.go
package quality

import (
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/your-org/bottling-erp/internal/config"
	"github.com/your-org/bottling-erp/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&QualityTest{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewService(db, &config.Config{})
}

func TestRecordTestGeneratesSampleCode(t *testing.T) {
	svc := newTestService(t)

	test, err := svc.RecordTest(&RecordTestRequest{
		Source:   "RAW-WATER-TANK-001",
		TestType: "pH",
		Value:    decimal.NewFromFloat(7.2),
		Result:   TestResultPass,
		Remarks:  "within range",
	}, "lab-tech")
	if err != nil {
		t.Fatalf("record test failed: %v", err)
	}
	if !strings.HasPrefix(test.SampleCode, "QT-") {
		t.Errorf("expected QT- sample code, got %s", test.SampleCode)
	}
	if test.TestType != TestTypePH {
		t.Errorf("expected normalized test type %q, got %q", TestTypePH, test.TestType)
	}
	if test.TestedBy != "lab-tech" {
		t.Errorf("expected tested_by lab-tech, got %s", test.TestedBy)
	}
}

func TestRecordTestRejectsUnknownResult(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.RecordTest(&RecordTestRequest{
		Source:   "BAT-20240101-ABC123",
		TestType: "tds",
		Value:    decimal.NewFromInt(120),
		Result:   TestResult("maybe"),
	}, "lab-tech")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected Validation for unknown result, got %v", err)
	}
}

func TestListTestsFilters(t *testing.T) {
	svc := newTestService(t)

	seed := []RecordTestRequest{
		{Source: "RAW-WATER-TANK-001", TestType: "ph", Value: decimal.NewFromFloat(7.1), Result: TestResultPass},
		{Source: "RAW-WATER-TANK-001", TestType: "microbial", Value: decimal.NewFromInt(900), Result: TestResultFail},
		{Source: "BAT-20240101-ABC123", TestType: "tds", Value: decimal.NewFromInt(85), Result: TestResultPass},
	}
	for i := range seed {
		if _, err := svc.RecordTest(&seed[i], "lab-tech"); err != nil {
			t.Fatalf("seed test %d failed: %v", i, err)
		}
	}

	bySource, err := svc.ListTests(&ListTestsRequest{Source: "RAW-WATER-TANK-001"})
	if err != nil {
		t.Fatalf("list by source failed: %v", err)
	}
	if len(bySource) != 2 {
		t.Errorf("expected 2 tank tests, got %d", len(bySource))
	}

	fail := TestResultFail
	byResult, err := svc.ListTests(&ListTestsRequest{Result: &fail})
	if err != nil {
		t.Fatalf("list by result failed: %v", err)
	}
	if len(byResult) != 1 || byResult[0].TestType != TestTypeMicrobial {
		t.Errorf("expected the single failed microbial test, got %d entries", len(byResult))
	}

	all, err := svc.ListTests(nil)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 tests, got %d", len(all))
	}
}

func TestUpdateTestCorrectsResult(t *testing.T) {
	svc := newTestService(t)

	test, err := svc.RecordTest(&RecordTestRequest{
		Source:   "RAW-WATER-TANK-001",
		TestType: "ph",
		Value:    decimal.NewFromFloat(6.9),
		Result:   TestResultFail,
	}, "lab-tech")
	if err != nil {
		t.Fatalf("record test failed: %v", err)
	}

	pass := TestResultPass
	value := decimal.NewFromFloat(7.0)
	updated, err := svc.UpdateTest(test.ID, &UpdateTestRequest{Value: &value, Result: &pass})
	if err != nil {
		t.Fatalf("update test failed: %v", err)
	}
	if updated.Result != TestResultPass || !updated.Value.Equal(value) {
		t.Errorf("update not applied: result=%s value=%s", updated.Result, updated.Value)
	}
	if updated.SampleCode != test.SampleCode {
		t.Errorf("sample code must not change on update")
	}
}

func TestDeleteTest(t *testing.T) {
	svc := newTestService(t)

	test, err := svc.RecordTest(&RecordTestRequest{
		Source:   "RAW-WATER-TANK-001",
		TestType: "ph",
		Value:    decimal.NewFromFloat(7.2),
		Result:   TestResultPass,
	}, "lab-tech")
	if err != nil {
		t.Fatalf("record test failed: %v", err)
	}

	if err := svc.DeleteTest(test.ID); err != nil {
		t.Fatalf("delete test failed: %v", err)
	}
	if _, err := svc.GetTest(test.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if err := svc.DeleteTest(test.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound deleting twice, got %v", err)
	}
}
