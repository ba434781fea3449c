package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/application/service"
	"github.com/malqarni/sitepay/internal/domain/entity"
	"github.com/malqarni/sitepay/internal/domain/workflow"
)

type stubAttendanceService struct {
	recordFn    func(ctx context.Context, input service.RecordEventInput) (*entity.AttendanceRecord, error)
	listFn      func(ctx context.Context, filter port.AttendanceFilter) ([]*entity.AttendanceRecord, error)
	setStatusFn func(ctx context.Context, recordID int64, status entity.AttendanceStatus, reviewerID int64) (*entity.AttendanceRecord, error)
}

func (s *stubAttendanceService) RecordEvent(ctx context.Context, input service.RecordEventInput) (*entity.AttendanceRecord, error) {
	return s.recordFn(ctx, input)
}

func (s *stubAttendanceService) List(ctx context.Context, filter port.AttendanceFilter) ([]*entity.AttendanceRecord, error) {
	return s.listFn(ctx, filter)
}

func (s *stubAttendanceService) SetStatus(ctx context.Context, recordID int64, status entity.AttendanceStatus, reviewerID int64) (*entity.AttendanceRecord, error) {
	return s.setStatusFn(ctx, recordID, status, reviewerID)
}

type stubPayrollService struct {
	previewFn  func(ctx context.Context, month string, projectID *int64) (*service.PreviewResult, error)
	generateFn func(ctx context.Context, month string, projectID *int64, actorID int64) (*service.GenerateResult, error)
	listFn     func(ctx context.Context, month string, projectID *int64) ([]*entity.PayrollRecord, error)
	approveFn  func(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error)
	rejectFn   func(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error)
}

func (s *stubPayrollService) Preview(ctx context.Context, month string, projectID *int64) (*service.PreviewResult, error) {
	return s.previewFn(ctx, month, projectID)
}

func (s *stubPayrollService) Generate(ctx context.Context, month string, projectID *int64, actorID int64) (*service.GenerateResult, error) {
	return s.generateFn(ctx, month, projectID, actorID)
}

func (s *stubPayrollService) ListRecords(ctx context.Context, month string, projectID *int64) ([]*entity.PayrollRecord, error) {
	return s.listFn(ctx, month, projectID)
}

func (s *stubPayrollService) Approve(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error) {
	return s.approveFn(ctx, recordID, reviewerID)
}

func (s *stubPayrollService) Reject(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error) {
	return s.rejectFn(ctx, recordID, reviewerID)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestHandlers(attendance service.AttendanceService, payroll service.PayrollService) *Handlers {
	return NewHandlers(attendance, payroll, nil, nil, nil, nopLogger{})
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRecordAttendance_Created(t *testing.T) {
	attendance := &stubAttendanceService{
		recordFn: func(_ context.Context, input service.RecordEventInput) (*entity.AttendanceRecord, error) {
			return &entity.AttendanceRecord{
				ID:        1,
				UserID:    input.UserID,
				ProjectID: input.ProjectID,
				CheckType: input.CheckType,
				Status:    entity.AttendanceApproved,
			}, nil
		},
	}
	h := newTestHandlers(attendance, nil)

	body := `{"user_id":7,"project_id":1,"check_type":"check_in","timestamp":"2024-05-01T08:30:00Z","latitude":24.71,"longitude":46.67}`
	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, http.MethodPost, "/api/attendance", strings.NewReader(body))
	h.RecordAttendance(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestRecordAttendance_BadBody(t *testing.T) {
	h := newTestHandlers(&stubAttendanceService{}, nil)

	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, http.MethodPost, "/api/attendance", strings.NewReader(`{"user_id":"seven"}`))
	h.RecordAttendance(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeResponse(t, w).Success)
}

func TestRecordAttendance_ValidationErrorMapsTo400(t *testing.T) {
	attendance := &stubAttendanceService{
		recordFn: func(context.Context, service.RecordEventInput) (*entity.AttendanceRecord, error) {
			return nil, fmt.Errorf("%w: unknown project", entity.ErrValidation)
		},
	}
	h := newTestHandlers(attendance, nil)

	body := `{"user_id":7,"project_id":42,"check_type":"check_in","timestamp":"2024-05-01T08:30:00Z"}`
	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, http.MethodPost, "/api/attendance", strings.NewReader(body))
	h.RecordAttendance(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApprovePayrollRecord_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", fmt.Errorf("%w: payroll record 9", entity.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: concurrent decision", entity.ErrConflict), http.StatusConflict},
		{"invalid transition", fmt.Errorf("%w: rejected is terminal", workflow.ErrInvalidTransition), http.StatusConflict},
		{"internal", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payroll := &stubPayrollService{
				approveFn: func(context.Context, int64, int64) (*entity.PayrollRecord, error) {
					return nil, tt.err
				},
			}
			h := newTestHandlers(nil, payroll)

			w := httptest.NewRecorder()
			c, _ := ginTestContext(w, http.MethodPut, "/api/payroll/records/9/approve", nil)
			c.Params = []gin.Param{{Key: "id", Value: "9"}}
			h.ApprovePayrollRecord(c)

			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestApprovePayrollRecord_ReviewerFromHeader(t *testing.T) {
	var gotReviewer int64
	payroll := &stubPayrollService{
		approveFn: func(_ context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error) {
			gotReviewer = reviewerID
			return &entity.PayrollRecord{ID: recordID, Approved: entity.PayrollApproved}, nil
		},
	}
	h := newTestHandlers(nil, payroll)

	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, http.MethodPut, "/api/payroll/records/9/approve", nil)
	c.Params = []gin.Param{{Key: "id", Value: "9"}}
	c.Request.Header.Set("X-Actor-ID", "50")
	h.ApprovePayrollRecord(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(50), gotReviewer)
}

func TestApprovePayrollRecord_BadID(t *testing.T) {
	h := newTestHandlers(nil, &stubPayrollService{})

	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, http.MethodPut, "/api/payroll/records/abc/approve", nil)
	c.Params = []gin.Param{{Key: "id", Value: "abc"}}
	h.ApprovePayrollRecord(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneratePayroll_ReturnsCounts(t *testing.T) {
	payroll := &stubPayrollService{
		generateFn: func(_ context.Context, month string, projectID *int64, _ int64) (*service.GenerateResult, error) {
			assert.Equal(t, "2024-05", month)
			require.NotNil(t, projectID)
			assert.Equal(t, int64(1), *projectID)
			return &service.GenerateResult{Created: 2, Skipped: 1}, nil
		},
	}
	h := newTestHandlers(nil, payroll)

	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, http.MethodPost, "/api/payroll/generate", strings.NewReader(`{"month":"2024-05","project_id":1}`))
	h.GeneratePayroll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["created"])
	assert.Equal(t, float64(1), data["skipped"])
}

func TestListAttendance_InvalidQueryParams(t *testing.T) {
	h := newTestHandlers(&stubAttendanceService{}, nil)

	for _, query := range []string{"user_id=abc", "project_id=abc", "status=bogus", "from=yesterday"} {
		w := httptest.NewRecorder()
		c, _ := ginTestContext(w, http.MethodGet, "/api/attendance?"+query, nil)
		h.ListAttendance(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestListAttendance_PassesFilter(t *testing.T) {
	var gotFilter port.AttendanceFilter
	attendance := &stubAttendanceService{
		listFn: func(_ context.Context, filter port.AttendanceFilter) ([]*entity.AttendanceRecord, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	h := newTestHandlers(attendance, nil)

	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, http.MethodGet, "/api/attendance?user_id=7&status=pending", nil)
	h.ListAttendance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotFilter.UserID)
	assert.Equal(t, int64(7), *gotFilter.UserID)
	require.NotNil(t, gotFilter.Status)
	assert.Equal(t, entity.AttendancePending, *gotFilter.Status)
	assert.Nil(t, gotFilter.ProjectID)
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandlers(nil, nil)

	w := httptest.NewRecorder()
	c, _ := ginTestContext(w, http.MethodGet, "/health", nil)
	h.HealthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func ginTestContext(w *httptest.ResponseRecorder, method, target string, body *strings.Reader) (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(w)
	var reader io.Reader
	if body != nil {
		reader = body
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, engine
}
