package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/malqarni/sitepay/internal/application/port"
	"github.com/malqarni/sitepay/internal/application/service"
	"github.com/malqarni/sitepay/internal/domain/entity"
	"github.com/malqarni/sitepay/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	attendanceService service.AttendanceService
	payrollService    service.PayrollService
	projectService    service.ProjectService
	activityService   service.ActivityService
	reportService     service.ReportService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	attendanceService service.AttendanceService,
	payrollService service.PayrollService,
	projectService service.ProjectService,
	activityService service.ActivityService,
	reportService service.ReportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		attendanceService: attendanceService,
		payrollService:    payrollService,
		projectService:    projectService,
		activityService:   activityService,
		reportService:     reportService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// actorID resolves the caller identity forwarded by the auth layer in
// front of this service. Authentication itself is out of scope here.
func actorID(c *gin.Context) int64 {
	id, _ := strconv.ParseInt(c.GetHeader("X-Actor-ID"), 10, 64)
	return id
}

// respondError maps the domain error taxonomy onto status codes. Conflicts
// reaching this point are real failures; generation absorbs its expected
// conflicts into the skipped count before it returns.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrValidation):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, entity.ErrConflict), errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// RecordAttendanceRequest is the body of POST /api/attendance
type RecordAttendanceRequest struct {
	UserID      int64     `json:"user_id" binding:"required"`
	ProjectID   int64     `json:"project_id" binding:"required"`
	CheckType   string    `json:"check_type" binding:"required"`
	Timestamp   time.Time `json:"timestamp" binding:"required"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	EvidenceURL string    `json:"evidence_url"`
}

// RecordAttendance handles POST /api/attendance
func (h *Handlers) RecordAttendance(c *gin.Context) {
	var req RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	record, err := h.attendanceService.RecordEvent(c.Request.Context(), service.RecordEventInput{
		UserID:      req.UserID,
		ProjectID:   req.ProjectID,
		CheckType:   entity.CheckType(req.CheckType),
		Timestamp:   req.Timestamp,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		EvidenceURL: req.EvidenceURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: record})
}

// ListAttendance handles GET /api/attendance
func (h *Handlers) ListAttendance(c *gin.Context) {
	var filter port.AttendanceFilter

	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid user_id"})
			return
		}
		filter.UserID = &id
	}
	if v := c.Query("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid project_id"})
			return
		}
		filter.ProjectID = &id
	}
	if v := c.Query("status"); v != "" {
		status := entity.AttendanceStatus(v)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid status"})
			return
		}
		filter.Status = &status
	}
	for param, dest := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		if v := c.Query(param); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, Response{Success: false, Error: fmt.Sprintf("invalid %s timestamp", param)})
				return
			}
			*dest = &t
		}
	}
	// Dashboard shorthand: range=7d is a lower bound on the window
	if v := c.Query("range"); v != "" && filter.From == nil {
		since, err := service.ParseRange(v, time.Now().UTC())
		if err != nil {
			h.respondError(c, err)
			return
		}
		filter.From = &since
	}

	records, err := h.attendanceService.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// SetAttendanceStatusRequest is the body of PUT /api/attendance/:id/status
type SetAttendanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetAttendanceStatus handles PUT /api/attendance/:id/status
func (h *Handlers) SetAttendanceStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid record id"})
		return
	}

	var req SetAttendanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	record, err := h.attendanceService.SetStatus(c.Request.Context(), id, entity.AttendanceStatus(req.Status), actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

// ProjectResponse augments a project with its derived lifecycle status
type ProjectResponse struct {
	*entity.Project
	Status string `json:"status"`
}

func toProjectResponse(project *entity.Project) ProjectResponse {
	return ProjectResponse{Project: project, Status: project.Status(time.Now().UTC())}
}

// ListProjects handles GET /api/projects
func (h *Handlers) ListProjects(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, toProjectResponse(project))
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: responses})
}

// GetProject handles GET /api/projects/:id
func (h *Handlers) GetProject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid project id"})
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: toProjectResponse(project)})
}

// CreateProjectRequest is the body of POST /api/projects
type CreateProjectRequest struct {
	Name        string             `json:"name" binding:"required"`
	PayType     string             `json:"pay_type" binding:"required"`
	PayRate     *float64           `json:"pay_rate"`
	Allowances  map[string]float64 `json:"allowances"`
	LocationLat *float64           `json:"location_lat"`
	LocationLng *float64           `json:"location_lng"`
	Radius      float64            `json:"radius"`
	StartDate   *time.Time         `json:"start_date"`
	EndDate     *time.Time         `json:"end_date"`
}

// CreateProject handles POST /api/projects
func (h *Handlers) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), &entity.Project{
		Name:        req.Name,
		PayType:     entity.PayType(req.PayType),
		PayRate:     req.PayRate,
		Allowances:  entity.Allowances(req.Allowances),
		LocationLat: req.LocationLat,
		LocationLng: req.LocationLng,
		Radius:      req.Radius,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: toProjectResponse(project)})
}

// monthScope extracts the month and optional project scope query params
func monthScope(c *gin.Context) (string, *int64, error) {
	month := c.Query("month")
	var projectID *int64
	if v := c.Query("project_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: invalid project_id", entity.ErrValidation)
		}
		projectID = &id
	}
	return month, projectID, nil
}

// ComputePayroll handles GET /api/payroll/compute
func (h *Handlers) ComputePayroll(c *gin.Context) {
	month, projectID, err := monthScope(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	preview, err := h.payrollService.Preview(c.Request.Context(), month, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: preview})
}

// ListPayrollRecords handles GET /api/payroll/records
func (h *Handlers) ListPayrollRecords(c *gin.Context) {
	month, projectID, err := monthScope(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	records, err := h.payrollService.ListRecords(c.Request.Context(), month, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// ExportPayrollRecords handles GET /api/payroll/records/export
func (h *Handlers) ExportPayrollRecords(c *gin.Context) {
	month, projectID, err := monthScope(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	buf, err := h.reportService.MonthlyReport(c.Request.Context(), month, projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("payroll-%s.xlsx", month)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// GeneratePayrollRequest is the body of POST /api/payroll/generate
type GeneratePayrollRequest struct {
	Month     string `json:"month" binding:"required"`
	ProjectID *int64 `json:"project_id"`
}

// GeneratePayroll handles POST /api/payroll/generate
func (h *Handlers) GeneratePayroll(c *gin.Context) {
	var req GeneratePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	result, err := h.payrollService.Generate(c.Request.Context(), req.Month, req.ProjectID, actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ApprovePayrollRecord handles PUT /api/payroll/records/:id/approve
func (h *Handlers) ApprovePayrollRecord(c *gin.Context) {
	h.transitionPayrollRecord(c, h.payrollService.Approve)
}

// RejectPayrollRecord handles PUT /api/payroll/records/:id/reject
func (h *Handlers) RejectPayrollRecord(c *gin.Context) {
	h.transitionPayrollRecord(c, h.payrollService.Reject)
}

func (h *Handlers) transitionPayrollRecord(c *gin.Context, fn func(ctx context.Context, recordID, reviewerID int64) (*entity.PayrollRecord, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid record id"})
		return
	}

	record, err := fn(c.Request.Context(), id, actorID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: record})
}

// ListLogs handles GET /api/logs
func (h *Handlers) ListLogs(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	events, err := h.activityService.List(c.Request.Context(), c.Query("range"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}

// SummarizeLogs handles GET /api/logs/summary
func (h *Handlers) SummarizeLogs(c *gin.Context) {
	summary, err := h.activityService.Summarize(c.Request.Context(), c.Query("range"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}
