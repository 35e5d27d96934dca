package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/master/institution"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/payroll-engine/internal/service/calendar"
	leaveService "github.com/cmlabs-hris/payroll-engine/internal/service/leave"
	notificationService "github.com/cmlabs-hris/payroll-engine/internal/service/notification"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	router *chi.Mux
	jwt    jwt.Service
	store  *memory.Store
}

func strPtr(s string) *string { return &s }

func f64(v float64) *float64 { return &v }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	inst := institution.Institution{
		ID: "inst-1", Name: "North Campus", Latitude: f64(-6.2), Longitude: f64(106.816666),
		RadiusMeters: 100, GPSEnabled: true,
	}
	store.PutInstitution(inst)

	joined := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.PutEmployee(employee.Employee{
		ID: "mgr-1", FullName: "Manager", ApplicantType: employee.ApplicantTypeEmployee, PositionID: "pos-lead",
		JoinDate: joined, MonthlySalary: decimal.NewFromInt(60000), EmploymentStatus: employee.EmploymentStatusActive,
	})
	store.PutEmployee(employee.Employee{
		ID: "emp-1", FullName: "Staff", ApplicantType: employee.ApplicantTypeEmployee, PositionID: "pos-staff",
		ManagerID: strPtr("mgr-1"), JoinDate: joined, MonthlySalary: decimal.NewFromInt(30000),
		EmploymentStatus: employee.EmploymentStatusActive,
	})
	store.PutEmployee(employee.Employee{
		ID: "emp-2", FullName: "Other", ApplicantType: employee.ApplicantTypeEmployee, PositionID: "pos-staff",
		ManagerID: strPtr("mgr-1"), JoinDate: joined, MonthlySalary: decimal.NewFromInt(30000),
		EmploymentStatus: employee.EmploymentStatusActive,
	})
	store.PutEmployee(employee.Employee{
		ID: "off-1", FullName: "Officer", ApplicantType: employee.ApplicantTypeOfficer, InstitutionID: strPtr("inst-1"),
		PositionID: "pos-lecturer", JoinDate: joined, MonthlySalary: decimal.NewFromInt(30000),
		EmploymentStatus: employee.EmploymentStatusActive,
	})
	store.PutApprovalEdge(leave.ApprovalHierarchyEdge{ID: "edge-1", Stage: leave.StageManagerPending, Sequence: 1})

	notifSvc := notificationService.NewNotificationService(store.Notifications(), sse.NewHub(), logger, notificationService.Config{})
	t.Cleanup(notifSvc.Stop)

	calendarSvc := calendarService.NewCalendarService(store.Calendar())
	leaveSvc := leaveService.NewLeaveService(
		store.Applications(), store.Assignments(), store.Hierarchy(), store.Employees(), store.TeachingSlots(),
		calendarSvc, store, notifSvc, leaveService.Config{}, logger,
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		store.Attendance(), store.Employees(), store.Institutions(), calendarSvc, leaveSvc, attendanceService.Config{}, logger,
	)
	payrollSvc := payrollService.NewPayrollService(
		store.Employees(), store.Overtime(), store.Summaries(), attendanceSvc, leaveSvc, notifSvc, payrollService.Config{}, logger,
	)
	leaveSvc.SetRecomputer(payrollSvc)

	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour)
	router := NewRouter(RouterConfig{LogLevel: slog.LevelError}, logger, jwtSvc, Handlers{
		Calendar:   NewCalendarHandler(calendarSvc),
		Attendance: NewAttendanceHandler(attendanceSvc),
		Leave:      NewLeaveHandler(leaveSvc),
		Payroll:    NewPayrollHandler(payrollSvc),
		Events:     NewEventHandler(notifSvc, jwtSvc),
	})

	return &testServer{router: router, jwt: jwtSvc, store: store}
}

func (s *testServer) do(t *testing.T, method, path, employeeID string, role jwt.Role, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if employeeID != "" {
		token, _, err := s.jwt.GenerateAccessToken(employeeID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) (T, response.Response) {
	t.Helper()
	var envelope struct {
		response.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	var data T
	if len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, &data))
	}
	return data, envelope.Response
}

// nextMonday returns the Monday at least a week after now.
func nextMonday(now time.Time) time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/leave/balance", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/leave/balance", "emp-1", jwt.RoleEmployee, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CalendarEntriesAreAdminOnly(t *testing.T) {
	srv := newTestServer(t)
	entry := map[string]interface{}{"scope": "company", "date": "2025-03-05", "type": "holiday"}

	rec := srv.do(t, http.MethodPut, "/api/v1/calendar/entries", "emp-1", jwt.RoleEmployee, entry)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/v1/calendar/entries", "mgr-1", jwt.RoleAdmin, entry)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/calendar/resolve?scope=company&date=2025-03-05", "emp-1", jwt.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resolved, _ := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "holiday", resolved["type"])
}

func TestRouter_ValidationErrorsAre422(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/calendar/resolve?scope=planet&date=2025-03-05", "emp-1", jwt.RoleEmployee, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	_, envelope := decode[map[string]interface{}](t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Details, "scope")
}

func TestRouter_CheckInOutsideFence(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", "off-1", jwt.RoleEmployee,
		map[string]interface{}{"latitude": -6.3, "longitude": 106.816666})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, envelope := decode[map[string]interface{}](t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "OUTSIDE_ALLOWED_RADIUS", envelope.Error.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", "off-1", jwt.RoleEmployee,
		map[string]interface{}{"latitude": -6.2, "longitude": 106.816666})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", "off-1", jwt.RoleEmployee,
		map[string]interface{}{"latitude": -6.2, "longitude": 106.816666})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_LeaveApprovalFlow(t *testing.T) {
	srv := newTestServer(t)
	start := nextMonday(time.Now())

	rec := srv.do(t, http.MethodPost, "/api/v1/leave/applications", "emp-1", jwt.RoleEmployee, map[string]interface{}{
		"start_date": start.Format("2006-01-02"),
		"end_date":   start.AddDate(0, 0, 1).Format("2006-01-02"),
		"leave_type": "casual",
		"reason":     "family event",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted, _ := decode[leave.ApplicationResponse](t, rec)
	assert.Equal(t, "pending", submitted.Status)
	assert.Equal(t, "manager_pending", submitted.ApprovalStage)
	assert.Equal(t, 2, submitted.TotalDays)

	path := "/api/v1/leave/applications/" + submitted.ID

	rec = srv.do(t, http.MethodPost, path+"/approve", "emp-2", jwt.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, path, "emp-2", jwt.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, path+"/approve", "mgr-1", jwt.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved, _ := decode[leave.ApplicationResponse](t, rec)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, 2, approved.Version)

	rec = srv.do(t, http.MethodPost, path+"/approve", "mgr-1", jwt.RoleEmployee, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodGet, path, "emp-1", jwt.RoleEmployee, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, path+"/cancel", "mgr-1", jwt.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, path+"/cancel", "emp-1", jwt.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled, _ := decode[leave.ApplicationResponse](t, rec)
	assert.Equal(t, "cancelled", cancelled.Status)
}

func TestRouter_PayrollAccess(t *testing.T) {
	srv := newTestServer(t)
	now := time.Now().UTC()
	period := map[string]interface{}{"year": now.Year(), "month": int(now.Month())}

	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/employees/emp-2", "emp-1", jwt.RoleEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/payroll/employees/emp-1/recompute", "emp-1", jwt.RoleEmployee, period)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/payroll/employees/emp-1/recompute", "mgr-1", jwt.RoleAdmin, period)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/payroll/employees/emp-1", "emp-1", jwt.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary, _ := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "emp-1", summary["employee_id"])
	assert.Equal(t, "30000.00", summary["monthly_salary"])

	rec = srv.do(t, http.MethodPost, "/api/v1/payroll/recompute", "mgr-1", jwt.RoleAdmin, map[string]interface{}{"year": 2025, "month": 13})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_SSETokenRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/events/token", "emp-1", jwt.RoleEmployee, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token, _ := decode[SSETokenResponse](t, rec)
	assert.Equal(t, 300, token.ExpiresIn)

	employeeID, err := srv.jwt.ValidateSSEToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", employeeID)

	rec = srv.do(t, http.MethodGet, "/api/v1/events/stream?token=bogus", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
