package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/geo"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	var vErrs validator.ValidationErrors
	vErrs.Add("month", "month must be between 1 and 12")

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "validation", err: vErrs.Err(), wantCode: http.StatusUnprocessableEntity, wantErr: "VALIDATION_ERROR"},
		{name: "employee not found", err: employee.ErrEmployeeNotFound, wantCode: http.StatusNotFound, wantErr: "NOT_FOUND"},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", leave.ErrApplicationNotFound), wantCode: http.StatusNotFound, wantErr: "NOT_FOUND"},
		{name: "outside fence", err: geo.ErrOutsideAllowedRadius, wantCode: http.StatusBadRequest, wantErr: "OUTSIDE_ALLOWED_RADIUS"},
		{name: "gps not configured", err: geo.ErrGPSNotConfigured, wantCode: http.StatusBadRequest, wantErr: "GPS_NOT_CONFIGURED"},
		{name: "already checked in", err: attendance.ErrAlreadyCheckedIn, wantCode: http.StatusConflict, wantErr: "CONFLICT"},
		{name: "inactive", err: employee.ErrEmployeeInactive, wantCode: http.StatusForbidden, wantErr: "FORBIDDEN"},
		{name: "overlap", err: leave.ErrOverlappingLeave, wantCode: http.StatusUnprocessableEntity, wantErr: "OVERLAPPING_LEAVE"},
		{name: "not approver", err: leave.ErrNotApprover, wantCode: http.StatusForbidden, wantErr: "FORBIDDEN"},
		{name: "lost update", err: leave.ErrConcurrentModification, wantCode: http.StatusConflict, wantErr: "CONFLICT"},
		{name: "not joined", err: payroll.ErrEmployeeNotJoined, wantCode: http.StatusUnprocessableEntity, wantErr: "NOT_JOINED"},
		{name: "unknown", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantErr: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantErr, body.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	var vErrs validator.ValidationErrors
	vErrs.Add("start_date", "start_date must be in YYYY-MM-DD format")

	rec := httptest.NewRecorder()
	HandleError(rec, vErrs.Err())

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "start_date must be in YYYY-MM-DD format", body.Error.Details["start_date"])
}
