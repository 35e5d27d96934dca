package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(setup.DB)

	id := uuid.NewString()
	require.NoError(t, setup.createEmployee(ctx, id, "2024-01-15"))

	emp, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, date("2024-01-15"), calendar.DateOf(emp.JoinDate))
	assert.True(t, emp.MonthlySalary.Equal(decimal.NewFromInt(30000)))
	assert.Nil(t, emp.NormalWorkingHours)
	assert.Equal(t, employee.EmploymentStatusActive, emp.EmploymentStatus)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestLeaveApplicationRepository_UpdateIfVersion(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveApplicationRepository(setup.DB)

	applicant := uuid.NewString()
	require.NoError(t, setup.createEmployee(ctx, applicant, "2024-01-15"))

	managerPos := "pos-manager"
	created, err := repo.Create(ctx, leave.LeaveApplication{
		ApplicantID:   applicant,
		ApplicantType: employee.ApplicantTypeEmployee,
		StartDate:     date("2025-04-07"),
		EndDate:       date("2025-04-08"),
		LeaveType:     leave.LeaveTypeCasual,
		Reason:        "family",
		LeaveDates:    []time.Time{date("2025-04-07"), date("2025-04-08")},
		TotalDays:     2,
		PaidDays:      2,
		Status:        leave.StatusPending,
		Stage:         leave.StageManagerPending,
		Chain: []leave.ChainStep{
			{Stage: leave.StageManagerPending, ApproverPositionID: &managerPos, ApproverIDs: []string{"mgr-1"}},
		},
		AppliedAt: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, []time.Time{date("2025-04-07"), date("2025-04-08")}, created.LeaveDates)
	require.Len(t, created.Chain, 1)
	assert.Equal(t, []string{"mgr-1"}, created.Chain[0].ApproverIDs)

	approved := created
	approved.Status = leave.StatusApproved
	approved.Stage = leave.StageCompleted

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpdateIfVersion(ctx, approved, created.Version)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, leave.ErrConcurrentModification):
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 3, conflicts)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, leave.StatusApproved, stored.Status)

	list, err := repo.ListByApplicant(ctx, applicant, leave.StatusApproved)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = repo.ListByApplicant(ctx, applicant, leave.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, list)

	missing := approved
	missing.ID = uuid.NewString()
	_, err = repo.UpdateIfVersion(ctx, missing, 1)
	assert.ErrorIs(t, err, leave.ErrApplicationNotFound)
}

func TestAttendanceRepository_CheckInCheckOut(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	empID := uuid.NewString()
	require.NoError(t, setup.createEmployee(ctx, empID, "2024-01-15"))

	in := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	rec, err := repo.UpsertCheckIn(ctx, attendance.AttendanceRecord{EmployeeID: empID, Date: date("2025-03-03"), CheckIn: &in})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedIn, rec.Status)

	_, err = repo.UpsertCheckIn(ctx, attendance.AttendanceRecord{EmployeeID: empID, Date: date("2025-03-03"), CheckIn: &in})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	out := in.Add(8 * time.Hour)
	worked, overtime := 480, 0
	rec.CheckOut, rec.WorkedMinutes, rec.OvertimeMinutes = &out, &worked, &overtime
	done, err := repo.CompleteCheckOut(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckedOut, done.Status)
	require.NotNil(t, done.WorkedMinutes)
	assert.Equal(t, 480, *done.WorkedMinutes)

	_, err = repo.CompleteCheckOut(ctx, rec)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	found, err := repo.GetByEmployeeAndDate(ctx, empID, date("2025-03-04"))
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSummaryRepository_UpsertIsLastWriterWins(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewSummaryRepository(setup.DB)

	empID := uuid.NewString()
	require.NoError(t, setup.createEmployee(ctx, empID, "2024-01-15"))

	_, err := repo.Get(ctx, empID, 2025, time.April)
	assert.ErrorIs(t, err, payroll.ErrSummaryNotFound)

	summary := payroll.EmployeePayrollSummary{
		EmployeeID:   empID,
		Year:         2025,
		Month:        time.April,
		DaysInMonth:  30,
		PerDaySalary: decimal.NewFromInt(1000),
		NetPay:       decimal.NewFromInt(27000),
	}
	_, err = repo.Upsert(ctx, summary)
	require.NoError(t, err)

	summary.NetPay = decimal.NewFromInt(27500)
	summary.Warnings = []string{"ledger reports 1 LOP day"}
	_, err = repo.Upsert(ctx, summary)
	require.NoError(t, err)

	got, err := repo.Get(ctx, empID, 2025, time.April)
	require.NoError(t, err)
	assert.Equal(t, time.April, got.Month)
	assert.True(t, got.NetPay.Equal(decimal.NewFromInt(27500)))
	assert.Equal(t, []string{"ledger reports 1 LOP day"}, got.Warnings)
}
