package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/master/institution"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/payroll-engine/internal/service/calendar"
	leaveService "github.com/cmlabs-hris/payroll-engine/internal/service/leave"
	notificationService "github.com/cmlabs-hris/payroll-engine/internal/service/notification"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
)

type repositories struct {
	employees    employee.EmployeeRepository
	institutions institution.InstitutionRepository
	slots        schedule.TeachingSlotRepository
	calendar     calendar.Repository
	attendance   attendance.AttendanceRepository
	applications leave.LeaveApplicationRepository
	assignments  leave.SubstituteAssignmentRepository
	hierarchy    leave.ApprovalHierarchyRepository
	overtime     payroll.OvertimeRepository
	summaries    payroll.SummaryRepository
	events       notification.Repository
	tx           database.Transactor
	close        func()
}

func postgresRepositories(db *database.DB) repositories {
	return repositories{
		employees:    postgresql.NewEmployeeRepository(db),
		institutions: postgresql.NewInstitutionRepository(db),
		slots:        postgresql.NewTeachingSlotRepository(db),
		calendar:     postgresql.NewCalendarRepository(db),
		attendance:   postgresql.NewAttendanceRepository(db),
		applications: postgresql.NewLeaveApplicationRepository(db),
		assignments:  postgresql.NewSubstituteAssignmentRepository(db),
		hierarchy:    postgresql.NewApprovalHierarchyRepository(db),
		overtime:     postgresql.NewOvertimeRepository(db),
		summaries:    postgresql.NewSummaryRepository(db),
		events:       postgresql.NewNotificationRepository(db),
		tx:           postgresql.NewTransactor(db),
		close:        db.Close,
	}
}

func memoryRepositories(store *memory.Store) repositories {
	return repositories{
		employees:    store.Employees(),
		institutions: store.Institutions(),
		slots:        store.TeachingSlots(),
		calendar:     store.Calendar(),
		attendance:   store.Attendance(),
		applications: store.Applications(),
		assignments:  store.Assignments(),
		hierarchy:    store.Hierarchy(),
		overtime:     store.Overtime(),
		summaries:    store.Summaries(),
		events:       store.Notifications(),
		tx:           store,
		close:        func() {},
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := appHTTP.NewLogger("payroll-engine", cfg.App.Env, cfg.SlogLevel(), os.Stdout)
	slog.SetDefault(logger)

	var repos repositories
	switch cfg.Database.Driver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		repos = memoryRepositories(memory.NewStore())
	default:
		db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL(), database.PoolConfig{
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		repos = postgresRepositories(db)
	}
	defer repos.close()

	location := cfg.Location()

	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(repos.events, hub, logger, notificationService.Config{})
	defer notifSvc.Stop()

	calendarSvc := calendarService.NewCalendarService(repos.calendar)

	leaveSvc := leaveService.NewLeaveService(
		repos.applications,
		repos.assignments,
		repos.hierarchy,
		repos.employees,
		repos.slots,
		calendarSvc,
		repos.tx,
		notifSvc,
		leaveService.Config{
			Policy: leaveService.LedgerPolicy{
				MonthlyAccrual:  cfg.Leave.MonthlyAccrual,
				CarryForwardCap: cfg.Leave.CarryForwardCap,
				MonthlyCap:      cfg.Leave.MonthlyCap,
			},
			Location: location,
		},
		logger,
	)

	attendanceSvc := attendanceService.NewAttendanceService(
		repos.attendance,
		repos.employees,
		repos.institutions,
		calendarSvc,
		leaveSvc,
		attendanceService.Config{
			DefaultLocation:    location,
			NormalWorkingHours: cfg.Attendance.NormalWorkingHours,
		},
		logger,
	)

	payrollSvc := payrollService.NewPayrollService(
		repos.employees,
		repos.overtime,
		repos.summaries,
		attendanceSvc,
		leaveSvc,
		notifSvc,
		payrollService.Config{
			StandardDaysPerMonth: cfg.Payroll.StandardDaysPerMonth,
			Concurrency:          cfg.Payroll.RecomputeConcurrency,
		},
		logger,
	)
	leaveSvc.SetRecomputer(payrollSvc)

	scheduler := cron.NewScheduler(logger)
	cron.NewPayrollJobs(payrollSvc, cfg.Payroll.RecomputeInterval, logger).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		logger,
		JWTService,
		appHTTP.Handlers{
			Calendar:   appHTTP.NewCalendarHandler(calendarSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Leave:      appHTTP.NewLeaveHandler(leaveSvc),
			Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
			Events:     appHTTP.NewEventHandler(notifSvc, JWTService),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "storage", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
