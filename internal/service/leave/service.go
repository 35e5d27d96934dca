package leave

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	calendarsvc "github.com/cmlabs-hris/payroll-engine/internal/service/calendar"
	"github.com/google/uuid"
)

// CalendarLoader loads the resolver of one calendar over a date range.
type CalendarLoader interface {
	LoadResolver(ctx context.Context, ref calendar.Ref, start, end time.Time) (*calendarsvc.Resolver, error)
}

// Recomputer refreshes the cached payroll of one employee-month.
type Recomputer interface {
	RecomputeEmployee(ctx context.Context, employeeID string, year int, month time.Month) (payroll.EmployeePayrollSummary, error)
}

type Config struct {
	Policy   LedgerPolicy
	Location *time.Location
}

// maxRefreshMonths bounds the payroll refresh that follows a ledger change.
const maxRefreshMonths = 12

type LeaveServiceImpl struct {
	leave.LeaveApplicationRepository
	leave.SubstituteAssignmentRepository
	leave.ApprovalHierarchyRepository
	employee.EmployeeRepository
	schedule.TeachingSlotRepository

	calendars  CalendarLoader
	tx         database.Transactor
	notifier   notification.Service
	recomputer Recomputer
	config     Config
	logger     *slog.Logger
	now        func() time.Time
}

func NewLeaveService(
	applicationRepo leave.LeaveApplicationRepository,
	assignmentRepo leave.SubstituteAssignmentRepository,
	hierarchyRepo leave.ApprovalHierarchyRepository,
	employeeRepo employee.EmployeeRepository,
	slotRepo schedule.TeachingSlotRepository,
	calendars CalendarLoader,
	tx database.Transactor,
	notifier notification.Service,
	cfg Config,
	logger *slog.Logger,
) *LeaveServiceImpl {
	if cfg.Policy == (LedgerPolicy{}) {
		cfg.Policy = DefaultLedgerPolicy()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaveServiceImpl{
		LeaveApplicationRepository:     applicationRepo,
		SubstituteAssignmentRepository: assignmentRepo,
		ApprovalHierarchyRepository:    hierarchyRepo,
		EmployeeRepository:             employeeRepo,
		TeachingSlotRepository:         slotRepo,
		calendars:                      calendars,
		tx:                             tx,
		notifier:                       notifier,
		config:                         cfg,
		logger:                         logger.With("component", "leave"),
		now:                            time.Now,
	}
}

// WithClock replaces the service clock.
func (s *LeaveServiceImpl) WithClock(now func() time.Time) *LeaveServiceImpl {
	s.now = now
	return s
}

// SetRecomputer registers the payroll refresh run after every ledger change.
func (s *LeaveServiceImpl) SetRecomputer(r Recomputer) {
	s.recomputer = r
}

func (s *LeaveServiceImpl) today() time.Time {
	return calendar.DateOf(s.now().In(s.config.Location))
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, req leave.SubmitRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	applicant, err := s.EmployeeRepository.GetByID(ctx, req.ApplicantID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if applicant.EmploymentStatus != employee.EmploymentStatusActive {
		return leave.ApplicationResponse{}, employee.ErrEmployeeInactive
	}

	start, _ := calendar.ParseDate(req.StartDate)
	end, _ := calendar.ParseDate(req.EndDate)

	resolver, err := s.calendars.LoadResolver(ctx, applicant.CalendarRef(), start, end)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to load calendar: %w", err)
	}
	dates := resolver.WorkingDaysInRange(start, end)
	if len(dates) == 0 {
		return leave.ApplicationResponse{}, leave.ErrNoWorkingDays
	}

	approved, err := s.LeaveApplicationRepository.ListByApplicant(ctx, applicant.ID, leave.StatusApproved)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to list approved leave: %w", err)
	}
	if clash := overlapping(approved, dates); clash != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("%w: %s", leave.ErrOverlappingLeave, clash.Format(calendar.DateLayout))
	}

	now := s.now().UTC()
	app := leave.LeaveApplication{
		ID:            uuid.Must(uuid.NewV7()).String(),
		ApplicantID:   applicant.ID,
		ApplicantType: applicant.ApplicantType,
		StartDate:     start,
		EndDate:       end,
		LeaveType:     leave.LeaveType(req.LeaveType),
		Reason:        strings.TrimSpace(req.Reason),
		LeaveDates:    dates,
		TotalDays:     len(dates),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	assignments, err := s.substituteAssignments(ctx, applicant, app, req.Substitutes, now)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	chain, err := s.resolveChain(ctx, applicant)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	Submit(&app, chain, now)

	quote := NewLedger(s.config.Policy, applicant.ID, applicant.JoinDate, approved).Quote(app)
	app.PaidDays, app.LOPDays = quote.PaidDays, quote.LOPDays

	var created leave.LeaveApplication
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.LeaveApplicationRepository.Create(ctx, app)
		if err != nil {
			return fmt.Errorf("failed to create leave application: %w", err)
		}
		if len(assignments) > 0 {
			if err := s.SubstituteAssignmentRepository.CreateBatch(ctx, assignments); err != nil {
				return fmt.Errorf("failed to create substitute assignments: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	created.SubstituteAssignments = assignments

	s.logger.Info("leave application submitted",
		"application_id", created.ID, "applicant_id", created.ApplicantID,
		"total_days", created.TotalDays, "lop_days", created.LOPDays, "stage", created.Stage)

	s.notifySubmitted(ctx, created)
	if created.Status == leave.StatusApproved {
		s.repriceApproved(ctx, applicant, approved)
		s.refreshPayroll(ctx, applicant, created, approved)
	}

	resp := mapApplicationToResponse(created)
	if created.LOPDays > 0 {
		resp.Warnings = append(resp.Warnings, lopWarning(created))
	}
	resp.Warnings = append(resp.Warnings, repricingWarnings(quote)...)
	return resp, nil
}

// Approve implements leave.LeaveService. The final approval re-checks
// overlap and re-quotes the paid split against the ledger as it stands.
func (s *LeaveServiceImpl) Approve(ctx context.Context, req leave.DecisionRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}
	var expected *leave.Stage
	if req.ExpectedStage != nil {
		st := leave.Stage(*req.ExpectedStage)
		expected = &st
	}

	app, err := s.LeaveApplicationRepository.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	version := app.Version
	now := s.now().UTC()

	if err := Approve(&app, req.ActorID, expected, now); err != nil {
		return leave.ApplicationResponse{}, err
	}

	var (
		applicant employee.Employee
		approved  []leave.LeaveApplication
		quote     Quote
	)
	if app.Status == leave.StatusApproved {
		applicant, err = s.EmployeeRepository.GetByID(ctx, app.ApplicantID)
		if err != nil {
			return leave.ApplicationResponse{}, err
		}
		approved, err = s.LeaveApplicationRepository.ListByApplicant(ctx, app.ApplicantID, leave.StatusApproved)
		if err != nil {
			return leave.ApplicationResponse{}, fmt.Errorf("failed to list approved leave: %w", err)
		}
		if clash := overlapping(approved, app.LeaveDates); clash != nil {
			return leave.ApplicationResponse{}, fmt.Errorf("%w: %s", leave.ErrOverlappingLeave, clash.Format(calendar.DateLayout))
		}
		quote = NewLedger(s.config.Policy, applicant.ID, applicant.JoinDate, approved).Quote(app)
		app.PaidDays, app.LOPDays = quote.PaidDays, quote.LOPDays
	}
	app.UpdatedAt = now

	updated, err := s.LeaveApplicationRepository.UpdateIfVersion(ctx, app, version)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	updated.SubstituteAssignments, err = s.SubstituteAssignmentRepository.ListByApplication(ctx, updated.ID)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to list substitute assignments: %w", err)
	}

	s.logger.Info("leave application approved at stage",
		"application_id", updated.ID, "actor_id", req.ActorID, "stage", updated.Stage, "status", updated.Status)

	s.notifyApproved(ctx, updated, req.ActorID)
	resp := mapApplicationToResponse(updated)
	if updated.Status == leave.StatusApproved {
		s.repriceApproved(ctx, applicant, approved)
		s.refreshPayroll(ctx, applicant, updated, append(approved, updated))
		if updated.LOPDays > 0 {
			resp.Warnings = append(resp.Warnings, lopWarning(updated))
		}
		resp.Warnings = append(resp.Warnings, repricingWarnings(quote)...)
	}
	return resp, nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, req leave.RejectRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	app, err := s.LeaveApplicationRepository.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	version := app.Version
	now := s.now().UTC()

	if err := Reject(&app, req.ActorID, strings.TrimSpace(req.Reason), now); err != nil {
		return leave.ApplicationResponse{}, err
	}
	app.UpdatedAt = now

	updated, err := s.closeApplication(ctx, app, version)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	s.logger.Info("leave application rejected",
		"application_id", updated.ID, "actor_id", req.ActorID, "stage", updated.Stage)

	s.notify(ctx, notification.CreateEventRequest{
		RecipientID: updated.ApplicantID,
		ActorID:     &req.ActorID,
		Type:        notification.TypeLeaveRejected,
		SubjectID:   updated.ID,
		Title:       "Leave application rejected",
		Message:     fmt.Sprintf("Your leave from %s to %s was rejected: %s", formatDate(updated.StartDate), formatDate(updated.EndDate), *updated.RejectionReason),
		Data:        map[string]interface{}{"stage": updated.Stage},
	})
	return mapApplicationToResponse(updated), nil
}

// Cancel implements leave.LeaveService. Cancelling an approved leave
// restores its paid days by replaying the ledger without it.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, req leave.CancelRequest) (leave.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.ApplicationResponse{}, err
	}

	app, err := s.LeaveApplicationRepository.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	version := app.Version
	wasApproved := app.Status == leave.StatusApproved
	pendingStep, hadStep := app.CurrentStep()
	now := s.now().UTC()

	if err := Cancel(&app, req.ActorID, s.today(), now); err != nil {
		return leave.ApplicationResponse{}, err
	}
	app.UpdatedAt = now

	updated, err := s.closeApplication(ctx, app, version)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	s.logger.Info("leave application cancelled",
		"application_id", updated.ID, "applicant_id", updated.ApplicantID, "was_approved", wasApproved)

	var recipients []string
	switch {
	case wasApproved && updated.DecidedBy != nil:
		recipients = []string{*updated.DecidedBy}
	case !wasApproved && hadStep:
		recipients = pendingStep.ApproverIDs
	}
	events := make([]notification.CreateEventRequest, 0, len(recipients))
	for _, id := range recipients {
		events = append(events, notification.CreateEventRequest{
			RecipientID: id,
			ActorID:     &req.ActorID,
			Type:        notification.TypeLeaveCancelled,
			SubjectID:   updated.ID,
			Title:       "Leave application cancelled",
			Message:     fmt.Sprintf("Leave from %s to %s was cancelled by the applicant", formatDate(updated.StartDate), formatDate(updated.EndDate)),
		})
	}
	s.notify(ctx, events...)

	if wasApproved {
		applicant, err := s.EmployeeRepository.GetByID(ctx, updated.ApplicantID)
		if err != nil {
			s.logger.Warn("skipping payroll refresh after cancellation", "application_id", updated.ID, "error", err)
		} else {
			approved, err := s.LeaveApplicationRepository.ListByApplicant(ctx, updated.ApplicantID, leave.StatusApproved)
			if err != nil {
				s.logger.Warn("skipping payroll refresh after cancellation", "application_id", updated.ID, "error", err)
			} else {
				s.repriceApproved(ctx, applicant, approved)
				s.refreshPayroll(ctx, applicant, updated, approved)
			}
		}
	}
	return mapApplicationToResponse(updated), nil
}

// closeApplication persists a terminal transition and releases the
// application's substitutes atomically.
func (s *LeaveServiceImpl) closeApplication(ctx context.Context, app leave.LeaveApplication, version int) (leave.LeaveApplication, error) {
	var updated leave.LeaveApplication
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.LeaveApplicationRepository.UpdateIfVersion(ctx, app, version)
		if err != nil {
			return err
		}
		if err := s.SubstituteAssignmentRepository.ReleaseByApplication(ctx, app.ID); err != nil {
			return fmt.Errorf("failed to release substitute assignments: %w", err)
		}
		updated.SubstituteAssignments, err = s.SubstituteAssignmentRepository.ListByApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("failed to list substitute assignments: %w", err)
		}
		return nil
	})
	return updated, err
}

// GetApplication implements leave.LeaveService.
func (s *LeaveServiceImpl) GetApplication(ctx context.Context, id string) (leave.ApplicationResponse, error) {
	app, err := s.LeaveApplicationRepository.GetByID(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	app.SubstituteAssignments, err = s.SubstituteAssignmentRepository.ListByApplication(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to list substitute assignments: %w", err)
	}
	return mapApplicationToResponse(app), nil
}

// GetBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, req leave.BalanceRequest) (leave.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}
	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	balance, err := s.MonthBalance(ctx, emp, req.Year, time.Month(req.Month))
	if err != nil {
		return leave.BalanceResponse{}, err
	}
	return mapBalanceToResponse(balance), nil
}

// MonthBalance derives emp's ledger row for one month from the approved
// applications on record.
func (s *LeaveServiceImpl) MonthBalance(ctx context.Context, emp employee.Employee, year int, month time.Month) (leave.LeaveBalance, error) {
	approved, err := s.LeaveApplicationRepository.ListByApplicant(ctx, emp.ID, leave.StatusApproved)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to list approved leave: %w", err)
	}
	return NewLedger(s.config.Policy, emp.ID, emp.JoinDate, approved).Balance(year, month), nil
}

func (s *LeaveServiceImpl) resolveChain(ctx context.Context, applicant employee.Employee) ([]leave.ChainStep, error) {
	edges, err := s.ApprovalHierarchyRepository.ListEdges(ctx, applicant.PositionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval hierarchy: %w", err)
	}

	holders := map[string][]string{}
	for _, e := range edges {
		if e.Stage == leave.StageManagerPending || e.ApproverPositionID == nil {
			continue
		}
		pos := *e.ApproverPositionID
		if _, ok := holders[pos]; ok {
			continue
		}
		emps, err := s.EmployeeRepository.ListByPosition(ctx, pos)
		if err != nil {
			return nil, fmt.Errorf("failed to list approvers for position %s: %w", pos, err)
		}
		ids := make([]string, 0, len(emps))
		for _, emp := range emps {
			ids = append(ids, emp.ID)
		}
		holders[pos] = ids
	}

	chain, skipped := ResolveChain(applicant, edges, holders)
	for _, sk := range skipped {
		s.logger.Warn("approval stage skipped",
			"applicant_id", applicant.ID, "position_id", applicant.PositionID, "stage", sk.Stage, "reason", sk.Reason)
	}
	return chain, nil
}

type slotKey struct {
	slotID string
	date   time.Time
}

// substituteAssignments matches the submitted substitutes against the
// officer's teaching slots on the leave dates. Every occurrence must be
// covered exactly once and nothing else may be submitted.
func (s *LeaveServiceImpl) substituteAssignments(ctx context.Context, applicant employee.Employee, app leave.LeaveApplication, inputs []leave.SubstituteInput, now time.Time) ([]leave.SubstituteAssignment, error) {
	if !applicant.IsOfficer() {
		if len(inputs) > 0 {
			return nil, fmt.Errorf("%w: only officers have teaching slots", leave.ErrInvalidSubstitute)
		}
		return nil, nil
	}

	slots, err := s.TeachingSlotRepository.ListByOfficer(ctx, applicant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teaching slots: %w", err)
	}

	given := make(map[slotKey]leave.SubstituteInput, len(inputs))
	for _, in := range inputs {
		d, _ := calendar.ParseDate(in.Date)
		k := slotKey{slotID: in.SlotID, date: d}
		if _, dup := given[k]; dup {
			return nil, fmt.Errorf("%w: slot %s on %s is assigned more than once", leave.ErrInvalidSubstitute, in.SlotID, in.Date)
		}
		given[k] = in
	}

	var (
		missing     []string
		assignments []leave.SubstituteAssignment
		checked     = map[string]bool{}
	)
	for _, occ := range schedule.OccurrencesOn(slots, app.LeaveDates) {
		k := slotKey{slotID: occ.Slot.ID, date: occ.Date}
		in, ok := given[k]
		if !ok {
			missing = append(missing, fmt.Sprintf("%s on %s", occ.Slot.ID, formatDate(occ.Date)))
			continue
		}
		delete(given, k)

		if !checked[in.SubstituteOfficerID] {
			if err := s.checkSubstitute(ctx, applicant, in.SubstituteOfficerID); err != nil {
				return nil, err
			}
			checked[in.SubstituteOfficerID] = true
		}
		assignments = append(assignments, leave.SubstituteAssignment{
			ID:                  uuid.Must(uuid.NewV7()).String(),
			ApplicationID:       app.ID,
			SlotID:              occ.Slot.ID,
			OriginalOfficerID:   applicant.ID,
			SubstituteOfficerID: in.SubstituteOfficerID,
			Date:                occ.Date,
			Hours:               occ.Slot.Hours,
			Status:              leave.AssignmentStatusActive,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unassigned %s", leave.ErrUnassignedSubstituteSlot, strings.Join(missing, ", "))
	}
	if len(given) > 0 {
		extra := make([]string, 0, len(given))
		for k := range given {
			extra = append(extra, fmt.Sprintf("%s on %s", k.slotID, formatDate(k.date)))
		}
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: not scheduled %s", leave.ErrInvalidSubstitute, strings.Join(extra, ", "))
	}
	return assignments, nil
}

func (s *LeaveServiceImpl) checkSubstitute(ctx context.Context, applicant employee.Employee, substituteID string) error {
	if substituteID == applicant.ID {
		return fmt.Errorf("%w: applicant cannot substitute for themselves", leave.ErrInvalidSubstitute)
	}
	sub, err := s.EmployeeRepository.GetByID(ctx, substituteID)
	if err != nil {
		return fmt.Errorf("%w: substitute %s: %v", leave.ErrInvalidSubstitute, substituteID, err)
	}
	if !sub.IsOfficer() || sub.EmploymentStatus != employee.EmploymentStatusActive {
		return fmt.Errorf("%w: substitute %s is not an active officer", leave.ErrInvalidSubstitute, substituteID)
	}
	return nil
}

// repriceApproved rewrites the stored split of every approved application
// whose days the ledger now allocates differently. Approving or cancelling
// leave in one month changes the carry-forward of the months after it, so
// an application priced earlier can gain or lose paid days. Applicants are
// told when days move to loss of pay.
func (s *LeaveServiceImpl) repriceApproved(ctx context.Context, applicant employee.Employee, approved []leave.LeaveApplication) {
	latest, err := s.LeaveApplicationRepository.ListByApplicant(ctx, applicant.ID, leave.StatusApproved)
	if err != nil {
		s.logger.Warn("skipping leave repricing", "employee_id", applicant.ID, "error", err)
		latest = approved
	}
	splits := NewLedger(s.config.Policy, applicant.ID, applicant.JoinDate, latest).Splits()
	now := s.now().UTC()

	var events []notification.CreateEventRequest
	for _, app := range latest {
		sp := splits[app.ID]
		if sp.PaidDays == app.PaidDays && sp.LOPDays == app.LOPDays {
			continue
		}
		previousLOP := app.LOPDays
		version := app.Version
		app.PaidDays, app.LOPDays = sp.PaidDays, sp.LOPDays
		app.UpdatedAt = now

		updated, err := s.LeaveApplicationRepository.UpdateIfVersion(ctx, app, version)
		if err != nil {
			s.logger.Warn("failed to reprice approved leave", "application_id", app.ID, "error", err)
			continue
		}
		s.logger.Info("approved leave repriced",
			"application_id", updated.ID, "employee_id", updated.ApplicantID,
			"paid_days", updated.PaidDays, "lop_days", updated.LOPDays, "previous_lop_days", previousLOP)
		if updated.LOPDays > previousLOP {
			events = append(events, lopEvent(updated))
		}
	}
	s.notify(ctx, events...)
}

// refreshPayroll recomputes every cached month the change can reach: the
// leave's own months plus the later months its carry-forward feeds.
func (s *LeaveServiceImpl) refreshPayroll(ctx context.Context, applicant employee.Employee, changed leave.LeaveApplication, approved []leave.LeaveApplication) {
	if s.recomputer == nil {
		return
	}
	from := calendar.MonthIndex(changed.StartDate.Year(), changed.StartDate.Month())
	to := calendar.MonthIndex(changed.EndDate.Year(), changed.EndDate.Month())
	today := s.today()
	to = max(to, calendar.MonthIndex(today.Year(), today.Month()))
	for _, app := range approved {
		for _, d := range app.LeaveDates {
			to = max(to, calendar.MonthIndex(d.Year(), d.Month()))
		}
	}
	to = min(to, from+maxRefreshMonths-1)

	for idx := from; idx <= to; idx++ {
		year, month := idx/12, time.Month(idx%12+1)
		if !applicant.JoinedBy(year, month) {
			continue
		}
		if _, err := s.recomputer.RecomputeEmployee(ctx, applicant.ID, year, month); err != nil {
			s.logger.Warn("payroll refresh failed",
				"employee_id", applicant.ID, "year", year, "month", int(month), "application_id", changed.ID, "error", err)
		}
	}
}

func (s *LeaveServiceImpl) notify(ctx context.Context, events ...notification.CreateEventRequest) {
	if s.notifier == nil || len(events) == 0 {
		return
	}
	s.notifier.QueueMany(ctx, events)
}

func (s *LeaveServiceImpl) notifySubmitted(ctx context.Context, app leave.LeaveApplication) {
	var events []notification.CreateEventRequest
	if app.Status == leave.StatusApproved {
		events = append(events, approvedEvent(app, nil))
	} else if step, ok := app.CurrentStep(); ok {
		events = append(events, awaitingEvents(app, step, &app.ApplicantID)...)
	}
	if app.LOPDays > 0 {
		events = append(events, lopEvent(app))
	}
	s.notify(ctx, events...)
}

func (s *LeaveServiceImpl) notifyApproved(ctx context.Context, app leave.LeaveApplication, actorID string) {
	if app.Status == leave.StatusApproved {
		events := []notification.CreateEventRequest{approvedEvent(app, &actorID)}
		if app.LOPDays > 0 {
			events = append(events, lopEvent(app))
		}
		s.notify(ctx, events...)
		return
	}

	events := []notification.CreateEventRequest{{
		RecipientID: app.ApplicantID,
		ActorID:     &actorID,
		Type:        notification.TypeLeaveStageApproved,
		SubjectID:   app.ID,
		Title:       "Leave application advanced",
		Message:     fmt.Sprintf("Your leave application moved to %s", app.Stage),
		Data:        map[string]interface{}{"stage": app.Stage},
	}}
	if step, ok := app.CurrentStep(); ok {
		events = append(events, awaitingEvents(app, step, &actorID)...)
	}
	s.notify(ctx, events...)
}

func awaitingEvents(app leave.LeaveApplication, step leave.ChainStep, actorID *string) []notification.CreateEventRequest {
	events := make([]notification.CreateEventRequest, 0, len(step.ApproverIDs))
	for _, id := range step.ApproverIDs {
		events = append(events, notification.CreateEventRequest{
			RecipientID: id,
			ActorID:     actorID,
			Type:        notification.TypeLeaveSubmitted,
			SubjectID:   app.ID,
			Title:       "Leave application awaiting approval",
			Message:     fmt.Sprintf("Leave from %s to %s (%d days) awaits your approval", formatDate(app.StartDate), formatDate(app.EndDate), app.TotalDays),
			Data:        map[string]interface{}{"stage": app.Stage, "applicant_id": app.ApplicantID},
		})
	}
	return events
}

func approvedEvent(app leave.LeaveApplication, actorID *string) notification.CreateEventRequest {
	return notification.CreateEventRequest{
		RecipientID: app.ApplicantID,
		ActorID:     actorID,
		Type:        notification.TypeLeaveApproved,
		SubjectID:   app.ID,
		Title:       "Leave application approved",
		Message:     fmt.Sprintf("Your leave from %s to %s was approved", formatDate(app.StartDate), formatDate(app.EndDate)),
		Data:        map[string]interface{}{"paid_days": app.PaidDays, "lop_days": app.LOPDays},
	}
}

func lopEvent(app leave.LeaveApplication) notification.CreateEventRequest {
	return notification.CreateEventRequest{
		RecipientID: app.ApplicantID,
		Type:        notification.TypeLOPDetermined,
		SubjectID:   app.ID,
		Title:       "Loss of pay determined",
		Message:     lopWarning(app),
		Data:        map[string]interface{}{"paid_days": app.PaidDays, "lop_days": app.LOPDays},
	}
}

// repricingWarnings describes the approved applications that would lose paid
// days if the quoted application were approved.
func repricingWarnings(q Quote) []string {
	var warnings []string
	for _, r := range q.Repriced {
		if r.After.LOPDays <= r.Before.LOPDays {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("approved application %s moves %d paid days to loss of pay",
			r.ApplicationID, r.After.LOPDays-r.Before.LOPDays))
	}
	return warnings
}

func lopWarning(app leave.LeaveApplication) string {
	return fmt.Sprintf("%d of %d leave days exceed the available balance and are loss of pay", app.LOPDays, app.TotalDays)
}

// overlapping returns the first of dates already taken by apps, or nil.
func overlapping(apps []leave.LeaveApplication, dates []time.Time) *time.Time {
	taken := map[time.Time]bool{}
	for _, app := range apps {
		for _, d := range app.LeaveDates {
			taken[calendar.DateOf(d)] = true
		}
	}
	for _, d := range dates {
		if taken[calendar.DateOf(d)] {
			clash := d
			return &clash
		}
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format(calendar.DateLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapApplicationToResponse(app leave.LeaveApplication) leave.ApplicationResponse {
	dates := make([]string, len(app.LeaveDates))
	for i, d := range app.LeaveDates {
		dates[i] = formatDate(d)
	}
	assignments := make([]leave.SubstituteAssignmentResponse, len(app.SubstituteAssignments))
	for i, a := range app.SubstituteAssignments {
		assignments[i] = leave.SubstituteAssignmentResponse{
			ID:                  a.ID,
			SlotID:              a.SlotID,
			OriginalOfficerID:   a.OriginalOfficerID,
			SubstituteOfficerID: a.SubstituteOfficerID,
			Date:                formatDate(a.Date),
			Hours:               a.Hours.StringFixed(2),
			Status:              string(a.Status),
		}
	}
	chain := app.Chain
	if chain == nil {
		chain = []leave.ChainStep{}
	}
	approvals := app.Approvals
	if approvals == nil {
		approvals = []leave.Approval{}
	}
	return leave.ApplicationResponse{
		ID:                    app.ID,
		ApplicantID:           app.ApplicantID,
		ApplicantType:         string(app.ApplicantType),
		StartDate:             formatDate(app.StartDate),
		EndDate:               formatDate(app.EndDate),
		LeaveType:             string(app.LeaveType),
		Reason:                app.Reason,
		LeaveDates:            dates,
		TotalDays:             app.TotalDays,
		PaidDays:              app.PaidDays,
		LOPDays:               app.LOPDays,
		Status:                string(app.Status),
		ApprovalStage:         string(app.Stage),
		Chain:                 chain,
		Approvals:             approvals,
		AppliedAt:             app.AppliedAt.UTC().Format(time.RFC3339),
		DecidedBy:             app.DecidedBy,
		DecidedAt:             formatTimePtr(app.DecidedAt),
		RejectionReason:       app.RejectionReason,
		CancelledBy:           app.CancelledBy,
		CancelledAt:           formatTimePtr(app.CancelledAt),
		Version:               app.Version,
		SubstituteAssignments: assignments,
	}
}

func mapBalanceToResponse(b leave.LeaveBalance) leave.BalanceResponse {
	used := make(map[string]int, len(b.LeaveUsed))
	for t, n := range b.LeaveUsed {
		used[string(t)] = n
	}
	allocations := make([]leave.AllocationResponse, len(b.Allocations))
	for i, a := range b.Allocations {
		allocations[i] = leave.AllocationResponse{
			Date:          formatDate(a.Date),
			ApplicationID: a.ApplicationID,
			LeaveType:     string(a.LeaveType),
			Paid:          a.Paid,
		}
	}
	return leave.BalanceResponse{
		EmployeeID:       b.EmployeeID,
		Year:             b.Year,
		Month:            int(b.Month),
		MonthlyCredit:    b.MonthlyCredit,
		CarriedForward:   b.CarriedForward,
		Forfeited:        b.Forfeited,
		LeaveUsed:        used,
		PaidDays:         b.PaidDays,
		LOPDays:          b.LOPDays,
		BalanceRemaining: b.BalanceRemaining,
		Allocations:      allocations,
	}
}

var _ leave.LeaveService = (*LeaveServiceImpl)(nil)
