package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	bookingModel "github.com/edproton/xceltutors-next/internal/domains/booking/model"
	bookingRepo "github.com/edproton/xceltutors-next/internal/domains/booking/repository"
	"github.com/edproton/xceltutors-next/internal/domains/recurring/model"
	"github.com/edproton/xceltutors-next/internal/domains/recurring/repository"
	userRepo "github.com/edproton/xceltutors-next/internal/domains/user/repository"
	"github.com/edproton/xceltutors-next/pkg/clock"
	"github.com/edproton/xceltutors-next/pkg/database"
	"github.com/edproton/xceltutors-next/pkg/logger"
)

// alternativeShifts are tried in ascending order so the reported
// alternatives come out sorted.
var alternativeShifts = []time.Duration{-2 * time.Hour, -time.Hour, time.Hour, 2 * time.Hour}

// =====================================================
// RECURRING SERVICE IMPLEMENTATION
// =====================================================
type recurringService struct {
	recurringRepo repository.RecurringRepository
	bookingRepo   bookingRepo.BookingRepository
	userRepo      userRepo.UserRepository
	txManager     database.TransactionManager
	clock         clock.Clock
	currency      string
}

func NewRecurringService(
	recurringRepo repository.RecurringRepository,
	bookings bookingRepo.BookingRepository,
	users userRepo.UserRepository,
	txManager database.TransactionManager,
	clk clock.Clock,
	currency string,
) RecurringService {
	return &recurringService{
		recurringRepo: recurringRepo,
		bookingRepo:   bookings,
		userRepo:      users,
		txManager:     txManager,
		clock:         clk,
		currency:      currency,
	}
}

// slot is a parsed, validated time-slot input.
type slot struct {
	weekday time.Weekday
	tod     bookingModel.TimeOfDay
}

// instance is one concrete occurrence awaiting persistence.
type instance struct {
	start time.Time
}

func (i instance) interval() bookingModel.Interval {
	return bookingModel.Interval{Start: i.start, End: i.start.Add(bookingModel.LessonDuration)}
}

func (s *recurringService) CreateRecurringBookings(ctx context.Context, currentUserID uuid.UUID, req model.CreateRecurringRequest) (*model.CreateRecurringResponse, error) {
	// Step 1: Declarative shape
	if err := req.Validate(); err != nil {
		return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidInput, "Invalid request", err)
	}

	// Step 2: Slot semantics (grid, midnight, intra-request overlaps)
	slots, err := parseSlots(req.TimeSlots)
	if err != nil {
		return nil, err
	}

	// Step 3: Party rules. The student books; the host must teach.
	if req.HostID == currentUserID {
		return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidInput, "Cannot create recurring bookings with yourself", nil)
	}
	users, err := s.userRepo.GetByIDs(ctx, []uuid.UUID{currentUserID, req.HostID})
	if err != nil {
		return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInternalServerError, "Failed to load users", err)
	}
	student, ok := users[currentUserID]
	if !ok {
		return nil, bookingModel.NewBookingError(bookingModel.ErrCodeUserNotFound, "User not found", nil)
	}
	host, ok := users[req.HostID]
	if !ok {
		return nil, bookingModel.NewBookingError(bookingModel.ErrCodeUserNotFound, "Host not found", nil)
	}
	if student.IsTutor() {
		return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidParticipant, "Recurring bookings are initiated by the student", nil)
	}
	if !host.IsTutor() {
		return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidHost, "Host must be a tutor", nil)
	}

	now := s.clock.Now().UTC()
	horizonEnd := now.Truncate(24*time.Hour).AddDate(0, model.HorizonMonths, 0)

	return database.RunInTxResult(ctx, s.txManager, func(tx pgx.Tx) (*model.CreateRecurringResponse, error) {
		// Step 4: The pair must have history
		firstWindow := nextOccurrence(now, slots[0])
		related, err := s.bookingRepo.FindBetweenUsersWithTx(ctx, tx, host.ID, student.ID, firstWindow, firstWindow.Add(bookingModel.LessonDuration))
		if err != nil {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInternalServerError, "Failed to load booking history", err)
		}
		hasPrior := false
		for i := range related {
			if related[i].Status == bookingModel.StatusCompleted || related[i].Status == bookingModel.StatusScheduled {
				hasPrior = true
				break
			}
		}
		if !hasPrior {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeNoPriorBooking, "No prior completed or scheduled booking with this tutor", nil)
		}

		// Step 5: No overlap with the host's ACTIVE templates
		if err := s.checkTemplateOverlap(ctx, tx, host.ID, slots); err != nil {
			return nil, err
		}

		// Step 6: Expand every slot over the horizon
		instances := expand(now, horizonEnd, slots, req.RecurrencePattern)

		// Step 7: Detect conflicts in one round trip
		conflicts, err := s.detectConflicts(ctx, tx, host.ID, student.ID, instances)
		if err != nil {
			return nil, err
		}

		if len(conflicts) > 0 {
			resolved, unhandled, err := applyOverrides(instances, conflicts, req.Overrides, now)
			if err != nil {
				return nil, err
			}
			if len(unhandled) > 0 {
				// Report, write nothing.
				return &model.CreateRecurringResponse{Conflicts: unhandled}, nil
			}

			// Step 8: One re-check after overrides; leftovers are fatal.
			instances = resolved
			remaining, err := s.detectConflicts(ctx, tx, host.ID, student.ID, instances)
			if err != nil {
				return nil, err
			}
			if len(remaining) > 0 {
				return nil, bookingModel.NewBookingErrorWithDetails(bookingModel.ErrCodeOverrideConflict, "Overridden times still conflict", remaining)
			}
		}

		// Step 9: Persist template, slots and children atomically
		template := &model.RecurringTemplate{
			ID:                uuid.New(),
			HostID:            host.ID,
			CreatedBy:         student.ID,
			Title:             req.Title,
			Description:       req.Description,
			RecurrencePattern: req.RecurrencePattern,
			DurationMinutes:   model.LessonSlotMinutes,
			Status:            model.TemplateStatusActive,
			TimeSlots:         slotRows(slots),
		}
		if err := s.recurringRepo.CreateWithTx(ctx, tx, template); err != nil {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInternalServerError, "Failed to create template", err)
		}

		children := make([]*bookingModel.Booking, 0, len(instances))
		for _, inst := range instances {
			children = append(children, &bookingModel.Booking{
				ID:                  uuid.New(),
				Title:               req.Title,
				Description:         req.Description,
				Type:                bookingModel.TypeLesson,
				Status:              bookingModel.StatusAwaitingStudentConfirmation,
				HostID:              host.ID,
				Participants:        []uuid.UUID{student.ID},
				StartTime:           inst.start,
				EndTime:             inst.start.Add(bookingModel.LessonDuration),
				PriceAmount:         host.HourlyRate,
				PriceCurrency:       s.currency,
				RecurringTemplateID: &template.ID,
			})
		}
		if err := s.bookingRepo.CreateManyWithTx(ctx, tx, children); err != nil {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInternalServerError, "Failed to create child bookings", err)
		}

		logger.Info("recurring template created", map[string]interface{}{
			"template_id": template.ID,
			"host_id":     host.ID,
			"children":    len(children),
		})

		return &model.CreateRecurringResponse{RecurringTemplateID: &template.ID}, nil
	})
}

// =====================================================
// SLOT VALIDATION
// =====================================================

func parseSlots(inputs []model.TimeSlotInput) ([]slot, error) {
	slots := make([]slot, 0, len(inputs))
	for _, in := range inputs {
		day, err := bookingModel.ParseWeekday(in.Weekday)
		if err != nil {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidTimeSlot, fmt.Sprintf("Unknown weekday %q", in.Weekday), err)
		}
		tod, err := bookingModel.ParseTimeOfDay(in.Time)
		if err != nil {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidTimeSlot, fmt.Sprintf("Invalid time %q", in.Time), err)
		}
		if !tod.OnGrid() {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidTimeSlot, "Time slots must fall on a 15-minute grid", nil)
		}
		if !tod.FitsDuration(bookingModel.LessonDuration) {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidTimeSlot, "A lesson cannot cross midnight", nil)
		}
		slots = append(slots, slot{weekday: day, tod: tod})
	}

	// Intra-request overlap on the same weekday.
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if slots[i].weekday != slots[j].weekday {
				continue
			}
			diff := slots[i].tod.Minutes() - slots[j].tod.Minutes()
			if diff < 0 {
				diff = -diff
			}
			if diff < model.LessonSlotMinutes {
				return nil, bookingModel.NewBookingError(bookingModel.ErrCodeOverlappingTimeSlots, "Time slots overlap on the same weekday", nil)
			}
		}
	}

	return slots, nil
}

func slotRows(slots []slot) []model.RecurringTimeSlot {
	rows := make([]model.RecurringTimeSlot, 0, len(slots))
	for _, sl := range slots {
		rows = append(rows, model.RecurringTimeSlot{
			Weekday:   bookingModel.WeekdayName(sl.weekday),
			TimeOfDay: sl.tod.String(),
		})
	}
	return rows
}

// checkTemplateOverlap enforces at most one ACTIVE template window per
// (host, weekday, hour range).
func (s *recurringService) checkTemplateOverlap(ctx context.Context, tx pgx.Tx, hostID uuid.UUID, slots []slot) error {
	templates, err := s.recurringRepo.GetActiveByHostWithTx(ctx, tx, hostID)
	if err != nil {
		return bookingModel.NewBookingError(bookingModel.ErrCodeInternalServerError, "Failed to load templates", err)
	}

	for _, tpl := range templates {
		for _, existing := range tpl.TimeSlots {
			day, err := bookingModel.ParseWeekday(existing.Weekday)
			if err != nil {
				continue
			}
			tod, err := bookingModel.ParseTimeOfDay(existing.TimeOfDay)
			if err != nil {
				continue
			}
			for _, sl := range slots {
				if sl.weekday != day {
					continue
				}
				diff := sl.tod.Minutes() - tod.Minutes()
				if diff < 0 {
					diff = -diff
				}
				if diff < model.LessonSlotMinutes {
					return bookingModel.NewBookingError(bookingModel.ErrCodeRecurringTemplateConflict, "An active template already reserves this weekly window", nil)
				}
			}
		}
	}
	return nil
}

// =====================================================
// EXPANSION
// =====================================================

// nextOccurrence finds the first instant at or after from on the slot's
// weekday and time of day.
func nextOccurrence(from time.Time, sl slot) time.Time {
	return bookingModel.NextWeekdayAt(from, sl.weekday, sl.tod)
}

// expand materializes every slot over [now, horizonEnd), stepping per
// pattern, and returns the occurrences sorted ascending.
func expand(now, horizonEnd time.Time, slots []slot, pattern string) []instance {
	var instances []instance
	for _, sl := range slots {
		for t := nextOccurrence(now, sl); t.Before(horizonEnd); t = model.NextInstance(t, pattern) {
			instances = append(instances, instance{start: t})
		}
	}
	sort.Slice(instances, func(i, j int) bool {
		return instances[i].start.Before(instances[j].start)
	})
	return instances
}

// =====================================================
// CONFLICT DETECTION
// =====================================================

// detectConflicts runs the batched overlap query for all instances and
// computes the free alternative times for each offender.
func (s *recurringService) detectConflicts(ctx context.Context, tx pgx.Tx, hostID, studentID uuid.UUID, instances []instance) ([]model.TimeSlotConflict, error) {
	if len(instances) == 0 {
		return nil, nil
	}

	intervals := make([]bookingModel.Interval, 0, len(instances))
	for _, inst := range instances {
		intervals = append(intervals, inst.interval())
	}
	existing, err := s.bookingRepo.FindConflictsWithTx(ctx, tx, hostID, &studentID, nil, intervals)
	if err != nil {
		return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInternalServerError, "Failed to check for conflicts", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	var offenders []instance
	for _, inst := range instances {
		iv := inst.interval()
		for i := range existing {
			if existing[i].Overlaps(iv.Start, iv.End) {
				offenders = append(offenders, inst)
				break
			}
		}
	}
	if len(offenders) == 0 {
		return nil, nil
	}

	// Candidate alternatives for every offender, one batched lookup.
	type candidate struct {
		offender int
		start    time.Time
	}
	var candidates []candidate
	var candidateIntervals []bookingModel.Interval
	for idx, off := range offenders {
		for _, shift := range alternativeShifts {
			alt := off.start.Add(shift)
			if !sameDay(alt, off.start) {
				continue
			}
			tod := bookingModel.TimeOfDay{Hour: alt.Hour(), Minute: alt.Minute()}
			if !tod.OnGrid() || !tod.FitsDuration(bookingModel.LessonDuration) {
				continue
			}
			candidates = append(candidates, candidate{offender: idx, start: alt})
			candidateIntervals = append(candidateIntervals, bookingModel.Interval{Start: alt, End: alt.Add(bookingModel.LessonDuration)})
		}
	}

	var busy []bookingModel.Booking
	if len(candidateIntervals) > 0 {
		busy, err = s.bookingRepo.FindConflictsWithTx(ctx, tx, hostID, &studentID, nil, candidateIntervals)
		if err != nil {
			return nil, bookingModel.NewBookingError(bookingModel.ErrCodeInternalServerError, "Failed to check alternative times", err)
		}
	}

	alternatives := make([][]string, len(offenders))
	for _, cand := range candidates {
		end := cand.start.Add(bookingModel.LessonDuration)
		free := true
		for i := range busy {
			if busy[i].Overlaps(cand.start, end) {
				free = false
				break
			}
		}
		if free {
			// A sibling occurrence also blocks the alternative.
			for _, inst := range instances {
				iv := inst.interval()
				if cand.start.Before(iv.End) && end.After(iv.Start) {
					free = false
					break
				}
			}
		}
		if free {
			tod := bookingModel.TimeOfDay{Hour: cand.start.Hour(), Minute: cand.start.Minute()}
			alternatives[cand.offender] = append(alternatives[cand.offender], tod.String())
		}
	}

	conflicts := make([]model.TimeSlotConflict, 0, len(offenders))
	for idx, off := range offenders {
		alts := alternatives[idx]
		if alts == nil {
			alts = []string{}
		}
		conflicts = append(conflicts, model.TimeSlotConflict{
			ConflictTime:     bookingModel.FormatInstant(off.start),
			AlternativeTimes: alts,
		})
	}
	return conflicts, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// =====================================================
// OVERRIDES
// =====================================================

// applyOverrides resolves each reported conflict with its override.
// Returns the adjusted instance list and the conflicts left without an
// override (those are reported back, nothing is written).
func applyOverrides(instances []instance, conflicts []model.TimeSlotConflict, overrides []model.OverrideInput, now time.Time) ([]instance, []model.TimeSlotConflict, error) {
	if len(overrides) == 0 {
		return nil, conflicts, nil
	}

	byConflictTime := make(map[string]model.OverrideInput, len(overrides))
	for _, o := range overrides {
		byConflictTime[o.ConflictTime] = o
	}

	var unhandled []model.TimeSlotConflict
	for _, c := range conflicts {
		if _, ok := byConflictTime[c.ConflictTime]; !ok {
			unhandled = append(unhandled, c)
		}
	}
	if len(unhandled) > 0 {
		return nil, unhandled, nil
	}

	resolved := make([]instance, 0, len(instances))
	for _, inst := range instances {
		key := bookingModel.FormatInstant(inst.start)
		o, ok := byConflictTime[key]
		if !ok {
			resolved = append(resolved, inst)
			continue
		}
		if o.Cancel {
			continue
		}
		if o.NewTimeOfDay == nil {
			return nil, nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidOverrideTime, "Override must either cancel or supply a new time", nil)
		}
		tod, err := bookingModel.ParseTimeOfDay(*o.NewTimeOfDay)
		if err != nil {
			return nil, nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidOverrideTime, fmt.Sprintf("Invalid override time %q", *o.NewTimeOfDay), err)
		}
		if !tod.OnGrid() || !tod.FitsDuration(bookingModel.LessonDuration) {
			return nil, nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidOverrideTime, "Override time must fit a lesson on the 15-minute grid", nil)
		}
		moved := tod.At(inst.start)
		if moved.Before(now) {
			return nil, nil, bookingModel.NewBookingError(bookingModel.ErrCodeInvalidOverrideTime, "Override time is in the past", nil)
		}
		resolved = append(resolved, instance{start: moved})
	}

	// Overrides must not collide with each other or the kept siblings.
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].start.Before(resolved[j].start) })
	for i := 1; i < len(resolved); i++ {
		if resolved[i].start.Before(resolved[i-1].start.Add(bookingModel.LessonDuration)) {
			return nil, nil, bookingModel.NewBookingError(bookingModel.ErrCodeOverrideConflict, "Overridden times overlap each other", nil)
		}
	}

	return resolved, nil, nil
}
