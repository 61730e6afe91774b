package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/auth"
)

// -- Mocks --

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.appts, id)
	return nil
}

func matches(a *Appointment, f Filter) bool {
	if f.PatientID != nil && a.PatientID != *f.PatientID {
		return false
	}
	if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
		return false
	}
	if f.Date != nil && !a.Date.Equal(*f.Date) {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if matches(a, f) {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) HasActiveSlot(_ context.Context, doctorID uuid.UUID, date time.Time, timeSlot string, exclude *uuid.UUID) (bool, error) {
	for _, a := range m.appts {
		if exclude != nil && a.ID == *exclude {
			continue
		}
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Time == timeSlot && a.Status != StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) CountByStatus(_ context.Context, f Filter) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range m.appts {
		if matches(a, f) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

type mockDirectory struct {
	ids map[uuid.UUID]bool
}

func newMockDirectory(ids ...uuid.UUID) *mockDirectory {
	m := &mockDirectory{ids: make(map[uuid.UUID]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func (m *mockDirectory) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.ids[id], nil
}

// -- Tests --

var (
	testDate = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	adminScope = auth.Scope{All: true}
)

type nopAuditRepo struct{}

func (nopAuditRepo) Insert(_ context.Context, _ *audit.Entry) error { return nil }
func (nopAuditRepo) List(_ context.Context, _ map[string]string, _, _ int) ([]*audit.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(patientIDs, doctorIDs []uuid.UUID) (*Service, *mockRepo) {
	repo := newMockRepo()
	rec := audit.NewRecorder(nopAuditRepo{}, zerolog.Nop())
	svc := NewService(repo, newMockDirectory(patientIDs...), newMockDirectory(doctorIDs...), nil, rec)
	return svc, repo
}

func TestCreateAppointment(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	a := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00", Reason: "checkup"}
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected default status %q, got %q", StatusScheduled, a.Status)
	}
}

func TestCreateAppointmentMissingPatient(t *testing.T) {
	doctor := uuid.New()
	svc, _ := newTestService(nil, []uuid.UUID{doctor})

	a := &Appointment{PatientID: uuid.New(), DoctorID: doctor, Date: testDate, Time: "10:00"}
	err := svc.Create(context.Background(), a)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateAppointmentMissingDoctor(t *testing.T) {
	patient := uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, nil)

	a := &Appointment{PatientID: patient, DoctorID: uuid.New(), Date: testDate, Time: "10:00"}
	err := svc.Create(context.Background(), a)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	first := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), first); err != nil {
		t.Fatal(err)
	}

	second := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	err := svc.Create(context.Background(), second)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCancelledSlotIsFree(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	first := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00", Status: StatusCancelled}
	if err := svc.Create(context.Background(), first); err != nil {
		t.Fatal(err)
	}

	second := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), second); err != nil {
		t.Fatalf("cancelled appointment should not block the slot: %v", err)
	}
}

func TestMoveAppointmentFreesSlot(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	first := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), first); err != nil {
		t.Fatal(err)
	}

	newTime := "11:00"
	if _, err := svc.Update(context.Background(), adminScope, first.ID, UpdateParams{Time: &newTime}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// The 10:00 slot is free again.
	second := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), second); err != nil {
		t.Fatalf("slot should be free after the move: %v", err)
	}
}

func TestReactivateIntoTakenSlotConflicts(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	cancelled := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00", Status: StatusCancelled}
	if err := svc.Create(context.Background(), cancelled); err != nil {
		t.Fatal(err)
	}

	// Another appointment has taken the slot in the meantime.
	taken := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), taken); err != nil {
		t.Fatal(err)
	}

	status := StatusScheduled
	_, err := svc.Update(context.Background(), adminScope, cancelled.ID, UpdateParams{Status: &status})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected Conflict reactivating into a taken slot, got %v", err)
	}
}

func TestReactivateIntoFreeSlot(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	cancelled := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00", Status: StatusCancelled}
	if err := svc.Create(context.Background(), cancelled); err != nil {
		t.Fatal(err)
	}

	status := StatusScheduled
	a, err := svc.Update(context.Background(), adminScope, cancelled.ID, UpdateParams{Status: &status})
	if err != nil {
		t.Fatalf("reactivating into a free slot: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q, want scheduled", a.Status)
	}
}

func TestUpdateDoesNotConflictWithItself(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	a := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	reason := "follow-up"
	if _, err := svc.Update(context.Background(), adminScope, a.ID, UpdateParams{Reason: &reason}); err != nil {
		t.Fatalf("update without slot change must not conflict: %v", err)
	}
}

func TestUpdateMissingAppointment(t *testing.T) {
	svc, _ := newTestService(nil, nil)

	_, err := svc.Update(context.Background(), adminScope, uuid.New(), UpdateParams{})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDoctorScopeForbidden(t *testing.T) {
	patient, doctor, otherDoctor := uuid.New(), uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor, otherDoctor})

	a := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	scope := auth.Scope{DoctorID: &otherDoctor}
	_, err := svc.Get(context.Background(), scope, a.ID)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for another doctor's appointment, got %v", err)
	}
}

func TestDoctorScopeFiltersList(t *testing.T) {
	patient, doctor, otherDoctor := uuid.New(), uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor, otherDoctor})

	mine := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	theirs := &Appointment{PatientID: patient, DoctorID: otherDoctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), mine); err != nil {
		t.Fatal(err)
	}
	if err := svc.Create(context.Background(), theirs); err != nil {
		t.Fatal(err)
	}

	scope := auth.Scope{DoctorID: &doctor}
	appts, _, err := svc.List(context.Background(), scope, Filter{}, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range appts {
		if a.DoctorID != doctor {
			t.Errorf("doctor scope leaked appointment for doctor %s", a.DoctorID)
		}
	}
	if len(appts) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(appts))
	}
}

func TestScopeOverridesCallerFilter(t *testing.T) {
	patient, doctor, otherDoctor := uuid.New(), uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor, otherDoctor})

	theirs := &Appointment{PatientID: patient, DoctorID: otherDoctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), theirs); err != nil {
		t.Fatal(err)
	}

	// A doctor asking for another doctor's appointments gets their own scope
	// applied regardless.
	scope := auth.Scope{DoctorID: &doctor}
	appts, _, err := svc.List(context.Background(), scope, Filter{DoctorID: &otherDoctor}, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 0 {
		t.Errorf("expected 0 appointments, got %d", len(appts))
	}
}

func TestUnlinkedScopeSeesNothing(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	a := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "10:00"}
	if err := svc.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	appts, total, err := svc.List(context.Background(), auth.Scope{}, Filter{}, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(appts) != 0 || total != 0 {
		t.Errorf("unlinked scope must see nothing, got %d appointments", len(appts))
	}
}

func TestStats(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	times := []string{"09:00", "10:00", "11:00"}
	for _, ts := range times {
		a := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: ts}
		if err := svc.Create(context.Background(), a); err != nil {
			t.Fatal(err)
		}
	}
	cancelled := StatusCancelled
	first, _, err := svc.List(context.Background(), adminScope, Filter{}, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(context.Background(), adminScope, first[0].ID, UpdateParams{Status: &cancelled}); err != nil {
		t.Fatal(err)
	}

	st, err := svc.Stats(context.Background(), adminScope)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 3 {
		t.Errorf("expected total 3, got %d", st.Total)
	}
	if st.ByStatus[StatusScheduled] != 2 || st.ByStatus[StatusCancelled] != 1 {
		t.Errorf("unexpected status counts: %v", st.ByStatus)
	}
}

func TestCreateInvalidTime(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc, _ := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	a := &Appointment{PatientID: patient, DoctorID: doctor, Date: testDate, Time: "25:99"}
	err := svc.Create(context.Background(), a)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
