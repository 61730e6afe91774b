package medicalrecord

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lino07w/sistema-clinica-sub000/internal/domain/audit"
	"github.com/lino07w/sistema-clinica-sub000/internal/platform/apperr"
)

type mockRepo struct {
	records map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Record)}
}

func (m *mockRepo) Create(_ context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = time.Now()
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, apperr.NotFound("medical record not found")
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, rec *Record) error {
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.records, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, params map[string]string, limit, offset int) ([]*Record, int, error) {
	var result []*Record
	for _, rec := range m.records {
		if v, ok := params["patient_id"]; ok && v != "" && rec.PatientID.String() != v {
			continue
		}
		if v, ok := params["doctor_id"]; ok && v != "" && rec.DoctorID.String() != v {
			continue
		}
		result = append(result, rec)
	}
	return result, len(result), nil
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

type nopAuditRepo struct{}

func (nopAuditRepo) Insert(_ context.Context, _ *audit.Entry) error { return nil }
func (nopAuditRepo) List(_ context.Context, _ map[string]string, _, _ int) ([]*audit.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(patientIDs, doctorIDs []uuid.UUID) *Service {
	rec := audit.NewRecorder(nopAuditRepo{}, zerolog.Nop())
	return NewService(newMockRepo(), newMockDirectory(patientIDs...), newMockDirectory(doctorIDs...), rec)
}

func TestCreateRecord(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	rec := &Record{
		PatientID: patient,
		DoctorID:  doctor,
		Date:      time.Now(),
		Diagnosis: "Gripe estacional",
	}
	if err := svc.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("expected record ID to be assigned")
	}
}

func TestCreateRecordMissingPatient(t *testing.T) {
	doctor := uuid.New()
	svc := newTestService(nil, []uuid.UUID{doctor})

	rec := &Record{
		PatientID: uuid.New(),
		DoctorID:  doctor,
		Date:      time.Now(),
		Diagnosis: "Gripe",
	}
	err := svc.Create(context.Background(), rec)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRecordMissingDoctor(t *testing.T) {
	patient := uuid.New()
	svc := newTestService([]uuid.UUID{patient}, nil)

	rec := &Record{
		PatientID: patient,
		DoctorID:  uuid.New(),
		Date:      time.Now(),
		Diagnosis: "Gripe",
	}
	err := svc.Create(context.Background(), rec)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRecordMissingDiagnosis(t *testing.T) {
	patient, doctor := uuid.New(), uuid.New()
	svc := newTestService([]uuid.UUID{patient}, []uuid.UUID{doctor})

	rec := &Record{PatientID: patient, DoctorID: doctor, Date: time.Now()}
	err := svc.Create(context.Background(), rec)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListByPatient(t *testing.T) {
	p1, p2, doctor := uuid.New(), uuid.New(), uuid.New()
	svc := newTestService([]uuid.UUID{p1, p2}, []uuid.UUID{doctor})

	for _, pid := range []uuid.UUID{p1, p1, p2} {
		rec := &Record{PatientID: pid, DoctorID: doctor, Date: time.Now(), Diagnosis: "d"}
		if err := svc.Create(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}

	records, total, err := svc.List(context.Background(), map[string]string{"patient_id": p1.String()}, 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(records) != 2 {
		t.Errorf("expected 2 records for patient, got %d", len(records))
	}
}
