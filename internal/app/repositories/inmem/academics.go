package inmem

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// StudentStore is the in-memory students table
type StudentStore struct{ s *Store }

// Create inserts a student; admission numbers are unique
func (st *StudentStore) Create(_ context.Context, student *models.Student) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if _, ok := st.s.students[student.AdmissionNumber]; ok {
		return apperrors.ErrAdmissionNumberUsed
	}
	st.insert(student)
	return nil
}

// CreateWithAccount inserts a student and its user under one lock; nothing is
// stored when either conflicts
func (st *StudentStore) CreateWithAccount(_ context.Context, student *models.Student, user *models.User) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if st.s.failAccounts != nil {
		return st.s.failAccounts
	}
	if _, ok := st.s.students[student.AdmissionNumber]; ok {
		return apperrors.ErrAdmissionNumberUsed
	}
	user.Email = lower(user.Email)
	for _, existing := range st.s.users {
		if existing.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}

	st.insert(student)
	user.ID = st.s.id()
	user.CreatedAt, user.UpdatedAt = student.CreatedAt, student.CreatedAt
	cp := *user
	st.s.users[user.ID] = &cp
	return nil
}

func (st *StudentStore) insert(student *models.Student) {
	student.ID = st.s.id()
	now := time.Now()
	student.CreatedAt, student.UpdatedAt = now, now
	cp := *student
	st.s.students[student.AdmissionNumber] = &cp
}

// GetByAdmissionNumber returns a student
func (st *StudentStore) GetByAdmissionNumber(_ context.Context, admissionNumber string) (*models.Student, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if student, ok := st.s.students[admissionNumber]; ok {
		cp := *student
		return &cp, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

// List returns a filtered page ordered by admission number
func (st *StudentStore) List(_ context.Context, f models.StudentFilter, offset, limit uint64) ([]models.Student, int64, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	var all []models.Student
	for _, student := range st.s.students {
		if f.Department != nil && student.Department != *f.Department {
			continue
		}
		if f.CourseCode != nil && student.CourseCode != *f.CourseCode {
			continue
		}
		if f.IsActive != nil && student.IsActive != *f.IsActive {
			continue
		}
		all = append(all, *student)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AdmissionNumber < all[j].AdmissionNumber })
	return page(all, offset, limit), int64(len(all)), nil
}

// Update persists mutable student fields
func (st *StudentStore) Update(_ context.Context, student *models.Student) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	existing, ok := st.s.students[student.AdmissionNumber]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	existing.CourseCode = student.CourseCode
	existing.Department = student.Department
	existing.YearOfStudy = student.YearOfStudy
	existing.IsActive = student.IsActive
	existing.UpdatedAt = time.Now()
	student.UpdatedAt = existing.UpdatedAt
	return nil
}

// ProgramStore is the in-memory programs table
type ProgramStore struct{ s *Store }

// Create inserts a program; names are unique case-insensitively
func (p *ProgramStore) Create(_ context.Context, program *models.Program) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for _, existing := range p.s.programs {
		if strings.EqualFold(existing.Name, program.Name) {
			return apperrors.ErrProgramAlreadyExists
		}
	}
	program.ID = p.s.id()
	now := time.Now()
	program.CreatedAt, program.UpdatedAt = now, now
	cp := *program
	p.s.programs[program.ID] = &cp
	return nil
}

// GetByID returns a program
func (p *ProgramStore) GetByID(_ context.Context, id int64) (*models.Program, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if program, ok := p.s.programs[id]; ok {
		cp := *program
		return &cp, nil
	}
	return nil, apperrors.ErrProgramNotFound
}

// FindByName matches a program name case-insensitively
func (p *ProgramStore) FindByName(_ context.Context, name string) (*models.Program, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for _, program := range p.s.programs {
		if strings.EqualFold(program.Name, name) {
			cp := *program
			return &cp, nil
		}
	}
	return nil, apperrors.ErrProgramNotFound
}

// List returns programs ordered by name
func (p *ProgramStore) List(_ context.Context) ([]models.Program, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	list := make([]models.Program, 0, len(p.s.programs))
	for _, program := range p.s.programs {
		list = append(list, *program)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// UpdateCost sets a program's per-year cost
func (p *ProgramStore) UpdateCost(_ context.Context, id int64, cost float64) (*models.Program, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	program, ok := p.s.programs[id]
	if !ok {
		return nil, apperrors.ErrProgramNotFound
	}
	program.CostPerYear = cost
	program.UpdatedAt = time.Now()
	cp := *program
	return &cp, nil
}

// PaymentStore is the in-memory payments table
type PaymentStore struct{ s *Store }

// Create inserts a payment; (mode, reference) is unique
func (p *PaymentStore) Create(_ context.Context, payment *models.Payment) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if payment.Amount <= 0 {
		return apperrors.NewValidationError("amount", "amount must be greater than zero")
	}
	for _, existing := range p.s.payments {
		if existing.Mode == payment.Mode && existing.Reference == payment.Reference {
			return apperrors.NewConflictError(fmt.Sprintf("a %s payment with this %s already exists",
				payment.Mode, payment.Mode.ReferenceLabel()))
		}
	}
	payment.ID = p.s.id()
	payment.CreatedAt = time.Now()
	cp := *payment
	p.s.payments = append(p.s.payments, &cp)
	return nil
}

// ListByAdmissionNumber returns a student's payments, newest first
func (p *PaymentStore) ListByAdmissionNumber(_ context.Context, admissionNumber string) ([]models.Payment, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	list := []models.Payment{}
	for _, payment := range p.s.payments {
		if payment.AdmissionNumber == admissionNumber {
			list = append(list, *payment)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].PaymentDate.Equal(list[j].PaymentDate) {
			return list[i].PaymentDate.After(list[j].PaymentDate)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

// UnitStore is the in-memory unit_registrations and unit_assignments tables
type UnitStore struct{ s *Store }

// CreateRegistration registers a student for a unit in a period
func (u *UnitStore) CreateRegistration(_ context.Context, reg *models.UnitRegistration) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.registrations {
		if existing.AdmissionNumber == reg.AdmissionNumber && existing.UnitCode == reg.UnitCode && existing.AcademicPeriod == reg.AcademicPeriod {
			return apperrors.ErrAlreadyRegistered
		}
	}
	reg.ID = u.s.id()
	cp := *reg
	u.s.registrations = append(u.s.registrations, &cp)
	return nil
}

// ListRegistrations returns a student's registrations, latest period first
func (u *UnitStore) ListRegistrations(_ context.Context, admissionNumber string) ([]models.UnitRegistration, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	list := []models.UnitRegistration{}
	for _, reg := range u.s.registrations {
		if reg.AdmissionNumber == admissionNumber {
			list = append(list, *reg)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AcademicPeriod != list[j].AcademicPeriod {
			return list[i].AcademicPeriod > list[j].AcademicPeriod
		}
		return list[i].UnitCode < list[j].UnitCode
	})
	return list, nil
}

// CreateAssignment assigns a trainer to a unit in a period
func (u *UnitStore) CreateAssignment(_ context.Context, a *models.UnitAssignment) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.assignments {
		if existing.TrainerID == a.TrainerID && existing.UnitCode == a.UnitCode && existing.AcademicPeriod == a.AcademicPeriod {
			return apperrors.ErrUnitAlreadyAssigned
		}
	}
	a.ID = u.s.id()
	cp := *a
	u.s.assignments[a.ID] = &cp
	return nil
}

// DeleteAssignment removes an assignment and returns it
func (u *UnitStore) DeleteAssignment(_ context.Context, id int64) (*models.UnitAssignment, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	a, ok := u.s.assignments[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("unit assignment not found")
	}
	delete(u.s.assignments, id)
	return a, nil
}

// ListAssignments returns assignments, optionally for one trainer
func (u *UnitStore) ListAssignments(_ context.Context, trainerID *int64) ([]models.UnitAssignment, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	list := []models.UnitAssignment{}
	for _, id := range sortedKeys(u.s.assignments) {
		a := u.s.assignments[id]
		if trainerID == nil || a.TrainerID == *trainerID {
			list = append(list, *a)
		}
	}
	return list, nil
}
