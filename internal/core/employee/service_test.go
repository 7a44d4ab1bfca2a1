package employee

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

// fakeStore は社員・履歴・職種をメモリ上で保持し、トランザクション失敗時に状態を巻き戻します。
type fakeStore struct {
	employees map[string]*Employee
	order     []string
	roles     map[string]*RoleRef
	salaries  []*SalaryHistory
	roleLog   []*RoleHistory

	failUpdateSalary error
	failUpdateRole   error
	lockedIDs        []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: make(map[string]*Employee),
		roles:     make(map[string]*RoleRef),
	}
}

func (f *fakeStore) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	snapshot := make(map[string]Employee, len(f.employees))
	for id, e := range f.employees {
		snapshot[id] = *e
	}
	salaries := append([]*SalaryHistory(nil), f.salaries...)
	roleLog := append([]*RoleHistory(nil), f.roleLog...)

	if err := fn(ctx); err != nil {
		for id, e := range snapshot {
			restored := e
			f.employees[id] = &restored
		}
		f.salaries = salaries
		f.roleLog = roleLog
		return err
	}
	return nil
}

func (f *fakeStore) addRole(title, departmentID string) *RoleRef {
	role := &RoleRef{ID: uuid.NewString(), Title: title, DepartmentID: departmentID, DepartmentName: departmentID}
	f.roles[role.ID] = role
	return role
}

func (f *fakeStore) addEmployee(name string, role *RoleRef, seniority Seniority, salary string, hire time.Time) *Employee {
	emp := &Employee{
		ID:            uuid.NewString(),
		UserID:        uuid.NewString(),
		FullName:      name,
		Role:          *role,
		Seniority:     seniority,
		CurrentSalary: decimal.RequireFromString(salary),
		HireDate:      hire,
	}
	f.employees[emp.ID] = emp
	f.order = append(f.order, emp.ID)
	clone := *emp
	return &clone
}

func (f *fakeStore) Create(_ context.Context, e *Employee) (*Employee, error) {
	clone := *e
	clone.ID = uuid.NewString()
	f.employees[clone.ID] = &clone
	f.order = append(f.order, clone.ID)
	out := clone
	return &out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*Employee, bool, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, false, nil
	}
	clone := *e
	for _, other := range f.employees {
		if other.ManagerID != nil && *other.ManagerID == id {
			clone.IsTeamLead = true
		}
	}
	return &clone, true, nil
}

func (f *fakeStore) FindByIDForUpdate(ctx context.Context, id string) (*Employee, bool, error) {
	f.lockedIDs = append(f.lockedIDs, id)
	return f.FindByID(ctx, id)
}

func (f *fakeStore) FindByUserID(_ context.Context, userID string) (*Employee, bool, error) {
	for _, e := range f.employees {
		if e.UserID == userID {
			clone := *e
			return &clone, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) ([]*Employee, string, error) {
	var all []*Employee
	for _, id := range f.order {
		e := f.employees[id]
		if filter.ActiveOnly && !e.IsActive() {
			continue
		}
		if filter.DepartmentID != nil && e.Role.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.ManagerID != nil && (e.ManagerID == nil || *e.ManagerID != *filter.ManagerID) {
			continue
		}
		clone := *e
		all = append(all, &clone)
	}
	if filter.Offset > len(all) {
		return []*Employee{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return all[filter.Offset:end], next, nil
}

func (f *fakeStore) UpdateSalary(_ context.Context, id string, salary decimal.Decimal, updatedAt time.Time) error {
	if f.failUpdateSalary != nil {
		return f.failUpdateSalary
	}
	e := f.employees[id]
	e.CurrentSalary = salary
	e.UpdatedAt = updatedAt
	return nil
}

func (f *fakeStore) UpdateRole(_ context.Context, id, roleID string, seniority Seniority, updatedAt time.Time) error {
	if f.failUpdateRole != nil {
		return f.failUpdateRole
	}
	e := f.employees[id]
	if role, ok := f.roles[roleID]; ok {
		e.Role = *role
	}
	e.Seniority = seniority
	e.UpdatedAt = updatedAt
	return nil
}

func (f *fakeStore) UpdateTermination(_ context.Context, id string, terminationDate time.Time, updatedAt time.Time) error {
	e := f.employees[id]
	e.TerminationDate = &terminationDate
	e.UpdatedAt = updatedAt
	return nil
}

func (f *fakeStore) ListWithoutRecentRaises(_ context.Context, cutoff time.Time) ([]*Employee, error) {
	var result []*Employee
	for _, id := range f.order {
		e := f.employees[id]
		if !e.IsActive() {
			continue
		}
		recent := false
		for _, h := range f.salaries {
			if h.EmployeeID == id && !h.EffectiveDate.Before(cutoff) {
				recent = true
			}
		}
		if !recent {
			clone := *e
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (f *fakeStore) FindRole(_ context.Context, id string) (*RoleRef, bool, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, false, nil
	}
	clone := *role
	return &clone, true, nil
}

func (f *fakeStore) CreateSalaryHistory(_ context.Context, h *SalaryHistory) (*SalaryHistory, error) {
	clone := *h
	f.salaries = append(f.salaries, &clone)
	out := clone
	return &out, nil
}

func (f *fakeStore) CreateRoleHistory(_ context.Context, h *RoleHistory) (*RoleHistory, error) {
	clone := *h
	f.roleLog = append(f.roleLog, &clone)
	out := clone
	return &out, nil
}

func (f *fakeStore) ListSalaryHistory(_ context.Context, filter HistoryFilter) ([]*SalaryHistory, error) {
	var result []*SalaryHistory
	for _, h := range f.salaries {
		if h.EmployeeID != filter.EmployeeID || !withinRange(h.EffectiveDate, filter) {
			continue
		}
		clone := *h
		result = append(result, &clone)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].EffectiveDate.Equal(result[j].EffectiveDate) {
			return result[i].EffectiveDate.After(result[j].EffectiveDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeStore) ListRoleHistory(_ context.Context, filter HistoryFilter) ([]*RoleHistory, error) {
	var result []*RoleHistory
	for _, h := range f.roleLog {
		if h.EmployeeID != filter.EmployeeID || !withinRange(h.EffectiveDate, filter) {
			continue
		}
		clone := *h
		result = append(result, &clone)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].EffectiveDate.Equal(result[j].EffectiveDate) {
			return result[i].EffectiveDate.After(result[j].EffectiveDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func withinRange(d time.Time, filter HistoryFilter) bool {
	if filter.StartDate != nil && d.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && d.After(*filter.EndDate) {
		return false
	}
	return true
}

func newTestService(store *fakeStore, now time.Time) *Service {
	return NewService(store, store, store, &stubClock{now: now}, store, nil)
}

func ptr[T any](v T) *T {
	return &v
}

type salaryFixture struct {
	store     *fakeStore
	svc       *Service
	employee  *Employee
	developer *RoleRef
	marketing *RoleRef
}

func newSalaryFixture() *salaryFixture {
	store := newFakeStore()
	developer := store.addRole("Developer", "IT")
	marketing := store.addRole("Marketing Manager", "Marketing")
	emp := store.addEmployee("Ana Perez", developer, SeniorityJunior, "60000.00", date(2023, time.January, 15))
	return &salaryFixture{
		store:     store,
		svc:       newTestService(store, time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)),
		employee:  emp,
		developer: developer,
		marketing: marketing,
	}
}

func TestService_UpdateSalary_AnnualRaise(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()
	actor := uuid.NewString()

	record, err := fx.svc.UpdateSalary(context.Background(), UpdateSalaryInput{
		EmployeeID:    fx.employee.ID,
		NewSalary:     dec("65000.00"),
		ChangedBy:     &actor,
		Reason:        "Annual raise",
		EffectiveDate: ptr(date(2024, time.January, 1)),
	})
	if err != nil {
		t.Fatalf("UpdateSalary returned error: %v", err)
	}

	if !record.ChangeAmount().Equal(dec("5000")) {
		t.Fatalf("unexpected change amount: %s", record.ChangeAmount())
	}
	if !record.ChangePercentage().Equal(dec("8.33")) {
		t.Fatalf("unexpected change percentage: %s", record.ChangePercentage())
	}
	if !record.IsRaise() {
		t.Fatalf("expected raise")
	}
	if record.ChangedBy == nil || *record.ChangedBy != actor || record.ChangeReason != "Annual raise" {
		t.Fatalf("unexpected metadata: %+v", record)
	}
	if record.EmployeeName != "Ana Perez" {
		t.Fatalf("expected employee name on record, got %q", record.EmployeeName)
	}

	if len(fx.store.salaries) != 1 {
		t.Fatalf("expected exactly one history record, got %d", len(fx.store.salaries))
	}
	if got := fx.store.employees[fx.employee.ID].CurrentSalary; !got.Equal(dec("65000")) {
		t.Fatalf("expected current salary 65000, got %s", got)
	}
	if len(fx.store.lockedIDs) != 1 || fx.store.lockedIDs[0] != fx.employee.ID {
		t.Fatalf("expected employee row to be locked, got %v", fx.store.lockedIDs)
	}
}

func TestService_UpdateSalary_DefaultsEffectiveDateToToday(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	record, err := fx.svc.UpdateSalary(context.Background(), UpdateSalaryInput{EmployeeID: fx.employee.ID, NewSalary: dec("61000")})
	if err != nil {
		t.Fatalf("UpdateSalary returned error: %v", err)
	}
	if !record.EffectiveDate.Equal(date(2024, time.March, 10)) {
		t.Fatalf("expected effective date to default to today, got %v", record.EffectiveDate)
	}
	if record.ChangedBy != nil {
		t.Fatalf("expected no actor, got %v", *record.ChangedBy)
	}
}

func TestService_UpdateSalary_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   func(emp *Employee) UpdateSalaryInput
		want error
		kind error
	}{
		{
			name: "same salary",
			in: func(emp *Employee) UpdateSalaryInput {
				return UpdateSalaryInput{EmployeeID: emp.ID, NewSalary: dec("60000.00")}
			},
			want: ErrSameSalary,
			kind: ErrValueConflict,
		},
		{
			name: "zero salary",
			in: func(emp *Employee) UpdateSalaryInput {
				return UpdateSalaryInput{EmployeeID: emp.ID, NewSalary: decimal.Zero}
			},
			want: ErrNonPositiveSalary,
			kind: ErrInvalidValue,
		},
		{
			name: "negative salary",
			in: func(emp *Employee) UpdateSalaryInput {
				return UpdateSalaryInput{EmployeeID: emp.ID, NewSalary: dec("-100")}
			},
			want: ErrNonPositiveSalary,
			kind: ErrInvalidValue,
		},
		{
			name: "salary above column precision",
			in: func(emp *Employee) UpdateSalaryInput {
				return UpdateSalaryInput{EmployeeID: emp.ID, NewSalary: dec("100000000")}
			},
			want: ErrSalaryOutOfRange,
			kind: ErrInvalidValue,
		},
		{
			name: "before hire date",
			in: func(emp *Employee) UpdateSalaryInput {
				return UpdateSalaryInput{EmployeeID: emp.ID, NewSalary: dec("65000"), EffectiveDate: ptr(date(2023, time.January, 14))}
			},
			want: ErrEffectiveDateBeforeHire,
			kind: ErrTemporalOrder,
		},
		{
			name: "unknown employee",
			in: func(*Employee) UpdateSalaryInput {
				return UpdateSalaryInput{EmployeeID: uuid.NewString(), NewSalary: dec("65000")}
			},
			want: ErrEmployeeNotFound,
			kind: ErrNotFound,
		},
		{
			name: "malformed id",
			in: func(*Employee) UpdateSalaryInput {
				return UpdateSalaryInput{EmployeeID: "emp-1", NewSalary: dec("65000")}
			},
			want: ErrInvalidID,
			kind: ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fx := newSalaryFixture()
			_, err := fx.svc.UpdateSalary(context.Background(), tt.in(fx.employee))
			if !errors.Is(err, tt.want) || !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v (kind %v), got %v", tt.want, tt.kind, err)
			}
			if len(fx.store.salaries) != 0 {
				t.Fatalf("expected no history records, got %d", len(fx.store.salaries))
			}
			if got := fx.store.employees[fx.employee.ID].CurrentSalary; !got.Equal(dec("60000")) {
				t.Fatalf("expected salary unchanged, got %s", got)
			}
		})
	}
}

func TestService_UpdateSalary_TemporalGuardForAnySalary(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()
	for _, salary := range []string{"0.01", "59999.99", "60000.01", "1000000"} {
		_, err := fx.svc.UpdateSalary(context.Background(), UpdateSalaryInput{
			EmployeeID:    fx.employee.ID,
			NewSalary:     dec(salary),
			EffectiveDate: ptr(date(2022, time.December, 31)),
		})
		if !errors.Is(err, ErrTemporalOrder) {
			t.Fatalf("salary %s: expected temporal order error, got %v", salary, err)
		}
	}
}

func TestService_UpdateSalary_RollsBackHistoryWhenSnapshotFails(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()
	fx.store.failUpdateSalary = errors.New("connection reset")

	_, err := fx.svc.UpdateSalary(context.Background(), UpdateSalaryInput{EmployeeID: fx.employee.ID, NewSalary: dec("65000")})
	if err == nil || err.Error() != "connection reset" {
		t.Fatalf("expected snapshot update error, got %v", err)
	}
	if len(fx.store.salaries) != 0 {
		t.Fatalf("expected history to be rolled back, got %d records", len(fx.store.salaries))
	}
	if got := fx.store.employees[fx.employee.ID].CurrentSalary; !got.Equal(dec("60000")) {
		t.Fatalf("expected salary unchanged, got %s", got)
	}
}

func TestService_UpdateRole_SeniorityOnly(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	record, err := fx.svc.UpdateRole(context.Background(), UpdateRoleInput{
		EmployeeID:   fx.employee.ID,
		NewSeniority: ptr(SeniorityMid),
		Reason:       "Promotion",
	})
	if err != nil {
		t.Fatalf("UpdateRole returned error: %v", err)
	}

	if record.OldRole == nil || record.NewRole == nil || record.OldRole.ID != record.NewRole.ID {
		t.Fatalf("expected role to be unchanged, got %+v -> %+v", record.OldRole, record.NewRole)
	}
	if record.OldSeniority != SeniorityJunior || record.NewSeniority != SeniorityMid {
		t.Fatalf("unexpected seniority change: %s -> %s", record.OldSeniority, record.NewSeniority)
	}
	if record.PromotionOrDemotion() != SeniorityChangePromotion {
		t.Fatalf("expected promotion, got %q", record.PromotionOrDemotion())
	}
	if record.IsLateralMove() {
		t.Fatalf("expected not a lateral move")
	}

	stored := fx.store.employees[fx.employee.ID]
	if stored.Seniority != SeniorityMid || stored.Role.ID != fx.developer.ID {
		t.Fatalf("unexpected employee snapshot: %+v", stored)
	}
}

func TestService_UpdateRole_CrossDepartmentLateralMove(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	record, err := fx.svc.UpdateRole(context.Background(), UpdateRoleInput{
		EmployeeID:   fx.employee.ID,
		NewRoleID:    &fx.marketing.ID,
		NewSeniority: ptr(SeniorityJunior),
	})
	if err != nil {
		t.Fatalf("UpdateRole returned error: %v", err)
	}

	if !record.ChangedDepartment() || !record.IsLateralMove() {
		t.Fatalf("expected lateral move across departments: %+v", record)
	}
	if got := record.String(); got != "Ana Perez: Developer -> Marketing Manager" {
		t.Fatalf("unexpected string: %q", got)
	}
	if fx.store.employees[fx.employee.ID].Role.ID != fx.marketing.ID {
		t.Fatalf("expected employee role to be updated")
	}
}

func TestService_UpdateRole_NoChange(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	inputs := []UpdateRoleInput{
		{EmployeeID: fx.employee.ID},
		{EmployeeID: fx.employee.ID, NewRoleID: &fx.developer.ID},
		{EmployeeID: fx.employee.ID, NewSeniority: ptr(SeniorityJunior)},
		{EmployeeID: fx.employee.ID, NewRoleID: &fx.developer.ID, NewSeniority: ptr(Seniority("junior"))},
	}
	for i, in := range inputs {
		if _, err := fx.svc.UpdateRole(context.Background(), in); !errors.Is(err, ErrNoRoleChange) {
			t.Fatalf("input %d: expected ErrNoRoleChange, got %v", i, err)
		}
	}
	if len(fx.store.roleLog) != 0 {
		t.Fatalf("expected no role history, got %d", len(fx.store.roleLog))
	}
}

func TestService_UpdateRole_Rejections(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	unknownRole := uuid.NewString()
	if _, err := fx.svc.UpdateRole(context.Background(), UpdateRoleInput{EmployeeID: fx.employee.ID, NewRoleID: &unknownRole}); !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}

	if _, err := fx.svc.UpdateRole(context.Background(), UpdateRoleInput{EmployeeID: fx.employee.ID, NewSeniority: ptr(Seniority("LEAD"))}); !errors.Is(err, ErrInvalidSeniority) {
		t.Fatalf("expected ErrInvalidSeniority, got %v", err)
	}

	_, err := fx.svc.UpdateRole(context.Background(), UpdateRoleInput{
		EmployeeID:    fx.employee.ID,
		NewSeniority:  ptr(SeniorityMid),
		EffectiveDate: ptr(date(2020, time.January, 1)),
	})
	if !errors.Is(err, ErrEffectiveDateBeforeHire) {
		t.Fatalf("expected ErrEffectiveDateBeforeHire, got %v", err)
	}

	fx.store.failUpdateRole = errors.New("deadlock detected")
	if _, err := fx.svc.UpdateRole(context.Background(), UpdateRoleInput{EmployeeID: fx.employee.ID, NewSeniority: ptr(SeniorityMid)}); err == nil {
		t.Fatal("expected snapshot update error")
	}
	if len(fx.store.roleLog) != 0 {
		t.Fatalf("expected no role history after failures, got %d", len(fx.store.roleLog))
	}
	if fx.store.employees[fx.employee.ID].Seniority != SeniorityJunior {
		t.Fatalf("expected seniority unchanged")
	}
}

func TestService_GetSalaryHistory_NewestFirst(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()
	steps := []struct {
		salary string
		on     time.Time
	}{
		{"62000", date(2023, time.June, 1)},
		{"65000", date(2024, time.January, 1)},
		{"70000", date(2024, time.June, 1)},
	}
	for _, step := range steps {
		if _, err := fx.svc.UpdateSalary(context.Background(), UpdateSalaryInput{
			EmployeeID:    fx.employee.ID,
			NewSalary:     dec(step.salary),
			EffectiveDate: ptr(step.on),
		}); err != nil {
			t.Fatalf("UpdateSalary(%s) returned error: %v", step.salary, err)
		}
	}

	history, err := fx.svc.GetSalaryHistory(context.Background(), GetHistoryInput{EmployeeID: fx.employee.ID})
	if err != nil {
		t.Fatalf("GetSalaryHistory returned error: %v", err)
	}
	want := []string{"70000", "65000", "62000"}
	if len(history) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(history))
	}
	for i, w := range want {
		if !history[i].NewSalary.Equal(dec(w)) {
			t.Fatalf("record %d: expected %s, got %s", i, w, history[i].NewSalary)
		}
	}

	ranged, err := fx.svc.GetSalaryHistory(context.Background(), GetHistoryInput{
		EmployeeID: fx.employee.ID,
		StartDate:  ptr(date(2024, time.January, 1)),
		EndDate:    ptr(date(2024, time.June, 1)),
	})
	if err != nil {
		t.Fatalf("GetSalaryHistory returned error: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("expected inclusive range to return 2 records, got %d", len(ranged))
	}

	analytics, err := fx.svc.GetAnalytics(context.Background(), GetAnalyticsInput{EmployeeID: fx.employee.ID})
	if err != nil {
		t.Fatalf("GetAnalytics returned error: %v", err)
	}
	if analytics.TotalSalaryIncreases != 3 {
		t.Fatalf("expected 3 increases, got %d", analytics.TotalSalaryIncreases)
	}
	if analytics.SalaryGrowthPercentage != 16.67 {
		t.Fatalf("expected 16.67%% growth, got %v", analytics.SalaryGrowthPercentage)
	}
}

func TestService_GetSalaryHistory_Validation(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	_, err := fx.svc.GetSalaryHistory(context.Background(), GetHistoryInput{
		EmployeeID: fx.employee.ID,
		StartDate:  ptr(date(2024, time.June, 1)),
		EndDate:    ptr(date(2024, time.January, 1)),
	})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}

	if _, err := fx.svc.GetRoleHistory(context.Background(), GetHistoryInput{EmployeeID: uuid.NewString()}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_GetAnalytics_NoHistory(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	analytics, err := fx.svc.GetAnalytics(context.Background(), GetAnalyticsInput{EmployeeID: fx.employee.ID})
	if err != nil {
		t.Fatalf("GetAnalytics returned error: %v", err)
	}
	if analytics.SalaryGrowthPercentage != 0 || analytics.TotalPromotions != 0 {
		t.Fatalf("expected zero analytics, got %+v", analytics)
	}
}

func TestService_FindEmployeeByUser(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	emp, found, err := fx.svc.FindEmployeeByUser(context.Background(), fx.employee.UserID)
	if err != nil || !found || emp.ID != fx.employee.ID {
		t.Fatalf("expected employee for user, got %+v found=%v err=%v", emp, found, err)
	}

	emp, found, err = fx.svc.FindEmployeeByUser(context.Background(), uuid.NewString())
	if err != nil || found || emp != nil {
		t.Fatalf("expected no employee, got %+v found=%v err=%v", emp, found, err)
	}
}

func TestService_HireEmployee(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	hired, err := fx.svc.HireEmployee(context.Background(), HireEmployeeInput{
		UserID:    uuid.NewString(),
		FullName:  "  Bruno Diaz ",
		RoleID:    fx.developer.ID,
		Salary:    dec("45000.005"),
		ManagerID: &fx.employee.ID,
	})
	if err != nil {
		t.Fatalf("HireEmployee returned error: %v", err)
	}
	if hired.FullName != "Bruno Diaz" || hired.Seniority != SeniorityJunior {
		t.Fatalf("unexpected employee: %+v", hired)
	}
	if !hired.CurrentSalary.Equal(dec("45000.01")) {
		t.Fatalf("expected salary rounded to cents, got %s", hired.CurrentSalary)
	}
	if !hired.HireDate.Equal(date(2024, time.March, 10)) {
		t.Fatalf("expected hire date to default to today, got %v", hired.HireDate)
	}

	lead, err := fx.svc.GetEmployee(context.Background(), GetEmployeeInput{ID: fx.employee.ID})
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if !lead.IsTeamLead {
		t.Fatalf("expected manager to be derived as team lead")
	}

	if _, err := fx.svc.HireEmployee(context.Background(), HireEmployeeInput{
		UserID:   hired.UserID,
		FullName: "Duplicate",
		RoleID:   fx.developer.ID,
		Salary:   dec("1000"),
	}); !errors.Is(err, ErrUserAlreadyEmployed) {
		t.Fatalf("expected ErrUserAlreadyEmployed, got %v", err)
	}

	missingManager := uuid.NewString()
	if _, err := fx.svc.HireEmployee(context.Background(), HireEmployeeInput{
		UserID:    uuid.NewString(),
		FullName:  "Carla",
		RoleID:    fx.developer.ID,
		Salary:    dec("1000"),
		ManagerID: &missingManager,
	}); !errors.Is(err, ErrManagerNotFound) {
		t.Fatalf("expected ErrManagerNotFound, got %v", err)
	}

	if _, err := fx.svc.HireEmployee(context.Background(), HireEmployeeInput{
		UserID:   uuid.NewString(),
		FullName: "Dario",
		RoleID:   fx.developer.ID,
		Salary:   dec("100000000.00"),
	}); !errors.Is(err, ErrSalaryOutOfRange) || !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrSalaryOutOfRange, got %v", err)
	}

	top, err := fx.svc.HireEmployee(context.Background(), HireEmployeeInput{
		UserID:   uuid.NewString(),
		FullName: "Elena",
		RoleID:   fx.developer.ID,
		Salary:   MaxSalary,
	})
	if err != nil {
		t.Fatalf("expected salary at the column limit to be accepted, got %v", err)
	}
	if !top.CurrentSalary.Equal(dec("99999999.99")) {
		t.Fatalf("unexpected salary %s", top.CurrentSalary)
	}
}

func TestService_TerminateEmployee(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()

	if _, err := fx.svc.TerminateEmployee(context.Background(), TerminateEmployeeInput{
		ID:              fx.employee.ID,
		TerminationDate: ptr(date(2022, time.December, 1)),
	}); !errors.Is(err, ErrTerminationBeforeHire) {
		t.Fatalf("expected ErrTerminationBeforeHire, got %v", err)
	}

	terminated, err := fx.svc.TerminateEmployee(context.Background(), TerminateEmployeeInput{ID: fx.employee.ID})
	if err != nil {
		t.Fatalf("TerminateEmployee returned error: %v", err)
	}
	if terminated.IsActive() {
		t.Fatalf("expected employee to be inactive")
	}

	active, err := fx.svc.ListEmployees(context.Background(), ListEmployeesInput{ActiveOnly: true})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(active.Employees) != 0 {
		t.Fatalf("expected no active employees, got %d", len(active.Employees))
	}
}

func TestService_ListWithoutRecentRaises(t *testing.T) {
	t.Parallel()

	fx := newSalaryFixture()
	other := fx.store.addEmployee("Bruno Diaz", fx.developer, SeniorityMid, "50000", date(2020, time.May, 1))

	if _, err := fx.svc.UpdateSalary(context.Background(), UpdateSalaryInput{
		EmployeeID:    other.ID,
		NewSalary:     dec("52000"),
		EffectiveDate: ptr(date(2024, time.February, 1)),
	}); err != nil {
		t.Fatalf("UpdateSalary returned error: %v", err)
	}

	stale, err := fx.svc.ListWithoutRecentRaises(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListWithoutRecentRaises returned error: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != fx.employee.ID {
		t.Fatalf("expected only the employee without raises, got %+v", stale)
	}
}

func TestService_ListEmployees_InvalidPaging(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeStore(), time.Now())

	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageToken: "abc"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
