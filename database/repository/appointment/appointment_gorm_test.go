package appointmentRepo

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"gobarber/database"
	"gobarber/database/repository"
	"gobarber/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQL("sqlite", filepath.Join(t.TempDir(), "appointments.db"), false)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUsers(t *testing.T, db *gorm.DB) (requester, provider models.User) {
	t.Helper()
	avatar := models.File{Name: "face.png", Path: "abc123.png"}
	if err := db.Create(&avatar).Error; err != nil {
		t.Fatalf("seed avatar: %v", err)
	}
	requester = models.User{Name: "Diego", Email: "diego@example.com"}
	provider = models.User{Name: "Carla", Email: "carla@example.com", Provider: true, AvatarID: &avatar.ID}
	if err := db.Create(&requester).Error; err != nil {
		t.Fatalf("seed requester: %v", err)
	}
	if err := db.Create(&provider).Error; err != nil {
		t.Fatalf("seed provider: %v", err)
	}
	return requester, provider
}

var slot = time.Date(2030, 1, 10, 15, 0, 0, 0, time.UTC)

func TestCreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAppointmentRepo(db)
	requester, provider := seedUsers(t, db)
	ctx := context.Background()

	appt := &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: slot}
	if err := repo.Create(ctx, appt); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if appt.ID == 0 {
		t.Fatal("Create did not assign an id")
	}

	got, err := repo.FindByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil || !got.Date.Equal(slot) {
		t.Fatalf("FindByID = %+v, want date %s", got, slot)
	}
	if got.Provider == nil || got.Provider.Email != "carla@example.com" {
		t.Errorf("provider contact not loaded: %+v", got.Provider)
	}
	if got.User == nil || got.User.Name != "Diego" {
		t.Errorf("requester contact not loaded: %+v", got.User)
	}

	missing, err := repo.FindByID(ctx, appt.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("FindByID(missing) = %+v, %v; want nil, nil", missing, err)
	}
}

func TestSlotUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAppointmentRepo(db)
	requester, provider := seedUsers(t, db)
	ctx := context.Background()

	first := &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: slot}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.CountActiveAt(ctx, provider.ID, slot)
	if err != nil || n != 1 {
		t.Fatalf("CountActiveAt = %d, %v; want 1", n, err)
	}

	dup := &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: slot}
	if err := repo.Create(ctx, dup); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("duplicate Create error = %v, want ErrConflict", err)
	}

	// Canceling frees the slot for a new booking.
	now := time.Now().UTC()
	first.CanceledAt = &now
	if err := repo.MarkCanceled(ctx, first); err != nil {
		t.Fatalf("MarkCanceled: %v", err)
	}
	n, err = repo.CountActiveAt(ctx, provider.ID, slot)
	if err != nil || n != 0 {
		t.Fatalf("CountActiveAt after cancel = %d, %v; want 0", n, err)
	}
	rebook := &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: slot}
	if err := repo.Create(ctx, rebook); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAppointmentRepo(db)
	requester, provider := seedUsers(t, db)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(context.Background(), &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: slot})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, repository.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != attempts-1 {
		t.Fatalf("wins = %d, conflicts = %d; want 1 and %d", wins, conflicts, attempts-1)
	}
}

func TestMarkCanceledOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAppointmentRepo(db)
	requester, provider := seedUsers(t, db)
	ctx := context.Background()

	appt := &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: slot}
	if err := repo.Create(ctx, appt); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now := time.Now().UTC()
	a1 := &models.Appointment{ID: appt.ID, CanceledAt: &now}
	a2 := &models.Appointment{ID: appt.ID, CanceledAt: &now}
	if err := repo.MarkCanceled(ctx, a1); err != nil {
		t.Fatalf("first MarkCanceled: %v", err)
	}
	if err := repo.MarkCanceled(ctx, a2); !errors.Is(err, repository.ErrStale) {
		t.Fatalf("second MarkCanceled error = %v, want ErrStale", err)
	}

	got, err := repo.FindByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.CanceledAt == nil {
		t.Fatal("canceled_at not persisted")
	}
	if !got.Date.Equal(slot) {
		t.Errorf("cancel moved the slot: %s", got.Date)
	}
}

func TestListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAppointmentRepo(db)
	requester, provider := seedUsers(t, db)
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		a := &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: slot.Add(time.Duration(i) * time.Hour)}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := repo.ListByUser(ctx, requester.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	if !page[0].Date.Equal(slot) || !page[1].Date.Equal(slot.Add(time.Hour)) {
		t.Errorf("not ordered by date: %s, %s", page[0].Date, page[1].Date)
	}
	if page[0].Provider == nil || page[0].Provider.Name != "Carla" {
		t.Fatalf("provider summary missing: %+v", page[0].Provider)
	}
	if page[0].Provider.Avatar == nil || page[0].Provider.Avatar.Path != "abc123.png" {
		t.Errorf("provider avatar missing: %+v", page[0].Provider.Avatar)
	}

	rest, err := repo.ListByUser(ctx, requester.ID, 2, 2)
	if err != nil || len(rest) != 1 {
		t.Fatalf("second page = %d items, %v; want 1", len(rest), err)
	}

	none, err := repo.ListByUser(ctx, provider.ID, 10, 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("provider's own list = %d items, %v; want 0", len(none), err)
	}
}

func TestListByProviderBetween(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAppointmentRepo(db)
	requester, provider := seedUsers(t, db)
	ctx := context.Background()

	dates := []time.Time{
		slot.Add(-24 * time.Hour),
		slot.Add(2 * time.Hour),
		slot,
		slot.Add(24 * time.Hour),
	}
	var canceled *models.Appointment
	for _, d := range dates {
		a := &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: d}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if d.Equal(slot.Add(2 * time.Hour)) {
			canceled = a
		}
	}
	now := time.Now().UTC()
	canceled.CanceledAt = &now
	if err := repo.MarkCanceled(ctx, canceled); err != nil {
		t.Fatalf("MarkCanceled: %v", err)
	}
	extra := &models.Appointment{UserID: requester.ID, ProviderID: provider.ID, Date: slot.Add(3 * time.Hour)}
	if err := repo.Create(ctx, extra); err != nil {
		t.Fatalf("Create: %v", err)
	}

	from := time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	got, err := repo.ListByProviderBetween(ctx, provider.ID, from, to)
	if err != nil {
		t.Fatalf("ListByProviderBetween: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d appointments, want 2", len(got))
	}
	if !got[0].Date.Equal(slot) || !got[1].Date.Equal(slot.Add(3*time.Hour)) {
		t.Errorf("unexpected dates %s, %s", got[0].Date, got[1].Date)
	}
	if got[0].User == nil || got[0].User.Name != "Diego" {
		t.Errorf("requester summary missing: %+v", got[0].User)
	}
}
