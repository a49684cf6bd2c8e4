package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare/booking-api/internal/model"
	"github.com/smilecare/booking-api/internal/service/audit"
	"github.com/smilecare/booking-api/pkg/clock"
	apperrors "github.com/smilecare/booking-api/pkg/errors"
	"github.com/smilecare/booking-api/pkg/logger"
)

type noopLogRepo struct{}

func (noopLogRepo) Create(context.Context, *model.SystemLog) error { return nil }

type noopOutboxRepo struct{}

func (noopOutboxRepo) Create(context.Context, *model.OutboxEvent) error { return nil }

func (noopOutboxRepo) GetPendingEvents(context.Context, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (noopOutboxRepo) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string) error {
	return nil
}

func (noopOutboxRepo) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type stubUsage struct {
	peak int
}

func (s stubUsage) PeakConcurrentUsage(context.Context, string) (int, error) {
	return s.peak, nil
}

var adminNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func newAdminService(repo *fakeScheduleRepo, peak int) *Service {
	auditor := audit.NewService(noopLogRepo{}, noopOutboxRepo{}, logger.NewLogger(nil))
	return NewService(repo, NewResolver(repo), stubUsage{peak: peak}, auditor, clock.Fixed{T: adminNow}, 7, 14)
}

func boolPtr(b bool) *bool { return &b }

func TestUpdateWeeklyOpenDay(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.weekly[1] = &model.WeeklyScheduleEntry{Weekday: 1}
	svc := newAdminService(repo, 0)

	entry, err := svc.UpdateWeekly(context.Background(), nil, 1, &model.UpdateWeeklyScheduleRequest{
		IsOpen:       boolPtr(true),
		OpenTime:     strPtr("08:00"),
		CloseTime:    strPtr("17:00"),
		DentistCount: intPtr(3),
		MaxPerSlot:   intPtr(2),
	})
	require.NoError(t, err)
	assert.True(t, entry.IsOpen)
	require.NotNil(t, entry.MaxPerSlot)
	assert.Equal(t, 2, *entry.MaxPerSlot)
}

func TestUpdateWeeklyClosedDayClearsCap(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.weekly[2] = openWeekday(2, "08:00", "17:00", 3, 2)
	svc := newAdminService(repo, 0)

	entry, err := svc.UpdateWeekly(context.Background(), nil, 2, &model.UpdateWeeklyScheduleRequest{
		IsOpen:       boolPtr(false),
		DentistCount: intPtr(0),
	})
	require.NoError(t, err)
	assert.False(t, entry.IsOpen)
	assert.Nil(t, entry.MaxPerSlot)
}

func TestUpdateWeeklyCapCannotExceedDentists(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.weekly[1] = &model.WeeklyScheduleEntry{Weekday: 1}
	svc := newAdminService(repo, 0)

	_, err := svc.UpdateWeekly(context.Background(), nil, 1, &model.UpdateWeeklyScheduleRequest{
		IsOpen:       boolPtr(true),
		OpenTime:     strPtr("08:00"),
		CloseTime:    strPtr("17:00"),
		DentistCount: intPtr(2),
		MaxPerSlot:   intPtr(5),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestUpdateWeeklyRejectsInvertedHours(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.weekly[1] = &model.WeeklyScheduleEntry{Weekday: 1}
	svc := newAdminService(repo, 0)

	_, err := svc.UpdateWeekly(context.Background(), nil, 1, &model.UpdateWeeklyScheduleRequest{
		IsOpen:       boolPtr(true),
		OpenTime:     strPtr("17:00"),
		CloseTime:    strPtr("08:00"),
		DentistCount: intPtr(2),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestCreateOverrideReplacesGeneratedRow(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.overrides[monday] = &model.CalendarOverride{
		ID: 1, Date: monday, IsOpen: true, IsGenerated: true, MaxPerBlockOverride: intPtr(2),
	}
	svc := newAdminService(repo, 0)

	created, err := svc.CreateOverride(context.Background(), nil, &model.CreateCalendarOverrideRequest{
		Date:   monday,
		IsOpen: boolPtr(false),
		Note:   strPtr("holiday"),
	})
	require.NoError(t, err)
	assert.False(t, created.IsGenerated)
	assert.False(t, created.IsOpen)

	stored := repo.overrides[monday]
	assert.False(t, stored.IsGenerated, "generated row is replaced, not kept")
}

func TestCreateOverrideRejectsDuplicateHumanRow(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.overrides[monday] = &model.CalendarOverride{ID: 1, Date: monday, IsOpen: false}
	svc := newAdminService(repo, 0)

	_, err := svc.CreateOverride(context.Background(), nil, &model.CreateCalendarOverrideRequest{
		Date:   monday,
		IsOpen: boolPtr(false),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestUpdateOverrideNeverTouchesGeneratedRows(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.overrides[monday] = &model.CalendarOverride{
		ID: 1, Date: monday, IsOpen: true, IsGenerated: true,
	}
	svc := newAdminService(repo, 0)

	_, err := svc.UpdateOverride(context.Background(), nil, 1, &model.UpdateCalendarOverrideRequest{
		IsOpen: boolPtr(false),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	err = svc.DeleteOverride(context.Background(), nil, 1)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpsertCapacityWindow(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newAdminService(repo, 0)
	req := &model.UpsertCapacityRequest{MaxParallel: intPtr(2)}

	// Today through day 13 are editable.
	_, err := svc.UpsertCapacity(context.Background(), nil, "2025-06-15", req)
	assert.NoError(t, err)
	_, err = svc.UpsertCapacity(context.Background(), nil, "2025-06-28", req)
	assert.NoError(t, err)

	_, err = svc.UpsertCapacity(context.Background(), nil, "2025-06-14", req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	_, err = svc.UpsertCapacity(context.Background(), nil, "2025-06-29", req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestUpsertCapacityWindowIndependentOfClockZone(t *testing.T) {
	zones := []*time.Location{
		time.FixedZone("UTC-5", -5*60*60),
		time.FixedZone("UTC+9", 9*60*60),
	}
	for _, loc := range zones {
		repo := newFakeScheduleRepo()
		svc := newAdminService(repo, 0)
		svc.clock = clock.Fixed{T: adminNow.In(loc)}
		req := &model.UpsertCapacityRequest{MaxParallel: intPtr(2)}

		_, err := svc.UpsertCapacity(context.Background(), nil, "2025-06-15", req)
		assert.NoError(t, err, "today is editable with clock in %s", loc)
		_, err = svc.UpsertCapacity(context.Background(), nil, "2025-06-28", req)
		assert.NoError(t, err, "window end is editable with clock in %s", loc)

		_, err = svc.UpsertCapacity(context.Background(), nil, "2025-06-29", req)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	}
}

func TestUpsertCapacitySkipsHumanOverride(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.overrides["2025-06-16"] = &model.CalendarOverride{
		ID: 1, Date: "2025-06-16", IsOpen: false,
	}
	svc := newAdminService(repo, 0)

	warning, err := svc.UpsertCapacity(context.Background(), nil, "2025-06-16", &model.UpsertCapacityRequest{MaxParallel: intPtr(2)})
	require.NoError(t, err)
	assert.NotEmpty(t, warning)
	assert.False(t, repo.overrides["2025-06-16"].IsGenerated, "human row untouched")
	assert.Nil(t, repo.overrides["2025-06-16"].MaxPerBlockOverride)
}

func TestUpsertCapacityWarnsWhenBelowPeak(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newAdminService(repo, 3)

	warning, err := svc.UpsertCapacity(context.Background(), nil, "2025-06-16", &model.UpsertCapacityRequest{MaxParallel: intPtr(1)})
	require.NoError(t, err)
	assert.Contains(t, warning, "no cancellations")

	stored := repo.overrides["2025-06-16"]
	require.NotNil(t, stored)
	assert.True(t, stored.IsGenerated)
	require.NotNil(t, stored.MaxPerBlockOverride)
	assert.Equal(t, 1, *stored.MaxPerBlockOverride)
}

func TestPreviewMarksPatientWindow(t *testing.T) {
	repo := newFakeScheduleRepo()
	for wd := 0; wd <= 6; wd++ {
		repo.weekly[wd] = openWeekday(wd, "08:00", "17:00", 2, 2)
	}
	svc := newAdminService(repo, 0)

	days, err := svc.Preview(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, days, 14)

	assert.False(t, days[0].BookableForPatients, "today is excluded")
	assert.True(t, days[1].BookableForPatients)
	assert.True(t, days[7].BookableForPatients)
	assert.False(t, days[8].BookableForPatients, "beyond the window")
	assert.Equal(t, "2025-06-15", days[0].Date)
}

func TestDailyCapacityView(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.weekly[1] = openWeekday(1, "08:00", "17:00", 3, 3)
	repo.overrides[monday] = &model.CalendarOverride{
		ID: 1, Date: monday, IsOpen: true, IsGenerated: true, MaxPerBlockOverride: intPtr(2),
	}
	svc := newAdminService(repo, 0)

	rows, err := svc.Daily(context.Background(), monday, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, monday, rows[0].Date)
	assert.False(t, rows[0].IsClosed)
	assert.Equal(t, 2, rows[0].ActiveDentists)
	require.NotNil(t, rows[0].MaxParallel)
	assert.Equal(t, 2, *rows[0].MaxParallel)

	assert.Equal(t, tuesday, rows[1].Date)
	assert.True(t, rows[1].IsClosed)
}
