package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KBRRM/create-class/models"
	"github.com/KBRRM/create-class/repositories"
	"github.com/KBRRM/create-class/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(users UserStore) *AuthService {
	return NewAuthService(users, utils.NewTokenManager("test-secret", time.Hour), NewUsersBreaker(time.Second))
}

// seedUser stores a user and returns its id.
func seedUser(t *testing.T, users *repositories.MemoryUserRepo, email string) string {
	t.Helper()
	u := &models.User{Name: email, Email: email, Role: models.RoleUser}
	require.NoError(t, users.InsertUser(context.Background(), u))
	return u.ID.Hex()
}

type notificationFixture struct {
	service *NotificationService
	store   *repositories.MemoryNotificationRepo
	u1, u2  string
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	users := repositories.NewMemoryUserRepo()
	store := repositories.NewMemoryNotificationRepo()
	f := &notificationFixture{
		service: NewNotificationService(store, store, newTestAuthService(users)),
		store:   store,
		u1:      seedUser(t, users, "u1@example.com"),
		u2:      seedUser(t, users, "u2@example.com"),
	}
	return f
}

func TestCreateNotificationFansOutSentRows(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNotification(ctx, f.u1, "promo", "Sale", "50% off", []string{f.u1, f.u2})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	for _, user := range []string{f.u1, f.u2} {
		views, err := f.service.GetNotificationsForUser(ctx, user, user)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, id, views[0].NotificationID)
		assert.Equal(t, "Sale", views[0].Title)
		assert.Equal(t, "50% off", views[0].Message)
		assert.Equal(t, models.StatusSent, views[0].Status)
		assert.Nil(t, views[0].ReadAt)
	}
}

func TestCreateNotificationUnknownCaller(t *testing.T) {
	f := newNotificationFixture(t)

	_, err := f.service.CreateNotification(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f6", "promo", "t", "m", []string{f.u1})

	var authErr AuthorizationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "User not authorized to create notifications", err.Error())
}

func TestCreateNotificationWithoutRecipients(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNotification(ctx, f.u1, "promo", "Orphan", "nobody", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.CountRecipients(id))

	_, err = f.service.GetNotificationsForUser(ctx, f.u1, f.u1)
	var notFound NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestCreateNotificationKeepsDuplicateRecipients(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNotification(ctx, f.u1, "promo", "Twice", "m", []string{f.u2, f.u2, f.u1})
	require.NoError(t, err)
	assert.Equal(t, 3, f.store.CountRecipients(id))

	views, err := f.service.GetNotificationsForUser(ctx, f.u2, f.u2)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

type failingLedger struct {
	*repositories.MemoryNotificationRepo
	failAfter int
	inserted  int
}

func (l *failingLedger) InsertRecipient(ctx context.Context, r *models.NotificationRecipient) error {
	if l.inserted == l.failAfter {
		return errors.New("write failed")
	}
	l.inserted++
	return l.MemoryNotificationRepo.InsertRecipient(ctx, r)
}

func TestCreateNotificationPartialFanOutIsNotRolledBack(t *testing.T) {
	users := repositories.NewMemoryUserRepo()
	caller := seedUser(t, users, "caller@example.com")
	store := repositories.NewMemoryNotificationRepo()
	ledger := &failingLedger{MemoryNotificationRepo: store, failAfter: 1}
	service := NewNotificationService(store, ledger, newTestAuthService(users))
	ctx := context.Background()

	_, err := service.CreateNotification(ctx, caller, "promo", "Partial", "m", []string{caller, "u2", "u3"})
	require.Error(t, err)

	views, err := service.GetNotificationsForUser(ctx, caller, caller)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Partial", views[0].Title)
}

func TestGetNotificationsForUserRequiresSameCaller(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()
	_, err := f.service.CreateNotification(ctx, f.u1, "promo", "t", "m", []string{f.u1, f.u2})
	require.NoError(t, err)

	for _, caller := range []string{f.u2, "", "someone-else"} {
		_, err := f.service.GetNotificationsForUser(ctx, caller, f.u1)
		var authErr AuthorizationError
		assert.True(t, errors.As(err, &authErr), "caller %q", caller)
	}
}

func TestGetNotificationsForUserSortsNewestFirst(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	f.service.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := f.service.CreateNotification(ctx, f.u1, "t", "first", "m", []string{f.u2})
	require.NoError(t, err)
	second, err := f.service.CreateNotification(ctx, f.u1, "t", "second", "m", []string{f.u2})
	require.NoError(t, err)
	third, err := f.service.CreateNotification(ctx, f.u1, "t", "third", "m", []string{f.u2})
	require.NoError(t, err)

	views, err := f.service.GetNotificationsForUser(ctx, f.u2, f.u2)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []string{third, second, first},
		[]string{views[0].NotificationID, views[1].NotificationID, views[2].NotificationID})
}

func TestGetNotificationsForUserWithNoRows(t *testing.T) {
	f := newNotificationFixture(t)

	views, err := f.service.GetNotificationsForUser(context.Background(), f.u2, f.u2)
	assert.Nil(t, views)
	var notFound NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "No notifications found for this user", err.Error())
}

func TestUpdateNotificationStatusMarksRead(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNotification(ctx, f.u1, "promo", "Sale", "50% off", []string{f.u1, f.u2})
	require.NoError(t, err)

	before := time.Now().UTC()
	require.NoError(t, f.service.UpdateNotificationStatus(ctx, f.u2, id, f.u2, models.StatusRead))

	views, err := f.service.GetNotificationsForUser(ctx, f.u2, f.u2)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.StatusRead, views[0].Status)
	require.NotNil(t, views[0].ReadAt)
	assert.False(t, views[0].ReadAt.Before(before))
	assert.True(t, views[0].ReadAt.Equal(views[0].ReadAt.Truncate(time.Millisecond)))

	// The other recipient is untouched.
	views, err = f.service.GetNotificationsForUser(ctx, f.u1, f.u1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, views[0].Status)
	assert.Nil(t, views[0].ReadAt)
}

func TestUpdateNotificationStatusBackToSentClearsReadAt(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNotification(ctx, f.u1, "promo", "Sale", "m", []string{f.u2})
	require.NoError(t, err)
	require.NoError(t, f.service.UpdateNotificationStatus(ctx, f.u2, id, f.u2, models.StatusRead))
	require.NoError(t, f.service.UpdateNotificationStatus(ctx, f.u2, id, f.u2, models.StatusSent))

	views, err := f.service.GetNotificationsForUser(ctx, f.u2, f.u2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, views[0].Status)
	assert.Nil(t, views[0].ReadAt)
}

func TestUpdateNotificationStatusWithoutMatchingRowSucceeds(t *testing.T) {
	f := newNotificationFixture(t)

	err := f.service.UpdateNotificationStatus(context.Background(), f.u2, "does-not-exist", f.u2, models.StatusRead)
	assert.NoError(t, err)
}

func TestUpdateNotificationStatusRejects(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	err := f.service.UpdateNotificationStatus(ctx, f.u1, "n1", f.u2, models.StatusRead)
	var authErr AuthorizationError
	assert.True(t, errors.As(err, &authErr))

	err = f.service.UpdateNotificationStatus(ctx, f.u2, "n1", f.u2, models.RecipientStatus("archived"))
	var validationErr ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestScenarioPromoNotification(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNotification(ctx, f.u1, "promo", "Sale", "50% off", []string{f.u1, f.u2})
	require.NoError(t, err)

	views, err := f.service.GetNotificationsForUser(ctx, f.u1, f.u1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.NotificationView{
		NotificationID: id,
		Title:          "Sale",
		Message:        "50% off",
		Status:         models.StatusSent,
		CreatedAt:      views[0].CreatedAt,
	}, views[0])
}

func TestStoredNowIsMillisecondAlignedAndNotEarlier(t *testing.T) {
	for i := 0; i < 100; i++ {
		before := time.Now().UTC()
		got := storedNow()
		assert.False(t, got.Before(before))
		assert.True(t, got.Equal(got.Truncate(time.Millisecond)))
	}
}
