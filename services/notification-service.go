package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/KBRRM/create-class/logging"
	"github.com/KBRRM/create-class/models"
)

// NotificationStore persists notification content.
type NotificationStore interface {
	InsertNotification(ctx context.Context, notification *models.Notification) error
	FindNotificationsByIDs(ctx context.Context, ids []string) ([]models.Notification, error)
}

// RecipientLedger persists one delivery row per (notification, recipient).
type RecipientLedger interface {
	InsertRecipient(ctx context.Context, recipient *models.NotificationRecipient) error
	FindRecipientsByUser(ctx context.Context, userID string) ([]models.NotificationRecipient, error)
	UpdateRecipientStatus(ctx context.Context, notificationID, userID string, status models.RecipientStatus, readAt *time.Time) error
}

// CallerResolver turns an authenticated caller id into a stored user.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, callerID string) (*models.User, error)
}

type NotificationService struct {
	notifications NotificationStore
	recipients    RecipientLedger
	callers       CallerResolver
	now           func() time.Time
}

func NewNotificationService(notifications NotificationStore, recipients RecipientLedger, callers CallerResolver) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		recipients:    recipients,
		callers:       callers,
		now:           storedNow,
	}
}

// storedNow returns the current time rounded up to the millisecond, the
// precision Mongo and Cassandra keep, so a stored time never reads back
// earlier than the moment it was taken.
func storedNow() time.Time {
	now := time.Now().UTC()
	if rounded := now.Truncate(time.Millisecond); !rounded.Equal(now) {
		return rounded.Add(time.Millisecond)
	}
	return now
}

// CreateNotification stores the notification and then one "sent" row per entry
// of recipientIDs, in order. The writes are not transactional: when a row fails
// the notification and the rows already written are kept.
func (ns *NotificationService) CreateNotification(ctx context.Context, callerID, notificationType, title, message string, recipientIDs []string) (string, error) {
	if _, err := ns.callers.ResolveCaller(ctx, callerID); err != nil {
		var authErr AuthorizationError
		if errors.As(err, &authErr) {
			return "", NewAuthorizationError("User not authorized to create notifications")
		}
		return "", err
	}

	notification := &models.Notification{
		Type:      notificationType,
		Title:     title,
		Message:   message,
		CreatedAt: ns.now(),
	}
	if err := ns.notifications.InsertNotification(ctx, notification); err != nil {
		return "", err
	}

	for i, userID := range recipientIDs {
		row := &models.NotificationRecipient{
			NotificationID: notification.ID,
			UserID:         userID,
			Status:         models.StatusSent,
		}
		if err := ns.recipients.InsertRecipient(ctx, row); err != nil {
			logging.Logger.Warnf("Event ID: NOTIFICATION_FANOUT_PARTIAL, Description: Notification %s stored with %d of %d recipients: %v",
				notification.ID, i, len(recipientIDs), err)
			return "", err
		}
	}

	return notification.ID, nil
}

// GetNotificationsForUser returns the target user's notifications, newest first.
// Only the user themself may read them, and an empty result is a NotFoundError.
func (ns *NotificationService) GetNotificationsForUser(ctx context.Context, callerID, targetUserID string) ([]models.NotificationView, error) {
	if callerID == "" || callerID != targetUserID {
		return nil, NewAuthorizationError("User not authorized to access these notifications")
	}

	rows, err := ns.recipients.FindRecipientsByUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.NotificationID)
	}
	notifications, err := ns.notifications.FindNotificationsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Notification, len(notifications))
	for _, n := range notifications {
		byID[n.ID] = n
	}

	views := make([]models.NotificationView, 0, len(rows))
	for _, row := range rows {
		n, ok := byID[row.NotificationID]
		if !ok {
			logging.Logger.Warnf("Event ID: NOTIFICATION_ROW_ORPHANED, Description: Recipient row %s references missing notification %s",
				row.ID, row.NotificationID)
			continue
		}
		views = append(views, models.NotificationView{
			NotificationID: n.ID,
			Title:          n.Title,
			Message:        n.Message,
			Status:         row.Status,
			CreatedAt:      n.CreatedAt,
			ReadAt:         row.ReadAt,
		})
	}

	if len(views) == 0 {
		return nil, NewNotFoundError("No notifications found for this user")
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

// UpdateNotificationStatus sets the status of the target user's row for the
// notification. Moving to "read" stamps readAt; any other status clears it.
// If no row matches, nothing changes and no error is returned.
func (ns *NotificationService) UpdateNotificationStatus(ctx context.Context, callerID, notificationID, targetUserID string, status models.RecipientStatus) error {
	if callerID == "" || callerID != targetUserID {
		return NewAuthorizationError("User not authorized to update this notification")
	}
	if !status.Valid() {
		return NewValidationError("invalid notification status %q", status)
	}

	var readAt *time.Time
	if status == models.StatusRead {
		t := ns.now()
		readAt = &t
	}

	if err := ns.recipients.UpdateRecipientStatus(ctx, notificationID, targetUserID, status, readAt); err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	return nil
}
