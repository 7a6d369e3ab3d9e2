package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/KBRRM/create-class/logging"
	"github.com/KBRRM/create-class/models"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
)

// CassandraNotificationRepo keeps both notification content and the recipient
// ledger in Cassandra. It satisfies the same contracts as the Mongo repositories.
type CassandraNotificationRepo struct {
	session *gocql.Session
}

// NewCassandraNotificationRepo connects to the cluster, creating the keyspace if needed.
func NewCassandraNotificationRepo(hosts []string, keyspace string) (*CassandraNotificationRepo, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to cassandra")
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create keyspace")
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s keyspace", keyspace)
	}

	logging.Logger.Infof("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra keyspace %s.", keyspace)
	return &CassandraNotificationRepo{session: session}, nil
}

func (cr *CassandraNotificationRepo) CloseSession() {
	cr.session.Close()
	logging.Logger.Info("Event ID: CASSANDRA_CLOSED, Description: Cassandra session closed.")
}

// CreateTables creates the notification and recipient tables if they do not exist.
// Recipient rows are partitioned by user so the read path hits a single partition;
// row_id lets the same user appear twice for one notification.
func (cr *CassandraNotificationRepo) CreateTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			type TEXT,
			title TEXT,
			message TEXT,
			created_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS notification_recipients (
			user_id TEXT,
			notification_id TEXT,
			row_id TIMEUUID,
			status TEXT,
			read_at TIMESTAMP,
			PRIMARY KEY ((user_id), notification_id, row_id)
		) WITH CLUSTERING ORDER BY (notification_id ASC, row_id ASC)`,
	}
	for _, stmt := range statements {
		if err := cr.session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return errors.Wrap(err, "failed to create notification tables")
		}
	}
	return nil
}

func (cr *CassandraNotificationRepo) InsertNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}

	err := cr.session.Query(
		`INSERT INTO notifications (id, type, title, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		notification.ID, notification.Type, notification.Title, notification.Message, notification.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return errors.Wrap(err, "failed to insert notification")
	}
	return nil
}

func (cr *CassandraNotificationRepo) FindNotificationsByIDs(ctx context.Context, ids []string) ([]models.Notification, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	iter := cr.session.Query(
		`SELECT id, type, title, message, created_at FROM notifications WHERE id IN ?`, ids,
	).WithContext(ctx).Iter()

	var notifications []models.Notification
	var n models.Notification
	for iter.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.CreatedAt) {
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to find notifications")
	}
	return notifications, nil
}

func (cr *CassandraNotificationRepo) InsertRecipient(ctx context.Context, recipient *models.NotificationRecipient) error {
	rowID := gocql.TimeUUID()
	if recipient.ID == "" {
		recipient.ID = rowID.String()
	} else if parsed, err := gocql.ParseUUID(recipient.ID); err == nil {
		rowID = parsed
	}

	err := cr.session.Query(
		`INSERT INTO notification_recipients (user_id, notification_id, row_id, status, read_at) VALUES (?, ?, ?, ?, ?)`,
		recipient.UserID, recipient.NotificationID, rowID, string(recipient.Status), recipient.ReadAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return errors.Wrapf(err, "failed to insert recipient %s", recipient.UserID)
	}
	return nil
}

func (cr *CassandraNotificationRepo) FindRecipientsByUser(ctx context.Context, userID string) ([]models.NotificationRecipient, error) {
	iter := cr.session.Query(
		`SELECT notification_id, row_id, status, read_at FROM notification_recipients WHERE user_id = ?`, userID,
	).WithContext(ctx).Iter()

	var rows []models.NotificationRecipient
	var (
		notificationID string
		rowID          gocql.UUID
		status         string
		readAt         time.Time
	)
	for iter.Scan(&notificationID, &rowID, &status, &readAt) {
		rows = append(rows, recipientFromRow(userID, notificationID, rowID, status, readAt))
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to find recipient rows")
	}
	return rows, nil
}

// recipientFromRow maps a scanned notification_recipients row. A null read_at
// scans as the zero time and maps to a nil ReadAt.
func recipientFromRow(userID, notificationID string, rowID gocql.UUID, status string, readAt time.Time) models.NotificationRecipient {
	row := models.NotificationRecipient{
		ID:             rowID.String(),
		NotificationID: notificationID,
		UserID:         userID,
		Status:         models.RecipientStatus(status),
	}
	if !readAt.IsZero() {
		t := readAt.UTC()
		row.ReadAt = &t
	}
	return row
}

// UpdateRecipientStatus updates the first row for (notificationID, userID), if any.
func (cr *CassandraNotificationRepo) UpdateRecipientStatus(ctx context.Context, notificationID, userID string, status models.RecipientStatus, readAt *time.Time) error {
	var rowID gocql.UUID
	err := cr.session.Query(
		`SELECT row_id FROM notification_recipients WHERE user_id = ? AND notification_id = ? LIMIT 1`,
		userID, notificationID,
	).WithContext(ctx).Scan(&rowID)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to look up recipient row")
	}

	err = cr.session.Query(
		`UPDATE notification_recipients SET status = ?, read_at = ? WHERE user_id = ? AND notification_id = ? AND row_id = ?`,
		string(status), readAt, userID, notificationID, rowID,
	).WithContext(ctx).Exec()
	if err != nil {
		return errors.Wrap(err, "failed to update recipient status")
	}
	return nil
}
