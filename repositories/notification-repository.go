package repositories

import (
	"context"
	"time"

	"github.com/KBRRM/create-class/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	NotificationsCollection = "notifications"
	RecipientsCollection    = "notification_recipients"
)

// NotificationRepo stores notification content in MongoDB.
type NotificationRepo struct {
	collection *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) *NotificationRepo {
	return &NotificationRepo{collection: db.Collection(NotificationsCollection)}
}

func (nr *NotificationRepo) InsertNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = primitive.NewObjectID().Hex()
	}
	if _, err := nr.collection.InsertOne(ctx, notification); err != nil {
		return errors.Wrap(err, "failed to insert notification")
	}
	return nil
}

func (nr *NotificationRepo) FindNotificationsByIDs(ctx context.Context, ids []string) ([]models.Notification, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := nr.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find notifications")
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, errors.Wrap(err, "failed to decode notifications")
	}
	return notifications, nil
}

// RecipientRepo is the MongoDB ledger of per-recipient notification state.
type RecipientRepo struct {
	collection *mongo.Collection
}

func NewRecipientRepo(db *mongo.Database) *RecipientRepo {
	return &RecipientRepo{collection: db.Collection(RecipientsCollection)}
}

// EnsureIndexes creates the lookup indexes used by the read and update paths.
// The compound index is deliberately not unique: a recipient listed twice gets two rows.
func (rr *RecipientRepo) EnsureIndexes(ctx context.Context) error {
	_, err := rr.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "notificationId", Value: 1}, {Key: "userId", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create recipient indexes")
	}
	return nil
}

func (rr *RecipientRepo) InsertRecipient(ctx context.Context, recipient *models.NotificationRecipient) error {
	if recipient.ID == "" {
		recipient.ID = primitive.NewObjectID().Hex()
	}
	if _, err := rr.collection.InsertOne(ctx, recipient); err != nil {
		return errors.Wrapf(err, "failed to insert recipient %s", recipient.UserID)
	}
	return nil
}

func (rr *RecipientRepo) FindRecipientsByUser(ctx context.Context, userID string) ([]models.NotificationRecipient, error) {
	cursor, err := rr.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find recipient rows")
	}
	defer cursor.Close(ctx)

	var rows []models.NotificationRecipient
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(err, "failed to decode recipient rows")
	}
	return rows, nil
}

// UpdateRecipientStatus changes the first row matching (notificationID, userID).
// A missing row is not an error. readAt is removed when nil.
func (rr *RecipientRepo) UpdateRecipientStatus(ctx context.Context, notificationID, userID string, status models.RecipientStatus, readAt *time.Time) error {
	filter := bson.M{"notificationId": notificationID, "userId": userID}

	var update bson.M
	if readAt != nil {
		update = bson.M{"$set": bson.M{"status": status, "readAt": *readAt}}
	} else {
		update = bson.M{"$set": bson.M{"status": status}, "$unset": bson.M{"readAt": ""}}
	}

	if _, err := rr.collection.UpdateOne(ctx, filter, update); err != nil {
		return errors.Wrap(err, "failed to update recipient status")
	}
	return nil
}
