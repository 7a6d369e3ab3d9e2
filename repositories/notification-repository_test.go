package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/KBRRM/create-class/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNotificationRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("insert assigns an id", func(mt *mtest.T) {
		repo := NewNotificationRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n := &models.Notification{Type: "promo", Title: "Sale", Message: "50% off", CreatedAt: time.Now()}
		require.NoError(mt, repo.InsertNotification(ctx, n))
		assert.Len(mt, n.ID, 24)
	})

	mt.Run("insert surfaces write errors", func(mt *mtest.T) {
		repo := NewNotificationRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 1, Message: "boom"}))

		err := repo.InsertNotification(ctx, &models.Notification{Title: "x"})
		assert.Error(mt, err)
	})

	mt.Run("find by ids decodes documents", func(mt *mtest.T) {
		repo := NewNotificationRepo(mt.DB)
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.notifications", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "n1"},
				{Key: "type", Value: "promo"},
				{Key: "title", Value: "Sale"},
				{Key: "message", Value: "50% off"},
				{Key: "createdAt", Value: created},
			},
		))

		found, err := repo.FindNotificationsByIDs(ctx, []string{"n1"})
		require.NoError(mt, err)
		require.Len(mt, found, 1)
		assert.Equal(mt, "n1", found[0].ID)
		assert.Equal(mt, "Sale", found[0].Title)
		assert.True(mt, created.Equal(found[0].CreatedAt))
	})

	mt.Run("find by no ids skips the query", func(mt *mtest.T) {
		repo := NewNotificationRepo(mt.DB)

		found, err := repo.FindNotificationsByIDs(ctx, nil)
		require.NoError(mt, err)
		assert.Empty(mt, found)
	})
}

func TestRecipientRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("insert assigns an id", func(mt *mtest.T) {
		repo := NewRecipientRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		row := &models.NotificationRecipient{NotificationID: "n1", UserID: "u1", Status: models.StatusSent}
		require.NoError(mt, repo.InsertRecipient(ctx, row))
		assert.NotEmpty(mt, row.ID)
	})

	mt.Run("find by user decodes rows", func(mt *mtest.T) {
		repo := NewRecipientRepo(mt.DB)
		readAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.notification_recipients", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "r1"}, {Key: "notificationId", Value: "n1"}, {Key: "userId", Value: "u1"}, {Key: "status", Value: "sent"}},
			bson.D{{Key: "_id", Value: "r2"}, {Key: "notificationId", Value: "n2"}, {Key: "userId", Value: "u1"}, {Key: "status", Value: "read"}, {Key: "readAt", Value: readAt}},
		))

		rows, err := repo.FindRecipientsByUser(ctx, "u1")
		require.NoError(mt, err)
		require.Len(mt, rows, 2)
		assert.Equal(mt, models.StatusSent, rows[0].Status)
		assert.Nil(mt, rows[0].ReadAt)
		assert.Equal(mt, models.StatusRead, rows[1].Status)
		require.NotNil(mt, rows[1].ReadAt)
		assert.True(mt, readAt.Equal(*rows[1].ReadAt))
	})

	mt.Run("update with no matching row succeeds", func(mt *mtest.T) {
		repo := NewRecipientRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		now := time.Now()
		assert.NoError(mt, repo.UpdateRecipientStatus(ctx, "missing", "u1", models.StatusRead, &now))
	})

	mt.Run("update surfaces command errors", func(mt *mtest.T) {
		repo := NewRecipientRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad update"}))

		assert.Error(mt, repo.UpdateRecipientStatus(ctx, "n1", "u1", models.StatusSent, nil))
	})
}

func TestUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("duplicate email maps to ErrDuplicate", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.InsertUser(ctx, &models.User{Email: "a@b.c"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("missing user maps to ErrNotFound", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := repo.FindUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id maps to ErrNotFound", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)

		_, err := repo.FindUserByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestCategoryRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("delete of a missing document maps to ErrNotFound", func(mt *mtest.T) {
		repo := NewCategoryRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteCategoryDetail(ctx, "65a1f0c2e4b0a1b2c3d4e5f6")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id maps to ErrInvalidID", func(mt *mtest.T) {
		repo := NewCategoryRepo(mt.DB)

		_, err := repo.FindCategoryDetailByID(ctx, "xyz")
		assert.ErrorIs(mt, err, ErrInvalidID)
	})
}
