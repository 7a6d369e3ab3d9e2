package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/KBRRM/create-class/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryNotificationRepo is a process-local notification store and recipient
// ledger, used with STORE_BACKEND=memory and in tests.
type MemoryNotificationRepo struct {
	mu            sync.RWMutex
	notifications map[string]models.Notification
	recipients    []models.NotificationRecipient
}

func NewMemoryNotificationRepo() *MemoryNotificationRepo {
	return &MemoryNotificationRepo{notifications: make(map[string]models.Notification)}
}

func (m *MemoryNotificationRepo) InsertNotification(_ context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if notification.ID == "" {
		notification.ID = primitive.NewObjectID().Hex()
	}
	m.notifications[notification.ID] = *notification
	return nil
}

func (m *MemoryNotificationRepo) FindNotificationsByIDs(_ context.Context, ids []string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Notification
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if n, ok := m.notifications[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MemoryNotificationRepo) InsertRecipient(_ context.Context, recipient *models.NotificationRecipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if recipient.ID == "" {
		recipient.ID = primitive.NewObjectID().Hex()
	}
	m.recipients = append(m.recipients, copyRecipient(*recipient))
	return nil
}

func (m *MemoryNotificationRepo) FindRecipientsByUser(_ context.Context, userID string) ([]models.NotificationRecipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []models.NotificationRecipient
	for _, r := range m.recipients {
		if r.UserID == userID {
			rows = append(rows, copyRecipient(r))
		}
	}
	return rows, nil
}

func (m *MemoryNotificationRepo) UpdateRecipientStatus(_ context.Context, notificationID, userID string, status models.RecipientStatus, readAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.recipients {
		r := &m.recipients[i]
		if r.NotificationID == notificationID && r.UserID == userID {
			r.Status = status
			r.ReadAt = nil
			if readAt != nil {
				t := *readAt
				r.ReadAt = &t
			}
			return nil
		}
	}
	return nil
}

// CountRecipients returns the number of ledger rows for notificationID.
func (m *MemoryNotificationRepo) CountRecipients(notificationID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, r := range m.recipients {
		if r.NotificationID == notificationID {
			n++
		}
	}
	return n
}

func copyRecipient(r models.NotificationRecipient) models.NotificationRecipient {
	if r.ReadAt != nil {
		t := *r.ReadAt
		r.ReadAt = &t
	}
	return r
}

type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[primitive.ObjectID]models.User)}
}

func (m *MemoryUserRepo) InsertUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryUserRepo) FindUserByID(_ context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[objectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUserRepo) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

type MemoryCategoryRepo struct {
	mu         sync.RWMutex
	categories map[primitive.ObjectID]models.CategoryDetail
	order      []primitive.ObjectID
}

func NewMemoryCategoryRepo() *MemoryCategoryRepo {
	return &MemoryCategoryRepo{categories: make(map[primitive.ObjectID]models.CategoryDetail)}
}

func (m *MemoryCategoryRepo) InsertCategoryDetail(_ context.Context, category *models.CategoryDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	m.categories[category.ID] = *category
	m.order = append(m.order, category.ID)
	return nil
}

func (m *MemoryCategoryRepo) FindCategoryDetailByID(_ context.Context, id string) (*models.CategoryDetail, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.categories[objectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemoryCategoryRepo) FindAllCategoryDetails(_ context.Context) ([]models.CategoryDetail, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := []models.CategoryDetail{}
	for _, id := range m.order {
		if c, ok := m.categories[id]; ok {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

func (m *MemoryCategoryRepo) UpdateCategoryDetail(_ context.Context, id string, input models.CategoryDetailInput) (*models.CategoryDetail, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[objectID]
	if !ok {
		return nil, ErrNotFound
	}
	c.CategoryTitle = input.CategoryTitle
	c.Description = input.Description
	c.CategoryDoc = input.CategoryDoc
	c.UpdatedAt = time.Now().UTC()
	m.categories[objectID] = c
	return &c, nil
}

func (m *MemoryCategoryRepo) DeleteCategoryDetail(_ context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[objectID]; !ok {
		return ErrNotFound
	}
	delete(m.categories, objectID)
	return nil
}
