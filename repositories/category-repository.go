package repositories

import (
	"context"
	"time"

	"github.com/KBRRM/create-class/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CategoriesCollection = "categorydetails"

type CategoryRepo struct {
	collection *mongo.Collection
}

func NewCategoryRepo(db *mongo.Database) *CategoryRepo {
	return &CategoryRepo{collection: db.Collection(CategoriesCollection)}
}

func (cr *CategoryRepo) InsertCategoryDetail(ctx context.Context, category *models.CategoryDetail) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	if _, err := cr.collection.InsertOne(ctx, category); err != nil {
		return errors.Wrap(err, "failed to insert category detail")
	}
	return nil
}

func (cr *CategoryRepo) FindCategoryDetailByID(ctx context.Context, id string) (*models.CategoryDetail, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var category models.CategoryDetail
	err = cr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find category detail")
	}
	return &category, nil
}

func (cr *CategoryRepo) FindAllCategoryDetails(ctx context.Context) ([]models.CategoryDetail, error) {
	cursor, err := cr.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve category details")
	}
	defer cursor.Close(ctx)

	categories := []models.CategoryDetail{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, errors.Wrap(err, "failed to decode category details")
	}
	return categories, nil
}

// UpdateCategoryDetail overwrites the editable fields and returns the updated document.
func (cr *CategoryRepo) UpdateCategoryDetail(ctx context.Context, id string, input models.CategoryDetailInput) (*models.CategoryDetail, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	update := bson.M{"$set": bson.M{
		"categoryTitle": input.CategoryTitle,
		"description":   input.Description,
		"categoryDoc":   input.CategoryDoc,
		"updatedAt":     time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var category models.CategoryDetail
	err = cr.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to update category detail")
	}
	return &category, nil
}

func (cr *CategoryRepo) DeleteCategoryDetail(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := cr.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return errors.Wrap(err, "failed to delete category detail")
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
