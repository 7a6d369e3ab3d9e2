package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryDetail struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CategoryTitle string             `bson:"categoryTitle" json:"categoryTitle"`
	Description   string             `bson:"description" json:"description"`
	CategoryDoc   string             `bson:"categoryDoc" json:"categoryDoc"`
	CreatedBy     primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CategoryDetailInput carries the client-editable fields of a category.
type CategoryDetailInput struct {
	CategoryTitle string `json:"categoryTitle"`
	Description   string `json:"description"`
	CategoryDoc   string `json:"categoryDoc"`
}
