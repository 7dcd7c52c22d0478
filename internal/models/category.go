package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `json:"name" bson:"name"`
	Icon      string             `json:"icon,omitempty" bson:"icon,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// CategoryInput is the dashboard payload for a new category.
type CategoryInput struct {
	Name string `json:"name" validate:"required"`
	Icon string `json:"icon"`
}

// CategoryPatch carries the fields of a partial category update.
// A nil field is left untouched.
type CategoryPatch struct {
	Name *string `json:"name,omitempty" validate:"omitnil,min=1"`
	Icon *string `json:"icon,omitempty"`
}

const (
	IconElectronics = "electronics"
	IconIndustrial  = "industrial"
	IconTextiles    = "textiles"
	IconDefault     = "default"
)

// IconKey returns the stored icon, or one derived from the category name
// when none was set.
func (c Category) IconKey() string {
	if c.Icon != "" {
		return c.Icon
	}
	name := strings.ToLower(c.Name)
	switch {
	case strings.Contains(name, "electronic"):
		return IconElectronics
	case strings.Contains(name, "industrial"):
		return IconIndustrial
	case strings.Contains(name, "textile"):
		return IconTextiles
	}
	return IconDefault
}
