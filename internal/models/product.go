package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	// Basic Info
	Name        string  `json:"name" bson:"name"`
	Price       float64 `json:"price" bson:"price"`
	CategoryID  string  `json:"categoryId" bson:"categoryId"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Image       string  `json:"image,omitempty" bson:"image,omitempty"`

	// Seller / Contact
	Company     string `json:"company,omitempty" bson:"company,omitempty"`
	SellerName  string `json:"sellerName,omitempty" bson:"sellerName,omitempty"`
	SellerPhone string `json:"sellerPhone,omitempty" bson:"sellerPhone,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// PriceLabel renders the price the way the storefront shows it.
func (p Product) PriceLabel() string {
	return "$" + decimal.NewFromFloat(p.Price).StringFixed(2)
}

// HasContact reports whether any seller contact detail is present.
func (p Product) HasContact() bool {
	return p.SellerName != "" || p.Company != "" || p.SellerPhone != ""
}

type ProductInput struct {
	Name        string           `json:"name" validate:"required"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  string           `json:"categoryId" validate:"required"`
	Company     string           `json:"company"`
	SellerName  string           `json:"sellerName"`
	SellerPhone string           `json:"sellerPhone"`
	Image       string           `json:"image" validate:"omitempty,url"`
	Description string           `json:"description"`
}

// ProductPatch carries the fields of a partial product update. Nil fields
// are left untouched; optional text fields set to "" are removed.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty" validate:"omitnil,min=1"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	CategoryID  *string          `json:"categoryId,omitempty" validate:"omitnil,min=1"`
	Company     *string          `json:"company,omitempty"`
	SellerName  *string          `json:"sellerName,omitempty"`
	SellerPhone *string          `json:"sellerPhone,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Description *string          `json:"description,omitempty"`
}
