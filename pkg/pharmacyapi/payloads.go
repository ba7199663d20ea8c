package pharmacyapi

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
)

// Request bodies use the snake_case keys the API expects.

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AddressInput struct {
	Name      string `json:"name"`
	City      string `json:"city"`
	Residence string `json:"residence"`
}

// PersonInput creates or edits a customer, employee or generic person.
type PersonInput struct {
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	BI        string         `json:"bi,omitempty"`
	BirthDate string         `json:"birth_date,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Password  string         `json:"password,omitempty"`
	UserType  enums.UserType `json:"user_type,omitempty"`
	Address   *AddressInput  `json:"address"`
}

type ProductInput struct {
	Name              string      `json:"name"`
	Price             json.Number `json:"price"`
	Description       string      `json:"description,omitempty"`
	Image             string      `json:"image,omitempty"`
	Stock             *int        `json:"stock,omitempty"`
	ManufactureDate   string      `json:"manufacture_date"`
	ExpirationDate    string      `json:"expiration_date"`
	FKProductCategory int64       `json:"fk_product_category"`
}

// PriceNumber renders price as a bare JSON number.
func PriceNumber(price decimal.Decimal) json.Number {
	return json.Number(price.String())
}

type ProductCategoryInput struct {
	Name string `json:"name"`
}

type OrderProductInput struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// OrderInput is the order submission payload. OrderDate is null when unset.
type OrderInput struct {
	Observation string              `json:"observation"`
	OrderDate   *string             `json:"order_date"`
	FKCustomer  int64               `json:"fk_customer"`
	FKAddress   int64               `json:"fk_address"`
	FKEmployee  *int64              `json:"fk_employee,omitempty"`
	Products    []OrderProductInput `json:"products"`
}

type SupplierInput struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	NIF     string        `json:"nif,omitempty"`
	Phone   string        `json:"phone,omitempty"`
	Address *AddressInput `json:"address"`
}

type PurchaseInput struct {
	PurchaseDate *string `json:"purchase_date"`
	FKSupplier   *int64  `json:"fk_supplier"`
	FKEmployee   *int64  `json:"fk_employee"`
	FKProduct    *int64  `json:"fk_product"`
	Observation  string  `json:"observation"`
	Quantity     int     `json:"quantity"`
}
