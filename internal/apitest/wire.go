package apitest

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Wire records use the API's snake_case keys so clients exercise the
// camelCase normalization.

type wireAddress struct {
	PKAddress int64  `json:"pk_address"`
	Name      string `json:"name"`
	Residence string `json:"residence"`
	City      string `json:"city"`
}

type wireAccount struct {
	UserType string `json:"user_type"`
}

type wirePerson struct {
	PKPerson  int64        `json:"pk_person"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	BI        string       `json:"bi,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	BirthDate string       `json:"birth_date,omitempty"`
	Address   *wireAddress `json:"address"`
	User      *wireAccount `json:"user,omitempty"`
}

type wireUser struct {
	PKUser       int64       `json:"pk_user"`
	Email        string      `json:"email"`
	AccessToken  string      `json:"access_token,omitempty"`
	UserType     string      `json:"user_type"`
	PersonalInfo *wirePerson `json:"personal_info"`
}

type wireUserType struct {
	PKUserType  int64  `json:"pk_user_type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type wireCategory struct {
	PKProductCategory int64  `json:"pk_product_category"`
	Name              string `json:"name"`
}

type wireProductOrder struct {
	Quantity int `json:"quantity"`
}

type wireProduct struct {
	PKProduct         int64             `json:"pk_product"`
	Name              string            `json:"name"`
	Price             json.Number       `json:"price"`
	Description       string            `json:"description,omitempty"`
	Image             string            `json:"image,omitempty"`
	Stock             int               `json:"stock"`
	ManufactureDate   string            `json:"manufacture_date,omitempty"`
	ExpirationDate    string            `json:"expiration_date,omitempty"`
	FKProductCategory int64             `json:"fk_product_category,omitempty"`
	ProductCategory   *wireCategory     `json:"product_category,omitempty"`
	ProductOrder      *wireProductOrder `json:"product_order,omitempty"`
}

func (p wireProduct) price() decimal.Decimal {
	price, err := decimal.NewFromString(string(p.Price))
	if err != nil {
		return decimal.Zero
	}
	return price
}

type wireOrder struct {
	PKOrder     int64         `json:"pk_order"`
	Total       json.Number   `json:"total"`
	Customer    *wirePerson   `json:"customer,omitempty"`
	Employee    *wirePerson   `json:"employee,omitempty"`
	Address     *wireAddress  `json:"address,omitempty"`
	Products    []wireProduct `json:"products"`
	OrderDate   string        `json:"order_date,omitempty"`
	Observation string        `json:"observation,omitempty"`
}

type wireSupplier struct {
	PKSupplier int64        `json:"pk_supplier"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	NIF        string       `json:"nif,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Address    *wireAddress `json:"address,omitempty"`
}

type wirePurchase struct {
	PKPurchase   int64         `json:"pk_purchase"`
	Quantity     int           `json:"quantity"`
	PurchaseDate string        `json:"purchase_date,omitempty"`
	Observation  string        `json:"observation,omitempty"`
	Product      *wireProduct  `json:"product,omitempty"`
	Supplier     *wireSupplier `json:"supplier,omitempty"`
	Employee     *wirePerson   `json:"employee,omitempty"`
}

type wireStatistics struct {
	TotalOrdersValue json.Number `json:"total_orders_value"`
	CountProducts    int         `json:"count_products"`
	CountOrders      int         `json:"count_orders"`
}

// Request bodies.

type credentialsInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type addressInput struct {
	Name      string `json:"name"`
	City      string `json:"city"`
	Residence string `json:"residence"`
}

type personInput struct {
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	BI        string        `json:"bi"`
	BirthDate string        `json:"birth_date"`
	Phone     string        `json:"phone"`
	Password  string        `json:"password"`
	UserType  string        `json:"user_type"`
	Address   *addressInput `json:"address"`
}

type productInput struct {
	Name              string      `json:"name"`
	Price             json.Number `json:"price"`
	Description       string      `json:"description"`
	Image             string      `json:"image"`
	Stock             *int        `json:"stock"`
	ManufactureDate   string      `json:"manufacture_date"`
	ExpirationDate    string      `json:"expiration_date"`
	FKProductCategory int64       `json:"fk_product_category"`
}

type orderLineInput struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type orderInput struct {
	Observation string           `json:"observation"`
	OrderDate   *string          `json:"order_date"`
	FKCustomer  int64            `json:"fk_customer"`
	FKAddress   int64            `json:"fk_address"`
	FKEmployee  *int64           `json:"fk_employee"`
	Products    []orderLineInput `json:"products"`
}

type supplierInput struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	NIF     string        `json:"nif"`
	Phone   string        `json:"phone"`
	Address *addressInput `json:"address"`
}

type purchaseInput struct {
	PurchaseDate *string `json:"purchase_date"`
	FKSupplier   *int64  `json:"fk_supplier"`
	FKEmployee   *int64  `json:"fk_employee"`
	FKProduct    *int64  `json:"fk_product"`
	Observation  string  `json:"observation"`
	Quantity     int     `json:"quantity"`
}
