package pharmacyapi

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
)

// Timestamps are kept as the API sends them (ISO-8601 strings).
type Timestamps struct {
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type Address struct {
	PKAddress int64  `json:"pkAddress"`
	Name      string `json:"name"`
	Residence string `json:"residence"`
	City      string `json:"city"`
	Phone     string `json:"phone,omitempty"`
	Timestamps
}

// Person is the personal record shared by customers, employees and admins.
type Person struct {
	PKPerson   int64    `json:"pkPerson"`
	PKCustomer int64    `json:"pkCustomer,omitempty"`
	PKEmployee int64    `json:"pkEmployee,omitempty"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	BI         string   `json:"bi,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	BirthDate  string   `json:"birthDate,omitempty"`
	Address    *Address `json:"address,omitempty"`
	User       *struct {
		UserType enums.UserType `json:"userType"`
	} `json:"user,omitempty"`
	Timestamps
}

// HasDeliveryAddress reports whether the person can receive orders.
func (p *Person) HasDeliveryAddress() bool {
	return p != nil && p.Address != nil && p.Address.Residence != ""
}

// User is the authenticated account returned by sign-in, sign-up and /me.
type User struct {
	PKUser       int64          `json:"pkUser"`
	Email        string         `json:"email"`
	AccessToken  string         `json:"accessToken,omitempty"`
	UserType     enums.UserType `json:"userType"`
	PersonalInfo *Person        `json:"personalInfo"`
}

// DisplayName prefers the personal name over the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.PersonalInfo != nil && u.PersonalInfo.Name != "" {
		return u.PersonalInfo.Name
	}
	return u.Email
}

type UserType struct {
	PKUserType  int64          `json:"pkUserType"`
	Name        enums.UserType `json:"name"`
	Description string         `json:"description,omitempty"`
}

type ProductCategory struct {
	PKProductCategory int64  `json:"pkProductCategory"`
	Name              string `json:"name"`
	Timestamps
}

type Product struct {
	PKProduct         int64            `json:"pkProduct"`
	Name              string           `json:"name"`
	Price             decimal.Decimal  `json:"price"`
	Description       string           `json:"description,omitempty"`
	Image             string           `json:"image,omitempty"`
	Stock             int              `json:"stock"`
	ManufactureDate   string           `json:"manufactureDate,omitempty"`
	ExpirationDate    string           `json:"expirationDate,omitempty"`
	FKProductCategory int64            `json:"fkProductCategory,omitempty"`
	ProductCategory   *ProductCategory `json:"productCategory,omitempty"`
	// ProductOrder is present when the product is nested in an order.
	ProductOrder *struct {
		Quantity int `json:"quantity"`
	} `json:"productOrder,omitempty"`
	Timestamps
}

type Order struct {
	PKOrder     int64           `json:"pkOrder"`
	Total       decimal.Decimal `json:"total"`
	Customer    *Person         `json:"customer,omitempty"`
	Employee    *Person         `json:"employee,omitempty"`
	Address     *Address        `json:"address,omitempty"`
	Products    []Product       `json:"products"`
	OrderDate   string          `json:"orderDate,omitempty"`
	Observation string          `json:"observation,omitempty"`
	Timestamps
}

type Supplier struct {
	PKSupplier int64    `json:"pkSupplier"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	NIF        string   `json:"nif,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Address    *Address `json:"address,omitempty"`
	Timestamps
}

type Purchase struct {
	PKPurchase   int64     `json:"pkPurchase"`
	Quantity     int       `json:"quantity"`
	PurchaseDate string    `json:"purchaseDate,omitempty"`
	Observation  string    `json:"observation,omitempty"`
	Product      *Product  `json:"product,omitempty"`
	Supplier     *Supplier `json:"supplier,omitempty"`
	Employee     *Person   `json:"employee,omitempty"`
	Timestamps
}

type Statistics struct {
	TotalOrdersValue decimal.Decimal `json:"totalOrdersValue"`
	CountProducts    int             `json:"countProducts"`
	CountOrders      int             `json:"countOrders"`
}

// UploadedFile is the stored location of an uploaded image.
type UploadedFile struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}
