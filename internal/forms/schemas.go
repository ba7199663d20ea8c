package forms

import (
	"strings"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/money"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

type SignIn struct {
	Email    string `json:"email" validate:"required,email" msg:"email=Digite um email válido"`
	Password string `json:"password" validate:"required"`
}

func (f SignIn) Input() pharmacyapi.SignInInput {
	return pharmacyapi.SignInInput{Email: strings.TrimSpace(f.Email), Password: f.Password}
}

type SignUp struct {
	Name     string `json:"name" validate:"required,min=5" msg:"min=Nome muito curto"`
	Email    string `json:"email" validate:"required,email" msg:"email=Digite um email válido"`
	Password string `json:"password" validate:"required,min=6" msg:"min=Senha muito fraca"`
}

func (f SignUp) Input() pharmacyapi.SignUpInput {
	return pharmacyapi.SignUpInput{Name: strings.TrimSpace(f.Name), Email: strings.TrimSpace(f.Email), Password: f.Password}
}

// Address is optional on every form that carries one.
type Address struct {
	Name      string `json:"name"`
	City      string `json:"city"`
	Residence string `json:"residence"`
}

func (a *Address) input() *pharmacyapi.AddressInput {
	if a == nil {
		return nil
	}
	return &pharmacyapi.AddressInput{Name: a.Name, City: a.City, Residence: a.Residence}
}

// Person is the profile and generic person form.
type Person struct {
	Name      string         `json:"name" validate:"required,letters,min=6,max=60" msg:"letters=O nome só pode conter letras;min=Nome muito curto;max=Nome muito longo"`
	BI        string         `json:"bi"`
	BirthDate string         `json:"birth_date"`
	Phone     string         `json:"phone" validate:"omitempty,len=9,digits" msg:"len=Deve ter 9 dígitos;digits=Digite um número de telefone válido!"`
	Password  string         `json:"password" validate:"required,min=6" msg:"min=Senha muito fraca"`
	Email     string         `json:"email" validate:"required,email" msg:"email=Digite um email válido"`
	UserType  enums.UserType `json:"user_type" validate:"required,user_type"`
	Address   *Address       `json:"address"`
}

func (f Person) Input() pharmacyapi.PersonInput {
	return pharmacyapi.PersonInput{
		Name:      f.Name,
		Email:     strings.TrimSpace(f.Email),
		BI:        f.BI,
		BirthDate: f.BirthDate,
		Phone:     f.Phone,
		Password:  f.Password,
		UserType:  f.UserType,
		Address:   f.Address.input(),
	}
}

// Account is the customer and employee form.
type Account struct {
	Name      string   `json:"name" validate:"required,min=5" msg:"min=Muito curto"`
	BI        string   `json:"bi"`
	BirthDate string   `json:"birth_date"`
	Phone     string   `json:"phone"`
	Password  string   `json:"password" validate:"required,min=6" msg:"min=Muito curto"`
	Email     string   `json:"email" validate:"required,email" msg:"email=Email inválido"`
	Address   *Address `json:"address"`
}

func (f Account) Input() pharmacyapi.PersonInput {
	return pharmacyapi.PersonInput{
		Name:      f.Name,
		Email:     strings.TrimSpace(f.Email),
		BI:        f.BI,
		BirthDate: f.BirthDate,
		Phone:     f.Phone,
		Password:  f.Password,
		Address:   f.Address.input(),
	}
}

type Supplier struct {
	Name    string   `json:"name" validate:"required,min=5,max=60" msg:"min=Nome muito curto;max=Nome muito longo"`
	Phone   string   `json:"phone" validate:"omitempty,min=9,max=12,digits" msg:"min=Deve ter no mínimo 9 dígitos;max=Deve ter no máximo 12 dígitos;digits=Digite um número de telefone válido!"`
	Email   string   `json:"email" validate:"required,email" msg:"email=Digite um email válido"`
	NIF     string   `json:"nif"`
	Address *Address `json:"address"`
}

func (f Supplier) Input() pharmacyapi.SupplierInput {
	return pharmacyapi.SupplierInput{
		Name:    f.Name,
		Email:   strings.TrimSpace(f.Email),
		NIF:     f.NIF,
		Phone:   f.Phone,
		Address: f.Address.input(),
	}
}

// Product keeps the price as typed so "12,50" and "12.50" both validate.
type Product struct {
	Name              string `json:"name" validate:"required"`
	Price             string `json:"price" validate:"required,amount"`
	Stock             *int   `json:"stock" validate:"required,gte=0"`
	Description       string `json:"description" validate:"required"`
	Image             string `json:"image"`
	ManufactureDate   string `json:"manufacture_date" validate:"required"`
	ExpirationDate    string `json:"expiration_date" validate:"required"`
	FKProductCategory int64  `json:"fk_product_category" validate:"required"`
}

// Input assumes the form validated.
func (f Product) Input() pharmacyapi.ProductInput {
	price, _ := money.Parse(f.Price)
	return pharmacyapi.ProductInput{
		Name:              f.Name,
		Price:             pharmacyapi.PriceNumber(price),
		Description:       f.Description,
		Image:             f.Image,
		Stock:             f.Stock,
		ManufactureDate:   f.ManufactureDate,
		ExpirationDate:    f.ExpirationDate,
		FKProductCategory: f.FKProductCategory,
	}
}

type Category struct {
	Name string `json:"name" validate:"required"`
}

func (f Category) Input() pharmacyapi.ProductCategoryInput {
	return pharmacyapi.ProductCategoryInput{Name: strings.TrimSpace(f.Name)}
}

type Purchase struct {
	PurchaseDate string `json:"purchase_date"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
	Observation  string `json:"observation"`
	FKSupplier   int64  `json:"fk_supplier" validate:"required"`
	FKEmployee   int64  `json:"fk_employee" validate:"required"`
	FKProduct    int64  `json:"fk_product" validate:"required"`
}

func (f Purchase) Input() pharmacyapi.PurchaseInput {
	return pharmacyapi.PurchaseInput{
		PurchaseDate: optionalString(f.PurchaseDate),
		FKSupplier:   &f.FKSupplier,
		FKEmployee:   &f.FKEmployee,
		FKProduct:    &f.FKProduct,
		Observation:  f.Observation,
		Quantity:     f.Quantity,
	}
}

// OrderLine is one product picked on the back-office order form.
type OrderLine struct {
	ProductID int64 `json:"id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"gte=1"`
}

// Order is the back-office order form, where staff pick the customer,
// the address and the employee handling the sale.
type Order struct {
	Observation string      `json:"observation"`
	OrderDate   string      `json:"order_date"`
	Products    []OrderLine `json:"products" validate:"min=1,dive" msg:"min=Deve selecionar pelo menos um produto"`
	FKCustomer  int64       `json:"fk_customer" validate:"required"`
	FKAddress   int64       `json:"fk_address" validate:"required"`
	FKEmployee  int64       `json:"fk_employee" validate:"required"`
}

func (f Order) Input() pharmacyapi.OrderInput {
	products := make([]pharmacyapi.OrderProductInput, 0, len(f.Products))
	for _, line := range f.Products {
		products = append(products, pharmacyapi.OrderProductInput{ID: line.ProductID, Quantity: line.Quantity})
	}
	employee := f.FKEmployee
	return pharmacyapi.OrderInput{
		Observation: f.Observation,
		OrderDate:   optionalString(f.OrderDate),
		FKCustomer:  f.FKCustomer,
		FKAddress:   f.FKAddress,
		FKEmployee:  &employee,
		Products:    products,
	}
}

// User is the admin form for creating accounts of any type.
type User struct {
	Name     string         `json:"name" validate:"required,min=5" msg:"min=Muito curto"`
	Password string         `json:"password" validate:"required,min=6" msg:"min=Muito curto"`
	Email    string         `json:"email" validate:"required,email" msg:"email=Email inválido"`
	UserType enums.UserType `json:"user_type" validate:"required,user_type"`
}

func (f User) Input() pharmacyapi.PersonInput {
	return pharmacyapi.PersonInput{
		Name:     f.Name,
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		UserType: f.UserType,
	}
}

// UserTypeLabel is the Portuguese label for a user type.
func UserTypeLabel(t enums.UserType) string {
	switch t {
	case enums.UserTypeCustomer:
		return "Cliente"
	case enums.UserTypeAdmin:
		return "Administrador"
	case enums.UserTypeEmployee:
		return "Funcionário"
	}
	return string(t)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
