package checkout

import (
	"strings"

	"github.com/angelmondragon/pharmacy-backoffice/internal/cart"
	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

const (
	EmptyCartMessage  = "Deve selecionar pelo menos um produto"
	NoAddressMessage  = "Deve selecionar um endereço de entrega"
	SignedOutMessage  = "Deve iniciar sessão para encomendar"
	AddressHelperText = "Deve ter um endereço na sua conta"
)

// Draft is the order built from the cart at submit time. It lives for one
// Submit call.
type Draft struct {
	Products    []pharmacyapi.OrderProductInput `json:"products" validate:"min=1" msg:"min=Deve selecionar pelo menos um produto"`
	AddressID   int64                           `json:"fk_address" validate:"required" msg:"required=Deve selecionar um endereço de entrega"`
	CustomerID  int64                           `json:"fk_customer" validate:"required" msg:"required=Deve iniciar sessão para encomendar"`
	Observation string                          `json:"observation"`
	OrderDate   string                          `json:"order_date"`
}

// NewDraft projects lines into a draft for customer.
func NewDraft(lines []cart.Line, customer *pharmacyapi.User, req Request) Draft {
	products := make([]pharmacyapi.OrderProductInput, 0, len(lines))
	for _, line := range lines {
		products = append(products, pharmacyapi.OrderProductInput{ID: line.Item.ID, Quantity: line.Quantity})
	}
	draft := Draft{
		Products:    products,
		AddressID:   req.AddressID,
		Observation: strings.TrimSpace(req.Observation),
		OrderDate:   strings.TrimSpace(req.OrderDate),
	}
	if customer != nil && customer.PersonalInfo != nil {
		draft.CustomerID = customer.PersonalInfo.PKPerson
	}
	return draft
}

// Validate reports the first problem in the order a customer would fix it.
func (d Draft) Validate() (string, forms.Errors) {
	errs := forms.Validate(d)
	if len(errs) == 0 {
		return "", nil
	}
	msg, _ := errs.First("products", "fk_address", "fk_customer")
	return msg, errs
}

// Input is the wire payload. An empty order date is sent as null.
func (d Draft) Input() pharmacyapi.OrderInput {
	in := pharmacyapi.OrderInput{
		Observation: d.Observation,
		FKCustomer:  d.CustomerID,
		FKAddress:   d.AddressID,
		Products:    d.Products,
	}
	if d.OrderDate != "" {
		date := d.OrderDate
		in.OrderDate = &date
	}
	return in
}

// AddressOption is a delivery address the customer can pick.
type AddressOption struct {
	ID    int64
	Label string
}

// AddressOptions lists the addresses on the user's account. The list is
// empty until the account has a residence.
func AddressOptions(user *pharmacyapi.User) []AddressOption {
	if user == nil || !user.PersonalInfo.HasDeliveryAddress() {
		return nil
	}
	addr := user.PersonalInfo.Address
	label := addr.Name
	if label == "" {
		label = addr.Residence
	}
	return []AddressOption{{ID: addr.PKAddress, Label: label}}
}
