// Package backoffice holds the staff screens: one Resource per collection
// the pharmacy API exposes, plus the dashboard statistics.
package backoffice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

var (
	ProductLabels = Labels{
		Created:      "Produto criado com sucesso!",
		Edited:       "Produto editado com sucesso!",
		Deleted:      "Produto eliminado com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar produto",
		EditFailed:   "Ocorreu um erro ao editar produto",
		DeleteFailed: "Ocorreu um erro ao eliminar produto!",
	}
	CategoryLabels = Labels{
		Created:      "Categoria criada com sucesso!",
		Edited:       "Categoria editada com sucesso!",
		Deleted:      "Categoria eliminada com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar categoria",
		EditFailed:   "Ocorreu um erro ao editar categoria",
		DeleteFailed: "Ocorreu um erro ao eliminar categoria!",
	}
	OrderLabels = Labels{
		Created:      "Venda criada com sucesso!",
		Edited:       "Venda editada com sucesso!",
		Deleted:      "Venda eliminada com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar encomenda",
		EditFailed:   "Ocorreu um erro ao editar encomenda",
		DeleteFailed: "Ocorreu um erro ao eliminar venda!",
	}
	CustomerLabels = Labels{
		Created:      "Cliente criado com sucesso!",
		Edited:       "Cliente editado com sucesso!",
		Deleted:      "Cliente eliminado com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar cliente",
		EditFailed:   "Ocorreu um erro ao editar cliente",
		DeleteFailed: "Ocorreu um erro ao eliminar cliente!",
	}
	EmployeeLabels = Labels{
		Created:      "Funcionário criado com sucesso!",
		Edited:       "Funcionário editado com sucesso!",
		Deleted:      "Funcionário eliminado com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar funcionário",
		EditFailed:   "Ocorreu um erro ao editar funcionário",
		DeleteFailed: "Ocorreu um erro ao eliminar funcionário!",
	}
	SupplierLabels = Labels{
		Created:      "Fornecedor criado com sucesso!",
		Edited:       "Fornecedor editado com sucesso!",
		Deleted:      "Fornecedor eliminado com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar fornecedor",
		EditFailed:   "Ocorreu um erro ao editar fornecedor",
		DeleteFailed: "Ocorreu um erro ao eliminar fornecedor",
	}
	PurchaseLabels = Labels{
		Created:      "Entrada criada com sucesso!",
		Edited:       "Entrada editada com sucesso!",
		Deleted:      "Entrada eliminada com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar entrada",
		EditFailed:   "Ocorreu um erro ao editar entrada",
		DeleteFailed: "Ocorreu um erro ao eliminar entrada!",
	}
	PersonLabels = Labels{
		Created:      "Utilizador criado com sucesso!",
		Edited:       "Perfil editado com sucesso!",
		Deleted:      "Utilizador eliminado com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar utilizador",
		EditFailed:   "Ocorreu um erro ao editar perfil",
		DeleteFailed: "Ocorreu um erro ao eliminar utilizador!",
	}
	UserLabels = Labels{
		Created:      "Utilizador criado com sucesso!",
		CreateFailed: "Ocorreu um erro ao criar utilizador",
	}
)

type Service struct {
	Products   *Resource[pharmacyapi.Product, forms.Product, pharmacyapi.ProductInput]
	Categories *Resource[pharmacyapi.ProductCategory, forms.Category, pharmacyapi.ProductCategoryInput]
	Orders     *Resource[pharmacyapi.Order, forms.Order, pharmacyapi.OrderInput]
	Customers  *Resource[pharmacyapi.Person, forms.Account, pharmacyapi.PersonInput]
	Employees  *Resource[pharmacyapi.Person, forms.Account, pharmacyapi.PersonInput]
	Suppliers  *Resource[pharmacyapi.Supplier, forms.Supplier, pharmacyapi.SupplierInput]
	Purchases  *Resource[pharmacyapi.Purchase, forms.Purchase, pharmacyapi.PurchaseInput]
	Persons    *Resource[pharmacyapi.Person, forms.Person, pharmacyapi.PersonInput]
	Users      *Resource[pharmacyapi.User, forms.User, pharmacyapi.PersonInput]

	client *pharmacyapi.Client
}

type options struct {
	notifier notify.Notifier
	logg     *logger.Logger
	newKey   func() string
}

type Option func(*options)

func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(o *options) {
		if logg != nil {
			o.logg = logg
		}
	}
}

// WithIdempotencyKeys overrides the key generator used for order writes.
func WithIdempotencyKeys(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newKey = fn
		}
	}
}

// NewService wires every resource to client.
func NewService(client *pharmacyapi.Client, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("api client required")
	}
	o := options{notifier: notify.Discard, logg: logger.Nop(), newKey: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	s := &Service{client: client}
	s.Products = newResource[pharmacyapi.Product, forms.Product](enums.ResourceProduct, ProductLabels, Endpoints[pharmacyapi.Product, pharmacyapi.ProductInput]{
		List:   client.ListProducts,
		Create: client.CreateProduct,
		Update: client.UpdateProduct,
		Delete: client.DeleteProduct,
	}, o.notifier, o.logg)
	s.Categories = newResource[pharmacyapi.ProductCategory, forms.Category](enums.ResourceProductCategory, CategoryLabels, Endpoints[pharmacyapi.ProductCategory, pharmacyapi.ProductCategoryInput]{
		List:   client.ListProductCategories,
		Create: client.CreateProductCategory,
		Update: client.UpdateProductCategory,
		Delete: client.DeleteProductCategory,
	}, o.notifier, o.logg)
	s.Orders = newResource[pharmacyapi.Order, forms.Order](enums.ResourceOrder, OrderLabels, Endpoints[pharmacyapi.Order, pharmacyapi.OrderInput]{
		List: client.ListOrders,
		Create: func(ctx context.Context, in pharmacyapi.OrderInput) (*pharmacyapi.Order, error) {
			return client.CreateOrder(ctx, in, o.newKey())
		},
		Update: func(ctx context.Context, id int64, in pharmacyapi.OrderInput) (*pharmacyapi.Order, error) {
			return client.UpdateOrder(ctx, id, in, o.newKey())
		},
		Delete: client.DeleteOrder,
	}, o.notifier, o.logg)
	s.Customers = newResource[pharmacyapi.Person, forms.Account](enums.ResourceCustomer, CustomerLabels, Endpoints[pharmacyapi.Person, pharmacyapi.PersonInput]{
		List:   client.ListCustomers,
		Create: client.CreateCustomer,
		Update: client.UpdateCustomer,
		Delete: client.DeletePerson,
	}, o.notifier, o.logg)
	s.Employees = newResource[pharmacyapi.Person, forms.Account](enums.ResourceEmployee, EmployeeLabels, Endpoints[pharmacyapi.Person, pharmacyapi.PersonInput]{
		List:   client.ListEmployees,
		Create: client.CreateEmployee,
		Update: client.UpdateEmployee,
		Delete: client.DeletePerson,
	}, o.notifier, o.logg)
	s.Suppliers = newResource[pharmacyapi.Supplier, forms.Supplier](enums.ResourceSupplier, SupplierLabels, Endpoints[pharmacyapi.Supplier, pharmacyapi.SupplierInput]{
		List:   client.ListSuppliers,
		Create: client.CreateSupplier,
		Update: client.UpdateSupplier,
		Delete: client.DeleteSupplier,
	}, o.notifier, o.logg)
	s.Purchases = newResource[pharmacyapi.Purchase, forms.Purchase](enums.ResourcePurchase, PurchaseLabels, Endpoints[pharmacyapi.Purchase, pharmacyapi.PurchaseInput]{
		List:   client.ListPurchases,
		Create: client.CreatePurchase,
		Update: client.UpdatePurchase,
		Delete: client.DeletePurchase,
	}, o.notifier, o.logg)
	s.Persons = newResource[pharmacyapi.Person, forms.Person](enums.ResourcePerson, PersonLabels, Endpoints[pharmacyapi.Person, pharmacyapi.PersonInput]{
		List: func(ctx context.Context) ([]pharmacyapi.Person, error) {
			return client.ListPersons(ctx, "")
		},
		Create: client.CreatePerson,
		Update: client.UpdatePerson,
		Delete: client.DeletePerson,
	}, o.notifier, o.logg)
	// Accounts are created through /person, which answers with the person.
	s.Users = newResource[pharmacyapi.User, forms.User](enums.ResourceUser, UserLabels, Endpoints[pharmacyapi.User, pharmacyapi.PersonInput]{
		List: client.ListUsers,
		Create: func(ctx context.Context, in pharmacyapi.PersonInput) (*pharmacyapi.User, error) {
			person, err := client.CreatePerson(ctx, in)
			if err != nil {
				return nil, err
			}
			return &pharmacyapi.User{Email: person.Email, UserType: in.UserType, PersonalInfo: person}, nil
		},
	}, o.notifier, o.logg)
	return s, nil
}

// PersonsOfType lists persons whose account has userType.
func (s *Service) PersonsOfType(ctx context.Context, userType enums.UserType) ([]pharmacyapi.Person, error) {
	if !userType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid user type %q", userType))
	}
	return s.client.ListPersons(ctx, userType)
}

func (s *Service) UserTypes(ctx context.Context) ([]pharmacyapi.UserType, error) {
	return s.client.ListUserTypes(ctx)
}

func (s *Service) Statistics(ctx context.Context) (*pharmacyapi.Statistics, error) {
	return s.client.Statistics(ctx)
}

// Delete removes id from the resource named by kind.
func (s *Service) Delete(ctx context.Context, kind enums.Resource, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "id must be positive")
	}
	switch kind {
	case enums.ResourceProduct:
		return s.Products.Delete(ctx, id)
	case enums.ResourceProductCategory:
		return s.Categories.Delete(ctx, id)
	case enums.ResourceOrder:
		return s.Orders.Delete(ctx, id)
	case enums.ResourceCustomer:
		return s.Customers.Delete(ctx, id)
	case enums.ResourceEmployee:
		return s.Employees.Delete(ctx, id)
	case enums.ResourceSupplier:
		return s.Suppliers.Delete(ctx, id)
	case enums.ResourcePurchase:
		return s.Purchases.Delete(ctx, id)
	case enums.ResourcePerson:
		return s.Persons.Delete(ctx, id)
	default:
		return unsupported(kind, "delete")
	}
}
