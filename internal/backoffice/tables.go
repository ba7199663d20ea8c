package backoffice

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/money"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

const (
	NoData      = "Sem dados para mostrar!"
	placeholder = "-"
)

// Table is a listing ready for the terminal.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Write prints t as aligned columns, or the empty-list message.
func (t Table) Write(w io.Writer) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, NoData)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Table fetches kind and renders it with f.
func (s *Service) Table(ctx context.Context, kind enums.Resource, f money.Formatter) (Table, error) {
	switch kind {
	case enums.ResourceProduct:
		items, err := s.Products.List(ctx)
		return render(items, err, productTable(f))
	case enums.ResourceProductCategory:
		items, err := s.Categories.List(ctx)
		return render(items, err, categoryTable)
	case enums.ResourceOrder:
		items, err := s.Orders.List(ctx)
		return render(items, err, orderTable(f))
	case enums.ResourceCustomer:
		items, err := s.Customers.List(ctx)
		return render(items, err, personTable)
	case enums.ResourceEmployee:
		items, err := s.Employees.List(ctx)
		return render(items, err, personTable)
	case enums.ResourceSupplier:
		items, err := s.Suppliers.List(ctx)
		return render(items, err, supplierTable)
	case enums.ResourcePurchase:
		items, err := s.Purchases.List(ctx)
		return render(items, err, purchaseTable)
	case enums.ResourcePerson:
		items, err := s.Persons.List(ctx)
		return render(items, err, personTable)
	case enums.ResourceUser:
		items, err := s.Users.List(ctx)
		return render(items, err, userTable)
	case enums.ResourceUserType:
		items, err := s.UserTypes(ctx)
		return render(items, err, userTypeTable)
	default:
		return Table{}, unsupported(kind, "list")
	}
}

type tableSpec[T any] struct {
	headers []string
	row     func(T) []string
}

func render[T any](items []T, err error, spec tableSpec[T]) (Table, error) {
	if err != nil {
		return Table{}, err
	}
	table := Table{Headers: spec.headers, Rows: make([][]string, 0, len(items))}
	for _, item := range items {
		table.Rows = append(table.Rows, spec.row(item))
	}
	return table, nil
}

func productTable(f money.Formatter) tableSpec[pharmacyapi.Product] {
	return tableSpec[pharmacyapi.Product]{
		headers: []string{"ID", "NOME", "CATEGORIA", "PREÇO", "STOCK", "VALIDADE"},
		row: func(p pharmacyapi.Product) []string {
			category := placeholder
			if p.ProductCategory != nil && p.ProductCategory.Name != "" {
				category = p.ProductCategory.Name
			}
			return []string{id(p.PKProduct), p.Name, category, f.Format(p.Price), strconv.Itoa(p.Stock), orDash(datePart(p.ExpirationDate))}
		},
	}
}

var categoryTable = tableSpec[pharmacyapi.ProductCategory]{
	headers: []string{"ID", "NOME"},
	row: func(c pharmacyapi.ProductCategory) []string {
		return []string{id(c.PKProductCategory), c.Name}
	},
}

func orderTable(f money.Formatter) tableSpec[pharmacyapi.Order] {
	return tableSpec[pharmacyapi.Order]{
		headers: []string{"ID", "CLIENTE", "PRODUTOS", "TOTAL", "DATA"},
		row: func(o pharmacyapi.Order) []string {
			customer := placeholder
			if o.Customer != nil {
				customer = o.Customer.Name
			}
			return []string{id(o.PKOrder), customer, strconv.Itoa(len(o.Products)), f.Format(o.Total), orDash(datePart(o.OrderDate))}
		},
	}
}

var personTable = tableSpec[pharmacyapi.Person]{
	headers: []string{"ID", "NOME", "EMAIL", "TELEFONE", "ENDEREÇO"},
	row: func(p pharmacyapi.Person) []string {
		address := placeholder
		if p.HasDeliveryAddress() {
			address = p.Address.Residence
		}
		return []string{id(p.PKPerson), p.Name, p.Email, orDash(p.Phone), address}
	},
}

var supplierTable = tableSpec[pharmacyapi.Supplier]{
	headers: []string{"ID", "NOME", "EMAIL", "NIF", "TELEFONE"},
	row: func(s pharmacyapi.Supplier) []string {
		return []string{id(s.PKSupplier), s.Name, s.Email, orDash(s.NIF), orDash(s.Phone)}
	},
}

var purchaseTable = tableSpec[pharmacyapi.Purchase]{
	headers: []string{"ID", "PRODUTO", "FORNECEDOR", "QUANTIDADE", "DATA"},
	row: func(p pharmacyapi.Purchase) []string {
		product, supplier := placeholder, placeholder
		if p.Product != nil {
			product = p.Product.Name
		}
		if p.Supplier != nil {
			supplier = p.Supplier.Name
		}
		return []string{id(p.PKPurchase), product, supplier, strconv.Itoa(p.Quantity), orDash(datePart(p.PurchaseDate))}
	},
}

var userTable = tableSpec[pharmacyapi.User]{
	headers: []string{"ID", "NOME", "EMAIL", "TIPO"},
	row: func(u pharmacyapi.User) []string {
		return []string{id(u.PKUser), u.DisplayName(), u.Email, forms.UserTypeLabel(u.UserType)}
	},
}

var userTypeTable = tableSpec[pharmacyapi.UserType]{
	headers: []string{"ID", "NOME", "DESCRIÇÃO"},
	row: func(t pharmacyapi.UserType) []string {
		return []string{id(t.PKUserType), forms.UserTypeLabel(t.Name), orDash(t.Description)}
	},
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// datePart keeps the date of an ISO timestamp.
func datePart(value string) string {
	date, _, _ := strings.Cut(value, "T")
	return date
}
