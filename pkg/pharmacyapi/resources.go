package pharmacyapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
)

func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	req := request{method: http.MethodGet, path: path, query: query}
	var out []T
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func send[T any](ctx context.Context, c *Client, method, path string, payload any, headers http.Header) (*T, error) {
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return nil, err
	}
	for key, values := range headers {
		for _, value := range values {
			req.headers.Add(key, value)
		}
	}
	var out T
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the record id of a deletable resource.
func (c *Client) Delete(ctx context.Context, resource enums.Resource, id int64) error {
	req := request{method: http.MethodDelete, path: resourcePath(string(resource), id)}
	return c.call(ctx, req, nil)
}

// Products

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	return list[Product](ctx, c, "/product", nil)
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	return send[Product](ctx, c, http.MethodPost, "/product", in, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	return send[Product](ctx, c, http.MethodPut, resourcePath("product", id), in, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.Delete(ctx, enums.ResourceProduct, id)
}

// Product categories

func (c *Client) ListProductCategories(ctx context.Context) ([]ProductCategory, error) {
	return list[ProductCategory](ctx, c, "/product-category", nil)
}

func (c *Client) CreateProductCategory(ctx context.Context, in ProductCategoryInput) (*ProductCategory, error) {
	return send[ProductCategory](ctx, c, http.MethodPost, "/product-category", in, nil)
}

func (c *Client) UpdateProductCategory(ctx context.Context, id int64, in ProductCategoryInput) (*ProductCategory, error) {
	return send[ProductCategory](ctx, c, http.MethodPut, resourcePath("product-category", id), in, nil)
}

func (c *Client) DeleteProductCategory(ctx context.Context, id int64) error {
	return c.Delete(ctx, enums.ResourceProductCategory, id)
}

// Orders

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	return list[Order](ctx, c, "/order", nil)
}

// CreateOrder submits a new order. A non-empty idempotencyKey is sent so
// the API can recognise a repeated submit.
func (c *Client) CreateOrder(ctx context.Context, in OrderInput, idempotencyKey string) (*Order, error) {
	return send[Order](ctx, c, http.MethodPost, "/order", in, idempotencyHeaders(idempotencyKey))
}

func (c *Client) UpdateOrder(ctx context.Context, id int64, in OrderInput, idempotencyKey string) (*Order, error) {
	return send[Order](ctx, c, http.MethodPut, resourcePath("order", id), in, idempotencyHeaders(idempotencyKey))
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.Delete(ctx, enums.ResourceOrder, id)
}

func idempotencyHeaders(key string) http.Header {
	if key == "" {
		return nil
	}
	headers := http.Header{}
	headers.Set(IdempotencyHeader, key)
	return headers
}

// Customers and employees

func (c *Client) ListCustomers(ctx context.Context) ([]Person, error) {
	return list[Person](ctx, c, "/customer", nil)
}

func (c *Client) CreateCustomer(ctx context.Context, in PersonInput) (*Person, error) {
	return send[Person](ctx, c, http.MethodPost, "/customer", in, nil)
}

func (c *Client) UpdateCustomer(ctx context.Context, id int64, in PersonInput) (*Person, error) {
	return send[Person](ctx, c, http.MethodPut, resourcePath("customer", id), in, nil)
}

func (c *Client) ListEmployees(ctx context.Context) ([]Person, error) {
	return list[Person](ctx, c, "/employee", nil)
}

func (c *Client) CreateEmployee(ctx context.Context, in PersonInput) (*Person, error) {
	return send[Person](ctx, c, http.MethodPost, "/employee", in, nil)
}

func (c *Client) UpdateEmployee(ctx context.Context, id int64, in PersonInput) (*Person, error) {
	return send[Person](ctx, c, http.MethodPut, resourcePath("employee", id), in, nil)
}

// Persons

// ListPersons filters by user type when userType is non-empty.
func (c *Client) ListPersons(ctx context.Context, userType enums.UserType) ([]Person, error) {
	var query url.Values
	if userType != "" {
		query = url.Values{"user_type": []string{string(userType)}}
	}
	return list[Person](ctx, c, "/person", query)
}

func (c *Client) CreatePerson(ctx context.Context, in PersonInput) (*Person, error) {
	return send[Person](ctx, c, http.MethodPost, "/person", in, nil)
}

func (c *Client) UpdatePerson(ctx context.Context, id int64, in PersonInput) (*Person, error) {
	return send[Person](ctx, c, http.MethodPut, resourcePath("person", id), in, nil)
}

func (c *Client) DeletePerson(ctx context.Context, id int64) error {
	return c.Delete(ctx, enums.ResourcePerson, id)
}

// Suppliers

func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return list[Supplier](ctx, c, "/supplier", nil)
}

func (c *Client) CreateSupplier(ctx context.Context, in SupplierInput) (*Supplier, error) {
	return send[Supplier](ctx, c, http.MethodPost, "/supplier", in, nil)
}

func (c *Client) UpdateSupplier(ctx context.Context, id int64, in SupplierInput) (*Supplier, error) {
	return send[Supplier](ctx, c, http.MethodPut, resourcePath("supplier", id), in, nil)
}

func (c *Client) DeleteSupplier(ctx context.Context, id int64) error {
	return c.Delete(ctx, enums.ResourceSupplier, id)
}

// Purchases

func (c *Client) ListPurchases(ctx context.Context) ([]Purchase, error) {
	return list[Purchase](ctx, c, "/purchase", nil)
}

func (c *Client) CreatePurchase(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	return send[Purchase](ctx, c, http.MethodPost, "/purchase", in, nil)
}

func (c *Client) UpdatePurchase(ctx context.Context, id int64, in PurchaseInput) (*Purchase, error) {
	return send[Purchase](ctx, c, http.MethodPut, resourcePath("purchase", id), in, nil)
}

func (c *Client) DeletePurchase(ctx context.Context, id int64) error {
	return c.Delete(ctx, enums.ResourcePurchase, id)
}

// Users

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	return list[User](ctx, c, "/user", nil)
}

func (c *Client) ListUserTypes(ctx context.Context) ([]UserType, error) {
	return list[UserType](ctx, c, "/user-type", nil)
}

// Statistics returns the dashboard counters.
func (c *Client) Statistics(ctx context.Context) (*Statistics, error) {
	var out Statistics
	if err := c.call(ctx, request{method: http.MethodGet, path: "/statistics"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
