package backoffice

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backoffice/internal/apitest"
	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/money"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *apitest.Server, *notify.Recorder) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	token, err := srv.TokenFor(apitest.AdminEmail)
	require.NoError(t, err)
	client, err := pharmacyapi.NewClient(
		pharmacyapi.WithBaseURL(srv.URL),
		pharmacyapi.WithHTTPClient(srv.Client()),
		pharmacyapi.WithTokenSource(pharmacyapi.StaticToken(token)),
	)
	require.NoError(t, err)

	rec := &notify.Recorder{}
	svc, err := NewService(client, append([]Option{WithNotifier(rec)}, opts...)...)
	require.NoError(t, err)
	return svc, srv, rec
}

func TestNewServiceRequiresClient(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestProductLifecycle(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()

	stock := 7
	created, err := svc.Products.Create(ctx, forms.Product{
		Name:              "Xarope para a tosse",
		Price:             "1250,50",
		Stock:             &stock,
		Description:       "Frasco de 200ml",
		ManufactureDate:   "2026-01-10",
		ExpirationDate:    "2028-01-10",
		FKProductCategory: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "1250.5", created.Price.String())
	assert.Len(t, svc.Products.Items(), 6)

	require.NoError(t, svc.Delete(ctx, enums.ResourceProduct, created.PKProduct))
	assert.Len(t, svc.Products.Items(), 5)

	notes := rec.All()
	require.Len(t, notes, 2)
	assert.Equal(t, ProductLabels.Created, notes[0].Title)
	assert.Equal(t, ProductLabels.Deleted, notes[1].Title)
}

func TestOrderCreateSendsIdempotencyKey(t *testing.T) {
	svc, srv, rec := newTestService(t, WithIdempotencyKeys(func() string { return "order-key" }))

	_, err := svc.Orders.Create(context.Background(), forms.Order{
		Products:   []forms.OrderLine{{ProductID: 2, Quantity: 3}},
		FKCustomer: 3,
		FKAddress:  1,
		FKEmployee: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, srv.Stock(2))

	headers := srv.Requests(http.MethodPost, "/order")
	require.Len(t, headers, 1)
	assert.Equal(t, "order-key", headers[0].Get(pharmacyapi.IdempotencyHeader))

	last, _ := rec.Last()
	assert.Equal(t, notify.Success(OrderLabels.Created), last)
}

func TestOrderCreateShowsServerMessage(t *testing.T) {
	svc, srv, rec := newTestService(t)

	_, err := svc.Orders.Create(context.Background(), forms.Order{
		Products:   []forms.OrderLine{{ProductID: 1, Quantity: 5}},
		FKCustomer: 3,
		FKAddress:  1,
		FKEmployee: 2,
	})
	require.Error(t, err)
	assert.Zero(t, srv.OrderCount())
	last, _ := rec.Last()
	assert.Equal(t, notify.Error("Stock insuficiente para Paracetamol 500mg"), last)
}

func TestCustomerDeleteGoesThroughPerson(t *testing.T) {
	svc, srv, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, enums.ResourceCustomer, 4))
	assert.Len(t, srv.Requests(http.MethodDelete, "/person/4"), 1)

	customers, err := svc.PersonsOfType(ctx, enums.UserTypeCustomer)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestUserCreateGoesThroughPerson(t *testing.T) {
	svc, srv, rec := newTestService(t)

	user, err := svc.Users.Create(context.Background(), forms.User{
		Name:     "Carlos Gestor",
		Password: "segredo1",
		Email:    "carlos@farmacia.ao",
		UserType: enums.UserTypeEmployee,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.UserTypeEmployee, user.UserType)
	assert.Equal(t, "Carlos Gestor", user.DisplayName())
	assert.Len(t, srv.Requests(http.MethodPost, "/person"), 1)
	assert.Len(t, svc.Users.Items(), 5)

	last, _ := rec.Last()
	assert.Equal(t, notify.Success(UserLabels.Created), last)
}

func TestServiceRejectsInvalidRequests(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.PersonsOfType(ctx, "guest")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, enums.ResourceUser, 1), pkgerrors.CodeValidation))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, enums.ResourceProduct, 0), pkgerrors.CodeValidation))
}

func TestStatistics(t *testing.T) {
	svc, _, _ := newTestService(t)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.CountProducts)
	assert.Zero(t, stats.CountOrders)
}

func TestProductTable(t *testing.T) {
	svc, _, _ := newTestService(t)

	table, err := svc.Table(context.Background(), enums.ResourceProduct, money.NewFormatter(""))
	require.NoError(t, err)
	require.Len(t, table.Rows, 5)
	assert.Equal(t, []string{"1", "Paracetamol 500mg", "Analgésicos", "1000,00\u00a0Kz", "3", "2027-06-30"}, table.Rows[0])
	assert.Equal(t, placeholder, table.Rows[4][2])

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
}

func TestUserTypeTableUsesLabels(t *testing.T) {
	svc, _, _ := newTestService(t)

	table, err := svc.Table(context.Background(), enums.ResourceUserType, money.NewFormatter(""))
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Administrador", table.Rows[1][1])
}

func TestEmptyTableWritesNoData(t *testing.T) {
	svc, _, _ := newTestService(t)

	table, err := svc.Table(context.Background(), enums.ResourceOrder, money.NewFormatter(""))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.Write(&buf))
	assert.Equal(t, NoData+"\n", buf.String())
}
