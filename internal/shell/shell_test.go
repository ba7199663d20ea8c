package shell

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backoffice/internal/apitest"
	"github.com/angelmondragon/pharmacy-backoffice/internal/cart"
	"github.com/angelmondragon/pharmacy-backoffice/internal/catalog"
	"github.com/angelmondragon/pharmacy-backoffice/internal/checkout"
	"github.com/angelmondragon/pharmacy-backoffice/internal/session"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

type fixture struct {
	srv   *apitest.Server
	shell *Shell
	store *cart.Store
	notes *notify.Recorder
}

func newFixture(t *testing.T, email string) fixture {
	t.Helper()
	ctx := context.Background()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	token, err := srv.TokenFor(email)
	require.NoError(t, err)
	tokens := session.NewMemoryStore(token)
	client, err := pharmacyapi.NewClient(
		pharmacyapi.WithBaseURL(srv.URL),
		pharmacyapi.WithHTTPClient(srv.Client()),
		pharmacyapi.WithTokenSource(session.StoreTokens(tokens)),
	)
	require.NoError(t, err)

	notes := &notify.Recorder{}
	sess, err := session.New(client, tokens, session.WithNotifier(notes))
	require.NoError(t, err)
	_, err = sess.Hydrate(ctx)
	require.NoError(t, err)

	provider, err := catalog.NewProvider(client, nil)
	require.NoError(t, err)
	store := cart.NewStore()
	bridge, err := checkout.NewBridge(client, store, sess,
		checkout.WithNotifier(notes),
		checkout.WithRefetch(func(ctx context.Context) error {
			_, err := provider.Refresh(ctx)
			return err
		}),
	)
	require.NoError(t, err)

	sh, err := New(provider, store, bridge, sess)
	require.NoError(t, err)
	return fixture{srv: srv, shell: sh, store: store, notes: notes}
}

func (f fixture) exec(t *testing.T, line string) string {
	t.Helper()
	out, quit := f.shell.Exec(context.Background(), line)
	require.False(t, quit, "command %q quit the shell", line)
	return out
}

func TestProductsListsCatalogByCategory(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)

	out := f.exec(t, "produtos")
	assert.Contains(t, out, "Analgésicos\n  [1] Paracetamol 500mg  1000,00\u00a0Kz  (3 disponíveis)")
	assert.Contains(t, out, "[3] Amoxicilina 500mg  2500,00\u00a0Kz  "+cart.OutOfStockLabel)
	assert.Contains(t, out, catalog.FallbackCategory+"\n  [5] Soro fisiológico")

	only := f.exec(t, "products vitaminas")
	assert.Equal(t, "Vitaminas\n  [4] Vitamina C  800,50\u00a0Kz  (25 disponíveis)", only)
	assert.Equal(t, cart.EmptyShelfLabel, f.exec(t, "produtos Perfumes"))
}

func TestStockScenario(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	f.exec(t, "produtos")

	assert.Equal(t, "Carrinho (1)  Total: 1000,00\u00a0Kz", f.exec(t, "add 1"))
	f.exec(t, "inc 1")
	f.exec(t, "inc 1")
	assert.Equal(t, UnchangedMessage, f.exec(t, "inc 1"))
	assert.Equal(t, 3, f.store.Quantity(1))

	for i := 0; i < 3; i++ {
		f.exec(t, "dec 1")
	}
	assert.True(t, f.store.IsEmpty())
	assert.Equal(t, UnchangedMessage, f.exec(t, "dec 1"))
}

func TestCartCommandsRejectBadInput(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	f.exec(t, "produtos")

	assert.Equal(t, UnchangedMessage, f.exec(t, "add 3"))
	assert.Equal(t, UnchangedMessage, f.exec(t, "add 1 4"))
	assert.Equal(t, "Produto 99 não existe no catálogo", f.exec(t, "add 99"))
	assert.Equal(t, "Id de produto inválido", f.exec(t, "inc abc"))
	assert.Equal(t, "Indique o id do produto", f.exec(t, "rm"))
	assert.Equal(t, "Quantidade inválida", f.exec(t, "add 1 muitos"))
	assert.Equal(t, UnknownCommandMessage, f.exec(t, "comprar 1"))
	assert.True(t, f.store.IsEmpty())
}

func TestIncrementAddsItemNotYetInCart(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	f.exec(t, "produtos")

	f.exec(t, "inc 2")
	assert.Equal(t, 1, f.store.Quantity(2))
	f.exec(t, "rm 2")
	assert.True(t, f.store.IsEmpty())
}

func TestCartRendering(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	assert.Equal(t, "Meu Carrinho  Carrinho (0)\n"+cart.EmptyCartLabel+"\nTotal: 0,00\u00a0Kz", f.exec(t, "carrinho"))

	f.exec(t, "produtos")
	f.exec(t, "add 1 2")
	f.exec(t, "add 5")
	out := f.exec(t, "cart")
	assert.Contains(t, out, "[1] Paracetamol 500mg  2 x 1000,00\u00a0Kz = 2000,00\u00a0Kz  (3 disponíveis)")
	assert.True(t, strings.HasSuffix(out, "Total: 2300,00\u00a0Kz"))
}

func TestCheckoutSubmitsAndClearsCart(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	f.exec(t, "produtos")
	f.exec(t, "add 1 3")

	out := f.exec(t, "checkout entregar de manhã")
	assert.Equal(t, "Encomenda #1  Total: 3000,00\u00a0Kz", out)
	assert.True(t, f.store.IsEmpty())
	assert.Equal(t, 0, f.srv.Stock(1))

	last, _ := f.notes.Last()
	assert.Equal(t, notify.Success(checkout.CreatedMessage), last)

	// the refetched catalog now shows the item sold out
	assert.Contains(t, f.exec(t, "produtos"), "[1] Paracetamol 500mg  1000,00\u00a0Kz  "+cart.OutOfStockLabel)
}

func TestEmptyCheckoutNeverCallsAPI(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)

	assert.Empty(t, f.exec(t, "checkout"))
	assert.Empty(t, f.srv.Requests(http.MethodPost, "/order"))
	last, _ := f.notes.Last()
	assert.Equal(t, notify.Error(checkout.EmptyCartMessage), last)
}

func TestCheckoutWithoutAddress(t *testing.T) {
	f := newFixture(t, apitest.HomelessEmail)
	f.exec(t, "produtos")
	f.exec(t, "add 2")

	assert.Equal(t, checkout.AddressHelperText, f.exec(t, "moradas"))
	assert.Empty(t, f.exec(t, "checkout"))
	assert.Equal(t, 1, f.store.Quantity(2))
	last, _ := f.notes.Last()
	assert.Equal(t, notify.Error(checkout.NoAddressMessage), last)
}

func TestCheckoutShowsServerRejection(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	f.exec(t, "produtos")
	f.exec(t, "add 1 3")
	f.srv.SetStock(1, 1)

	assert.Empty(t, f.exec(t, "checkout"))
	assert.Equal(t, 3, f.store.Quantity(1))
	last, _ := f.notes.Last()
	assert.Equal(t, notify.Error("Stock insuficiente para Paracetamol 500mg"), last)

	// a catalog refresh trims the cart to what is left
	f.exec(t, "produtos")
	assert.Equal(t, 1, f.store.Quantity(1))
}

func TestCancelEmptiesCart(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	f.exec(t, "produtos")
	f.exec(t, "add 4 2")

	assert.Equal(t, CancelledMessage, f.exec(t, "cancelar"))
	assert.True(t, f.store.IsEmpty())
}

func TestAddressesListsAccountAddress(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	assert.Equal(t, "[1] Casa", f.exec(t, "moradas"))
}

func TestRunStopsAtQuit(t *testing.T) {
	f := newFixture(t, apitest.CustomerEmail)
	f.exec(t, "produtos")

	var out bytes.Buffer
	script := strings.NewReader("add 2\n\ncarrinho\nsair\nadd 2\n")
	require.NoError(t, f.shell.Run(context.Background(), script, &out))

	assert.Equal(t, 1, f.store.Quantity(2))
	assert.Contains(t, out.String(), cart.CartTitle)
	assert.True(t, strings.HasPrefix(out.String(), Prompt))
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(nil, cart.NewStore(), nil, nil)
	require.Error(t, err)
}
