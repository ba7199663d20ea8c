// Package shell is the storefront as a command line: browse the catalog,
// fill the cart and check out.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angelmondragon/pharmacy-backoffice/internal/cart"
	"github.com/angelmondragon/pharmacy-backoffice/internal/catalog"
	"github.com/angelmondragon/pharmacy-backoffice/internal/checkout"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/money"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

const (
	Prompt = "> "

	UnknownCommandMessage = "Comando desconhecido. Escreva \"ajuda\" para ver os comandos."
	UnknownProductMessage = "Produto %d não existe no catálogo"
	UnchangedMessage      = "Sem alterações no carrinho"
	CancelledMessage      = "Carrinho esvaziado"
	CatalogErrorMessage   = "Não foi possível carregar os produtos"
)

const helpText = `Comandos:
  produtos [categoria]      lista o catálogo (products)
  add <id> [quantidade]     adiciona ao carrinho
  inc <id>                  mais uma unidade
  dec <id>                  menos uma unidade
  rm <id>                   retira do carrinho
  carrinho                  mostra o carrinho (cart)
  moradas                   endereços de entrega (addresses)
  checkout [observação]     envia a encomenda
  cancelar                  esvazia o carrinho (cancel)
  sair                      termina (quit)`

type catalogSource interface {
	Refresh(ctx context.Context) ([]catalog.Item, error)
	Items() []catalog.Item
	Lookup(id int64) (catalog.Item, bool)
}

type orderSubmitter interface {
	Submit(ctx context.Context, req checkout.Request) (*pharmacyapi.Order, error)
}

type currentUser interface {
	User() *pharmacyapi.User
}

// Shell runs storefront commands against one cart.
type Shell struct {
	catalog  catalogSource
	cart     *cart.Store
	checkout orderSubmitter
	session  currentUser
	format   money.Formatter
	logg     *logger.Logger
}

type Option func(*Shell)

func WithFormatter(f money.Formatter) Option {
	return func(s *Shell) {
		s.format = f
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(s *Shell) {
		if logg != nil {
			s.logg = logg
		}
	}
}

func New(items catalogSource, store *cart.Store, orders orderSubmitter, session currentUser, opts ...Option) (*Shell, error) {
	if items == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if orders == nil {
		return nil, fmt.Errorf("checkout required")
	}
	if session == nil {
		return nil, fmt.Errorf("session required")
	}
	s := &Shell{
		catalog:  items,
		cart:     store,
		checkout: orders,
		session:  session,
		format:   money.NewFormatter(""),
		logg:     logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Cart exposes the store the shell mutates.
func (s *Shell) Cart() *cart.Store {
	return s.cart
}

// Exec runs one command line and returns what to print. quit is true once
// the operator asked to leave.
func (s *Shell) Exec(ctx context.Context, line string) (output string, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	ctx = s.logg.WithField(ctx, "command", name)

	switch name {
	case "ajuda", "help", "?":
		return helpText, false
	case "produtos", "products":
		return s.products(ctx, strings.Join(args, " ")), false
	case "add":
		return s.add(args), false
	case "inc":
		return s.press(args, cart.ControlIncrement), false
	case "dec":
		return s.press(args, cart.ControlDecrement), false
	case "rm":
		return s.remove(args), false
	case "carrinho", "cart":
		return s.render(), false
	case "moradas", "addresses":
		return s.addresses(), false
	case "checkout":
		return s.submit(ctx, strings.Join(args, " ")), false
	case "cancelar", "cancel":
		s.cart.Clear()
		return CancelledMessage, false
	case "sair", "quit", "exit":
		return "", true
	default:
		return UnknownCommandMessage, false
	}
}

// Run reads commands from in until quit or end of input.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, Prompt)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		output, quit := s.Exec(ctx, scanner.Text())
		if output != "" {
			fmt.Fprintln(out, output)
		}
		if quit {
			return nil
		}
		fmt.Fprint(out, Prompt)
	}
	return scanner.Err()
}

// Refresh reloads the catalog and trims the cart to the new stock.
func (s *Shell) Refresh(ctx context.Context) error {
	items, err := s.catalog.Refresh(ctx)
	if err != nil {
		return err
	}
	s.cart.Sync(items)
	return nil
}

func (s *Shell) products(ctx context.Context, category string) string {
	if err := s.Refresh(ctx); err != nil {
		s.logg.Error(ctx, "shell.catalog_refresh_failed", err)
		return pkgerrors.APIMessage(err, CatalogErrorMessage)
	}

	items := s.catalog.Items()
	if len(items) == 0 {
		return cart.EmptyShelfLabel
	}

	var b strings.Builder
	shown := 0
	for _, group := range catalog.GroupByCategory(items) {
		if category != "" && !strings.EqualFold(group.Category, category) {
			continue
		}
		fmt.Fprintf(&b, "%s\n", group.Category)
		for _, card := range cart.ProductCards(group.Items, s.cart, s.format) {
			fmt.Fprintf(&b, "  %s\n", describeCard(card))
			shown++
		}
	}
	if shown == 0 {
		return cart.EmptyShelfLabel
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeCard(card cart.ProductCard) string {
	var status string
	switch {
	case card.OutOfStock:
		status = card.Badge
	case card.ShowBasket:
		status = cart.Availability(card.Item.Stock)
	default:
		status = fmt.Sprintf("no carrinho: %d %s", card.Quantity, cart.Availability(card.Item.Stock))
	}
	return fmt.Sprintf("[%d] %s  %s  %s", card.Item.ID, card.Item.Name, card.Price, status)
}

func (s *Shell) add(args []string) string {
	item, msg, ok := s.lookup(args)
	if !ok {
		return msg
	}
	quantity := 1
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			return "Quantidade inválida"
		}
		quantity = parsed
	}
	if !s.cart.Add(item, quantity) {
		return UnchangedMessage
	}
	return s.badge()
}

func (s *Shell) press(args []string, control cart.Control) string {
	item, msg, ok := s.lookup(args)
	if !ok {
		return msg
	}
	if !cart.Press(s.cart, item, control) {
		return UnchangedMessage
	}
	return s.badge()
}

func (s *Shell) remove(args []string) string {
	id, msg, ok := parseID(args)
	if !ok {
		return msg
	}
	if !s.cart.Remove(id) {
		return UnchangedMessage
	}
	return s.badge()
}

// lookup resolves the id argument against the catalog, falling back to the
// cart for items that left the catalog since they were added.
func (s *Shell) lookup(args []string) (catalog.Item, string, bool) {
	id, msg, ok := parseID(args)
	if !ok {
		return catalog.Item{}, msg, false
	}
	if item, ok := s.catalog.Lookup(id); ok {
		return item, "", true
	}
	for _, line := range s.cart.Lines() {
		if line.Item.ID == id {
			return line.Item, "", true
		}
	}
	return catalog.Item{}, fmt.Sprintf(UnknownProductMessage, id), false
}

func parseID(args []string) (int64, string, bool) {
	if len(args) == 0 {
		return 0, "Indique o id do produto", false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "Id de produto inválido", false
	}
	return id, "", true
}

func (s *Shell) badge() string {
	view := cart.Render(s.cart, s.format)
	return fmt.Sprintf("%s  Total: %s", view.Badge, view.Total)
}

func (s *Shell) render() string {
	view := cart.Render(s.cart, s.format)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", view.Title, view.Badge)
	if view.Empty {
		fmt.Fprintf(&b, "%s\n", view.EmptyMessage)
	}
	for _, line := range view.Lines {
		fmt.Fprintf(&b, "  [%d] %s  %d x %s = %s  %s\n", line.ItemID, line.Name, line.Quantity, line.UnitPrice, line.Subtotal, line.Availability)
	}
	fmt.Fprintf(&b, "Total: %s", view.Total)
	return b.String()
}

func (s *Shell) addresses() string {
	options := checkout.AddressOptions(s.session.User())
	if len(options) == 0 {
		return checkout.AddressHelperText
	}
	var b strings.Builder
	for _, option := range options {
		fmt.Fprintf(&b, "[%d] %s\n", option.ID, option.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

// submit checks out to the account's delivery address. Validation and API
// failures are reported by the checkout notifications.
func (s *Shell) submit(ctx context.Context, observation string) string {
	req := checkout.Request{Observation: observation}
	if options := checkout.AddressOptions(s.session.User()); len(options) > 0 {
		req.AddressID = options[0].ID
	}
	order, err := s.checkout.Submit(ctx, req)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("Encomenda #%d  Total: %s", order.PKOrder, s.format.Format(order.Total))
}
