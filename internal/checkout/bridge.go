// Package checkout turns the cart into an order submission.
package checkout

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/angelmondragon/pharmacy-backoffice/internal/cart"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/metrics"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

const (
	CreatedMessage     = "Venda criada com sucesso!"
	EditedMessage      = "Venda editada com sucesso!"
	CreateErrorMessage = "Ocorreu um erro ao criar encomenda"
	EditErrorMessage   = "Ocorreu um erro ao editar encomenda"
	InProgressMessage  = "A encomenda já está a ser enviada"
)

type orderSubmitter interface {
	CreateOrder(ctx context.Context, in pharmacyapi.OrderInput, idempotencyKey string) (*pharmacyapi.Order, error)
	UpdateOrder(ctx context.Context, id int64, in pharmacyapi.OrderInput, idempotencyKey string) (*pharmacyapi.Order, error)
}

type cartReader interface {
	Lines() []cart.Line
	Settle(submitted []cart.Line) bool
}

type currentUser interface {
	User() *pharmacyapi.User
}

// Request carries what the checkout surface collects besides the cart.
// A non-zero OrderID edits that order instead of creating one.
type Request struct {
	OrderID     int64
	AddressID   int64
	Observation string
	OrderDate   string
}

// Bridge submits the cart as an order. On success it settles the submitted
// lines in one cart mutation, so lines added while the request was in flight
// stay in the cart. It then refetches the catalog and closes the checkout surface; on failure the cart
// is left as it was.
type Bridge struct {
	orders   orderSubmitter
	cart     cartReader
	session  currentUser
	notifier notify.Notifier
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	refetch  func(ctx context.Context) error
	onClose  func()
	newKey   func() string

	submitting atomic.Bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithNotifier sets where submit outcomes are reported. Nil keeps the default.
func WithNotifier(n notify.Notifier) Option {
	return func(b *Bridge) {
		if n != nil {
			b.notifier = n
		}
	}
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(logg *logger.Logger) Option {
	return func(b *Bridge) {
		if logg != nil {
			b.logg = logg
		}
	}
}

// WithMetrics records submission outcomes on m.
func WithMetrics(m *metrics.CheckoutMetrics) Option {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// WithRefetch runs fn after a successful submit so stock reflects the sale.
func WithRefetch(fn func(ctx context.Context) error) Option {
	return func(b *Bridge) {
		b.refetch = fn
	}
}

// WithOnClose runs fn after a successful submit.
func WithOnClose(fn func()) Option {
	return func(b *Bridge) {
		b.onClose = fn
	}
}

// WithIdempotencyKeys overrides the key generator.
func WithIdempotencyKeys(fn func() string) Option {
	return func(b *Bridge) {
		if fn != nil {
			b.newKey = fn
		}
	}
}

// NewBridge builds the checkout bridge.
func NewBridge(orders orderSubmitter, store cartReader, session currentUser, opts ...Option) (*Bridge, error) {
	if orders == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if session == nil {
		return nil, fmt.Errorf("session required")
	}
	b := &Bridge{
		orders:   orders,
		cart:     store,
		session:  session,
		notifier: notify.Discard,
		logg:     logger.Nop(),
		newKey:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Submit validates the draft before any network call, then creates or edits
// the order.
func (b *Bridge) Submit(ctx context.Context, req Request) (*pharmacyapi.Order, error) {
	if !b.submitting.CompareAndSwap(false, true) {
		b.notifier.Notify(ctx, notify.Error(InProgressMessage))
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")
	}
	defer b.submitting.Store(false)

	user := b.session.User()
	lines := b.cart.Lines()
	draft := NewDraft(lines, user, req)
	if msg, errs := draft.Validate(); errs != nil {
		b.metrics.ObserveSubmission(enums.CheckoutRejected)
		b.notifier.Notify(ctx, notify.Error(msg))
		return nil, errs.Err()
	}

	ctx = b.logg.WithFields(ctx, map[string]any{
		"customer_id": draft.CustomerID,
		"lines":       len(draft.Products),
	})
	if req.OrderID != 0 {
		ctx = b.logg.WithOrderID(ctx, req.OrderID)
	}

	key := b.newKey()
	var (
		order *pharmacyapi.Order
		err   error
	)
	if req.OrderID != 0 {
		order, err = b.orders.UpdateOrder(ctx, req.OrderID, draft.Input(), key)
	} else {
		order, err = b.orders.CreateOrder(ctx, draft.Input(), key)
	}
	if err != nil {
		b.metrics.ObserveSubmission(enums.CheckoutFailed)
		b.logg.Error(ctx, "checkout.submit_failed", err)
		b.notifier.Notify(ctx, notify.Error(pkgerrors.APIMessage(err, failureMessage(req))))
		return nil, err
	}

	b.cart.Settle(lines)
	b.metrics.ObserveSubmission(enums.CheckoutSucceeded)
	b.logg.Info(ctx, "checkout.submitted")
	b.notifier.Notify(ctx, notify.Success(successMessage(req)))
	if b.refetch != nil {
		if err := b.refetch(ctx); err != nil {
			b.logg.Warn(ctx, fmt.Sprintf("checkout.refetch_failed: %v", err))
		}
	}
	if b.onClose != nil {
		b.onClose()
	}
	return order, nil
}

func successMessage(req Request) string {
	if req.OrderID != 0 {
		return EditedMessage
	}
	return CreatedMessage
}

func failureMessage(req Request) string {
	if req.OrderID != 0 {
		return EditErrorMessage
	}
	return CreateErrorMessage
}
