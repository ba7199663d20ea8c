package backoffice

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
)

// Labels are the notification titles for one resource.
type Labels struct {
	Created      string
	Edited       string
	Deleted      string
	CreateFailed string
	EditFailed   string
	DeleteFailed string
}

// Form is a schema that converts to the wire payload In.
type Form[In any] interface {
	Input() In
}

// Endpoints are the API calls behind a resource. Nil entries are operations
// the resource does not support.
type Endpoints[T any, In any] struct {
	List   func(ctx context.Context) ([]T, error)
	Create func(ctx context.Context, in In) (*T, error)
	Update func(ctx context.Context, id int64, in In) (*T, error)
	Delete func(ctx context.Context, id int64) error
}

// Resource is one back-office screen: a cached list plus create, edit and
// delete. Every mutation validates first, notifies the outcome and
// refetches the list on success.
type Resource[T any, F Form[In], In any] struct {
	kind      enums.Resource
	labels    Labels
	endpoints Endpoints[T, In]
	notifier  notify.Notifier
	logg      *logger.Logger

	mu    sync.RWMutex
	items []T
}

func newResource[T any, F Form[In], In any](kind enums.Resource, labels Labels, endpoints Endpoints[T, In], notifier notify.Notifier, logg *logger.Logger) *Resource[T, F, In] {
	return &Resource[T, F, In]{
		kind:      kind,
		labels:    labels,
		endpoints: endpoints,
		notifier:  notifier,
		logg:      logg,
	}
}

func (r *Resource[T, F, In]) Kind() enums.Resource {
	return r.kind
}

// List fetches the collection and replaces the cached copy.
func (r *Resource[T, F, In]) List(ctx context.Context) ([]T, error) {
	if r.endpoints.List == nil {
		return nil, unsupported(r.kind, "list")
	}
	items, err := r.endpoints.List(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	return items, nil
}

// Items returns the list from the last successful fetch.
func (r *Resource[T, F, In]) Items() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Resource[T, F, In]) Create(ctx context.Context, form F) (*T, error) {
	if r.endpoints.Create == nil {
		return nil, unsupported(r.kind, "create")
	}
	return r.mutate(ctx, "create", form, r.labels.Created, r.labels.CreateFailed, func(in In) (*T, error) {
		return r.endpoints.Create(ctx, in)
	})
}

func (r *Resource[T, F, In]) Edit(ctx context.Context, id int64, form F) (*T, error) {
	if r.endpoints.Update == nil {
		return nil, unsupported(r.kind, "edit")
	}
	return r.mutate(ctx, "edit", form, r.labels.Edited, r.labels.EditFailed, func(in In) (*T, error) {
		return r.endpoints.Update(ctx, id, in)
	})
}

func (r *Resource[T, F, In]) Delete(ctx context.Context, id int64) error {
	if r.endpoints.Delete == nil {
		return unsupported(r.kind, "delete")
	}
	if err := r.endpoints.Delete(ctx, id); err != nil {
		r.fail(ctx, "delete", err, r.labels.DeleteFailed)
		return err
	}
	r.succeed(ctx, "delete", r.labels.Deleted)
	return nil
}

func (r *Resource[T, F, In]) mutate(ctx context.Context, op string, form F, success, failure string, call func(In) (*T, error)) (*T, error) {
	if errs := forms.Validate(form); errs != nil {
		r.notifier.Notify(ctx, notify.Error(errs.Message()))
		return nil, errs.Err()
	}
	out, err := call(form.Input())
	if err != nil {
		r.fail(ctx, op, err, failure)
		return nil, err
	}
	r.succeed(ctx, op, success)
	return out, nil
}

func (r *Resource[T, F, In]) succeed(ctx context.Context, op, title string) {
	r.notifier.Notify(ctx, notify.Success(title))
	if r.endpoints.List == nil {
		return
	}
	if _, err := r.List(ctx); err != nil {
		r.logg.Warn(r.fields(ctx, op), fmt.Sprintf("backoffice.refetch_failed: %v", err))
	}
}

func (r *Resource[T, F, In]) fail(ctx context.Context, op string, err error, fallback string) {
	r.logg.Error(r.fields(ctx, op), "backoffice.mutation_failed", err)
	r.notifier.Notify(ctx, notify.Error(pkgerrors.APIMessage(err, fallback)))
}

func (r *Resource[T, F, In]) fields(ctx context.Context, op string) context.Context {
	return r.logg.WithFields(ctx, map[string]any{"resource": string(r.kind), "op": op})
}

func unsupported(kind enums.Resource, op string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s does not support %s", kind, op))
}
