package backoffice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pharmacy-backoffice/internal/forms"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/notify"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/pharmacyapi"
)

type categoryAPI struct {
	lists     int
	created   []pharmacyapi.ProductCategoryInput
	createErr error
	listErr   error
	deleteErr error
	items     []pharmacyapi.ProductCategory
}

func (a *categoryAPI) endpoints() Endpoints[pharmacyapi.ProductCategory, pharmacyapi.ProductCategoryInput] {
	return Endpoints[pharmacyapi.ProductCategory, pharmacyapi.ProductCategoryInput]{
		List: func(context.Context) ([]pharmacyapi.ProductCategory, error) {
			a.lists++
			return a.items, a.listErr
		},
		Create: func(_ context.Context, in pharmacyapi.ProductCategoryInput) (*pharmacyapi.ProductCategory, error) {
			if a.createErr != nil {
				return nil, a.createErr
			}
			a.created = append(a.created, in)
			category := pharmacyapi.ProductCategory{PKProductCategory: int64(len(a.items) + 1), Name: in.Name}
			a.items = append(a.items, category)
			return &category, nil
		},
		Delete: func(context.Context, int64) error {
			return a.deleteErr
		},
	}
}

func newCategoryResource(api *categoryAPI, rec *notify.Recorder) *Resource[pharmacyapi.ProductCategory, forms.Category, pharmacyapi.ProductCategoryInput] {
	return newResource[pharmacyapi.ProductCategory, forms.Category](enums.ResourceProductCategory, CategoryLabels, api.endpoints(), rec, logger.Nop())
}

func TestCreateValidatesBeforeCalling(t *testing.T) {
	api := &categoryAPI{}
	rec := &notify.Recorder{}
	res := newCategoryResource(api, rec)

	_, err := res.Create(context.Background(), forms.Category{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, api.created)
	assert.Zero(t, api.lists)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error(forms.RequiredMessage), last)
}

func TestCreateNotifiesAndRefetches(t *testing.T) {
	api := &categoryAPI{}
	rec := &notify.Recorder{}
	res := newCategoryResource(api, rec)

	created, err := res.Create(context.Background(), forms.Category{Name: "  Xaropes "})
	require.NoError(t, err)
	assert.Equal(t, "Xaropes", created.Name)
	assert.Equal(t, 1, api.lists)
	assert.Len(t, res.Items(), 1)
	assert.Equal(t, []notify.Notification{notify.Success(CategoryLabels.Created)}, rec.All())
}

func TestRefetchFailureKeepsSuccess(t *testing.T) {
	api := &categoryAPI{listErr: errors.New("offline")}
	rec := &notify.Recorder{}
	res := newCategoryResource(api, rec)

	_, err := res.Create(context.Background(), forms.Category{Name: "Xaropes"})
	require.NoError(t, err)
	last, _ := rec.Last()
	assert.Equal(t, notify.StatusSuccess, last.Status)
	assert.Empty(t, res.Items())
}

func TestFailureNotifiesServerMessageOrFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "server message", err: pkgerrors.Remote(409, "Categoria já existe"), want: "Categoria já existe"},
		{name: "empty server message", err: pkgerrors.Remote(500, ""), want: CategoryLabels.CreateFailed},
		{name: "transport error", err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial"), "execute"), want: CategoryLabels.CreateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &categoryAPI{createErr: tt.err}
			rec := &notify.Recorder{}
			res := newCategoryResource(api, rec)

			_, err := res.Create(context.Background(), forms.Category{Name: "Xaropes"})
			require.ErrorIs(t, err, tt.err)
			assert.Zero(t, api.lists)
			last, _ := rec.Last()
			assert.Equal(t, notify.Error(tt.want), last)
		})
	}
}

func TestDeleteOutcomes(t *testing.T) {
	api := &categoryAPI{}
	rec := &notify.Recorder{}
	res := newCategoryResource(api, rec)

	require.NoError(t, res.Delete(context.Background(), 1))
	last, _ := rec.Last()
	assert.Equal(t, notify.Success(CategoryLabels.Deleted), last)

	api.deleteErr = pkgerrors.Remote(404, "")
	require.Error(t, res.Delete(context.Background(), 1))
	last, _ = rec.Last()
	assert.Equal(t, notify.Error(CategoryLabels.DeleteFailed), last)
}

func TestUnsupportedOperation(t *testing.T) {
	rec := &notify.Recorder{}
	res := newCategoryResource(&categoryAPI{}, rec)

	_, err := res.Edit(context.Background(), 1, forms.Category{Name: "Xaropes"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, rec.All())
}
