package apitest

import (
	"net/http"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
)

func sortedValues[V any](m map[int64]V) []V {
	out := make([]V, 0, len(m))
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func (s *Server) productView(product *wireProduct) wireProduct {
	view := *product
	if category, ok := s.categories[product.FKProductCategory]; ok {
		copied := *category
		view.ProductCategory = &copied
	}
	return view
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wireProduct, 0, len(s.products))
	for _, product := range sortedValues(s.products) {
		out = append(out, s.productView(product))
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) applyProduct(product *wireProduct, in productInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Nome do produto é obrigatório")
	}
	price, err := decimal.NewFromString(string(in.Price))
	if err != nil || price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Preço inválido")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Stock inválido")
	}
	if in.FKProductCategory != 0 {
		if _, ok := s.categories[in.FKProductCategory]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "Categoria inválida")
		}
	}

	product.Name = in.Name
	product.Price = in.Price
	product.Description = in.Description
	product.Image = in.Image
	product.ManufactureDate = in.ManufactureDate
	product.ExpirationDate = in.ExpirationDate
	product.FKProductCategory = in.FKProductCategory
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	return nil
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	product := &wireProduct{}
	if err := s.applyProduct(product, in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	product.PKProduct = s.id("product")
	s.products[product.PKProduct] = product
	writeData(w, http.StatusCreated, s.productView(product))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	var in productInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	updated := *product
	if err := s.applyProduct(&updated, in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	*product = updated
	writeData(w, http.StatusOK, s.productView(product))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	deleteFrom(s, w, r, s.products)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, sortedValues(s.categories))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Nome da categoria é obrigatório"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	category := &wireCategory{PKProductCategory: s.id("category"), Name: in.Name}
	s.categories[category.PKProductCategory] = category
	writeData(w, http.StatusCreated, category)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	category, ok := s.categories[id]
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	category.Name = in.Name
	writeData(w, http.StatusOK, category)
}

// deleteCategory leaves the category's products uncategorised.
func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	delete(s.categories, id)
	for _, product := range s.products {
		if product.FKProductCategory == id {
			product.FKProductCategory = 0
		}
	}
	writeData(w, http.StatusOK, nil)
}

// deleteFrom removes the record named by the {id} path parameter.
func deleteFrom[V any](s *Server, w http.ResponseWriter, r *http.Request, records map[int64]V) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := records[id]; !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	delete(records, id)
	writeData(w, http.StatusOK, nil)
}
