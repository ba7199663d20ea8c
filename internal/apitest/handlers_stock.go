package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
)

const maxUploadBytes = 5 << 20

func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, sortedValues(s.suppliers))
}

func (s *Server) createSupplier(w http.ResponseWriter, r *http.Request) {
	var in supplierInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Nome do fornecedor é obrigatório"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	supplier := &wireSupplier{PKSupplier: s.id("supplier")}
	s.applySupplier(supplier, in)
	s.suppliers[supplier.PKSupplier] = supplier
	writeData(w, http.StatusCreated, supplier)
}

func (s *Server) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	var in supplierInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	supplier, ok := s.suppliers[id]
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	s.applySupplier(supplier, in)
	writeData(w, http.StatusOK, supplier)
}

func (s *Server) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	deleteFrom(s, w, r, s.suppliers)
}

func (s *Server) applySupplier(supplier *wireSupplier, in supplierInput) {
	supplier.Name = in.Name
	supplier.Email = in.Email
	supplier.NIF = in.NIF
	supplier.Phone = in.Phone
	if in.Address == nil {
		return
	}
	if supplier.Address == nil {
		supplier.Address = &wireAddress{PKAddress: s.id("address")}
	}
	supplier.Address.Name = in.Address.Name
	supplier.Address.City = in.Address.City
	supplier.Address.Residence = in.Address.Residence
}

func (s *Server) listPurchases(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, sortedValues(s.purchases))
}

// createPurchase restocks the purchased product.
func (s *Server) createPurchase(w http.ResponseWriter, r *http.Request) {
	var in purchaseInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	purchase := &wirePurchase{}
	if err := s.fillPurchase(purchase, in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	purchase.PKPurchase = s.id("purchase")
	s.products[purchase.Product.PKProduct].Stock += purchase.Quantity
	purchase.Product.Stock = s.products[purchase.Product.PKProduct].Stock
	s.purchases[purchase.PKPurchase] = purchase
	writeData(w, http.StatusCreated, purchase)
}

func (s *Server) updatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	var in purchaseInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	previous, ok := s.purchases[id]
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	updated := &wirePurchase{PKPurchase: id}
	if err := s.fillPurchase(updated, in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	if err := s.unstock(previous); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	s.products[updated.Product.PKProduct].Stock += updated.Quantity
	s.purchases[id] = updated
	writeData(w, http.StatusOK, updated)
}

// deletePurchase takes the purchased units back out of stock.
func (s *Server) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	purchase, ok := s.purchases[id]
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	if err := s.unstock(purchase); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	delete(s.purchases, id)
	writeData(w, http.StatusOK, nil)
}

func (s *Server) unstock(purchase *wirePurchase) error {
	product, ok := s.products[purchase.Product.PKProduct]
	if !ok {
		return nil
	}
	if product.Stock < purchase.Quantity {
		return pkgerrors.New(pkgerrors.CodeConflict, "Stock já vendido")
	}
	product.Stock -= purchase.Quantity
	return nil
}

func (s *Server) fillPurchase(purchase *wirePurchase, in purchaseInput) error {
	if in.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Quantidade inválida")
	}
	if in.FKProduct == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Produto é obrigatório")
	}
	product, ok := s.products[*in.FKProduct]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "Produto inválido")
	}
	if in.FKSupplier == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Fornecedor é obrigatório")
	}
	supplier, ok := s.suppliers[*in.FKSupplier]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "Fornecedor inválido")
	}

	if in.FKEmployee != nil {
		record, ok := s.persons[*in.FKEmployee]
		if !ok || !record.userType.IsStaff() {
			return pkgerrors.New(pkgerrors.CodeValidation, "Funcionário inválido")
		}
		employee := personView(record)
		purchase.Employee = &employee
	}

	productView := s.productView(product)
	supplierView := *supplier
	purchase.Product = &productView
	purchase.Supplier = &supplierView
	purchase.Quantity = in.Quantity
	purchase.Observation = in.Observation
	if in.PurchaseDate != nil {
		purchase.PurchaseDate = *in.PurchaseDate
	}
	return nil
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, order := range s.orders {
		value, err := decimal.NewFromString(string(order.Total))
		if err == nil {
			total = total.Add(value)
		}
	}
	writeData(w, http.StatusOK, wireStatistics{
		TotalOrdersValue: json.Number(total.String()),
		CountProducts:    len(s.products),
		CountOrders:      len(s.orders),
	})
}

// upload stores an image sent as multipart field "file".
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<10)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, UnsupportedFileError))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, UnsupportedFileError))
		return
	}
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, UnsupportedFileError).WithStatus(http.StatusUnsupportedMediaType))
		return
	}

	name := uuid.NewString() + detected.Extension()
	s.mu.Lock()
	s.uploads[name] = data
	s.mu.Unlock()

	writeData(w, http.StatusCreated, map[string]string{
		"url":  "http://" + r.Host + "/uploads/" + name,
		"name": header.Filename,
	})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.uploads[chi.URLParam(r, "name")]
	s.mu.Unlock()
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	_, _ = w.Write(data)
}
