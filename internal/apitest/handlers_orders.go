package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
)

const idempotencyHeader = "Idempotency-Key"

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*wireOrder, 0, len(s.orders))
	for _, order := range sortedValues(s.orders) {
		if claims.UserType == enums.UserTypeCustomer && (order.Customer == nil || order.Customer.PKPerson != claims.PersonID) {
			continue
		}
		out = append(out, order)
	}
	writeData(w, http.StatusOK, out)
}

// createOrder reserves stock for every line. A repeated Idempotency-Key
// answers with the order it created the first time.
func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var in orderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	claims := claimsFrom(r.Context())
	key := r.Header.Get(idempotencyHeader)

	s.mu.Lock()
	defer s.mu.Unlock()

	if key != "" {
		if id, ok := s.idempotency[key]; ok {
			if order, ok := s.orders[id]; ok {
				writeData(w, http.StatusOK, order)
				return
			}
		}
	}
	if claims.UserType == enums.UserTypeCustomer && in.FKCustomer != claims.PersonID {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeForbidden, ForbiddenMessage))
		return
	}

	order := &wireOrder{}
	if err := s.fillOrder(order, in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	order.PKOrder = s.id("order")
	s.orders[order.PKOrder] = order
	if key != "" {
		s.idempotency[key] = order.PKOrder
	}
	s.logg.Info(s.logg.WithOrderID(r.Context(), order.PKOrder), "order.created")
	writeData(w, http.StatusCreated, order)
}

// updateOrder releases the stock held by the order before reserving the new
// lines. A rejected update keeps the previous order and its reservation.
func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	var in orderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	previous, ok := s.orders[id]
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}

	s.release(previous)
	updated := &wireOrder{PKOrder: id}
	if err := s.fillOrder(updated, in); err != nil {
		s.reserveLines(previous.Products)
		writeError(r.Context(), s.logg, w, err)
		return
	}
	s.orders[id] = updated
	writeData(w, http.StatusOK, updated)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	s.release(order)
	delete(s.orders, id)
	writeData(w, http.StatusOK, nil)
}

// fillOrder validates in, reserves its stock and fills order. Nothing is
// reserved when it fails.
func (s *Server) fillOrder(order *wireOrder, in orderInput) error {
	if len(in.Products) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, NoProductsMessage)
	}

	customer, ok := s.persons[in.FKCustomer]
	if !ok || customer.userType != enums.UserTypeCustomer {
		return pkgerrors.New(pkgerrors.CodeValidation, "Cliente inválido")
	}
	if customer.person.Address == nil || customer.person.Address.PKAddress != in.FKAddress {
		return pkgerrors.New(pkgerrors.CodeValidation, "Endereço inválido")
	}

	var employee *wirePerson
	if in.FKEmployee != nil {
		record, ok := s.persons[*in.FKEmployee]
		if !ok || !record.userType.IsStaff() {
			return pkgerrors.New(pkgerrors.CodeValidation, "Funcionário inválido")
		}
		view := personView(record)
		employee = &view
	}

	wanted := map[int64]int{}
	var ids []int64
	for _, line := range in.Products {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Quantidade inválida")
		}
		if _, ok := s.products[line.ID]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Produto %d não existe", line.ID))
		}
		if _, seen := wanted[line.ID]; !seen {
			ids = append(ids, line.ID)
		}
		wanted[line.ID] += line.Quantity
	}

	total := decimal.Zero
	lines := make([]wireProduct, 0, len(ids))
	for _, id := range ids {
		product := s.products[id]
		if wanted[id] > product.Stock {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf(StockMessage, product.Name))
		}
		line := s.productView(product)
		line.ProductOrder = &wireProductOrder{Quantity: wanted[id]}
		lines = append(lines, line)
		total = total.Add(product.price().Mul(decimal.NewFromInt(int64(wanted[id]))))
	}

	s.reserveLines(lines)

	customerView := personView(customer)
	address := *customer.person.Address
	order.Customer = &customerView
	order.Employee = employee
	order.Address = &address
	order.Products = lines
	order.Total = json.Number(total.String())
	order.Observation = in.Observation
	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	return nil
}

func (s *Server) reserveLines(lines []wireProduct) {
	for _, line := range lines {
		if product, ok := s.products[line.PKProduct]; ok && line.ProductOrder != nil {
			product.Stock -= line.ProductOrder.Quantity
		}
	}
}

func (s *Server) release(order *wireOrder) {
	for _, line := range order.Products {
		if product, ok := s.products[line.PKProduct]; ok && line.ProductOrder != nil {
			product.Stock += line.ProductOrder.Quantity
		}
	}
}
