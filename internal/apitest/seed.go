package apitest

import (
	"encoding/json"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
)

// Seeded credentials of DefaultSeed.
const (
	AdminEmail          = "admin@farmacia.ao"
	AdminPassword       = "admin123"
	EmployeeEmail       = "funcionario@farmacia.ao"
	EmployeePassword    = "func1234"
	CustomerEmail       = "cliente@farmacia.ao"
	CustomerPassword    = "cliente123"
	HomelessEmail       = "semmorada@farmacia.ao"
	HomelessPassword    = "cliente123"
	DefaultSupplierName = "Distribuidora Angomed"
)

type SeedAddress struct {
	Name      string
	City      string
	Residence string
}

type SeedAccount struct {
	Name     string
	Email    string
	Password string
	Phone    string
	UserType enums.UserType
	Address  *SeedAddress
}

type SeedProduct struct {
	Name           string
	Price          string
	Stock          int
	Category       string
	Description    string
	ExpirationDate string
}

// Seed is the initial content of the fake API. Products, categories,
// accounts and suppliers are numbered from 1 in slice order.
type Seed struct {
	Categories []string
	Products   []SeedProduct
	Accounts   []SeedAccount
	Suppliers  []string
}

// DefaultSeed is a small pharmacy: five products (one out of stock, one
// uncategorised), an admin, an employee and two customers, one of them
// without a delivery address.
func DefaultSeed() Seed {
	return Seed{
		Categories: []string{"Analgésicos", "Antibióticos", "Vitaminas"},
		Products: []SeedProduct{
			{Name: "Paracetamol 500mg", Price: "1000", Stock: 3, Category: "Analgésicos", ExpirationDate: "2027-06-30"},
			{Name: "Ibuprofeno 400mg", Price: "1500", Stock: 10, Category: "Analgésicos", ExpirationDate: "2027-03-31"},
			{Name: "Amoxicilina 500mg", Price: "2500", Stock: 0, Category: "Antibióticos", ExpirationDate: "2026-12-31"},
			{Name: "Vitamina C", Price: "800.5", Stock: 25, Category: "Vitaminas"},
			{Name: "Soro fisiológico", Price: "300", Stock: 40},
		},
		Accounts: []SeedAccount{
			{Name: "Administrador", Email: AdminEmail, Password: AdminPassword, UserType: enums.UserTypeAdmin},
			{Name: "Joana Funcionaria", Email: EmployeeEmail, Password: EmployeePassword, UserType: enums.UserTypeEmployee},
			{
				Name:     "Maria Cliente",
				Email:    CustomerEmail,
				Password: CustomerPassword,
				Phone:    "923000000",
				UserType: enums.UserTypeCustomer,
				Address:  &SeedAddress{Name: "Casa", City: "Luanda", Residence: "Rua da Missão 12"},
			},
			{Name: "Pedro Sem Morada", Email: HomelessEmail, Password: HomelessPassword, UserType: enums.UserTypeCustomer},
		},
		Suppliers: []string{DefaultSupplierName},
	}
}

func (s *Server) load(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := map[string]*wireCategory{}
	for _, name := range seed.Categories {
		category := &wireCategory{PKProductCategory: s.id("category"), Name: name}
		s.categories[category.PKProductCategory] = category
		byName[name] = category
	}

	for _, p := range seed.Products {
		product := &wireProduct{
			PKProduct:      s.id("product"),
			Name:           p.Name,
			Price:          json.Number(p.Price),
			Description:    p.Description,
			Stock:          p.Stock,
			ExpirationDate: p.ExpirationDate,
		}
		if category, ok := byName[p.Category]; ok {
			product.FKProductCategory = category.PKProductCategory
		}
		s.products[product.PKProduct] = product
	}

	for _, a := range seed.Accounts {
		record := &personRecord{
			person: wirePerson{
				PKPerson: s.id("person"),
				Name:     a.Name,
				Email:    a.Email,
				Phone:    a.Phone,
			},
			userType: a.UserType,
		}
		_ = record.setPassword(a.Password)
		if a.Address != nil {
			record.person.Address = &wireAddress{
				PKAddress: s.id("address"),
				Name:      a.Address.Name,
				City:      a.Address.City,
				Residence: a.Address.Residence,
			}
		}
		s.persons[record.person.PKPerson] = record
	}

	for _, name := range seed.Suppliers {
		supplier := &wireSupplier{PKSupplier: s.id("supplier"), Name: name}
		s.suppliers[supplier.PKSupplier] = supplier
	}
}
