// Package apitest runs an in-memory pharmacy API. It answers with the same
// snake_case bodies and {"data": ...} envelope as the hosted API, so clients
// can be exercised end to end without the network.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/auth"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/security"
)

const (
	MissingTokenMessage  = "Token não fornecido"
	InvalidTokenMessage  = "Token inválido"
	ForbiddenMessage     = "Sem permissão"
	CredentialsMessage   = "Email ou senha incorrectos"
	EmailTakenMessage    = "Email já registado"
	NotFoundMessage      = "Registo não encontrado"
	NoProductsMessage    = "Deve selecionar pelo menos um produto"
	StockMessage         = "Stock insuficiente para %s"
	UnsupportedFileError = "Ficheiro inválido"

	defaultTokenHeader = "x-access-token"
)

type failure struct {
	status  int
	message string
}

type personRecord struct {
	person       wirePerson
	userType     enums.UserType
	passwordHash string
}

// setPassword stores an Argon2id hash. An empty password leaves the account
// unable to sign in.
func (p *personRecord) setPassword(password string) error {
	if password == "" {
		return nil
	}
	hash, err := security.HashPassword(password, security.LightParams)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	p.passwordHash = hash
	return nil
}

func (p *personRecord) checkPassword(password string) bool {
	if p == nil || p.passwordHash == "" {
		return false
	}
	ok, err := security.VerifyPassword(password, p.passwordHash)
	return err == nil && ok
}

// Server is a running fake API. Close it when done.
type Server struct {
	*httptest.Server

	logg        *logger.Logger
	tokens      auth.TokenConfig
	tokenHeader string
	now         func() time.Time
	seed        *Seed

	mu          sync.Mutex
	sequences   map[string]int64
	persons     map[int64]*personRecord
	categories  map[int64]*wireCategory
	products    map[int64]*wireProduct
	orders      map[int64]*wireOrder
	suppliers   map[int64]*wireSupplier
	purchases   map[int64]*wirePurchase
	idempotency map[string]int64
	uploads     map[string][]byte
	requests    map[string][]http.Header
	failures    map[string]failure
}

// Option configures the fake API.
type Option func(*Server)

func WithLogger(logg *logger.Logger) Option {
	return func(s *Server) {
		if logg != nil {
			s.logg = logg
		}
	}
}

// WithTokenConfig sets the secret and TTL used to sign access tokens.
func WithTokenConfig(cfg auth.TokenConfig) Option {
	return func(s *Server) {
		s.tokens = cfg
	}
}

func WithTokenHeader(header string) Option {
	return func(s *Server) {
		if header != "" {
			s.tokenHeader = header
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSeed loads fixtures instead of DefaultSeed.
func WithSeed(seed Seed) Option {
	return func(s *Server) {
		s.seed = &seed
	}
}

// NewServer starts the fake API on a loopback listener.
func NewServer(opts ...Option) *Server {
	s := newServer(opts...)
	s.Server = httptest.NewServer(s.Routes())
	return s
}

func newServer(opts ...Option) *Server {
	s := &Server{
		logg: logger.Nop(),
		tokens: auth.TokenConfig{
			Secret: "pharmacy-fake-secret",
			Issuer: "pharmacy-api",
			TTL:    time.Hour,
		},
		tokenHeader: defaultTokenHeader,
		now:         time.Now,
		requests:    map[string][]http.Header{},
		failures:    map[string]failure{},
	}
	s.reset()

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.seed == nil {
		seed := DefaultSeed()
		s.seed = &seed
	}
	s.load(*s.seed)
	return s
}

func (s *Server) reset() {
	s.sequences = map[string]int64{}
	s.persons = map[int64]*personRecord{}
	s.categories = map[int64]*wireCategory{}
	s.products = map[int64]*wireProduct{}
	s.orders = map[int64]*wireOrder{}
	s.suppliers = map[int64]*wireSupplier{}
	s.purchases = map[int64]*wirePurchase{}
	s.idempotency = map[string]int64{}
	s.uploads = map[string][]byte{}
}

// Routes returns the API router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		recoverer(s.logg),
		requestID(s.logg),
		logging(s.logg),
		s.record,
	)

	r.Post("/sign-in", s.signIn)
	r.Post("/sign-up", s.signUp)
	r.Get("/product", s.listProducts)
	r.Get("/product-category", s.listCategories)
	r.Get("/uploads/{name}", s.download)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/me", s.me)
		r.Get("/order", s.listOrders)
		r.Post("/order", s.createOrder)
		r.Get("/user-type", s.listUserTypes)

		r.Group(func(r chi.Router) {
			r.Use(s.requireStaff)

			r.Post("/product", s.createProduct)
			r.Put("/product/{id}", s.updateProduct)
			r.Delete("/product/{id}", s.deleteProduct)

			r.Post("/product-category", s.createCategory)
			r.Put("/product-category/{id}", s.updateCategory)
			r.Delete("/product-category/{id}", s.deleteCategory)

			r.Put("/order/{id}", s.updateOrder)
			r.Delete("/order/{id}", s.deleteOrder)

			r.Get("/customer", s.listPersonsOf(enums.UserTypeCustomer))
			r.Post("/customer", s.createPersonOf(enums.UserTypeCustomer))
			r.Put("/customer/{id}", s.updatePerson)
			r.Get("/employee", s.listPersonsOf(enums.UserTypeEmployee))
			r.Post("/employee", s.createPersonOf(enums.UserTypeEmployee))
			r.Put("/employee/{id}", s.updatePerson)
			r.Get("/person", s.listPersons)
			r.Post("/person", s.createPersonOf(""))
			r.Put("/person/{id}", s.updatePerson)
			r.Delete("/person/{id}", s.deletePerson)

			r.Get("/supplier", s.listSuppliers)
			r.Post("/supplier", s.createSupplier)
			r.Put("/supplier/{id}", s.updateSupplier)
			r.Delete("/supplier/{id}", s.deleteSupplier)

			r.Get("/purchase", s.listPurchases)
			r.Post("/purchase", s.createPurchase)
			r.Put("/purchase/{id}", s.updatePurchase)
			r.Delete("/purchase/{id}", s.deletePurchase)

			r.Get("/user", s.listUsers)
			r.Get("/statistics", s.statistics)
			r.Post("/upload", s.upload)
		})
	})

	return r
}

// FailNext makes the next request to method and path answer with status and
// message instead of reaching its route.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[routeKey(method, path)] = failure{status: status, message: message}
}

// Requests returns the headers of every request made to method and path.
func (s *Server) Requests(method, path string) []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	recorded := s.requests[routeKey(method, path)]
	out := make([]http.Header, len(recorded))
	copy(out, recorded)
	return out
}

// TokenFor signs an access token for the seeded account with email.
func (s *Server) TokenFor(email string) (string, error) {
	s.mu.Lock()
	record := s.personByEmail(email)
	s.mu.Unlock()
	if record == nil {
		return "", fmt.Errorf("no account for %q", email)
	}
	return s.mint(record)
}

// Stock returns the stored stock of product id, or -1 when it is unknown.
func (s *Server) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	if !ok {
		return -1
	}
	return product.Stock
}

// SetStock overwrites the stock of product id.
func (s *Server) SetStock(id int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product, ok := s.products[id]; ok {
		product.Stock = stock
	}
}

// OrderCount returns how many orders are stored.
func (s *Server) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Server) mint(record *personRecord) (string, error) {
	return auth.MintAccessToken(s.tokens, s.now(), auth.AccessTokenPayload{
		UserID:   record.person.PKPerson,
		PersonID: record.person.PKPerson,
		UserType: record.userType,
	})
}

// id hands out the next primary key of collection, starting at 1.
func (s *Server) id(collection string) int64 {
	s.sequences[collection]++
	return s.sequences[collection]
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + "/" + strings.Trim(path, "/")
}
