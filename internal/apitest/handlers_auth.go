package apitest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
)

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	record := s.personByEmail(in.Email)
	s.mu.Unlock()
	if !record.checkPassword(in.Password) {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, CredentialsMessage))
		return
	}
	s.writeSignedIn(w, r, http.StatusOK, record)
}

// signUp always creates a customer.
func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var in credentialsInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Email e senha são obrigatórios"))
		return
	}

	s.mu.Lock()
	if s.personByEmail(in.Email) != nil {
		s.mu.Unlock()
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeConflict, EmailTakenMessage))
		return
	}
	record := &personRecord{
		person:   wirePerson{PKPerson: s.id("person"), Name: in.Name, Email: in.Email},
		userType: enums.UserTypeCustomer,
	}
	if err := record.setPassword(in.Password); err != nil {
		s.mu.Unlock()
		writeError(r.Context(), s.logg, w, err)
		return
	}
	s.persons[record.person.PKPerson] = record
	s.mu.Unlock()

	s.writeSignedIn(w, r, http.StatusCreated, record)
}

// writeSignedIn answers with the bare user, like the hosted auth endpoints.
func (s *Server) writeSignedIn(w http.ResponseWriter, r *http.Request, status int, record *personRecord) {
	token, err := s.mint(record)
	if err != nil {
		writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token"))
		return
	}
	s.mu.Lock()
	user := userView(record)
	s.mu.Unlock()
	user.AccessToken = token
	writeJSON(w, status, user)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.persons[claims.PersonID]
	if !ok {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, InvalidTokenMessage))
		return
	}
	writeData(w, http.StatusOK, userView(record))
}

func (s *Server) personByEmail(email string) *personRecord {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, record := range s.persons {
		if strings.ToLower(record.person.Email) == email {
			return record
		}
	}
	return nil
}

func personView(record *personRecord) wirePerson {
	person := record.person
	if person.Address != nil {
		address := *person.Address
		person.Address = &address
	}
	person.User = &wireAccount{UserType: string(record.userType)}
	return person
}

func userView(record *personRecord) wireUser {
	person := personView(record)
	return wireUser{
		PKUser:       record.person.PKPerson,
		Email:        record.person.Email,
		UserType:     string(record.userType),
		PersonalInfo: &person,
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "Identificador inválido")
	}
	return id, nil
}

func errNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, NotFoundMessage)
}
