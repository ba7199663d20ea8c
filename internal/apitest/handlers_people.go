package apitest

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
)

func (s *Server) listPersonsOf(userType enums.UserType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, http.StatusOK, s.personsOf(userType))
	}
}

// listPersons filters by the user_type query parameter when present.
func (s *Server) listPersons(w http.ResponseWriter, r *http.Request) {
	userType := enums.UserType(r.URL.Query().Get("user_type"))
	if userType != "" && !userType.IsValid() {
		writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Tipo de utilizador inválido"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.personsOf(userType))
}

func (s *Server) personsOf(userType enums.UserType) []wirePerson {
	out := []wirePerson{}
	for _, record := range sortedValues(s.persons) {
		if userType == "" || record.userType == userType {
			out = append(out, personView(record))
		}
	}
	return out
}

// createPersonOf creates a person of userType, or of the type named in the
// body when userType is empty.
func (s *Server) createPersonOf(userType enums.UserType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in personInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(r.Context(), s.logg, w, err)
			return
		}
		kind := userType
		if kind == "" {
			kind = enums.UserType(in.UserType)
		}
		if !kind.IsValid() {
			writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Tipo de utilizador inválido"))
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.checkPerson(in, 0); err != nil {
			writeError(r.Context(), s.logg, w, err)
			return
		}
		record := &personRecord{userType: kind}
		if err := record.setPassword(in.Password); err != nil {
			writeError(r.Context(), s.logg, w, err)
			return
		}
		s.applyPerson(record, in)
		record.person.PKPerson = s.id("person")
		s.persons[record.person.PKPerson] = record
		writeData(w, http.StatusCreated, personView(record))
	}
}

func (s *Server) updatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	var in personInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.persons[id]
	if !ok {
		writeError(r.Context(), s.logg, w, errNotFound())
		return
	}
	if err := s.checkPerson(in, id); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	if kind := enums.UserType(in.UserType); kind.IsValid() {
		record.userType = kind
	}
	if err := record.setPassword(in.Password); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	s.applyPerson(record, in)
	writeData(w, http.StatusOK, personView(record))
}

func (s *Server) deletePerson(w http.ResponseWriter, r *http.Request) {
	deleteFrom(s, w, r, s.persons)
}

func (s *Server) checkPerson(in personInput, self int64) error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Nome é obrigatório")
	}
	if strings.TrimSpace(in.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Email é obrigatório")
	}
	if existing := s.personByEmail(in.Email); existing != nil && existing.person.PKPerson != self {
		return pkgerrors.New(pkgerrors.CodeConflict, EmailTakenMessage)
	}
	return nil
}

func (s *Server) applyPerson(record *personRecord, in personInput) {
	record.person.Name = in.Name
	record.person.Email = in.Email
	record.person.BI = in.BI
	record.person.BirthDate = in.BirthDate
	record.person.Phone = in.Phone
	if in.Address == nil {
		return
	}
	if record.person.Address == nil {
		record.person.Address = &wireAddress{PKAddress: s.id("address")}
	}
	record.person.Address.Name = in.Address.Name
	record.person.Address.City = in.Address.City
	record.person.Address.Residence = in.Address.Residence
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wireUser, 0, len(s.persons))
	for _, record := range sortedValues(s.persons) {
		out = append(out, userView(record))
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) listUserTypes(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, []wireUserType{
		{PKUserType: 1, Name: string(enums.UserTypeCustomer), Description: "Cliente"},
		{PKUserType: 2, Name: string(enums.UserTypeAdmin), Description: "Administrador"},
		{PKUserType: 3, Name: string(enums.UserTypeEmployee), Description: "Funcionário"},
	})
}
