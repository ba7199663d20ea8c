// Package forms holds the back-office form schemas. A schema is a struct
// whose validate tags carry the constraints and whose msg tags carry the
// Portuguese messages shown next to each field.
package forms

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/enums"
	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/money"
)

const RequiredMessage = "Campo obrigatório"

var (
	lettersPattern = regexp.MustCompile(`^[a-zA-Z ]*$`)
	digitsPattern  = regexp.MustCompile(`^\d+$`)

	validate = newValidator()
)

// Errors maps a field's json name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return strings.Join(parts, "; ")
}

// Err converts e into a validation error carrying the field map, or nil.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string(e))
}

// First returns the message of the first field in fields that failed.
func (e Errors) First(fields ...string) (string, bool) {
	for _, field := range fields {
		if msg, ok := e[field]; ok {
			return msg, true
		}
	}
	return "", false
}

// Message picks one message for a notification: the first failed field in
// preferred, else the alphabetically first failed field.
func (e Errors) Message(preferred ...string) string {
	if msg, ok := e.First(preferred...); ok {
		return msg
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return ""
	}
	sort.Strings(fields)
	return e[fields[0]]
}

// FromError recovers the field map from an error built by Errors.Err.
func FromError(err error) (Errors, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		return nil, false
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		return nil, false
	}
	return Errors(details), true
}

// Validate checks form against its tags. A nil map means the form is valid.
func Validate(form any) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Errors{"_": err.Error()}
	}
	root := reflect.TypeOf(form)
	errs := Errors{}
	for _, fe := range fieldErrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		errs[fe.Field()] = message(root, fe)
	}
	return errs
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "letters", func(fl validator.FieldLevel) bool {
		return lettersPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
		return digitsPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "user_type", func(fl validator.FieldLevel) bool {
		return enums.UserType(fl.Field().String()).IsValid()
	})
	mustRegister(v, "amount", func(fl validator.FieldLevel) bool {
		amount, err := money.Parse(fl.Field().String())
		return err == nil && !amount.IsNegative()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// message prefers the field's msg tag entry for the failed rule.
func message(root reflect.Type, fe validator.FieldError) string {
	if field, ok := lookupField(root, fe.StructNamespace()); ok {
		if msg, ok := parseMessages(field.Tag.Get("msg"))[fe.Tag()]; ok {
			return msg
		}
	}
	return defaultMessage(fe)
}

func lookupField(root reflect.Type, namespace string) (reflect.StructField, bool) {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return reflect.StructField{}, false
	}
	current := root
	var field reflect.StructField
	for _, part := range parts[1:] {
		for current.Kind() == reflect.Pointer || current.Kind() == reflect.Slice {
			current = current.Elem()
		}
		if current.Kind() != reflect.Struct {
			return reflect.StructField{}, false
		}
		if idx := strings.IndexByte(part, '['); idx >= 0 {
			part = part[:idx]
		}
		var ok bool
		field, ok = current.FieldByName(part)
		if !ok {
			return reflect.StructField{}, false
		}
		current = field.Type
	}
	return field, true
}

// parseMessages reads "rule=message;rule=message".
func parseMessages(tag string) map[string]string {
	out := map[string]string{}
	for _, entry := range strings.Split(tag, ";") {
		rule, msg, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(rule)] = strings.TrimSpace(msg)
	}
	return out
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return RequiredMessage
	case "email":
		return "Digite um email válido"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "Deve selecionar pelo menos " + fe.Param()
		}
		return "Deve ter no mínimo " + fe.Param() + " caracteres"
	case "max":
		return "Deve ter no máximo " + fe.Param() + " caracteres"
	case "len":
		return "Deve ter " + fe.Param() + " caracteres"
	case "letters":
		return "Só pode conter letras"
	case "digits":
		return "Digite um número válido!"
	case "user_type":
		return "Tipo de utilizador inválido"
	case "amount":
		return "Digite um valor válido"
	case "gte", "gt":
		return "Valor inválido"
	}
	return "Campo inválido"
}
