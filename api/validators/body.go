package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/ssmdetailing/ssm-backend/pkg/errors"
)

// MaxJSONBodyBytes caps JSON request bodies wherever they are read,
// including middleware that buffers them before the handler.
const MaxJSONBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}

// DecodeJSONBody strictly decodes one JSON object into dest and validates it.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxJSONBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Corpul cererii trebuie să conțină un singur obiect JSON.")
	}
	return ValidateStruct(dest)
}

// BufferBody reads at most MaxJSONBodyBytes from r.Body and rewinds it for
// the next reader. An oversized body is a PAYLOAD_TOO_LARGE error.
func BufferBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes))
	if err != nil {
		return nil, decodeError(err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return pkgerrors.New(pkgerrors.CodeValidation, "Corpul cererii lipsește.")
	case errors.As(err, &tooLarge):
		return pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "Corpul cererii este prea mare.").
			WithDetails(map[string]any{"limit_bytes": tooLarge.Limit})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "JSON invalid.")
	case errors.As(err, &typeErr):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Date invalide.").
			WithDetails(map[string]string{typeErr.Field: "tip de valoare greșit"})
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Date invalide.").
			WithDetails(map[string]string{field: "câmp necunoscut"})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Corpul cererii nu poate fi citit.")
}

// ValidateStruct runs the shared validator against an already decoded value.
func ValidateStruct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Date invalide.")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = fieldMessage(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "Date invalide.").WithDetails(details)
}

// fieldPath drops the root struct name: "CommentRequest.items[0].url" -> "items[0].url".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "este obligatoriu"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("trebuie să aibă cel puțin %s caractere", fe.Param())
		}
		return fmt.Sprintf("trebuie să fie cel puțin %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("poate avea cel mult %s caractere", fe.Param())
		}
		return fmt.Sprintf("trebuie să fie cel mult %s", fe.Param())
	case "email":
		return "trebuie să fie o adresă de email validă"
	case "oneof":
		return "trebuie să fie una dintre: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url", "http_url":
		return "trebuie să fie un URL valid"
	case "uuid", "uuid4":
		return "trebuie să fie un UUID valid"
	}
	return "este invalid"
}
