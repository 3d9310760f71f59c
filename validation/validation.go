// Package validation checks the shape of inbound payloads before they reach
// the services. Failures are reported as a validation_error carrying one
// issue per offending field.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/mbolis/waterlily/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	err := v.RegisterValidation("answer", isAnswer)
	if err != nil {
		panic(fmt.Sprintf("validation: register answer rule: %s", err))
	}
	return v
}

// jsonName is the name validator reports for f.
func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// isAnswer accepts the scalar answer types: string, number or boolean.
func isAnswer(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.String, reflect.Bool,
		reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// Bind decodes a JSON body into v and validates it.
func Bind(body io.Reader, v any) error {
	err := render.DecodeJSON(body, v)
	if err != nil {
		return decodeError(err)
	}
	return Struct(v)
}

// Struct validates v against its validate tags.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	root := reflect.TypeOf(v)
	issues := make([]model.Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, model.Issue{
			Path:    issuePath(root, fe.Namespace()),
			Message: message(fe),
		})
	}
	return model.ErrValidation(issues...)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		issue := model.Issue{Path: []any{}, Message: "request body must be a JSON object"}
		if typeErr.Field != "" {
			issue.Path = fieldPath(typeErr.Field)
			issue.Message = fmt.Sprintf("%s must be of type %s", lastName(issue.Path), jsonType(typeErr.Type))
		}
		return model.ErrValidation(issue)
	case errors.As(err, &syntaxErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return model.ErrValidation(model.Issue{Path: []any{}, Message: "request body must be a JSON object"})
	}
	return err
}

// fieldPath splits a decoder field such as "questions.0.text" into
// ["questions", 0, "text"].
func fieldPath(field string) []any {
	p := []any{}
	for _, seg := range strings.Split(field, ".") {
		if n, err := strconv.Atoi(seg); err == nil {
			p = append(p, n)
		} else if seg != "" {
			p = append(p, seg)
		}
	}
	return p
}

// issuePath splits a validator namespace such as
// "CreateSurveyRequest.questions[0].text" into ["questions", 0, "text"],
// dropping the root struct name. root is walked alongside so list indices
// become ints while map keys, which may hold dots or digits, stay strings.
func issuePath(root reflect.Type, namespace string) []any {
	p := []any{}
	start := strings.IndexAny(namespace, ".[")
	if start < 0 {
		return p
	}

	t := root
	rest := namespace[start:]
	for rest != "" {
		t = deref(t)
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			name := rest[:end]
			rest = rest[end:]
			p = append(p, name)
			t = fieldType(t, name)

		case '[':
			end := strings.IndexByte(rest, ']')
			if t != nil && t.Kind() == reflect.Map && isLeaf(t.Elem()) {
				// nothing can follow a leaf value, so the key runs to the last bracket
				end = strings.LastIndexByte(rest, ']')
			}
			if end < 0 {
				return append(p, rest[1:])
			}
			key := rest[1:end]
			rest = rest[end+1:]

			switch {
			case t == nil:
				p = append(p, key)
			case t.Kind() == reflect.Map:
				p = append(p, key)
				t = t.Elem()
				continue
			case t.Kind() == reflect.Slice, t.Kind() == reflect.Array:
				if n, err := strconv.Atoi(key); err == nil {
					p = append(p, n)
				} else {
					p = append(p, key)
				}
				t = t.Elem()
				continue
			default:
				p = append(p, key)
			}
			t = nil

		default:
			return p
		}
	}
	return p
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func fieldType(t reflect.Type, name string) reflect.Type {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); jsonName(f) == name {
			return f.Type
		}
	}
	return nil
}

func isLeaf(t reflect.Type) bool {
	switch deref(t).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return false
	}
	return true
}

func lastName(p []any) string {
	for i := len(p) - 1; i >= 0; i-- {
		if s, ok := p[i].(string); ok {
			return s
		}
	}
	return "value"
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		switch fe.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		default:
			return fmt.Sprintf("%s must contain at least %s characters", field, fe.Param())
		}
	case "email":
		return "invalid email address"
	case "answer":
		return "answer must be a string, number or boolean"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "number"
	}
	return t.String()
}
