package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ruteri/tee-attestation-agent/attestor"
)

// AttestationRequest is the body of an attestation request. Pointers keep a
// missing field distinguishable from an empty string; any string is accepted.
type AttestationRequest struct {
	JobCID   *string `json:"jobCid" validate:"required"`
	Status   *string `json:"status" validate:"required"`
	SchemaID *string `json:"schemaId,omitempty" validate:"omitempty,schemaid"`
}

// FieldError describes one validation failure.
type FieldError struct {
	Code     string   `json:"code"`
	Expected string   `json:"expected,omitempty"`
	Received string   `json:"received,omitempty"`
	Path     []string `json:"path"`
	Message  string   `json:"message"`
}

// ValidationError collects field errors for a 400 response.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(f.Path, "."), f.Message))
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("schemaid", func(fl validator.FieldLevel) bool {
		_, err := attestor.ParseID(fl.Field().String())
		return err == nil
	})
	return v
}

// decodeAttestationRequest reads body and checks it has the expected shape.
// Every offending field is reported, not only the first.
func decodeAttestationRequest(body io.Reader, validate *validator.Validate) (*AttestationRequest, error) {
	var raw interface{}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{
			Code:    "invalid_json",
			Path:    []string{},
			Message: fmt.Sprintf("Malformed JSON body: %v", err),
		}}}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, &ValidationError{Fields: []FieldError{{
			Code:    "invalid_json",
			Path:    []string{},
			Message: "Malformed JSON body: unexpected data after JSON value",
		}}}
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &ValidationError{Fields: []FieldError{{
			Code:     "invalid_type",
			Expected: "object",
			Received: jsonTypeName(raw),
			Path:     []string{},
			Message:  fmt.Sprintf("Expected object, received %s", jsonTypeName(raw)),
		}}}
	}

	req := &AttestationRequest{}
	var fields []FieldError
	for name, target := range map[string]**string{
		"jobCid":   &req.JobCID,
		"status":   &req.Status,
		"schemaId": &req.SchemaID,
	} {
		value, present := obj[name]
		if !present {
			continue
		}
		str, isString := value.(string)
		if !isString {
			fields = append(fields, typeError(name, value))
			continue
		}
		*target = &str
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			if hasField(fields, fe.Field()) {
				continue
			}
			fields = append(fields, fieldErrorFor(fe))
		}
	}

	if len(fields) > 0 {
		sortFieldErrors(fields)
		return nil, &ValidationError{Fields: fields}
	}
	return req, nil
}

func fieldErrorFor(fe validator.FieldError) FieldError {
	switch fe.Tag() {
	case "required":
		return FieldError{
			Code:     "invalid_type",
			Expected: "string",
			Received: "undefined",
			Path:     []string{fe.Field()},
			Message:  "Required",
		}
	case "schemaid":
		return FieldError{
			Code:    "invalid_string",
			Path:    []string{fe.Field()},
			Message: "Invalid schema id",
		}
	default:
		return FieldError{
			Code:    "custom",
			Path:    []string{fe.Field()},
			Message: fe.Error(),
		}
	}
}

func typeError(field string, value interface{}) FieldError {
	received := jsonTypeName(value)
	return FieldError{
		Code:     "invalid_type",
		Expected: "string",
		Received: received,
		Path:     []string{field},
		Message:  fmt.Sprintf("Expected string, received %s", received),
	}
}

func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	}
	return fmt.Sprintf("%T", value)
}

func hasField(fields []FieldError, name string) bool {
	for _, f := range fields {
		if len(f.Path) == 1 && f.Path[0] == name {
			return true
		}
	}
	return false
}

// sortFieldErrors orders errors the way fields are declared in the request.
func sortFieldErrors(fields []FieldError) {
	rank := map[string]int{"jobCid": 0, "status": 1, "schemaId": 2}
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && rank[pathHead(fields[j])] < rank[pathHead(fields[j-1])]; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
}

func pathHead(f FieldError) string {
	if len(f.Path) == 0 {
		return ""
	}
	return f.Path[0]
}
