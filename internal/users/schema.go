package users

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/crudusers/users-service/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// schemaPaths is the declared field order of the users schema.
var schemaPaths = []string{"name", "email", "age"}

// Value is one body field exactly as the client sent it.
type Value struct {
	raw     any
	present bool
}

// ValueOf wraps a Go value as if it had been decoded from a request body.
func ValueOf(v any) Value { return Value{raw: v, present: true} }

func (v *Value) UnmarshalJSON(b []byte) error {
	v.present = true
	return json.Unmarshal(b, &v.raw)
}

// Present reports whether the field appeared in the body (null included).
func (v Value) Present() bool { return v.present }

// Truthy applies loose truthiness: absent, null, false, 0, NaN and "" are all false.
func (v Value) Truthy() bool {
	if !v.present {
		return false
	}
	switch x := v.raw.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case map[string]any, []any:
		return true
	default:
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return true
		}
		return f != 0 && !math.IsNaN(f)
	}
}

func (v Value) isNull() bool { return !v.present || v.raw == nil }

// Input carries the user fields of a create or update body.
type Input struct {
	Name  Value `json:"name"`
	Email Value `json:"email"`
	Age   Value `json:"age"`
}

type requiredFields struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// castString converts v for a string path. ok is false when there is nothing to set.
func castString(path string, v Value) (s string, ok bool, err error) {
	if v.isNull() {
		return "", false, nil
	}
	switch x := v.raw.(type) {
	case string:
		return x, true, nil
	case json.Number:
		return x.String(), true, nil
	case bool, float64, float32, int, int64, int32:
		s, err := cast.ToStringE(x)
		if err != nil {
			return "", false, &CastError{Kind: "string", Value: x, Path: path}
		}
		return s, true, nil
	default:
		return "", false, &CastError{Kind: "string", Value: x, Path: path}
	}
}

// castNumber converts v for a number path. A nil result means "absent".
func castNumber(path string, v Value) (*float64, error) {
	if v.isNull() {
		return nil, nil
	}
	var (
		f   float64
		err error
	)
	switch x := v.raw.(type) {
	case string:
		trimmed := strings.TrimSpace(x)
		if trimmed == "" {
			return nil, nil
		}
		f, err = cast.ToFloat64E(trimmed)
	case bool:
		if x {
			f = 1
		}
	case json.Number:
		f, err = x.Float64()
	case map[string]any, []any:
		err = fmt.Errorf("unsupported type %T", x)
	default:
		f, err = cast.ToFloat64E(x)
	}
	if err != nil || math.IsNaN(f) {
		return nil, &CastError{Kind: "Number", Value: v.raw, Path: path}
	}
	return &f, nil
}

// checkRequired records a required error for every empty required path
// that does not already carry a cast error.
func checkRequired(u *models.User, ve *ValidationError) {
	err := validate.Struct(requiredFields{Name: u.Name, Email: u.Email})
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		ve.add("_schema", err)
		return
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			ve.add(fe.Field(), requiredError{path: fe.Field()})
		}
	}
}

// finish orders collected errors by schema path and returns nil when there are none.
func (e *ValidationError) finish() error {
	if e.empty() {
		return nil
	}
	rank := func(p string) int {
		for i, sp := range schemaPaths {
			if sp == p {
				return i
			}
		}
		return len(schemaPaths)
	}
	sort.SliceStable(e.Paths, func(i, j int) bool { return rank(e.Paths[i]) < rank(e.Paths[j]) })
	return e
}

// newUser builds a document for insertion from a create body.
func newUser(in Input) (*models.User, error) {
	u := &models.User{}
	ve := &ValidationError{Model: ModelName}
	if s, ok, err := castString("name", in.Name); err != nil {
		ve.add("name", err)
	} else if ok {
		u.Name = s
	}
	if s, ok, err := castString("email", in.Email); err != nil {
		ve.add("email", err)
	} else if ok {
		u.Email = s
	}
	if age, err := castNumber("age", in.Age); err != nil {
		ve.add("age", err)
	} else {
		u.Age = age
	}
	checkRequired(u, ve)
	if err := ve.finish(); err != nil {
		return nil, err
	}
	return u, nil
}

// mergeUser applies an update body to a copy of cur. Only truthy body values
// replace stored ones; everything else keeps the current value.
func mergeUser(cur *models.User, in Input) (*models.User, error) {
	u := cur.Clone()
	ve := &ValidationError{Model: ModelName}
	if in.Name.Truthy() {
		if s, _, err := castString("name", in.Name); err != nil {
			ve.add("name", err)
		} else {
			u.Name = s
		}
	}
	if in.Email.Truthy() {
		if s, _, err := castString("email", in.Email); err != nil {
			ve.add("email", err)
		} else {
			u.Email = s
		}
	}
	if in.Age.Truthy() {
		if age, err := castNumber("age", in.Age); err != nil {
			ve.add("age", err)
		} else if age != nil {
			u.Age = age
		}
	}
	checkRequired(u, ve)
	if err := ve.finish(); err != nil {
		return nil, err
	}
	return u, nil
}

// render prints a raw value the way it appears in cast messages.
func render(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		s, err := cast.ToStringE(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return s
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "Array"
	case map[string]any:
		return "Object"
	case json.Number, float64, float32, int, int32, int64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
