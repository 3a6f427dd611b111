package serializer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"scrum/internal/models"
	"scrum/internal/urls"
)

// Context carries the per request data links are built from. A nil
// Context produces relative links.
type Context struct {
	Base urls.Base
}

// NewContext derives a Context from the incoming request.
func NewContext(req *http.Request) *Context {
	return &Context{Base: urls.BaseFromRequest(req)}
}

func (c *Context) absolute(path string) string {
	if c == nil {
		return path
	}
	return c.Base.Absolute(path)
}

// Field is one row of a record's mapping table. Fields without Set are
// read-only and ignored on input.
type Field[T any] struct {
	Name     string
	Required bool
	Get      func(rec *T, c *Context) any
	Set      func(rec *T, value any) error
}

// Represent runs every extraction rule of the table against rec.
func Represent[T any](fields []Field[T], rec *T, c *Context) Representation {
	out := newRepresentation(len(fields))
	for _, f := range fields {
		out.set(f.Name, f.Get(rec, c))
	}
	return *out
}

// Populate copies the writable fields present in data into rec. Missing
// required fields are reported unless partial is set.
func Populate[T any](fields []Field[T], data map[string]any, rec *T, partial bool) *ValidationError {
	errs := &ValidationError{}
	for _, f := range fields {
		if f.Set == nil {
			continue
		}
		value, ok := data[f.Name]
		if !ok {
			if f.Required && !partial {
				errs.add(f.Name, CodeRequired, "This field is required.")
			}
			continue
		}
		if err := f.Set(rec, value); err != nil {
			var is *issue
			if errors.As(err, &is) {
				errs.add(f.Name, is.code, is.message)
				continue
			}
			errs.add(f.Name, CodeInvalid, err.Error())
		}
	}
	return errs
}

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

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
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// identityTag is the constraint set applied to a user's identity value.
func identityTag(field models.IdentityField) string {
	if field == models.IdentityEmail {
		return "required,max=254,email"
	}
	return "required,max=150,username"
}

type linker struct {
	resolver *urls.Resolver
}

func newLinker(resolver *urls.Resolver, names ...string) (linker, error) {
	if resolver == nil {
		return linker{}, fmt.Errorf("nil url resolver")
	}
	for _, name := range names {
		if !resolver.Has(name) {
			return linker{}, fmt.Errorf("route %q is not registered", name)
		}
	}
	return linker{resolver: resolver}, nil
}

// link reverses a route that the constructor already checked for.
func (l linker) link(c *Context, name string, params ...string) any {
	path, err := l.resolver.Reverse(name, params...)
	if err != nil {
		panic(fmt.Sprintf("serializer: %v", err))
	}
	return c.absolute(path)
}

func formatDate(t null.Time) any {
	if !t.Valid {
		return nil
	}
	return t.Time.Format(models.DateLayout)
}

func formatID(id null.Int64) any {
	if !id.Valid {
		return nil
	}
	return id.Int64
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "str"
	case bool:
		return "bool"
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	case nil:
		return "null"
	default:
		return "number"
	}
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", errNull
	case string:
		return strings.TrimSpace(s), nil
	case json.Number:
		return s.String(), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	default:
		return "", &issue{code: CodeInvalid, message: "Not a valid string."}
	}
}

var errInteger = &issue{code: CodeInvalid, message: "A valid integer is required."}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, errNull
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return floatToInt(n)
	case json.Number:
		return parseInt(n.String())
	case string:
		return parseInt(n)
	default:
		return 0, errInteger
	}
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	i, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return i, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, errInteger
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errInteger
	}
	return floatToInt(f)
}

// floatToInt accepts whole numbers that fit in an int64. NaN fails the
// truncation check.
func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errInteger
	}
	return int64(f), nil
}

// asBoundedInt is asInt limited to the signed 32 bit column range.
func asBoundedInt(v any) (int64, error) {
	n, err := asInt(v)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, &issue{code: CodeMaxValue, message: fmt.Sprintf("Ensure this value is less than or equal to %d.", math.MaxInt32)}
	}
	if n < math.MinInt32 {
		return 0, &issue{code: CodeMinValue, message: fmt.Sprintf("Ensure this value is greater than or equal to %d.", math.MinInt32)}
	}
	return n, nil
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, errNull
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
	case float64, int, int64, json.Number:
		if i, err := asInt(b); err == nil && (i == 0 || i == 1) {
			return i == 1, nil
		}
	}
	return false, &issue{code: CodeInvalid, message: "Must be a valid boolean."}
}

var errDate = &issue{code: CodeInvalid, message: "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}

func asDate(v any) (time.Time, error) {
	if v == nil {
		return time.Time{}, errNull
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, errDate
	}
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errDate
	}
	return t, nil
}

func asNullDate(v any) (null.Time, error) {
	if v == nil {
		return null.Time{}, nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return null.Time{}, nil
	}
	t, err := asDate(v)
	if err != nil {
		return null.Time{}, err
	}
	return null.TimeFrom(t), nil
}

// asPrimaryKey coerces a nullable primary key reference.
func asPrimaryKey(v any) (null.Int64, error) {
	switch v.(type) {
	case nil:
		return null.Int64{}, nil
	case bool, []any, map[string]any:
		return null.Int64{}, &issue{
			code:    CodeIncorrectType,
			message: fmt.Sprintf("Incorrect type. Expected pk value, received %s.", jsonType(v)),
		}
	}
	id, err := asInt(v)
	if err != nil {
		return null.Int64{}, &issue{
			code:    CodeIncorrectType,
			message: fmt.Sprintf("Incorrect type. Expected pk value, received %s.", jsonType(v)),
		}
	}
	return null.Int64From(id), nil
}
