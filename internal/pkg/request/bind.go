// Package request decodes request bodies the same way on every route.
package request

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	xerrors "qarilive-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DefaultBodyLimit caps JSON bodies on routes that carry no file payload.
const DefaultBodyLimit int64 = 1 << 20

const tooLargeMessage = "Request body too large"

// Messages names the 400 text for a failed binding rule. Keys are
// "<field>.<tag>" for one rule or "<field>" for any rule on that field,
// where field is the json (or form) name.
type Messages interface {
	BindingMessages() map[string]string
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	}
}

// BindJSON decodes and validates the body under DefaultBodyLimit.
func BindJSON(c *gin.Context, obj interface{}) error {
	return BindJSONLimit(c, obj, DefaultBodyLimit, tooLargeMessage)
}

// BindJSONLimit decodes and validates the body, refusing to read more than
// limit bytes. An empty body is validated as the zero value so the caller's
// required-field checks report the missing field instead of a parse error.
func BindJSONLimit(c *gin.Context, obj interface{}, limit int64, tooLarge string) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return bindError(obj, binding.Validator.ValidateStruct(obj), "Invalid JSON body")
	}
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	err := c.ShouldBindJSON(obj)
	var maxErr *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &maxErr):
		return xerrors.Validation("%s", tooLarge)
	case errors.Is(err, io.EOF):
		return bindError(obj, binding.Validator.ValidateStruct(obj), "Invalid JSON body")
	}
	return bindError(obj, err, "Invalid JSON body")
}

// BindQuery decodes and validates query parameters.
func BindQuery(c *gin.Context, obj interface{}) error {
	return bindError(obj, c.ShouldBindQuery(obj), "Invalid query parameters")
}

func bindError(obj interface{}, err error, fallback string) error {
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return xerrors.Validation("%s", fallback)
	}

	fe := fields[0]
	if m, ok := obj.(Messages); ok {
		msgs := m.BindingMessages()
		if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
			return xerrors.Validation("%s", msg)
		}
		if msg, ok := msgs[fe.Field()]; ok {
			return xerrors.Validation("%s", msg)
		}
	}
	return xerrors.Validation("Invalid %s", fe.Field())
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// decimalValue lets numeric rules such as gte and lte apply to decimals.
func decimalValue(v reflect.Value) interface{} {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}
