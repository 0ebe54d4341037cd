package core

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/huangsam/rbicalc/schema"
)

// errNotFinite is reported for NaN or infinite numeric inputs.
const errNotFinite = "must be a finite number"

// decodeInputs overlays the caller's inputs on a copy of defaults.
// Input names match field tags with exact casing.
// Fields are decoded one at a time in sorted order so a rejected value can be
// reported by name. Nil and blank values are skipped so defaults apply.
func decodeInputs[T any](key schema.VariantKey, defaults T, inputs schema.FormulaInput) (T, *schema.FormulaError) {
	out := defaults
	fields := make([]string, 0, len(inputs))
	for field := range inputs {
		if isPresent(inputs, field) {
			fields = append(fields, field)
		}
	}
	slices.Sort(fields)

	for _, field := range fields {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.DecodeHookFuncType(finiteFloatHook),
			WeaklyTypedInput: true,
			MatchName:        func(mapKey, fieldName string) bool { return mapKey == fieldName },
			Result:           &out,
		})
		if err != nil {
			return out, schema.NewCalculationError(key, err.Error())
		}
		if err := dec.Decode(map[string]any{field: inputs[field]}); err != nil {
			return out, schema.NewInvalidInputError(key, field, decodeReason(err))
		}
	}
	return out, nil
}

// finiteFloatHook rejects NaN and infinities bound for float fields, including
// their string spellings which weak decoding would otherwise accept.
func finiteFloatHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Float64 && to.Kind() != reflect.Float32 {
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as a number", v)
		}
		return checkFinite(parsed)
	default:
		return data, nil
	}
	if _, err := checkFinite(f); err != nil {
		return nil, err
	}
	return data, nil
}

func checkFinite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(errNotFinite)
	}
	return f, nil
}

// decodeReason keeps the last line of a mapstructure error, which names the cause.
func decodeReason(err error) string {
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// category pairs a categorical input name with whether its value is known.
type category struct {
	field string
	value string
	valid bool
}

// checkCategories rejects unknown categorical values unless lenient is set,
// in which case the calculators fall back to a neutral multiplier.
func checkCategories(key schema.VariantKey, lenient bool, cats ...category) *schema.FormulaError {
	if lenient {
		return nil
	}
	for _, c := range cats {
		if !c.valid {
			return schema.NewInvalidInputError(key, c.field, fmt.Sprintf("unknown category %q", c.value))
		}
	}
	return nil
}
