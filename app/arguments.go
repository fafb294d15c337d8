package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"socialgap/domain/core"
	"socialgap/domain/criteria"
	"socialgap/domain/population"
)

// Args is the named-argument object of one function call. Lookups are
// lenient about shape: numbers may arrive as strings and lists as
// comma-separated text.
type Args struct {
	raw gjson.Result
}

// ParseArguments parses a JSON object. Empty input is an empty object.
func ParseArguments(data []byte) (Args, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Args{raw: gjson.Parse("{}")}, nil
	}
	if !gjson.ValidBytes(data) {
		return Args{}, core.NewInvalidArgumentError("arguments", "not valid JSON")
	}
	raw := gjson.ParseBytes(data)
	if !raw.IsObject() {
		return Args{}, core.NewInvalidArgumentError("arguments", "must be a JSON object")
	}
	return Args{raw: raw}, nil
}

// MustArgs parses a JSON literal and panics when it is malformed
func MustArgs(json string) Args {
	args, err := ParseArguments([]byte(json))
	if err != nil {
		panic(err)
	}
	return args
}

// Raw returns the JSON text of the arguments
func (a Args) Raw() string {
	return a.raw.Raw
}

// Has reports whether key is present and not null
func (a Args) Has(key string) bool {
	v := a.raw.Get(key)
	return v.Exists() && v.Type != gjson.Null
}

// String returns key as trimmed text, empty when absent
func (a Args) String(key string) string {
	v := a.raw.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// RequireString fails with an invalid-argument error when key is empty
func (a Args) RequireString(key string) (string, error) {
	s := a.String(key)
	if s == "" {
		return "", core.NewInvalidArgumentError(key, "is required")
	}
	return s, nil
}

// Int returns key as an integer or def when absent
func (a Args) Int(key string, def int) (int, error) {
	v := a.raw.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return def, nil
	}
	switch v.Type {
	case gjson.Number:
		if v.Num != float64(int(v.Num)) {
			return 0, core.NewInvalidArgumentError(key, "must be an integer")
		}
		return int(v.Num), nil
	case gjson.String:
		n := gjson.Parse(strings.TrimSpace(v.Str))
		if n.Type == gjson.Number && n.Num == float64(int(n.Num)) {
			return int(n.Num), nil
		}
	}
	return 0, core.NewInvalidArgumentError(key, fmt.Sprintf("'%s' is not an integer", v.String()))
}

// Bool returns key as a boolean or def when absent
func (a Args) Bool(key string, def bool) bool {
	v := a.raw.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return v.Bool()
}

// Strings returns key as a list. A string value is split on commas.
func (a Args) Strings(key string) []string {
	return stringList(a.raw.Get(key))
}

// Object returns the nested object under key; absent keys give empty Args
func (a Args) Object(key string) Args {
	v := a.raw.Get(key)
	if !v.IsObject() {
		return Args{raw: gjson.Parse("{}")}
	}
	return Args{raw: v}
}

// Criteria reads the filter dimensions at the top level of the arguments.
// The program key names a filter only when withProgram is set; several
// functions use it as their subject instead.
func (a Args) Criteria(withProgram bool) (criteria.Criteria, error) {
	var c criteria.Criteria

	if v := a.raw.Get("age_range"); v.Exists() && v.Type != gjson.Null {
		r, err := parseAgeRange(v)
		if err != nil {
			return c, err
		}
		c.AgeRange = r
	}

	c.Sex = a.String("sex")
	c.Location = a.String("location")

	keys := append(a.Strings("deprivation"), a.Strings("deprivations")...)
	for _, key := range keys {
		d, ok := population.ParseDeprivation(key)
		if !ok {
			return c, core.NewUnknownDeprivationError(key, population.DeprivationKeys())
		}
		c = c.WithDeprivation(d)
	}

	if withProgram {
		c.Program = a.String("program")
	}

	min, err := a.Int("min_intensity", 0)
	if err != nil {
		return c, err
	}
	c.MinIntensity = min

	if geo := a.String("geography"); geo != "" {
		if !population.IsGeographicColumn(geo) {
			return c, core.NewInvalidArgumentError("geography", fmt.Sprintf("'%s' is not one of %s", geo, strings.Join(population.GeographicColumns, ", ")))
		}
		c.Geography = geo
	}

	if order := a.String("order"); order != "" {
		o, ok := criteria.ParseOrder(strings.ToLower(order))
		if !ok {
			return c, core.NewInvalidArgumentError("order", "must be 'asc' or 'desc'")
		}
		c.Order = o
	}

	return c, nil
}

// parseAgeRange accepts [min, max], {"min": .., "max": ..} and "min-max"
func parseAgeRange(v gjson.Result) (*criteria.AgeRange, error) {
	var bounds []gjson.Result
	switch {
	case v.IsArray():
		bounds = v.Array()
	case v.IsObject():
		bounds = []gjson.Result{v.Get("min"), v.Get("max")}
	case v.Type == gjson.String:
		parts := strings.SplitN(v.Str, "-", 2)
		for _, p := range parts {
			bounds = append(bounds, gjson.Parse(strings.TrimSpace(p)))
		}
	}
	if len(bounds) != 2 || bounds[0].Type != gjson.Number || bounds[1].Type != gjson.Number {
		return nil, core.NewInvalidArgumentError("age_range", "must be [min, max]")
	}
	for _, b := range bounds {
		if b.Num != math.Trunc(b.Num) {
			return nil, core.NewInvalidArgumentError("age_range", "bounds must be whole numbers")
		}
	}
	return criteria.NewAgeRange(int(bounds[0].Num), int(bounds[1].Num))
}

func stringList(v gjson.Result) []string {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	var raw []string
	if v.IsArray() {
		for _, item := range v.Array() {
			raw = append(raw, item.String())
		}
	} else {
		raw = strings.Split(v.String(), ",")
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
