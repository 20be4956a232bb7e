/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package match

// Conversion between Values/Patterns and the generic data that JSON
// and YAML decoders produce.
//
// Values:
//
//	2, 2.5, "s", true          Leaf
//	[...]                      Tuple
//	{"@tag":"T","@payload":x}  Variant (payload optional)
//	{...}                      Record
//
// Patterns follow the same layout plus:
//
//	"?"                        Wildcard
//	"?n"                       Binding of n
//	{"@lit":"?n"}              LiteralEq of the string "?n"
//	{..., "@rest":true}        RecordPat that ignores other fields
//
// Integers (Go ints and json.Numbers without a fraction or exponent)
// become int64 Leafs.  float64s always become float64 Leafs, so JSON
// should be decoded with UseNumber (see DecodeJSON).

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	TagKey     = "@tag"
	PayloadKey = "@payload"
	RestKey    = "@rest"
	LitKey     = "@lit"
)

// IsVariable reports if the string represents a pattern variable.
//
// All pattern variables start with a '?'.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

// IsAnonymousVariable detects a variable of the form '?', which is a
// Wildcard.
func IsAnonymousVariable(s string) bool {
	return s == "?"
}

// DecodeJSON parses JSON with json.Numbers preserved.
func DecodeJSON(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return nil, err
	}
	return x, nil
}

// ParseValueJSON parses JSON into a Value.
func ParseValueJSON(js []byte) (Value, error) {
	x, err := DecodeJSON(bytes.NewReader(js))
	if err != nil {
		return nil, err
	}
	return ParseValue(x)
}

// ParsePatternJSON parses JSON into a Pattern.
func ParsePatternJSON(js []byte) (Pattern, error) {
	x, err := DecodeJSON(bytes.NewReader(js))
	if err != nil {
		return nil, err
	}
	return ParsePattern(x)
}

// asStringMap handles both map[string]interface{} and the
// map[interface{}]interface{} that some YAML parsers produce.
func asStringMap(x interface{}) (map[string]interface{}, bool, error) {
	switch vv := x.(type) {
	case map[string]interface{}:
		return vv, true, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, true, fmt.Errorf("non-string key %#v", k)
			}
			m[s] = v
		}
		return m, true, nil
	}
	return nil, false, nil
}

func sortedKeys(m map[string]interface{}) []string {
	acc := make([]string, 0, len(m))
	for k := range m {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}

// ParseValue converts generic data into a Value.
func ParseValue(x interface{}) (Value, error) {
	switch vv := x.(type) {
	case Value:
		return vv, nil
	case nil:
		return nil, &BadValue{x, "null is not a value"}
	case []interface{}:
		elems := make([]Value, len(vv))
		for i, y := range vv {
			v, err := ParseValue(y)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return NewTuple(elems...)
	}

	m, isMap, err := asStringMap(x)
	if err != nil {
		return nil, &BadValue{x, err.Error()}
	}
	if !isMap {
		return NewLeaf(x)
	}

	if t, have := m[TagKey]; have {
		tag, is := t.(string)
		if !is {
			return nil, &BadValue{x, "variant tag is not a string"}
		}
		var payload Value
		for k, y := range m {
			switch k {
			case TagKey:
			case PayloadKey:
				if payload, err = ParseValue(y); err != nil {
					return nil, err
				}
			default:
				return nil, &BadValue{x, `unexpected key "` + k + `" in variant`}
			}
		}
		return NewVariant(tag, payload)
	}

	fs := make([]Field, 0, len(m))
	for _, k := range sortedKeys(m) {
		if strings.HasPrefix(k, "@") {
			return nil, &BadValue{x, `reserved key "` + k + `" in record`}
		}
		v, err := ParseValue(m[k])
		if err != nil {
			return nil, err
		}
		fs = append(fs, Field{k, v})
	}
	return NewRecord(fs...)
}

// ParsePattern converts generic data into a Pattern.
func ParsePattern(x interface{}) (Pattern, error) {
	switch vv := x.(type) {
	case Pattern:
		return vv, Check(vv)
	case nil:
		return nil, &BadPattern{x, "null is not a pattern"}
	case string:
		if IsAnonymousVariable(vv) {
			return Wild(), nil
		}
		if IsVariable(vv) {
			return Bind(vv[1:]), nil
		}
		return Lit(Str(vv)), nil
	case []interface{}:
		elems := make([]Pattern, len(vv))
		for i, y := range vv {
			p, err := ParsePattern(y)
			if err != nil {
				return nil, err
			}
			elems[i] = p
		}
		return NewTuplePat(elems...)
	}

	m, isMap, err := asStringMap(x)
	if err != nil {
		return nil, &BadPattern{x, err.Error()}
	}
	if !isMap {
		l, err := NewLeaf(x)
		if err != nil {
			return nil, &UnknownPatternType{x}
		}
		return Lit(l), nil
	}

	if y, have := m[LitKey]; have {
		if len(m) != 1 {
			return nil, &BadPattern{x, LitKey + " with other keys"}
		}
		l, err := NewLeaf(y)
		if err != nil {
			return nil, &BadPattern{x, err.Error()}
		}
		return Lit(l), nil
	}

	if t, have := m[TagKey]; have {
		tag, is := t.(string)
		if !is {
			return nil, &BadPattern{x, "variant tag is not a string"}
		}
		var payload Pattern
		for k, y := range m {
			switch k {
			case TagKey:
			case PayloadKey:
				if payload, err = ParsePattern(y); err != nil {
					return nil, err
				}
			default:
				return nil, &BadPattern{x, `unexpected key "` + k + `" in variant pattern`}
			}
		}
		return NewVariantPat(tag, payload)
	}

	var rest bool
	fs := make([]FieldPat, 0, len(m))
	for _, k := range sortedKeys(m) {
		if k == RestKey {
			b, is := m[k].(bool)
			if !is {
				return nil, &BadPattern{x, RestKey + " is not a boolean"}
			}
			rest = b
			continue
		}
		if strings.HasPrefix(k, "@") {
			return nil, &BadPattern{x, `reserved key "` + k + `" in record pattern`}
		}
		p, err := ParsePattern(m[k])
		if err != nil {
			return nil, err
		}
		fs = append(fs, FieldPat{k, p})
	}
	return NewRecordPat(rest, fs...)
}

// PatternInterface renders a Pattern as generic data that
// ParsePattern would turn back into the same Pattern.
//
// Write the result as JSON with EncodeJSON, which keeps a float
// literal like 2.0 from coming back as an integer.
func PatternInterface(p Pattern) interface{} {
	switch pp := p.(type) {
	case *Wildcard:
		return "?"
	case *Binding:
		return "?" + pp.name
	case *LiteralEq:
		if s, is := pp.leaf.x.(string); is && IsVariable(s) {
			return map[string]interface{}{LitKey: s}
		}
		return pp.leaf.x
	case *TuplePat:
		acc := make([]interface{}, len(pp.elems))
		for i, e := range pp.elems {
			acc[i] = PatternInterface(e)
		}
		return acc
	case *RecordPat:
		acc := make(map[string]interface{}, len(pp.fields)+1)
		for _, f := range pp.fields {
			acc[f.Name] = PatternInterface(f.Pattern)
		}
		if pp.rest {
			acc[RestKey] = true
		}
		return acc
	case *VariantPat:
		acc := map[string]interface{}{
			TagKey: pp.tag,
		}
		if pp.payload != nil {
			acc[PayloadKey] = PatternInterface(pp.payload)
		}
		return acc
	}
	return nil
}

// jsonFloat is a float64 that JSON-encodes with a fraction or an
// exponent.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	return FloatJSON(float64(f))
}

// FloatJSON encodes f as a JSON number that decodes back to a
// float64 Leaf: 2 is written as 2.0.
func FloatJSON(f float64) ([]byte, error) {
	bs, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	if !bytes.ContainsAny(bs, ".eE") {
		bs = append(bs, '.', '0')
	}
	return bs, nil
}

// JSONData copies generic data so that its floats JSON-encode as
// floats.  Values and Patterns are replaced by their generic forms.
func JSONData(x interface{}) interface{} {
	switch vv := x.(type) {
	case float64:
		return jsonFloat(vv)
	case float32:
		return jsonFloat(float64(vv))
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = JSONData(y)
		}
		return acc
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			acc[k] = JSONData(y)
		}
		return acc
	case map[interface{}]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			acc[fmt.Sprint(k)] = JSONData(y)
		}
		return acc
	case Value:
		return JSONData(vv.Interface())
	case Pattern:
		return JSONData(PatternInterface(vv))
	}
	return x
}

// EncodeJSON is json.Marshal of JSONData(x).
func EncodeJSON(x interface{}) ([]byte, error) {
	return json.Marshal(JSONData(x))
}
