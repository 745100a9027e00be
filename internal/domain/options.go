package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// OptionValues is an ordered group key -> value mapping. JSON object order is preserved
// in both directions. The zero value is an empty mapping ready to use.
type OptionValues struct {
	keys   []string
	values map[string]string
}

// NewOptionValues builds a mapping from alternating key, value arguments.
func NewOptionValues(kv ...string) OptionValues {
	var o OptionValues
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i], kv[i+1])
	}
	return o
}

func (o *OptionValues) Set(key, value string) {
	if o.values == nil {
		o.values = map[string]string{}
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o OptionValues) Get(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o OptionValues) Len() int { return len(o.keys) }

func (o OptionValues) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Map returns an unordered copy.
func (o OptionValues) Map() map[string]string {
	out := make(map[string]string, len(o.keys))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

func (o OptionValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object whose values are strings, numbers or booleans.
// null values are skipped.
func (o *OptionValues) UnmarshalJSON(data []byte) error {
	*o = OptionValues{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("options: expected a JSON object")
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return errors.New("options: expected a string key")
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		switch v := raw.(type) {
		case nil:
			continue
		case string:
			o.Set(key, v)
		case json.Number, bool:
			o.Set(key, fmt.Sprint(v))
		default:
			return fmt.Errorf("options: value for %q must be a string", key)
		}
	}
	_, err = dec.Token()
	return err
}

func (o OptionValues) Value() (driver.Value, error) {
	b, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *OptionValues) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*o = OptionValues{}
		return nil
	case []byte:
		if len(v) == 0 {
			*o = OptionValues{}
			return nil
		}
		return o.UnmarshalJSON(v)
	case string:
		if v == "" {
			*o = OptionValues{}
			return nil
		}
		return o.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("options: cannot scan %T", src)
	}
}

func (OptionValues) GormDataType() string { return "json" }

func (OptionValues) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}
