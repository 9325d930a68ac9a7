package jsonapi

import (
	"fmt"
	"time"
)

// ISO8601Layout is the date layout written by the ISODate transformer
const ISO8601Layout = "2006-01-02T15:04:05.000Z07:00"

// Transformer converts a field value between its Go and wire forms
type Transformer interface {
	Serialize(v any) (any, error)
	Deserialize(v any) (any, error)
}

// TransformerFuncs adapts a pair of functions to the Transformer interface.
// A nil function passes the value through unchanged.
type TransformerFuncs struct {
	SerializeFunc   func(any) (any, error)
	DeserializeFunc func(any) (any, error)
}

// Serialize implements Transformer
func (t TransformerFuncs) Serialize(v any) (any, error) {
	if t.SerializeFunc == nil {
		return v, nil
	}
	return t.SerializeFunc(v)
}

// Deserialize implements Transformer
func (t TransformerFuncs) Deserialize(v any) (any, error) {
	if t.DeserializeFunc == nil {
		return v, nil
	}
	return t.DeserializeFunc(v)
}

// ISODate writes time.Time values as UTC ISO-8601 strings with millisecond precision
var ISODate Transformer = isoDate{}

type isoDate struct{}

func (isoDate) Serialize(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(ISO8601Layout), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.UTC().Format(ISO8601Layout), nil
	case string:
		return t, nil
	default:
		return nil, fmt.Errorf("iso date: unsupported value %T", v)
	}
}

func (isoDate) Deserialize(v any) (any, error) {
	switch s := v.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("iso date: %w", err)
		}
		return t, nil
	case time.Time:
		return s, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("iso date: unsupported value %T", v)
	}
}
