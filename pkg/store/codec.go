package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"reflect"
)

// EncodeValue serializes v with encoding/gob.
//
// Interface-typed values (V = any) are encoded through an interface wrapper,
// so their concrete types must be registered with gob.Register.
func EncodeValue[V any](v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	var err error
	if isInterfaceType[V]() {
		iv := any(v)
		err = enc.Encode(&iv)
	} else {
		err = enc.Encode(&v)
	}
	if err != nil {
		return nil, fmt.Errorf("store: encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// DecodeValue is the inverse of EncodeValue for the same V.
func DecodeValue[V any](data []byte) (V, error) {
	var v V
	if len(data) == 0 {
		return v, nil
	}

	dec := gob.NewDecoder(bytes.NewReader(data))
	if isInterfaceType[V]() {
		var iv any
		if err := dec.Decode(&iv); err != nil {
			return v, fmt.Errorf("store: decode: %w", err)
		}
		if iv == nil {
			return v, nil
		}
		out, ok := iv.(V)
		if !ok {
			return v, fmt.Errorf("store: decoded %T is not assignable to target", iv)
		}
		return out, nil
	}

	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("store: decode %T: %w", v, err)
	}
	return v, nil
}

func isInterfaceType[V any]() bool {
	return reflect.TypeOf((*V)(nil)).Elem().Kind() == reflect.Interface
}
