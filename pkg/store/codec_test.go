package store

import (
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/require"
)

type codecSample struct {
	Msg string
	N   int
}

func TestCodec_ConcreteTypes(t *testing.T) {
	data, err := EncodeValue(codecSample{Msg: "hi", N: 3})
	require.NoError(t, err)

	got, err := DecodeValue[codecSample](data)
	require.NoError(t, err)
	require.Equal(t, codecSample{Msg: "hi", N: 3}, got)

	n, err := DecodeValue[int](mustEncode(t, 7))
	require.NoError(t, err)
	require.Equal(t, 7, n)
}

func TestCodec_InterfaceValues(t *testing.T) {
	gob.Register(codecSample{})

	var v any = codecSample{Msg: "boxed", N: 1}
	data, err := EncodeValue(v)
	require.NoError(t, err)

	got, err := DecodeValue[any](data)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestCodec_EmptyInputDecodesToZero(t *testing.T) {
	got, err := DecodeValue[codecSample](nil)
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestCodec_TypeMismatchFails(t *testing.T) {
	_, err := DecodeValue[codecSample](mustEncode(t, "a string"))
	require.Error(t, err)
}

func mustEncode[V any](t *testing.T, v V) []byte {
	t.Helper()
	data, err := EncodeValue(v)
	require.NoError(t, err)
	return data
}
