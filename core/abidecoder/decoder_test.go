package abidecoder

import (
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/txdecode/model"
	"github.com/AvaProtocol/txdecode/pkg/byte4"
)

const transferInput = "0xa9059cbb" +
	"000000000000000000000000d8da6bf26964af9d7eed9e03e53415d37aa96045" +
	"0000000000000000000000000000000000000000000000000000000000000064"

func TestDecodeInputTransfer(t *testing.T) {
	params, err := DecodeInput(hexutil.MustDecode(transferInput), "transfer(address,uint256)")
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, model.DecodedParameter{
		Name:  "param_address_1",
		Type:  "address",
		Value: "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
	}, params[0])
	assert.Equal(t, model.DecodedParameter{
		Name:  "param_uint256_2",
		Type:  "uint256",
		Value: "100",
	}, params[1])
}

func TestDecodeKeepsDeclaredNames(t *testing.T) {
	call, err := Decode(hexutil.MustDecode(transferInput), "function transfer(address to, uint amount)")
	require.NoError(t, err)

	assert.Equal(t, "transfer", call.Name)
	assert.Equal(t, "transfer(address,uint256)", call.Signature)
	assert.Equal(t, "0xa9059cbb", call.Selector)
	assert.Equal(t, "to", call.Parameters[0].Name)
	assert.Equal(t, "amount", call.Parameters[1].Name)
	assert.Equal(t, "uint256", call.Parameters[1].Type)
}

func TestDecodeLargeIntegerStaysExact(t *testing.T) {
	maxUint256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	input := packCall(t, "approve(address,uint256)", common.HexToAddress("0x1111111254EEB25477B68fb85Ed929f73A960582"), maxUint256)

	params, err := DecodeInput(input, "approve(address,uint256)")
	require.NoError(t, err)
	assert.Equal(t, maxUint256.String(), params[1].Value)
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457584007913129639935", params[1].Value)
}

func TestDecodeDynamicTypes(t *testing.T) {
	sig := "multicall(uint256,bytes[],string,address[],bool,bytes32,uint8)"
	var word [32]byte
	word[31] = 0xff
	input := packCall(t, sig,
		big.NewInt(1700000000),
		[][]byte{{0xde, 0xad}, {0xbe, 0xef}},
		"hello, world",
		[]common.Address{common.HexToAddress("0x0000000000000000000000000000000000000001"), common.HexToAddress("0x0000000000000000000000000000000000000002")},
		true,
		word,
		uint8(7),
	)

	params, err := DecodeInput(input, sig)
	require.NoError(t, err)
	require.Len(t, params, 7)

	want := []model.DecodedParameter{
		{Name: "param_uint256_1", Type: "uint256", Value: "1700000000"},
		{Name: "param_bytes[]_2", Type: "bytes[]", Value: "0xdead,0xbeef"},
		{Name: "param_string_3", Type: "string", Value: "hello, world"},
		{Name: "param_address[]_4", Type: "address[]", Value: "0x0000000000000000000000000000000000000001,0x0000000000000000000000000000000000000002"},
		{Name: "param_bool_5", Type: "bool", Value: "true"},
		{Name: "param_bytes32_6", Type: "bytes32", Value: "0x00000000000000000000000000000000000000000000000000000000000000ff"},
		{Name: "param_uint8_7", Type: "uint8", Value: "7"},
	}
	assert.Equal(t, want, params)
}

func TestDecodeTuple(t *testing.T) {
	sig := "exactInputSingle((address,address,uint24,uint256))"
	parsed, err := ParseSignature(sig)
	require.NoError(t, err)

	tuple := reflectTuple(t, parsed.Inputs[0].Type,
		common.HexToAddress("0x0000000000000000000000000000000000000001"),
		common.HexToAddress("0x0000000000000000000000000000000000000002"),
		big.NewInt(3000),
		big.NewInt(42),
	)
	packed, err := parsed.Inputs.Pack(tuple)
	require.NoError(t, err)
	input := append(byte4.SelectorFromSignature("exactInputSingle((address,address,uint24,uint256))"), packed...)

	params, err := DecodeInput(input, sig)
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, "(address,address,uint24,uint256)", params[0].Type)
	assert.Equal(t, "0x0000000000000000000000000000000000000001,0x0000000000000000000000000000000000000002,3000,42", params[0].Value)
}

func TestDecodeNoArguments(t *testing.T) {
	params, err := DecodeInput(hexutil.MustDecode("0xd0e30db0"), "deposit()")
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		signature string
		kind      model.ErrorKind
	}{
		{
			name:      "truncated amount",
			input:     transferInput[:len(transferInput)-20],
			signature: "transfer(address,uint256)",
			kind:      model.DecodeError,
		},
		{
			name:      "shorter than a selector",
			input:     "0xa905",
			signature: "transfer(address,uint256)",
			kind:      model.DecodeError,
		},
		{
			name:      "selector of another function",
			input:     transferInput,
			signature: "approve(address,uint256)",
			kind:      model.DecodeError,
		},
		{
			name: "dynamic offset points past the data",
			input: "0x" + hexutil.Encode(byte4.SelectorFromSignature("setName(string)"))[2:] +
				"00000000000000000000000000000000000000000000000000000000000001ff",
			signature: "setName(string)",
			kind:      model.DecodeError,
		},
		{
			name: "dirty address padding",
			input: "0xa9059cbb" +
				"ffffffffffffffffffffffffd8da6bf26964af9d7eed9e03e53415d37aa96045" +
				"0000000000000000000000000000000000000000000000000000000000000064",
			signature: "transfer(address,uint256)",
			kind:      model.DecodeError,
		},
		{
			name: "uint8 wider than a byte",
			input: "0x" + hexutil.Encode(byte4.SelectorFromSignature("setDecimals(uint8)"))[2:] +
				"0000000000000000000000000000000000000000000000000000000000000112",
			signature: "setDecimals(uint8)",
			kind:      model.DecodeError,
		},
		{
			name:      "missing parenthesis",
			input:     transferInput,
			signature: "transfer(address,uint256",
			kind:      model.MalformedSignatureError,
		},
		{
			name:      "unknown type",
			input:     transferInput,
			signature: "transfer(address,uint257)",
			kind:      model.MalformedSignatureError,
		},
		{
			name:      "not a declaration",
			input:     transferInput,
			signature: "0xa9059cbb",
			kind:      model.MalformedSignatureError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeInput(hexutil.MustDecode(tt.input), tt.signature)
			require.Error(t, err)
			assert.Equal(t, tt.kind, model.KindOf(err), "error: %v", err)
		})
	}
}

func TestDecodeToleratesTrailingBytes(t *testing.T) {
	input := hexutil.MustDecode(transferInput + "1dc0de")

	params, err := DecodeInput(input, "transfer(address,uint256)")
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", params[0].Value)
	assert.Equal(t, "100", params[1].Value)
}

func TestParameterName(t *testing.T) {
	assert.Equal(t, "recipient", ParameterName("recipient", "address", 0))
	assert.Equal(t, "param_uint256_3", ParameterName("", "uint256", 2))
}

func packCall(t *testing.T, signature string, args ...interface{}) []byte {
	t.Helper()
	parsed, err := ParseSignature(signature)
	require.NoError(t, err)
	packed, err := parsed.Inputs.Pack(args...)
	require.NoError(t, err)
	return append(byte4.SelectorFromSignature(signature), packed...)
}

// reflectTuple fills go-ethereum's generated struct type for a tuple.
func reflectTuple(t *testing.T, typ abi.Type, fields ...interface{}) interface{} {
	t.Helper()
	require.Equal(t, len(typ.TupleElems), len(fields), "field count")

	v := reflect.New(typ.TupleType).Elem()
	for i, f := range fields {
		v.Field(i).Set(reflect.ValueOf(f))
	}
	return v.Interface()
}

func TestSelectorMismatchMessage(t *testing.T) {
	_, err := DecodeInput(hexutil.MustDecode(transferInput), "approve(address,uint256)")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "0xa9059cbb"))
}
