package abidecoder

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FormatValue renders a value unpacked by go-ethereum as display text.
// Integers are always decimal, never floating point, so uint256 amounts
// survive intact. Arrays and tuples render as their comma joined elements.
func FormatValue(value interface{}, t abi.Type) string {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		if b, ok := value.(*big.Int); ok {
			return b.String()
		}
		return fmt.Sprintf("%d", value)

	case abi.BoolTy:
		if b, ok := value.(bool); ok {
			return strconv.FormatBool(b)
		}

	case abi.StringTy:
		if s, ok := value.(string); ok {
			return s
		}

	case abi.AddressTy:
		if a, ok := value.(common.Address); ok {
			return a.Hex()
		}

	case abi.BytesTy:
		if b, ok := value.([]byte); ok {
			return hexutil.Encode(b)
		}

	case abi.FixedBytesTy, abi.FunctionTy:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Array {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return hexutil.Encode(buf)
		}

	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			parts := make([]string, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				parts[i] = FormatValue(rv.Index(i).Interface(), *t.Elem)
			}
			return strings.Join(parts, ",")
		}

	case abi.TupleTy:
		rv := reflect.Indirect(reflect.ValueOf(value))
		if rv.Kind() == reflect.Struct && rv.NumField() == len(t.TupleElems) {
			parts := make([]string, len(t.TupleElems))
			for i, elem := range t.TupleElems {
				parts[i] = FormatValue(rv.Field(i).Interface(), *elem)
			}
			return strings.Join(parts, ",")
		}
	}

	return fmt.Sprint(value)
}
