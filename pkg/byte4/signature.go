package byte4

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SelectorLength is the number of calldata bytes that identify the called function.
const SelectorLength = 4

// Function calls in the EVM are identified by the first four bytes of the
// Keccak-256 hash of the canonical function signature, e.g.
// keccak256("transfer(address,uint256)")[:4] == 0xa9059cbb.

// SelectorFromCalldata returns the 0x prefixed lowercase selector of calldata.
func SelectorFromCalldata(calldata []byte) (string, error) {
	if len(calldata) < SelectorLength {
		return "", fmt.Errorf("invalid selector length: %d", len(calldata))
	}
	return hexutil.Encode(calldata[:SelectorLength]), nil
}

// SelectorFromSignature hashes a canonical signature such as
// "transfer(address,uint256)" into its 4 byte selector.
func SelectorFromSignature(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:SelectorLength]
}

// CanonicalSignature rebuilds name(type1,type2,...) from an ABI method, using
// the canonical type names (uint256 rather than uint, tuples expanded).
func CanonicalSignature(name string, inputs abi.Arguments) string {
	types := make([]string, 0, len(inputs))
	for _, input := range inputs {
		types = append(types, input.Type.String())
	}
	return fmt.Sprintf("%v(%v)", name, strings.Join(types, ","))
}

// GetMethodFromCalldata returns the ABI method matching the 4-byte selector
// that prefixes calldata. A bare selector works as well as full calldata.
func GetMethodFromCalldata(parsedABI abi.ABI, calldata []byte) (*abi.Method, error) {
	if len(calldata) < SelectorLength {
		return nil, fmt.Errorf("invalid selector length: %d", len(calldata))
	}

	methodID := calldata[:SelectorLength]

	for _, method := range parsedABI.Methods {
		hash := SelectorFromSignature(CanonicalSignature(method.RawName, method.Inputs))
		if bytes.Equal(hash, methodID) {
			m := method
			return &m, nil
		}
	}

	return nil, fmt.Errorf("no matching method found for selector: 0x%x", methodID)
}
