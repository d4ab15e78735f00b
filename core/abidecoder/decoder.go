package abidecoder

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"

	"github.com/AvaProtocol/txdecode/model"
	"github.com/AvaProtocol/txdecode/pkg/byte4"
)

// DecodedCall is a contract call decoded against a text signature.
type DecodedCall struct {
	Name string `json:"name"`
	// canonical form, e.g. transfer(address,uint256)
	Signature  string                   `json:"signature"`
	Selector   string                   `json:"selector"`
	Parameters []model.DecodedParameter `json:"parameters"`
}

// DecodeInput decodes calldata (selector included) against textSignature and
// returns one parameter per declared input, in declared order.
func DecodeInput(input []byte, textSignature string) ([]model.DecodedParameter, error) {
	call, err := Decode(input, textSignature)
	if err != nil {
		return nil, err
	}
	return call.Parameters, nil
}

// Decode is DecodeInput plus the function name and canonical signature.
//
// The arguments must re-encode to exactly the bytes they were read from, so
// dirty padding is a DecodeError. Trailing bytes past the last argument are
// tolerated; some wallets and aggregators append tracking data to otherwise
// well formed calldata.
func Decode(input []byte, textSignature string) (*DecodedCall, error) {
	sig, err := ParseSignature(textSignature)
	if err != nil {
		return nil, model.NewError(model.MalformedSignatureError, err, "cannot parse signature %q", textSignature)
	}

	if len(input) < byte4.SelectorLength {
		return nil, model.NewError(model.DecodeError, nil, "input is %d bytes, shorter than a selector", len(input))
	}

	method := abi.NewMethod(sig.Name, sig.Name, abi.Function, "nonpayable", false, false, sig.Inputs, nil)
	parsedABI := abi.ABI{Methods: map[string]abi.Method{sig.Name: method}}

	matched, err := byte4.GetMethodFromCalldata(parsedABI, input)
	if err != nil {
		return nil, model.NewError(model.DecodeError, err, "selector %s does not belong to %s", hexutil.Encode(input[:byte4.SelectorLength]), method.Sig)
	}

	values, err := matched.Inputs.UnpackValues(input[byte4.SelectorLength:])
	if err != nil {
		return nil, model.NewError(model.DecodeError, err, "arguments do not match %s", matched.Sig)
	}
	if len(values) != len(matched.Inputs) {
		return nil, model.NewError(model.DecodeError, nil, "expected %d arguments for %s, got %d", len(matched.Inputs), matched.Sig, len(values))
	}

	// go-ethereum keeps only the low bytes of address and small integer words;
	// anything left in the padding means the calldata was built for another type.
	packed, err := matched.Inputs.Pack(values...)
	if err != nil || !bytes.HasPrefix(input[byte4.SelectorLength:], packed) {
		return nil, model.NewError(model.DecodeError, err, "arguments are not a canonical encoding of %s", matched.Sig)
	}

	params := lo.Map(matched.Inputs, func(arg abi.Argument, i int) model.DecodedParameter {
		typeName := arg.Type.String()
		return model.DecodedParameter{
			Name:  ParameterName(arg.Name, typeName, i),
			Type:  typeName,
			Value: FormatValue(values[i], arg.Type),
		}
	})

	return &DecodedCall{
		Name:       matched.RawName,
		Signature:  matched.Sig,
		Selector:   hexutil.Encode(input[:byte4.SelectorLength]),
		Parameters: params,
	}, nil
}

// ParameterName is name when the signature declared one, otherwise
// param_{type}_{position} with a 1-based position.
func ParameterName(name, typeName string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("param_%s_%d", typeName, index+1)
}
