// Package codegen renders a decoded contract call as a web3.py snippet.
//
// Everything that reaches the output from the registry or the call data
// (function name, parameter names and types, values, the target address) is
// untrusted. Identifiers are reduced to [A-Za-z0-9_] and every other piece of
// text is emitted as a JSON encoded string literal, which is also a valid
// Python string literal, and parsed at runtime with json.loads.
package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"text/template"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/AvaProtocol/txdecode/core/abidecoder"
	"github.com/AvaProtocol/txdecode/model"
)

const pythonSource = `from typing import Any
import json

from web3 import Web3

# payable: {{.Payable}}, value: {{.ValueWei}} wei ({{.ValueEth}} ETH)


def {{.FuncIdent}}(web3: Web3{{range .Params}}, {{.Ident}}: {{.PyType}}{{end}}) -> Any:
    contract_address = {{.ToAddress}}
    to_address = web3.to_checksum_address(contract_address)

    abi = json.loads({{.ABI}})

    contract = web3.eth.contract(address=to_address, abi=abi)

    return contract.get_function_by_name({{.FuncName}})({{.CallArgs}})
`

var pythonTemplate = template.Must(template.New("python").Parse(pythonSource))

type templateParam struct {
	Ident  string
	PyType string
}

type templateData struct {
	Payable   string
	ValueWei  string
	ValueEth  string
	FuncIdent string
	FuncName  string
	ToAddress string
	ABI       string
	Params    []templateParam
	CallArgs  string
}

type abiParam struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Components []abiParam `json:"components,omitempty"`
}

type abiFunction struct {
	Constant        bool       `json:"constant"`
	Inputs          []abiParam `json:"inputs"`
	Name            string     `json:"name"`
	Outputs         []abiParam `json:"outputs"`
	Payable         bool       `json:"payable"`
	StateMutability string     `json:"stateMutability"`
	Type            string     `json:"type"`
}

// reserved inside the generated function body
var bodyNames = map[string]bool{
	"web3": true, "contract": true, "contract_address": true, "to_address": true,
	"abi": true, "json": true, "Web3": true, "Any": true,
}

// GenerateCode renders the call. It is deterministic: identical inputs give
// byte-identical output.
func GenerateCode(functionName, toAddress string, params []model.DecodedParameter, value string) (string, error) {
	payable := IsPayable(value)
	mutability := "nonpayable"
	if payable {
		mutability = "payable"
	}

	fn := abiFunction{
		Constant:        false,
		Inputs:          lo.Map(params, func(p model.DecodedParameter, _ int) abiParam { return abiParamFor(p) }),
		Name:            functionName,
		Outputs:         []abiParam{},
		Payable:         payable,
		StateMutability: mutability,
		Type:            "function",
	}
	abiJSON, err := json.Marshal([]abiFunction{fn})
	if err != nil {
		return "", fmt.Errorf("cannot encode abi: %w", err)
	}

	idents := uniqueIdentifiers(params)
	tplParams := make([]templateParam, len(params))
	for i, p := range params {
		tplParams[i] = templateParam{Ident: idents[i], PyType: PythonType(p.Type)}
	}

	valueWei, valueEth := describeValue(value)

	data := templateData{
		Payable:   pyBool(payable),
		ValueWei:  valueWei,
		ValueEth:  valueEth,
		FuncIdent: Identifier(functionName, "call"),
		FuncName:  pyString(functionName),
		ToAddress: pyString(toAddress),
		ABI:       pyString(string(abiJSON)),
		Params:    tplParams,
		CallArgs:  strings.Join(idents, ", "),
	}

	var buf bytes.Buffer
	if err := pythonTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("cannot render code: %w", err)
	}
	return buf.String(), nil
}

// IsPayable is true unless value is empty or parses to zero. Anything that
// does not parse counts as nonzero.
func IsPayable(value string) bool {
	wei, ok := parseWei(value)
	if !ok {
		return strings.TrimSpace(value) != ""
	}
	return wei.Sign() != 0
}

func parseWei(value string) (*big.Int, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return new(big.Int), true
	}
	if rest, ok := strings.CutPrefix(strings.ToLower(v), "0x"); ok {
		if rest == "" {
			return new(big.Int), true
		}
		return new(big.Int).SetString(rest, 16)
	}
	return new(big.Int).SetString(v, 10)
}

func describeValue(value string) (string, string) {
	wei, ok := parseWei(value)
	if !ok {
		return "unknown", "unknown"
	}
	return wei.String(), WeiToEther(wei)
}

// WeiToEther renders wei in the display unit without going through floats.
func WeiToEther(wei *big.Int) string {
	return decimal.NewFromBigInt(wei, -18).String()
}

// abiParamFor rebuilds the JSON ABI entry for a canonical type. Tuples come
// back from the decoder as "(t1,t2)" which JSON ABIs spell as "tuple" plus
// components.
func abiParamFor(p model.DecodedParameter) abiParam {
	if !strings.HasPrefix(p.Type, "(") {
		return abiParam{Name: p.Name, Type: p.Type}
	}

	sig, err := abidecoder.ParseSignature("f(" + p.Type + ")")
	if err != nil || len(sig.Inputs) != 1 {
		return abiParam{Name: p.Name, Type: p.Type}
	}
	param := abiParamFromType(sig.Inputs[0].Type)
	param.Name = p.Name
	return param
}

func abiParamFromType(t abi.Type) abiParam {
	switch t.T {
	case abi.TupleTy:
		components := make([]abiParam, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			components[i] = abiParamFromType(*elem)
			components[i].Name = t.TupleRawNames[i]
		}
		return abiParam{Type: "tuple", Components: components}
	case abi.SliceTy, abi.ArrayTy:
		inner := abiParamFromType(*t.Elem)
		if inner.Components == nil {
			return abiParam{Type: t.String()}
		}
		suffix := "[]"
		if t.T == abi.ArrayTy {
			suffix = fmt.Sprintf("[%d]", t.Size)
		}
		inner.Type += suffix
		return inner
	}
	return abiParam{Type: t.String()}
}

// PythonType maps a Solidity type onto the annotation used in the signature
// of the generated function.
func PythonType(solidityType string) string {
	switch {
	case strings.HasSuffix(solidityType, "]"):
		return "list"
	case strings.HasPrefix(solidityType, "("):
		return "tuple"
	case solidityType == "address", solidityType == "string":
		return "str"
	case solidityType == "bool":
		return "bool"
	case strings.HasPrefix(solidityType, "uint"), strings.HasPrefix(solidityType, "int"):
		return "int"
	case strings.HasPrefix(solidityType, "bytes"), solidityType == "function":
		return "bytes"
	}
	return "Any"
}

func uniqueIdentifiers(params []model.DecodedParameter) []string {
	used := make(map[string]bool, len(params))
	out := make([]string, len(params))
	for i, p := range params {
		ident := Identifier(p.Name, fmt.Sprintf("arg%d", i+1))
		if bodyNames[ident] {
			ident += "_"
		}
		candidate := ident
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", ident, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// pyString quotes s as a JSON string, which Python reads back unchanged.
func pyString(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted)
}
