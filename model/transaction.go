package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionRecord is the subset of an eth_getTransactionByHash result the
// decoder works with. The node's JSON object is kept verbatim in Raw so the
// caller can display every field, including the ones we don't model.
type TransactionRecord struct {
	Hash     common.Hash     `json:"hash"`
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to"`
	Input    hexutil.Bytes   `json:"input"`
	Value    *hexutil.Big    `json:"value"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Nonce    hexutil.Uint64  `json:"nonce"`

	// nil while the transaction is pending
	BlockNumber *hexutil.Big `json:"blockNumber"`

	Raw json.RawMessage `json:"-"`
}

// ParseTransactionRecord decodes a non-null JSON-RPC transaction object.
// Objects hexutil refuses, such as quantities with leading zeros ("0x00") or
// plain decimal numbers, are read field by field instead. Only an object
// whose input or recipient cannot be read is rejected.
func ParseTransactionRecord(raw json.RawMessage) (*TransactionRecord, error) {
	var tx TransactionRecord
	if err := json.Unmarshal(raw, &tx); err != nil {
		loose, looseErr := parseLooseRecord(raw)
		if looseErr != nil {
			return nil, fmt.Errorf("cannot parse transaction object: %w", looseErr)
		}
		tx = *loose
	}

	tx.Raw = append(json.RawMessage(nil), raw...)
	return &tx, nil
}

func parseLooseRecord(raw json.RawMessage) (*TransactionRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	tx := &TransactionRecord{
		Hash: common.HexToHash(looseString(fields["hash"])),
		From: common.HexToAddress(looseString(fields["from"])),
	}

	if input := looseString(fields["input"]); input != "" {
		data, err := hexutil.Decode(input)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		tx.Input = data
	}

	if to := looseString(fields["to"]); to != "" {
		if !common.IsHexAddress(to) {
			return nil, fmt.Errorf("to: invalid address %q", to)
		}
		addr := common.HexToAddress(to)
		tx.To = &addr
	}

	for name, dst := range map[string]**hexutil.Big{
		"value":       &tx.Value,
		"gasPrice":    &tx.GasPrice,
		"blockNumber": &tx.BlockNumber,
	} {
		q, err := parseQuantity(fields[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if q != nil {
			*dst = (*hexutil.Big)(q)
		}
	}

	for name, dst := range map[string]*hexutil.Uint64{
		"gas":   &tx.Gas,
		"nonce": &tx.Nonce,
	} {
		q, err := parseQuantity(fields[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if q != nil && q.IsUint64() {
			*dst = hexutil.Uint64(q.Uint64())
		}
	}

	return tx, nil
}

// looseString returns a JSON string or number as text, "" for null or absent.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return strings.TrimSpace(s)
}

// parseQuantity reads hex with or without leading zeros, or a decimal.
func parseQuantity(raw json.RawMessage) (*big.Int, error) {
	s := looseString(raw)
	if s == "" {
		return nil, nil
	}

	digits, base := s, 10
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		if rest == "" {
			return new(big.Int), nil
		}
		digits, base = rest, 16
	}

	q, ok := new(big.Int).SetString(digits, base)
	if !ok || q.Sign() < 0 {
		return nil, fmt.Errorf("invalid quantity %q", s)
	}
	return q, nil
}

// HasInput reports whether the transaction carries call data. A plain value
// transfer has input "0x".
func (tx *TransactionRecord) HasInput() bool {
	return len(tx.Input) > 0
}

// IsContractCreation is true when the transaction has no recipient.
func (tx *TransactionRecord) IsContractCreation() bool {
	return tx.To == nil
}

// ToAddress returns the checksummed recipient, or an empty string for
// contract creation.
func (tx *TransactionRecord) ToAddress() string {
	if tx.To == nil {
		return ""
	}
	return tx.To.Hex()
}

// ValueWei returns the transferred value, zero when the node omitted it.
func (tx *TransactionRecord) ValueWei() *big.Int {
	if tx.Value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(tx.Value.ToInt())
}

// ValueHex returns the value as the node reports it ("0x0" when absent).
func (tx *TransactionRecord) ValueHex() string {
	if tx.Value == nil {
		return "0x0"
	}
	return tx.Value.String()
}

// IsPending is true when the node has not yet included the transaction.
func (tx *TransactionRecord) IsPending() bool {
	return tx.BlockNumber == nil
}

// PrettyJSON re-indents the node's original object with two spaces.
func (tx *TransactionRecord) PrettyJSON() string {
	if len(tx.Raw) == 0 {
		data, err := json.MarshalIndent(tx, "", "  ")
		if err != nil {
			return ""
		}
		return string(data)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, tx.Raw, "", "  "); err != nil {
		return string(tx.Raw)
	}
	return buf.String()
}
