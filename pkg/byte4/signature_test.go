package byte4

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ERC20 transfer and balanceOf. The selectors can be cross-checked on Etherscan or Remix.
const erc20ABI = `[
	{
		"inputs": [
			{"name": "_to", "type": "address"},
			{"name": "_value", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "who", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("failed to decode hex: %v", err)
	}
	return b
}

func TestGetMethodFromCalldata(t *testing.T) {
	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		t.Fatalf("failed to parse ABI: %v", err)
	}

	tests := []struct {
		name        string
		calldata    []byte
		wantMethod  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid balanceOf selector",
			calldata:   decodeHex(t, "70a08231000000000000000000000000ce289bb9fb0a9591317981223cbe33d5dc42268d"),
			wantMethod: "balanceOf",
		},
		{
			name:       "valid transfer selector",
			calldata:   decodeHex(t, "a9059cbb000000000000000000000000ce289bb9fb0a9591317981223cbe33d5dc42268d0000000000000000000000000000000000000000000000000de0b6b3a7640000"),
			wantMethod: "transfer",
		},
		{
			name:        "invalid selector length",
			calldata:    []byte{0x70, 0xa0},
			wantErr:     true,
			errContains: "invalid selector length",
		},
		{
			name:        "unknown selector",
			calldata:    decodeHex(t, "12345678"),
			wantErr:     true,
			errContains: "no matching method found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, err := GetMethodFromCalldata(parsedABI, tt.calldata)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				if method != nil {
					t.Error("expected nil method but got non-nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if method.Name != tt.wantMethod {
				t.Errorf("got method %q, want %q", method.Name, tt.wantMethod)
			}
		})
	}
}

func TestSelectorFromSignature(t *testing.T) {
	tests := []struct {
		signature string
		selector  string
	}{
		{"transfer(address,uint256)", "0xa9059cbb"},
		{"balanceOf(address)", "0x70a08231"},
		{"approve(address,uint256)", "0x095ea7b3"},
		{"decimals()", "0x313ce567"},
		{"latestRoundData()", "0xfeaf968c"},
	}

	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			got := hexutil.Encode(SelectorFromSignature(tt.signature))
			if got != tt.selector {
				t.Errorf("selector of %s = %s, want %s", tt.signature, got, tt.selector)
			}
		})
	}
}

func TestSelectorFromCalldata(t *testing.T) {
	selector, err := SelectorFromCalldata(decodeHex(t, "A9059CBB0000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selector != "0xa9059cbb" {
		t.Errorf("got %s, want 0xa9059cbb", selector)
	}

	if _, err := SelectorFromCalldata([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Error("expected error for 3 byte calldata")
	}
}

func TestCanonicalSignature(t *testing.T) {
	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		t.Fatalf("failed to parse ABI: %v", err)
	}

	got := CanonicalSignature("transfer", parsedABI.Methods["transfer"].Inputs)
	if got != "transfer(address,uint256)" {
		t.Errorf("got %s", got)
	}
}
