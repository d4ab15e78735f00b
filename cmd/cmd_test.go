package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/txdecode/core/rpcclient"
	"github.com/AvaProtocol/txdecode/version"
)

const (
	approveHash = "0x9a8f5f3c6b0e4e2d1c0b9a8f7e6d5c4b3a291807f6e5d4c3b2a1908f7e6d5c4b"
	approveData = "0x095ea7b3" +
		"0000000000000000000000001111111254eeb25477b68fb85ed929f73a960582" +
		"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
)

// writeTestConfig starts a fake node and registry and points a config file
// at them.
func writeTestConfig(t *testing.T) string {
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcclient.JSONRPCRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result := "null"
		if req.Params[0] == approveHash {
			result = fmt.Sprintf(`{"hash":%q,"from":"0xa1e4380a3b1f749673e270229993ee55f35663b4","to":"0xdac17f958d2ee523a2206206994597c13d831ec7","input":%q,"value":"0x0","blockNumber":"0x1"}`, approveHash, approveData)
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":%s}`, result)
	}))
	t.Cleanup(node.Close)

	registry := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":1,"next":null,"previous":null,"results":[{"id":1,"text_signature":"approve(address,uint256)","hex_signature":"0x095ea7b3"}]}`)
	}))
	t.Cleanup(registry.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := fmt.Sprintf(`
environment: development
registry_url: %s
cooldown: 0s
networks:
  - name: local
    chain_id: 31337
    rpc_url: %s
`, registry.URL, node.URL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Cleanup(func() {
		decodeNetwork, decodeJSON, decodeDump = "", false, false
		configPath = ""
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%s (%s)\n", version.Get(), version.Commit()), out)
}

func TestNetworksCommand(t *testing.T) {
	out, err := runCommand(t, "networks")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "ethereum")
	assert.Contains(t, out, "https://ethereum-rpc.publicnode.com")
}

func TestDecodeCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "decode", "--config", cfg, approveHash)
	require.NoError(t, err)
	assert.Contains(t, out, "# transaction "+approveHash+" on local")
	assert.Contains(t, out, "# approve(address,uint256)")
	assert.Contains(t, out, "def approve(web3: Web3, param_address_1: str, param_uint256_2: int) -> Any:")
	assert.Contains(t, out, "115792089237316195423570985008687907853269984665640564039457584007913129639935")
}

func TestDecodeCommandJSON(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "decode", "-c", cfg, "--json", "--network", "local", approveHash)
	require.NoError(t, err)

	var res struct {
		State        string `json:"state"`
		FunctionName string `json:"function_name"`
		Selector     string `json:"selector"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "CodeGenerated", res.State)
	assert.Equal(t, "approve", res.FunctionName)
	assert.Equal(t, "0x095ea7b3", res.Selector)
}

func TestDecodeCommandNotFound(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "decode", "-c", cfg, "0x01")
	require.Error(t, err)
	assert.Contains(t, out, "error: NotFoundError")
}

func TestDecodeCommandUnknownNetwork(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCommand(t, "decode", "-c", cfg, "--network", "mainnet", approveHash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allow-list")
}

func TestNewAppWiresComponentLoggers(t *testing.T) {
	tests := []struct {
		name    string
		network string
		wantErr bool
	}{
		{name: "configured network", network: "local"},
		{name: "unknown network", network: "mainnet", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := newApp(context.Background(), writeTestConfig(t))
			require.NoError(t, err)
			defer a.Close()

			require.NotNil(t, a.dispatcher)
			require.NotNil(t, a.registry)

			_, err = mustNetwork(a.config, tt.network)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
