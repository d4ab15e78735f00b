package rpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/txdecode/core/transport"
	"github.com/AvaProtocol/txdecode/model"
)

const txHash = "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"

const txObject = `{
	"blockHash":"0x9f1d5a3b1c7c2b1e2a0d4b7c3e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f",
	"blockNumber":"0x10d4f",
	"from":"0xa1e4380a3b1f749673e270229993ee55f35663b4",
	"gas":"0x5208",
	"gasPrice":"0x2d79883d2000",
	"hash":"0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060",
	"input":"0x",
	"nonce":"0x0",
	"to":"0x5df9b87991262f6ba471f09758cde1c0fc1de734",
	"transactionIndex":"0x0",
	"value":"0x7a69"
}`

func newRPCServer(t *testing.T, response string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req JSONRPCRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.Jsonrpc)
		assert.Equal(t, "eth_getTransactionByHash", req.Method)
		assert.Equal(t, []interface{}{txHash}, req.Params)
		assert.EqualValues(t, 1, req.Id)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
}

func newClient() *Client {
	return New(transport.New(time.Second, nil), nil)
}

func TestGetTransaction(t *testing.T) {
	server := newRPCServer(t, `{"jsonrpc":"2.0","id":1,"result":`+txObject+`}`)
	defer server.Close()

	tx, err := newClient().GetTransaction(context.Background(), server.URL, "  "+txHash+"\n")
	require.NoError(t, err)

	assert.Equal(t, txHash, tx.Hash.Hex())
	assert.True(t, strings.EqualFold("0x5df9b87991262f6ba471f09758cde1c0fc1de734", tx.ToAddress()))
	assert.False(t, tx.HasInput())
	assert.Equal(t, "31337", tx.ValueWei().String())
	assert.False(t, tx.IsPending())
	assert.Contains(t, tx.PrettyJSON(), "\n  \"transactionIndex\": \"0x0\"")
}

func TestGetTransactionNullResult(t *testing.T) {
	server := newRPCServer(t, `{"jsonrpc":"2.0","id":1,"result":null}`)
	defer server.Close()

	tx, err := newClient().GetTransaction(context.Background(), server.URL, txHash)
	assert.Nil(t, tx)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.NotFoundError))
}

func TestGetTransactionRPCError(t *testing.T) {
	server := newRPCServer(t, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid argument 0: hex string has length 10, want 64 for common.Hash"}}`)
	defer server.Close()

	_, err := newClient().GetTransaction(context.Background(), server.URL, txHash)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.TransportError))
	assert.Contains(t, err.Error(), "-32602")
}

func TestGetTransactionMalformedBody(t *testing.T) {
	server := newRPCServer(t, `<html>rate limited</html>`)
	defer server.Close()

	_, err := newClient().GetTransaction(context.Background(), server.URL, txHash)
	require.Error(t, err)
	assert.True(t, model.IsKind(err, model.TransportError))
}

func TestGetTransactionPaddedQuantities(t *testing.T) {
	padded := strings.NewReplacer(`"nonce":"0x0"`, `"nonce":"0x00"`, `"value":"0x7a69"`, `"value":"0x007a69"`).Replace(txObject)
	server := newRPCServer(t, `{"jsonrpc":"2.0","id":1,"result":`+padded+`}`)
	defer server.Close()

	tx, err := newClient().GetTransaction(context.Background(), server.URL, txHash)
	require.NoError(t, err)

	assert.Equal(t, "31337", tx.ValueWei().String())
	assert.Equal(t, uint64(0), uint64(tx.Nonce))
	assert.Contains(t, tx.PrettyJSON(), "\n  \"nonce\": \"0x00\"")
}
