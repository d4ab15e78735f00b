package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/AvaProtocol/txdecode/core/transport"
	"github.com/AvaProtocol/txdecode/model"
	"github.com/AvaProtocol/txdecode/pkg/logger"
)

const getTransactionByHash = "eth_getTransactionByHash"

// JSON-RPC request structure
type JSONRPCRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	Id      int           `json:"id"`
}

// JSON-RPC response structure. Result stays raw so a null result can be told
// apart from a missing one and the original object can be shown as is.
type JSONRPCResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Client fetches transactions from any JSON-RPC endpoint. It holds no
// endpoint itself: the caller picks one from the allow-list per request.
type Client struct {
	transport *transport.Client
	logger    logger.Logger
}

func New(t *transport.Client, log logger.Logger) *Client {
	return &Client{
		transport: t,
		logger:    logger.EnsureLogger(log),
	}
}

// GetTransaction calls eth_getTransactionByHash on endpointURL. txHash is
// trimmed but otherwise passed to the node untouched; the node is the one to
// reject a malformed hash.
func (c *Client) GetTransaction(ctx context.Context, endpointURL, txHash string) (*model.TransactionRecord, error) {
	txHash = strings.TrimSpace(txHash)

	rpcRequest := JSONRPCRequest{
		Jsonrpc: "2.0",
		Method:  getTransactionByHash,
		Params:  []interface{}{txHash},
		Id:      1,
	}

	c.logger.Debug("fetching transaction", "endpoint", endpointURL, "tx_hash", txHash)

	body, err := c.transport.PostJSON(ctx, endpointURL, rpcRequest)
	if err != nil {
		c.logger.Warn("transaction fetch failed", "endpoint", endpointURL, "tx_hash", txHash, "error", err)
		return nil, err
	}

	var response JSONRPCResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, model.NewError(model.TransportError, err, "malformed JSON-RPC response")
	}

	if response.Error != nil {
		return nil, model.NewError(model.TransportError, nil, "rpc error: %s (code: %d)", response.Error.Message, response.Error.Code)
	}

	if isNull(response.Result) {
		return nil, model.NewError(model.NotFoundError, nil, "transaction %s not found", txHash)
	}

	tx, err := model.ParseTransactionRecord(response.Result)
	if err != nil {
		return nil, model.NewError(model.TransportError, err, "unexpected transaction object")
	}

	return tx, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
