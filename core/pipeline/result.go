package pipeline

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AvaProtocol/txdecode/model"
)

// Request is one decode trigger: a transaction hash and the allow-listed
// endpoint to look it up on.
type Request struct {
	TxHash      string
	Network     string
	EndpointURL string
}

// Result is everything a run produced. It is only handed out once the run
// has finished, so readers never see a half written Result.
type Result struct {
	RequestID string  `json:"request_id"`
	TxHash    string  `json:"tx_hash"`
	Network   string  `json:"network,omitempty"`
	State     State   `json:"state"`
	States    []State `json:"states"`

	Transaction     *model.TransactionRecord `json:"-"`
	TransactionJSON string                   `json:"transaction,omitempty"`
	ValueWei        string                   `json:"value_wei,omitempty"`
	ValueEth        string                   `json:"value_eth,omitempty"`

	Selector     string                   `json:"selector,omitempty"`
	Signature    string                   `json:"signature,omitempty"`
	FunctionName string                   `json:"function_name,omitempty"`
	Parameters   []model.DecodedParameter `json:"parameters,omitempty"`
	Code         string                   `json:"code,omitempty"`

	// Error is set when the transaction itself could not be fetched; nothing
	// else is populated then.
	Error *model.Error `json:"error,omitempty"`
	// CodeError is set when signature resolution, decoding or code generation
	// failed. The transaction fields stay valid.
	CodeError *model.Error `json:"code_error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func newResult(req Request) *Result {
	return &Result{
		RequestID: ulid.Make().String(),
		TxHash:    req.TxHash,
		Network:   req.Network,
		State:     Idle,
		States:    []State{Idle},
		StartedAt: time.Now(),
	}
}

func (r *Result) advance(next State) {
	if !r.State.CanTransition(next) {
		// a programming error, never a runtime condition
		panic(fmt.Sprintf("pipeline: illegal transition %s -> %s", r.State, next))
	}
	r.State = next
	r.States = append(r.States, next)
}

// Failed is true when the fetch stage failed and the run has no transaction.
func (r *Result) Failed() bool {
	return r.State == Failed
}

// HasCode is true when a snippet was generated.
func (r *Result) HasCode() bool {
	return r.State == CodeGenerated
}

// Outcome is the label the run is counted under.
func (r *Result) Outcome() string {
	if r.CodeError != nil {
		return "CodeError"
	}
	return string(r.State)
}
