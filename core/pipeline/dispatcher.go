package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AvaProtocol/txdecode/core/config"
	"github.com/AvaProtocol/txdecode/pkg/logger"
)

var (
	ErrRequestInFlight = errors.New("a decode request is already in flight")
	ErrCoolingDown     = errors.New("decode requested too soon after the previous one")
	ErrSuperseded      = errors.New("decode run was superseded by a newer request")
	ErrUnknownNetwork  = errors.New("network is not in the allow-list")
)

// CoalescePolicy decides what happens to a request that arrives while
// another one is still running.
type CoalescePolicy string

const (
	// CoalesceNone runs every request; results publish last writer wins.
	CoalesceNone CoalescePolicy = "none"
	// CoalesceIgnore rejects requests while a run is in flight.
	CoalesceIgnore CoalescePolicy = "ignore"
	// CoalesceRestart cancels the in-flight run. The cancelled run never
	// publishes.
	CoalesceRestart CoalescePolicy = "restart"
)

func ParseCoalescePolicy(s string) (CoalescePolicy, error) {
	switch p := CoalescePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case CoalesceNone, CoalesceIgnore, CoalesceRestart:
		return p, nil
	case "":
		return CoalescePolicy(config.DefaultCoalesce), nil
	default:
		return "", fmt.Errorf("unknown coalesce policy %q", s)
	}
}

// Runner executes one decode run. *Orchestrator is the production Runner.
type Runner interface {
	Run(ctx context.Context, req Request) *Result
}

// NetworkLookup resolves a network name or RPC URL against the allow-list.
type NetworkLookup func(nameOrURL string) (config.Network, bool)

// Dispatcher is the trigger boundary: it validates the target network,
// applies the coalescing policy and cooldown, runs the pipeline and publishes
// the finished Result to the Board.
type Dispatcher struct {
	runner   Runner
	board    *Board
	lookup   NetworkLookup
	policy   CoalescePolicy
	cooldown time.Duration
	logger   logger.Logger

	mu           sync.Mutex
	inFlight     int
	generation   uint64
	cancel       context.CancelFunc
	lastAccepted time.Time

	// now is swapped in tests
	now func() time.Time
}

func NewDispatcher(runner Runner, board *Board, lookup NetworkLookup, policy CoalescePolicy, cooldown time.Duration, log logger.Logger) *Dispatcher {
	if board == nil {
		board = NewBoard()
	}
	if cooldown < 0 {
		cooldown = 0
	}

	return &Dispatcher{
		runner:   runner,
		board:    board,
		lookup:   lookup,
		policy:   policy,
		cooldown: cooldown,
		logger:   logger.EnsureLogger(log),
		now:      time.Now,
	}
}

func (d *Dispatcher) Board() *Board {
	return d.board
}

func (d *Dispatcher) Policy() CoalescePolicy {
	return d.policy
}

// Submit runs a decode for txHash on network and waits for it to finish.
// The returned Result is nil only when the request was rejected before
// running. A run cancelled by a newer request under CoalesceRestart returns
// its partial Result together with ErrSuperseded and is not published.
func (d *Dispatcher) Submit(ctx context.Context, txHash, network string) (*Result, error) {
	txHash = strings.TrimSpace(txHash)

	target, ok := d.lookup(network)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}

	runCtx, cancel, gen, err := d.accept(ctx)
	if err != nil {
		d.logger.Debug("decode request rejected", "tx_hash", txHash, "network", target.Name, "reason", err)
		return nil, err
	}
	defer cancel()

	res := d.runner.Run(runCtx, Request{
		TxHash:      txHash,
		Network:     target.Name,
		EndpointURL: target.RPCURL,
	})

	if superseded := d.finish(gen); superseded {
		d.logger.Info("decode run superseded, result dropped", "tx_hash", txHash, "request_id", res.RequestID)
		return res, ErrSuperseded
	}

	d.board.Publish(res)
	return res, nil
}

func (d *Dispatcher) accept(ctx context.Context) (context.Context, context.CancelFunc, uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.cooldown > 0 && !d.lastAccepted.IsZero() && now.Sub(d.lastAccepted) < d.cooldown {
		return nil, nil, 0, ErrCoolingDown
	}

	switch d.policy {
	case CoalesceIgnore:
		if d.inFlight > 0 {
			return nil, nil, 0, ErrRequestInFlight
		}
	case CoalesceRestart:
		if d.cancel != nil {
			d.cancel()
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.generation++
	d.cancel = cancel
	d.inFlight++
	d.lastAccepted = now

	return runCtx, cancel, d.generation, nil
}

// finish releases the slot taken by accept and reports whether a newer
// request replaced this run while it was executing.
func (d *Dispatcher) finish(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.inFlight--
	latest := gen == d.generation
	if latest {
		d.cancel = nil
	}

	return d.policy == CoalesceRestart && !latest
}
