package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AvaProtocol/txdecode/core/abidecoder"
	"github.com/AvaProtocol/txdecode/core/codegen"
	"github.com/AvaProtocol/txdecode/metrics"
	"github.com/AvaProtocol/txdecode/model"
	"github.com/AvaProtocol/txdecode/pkg/byte4"
	"github.com/AvaProtocol/txdecode/pkg/logger"
)

const tracerName = "github.com/AvaProtocol/txdecode/core/pipeline"

// TransactionFetcher is satisfied by rpcclient.Client.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, endpointURL, txHash string) (*model.TransactionRecord, error)
}

// SignatureResolver is satisfied by signature.Resolver.
type SignatureResolver interface {
	ResolveSignature(ctx context.Context, selector string) (string, error)
}

// Orchestrator runs fetch, resolve, decode and generate for one hash. It is
// stateless between runs and safe to call concurrently; the resolver's cache
// is the only thing runs share.
type Orchestrator struct {
	fetcher  TransactionFetcher
	resolver SignatureResolver
	logger   logger.Logger
	metrics  metrics.DecodeMetrics
	tracer   trace.Tracer
}

func NewOrchestrator(fetcher TransactionFetcher, resolver SignatureResolver, log logger.Logger, m metrics.DecodeMetrics) *Orchestrator {
	return &Orchestrator{
		fetcher:  fetcher,
		resolver: resolver,
		logger:   logger.EnsureLogger(log),
		metrics:  metrics.EnsureMetrics(m),
		tracer:   otel.Tracer(tracerName),
	}
}

// Run never returns a nil Result. Fetch failures end the run in Failed with
// Result.Error set; later failures leave the transaction in place and set
// Result.CodeError.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Result {
	res := newResult(req)
	log := o.logger.With("request_id", res.RequestID, "tx_hash", req.TxHash, "network", req.Network)

	ctx, span := o.tracer.Start(ctx, "decode_transaction", trace.WithAttributes(
		attribute.String("request_id", res.RequestID),
		attribute.String("tx_hash", req.TxHash),
		attribute.String("network", req.Network),
	))
	defer span.End()

	defer func() {
		res.FinishedAt = time.Now()
		o.metrics.IncRun(res.Outcome())
		span.SetAttributes(attribute.String("state", string(res.State)))
	}()

	res.advance(Fetching)
	var tx *model.TransactionRecord
	err := o.stage(ctx, stageFetch, func(ctx context.Context) error {
		var err error
		tx, err = o.fetcher.GetTransaction(ctx, req.EndpointURL, req.TxHash)
		return err
	})
	if err != nil {
		res.Error = asModelError(err, model.TransportError)
		res.advance(Failed)
		span.SetStatus(codes.Error, res.Error.Message)
		log.Error("cannot fetch transaction", "kind", res.Error.Kind, "error", err)
		return res
	}

	res.Transaction = tx
	res.TransactionJSON = tx.PrettyJSON()
	res.ValueWei = tx.ValueWei().String()
	res.ValueEth = codegen.WeiToEther(tx.ValueWei())
	res.advance(Fetched)

	if !tx.HasInput() {
		res.advance(NoInputData)
		log.Info("plain value transfer, nothing to decode", "value_wei", res.ValueWei)
		return res
	}

	if tx.IsContractCreation() {
		o.codeFailed(res, log, stageDecode, model.NewError(model.DecodeError, nil, "contract creation carries init code, not a function call"))
		return res
	}

	res.advance(ResolvingSignature)
	selector, err := byte4.SelectorFromCalldata(tx.Input)
	if err != nil {
		o.codeFailed(res, log, stageResolve, model.NewError(model.DecodeError, err, "input is %d bytes, shorter than a selector", len(tx.Input)))
		return res
	}
	res.Selector = selector

	var signature string
	err = o.stage(ctx, stageResolve, func(ctx context.Context) error {
		var err error
		signature, err = o.resolver.ResolveSignature(ctx, selector)
		return err
	})
	if err != nil {
		o.codeFailed(res, log, stageResolve, asModelError(err, model.SignatureNotFoundError))
		return res
	}
	res.Signature = signature
	res.advance(SignatureResolved)

	res.advance(Decoding)
	var call *abidecoder.DecodedCall
	err = o.stage(ctx, stageDecode, func(context.Context) error {
		var err error
		call, err = abidecoder.Decode(tx.Input, signature)
		return err
	})
	if err != nil {
		o.codeFailed(res, log, stageDecode, asModelError(err, model.DecodeError))
		return res
	}
	res.FunctionName = call.Name
	res.Parameters = call.Parameters
	res.advance(Decoded)

	var code string
	err = o.stage(ctx, stageGenerate, func(context.Context) error {
		var err error
		code, err = codegen.GenerateCode(call.Name, tx.ToAddress(), call.Parameters, tx.ValueHex())
		return err
	})
	if err != nil {
		o.codeFailed(res, log, stageGenerate, asModelError(err, model.DecodeError))
		return res
	}
	res.Code = code
	res.advance(CodeGenerated)

	log.Info("transaction decoded",
		"selector", selector,
		"signature", signature,
		"parameters", len(call.Parameters))
	return res
}

// stage wraps fn in a span and records its duration.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	o.metrics.ObserveStage(name, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.metrics.IncStageError(name, string(model.KindOf(err)))
	}
	return err
}

// codeFailed records a non-fatal failure. Signature and decoding problems are
// expected for obscure contracts, so they are logged as warnings only.
func (o *Orchestrator) codeFailed(res *Result, log logger.Logger, stage string, err *model.Error) {
	res.CodeError = err
	log.Warn("cannot generate code for transaction",
		"stage", stage,
		"kind", err.Kind,
		"selector", res.Selector,
		"error", err)
}

func asModelError(err error, fallback model.ErrorKind) *model.Error {
	if e := model.AsError(err); e != nil {
		return e
	}
	return model.NewError(fallback, err, "%s", err.Error())
}
