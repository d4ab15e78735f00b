package pipeline

// State is a step of a single decode run.
//
//	Idle -> Fetching -> Fetched -> NoInputData
//	                            -> ResolvingSignature -> SignatureResolved -> Decoding -> Decoded -> CodeGenerated
//	Fetching -> Failed
//
// A failure after Fetched does not move the run to Failed: the run keeps the
// last state it reached and reports the error in Result.CodeError.
type State string

const (
	Idle               State = "Idle"
	Fetching           State = "Fetching"
	Fetched            State = "Fetched"
	NoInputData        State = "NoInputData"
	ResolvingSignature State = "ResolvingSignature"
	SignatureResolved  State = "SignatureResolved"
	Decoding           State = "Decoding"
	Decoded            State = "Decoded"
	CodeGenerated      State = "CodeGenerated"
	Failed             State = "Failed"
)

// stage names used for logs, spans and metrics
const (
	stageFetch    = "fetch_transaction"
	stageResolve  = "resolve_signature"
	stageDecode   = "decode_input"
	stageGenerate = "generate_code"
)

var transitions = map[State][]State{
	Idle:               {Fetching},
	Fetching:           {Fetched, Failed},
	Fetched:            {NoInputData, ResolvingSignature},
	ResolvingSignature: {SignatureResolved},
	SignatureResolved:  {Decoding},
	Decoding:           {Decoded},
	Decoded:            {CodeGenerated},
}

// CanTransition reports whether next may follow s.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal is true for states a run cannot leave.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
