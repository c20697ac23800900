package parser

import (
	"context"
	"errors"
	"strings"

	"github.com/dvloznov/expense-extractor/internal/assist"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/heuristic"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/rs/zerolog"
)

// State is a named step of a parse call.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateAIAttempt
	StateAIValidated
	StateAIFallback
	StateHeuristicPass
	StateDeduplicated
	StateDone
	StateExtractionFailed
	StateNoTransactionsFound
)

var stateNames = [...]string{
	StateIdle:                "Idle",
	StateExtracting:          "Extracting",
	StateAIAttempt:           "AIAttempt",
	StateAIValidated:         "AIValidated",
	StateAIFallback:          "AIFallback",
	StateHeuristicPass:       "HeuristicPass",
	StateDeduplicated:        "Deduplicated",
	StateDone:                "Done",
	StateExtractionFailed:    "ExtractionFailed",
	StateNoTransactionsFound: "NoTransactionsFound",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateExtractionFailed || s == StateNoTransactionsFound
}

// TextSource yields the text a parse call works on. Plain strings use Text;
// document extraction plugs in its own implementation.
type TextSource interface {
	Text(ctx context.Context) (string, error)
}

// Text is literal input text.
type Text string

func (t Text) Text(context.Context) (string, error) { return string(t), nil }

// Machine runs one source's parse calls:
//
//	Idle -> Extracting -> [AIAttempt -> AIValidated | AIFallback] -> HeuristicPass -> Deduplicated -> Done
//
// Extracting may end in ExtractionFailed and Deduplicated in
// NoTransactionsFound. AIValidated goes straight to Done; AI and heuristic
// output are never merged. A Machine holds no per-call state and may run
// concurrent calls.
type Machine struct {
	Source     domain.Source
	Provider   assist.Provider // nil or unavailable skips the AI states
	Normalizer assist.Normalizer
	// Candidates is the heuristic pass; its output is deduplicated by the
	// machine.
	Candidates  func(text string) []domain.Transaction
	MaxChars    int
	RetryChars  int
	EmptyReason string
}

// run tracks one call.
type run struct {
	m     *Machine
	state State
	path  []State
	log   zerolog.Logger
}

func (r *run) to(next State) {
	r.log.Debug().
		Str("source", string(r.m.Source)).
		Stringer("from", r.state).
		Stringer("to", next).
		Msg("parser transition")
	r.state = next
	r.path = append(r.path, next)
}

func (r *run) finish(res Result) Result {
	res.Path = r.path
	return res
}

// Run executes one parse call. The only error it returns is the context's:
// on cancellation no Result is produced.
func (m *Machine) Run(ctx context.Context, src TextSource, status *Status) (Result, error) {
	r := &run{m: m, state: StateIdle, path: []State{StateIdle}, log: logger.FromContext(ctx)}
	msgs := sourceMessages[m.Source]
	defer status.clear()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	r.to(StateExtracting)
	status.set(msgs.reading)
	text, err := src.Text(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	if err != nil {
		r.log.Warn().Err(err).Str("source", string(m.Source)).Msg("text extraction failed")
		r.to(StateExtractionFailed)
		return r.finish(ExtractionFailed(ReasonUnreadable)), nil
	}
	if strings.TrimSpace(text) == "" {
		r.to(StateExtractionFailed)
		return r.finish(ExtractionFailed(m.emptyReason())), nil
	}

	if m.aiEnabled() {
		r.to(StateAIAttempt)
		status.set(msgs.ai)
		txs, err := m.attemptAI(ctx, r, text)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if err == nil && len(txs) > 0 {
			r.to(StateAIValidated)
			r.to(StateDone)
			return r.finish(Success(txs, true)), nil
		}
		if err != nil {
			r.log.Info().Err(err).Str("source", string(m.Source)).Msg("AI extraction failed, using heuristics")
		} else {
			r.log.Info().Str("source", string(m.Source)).Msg("AI returned no transactions, using heuristics")
		}
		r.to(StateAIFallback)
	}

	r.to(StateHeuristicPass)
	status.set(msgs.analyzing)
	candidates := m.Candidates(text)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	r.to(StateDeduplicated)
	txs := heuristic.Dedup(candidates)
	if len(txs) == 0 {
		r.to(StateNoTransactionsFound)
		return r.finish(NoTransactionsFound()), nil
	}

	r.to(StateDone)
	return r.finish(Success(txs, false)), nil
}

// attemptAI makes one request and, only when the model rejected the prompt
// as too long, exactly one more with the shorter retry budget.
func (m *Machine) attemptAI(ctx context.Context, r *run, text string) ([]domain.Transaction, error) {
	out, err := assist.Attempt(ctx, m.Provider, m.Normalizer, text, m.maxChars())
	if errors.Is(err, assist.ErrContextLengthExceeded) {
		r.log.Info().Str("source", string(m.Source)).Int("chars", m.retryChars()).Msg("context length exceeded, retrying with shorter text")
		out, err = assist.Attempt(ctx, m.Provider, m.Normalizer, text, m.retryChars())
	}
	if err != nil {
		return nil, err
	}
	if len(out.Rejected) > 0 {
		r.log.Debug().Int("rejected", len(out.Rejected)).Int("accepted", len(out.Transactions)).Msg("dropped invalid AI candidates")
	}
	return out.Transactions, nil
}

func (m *Machine) aiEnabled() bool {
	return m.Provider != nil && m.Provider.Available()
}

func (m *Machine) maxChars() int {
	if m.MaxChars > 0 {
		return m.MaxChars
	}
	return assist.DefaultMaxChars
}

func (m *Machine) retryChars() int {
	if m.RetryChars > 0 {
		return m.RetryChars
	}
	return assist.DefaultRetryChars
}

func (m *Machine) emptyReason() string {
	if m.EmptyReason != "" {
		return m.EmptyReason
	}
	return ReasonNoText
}
