package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/expense-extractor/internal/assist"
	"github.com/dvloznov/expense-extractor/internal/dates"
	"github.com/dvloznov/expense-extractor/internal/domain"
	"github.com/dvloznov/expense-extractor/internal/logger"
	"github.com/dvloznov/expense-extractor/internal/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testDeps() Deps {
	return Deps{
		Table: mapping.Default(),
		Dates: dates.New(func() time.Time { return today }),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeProvider records prompts and replies from a scripted list.
type fakeProvider struct {
	mu      sync.Mutex
	prompts []string
	replies []func(ctx context.Context) (string, error)
}

func (f *fakeProvider) Respond(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	n := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if n >= len(f.replies) {
		return "", errors.New("unexpected call")
	}
	return f.replies[n](ctx)
}

func (f *fakeProvider) Available() bool { return true }

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func reply(s string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return s, nil }
}

func fail(err error) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return "", err }
}

type sourceFunc func(ctx context.Context) (string, error)

func (f sourceFunc) Text(ctx context.Context) (string, error) { return f(ctx) }

const bankStatement = `Statement of account
05/01/2025 SWIGGY BANGALORE 450.00 DR
Ref 1234567890123
Bangalore IN
06/01/2025 NEFT SALARY ACME 85,000.00 CR
Ref 2234567890123
Mumbai IN
07/01/2025 POS DMART 1,020.50
Ref 3234567890123
Pune IN
07/01/2025 POS DMART 1,020.50`

const aiReply = "```json\n" + `[
  {"date":"2025-01-05","description":"Swiggy order","amount":450,"currency":"INR","category":"Food & Dining"},
  {"date":"not a date","description":"broken","amount":10}
]` + "\n```"

func bankWith(p assist.Provider) *BankParser {
	d := testDeps()
	d.Provider = p
	return NewBankParser(d)
}

func heuristicPath(ai bool) []State {
	path := []State{StateIdle, StateExtracting}
	if ai {
		path = append(path, StateAIAttempt, StateAIFallback)
	}
	return append(path, StateHeuristicPass, StateDeduplicated, StateDone)
}

func TestMachine_HeuristicOnly(t *testing.T) {
	res, err := bankWith(nil).Parse(context.Background(), bankStatement)
	require.NoError(t, err)

	require.True(t, res.OK())
	assert.False(t, res.ProducedByAI)
	assert.Equal(t, heuristicPath(false), res.Path)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "SWIGGY BANGALORE", res.Transactions[0].Description)
	assert.True(t, res.Transactions[1].Amount.Equal(dec("1020.50")))
}

func TestMachine_DisabledProviderSkipsAI(t *testing.T) {
	res, err := bankWith(assist.Disabled{}).Parse(context.Background(), bankStatement)
	require.NoError(t, err)
	assert.Equal(t, heuristicPath(false), res.Path)
}

func TestMachine_AIValidated(t *testing.T) {
	p := &fakeProvider{replies: []func(context.Context) (string, error){reply(aiReply)}}

	res, err := bankWith(p).Parse(context.Background(), bankStatement)
	require.NoError(t, err)

	assert.Equal(t, []State{StateIdle, StateExtracting, StateAIAttempt, StateAIValidated, StateDone}, res.Path)
	assert.True(t, res.ProducedByAI)
	require.Len(t, res.Transactions, 1)
	tx := res.Transactions[0]
	assert.Equal(t, day(2025, 1, 5), tx.Date)
	assert.Equal(t, "Swiggy order", tx.Description)
	assert.True(t, tx.Amount.Equal(dec("450")))
	assert.Equal(t, domain.SourceBank, tx.Source)
	assert.Equal(t, 1, p.calls())
}

func TestMachine_ContextLengthRetriesOnceThenFallsBack(t *testing.T) {
	tooLong := fmt.Errorf("gemini: %w", assist.ErrContextLengthExceeded)
	p := &fakeProvider{replies: []func(context.Context) (string, error){fail(tooLong), fail(tooLong)}}

	d := testDeps()
	d.Provider = p
	d.MaxChars = 200
	d.RetryChars = 60
	res, err := NewBankParser(d).Parse(context.Background(), bankStatement)
	require.NoError(t, err)

	assert.Equal(t, 2, p.calls())
	assert.Less(t, len(p.prompts[1]), len(p.prompts[0]))
	assert.Equal(t, heuristicPath(true), res.Path)
	assert.False(t, res.ProducedByAI)
	assert.Len(t, res.Transactions, 2)
}

func TestMachine_ContextLengthRetrySucceeds(t *testing.T) {
	p := &fakeProvider{replies: []func(context.Context) (string, error){
		fail(assist.ErrContextLengthExceeded),
		reply(aiReply),
	}}

	res, err := bankWith(p).Parse(context.Background(), bankStatement)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls())
	assert.True(t, res.ProducedByAI)
	assert.Len(t, res.Transactions, 1)
}

func TestMachine_OtherAIErrorsAreNotRetried(t *testing.T) {
	p := &fakeProvider{replies: []func(context.Context) (string, error){fail(errors.New("503 unavailable"))}}

	res, err := bankWith(p).Parse(context.Background(), bankStatement)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls())
	assert.Equal(t, heuristicPath(true), res.Path)
}

func TestMachine_AIEmptyOrUnparsableFallsBack(t *testing.T) {
	for _, raw := range []string{"[]", "No transactions here.", `[{"date":"x","amount":-1}]`} {
		t.Run(raw, func(t *testing.T) {
			p := &fakeProvider{replies: []func(context.Context) (string, error){reply(raw)}}
			res, err := bankWith(p).Parse(context.Background(), bankStatement)
			require.NoError(t, err)
			assert.Equal(t, heuristicPath(true), res.Path)
			assert.False(t, res.ProducedByAI)
			assert.Len(t, res.Transactions, 2)
		})
	}
}

func TestMachine_NoTransactionsFound(t *testing.T) {
	res, err := bankWith(nil).Parse(context.Background(), "Statement of account\nno rows in this period")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoTransactionsFound, res.Outcome)
	assert.Empty(t, res.Transactions)
	assert.Equal(t, StateNoTransactionsFound, res.Path[len(res.Path)-1])
}

func TestMachine_ExtractionFailed(t *testing.T) {
	p := bankWith(nil)

	res, err := p.Parse(context.Background(), "  \n\t ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeExtractionFailed, res.Outcome)
	assert.Equal(t, ReasonNoText, res.Reason)
	assert.Equal(t, []State{StateIdle, StateExtracting, StateExtractionFailed}, res.Path)

	res, err = p.ParseDocument(context.Background(), sourceFunc(func(context.Context) (string, error) {
		return "", errors.New("malformed xref table")
	}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeExtractionFailed, res.Outcome)
	assert.Equal(t, ReasonUnreadable, res.Reason)
}

func TestMachine_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := bankWith(nil).Parse(ctx, bankStatement)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, Result{}, res)
}

func TestMachine_CancelledDuringAI(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &fakeProvider{replies: []func(context.Context) (string, error){
		func(ctx context.Context) (string, error) {
			cancel()
			return "", ctx.Err()
		},
	}}

	res, err := bankWith(p).Parse(ctx, bankStatement)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, res.Transactions)
	assert.Nil(t, res.Path)
}

func TestMachine_StatusMessages(t *testing.T) {
	var status Status
	var during StatusSnapshot
	p := &fakeProvider{replies: []func(context.Context) (string, error){
		func(context.Context) (string, error) {
			during = status.Snapshot()
			return "[]", nil
		},
	}}

	_, err := bankWith(p).Parse(context.Background(), bankStatement, WithStatus(&status))
	require.NoError(t, err)

	assert.Equal(t, StatusSnapshot{InProgress: true, Message: aiMessage}, during)
	assert.Equal(t, StatusSnapshot{}, status.Snapshot())
	assert.Equal(t, []string{"Reading bank statement...", aiMessage, "Analyzing bank transactions..."}, status.History())
}

func TestMachine_LogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf))

	_, err := bankWith(nil).Parse(ctx, bankStatement)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"to":"HeuristicPass"`)
	assert.Contains(t, buf.String(), `"source":"bank"`)
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "AIFallback", StateAIFallback.String())
	assert.True(t, StateNoTransactionsFound.Terminal())
	assert.False(t, StateDeduplicated.Terminal())
	b, err := StateDone.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Done", string(b))
}

func TestCreditCardParser(t *testing.T) {
	text := "14 Mar 2025 UBER INDIA 312.40\n\n\n15 Mar 2025 PAYMENT THANK YOU 20,000.00 CR"
	res, err := NewCreditCardParser(testDeps()).Parse(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "UBER INDIA", res.Transactions[0].Description)
	assert.Equal(t, domain.SourceCreditCard, res.Transactions[0].Source)
}

func TestSMSParser_EndToEnd(t *testing.T) {
	res, err := NewSMSParser(testDeps()).Parse(context.Background(), "Rs.500.00 debited from a/c XX1234 at AMAZON on 05/01/25")
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.False(t, res.ProducedByAI)
	require.Len(t, res.Transactions, 1)

	tx := res.Transactions[0]
	assert.Equal(t, day(2025, 1, 5), tx.Date)
	assert.True(t, tx.Amount.Equal(dec("500.00")))
	assert.Equal(t, domain.CurrencyINR, tx.Currency)
	assert.Equal(t, "AMAZON", tx.Biller)
	assert.Equal(t, "AMAZON", tx.Description)
	assert.Equal(t, "Shopping", tx.Category)
	assert.False(t, tx.Incoming)
	assert.Equal(t, domain.SourceSMS, tx.Source)
	assert.NotEmpty(t, tx.RawText)
}

func TestSMSParser_IncomingPolicy(t *testing.T) {
	const msg = "INR 1200 credited to your account"

	res, err := NewSMSParser(testDeps()).Parse(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.True(t, res.Transactions[0].Incoming)
	assert.True(t, res.Transactions[0].Amount.Equal(dec("1200")))
	assert.Equal(t, today, res.Transactions[0].Date)

	d := testDeps()
	d.DropIncoming = true
	res, err = NewSMSParser(d).Parse(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoTransactionsFound, res.Outcome)
}

func TestSMSParser_UnknownBillerUsesKeywords(t *testing.T) {
	res, err := NewSMSParser(testDeps()).Parse(context.Background(), "Rs 250 spent on card XX1111 at Corner Bakery")
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, mapping.UnknownBiller, res.Transactions[0].Biller)
	assert.Equal(t, "Food & Dining", res.Transactions[0].Category)
}

func TestSMSParser_EmptyAndNoAmount(t *testing.T) {
	p := NewSMSParser(testDeps())

	res, err := p.Parse(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, ReasonEmptySMS, res.Reason)

	res, err = p.Parse(context.Background(), "Your OTP is 4411")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoTransactionsFound, res.Outcome)
}

func TestBillParser(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		amount   string
		biller   string
		category string
		date     time.Time
	}{
		{
			name:     "receipt grand total",
			text:     "Green Leaf Cafe\n12 Park Street\nDate: 03/02/2025\nSubtotal 1,000.00\nGST 180.00\nGrand Total: Rs 1,180.00\nThank you",
			amount:   "1180.00",
			biller:   "Green Leaf Cafe",
			category: "Food & Dining",
			date:     day(2025, 2, 3),
		},
		{
			name:     "higher priority label wins over earlier one",
			text:     "Total: 1,100.00\nGrand Total: 1,250.00\nSWIGGY",
			amount:   "1250.00",
			biller:   "SWIGGY",
			category: "Food & Dining",
			date:     today,
		},
		{
			name:     "payment screenshot",
			text:     "Paid to Ramesh\n₹ 350\nTransaction ID 12345",
			amount:   "350",
			biller:   "RAMESH",
			category: domain.CategoryOther,
			date:     today,
		},
		{
			name:     "to line normalized to known biller",
			text:     "To: Swiggy Limited\nAmount 499.00",
			amount:   "499.00",
			biller:   "SWIGGY",
			category: "Food & Dining",
			date:     today,
		},
		{
			name:   "largest amount fallback",
			text:   "Bill\n12 items 240.00 0.50 1,999.99",
			amount: "1999.99",
			biller: "Bill",
			date:   today,
		},
	}

	p := NewBillParser(testDeps())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Parse(context.Background(), tt.text)
			require.NoError(t, err)
			require.Len(t, res.Transactions, 1)

			tx := res.Transactions[0]
			assert.True(t, tx.Amount.Equal(dec(tt.amount)), "amount %s", tx.Amount)
			assert.Equal(t, domain.CurrencyINR, tx.Currency)
			assert.Equal(t, tt.biller, tx.Biller)
			assert.Equal(t, tt.date, tx.Date)
			if tt.category != "" {
				assert.Equal(t, tt.category, tx.Category)
			}
		})
	}
}

func TestBillParser_NothingFound(t *testing.T) {
	p := NewBillParser(testDeps())

	res, err := p.Parse(context.Background(), "Thanks for shopping with us")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoTransactionsFound, res.Outcome)

	res, err = p.Parse(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, ReasonEmptyBill, res.Reason)
}

func TestMerchantLine(t *testing.T) {
	line, ok := merchantLine("12/03/2025\nTotal 40.00\nTransaction ID 99\n" + strings.Repeat("Very Long Store Name ", 3))
	require.True(t, ok)
	assert.Equal(t, "Very Long Store Name Very Long", line)

	_, ok = merchantLine("12\n--\nAmount 4.00")
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(testDeps())
	assert.False(t, r.AIEnabled())

	for _, s := range domain.Sources() {
		p, err := r.Get(s)
		require.NoError(t, err)
		assert.Equal(t, s, p.Source())
	}

	_, err := r.Get(domain.Source("fax"))
	assert.Error(t, err)

	res, err := r.Parse(context.Background(), domain.SourceSMS, "Rs 99.00 paid to ZOMATO")
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Food & Dining", res.Transactions[0].Category)

	custom, err := r.Table().With(mapping.Entry{Biller: "ZOMATO", Category: "Groceries"})
	require.NoError(t, err)
	r.SetTable(custom)
	assert.Same(t, custom, r.Table())
	res, err = r.Parse(context.Background(), domain.SourceSMS, "Rs 99.00 paid to ZOMATO")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", res.Transactions[0].Category)
}

func TestRegistry_ConcurrentParses(t *testing.T) {
	r := NewRegistry(testDeps())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Parse(context.Background(), domain.SourceBank, bankStatement)
			assert.NoError(t, err)
			assert.Len(t, res.Transactions, 2)
		}()
	}
	wg.Wait()
}

func TestRecategorize_SameTableLeavesParsedTransactionsAlone(t *testing.T) {
	d := testDeps()
	reg := NewRegistry(d)
	inputs := map[domain.Source]string{
		domain.SourceSMS:        "Rs.500.00 debited from a/c XX1234 at AMAZON on 05/01/25",
		domain.SourceBank:       "05/01/2025 SWIGGY BANGALORE 450.00 DR 1234567890123",
		domain.SourceCreditCard: "14 Mar 2025 UBER INDIA 312.40",
		domain.SourceBill:       "Paid to RAHUL SHARMA\n₹500.00\nDebited from HDFC Bank",
	}

	for source, text := range inputs {
		t.Run(string(source), func(t *testing.T) {
			res, err := reg.Parse(context.Background(), source, text)
			require.NoError(t, err)
			require.True(t, res.OK(), res.String())
			for _, tx := range res.Transactions {
				assert.Equal(t, tx, d.Table.Recategorize(tx))
			}
		})
	}
}
