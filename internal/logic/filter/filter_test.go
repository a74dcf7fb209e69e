package filter

import (
	"encoding/json"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sol-tx-filter/internal/consts"
	"sol-tx-filter/internal/logic/accounts"
	"sol-tx-filter/internal/logic/codec"
	"sol-tx-filter/internal/logic/core"
	"sol-tx-filter/internal/logic/parsed"
	"sol-tx-filter/internal/logic/programs/spltoken"
)

type stubView struct {
	index   accounts.Index[string]
	sigs    []string
	hasSigs bool
	list    parsed.List
	hasList bool
	meta    *core.Meta
}

func (v *stubView) Accounts() accounts.Index[string]  { return v.index }
func (v *stubView) Signatures() ([]string, bool)      { return v.sigs, v.hasSigs }
func (v *stubView) Instructions() (parsed.List, bool) { return v.list, v.hasList }
func (v *stubView) Meta() (*core.Meta, bool)          { return v.meta, v.meta != nil }

const (
	posA uint8 = iota
	posB
	posC
	posD
	posAuth
)

func stubWithTransfers(list parsed.List) *stubView {
	return &stubView{
		index:   accounts.From([]string{"A", "B", "C", "D", "Auth"}, nil, nil),
		list:    list,
		hasList: true,
	}
}

func transfer(src, dst uint8) *parsed.Instruction {
	return &parsed.Instruction{
		Accounts: []uint8{src, dst, posAuth},
		Payload:  codec.SplTokenPayload{Instruction: spltoken.Transfer{Amount: 1}},
	}
}

func transferChecked(src, dst uint8) *parsed.Instruction {
	return &parsed.Instruction{
		Accounts: []uint8{src, posD, dst, posAuth},
		Payload:  codec.SplToken2022Payload{Instruction: spltoken.TransferChecked{Amount: 1, Decimals: 6}},
	}
}

func circleSwap(v TxView) bool {
	return Bind[seenSources](CircleSwap{}).Accept(v)
}

func TestCircleSwap(t *testing.T) {
	tests := []struct {
		name string
		list parsed.List
		want bool
	}{
		{"triangle", parsed.List{transfer(posA, posB), transfer(posB, posC), transfer(posC, posA)}, true},
		{"disjoint", parsed.List{transfer(posA, posB), transfer(posC, posD)}, false},
		{"self transfer", parsed.List{transfer(posA, posA)}, false},
		{"empty", parsed.List{}, false},
		{"mixed families", parsed.List{transfer(posA, posB), transferChecked(posB, posA)}, true},
		{"destination seen as source", parsed.List{transfer(posA, posB), transfer(posC, posA)}, true},
		{"order matters", parsed.List{transfer(posC, posA), transfer(posA, posB)}, false},
		{"gaps and non-transfers", parsed.List{
			nil,
			{Payload: codec.UnknownPayload{}},
			transfer(posA, posB),
			{Payload: codec.ErrorPayload{Message: "bad"}},
			transfer(posB, posA),
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, circleSwap(stubWithTransfers(tt.list)))
		})
	}
}

func TestCircleSwapTraversesInner(t *testing.T) {
	outer := &parsed.Instruction{Payload: codec.UnknownPayload{}}
	outer.Inner = []*parsed.Instruction{transfer(posA, posB)}
	nested := transfer(posB, posC)
	nested.Inner = []*parsed.Instruction{transfer(posC, posA)}
	outer.Inner = append(outer.Inner, nested)

	assert.True(t, circleSwap(stubWithTransfers(parsed.List{outer})))

	// 内部指令先于后续兄弟节点访问
	first := &parsed.Instruction{Payload: codec.UnknownPayload{}, Inner: []*parsed.Instruction{transfer(posC, posA)}}
	assert.False(t, circleSwap(stubWithTransfers(parsed.List{first, transfer(posA, posB)})))
}

func TestCircleSwapDescendsIntoTransfer(t *testing.T) {
	// 顶层 transfer 的内部指令同样参与判断
	top := transfer(posA, posB)
	top.Inner = []*parsed.Instruction{transfer(posB, posA)}
	assert.True(t, circleSwap(stubWithTransfers(parsed.List{top})))

	top = transfer(posA, posB)
	top.Inner = []*parsed.Instruction{transfer(posB, posC)}
	assert.False(t, circleSwap(stubWithTransfers(parsed.List{top})))
}

func TestCircleSwapContextIsFresh(t *testing.T) {
	stage := Bind[seenSources](CircleSwap{})
	// 第一笔记录 A 为来源，第二笔只有 C→A：上下文不共享时不能命中
	assert.False(t, stage.Accept(stubWithTransfers(parsed.List{transfer(posA, posB)})))
	assert.False(t, stage.Accept(stubWithTransfers(parsed.List{transfer(posC, posA)})))
}

func TestCircleSwapWithoutInstructions(t *testing.T) {
	assert.False(t, circleSwap(&stubView{}))
}

func TestSignatureFilters(t *testing.T) {
	include := Bind[noContext](NewSignatureInclude([]string{"S1"}))
	exclude := Bind[noContext](NewSignatureExclude([]string{"S1"}))

	absent := &stubView{}
	assert.True(t, include.Accept(absent))
	assert.True(t, exclude.Accept(absent))

	other := &stubView{sigs: []string{"S2"}, hasSigs: true}
	assert.False(t, include.Accept(other))
	assert.True(t, exclude.Accept(other))

	hit := &stubView{sigs: []string{"S2", "S1"}, hasSigs: true}
	assert.True(t, include.Accept(hit))
	assert.False(t, exclude.Accept(hit))
}

func TestAccountFilters(t *testing.T) {
	view := &stubView{index: accounts.From([]string{"a", "b"}, []string{"c"}, []string{"d"})}

	assert.True(t, Bind[noContext](NewAccountInclude([]string{"a", "d"})).Accept(view))
	assert.False(t, Bind[noContext](NewAccountInclude([]string{"a", "z"})).Accept(view))
	assert.True(t, Bind[noContext](NewAccountInclude(nil)).Accept(view))

	assert.True(t, Bind[noContext](NewAccountExclude([]string{"x", "y"})).Accept(view))
	assert.False(t, Bind[noContext](NewAccountExclude([]string{"x", "c"})).Accept(view))
}

func TestStatusFilter(t *testing.T) {
	success := Bind[noContext](NewStatus(true))
	fail := Bind[noContext](NewStatus(false))

	assert.False(t, success.Accept(&stubView{}))
	assert.False(t, fail.Accept(&stubView{}))

	ok := &stubView{meta: &core.Meta{Err: json.RawMessage("null")}}
	assert.True(t, success.Accept(ok))
	assert.False(t, fail.Accept(ok))

	failed := &stubView{meta: &core.Meta{Err: json.RawMessage(`{"InstructionError":[0,"Custom"]}`)}}
	assert.False(t, success.Accept(failed))
	assert.True(t, fail.Accept(failed))
}

func TestDeleteAll(t *testing.T) {
	assert.False(t, Bind[noContext](DeleteAll{}).Accept(&stubView{}))
}

type countingStage struct {
	name   string
	result bool
	calls  *int
}

func (s countingStage) Name() string { return s.name }

func (s countingStage) Accept(TxView) bool {
	*s.calls++
	return s.result
}

func TestPipelineShortCircuit(t *testing.T) {
	var first, second int
	p := NewPipeline(
		countingStage{name: "reject", result: false, calls: &first},
		countingStage{name: "accept", result: true, calls: &second},
	)
	assert.False(t, p.Accept(&stubView{}))
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, []string{"reject", "accept"}, p.Names())

	assert.True(t, NewPipeline().Accept(&stubView{}))
}

// 账户: 0 A, 1 B, 2 auth, 3 token program
func rawTransferTx(accountsPerIx [][]uint8) *core.TransactionWithMeta {
	data := base58.Encode([]byte{3, 1, 0, 0, 0, 0, 0, 0, 0})
	ixs := make([]core.CompiledInstruction, len(accountsPerIx))
	for i, accs := range accountsPerIx {
		ixs[i] = core.CompiledInstruction{ProgramIDIndex: 3, Accounts: accs, Data: data}
	}
	return &core.TransactionWithMeta{
		Transaction: core.EncodedTransaction{
			Encoding:   core.EncodingJSON,
			Signatures: []string{"sig-raw"},
			Message: &core.UiMessage{
				Format: core.MessageRaw,
				Raw: &core.RawMessage{
					AccountKeys:  []string{"A", "B", "Auth", consts.TokenProgramStr},
					Instructions: ixs,
				},
			},
		},
		Meta: &core.Meta{Err: json.RawMessage("null")},
	}
}

func TestEvaluateRecord(t *testing.T) {
	p, err := BuildPipeline([]Spec{
		{Type: TypeStatus, Status: StatusSuccess},
		{Type: TypeSignatureInclude, Signatures: []string{"sig-raw"}},
		{Type: TypeCircleSwap},
	})
	require.NoError(t, err)

	accepted, err := p.Evaluate(rawTransferTx([][]uint8{{0, 1, 2}, {1, 0, 2}}))
	require.NoError(t, err)
	assert.True(t, accepted)

	accepted, err = p.Evaluate(rawTransferTx([][]uint8{{0, 1, 2}}))
	require.NoError(t, err)
	assert.False(t, accepted)
}

func TestEvaluateRecoversPanic(t *testing.T) {
	p, err := BuildPipeline([]Spec{{Type: TypeCircleSwap}})
	require.NoError(t, err)

	// 转账指令账户数量不足
	accepted, err := p.Evaluate(rawTransferTx([][]uint8{{0}}))
	assert.Error(t, err)
	assert.False(t, accepted)
}

func TestViewModes(t *testing.T) {
	raw := NewView(rawTransferTx([][]uint8{{0, 1, 2}}))
	sigs, ok := raw.Signatures()
	assert.True(t, ok)
	assert.Equal(t, []string{"sig-raw"}, sigs)
	list, ok := raw.Instructions()
	assert.True(t, ok)
	assert.Len(t, list, 1)
	assert.True(t, raw.Accounts().Contains("Auth"))

	binary := NewView(&core.TransactionWithMeta{Transaction: core.EncodedTransaction{Encoding: core.EncodingBinary}})
	_, ok = binary.Signatures()
	assert.False(t, ok)
	_, ok = binary.Instructions()
	assert.False(t, ok)
	_, ok = binary.Meta()
	assert.False(t, ok)
	assert.Equal(t, 0, binary.Accounts().Count())

	accountsMode := NewView(&core.TransactionWithMeta{Transaction: core.EncodedTransaction{
		Encoding:    core.EncodingAccounts,
		Signatures:  []string{"s"},
		AccountKeys: []core.ParsedAccount{{Pubkey: "k"}},
	}})
	_, ok = accountsMode.Signatures()
	assert.True(t, ok)
	_, ok = accountsMode.Instructions()
	assert.False(t, ok)
	assert.True(t, accountsMode.Accounts().Contains("k"))
}

func TestBuildPipeline(t *testing.T) {
	p, err := BuildPipeline([]Spec{
		{Type: "account_include", Accounts: []string{"a"}},
		{Type: "Account_Exclude", Accounts: []string{"b"}},
		{Type: "signature_exclude"},
		{Type: "status", Status: "fail"},
		{Type: "delete_all"},
		{Type: "circle_swap"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		TypeAccountInclude, TypeAccountExclude, TypeSignatureExclude, TypeStatus, TypeDeleteAll, TypeCircleSwap,
	}, p.Names())

	_, err = BuildPipeline([]Spec{{Type: "nope"}})
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = BuildPipeline([]Spec{{Type: TypeStatus, Status: "maybe"}})
	assert.ErrorIs(t, err, ErrInvalidSpec)
}
