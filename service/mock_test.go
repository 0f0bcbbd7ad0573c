package service_test

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"voting-settlement/config"
	"voting-settlement/service"
)

type finishCall struct {
	ID     uint64
	Result int64
}

// mockChain records finishProposal calls instead of sending them.
type mockChain struct {
	mu     sync.Mutex
	calls  []finishCall
	dials  int
	closed int

	txHash common.Hash
	block  uint64
	err    error
	// block until the context is done, then report its error
	hang bool
}

func (m *mockChain) FinishProposal(ctx context.Context, id uint64, result int64) (*types.Receipt, error) {
	m.mu.Lock()
	m.calls = append(m.calls, finishCall{ID: id, Result: result})
	m.mu.Unlock()

	if m.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return &types.Receipt{
		TxHash:      m.txHash,
		BlockNumber: new(big.Int).SetUint64(m.block),
		Status:      types.ReceiptStatusSuccessful,
	}, nil
}

func (m *mockChain) Address() common.Address {
	return common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
}

func (m *mockChain) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
}

func (m *mockChain) Dial(ctx context.Context, cfg *config.Chain) (service.Finisher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dials++
	return m, nil
}

func (m *mockChain) Calls() []finishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]finishCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *mockChain) Dials() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dials
}

func testCredentials() (*config.Chain, error) {
	return &config.Chain{
		PrivateKey:      "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		RPCURL:          "http://127.0.0.1:8545",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
	}, nil
}
