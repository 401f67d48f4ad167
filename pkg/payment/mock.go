package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const ProviderMock = "mock"

// MockGateway approves every deposit and remembers the charges it saw.
// It backs local development and tests where no Stripe key is configured.
type MockGateway struct {
	mu      sync.Mutex
	fail    bool
	charges []MockCharge
}

type MockCharge struct {
	BookingID   string
	AmountCents int64
	Currency    string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// FailNext makes subsequent charges fail until called with false again.
func (m *MockGateway) FailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *MockGateway) Charges() []MockCharge {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCharge, len(m.charges))
	copy(out, m.charges)
	return out
}

func (m *MockGateway) Name() string {
	return ProviderMock
}

func (m *MockGateway) CreateDeposit(ctx context.Context, bookingID string, amountCents int64, currency string, metadata map[string]string) DepositResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return DepositResult{
			OK:       false,
			Provider: ProviderMock,
			Error:    "mock gateway configured to fail",
		}
	}

	m.charges = append(m.charges, MockCharge{
		BookingID:   bookingID,
		AmountCents: amountCents,
		Currency:    currency,
	})

	return DepositResult{
		OK:            true,
		Provider:      ProviderMock,
		TransactionID: "mock_" + uuid.NewString(),
	}
}
