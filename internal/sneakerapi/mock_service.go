package sneakerapi

import (
	"context"
	"sync"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
)

// MockService is a test double for Service.
// Each method can be overridden with a custom function.
// If not overridden, methods return sensible defaults.
// Thread-safe for use in concurrent tests.
type MockService struct {
	PredictFunc         func(ctx context.Context, image []byte, filename string) (prediction.Result, error)
	CommitInventoryFunc func(ctx context.Context, req CommitRequest) (*CommitAck, error)
	ListInventoryFunc   func(ctx context.Context) ([]InventoryRecord, error)
	FetchImageFunc      func(ctx context.Context, id string) ([]byte, error)

	mu sync.Mutex

	// Calls tracks all method invocations for assertions
	Calls []MockCall
}

// MockCall records a method call for test assertions.
type MockCall struct {
	Method string
	Args   []any
}

var _ Service = (*MockService)(nil)

func (m *MockService) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// CallCount returns how many times method was called.
func (m *MockService) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockService) Predict(ctx context.Context, image []byte, filename string) (prediction.Result, error) {
	m.record("Predict", len(image), filename)
	m.mu.Lock()
	fn := m.PredictFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, image, filename)
	}
	return prediction.Parse([]byte(`{"status":"ok","decision":"continue","confidence_level":"high"}`)), nil
}

func (m *MockService) CommitInventory(ctx context.Context, req CommitRequest) (*CommitAck, error) {
	m.record("CommitInventory", req)
	m.mu.Lock()
	fn := m.CommitInventoryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &CommitAck{Status: "inserted", Quantity: req.Quantity}, nil
}

func (m *MockService) ListInventory(ctx context.Context) ([]InventoryRecord, error) {
	m.record("ListInventory")
	m.mu.Lock()
	fn := m.ListInventoryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return []InventoryRecord{}, nil
}

func (m *MockService) ImageURL(id string) string {
	return "http://mock.local/image/" + id
}

func (m *MockService) FetchImage(ctx context.Context, id string) ([]byte, error) {
	m.record("FetchImage", id)
	m.mu.Lock()
	fn := m.FetchImageFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	return []byte("mock-image"), nil
}
