package persistence

import (
	context "context"

	entity "github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	persistence "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	mock "github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock type for the TransactionRepository type
type MockTransactionRepository struct {
	mock.Mock
}

// Append provides a mock function with given fields: ctx, transaction
func (_m *MockTransactionRepository) Append(ctx context.Context, transaction *entity.Transaction) error {
	ret := _m.Called(ctx, transaction)

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Transaction) error); ok {
		return rf(ctx, transaction)
	}
	return ret.Error(0)
}

// Count provides a mock function with given fields: ctx
func (_m *MockTransactionRepository) Count(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

// FindByReference provides a mock function with given fields: ctx, accountNumber, reference
func (_m *MockTransactionRepository) FindByReference(ctx context.Context, accountNumber uint64, reference string) (*entity.Transaction, error) {
	ret := _m.Called(ctx, accountNumber, reference)

	var r0 *entity.Transaction
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Transaction)
	}
	return r0, ret.Error(1)
}

// LedgerTotals provides a mock function with given fields: ctx, accountNumber
func (_m *MockTransactionRepository) LedgerTotals(ctx context.Context, accountNumber uint64) (persistence.LedgerTotals, error) {
	ret := _m.Called(ctx, accountNumber)
	return ret.Get(0).(persistence.LedgerTotals), ret.Error(1)
}

// ListByAccount provides a mock function with given fields: ctx, accountNumber, limit
func (_m *MockTransactionRepository) ListByAccount(ctx context.Context, accountNumber uint64, limit int) ([]*entity.Transaction, error) {
	ret := _m.Called(ctx, accountNumber, limit)

	var r0 []*entity.Transaction
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*entity.Transaction)
	}
	return r0, ret.Error(1)
}

// NewMockTransactionRepository creates a new instance of MockTransactionRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTransactionRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
