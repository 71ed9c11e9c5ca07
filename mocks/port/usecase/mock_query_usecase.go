package usecase

import (
	context "context"

	entity "github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	persistence "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	mock "github.com/stretchr/testify/mock"
)

// MockQueryUseCase is a mock type for the QueryUseCase type
type MockQueryUseCase struct {
	mock.Mock
}

// GetBalance provides a mock function with given fields: ctx, accountNumber
func (_m *MockQueryUseCase) GetBalance(ctx context.Context, accountNumber uint64) (*entity.Account, error) {
	ret := _m.Called(ctx, accountNumber)

	var r0 *entity.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Account)
	}
	return r0, ret.Error(1)
}

// ListAccounts provides a mock function with given fields: ctx, filter
func (_m *MockQueryUseCase) ListAccounts(ctx context.Context, filter persistence.AccountFilter) ([]*entity.Account, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*entity.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*entity.Account)
	}
	return r0, ret.Error(1)
}

// ListTransactions provides a mock function with given fields: ctx, accountNumber, limit
func (_m *MockQueryUseCase) ListTransactions(ctx context.Context, accountNumber uint64, limit int) ([]*entity.Transaction, error) {
	ret := _m.Called(ctx, accountNumber, limit)

	var r0 []*entity.Transaction
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*entity.Transaction)
	}
	return r0, ret.Error(1)
}

// Reconcile provides a mock function with given fields: ctx, accountNumber
func (_m *MockQueryUseCase) Reconcile(ctx context.Context, accountNumber uint64) (*entity.Reconciliation, error) {
	ret := _m.Called(ctx, accountNumber)

	var r0 *entity.Reconciliation
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Reconciliation)
	}
	return r0, ret.Error(1)
}

// Summary provides a mock function with given fields: ctx
func (_m *MockQueryUseCase) Summary(ctx context.Context) (*entity.Summary, error) {
	ret := _m.Called(ctx)

	var r0 *entity.Summary
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Summary)
	}
	return r0, ret.Error(1)
}

// NewMockQueryUseCase creates a new instance of MockQueryUseCase. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockQueryUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockQueryUseCase {
	m := &MockQueryUseCase{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
