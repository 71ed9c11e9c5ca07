package usecase

import (
	context "context"

	entity "github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	usecase "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	mock "github.com/stretchr/testify/mock"
)

// MockLedgerUseCase is a mock type for the LedgerUseCase type
type MockLedgerUseCase struct {
	mock.Mock
}

// CreateAccount provides a mock function with given fields: ctx, req
func (_m *MockLedgerUseCase) CreateAccount(ctx context.Context, req usecase.CreateAccountRequest) (*entity.Account, error) {
	ret := _m.Called(ctx, req)

	var r0 *entity.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Account)
	}
	return r0, ret.Error(1)
}

// Deposit provides a mock function with given fields: ctx, req
func (_m *MockLedgerUseCase) Deposit(ctx context.Context, req usecase.MutationRequest) (*usecase.MutationResult, error) {
	ret := _m.Called(ctx, req)

	var r0 *usecase.MutationResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*usecase.MutationResult)
	}
	return r0, ret.Error(1)
}

// Withdraw provides a mock function with given fields: ctx, req
func (_m *MockLedgerUseCase) Withdraw(ctx context.Context, req usecase.MutationRequest) (*usecase.MutationResult, error) {
	ret := _m.Called(ctx, req)

	var r0 *usecase.MutationResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*usecase.MutationResult)
	}
	return r0, ret.Error(1)
}

// NewMockLedgerUseCase creates a new instance of MockLedgerUseCase. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockLedgerUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLedgerUseCase {
	m := &MockLedgerUseCase{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
