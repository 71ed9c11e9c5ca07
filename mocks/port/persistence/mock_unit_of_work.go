package persistence

import (
	context "context"

	persistence "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	mock "github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock type for the UnitOfWork type
type MockUnitOfWork struct {
	mock.Mock
}

// Accounts provides a mock function with given fields: ctx
func (_m *MockUnitOfWork) Accounts(ctx context.Context) persistence.AccountRepository {
	ret := _m.Called(ctx)

	var r0 persistence.AccountRepository
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(persistence.AccountRepository)
	}
	return r0
}

// Begin provides a mock function with given fields: ctx
func (_m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	ret := _m.Called(ctx)

	var r0 context.Context
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(context.Context)
	}
	return r0, ret.Error(1)
}

// Commit provides a mock function with given fields: ctx
func (_m *MockUnitOfWork) Commit(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// Execute provides a mock function with given fields: ctx, fn
func (_m *MockUnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	ret := _m.Called(ctx, fn)

	if rf, ok := ret.Get(0).(func(context.Context, func(context.Context) error) error); ok {
		return rf(ctx, fn)
	}
	return ret.Error(0)
}

// ExecuteReadOnly provides a mock function with given fields: ctx, fn
func (_m *MockUnitOfWork) ExecuteReadOnly(ctx context.Context, fn func(context.Context) error) error {
	ret := _m.Called(ctx, fn)

	if rf, ok := ret.Get(0).(func(context.Context, func(context.Context) error) error); ok {
		return rf(ctx, fn)
	}
	return ret.Error(0)
}

// Rollback provides a mock function with given fields: ctx
func (_m *MockUnitOfWork) Rollback(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

// Transactions provides a mock function with given fields: ctx
func (_m *MockUnitOfWork) Transactions(ctx context.Context) persistence.TransactionRepository {
	ret := _m.Called(ctx)

	var r0 persistence.TransactionRepository
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(persistence.TransactionRepository)
	}
	return r0
}

// NewMockUnitOfWork creates a new instance of MockUnitOfWork. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockUnitOfWork(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUnitOfWork {
	m := &MockUnitOfWork{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
