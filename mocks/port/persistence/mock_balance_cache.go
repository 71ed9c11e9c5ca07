package persistence

import (
	context "context"

	entity "github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	mock "github.com/stretchr/testify/mock"
)

// MockBalanceCache is a mock type for the BalanceCache type
type MockBalanceCache struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, accountNumber
func (_m *MockBalanceCache) Get(ctx context.Context, accountNumber uint64) (*entity.Account, bool, error) {
	ret := _m.Called(ctx, accountNumber)

	var r0 *entity.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Account)
	}
	return r0, ret.Bool(1), ret.Error(2)
}

// Generation provides a mock function with given fields: ctx, accountNumber
func (_m *MockBalanceCache) Generation(ctx context.Context, accountNumber uint64) (uint64, error) {
	ret := _m.Called(ctx, accountNumber)

	var r0 uint64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(uint64)
	}
	return r0, ret.Error(1)
}

// Invalidate provides a mock function with given fields: ctx, accountNumber
func (_m *MockBalanceCache) Invalidate(ctx context.Context, accountNumber uint64) error {
	ret := _m.Called(ctx, accountNumber)
	return ret.Error(0)
}

// Set provides a mock function with given fields: ctx, account, generation
func (_m *MockBalanceCache) Set(ctx context.Context, account *entity.Account, generation uint64) (bool, error) {
	ret := _m.Called(ctx, account, generation)
	return ret.Bool(0), ret.Error(1)
}

// NewMockBalanceCache creates a new instance of MockBalanceCache. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockBalanceCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBalanceCache {
	m := &MockBalanceCache{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
