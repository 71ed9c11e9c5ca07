package persistence

import (
	context "context"
	time "time"

	entity "github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	persistence "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	mock "github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepository type
type MockAccountRepository struct {
	mock.Mock
}

// CountCreatedSince provides a mock function with given fields: ctx, since
func (_m *MockAccountRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	ret := _m.Called(ctx, since)

	if rf, ok := ret.Get(0).(func(context.Context, time.Time) (int64, error)); ok {
		return rf(ctx, since)
	}
	return ret.Get(0).(int64), ret.Error(1)
}

// Create provides a mock function with given fields: ctx, account
func (_m *MockAccountRepository) Create(ctx context.Context, account *entity.Account) error {
	ret := _m.Called(ctx, account)

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Account) error); ok {
		return rf(ctx, account)
	}
	return ret.Error(0)
}

// GetByNumber provides a mock function with given fields: ctx, number
func (_m *MockAccountRepository) GetByNumber(ctx context.Context, number uint64) (*entity.Account, error) {
	ret := _m.Called(ctx, number)

	if rf, ok := ret.Get(0).(func(context.Context, uint64) (*entity.Account, error)); ok {
		return rf(ctx, number)
	}
	var r0 *entity.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Account)
	}
	return r0, ret.Error(1)
}

// GetForUpdate provides a mock function with given fields: ctx, number
func (_m *MockAccountRepository) GetForUpdate(ctx context.Context, number uint64) (*entity.Account, error) {
	ret := _m.Called(ctx, number)

	if rf, ok := ret.Get(0).(func(context.Context, uint64) (*entity.Account, error)); ok {
		return rf(ctx, number)
	}
	var r0 *entity.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.Account)
	}
	return r0, ret.Error(1)
}

// List provides a mock function with given fields: ctx, filter
func (_m *MockAccountRepository) List(ctx context.Context, filter persistence.AccountFilter) ([]*entity.Account, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*entity.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*entity.Account)
	}
	return r0, ret.Error(1)
}

// Totals provides a mock function with given fields: ctx
func (_m *MockAccountRepository) Totals(ctx context.Context) (persistence.AccountTotals, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(persistence.AccountTotals), ret.Error(1)
}

// UpdateBalance provides a mock function with given fields: ctx, account
func (_m *MockAccountRepository) UpdateBalance(ctx context.Context, account *entity.Account) error {
	ret := _m.Called(ctx, account)

	if rf, ok := ret.Get(0).(func(context.Context, *entity.Account) error); ok {
		return rf(ctx, account)
	}
	return ret.Error(0)
}

// NewMockAccountRepository creates a new instance of MockAccountRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockAccountRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
