package core

import (
	core "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	mock "github.com/stretchr/testify/mock"
)

// MockLogger is a mock type for the Logger type
type MockLogger struct {
	mock.Mock
}

// Debug provides a mock function with given fields: message, fields
func (_m *MockLogger) Debug(message string, fields map[string]any) {
	_m.Called(message, fields)
}

// Error provides a mock function with given fields: message, fields
func (_m *MockLogger) Error(message string, fields map[string]any) {
	_m.Called(message, fields)
}

// Flush provides a mock function with given fields:
func (_m *MockLogger) Flush() error {
	ret := _m.Called()
	return ret.Error(0)
}

// GetLevel provides a mock function with given fields:
func (_m *MockLogger) GetLevel() core.LogLevel {
	ret := _m.Called()
	return ret.Get(0).(core.LogLevel)
}

// Info provides a mock function with given fields: message, fields
func (_m *MockLogger) Info(message string, fields map[string]any) {
	_m.Called(message, fields)
}

// SetLevel provides a mock function with given fields: level
func (_m *MockLogger) SetLevel(level core.LogLevel) {
	_m.Called(level)
}

// Warn provides a mock function with given fields: message, fields
func (_m *MockLogger) Warn(message string, fields map[string]any) {
	_m.Called(message, fields)
}

// With provides a mock function with given fields: fields
func (_m *MockLogger) With(fields map[string]any) core.Logger {
	ret := _m.Called(fields)

	var r0 core.Logger
	if rf, ok := ret.Get(0).(func(map[string]any) core.Logger); ok {
		r0 = rf(fields)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(core.Logger)
	}

	return r0
}

// NewMockLogger creates a new instance of MockLogger. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockLogger(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLogger {
	m := &MockLogger{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
