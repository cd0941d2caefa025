package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
	geolocation "ulascansenturk/season-service/internal/geolocation"
)

// MockProvider is a mock type for the Provider type
type MockProvider struct {
	mock.Mock
}

// CurrentPosition provides a mock function with given fields: ctx, req
func (_m *MockProvider) CurrentPosition(ctx context.Context, req geolocation.Request) <-chan geolocation.Result {
	ret := _m.Called(ctx, req)

	var r0 <-chan geolocation.Result
	if rf, ok := ret.Get(0).(func(context.Context, geolocation.Request) <-chan geolocation.Result); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(<-chan geolocation.Result)
	}

	return r0
}

// Name provides a mock function with given fields:
func (_m *MockProvider) Name() string {
	ret := _m.Called()

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// NewMockProvider creates a new instance of MockProvider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProvider {
	m := &MockProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
