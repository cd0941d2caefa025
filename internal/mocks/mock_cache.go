package mocks

import (
	time "time"

	mock "github.com/stretchr/testify/mock"
	inmemorycache "ulascansenturk/season-service/internal/inmemorycache"
)

// MockCache is a mock type for the Cache type
type MockCache struct {
	mock.Mock
}

// Get provides a mock function with given fields: key
func (_m *MockCache) Get(key string) (*inmemorycache.PositionCacheData, bool, error) {
	ret := _m.Called(key)

	var r0 *inmemorycache.PositionCacheData
	if rf, ok := ret.Get(0).(func(string) *inmemorycache.PositionCacheData); ok {
		r0 = rf(key)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*inmemorycache.PositionCacheData)
	}

	var r1 bool
	if rf, ok := ret.Get(1).(func(string) bool); ok {
		r1 = rf(key)
	} else {
		r1 = ret.Get(1).(bool)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(string) error); ok {
		r2 = rf(key)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// Set provides a mock function with given fields: key, data, ttl
func (_m *MockCache) Set(key string, data *inmemorycache.PositionCacheData, ttl time.Duration) error {
	ret := _m.Called(key, data, ttl)

	var r0 error
	if rf, ok := ret.Get(0).(func(string, *inmemorycache.PositionCacheData, time.Duration) error); ok {
		r0 = rf(key, data, ttl)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockCache creates a new instance of MockCache. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCache {
	m := &MockCache{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
