package mocks

import (
	time "time"

	mock "github.com/stretchr/testify/mock"
	viewlog "ulascansenturk/season-service/internal/db/viewlog"
)

// MockRepository is a mock type for the Repository type
type MockRepository struct {
	mock.Mock
}

// CountBySeason provides a mock function with given fields: since
func (_m *MockRepository) CountBySeason(since time.Time) ([]viewlog.SeasonCount, error) {
	ret := _m.Called(since)

	var r0 []viewlog.SeasonCount
	if rf, ok := ret.Get(0).(func(time.Time) []viewlog.SeasonCount); ok {
		r0 = rf(since)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]viewlog.SeasonCount)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(time.Time) error); ok {
		r1 = rf(since)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetRecentResolution provides a mock function with given fields: viewID
func (_m *MockRepository) GetRecentResolution(viewID string) (*viewlog.ViewResolution, error) {
	ret := _m.Called(viewID)

	var r0 *viewlog.ViewResolution
	if rf, ok := ret.Get(0).(func(string) *viewlog.ViewResolution); ok {
		r0 = rf(viewID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*viewlog.ViewResolution)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string) error); ok {
		r1 = rf(viewID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// LogResolution provides a mock function with given fields: resolution
func (_m *MockRepository) LogResolution(resolution *viewlog.ViewResolution) error {
	ret := _m.Called(resolution)

	var r0 error
	if rf, ok := ret.Get(0).(func(*viewlog.ViewResolution) error); ok {
		r0 = rf(resolution)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockRepository creates a new instance of MockRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
