package mocks

import (
	context "context"
	time "time"

	mock "github.com/stretchr/testify/mock"
	viewlog "ulascansenturk/season-service/internal/db/viewlog"
	geolocation "ulascansenturk/season-service/internal/geolocation"
	service "ulascansenturk/season-service/internal/service"
)

// MockViewService is a mock type for the ViewService type
type MockViewService struct {
	mock.Mock
}

// CloseView provides a mock function with given fields: ctx, id
func (_m *MockViewService) CloseView(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// OpenView provides a mock function with given fields: ctx, req
func (_m *MockViewService) OpenView(ctx context.Context, req service.OpenRequest) (service.ViewSnapshot, error) {
	ret := _m.Called(ctx, req)

	var r0 service.ViewSnapshot
	if rf, ok := ret.Get(0).(func(context.Context, service.OpenRequest) service.ViewSnapshot); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.Get(0).(service.ViewSnapshot)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, service.OpenRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// RenderView provides a mock function with given fields: ctx, id
func (_m *MockViewService) RenderView(ctx context.Context, id string) (service.ViewSnapshot, error) {
	ret := _m.Called(ctx, id)

	var r0 service.ViewSnapshot
	if rf, ok := ret.Get(0).(func(context.Context, string) service.ViewSnapshot); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Get(0).(service.ViewSnapshot)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReportPosition provides a mock function with given fields: ctx, id, report
func (_m *MockViewService) ReportPosition(ctx context.Context, id string, report geolocation.Report) error {
	ret := _m.Called(ctx, id, report)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, geolocation.Report) error); ok {
		r0 = rf(ctx, id, report)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SeasonStats provides a mock function with given fields: ctx, since
func (_m *MockViewService) SeasonStats(ctx context.Context, since time.Time) ([]viewlog.SeasonCount, error) {
	ret := _m.Called(ctx, since)

	var r0 []viewlog.SeasonCount
	if rf, ok := ret.Get(0).(func(context.Context, time.Time) []viewlog.SeasonCount); ok {
		r0 = rf(ctx, since)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]viewlog.SeasonCount)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, time.Time) error); ok {
		r1 = rf(ctx, since)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Shutdown provides a mock function with given fields:
func (_m *MockViewService) Shutdown() {
	_m.Called()
}

// WaitView provides a mock function with given fields: ctx, id
func (_m *MockViewService) WaitView(ctx context.Context, id string) (service.ViewSnapshot, error) {
	ret := _m.Called(ctx, id)

	var r0 service.ViewSnapshot
	if rf, ok := ret.Get(0).(func(context.Context, string) service.ViewSnapshot); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Get(0).(service.ViewSnapshot)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockViewService creates a new instance of MockViewService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockViewService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockViewService {
	m := &MockViewService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
