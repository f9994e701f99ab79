// Package mocks provides "mock" implementations of the run registry
// for testing.
package mocks

import (
	"context"
	"errors"

	kdb "github.com/plumelab/plume/pkg/db"
)

type RunCall struct {
	Spec kdb.RunSpec
}

type MockRunInterface struct {
	Impl struct {
		Register func(context.Context, kdb.RunSpec) (string, error)
		Finish   func(context.Context, string, kdb.RunStatus) error
		Find     func(context.Context, kdb.RunFindQuery) ([]kdb.Run, error)
		Get      func(context.Context, []string) (map[string]kdb.Run, error)
	}
	Calls struct {
		Register []RunCall
	}
}

func NewRunInterface() *MockRunInterface {
	return &MockRunInterface{}
}

var _ kdb.RunInterface = &MockRunInterface{}

func (m *MockRunInterface) Register(ctx context.Context, spec kdb.RunSpec) (string, error) {
	m.Calls.Register = append(m.Calls.Register, RunCall{Spec: spec})
	if m.Impl.Register == nil {
		return "", errors.New("[MOCK] not implemented: Register")
	}
	return m.Impl.Register(ctx, spec)
}

func (m *MockRunInterface) Finish(ctx context.Context, runId string, status kdb.RunStatus) error {
	if m.Impl.Finish == nil {
		return errors.New("[MOCK] not implemented: Finish")
	}
	return m.Impl.Finish(ctx, runId, status)
}

func (m *MockRunInterface) Find(ctx context.Context, q kdb.RunFindQuery) ([]kdb.Run, error) {
	if m.Impl.Find == nil {
		return nil, errors.New("[MOCK] not implemented: Find")
	}
	return m.Impl.Find(ctx, q)
}

func (m *MockRunInterface) Get(ctx context.Context, runIds []string) (map[string]kdb.Run, error) {
	if m.Impl.Get == nil {
		return nil, errors.New("[MOCK] not implemented: Get")
	}
	return m.Impl.Get(ctx, runIds)
}

type AppendCall struct {
	RunId  string
	Name   string
	Points []kdb.Point
}

type MockCurveInterface struct {
	Impl struct {
		Append func(context.Context, string, string, []kdb.Point) error
		Get    func(context.Context, string, string, int) (kdb.Curve, error)
		Names  func(context.Context, string) ([]string, error)
	}
	Calls struct {
		Append []AppendCall
	}
}

func NewCurveInterface() *MockCurveInterface {
	return &MockCurveInterface{}
}

var _ kdb.CurveInterface = &MockCurveInterface{}

func (m *MockCurveInterface) Append(ctx context.Context, runId string, name string, points []kdb.Point) error {
	m.Calls.Append = append(m.Calls.Append, AppendCall{RunId: runId, Name: name, Points: points})
	if m.Impl.Append == nil {
		return errors.New("[MOCK] not implemented: Append")
	}
	return m.Impl.Append(ctx, runId, name, points)
}

func (m *MockCurveInterface) Get(ctx context.Context, runId string, name string, since int) (kdb.Curve, error) {
	if m.Impl.Get == nil {
		return kdb.Curve{}, errors.New("[MOCK] not implemented: Get")
	}
	return m.Impl.Get(ctx, runId, name, since)
}

func (m *MockCurveInterface) Names(ctx context.Context, runId string) ([]string, error) {
	if m.Impl.Names == nil {
		return nil, errors.New("[MOCK] not implemented: Names")
	}
	return m.Impl.Names(ctx, runId)
}

type MockDatabase struct {
	Run   *MockRunInterface
	Curve *MockCurveInterface

	Impl struct {
		Close func() error
	}
}

func NewDatabase() *MockDatabase {
	return &MockDatabase{
		Run:   NewRunInterface(),
		Curve: NewCurveInterface(),
	}
}

var _ kdb.Database = &MockDatabase{}

func (m *MockDatabase) Runs() kdb.RunInterface { return m.Run }

func (m *MockDatabase) Curves() kdb.CurveInterface { return m.Curve }

func (m *MockDatabase) Close() error {
	if m.Impl.Close == nil {
		return nil
	}
	return m.Impl.Close()
}
