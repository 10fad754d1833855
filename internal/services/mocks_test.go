package services

import (
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock for the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Broadcast(messageType string, data interface{}) {
	m.Called(messageType, data)
}

// MockClientCounter is a mock for the ClientCounter interface
type MockClientCounter struct {
	mock.Mock
}

func (m *MockClientCounter) ClientCount() int {
	return m.Called().Int(0)
}
