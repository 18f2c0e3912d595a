package fake

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Notifier is a fake notifier that can be used in unit tests.
type Notifier struct {
	mock.Mock
}

// Send implements notify.Interface.
func (n *Notifier) Send(_ context.Context, text string) error {
	args := n.Called(text)

	return args.Error(0)
}
