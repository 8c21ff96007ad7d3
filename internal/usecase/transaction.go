package usecase

import (
	"context"
	"fmt"
)

// TxRunner runs fn inside one storage transaction. The context handed to fn
// carries the transaction; repositories called with it join it. fn returning
// an error rolls everything back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Transaction is an ordered list of named operations committed as one unit.
type Transaction struct {
	runner     TxRunner
	operations []Operation
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction(runner TxRunner) *Transaction {
	return &Transaction{
		runner:     runner,
		operations: []Operation{},
	}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

// Execute stops at the first failing operation; nothing is committed in that case.
func (t *Transaction) Execute(ctx context.Context) error {
	return t.runner.WithinTx(ctx, func(ctx context.Context) error {
		for i, op := range t.operations {
			if err := op.Fn(ctx); err != nil {
				return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", op.Name, err, i)
			}
		}
		return nil
	})
}
