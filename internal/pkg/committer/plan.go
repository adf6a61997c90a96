// Package committer collects Spanner mutations and applies them atomically.
//
// Repositories never write directly. Inside a read-write transaction they
// append mutations to a CommitPlan; the plan is buffered into the same
// transaction just before commit, together with the outbox rows and count
// aggregate rows produced by the same operation:
//
//	err := c.ReadWrite(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
//	    plan := committer.NewPlan()
//	    plan.Add(productModel.InsertMut(data))
//	    plan.Add(outboxModel.InsertMut(event))
//	    return plan.Buffer(txn)
//	})
package committer

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
)

// CommitPlan is an ordered list of mutations.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan. Nil mutations are ignored.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddMultiple adds multiple mutations to the plan.
func (cp *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

// Mutations returns all collected mutations in insertion order.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return len(cp.mutations) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	return len(cp.mutations)
}

// Buffer hands the plan to txn. The mutations commit with txn.
func (cp *CommitPlan) Buffer(txn *spanner.ReadWriteTransaction) error {
	if cp.IsEmpty() {
		return nil
	}
	if err := txn.BufferWrite(cp.mutations); err != nil {
		return fmt.Errorf("failed to buffer commit plan: %w", err)
	}
	return nil
}

// Committer runs transactions against one database.
type Committer struct {
	client *spanner.Client
}

// NewCommitter creates a new Committer.
func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply commits the plan as a blind write, without reads.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}

	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}
	return nil
}

// ReadWrite runs fn in a read-write transaction. Spanner retries fn when the
// transaction aborts, so fn must rebuild its plan on every call. Errors
// returned by fn come back unwrapped so callers can match sentinels.
func (c *Committer) ReadWrite(ctx context.Context, fn func(context.Context, *spanner.ReadWriteTransaction) error) error {
	var fnErr error
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		fnErr = fn(ctx, txn)
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return fmt.Errorf("transaction failed: %w", err)
}
