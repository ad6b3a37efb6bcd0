// Package service contains the application-specific use cases that sit
// between the transport layer and the stores.
//
// BillingService is the single code path that mutates user balances; it
// pairs every balance change with a ledger entry inside one transaction.
// TaskService is the enqueueing side of the pipeline: cost estimation, task
// creation, and publishing to the translation queue.
package service
