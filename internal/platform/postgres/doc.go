// Package postgres contains the PostgreSQL implementations of the store
// interfaces. Every store accepts a store.DBTX so the same implementation
// runs against the connection pool or inside a transaction via WithTx.
package postgres
