package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsPanicOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresTaskStore(nil) })
	assert.Panics(t, func() { NewPostgresArticleStore(nil) })
	assert.Panics(t, func() { NewPostgresLookupStore(nil) })
	assert.Panics(t, func() { NewPostgresUserStore(nil) })
	assert.Panics(t, func() { NewPostgresLedgerStore(nil) })
	assert.Panics(t, func() { NewPostgresNotificationStore(nil) })
}
