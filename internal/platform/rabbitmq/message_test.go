package rabbitmq

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTaskMessage(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	msg, err := DecodeTaskMessage([]byte(`{"task_id":"` + id.String() + `","retry_count":2,"resend_count":1}`))
	require.NoError(t, err)

	assert.Equal(t, id, msg.TaskID)
	assert.Equal(t, 2, msg.RetryCount)
	assert.Equal(t, 1, msg.ResendCount)
}

func TestDecodeTaskMessageCountersDefaultToZero(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	msg, err := DecodeTaskMessage([]byte(`{"task_id":"` + id.String() + `"}`))
	require.NoError(t, err)

	assert.Zero(t, msg.RetryCount)
	assert.Zero(t, msg.ResendCount)
}

func TestDecodeTaskMessageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"empty object", "{}"},
		{"nil task id", `{"task_id":"00000000-0000-0000-0000-000000000000"}`},
		{"bad uuid", `{"task_id":"abc"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeTaskMessage([]byte(tc.body))
			assert.Error(t, err)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	original := TaskMessage{TaskID: uuid.New(), RetryCount: 1, ResendCount: 3}
	body, err := EncodeTaskMessage(original)
	require.NoError(t, err)

	decoded, err := DecodeTaskMessage(body)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}
