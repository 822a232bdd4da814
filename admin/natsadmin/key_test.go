package natsadmin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Haser0305/astraea/types"
)

func TestKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tp   types.TopicPartition
		key  string
	}{
		{"plain topic", types.TopicPartition{Topic: "orders", Partition: 3}, "orders.3"},
		{"dotted topic", types.TopicPartition{Topic: "billing.events", Partition: 0}, "billing.events.0"},
		{"high partition", types.TopicPartition{Topic: "t", Partition: 1024}, "t.1024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.key, keyOf(tt.tp))

			parsed, err := parseKey(tt.key)
			require.NoError(t, err)
			require.Equal(t, tt.tp, parsed)
		})
	}
}

func TestParseKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "orders", ".3", "orders.", "orders.x"} {
		t.Run(key, func(t *testing.T) {
			_, err := parseKey(key)
			require.Error(t, err)
		})
	}
}
