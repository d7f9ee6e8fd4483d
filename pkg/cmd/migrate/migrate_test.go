package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareURLForDB(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "postgresql://u:p@db/rlr", "postgresql://u:p@db/rlr?sslmode=disable"},
		{
			"with params", "postgresql://u:p@db/rlr?connect_timeout=5",
			"postgresql://u:p@db/rlr?connect_timeout=5&sslmode=disable",
		},
		{"already set", "postgresql://db/rlr?sslmode=disable", "postgresql://db/rlr?sslmode=disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, prepareURLForDB(tt.url))
		})
	}
}
