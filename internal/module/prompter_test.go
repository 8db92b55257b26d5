package module

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsolePrompter_Approve(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "Lowercase y", input: "y\n", want: true},
		{name: "Yes with whitespace", input: "  YES  \n", want: true},
		{name: "Explicit no", input: "n\n", want: false},
		{name: "Empty line defaults to no", input: "\n", want: false},
		{name: "EOF counts as decline", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewConsolePrompter(strings.NewReader(tt.input))
			assert.Equal(t, tt.want, p.Approve("Continue?"))
		})
	}
}
