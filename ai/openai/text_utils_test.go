package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"skill\":\"go\"}\n```", `{"skill":"go"}`},
		{"```\n{}\n```", "{}"},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.in))
	}
}

func TestQuoteBareKeys(t *testing.T) {
	assert.Equal(t, `{"skill":"go", "education":""}`, quoteBareKeys(`{"skill":"go", education":""}`))
	assert.Equal(t, `{"skill":"go","experience":"5"}`, quoteBareKeys(`{skill":"go",experience":"5"}`))
	assert.Equal(t, `{"skill":"go"}`, quoteBareKeys(`{"skill":"go"}`))
}

func TestToken(t *testing.T) {
	assert.Equal(t, "none", token(""))
	assert.Equal(t, "sk-test", token("sk-test"))
}
