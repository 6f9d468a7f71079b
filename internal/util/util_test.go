package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_MakeTextList(t *testing.T) {
	testCases := []struct {
		name     string
		items    []string
		expected string
	}{
		{name: "empty", items: nil, expected: ""},
		{name: "one item", items: []string{"NUMBER"}, expected: "NUMBER"},
		{name: "two items", items: []string{"NUMBER", "PLUS"}, expected: "NUMBER and PLUS"},
		{name: "three items, oxford comma", items: []string{"NUMBER", "PLUS", "MINUS"}, expected: "NUMBER, PLUS, and MINUS"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MakeTextList(tc.items))
		})
	}
}
