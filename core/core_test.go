package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, ConfidenceMedium, ConfidenceFor(0))
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(1))
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(5))
	assert.Equal(t, ConfidenceMedium, ConfidenceFor(-1))
}

func TestRecordField(t *testing.T) {
	r := Record{"issue": "Excel crashes", "solution": "Disable add-ins"}
	assert.Equal(t, "Excel crashes", r.Field("issue"))
	assert.Equal(t, "", r.Field("component"))
}
