package fsmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFile_Validate(t *testing.T) {
	assert.Error(t, (&File{}).Validate())
	assert.Error(t, (*File)(nil).Validate())
	assert.NoError(t, (&File{Path: "a.txt"}).Validate())
}
