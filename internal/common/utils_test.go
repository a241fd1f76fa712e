package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Norway", "Sweden"}, SplitList("Norway, Sweden"))
	assert.Equal(t, []string{"South Korea"}, SplitList(" ,South Korea,, "))
	assert.Nil(t, SplitList(""))
}
