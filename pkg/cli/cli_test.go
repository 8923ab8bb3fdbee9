package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpMustBeOnlyArgument(t *testing.T) {
	assert.Equal(t, 0, Run([]string{"--help"}))
	assert.Equal(t, 1, Run([]string{"--help", "-i", "/in/app.css"}))
	assert.Equal(t, 1, Run([]string{"-i", "/in/app.css", "--help"}))
}

func TestUnsupportedArgument(t *testing.T) {
	assert.Equal(t, 1, Run([]string{"--bogus"}))
}

func TestMissingValues(t *testing.T) {
	assert.Equal(t, 1, Run([]string{"-i"}))
	assert.Equal(t, 1, Run([]string{"-o"}))
	assert.Equal(t, 1, Run([]string{"--config-file"}))
}

func TestMissingInput(t *testing.T) {
	assert.Equal(t, 1, Run([]string{"--stdo"}))
}

func TestConfigFileMustBeAbsolute(t *testing.T) {
	assert.Equal(t, 1, Run([]string{"--config-file", "relative.conf"}))
}

func TestConfigInfo(t *testing.T) {
	assert.Equal(t, 0, Run([]string{"--config-info"}))
}
