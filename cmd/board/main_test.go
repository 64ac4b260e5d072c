package main

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardDate(t *testing.T) {
	d, err := boardDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = boardDate("06/01/2024")
	assert.Error(t, err)
}

func TestVersionSkipsConfig(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--config", "/nonexistent/config.yaml"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "board dev")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", id(0))
	assert.Equal(t, "660271", id(660271))
	assert.Equal(t, "-", rate(math.NaN()))
	assert.Equal(t, "0.312", rate(0.3124))
	assert.Equal(t, "-", dash(""))
	assert.Equal(t, "R", dash("R"))
}
