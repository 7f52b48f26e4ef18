package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kewo/kewo-rechner/internal/calculator"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompute_JSON(t *testing.T) {
	out, err := execute(t, "compute",
		"--electricity-consumption", "3000",
		"--electricity-price", "0.30",
		"--electricity-base-fee", "10",
		"--heating-fuel", "oel",
		"--heating-consumption", "2000",
		"--format", "json",
	)
	require.NoError(t, err)

	var display map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &display))
	assert.Equal(t, "910.00", display["electricity.yearly"])
	assert.Equal(t, "75.83", display["electricity.monthly"])
	assert.Equal(t, "21000", display["heating.demand"])
	assert.Len(t, display, len(calculator.DisplayKeys()))
}

func TestCompute_TextTable(t *testing.T) {
	out, err := execute(t, "compute", "--pv-kwp", "10")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, len(calculator.DisplayKeys()))
	assert.True(t, strings.HasPrefix(lines[0], "electricity.yearly"))

	var pvLine string
	for _, line := range lines {
		if strings.HasPrefix(line, "pv.yearly_yield") {
			pvLine = line
		}
	}
	assert.Equal(t, []string{"pv.yearly_yield", "9500", "kWh"}, strings.Fields(pvLine))
}

func TestCompute_EveryFieldHasAFlag(t *testing.T) {
	cmd := newComputeCmd(new(string))
	for _, field := range calculator.Fields() {
		assert.NotNil(t, cmd.Flags().Lookup(flagName(field)), "field %s", field)
	}
}

func TestCompute_RejectsBadFuel(t *testing.T) {
	_, err := execute(t, "compute", "--heating-fuel", "holz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, calculator.ErrInvalidFuelType))
}

func TestCompute_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "compute", "--format", "xml")
	assert.Error(t, err)
}
