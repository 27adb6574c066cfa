package crew_service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skyscope/entrepreneur/config"
)

func TestSaveResultWritesVerbatim(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	output := config.Default().Output
	output.Dir = dir

	result := Result{Research: "  research\nwith spacing  \n", Plan: "plan"}
	paths, err := SaveResult(result, output)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "research_report.txt"),
		filepath.Join(dir, "implementation_plan.txt"),
	}, paths)

	research, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, result.Research, string(research))

	plan, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "plan", string(plan))
}

func TestSaveResultOverwrites(t *testing.T) {
	output := config.Default().Output
	output.Dir = t.TempDir()

	_, err := SaveResult(Result{Research: "old research that is longer", Plan: "old"}, output)
	require.NoError(t, err)
	paths, err := SaveResult(Result{Research: "new", Plan: ""}, output)
	require.NoError(t, err)

	research, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "new", string(research))

	plan, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Empty(t, plan)
}
