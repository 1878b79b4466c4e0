// Package main provides tests for the lkml2cube CLI.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lkml2cube/internal/cli"
	"github.com/leapstack-labs/lkml2cube/internal/cli/commands"
	"github.com/leapstack-labs/lkml2cube/internal/cli/config"
	"github.com/leapstack-labs/lkml2cube/internal/cli/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lkml2cube v")
}

func TestHelpCommand(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"cubes", "views", "explores", "completion", "version"} {
		assert.Contains(t, out, expected)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "lkml2cube")
}

func TestCubesCommand_WritesFiles(t *testing.T) {
	project := testutil.SetupTestProject(t)
	outDir := t.TempDir()

	out, _, err := execute(t, "cubes", filepath.Join(project, "explores", "*.lkml"),
		"--rootdir", project, "--outputdir", outDir, "-o", "text")
	require.NoError(t, err)

	for _, name := range []string{"orders", "customers"} {
		content, err := os.ReadFile(filepath.Join(outDir, "cubes", name+".yml"))
		require.NoError(t, err, "cube %s should be written", name)
		assert.Contains(t, string(content), "name: "+name)
	}

	customers, err := os.ReadFile(filepath.Join(outDir, "cubes", "customers.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(customers), "joins:")

	assert.Contains(t, out, "2 files written to")
	testutil.AssertNoANSI(t, out)
}

func TestCubesCommand_ParseOnly(t *testing.T) {
	project := testutil.SetupTestProject(t)

	out, _, err := execute(t, "cubes", filepath.Join(project, "views", "orders.view.lkml"), "--parseonly")
	require.NoError(t, err)

	var model map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &model))
	assert.Contains(t, out, `"orders"`)
}

func TestCubesCommand_NoFiles(t *testing.T) {
	_, _, err := execute(t, "cubes", filepath.Join(t.TempDir(), "*.lkml"), "--printonly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files were found")
}

func TestCubesCommand_FailOn(t *testing.T) {
	dir := t.TempDir()
	src := `view: stores {
  sql_table_name: stores ;;
  dimension: id { type: number sql: ${TABLE}.id ;; }
  dimension: point { type: location sql: ${TABLE}.point ;; }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stores.view.lkml"), []byte(src), 0o644))
	pattern := filepath.Join(dir, "*.lkml")

	out, _, err := execute(t, "cubes", pattern, "--printonly")
	require.NoError(t, err)
	assert.Contains(t, out, "name: stores")

	out, _, err = execute(t, "cubes", pattern, "--printonly", "--fail-on", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrFailOn)
	assert.Contains(t, out, "name: stores", "output is still produced")

	t.Setenv("LKML2CUBE_FAIL_ON", "warning")
	_, _, err = execute(t, "cubes", pattern, "--outputdir", t.TempDir())
	assert.ErrorIs(t, err, commands.ErrFailOn)
	assert.Equal(t, 2, exitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(os.ErrNotExist))
	assert.Equal(t, 2, exitCode(fmt.Errorf("cubes: %w", commands.ErrFailOn)))
}

func TestViewsCommand_PrintOnly(t *testing.T) {
	project := testutil.SetupTestProject(t)

	out, _, err := execute(t, "views", filepath.Join(project, "explores", "orders.explore.lkml"),
		"--rootdir", project, "--printonly")
	require.NoError(t, err)

	assert.Contains(t, out, "cubes:")
	assert.Contains(t, out, "views:")
	assert.Contains(t, out, "name: order_analysis")
	assert.Contains(t, out, "join_path: orders.customers")
}

func TestViewsCommand_UseExploresName(t *testing.T) {
	project := testutil.SetupTestProject(t)

	out, _, err := execute(t, "views", filepath.Join(project, "explores", "orders.explore.lkml"),
		"--rootdir", project, "--printonly", "--use-explores-name")
	require.NoError(t, err)

	assert.NotContains(t, out, "order_analysis")
	assert.Contains(t, out, "join_path: orders.customers")
}

func TestViewsCommand_JSONReport(t *testing.T) {
	project := testutil.SetupTestProject(t)
	outDir := t.TempDir()

	out, _, err := execute(t, "views", filepath.Join(project, "explores", "orders.explore.lkml"),
		"--rootdir", project, "--outputdir", outDir, "-o", "json")
	require.NoError(t, err)

	var report struct {
		RunID string `json:"run_id"`
		Files []struct {
			Kind string `json:"kind"`
			Name string `json:"name"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, report.Files, 3)
	assert.FileExists(t, filepath.Join(outDir, "views", "order_analysis.yml"))
}

func TestInvalidOutputFormat(t *testing.T) {
	project := testutil.SetupTestProject(t)

	_, _, err := execute(t, "cubes", filepath.Join(project, "views", "*.lkml"), "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

const metaBody = `{"cubes":[
  {"name":"orders","title":"Orders","sql_table":"public.orders",
   "dimensions":[{"name":"orders.id","type":"number","sql":"{CUBE}.id","public":true}],
   "measures":[{"name":"orders.count","type":"number","aggType":"count","public":true}]},
  {"name":"order_summary",
   "dimensions":[{"name":"order_summary.order_id","aliasMember":"orders.id","type":"number","public":true}]}
]}`

func newMetaServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" || !r.URL.Query().Has("extended") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(metaBody))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExploresCommand_WritesLookML(t *testing.T) {
	srv := newMetaServer(t)
	outDir := t.TempDir()

	_, _, err := execute(t, "explores", srv.URL+"/cubejs-api/v1/meta",
		"--token", "secret", "--outputdir", outDir, "-o", "text")
	require.NoError(t, err)

	view, err := os.ReadFile(filepath.Join(outDir, "views", "orders.view.lkml"))
	require.NoError(t, err)
	assert.Contains(t, string(view), "view: orders {")
	assert.Contains(t, string(view), "${TABLE}.id")

	explore, err := os.ReadFile(filepath.Join(outDir, "explores", "order_summary.explore.lkml"))
	require.NoError(t, err)
	assert.Contains(t, string(explore), "explore: order_summary {")
	assert.Contains(t, string(explore), "include:")
}

func TestExploresCommand_TokenFromEnv(t *testing.T) {
	srv := newMetaServer(t)
	t.Setenv("LKML2CUBE_META_TOKEN", "secret")
	t.Setenv("LKML2CUBE_META_URL", srv.URL+"/cubejs-api/v1/meta")

	out, _, err := execute(t, "explores", "--printonly")
	require.NoError(t, err)
	assert.Contains(t, out, "view: orders {")
	assert.Contains(t, out, "explore: order_summary {")
}

func TestExploresCommand_Errors(t *testing.T) {
	srv := newMetaServer(t)

	t.Run("missing url", func(t *testing.T) {
		_, _, err := execute(t, "explores", "--token", "secret")
		require.Error(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		_, _, err := execute(t, "explores", srv.URL)
		require.Error(t, err)
	})

	t.Run("unauthorized", func(t *testing.T) {
		_, _, err := execute(t, "explores", srv.URL, "--token", "wrong", "--retries", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})
}
