package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigSchema(t *testing.T) {
	fields, err := getConfigSchema()
	require.NoError(t, err)

	byName := make(map[string]ConfigField)
	for _, f := range fields {
		byName[f.Name] = f
	}
	assert.Len(t, byName, len(configDescriptions), "every key is documented exactly once")
	assert.Equal(t, ".", byName["output_dir"].Default)
	assert.Equal(t, "30s", byName["meta.timeout"].Default)
	assert.Equal(t, "time.Duration", byName["meta.timeout"].Type)
	assert.Empty(t, byName["root_dir"].Default)
}

func TestMarkdownWriter(t *testing.T) {
	w := NewMarkdownWriter()
	w.Header(2, "Options")
	w.Table([]string{"Option", "Description"}, [][]string{{InlineCode("--watch"), cleanDescription("Re-run\n  on changes")}})
	w.Table([]string{"Empty"}, nil)
	w.CodeBlock("bash", "lkml2cube cubes x.lkml\n")

	out := string(w.Bytes())
	assert.Contains(t, out, "## Options\n\n")
	assert.Contains(t, out, "| `--watch` | Re-run on changes |")
	assert.NotContains(t, out, "Empty")
	assert.Contains(t, out, "```bash\nlkml2cube cubes x.lkml\n```")
}

func TestFlagRows(t *testing.T) {
	fs := pflag.NewFlagSet("cubes", pflag.ContinueOnError)
	fs.String("outputdir", ".", "Output directory")
	fs.Bool("printonly", false, "Print to stdout")
	fs.IntP("retries", "r", 3, "Retry count")

	rows := flagRows(fs)
	require.Len(t, rows, 3)

	byOption := make(map[string][]string)
	for _, r := range rows {
		byOption[r[0]] = r
	}
	assert.Equal(t, []string{"`--outputdir`", "`.`", "`output_dir`", "`LKML2CUBE_OUTPUT_DIR`", "Output directory"}, byOption["`--outputdir`"])
	assert.Equal(t, []string{"`--printonly`", "false", "-", "-", "Print to stdout"}, byOption["`--printonly`"])
	assert.Equal(t, "`meta.retries`", byOption["`-r`, `--retries`"][2])
}

func TestDedent(t *testing.T) {
	in := `
  lkml2cube cubes views/*.lkml
    --printonly
`
	assert.Equal(t, "lkml2cube cubes views/*.lkml\n  --printonly", dedent(in))
}

func TestGenerateDocs(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, generateCLIDocs(filepath.Join(dir, "cli")))
	require.NoError(t, generateConfigDocs(dir))
	require.NoError(t, generateTypeDocs(dir))

	for _, name := range []string{"cli/index.md", "cli/cubes.md", "cli/explores.md", "configuration.md", "types.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	index, err := os.ReadFile(filepath.Join(dir, "cli", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "| `LKML2CUBE_META_TOKEN` | `meta.token` |")
	assert.Contains(t, string(index), "| `2` |")

	cubes, err := os.ReadFile(filepath.Join(dir, "cli", "cubes.md"))
	require.NoError(t, err)
	assert.Contains(t, string(cubes), "| `--fail-on` |  | `fail_on` | `LKML2CUBE_FAIL_ON` |")
	assert.Contains(t, string(cubes), "| `--outputdir` |")

	types, err := os.ReadFile(filepath.Join(dir, "types.md"))
	require.NoError(t, err)
	assert.Contains(t, string(types), "| `yesno` | `boolean` | Yes |")
	assert.Contains(t, string(types), "| `zipcode` | `string` | No |")
}
