package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magungh1/exporo-sme-export-assistant/internal/assessments"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LLM_PROVIDER", "placeholder")
	t.Setenv("OBJECT_STORE_LOCAL_DIR", t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"chat", "prompt", "normalize"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestNormalizeCommand(t *testing.T) {
	raw := `Hasil: {"category_scores": {"regulatory_compliance": 50, "market_viability": 60, "documentation_readiness": 70, "competitive_positioning": 80}}`
	out, err := execute(t, raw, "normalize", "-")
	require.NoError(t, err)

	var rec assessments.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, assessments.VariantStructured, rec.Variant)
	overall, ok := rec.Overall()
	require.True(t, ok)
	assert.Equal(t, 65, overall)
}

func TestPromptCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"companyName": "CV Batik Lestari",
		"product": {"name": "Batik tulis"},
		"category": "Textiles & Apparel"
	}`), 0o600))

	out, err := execute(t, "", "prompt", "--profile", path, "--country", "Jepang")
	require.NoError(t, err)
	assert.Contains(t, out, "export readiness to Japan")
	assert.Contains(t, out, "CV Batik Lestari")
}

func TestPromptCommandIncompleteProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"companyName": "CV Batik Lestari"}`), 0o600))

	_, err := execute(t, "", "prompt", "--profile", path, "--country", "Japan")
	assert.ErrorContains(t, err, "profile incomplete")
}

func TestChatCommand(t *testing.T) {
	out, err := execute(t, "halo\nexit\n", "chat", "--user", "tester")
	require.NoError(t, err)
	assert.Contains(t, out, "Exporo")
}
