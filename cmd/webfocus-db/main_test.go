package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// runCLI executes the root command against testdata/cdk.json and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CDK_DEFAULT_REGION", "us-east-1")
	t.Setenv("CDK_DEFAULT_ACCOUNT", "123456789012")

	full := append([]string{
		"--context-file", filepath.Join("testdata", "cdk.json"),
		"--cache-file", filepath.Join(t.TempDir(), "cdk.context.json"),
	}, args...)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(full)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestSynth_JSON(t *testing.T) {
	out, err := runCLI(t, "synth")
	require.NoError(t, err)
	require.True(t, gjson.Valid(out), "synth output is not JSON:\n%s", out)

	assert.Equal(t, "2010-09-09", gjson.Get(out, "AWSTemplateFormatVersion").String())
	assert.Len(t, gjson.Get(out, "Resources").Map(), 8)

	db := gjson.Get(out, "Resources.PGdatabasea")
	assert.Equal(t, "AWS::RDS::DBInstance", db.Get("Type").String())
	assert.Equal(t, "Snapshot", db.Get("DeletionPolicy").String())
	assert.Equal(t, "Snapshot", db.Get("UpdateReplacePolicy").String())
	assert.Equal(t, "webfocusuata", db.Get("Properties.DBInstanceIdentifier").String())
	assert.False(t, db.Get("Properties.PubliclyAccessible").Bool())
	assert.True(t, db.Get("Properties.PubliclyAccessible").Exists())
	assert.True(t, db.Get("Properties.StorageEncrypted").Bool())
	assert.True(t, db.Get("Properties.MultiAZ").Bool())

	assert.Equal(t, "Delete", gjson.Get(out, "Resources.SubnetGroup.DeletionPolicy").String(),
		"subnet group is only retained with a retained instance")
	assert.Equal(t, "Retain", gjson.Get(out, "Resources.EncryptionKey.DeletionPolicy").String())

	params := gjson.Get(out, "Resources.ParameterGroup.Properties.Parameters")
	assert.Equal(t, "error", params.Get("log_min_messages").String())
	assert.Equal(t, "notice", params.Get(`pgaudit\.log_level`).String())
	assert.Equal(t, "info", params.Get(`rds\.force_admin_logging_level`).String())

	assert.Equal(t, "uat/webfocusa/sysdba", gjson.Get(out, "Resources.DatabaseSecret.Properties.Name").String())
	assert.Equal(t, "tcmm-webfocus-databasea-SecurityGroup", gjson.Get(out, "Outputs.SecurityGroup.Export.Name").String())

	ingress := gjson.Get(out, "Resources.DatabaseSecurityGroup.Properties.SecurityGroupIngress").Array()
	require.Len(t, ingress, 3)
	assert.Equal(t, "10.20.0.0/16", ingress[2].Get("CidrIp").String())
}

func TestSynth_Deterministic(t *testing.T) {
	first, err := runCLI(t, "synth")
	require.NoError(t, err)
	second, err := runCLI(t, "synth")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSynth_InstanceOverride(t *testing.T) {
	out, err := runCLI(t, "synth", "-c", "instance=b")
	require.NoError(t, err)

	assert.True(t, gjson.Get(out, "Resources.PGdatabaseb").Exists())
	assert.Equal(t, "tcmm-webfocus-databaseb-SecurityGroup", gjson.Get(out, "Outputs.SecurityGroup.Export.Name").String())
}

func TestSynth_YAMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")

	out, err := runCLI(t, "synth", "--format", "yaml", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AWSTemplateFormatVersion:")
	assert.Contains(t, string(data), "2010-09-09")
	assert.Contains(t, string(data), "AWS::RDS::DBInstance")
}

func TestSynth_MissingContext(t *testing.T) {
	_, err := runCLI(t, "synth", "-c", "awsEnv=tcmmprod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"prod"`)
}

func TestSynth_GuardrailViolation(t *testing.T) {
	// The dev profile admits 0.0.0.0/0
	_, err := runCLI(t, "synth", "-c", "awsEnv=dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guardrail")

	out, err := runCLI(t, "synth", "-c", "awsEnv=dev", "--skip-policy")
	require.NoError(t, err)
	assert.Equal(t, "Delete", gjson.Get(out, "Resources.PGdatabasea.DeletionPolicy").String())
}

func TestSynth_Report(t *testing.T) {
	out, err := runCLI(t, "synth", "--report")
	require.NoError(t, err)

	assert.True(t, gjson.Get(out, "success").Bool())
	assert.Equal(t, "tcmm-webfocus-databasea", gjson.Get(out, "stack_name").String())
	assert.Equal(t, int64(8), gjson.Get(out, "resources.#").Int())
	assert.Equal(t, "AWS::KMS::Key", gjson.Get(out, "template.Resources.EncryptionKey.Type").String())

	out, err = runCLI(t, "synth", "--report", "-c", "awsEnv=dev")
	require.Error(t, err)
	assert.False(t, gjson.Get(out, "success").Bool())
	assert.Contains(t, gjson.Get(out, "errors").String(), "no-open-ingress")
}

func TestList(t *testing.T) {
	out, err := runCLI(t, "list", "--format", "json")
	require.NoError(t, err)

	assert.Equal(t, "tcmm-webfocus-databasea", gjson.Get(out, "stack_name").String())

	names := gjson.Get(out, "resources.#.name").Array()
	require.Len(t, names, 8)

	pos := make(map[string]int)
	for i, n := range names {
		pos[n.String()] = i
	}
	assert.Less(t, pos["EncryptionKey"], pos["PGdatabasea"])
	assert.Less(t, pos["LogGroup"], pos["PGdatabasea"])
	assert.Less(t, pos["PGdatabasea"], pos["SecretAttachment"])
}

func TestList_Text(t *testing.T) {
	out, err := runCLI(t, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "tcmm-webfocus-databasea\n")
	assert.Contains(t, out, "PGdatabasea: AWS::RDS::DBInstance [Snapshot]")
}

func TestGraph(t *testing.T) {
	out, err := runCLI(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "PGdatabasea")

	_, err = runCLI(t, "graph", "-f", "svg")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	out, err := runCLI(t, "context", "--format", "json")
	require.NoError(t, err)

	assert.Equal(t, "uat", gjson.Get(out, "env").String())
	assert.Equal(t, "a", gjson.Get(out, "instance").String())
	assert.Equal(t, "us-east-1", gjson.Get(out, "region").String())
	assert.Equal(t, "Snapshot", gjson.Get(out, "removal_policy").String())
	assert.Equal(t, "webfocusuata", gjson.Get(out, "database").String())
	assert.Equal(t, "vpc-0123456789abcdef0", gjson.Get(out, "network.VpcID").String())
}

func TestContext_Keys(t *testing.T) {
	out, err := runCLI(t, "context", "--keys", "-c", "extra=1")
	require.NoError(t, err)

	assert.Contains(t, out, "awsEnv\n")
	assert.Contains(t, out, "extra\n")
}

func TestDiff_AgainstSynth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployed.json")
	current, err := runCLI(t, "synth")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(current), 0o644))

	out, err := runCLI(t, "diff", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No differences.")

	out, err = runCLI(t, "diff", path, "-c", "awsEnv=dev", "--format", "json")
	require.NoError(t, err)
	assert.Positive(t, gjson.Get(out, "summary.modified").Int())
	assert.Contains(t, gjson.Get(out, "diff.modified.#.resource").String(), "PGdatabasea")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "webfocus-db ")
}

func TestValidate_JSON(t *testing.T) {
	// cfn-lint findings depend on the bundled schema version, so only the
	// shape of the result is checked here.
	out, _ := runCLI(t, "validate", "--format", "json")

	require.True(t, gjson.Valid(out), "validate output is not JSON:\n%s", out)
	assert.Equal(t, int64(8), gjson.Get(out, "resources").Int())
	assert.True(t, gjson.Get(out, "success").Exists())
}

func TestValidate_GuardrailErrors(t *testing.T) {
	out, err := runCLI(t, "validate", "--format", "json", "-c", "awsEnv=dev")
	require.Error(t, err)

	assert.False(t, gjson.Get(out, "success").Bool())
	assert.Contains(t, gjson.Get(out, "errors").String(), "no-open-ingress")
}
