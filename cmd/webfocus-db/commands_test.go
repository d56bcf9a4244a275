package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lex00/webfocus-db/internal/secretstatus"
)

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"synth", "validate", "list", "graph", "diff", "watch", "context", "secret-status", "version"} {
		sub, _, err := cmd.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, sub.Name())
		}
	}

	flags := cmd.PersistentFlags()
	assert.Equal(t, "cdk.json", flags.Lookup("context-file").DefValue)
	assert.Equal(t, "cdk.context.json", flags.Lookup("cache-file").DefValue)
	assert.Equal(t, "c", flags.Lookup("context").Shorthand)
	assert.Equal(t, "false", flags.Lookup("lookup").DefValue)
}

func TestNewSynthCmd(t *testing.T) {
	cmd := newSynthCmd(&globalFlags{})

	for _, flag := range []string{"format", "output", "policy-dir", "skip-policy", "report"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing --%s flag", flag)
	}
	assert.Equal(t, "json", cmd.Flags().Lookup("format").DefValue)
}

func TestNewDiffCmd(t *testing.T) {
	cmd := newDiffCmd(&globalFlags{})

	assert.Equal(t, "diff <template1> [template2]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("format"))
	assert.NotNil(t, cmd.Flags().Lookup("ignore-order"))
}

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd(&globalFlags{})

	flag := cmd.Flags().Lookup("debounce")
	require.NotNil(t, flag)
	assert.Equal(t, "500ms", flag.DefValue)
}

func TestIsWatchedEvent(t *testing.T) {
	dir := t.TempDir()
	contextFile := filepath.Join(dir, "cdk.json")

	targets, err := watchTargets(contextFile, "")
	require.NoError(t, err)
	assert.Len(t, targets, 1)
	assert.Equal(t, map[string]bool{dir: true}, dirsOf(targets))

	assert.True(t, isWatchedEvent(fsnotify.Event{Name: contextFile, Op: fsnotify.Write}, targets))
	assert.True(t, isWatchedEvent(fsnotify.Event{Name: contextFile, Op: fsnotify.Create}, targets))
	assert.False(t, isWatchedEvent(fsnotify.Event{Name: contextFile, Op: fsnotify.Chmod}, targets))
	assert.False(t, isWatchedEvent(fsnotify.Event{Name: filepath.Join(dir, "template.json"), Op: fsnotify.Write}, targets))
}

type fakeSecretsManager struct {
	out *secretsmanager.DescribeSecretOutput
}

func (f *fakeSecretsManager) DescribeSecret(_ context.Context, params *secretsmanager.DescribeSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	if f.out == nil {
		return nil, &types.ResourceNotFoundException{Message: aws.String("not found")}
	}
	out := *f.out
	out.Name = params.SecretId
	return &out, nil
}

func runSecretStatusCmd(t *testing.T, client secretstatus.SecretsManagerAPI, args ...string) (string, error) {
	t.Helper()

	g := &globalFlags{
		contextFile: filepath.Join("testdata", "cdk.json"),
		cacheFile:   filepath.Join(t.TempDir(), "cdk.context.json"),
		getenv:      func(string) string { return "" },
		logger:      zerolog.Nop(),
		secretOpts:  []secretstatus.Option{secretstatus.WithClient(client)},
	}

	var stdout bytes.Buffer
	cmd := newSecretStatusCmd(g)
	cmd.SetOut(&stdout)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestSecretStatus_NotFound(t *testing.T) {
	out, err := runSecretStatusCmd(t, &fakeSecretsManager{})
	require.NoError(t, err)

	assert.Equal(t, "uat/webfocusa/sysdba: not found\n", out)
}

func TestSecretStatus_PendingDeletionJSON(t *testing.T) {
	deleted := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	client := &fakeSecretsManager{out: &secretsmanager.DescribeSecretOutput{
		ARN:         aws.String("arn:aws:secretsmanager:us-east-1:123456789012:secret:uat/webfocusa/sysdba-AbCdEf"),
		DeletedDate: &deleted,
	}}

	out, err := runSecretStatusCmd(t, client, "--format", "json")
	require.NoError(t, err)

	assert.Equal(t, "uat/webfocusa/sysdba", gjson.Get(out, "name").String())
	assert.True(t, gjson.Get(out, "exists").Bool())
	assert.True(t, gjson.Get(out, "pending_deletion").Bool())
}

func TestSecretStatus_PendingDeletionText(t *testing.T) {
	deleted := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	out, err := runSecretStatusCmd(t, &fakeSecretsManager{out: &secretsmanager.DescribeSecretOutput{DeletedDate: &deleted}})
	require.NoError(t, err)

	assert.Equal(t, "uat/webfocusa/sysdba: pending deletion on 2026-11-01\n", out)
}

func TestGetVersion(t *testing.T) {
	v := getVersion()
	if v != "dev" && !strings.HasPrefix(v, "v") {
		t.Errorf("getVersion() = %q, want 'dev' or 'vX.Y.Z'", v)
	}

	version = "v1.2.0"
	t.Cleanup(func() { version = "" })
	assert.Equal(t, "v1.2.0", getVersion())
}
