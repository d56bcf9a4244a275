package secretstatus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsManager struct {
	secrets map[string]*secretsmanager.DescribeSecretOutput
	err     error
	calls   []string
}

func (f *fakeSecretsManager) DescribeSecret(_ context.Context, params *secretsmanager.DescribeSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	id := aws.ToString(params.SecretId)
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.secrets[id]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Secrets Manager can't find the specified secret.")}
	}
	return out, nil
}

func newChecker(t *testing.T, client SecretsManagerAPI) *Checker {
	t.Helper()
	c, err := NewChecker(context.Background(), WithClient(client))
	require.NoError(t, err)
	return c
}

func TestCheck_Exists(t *testing.T) {
	changed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeSecretsManager{secrets: map[string]*secretsmanager.DescribeSecretOutput{
		"uat/webfocusa/sysdba": {
			ARN:                aws.String("arn:aws:secretsmanager:us-east-1:123456789012:secret:uat/webfocusa/sysdba-AbCdEf"),
			Name:               aws.String("uat/webfocusa/sysdba"),
			LastChangedDate:    &changed,
			RotationEnabled:    aws.Bool(false),
			VersionIdsToStages: map[string][]string{"v1": {"AWSCURRENT"}},
		},
	}}

	status, err := newChecker(t, fake).Check(context.Background(), "uat/webfocusa/sysdba")
	require.NoError(t, err)

	assert.True(t, status.Exists)
	assert.False(t, status.PendingDeletion)
	assert.Contains(t, status.ARN, "uat/webfocusa/sysdba")
	assert.Equal(t, &changed, status.LastChangedDate)
	assert.Equal(t, []string{"AWSCURRENT"}, status.VersionStages)
	assert.Equal(t, []string{"uat/webfocusa/sysdba"}, fake.calls)
}

func TestCheck_NotFound(t *testing.T) {
	status, err := newChecker(t, &fakeSecretsManager{}).Check(context.Background(), "dev/webfocusb/sysdba")
	require.NoError(t, err)

	assert.Equal(t, Status{Name: "dev/webfocusb/sysdba"}, status)
}

func TestCheck_PendingDeletion(t *testing.T) {
	deleted := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	fake := &fakeSecretsManager{secrets: map[string]*secretsmanager.DescribeSecretOutput{
		"dev/webfocusa/sysdba": {DeletedDate: &deleted},
	}}

	status, err := newChecker(t, fake).Check(context.Background(), "dev/webfocusa/sysdba")
	require.NoError(t, err)

	assert.True(t, status.Exists)
	assert.True(t, status.PendingDeletion)
	assert.Equal(t, &deleted, status.DeletionDate)
}

func TestCheck_Error(t *testing.T) {
	denied := errors.New("AccessDeniedException: not authorized")
	_, err := newChecker(t, &fakeSecretsManager{err: denied}).Check(context.Background(), "dev/webfocusa/sysdba")

	require.Error(t, err)
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "dev/webfocusa/sysdba")
}
