package contextstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() map[string]any {
	return map[string]any{
		"internalIp":                    []any{"10.0.0.0/8", "192.168.1.0/24"},
		"name":                          "webfocus",
		"port":                          5432,
		"multiAz":                       false,
		"allocatedStorage":              100,
		"maxAllocatedStorage":           200,
		"backupRetention":               7,
		"deleteAutomatedBackups":        false,
		"deletionProtection":            false,
		"removalPolicy":                 "RETAIN",
		"log_min_error_statement":       "error",
		"log_min_messages":              "warning",
		"pgaudit_log_level":             "log",
		"rds_force_admin_logging_level": "disabled",
	}
}

func TestStore_Deployment(t *testing.T) {
	store := New(map[string]any{"dev": validProfile()})

	dc, err := store.Deployment("dev")
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.0/24"}, dc.InternalIP)
	assert.Equal(t, "webfocus", dc.Name)
	assert.Equal(t, 5432, dc.Port)
	assert.False(t, dc.MultiAZ)
	assert.Equal(t, 100, dc.AllocatedStorage)
	assert.Equal(t, 200, dc.MaxAllocatedStorage)
	assert.Equal(t, 7, dc.BackupRetention)
	assert.Equal(t, "RETAIN", dc.RemovalPolicy)
	assert.Equal(t, "error", dc.LogMinErrorStatement)
	assert.Equal(t, "warning", dc.LogMinMessages)
	assert.Equal(t, "log", dc.PgauditLogLevel)
	assert.Equal(t, "disabled", dc.RdsForceAdminLoggingLevel)
}

func TestStore_Deployment_FalseIsPresent(t *testing.T) {
	profile := validProfile()
	profile["deletionProtection"] = false
	profile["internalIp"] = []any{}

	dc, err := New(map[string]any{"dev": profile}).Deployment("dev")
	require.NoError(t, err)
	assert.False(t, dc.DeletionProtection)
	assert.Empty(t, dc.InternalIP)
}

func TestStore_Deployment_MissingProfile(t *testing.T) {
	_, err := New(map[string]any{}).Deployment("uat")
	require.Error(t, err)

	var missing *MissingContextError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "uat", missing.Key)
}

func TestStore_Deployment_MissingField(t *testing.T) {
	for key := range validProfile() {
		t.Run("absent/"+key, func(t *testing.T) {
			profile := validProfile()
			delete(profile, key)

			_, err := New(map[string]any{"dev": profile}).Deployment("dev")
			require.Error(t, err)

			var missing *MissingContextError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, key, missing.Key)
			assert.Equal(t, "dev", missing.Profile)
			assert.Contains(t, err.Error(), key)
		})

		t.Run("null/"+key, func(t *testing.T) {
			profile := validProfile()
			profile[key] = nil

			_, err := New(map[string]any{"dev": profile}).Deployment("dev")

			var missing *MissingContextError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, key, missing.Key)
		})
	}
}

func TestStore_Deployment_StringProfile(t *testing.T) {
	store := New(map[string]any{
		"dev": `{"internalIp": ["10.0.0.0/8"], "name": "webfocus", "port": 5433, "multiAz": true, ` +
			`"allocatedStorage": 20, "maxAllocatedStorage": 200, "backupRetention": 1, ` +
			`"deleteAutomatedBackups": true, "deletionProtection": true, "removalPolicy": "SNAPSHOT", ` +
			`"log_min_error_statement": "error", "log_min_messages": "warning", ` +
			`"pgaudit_log_level": "log", "rds_force_admin_logging_level": "disabled"}`,
	})

	dc, err := store.Deployment("dev")
	require.NoError(t, err)
	assert.Equal(t, 5433, dc.Port)
	assert.True(t, dc.MultiAZ)
}

func TestStore_Deployment_WrongType(t *testing.T) {
	profile := validProfile()
	profile["port"] = "not-a-port"

	_, err := New(map[string]any{"dev": profile}).Deployment("dev")
	require.Error(t, err)

	var missing *MissingContextError
	assert.False(t, errors.As(err, &missing))
}
