package stack

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBaselineParameters(t *testing.T) {
	params := BaselineParameters()
	assert.Len(t, params, 23)

	for _, key := range []string{ParamLogMinErrorStatement, ParamLogMinMessages, ParamPgauditLogLevel, ParamRdsForceAdminLoggingLevel} {
		assert.NotContains(t, params, key)
	}

	// Callers get a copy
	params["timezone"] = "UTC"
	assert.Equal(t, "America/New_York", BaselineParameters()["timezone"])
}

func TestMergeParameters(t *testing.T) {
	dc := testDeployment()
	merged := MergeParameters(BaselineParameters(), OverridesFrom(dc))

	assert.Len(t, merged, 27)
	assert.Equal(t, dc.LogMinErrorStatement, merged["log_min_error_statement"])
	assert.Equal(t, dc.LogMinMessages, merged["log_min_messages"])
	assert.Equal(t, dc.PgauditLogLevel, merged["pgaudit.log_level"])
	assert.Equal(t, dc.RdsForceAdminLoggingLevel, merged["rds.force_admin_logging_level"])
	assert.Equal(t, "pg_stat_statements,pgaudit", merged["shared_preload_libraries"])
}

func TestMergeParameters_OverrideWins(t *testing.T) {
	base := map[string]string{
		"log_min_messages": "debug5",
		"work_mem":         "4096",
	}
	merged := MergeParameters(base, Overrides{LogMinMessages: "panic"})

	want := map[string]string{
		"log_min_messages":              "panic",
		"work_mem":                      "4096",
		"log_min_error_statement":       "",
		"pgaudit.log_level":             "",
		"rds.force_admin_logging_level": "",
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("merged parameters mismatch (-want +got):\n%s", diff)
	}

	// The base map is not modified
	assert.Equal(t, "debug5", base["log_min_messages"])
}

func TestMergeParameters_NilBase(t *testing.T) {
	merged := MergeParameters(nil, Overrides{PgauditLogLevel: "log"})
	assert.Len(t, merged, 4)
	assert.Equal(t, "log", merged["pgaudit.log_level"])
}

func TestMergeParameters_NoValueValidation(t *testing.T) {
	merged := MergeParameters(BaselineParameters(), Overrides{LogMinMessages: "not-a-level"})
	assert.Equal(t, "not-a-level", merged["log_min_messages"])
}
