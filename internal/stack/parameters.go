package stack

import (
	"maps"

	"github.com/lex00/webfocus-db/internal/contextstore"
)

// Parameter group settings.
const (
	ParameterGroupFamily      = "postgres13"
	ParameterGroupDescription = "custom parameter group"
)

// Keys of the per-environment parameters.
const (
	ParamLogMinErrorStatement      = "log_min_error_statement"
	ParamLogMinMessages            = "log_min_messages"
	ParamPgauditLogLevel           = "pgaudit.log_level"
	ParamRdsForceAdminLoggingLevel = "rds.force_admin_logging_level"
)

var baseline = map[string]string{
	"application_name":                   "TCMM",
	"auto_explain.log_analyze":           "1",
	"auto_explain.log_format":            "text",
	"auto_explain.log_nested_statements": "1",
	"auto_explain.log_verbose":           "1",
	"autovacuum":                         "1",
	"deadlock_timeout":                   "1000",
	"log_connections":                    "1",
	"log_disconnections":                 "1",
	"log_duration":                       "1",
	"log_lock_waits":                     "on",
	"log_temp_files":                     "0",
	"log_rotation_size":                  "10240",
	"log_statement":                      "none",
	"pgaudit.log":                        "all",
	"pgaudit.log_parameter":              "1",
	"pgaudit.role":                       "rds_pgaudit",
	"shared_preload_libraries":           "pg_stat_statements,pgaudit",
	"rds.force_ssl":                      "0",
	"rds.log_retention_period":           "10080",
	"ssl":                                "1",
	"timezone":                           "America/New_York",
	"work_mem":                           "10240",
}

// BaselineParameters returns a copy of the parameters shared by every environment.
func BaselineParameters() map[string]string {
	return maps.Clone(baseline)
}

// Overrides are the four parameters whose values vary per environment.
// Values are passed through unchecked; the engine rejects illegal ones at deploy time.
type Overrides struct {
	LogMinErrorStatement      string
	LogMinMessages            string
	PgauditLogLevel           string
	RdsForceAdminLoggingLevel string
}

// OverridesFrom reads the overrides from a deployment profile.
func OverridesFrom(dc contextstore.DeploymentContext) Overrides {
	return Overrides{
		LogMinErrorStatement:      dc.LogMinErrorStatement,
		LogMinMessages:            dc.LogMinMessages,
		PgauditLogLevel:           dc.PgauditLogLevel,
		RdsForceAdminLoggingLevel: dc.RdsForceAdminLoggingLevel,
	}
}

// Params returns the overrides keyed by parameter name.
func (o Overrides) Params() map[string]string {
	return map[string]string{
		ParamLogMinErrorStatement:      o.LogMinErrorStatement,
		ParamLogMinMessages:            o.LogMinMessages,
		ParamPgauditLogLevel:           o.PgauditLogLevel,
		ParamRdsForceAdminLoggingLevel: o.RdsForceAdminLoggingLevel,
	}
}

// MergeParameters copies base and then applies overrides; overrides win.
func MergeParameters(base map[string]string, overrides Overrides) map[string]string {
	merged := maps.Clone(base)
	if merged == nil {
		merged = make(map[string]string)
	}
	maps.Copy(merged, overrides.Params())
	return merged
}
