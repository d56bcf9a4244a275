package contextstore

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DeploymentContext is the per-environment profile the stack is built from.
type DeploymentContext struct {
	InternalIP                []string
	Name                      string
	Port                      int
	MultiAZ                   bool
	AllocatedStorage          int
	MaxAllocatedStorage       int
	BackupRetention           int
	DeleteAutomatedBackups    bool
	DeletionProtection        bool
	RemovalPolicy             string
	LogMinErrorStatement      string
	LogMinMessages            string
	PgauditLogLevel           string
	RdsForceAdminLoggingLevel string
}

// profile is the decoded form of a DeploymentContext. Pointers tell absent
// and null apart from zero values.
type profile struct {
	InternalIP                []string `yaml:"internalIp" json:"internalIp" validate:"required"`
	Name                      *string  `yaml:"name" json:"name" validate:"required"`
	Port                      *int     `yaml:"port" json:"port" validate:"required"`
	MultiAZ                   *bool    `yaml:"multiAz" json:"multiAz" validate:"required"`
	AllocatedStorage          *int     `yaml:"allocatedStorage" json:"allocatedStorage" validate:"required"`
	MaxAllocatedStorage       *int     `yaml:"maxAllocatedStorage" json:"maxAllocatedStorage" validate:"required"`
	BackupRetention           *int     `yaml:"backupRetention" json:"backupRetention" validate:"required"`
	DeleteAutomatedBackups    *bool    `yaml:"deleteAutomatedBackups" json:"deleteAutomatedBackups" validate:"required"`
	DeletionProtection        *bool    `yaml:"deletionProtection" json:"deletionProtection" validate:"required"`
	RemovalPolicy             *string  `yaml:"removalPolicy" json:"removalPolicy" validate:"required"`
	LogMinErrorStatement      *string  `yaml:"log_min_error_statement" json:"log_min_error_statement" validate:"required"`
	LogMinMessages            *string  `yaml:"log_min_messages" json:"log_min_messages" validate:"required"`
	PgauditLogLevel           *string  `yaml:"pgaudit_log_level" json:"pgaudit_log_level" validate:"required"`
	RdsForceAdminLoggingLevel *string  `yaml:"rds_force_admin_logging_level" json:"rds_force_admin_logging_level" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their context key rather than the Go field name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Deployment decodes and validates the profile stored under env, which must
// already be normalized. The first absent field is reported as a
// *MissingContextError naming its key.
func (s *Store) Deployment(env string) (DeploymentContext, error) {
	raw, ok := s.Lookup(env)
	if !ok {
		return DeploymentContext{}, &MissingContextError{Key: env}
	}

	p, err := decodeProfile(raw)
	if err != nil {
		return DeploymentContext{}, fmt.Errorf("decoding profile %q: %w", env, err)
	}

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return DeploymentContext{}, &MissingContextError{Key: verrs[0].Field(), Profile: env}
		}
		return DeploymentContext{}, fmt.Errorf("validating profile %q: %w", env, err)
	}

	return DeploymentContext{
		InternalIP:                append([]string(nil), p.InternalIP...),
		Name:                      *p.Name,
		Port:                      *p.Port,
		MultiAZ:                   *p.MultiAZ,
		AllocatedStorage:          *p.AllocatedStorage,
		MaxAllocatedStorage:       *p.MaxAllocatedStorage,
		BackupRetention:           *p.BackupRetention,
		DeleteAutomatedBackups:    *p.DeleteAutomatedBackups,
		DeletionProtection:        *p.DeletionProtection,
		RemovalPolicy:             *p.RemovalPolicy,
		LogMinErrorStatement:      *p.LogMinErrorStatement,
		LogMinMessages:            *p.LogMinMessages,
		PgauditLogLevel:           *p.PgauditLogLevel,
		RdsForceAdminLoggingLevel: *p.RdsForceAdminLoggingLevel,
	}, nil
}

// decodeProfile re-decodes a generic profile value into the typed form.
// A string value, as passed with -c, is parsed as a JSON or YAML document.
func decodeProfile(raw any) (*profile, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		encoded, err := yaml.Marshal(v)
		if err != nil {
			return nil, err
		}
		data = encoded
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
