// Package webfocusdb declares the WebFOCUS PostgreSQL deployment stack as Go values.
//
// A stack is assembled from a per-environment deployment context and emitted as a
// CloudFormation template:
//
//	var Key = kms.Key{EnableKeyRotation: true}
//
//	var Database = rds.DBInstance{
//	    StorageEncrypted: true,
//	    KmsKeyId:         GetAtt{LogicalName: "EncryptionKey", Attribute: "Arn"},
//	}
//
// The webfocus-db CLI resolves the context, assembles the stack and writes the
// template for the provisioning pipeline.
package webfocusdb

// Resource represents a CloudFormation resource.
// All types under resources/ (rds.DBInstance, kms.Key, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::RDS::DBInstance")
	ResourceType() string
}

// Removal policies as written to DeletionPolicy and UpdateReplacePolicy.
const (
	PolicyDelete   = "Delete"
	PolicyRetain   = "Retain"
	PolicySnapshot = "Snapshot"
)

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type                string         `json:"Type" yaml:"Type"`
	Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string  `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any     `json:"Value" yaml:"Value"`
	Export      *Export `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// Export names an output for Fn::ImportValue in other stacks.
type Export struct {
	Name string `json:"Name" yaml:"Name"`
}

// SynthResult is the JSON output from `webfocus-db synth --format json --report`.
type SynthResult struct {
	Success   bool     `json:"success"`
	StackName string   `json:"stack_name,omitempty"`
	Template  Template `json:"template,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ValidateResult is the JSON output from `webfocus-db validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `webfocus-db list`.
type ListResult struct {
	StackName string         `json:"stack_name"`
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	DeletionPolicy string   `json:"deletion_policy,omitempty"`
	DependsOn      []string `json:"depends_on,omitempty"`
}

// DiffEntry is one added, removed or modified resource.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// TemplateDiff groups resource differences between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffSummary counts the entries of a TemplateDiff.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}
