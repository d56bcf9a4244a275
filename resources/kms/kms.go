// Package kms provides the AWS::KMS resource types used by the database stack.
package kms

// Key represents AWS::KMS::Key.
type Key struct {
	Description       any   `json:"Description,omitempty"`
	Enabled           any   `json:"Enabled,omitempty"`
	EnableKeyRotation any   `json:"EnableKeyRotation,omitempty"`
	KeyPolicy         any   `json:"KeyPolicy,omitempty"`
	KeySpec           any   `json:"KeySpec,omitempty"`
	KeyUsage          any   `json:"KeyUsage,omitempty"`
	Tags              []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Key) ResourceType() string {
	return "AWS::KMS::Key"
}
