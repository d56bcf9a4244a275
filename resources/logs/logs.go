// Package logs provides the AWS::Logs resource types used by the database stack.
package logs

// LogGroup represents AWS::Logs::LogGroup.
type LogGroup struct {
	KmsKeyId        any   `json:"KmsKeyId,omitempty"`
	LogGroupName    any   `json:"LogGroupName,omitempty"`
	RetentionInDays any   `json:"RetentionInDays,omitempty"`
	Tags            []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r LogGroup) ResourceType() string {
	return "AWS::Logs::LogGroup"
}
