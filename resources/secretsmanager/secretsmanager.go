// Package secretsmanager provides the AWS::SecretsManager resource types used by the database stack.
package secretsmanager

// Secret represents AWS::SecretsManager::Secret.
type Secret struct {
	Description          any                          `json:"Description,omitempty"`
	GenerateSecretString *Secret_GenerateSecretString `json:"GenerateSecretString,omitempty"`
	KmsKeyId             any                          `json:"KmsKeyId,omitempty"`
	Name                 any                          `json:"Name,omitempty"`
	Tags                 []any                        `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Secret) ResourceType() string {
	return "AWS::SecretsManager::Secret"
}

// Secret_GenerateSecretString tells Secrets Manager how to generate the secret value.
type Secret_GenerateSecretString struct {
	ExcludeCharacters       any `json:"ExcludeCharacters,omitempty"`
	ExcludeLowercase        any `json:"ExcludeLowercase,omitempty"`
	ExcludeNumbers          any `json:"ExcludeNumbers,omitempty"`
	ExcludePunctuation      any `json:"ExcludePunctuation,omitempty"`
	ExcludeUppercase        any `json:"ExcludeUppercase,omitempty"`
	GenerateStringKey       any `json:"GenerateStringKey,omitempty"`
	IncludeSpace            any `json:"IncludeSpace,omitempty"`
	PasswordLength          any `json:"PasswordLength,omitempty"`
	RequireEachIncludedType any `json:"RequireEachIncludedType,omitempty"`
	SecretStringTemplate    any `json:"SecretStringTemplate,omitempty"`
}

// SecretTargetAttachment represents AWS::SecretsManager::SecretTargetAttachment.
// It writes the connection details of the target database back into the secret.
type SecretTargetAttachment struct {
	SecretId   any `json:"SecretId,omitempty"`
	TargetId   any `json:"TargetId,omitempty"`
	TargetType any `json:"TargetType,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SecretTargetAttachment) ResourceType() string {
	return "AWS::SecretsManager::SecretTargetAttachment"
}
