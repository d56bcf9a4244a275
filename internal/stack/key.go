package stack

import (
	"github.com/lex00/webfocus-db/intrinsics"
	"github.com/lex00/webfocus-db/resources/kms"
)

// BuildKey returns the storage encryption key with automatic rotation.
// The key policy delegates access to IAM in the owning account.
func BuildKey(description string) kms.Key {
	return kms.Key{
		Description:       description,
		EnableKeyRotation: true,
		KeyPolicy: intrinsics.Json{
			"Version": "2012-10-17",
			"Statement": []any{
				intrinsics.Json{
					"Effect": "Allow",
					"Principal": intrinsics.Json{
						"AWS": intrinsics.Sub{String: "arn:${AWS::Partition}:iam::${AWS::AccountId}:root"},
					},
					"Action":   "kms:*",
					"Resource": "*",
				},
			},
		},
	}
}

func keyArn() intrinsics.GetAtt {
	return intrinsics.GetAtt{LogicalName: KeyLogicalID, Attribute: "Arn"}
}
