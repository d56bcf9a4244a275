// Package intrinsics provides the CloudFormation intrinsic functions used by the stack.
//
// The core types are re-exported from cloudformation-schema-go:
//
//	Ref{LogicalName: "DatabaseSecret"}                 → {"Ref": "DatabaseSecret"}
//	GetAtt{LogicalName: "EncryptionKey", Attribute: "Arn"} → {"Fn::GetAtt": ["EncryptionKey", "Arn"]}
//	Join{Delimiter: "", Values: []any{...}}             → {"Fn::Join": ["", [...]]}
//
// SecretField builds the dynamic reference RDS uses to read master credentials.
package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// ImportValue represents a CloudFormation Fn::ImportValue intrinsic function.
	ImportValue = intrinsics.ImportValue

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// Json is a shorthand for map[string]any.
type Json = map[string]any

// Any creates a []any slice from the given items.
//
//	VPCSecurityGroups: Any(GetAtt{LogicalName: "DatabaseSecurityGroup", Attribute: "GroupId"}),
func Any(items ...any) []any {
	return items
}

// SecretField returns a Secrets Manager dynamic reference to a JSON field of the
// secret declared under logicalName. CloudFormation resolves it at deploy time,
// so the generated password never appears in the template.
//
//	{"Fn::Join": ["", ["{{resolve:secretsmanager:", {"Ref": "DatabaseSecret"}, ":SecretString:password::}}"]]}
func SecretField(logicalName, field string) Join {
	return Join{
		Delimiter: "",
		Values: []any{
			"{{resolve:secretsmanager:",
			Ref{LogicalName: logicalName},
			":SecretString:" + field + "::}}",
		},
	}
}
