package policy

// Builtin returns the guardrails every template is checked against.
func Builtin() []Policy {
	return []Policy{
		storageEncryptionPolicy(),
		noPublicAccessPolicy(),
		keyRotationPolicy(),
		noOpenIngressPolicy(),
		deletionSafetyPolicy(),
	}
}

func storageEncryptionPolicy() Policy {
	return Policy{
		Name:        "storage-encryption",
		Description: "Database instances must encrypt storage with a customer managed key",
		Severity:    SeverityError,
		Rego: `package webfocus.guardrails.encryption

import rego.v1

deny contains violation if {
	some name, resource in input.resources
	resource.Type == "AWS::RDS::DBInstance"
	not resource.Properties.StorageEncrypted == true
	violation := {
		"resource": name,
		"message": sprintf("%s must set StorageEncrypted to true", [name]),
	}
}

deny contains violation if {
	some name, resource in input.resources
	resource.Type == "AWS::RDS::DBInstance"
	not resource.Properties.KmsKeyId
	violation := {
		"resource": name,
		"message": sprintf("%s must set KmsKeyId", [name]),
	}
}
`,
	}
}

func noPublicAccessPolicy() Policy {
	return Policy{
		Name:        "no-public-access",
		Description: "Database instances must not be publicly accessible",
		Severity:    SeverityError,
		Rego: `package webfocus.guardrails.public

import rego.v1

deny contains violation if {
	some name, resource in input.resources
	resource.Type == "AWS::RDS::DBInstance"
	not resource.Properties.PubliclyAccessible == false
	violation := {
		"resource": name,
		"message": sprintf("%s must set PubliclyAccessible to false", [name]),
	}
}
`,
	}
}

func keyRotationPolicy() Policy {
	return Policy{
		Name:        "key-rotation",
		Description: "KMS keys must enable automatic rotation",
		Severity:    SeverityError,
		Rego: `package webfocus.guardrails.rotation

import rego.v1

deny contains violation if {
	some name, resource in input.resources
	resource.Type == "AWS::KMS::Key"
	not resource.Properties.EnableKeyRotation == true
	violation := {
		"resource": name,
		"message": sprintf("%s must set EnableKeyRotation to true", [name]),
	}
}
`,
	}
}

func noOpenIngressPolicy() Policy {
	return Policy{
		Name:        "no-open-ingress",
		Description: "Security groups must not accept traffic from anywhere",
		Severity:    SeverityError,
		Rego: `package webfocus.guardrails.ingress

import rego.v1

open_ranges := {"0.0.0.0/0", "::/0"}

deny contains violation if {
	some name, resource in input.resources
	resource.Type == "AWS::EC2::SecurityGroup"
	some rule in resource.Properties.SecurityGroupIngress
	some cidr in [object.get(rule, "CidrIp", ""), object.get(rule, "CidrIpv6", "")]
	cidr in open_ranges
	violation := {
		"resource": name,
		"message": sprintf("%s allows ingress from %s on port %v", [name, cidr, rule.FromPort]),
	}
}
`,
	}
}

func deletionSafetyPolicy() Policy {
	return Policy{
		Name:        "deletion-safety",
		Description: "Instances deleted with the stack should be protected or snapshotted",
		Severity:    SeverityWarning,
		Rego: `package webfocus.guardrails.deletion

import rego.v1

deny contains violation if {
	some name, resource in input.resources
	resource.Type == "AWS::RDS::DBInstance"
	object.get(resource, "DeletionPolicy", "Delete") == "Delete"
	not resource.Properties.DeletionProtection == true
	violation := {
		"resource": name,
		"message": sprintf("%s is deleted with the stack without a final snapshot", [name]),
	}
}
`,
	}
}
