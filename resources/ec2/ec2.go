// Package ec2 provides the AWS::EC2 resource types used by the database stack.
package ec2

// SecurityGroup represents AWS::EC2::SecurityGroup.
// Omitting SecurityGroupEgress keeps CloudFormation's default allow-all egress rule.
type SecurityGroup struct {
	GroupDescription     any   `json:"GroupDescription,omitempty"`
	GroupName            any   `json:"GroupName,omitempty"`
	VpcId                any   `json:"VpcId,omitempty"`
	SecurityGroupIngress []any `json:"SecurityGroupIngress,omitempty"`
	SecurityGroupEgress  []any `json:"SecurityGroupEgress,omitempty"`
	Tags                 []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SecurityGroup) ResourceType() string {
	return "AWS::EC2::SecurityGroup"
}

// SecurityGroup_Ingress is an inline inbound rule of a SecurityGroup.
type SecurityGroup_Ingress struct {
	CidrIp      any `json:"CidrIp,omitempty"`
	Description any `json:"Description,omitempty"`
	FromPort    any `json:"FromPort,omitempty"`
	IpProtocol  any `json:"IpProtocol,omitempty"`
	ToPort      any `json:"ToPort,omitempty"`
}

// SecurityGroup_Egress is an inline outbound rule of a SecurityGroup.
type SecurityGroup_Egress struct {
	CidrIp      any `json:"CidrIp,omitempty"`
	Description any `json:"Description,omitempty"`
	FromPort    any `json:"FromPort,omitempty"`
	IpProtocol  any `json:"IpProtocol,omitempty"`
	ToPort      any `json:"ToPort,omitempty"`
}
