package stack

import (
	"fmt"

	"github.com/lex00/webfocus-db/intrinsics"
	"github.com/lex00/webfocus-db/internal/contextstore"
	"github.com/lex00/webfocus-db/internal/network"
	"github.com/lex00/webfocus-db/resources/ec2"
)

// VpcRuleDescription marks the rule trusting the VPC's own address block.
const VpcRuleDescription = "allow traffic from VPC"

// IngressRule permits TCP on Port from CIDR.
type IngressRule struct {
	CIDR        string
	Port        int
	Description string
}

// SecurityPolicy is the ordered set of ingress rules for the database.
type SecurityPolicy struct {
	Rules []IngressRule
}

// BuildSecurityPolicy returns one rule per internal range followed by the VPC rule.
// No egress rules are declared, so the group keeps the default allow-all egress.
func BuildSecurityPolicy(net network.Network, dc contextstore.DeploymentContext) SecurityPolicy {
	rules := make([]IngressRule, 0, len(dc.InternalIP)+1)
	for _, cidr := range dc.InternalIP {
		rules = append(rules, IngressRule{
			CIDR:        cidr,
			Port:        dc.Port,
			Description: fmt.Sprintf("from %s:%d", cidr, dc.Port),
		})
	}
	rules = append(rules, IngressRule{
		CIDR:        net.CidrBlock,
		Port:        dc.Port,
		Description: VpcRuleDescription,
	})
	return SecurityPolicy{Rules: rules}
}

// Resource renders the policy as a security group in vpcID.
func (p SecurityPolicy) Resource(vpcID, description string) ec2.SecurityGroup {
	ingress := make([]any, len(p.Rules))
	for i, rule := range p.Rules {
		ingress[i] = ec2.SecurityGroup_Ingress{
			CidrIp:      rule.CIDR,
			Description: rule.Description,
			FromPort:    rule.Port,
			IpProtocol:  "tcp",
			ToPort:      rule.Port,
		}
	}
	return ec2.SecurityGroup{
		GroupDescription:     description,
		VpcId:                vpcID,
		SecurityGroupIngress: ingress,
	}
}

// securityGroupID is the GroupId attribute of the database security group.
func securityGroupID() intrinsics.GetAtt {
	return intrinsics.GetAtt{LogicalName: SecurityGroupLogicalID, Attribute: "GroupId"}
}
