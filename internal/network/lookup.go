package network

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// SubnetType classifies a subnet by how it reaches the internet.
type SubnetType string

const (
	SubnetPublic   SubnetType = "Public"
	SubnetPrivate  SubnetType = "Private"
	SubnetIsolated SubnetType = "Isolated"
)

// subnetTypeTag overrides route-based classification when present.
const subnetTypeTag = "aws-cdk:subnet-type"

func lookupVpc(ctx context.Context, client EC2API) (Network, error) {
	vpc, err := findVpc(ctx, client)
	if err != nil {
		return Network{}, err
	}
	vpcID := aws.ToString(vpc.VpcId)
	vpcFilter := []types.Filter{{Name: aws.String("vpc-id"), Values: []string{vpcID}}}

	var subnets []types.Subnet
	subnetPages := ec2.NewDescribeSubnetsPaginator(client, &ec2.DescribeSubnetsInput{Filters: vpcFilter})
	for subnetPages.HasMorePages() {
		page, err := subnetPages.NextPage(ctx)
		if err != nil {
			return Network{}, fmt.Errorf("describing subnets of %s: %w", vpcID, err)
		}
		subnets = append(subnets, page.Subnets...)
	}

	var tables []types.RouteTable
	tablePages := ec2.NewDescribeRouteTablesPaginator(client, &ec2.DescribeRouteTablesInput{Filters: vpcFilter})
	for tablePages.HasMorePages() {
		page, err := tablePages.NextPage(ctx)
		if err != nil {
			return Network{}, fmt.Errorf("describing route tables of %s: %w", vpcID, err)
		}
		tables = append(tables, page.RouteTables...)
	}

	isolated := isolatedSubnets(subnets, tables)
	if len(isolated) == 0 {
		return Network{}, fmt.Errorf("vpc %s has no isolated subnets", vpcID)
	}

	return Network{
		VpcID:             vpcID,
		CidrBlock:         aws.ToString(vpc.CidrBlock),
		IsolatedSubnetIDs: isolated,
	}, nil
}

func findVpc(ctx context.Context, client EC2API) (types.Vpc, error) {
	out, err := client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []types.Filter{{Name: aws.String("is-default"), Values: []string{"false"}}},
	})
	if err != nil {
		return types.Vpc{}, fmt.Errorf("describing vpcs: %w", err)
	}
	if len(out.Vpcs) != 1 {
		return types.Vpc{}, fmt.Errorf("found %d non-default vpcs, expected exactly 1", len(out.Vpcs))
	}
	return out.Vpcs[0], nil
}

// isolatedSubnets returns the ids of isolated subnets ordered by availability zone.
func isolatedSubnets(subnets []types.Subnet, tables []types.RouteTable) []string {
	var mainTable *types.RouteTable
	bySubnet := make(map[string]*types.RouteTable)
	for i := range tables {
		for _, assoc := range tables[i].Associations {
			if aws.ToBool(assoc.Main) {
				mainTable = &tables[i]
			}
			if assoc.SubnetId != nil {
				bySubnet[*assoc.SubnetId] = &tables[i]
			}
		}
	}

	var isolated []types.Subnet
	for _, subnet := range subnets {
		table, ok := bySubnet[aws.ToString(subnet.SubnetId)]
		if !ok {
			table = mainTable
		}
		if classify(subnet, table) == SubnetIsolated {
			isolated = append(isolated, subnet)
		}
	}

	sort.Slice(isolated, func(i, j int) bool {
		ai, aj := aws.ToString(isolated[i].AvailabilityZone), aws.ToString(isolated[j].AvailabilityZone)
		if ai != aj {
			return ai < aj
		}
		return aws.ToString(isolated[i].SubnetId) < aws.ToString(isolated[j].SubnetId)
	})

	ids := make([]string, len(isolated))
	for i, subnet := range isolated {
		ids[i] = aws.ToString(subnet.SubnetId)
	}
	return ids
}

// classify decides the subnet type from its tag or its route table.
func classify(subnet types.Subnet, table *types.RouteTable) SubnetType {
	for _, tag := range subnet.Tags {
		if aws.ToString(tag.Key) == subnetTypeTag {
			switch strings.ToLower(aws.ToString(tag.Value)) {
			case "public":
				return SubnetPublic
			case "private":
				return SubnetPrivate
			case "isolated":
				return SubnetIsolated
			}
		}
	}

	if table == nil {
		return SubnetIsolated
	}
	for _, route := range table.Routes {
		if aws.ToString(route.DestinationCidrBlock) != "0.0.0.0/0" {
			continue
		}
		if strings.HasPrefix(aws.ToString(route.GatewayId), "igw-") {
			return SubnetPublic
		}
		return SubnetPrivate
	}
	return SubnetIsolated
}
