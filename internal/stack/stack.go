// Package stack assembles the WebFOCUS PostgreSQL deployment stack.
//
// Each builder is a pure function of the resolved Settings and Network. Assemble
// composes them into a template builder ready for emission.
package stack

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	webfocus "github.com/lex00/webfocus-db"
	"github.com/lex00/webfocus-db/intrinsics"
	"github.com/lex00/webfocus-db/internal/contextstore"
	"github.com/lex00/webfocus-db/internal/network"
	"github.com/lex00/webfocus-db/internal/template"
	"github.com/lex00/webfocus-db/resources/logs"
	"github.com/lex00/webfocus-db/resources/rds"
	"github.com/lex00/webfocus-db/resources/secretsmanager"
)

// Naming prefixes shared with the deployment pipeline.
const (
	StackPrefix    = "tcmm-webfocus-database"
	ResourcePrefix = "PGdatabase-"
)

// Logical ids of the supporting resources.
const (
	KeyLogicalID              = "EncryptionKey"
	SecretLogicalID           = "DatabaseSecret"
	SecurityGroupLogicalID    = "DatabaseSecurityGroup"
	ParameterGroupLogicalID   = "ParameterGroup"
	SubnetGroupLogicalID      = "SubnetGroup"
	SecretAttachmentLogicalID = "SecretAttachment"
	LogGroupLogicalID         = "LogGroup"
)

// Output names.
const (
	OutputSecurityGroup = "SecurityGroup"
	OutputEndpoint      = "DatabaseEndpoint"
	OutputSecretArn     = "DatabaseSecretArn"
)

// Fixed instance settings.
const (
	Engine                     = "postgres"
	EngineVersion              = "13.4"
	InstanceClass              = "db.m5.4xlarge"
	StorageType                = "gp2"
	PreferredBackupWindow      = "07:00-08:00"
	PreferredMaintenanceWindow = "Sun:11:00-Sun:12:00"
	LogRetentionDays           = 7
	logExport                  = "postgresql"
)

// StackName is the deployed stack name for an instance.
func StackName(instance string) string {
	return StackPrefix + instance
}

// ResourceName is the database construct name for an instance.
func ResourceName(instance string) string {
	return ResourcePrefix + instance
}

// DatabaseLogicalID is ResourceName reduced to the characters CloudFormation
// allows in logical ids.
func DatabaseLogicalID(instance string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, ResourceName(instance))
}

// DatabaseIdentifier is both the database name and instance identifier.
func DatabaseIdentifier(env string, dc contextstore.DeploymentContext, instance string) string {
	return dc.Name + env + instance
}

// Stack is the assembled deployment unit.
type Stack struct {
	Name       string
	Settings   contextstore.Settings
	Network    network.Network
	Security   SecurityPolicy
	Parameters map[string]string
	Secret     SecretPolicy
	// RemovalPolicy is the policy applied to the database instance.
	RemovalPolicy string

	builder *template.Builder
}

// Template builds the CloudFormation template.
func (s *Stack) Template() (*webfocus.Template, error) {
	return s.builder.Build()
}

// Order returns logical ids in dependency order.
func (s *Stack) Order() ([]string, error) {
	return s.builder.Order()
}

// DatabaseLogicalID is the logical id of the database instance.
func (s *Stack) DatabaseLogicalID() string {
	return DatabaseLogicalID(s.Settings.Instance)
}

// Assemble composes the stack from resolved settings.
func Assemble(settings *contextstore.Settings, net network.Network) (*Stack, error) {
	if settings == nil {
		return nil, fmt.Errorf("assemble: settings are required")
	}
	if net.VpcID == "" || net.CidrBlock == "" || len(net.IsolatedSubnetIDs) == 0 {
		return nil, fmt.Errorf("assemble: incomplete network %+v", net)
	}

	dc := settings.Deployment
	env, instance := settings.Env, settings.Instance
	name := StackName(instance)
	identifier := DatabaseIdentifier(env, dc, instance)
	dbID := DatabaseLogicalID(instance)

	security := BuildSecurityPolicy(net, dc)
	params := MergeParameters(BaselineParameters(), OverridesFrom(dc))
	secret, err := BuildSecretPolicy(env, dc, instance, DefaultExcludeCharacters)
	if err != nil {
		return nil, err
	}
	removal := MapRemovalPolicy(dc.RemovalPolicy)

	b := template.NewBuilder(fmt.Sprintf("WebFOCUS PostgreSQL database %s (%s)", identifier, env))

	tags := stackTags(env, instance)

	key := BuildKey(fmt.Sprintf("%s storage encryption key", identifier))
	key.Tags = tags
	secretRes := secret.Resource(fmt.Sprintf("%s master credentials", identifier))
	secretRes.Tags = tags
	sg := security.Resource(net.VpcID, name+"/"+OutputSecurityGroup)
	sg.Tags = tags
	pg := parameterGroup(params)
	pg.Tags = tags
	subnets := subnetGroup(identifier, net)
	subnets.Tags = tags
	logGrp := logGroup(identifier)
	logGrp.Tags = tags
	db := database(identifier, dc)
	db.Tags = tags

	steps := []struct {
		name string
		res  webfocus.Resource
		opts []template.Option
	}{
		{KeyLogicalID, key, []template.Option{template.WithRemovalPolicy(webfocus.PolicyRetain)}},
		{SecretLogicalID, secretRes, nil},
		{SecurityGroupLogicalID, sg, nil},
		{ParameterGroupLogicalID, pg, nil},
		{SubnetGroupLogicalID, subnets, []template.Option{template.WithRemovalPolicy(supportingPolicy(removal))}},
		{LogGroupLogicalID, logGrp, []template.Option{template.WithRemovalPolicy(supportingPolicy(removal))}},
		{dbID, db, []template.Option{template.WithRemovalPolicy(removal), template.DependsOn(LogGroupLogicalID)}},
		{SecretAttachmentLogicalID, secretsmanager.SecretTargetAttachment{
			SecretId:   intrinsics.Ref{LogicalName: SecretLogicalID},
			TargetId:   intrinsics.Ref{LogicalName: dbID},
			TargetType: "AWS::RDS::DBInstance",
		}, nil},
	}
	for _, step := range steps {
		if err := b.Add(step.name, step.res, step.opts...); err != nil {
			return nil, err
		}
	}

	b.AddOutput(OutputSecurityGroup, webfocus.Output{
		Value:  securityGroupID(),
		Export: &webfocus.Export{Name: name + "-" + OutputSecurityGroup},
	})
	b.AddOutput(OutputEndpoint, webfocus.Output{
		Description: "Database endpoint address",
		Value:       intrinsics.GetAtt{LogicalName: dbID, Attribute: "Endpoint.Address"},
	})
	b.AddOutput(OutputSecretArn, webfocus.Output{
		Description: "Master credential secret",
		Value:       intrinsics.Ref{LogicalName: SecretLogicalID},
	})

	return &Stack{
		Name:          name,
		Settings:      *settings,
		Network:       net,
		Security:      security,
		Parameters:    params,
		Secret:        secret,
		RemovalPolicy: removal,
		builder:       b,
	}, nil
}

// stackTags are applied to every taggable resource.
func stackTags(env, instance string) []any {
	return intrinsics.Any(
		intrinsics.Tag{Key: "Environment", Value: env},
		intrinsics.Tag{Key: "Instance", Value: instance},
		intrinsics.Tag{Key: "Stack", Value: intrinsics.AWS_STACK_NAME},
	)
}

func database(identifier string, dc contextstore.DeploymentContext) rds.DBInstance {
	return rds.DBInstance{
		AllocatedStorage:            strconv.Itoa(dc.AllocatedStorage),
		AllowMajorVersionUpgrade:    false,
		AutoMinorVersionUpgrade:     false,
		BackupRetentionPeriod:       dc.BackupRetention,
		CopyTagsToSnapshot:          true,
		DBInstanceClass:             InstanceClass,
		DBInstanceIdentifier:        identifier,
		DBName:                      identifier,
		DBParameterGroupName:        intrinsics.Ref{LogicalName: ParameterGroupLogicalID},
		DBSubnetGroupName:           intrinsics.Ref{LogicalName: SubnetGroupLogicalID},
		DeleteAutomatedBackups:      dc.DeleteAutomatedBackups,
		DeletionProtection:          dc.DeletionProtection,
		EnableCloudwatchLogsExports: intrinsics.Any(logExport),
		Engine:                      Engine,
		EngineVersion:               EngineVersion,
		KmsKeyId:                    keyArn(),
		MasterUsername:              intrinsics.SecretField(SecretLogicalID, "username"),
		MasterUserPassword:          intrinsics.SecretField(SecretLogicalID, PasswordKey),
		MaxAllocatedStorage:         dc.MaxAllocatedStorage,
		MultiAZ:                     dc.MultiAZ,
		Port:                        strconv.Itoa(dc.Port),
		PreferredBackupWindow:       PreferredBackupWindow,
		PreferredMaintenanceWindow:  PreferredMaintenanceWindow,
		PubliclyAccessible:          false,
		StorageEncrypted:            true,
		StorageType:                 StorageType,
		VPCSecurityGroups:           intrinsics.Any(securityGroupID()),
	}
}

func parameterGroup(params map[string]string) rds.DBParameterGroup {
	values := make(map[string]any, len(params))
	for k, v := range params {
		values[k] = v
	}
	return rds.DBParameterGroup{
		Description: ParameterGroupDescription,
		Family:      ParameterGroupFamily,
		Parameters:  values,
	}
}

func subnetGroup(identifier string, net network.Network) rds.DBSubnetGroup {
	ids := make([]any, len(net.IsolatedSubnetIDs))
	for i, id := range net.IsolatedSubnetIDs {
		ids[i] = id
	}
	return rds.DBSubnetGroup{
		DBSubnetGroupDescription: fmt.Sprintf("Isolated subnets for %s", identifier),
		SubnetIds:                ids,
	}
}

// logGroup is created ahead of the instance so RDS exports into a group with
// a retention period. RDS lowercases instance identifiers.
func logGroup(identifier string) logs.LogGroup {
	return logs.LogGroup{
		LogGroupName:    fmt.Sprintf("/aws/rds/instance/%s/%s", strings.ToLower(identifier), logExport),
		RetentionInDays: LogRetentionDays,
	}
}
