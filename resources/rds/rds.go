// Package rds provides the AWS::RDS resource types used by the database stack.
package rds

// DBInstance represents AWS::RDS::DBInstance.
type DBInstance struct {
	AllocatedStorage            any   `json:"AllocatedStorage,omitempty"`
	AllowMajorVersionUpgrade    any   `json:"AllowMajorVersionUpgrade,omitempty"`
	AutoMinorVersionUpgrade     any   `json:"AutoMinorVersionUpgrade,omitempty"`
	BackupRetentionPeriod       any   `json:"BackupRetentionPeriod,omitempty"`
	CopyTagsToSnapshot          any   `json:"CopyTagsToSnapshot,omitempty"`
	DBInstanceClass             any   `json:"DBInstanceClass,omitempty"`
	DBInstanceIdentifier        any   `json:"DBInstanceIdentifier,omitempty"`
	DBName                      any   `json:"DBName,omitempty"`
	DBParameterGroupName        any   `json:"DBParameterGroupName,omitempty"`
	DBSubnetGroupName           any   `json:"DBSubnetGroupName,omitempty"`
	DeleteAutomatedBackups      any   `json:"DeleteAutomatedBackups,omitempty"`
	DeletionProtection          any   `json:"DeletionProtection,omitempty"`
	EnableCloudwatchLogsExports []any `json:"EnableCloudwatchLogsExports,omitempty"`
	Engine                      any   `json:"Engine,omitempty"`
	EngineVersion               any   `json:"EngineVersion,omitempty"`
	KmsKeyId                    any   `json:"KmsKeyId,omitempty"`
	MasterUsername              any   `json:"MasterUsername,omitempty"`
	MasterUserPassword          any   `json:"MasterUserPassword,omitempty"`
	MaxAllocatedStorage         any   `json:"MaxAllocatedStorage,omitempty"`
	MultiAZ                     any   `json:"MultiAZ,omitempty"`
	Port                        any   `json:"Port,omitempty"`
	PreferredBackupWindow       any   `json:"PreferredBackupWindow,omitempty"`
	PreferredMaintenanceWindow  any   `json:"PreferredMaintenanceWindow,omitempty"`
	PubliclyAccessible          any   `json:"PubliclyAccessible,omitempty"`
	StorageEncrypted            any   `json:"StorageEncrypted,omitempty"`
	StorageType                 any   `json:"StorageType,omitempty"`
	VPCSecurityGroups           []any `json:"VPCSecurityGroups,omitempty"`
	Tags                        []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r DBInstance) ResourceType() string {
	return "AWS::RDS::DBInstance"
}

// DBParameterGroup represents AWS::RDS::DBParameterGroup.
type DBParameterGroup struct {
	DBParameterGroupName any            `json:"DBParameterGroupName,omitempty"`
	Description          any            `json:"Description,omitempty"`
	Family               any            `json:"Family,omitempty"`
	Parameters           map[string]any `json:"Parameters,omitempty"`
	Tags                 []any          `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r DBParameterGroup) ResourceType() string {
	return "AWS::RDS::DBParameterGroup"
}

// DBSubnetGroup represents AWS::RDS::DBSubnetGroup.
type DBSubnetGroup struct {
	DBSubnetGroupDescription any   `json:"DBSubnetGroupDescription,omitempty"`
	DBSubnetGroupName        any   `json:"DBSubnetGroupName,omitempty"`
	SubnetIds                []any `json:"SubnetIds,omitempty"`
	Tags                     []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r DBSubnetGroup) ResourceType() string {
	return "AWS::RDS::DBSubnetGroup"
}
