package differ

import (
	"os"
	"path/filepath"
	"testing"

	webfocus "github.com/lex00/webfocus-db"
)

func TestCompare(t *testing.T) {
	t1 := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"PGdatabasea":    {Type: "AWS::RDS::DBInstance", Properties: map[string]any{"AllocatedStorage": "100"}},
			"ParameterGroup": {Type: "AWS::RDS::DBParameterGroup", Properties: map[string]any{"Family": "postgres13"}},
		},
	}

	t2 := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"PGdatabasea": {Type: "AWS::RDS::DBInstance", Properties: map[string]any{"AllocatedStorage": "200"}},
			"LogGroup":    {Type: "AWS::Logs::LogGroup", Properties: map[string]any{"RetentionInDays": 7}},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	// ParameterGroup was removed
	if len(result.Diff.Removed) != 1 {
		t.Errorf("Removed = %d, want 1", len(result.Diff.Removed))
	} else if result.Diff.Removed[0].Resource != "ParameterGroup" {
		t.Errorf("Removed[0].Resource = %s, want ParameterGroup", result.Diff.Removed[0].Resource)
	}

	// LogGroup was added
	if len(result.Diff.Added) != 1 {
		t.Errorf("Added = %d, want 1", len(result.Diff.Added))
	} else if result.Diff.Added[0].Resource != "LogGroup" {
		t.Errorf("Added[0].Resource = %s, want LogGroup", result.Diff.Added[0].Resource)
	}

	// PGdatabasea was modified
	if len(result.Diff.Modified) != 1 {
		t.Errorf("Modified = %d, want 1", len(result.Diff.Modified))
	} else {
		entry := result.Diff.Modified[0]
		if entry.Resource != "PGdatabasea" {
			t.Errorf("Modified[0].Resource = %s, want PGdatabasea", entry.Resource)
		}
		if len(entry.Changes) != 1 || entry.Changes[0] != "AllocatedStorage modified" {
			t.Errorf("Modified[0].Changes = %v", entry.Changes)
		}
	}

	if result.Summary.Total != 3 {
		t.Errorf("Summary.Total = %d, want 3", result.Summary.Total)
	}
}

func TestCompareIdentical(t *testing.T) {
	template := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"EncryptionKey": {Type: "AWS::KMS::Key", Properties: map[string]any{"EnableKeyRotation": true}},
		},
	}

	result, err := Compare(template, template, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if result.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0 for identical templates", result.Summary.Total)
	}
}

func TestCompareEmpty(t *testing.T) {
	t1 := &webfocus.Template{Resources: map[string]webfocus.ResourceDef{}}
	t2 := &webfocus.Template{Resources: map[string]webfocus.ResourceDef{}}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if result.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0", result.Summary.Total)
	}
}

func TestCompareTypeChange(t *testing.T) {
	t1 := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"Resource1": {Type: "AWS::RDS::DBInstance"},
		},
	}

	t2 := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"Resource1": {Type: "AWS::RDS::DBCluster"},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(result.Diff.Modified) != 1 {
		t.Fatalf("Modified = %d, want 1", len(result.Diff.Modified))
	}

	want := "Type changed: AWS::RDS::DBInstance → AWS::RDS::DBCluster"
	if got := result.Diff.Modified[0].Changes[0]; got != want {
		t.Errorf("Changes[0] = %q, want %q", got, want)
	}
}

func TestCompareRemovalPolicy(t *testing.T) {
	t1 := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"PGdatabasea": {Type: "AWS::RDS::DBInstance", DeletionPolicy: webfocus.PolicySnapshot, UpdateReplacePolicy: webfocus.PolicySnapshot},
		},
	}
	t2 := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"PGdatabasea": {Type: "AWS::RDS::DBInstance", DeletionPolicy: webfocus.PolicyRetain},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if len(result.Diff.Modified) != 1 {
		t.Fatalf("Modified = %d, want 1", len(result.Diff.Modified))
	}
	changes := result.Diff.Modified[0].Changes
	want := []string{
		"DeletionPolicy changed: Snapshot → Retain",
		"UpdateReplacePolicy changed: Snapshot → Delete (default)",
	}
	if len(changes) != len(want) {
		t.Fatalf("Changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("Changes[%d] = %q, want %q", i, changes[i], want[i])
		}
	}
}

func TestCompareIgnoreOrder(t *testing.T) {
	t1 := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"SubnetGroup": {Type: "AWS::RDS::DBSubnetGroup", Properties: map[string]any{"SubnetIds": []any{"subnet-a", "subnet-b"}}},
		},
	}
	t2 := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"SubnetGroup": {Type: "AWS::RDS::DBSubnetGroup", Properties: map[string]any{"SubnetIds": []any{"subnet-b", "subnet-a"}}},
		},
	}

	result, err := Compare(t1, t2, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if result.Summary.Modified != 1 {
		t.Errorf("Summary.Modified = %d, want 1 when order matters", result.Summary.Modified)
	}

	result, err = Compare(t1, t2, Options{IgnoreOrder: true})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if result.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0 when ignoring order", result.Summary.Total)
	}
}

func TestCompareNumericTypes(t *testing.T) {
	synthesized := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"LogGroup": {Type: "AWS::Logs::LogGroup", Properties: map[string]any{"RetentionInDays": int64(7)}},
		},
	}
	loaded := &webfocus.Template{
		Resources: map[string]webfocus.ResourceDef{
			"LogGroup": {Type: "AWS::Logs::LogGroup", Properties: map[string]any{"RetentionInDays": float64(7)}},
		},
	}

	result, err := Compare(synthesized, loaded, Options{})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if result.Summary.Total != 0 {
		t.Errorf("Summary.Total = %d, want 0", result.Summary.Total)
	}
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "old.json")
	yamlPath := filepath.Join(dir, "new.yaml")

	jsonTemplate := `{"Resources":{"EncryptionKey":{"Type":"AWS::KMS::Key","Properties":{"EnableKeyRotation":true}}}}`
	yamlTemplate := `Resources:
  EncryptionKey:
    Type: AWS::KMS::Key
    Properties:
      EnableKeyRotation: true
    DeletionPolicy: Retain
`
	if err := os.WriteFile(jsonPath, []byte(jsonTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte(yamlTemplate), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := CompareFiles(jsonPath, yamlPath, Options{})
	if err != nil {
		t.Fatalf("CompareFiles() error = %v", err)
	}
	if result.Summary.Modified != 1 {
		t.Errorf("Summary.Modified = %d, want 1", result.Summary.Modified)
	}
}

func TestCompareFilesMissing(t *testing.T) {
	_, err := CompareFiles("/nonexistent/a.json", "/nonexistent/b.json", Options{})
	if err == nil {
		t.Error("expected error for missing file")
	}
}
