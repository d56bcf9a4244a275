package stack

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lex00/webfocus-db/internal/contextstore"
	"github.com/lex00/webfocus-db/resources/secretsmanager"
)

// Secret generation settings.
const (
	MasterUsername           = "sysdba"
	PasswordKey              = "password"
	PasswordLength           = 14
	DefaultExcludeCharacters = `/'"@`
	secretNameSuffix         = "sysdba"
)

// Character classes as Secrets Manager defines them.
const (
	numberChars      = "0123456789"
	uppercaseChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars   = "abcdefghijklmnopqrstuvwxyz"
	punctuationChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// SecretPolicy describes how Secrets Manager generates the master credential.
type SecretPolicy struct {
	Name                    string
	PasswordLength          int
	ExcludeCharacters       string
	ExcludeNumbers          bool
	ExcludeUppercase        bool
	ExcludeLowercase        bool
	ExcludePunctuation      bool
	RequireEachIncludedType bool
	SecretStringTemplate    string
	GenerateStringKey       string
}

// SecretPolicyError reports a policy Secrets Manager could never satisfy.
type SecretPolicyError struct {
	Class   string
	Exclude string
}

func (e *SecretPolicyError) Error() string {
	return fmt.Sprintf("secret policy requires %s characters but excludes all of them (exclude %q)", e.Class, e.Exclude)
}

// SecretName is <env>/<name><instance>/sysdba. It must stay stable across
// deployments so the credential is reused.
func SecretName(env string, dc contextstore.DeploymentContext, instance string) string {
	return fmt.Sprintf("%s/%s%s/%s", env, dc.Name, instance, secretNameSuffix)
}

// BuildSecretPolicy returns the master credential policy.
func BuildSecretPolicy(env string, dc contextstore.DeploymentContext, instance, exclude string) (SecretPolicy, error) {
	template, err := json.Marshal(map[string]string{"username": MasterUsername})
	if err != nil {
		return SecretPolicy{}, err
	}

	policy := SecretPolicy{
		Name:                    SecretName(env, dc, instance),
		PasswordLength:          PasswordLength,
		ExcludeCharacters:       exclude,
		RequireEachIncludedType: true,
		SecretStringTemplate:    string(template),
		GenerateStringKey:       PasswordKey,
	}
	if err := policy.Check(); err != nil {
		return SecretPolicy{}, err
	}
	return policy, nil
}

// Check fails when an included class is required but every one of its
// characters is excluded.
func (p SecretPolicy) Check() error {
	if !p.RequireEachIncludedType {
		return nil
	}

	classes := []struct {
		name     string
		chars    string
		excluded bool
	}{
		{"number", numberChars, p.ExcludeNumbers},
		{"uppercase", uppercaseChars, p.ExcludeUppercase},
		{"lowercase", lowercaseChars, p.ExcludeLowercase},
		{"punctuation", punctuationChars, p.ExcludePunctuation},
	}

	for _, class := range classes {
		if class.excluded {
			continue
		}
		if !strings.ContainsFunc(class.chars, func(r rune) bool {
			return !strings.ContainsRune(p.ExcludeCharacters, r)
		}) {
			return &SecretPolicyError{Class: class.name, Exclude: p.ExcludeCharacters}
		}
	}
	return nil
}

// Resource renders the policy as a Secrets Manager secret.
func (p SecretPolicy) Resource(description string) secretsmanager.Secret {
	return secretsmanager.Secret{
		Description: description,
		Name:        p.Name,
		GenerateSecretString: &secretsmanager.Secret_GenerateSecretString{
			ExcludeCharacters:       p.ExcludeCharacters,
			ExcludeLowercase:        p.ExcludeLowercase,
			ExcludeNumbers:          p.ExcludeNumbers,
			ExcludePunctuation:      p.ExcludePunctuation,
			ExcludeUppercase:        p.ExcludeUppercase,
			GenerateStringKey:       p.GenerateStringKey,
			PasswordLength:          p.PasswordLength,
			RequireEachIncludedType: p.RequireEachIncludedType,
			SecretStringTemplate:    p.SecretStringTemplate,
		},
	}
}
