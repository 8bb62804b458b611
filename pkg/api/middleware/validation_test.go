package middleware_test

import (
	"strings"
	"testing"

	. "armada/pkg/api/middleware"
)

func TestValidator_ValidateCommand_AcceptsNormalCommands(t *testing.T) {
	v := NewValidator(DefaultValidatorConfig())

	tests := []string{
		"echo hello",
		"ls -la",
		"python script.py --arg=value",
		"curl https://api.example.com",
	}

	for _, cmd := range tests {
		if err := v.ValidateCommand(cmd); err != nil {
			t.Errorf("expected command '%s' to be valid, got error: %v", cmd, err)
		}
	}
}

func TestValidator_ValidateCommand_RejectsDangerousCommands(t *testing.T) {
	v := NewValidator(DefaultValidatorConfig())

	tests := []string{
		"rm -rf /",
		"sudo rm -rf /",
		":(){ :|:& };:", // Fork bomb
		"mkfs.ext4 /dev/sda",
	}

	for _, cmd := range tests {
		if err := v.ValidateCommand(cmd); err == nil {
			t.Errorf("expected command '%s' to be rejected", cmd)
		}
	}
}

func TestValidator_ValidateCommand_RejectsEmpty(t *testing.T) {
	v := NewValidator(DefaultValidatorConfig())
	if err := v.ValidateCommand(""); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestValidator_ValidateCommand_RejectsTooLong(t *testing.T) {
	config := DefaultValidatorConfig()
	config.MaxCommandLength = 10
	v := NewValidator(config)

	err := v.ValidateCommand("this is a very long command")
	if err == nil {
		t.Error("expected error for too long command")
	}
}

func TestValidator_ValidateServiceName(t *testing.T) {
	v := NewValidator(DefaultValidatorConfig())

	for _, name := range []string{"webapp", "billing-api", "svc_2", "a.b"} {
		if err := v.ValidateServiceName(name); err != nil {
			t.Errorf("expected service name '%s' to be valid, got error: %v", name, err)
		}
	}

	for _, name := range []string{"", "-leading-dash", "has space", "semi;colon"} {
		if err := v.ValidateServiceName(name); err == nil {
			t.Errorf("expected service name '%s' to be rejected", name)
		}
	}
}

func TestValidator_ValidateServiceName_RejectsTooLong(t *testing.T) {
	config := DefaultValidatorConfig()
	config.MaxNameLength = 8
	v := NewValidator(config)

	if err := v.ValidateServiceName(strings.Repeat("a", 9)); err == nil {
		t.Error("expected error for too long service name")
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "command", Message: "bad"}
	if err.Error() != "command: bad" {
		t.Errorf("unexpected error string %q", err.Error())
	}
}
