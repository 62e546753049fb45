package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "hall", false},
		{"valid with space", "great hall", false},
		{"valid with dash", "north-wing", false},
		{"valid with apostrophe", "king's rest", false},
		{"valid with digits", "level 2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"path traversal", "foo..bar", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"leading space", " hall", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.True(t, Is(err, ErrCodeInvalidName), "ValidateName(%q) = %v", tt.input, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"0b6f2f8e-8f0e-4a43-9d36-0f1a0f8f2c11", false},
		{"abc_123", false},
		{"", true},
		{"../etc", true},
		{"a/b", true},
		{"çé", true},
		{strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		err := ValidateID(tt.input)
		assert.Equal(t, tt.wantErr, err != nil, "ValidateID(%q) error = %v", tt.input, err)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "villa.toml", false},
		{"valid nested", "plans/north/villa.yaml", false},
		{"valid absolute", "/srv/plans/villa.toml", false},
		{"valid dots in name", "villa..v2.toml", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "foo\x00bar", true},
		{"traversal", "../secret", true},
		{"nested traversal", "plans/../../secret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ValidatePath(%q) error = %v", tt.input, err)
		})
	}
}
