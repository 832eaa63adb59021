package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"Director", RoleDirector, true},
		{"Actor", RoleActor, true},
		{"Audience", RoleAudience, true},
		{"Wizard", Role("Wizard"), false},
		{"director", Role("director"), false}, // enum is case-sensitive
		{"", Role(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRole(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_CanActivate(t *testing.T) {
	assert.True(t, RoleDirector.CanActivate())
	assert.False(t, RoleActor.CanActivate())
	assert.False(t, RoleAudience.CanActivate())
}
