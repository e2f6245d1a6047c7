package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func teamWith(roles map[string]MemberRole) *Team {
	roster := make(map[string]RosterEntry, len(roles))
	for id, role := range roles {
		roster[id] = RosterEntry{Role: role}
	}
	return &Team{ID: "team-1", Name: "FC Sparta", Roster: roster}
}

func TestTrainerCount(t *testing.T) {
	team := teamWith(map[string]MemberRole{
		"t1": RoleTrainer,
		"a1": RoleAssistant,
		"m1": RoleMember,
		"t2": RoleTrainer,
	})
	assert.Equal(t, 2, team.TrainerCount())
}

func TestIsSoleTrainer(t *testing.T) {
	team := teamWith(map[string]MemberRole{
		"t1": RoleTrainer,
		"a1": RoleAssistant,
	})
	assert.True(t, team.IsSoleTrainer("t1"))
	assert.False(t, team.IsSoleTrainer("a1"))
	assert.False(t, team.IsSoleTrainer("missing"))
}

func TestCanLeave(t *testing.T) {
	cases := []struct {
		name   string
		roles  map[string]MemberRole
		userID string
		want   bool
	}{
		{
			name:   "sole trainer cannot leave",
			roles:  map[string]MemberRole{"t1": RoleTrainer, "m1": RoleMember},
			userID: "t1",
			want:   false,
		},
		{
			name:   "sole trainer of a one-person team still cannot leave",
			roles:  map[string]MemberRole{"t1": RoleTrainer},
			userID: "t1",
			want:   false,
		},
		{
			name:   "trainer leaves when another trainer remains",
			roles:  map[string]MemberRole{"t1": RoleTrainer, "t2": RoleTrainer},
			userID: "t1",
			want:   true,
		},
		{
			name:   "member always leaves",
			roles:  map[string]MemberRole{"t1": RoleTrainer, "m1": RoleMember},
			userID: "m1",
			want:   true,
		},
		{
			name:   "assistant always leaves",
			roles:  map[string]MemberRole{"t1": RoleTrainer, "a1": RoleAssistant},
			userID: "a1",
			want:   true,
		},
		{
			name:   "non-member cannot leave",
			roles:  map[string]MemberRole{"t1": RoleTrainer},
			userID: "stranger",
			want:   false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanLeave(teamWith(tc.roles), tc.userID))
		})
	}
}

func TestCanDelete(t *testing.T) {
	cases := []struct {
		name    string
		roles   map[string]MemberRole
		actorID string
		want    bool
	}{
		{
			name:    "empty team",
			roles:   map[string]MemberRole{},
			actorID: "anyone",
			want:    true,
		},
		{
			name:    "sole trainer deletes own team",
			roles:   map[string]MemberRole{"t1": RoleTrainer, "m1": RoleMember},
			actorID: "t1",
			want:    true,
		},
		{
			name:    "member cannot delete with a single trainer present",
			roles:   map[string]MemberRole{"t1": RoleTrainer, "m1": RoleMember},
			actorID: "m1",
			want:    false,
		},
		{
			name:    "two trainers, anyone deletes",
			roles:   map[string]MemberRole{"t1": RoleTrainer, "t2": RoleTrainer, "m1": RoleMember},
			actorID: "m1",
			want:    true,
		},
		{
			name:    "trainerless roster is deletable",
			roles:   map[string]MemberRole{"m1": RoleMember},
			actorID: "m1",
			want:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanDelete(teamWith(tc.roles), tc.actorID))
		})
	}
}

func TestMemberIDs(t *testing.T) {
	team := teamWith(map[string]MemberRole{
		"t1": RoleTrainer,
		"m1": RoleMember,
		"m2": RoleMember,
	})
	assert.ElementsMatch(t, []string{"t1", "m1", "m2"}, team.MemberIDs())
}

func TestMemberRoleIsValid(t *testing.T) {
	assert.True(t, RoleTrainer.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.True(t, RoleMember.IsValid())
	assert.False(t, MemberRole("captain").IsValid())
	assert.False(t, MemberRole("").IsValid())
}
