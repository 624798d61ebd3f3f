package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/narendra-simha-pampati/InstaChatProject/internal/apperr"
	"github.com/narendra-simha-pampati/InstaChatProject/internal/models"
)

func newGroupFixture(t *testing.T) (*GroupService, *fakeUserRepo, *fakeGroupRepo) {
	t.Helper()
	users := newFakeUserRepo()
	groups := newFakeGroupRepo()
	svc := NewGroupService(groups, users, newRecordingChat(), testLogger())
	return svc, users, groups
}

func TestCreateGroup(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)

	t.Run("name required", func(t *testing.T) {
		_, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "   "})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("creator is the sole admin member", func(t *testing.T) {
		group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "  book club  ", IsPrivate: true})
		require.NoError(t, err)
		assert.Equal(t, "book club", group.Name)
		assert.Equal(t, ana.ID, group.Creator)
		assert.Equal(t, 1, group.MemberCount())
		assert.True(t, group.IsAdmin(ana.ID))
		assert.True(t, group.Settings.IsPrivate)
		assert.Equal(t, 100, group.Settings.MaxMembers)
	})
}

func TestJoinGroup(t *testing.T) {
	svc, users, groups := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "open club"})
	require.NoError(t, err)

	t.Run("join succeeds", func(t *testing.T) {
		require.NoError(t, svc.Join(ctx, group.ID, bea.ID))
		stored, err := groups.FindByID(ctx, group.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsMember(bea.ID))
		assert.False(t, stored.IsAdmin(bea.ID))
	})

	t.Run("double join conflicts", func(t *testing.T) {
		err := svc.Join(ctx, group.ID, bea.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("unknown group", func(t *testing.T) {
		err := svc.Join(ctx, primitive.NewObjectID(), bea.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestJoinPrivateGroupFailsBeforeCapacity(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "vault", IsPrivate: true})
	require.NoError(t, err)
	one := 1
	_, err = svc.UpdateSettings(ctx, group.ID, ana.ID, GroupSettingsPatch{MaxMembers: &one})
	require.NoError(t, err)

	// Private wins even though the group is also full.
	err = svc.Join(ctx, group.ID, bea.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestJoinFullGroup(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "tiny"})
	require.NoError(t, err)
	one := 1
	_, err = svc.UpdateSettings(ctx, group.ID, ana.ID, GroupSettingsPatch{MaxMembers: &one})
	require.NoError(t, err)

	err = svc.Join(ctx, group.ID, bea.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestInvite(t *testing.T) {
	svc, users, groups := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)
	caro := seedUser(t, users, "caro", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "club", IsPrivate: true})
	require.NoError(t, err)

	t.Run("non-member cannot invite", func(t *testing.T) {
		err := svc.Invite(ctx, group.ID, bea.ID, caro.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("invite adds immediately, even to a private group", func(t *testing.T) {
		require.NoError(t, svc.Invite(ctx, group.ID, ana.ID, bea.ID))
		stored, err := groups.FindByID(ctx, group.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsMember(bea.ID))
	})

	t.Run("unknown invitee", func(t *testing.T) {
		err := svc.Invite(ctx, group.ID, ana.ID, primitive.NewObjectID())
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})

	t.Run("already a member", func(t *testing.T) {
		err := svc.Invite(ctx, group.ID, ana.ID, bea.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("member invites can be restricted to admins", func(t *testing.T) {
		off := false
		_, err := svc.UpdateSettings(ctx, group.ID, ana.ID, GroupSettingsPatch{AllowMemberInvites: &off})
		require.NoError(t, err)
		err = svc.Invite(ctx, group.ID, bea.ID, caro.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
		require.NoError(t, svc.Invite(ctx, group.ID, ana.ID, caro.ID))
	})
}

func TestLeaveGroup(t *testing.T) {
	svc, users, groups := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "club"})
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, group.ID, bea.ID))

	t.Run("non-member", func(t *testing.T) {
		err := svc.Leave(ctx, group.ID, seedUser(t, users, "outsider", true).ID)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("plain member leaves, row is retained inactive", func(t *testing.T) {
		require.NoError(t, svc.Leave(ctx, group.ID, bea.ID))
		stored, err := groups.FindByID(ctx, group.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsMember(bea.ID))
		assert.Len(t, stored.Members, 2)
		assert.Equal(t, 1, stored.MemberCount())
	})
}

func TestLeaveTransfersCreator(t *testing.T) {
	svc, users, groups := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "club"})
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, group.ID, bea.ID))
	require.NoError(t, svc.UpdateRole(ctx, group.ID, ana.ID, bea.ID, models.RoleAdmin))

	require.NoError(t, svc.Leave(ctx, group.ID, ana.ID))

	stored, err := groups.FindByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, bea.ID, stored.Creator)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.IsAdmin(ana.ID))
}

func TestLeaveLastAdminDeactivatesGroup(t *testing.T) {
	svc, users, groups := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "club"})
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, group.ID, bea.ID))

	require.NoError(t, svc.Leave(ctx, group.ID, ana.ID))

	stored, err := groups.FindByID(ctx, group.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestUpdateRole(t *testing.T) {
	svc, users, groups := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "club"})
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, group.ID, bea.ID))

	t.Run("invalid role", func(t *testing.T) {
		err := svc.UpdateRole(ctx, group.ID, ana.ID, bea.ID, "owner")
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("non-admin cannot change roles", func(t *testing.T) {
		err := svc.UpdateRole(ctx, group.ID, bea.ID, ana.ID, models.RoleMember)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("promotion and demotion keep exactly one role set", func(t *testing.T) {
		require.NoError(t, svc.UpdateRole(ctx, group.ID, ana.ID, bea.ID, models.RoleModerator))
		stored, err := groups.FindByID(ctx, group.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsModerator(bea.ID))
		assert.False(t, stored.IsAdmin(bea.ID))

		require.NoError(t, svc.UpdateRole(ctx, group.ID, ana.ID, bea.ID, models.RoleAdmin))
		stored, err = groups.FindByID(ctx, group.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsAdmin(bea.ID))
		assert.False(t, stored.IsModerator(bea.ID))
	})

	t.Run("target must be a member", func(t *testing.T) {
		err := svc.UpdateRole(ctx, group.ID, ana.ID, primitive.NewObjectID(), models.RoleMember)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestUpdateSettings(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "club", Description: "original"})
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, group.ID, bea.ID))

	t.Run("admin only", func(t *testing.T) {
		name := "renamed"
		_, err := svc.UpdateSettings(ctx, group.ID, bea.ID, GroupSettingsPatch{Name: &name})
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})

	t.Run("empty name rejected", func(t *testing.T) {
		name := "  "
		_, err := svc.UpdateSettings(ctx, group.ID, ana.ID, GroupSettingsPatch{Name: &name})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("nil fields are left alone", func(t *testing.T) {
		private := true
		updated, err := svc.UpdateSettings(ctx, group.ID, ana.ID, GroupSettingsPatch{IsPrivate: &private})
		require.NoError(t, err)
		assert.True(t, updated.Settings.IsPrivate)
		assert.Equal(t, "club", updated.Name)
		assert.Equal(t, "original", updated.Description)
	})

	t.Run("maxMembers must be positive", func(t *testing.T) {
		zero := 0
		_, err := svc.UpdateSettings(ctx, group.ID, ana.ID, GroupSettingsPatch{MaxMembers: &zero})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestGroupDetailsMemberOnly(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "club"})
	require.NoError(t, err)

	_, err = svc.Details(ctx, group.ID, bea.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	got, err := svc.Details(ctx, group.ID, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.ID)
}

func TestPublicGroupsExcludesJoinedAndPrivate(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	_, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "hidden", IsPrivate: true})
	require.NoError(t, err)
	open, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "open"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bea.ID, CreateGroupInput{Name: "mine"})
	require.NoError(t, err)

	page, err := svc.PublicGroups(ctx, bea.ID, "", nil, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Groups, 1)
	assert.Equal(t, open.ID, page.Groups[0].ID)
	assert.Equal(t, int64(1), page.Total)
}

func TestDeleteGroup(t *testing.T) {
	svc, users, groups := newGroupFixture(t)
	ctx := context.Background()
	ana := seedUser(t, users, "ana", true)
	bea := seedUser(t, users, "bea", true)

	group, err := svc.Create(ctx, ana.ID, CreateGroupInput{Name: "club"})
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, group.ID, bea.ID))

	err = svc.Delete(ctx, group.ID, bea.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, svc.Delete(ctx, group.ID, ana.ID))
	stored, err := groups.FindByID(ctx, group.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.NotEmpty(t, stored.Members)
}
