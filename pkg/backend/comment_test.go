package backend

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/proto"
)

func TestCreateCommentRecordsActivity(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "Discuss", "", "", "", nil, nil)
	is.NoErr(err)

	c, err := be.CreateComment(ctx, alice, task.ID, "first!")
	is.NoErr(err)
	is.Equal(c.AuthorID, alice.ID)
	is.Equal(c.Content, "first!")

	_, err = be.CreateComment(ctx, alice, task.ID, "   ")
	is.True(errors.Is(err, proto.ErrInvalidInput))

	activities, total, err := be.TaskActivities(ctx, alice, task.ID, 1, 10)
	is.NoErr(err)
	is.Equal(total, int64(2))
	is.Equal(activities[0].Action, proto.ActivityCommented)
}

func TestDeleteCommentAuthorOrOwner(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")
	carol := mustCreateUser(t, ctx, be, "carol")

	p := setupTeamProject(t, ctx, be, alice, bob, carol)

	task, err := be.CreateTask(ctx, alice, p.ID, "Discuss", "", "", "", nil, nil)
	is.NoErr(err)
	comment, err := be.CreateComment(ctx, bob, task.ID, "mine")
	is.NoErr(err)

	// A third member can neither delete it...
	err = be.DeleteComment(ctx, carol, task.ID, comment.ID)
	is.True(errors.Is(err, proto.ErrUnauthorized))

	// ...but the author can.
	is.NoErr(be.DeleteComment(ctx, bob, task.ID, comment.ID))

	// The project owner can delete anyone's comment.
	comment, err = be.CreateComment(ctx, bob, task.ID, "again")
	is.NoErr(err)
	is.NoErr(be.DeleteComment(ctx, alice, task.ID, comment.ID))

	// Deleting against the wrong task reads as not found.
	other, err := be.CreateTask(ctx, alice, p.ID, "Other", "", "", "", nil, nil)
	is.NoErr(err)
	comment, err = be.CreateComment(ctx, bob, task.ID, "misfiled")
	is.NoErr(err)
	err = be.DeleteComment(ctx, alice, other.ID, comment.ID)
	is.True(errors.Is(err, proto.ErrCommentNotFound))
}

func TestToggleReaction(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "React", "", "", "", nil, nil)
	is.NoErr(err)
	comment, err := be.CreateComment(ctx, alice, task.ID, "nice")
	is.NoErr(err)

	groups, err := be.ToggleReaction(ctx, alice, task.ID, comment.ID, "👍")
	is.NoErr(err)
	is.Equal(len(groups), 1)
	is.Equal(groups[0].Emoji, "👍")
	is.Equal(groups[0].Count, 1)
	is.Equal(groups[0].Users, []int64{alice.ID})

	// Toggling the same emoji again removes it.
	groups, err = be.ToggleReaction(ctx, alice, task.ID, comment.ID, "👍")
	is.NoErr(err)
	is.Equal(len(groups), 0)

	_, err = be.ToggleReaction(ctx, alice, task.ID, comment.ID, "")
	is.True(errors.Is(err, proto.ErrInvalidInput))
}

func TestReactionGroupsKeepFirstSeenOrder(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")

	p := setupTeamProject(t, ctx, be, alice, bob)

	task, err := be.CreateTask(ctx, alice, p.ID, "React", "", "", "", nil, nil)
	is.NoErr(err)
	comment, err := be.CreateComment(ctx, alice, task.ID, "nice")
	is.NoErr(err)

	_, err = be.ToggleReaction(ctx, alice, task.ID, comment.ID, "🎉")
	is.NoErr(err)
	_, err = be.ToggleReaction(ctx, bob, task.ID, comment.ID, "👀")
	is.NoErr(err)
	groups, err := be.ToggleReaction(ctx, bob, task.ID, comment.ID, "🎉")
	is.NoErr(err)

	is.Equal(len(groups), 2)
	is.Equal(groups[0].Emoji, "🎉")
	is.Equal(groups[0].Count, 2)
	is.Equal(groups[1].Emoji, "👀")
	is.Equal(groups[1].Count, 1)
}
