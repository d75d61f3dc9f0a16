package backend

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/proto"
)

func TestParseMentionsLongestNameFirst(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)

	alice := mustCreateUser(t, ctx, be, "alice")
	david, err := be.CreateUser(ctx, "david", "David", "david@example.com", "hunter2", false)
	is.NoErr(err)
	davidlee, err := be.CreateUser(ctx, "dlee", "David Lee", "dlee@example.com", "hunter2", false)
	is.NoErr(err)

	p := setupTeamProject(t, ctx, be, alice, david, davidlee)

	// The longer display name wins over its prefix.
	is.Equal(be.parseMentions(ctx, p.ID, "@David Lee can you take this?"), []int64{davidlee.ID})

	// A word boundary ends the shorter match.
	is.Equal(be.parseMentions(ctx, p.ID, "@David, ping"), []int64{david.ID})

	// Matching is case-insensitive.
	is.Equal(be.parseMentions(ctx, p.ID, "cc @DAVID LEE"), []int64{davidlee.ID})

	// A mention running into more word characters matches nobody.
	is.Equal(len(be.parseMentions(ctx, p.ID, "@davidson")), 0)

	// Each user is reported once no matter how often they appear.
	is.Equal(be.parseMentions(ctx, p.ID, "@david and @david again"), []int64{david.ID})

	// Non-members never match.
	_, err = be.CreateUser(ctx, "mallory", "Mallory", "mallory@example.com", "hunter2", false)
	is.NoErr(err)
	is.Equal(len(be.parseMentions(ctx, p.ID, "@Mallory hi")), 0)
}

func TestCommentFanoutRecipients(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")
	carol := mustCreateUser(t, ctx, be, "carol")
	dave := mustCreateUser(t, ctx, be, "dave")

	p := setupTeamProject(t, ctx, be, alice, bob, carol, dave)

	// bob is assignee and watcher, carol watches, alice watches herself.
	task, err := be.CreateTask(ctx, alice, p.ID, "Fanout", "", "", "", nil, []int64{bob.ID})
	is.NoErr(err)
	is.NoErr(be.WatchTask(ctx, alice, task.ID, alice.ID))
	is.NoErr(be.WatchTask(ctx, alice, task.ID, bob.ID))
	is.NoErr(be.WatchTask(ctx, alice, task.ID, carol.ID))
	be.Wait()

	// Clear the task_assigned notification from creation.
	is.NoErr(be.MarkAllNotificationsRead(ctx, bob))

	_, err = be.CreateComment(ctx, alice, task.ID, "@dave have a look")
	is.NoErr(err)
	be.Wait()

	// Watchers, assignees, and mentioned users each get one
	// notification; the actor gets none.
	for _, tc := range []struct {
		user proto.User
		want int64
	}{
		{alice, 0},
		{bob, 1},
		{carol, 1},
		{dave, 1},
	} {
		count, err := be.UnreadNotificationCount(ctx, tc.user)
		is.NoErr(err)
		is.Equal(count, tc.want)
	}

	notifications, err := be.Notifications(ctx, dave)
	is.NoErr(err)
	is.Equal(len(notifications), 1)
	is.Equal(notifications[0].Type, proto.NotificationTaskComment)
	is.Equal(notifications[0].TaskID, task.ID)
	is.Equal(notifications[0].ProjectID, p.ID)
}

func TestMarkNotificationRead(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")

	p := setupTeamProject(t, ctx, be, alice, bob)

	_, err := be.CreateTask(ctx, alice, p.ID, "Read me", "", "", "", nil, []int64{bob.ID})
	is.NoErr(err)
	be.Wait()

	notifications, err := be.Notifications(ctx, bob)
	is.NoErr(err)
	is.Equal(len(notifications), 1)
	is.True(!notifications[0].Read)

	// Users cannot mark someone else's notification.
	err = be.MarkNotificationRead(ctx, alice, notifications[0].ID)
	is.True(errors.Is(err, proto.ErrNotificationNotFound))

	is.NoErr(be.MarkNotificationRead(ctx, bob, notifications[0].ID))
	count, err := be.UnreadNotificationCount(ctx, bob)
	is.NoErr(err)
	is.Equal(count, int64(0))

	notifications, err = be.Notifications(ctx, bob)
	is.NoErr(err)
	is.True(notifications[0].Read)
}
