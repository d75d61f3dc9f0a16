package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/tracksdev/tracks/pkg/proto"
)

// setupProject creates a personal workspace and a project with the given
// extra members.
func setupProject(t *testing.T, ctx context.Context, be *Backend, owner proto.User, members ...int64) proto.Project {
	t.Helper()
	c := be.PersonalContext(owner)
	w, err := be.CreateWorkspace(ctx, owner, c, "Workspace", "", "#ff0000")
	if err != nil {
		t.Fatal(err)
	}
	p, err := be.CreateProject(ctx, owner, c, w.ID, "Project", "", proto.ProjectActive, nil, nil, nil, members)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreateTaskDefaults(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "Fix the thing", "", "", "", nil, nil)
	is.NoErr(err)
	is.Equal(task.Status, proto.StatusTodo)
	is.Equal(task.Priority, proto.PriorityMedium)
	is.Equal(task.CreatedBy, alice.ID)

	// Creation writes one "created" activity.
	activities, total, err := be.TaskActivities(ctx, alice, task.ID, 1, 10)
	is.NoErr(err)
	is.Equal(total, int64(1))
	is.Equal(activities[0].Action, proto.ActivityCreated)
}

func TestCreateTaskValidation(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	_, err := be.CreateTask(ctx, alice, p.ID, "  ", "", "", "", nil, nil)
	is.True(errors.Is(err, proto.ErrInvalidInput))

	_, err = be.CreateTask(ctx, alice, p.ID, "ok", "", "blocked", "", nil, nil)
	is.True(errors.Is(err, proto.ErrInvalidInput))

	// Assignees must be project members.
	mallory := mustCreateUser(t, ctx, be, "mallory")
	_, err = be.CreateTask(ctx, alice, p.ID, "ok", "", "", "", nil, []int64{mallory.ID})
	is.True(errors.Is(err, proto.ErrInvalidInput))
}

func TestTaskVisibilityOutsideContext(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	mallory := mustCreateUser(t, ctx, be, "mallory")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "Secret", "", "", "", nil, nil)
	is.NoErr(err)

	// Entities outside the caller's contexts read as not found, never as
	// forbidden.
	_, err = be.TaskByID(ctx, mallory, task.ID)
	is.True(errors.Is(err, proto.ErrTaskNotFound))
	_, err = be.TasksByProject(ctx, mallory, p.ID)
	is.True(errors.Is(err, proto.ErrProjectNotFound))
}

func TestPatchTaskPerFieldActivities(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "Fix the thing", "", "", "", nil, nil)
	is.NoErr(err)

	status := proto.StatusInProgress
	priority := proto.PriorityUrgent
	patched, err := be.PatchTask(ctx, alice, task.ID, proto.TaskPatch{
		Status:   &status,
		Priority: &priority,
	})
	is.NoErr(err)
	is.Equal(patched.Status, proto.StatusInProgress)
	is.Equal(patched.Priority, proto.PriorityUrgent)

	// One activity per changed field plus the create entry.
	activities, total, err := be.TaskActivities(ctx, alice, task.ID, 1, 10)
	is.NoErr(err)
	is.Equal(total, int64(3))

	fields := map[string]bool{}
	for _, a := range activities {
		if a.Action == proto.ActivityUpdated {
			fields[a.Field] = true
		}
	}
	is.True(fields["status"])
	is.True(fields["priority"])
}

func TestPatchTaskNoopWritesNoActivity(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "Fix the thing", "", "", "", nil, nil)
	is.NoErr(err)

	// Writing the current value is a no-op.
	status := proto.StatusTodo
	_, err = be.PatchTask(ctx, alice, task.ID, proto.TaskPatch{Status: &status})
	is.NoErr(err)

	// So is an empty patch.
	_, err = be.PatchTask(ctx, alice, task.ID, proto.TaskPatch{})
	is.NoErr(err)

	_, total, err := be.TaskActivities(ctx, alice, task.ID, 1, 10)
	is.NoErr(err)
	is.Equal(total, int64(1)) // only the create entry
}

func TestPatchTaskAssigneesReplaceSet(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")
	carol := mustCreateUser(t, ctx, be, "carol")

	p := setupTeamProject(t, ctx, be, alice, bob, carol)

	task, err := be.CreateTask(ctx, alice, p.ID, "Shared", "", "", "", nil, []int64{bob.ID})
	is.NoErr(err)
	is.Equal(task.Assignees, []int64{bob.ID})

	// The patch fully replaces the assignee set.
	assignees := []int64{carol.ID}
	patched, err := be.PatchTask(ctx, alice, task.ID, proto.TaskPatch{Assignees: &assignees})
	is.NoErr(err)
	is.Equal(patched.Assignees, []int64{carol.ID})
}

func TestDeleteTaskPermissions(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	bob := mustCreateUser(t, ctx, be, "bob")

	p := setupTeamProject(t, ctx, be, alice, bob)

	task, err := be.CreateTask(ctx, alice, p.ID, "Owned by alice", "", "", "", nil, nil)
	is.NoErr(err)

	// A plain member who didn't create the task cannot delete it.
	err = be.DeleteTask(ctx, bob, task.ID)
	is.True(errors.Is(err, proto.ErrUnauthorized))

	// Its creator can.
	is.NoErr(be.DeleteTask(ctx, alice, task.ID))
	_, err = be.TaskByID(ctx, alice, task.ID)
	is.True(errors.Is(err, proto.ErrTaskNotFound))
}

func TestDeleteTaskCascadesChildren(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "Doomed", "", "", "", nil, nil)
	is.NoErr(err)
	comment, err := be.CreateComment(ctx, alice, task.ID, "last words")
	is.NoErr(err)
	_, err = be.ToggleReaction(ctx, alice, task.ID, comment.ID, "👍")
	is.NoErr(err)
	be.Wait()

	is.NoErr(be.DeleteTask(ctx, alice, task.ID))

	// Deleting the task takes its comments and activities with it.
	comments, err := be.store.ListCommentsByTask(ctx, be.db, task.ID)
	is.NoErr(err)
	is.Equal(len(comments), 0)

	total, err := be.store.CountActivitiesByTask(ctx, be.db, task.ID)
	is.NoErr(err)
	is.Equal(total, int64(0))
}

func TestWatchTaskIdempotent(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "Watched", "", "", "", nil, nil)
	is.NoErr(err)

	is.NoErr(be.WatchTask(ctx, alice, task.ID, alice.ID))
	// Watching twice is a silent no-op.
	is.NoErr(be.WatchTask(ctx, alice, task.ID, alice.ID))

	got, err := be.TaskByID(ctx, alice, task.ID)
	is.NoErr(err)
	is.Equal(got.Watchers, []int64{alice.ID})

	// So is unwatching twice.
	is.NoErr(be.UnwatchTask(ctx, alice, task.ID, alice.ID))
	is.NoErr(be.UnwatchTask(ctx, alice, task.ID, alice.ID))

	got, err = be.TaskByID(ctx, alice, task.ID)
	is.NoErr(err)
	is.Equal(len(got.Watchers), 0)

	// No activity entries for watcher changes.
	_, total, err := be.TaskActivities(ctx, alice, task.ID, 1, 10)
	is.NoErr(err)
	is.Equal(total, int64(1))
}

func TestAssignedTasks(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	_, err := be.CreateTask(ctx, alice, p.ID, "Mine", "", "", "", nil, []int64{alice.ID})
	is.NoErr(err)
	_, err = be.CreateTask(ctx, alice, p.ID, "Nobody's", "", "", "", nil, nil)
	is.NoErr(err)

	tasks, err := be.AssignedTasks(ctx, alice)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
	is.Equal(tasks[0].Title, "Mine")
}

func TestTaskActivitiesPagination(t *testing.T) {
	is := is.New(t)
	ctx, be := setupBackend(t)
	alice := mustCreateUser(t, ctx, be, "alice")
	p := setupProject(t, ctx, be, alice)

	task, err := be.CreateTask(ctx, alice, p.ID, "Busy", "", "", "", nil, nil)
	is.NoErr(err)

	for _, s := range []proto.TaskStatus{proto.StatusInProgress, proto.StatusDone, proto.StatusTodo} {
		s := s
		_, err := be.PatchTask(ctx, alice, task.ID, proto.TaskPatch{Status: &s})
		is.NoErr(err)
	}

	page1, total, err := be.TaskActivities(ctx, alice, task.ID, 1, 2)
	is.NoErr(err)
	is.Equal(total, int64(4))
	is.Equal(len(page1), 2)

	page2, _, err := be.TaskActivities(ctx, alice, task.ID, 2, 2)
	is.NoErr(err)
	is.Equal(len(page2), 2)
	is.True(page1[0].ID != page2[0].ID)
}
