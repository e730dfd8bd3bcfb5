package services

import (
	"github.com/neusi/task-manager-api/internal/models"
	"github.com/neusi/task-manager-api/internal/utils"
)

func (suite *ServiceTestSuite) TestNotifyMany_ExcludesActorAndDuplicates() {
	actor := suite.createUser("actor")
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")

	err := suite.notifications.NotifyMany(
		suite.ctx,
		[]uint64{alice.ID, actor.ID, bob.ID, alice.ID},
		&actor.ID,
		models.VerbTaskAssigned,
		"Title",
		"Message",
		"/tasks/1/",
	)
	suite.Require().NoError(err)

	suite.Equal(int64(2), suite.notificationCount())
	suite.Len(suite.notificationsFor(alice.ID), 1)
	suite.Len(suite.notificationsFor(bob.ID), 1)
	suite.Empty(suite.notificationsFor(actor.ID))

	n := suite.notificationsFor(alice.ID)[0]
	suite.False(n.IsRead)
	suite.Equal("Title", n.Title)
	suite.Equal("Message", n.Message)
	suite.Equal("/tasks/1/", n.URL)
}

func (suite *ServiceTestSuite) TestNotifyMany_NoRecipientsWritesNothing() {
	actor := suite.createUser("actor")

	suite.NoError(suite.notifications.NotifyMany(suite.ctx, nil, &actor.ID, models.VerbTaskCompleted, "t", "m", "u"))
	suite.NoError(suite.notifications.NotifyMany(suite.ctx, []uint64{actor.ID}, &actor.ID, models.VerbTaskCompleted, "t", "m", "u"))
	suite.Equal(int64(0), suite.notificationCount())
}

func (suite *ServiceTestSuite) TestDispatchTransition_SystemActor() {
	admin := suite.createUser("admin", "admin")

	suite.notifications.DispatchTransition(suite.ctx, TransitionOutcome{
		TaskID:      7,
		From:        models.TaskStatusInProgress,
		To:          models.TaskStatusCompleted,
		Changed:     true,
		TaskTitle:   "Deploy",
		ProjectName: "Infra",
	})

	notifications := suite.notificationsFor(admin.ID)
	suite.Require().Len(notifications, 1)
	suite.Nil(notifications[0].ActorID)
	suite.Equal("System marked the task as COMPLETED: Deploy\nProject: Infra", notifications[0].Message)
	suite.Equal("/tasks/7/", notifications[0].URL)
}

func (suite *ServiceTestSuite) TestDispatchTransition_ReturnRequiresAdminAndComment() {
	worker := suite.createUser("worker")
	admin := suite.createUser("admin", "admin")

	base := TransitionOutcome{
		TaskID:         3,
		From:           models.TaskStatusCompleted,
		To:             models.TaskStatusInProgress,
		Changed:        true,
		ActorID:        &admin.ID,
		ActorName:      "Ada",
		ResponsibleIDs: []uint64{worker.ID},
	}

	noComment := base
	noComment.ActorIsAdmin = true
	suite.notifications.DispatchTransition(suite.ctx, noComment)

	notAdmin := base
	notAdmin.Comment = "redo"
	suite.notifications.DispatchTransition(suite.ctx, notAdmin)

	unchanged := base
	unchanged.ActorIsAdmin = true
	unchanged.Comment = "redo"
	unchanged.Changed = false
	suite.notifications.DispatchTransition(suite.ctx, unchanged)

	suite.Equal(int64(0), suite.notificationCount())

	returned := base
	returned.ActorIsAdmin = true
	returned.Comment = "needs more detail"
	suite.notifications.DispatchTransition(suite.ctx, returned)

	notifications := suite.notificationsFor(worker.ID)
	suite.Require().Len(notifications, 1)
	suite.Equal(models.VerbTaskReturned, notifications[0].Verb)
	suite.Equal("Ada changed the status to IN PROGRESS.\n\nComment:\nneeds more detail", notifications[0].Message)
}

func (suite *ServiceTestSuite) TestNotifyTaskAssigned() {
	admin := suite.createUser("admin", "admin")
	worker := suite.createUser("worker")
	project := suite.createProject("Website", "5000.00")

	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusNew, worker, admin)
	task.Project = *project

	suite.Require().NoError(suite.notifications.NotifyTaskAssigned(suite.ctx, task, &admin.ID))

	notifications := suite.notificationsFor(worker.ID)
	suite.Require().Len(notifications, 1)
	suite.Equal(models.VerbTaskAssigned, notifications[0].Verb)
	suite.Equal("You have a new task", notifications[0].Title)
	suite.Equal("Task: Landing page\nProject: Website", notifications[0].Message)
	suite.Empty(suite.notificationsFor(admin.ID))

	// Only tasks still in new trigger assignment notifications
	task.Status = models.TaskStatusInProgress
	suite.Require().NoError(suite.notifications.NotifyTaskAssigned(suite.ctx, task, &admin.ID))
	suite.Len(suite.notificationsFor(worker.ID), 1)
}

func (suite *ServiceTestSuite) TestInbox() {
	worker := suite.createUser("worker")
	other := suite.createUser("other")

	for i := 0; i < 3; i++ {
		suite.Require().NoError(suite.notifications.NotifyMany(
			suite.ctx, []uint64{worker.ID, other.ID}, nil, models.VerbTaskAssigned, "t", "m", "u",
		))
	}

	inbox, err := suite.notifications.ListInbox(suite.ctx, worker.ID, utils.PaginationParams{Page: 1, Limit: 2})
	suite.Require().NoError(err)
	suite.Len(inbox.Items, 2)
	suite.Equal(int64(3), inbox.Total)
	suite.Equal(int64(3), inbox.Unread)
	suite.Greater(inbox.Items[0].ID, inbox.Items[1].ID)

	suite.Require().NoError(suite.notifications.MarkRead(suite.ctx, worker.ID, inbox.Items[0].ID))
	suite.ErrorIs(suite.notifications.MarkRead(suite.ctx, other.ID, inbox.Items[0].ID), ErrNotificationNotFound)

	inbox, err = suite.notifications.ListInbox(suite.ctx, worker.ID, utils.PaginationParams{Page: 1, Limit: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(2), inbox.Unread)

	count, err := suite.notifications.MarkAllRead(suite.ctx, worker.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), count)

	inbox, err = suite.notifications.ListInbox(suite.ctx, other.ID, utils.PaginationParams{Page: 1, Limit: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(3), inbox.Unread)
}
