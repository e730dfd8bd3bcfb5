package services

import (
	"github.com/neusi/task-manager-api/internal/models"
)

func (suite *ServiceTestSuite) TestCreateTask() {
	admin := suite.createUser("admin", "admin")
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	project := suite.createProject("Website", "5000.00")

	task, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID:      project.ID,
		ActorID:        admin.ID,
		Title:          "  Landing page ",
		StoryPoints:    5,
		Priority:       models.TaskPriorityDo,
		Budget:         dec("1000.00"),
		ResponsibleIDs: []uint64{alice.ID, bob.ID, alice.ID},
	})
	suite.Require().NoError(err)
	suite.Equal("Landing page", task.Title)
	suite.Equal(models.TaskStatusNew, task.Status)
	suite.True(task.SpentBudget.IsZero())
	suite.ElementsMatch([]uint64{alice.ID, bob.ID}, task.ResponsibleIDs())
	suite.Require().NotNil(task.CreatedByID)
	suite.Equal(admin.ID, *task.CreatedByID)
	suite.Equal("Website", task.Project.Name)

	for _, user := range []*models.User{alice, bob} {
		notifications := suite.notificationsFor(user.ID)
		suite.Require().Len(notifications, 1)
		suite.Equal(models.VerbTaskAssigned, notifications[0].Verb)
	}
	suite.Empty(suite.notificationsFor(admin.ID))
}

func (suite *ServiceTestSuite) TestCreateTask_Validation() {
	admin := suite.createUser("admin", "admin")
	worker := suite.createUser("worker")
	project := suite.createProject("Website", "5000.00")

	_, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ProjectID: project.ID, ActorID: worker.ID, Title: "T"})
	suite.ErrorIs(err, ErrAdminRequired)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ProjectID: project.ID, ActorID: admin.ID})
	suite.ErrorIs(err, ErrTitleRequired)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{ProjectID: 9999, ActorID: admin.ID, Title: "T"})
	suite.ErrorIs(err, ErrProjectNotFound)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID: project.ID, ActorID: admin.ID, Title: "T", Priority: models.TaskPriority("urgent"),
	})
	suite.ErrorIs(err, ErrInvalidPriority)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID: project.ID, ActorID: admin.ID, Title: "T", ResponsibleIDs: []uint64{worker.ID, 9999},
	})
	suite.ErrorIs(err, ErrInvalidTaskAssignee)
}

func (suite *ServiceTestSuite) TestGetTask_AccessAndSummary() {
	admin := suite.createUser("admin", "admin")
	worker := suite.createUser("worker")
	stranger := suite.createUser("stranger")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusInProgress, worker)
	suite.createSubTask(task.ID, "A", "300.00", models.TaskStatusCompleted)
	suite.createSubTask(task.ID, "B", "150.00", models.TaskStatusNew)
	suite.Require().NoError(suite.budget.Recompute(suite.ctx, task.ID))

	view, err := suite.tasks.GetTask(suite.ctx, task.ID, worker.ID)
	suite.Require().NoError(err)
	suite.Len(view.Task.SubTasks, 2)
	suite.True(dec("700.00").Equal(view.Budget.Remaining))
	suite.InDelta(50.0, view.Budget.ProgressPercent, 0.0001)

	_, err = suite.tasks.GetTask(suite.ctx, task.ID, admin.ID)
	suite.NoError(err)

	_, err = suite.tasks.GetTask(suite.ctx, task.ID, stranger.ID)
	suite.ErrorIs(err, ErrTaskPermissionDenied)

	_, err = suite.tasks.GetTask(suite.ctx, 9999, admin.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestUpdateTask_LeavesStatusAlone() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusInProgress)

	title := "Home page"
	budget := dec("1200.50")
	priority := models.TaskPriorityDelegate
	updated, err := suite.tasks.UpdateTask(suite.ctx, task.ID, admin.ID, UpdateTaskInput{
		Title:    &title,
		Budget:   &budget,
		Priority: &priority,
	})
	suite.Require().NoError(err)
	suite.Equal("Home page", updated.Title)
	suite.True(budget.Equal(updated.Budget))
	suite.Equal(models.TaskPriorityDelegate, updated.Priority)
	suite.Equal(models.TaskStatusInProgress, updated.Status)

	empty := " "
	_, err = suite.tasks.UpdateTask(suite.ctx, task.ID, admin.ID, UpdateTaskInput{Title: &empty})
	suite.ErrorIs(err, ErrTitleEmpty)
}

func (suite *ServiceTestSuite) TestDeleteTask_Cascades() {
	admin := suite.createUser("admin", "admin")
	worker := suite.createUser("worker")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusInProgress, worker)
	suite.createSubTask(task.ID, "A", "300.00", models.TaskStatusCompleted)

	_, err := suite.transitions.RequestTransition(suite.ctx, TransitionRequest{
		TaskID: task.ID, Target: models.TaskStatusCompleted, ActorID: worker.ID,
	})
	suite.Require().NoError(err)

	suite.ErrorIs(suite.tasks.DeleteTask(suite.ctx, task.ID, worker.ID), ErrAdminRequired)
	suite.Require().NoError(suite.tasks.DeleteTask(suite.ctx, task.ID, admin.ID))

	var subtasks, logs int64
	suite.db.Model(&models.SubTask{}).Where("task_id = ?", task.ID).Count(&subtasks)
	suite.db.Model(&models.TaskStatusLog{}).Where("task_id = ?", task.ID).Count(&logs)
	suite.Zero(subtasks)
	suite.Zero(logs)

	// Notifications outlive the task and keep their link
	notifications := suite.notificationsFor(admin.ID)
	suite.Require().Len(notifications, 1)
	suite.Equal(TaskURL(task.ID), notifications[0].URL)

	suite.ErrorIs(suite.tasks.DeleteTask(suite.ctx, task.ID, admin.ID), ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestAssignAndUnassignResponsibles() {
	admin := suite.createUser("admin", "admin")
	worker := suite.createUser("worker")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusNew)

	input := AssignUsersInput{TaskID: task.ID, ActorID: admin.ID, UserIDs: []uint64{worker.ID, worker.ID}}
	suite.Require().NoError(suite.tasks.AssignResponsibles(suite.ctx, input))
	suite.Require().NoError(suite.tasks.AssignResponsibles(suite.ctx, input))

	_, err := suite.transitions.RequestTransition(suite.ctx, TransitionRequest{
		TaskID: task.ID, Target: models.TaskStatusInProgress, ActorID: worker.ID,
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.tasks.UnassignResponsibles(suite.ctx, input))
	_, err = suite.transitions.RequestTransition(suite.ctx, TransitionRequest{
		TaskID: task.ID, Target: models.TaskStatusCompleted, ActorID: worker.ID,
	})
	suite.ErrorIs(err, ErrUnauthorized)

	suite.ErrorIs(suite.tasks.AssignResponsibles(suite.ctx, AssignUsersInput{TaskID: task.ID, ActorID: admin.ID}), ErrNoUserIDsProvided)
	suite.ErrorIs(suite.tasks.AssignResponsibles(suite.ctx, AssignUsersInput{
		TaskID: task.ID, ActorID: worker.ID, UserIDs: []uint64{worker.ID},
	}), ErrAdminRequired)
}

func (suite *ServiceTestSuite) TestListLogs() {
	worker := suite.createUser("worker")
	stranger := suite.createUser("stranger")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusNew, worker)

	for _, target := range []models.TaskStatus{models.TaskStatusInProgress, models.TaskStatusCompleted} {
		_, err := suite.transitions.RequestTransition(suite.ctx, TransitionRequest{
			TaskID: task.ID, Target: target, ActorID: worker.ID,
		})
		suite.Require().NoError(err)
	}

	logs, err := suite.tasks.ListLogs(suite.ctx, task.ID, worker.ID)
	suite.Require().NoError(err)
	suite.Require().Len(logs, 2)
	suite.Equal(models.TaskStatusCompleted, logs[0].ToStatus)

	_, err = suite.tasks.ListLogs(suite.ctx, task.ID, stranger.ID)
	suite.ErrorIs(err, ErrTaskPermissionDenied)
}

func (suite *ServiceTestSuite) TestCreateTask_RejectsSubCentBudget() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")

	_, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID: project.ID, ActorID: admin.ID, Title: "T", Budget: dec("10.005"),
	})
	suite.ErrorIs(err, ErrBudgetPrecision)

	task := suite.createTask(project.ID, "Landing page", "100.00", models.TaskStatusNew)
	tooFine := dec("99.999")
	_, err = suite.tasks.UpdateTask(suite.ctx, task.ID, admin.ID, UpdateTaskInput{Budget: &tooFine})
	suite.ErrorIs(err, ErrBudgetPrecision)
	suite.True(suite.reloadTask(task.ID).Budget.Equal(dec("100.00")))
}

func (suite *ServiceTestSuite) TestTask_PlanningReferences() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")
	other := suite.createProject("Other", "0.00")

	epic, err := suite.projects.CreateEpic(suite.ctx, CreateEpicInput{ProjectID: project.ID, ActorID: admin.ID, Name: "Launch"})
	suite.Require().NoError(err)
	sprint, err := suite.projects.CreateSprint(suite.ctx, CreateSprintInput{ProjectID: project.ID, ActorID: admin.ID, Name: "Sprint 1"})
	suite.Require().NoError(err)
	foreignEpic, err := suite.projects.CreateEpic(suite.ctx, CreateEpicInput{ProjectID: other.ID, ActorID: admin.ID, Name: "Elsewhere"})
	suite.Require().NoError(err)
	foreignSprint, err := suite.projects.CreateSprint(suite.ctx, CreateSprintInput{ProjectID: other.ID, ActorID: admin.ID, Name: "Elsewhere"})
	suite.Require().NoError(err)

	missing := uint64(424242)
	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID: project.ID, ActorID: admin.ID, Title: "T", EpicID: &missing,
	})
	suite.ErrorIs(err, ErrInvalidEpic)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID: project.ID, ActorID: admin.ID, Title: "T", SprintID: &missing,
	})
	suite.ErrorIs(err, ErrInvalidSprint)

	_, err = suite.tasks.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID: project.ID, ActorID: admin.ID, Title: "T", EpicID: &foreignEpic.ID,
	})
	suite.ErrorIs(err, ErrInvalidEpic)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Equal(int64(0), count)

	task, err := suite.tasks.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID: project.ID, ActorID: admin.ID, Title: "T", EpicID: &epic.ID, SprintID: &sprint.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(epic.ID, *task.EpicID)
	suite.Equal(sprint.ID, *task.SprintID)

	_, err = suite.tasks.UpdateTask(suite.ctx, task.ID, admin.ID, UpdateTaskInput{SprintID: &foreignSprint.ID})
	suite.ErrorIs(err, ErrInvalidSprint)
	suite.Equal(sprint.ID, *suite.reloadTask(task.ID).SprintID)
}
