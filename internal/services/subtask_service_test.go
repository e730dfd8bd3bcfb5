package services

import (
	"fmt"

	"github.com/neusi/task-manager-api/internal/models"
	"golang.org/x/sync/errgroup"
)

func (suite *ServiceTestSuite) TestBudget_CompletingSubTaskUpdatesSpent() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusInProgress)

	_, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID:  task.ID,
		ActorID: admin.ID,
		Title:   "Copywriting",
		Budget:  dec("300.00"),
		Status:  models.TaskStatusCompleted,
	})
	suite.Require().NoError(err)

	second, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID:  task.ID,
		ActorID: admin.ID,
		Title:   "Illustrations",
		Budget:  dec("150.00"),
	})
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusNew, second.Status)

	reloaded := suite.reloadTask(task.ID)
	suite.True(dec("300.00").Equal(reloaded.SpentBudget), reloaded.SpentBudget.String())
	suite.True(dec("700.00").Equal(reloaded.RemainingBudget()))

	completed := models.TaskStatusCompleted
	_, err = suite.subtasks.Update(suite.ctx, second.ID, admin.ID, UpdateSubTaskInput{Status: &completed})
	suite.Require().NoError(err)

	reloaded = suite.reloadTask(task.ID)
	suite.True(dec("450.00").Equal(reloaded.SpentBudget), reloaded.SpentBudget.String())
	suite.True(dec("550.00").Equal(reloaded.RemainingBudget()))
}

func (suite *ServiceTestSuite) TestBudget_FollowsEveryMutation() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "100.00", models.TaskStatusInProgress)

	first, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID: task.ID, ActorID: admin.ID, Title: "A", Budget: dec("60.10"), Status: models.TaskStatusCompleted,
	})
	suite.Require().NoError(err)
	second, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID: task.ID, ActorID: admin.ID, Title: "B", Budget: dec("70.20"), Status: models.TaskStatusCompleted,
	})
	suite.Require().NoError(err)

	// Overspend is allowed and goes negative
	reloaded := suite.reloadTask(task.ID)
	suite.True(dec("130.30").Equal(reloaded.SpentBudget), reloaded.SpentBudget.String())
	suite.True(dec("-30.30").Equal(reloaded.RemainingBudget()))

	budget := dec("10.05")
	_, err = suite.subtasks.Update(suite.ctx, second.ID, admin.ID, UpdateSubTaskInput{Budget: &budget})
	suite.Require().NoError(err)
	suite.True(dec("70.15").Equal(suite.reloadTask(task.ID).SpentBudget))

	inProgress := models.TaskStatusInProgress
	_, err = suite.subtasks.Update(suite.ctx, first.ID, admin.ID, UpdateSubTaskInput{Status: &inProgress})
	suite.Require().NoError(err)
	suite.True(dec("10.05").Equal(suite.reloadTask(task.ID).SpentBudget))

	suite.Require().NoError(suite.subtasks.Delete(suite.ctx, second.ID, admin.ID))
	suite.True(suite.reloadTask(task.ID).SpentBudget.IsZero())
}

func (suite *ServiceTestSuite) TestBudget_RecomputeRepairsDrift() {
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusNew)
	suite.createSubTask(task.ID, "A", "120.00", models.TaskStatusCompleted)
	suite.createSubTask(task.ID, "B", "80.00", models.TaskStatusCompleted)
	suite.createSubTask(task.ID, "C", "999.00", models.TaskStatusInProgress)

	suite.Require().NoError(suite.budget.Recompute(suite.ctx, task.ID))
	suite.True(dec("200.00").Equal(suite.reloadTask(task.ID).SpentBudget))

	// A missing task is ignored
	suite.NoError(suite.budget.Recompute(suite.ctx, 9999))
}

func (suite *ServiceTestSuite) TestBudget_Summary() {
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusNew)
	suite.createSubTask(task.ID, "A", "300.00", models.TaskStatusCompleted)
	suite.createSubTask(task.ID, "B", "150.00", models.TaskStatusNew)
	suite.createSubTask(task.ID, "C", "50.00", models.TaskStatusNew)
	suite.createSubTask(task.ID, "D", "0.00", models.TaskStatusCompleted)
	suite.Require().NoError(suite.budget.Recompute(suite.ctx, task.ID))

	summary, err := suite.budget.Summary(suite.ctx, suite.reloadTask(task.ID))
	suite.Require().NoError(err)
	suite.True(dec("300.00").Equal(summary.Spent))
	suite.True(dec("700.00").Equal(summary.Remaining))
	suite.Equal(int64(4), summary.SubtasksTotal)
	suite.Equal(int64(2), summary.SubtasksCompleted)
	suite.InDelta(50.0, summary.ProgressPercent, 0.0001)
}

func (suite *ServiceTestSuite) TestSubTask_Permissions() {
	admin := suite.createUser("admin", "admin")
	worker := suite.createUser("worker")
	stranger := suite.createUser("stranger")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusInProgress, worker)

	_, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID: task.ID, ActorID: stranger.ID, Title: "Nope", Budget: dec("1.00"),
	})
	suite.ErrorIs(err, ErrTaskPermissionDenied)

	subtask, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID: task.ID, ActorID: worker.ID, Title: "Mine", Budget: dec("10.00"),
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(subtask.CreatedByID)
	suite.Equal(worker.ID, *subtask.CreatedByID)

	title := "Renamed"
	_, err = suite.subtasks.Update(suite.ctx, subtask.ID, stranger.ID, UpdateSubTaskInput{Title: &title})
	suite.ErrorIs(err, ErrTaskPermissionDenied)

	updated, err := suite.subtasks.Update(suite.ctx, subtask.ID, worker.ID, UpdateSubTaskInput{Title: &title})
	suite.Require().NoError(err)
	suite.Equal("Renamed", updated.Title)

	suite.ErrorIs(suite.subtasks.Delete(suite.ctx, subtask.ID, worker.ID), ErrTaskPermissionDenied)
	suite.NoError(suite.subtasks.Delete(suite.ctx, subtask.ID, admin.ID))
	suite.ErrorIs(suite.subtasks.Delete(suite.ctx, subtask.ID, admin.ID), ErrSubTaskNotFound)
}

func (suite *ServiceTestSuite) TestSubTask_Validation() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusNew)

	_, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{TaskID: task.ID, ActorID: admin.ID, Title: "  "})
	suite.ErrorIs(err, ErrTitleRequired)

	_, err = suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID: task.ID, ActorID: admin.ID, Title: "A", Status: models.TaskStatus("blocked"),
	})
	suite.ErrorIs(err, ErrInvalidStatus)

	_, err = suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID: task.ID, ActorID: admin.ID, Title: "A", Budget: dec("-1.00"),
	})
	suite.ErrorIs(err, ErrNegativeBudget)

	_, err = suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID: 9999, ActorID: admin.ID, Title: "A",
	})
	suite.ErrorIs(err, ErrTaskNotFound)

	empty := ""
	_, err = suite.subtasks.Update(suite.ctx, 9999, admin.ID, UpdateSubTaskInput{Title: &empty})
	suite.ErrorIs(err, ErrTitleEmpty)

	_, err = suite.subtasks.Update(suite.ctx, 9999, admin.ID, UpdateSubTaskInput{})
	suite.ErrorIs(err, ErrSubTaskNotFound)
}

func (suite *ServiceTestSuite) TestSubTask_ConcurrentWritesKeepSpentConsistent() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusInProgress)

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		i := i
		g.Go(func() error {
			_, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
				TaskID:  task.ID,
				ActorID: admin.ID,
				Title:   fmt.Sprintf("Part %d", i),
				Budget:  dec("12.34"),
				Status:  models.TaskStatusCompleted,
			})
			return err
		})
	}
	suite.Require().NoError(g.Wait())

	suite.True(dec("123.40").Equal(suite.reloadTask(task.ID).SpentBudget), suite.reloadTask(task.ID).SpentBudget.String())
	suite.Equal(0, suite.locks.held())
}

func (suite *ServiceTestSuite) TestBudget_RejectsSubCentAmounts() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "100.00", models.TaskStatusNew)

	for i := 0; i < 3; i++ {
		_, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
			TaskID: task.ID, ActorID: admin.ID, Title: "Tiny", Budget: dec("0.005"), Status: models.TaskStatusCompleted,
		})
		suite.ErrorIs(err, ErrBudgetPrecision)
	}
	suite.True(suite.reloadTask(task.ID).SpentBudget.IsZero())

	subtask, err := suite.subtasks.Create(suite.ctx, CreateSubTaskInput{
		TaskID: task.ID, ActorID: admin.ID, Title: "Exact", Budget: dec("0.10"), Status: models.TaskStatusCompleted,
	})
	suite.Require().NoError(err)

	tooFine := dec("12.345")
	_, err = suite.subtasks.Update(suite.ctx, subtask.ID, admin.ID, UpdateSubTaskInput{Budget: &tooFine})
	suite.ErrorIs(err, ErrBudgetPrecision)
	suite.True(suite.reloadTask(task.ID).SpentBudget.Equal(dec("0.10")))
}

func (suite *ServiceTestSuite) TestValidateBudget() {
	suite.NoError(ValidateBudget(dec("0")))
	suite.NoError(ValidateBudget(dec("1000.5")))
	suite.NoError(ValidateBudget(dec("1000.50")))
	suite.NoError(ValidateBudget(dec("1000.500")))
	suite.ErrorIs(ValidateBudget(dec("-0.01")), ErrNegativeBudget)
	suite.ErrorIs(ValidateBudget(dec("0.001")), ErrBudgetPrecision)
}
