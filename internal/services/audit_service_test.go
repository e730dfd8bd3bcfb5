package services

import (
	"time"

	"github.com/neusi/task-manager-api/internal/models"
)

func (suite *ServiceTestSuite) TestAudit_AppendAndList() {
	admin := suite.createUser("admin", "admin")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "1000.00", models.TaskStatusNew)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	suite.audit.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}

	_, err := suite.audit.Append(suite.db, AuditEntry{
		TaskID: task.ID, From: models.TaskStatusNew, To: models.TaskStatusInProgress, ActorID: &admin.ID,
	})
	suite.Require().NoError(err)
	_, err = suite.audit.Append(suite.db, AuditEntry{
		TaskID: task.ID, From: models.TaskStatusInProgress, To: models.TaskStatusCompleted,
	})
	suite.Require().NoError(err)

	entries, err := suite.audit.ListForTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.Equal(models.TaskStatusCompleted, entries[0].ToStatus)
	suite.Nil(entries[0].CreatedByID)
	suite.Equal(models.TaskStatusInProgress, entries[1].ToStatus)
	suite.Require().NotNil(entries[1].CreatedBy)
	suite.Equal("admin", entries[1].CreatedBy.Username)

	_, err = suite.audit.Append(suite.db, AuditEntry{TaskID: 9999, From: models.TaskStatusNew, To: models.TaskStatusInProgress})
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *ServiceTestSuite) TestAudit_CompletionDatesKeepLatest() {
	project := suite.createProject("Website", "5000.00")
	first := suite.createTask(project.ID, "First", "10.00", models.TaskStatusCompleted)
	second := suite.createTask(project.ID, "Second", "10.00", models.TaskStatusNew)

	times := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	}
	i := 0
	suite.audit.now = func() time.Time {
		t := times[i]
		i++
		return t
	}

	for _, e := range []AuditEntry{
		{TaskID: first.ID, From: models.TaskStatusInProgress, To: models.TaskStatusCompleted},
		{TaskID: first.ID, From: models.TaskStatusCompleted, To: models.TaskStatusInProgress, Comment: "again"},
		{TaskID: first.ID, From: models.TaskStatusInProgress, To: models.TaskStatusCompleted},
	} {
		_, err := suite.audit.Append(suite.db, e)
		suite.Require().NoError(err)
	}

	dates, err := suite.audit.CompletionDates(suite.ctx, []uint64{first.ID, second.ID})
	suite.Require().NoError(err)
	suite.Len(dates, 1)
	suite.True(times[2].Equal(dates[first.ID]), dates[first.ID].String())
}
