package services

import "github.com/neusi/task-manager-api/internal/models"

func (suite *ServiceTestSuite) TestLogin() {
	suite.createUser("alice")

	user, err := suite.auth.Login(LoginInput{Username: "alice", Password: testPassword})
	suite.Require().NoError(err)
	suite.Equal("alice", user.Username)

	_, err = suite.auth.Login(LoginInput{Username: "alice", Password: "wrong-password"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.auth.Login(LoginInput{Username: "nobody", Password: testPassword})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *ServiceTestSuite) TestCreateUser() {
	admin := suite.createUser("admin", "admin")
	worker := suite.createUser("worker")

	lead, err := suite.auth.CreateUser(CreateUserInput{
		ActorID:  admin.ID,
		Username: " lead ",
		Password: "longenough",
		FullName: "Lea Lead",
		Groups:   []string{"leader", " "},
	})
	suite.Require().NoError(err)
	suite.Equal("lead", lead.Username)
	suite.Equal("Lea Lead", lead.DisplayName())

	reloaded, err := suite.auth.GetUser(lead.ID)
	suite.Require().NoError(err)
	suite.Require().Len(reloaded.Groups, 1)
	suite.True(suite.auth.IsAdmin(reloaded))

	_, err = suite.auth.Login(LoginInput{Username: "lead", Password: "longenough"})
	suite.NoError(err)

	_, err = suite.auth.CreateUser(CreateUserInput{ActorID: admin.ID, Username: "lead", Password: "longenough"})
	suite.ErrorIs(err, ErrUsernameTaken)

	_, err = suite.auth.CreateUser(CreateUserInput{ActorID: admin.ID, Username: "short", Password: "123"})
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.auth.CreateUser(CreateUserInput{ActorID: worker.ID, Username: "sneaky", Password: "longenough"})
	suite.ErrorIs(err, ErrAdminRequired)

	_, err = suite.auth.GetUser(9999)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *ServiceTestSuite) TestDeactivateUser() {
	admin := suite.createUser("admin", "admin")
	worker := suite.createUser("worker")
	project := suite.createProject("Website", "5000.00")
	task := suite.createTask(project.ID, "Landing page", "100.00", models.TaskStatusNew, worker)

	_, err := suite.transitions.RequestTransition(suite.ctx, TransitionRequest{
		TaskID: task.ID, Target: models.TaskStatusInProgress, ActorID: worker.ID,
	})
	suite.Require().NoError(err)

	suite.ErrorIs(suite.auth.DeactivateUser(worker.ID, admin.ID), ErrAdminRequired)
	suite.ErrorIs(suite.auth.DeactivateUser(admin.ID, admin.ID), ErrCannotDeactivateSelf)
	suite.ErrorIs(suite.auth.DeactivateUser(admin.ID, 9999), ErrUserNotFound)

	suite.Require().NoError(suite.auth.DeactivateUser(admin.ID, worker.ID))
	suite.ErrorIs(suite.auth.DeactivateUser(admin.ID, worker.ID), ErrUserNotFound)

	_, err = suite.auth.Login(LoginInput{Username: "worker", Password: testPassword})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.transitions.RequestTransition(suite.ctx, TransitionRequest{
		TaskID: task.ID, Target: models.TaskStatusCompleted, ActorID: worker.ID,
	})
	suite.ErrorIs(err, ErrUserNotFound)

	entries, err := suite.audit.ListForTask(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Require().NotNil(entries[0].CreatedByID)
	suite.Equal(worker.ID, *entries[0].CreatedByID)
	suite.Nil(entries[0].CreatedBy)

	_, err = suite.auth.CreateUser(CreateUserInput{ActorID: admin.ID, Username: "worker", Password: "longenough"})
	suite.ErrorIs(err, ErrUsernameTaken)
}
