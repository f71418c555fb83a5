package services

import (
	"context"
	"testing"

	"advocatr/backend/models"
	"advocatr/backend/testutil"
	"advocatr/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseInput(order int) ExerciseInput {
	return ExerciseInput{
		Title:                 "Opening statements",
		Description:           "Structure an opening statement.",
		DemoVideoURL:          "https://example.com/demo",
		ProfessionalAnswerURL: "https://example.com/pro",
		Order:                 order,
	}
}

func TestExerciseCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Exercises.Create(ctx, exerciseInput(2))
	require.NoError(t, err)
	_, err = f.svc.Exercises.Create(ctx, exerciseInput(1))
	require.NoError(t, err)

	list, err := f.svc.Exercises.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Order)
	assert.Equal(t, 2, list[1].Order)

	_, err = f.svc.Exercises.Create(ctx, exerciseInput(2))
	assert.ErrorIs(t, err, utils.ErrOrderTaken)

	in := exerciseInput(3)
	in.Title = "Closing statements"
	in.PDFURL = strPtr("https://example.com/notes.pdf")
	updated, err := f.svc.Exercises.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Closing statements", updated.Title)
	assert.Equal(t, 3, updated.Order)

	_, err = f.svc.Exercises.Update(ctx, created.ID, exerciseInput(1))
	assert.ErrorIs(t, err, utils.ErrOrderTaken)
	_, err = f.svc.Exercises.Update(ctx, 9999, exerciseInput(7))
	assert.ErrorIs(t, err, utils.ErrExerciseNotFound)

	got, err := f.svc.Exercises.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/notes.pdf", *got.PDFURL)
	_, err = f.svc.Exercises.Get(ctx, 9999)
	assert.ErrorIs(t, err, utils.ErrExerciseNotFound)
}

func TestCreateExerciseValidates(t *testing.T) {
	f := newFixture(t)

	in := exerciseInput(0)
	in.DemoVideoURL = "not a url"
	_, err := f.svc.Exercises.Create(context.Background(), in)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	details := appErr.Details.(map[string]string)
	assert.Contains(t, details, "demoVideoUrl")
	assert.Contains(t, details, "order")
}

func TestDeleteExerciseRemovesProgressAndFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "alice", models.RoleUser)
	ex := testutil.CreateExercise(t, f.db, 1)
	keep := testutil.CreateExercise(t, f.db, 2)
	p := testutil.CreateProgress(t, f.db, user.ID, ex.ID, true)
	testutil.CreateProgress(t, f.db, user.ID, keep.ID, false)
	require.NoError(t, f.db.Create(&models.Feedback{ProgressID: p.ID, Content: "ok", Rating: 3}).Error)

	require.NoError(t, f.svc.Exercises.Delete(ctx, ex.ID))

	var progress, feedback int64
	require.NoError(t, f.db.Model(&models.UserProgress{}).Count(&progress).Error)
	require.NoError(t, f.db.Model(&models.Feedback{}).Count(&feedback).Error)
	assert.Equal(t, int64(1), progress)
	assert.Zero(t, feedback)

	assert.ErrorIs(t, f.svc.Exercises.Delete(ctx, ex.ID), utils.ErrExerciseNotFound)
}

func TestUpsertByOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ex, created, err := f.svc.Exercises.UpsertByOrder(ctx, exerciseInput(1))
	require.NoError(t, err)
	assert.True(t, created)

	in := exerciseInput(1)
	in.Title = "Renamed"
	again, created, err := f.svc.Exercises.UpsertByOrder(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, ex.ID, again.ID)
	assert.Equal(t, "Renamed", again.Title)

	n, err := f.svc.Exercises.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
