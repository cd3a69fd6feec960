// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package job

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/dberr"
	"github.com/workhive/workhive/internal/users/auth"
)

type memRepository struct {
	jobs map[string]*Job
}

func newMemRepository() *memRepository {
	return &memRepository{jobs: make(map[string]*Job)}
}

func (repo *memRepository) ListJobs(_ context.Context, ownerID string, f Filter, limit, offset int) ([]*Job, int, error) {
	var matched []*Job
	for _, j := range repo.jobs {
		if j.OwnerID != ownerID {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && j.CustomerID != f.CustomerID {
			continue
		}
		clone := *j
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (repo *memRepository) GetJob(_ context.Context, ownerID, id string) (*Job, error) {
	j, ok := repo.jobs[id]
	if !ok || j.OwnerID != ownerID {
		return nil, dberr.ErrNotFound
	}
	clone := *j
	return &clone, nil
}

func (repo *memRepository) CreateJob(_ context.Context, j *Job) error {
	clone := *j
	repo.jobs[j.ID] = &clone
	return nil
}

func (repo *memRepository) UpdateJob(_ context.Context, j *Job) error {
	existing, ok := repo.jobs[j.ID]
	if !ok || existing.OwnerID != j.OwnerID {
		return dberr.ErrNotFound
	}
	clone := *j
	repo.jobs[j.ID] = &clone
	return nil
}

func (repo *memRepository) DeleteJob(_ context.Context, ownerID, id string) error {
	existing, ok := repo.jobs[id]
	if !ok || existing.OwnerID != ownerID {
		return dberr.ErrNotFound
	}
	delete(repo.jobs, id)
	return nil
}

func (repo *memRepository) CountActiveJobs(_ context.Context, ownerID string) (int, error) {
	count := 0
	for _, j := range repo.jobs {
		if j.OwnerID == ownerID && j.Status.Active() {
			count++
		}
	}
	return count, nil
}

type memCustomerDirectory struct {
	owned map[string]string // customerID -> ownerID
}

func (dir *memCustomerDirectory) CustomerExists(_ context.Context, ownerID, customerID string) (bool, error) {
	return dir.owned[customerID] == ownerID, nil
}

type memUserDirectory struct {
	users map[string]*auth.User
}

func (dir *memUserDirectory) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := dir.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

type jobHarness struct {
	service   *Service
	repo      *memRepository
	customers *memCustomerDirectory
	users     *memUserDirectory
}

func newJobHarness() *jobHarness {
	repo := newMemRepository()
	customers := &memCustomerDirectory{owned: map[string]string{"cust-1": "owner-1"}}
	users := &memUserDirectory{users: map[string]*auth.User{
		"owner-1": {ID: "owner-1", Tier: auth.TierFree},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &jobHarness{
		service:   NewService(repo, customers, users, logger),
		repo:      repo,
		customers: customers,
		users:     users,
	}
}

func TestService_CreateJob(t *testing.T) {
	harness := newJobHarness()

	input := &Job{Title: "  Fix kitchen sink  ", CustomerID: "cust-1"}
	require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", input))

	assert.NotEmpty(t, input.ID)
	assert.Equal(t, "Fix kitchen sink", input.Title)
	assert.Equal(t, StatusPending, input.Status)
	assert.Equal(t, "owner-1", harness.repo.jobs[input.ID].OwnerID)
}

func TestService_CreateJob_UnknownCustomer(t *testing.T) {
	harness := newJobHarness()

	err := harness.service.CreateJob(context.Background(), "owner-1", &Job{
		Title:      "Paint fence",
		CustomerID: "cust-missing",
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestService_CreateJob_ForeignCustomerRejected(t *testing.T) {
	harness := newJobHarness()
	harness.customers.owned["cust-2"] = "owner-2"

	err := harness.service.CreateJob(context.Background(), "owner-1", &Job{
		Title:      "Paint fence",
		CustomerID: "cust-2",
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestService_CreateJob_InvalidStatus(t *testing.T) {
	harness := newJobHarness()

	err := harness.service.CreateJob(context.Background(), "owner-1", &Job{
		Title:      "Paint fence",
		CustomerID: "cust-1",
		Status:     Status("archived"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestService_CreateJob_TierCap(t *testing.T) {
	harness := newJobHarness()

	limit := auth.TierFree.MaxActiveJobs()
	for i := 0; i < limit; i++ {
		require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", &Job{
			Title:      "Job",
			CustomerID: "cust-1",
		}))
	}

	// One over the cap is refused.
	err := harness.service.CreateJob(context.Background(), "owner-1", &Job{
		Title:      "One too many",
		CustomerID: "cust-1",
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// Completing a job frees a slot.
	var anyID string
	for id := range harness.repo.jobs {
		anyID = id
		break
	}
	require.NoError(t, harness.service.UpdateJob(context.Background(), "owner-1", anyID, &Job{
		Title:  "Job",
		Status: StatusCompleted,
	}))

	require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", &Job{
		Title:      "Fits again",
		CustomerID: "cust-1",
	}))
}

func TestService_CreateJob_BusinessTierUnlimited(t *testing.T) {
	harness := newJobHarness()
	harness.users.users["owner-1"].Tier = auth.TierBusiness

	for i := 0; i < auth.TierFree.MaxActiveJobs()+5; i++ {
		require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", &Job{
			Title:      "Job",
			CustomerID: "cust-1",
		}))
	}
}

func TestService_UpdateJob_ReopenRespectsCap(t *testing.T) {
	harness := newJobHarness()

	first := &Job{Title: "First", CustomerID: "cust-1"}
	require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", first))
	require.NoError(t, harness.service.UpdateJob(context.Background(), "owner-1", first.ID, &Job{
		Title:  "First",
		Status: StatusCancelled,
	}))

	// Fill the cap with fresh jobs.
	for i := 0; i < auth.TierFree.MaxActiveJobs(); i++ {
		require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", &Job{
			Title:      "Filler",
			CustomerID: "cust-1",
		}))
	}

	// Reopening the cancelled job would exceed the cap.
	err := harness.service.UpdateJob(context.Background(), "owner-1", first.ID, &Job{
		Title:  "First",
		Status: StatusPending,
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

func TestService_ListJobs_StatusFilter(t *testing.T) {
	harness := newJobHarness()

	pending := &Job{Title: "A pending", CustomerID: "cust-1"}
	require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", pending))
	done := &Job{Title: "B done", CustomerID: "cust-1"}
	require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", done))
	require.NoError(t, harness.service.UpdateJob(context.Background(), "owner-1", done.ID, &Job{
		Title:  "B done",
		Status: StatusCompleted,
	}))

	jobs, total, err := harness.service.ListJobs(context.Background(), "owner-1", Filter{Status: StatusCompleted}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, done.ID, jobs[0].ID)
}

func TestService_OwnerScoping(t *testing.T) {
	harness := newJobHarness()

	mine := &Job{Title: "Mine", CustomerID: "cust-1"}
	require.NoError(t, harness.service.CreateJob(context.Background(), "owner-1", mine))

	_, err := harness.service.GetJob(context.Background(), "owner-2", mine.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	err = harness.service.DeleteJob(context.Background(), "owner-2", mine.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "scheduled", "in_progress", "completed", "cancelled"} {
		status, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, status.String())
	}

	_, err := ParseStatus("archived")
	require.Error(t, err)
}
