package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmn-lab/roster-api/internal/models"
)

type stubPlacementWindow struct {
	placements []models.PlacementDetail
	from, to   time.Time
}

func (s *stubPlacementWindow) ListWindow(_ context.Context, from, to time.Time) ([]models.PlacementDetail, error) {
	s.from, s.to = from, to
	return s.placements, nil
}

type stubGroupStore struct {
	features []models.GroupFeature
	members  map[string][]string
}

func (s *stubGroupStore) ListEnabledFeaturesForUser(_ context.Context, _ string, _ models.FeatureKey) ([]models.GroupFeature, error) {
	return s.features, nil
}

func (s *stubGroupStore) MemberIDs(_ context.Context, groupID, _ string) ([]string, error) {
	return s.members[groupID], nil
}

func placedAt(userID, workplaceID string, when time.Time) models.PlacementDetail {
	return models.PlacementDetail{ID: "p-" + userID, WorkplaceID: workplaceID, UserID: userID, CreatedAt: when}
}

func newConstraintService(placements *stubPlacementWindow, groups *stubGroupStore, now time.Time) *ConstraintService {
	s, err := ParseSchedule(testSchedule)
	if err != nil {
		panic(err)
	}
	svc := NewConstraintService(placements, groups, s, 18, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestCheckDeniesAdjacentSeat(t *testing.T) {
	now := at(10, 0) // lesson 2
	placements := &stubPlacementWindow{placements: []models.PlacementDetail{
		placedAt("mate", "329-7", now.Add(-5*time.Minute)),
	}}
	groups := &stubGroupStore{
		features: []models.GroupFeature{{GroupID: "g1", FeatureKey: models.FeatureNonSequential, Enabled: true}},
		members:  map[string][]string{"g1": {"mate"}},
	}
	svc := newConstraintService(placements, groups, now)

	denial, err := svc.Check(context.Background(), "student", 8)
	require.NoError(t, err)
	require.NotNil(t, denial)

	// Seats 6..8 are blocked around the mate, seat 7 is also occupied.
	assert.Equal(t, []int{1, 2, 3, 4, 5, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}, denial.Available)
	assert.Contains(t, denial.Message(), "1, 2, 3, 4, 5, 9")
	assert.Contains(t, denial.Message(), "тимчасово недоступні")

	// The repository was queried with the padded lesson window.
	assert.Equal(t, at(9, 40), placements.from)
	assert.Equal(t, at(10, 55), placements.to)
}

func TestCheckAllowsSeatOutsideDistance(t *testing.T) {
	now := at(10, 0)
	placements := &stubPlacementWindow{placements: []models.PlacementDetail{
		placedAt("mate", "329-7", now.Add(-5*time.Minute)),
	}}
	groups := &stubGroupStore{
		features: []models.GroupFeature{{GroupID: "g1", FeatureKey: models.FeatureNonSequential, Enabled: true}},
		members:  map[string][]string{"g1": {"mate"}},
	}
	svc := newConstraintService(placements, groups, now)

	denial, err := svc.Check(context.Background(), "student", 9)
	require.NoError(t, err)
	assert.Nil(t, denial)
}

func TestCheckHonorsMinDistance(t *testing.T) {
	now := at(10, 0)
	placements := &stubPlacementWindow{placements: []models.PlacementDetail{
		placedAt("mate", "329-7", now.Add(-5*time.Minute)),
	}}
	groups := &stubGroupStore{
		features: []models.GroupFeature{{GroupID: "g1", FeatureKey: models.FeatureNonSequential, Enabled: true, MinDistance: 2}},
		members:  map[string][]string{"g1": {"mate"}},
	}
	svc := newConstraintService(placements, groups, now)

	denial, err := svc.Check(context.Background(), "student", 9)
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.NotContains(t, denial.Available, 5)
	assert.Contains(t, denial.Available, 4)
	assert.Contains(t, denial.Available, 10)
}

func TestCheckIgnoresUsersOutsideGroup(t *testing.T) {
	now := at(10, 0)
	placements := &stubPlacementWindow{placements: []models.PlacementDetail{
		placedAt("stranger", "329-7", now.Add(-5*time.Minute)),
	}}
	groups := &stubGroupStore{
		features: []models.GroupFeature{{GroupID: "g1", FeatureKey: models.FeatureNonSequential, Enabled: true}},
		members:  map[string][]string{"g1": {"mate"}},
	}
	svc := newConstraintService(placements, groups, now)

	denial, err := svc.Check(context.Background(), "student", 8)
	require.NoError(t, err)
	assert.Nil(t, denial)
}

func TestCheckNoFeaturesNoDenial(t *testing.T) {
	now := at(10, 0)
	placements := &stubPlacementWindow{placements: []models.PlacementDetail{
		placedAt("mate", "329-7", now.Add(-5*time.Minute)),
	}}
	groups := &stubGroupStore{}
	svc := newConstraintService(placements, groups, now)

	denial, err := svc.Check(context.Background(), "student", 8)
	require.NoError(t, err)
	assert.Nil(t, denial)
}

func TestCheckHomeroomUsesFloatingWindow(t *testing.T) {
	now := at(8, 15) // slot 0
	placements := &stubPlacementWindow{placements: []models.PlacementDetail{
		placedAt("mate", "5", now.Add(-90*time.Minute)),
	}}
	groups := &stubGroupStore{
		features: []models.GroupFeature{{GroupID: "g1", FeatureKey: models.FeatureNonSequential, Enabled: true}},
		members:  map[string][]string{"g1": {"mate"}},
	}
	svc := newConstraintService(placements, groups, now)

	denial, err := svc.Check(context.Background(), "student", 5)
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, now.Add(-2*time.Hour), placements.from)
	assert.Equal(t, now.Add(2*time.Hour), placements.to)
}
