package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sofra.link/models"
)

func makeParty(id uint, headcount int, pref *models.Course) models.Party {
	return models.Party{
		BaseModel:        models.BaseModel{ID: id},
		Name:             "Parti",
		Headcount:        headcount,
		CoursePreference: pref,
	}
}

func makeParties(n int) []models.Party {
	parties := make([]models.Party, 0, n)
	for i := 1; i <= n; i++ {
		parties = append(parties, makeParty(uint(i), 2, nil))
	}
	return parties
}

func coursePtr(c models.Course) *models.Course { return &c }

func TestAssignCourses_SixPartiesBalanced(t *testing.T) {
	result, err := AssignCourses(makeParties(6), 6)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 6)

	perCourse := map[models.Course]int{}
	seen := map[uint]bool{}
	for _, a := range result.Assignments {
		assert.True(t, a.IsHost)
		assert.Equal(t, 6, a.MaxGuestHeadcount)
		assert.False(t, seen[a.PartyID], "her parti tam olarak bir etaba atanmalı")
		seen[a.PartyID] = true
		perCourse[a.Course]++
	}
	for _, c := range models.AllCourses() {
		assert.Equal(t, 2, perCourse[c], "6 parti 2/2/2 dağılmalı")
	}
}

func TestAssignCourses_TooFewParties(t *testing.T) {
	_, err := AssignCourses(makeParties(2), 6)
	assert.ErrorIs(t, err, ErrTooFewParties)
}

func TestAssignCourses_CancelledPartiesIgnored(t *testing.T) {
	parties := makeParties(4)
	parties[3].IsCancelled = true

	result, err := AssignCourses(parties, 6)
	require.NoError(t, err)
	assert.Len(t, result.Assignments, 3)
	for _, a := range result.Assignments {
		assert.NotEqual(t, parties[3].ID, a.PartyID)
	}
}

func TestAssignCourses_PreferenceHonored(t *testing.T) {
	parties := makeParties(6)
	parties[0].CoursePreference = coursePtr(models.CourseDessert)
	parties[1].CoursePreference = coursePtr(models.CourseStarter)

	result, err := AssignCourses(parties, 6)
	require.NoError(t, err)

	byParty := map[uint]models.Course{}
	for _, a := range result.Assignments {
		byParty[a.PartyID] = a.Course
	}
	assert.Equal(t, models.CourseDessert, byParty[1])
	assert.Equal(t, models.CourseStarter, byParty[2])
	assert.Equal(t, 1.0, result.Stats.PreferenceSatisfaction)
	assert.Empty(t, result.Warnings)
}

func TestAssignCourses_PreferenceOverflowSpills(t *testing.T) {
	// 6 parti, hepsi tatlı istiyor: hedef+1 = 3 yerleşir, kalanlar dağıtılır.
	// Dağıtım 2/1/3 ile bitebildiği için tek ev sahipli etabın 5 misafir
	// partisini (10 kişi) alabilmesi gerekir; koltuk sınırı ona göre geniş.
	parties := makeParties(6)
	for i := range parties {
		parties[i].CoursePreference = coursePtr(models.CourseDessert)
	}

	result, err := AssignCourses(parties, 10)
	require.NoError(t, err)

	perCourse := map[models.Course]int{}
	for _, a := range result.Assignments {
		perCourse[a.Course]++
	}
	assert.Equal(t, 3, perCourse[models.CourseDessert])
	assert.Equal(t, 6, perCourse[models.CourseStarter]+perCourse[models.CourseMain]+perCourse[models.CourseDessert])
	assert.InDelta(t, 0.5, result.Stats.PreferenceSatisfaction, 0.001)

	// Memnuniyet %80 altı: tercih uyarısı raporlanır
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningPreference, result.Warnings[0].Kind)
}

func TestAssignCourses_InsufficientCapacityFatal(t *testing.T) {
	// Koltuk başına 2 kişi: 9 partili etapta 3 ev sahibi x 2 koltuk = 6 kapasite,
	// talep 6 misafir partisi x 2 kişi = 12. Bütün işlem reddedilmeli.
	_, err := AssignCourses(makeParties(9), 2)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
}

func TestAssignCourses_CapacityStatsReported(t *testing.T) {
	result, err := AssignCourses(makeParties(6), 6)
	require.NoError(t, err)
	for _, c := range models.AllCourses() {
		assert.Equal(t, 12, result.Stats.CapacityPerCourse[c])
	}
}
