package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sofra.link/models"
	"sofra.link/repositories"
)

func TestEventTimesSurviveRoundTrip(t *testing.T) {
	// Zaman sütunları sürücüden bağımsız time.Time olarak okunabilmeli;
	// testler SQLite, üretim Postgres kullanır.
	db := setupTestDB(t)
	event, _ := seedTestEvent(t, db)

	eventRepo := repositories.NewEventRepositoryTx(db)
	loaded, err := eventRepo.FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Detail.EventDate.Equal(event.Detail.EventDate))
	assert.True(t, loaded.Detail.StarterAt.Equal(event.Detail.StarterAt))
	assert.True(t, loaded.Detail.MainAt.Equal(event.Detail.MainAt))
	assert.True(t, loaded.Detail.DessertAt.Equal(event.Detail.DessertAt))
}

func TestRunFullMatch_PersistsPlan(t *testing.T) {
	db := setupTestDB(t)
	event, _ := seedTestEvent(t, db)
	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(42)))
	ctx := context.Background()

	plan, report, err := svc.RunFullMatch(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, plan)
	require.NotNil(t, report)

	assert.NotEmpty(t, plan.Key)
	assert.Equal(t, 1, plan.Version)
	assert.Equal(t, models.PlanStatusDraft, plan.Status)

	details, err := svc.GetPlanDetails(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, details.Assignments, 6)
	assert.Len(t, details.Pairings, 12)
	assert.Len(t, details.Envelopes, 18)

	// Her zarf plana damgalanmış ve public anahtar almış olmalı
	keys := map[string]bool{}
	for _, e := range details.Envelopes {
		assert.Equal(t, plan.ID, e.PlanID)
		assert.NotEmpty(t, e.Key)
		assert.False(t, keys[e.Key], "zarf anahtarları benzersiz olmalı")
		keys[e.Key] = true
	}
}

func TestRunFullMatch_DisabledEventRejected(t *testing.T) {
	db := setupTestDB(t)
	event, _ := seedTestEvent(t, db)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).Update("is_enabled", false).Error)

	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(1)))
	_, _, err := svc.RunFullMatch(context.Background(), event.ID)
	assert.ErrorIs(t, err, ErrMatchEventDisabled)
}

func TestRunFullMatch_TooFewParties(t *testing.T) {
	db := setupTestDB(t)
	event, parties := seedTestEvent(t, db)
	for _, p := range parties[2:] {
		require.NoError(t, db.Model(&models.Party{}).Where("id = ?", p.ID).Update("is_cancelled", true).Error)
	}

	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(1)))
	_, _, err := svc.RunFullMatch(context.Background(), event.ID)
	assert.Error(t, err)

	// Başarısız çalıştırma hiçbir plan bırakmamalı
	var count int64
	require.NoError(t, db.Model(&models.MatchPlan{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPublishPlan_SupersedesOthers(t *testing.T) {
	db := setupTestDB(t)
	event, _ := seedTestEvent(t, db)
	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(42)))
	ctx := context.Background()

	first, _, err := svc.RunFullMatch(ctx, event.ID)
	require.NoError(t, err)
	second, _, err := svc.RunFullMatch(ctx, event.ID)
	require.NoError(t, err)

	require.NoError(t, svc.PublishPlan(ctx, second.ID))

	planRepo := repositories.NewPlanRepositoryTx(db)
	published, err := planRepo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusPublished, published.Status)

	superseded, err := planRepo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusSuperseded, superseded.Status)

	// Geçersiz kılınmış plan üzerinde işlem reddedilir
	err = svc.PublishPlan(ctx, first.ID)
	assert.ErrorIs(t, err, ErrMatchPlanSuperseded)
}

func TestRunRematch_PreservesFrozenCourse(t *testing.T) {
	db := setupTestDB(t)
	event, _ := seedTestEvent(t, db)
	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(42)))
	ctx := context.Background()

	plan, _, err := svc.RunFullMatch(ctx, event.ID)
	require.NoError(t, err)

	pairRepo := repositories.NewPairingRepositoryTx(db)
	before, err := pairRepo.FindByPlanAndCourses(ctx, plan.ID, []models.Course{models.CourseStarter})
	require.NoError(t, err)
	require.NotEmpty(t, before)

	report, err := svc.RunRematch(ctx, plan.ID, []models.Course{models.CourseStarter})
	require.NoError(t, err)
	require.NotNil(t, report.StepB)

	after, err := pairRepo.FindByPlanAndCourses(ctx, plan.ID, []models.Course{models.CourseStarter})
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after), "dondurulmuş etap pairingleri korunmalı")

	// Açık etaplar yeniden üretilmiş olmalı
	open, err := pairRepo.FindByPlanAndCourses(ctx, plan.ID, []models.Course{models.CourseMain, models.CourseDessert})
	require.NoError(t, err)
	assert.Len(t, open, 8)

	// Versiyon artmış olmalı
	planRepo := repositories.NewPlanRepositoryTx(db)
	reloaded, err := planRepo.FindByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.Version+1, reloaded.Version)
}

func TestRunRematch_InvalidFrozenCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(1)))
	_, err := svc.RunRematch(context.Background(), 1, []models.Course{"brunch"})
	assert.ErrorIs(t, err, ErrMatchInvalidFrozenSet)
}

func TestRefreshEnvelopeSchedules_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	event, _ := seedTestEvent(t, db)
	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(42)))
	ctx := context.Background()

	plan, _, err := svc.RunFullMatch(ctx, event.ID)
	require.NoError(t, err)

	updated, err := svc.RefreshEnvelopeSchedules(ctx, plan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 18, updated)

	envRepo := repositories.NewEnvelopeRepositoryTx(db)
	first, err := envRepo.FindActiveByPlan(ctx, plan.ID)
	require.NoError(t, err)

	_, err = svc.RefreshEnvelopeSchedules(ctx, plan.ID)
	require.NoError(t, err)
	second, err := envRepo.FindActiveByPlan(ctx, plan.ID)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].OpensAt.Equal(second[i].OpensAt))
		assert.True(t, first[i].TeasingAt.Equal(second[i].TeasingAt))
	}
}

func TestRefreshEnvelopeSchedules_PicksUpOverride(t *testing.T) {
	db := setupTestDB(t)
	event, _ := seedTestEvent(t, db)
	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(42)))
	ctx := context.Background()

	plan, _, err := svc.RunFullMatch(ctx, event.ID)
	require.NoError(t, err)

	// Tatlı etabı için teasing süresi ezilir, ardından yenileme çalıştırılır
	lead := 300
	override := models.CourseTimingOverride{
		EventID:        event.ID,
		Course:         models.CourseDessert,
		TeasingLeadMin: &lead,
	}
	require.NoError(t, db.Create(&override).Error)

	_, err = svc.RefreshEnvelopeSchedules(ctx, plan.ID)
	require.NoError(t, err)

	envRepo := repositories.NewEnvelopeRepositoryTx(db)
	envelopes, err := envRepo.FindActiveByPlan(ctx, plan.ID)
	require.NoError(t, err)
	for _, e := range envelopes {
		if e.Course == models.CourseDessert {
			expected := event.Detail.DessertAt.Add(-300 * time.Minute)
			assert.True(t, e.TeasingAt.Equal(expected), "override yenilemede uygulanmalı")
		}
	}
}

func TestBumpVersion_Conflict(t *testing.T) {
	db := setupTestDB(t)
	event, _ := seedTestEvent(t, db)
	svc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(42)))
	ctx := context.Background()

	plan, _, err := svc.RunFullMatch(ctx, event.ID)
	require.NoError(t, err)

	planRepo := repositories.NewPlanRepositoryTx(db)
	require.NoError(t, planRepo.BumpVersion(ctx, plan.ID, plan.Version))

	// Bayat sürümle ikinci artırma reddedilir
	err = planRepo.BumpVersion(ctx, plan.ID, plan.Version)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)
}
