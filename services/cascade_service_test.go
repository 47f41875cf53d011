package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sofra.link/models"
)

type cascadeFixture struct {
	ctx      context.Context
	db       *gorm.DB
	svc      *CascadeService
	matchSvc *MatchService
	plan     *models.MatchPlan
	parties  []models.Party
}

// setupCascade tam eşleştirilmiş ve yayınlanmış bir plan üzerinde çalışan
// bir kaskad servisi kurar.
func setupCascade(t *testing.T) *cascadeFixture {
	t.Helper()
	db := setupTestDB(t)
	event, parties := seedTestEvent(t, db)

	matchSvc := NewMatchServiceWith(db, nil, rand.New(rand.NewSource(42)))
	ctx := context.Background()
	plan, _, err := matchSvc.RunFullMatch(ctx, event.ID)
	require.NoError(t, err)
	require.NoError(t, matchSvc.PublishPlan(ctx, plan.ID))

	return &cascadeFixture{
		ctx:      ctx,
		db:       db,
		svc:      NewCascadeServiceWith(db, nil),
		matchSvc: matchSvc,
		plan:     plan,
		parties:  parties,
	}
}

func (f *cascadeFixture) details(t *testing.T) *PlanDetails {
	t.Helper()
	details, err := f.matchSvc.GetPlanDetails(f.ctx, f.plan.ID)
	require.NoError(t, err)
	return details
}

// hostedCourse partinin ev sahipliği yaptığı etabı döner.
func (f *cascadeFixture) hostedCourse(t *testing.T, partyID uint) models.Course {
	t.Helper()
	for _, a := range f.details(t).Assignments {
		if a.PartyID == partyID {
			return a.Course
		}
	}
	t.Fatalf("parti %d hiçbir etaba ev sahibi değil", partyID)
	return ""
}

// courseHosts etabın ev sahiplerini küme olarak döner.
func (f *cascadeFixture) courseHosts(t *testing.T, course models.Course) map[uint]bool {
	t.Helper()
	hosts := map[uint]bool{}
	for _, a := range f.details(t).Assignments {
		if a.Course == course {
			hosts[a.PartyID] = true
		}
	}
	return hosts
}

func TestCascade_ValidationErrorsReported(t *testing.T) {
	f := setupCascade(t)

	result, err := f.svc.Apply(f.ctx, f.plan.ID, AddressChange{PartyID: 0, Street: ""})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 2)

	// Doğrulama başarısızlığı plan sürümüne dokunmamalı
	var plan models.MatchPlan
	require.NoError(t, f.db.First(&plan, f.plan.ID).Error)
	assert.Equal(t, f.plan.Version, plan.Version)
}

func TestCascade_EachMutationBumpsVersion(t *testing.T) {
	f := setupCascade(t)

	result, err := f.svc.Apply(f.ctx, f.plan.ID, GuestDropout{PartyID: f.parties[5].ID})
	require.NoError(t, err)
	require.True(t, result.Success)

	var plan models.MatchPlan
	require.NoError(t, f.db.First(&plan, f.plan.ID).Error)
	assert.Equal(t, f.plan.Version+1, plan.Version)
}

func TestCascade_GuestDropout(t *testing.T) {
	f := setupCascade(t)
	victim := f.parties[0]

	result, err := f.svc.Apply(f.ctx, f.plan.ID, GuestDropout{PartyID: victim.ID})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 3, result.EnvelopesCancelled, "partinin üç zarfı da iptal edilmeli")
	assert.EqualValues(t, 2, result.PairingsRemoved, "iki misafir pairingi silinmeli")
	assert.Empty(t, result.UnplacedPartyIDs)

	// Misafir tarafı temizlenir; ev sahipliği kaydı ayrı bir kaskadla ele alınır
	for _, p := range f.details(t).Pairings {
		assert.NotEqual(t, victim.ID, p.GuestPartyID)
	}
}

func TestCascade_HostDropout(t *testing.T) {
	f := setupCascade(t)
	victim := f.parties[0]
	course := f.hostedCourse(t, victim.ID)

	// Kurbanın sofrasındaki misafirler yersiz kalmalı
	expected := map[uint]bool{}
	for _, p := range f.details(t).Pairings {
		if p.Course == course && p.HostPartyID == victim.ID {
			expected[p.GuestPartyID] = true
		}
	}
	require.NotEmpty(t, expected)

	result, err := f.svc.Apply(f.ctx, f.plan.ID, HostDropout{PartyID: victim.ID})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 1, result.AssignmentsRemoved)

	assert.Len(t, result.UnplacedPartyIDs, len(expected))
	for _, id := range result.UnplacedPartyIDs {
		assert.True(t, expected[id])
	}

	// Kurbanı referans eden hiçbir aktif kayıt kalmamalı
	after := f.details(t)
	for _, p := range after.Pairings {
		assert.NotEqual(t, victim.ID, p.HostPartyID)
		assert.NotEqual(t, victim.ID, p.GuestPartyID)
	}
	for _, e := range after.Envelopes {
		if e.PartyID == victim.ID || e.HostPartyID == victim.ID {
			assert.Equal(t, models.EnvelopeStatusCancelled, e.Status)
		}
	}
}

func TestCascade_ResignHostKeepsGuestSide(t *testing.T) {
	f := setupCascade(t)
	victim := f.parties[1]

	result, err := f.svc.Apply(f.ctx, f.plan.ID, ResignHost{PartyID: victim.ID})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 1, result.AssignmentsRemoved)
	assert.NotEmpty(t, result.UnplacedPartyIDs)

	guestPairings := 0
	for _, p := range f.details(t).Pairings {
		assert.NotEqual(t, victim.ID, p.HostPartyID)
		if p.GuestPartyID == victim.ID {
			guestPairings++
		}
	}
	assert.Equal(t, 2, guestPairings, "misafir tarafı dokunulmamalı")
}

func TestCascade_AddressChange(t *testing.T) {
	f := setupCascade(t)
	host := f.parties[2]

	result, err := f.svc.Apply(f.ctx, f.plan.ID, AddressChange{
		PartyID:     host.ID,
		Street:      "Yeni Mahalle Sokak",
		HouseNumber: "99",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 3, result.EnvelopesUpdated, "ev sahibi zarfı + sofradaki iki misafir zarfı")
	assert.Zero(t, result.PairingsRemoved, "pairingler dokunulmamalı")

	for _, e := range f.details(t).Envelopes {
		if e.HostPartyID == host.ID && e.Status == models.EnvelopeStatusActive {
			assert.Equal(t, "Yeni Mahalle Sokak", e.DestStreet)
			assert.Equal(t, "99", e.DestHouseNumber)
		}
	}

	var party models.Party
	require.NoError(t, f.db.First(&party, host.ID).Error)
	assert.Equal(t, "Yeni Mahalle Sokak", party.Street)
}

func TestCascade_Reassign(t *testing.T) {
	f := setupCascade(t)

	var guestID, oldHostID, newHostID uint
	for _, p := range f.details(t).Pairings {
		if p.Course == models.CourseStarter {
			guestID, oldHostID = p.GuestPartyID, p.HostPartyID
			break
		}
	}
	for id := range f.courseHosts(t, models.CourseStarter) {
		if id != oldHostID {
			newHostID = id
		}
	}
	require.NotZero(t, newHostID)
	require.NoError(t, f.db.Model(&models.Party{}).
		Where("id = ?", newHostID).Update("street", "Moda Caddesi").Error)

	result, err := f.svc.Apply(f.ctx, f.plan.ID, Reassign{
		PartyID:        guestID,
		Course:         models.CourseStarter,
		NewHostPartyID: newHostID,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 1, result.PairingsRemoved)
	assert.EqualValues(t, 1, result.PairingsCreated)
	assert.EqualValues(t, 1, result.EnvelopesCreated, "yeni ev sahibine işaret eden zarf üretilmeli")

	after := f.details(t)
	found := false
	for _, p := range after.Pairings {
		if p.Course == models.CourseStarter && p.GuestPartyID == guestID {
			assert.Equal(t, newHostID, p.HostPartyID)
			found = true
		}
	}
	assert.True(t, found)

	// Misafirin başlangıç etabında tam olarak bir aktif zarfı olmalı ve yeni
	// ev sahibinin adresini taşımalı
	var newHost models.Party
	require.NoError(t, f.db.First(&newHost, newHostID).Error)
	activeEnvelopes := 0
	for _, e := range after.Envelopes {
		if e.PartyID == guestID && e.Course == models.CourseStarter && e.Status == models.EnvelopeStatusActive {
			activeEnvelopes++
			assert.Equal(t, newHostID, e.HostPartyID)
			assert.Equal(t, newHost.Street, e.DestStreet)
			assert.NotEmpty(t, e.Key)
		}
	}
	assert.Equal(t, 1, activeEnvelopes)
}

func TestCascade_ReassignToNonHostRejected(t *testing.T) {
	f := setupCascade(t)

	hosts := f.courseHosts(t, models.CourseStarter)
	var guestID, nonHostID uint
	for _, p := range f.parties {
		if hosts[p.ID] {
			continue
		}
		if guestID == 0 {
			guestID = p.ID
		} else if nonHostID == 0 {
			nonHostID = p.ID
		}
	}
	require.NotZero(t, nonHostID)

	result, err := f.svc.Apply(f.ctx, f.plan.ID, Reassign{
		PartyID:        guestID,
		Course:         models.CourseStarter,
		NewHostPartyID: nonHostID,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestCascade_TransferHost(t *testing.T) {
	f := setupCascade(t)
	from := f.parties[0]
	course := f.hostedCourse(t, from.ID)

	hosts := f.courseHosts(t, course)
	var to models.Party
	for _, p := range f.parties {
		if !hosts[p.ID] {
			to = p
			break
		}
	}
	require.NotZero(t, to.ID)

	result, err := f.svc.Apply(f.ctx, f.plan.ID, TransferHost{
		FromPartyID: from.ID,
		ToPartyID:   to.ID,
		Courses:     []models.Course{course},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 1, result.AssignmentsRemoved)
	assert.EqualValues(t, 1, result.AssignmentsCreated)
	assert.EqualValues(t, 1, result.EnvelopesCreated, "devralan için ev sahibi zarfı")

	after := f.details(t)
	for _, a := range after.Assignments {
		if a.Course == course {
			assert.NotEqual(t, from.ID, a.PartyID)
		}
	}
	for _, p := range after.Pairings {
		if p.Course == course {
			assert.NotEqual(t, from.ID, p.HostPartyID, "sofra devralana yönlenmeli")
		}
	}
	for _, e := range after.Envelopes {
		if e.Course != course || e.Status != models.EnvelopeStatusActive {
			continue
		}
		assert.NotEqual(t, from.ID, e.HostPartyID, "devredenin sofrası boşalmış olmalı")
		if e.HostPartyID == to.ID && !e.IsHost {
			assert.Equal(t, to.Street, e.DestStreet)
		}
	}
}

func TestCascade_TransferSingleCourseKeepsOtherHostEnvelope(t *testing.T) {
	f := setupCascade(t)

	// Bir ev sahibi çekilir; yersizlerden biri o etaba terfi eder ve artık
	// iki etapta birden ev sahibidir
	victim := f.parties[0]
	droppedCourse := f.hostedCourse(t, victim.ID)
	dropout, err := f.svc.Apply(f.ctx, f.plan.ID, HostDropout{PartyID: victim.ID})
	require.NoError(t, err)
	require.Len(t, dropout.UnplacedPartyIDs, 2)

	promoted := dropout.UnplacedPartyIDs[0]
	other := dropout.UnplacedPartyIDs[1]
	originalCourse := f.hostedCourse(t, promoted)
	require.NotEqual(t, droppedCourse, originalCourse)

	promote, err := f.svc.Apply(f.ctx, f.plan.ID, PromoteHost{
		PartyID:       promoted,
		Course:        droppedCourse,
		GuestPartyIDs: []uint{other},
	})
	require.NoError(t, err)
	require.True(t, promote.Success)

	// Yalnızca devredilen etabın zarfı iptal edilmeli; ilk etabın "ev
	// sahibisin" zarfı aktif kalmalı
	transfer, err := f.svc.Apply(f.ctx, f.plan.ID, TransferHost{
		FromPartyID: promoted,
		ToPartyID:   other,
		Courses:     []models.Course{droppedCourse},
	})
	require.NoError(t, err)
	require.True(t, transfer.Success)

	activeByCourse := map[models.Course]int{}
	for _, e := range f.details(t).Envelopes {
		if e.PartyID == promoted && e.IsHost && e.Status == models.EnvelopeStatusActive {
			activeByCourse[e.Course]++
		}
	}
	assert.Equal(t, 1, activeByCourse[originalCourse], "ilk etabın ev sahibi zarfı korunmalı")
	assert.Zero(t, activeByCourse[droppedCourse], "devredilen etabın zarfı iptal edilmeli")
}

func TestCascade_PromoteHostWithGuests(t *testing.T) {
	f := setupCascade(t)

	// Önce bir ev sahibi çekilir ve sofrasındaki misafirler yersiz kalır
	victim := f.parties[0]
	course := f.hostedCourse(t, victim.ID)
	dropout, err := f.svc.Apply(f.ctx, f.plan.ID, HostDropout{PartyID: victim.ID})
	require.NoError(t, err)
	require.NotEmpty(t, dropout.UnplacedPartyIDs)

	// Yersizlerden biri ev sahipliğine terfi eder, kalanlar ona oturtulur
	promoted := dropout.UnplacedPartyIDs[0]
	rest := dropout.UnplacedPartyIDs[1:]

	result, err := f.svc.Apply(f.ctx, f.plan.ID, PromoteHost{
		PartyID:       promoted,
		Course:        course,
		GuestPartyIDs: rest,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.EqualValues(t, 1, result.AssignmentsCreated)
	assert.EqualValues(t, int64(1+len(rest)), result.EnvelopesCreated)
	assert.EqualValues(t, int64(len(rest)), result.PairingsCreated)

	hostAgain := false
	for _, a := range f.details(t).Assignments {
		if a.PartyID == promoted && a.Course == course {
			hostAgain = true
		}
	}
	assert.True(t, hostAgain)
}

func TestCascade_PromoteExistingHostRejected(t *testing.T) {
	f := setupCascade(t)
	host := f.parties[0]
	course := f.hostedCourse(t, host.ID)

	result, err := f.svc.Apply(f.ctx, f.plan.ID, PromoteHost{PartyID: host.ID, Course: course})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestCascade_SplitParty(t *testing.T) {
	f := setupCascade(t)
	original := f.parties[3]

	result, err := f.svc.Apply(f.ctx, f.plan.ID, SplitParty{
		PartyID: original.ID,
		NewName: "Arslan (ikinci hane)",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.UnplacedPartyIDs, 1)

	var updated models.Party
	require.NoError(t, f.db.First(&updated, original.ID).Error)
	assert.Equal(t, 1, updated.Headcount)

	var fresh models.Party
	require.NoError(t, f.db.First(&fresh, result.UnplacedPartyIDs[0]).Error)
	assert.Equal(t, "Arslan (ikinci hane)", fresh.Name)
	assert.Equal(t, 1, fresh.Headcount)
	assert.Equal(t, original.EventID, fresh.EventID)

	// Aynı evi paylaşan hane: adresle birlikte ipucu metinleri de kopyalanır
	assert.Equal(t, original.Street, fresh.Street)
	assert.Equal(t, original.HouseNumber, fresh.HouseNumber)
	assert.Equal(t, original.Teasing, fresh.Teasing)
	assert.Equal(t, original.Clue1, fresh.Clue1)
	assert.Equal(t, original.Clue2, fresh.Clue2)
}

func TestCascade_SplitSingletonRejected(t *testing.T) {
	f := setupCascade(t)
	single := f.parties[4]
	require.NoError(t, f.db.Model(&models.Party{}).
		Where("id = ?", single.ID).Update("headcount", 1).Error)

	result, err := f.svc.Apply(f.ctx, f.plan.ID, SplitParty{
		PartyID: single.ID,
		NewName: "Bölünemez",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestCascade_SupersededPlanRejected(t *testing.T) {
	f := setupCascade(t)

	// Yeni plan yayınlanınca eskisi geçersiz kalır
	second, _, err := f.matchSvc.RunFullMatch(f.ctx, f.plan.EventID)
	require.NoError(t, err)
	require.NoError(t, f.matchSvc.PublishPlan(f.ctx, second.ID))

	_, err = f.svc.Apply(f.ctx, f.plan.ID, GuestDropout{PartyID: f.parties[0].ID})
	assert.ErrorIs(t, err, ErrMatchPlanSuperseded)
}
