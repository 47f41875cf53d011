package matching

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sofra.link/models"
)

func testConfig() PlanConfig {
	base := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	return PlanConfig{
		SeatsPerHost: 6,
		CourseStarts: map[models.Course]time.Time{
			models.CourseStarter: base,
			models.CourseMain:    base.Add(2 * time.Hour),
			models.CourseDessert: base.Add(4 * time.Hour),
		},
		Timing: TimingConfig{
			TeasingLeadMin:     240,
			Clue1LeadMin:       120,
			Clue2LeadMin:       60,
			StreetLeadMin:      30,
			HouseNumberLeadMin: 15,
		},
		Travel: NoTravel{},
	}
}

// sixPartyInput altı partili standart girdi: her etapta iki ev sahibi.
func sixPartyInput(t *testing.T, seed int64) MatchInput {
	t.Helper()
	parties := makeParties(6)
	stepA, err := AssignCourses(parties, 6)
	require.NoError(t, err)
	return MatchInput{
		Assignments: stepA.Assignments,
		Parties:     parties,
		Config:      testConfig(),
		Rand:        rand.New(rand.NewSource(seed)),
	}
}

func TestMatchGuests_SixPartyFullPlacement(t *testing.T) {
	result, err := MatchGuests(sixPartyInput(t, 42))
	require.NoError(t, err)

	// Her etapta 4 misafir partisi oturur: 12 pairing
	assert.Len(t, result.Pairings, 12)

	// Parti başına 3 zarf (2 misafir + 1 ev sahibi): 18 zarf
	assert.Len(t, result.Envelopes, 18)
	perParty := map[uint]int{}
	hostEnvs := 0
	for _, e := range result.Envelopes {
		perParty[e.PartyID]++
		if e.IsHost {
			hostEnvs++
			assert.Equal(t, e.PartyID, e.HostPartyID)
		}
	}
	assert.Equal(t, 6, hostEnvs)
	for id, count := range perParty {
		assert.Equalf(t, 3, count, "parti %d her etap için bir zarf almalı", id)
	}

	// Kapasite uyarısı olmamalı: herkes yerleşti
	for _, w := range result.Warnings {
		assert.NotEqual(t, WarningCapacity, w.Kind)
	}
	assert.Equal(t, 6, result.Stats.MatchedParties)
}

func TestMatchGuests_NoSelfHosting(t *testing.T) {
	result, err := MatchGuests(sixPartyInput(t, 7))
	require.NoError(t, err)
	for _, p := range result.Pairings {
		assert.NotEqual(t, p.HostPartyID, p.GuestPartyID)
	}
}

func TestMatchGuests_BlockedPairNeverSeated(t *testing.T) {
	in := sixPartyInput(t, 11)
	in.BlockedPairs = []models.BlockedPair{{PartyAID: 1, PartyBID: 2}}

	result, err := MatchGuests(in)
	require.NoError(t, err)

	// Engelli çift ne ev sahibi-misafir ne de aynı sofrada misafir-misafir
	// olarak buluşmamalı.
	type table struct {
		course models.Course
		host   uint
	}
	tables := map[table][]uint{}
	for _, p := range result.Pairings {
		key := table{p.Course, p.HostPartyID}
		tables[key] = append(tables[key], p.HostPartyID, p.GuestPartyID)
	}
	for _, members := range tables {
		has1, has2 := false, false
		for _, id := range members {
			if id == 1 {
				has1 = true
			}
			if id == 2 {
				has2 = true
			}
		}
		assert.False(t, has1 && has2, "engelli çift aynı sofrada olmamalı")
	}
}

func TestMatchGuests_SeatCapacityRespected(t *testing.T) {
	in := sixPartyInput(t, 3)
	result, err := MatchGuests(in)
	require.NoError(t, err)

	type table struct {
		course models.Course
		host   uint
	}
	load := map[table]int{}
	headcount := map[uint]int{}
	for _, p := range in.Parties {
		headcount[p.ID] = p.Headcount
	}
	for _, p := range result.Pairings {
		load[table{p.Course, p.HostPartyID}] += headcount[p.GuestPartyID]
	}
	for tbl, used := range load {
		assert.LessOrEqualf(t, used, 6, "sofra %v kapasiteyi aşmamalı", tbl)
	}
}

func TestMatchGuests_DeterministicWithSeed(t *testing.T) {
	first, err := MatchGuests(sixPartyInput(t, 99))
	require.NoError(t, err)
	second, err := MatchGuests(sixPartyInput(t, 99))
	require.NoError(t, err)
	assert.Equal(t, first.Pairings, second.Pairings)
}

func TestMatchGuests_FrozenCourseUntouched(t *testing.T) {
	in := sixPartyInput(t, 5)

	full, err := MatchGuests(in)
	require.NoError(t, err)

	var frozenPairings []models.Pairing
	for _, p := range full.Pairings {
		if p.Course == models.CourseStarter {
			frozenPairings = append(frozenPairings, p)
		}
	}

	in.Rand = rand.New(rand.NewSource(6))
	in.FrozenCourses = []models.Course{models.CourseStarter}
	in.ExistingPairings = frozenPairings

	partial, err := MatchGuests(in)
	require.NoError(t, err)

	for _, p := range partial.Pairings {
		assert.NotEqual(t, models.CourseStarter, p.Course, "dondurulmuş etap için pairing üretilmemeli")
	}
	for _, e := range partial.Envelopes {
		assert.NotEqual(t, models.CourseStarter, e.Course, "dondurulmuş etap için zarf üretilmemeli")
	}
}

func TestMatchGuests_RepeatMeetingsReported(t *testing.T) {
	// 6 parti, 6 buluşma slotu, 5 olası eş: tatlı etabında tekrar kaçınılmaz.
	// Tekrarlar misafiri açıkta bırakmak yerine unique_meeting uyarısı olur.
	result, err := MatchGuests(sixPartyInput(t, 1))
	require.NoError(t, err)

	for _, w := range result.Warnings {
		assert.NotEqual(t, WarningCapacity, w.Kind, "tekrar gevşetmesi kapasite uyarısına dönüşmemeli")
	}
}

func TestMatchGuests_UnknownCourseRejected(t *testing.T) {
	in := sixPartyInput(t, 2)
	in.Assignments[0].Course = models.Course("brunch")
	_, err := MatchGuests(in)
	assert.ErrorIs(t, err, ErrUnknownCourse)
}

func TestMatchGuests_CancelledHostSkipped(t *testing.T) {
	in := sixPartyInput(t, 8)
	// Başlangıç etabının bir ev sahibi iptal: slotu kurulmamalı, kendisi
	// misafir listesine de girmemeli.
	var cancelledID uint
	for _, a := range in.Assignments {
		if a.Course == models.CourseStarter {
			cancelledID = a.PartyID
			break
		}
	}
	for i := range in.Parties {
		if in.Parties[i].ID == cancelledID {
			in.Parties[i].IsCancelled = true
		}
	}

	result, err := MatchGuests(in)
	require.NoError(t, err)
	for _, p := range result.Pairings {
		assert.NotEqual(t, cancelledID, p.HostPartyID)
		assert.NotEqual(t, cancelledID, p.GuestPartyID)
	}
	for _, e := range result.Envelopes {
		assert.NotEqual(t, cancelledID, e.PartyID)
	}
}

func TestRunFullMatch_SixPartyScenario(t *testing.T) {
	parties := makeParties(6)
	cfg := testConfig()

	stepA, stepB, err := RunFullMatch(cfg, parties, nil, rand.New(rand.NewSource(13)))
	require.NoError(t, err)
	assert.Len(t, stepA.Assignments, 6)
	assert.Len(t, stepB.Pairings, 12)
	assert.Len(t, stepB.Envelopes, 18)
	for _, w := range stepB.Warnings {
		assert.NotEqual(t, WarningCapacity, w.Kind)
	}
}
