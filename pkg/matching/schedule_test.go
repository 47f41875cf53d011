package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC)

func testTiming() TimingConfig {
	return TimingConfig{
		TeasingLeadMin:     240,
		Clue1LeadMin:       120,
		Clue2LeadMin:       60,
		StreetLeadMin:      30,
		HouseNumberLeadMin: 15,
	}
}

func assertMonotonic(t *testing.T, s Schedule) {
	t.Helper()
	times := s.Times()
	for i := 1; i < len(times); i++ {
		assert.Falsef(t, times[i].Before(times[i-1]),
			"aşama %d bir öncekinden erken olmamalı: %v < %v", i, times[i], times[i-1])
	}
}

func TestDeriveSchedule_Basic(t *testing.T) {
	s := DeriveSchedule(testStart, testTiming(), nil, 0)

	assert.Equal(t, testStart, s.OpensAt)
	assert.Equal(t, testStart.Add(-240*time.Minute), s.TeasingAt)
	assert.Equal(t, testStart.Add(-120*time.Minute), s.Clue1At)
	assert.Equal(t, testStart.Add(-60*time.Minute), s.Clue2At)
	assert.Equal(t, testStart.Add(-30*time.Minute), s.StreetAt)
	assert.Equal(t, testStart.Add(-15*time.Minute), s.HouseNumberAt)
	assertMonotonic(t, s)
}

func TestDeriveSchedule_OverrideFieldByField(t *testing.T) {
	street := 90
	override := &TimingOverride{StreetLeadMin: &street}

	s := DeriveSchedule(testStart, testTiming(), override, 0)

	// Yalnızca ezilen alan değişir, diğerleri global değerde kalır
	assert.Equal(t, testStart.Add(-90*time.Minute), s.StreetAt)
	assert.Equal(t, testStart.Add(-240*time.Minute), s.TeasingAt)
	assert.Equal(t, testStart.Add(-15*time.Minute), s.HouseNumberAt)
	assertMonotonic(t, s)
}

func TestDeriveSchedule_TravelPullsAddressEarlier(t *testing.T) {
	s := DeriveSchedule(testStart, testTiming(), nil, 45)

	// 45 dakikalık yol: sokak ve kapı numarası en geç start-45'e çekilir
	latest := testStart.Add(-45 * time.Minute)
	assert.Equal(t, latest, s.StreetAt)
	assert.Equal(t, latest, s.HouseNumberAt)

	// İpucu aşamaları yol süresinden etkilenmez
	assert.Equal(t, testStart.Add(-60*time.Minute), s.Clue2At)
	assertMonotonic(t, s)
}

func TestDeriveSchedule_TravelNeverPushesLater(t *testing.T) {
	// Kısa yol: mevcut lead zaten daha erken, aşamalar geriye itilmemeli
	s := DeriveSchedule(testStart, testTiming(), nil, 5)
	assert.Equal(t, testStart.Add(-30*time.Minute), s.StreetAt)
	assert.Equal(t, testStart.Add(-15*time.Minute), s.HouseNumberAt)
}

func TestDeriveSchedule_InvertedLeadsClamped(t *testing.T) {
	// Ters yapılandırma: teasing en kısa lead ile en geç kalırsa kelepçelenir
	timing := TimingConfig{
		TeasingLeadMin:     10,
		Clue1LeadMin:       120,
		Clue2LeadMin:       60,
		StreetLeadMin:      30,
		HouseNumberLeadMin: 15,
	}
	s := DeriveSchedule(testStart, timing, nil, 0)
	assertMonotonic(t, s)
	assert.Equal(t, s.Clue1At, s.TeasingAt, "teasing kelepçeyle clue1'e eşitlenmeli")
}

func TestDeriveSchedule_Idempotent(t *testing.T) {
	first := DeriveSchedule(testStart, testTiming(), nil, 45)
	second := DeriveSchedule(testStart, testTiming(), nil, 45)
	require.Equal(t, first, second)
}

func TestNewSeed_Varies(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
