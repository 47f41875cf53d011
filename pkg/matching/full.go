package matching

import (
	"math/rand"

	"sofra.link/models"
)

// RunFullMatch tam eşleştirmeyi uçtan uca çalıştırır: Adım A (etap ataması)
// ve ardından Adım B (misafir-ev sahibi eşleştirmesi). Saf bir hesaplamadır;
// kalıcılaştırma çağıranın işidir.
func RunFullMatch(cfg PlanConfig, parties []models.Party, blocked []models.BlockedPair, rng *rand.Rand) (*StepAResult, *StepBResult, error) {
	stepA, err := AssignCourses(parties, cfg.SeatsPerHost)
	if err != nil {
		return nil, nil, err
	}

	stepB, err := MatchGuests(MatchInput{
		Assignments:  stepA.Assignments,
		Parties:      parties,
		BlockedPairs: blocked,
		Config:       cfg,
		Rand:         rng,
	})
	if err != nil {
		return stepA, nil, err
	}

	return stepA, stepB, nil
}
