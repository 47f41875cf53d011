package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"sofra.link/configs/configsdatabase"
	"sofra.link/configs/configslog"
	"sofra.link/models"
	"sofra.link/pkg/matching"
	"sofra.link/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MatchServiceError özel servis hataları
type MatchServiceError string

func (e MatchServiceError) Error() string { return string(e) }

const (
	ErrMatchPlanNotFound     MatchServiceError = "eşleştirme planı bulunamadı"
	ErrMatchEventDisabled    MatchServiceError = "etkinlik aktif değil"
	ErrMatchPersistFailed    MatchServiceError = "eşleştirme planı kaydedilemedi"
	ErrMatchPlanSuperseded   MatchServiceError = "plan geçersiz kılınmış, üzerinde işlem yapılamaz"
	ErrMatchInvalidFrozenSet MatchServiceError = "geçersiz dondurulmuş etap listesi"
)

// RunReport bir eşleştirme çalıştırmasının çağırana dönen özeti.
type RunReport struct {
	StepA    *matching.StepAResult `json:"step_a,omitempty"`
	StepB    *matching.StepBResult `json:"step_b,omitempty"`
	Warnings []matching.Warning    `json:"warnings"`
}

// PlanDetails bir planın tüm kayıtlarıyla birlikte görünümü.
type PlanDetails struct {
	Plan        models.MatchPlan    `json:"plan"`
	Assignments []models.Assignment `json:"assignments"`
	Pairings    []models.Pairing    `json:"pairings"`
	Envelopes   []models.Envelope   `json:"envelopes"`
}

// IMatchService eşleştirme motorunun kalıcılaştırılmış işlemleri için arayüz.
type IMatchService interface {
	RunFullMatch(ctx context.Context, eventID uint) (*models.MatchPlan, *RunReport, error)
	RunRematch(ctx context.Context, planID uint, frozenCourses []models.Course) (*RunReport, error)
	RefreshEnvelopeSchedules(ctx context.Context, planID uint) (int64, error)
	GetPlanDetails(ctx context.Context, planID uint) (*PlanDetails, error)
	PublishPlan(ctx context.Context, planID uint) error
}

// MatchService IMatchService arayüzünü uygular.
type MatchService struct {
	eventRepo   repositories.IEventRepository
	partyRepo   repositories.IPartyRepository
	blockedRepo repositories.IBlockedPairRepository
	planRepo    repositories.IPlanRepository
	db          *gorm.DB

	// travel mesafe ayarı açık etkinliklerde zarf zamanlamasını öne çekmek
	// için kullanılır; gerçek implementasyon dışarıdan sağlanır.
	travel matching.TravelEstimator

	// rng testlerde deterministik sonuç için enjekte edilir; nil ise her
	// çalıştırma crypto tohumlu yeni bir kaynak kullanır.
	rng *rand.Rand
}

// NewMatchService yeni bir MatchService örneği oluşturur.
func NewMatchService() IMatchService {
	return &MatchService{
		eventRepo:   repositories.NewEventRepository(),
		partyRepo:   repositories.NewPartyRepository(),
		blockedRepo: repositories.NewBlockedPairRepository(),
		planRepo:    repositories.NewPlanRepository(),
		db:          configsdatabase.GetDB(),
		travel:      matching.NoTravel{},
	}
}

// NewMatchServiceWith bağımlılıkları dışarıdan alan kurucu (testler ve özel
// travel tahmincisi için).
func NewMatchServiceWith(db *gorm.DB, travel matching.TravelEstimator, rng *rand.Rand) *MatchService {
	if travel == nil {
		travel = matching.NoTravel{}
	}
	return &MatchService{
		eventRepo:   repositories.NewEventRepositoryTx(db),
		partyRepo:   repositories.NewPartyRepositoryTx(db),
		blockedRepo: repositories.NewBlockedPairRepositoryTx(db),
		planRepo:    repositories.NewPlanRepositoryTx(db),
		db:          db,
		travel:      travel,
		rng:         rng,
	}
}

// engineConfig etkinlikten motor yapılandırmasını kurar.
func (s *MatchService) engineConfig(event *models.Event) matching.PlanConfig {
	cfg := matching.ConfigFromEvent(event.Detail, event.Overrides)
	cfg.Travel = s.travel
	return cfg
}

func (s *MatchService) engineRand() *rand.Rand {
	if s.rng != nil {
		return s.rng
	}
	seed, err := matching.NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RunFullMatch Adım A + Adım B'yi çalıştırır ve sonucu yeni bir plan olarak
// tek transaction içinde kaydeder. Motor hesabı saf kalır; ölümcül motor
// hataları hiçbir durum değişikliği yapmadan döner.
func (s *MatchService) RunFullMatch(ctx context.Context, eventID uint) (*models.MatchPlan, *RunReport, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}
	if !event.IsEnabled {
		return nil, nil, ErrMatchEventDisabled
	}

	parties, err := s.partyRepo.FindAllByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	blocked, err := s.blockedRepo.FindAllByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	cfg := s.engineConfig(event)
	stepA, stepB, err := matching.RunFullMatch(cfg, parties, blocked, s.engineRand())
	if err != nil {
		return nil, nil, err
	}

	plan := models.MatchPlan{
		EventID: eventID,
		Key:     uuid.NewString(),
		Version: 1,
		Status:  models.PlanStatusDraft,
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		planRepoTx := repositories.NewPlanRepositoryTx(tx)
		if err := planRepoTx.Create(ctx, &plan); err != nil {
			return err
		}
		return persistStepResults(ctx, tx, plan.ID, stepA.Assignments, stepB.Pairings, stepB.Envelopes)
	})
	if txErr != nil {
		configslog.Log.Error("RunFullMatch persist failed", zap.Uint("event_id", eventID), zap.Error(txErr))
		return nil, nil, ErrMatchPersistFailed
	}

	report := &RunReport{
		StepA:    stepA,
		StepB:    stepB,
		Warnings: append(append([]matching.Warning{}, stepA.Warnings...), stepB.Warnings...),
	}
	configslog.SLog.Infof("Eşleştirme tamamlandı: plan %s (event %d), %d atama, %d pairing, %d zarf, %d uyarı",
		plan.Key, eventID, len(stepA.Assignments), len(stepB.Pairings), len(stepB.Envelopes), len(report.Warnings))
	return &plan, report, nil
}

// RunRematch yalnızca Adım B'yi yeniden çalıştırır: atamalar sabit tutulur,
// dondurulmuş etapların pairing ve zarfları korunur, kalan etaplar silinip
// yeniden eşleştirilir. Dropout sonrası Adım A'yı bozmadan onarım için
// kullanılır.
func (s *MatchService) RunRematch(ctx context.Context, planID uint, frozenCourses []models.Course) (*RunReport, error) {
	for _, c := range frozenCourses {
		if !c.Valid() {
			return nil, ErrMatchInvalidFrozenSet
		}
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMatchPlanNotFound
		}
		return nil, err
	}
	if plan.Status == models.PlanStatusSuperseded {
		return nil, ErrMatchPlanSuperseded
	}

	event, err := s.eventRepo.FindByID(ctx, plan.EventID)
	if err != nil {
		return nil, err
	}
	parties, err := s.partyRepo.FindAllByEvent(ctx, plan.EventID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedRepo.FindAllByEvent(ctx, plan.EventID)
	if err != nil {
		return nil, err
	}

	frozen := make(map[models.Course]bool, len(frozenCourses))
	for _, c := range frozenCourses {
		frozen[c] = true
	}
	var openCourses []models.Course
	for _, c := range models.AllCourses() {
		if !frozen[c] {
			openCourses = append(openCourses, c)
		}
	}

	var stepB *matching.StepBResult
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		planRepoTx := repositories.NewPlanRepositoryTx(tx)
		pairRepoTx := repositories.NewPairingRepositoryTx(tx)
		envRepoTx := repositories.NewEnvelopeRepositoryTx(tx)
		assignRepoTx := repositories.NewAssignmentRepositoryTx(tx)

		// Aynı plan sürümüne aynı anda tek mutasyon
		if err := planRepoTx.BumpVersion(ctx, plan.ID, plan.Version); err != nil {
			return err
		}

		assignments, err := assignRepoTx.FindByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}
		frozenPairings, err := pairRepoTx.FindByPlanAndCourses(ctx, plan.ID, frozenCourses)
		if err != nil {
			return err
		}

		stepB, err = matching.MatchGuests(matching.MatchInput{
			Assignments:      assignments,
			Parties:          parties,
			BlockedPairs:     blocked,
			FrozenCourses:    frozenCourses,
			ExistingPairings: frozenPairings,
			Config:           s.engineConfig(event),
			Rand:             s.engineRand(),
		})
		if err != nil {
			return err
		}

		if _, err := pairRepoTx.DeleteByPlanAndCourses(ctx, plan.ID, openCourses); err != nil {
			return err
		}
		if _, err := envRepoTx.DeleteByPlanAndCourses(ctx, plan.ID, openCourses); err != nil {
			return err
		}
		return persistStepResults(ctx, tx, plan.ID, nil, stepB.Pairings, stepB.Envelopes)
	})
	if txErr != nil {
		if errors.Is(txErr, repositories.ErrVersionConflict) {
			return nil, txErr
		}
		configslog.Log.Error("RunRematch failed", zap.Uint("plan_id", planID), zap.Error(txErr))
		return nil, fmt.Errorf("%w: %v", ErrMatchPersistFailed, txErr)
	}

	configslog.SLog.Infof("Yeniden eşleştirme tamamlandı: plan %d, dondurulan etaplar %v, %d yeni pairing",
		planID, frozenCourses, len(stepB.Pairings))
	return &RunReport{StepB: stepB, Warnings: stepB.Warnings}, nil
}

// RefreshEnvelopeSchedules planın aktif zarflarının açılış zamanlarını güncel
// etkinlik yapılandırmasından yeniden türetir. Saf türetmenin idempotent
// yeniden çalıştırılmasıdır: zamanlama ayarı veya adres değişikliği sonrası
// çağrılır.
func (s *MatchService) RefreshEnvelopeSchedules(ctx context.Context, planID uint) (int64, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrMatchPlanNotFound
		}
		return 0, err
	}
	event, err := s.eventRepo.FindByID(ctx, plan.EventID)
	if err != nil {
		return 0, err
	}
	parties, err := s.partyRepo.FindAllByEvent(ctx, plan.EventID)
	if err != nil {
		return 0, err
	}
	partyByID := make(map[uint]models.Party, len(parties))
	for _, p := range parties {
		partyByID[p.ID] = p
	}

	cfg := s.engineConfig(event)
	var updated int64
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		envRepoTx := repositories.NewEnvelopeRepositoryTx(tx)
		envelopes, err := envRepoTx.FindActiveByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}
		for i := range envelopes {
			env := &envelopes[i]
			travelMinutes := 0
			if !env.IsHost {
				guest, gOK := partyByID[env.PartyID]
				host, hOK := partyByID[env.HostPartyID]
				if gOK && hOK && cfg.DistanceAdjust && cfg.Travel != nil {
					travelMinutes = cfg.Travel.TravelMinutes(guest, host)
				}
			}
			schedule := matching.DeriveSchedule(cfg.CourseStarts[env.Course], cfg.Timing, overridePtr(cfg, env.Course), travelMinutes)
			schedule.ApplyTo(env)
			if err := envRepoTx.Save(ctx, env); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if txErr != nil {
		configslog.Log.Error("RefreshEnvelopeSchedules failed", zap.Uint("plan_id", planID), zap.Error(txErr))
		return 0, txErr
	}
	return updated, nil
}

// GetPlanDetails planı tüm kayıtlarıyla getirir.
func (s *MatchService) GetPlanDetails(ctx context.Context, planID uint) (*PlanDetails, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMatchPlanNotFound
		}
		return nil, err
	}

	assignRepo := repositories.NewAssignmentRepositoryTx(s.db)
	pairRepo := repositories.NewPairingRepositoryTx(s.db)
	envRepo := repositories.NewEnvelopeRepositoryTx(s.db)

	assignments, err := assignRepo.FindByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	pairings, err := pairRepo.FindByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	envelopes, err := envRepo.FindByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	return &PlanDetails{Plan: *plan, Assignments: assignments, Pairings: pairings, Envelopes: envelopes}, nil
}

// PublishPlan planı yayınlar ve etkinliğin önceki planlarını geçersiz kılar.
func (s *MatchService) PublishPlan(ctx context.Context, planID uint) error {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMatchPlanNotFound
		}
		return err
	}
	if plan.Status == models.PlanStatusSuperseded {
		return ErrMatchPlanSuperseded
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		planRepoTx := repositories.NewPlanRepositoryTx(tx)
		if err := planRepoTx.UpdateStatus(ctx, plan.ID, models.PlanStatusPublished); err != nil {
			return err
		}
		return planRepoTx.SupersedeOthers(ctx, plan.EventID, plan.ID)
	})
	if txErr != nil {
		configslog.Log.Error("PublishPlan failed", zap.Uint("plan_id", planID), zap.Error(txErr))
		return txErr
	}
	configslog.SLog.Infof("Plan yayınlandı: ID %d", planID)
	return nil
}

// persistStepResults motor çıktısını plana damgalayıp topluca kaydeder.
// Zarf public anahtarları burada üretilir; motor saf kalır.
func persistStepResults(ctx context.Context, tx *gorm.DB, planID uint, assignments []models.Assignment, pairings []models.Pairing, envelopes []models.Envelope) error {
	assignRepoTx := repositories.NewAssignmentRepositoryTx(tx)
	pairRepoTx := repositories.NewPairingRepositoryTx(tx)
	envRepoTx := repositories.NewEnvelopeRepositoryTx(tx)

	for i := range assignments {
		assignments[i].PlanID = planID
	}
	for i := range pairings {
		pairings[i].PlanID = planID
	}
	for i := range envelopes {
		envelopes[i].PlanID = planID
		if envelopes[i].Key == "" {
			envelopes[i].Key = uuid.NewString()
		}
	}

	if err := assignRepoTx.CreateBatch(ctx, assignments); err != nil {
		return err
	}
	if err := pairRepoTx.CreateBatch(ctx, pairings); err != nil {
		return err
	}
	return envRepoTx.CreateBatch(ctx, envelopes)
}

func overridePtr(cfg matching.PlanConfig, course models.Course) *matching.TimingOverride {
	if o, ok := cfg.Overrides[course]; ok {
		return &o
	}
	return nil
}

var _ IMatchService = (*MatchService)(nil)
